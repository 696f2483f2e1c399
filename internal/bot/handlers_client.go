package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"teashop/core/logger"
	"teashop/core/telegram/callbacks"
	"teashop/core/telegram/format"
	tghelpers "teashop/core/telegram/helpers"
	"teashop/core/telegram/state"
	"teashop/internal/models"
	"teashop/internal/storage"
)

func (a *App) handleAssortment(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	products, err := a.store.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 {
		return c.Send("Ассортимент пуст.")
	}
	for _, p := range products {
		card := &tele.Photo{
			File: tele.File{FileID: p.PhotoFileID},
			Caption: fmt.Sprintf(
				"Название: %s\nВес: %s г\nОписание: %s\nЦена: %s ₽",
				p.Name, p.Weight, p.Description, p.Price,
			),
		}
		if err := c.Send(card, productReviewsButton(p.ID)); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) handleShopLink(c tele.Context) error {
	return c.Send("А через бот заказать выгоднее", shopLinkKeyboard(a.cfg.Shop.StoreURL))
}

// --- leaving a review ------------------------------------------------------

func (a *App) handleReviewMenu(c tele.Context) error {
	return c.Send("Что вы хотите сделать?", reviewActionsKeyboard())
}

func (a *App) cbReviewStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	products, err := a.store.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 {
		return c.Send("Нет товаров для отзыва.")
	}
	a.sessions.Begin(c.Sender().ID, StateReviewSelectProduct, &ReviewForm{})
	return c.Edit("Выберите товар для отзыва:", productChoiceKeyboard(products, cbReviewProduct))
}

func (a *App) cbReviewSelectProduct(c tele.Context) error {
	userID := c.Sender().ID
	if a.sessions.GetState(userID) != StateReviewSelectProduct {
		return nil
	}
	form, ok := state.FormAs[ReviewForm](a.sessions, userID)
	if !ok {
		return a.staleSession(c)
	}
	productID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Send("Некорректный выбор товара.")
	}
	form.ProductID = productID
	a.sessions.SetState(userID, StateReviewText)
	return c.Send("Напишите ваш отзыв:")
}

// fsmReviewAwaitButtons swallows stray text while the product keyboard is
// displayed.
func (a *App) fsmReviewAwaitButtons(c tele.Context) error {
	return c.Send(msgUseButtons)
}

func (a *App) fsmReviewText(c tele.Context) error {
	form, ok := state.FormAs[ReviewForm](a.sessions, c.Sender().ID)
	if !ok {
		return a.staleSession(c)
	}
	text := strings.TrimSpace(c.Text())
	if text == "" {
		return c.Send("Текст не может быть пустым. Попробуйте снова:")
	}
	if censored, err := a.rejectCensored(c, text); censored {
		return err
	}
	form.Text = text
	a.sessions.SetState(c.Sender().ID, StateReviewPhoto)
	return c.Send("Пришлите фото (опционально) или нажмите «Пропустить»:", skipKeyboard())
}

// rejectCensored deletes a flagged message and warns the sender. The form
// stays on the current step so the user can resubmit.
func (a *App) rejectCensored(c tele.Context, text string) (bool, error) {
	if !a.filter.Contains(text) {
		return false, nil
	}
	if err := c.Reply(msgCensored); err != nil {
		return true, err
	}
	if err := c.Delete(); err != nil {
		logger.Warn(tghelpers.BuildContext(c), "moderation", "message.delete",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	return true, nil
}

func (a *App) fsmReviewPhoto(c tele.Context) error {
	form, ok := state.FormAs[ReviewForm](a.sessions, c.Sender().ID)
	if !ok {
		return a.staleSession(c)
	}
	if photoID := largestPhotoID(c); photoID != "" {
		form.PhotoFileID = &photoID
		a.sessions.SetState(c.Sender().ID, StateReviewContact)
		return c.Send("Фото получено! Оставьте контакт для обратной связи:")
	}
	a.sessions.SetState(c.Sender().ID, StateReviewContact)
	return c.Send("Фото пропущено. Оставьте контакт для обратной связи:")
}

// cbSkipPhoto serves the shared "Пропустить" button; the meaning depends on
// which scenario the user is in.
func (a *App) cbSkipPhoto(c tele.Context) error {
	userID := c.Sender().ID
	switch a.sessions.GetState(userID) {
	case StateReviewPhoto:
		form, ok := state.FormAs[ReviewForm](a.sessions, userID)
		if !ok {
			return a.staleSession(c)
		}
		form.PhotoFileID = nil
		a.sessions.SetState(userID, StateReviewContact)
		return c.Send("Фото пропущено. Оставьте контакт для обратной связи:")
	case StateSuggestPhoto:
		form, ok := state.FormAs[SuggestionForm](a.sessions, userID)
		if !ok {
			return a.staleSession(c)
		}
		form.PhotoFileID = nil
		a.sessions.SetState(userID, StateSuggestContact)
		return c.Send("Фото пропущено. Оставьте контакт для обратной связи:")
	case StateReviewEditContact:
		form, ok := state.FormAs[ReviewEditForm](a.sessions, userID)
		if !ok {
			return a.staleSession(c)
		}
		return a.applyReviewEdit(c, form, nil)
	default:
		return nil
	}
}

func (a *App) fsmReviewContact(c tele.Context) error {
	userID := c.Sender().ID
	form, ok := state.FormAs[ReviewForm](a.sessions, userID)
	if !ok {
		return a.staleSession(c)
	}

	contact := strings.TrimSpace(c.Text())
	if a.isSkipValue(contact) {
		contact = "Не указан"
	}

	ctx := tghelpers.BuildContext(c)
	review := models.Review{
		Text:        form.Text,
		Contact:     &contact,
		PhotoFileID: form.PhotoFileID,
		UserID:      &userID,
		ProductID:   &form.ProductID,
	}
	if err := a.store.AddReview(ctx, &review); err != nil {
		a.sessions.Clear(userID)
		return c.Send("Произошла ошибка при сохранении. Попробуйте позже.")
	}
	a.sessions.Clear(userID)

	_ = a.notifier.Submission(c, "отзыв", form.Text, contact, form.PhotoFileID)
	return c.Send("Спасибо за ваш отзыв! ❤️", clientMenu())
}

// --- browsing reviews ------------------------------------------------------

func reviewCard(rev models.Review) string {
	return fmt.Sprintf("💬 %s\n— %s", rev.Text, format.DerefString(rev.Contact, "Аноним"))
}

func (a *App) cbReviewRecent(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	reviews, err := a.store.RecentReviews(ctx, 5)
	if err != nil {
		return fmt.Errorf("recent reviews: %w", err)
	}
	if len(reviews) == 0 {
		return c.Send("Пока нет отзывов.")
	}
	for _, rev := range reviews {
		if rev.PhotoFileID != nil && *rev.PhotoFileID != "" {
			photo := &tele.Photo{
				File:    tele.File{FileID: *rev.PhotoFileID},
				Caption: reviewCard(rev),
			}
			if err := c.Send(photo); err != nil {
				return err
			}
			continue
		}
		if err := c.Send(reviewCard(rev)); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) cbReviewMine(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	reviews, err := a.store.UserReviews(ctx, c.Sender().ID, 10)
	if err != nil {
		return fmt.Errorf("user reviews: %w", err)
	}
	if len(reviews) == 0 {
		return c.Send("У вас пока нет отзывов.")
	}
	for _, rev := range reviews {
		if err := c.Send(reviewCard(rev), reviewEditKeyboard(rev.ID)); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) cbShowProductReviews(c tele.Context) error {
	productID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Send("Неверный формат данных.")
	}
	ctx := tghelpers.BuildContext(c)

	product, err := a.store.GetProduct(ctx, productID)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Send("Товар не найден.")
	}
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}

	page, err := a.store.ProductReviews(ctx, productID, 1, a.cfg.Shop.ReviewsPerPage)
	if err != nil {
		return fmt.Errorf("product reviews: %w", err)
	}
	if len(page.Items) == 0 {
		return c.Send(fmt.Sprintf("Пока нет отзывов на товар «%s».", product.Name))
	}

	text := fmt.Sprintf("⭐ Отзывы на «%s»:\n\n%s", product.Name, reviewPageText(page.Items))
	return c.Send(text, reviewsPaginationKeyboard(productID, page.Page, page.TotalPages))
}

func (a *App) cbReviewsPage(c tele.Context) error {
	productID, pageNo, err := callbacks.PayloadTwoInt64(c, "|")
	if err != nil {
		return c.Send("Неверный формат данных.")
	}
	ctx := tghelpers.BuildContext(c)

	page, err := a.store.ProductReviews(ctx, productID, int(pageNo), a.cfg.Shop.ReviewsPerPage)
	if err != nil {
		return fmt.Errorf("product reviews: %w", err)
	}
	if len(page.Items) == 0 {
		return c.Edit("Отзывы не найдены.")
	}

	text := reviewPageText(page.Items)
	kb := reviewsPaginationKeyboard(productID, page.Page, page.TotalPages)
	if err := c.Edit(text, kb); err != nil && !isNotModified(err) {
		return err
	}
	return nil
}

func reviewPageText(reviews []models.Review) string {
	var b strings.Builder
	for _, rev := range reviews {
		b.WriteString(reviewCard(rev))
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

// --- editing own reviews ---------------------------------------------------

// ownsReview reports whether the user authored the review. Anonymous
// reviews (no recorded author) belong to nobody.
func ownsReview(rev models.Review, userID int64) bool {
	return rev.UserID != nil && *rev.UserID == userID
}

func (a *App) cbEditReview(c tele.Context) error {
	reviewID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Send("Неверный формат данных.")
	}
	ctx := tghelpers.BuildContext(c)

	rev, err := a.store.GetReview(ctx, reviewID)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Send("Отзыв не найден.")
	}
	if err != nil {
		return fmt.Errorf("get review: %w", err)
	}
	if !ownsReview(rev, c.Sender().ID) {
		return c.Send("Вы не можете редактировать чужой отзыв.")
	}

	a.sessions.Begin(c.Sender().ID, StateReviewEditText, &ReviewEditForm{ReviewID: reviewID})
	return c.Send("✏️ Введите новый текст отзыва:")
}

func (a *App) fsmReviewEditText(c tele.Context) error {
	form, ok := state.FormAs[ReviewEditForm](a.sessions, c.Sender().ID)
	if !ok {
		return a.staleSession(c)
	}
	text := strings.TrimSpace(c.Text())
	if text == "" {
		return c.Send("Текст не может быть пустым. Попробуйте снова:")
	}
	if censored, err := a.rejectCensored(c, text); censored {
		return err
	}
	form.NewText = text
	a.sessions.SetState(c.Sender().ID, StateReviewEditContact)
	return c.Send("📞 Укажите контакт (или нажмите «Пропустить»):", skipKeyboard())
}

func (a *App) fsmReviewEditContact(c tele.Context) error {
	form, ok := state.FormAs[ReviewEditForm](a.sessions, c.Sender().ID)
	if !ok {
		return a.staleSession(c)
	}
	contact := strings.TrimSpace(c.Text())
	if a.isSkipValue(contact) || contact == "Пропустить" || contact == "/skip" {
		return a.applyReviewEdit(c, form, nil)
	}
	return a.applyReviewEdit(c, form, &contact)
}

func (a *App) applyReviewEdit(c tele.Context, form *ReviewEditForm, contact *string) error {
	ctx := tghelpers.BuildContext(c)
	updated, err := a.store.UpdateReview(ctx, form.ReviewID, form.NewText, contact)
	a.sessions.Clear(c.Sender().ID)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if !updated {
		return c.Send("❌ Не удалось обновить отзыв.")
	}
	return c.Send("✅ Отзыв успешно обновлён!")
}
