package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"log/slog"

	tele "gopkg.in/telebot.v4"

	"teashop/core/logger"
	"teashop/core/telegram/callbacks"
	tghelpers "teashop/core/telegram/helpers"
	"teashop/core/telegram/state"
	"teashop/internal/models"
	"teashop/internal/pricing"
	"teashop/internal/storage"
	"teashop/internal/validate"
)

// handleStart greets the user, remembers them for broadcasts and shows the
// role-specific menu.
func (a *App) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	if err := a.store.AddUser(ctx, userID); err != nil {
		logger.Error(ctx, "service.catalog", "user.register",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}

	if a.isAdmin(c) {
		return tghelpers.SendKeyboard(c, msgAdminWelcome, adminMenu())
	}
	return tghelpers.SendKeyboard(c, msgClientWelcome, clientMenu())
}

func (a *App) handleHelp(c tele.Context) error {
	return tghelpers.SendText(c, msgHelp)
}

func (a *App) handleStats(c tele.Context) error {
	if !a.isAdmin(c) {
		return c.Send("Доступ только для админа.")
	}
	ctx := tghelpers.BuildContext(c)

	stats, err := a.store.SalesStatistics(ctx)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	var b strings.Builder
	b.WriteString("📊 Статистика\n\n")
	fmt.Fprintf(&b, "👥 Активных пользователей: %d\n", stats.ActiveUsers)
	fmt.Fprintf(&b, "💰 Выручка: %s ₽\n\n", pricing.FormatPrice(stats.TotalRevenue))
	if len(stats.Sold) == 0 {
		b.WriteString("📦 Продаж пока нет.")
	} else {
		b.WriteString("📦 Проданные товары:\n")
		for _, s := range stats.Sold {
			fmt.Fprintf(&b, "  • %s: %d шт.\n", s.Name, s.Quantity)
		}
	}
	return c.Send(strings.TrimRight(b.String(), "\n"))
}

func (a *App) handleClearStatsAsk(c tele.Context) error {
	if !a.isAdmin(c) {
		return nil
	}
	return c.Send("⚠️ Это удалит ВСЕ данные о продажах. Продолжить?", clearStatsKeyboard())
}

func (a *App) cbClearStatsConfirm(c tele.Context) error {
	if !a.isAdmin(c) {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	if err := a.store.ClearStatistics(ctx); err != nil {
		return fmt.Errorf("clear stats: %w", err)
	}
	return c.Edit("✅ Статистика успешно обнулена.")
}

func (a *App) cbClearStatsCancel(c tele.Context) error {
	return c.Edit("❌ Сброс отменён.")
}

// --- add product -----------------------------------------------------------

func (a *App) handleAddProductStart(c tele.Context) error {
	if !a.isAdmin(c) {
		return c.Send("Эта команда доступна только администратору.")
	}
	a.sessions.Begin(c.Sender().ID, StateAddPhoto, &AddProductForm{})
	return c.Send("Загрузи фото")
}

func (a *App) fsmAddPhoto(c tele.Context) error {
	form, ok := state.FormAs[AddProductForm](a.sessions, c.Sender().ID)
	if !ok {
		return a.staleSession(c)
	}
	photoID := largestPhotoID(c)
	if photoID == "" {
		return c.Send("Пожалуйста, отправьте именно фото.")
	}
	form.PhotoFileID = photoID
	a.sessions.SetState(c.Sender().ID, StateAddName)
	return c.Send("Теперь введите название товара")
}

func (a *App) fsmAddName(c tele.Context) error {
	form, ok := state.FormAs[AddProductForm](a.sessions, c.Sender().ID)
	if !ok {
		return a.staleSession(c)
	}
	name := strings.TrimSpace(c.Text())
	if name == "" {
		return c.Send("Название не может быть пустым. Попробуйте снова:")
	}
	form.Name = name
	a.sessions.SetState(c.Sender().ID, StateAddWeight)
	return c.Send("Введите вес товара, в граммах.")
}

func (a *App) fsmAddWeight(c tele.Context) error {
	form, ok := state.FormAs[AddProductForm](a.sessions, c.Sender().ID)
	if !ok {
		return a.staleSession(c)
	}
	if !validate.IsPositiveNumber(c.Text()) {
		return c.Send(msgInvalidNumber)
	}
	form.Weight = strings.TrimSpace(c.Text())
	a.sessions.SetState(c.Sender().ID, StateAddDescription)
	return c.Send("Расскажите о товаре (описание).")
}

func (a *App) fsmAddDescription(c tele.Context) error {
	form, ok := state.FormAs[AddProductForm](a.sessions, c.Sender().ID)
	if !ok {
		return a.staleSession(c)
	}
	form.Description = strings.TrimSpace(c.Text())
	a.sessions.SetState(c.Sender().ID, StateAddPrice)
	return c.Send("Укажите цену товара (в рублях)")
}

func (a *App) fsmAddPrice(c tele.Context) error {
	userID := c.Sender().ID
	form, ok := state.FormAs[AddProductForm](a.sessions, userID)
	if !ok {
		return a.staleSession(c)
	}
	if !validate.IsPositiveNumber(c.Text()) {
		return c.Send(msgInvalidPrice)
	}
	form.Price = pricing.FormatPrice(parseNumber(c.Text()))

	ctx := tghelpers.BuildContext(c)
	product := form.Product()
	if err := a.store.SaveProduct(ctx, &product); err != nil {
		return fmt.Errorf("save product: %w", err)
	}
	a.sessions.Clear(userID)

	card := &tele.Photo{
		File: tele.File{FileID: product.PhotoFileID},
		Caption: fmt.Sprintf(
			"✅ Товар добавлен!\nНазвание: %s\nВес: %s г\nОписание: %s\nЦена: %s ₽",
			product.Name, product.Weight, product.Description, product.Price,
		),
	}
	if err := c.Send(card); err != nil {
		return err
	}

	ids, err := a.store.ActiveUserIDs(ctx)
	if err != nil {
		logger.Warn(ctx, "service.catalog", "product.broadcast",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return nil
	}
	a.notifier.BroadcastProduct(c, ids, product)
	return nil
}

// --- edit product ----------------------------------------------------------

var editFieldSteps = map[string]struct {
	state  state.State
	prompt string
}{
	fieldPhoto:       {StateEditPhoto, "Отправьте новое фото товара."},
	fieldName:        {StateEditName, "Введите новое название."},
	fieldWeight:      {StateEditWeight, "Введите новый вес в граммах."},
	fieldDescription: {StateEditDescription, "Введите новое описание."},
	fieldPrice:       {StateEditPrice, "Введите новую цену в рублях."},
}

func (a *App) handleEditProductStart(c tele.Context) error {
	if !a.isAdmin(c) {
		return c.Send("Доступ только для админа.")
	}
	ctx := tghelpers.BuildContext(c)
	products, err := a.store.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 {
		return c.Send("Нет товаров для редактирования.")
	}
	return c.Send("Выберите товар для редактирования:", editProductKeyboard(products))
}

func (a *App) cbEditProduct(c tele.Context) error {
	if !a.isAdmin(c) {
		return nil
	}
	productID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Send("Неверный ID товара.")
	}
	ctx := tghelpers.BuildContext(c)
	product, err := a.store.GetProduct(ctx, productID)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Send("Товар не найден.")
	}
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}

	a.sessions.Begin(c.Sender().ID, StateEditMenu, &EditProductForm{ProductID: productID})
	return c.Edit(
		fmt.Sprintf("Редактирование: %s\nВыберите поле:", product.Name),
		editFieldKeyboard(),
	)
}

func (a *App) cbEditField(c tele.Context) error {
	if _, ok := state.FormAs[EditProductForm](a.sessions, c.Sender().ID); !ok {
		return a.staleSession(c)
	}
	step, ok := editFieldSteps[callbacks.CallbackPayload(c)]
	if !ok {
		return c.Send("Недопустимое поле.")
	}
	a.sessions.SetState(c.Sender().ID, step.state)
	return c.Send(step.prompt)
}

// fsmEditMenu swallows stray text while the field keyboard is displayed.
func (a *App) fsmEditMenu(c tele.Context) error {
	return c.Send("Выберите поле кнопками ниже или нажмите «✅ Готово».")
}

func (a *App) fsmEditPhoto(c tele.Context) error {
	form, ok := state.FormAs[EditProductForm](a.sessions, c.Sender().ID)
	if !ok {
		return a.staleSession(c)
	}
	photoID := largestPhotoID(c)
	if photoID == "" {
		return c.Send("Пожалуйста, отправьте именно фото.")
	}
	form.NewPhotoFileID = &photoID
	return a.returnToEditMenu(c, form)
}

func (a *App) fsmEditName(c tele.Context) error {
	form, ok := state.FormAs[EditProductForm](a.sessions, c.Sender().ID)
	if !ok {
		return a.staleSession(c)
	}
	name := strings.TrimSpace(c.Text())
	if name == "" {
		return c.Send("Название не может быть пустым. Попробуйте снова:")
	}
	form.NewName = &name
	return a.returnToEditMenu(c, form)
}

func (a *App) fsmEditWeight(c tele.Context) error {
	form, ok := state.FormAs[EditProductForm](a.sessions, c.Sender().ID)
	if !ok {
		return a.staleSession(c)
	}
	if !validate.IsPositiveNumber(c.Text()) {
		return c.Send("❌ Вес должен быть положительным числом. Попробуйте снова.")
	}
	weight := strings.TrimSpace(c.Text())
	form.NewWeight = &weight
	return a.returnToEditMenu(c, form)
}

func (a *App) fsmEditDescription(c tele.Context) error {
	form, ok := state.FormAs[EditProductForm](a.sessions, c.Sender().ID)
	if !ok {
		return a.staleSession(c)
	}
	desc := strings.TrimSpace(c.Text())
	form.NewDescription = &desc
	return a.returnToEditMenu(c, form)
}

func (a *App) fsmEditPrice(c tele.Context) error {
	form, ok := state.FormAs[EditProductForm](a.sessions, c.Sender().ID)
	if !ok {
		return a.staleSession(c)
	}
	if !validate.IsPositiveNumber(c.Text()) {
		return c.Send("❌ Цена должна быть положительным числом. Попробуйте снова.")
	}
	price := pricing.FormatPrice(parseNumber(c.Text()))
	form.NewPrice = &price
	return a.returnToEditMenu(c, form)
}

func (a *App) returnToEditMenu(c tele.Context, form *EditProductForm) error {
	ctx := tghelpers.BuildContext(c)
	product, err := a.store.GetProduct(ctx, form.ProductID)
	if errors.Is(err, storage.ErrNotFound) {
		a.sessions.Clear(c.Sender().ID)
		return c.Send("Товар не найден.")
	}
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}

	display := form.Apply(product)
	a.sessions.SetState(c.Sender().ID, StateEditMenu)
	return c.Send(
		fmt.Sprintf("Редактирование: %s\nТекущие данные обновлены.\nВыберите поле:", display.Name),
		editFieldKeyboard(),
	)
}

func (a *App) cbEditDone(c tele.Context) error {
	userID := c.Sender().ID
	form, ok := state.FormAs[EditProductForm](a.sessions, userID)
	if !ok {
		return a.staleSession(c)
	}
	ctx := tghelpers.BuildContext(c)

	product, err := a.store.GetProduct(ctx, form.ProductID)
	if errors.Is(err, storage.ErrNotFound) {
		a.sessions.Clear(userID)
		return c.Send("Товар не найден в базе.")
	}
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}

	if !form.Changed() {
		a.sessions.Clear(userID)
		return c.Send("ℹ️ Изменений не было внесено.")
	}

	updated := form.Apply(product)
	if err := a.store.SaveProduct(ctx, &updated); err != nil {
		a.sessions.Clear(userID)
		return fmt.Errorf("update product: %w", err)
	}
	a.sessions.Clear(userID)
	return c.Send("✅ Товар успешно обновлён!")
}

// --- delete product --------------------------------------------------------

func (a *App) cbDeleteProductAsk(c tele.Context) error {
	if !a.isAdmin(c) {
		return nil
	}
	productID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Send("Неверный ID товара.")
	}
	ctx := tghelpers.BuildContext(c)
	product, err := a.store.GetProduct(ctx, productID)
	if errors.Is(err, storage.ErrNotFound) {
		return c.Send("Товар не найден.")
	}
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	return c.Edit(
		fmt.Sprintf("❓ Точно удалить товар «%s»?", product.Name),
		confirmDeleteProductKeyboard(productID),
	)
}

func (a *App) cbDeleteProduct(c tele.Context) error {
	if !a.isAdmin(c) {
		return nil
	}
	productID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Send("Неверный ID товара.")
	}
	ctx := tghelpers.BuildContext(c)
	deleted, err := a.store.DeleteProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if !deleted {
		return c.Send("Товар не найден.")
	}
	return c.Edit("✅ Товар и его отзывы удалены!")
}

func (a *App) cbDeleteProductCancel(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	products, err := a.store.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 {
		return c.Edit("Ассортимент пуст.")
	}
	return c.Edit("Выберите товар для редактирования:", editProductKeyboard(products))
}

// --- review moderation -----------------------------------------------------

func (a *App) handleAdminReviews(c tele.Context) error {
	if !a.isAdmin(c) {
		return c.Send("Доступ только для админа.")
	}
	ctx := tghelpers.BuildContext(c)
	reviews, err := a.store.RecentReviews(ctx, 100)
	if err != nil {
		return fmt.Errorf("recent reviews: %w", err)
	}
	if len(reviews) == 0 {
		return c.Send("Нет отзывов.")
	}
	for _, rev := range reviews {
		if err := c.Send(adminReviewCard(rev), reviewDeleteKeyboard(rev.ID)); err != nil {
			return err
		}
	}
	return nil
}

func adminReviewCard(rev models.Review) string {
	userInfo := "Аноним"
	if rev.UserID != nil {
		userInfo = "ID: " + strconv.FormatInt(*rev.UserID, 10)
	}
	text := fmt.Sprintf("🆔 Отзыв #%d\n👤 %s\n💬 %s", rev.ID, userInfo, rev.Text)
	if rev.Contact != nil && *rev.Contact != "" {
		text += "\n📞 Контакт: " + *rev.Contact
	}
	return text
}

func (a *App) cbReviewDeleteAsk(c tele.Context) error {
	if !a.isAdmin(c) {
		return nil
	}
	reviewID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Send("Неверный формат данных.")
	}
	return c.Edit(
		fmt.Sprintf("❓ Точно удалить отзыв #%d?", reviewID),
		confirmDeleteReviewKeyboard(reviewID),
	)
}

func (a *App) cbReviewDelete(c tele.Context) error {
	if !a.isAdmin(c) {
		return nil
	}
	reviewID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Send("Неверный формат данных.")
	}
	ctx := tghelpers.BuildContext(c)
	deleted, err := a.store.DeleteReview(ctx, reviewID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if !deleted {
		return c.Send("❌ Отзыв не найден.")
	}
	return c.Delete()
}

func (a *App) cbReviewDeleteCancel(c tele.Context) error {
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
	return c.Edit(adminReviewCard(rev), reviewDeleteKeyboard(rev.ID))
}

// --- shared helpers --------------------------------------------------------

func (a *App) staleSession(c tele.Context) error {
	a.sessions.Clear(c.Sender().ID)
	return c.Send(msgStaleSession)
}

// parseNumber parses a decimal that may use a comma separator. Callers
// validate first; malformed input yields zero.
func parseNumber(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
