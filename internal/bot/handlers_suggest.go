package bot

import (
	"fmt"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"teashop/core/logger"
	tghelpers "teashop/core/telegram/helpers"
	"teashop/core/telegram/state"
	"teashop/internal/validate"
)

func (a *App) handleSuggestMenu(c tele.Context) error {
	return c.Send("Оставить предложение по улучшению?", suggestionsKeyboard())
}

func (a *App) cbSuggestStart(c tele.Context) error {
	a.sessions.Begin(c.Sender().ID, StateSuggestText, &SuggestionForm{})
	return c.Send("Пожалуйста, опишите ваше предложение:")
}

func (a *App) fsmSuggestText(c tele.Context) error {
	form, ok := state.FormAs[SuggestionForm](a.sessions, c.Sender().ID)
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
	a.sessions.SetState(c.Sender().ID, StateSuggestPhoto)
	return c.Send("Пришлите фото (опционально) или нажмите «Пропустить»:", skipKeyboard())
}

func (a *App) fsmSuggestPhoto(c tele.Context) error {
	form, ok := state.FormAs[SuggestionForm](a.sessions, c.Sender().ID)
	if !ok {
		return a.staleSession(c)
	}
	if photoID := largestPhotoID(c); photoID != "" {
		form.PhotoFileID = &photoID
		a.sessions.SetState(c.Sender().ID, StateSuggestContact)
		return c.Send("Фото получено! Оставьте контакт для обратной связи:")
	}
	a.sessions.SetState(c.Sender().ID, StateSuggestContact)
	return c.Send("Фото пропущено. Оставьте контакт для обратной связи:")
}

// fsmSuggestContact requires a reachable phone number: suggestions are
// follow-up requests, so contact cannot be skipped here.
func (a *App) fsmSuggestContact(c tele.Context) error {
	userID := c.Sender().ID
	form, ok := state.FormAs[SuggestionForm](a.sessions, userID)
	if !ok {
		return a.staleSession(c)
	}
	contact := strings.TrimSpace(c.Text())
	if !validate.IsPhone(contact) {
		return c.Send(msgInvalidPhone)
	}
	a.sessions.Clear(userID)

	if err := a.notifier.Submission(c, "предложение", form.Text, contact, form.PhotoFileID); err != nil {
		ctx := tghelpers.BuildContext(c)
		logger.Warn(ctx, "service.reviews", "suggestion.notify",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	return c.Send(
		"Спасибо за обратную связь!\nМы постараемся решить ваш вопрос в ближайшее время.",
		clientMenu(),
	)
}

// --- fallbacks -------------------------------------------------------------

// handleFreeText serves text that matched neither a command nor an active
// form: moderation first, then the small talk shortcuts.
func (a *App) handleFreeText(c tele.Context) error {
	text := strings.TrimSpace(c.Text())
	if text == "" {
		return nil
	}

	if censored, err := a.rejectCensored(c, text); censored {
		return err
	}

	if strings.EqualFold(text, "привет") {
		name := c.Sender().FirstName
		return c.Send(fmt.Sprintf(
			"И тебе привет, %s!\nУ меня есть ссылка на отличный магазин чая:\nНа WB — %s",
			name, a.cfg.Shop.StoreURL,
		))
	}

	return tghelpers.SendText(c, msgUnknownCommand)
}

// handleUnexpectedPhoto ignores photos sent outside any scenario.
func (a *App) handleUnexpectedPhoto(c tele.Context) error {
	return nil
}
