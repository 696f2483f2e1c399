package bot

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"teashop/core/telegram/keyboard"
	"teashop/internal/models"
)

// Callback uniques. Every value doubles as a registry key, so the set must
// stay collision-free: "order_pvz_page" is deliberately distinct from
// "order_pvz" because the registry matches keys exactly, not by prefix.
const (
	cbNoop = "noop"

	cbReviewStart   = "review_start"
	cbReviewRecent  = "review_show"
	cbReviewMine    = "review_mine"
	cbReviewProduct = "review_product"
	cbSkipPhoto     = "skip_photo"
	cbShowReviews   = "show_reviews"
	cbReviewsPage   = "reviews_page"
	cbEditReview    = "edit_review"

	cbOrderProduct = "order_prod"
	cbOrderPVZ     = "order_pvz"
	cbOrderPVZPage = "order_pvz_page"
	cbOrderConfirm = "order_confirm"
	cbOrderCancel  = "order_cancel"

	cbSuggestStart = "suggest_start"

	cbEditProduct         = "edit_product"
	cbEditField           = "edit_field"
	cbEditDone            = "edit_done"
	cbDeleteProductAsk    = "product_del_ask"
	cbDeleteProduct       = "product_del"
	cbDeleteProductCancel = "product_del_cancel"

	cbReviewDelAsk    = "review_del_ask"
	cbReviewDel       = "review_del"
	cbReviewDelCancel = "review_del_cancel"

	cbClearStatsConfirm = "clear_stats_confirm"
	cbClearStatsCancel  = "clear_stats_cancel"
)

// Editable product fields, used as edit_field callback payloads.
const (
	fieldPhoto       = "photo"
	fieldName        = "name"
	fieldWeight      = "weight"
	fieldDescription = "description"
	fieldPrice       = "price"
)

func adminMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{btnAddProduct, btnAssortment},
		[]string{btnEditProduct, btnAdminReviews},
		[]string{btnStats, btnClearStats},
	)
}

func clientMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{btnHelp, btnAssortment},
		[]string{btnShopLink, btnLeaveReview},
		[]string{btnOrder, btnSuggestions},
	)
}

func shopLinkKeyboard(url string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	btn := markup.URL("Wildberries", url)
	markup.InlineKeyboard = [][]tele.InlineButton{{*btn.Inline()}}
	return markup
}

func reviewActionsKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "✏️ Оставить отзыв", Unique: cbReviewStart},
		{Text: "📖 Последние отзывы", Unique: cbReviewRecent},
		{Text: "🛠 Мои отзывы", Unique: cbReviewMine},
	})
}

func suggestionsKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "✏️ Предложения", Unique: cbSuggestStart},
	})
}

func skipKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "Пропустить", Unique: cbSkipPhoto},
	})
}

// productChoiceKeyboard lists products one per row; unique selects which
// scenario consumes the tap.
func productChoiceKeyboard(products []models.Product, unique string) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(products))
	for _, p := range products {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   p.Name,
			Unique: unique,
			Data:   strconv.FormatInt(p.ID, 10),
		})
	}
	return keyboard.InlineButtons(buttons)
}

func editProductKeyboard(products []models.Product) *tele.ReplyMarkup {
	rows := make([][]keyboard.InlineBtn, 0, len(products))
	for _, p := range products {
		id := strconv.FormatInt(p.ID, 10)
		rows = append(rows, []keyboard.InlineBtn{
			{Text: "✏️ " + p.Name, Unique: cbEditProduct, Data: id},
			{Text: "🗑 Удалить", Unique: cbDeleteProductAsk, Data: id},
		})
	}
	return keyboard.InlineButtonsRows(rows...)
}

func confirmDeleteProductKeyboard(productID int64) *tele.ReplyMarkup {
	id := strconv.FormatInt(productID, 10)
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "✅ Да", Unique: cbDeleteProduct, Data: id},
		{Text: "❌ Нет", Unique: cbDeleteProductCancel},
	})
}

func editFieldKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "Фото", Unique: cbEditField, Data: fieldPhoto},
		{Text: "Название", Unique: cbEditField, Data: fieldName},
		{Text: "Вес", Unique: cbEditField, Data: fieldWeight},
		{Text: "Описание", Unique: cbEditField, Data: fieldDescription},
		{Text: "Цена", Unique: cbEditField, Data: fieldPrice},
		{Text: "✅ Готово", Unique: cbEditDone},
	})
}

func productReviewsButton(productID int64) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "⭐ Отзывы", Unique: cbShowReviews, Data: strconv.FormatInt(productID, 10)},
	})
}

// reviewsPaginationKeyboard renders "← prev | page/total | next →" with
// noop placeholders at the edges so the row width stays stable.
func reviewsPaginationKeyboard(productID int64, page, totalPages int) *tele.ReplyMarkup {
	pagePayload := func(p int) string {
		return fmt.Sprintf("%d|%d", productID, p)
	}

	prev := keyboard.InlineBtn{Text: " ", Unique: cbNoop}
	if page > 1 {
		prev = keyboard.InlineBtn{Text: "← Назад", Unique: cbReviewsPage, Data: pagePayload(page - 1)}
	}
	next := keyboard.InlineBtn{Text: " ", Unique: cbNoop}
	if page < totalPages {
		next = keyboard.InlineBtn{Text: "Вперёд →", Unique: cbReviewsPage, Data: pagePayload(page + 1)}
	}

	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		prev,
		{Text: fmt.Sprintf("%d / %d", page, totalPages), Unique: cbNoop},
		next,
	})
}

func reviewDeleteKeyboard(reviewID int64) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "🗑 Удалить", Unique: cbReviewDelAsk, Data: strconv.FormatInt(reviewID, 10)},
	})
}

func confirmDeleteReviewKeyboard(reviewID int64) *tele.ReplyMarkup {
	id := strconv.FormatInt(reviewID, 10)
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "✅ Да", Unique: cbReviewDel, Data: id},
		{Text: "❌ Нет", Unique: cbReviewDelCancel, Data: id},
	})
}

func reviewEditKeyboard(reviewID int64) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "✏️ Редактировать", Unique: cbEditReview, Data: strconv.FormatInt(reviewID, 10)},
	})
}

func orderConfirmationKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "✅ Подтвердить", Unique: cbOrderConfirm},
		{Text: "❌ Отменить", Unique: cbOrderCancel},
	})
}

func clearStatsKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "✅ Да, обнулить", Unique: cbClearStatsConfirm},
		{Text: "❌ Отмена", Unique: cbClearStatsCancel},
	})
}

// pvzPaginationKeyboard shows one page of pickup points labelled by street
// address, with prev/next navigation when more pages exist. Pages here are
// zero-based; the list lives in the order session.
func pvzPaginationKeyboard(points []models.PickupPoint, city string, page, perPage int) *tele.ReplyMarkup {
	if perPage < 1 {
		perPage = 1
	}
	start := page * perPage
	if start > len(points) {
		start = len(points)
	}
	end := start + perPage
	if end > len(points) {
		end = len(points)
	}

	rows := make([][]keyboard.InlineBtn, 0, perPage+2)
	for _, pvz := range points[start:end] {
		rows = append(rows, []keyboard.InlineBtn{
			{Text: pvzButtonLabel(pvz, city), Unique: cbOrderPVZ, Data: pvz.Code},
		})
	}

	var nav []keyboard.InlineBtn
	if page > 0 {
		nav = append(nav, keyboard.InlineBtn{
			Text: "⬅️ Назад", Unique: cbOrderPVZPage, Data: strconv.Itoa(page - 1),
		})
	}
	if end < len(points) {
		nav = append(nav, keyboard.InlineBtn{
			Text: "➡️ Вперёд", Unique: cbOrderPVZPage, Data: strconv.Itoa(page + 1),
		})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, []keyboard.InlineBtn{
		{Text: "❌ Отменить", Unique: cbOrderCancel},
	})
	return keyboard.InlineButtonsRows(rows...)
}

func pvzButtonLabel(pvz models.PickupPoint, city string) string {
	label := strings.TrimSpace(pvz.Address)
	if label == "" {
		label = strings.TrimSpace(pvz.Name)
	}
	if label != "" {
		label = extractStreetAddress(label, city)
	}
	if label == "" {
		label = "ПВЗ " + pvz.Code
	}
	if r := []rune(label); len(r) > 60 {
		label = string(r[:57]) + "..."
	}
	return label
}

var (
	edgePunct   = regexp.MustCompile(`^[,\s.]+|[,\s.]+$`)
	duplicateWS = regexp.MustCompile(`[,\s]{2,}`)
)

// extractStreetAddress strips the city name and its "г."/"город" prefixes
// from a full address, leaving the street part for compact button labels.
func extractStreetAddress(full, city string) string {
	if full == "" || city == "" {
		return full
	}
	quoted := regexp.QuoteMeta(city)
	patterns := []string{
		`(?i)г\.?\s*` + quoted,
		`(?i)город\s+` + quoted,
		`(?i)` + quoted + `,?\s*`,
	}
	cleaned := full
	for _, p := range patterns {
		cleaned = regexp.MustCompile(p).ReplaceAllString(cleaned, "")
	}
	cleaned = edgePunct.ReplaceAllString(cleaned, "")
	cleaned = duplicateWS.ReplaceAllString(cleaned, ", ")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return full
	}
	return cleaned
}
