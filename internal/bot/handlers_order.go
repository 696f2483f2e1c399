package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"teashop/core/logger"
	"teashop/core/telegram/callbacks"
	tghelpers "teashop/core/telegram/helpers"
	"teashop/core/telegram/state"
	"teashop/internal/cdek"
	"teashop/internal/models"
	"teashop/internal/pricing"
	"teashop/internal/storage"
	"teashop/internal/validate"
)

// orderCancelWords abort the order when typed on any text step.
var orderCancelWords = map[string]struct{}{
	"отмена":     {},
	"назад":      {},
	"❌ отменить": {},
}

func isOrderCancelWord(text string) bool {
	_, ok := orderCancelWords[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

func (a *App) cancelOrder(c tele.Context) error {
	a.sessions.Clear(c.Sender().ID)
	return c.Send("Оформление заказа отменено.", clientMenu())
}

// fsmOrderAwaitButtons serves text typed while an inline keyboard is
// waiting: cancel words still abort, anything else gets a nudge.
func (a *App) fsmOrderAwaitButtons(c tele.Context) error {
	if isOrderCancelWord(c.Text()) {
		return a.cancelOrder(c)
	}
	return c.Send(msgUseButtons)
}

func (a *App) handleOrderStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	products, err := a.store.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 {
		return c.Send("Нет доступных товаров.")
	}
	a.sessions.Begin(c.Sender().ID, StateOrderSelectProduct, &OrderForm{})
	return c.Send("Выберите товар:", productChoiceKeyboard(products, cbOrderProduct))
}

func (a *App) cbOrderSelectProduct(c tele.Context) error {
	userID := c.Sender().ID
	if a.sessions.GetState(userID) != StateOrderSelectProduct {
		return nil
	}
	form, ok := state.FormAs[OrderForm](a.sessions, userID)
	if !ok {
		return a.staleSession(c)
	}
	productID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Send("Некорректный выбор товара.")
	}
	form.ProductID = productID
	a.sessions.SetState(userID, StateOrderQuantity)
	return c.Edit("Укажите количество штук:")
}

func (a *App) fsmOrderQuantity(c tele.Context) error {
	form, ok := state.FormAs[OrderForm](a.sessions, c.Sender().ID)
	if !ok {
		return a.staleSession(c)
	}
	text := strings.TrimSpace(c.Text())
	if isOrderCancelWord(text) {
		return a.cancelOrder(c)
	}
	if !validate.IsPositiveInt(text) {
		return c.Send(msgInvalidQuantity)
	}
	qty, err := strconv.Atoi(text)
	if err != nil {
		return c.Send(msgInvalidQuantity)
	}
	form.Quantity = qty
	a.sessions.SetState(c.Sender().ID, StateOrderCity)
	return c.Send("🏙️ Введите город доставки (например: Москва):")
}

func (a *App) fsmOrderCity(c tele.Context) error {
	userID := c.Sender().ID
	form, ok := state.FormAs[OrderForm](a.sessions, userID)
	if !ok {
		return a.staleSession(c)
	}
	city := strings.TrimSpace(c.Text())
	if isOrderCancelWord(city) {
		return a.cancelOrder(c)
	}
	if city == "" {
		return c.Send("Пожалуйста, введите название города.")
	}
	ctx := tghelpers.BuildContext(c)

	if err := c.Send("🔍 Ищу город..."); err != nil {
		return err
	}
	cityCode, err := a.courier.ResolveCity(ctx, city)
	if errors.Is(err, cdek.ErrCityNotFound) {
		return c.Send(fmt.Sprintf(
			"Город «%s» не найден.\nПопробуйте указать полное название (например: Санкт-Петербург).",
			city,
		))
	}
	if err != nil {
		logger.Error(ctx, "cdek", "city.resolve",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return c.Send("Произошла ошибка при поиске ПВЗ. Попробуйте позже.")
	}

	if err := c.Send("📦 Ищу пункты выдачи..."); err != nil {
		return err
	}
	points, err := a.courier.PickupPoints(ctx, cityCode)
	if err != nil {
		logger.Error(ctx, "cdek", "deliverypoints.list",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return c.Send("Произошла ошибка при поиске ПВЗ. Попробуйте позже.")
	}
	if len(points) == 0 {
		return c.Send(fmt.Sprintf("В городе «%s» нет ПВЗ СДЭК.", city))
	}

	form.City = city
	form.CityCode = cityCode
	form.PVZ = points
	form.Page = 0
	a.sessions.SetState(userID, StateOrderSelectPVZ)

	kb := pvzPaginationKeyboard(points, city, 0, a.cfg.Shop.PickupPointsPerPage)
	return c.Send(fmt.Sprintf("Найдено %d ПВЗ. Выберите:", len(points)), kb)
}

func (a *App) cbOrderPVZPage(c tele.Context) error {
	userID := c.Sender().ID
	if a.sessions.GetState(userID) != StateOrderSelectPVZ {
		return nil
	}
	form, ok := state.FormAs[OrderForm](a.sessions, userID)
	if !ok {
		return a.staleSession(c)
	}
	page, err := callbacks.PayloadInt(c)
	if err != nil || page < 0 {
		return nil
	}
	form.Page = page

	kb := pvzPaginationKeyboard(form.PVZ, form.City, page, a.cfg.Shop.PickupPointsPerPage)
	if err := c.Edit(kb); err != nil && !isNotModified(err) {
		return err
	}
	return nil
}

func (a *App) cbOrderSelectPVZ(c tele.Context) error {
	userID := c.Sender().ID
	if a.sessions.GetState(userID) != StateOrderSelectPVZ {
		return nil
	}
	form, ok := state.FormAs[OrderForm](a.sessions, userID)
	if !ok {
		return a.staleSession(c)
	}

	code := callbacks.CallbackPayload(c)
	var selected *models.PickupPoint
	for i := range form.PVZ {
		if form.PVZ[i].Code == code {
			selected = &form.PVZ[i]
			break
		}
	}
	if selected == nil {
		return c.Send("Пункт выдачи не найден.")
	}

	form.Selected = selected
	a.sessions.SetState(userID, StateOrderPhone)

	if err := c.Edit(fmt.Sprintf(
		"✅ Выбран пункт выдачи:\n\n%s\n%s",
		selected.Name, pvzFullAddress(*selected),
	)); err != nil {
		return err
	}
	return c.Send("📞 Пожалуйста, введите ваш номер телефона:")
}

func pvzFullAddress(pvz models.PickupPoint) string {
	addr := strings.TrimSpace(pvz.Address)
	comment := strings.TrimSpace(pvz.AddressComment)
	switch {
	case addr != "" && comment != "":
		return addr + "\nℹ️ " + comment
	case comment != "":
		return "📍 " + comment
	case addr != "":
		return addr
	default:
		return "Адрес не указан"
	}
}

func pvzDisplayAddress(pvz models.PickupPoint) string {
	if addr := strings.TrimSpace(pvz.Address); addr != "" {
		return addr
	}
	if comment := strings.TrimSpace(pvz.AddressComment); comment != "" {
		return comment
	}
	return "Адрес не указан"
}

func (a *App) fsmOrderPhone(c tele.Context) error {
	userID := c.Sender().ID
	form, ok := state.FormAs[OrderForm](a.sessions, userID)
	if !ok {
		return a.staleSession(c)
	}

	text := strings.TrimSpace(c.Text())
	if isOrderCancelWord(text) {
		return a.cancelOrder(c)
	}
	if !validate.IsPhone(text) {
		return c.Send(msgInvalidPhone)
	}
	if form.Selected == nil {
		a.sessions.Clear(userID)
		return c.Send("❌ Сессия устарела. Начните заказ заново.", clientMenu())
	}

	ctx := tghelpers.BuildContext(c)
	product, err := a.store.GetProduct(ctx, form.ProductID)
	if errors.Is(err, storage.ErrNotFound) {
		a.sessions.Clear(userID)
		return c.Send("❌ Товар не найден. Начните заказ заново.", clientMenu())
	}
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}

	form.Phone = text
	a.sessions.SetState(userID, StateOrderConfirm)

	summary := fmt.Sprintf(
		"📦 Подтверждение заказа\n\n"+
			"Товар: %s\nКоличество: %d шт\nГород: %s\nПункт выдачи: %s\nАдрес: %s\nКонтакт: %s\n\n"+
			"Подтвердить заказ?",
		product.Name, form.Quantity, form.City,
		form.Selected.Name, pvzDisplayAddress(*form.Selected), form.Phone,
	)
	return c.Send(summary, orderConfirmationKeyboard())
}

func (a *App) cbOrderCancel(c tele.Context) error {
	a.sessions.Clear(c.Sender().ID)
	if err := c.Edit("Оформление заказа отменено."); err != nil {
		return c.Send("Оформление заказа отменено.", clientMenu())
	}
	return nil
}

func (a *App) cbOrderConfirm(c tele.Context) error {
	userID := c.Sender().ID
	if a.sessions.GetState(userID) != StateOrderConfirm {
		return nil
	}
	form, ok := state.FormAs[OrderForm](a.sessions, userID)
	if !ok || form.Selected == nil {
		return a.staleSession(c)
	}
	ctx := tghelpers.BuildContext(c)

	product, err := a.store.GetProduct(ctx, form.ProductID)
	if errors.Is(err, storage.ErrNotFound) {
		a.sessions.Clear(userID)
		return c.Send("❌ Товар не найден. Начните заказ заново.", clientMenu())
	}
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}

	unitPrice := pricing.ExtractPrice(product.Price)
	total := unitPrice * float64(form.Quantity)
	order := models.Order{
		UserID:       userID,
		ProductID:    &product.ID,
		ProductName:  product.Name,
		Quantity:     form.Quantity,
		PricePerUnit: pricing.FormatPrice(unitPrice),
		TotalPrice:   pricing.FormatPrice(total),
		Status:       models.OrderStatusCompleted,
	}
	if err := a.store.RecordOrder(ctx, &order); err != nil {
		return fmt.Errorf("record order: %w", err)
	}
	a.sessions.Clear(userID)

	sender := c.Sender()
	username := "—"
	if sender.Username != "" {
		username = "@" + sender.Username
	}
	info := fmt.Sprintf(
		"🆕 Новый заказ\n\n"+
			"👤 Пользователь: %s (ID: %d)\nИмя: %s\n📞 Телефон: %s\n\n"+
			"📦 Товар: %s\n⚖️ Количество: %d шт\n🏙️ Город: %s\n📍 ПВЗ: %s\n🏠 Адрес: %s",
		username, sender.ID, sender.FirstName, form.Phone,
		product.Name, form.Quantity, form.City,
		form.Selected.Name, pvzDisplayAddress(*form.Selected),
	)
	if err := a.notifier.AdminText(c, info); err != nil {
		logger.Warn(ctx, "service.orders", "order.notify",
			slog.String("status", "fail"),
			slog.Int64("order_id", order.ID),
			slog.String("err", err.Error()),
		)
	}

	return c.Edit("✅ Заказ оформлен! Администратор скоро свяжется с вами.")
}
