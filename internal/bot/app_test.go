package bot

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"teashop/internal/cdek"
	"teashop/internal/config"
	"teashop/internal/models"
	"teashop/internal/pricing"
	"teashop/internal/storage/stubs"
)

func newTestApp(t *testing.T) (*App, *stubs.MockStore) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Core.Telegram.AdminID = 42
	cfg.Shop.StoreURL = "https://example.com/shop"
	cfg.Shop.ReviewsPerPage = 3
	cfg.Shop.PickupPointsPerPage = 5
	cfg.Shop.ContactSkipValues = []string{"нет", "-", ".", "пропустить", "", "none", "skip"}

	store := stubs.NewMockStore()
	return New(cfg, store, cdek.New(cdek.Config{ClientID: "id", ClientSecret: "secret"})), store
}

func TestIsSkipValue(t *testing.T) {
	app, _ := newTestApp(t)

	skip := []string{"нет", "НЕТ", " Пропустить ", "-", ".", "skip", "None", ""}
	for _, s := range skip {
		assert.True(t, app.isSkipValue(s), "expected skip: %q", s)
	}
	keep := []string{"@username", "+7 999 123-45-67", "нет, пишите сюда"}
	for _, s := range keep {
		assert.False(t, app.isSkipValue(s), "expected contact: %q", s)
	}
}

func TestOwnsReview(t *testing.T) {
	author := int64(7)
	rev := models.Review{UserID: &author}
	assert.True(t, ownsReview(rev, 7))
	assert.False(t, ownsReview(rev, 8))
	assert.False(t, ownsReview(models.Review{}, 7), "anonymous review is not editable")
}

func TestIsNotModified(t *testing.T) {
	assert.False(t, isNotModified(nil))
	assert.True(t, isNotModified(tele.ErrSameMessageContent))
	assert.True(t, isNotModified(tele.ErrMessageNotModified))
	assert.True(t, isNotModified(fmt.Errorf("edit page: %w", tele.ErrMessageNotModified)))
	assert.True(t, isNotModified(errors.New("telegram: Bad Request: message is not modified (400)")))
	assert.False(t, isNotModified(errors.New("telegram: Bad Request: chat not found (400)")))
}

func TestOrderCancelWords(t *testing.T) {
	for _, s := range []string{"отмена", "Назад", " ОТМЕНА ", "❌ Отменить"} {
		assert.True(t, isOrderCancelWord(s), "expected cancel: %q", s)
	}
	for _, s := range []string{"Москва", "2", "+7 999 123-45-67", ""} {
		assert.False(t, isOrderCancelWord(s), "expected not cancel: %q", s)
	}
}

func TestOrderTotalSnapshot(t *testing.T) {
	_, store := newTestApp(t)
	ctx := context.Background()

	product := models.Product{Name: "Габа", Price: "300 ₽"}
	require.NoError(t, store.SaveProduct(ctx, &product))

	// The confirmation handler computes the total from the extracted unit
	// price times quantity and records a completed order.
	unit := pricing.ExtractPrice(product.Price)
	qty := 2
	order := models.Order{
		UserID:       7,
		ProductID:    &product.ID,
		ProductName:  product.Name,
		Quantity:     qty,
		PricePerUnit: pricing.FormatPrice(unit),
		TotalPrice:   pricing.FormatPrice(unit * float64(qty)),
	}
	require.NoError(t, store.RecordOrder(ctx, &order))

	assert.Equal(t, "300.00", order.PricePerUnit)
	assert.Equal(t, "600.00", order.TotalPrice)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)

	stats, err := store.SalesStatistics(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 600, stats.TotalRevenue, 1e-9)
}
