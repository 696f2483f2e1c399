package stubs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teashop/internal/models"
	"teashop/internal/storage"
)

func ptr[T any](v T) *T { return &v }

func TestSaveProductAssignsAndUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()

	p := models.Product{Name: "Да Хун Пао", Weight: "50 г", Price: "1500.00"}
	require.NoError(t, store.SaveProduct(ctx, &p))
	require.NotZero(t, p.ID)

	p.Price = "1600.00"
	require.NoError(t, store.SaveProduct(ctx, &p))

	got, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "1600.00", got.Price)

	_, err = store.GetProduct(ctx, 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteProductCascadesReviewsAndDetachesOrders(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()

	tea := models.Product{Name: "Шу Пуэр"}
	other := models.Product{Name: "Те Гуань Инь"}
	require.NoError(t, store.SaveProduct(ctx, &tea))
	require.NoError(t, store.SaveProduct(ctx, &other))

	attached := models.Review{Text: "Отличный чай", ProductID: ptr(tea.ID)}
	detached := models.Review{Text: "Про другой", ProductID: ptr(other.ID)}
	free := models.Review{Text: "Просто отзыв"}
	require.NoError(t, store.AddReview(ctx, &attached))
	require.NoError(t, store.AddReview(ctx, &detached))
	require.NoError(t, store.AddReview(ctx, &free))

	order := models.Order{UserID: 1, ProductID: ptr(tea.ID), ProductName: tea.Name, Quantity: 1, TotalPrice: "100.00"}
	require.NoError(t, store.RecordOrder(ctx, &order))

	deleted, err := store.DeleteProduct(ctx, tea.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = store.GetReview(ctx, attached.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound, "attached review must cascade")
	_, err = store.GetReview(ctx, detached.ID)
	assert.NoError(t, err, "other product's review must survive")
	_, err = store.GetReview(ctx, free.ID)
	assert.NoError(t, err, "unattached review must survive")

	stats, err := store.SalesStatistics(ctx)
	require.NoError(t, err)
	assert.Len(t, stats.Sold, 1, "order history survives product deletion")

	deleted, err = store.DeleteProduct(ctx, tea.ID)
	require.NoError(t, err)
	assert.False(t, deleted, "second delete reports nothing removed")
}

func TestReviewListingNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		r := models.Review{
			Text:      "отзыв",
			UserID:    ptr(int64(7)),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, store.AddReview(ctx, &r))
	}

	recent, err := store.RecentReviews(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.True(t, recent[0].CreatedAt.After(recent[1].CreatedAt))

	mine, err := store.UserReviews(ctx, 7, 10)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	none, err := store.UserReviews(ctx, 8, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProductReviewsPagination(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()

	tea := models.Product{Name: "Габа"}
	require.NoError(t, store.SaveProduct(ctx, &tea))
	for i := 0; i < 7; i++ {
		r := models.Review{Text: "отзыв", ProductID: ptr(tea.ID)}
		require.NoError(t, store.AddReview(ctx, &r))
	}

	page, err := store.ProductReviews(ctx, tea.ID, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Items, 3)

	last, err := store.ProductReviews(ctx, tea.ID, 3, 3)
	require.NoError(t, err)
	assert.Len(t, last.Items, 1)

	clamped, err := store.ProductReviews(ctx, tea.ID, 99, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, clamped.Page)
	assert.Len(t, clamped.Items, 1)

	empty, err := store.ProductReviews(ctx, 424242, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, empty.Page)
	assert.Equal(t, 1, empty.TotalPages)
	assert.Empty(t, empty.Items)
}

func TestUpdateAndDeleteReview(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()

	r := models.Review{Text: "старый текст", Contact: ptr("@old")}
	require.NoError(t, store.AddReview(ctx, &r))

	ok, err := store.UpdateReview(ctx, r.ID, "новый текст", nil)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := store.GetReview(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "новый текст", got.Text)
	assert.Nil(t, got.Contact)

	ok, err = store.UpdateReview(ctx, 999, "x", nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.DeleteReview(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.DeleteReview(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddUserIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()

	require.NoError(t, store.AddUser(ctx, 100))
	require.NoError(t, store.AddUser(ctx, 100))
	require.NoError(t, store.AddUser(ctx, 200))

	ids, err := store.ActiveUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 200}, ids)
}

func TestSalesStatisticsAndClear(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()

	require.NoError(t, store.AddUser(ctx, 1))
	require.NoError(t, store.AddUser(ctx, 2))

	orders := []models.Order{
		{UserID: 1, ProductName: "Сенча", Quantity: 2, TotalPrice: "600.00"},
		{UserID: 2, ProductName: "Габа", Quantity: 5, TotalPrice: "1 500 ₽"},
		{UserID: 1, ProductName: "Сенча", Quantity: 1, TotalPrice: "300.00"},
	}
	for i := range orders {
		require.NoError(t, store.RecordOrder(ctx, &orders[i]))
		assert.Equal(t, models.OrderStatusCompleted, orders[i].Status)
	}

	stats, err := store.SalesStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ActiveUsers)
	require.Len(t, stats.Sold, 2)
	assert.Equal(t, models.ProductSales{Name: "Габа", Quantity: 5}, stats.Sold[0])
	assert.Equal(t, models.ProductSales{Name: "Сенча", Quantity: 3}, stats.Sold[1])
	assert.InDelta(t, 2400, stats.TotalRevenue, 1e-9)

	require.NoError(t, store.ClearStatistics(ctx))

	stats, err = store.SalesStatistics(ctx)
	require.NoError(t, err)
	assert.Empty(t, stats.Sold)
	assert.Zero(t, stats.TotalRevenue)
	assert.Equal(t, 2, stats.ActiveUsers, "user registry survives a stats reset")
}
