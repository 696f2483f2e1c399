// Package stubs provides an in-memory storage.Store for tests.
package stubs

import (
	"context"
	"sort"
	"sync"
	"time"

	"teashop/internal/models"
	"teashop/internal/pricing"
	"teashop/internal/storage"
)

// MockStore is an in-memory implementation of storage.Store. It mirrors
// the relational semantics the Postgres store relies on, including the
// cascade from products to their reviews and the SET NULL on orders.
type MockStore struct {
	mu       sync.RWMutex
	products map[int64]models.Product
	reviews  map[int64]models.Review
	users    map[int64]struct{}
	orders   []models.Order

	nextProductID int64
	nextReviewID  int64
	nextOrderID   int64
}

var _ storage.Store = (*MockStore)(nil)

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		products: make(map[int64]models.Product),
		reviews:  make(map[int64]models.Review),
		users:    make(map[int64]struct{}),
	}
}

func (m *MockStore) Close() error { return nil }

func (m *MockStore) ListProducts(_ context.Context) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockStore) GetProduct(_ context.Context, id int64) (models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return models.Product{}, storage.ErrNotFound
	}
	return p, nil
}

func (m *MockStore) SaveProduct(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == 0 {
		m.nextProductID++
		p.ID = m.nextProductID
	}
	m.products[p.ID] = *p
	return nil
}

func (m *MockStore) DeleteProduct(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return false, nil
	}
	delete(m.products, id)
	for rid, r := range m.reviews {
		if r.ProductID != nil && *r.ProductID == id {
			delete(m.reviews, rid)
		}
	}
	for i := range m.orders {
		if m.orders[i].ProductID != nil && *m.orders[i].ProductID == id {
			m.orders[i].ProductID = nil
		}
	}
	return true, nil
}

func (m *MockStore) AddReview(_ context.Context, r *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextReviewID++
	r.ID = m.nextReviewID
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	m.reviews[r.ID] = *r
	return nil
}

func (m *MockStore) GetReview(_ context.Context, id int64) (models.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reviews[id]
	if !ok {
		return models.Review{}, storage.ErrNotFound
	}
	return r, nil
}

func (m *MockStore) RecentReviews(_ context.Context, limit int) ([]models.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return limitReviews(m.sortedReviews(nil), limit), nil
}

func (m *MockStore) UserReviews(_ context.Context, userID int64, limit int) ([]models.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	match := func(r models.Review) bool {
		return r.UserID != nil && *r.UserID == userID
	}
	return limitReviews(m.sortedReviews(match), limit), nil
}

func (m *MockStore) ProductReviews(_ context.Context, productID int64, page, perPage int) (storage.ReviewPage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	match := func(r models.Review) bool {
		return r.ProductID != nil && *r.ProductID == productID
	}
	all := m.sortedReviews(match)

	page, totalPages := storage.ClampPage(page, perPage, len(all))
	start := (page - 1) * perPage
	end := start + perPage
	if start > len(all) {
		start = len(all)
	}
	if end > len(all) {
		end = len(all)
	}
	return storage.ReviewPage{Items: all[start:end], Page: page, TotalPages: totalPages}, nil
}

func (m *MockStore) UpdateReview(_ context.Context, id int64, text string, contact *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reviews[id]
	if !ok {
		return false, nil
	}
	r.Text = text
	r.Contact = contact
	m.reviews[id] = r
	return true, nil
}

func (m *MockStore) DeleteReview(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reviews[id]; !ok {
		return false, nil
	}
	delete(m.reviews, id)
	return true, nil
}

func (m *MockStore) AddUser(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[userID] = struct{}{}
	return nil
}

func (m *MockStore) ActiveUserIDs(_ context.Context) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]int64, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *MockStore) RecordOrder(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextOrderID++
	o.ID = m.nextOrderID
	if o.Status == "" {
		o.Status = models.OrderStatusCompleted
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	m.orders = append(m.orders, *o)
	return nil
}

func (m *MockStore) SalesStatistics(_ context.Context) (models.SalesStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := models.SalesStats{ActiveUsers: len(m.users)}

	qty := make(map[string]int)
	for _, o := range m.orders {
		qty[o.ProductName] += o.Quantity
		stats.TotalRevenue += pricing.ExtractPrice(o.TotalPrice)
	}
	for name, n := range qty {
		stats.Sold = append(stats.Sold, models.ProductSales{Name: name, Quantity: n})
	}
	sort.Slice(stats.Sold, func(i, j int) bool {
		if stats.Sold[i].Quantity != stats.Sold[j].Quantity {
			return stats.Sold[i].Quantity > stats.Sold[j].Quantity
		}
		return stats.Sold[i].Name < stats.Sold[j].Name
	})
	return stats, nil
}

func (m *MockStore) ClearStatistics(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.orders = nil
	return nil
}

// sortedReviews returns reviews newest first, ties broken by higher ID,
// optionally filtered. Callers must hold the lock.
func (m *MockStore) sortedReviews(match func(models.Review) bool) []models.Review {
	out := make([]models.Review, 0, len(m.reviews))
	for _, r := range m.reviews {
		if match == nil || match(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func limitReviews(reviews []models.Review, limit int) []models.Review {
	if limit > 0 && len(reviews) > limit {
		return reviews[:limit]
	}
	return reviews
}
