// Package pg implements storage.Store on PostgreSQL via sqlx.
package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"log/slog"

	"github.com/jmoiron/sqlx"

	"teashop/core/logger"
	"teashop/internal/models"
	"teashop/internal/pricing"
	"teashop/internal/storage"
)

// Store wraps a sqlx connection pool. Schema is managed by migrations,
// not by the store itself.
type Store struct {
	db *sqlx.DB
}

var _ storage.Store = (*Store)(nil)

// New wraps an already-connected pool.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		`SELECT id, name, weight, description, price, photo_file_id
		 FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	var p models.Product
	err := s.db.GetContext(ctx, &p,
		`SELECT id, name, weight, description, price, photo_file_id
		 FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *Store) SaveProduct(ctx context.Context, p *models.Product) error {
	if p.ID == 0 {
		err := s.db.QueryRowxContext(ctx,
			`INSERT INTO products (name, weight, description, price, photo_file_id)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			p.Name, p.Weight, p.Description, p.Price, p.PhotoFileID,
		).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		logger.Info(ctx, "service.catalog", "product.create",
			slog.String("status", "ok"),
			slog.Int64("product_id", p.ID),
		)
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE products
		 SET name = $1, weight = $2, description = $3, price = $4, photo_file_id = $5
		 WHERE id = $6`,
		p.Name, p.Weight, p.Description, p.Price, p.PhotoFileID, p.ID)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	logger.Info(ctx, "service.catalog", "product.update",
		slog.String("status", "ok"),
		slog.Int64("product_id", p.ID),
	)
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	// reviews referencing the product are removed by ON DELETE CASCADE
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	if n > 0 {
		logger.Info(ctx, "service.catalog", "product.delete",
			slog.String("status", "ok"),
			slog.Int64("product_id", id),
		)
	}
	return n > 0, nil
}

func (s *Store) AddReview(ctx context.Context, r *models.Review) error {
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO reviews (text, contact, photo_file_id, user_id, product_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		r.Text, r.Contact, r.PhotoFileID, r.UserID, r.ProductID,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	logger.Info(ctx, "service.reviews", "review.create",
		slog.String("status", "ok"),
		slog.Int64("review_id", r.ID),
	)
	return nil
}

func (s *Store) GetReview(ctx context.Context, id int64) (models.Review, error) {
	var r models.Review
	err := s.db.GetContext(ctx, &r,
		`SELECT id, text, contact, photo_file_id, user_id, product_id, created_at
		 FROM reviews WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Review{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Review{}, fmt.Errorf("get review: %w", err)
	}
	return r, nil
}

func (s *Store) RecentReviews(ctx context.Context, limit int) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.SelectContext(ctx, &reviews,
		`SELECT id, text, contact, photo_file_id, user_id, product_id, created_at
		 FROM reviews ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent reviews: %w", err)
	}
	return reviews, nil
}

func (s *Store) UserReviews(ctx context.Context, userID int64, limit int) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.SelectContext(ctx, &reviews,
		`SELECT id, text, contact, photo_file_id, user_id, product_id, created_at
		 FROM reviews WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("user reviews: %w", err)
	}
	return reviews, nil
}

func (s *Store) ProductReviews(ctx context.Context, productID int64, page, perPage int) (storage.ReviewPage, error) {
	var total int
	err := s.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM reviews WHERE product_id = $1`, productID)
	if err != nil {
		return storage.ReviewPage{}, fmt.Errorf("count product reviews: %w", err)
	}

	page, totalPages := storage.ClampPage(page, perPage, total)

	var reviews []models.Review
	err = s.db.SelectContext(ctx, &reviews,
		`SELECT id, text, contact, photo_file_id, user_id, product_id, created_at
		 FROM reviews WHERE product_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		productID, perPage, (page-1)*perPage)
	if err != nil {
		return storage.ReviewPage{}, fmt.Errorf("product reviews: %w", err)
	}
	return storage.ReviewPage{Items: reviews, Page: page, TotalPages: totalPages}, nil
}

func (s *Store) UpdateReview(ctx context.Context, id int64, text string, contact *string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reviews SET text = $1, contact = $2 WHERE id = $3`,
		text, contact, id)
	if err != nil {
		return false, fmt.Errorf("update review: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update review: %w", err)
	}
	return n > 0, nil
}

func (s *Store) DeleteReview(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete review: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete review: %w", err)
	}
	return n > 0, nil
}

func (s *Store) AddUser(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id) VALUES ($1) ON CONFLICT DO NOTHING`, userID)
	if err != nil {
		return fmt.Errorf("add user: %w", err)
	}
	return nil
}

func (s *Store) ActiveUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.SelectContext(ctx, &ids, `SELECT user_id FROM users`)
	if err != nil {
		return nil, fmt.Errorf("active users: %w", err)
	}
	return ids, nil
}

func (s *Store) RecordOrder(ctx context.Context, o *models.Order) error {
	if o.Status == "" {
		o.Status = models.OrderStatusCompleted
	}
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO orders (user_id, product_id, product_name, quantity,
		                     price_per_unit, total_price, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`,
		o.UserID, o.ProductID, o.ProductName, o.Quantity,
		o.PricePerUnit, o.TotalPrice, o.Status,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("record order: %w", err)
	}
	logger.Info(ctx, "service.orders", "order.record",
		slog.String("status", "ok"),
		slog.Int64("order_id", o.ID),
		slog.Int("quantity", o.Quantity),
	)
	return nil
}

// SalesStatistics aggregates quantities in SQL but sums revenue in Go:
// total_price is free-form text ("1 500 ₽" included), so each value goes
// through the price extractor rather than a CAST.
func (s *Store) SalesStatistics(ctx context.Context) (models.SalesStats, error) {
	var stats models.SalesStats

	if err := s.db.GetContext(ctx, &stats.ActiveUsers,
		`SELECT COUNT(*) FROM users`); err != nil {
		return models.SalesStats{}, fmt.Errorf("count users: %w", err)
	}

	if err := s.db.SelectContext(ctx, &stats.Sold,
		`SELECT product_name, SUM(quantity) AS total_qty
		 FROM orders GROUP BY product_name
		 ORDER BY total_qty DESC`); err != nil {
		return models.SalesStats{}, fmt.Errorf("sold products: %w", err)
	}

	var totals []string
	if err := s.db.SelectContext(ctx, &totals,
		`SELECT total_price FROM orders`); err != nil {
		return models.SalesStats{}, fmt.Errorf("order totals: %w", err)
	}
	for _, t := range totals {
		stats.TotalRevenue += pricing.ExtractPrice(t)
	}
	return stats, nil
}

func (s *Store) ClearStatistics(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM orders`); err != nil {
		return fmt.Errorf("clear statistics: %w", err)
	}
	logger.Warn(ctx, "service.orders", "stats.clear",
		slog.String("status", "ok"),
	)
	return nil
}
