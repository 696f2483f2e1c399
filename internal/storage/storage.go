// Package storage defines the persistence interface of the shop:
// products, reviews, known users and recorded orders.
package storage

import (
	"context"
	"errors"

	"teashop/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("storage: not found")

// ReviewPage is one page of product reviews. Page is the effective
// (clamped) 1-based page number; TotalPages is at least 1 even when the
// product has no reviews yet.
type ReviewPage struct {
	Items      []models.Review
	Page       int
	TotalPages int
}

// Store is the persistence interface used by the bot handlers.
type Store interface {
	// Product operations.
	//
	// SaveProduct inserts when p.ID is zero (assigning the new ID) and
	// updates the full row otherwise. DeleteProduct reports whether a row
	// was removed; reviews attached to the product go with it.
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (models.Product, error)
	SaveProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id int64) (bool, error)

	// Review operations.
	//
	// UpdateReview touches only text and contact; author and product
	// binding are immutable. Listing methods return newest first.
	AddReview(ctx context.Context, r *models.Review) error
	GetReview(ctx context.Context, id int64) (models.Review, error)
	RecentReviews(ctx context.Context, limit int) ([]models.Review, error)
	UserReviews(ctx context.Context, userID int64, limit int) ([]models.Review, error)
	ProductReviews(ctx context.Context, productID int64, page, perPage int) (ReviewPage, error)
	UpdateReview(ctx context.Context, id int64, text string, contact *string) (bool, error)
	DeleteReview(ctx context.Context, id int64) (bool, error)

	// User registry. AddUser is idempotent.
	AddUser(ctx context.Context, userID int64) error
	ActiveUserIDs(ctx context.Context) ([]int64, error)

	// Order ledger and sales statistics.
	RecordOrder(ctx context.Context, o *models.Order) error
	SalesStatistics(ctx context.Context) (models.SalesStats, error)
	ClearStatistics(ctx context.Context) error

	Close() error
}

// ClampPage normalizes a requested 1-based page number against a total
// item count. Totals below one page still yield page 1 of 1.
func ClampPage(page, perPage, total int) (effective, totalPages int) {
	if perPage < 1 {
		perPage = 1
	}
	totalPages = (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return page, totalPages
}
