package models

import "time"

// Product is a catalog item. Weight and Price are stored as entered by the
// administrator (validated positive numbers); Price keeps its text form so
// historical orders can carry currency-formatted snapshots.
type Product struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Weight      string `db:"weight"`
	Description string `db:"description"`
	Price       string `db:"price"`
	PhotoFileID string `db:"photo_file_id"`
}

// Review is customer feedback, optionally tied to a product and a photo.
// UserID and ProductID are immutable after creation; only Text and Contact
// may be edited, and only by the author.
type Review struct {
	ID          int64     `db:"id"`
	Text        string    `db:"text"`
	Contact     *string   `db:"contact"`
	PhotoFileID *string   `db:"photo_file_id"`
	UserID      *int64    `db:"user_id"`
	ProductID   *int64    `db:"product_id"`
	CreatedAt   time.Time `db:"created_at"`
}

// Order denormalizes the product name and unit price at purchase time so
// later catalog edits do not rewrite history. Price fields keep the text
// form the statistics aggregation parses.
type Order struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	ProductID    *int64    `db:"product_id"`
	ProductName  string    `db:"product_name"`
	Quantity     int       `db:"quantity"`
	PricePerUnit string    `db:"price_per_unit"`
	TotalPrice   string    `db:"total_price"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
}

// OrderStatusCompleted is assigned to orders confirmed through the bot.
const OrderStatusCompleted = "completed"

// PickupPoint is a CDEK point of delivery. Fetched live per city query and
// held only inside an order session; never persisted.
type PickupPoint struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Address        string `json:"address"`
	AddressComment string `json:"address_comment"`
}

// ProductSales counts units sold for one product name.
type ProductSales struct {
	Name     string `db:"product_name"`
	Quantity int    `db:"total_qty"`
}

// SalesStats aggregates the admin statistics view.
type SalesStats struct {
	ActiveUsers  int
	Sold         []ProductSales
	TotalRevenue float64
}
