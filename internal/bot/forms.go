package bot

import (
	"teashop/core/telegram/state"
	"teashop/internal/models"
)

// Conversation states. Each multi-step scenario owns a disjoint set; the
// session manager keeps at most one active state per user.
const (
	StateAddPhoto       state.State = "add_product.photo"
	StateAddName        state.State = "add_product.name"
	StateAddWeight      state.State = "add_product.weight"
	StateAddDescription state.State = "add_product.description"
	StateAddPrice       state.State = "add_product.price"

	// StateEditMenu waits for a field choice via inline buttons; text
	// arriving in this state is ignored.
	StateEditMenu        state.State = "edit_product.menu"
	StateEditPhoto       state.State = "edit_product.photo"
	StateEditName        state.State = "edit_product.name"
	StateEditWeight      state.State = "edit_product.weight"
	StateEditDescription state.State = "edit_product.description"
	StateEditPrice       state.State = "edit_product.price"

	StateReviewSelectProduct state.State = "review.select_product"
	StateReviewText          state.State = "review.text"
	StateReviewPhoto         state.State = "review.photo"
	StateReviewContact       state.State = "review.contact"

	StateReviewEditText    state.State = "review_edit.text"
	StateReviewEditContact state.State = "review_edit.contact"

	StateOrderSelectProduct state.State = "order.select_product"
	StateOrderQuantity      state.State = "order.quantity"
	StateOrderCity          state.State = "order.city"
	StateOrderSelectPVZ     state.State = "order.select_pvz"
	StateOrderPhone         state.State = "order.phone"
	StateOrderConfirm       state.State = "order.confirm"

	StateSuggestText    state.State = "suggestion.text"
	StateSuggestPhoto   state.State = "suggestion.photo"
	StateSuggestContact state.State = "suggestion.contact"
)

// AddProductForm accumulates a new catalog item field by field.
type AddProductForm struct {
	PhotoFileID string
	Name        string
	Weight      string
	Description string
	Price       string
}

// Product converts the collected answers into a catalog item.
func (f *AddProductForm) Product() models.Product {
	return models.Product{
		Name:        f.Name,
		Weight:      f.Weight,
		Description: f.Description,
		Price:       f.Price,
		PhotoFileID: f.PhotoFileID,
	}
}

// EditProductForm shadows edited fields of an existing product. Nil means
// the field was not touched this session; the stored row stays authoritative
// until the admin confirms.
type EditProductForm struct {
	ProductID int64

	NewPhotoFileID *string
	NewName        *string
	NewWeight      *string
	NewDescription *string
	NewPrice       *string
}

// Changed reports whether any field has a pending edit.
func (f *EditProductForm) Changed() bool {
	return f.NewPhotoFileID != nil || f.NewName != nil || f.NewWeight != nil ||
		f.NewDescription != nil || f.NewPrice != nil
}

// Apply merges pending edits over the given product.
func (f *EditProductForm) Apply(p models.Product) models.Product {
	if f.NewPhotoFileID != nil {
		p.PhotoFileID = *f.NewPhotoFileID
	}
	if f.NewName != nil {
		p.Name = *f.NewName
	}
	if f.NewWeight != nil {
		p.Weight = *f.NewWeight
	}
	if f.NewDescription != nil {
		p.Description = *f.NewDescription
	}
	if f.NewPrice != nil {
		p.Price = *f.NewPrice
	}
	return p
}

// ReviewForm accumulates a product review.
type ReviewForm struct {
	ProductID   int64
	Text        string
	PhotoFileID *string
}

// ReviewEditForm accumulates changes to an existing review. Ownership is
// verified before the session starts.
type ReviewEditForm struct {
	ReviewID int64
	NewText  string
}

// OrderForm accumulates a pickup-point order. The PVZ list is fetched once
// per city lookup and paginated from the session.
type OrderForm struct {
	ProductID int64
	Quantity  int
	City      string
	CityCode  int

	PVZ  []models.PickupPoint
	Page int

	Selected *models.PickupPoint
	Phone    string
}

// SuggestionForm accumulates a feedback message for the administrator.
type SuggestionForm struct {
	Text        string
	PhotoFileID *string
}
