package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"teashop/internal/models"
)

func strptr(s string) *string { return &s }

func TestAddProductFormProduct(t *testing.T) {
	f := AddProductForm{
		PhotoFileID: "photo-1",
		Name:        "Да Хун Пао",
		Weight:      "50",
		Description: "утёсный улун",
		Price:       "1500.00",
	}
	p := f.Product()
	assert.Zero(t, p.ID, "new products get their id from storage")
	assert.Equal(t, "Да Хун Пао", p.Name)
	assert.Equal(t, "photo-1", p.PhotoFileID)
	assert.Equal(t, "1500.00", p.Price)
}

func TestEditProductFormChanged(t *testing.T) {
	f := EditProductForm{ProductID: 3}
	assert.False(t, f.Changed())

	f.NewPrice = strptr("1600.00")
	assert.True(t, f.Changed())
}

func TestEditProductFormApply(t *testing.T) {
	current := models.Product{
		ID:          3,
		Name:        "Сенча",
		Weight:      "100",
		Description: "японский зелёный",
		Price:       "500.00",
		PhotoFileID: "old-photo",
	}
	f := EditProductForm{
		ProductID:      3,
		NewName:        strptr("Сенча премиум"),
		NewPhotoFileID: strptr("new-photo"),
	}

	updated := f.Apply(current)
	assert.Equal(t, "Сенча премиум", updated.Name)
	assert.Equal(t, "new-photo", updated.PhotoFileID)
	assert.Equal(t, "500.00", updated.Price, "untouched fields keep stored values")
	assert.Equal(t, "100", updated.Weight)
	assert.Equal(t, int64(3), updated.ID)

	assert.Equal(t, "Сенча", current.Name, "Apply must not mutate its input")
}
