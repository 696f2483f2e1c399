package bot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teashop/internal/models"
)

func TestExtractStreetAddress(t *testing.T) {
	cases := []struct {
		name string
		full string
		city string
		want string
	}{
		{"g-dot prefix", "г. Новосибирск, ул. Ленина, 1", "Новосибирск", "ул. Ленина, 1"},
		{"gorod prefix", "город Новосибирск, ул. Кирова, 25", "Новосибирск", "ул. Кирова, 25"},
		{"bare city", "Новосибирск, Красный проспект, 99", "Новосибирск", "Красный проспект, 99"},
		{"case insensitive", "Г.НОВОСИБИРСК, ул. Мира, 7", "новосибирск", "ул. Мира, 7"},
		{"city only falls back to full", "г. Новосибирск", "Новосибирск", "г. Новосибирск"},
		{"no city in address", "ул. Советская, 3", "Новосибирск", "ул. Советская, 3"},
		{"empty city", "г. Новосибирск, ул. Ленина, 1", "", "г. Новосибирск, ул. Ленина, 1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractStreetAddress(tc.full, tc.city))
		})
	}
}

func TestPvzButtonLabel(t *testing.T) {
	short := models.PickupPoint{Code: "NSK1", Address: "г. Новосибирск, ул. Ленина, 1"}
	assert.Equal(t, "ул. Ленина, 1", pvzButtonLabel(short, "Новосибирск"))

	long := models.PickupPoint{
		Code:    "NSK2",
		Address: "ул. Очень Длинное Название Проспекта Имени Строителей Коммунизма, дом 117, корпус 3",
	}
	label := pvzButtonLabel(long, "Новосибирск")
	assert.LessOrEqual(t, len([]rune(label)), 60)
	assert.True(t, strings.HasSuffix(label, "..."))

	nameOnly := models.PickupPoint{Code: "NSK3", Name: "На Ленина"}
	assert.Equal(t, "На Ленина", pvzButtonLabel(nameOnly, "Новосибирск"))

	bare := models.PickupPoint{Code: "NSK4"}
	assert.Equal(t, "ПВЗ NSK4", pvzButtonLabel(bare, "Новосибирск"))
}

func TestPvzPaginationKeyboard(t *testing.T) {
	points := make([]models.PickupPoint, 12)
	for i := range points {
		points[i] = models.PickupPoint{Code: "P" + strings.Repeat("0", i)}
	}

	first := pvzPaginationKeyboard(points, "Москва", 0, 5)
	// 5 points + nav row + cancel row.
	require.Len(t, first.InlineKeyboard, 7)
	nav := first.InlineKeyboard[5]
	require.Len(t, nav, 1)
	assert.Equal(t, "➡️ Вперёд", nav[0].Text)

	middle := pvzPaginationKeyboard(points, "Москва", 1, 5)
	require.Len(t, middle.InlineKeyboard, 7)
	assert.Len(t, middle.InlineKeyboard[5], 2, "middle page navigates both ways")

	last := pvzPaginationKeyboard(points, "Москва", 2, 5)
	// 2 remaining points + nav row + cancel row.
	require.Len(t, last.InlineKeyboard, 4)
	nav = last.InlineKeyboard[2]
	require.Len(t, nav, 1)
	assert.Equal(t, "⬅️ Назад", nav[0].Text)

	cancel := last.InlineKeyboard[3]
	require.Len(t, cancel, 1)
	assert.Equal(t, "❌ Отменить", cancel[0].Text)
}

func TestReviewsPaginationKeyboard(t *testing.T) {
	first := reviewsPaginationKeyboard(5, 1, 3)
	require.Len(t, first.InlineKeyboard, 1)
	nav := first.InlineKeyboard[0]
	require.Len(t, nav, 3)
	assert.Equal(t, " ", nav[0].Text, "no prev on first page")
	assert.Equal(t, "1 / 3", nav[1].Text)
	assert.Equal(t, "Вперёд →", nav[2].Text)
	assert.Equal(t, "5|2", nav[2].Data)

	nav = reviewsPaginationKeyboard(5, 2, 3).InlineKeyboard[0]
	assert.Equal(t, "← Назад", nav[0].Text)
	assert.Equal(t, "5|1", nav[0].Data)
	assert.Equal(t, "5|3", nav[2].Data)

	nav = reviewsPaginationKeyboard(5, 3, 3).InlineKeyboard[0]
	assert.Equal(t, " ", nav[2].Text, "no next on last page")

	nav = reviewsPaginationKeyboard(5, 1, 1).InlineKeyboard[0]
	assert.Equal(t, "1 / 1", nav[1].Text)
	assert.Equal(t, " ", nav[0].Text)
	assert.Equal(t, " ", nav[2].Text)
}

func TestProductChoiceKeyboard(t *testing.T) {
	products := []models.Product{
		{ID: 1, Name: "Сенча"},
		{ID: 2, Name: "Габа"},
	}
	kb := productChoiceKeyboard(products, cbOrderProduct)
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Equal(t, "Сенча", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "1", kb.InlineKeyboard[0][0].Data)
	assert.Equal(t, "2", kb.InlineKeyboard[1][0].Data)
}
