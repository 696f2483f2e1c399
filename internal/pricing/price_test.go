package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPrice(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want float64
	}{
		{"plain integer", "300", 300},
		{"ruble sign with space", "1 500 ₽", 1500},
		{"decimal dot", "299.50 ₽", 299.5},
		{"decimal comma", "299,50", 299.5},
		{"comma as thousands next to dot", "1,500.00", 1500},
		{"text around number", "цена 450 руб.", 450},
		{"empty", "", 0},
		{"no digits", "дорого", 0},
		{"garbage separators", "..,,", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, ExtractPrice(tc.in), 1e-9)
		})
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "600.00", FormatPrice(600))
	assert.Equal(t, "299.50", FormatPrice(299.5))
	assert.Equal(t, "0.00", FormatPrice(0))
}

func TestFormatExtractRoundTrip(t *testing.T) {
	unit := ExtractPrice("300 ₽")
	total := FormatPrice(unit * 2)
	assert.Equal(t, "600.00", total)
	assert.InDelta(t, 600, ExtractPrice(total), 1e-9)
}
