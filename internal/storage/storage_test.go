package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampPage(t *testing.T) {
	cases := []struct {
		name           string
		page, perPage  int
		total          int
		wantPage       int
		wantTotalPages int
	}{
		{"empty still one page", 1, 3, 0, 1, 1},
		{"exact single page", 1, 3, 3, 1, 1},
		{"partial last page", 2, 3, 4, 2, 2},
		{"page above range clamps down", 5, 3, 4, 2, 2},
		{"page below range clamps up", 0, 3, 10, 1, 4},
		{"negative page", -2, 3, 10, 1, 4},
		{"per page floor", 1, 0, 5, 1, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, totalPages := ClampPage(tc.page, tc.perPage, tc.total)
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, tc.wantTotalPages, totalPages)
		})
	}
}
