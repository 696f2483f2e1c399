// Package pricing parses and formats currency-looking price strings.
// Stored prices are free text ("1 500 ₽", "299.50"), so aggregation has to
// extract the numeric part defensively: unparseable input counts as zero.
package pricing

import (
	"strconv"
	"strings"
)

// ExtractPrice pulls the numeric value out of a price string.
// "1 500 ₽" -> 1500.0, "299.50 ₽" -> 299.5. A lone comma is treated as a
// decimal separator; when both comma and dot are present the comma is a
// thousands separator. Anything unparseable yields 0.
func ExtractPrice(s string) float64 {
	if s == "" {
		return 0
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0
	}
	switch {
	case strings.Contains(cleaned, ",") && strings.Contains(cleaned, "."):
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case strings.Contains(cleaned, ","):
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatPrice renders a numeric price with two decimal places, the form
// order snapshots are stored in.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
