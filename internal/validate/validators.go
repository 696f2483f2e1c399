// Package validate holds the input validators shared by the bot forms.
package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var phonePattern = regexp.MustCompile(
	`^(\+?7|8)?[\s\-]?\(?[0-9]{3}\)?[\s\-]?[0-9]{3}[\s\-]?[0-9]{2}[\s\-]?[0-9]{2}$`,
)

// IsPositiveNumber reports whether s is a strictly positive number.
// A comma is accepted as the decimal separator ("3,5").
func IsPositiveNumber(s string) bool {
	normalized := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if normalized == "" {
		return false
	}
	v, err := strconv.ParseFloat(normalized, 64)
	return err == nil && v > 0
}

// IsPositiveInt reports whether s is a strictly positive integer.
// Decimal input is rejected; order quantities must be whole.
func IsPositiveInt(s string) bool {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	return err == nil && v > 0
}

// IsPhone reports whether s looks like a Russian phone number,
// e.g. "+7 999 123-45-67", "8(999)1234567" or "79991234567".
func IsPhone(s string) bool {
	return phonePattern.MatchString(strings.TrimSpace(s))
}
