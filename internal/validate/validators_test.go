package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPositiveNumber(t *testing.T) {
	valid := []string{"1", "3.5", "3,5", " 10 ", "0.01"}
	for _, s := range valid {
		assert.True(t, IsPositiveNumber(s), "expected valid: %q", s)
	}
	invalid := []string{"", "0", "-1", "abc", "1.2.3", " "}
	for _, s := range invalid {
		assert.False(t, IsPositiveNumber(s), "expected invalid: %q", s)
	}
}

func TestIsPositiveInt(t *testing.T) {
	assert.True(t, IsPositiveInt("2"))
	assert.True(t, IsPositiveInt(" 15 "))
	assert.False(t, IsPositiveInt("0"))
	assert.False(t, IsPositiveInt("-3"))
	assert.False(t, IsPositiveInt("2.5"))
	assert.False(t, IsPositiveInt("два"))
}

func TestIsPhone(t *testing.T) {
	valid := []string{
		"+7 999 123-45-67",
		"8(999)1234567",
		"79991234567",
		"999 123 45 67",
		"8 999 123 45 67",
	}
	for _, s := range valid {
		assert.True(t, IsPhone(s), "expected valid: %q", s)
	}
	invalid := []string{
		"",
		"12345",
		"привет",
		"+1 202 555 0100 0",
		"999-123-45",
	}
	for _, s := range invalid {
		assert.False(t, IsPhone(s), "expected invalid: %q", s)
	}
}
