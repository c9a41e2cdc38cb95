package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeInvoiceNumber(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"lowercase and hyphen", "inv-001", "INV001"},
		{"uppercase with separator", "INV-001", "INV001"},
		{"internal whitespace", "  INV 001 ", "INV001"},
		{"slash and hash", "2024/INV#42", "2024INV42"},
		{"leading zeros", "000123", "123"},
		{"only zeros", "0000", ""},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeInvoiceNumber(tt.raw))
		})
	}
}

func TestDigitsOf(t *testing.T) {
	assert.Equal(t, "001", DigitsOf("INV-001"))
	assert.Equal(t, "202442", DigitsOf("2024/INV#42"))
	assert.Equal(t, "", DigitsOf("DRAFT"))
	assert.Equal(t, "", DigitsOf(""))
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2024-03-15", "2024-03-15"},
		{"15-03-2024", "2024-03-15"},
		{"15/03/2024", "2024-03-15"},
		{"2024/03/15", "2024-03-15"},
		{"15-Mar-2024", "2024-03-15"},
		{" 2024-03-15 ", "2024-03-15"},
		{"not a date", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDate(tt.raw), "input %q", tt.raw)
	}
}

func TestMonthOf(t *testing.T) {
	assert.Equal(t, "2024-03", MonthOf("15/03/2024"))
	assert.Equal(t, "", MonthOf("garbage"))
	assert.Equal(t, "", MonthOf(""))
}

func TestPartyKey(t *testing.T) {
	assert.Equal(t, "27AAPFU0939F1ZV", PartyKey(" 27aapfu0939f1zv ", "Acme"))
	assert.Equal(t, "Acme Traders", PartyKey("", " Acme Traders "))
	assert.Equal(t, "unknown", PartyKey("", ""))
}
