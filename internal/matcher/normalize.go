package matcher

import (
	"strings"
	"time"
	"unicode"
)

// separator characters commonly found in hand-entered invoice numbers.
const separators = "-/_.\\:#"

// NormalizeInvoiceNumber canonicalizes an invoice number for key lookup:
// trim, uppercase, drop whitespace and separator characters, strip leading
// zeros. An empty or absent number normalizes to "" and is unmatchable.
func NormalizeInvoiceNumber(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(raw)) {
		if unicode.IsSpace(r) || strings.ContainsRune(separators, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimLeft(b.String(), "0")
}

// DigitsOf returns the digit subsequence of raw, used as strong corroboration
// during fuzzy matching. Leading zeros are kept, so "INV/001" corroborates
// "001" but not "1".
func DigitsOf(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeGSTIN canonicalizes a counterparty registration id for comparison.
func NormalizeGSTIN(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

var dateFormats = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"02-Jan-2006",
	time.RFC3339,
}

// NormalizeDate parses a free-form day-precision date and renders it as
// YYYY-MM-DD. Unparseable or empty input yields "".
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// MonthOf returns the YYYY-MM month of a free-form date, or "" when the date
// cannot be normalized.
func MonthOf(raw string) string {
	d := NormalizeDate(raw)
	if d == "" {
		return ""
	}
	return d[:7]
}

// unknownParty is the breakdown bucket for invoices with neither a
// registration id nor a party name.
const unknownParty = "unknown"

// PartyKey picks the counterparty breakdown key: registration id first, then
// party name, then the unknown sentinel.
func PartyKey(gstin, name string) string {
	if k := NormalizeGSTIN(gstin); k != "" {
		return k
	}
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return unknownParty
}
