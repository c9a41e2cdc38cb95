package matcher

import (
	"github.com/shopspring/decimal"

	"gst-recon/internal/domain"
)

// Compared field names, as they appear in discrepancy reports.
const (
	FieldTaxableValue  = "taxable_value"
	FieldCGST          = "cgst"
	FieldSGST          = "sgst"
	FieldIGST          = "igst"
	FieldTotal         = "total"
	FieldGSTIN         = "gstin"
	FieldInvoiceDate   = "invoice_date"
	FieldInvoiceNumber = "invoice_number"
)

// compareInvoices checks a matched pair field by field and returns the
// discrepancy list plus the signed book-minus-return total delta. Every
// monetary field is compared unconditionally so reports always carry the
// full field-level breakdown.
func compareInvoices(book, ret domain.Invoice, opts MatchOptions) ([]domain.Discrepancy, decimal.Decimal) {
	var discrepancies []domain.Discrepancy

	monetary := []struct {
		field string
		left  decimal.Decimal
		right decimal.Decimal
	}{
		{FieldTaxableValue, book.TaxableValue, ret.TaxableValue},
		{FieldCGST, book.CGST, ret.CGST},
		{FieldSGST, book.SGST, ret.SGST},
		{FieldIGST, book.IGST, ret.IGST},
		{FieldTotal, book.Total, ret.Total},
	}

	for _, m := range monetary {
		delta := m.left.Sub(m.right)
		if delta.Abs().GreaterThan(opts.Tolerance) {
			d := delta
			discrepancies = append(discrepancies, domain.Discrepancy{
				Field:      m.field,
				LeftValue:  m.left.String(),
				RightValue: m.right.String(),
				Delta:      &d,
				Severity:   opts.severityFor(delta),
			})
		}
	}

	leftGSTIN := NormalizeGSTIN(book.GSTIN)
	rightGSTIN := NormalizeGSTIN(ret.GSTIN)
	// Two empty ids (consumer-facing on both sides) are not a mismatch.
	if leftGSTIN != rightGSTIN {
		discrepancies = append(discrepancies, domain.Discrepancy{
			Field:      FieldGSTIN,
			LeftValue:  book.GSTIN,
			RightValue: ret.GSTIN,
			Severity:   domain.SeverityHigh,
		})
	}

	leftDate := NormalizeDate(book.InvoiceDate)
	rightDate := NormalizeDate(ret.InvoiceDate)
	if leftDate != rightDate {
		discrepancies = append(discrepancies, domain.Discrepancy{
			Field:      FieldInvoiceDate,
			LeftValue:  book.InvoiceDate,
			RightValue: ret.InvoiceDate,
			Severity:   domain.SeverityMedium,
		})
	}

	return discrepancies, book.Total.Sub(ret.Total)
}

// severityFor bands a monetary delta: the wider the gap, the higher the tier.
func (o MatchOptions) severityFor(delta decimal.Decimal) domain.Severity {
	abs := delta.Abs()
	switch {
	case abs.GreaterThan(o.HighSeverityDelta):
		return domain.SeverityHigh
	case abs.GreaterThan(o.MediumSeverityDelta):
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}
