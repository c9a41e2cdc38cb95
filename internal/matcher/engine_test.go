package matcher

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"gst-recon/internal/domain"
)

func inv(number, gstin string, total float64) domain.Invoice {
	return domain.Invoice{
		InvoiceNumber: number,
		GSTIN:         gstin,
		Total:         decimal.NewFromFloat(total),
	}
}

func TestEngine_ExactMatchAfterNormalization(t *testing.T) {
	engine := NewEngine(MatchOptions{})

	books := []domain.Invoice{inv("INV-001", "GSTIN1", 1000)}
	filed := []domain.Invoice{inv("inv001", "GSTIN1", 1000)}

	result, err := engine.Reconcile(books, filed)

	assert.NoError(t, err)
	assert.Len(t, result.Matched, 1)
	assert.Empty(t, result.Matched[0].Discrepancies)
	assert.False(t, result.Matched[0].Fuzzy)
	assert.Empty(t, result.Mismatched)
	assert.Empty(t, result.MissingInReturn)
	assert.Empty(t, result.MissingInBooks)
}

func TestEngine_FuzzyMatchOnAmount(t *testing.T) {
	engine := NewEngine(MatchOptions{})

	books := []domain.Invoice{inv("INV-2", "G1", 5000)}
	filed := []domain.Invoice{inv("INV-9", "G1", 5000)}

	result, err := engine.Reconcile(books, filed)

	assert.NoError(t, err)
	assert.Len(t, result.Matched, 1)

	pair := result.Matched[0]
	assert.True(t, pair.Fuzzy)
	assert.Equal(t, 0.7, pair.Confidence)
	assert.Len(t, pair.Discrepancies, 1)
	assert.Equal(t, FieldInvoiceNumber, pair.Discrepancies[0].Field)
	assert.Equal(t, domain.SeverityInfo, pair.Discrepancies[0].Severity)
}

func TestEngine_FuzzyMatchOnDigits(t *testing.T) {
	engine := NewEngine(MatchOptions{})

	// Totals differ beyond tolerance, but the digit subsequences agree.
	books := []domain.Invoice{inv("INV/042", "G1", 9000)}
	filed := []domain.Invoice{inv("S-042", "G1", 9500)}

	result, err := engine.Reconcile(books, filed)

	assert.NoError(t, err)
	assert.Len(t, result.Mismatched, 1)
	assert.True(t, result.Mismatched[0].Fuzzy)
	assert.Equal(t, 0.9, result.Mismatched[0].Confidence)
}

func TestEngine_NoFuzzyWithoutCounterpartyID(t *testing.T) {
	engine := NewEngine(MatchOptions{})

	books := []domain.Invoice{inv("INV-2", "", 5000)}
	filed := []domain.Invoice{inv("INV-9", "", 5000)}

	result, err := engine.Reconcile(books, filed)

	assert.NoError(t, err)
	assert.Len(t, result.MissingInReturn, 1)
	assert.Len(t, result.MissingInBooks, 1)
}

func TestEngine_MismatchSeverityBands(t *testing.T) {
	engine := NewEngine(MatchOptions{})

	books := []domain.Invoice{{
		InvoiceNumber: "INV-1",
		GSTIN:         "G1",
		TaxableValue:  decimal.NewFromInt(1000),
		CGST:          decimal.NewFromInt(90),
		SGST:          decimal.NewFromInt(90),
		Total:         decimal.NewFromInt(1180),
	}}
	filed := []domain.Invoice{{
		InvoiceNumber: "INV-1",
		GSTIN:         "G1",
		TaxableValue:  decimal.NewFromInt(850),  // delta 150 -> high
		CGST:          decimal.NewFromInt(75),   // delta 15 -> medium
		SGST:          decimal.NewFromInt(88),   // delta 2 -> low
		Total:         decimal.NewFromInt(1013), // delta 167 -> high
	}}

	result, err := engine.Reconcile(books, filed)

	assert.NoError(t, err)
	assert.Len(t, result.Mismatched, 1)

	severities := map[string]domain.Severity{}
	for _, d := range result.Mismatched[0].Discrepancies {
		severities[d.Field] = d.Severity
	}
	// All monetary fields are compared; none short-circuits the others.
	assert.Equal(t, domain.SeverityHigh, severities[FieldTaxableValue])
	assert.Equal(t, domain.SeverityMedium, severities[FieldCGST])
	assert.Equal(t, domain.SeverityLow, severities[FieldSGST])
	assert.Equal(t, domain.SeverityHigh, severities[FieldTotal])

	assert.True(t, result.Mismatched[0].TotalDelta.Equal(decimal.NewFromInt(167)))
}

func TestEngine_IdentityAndDateDiscrepancies(t *testing.T) {
	engine := NewEngine(MatchOptions{})

	books := []domain.Invoice{{InvoiceNumber: "INV-1", GSTIN: "G1", InvoiceDate: "2024-03-15"}}
	filed := []domain.Invoice{{InvoiceNumber: "INV-1", GSTIN: "G2", InvoiceDate: "16/03/2024"}}

	result, err := engine.Reconcile(books, filed)

	assert.NoError(t, err)
	assert.Len(t, result.Mismatched, 1)

	severities := map[string]domain.Severity{}
	for _, d := range result.Mismatched[0].Discrepancies {
		severities[d.Field] = d.Severity
	}
	assert.Equal(t, domain.SeverityHigh, severities[FieldGSTIN])
	assert.Equal(t, domain.SeverityMedium, severities[FieldInvoiceDate])
}

func TestEngine_EquivalentDateFormatsAgree(t *testing.T) {
	engine := NewEngine(MatchOptions{})

	books := []domain.Invoice{{InvoiceNumber: "INV-1", InvoiceDate: "2024-03-15"}}
	filed := []domain.Invoice{{InvoiceNumber: "INV-1", InvoiceDate: "15/03/2024"}}

	result, err := engine.Reconcile(books, filed)

	assert.NoError(t, err)
	assert.Len(t, result.Matched, 1)
	assert.Empty(t, result.Matched[0].Discrepancies)
}

func TestEngine_Completeness(t *testing.T) {
	engine := NewEngine(MatchOptions{})

	books := []domain.Invoice{
		inv("INV-1", "G1", 100),
		inv("INV-2", "G1", 200),
		inv("INV-3", "G2", 300),
		inv("INV-3", "G2", 300), // duplicate key
		inv("", "G3", 50),       // unmatchable
	}
	filed := []domain.Invoice{
		inv("INV-1", "G1", 100),
		inv("INV-2", "G1", 275),
		inv("INV-3", "G2", 300),
		inv("INV-9", "G9", 999),
	}

	result, err := engine.Reconcile(books, filed)
	assert.NoError(t, err)

	s := result.Summary
	accounted := 2*s.Matched + 2*s.Mismatched + s.MissingInReturn + s.MissingInBooks
	assert.Equal(t, len(books)+len(filed), accounted)
	assert.Equal(t, len(result.Matched), s.Matched)
	assert.Equal(t, len(result.Mismatched), s.Mismatched)
	assert.Equal(t, len(result.MissingInReturn), s.MissingInReturn)
	assert.Equal(t, len(result.MissingInBooks), s.MissingInBooks)
}

func TestEngine_SingleConsumption(t *testing.T) {
	engine := NewEngine(MatchOptions{})

	// Two book invoices collapse to the same key; only one return row exists.
	books := []domain.Invoice{
		inv("INV-1", "G1", 100),
		inv("inv1", "G1", 100),
	}
	filed := []domain.Invoice{inv("INV-1", "G1", 100)}

	result, err := engine.Reconcile(books, filed)

	assert.NoError(t, err)
	assert.Len(t, result.Matched, 1)
	assert.Len(t, result.MissingInReturn, 1)
	assert.Empty(t, result.MissingInBooks)
}

func TestEngine_Determinism(t *testing.T) {
	engine := NewEngine(MatchOptions{})

	books := []domain.Invoice{
		inv("INV-1", "G1", 100),
		inv("INV-2", "G1", 200),
		inv("X-77", "G2", 450),
	}
	filed := []domain.Invoice{
		inv("INV-2", "G1", 200),
		inv("Y-88", "G2", 450),
		inv("INV-1", "G1", 120),
	}

	first, err := engine.Reconcile(books, filed)
	assert.NoError(t, err)
	second, err := engine.Reconcile(books, filed)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEngine_ToleranceMonotonicity(t *testing.T) {
	books := []domain.Invoice{
		inv("INV-1", "G1", 100),
		inv("INV-2", "G1", 200),
		inv("INV-3", "G2", 300),
	}
	filed := []domain.Invoice{
		inv("INV-1", "G1", 104),
		inv("INV-2", "G1", 230),
		inv("INV-3", "G2", 300),
	}

	prevMismatched := len(books) + 1
	prevMatched := -1
	for _, tol := range []int64{1, 5, 50} {
		engine := NewEngine(MatchOptions{Tolerance: decimal.NewFromInt(tol)})
		result, err := engine.Reconcile(books, filed)
		assert.NoError(t, err)

		assert.LessOrEqual(t, result.Summary.Mismatched, prevMismatched)
		assert.GreaterOrEqual(t, result.Summary.Matched, prevMatched)
		prevMismatched = result.Summary.Mismatched
		prevMatched = result.Summary.Matched
	}
}

func TestEngine_NilInputFailsFast(t *testing.T) {
	engine := NewEngine(MatchOptions{})

	_, err := engine.Reconcile(nil, []domain.Invoice{})
	assert.Error(t, err)

	_, err = engine.Reconcile([]domain.Invoice{}, nil)
	assert.Error(t, err)
}

func TestEngine_DuplicatesReportedBothSides(t *testing.T) {
	engine := NewEngine(MatchOptions{})

	books := []domain.Invoice{
		inv("INV-1", "G1", 100),
		inv("INV-1", "G1", 100),
	}
	filed := []domain.Invoice{
		inv("INV-2", "G2", 200),
		inv("inv2", "G2", 200),
	}

	result, err := engine.Reconcile(books, filed)
	assert.NoError(t, err)

	sides := map[domain.MatchSide]int{}
	for _, g := range result.Duplicates {
		sides[g.Side]++
	}
	assert.Equal(t, 1, sides[domain.SideBooks])
	assert.Equal(t, 1, sides[domain.SideReturn])
}

func TestEngine_Breakdowns(t *testing.T) {
	engine := NewEngine(MatchOptions{})

	books := []domain.Invoice{
		{InvoiceNumber: "INV-1", GSTIN: "G1", InvoiceDate: "2024-03-01", Total: decimal.NewFromInt(100)},
		{InvoiceNumber: "INV-2", GSTIN: "G1", InvoiceDate: "2024-03-05", Total: decimal.NewFromInt(200)},
		{InvoiceNumber: "INV-3", GSTIN: "G2", InvoiceDate: "2024-04-02", Total: decimal.NewFromInt(300)},
		{InvoiceNumber: "INV-4", PartyName: "Walk-in", Total: decimal.NewFromInt(40)}, // undated, no GSTIN
	}
	filed := []domain.Invoice{
		{InvoiceNumber: "INV-1", GSTIN: "G1", InvoiceDate: "2024-03-01", Total: decimal.NewFromInt(100)},
		{InvoiceNumber: "INV-2", GSTIN: "G1", InvoiceDate: "2024-03-05", Total: decimal.NewFromInt(260)},
	}

	result, err := engine.Reconcile(books, filed)
	assert.NoError(t, err)

	assert.Len(t, result.Monthly, 2)
	march := result.Monthly["2024-03"]
	assert.Equal(t, 2, march.Total)
	assert.Equal(t, 1, march.Matched)
	assert.Equal(t, 1, march.Mismatched)
	assert.Equal(t, 1, result.Monthly["2024-04"].MissingInReturn)

	g1 := result.Parties["G1"]
	assert.Equal(t, 2, g1.Total)
	assert.True(t, g1.DiscrepancyAmount.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, 1, result.Parties["Walk-in"].Missing)

	assert.True(t, result.Summary.TotalDiscrepancyAmount.Equal(decimal.NewFromInt(60)))
}
