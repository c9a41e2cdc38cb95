package matcher

import (
	"fmt"

	"github.com/shopspring/decimal"

	"gst-recon/internal/domain"
	"gst-recon/pkg/logger"
)

// MatchOptions tunes the matching and comparison policy. The defaults mirror
// long-standing filing practice; treat the thresholds as policy, not law.
type MatchOptions struct {
	// Tolerance is the monetary slack below which two amounts are considered
	// equal, in currency units.
	Tolerance decimal.Decimal

	// StrongMatchConfidence is assigned to fuzzy pairs corroborated by both
	// counterparty id and the digit subsequence of the invoice numbers.
	StrongMatchConfidence float64

	// MinMatchConfidence is the floor below which no fuzzy pair is accepted.
	MinMatchConfidence float64

	// Severity bands for monetary deltas.
	HighSeverityDelta   decimal.Decimal
	MediumSeverityDelta decimal.Decimal
}

// DefaultMatchOptions returns the standard policy: 1 currency unit tolerance,
// 0.9/0.7 fuzzy confidence tiers, 100/10 severity bands.
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{
		Tolerance:             decimal.NewFromInt(1),
		StrongMatchConfidence: 0.9,
		MinMatchConfidence:    0.7,
		HighSeverityDelta:     decimal.NewFromInt(100),
		MediumSeverityDelta:   decimal.NewFromInt(10),
	}
}

func (o MatchOptions) withDefaults() MatchOptions {
	def := DefaultMatchOptions()
	if o.Tolerance.IsZero() {
		o.Tolerance = def.Tolerance
	}
	if o.StrongMatchConfidence == 0 {
		o.StrongMatchConfidence = def.StrongMatchConfidence
	}
	if o.MinMatchConfidence == 0 {
		o.MinMatchConfidence = def.MinMatchConfidence
	}
	if o.HighSeverityDelta.IsZero() {
		o.HighSeverityDelta = def.HighSeverityDelta
	}
	if o.MediumSeverityDelta.IsZero() {
		o.MediumSeverityDelta = def.MediumSeverityDelta
	}
	return o
}

// Engine pairs book-side invoices against return-side invoices. It holds no
// per-run state; one Engine is safe to share across concurrent runs.
type Engine struct {
	opts MatchOptions
}

func NewEngine(opts MatchOptions) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// MatchedPair is one book/return pairing with its comparison outcome.
type MatchedPair struct {
	Book          domain.Invoice       `json:"book"`
	Return        domain.Invoice       `json:"return"`
	Discrepancies []domain.Discrepancy `json:"discrepancies,omitempty"`
	TotalDelta    decimal.Decimal      `json:"total_delta"`
	Fuzzy         bool                 `json:"fuzzy,omitempty"`
	Confidence    float64              `json:"confidence,omitempty"`
}

// Result is the complete outcome of one reconciliation run. Every input
// invoice from either side appears in exactly one of the four lists.
type Result struct {
	Matched         []MatchedPair           `json:"matched"`
	Mismatched      []MatchedPair           `json:"mismatched"`
	MissingInReturn []domain.Invoice        `json:"missing_in_return"`
	MissingInBooks  []domain.Invoice        `json:"missing_in_books"`
	Duplicates      []domain.DuplicateGroup `json:"duplicates,omitempty"`

	Summary domain.ReconSummary           `json:"summary"`
	Monthly map[string]*domain.MonthStats `json:"monthly"`
	Parties map[string]*domain.PartyStats `json:"parties"`
}

// Reconcile matches books against ret using the invoice number as the key.
// Both slices must be non-nil; empty slices are fine.
func (e *Engine) Reconcile(books, ret []domain.Invoice) (*Result, error) {
	return e.reconcile(books, ret, InvoiceNumberKey)
}

func (e *Engine) reconcile(books, ret []domain.Invoice, keyFunc KeyFunc) (*Result, error) {
	if books == nil || ret == nil {
		return nil, fmt.Errorf("matcher: both invoice collections are required")
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"books_count":  len(books),
		"return_count": len(ret),
	}).Info("Starting invoice matching")

	bookIndex := NewIndex(books, keyFunc)
	returnIndex := NewIndex(ret, keyFunc)
	consumed := make(map[int]bool, len(ret))

	result := &Result{
		Matched:         make([]MatchedPair, 0),
		Mismatched:      make([]MatchedPair, 0),
		MissingInReturn: make([]domain.Invoice, 0),
		MissingInBooks:  make([]domain.Invoice, 0),
	}
	agg := newAggregator()
	agg.setTotals(len(books), len(ret))

	for _, book := range books {
		pos, confidence, fuzzy := e.findCandidate(book, ret, returnIndex, consumed, keyFunc)
		if pos < 0 {
			result.MissingInReturn = append(result.MissingInReturn, book)
			agg.addMissingInReturn(book)
			continue
		}
		consumed[pos] = true

		pair := MatchedPair{Book: book, Return: ret[pos], Fuzzy: fuzzy, Confidence: confidence}
		pair.Discrepancies, pair.TotalDelta = compareInvoices(book, ret[pos], e.opts)

		// Classification ignores the fuzzy annotation: a fuzzy pair whose
		// compared fields all agree is still a match.
		mismatched := len(pair.Discrepancies) > 0
		if fuzzy {
			pair.Discrepancies = append(pair.Discrepancies, domain.Discrepancy{
				Field:      FieldInvoiceNumber,
				LeftValue:  book.InvoiceNumber,
				RightValue: ret[pos].InvoiceNumber,
				Severity:   domain.SeverityInfo,
			})
		}

		if mismatched {
			result.Mismatched = append(result.Mismatched, pair)
		} else {
			result.Matched = append(result.Matched, pair)
		}
		agg.addPair(pair, mismatched)
	}

	for pos, inv := range ret {
		if !consumed[pos] {
			result.MissingInBooks = append(result.MissingInBooks, inv)
			agg.addMissingInBooks(inv)
		}
	}

	result.Duplicates = append(
		bookIndex.Duplicates(domain.SideBooks),
		returnIndex.Duplicates(domain.SideReturn)...,
	)
	result.Summary, result.Monthly, result.Parties = agg.finish()

	logger.GetLogger().WithFields(map[string]interface{}{
		"matched":           result.Summary.Matched,
		"mismatched":        result.Summary.Mismatched,
		"missing_in_return": result.Summary.MissingInReturn,
		"missing_in_books":  result.Summary.MissingInBooks,
		"duplicate_groups":  len(result.Duplicates),
	}).Info("Invoice matching completed")

	return result, nil
}

// findCandidate locates the return-side invoice for book: exact key lookup
// first, confidence-scored fuzzy scan second. Returns -1 when nothing
// qualifies.
func (e *Engine) findCandidate(
	book domain.Invoice,
	ret []domain.Invoice,
	returnIndex *Index,
	consumed map[int]bool,
	keyFunc KeyFunc,
) (pos int, confidence float64, fuzzy bool) {
	key := keyFunc(book)
	if key == "" {
		// No usable identifier: the invoice is unmatchable and can only be
		// reported as missing.
		return -1, 0, false
	}
	for _, candidate := range returnIndex.Bucket(key) {
		if !consumed[candidate] {
			return candidate, 1.0, false
		}
	}

	best := -1
	bestScore := 0.0
	for candidate := range ret {
		if consumed[candidate] || keyFunc(ret[candidate]) == "" {
			continue
		}
		score := e.fuzzyScore(book, ret[candidate])
		if score > bestScore { // strict: ties keep the first-encountered
			best, bestScore = candidate, score
		}
	}
	if best >= 0 && bestScore >= e.opts.MinMatchConfidence {
		return best, bestScore, true
	}
	return -1, 0, false
}

// fuzzyScore rates a candidate pairing without an exact key match. The
// counterparty id must corroborate; the invoice-number digits or the total
// amount decide the tier.
func (e *Engine) fuzzyScore(book, candidate domain.Invoice) float64 {
	bookGSTIN := NormalizeGSTIN(book.GSTIN)
	if bookGSTIN == "" || bookGSTIN != NormalizeGSTIN(candidate.GSTIN) {
		return 0
	}

	digits := DigitsOf(book.InvoiceNumber)
	if digits != "" && digits == DigitsOf(candidate.InvoiceNumber) {
		return e.opts.StrongMatchConfidence
	}

	if book.Total.Sub(candidate.Total).Abs().LessThan(e.opts.Tolerance) {
		return e.opts.MinMatchConfidence
	}
	return 0
}
