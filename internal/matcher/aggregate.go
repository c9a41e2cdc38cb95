package matcher

import (
	"github.com/shopspring/decimal"

	"gst-recon/internal/domain"
)

// aggregator folds match outcomes into summary counters and the per-month /
// per-counterparty breakdowns. All folds are commutative, so accumulation
// order cannot change the final totals.
type aggregator struct {
	summary domain.ReconSummary
	monthly map[string]*domain.MonthStats
	parties map[string]*domain.PartyStats
}

func newAggregator() *aggregator {
	return &aggregator{
		summary: domain.ReconSummary{TotalDiscrepancyAmount: decimal.Zero},
		monthly: make(map[string]*domain.MonthStats),
		parties: make(map[string]*domain.PartyStats),
	}
}

func (a *aggregator) setTotals(books, ret int) {
	a.summary.TotalBooks = books
	a.summary.TotalReturn = ret
}

func (a *aggregator) addPair(pair MatchedPair, mismatched bool) {
	month := a.month(pair.Book)
	party := a.party(pair.Book)
	month.Total++
	party.Total++

	if mismatched {
		a.summary.Mismatched++
		a.summary.TotalDiscrepancyAmount = a.summary.TotalDiscrepancyAmount.Add(pair.TotalDelta.Abs())
		month.Mismatched++
		party.Mismatched++
		party.DiscrepancyAmount = party.DiscrepancyAmount.Add(pair.TotalDelta.Abs())
		return
	}
	a.summary.Matched++
	month.Matched++
	party.Matched++
}

func (a *aggregator) addMissingInReturn(book domain.Invoice) {
	a.summary.MissingInReturn++
	month := a.month(book)
	month.Total++
	month.MissingInReturn++
	party := a.party(book)
	party.Total++
	party.Missing++
}

func (a *aggregator) addMissingInBooks(ret domain.Invoice) {
	a.summary.MissingInBooks++
	// No book-side invoice, so no month bucket; the party breakdown still
	// gets the counterparty from the return side.
	party := a.party(ret)
	party.Total++
	party.Missing++
}

func (a *aggregator) finish() (domain.ReconSummary, map[string]*domain.MonthStats, map[string]*domain.PartyStats) {
	return a.summary, a.monthly, a.parties
}

// month returns the stats bucket for the invoice's calendar month, or a
// discard bucket when the invoice is undated or unparseable.
func (a *aggregator) month(inv domain.Invoice) *domain.MonthStats {
	key := MonthOf(inv.InvoiceDate)
	if key == "" {
		return &domain.MonthStats{} // excluded from the breakdown
	}
	stats, ok := a.monthly[key]
	if !ok {
		stats = &domain.MonthStats{}
		a.monthly[key] = stats
	}
	return stats
}

func (a *aggregator) party(inv domain.Invoice) *domain.PartyStats {
	key := PartyKey(inv.GSTIN, inv.PartyName)
	stats, ok := a.parties[key]
	if !ok {
		stats = &domain.PartyStats{
			PartyName:         inv.PartyName,
			DiscrepancyAmount: decimal.Zero,
		}
		a.parties[key] = stats
	}
	return stats
}
