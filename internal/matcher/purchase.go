package matcher

import (
	"github.com/shopspring/decimal"

	"gst-recon/internal/domain"
)

// PurchaseEngine reconciles a purchase register against the supplier-filed
// credit extract. It is the inbound twin of Engine: the matching key is
// (supplier id, invoice number), because invoice numbers recur freely across
// suppliers, and the result additionally carries the input-credit exposure.
type PurchaseEngine struct {
	engine *Engine
}

func NewPurchaseEngine(opts MatchOptions) *PurchaseEngine {
	return &PurchaseEngine{engine: NewEngine(opts)}
}

// CreditExposure sets the credit claimed in the purchase register against the
// credit the suppliers actually filed, head by head.
type CreditExposure struct {
	// Claimed is the credit total over the claimant's own purchase register.
	Claimed domain.TaxHeads `json:"claimed"`
	// Available is the credit total over the supplier-filed extract.
	Available domain.TaxHeads `json:"available"`
	// Matched is the supplier-filed credit on invoices the claimant can
	// point to (clean matches and mismatches alike).
	Matched domain.TaxHeads `json:"matched"`
	// ExcessClaimed is max(0, claimed - available) per head: credit claimed
	// with no supplier filing behind it.
	ExcessClaimed domain.TaxHeads `json:"excess_claimed"`
	// UnclaimedAvailable is max(0, available - claimed) per head: filed
	// credit the claimant has not picked up.
	UnclaimedAvailable domain.TaxHeads `json:"unclaimed_available"`
}

// PurchaseResult is a Result plus the derived credit-exposure summary.
type PurchaseResult struct {
	Result
	Exposure CreditExposure `json:"exposure"`
}

// Reconcile matches the purchase register against the supplier-filed extract.
// Both slices must be non-nil.
func (pe *PurchaseEngine) Reconcile(purchases, supplierFiled []domain.Invoice) (*PurchaseResult, error) {
	result, err := pe.engine.reconcile(purchases, supplierFiled, CompositeKey)
	if err != nil {
		return nil, err
	}
	return &PurchaseResult{
		Result:   *result,
		Exposure: computeExposure(purchases, supplierFiled, result),
	}, nil
}

// computeExposure is pure summation and clamping over the match outcome.
func computeExposure(purchases, supplierFiled []domain.Invoice, result *Result) CreditExposure {
	var exp CreditExposure
	for _, inv := range purchases {
		exp.Claimed = exp.Claimed.Add(inv.TaxAmounts())
	}
	for _, inv := range supplierFiled {
		exp.Available = exp.Available.Add(inv.TaxAmounts())
	}
	for _, pair := range result.Matched {
		exp.Matched = exp.Matched.Add(pair.Return.TaxAmounts())
	}
	for _, pair := range result.Mismatched {
		exp.Matched = exp.Matched.Add(pair.Return.TaxAmounts())
	}
	exp.ExcessClaimed = clampHeads(exp.Claimed, exp.Available)
	exp.UnclaimedAvailable = clampHeads(exp.Available, exp.Claimed)
	return exp
}

// clampHeads returns max(0, a-b) per head.
func clampHeads(a, b domain.TaxHeads) domain.TaxHeads {
	return domain.TaxHeads{
		CGST: clamp(a.CGST.Sub(b.CGST)),
		SGST: clamp(a.SGST.Sub(b.SGST)),
		IGST: clamp(a.IGST.Sub(b.IGST)),
		Cess: clamp(a.Cess.Sub(b.Cess)),
	}
}

func clamp(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
