// Package setoff implements the input-tax-credit utilisation waterfall: the
// legally mandated order in which available credit is applied against
// liability, head by head, before cash is payable.
package setoff

import (
	"fmt"

	"github.com/shopspring/decimal"

	"gst-recon/internal/domain"
)

// Head names, as used in allocations and reports.
const (
	HeadCGST = "CGST"
	HeadSGST = "SGST"
	HeadIGST = "IGST"
	HeadCess = "CESS"
)

// reportPlaces is the rounding applied at the reporting boundary only;
// intermediate arithmetic stays exact.
const reportPlaces = 2

// Allocation records one step of the waterfall that actually moved money.
type Allocation struct {
	FromHead string          `json:"from_head"`
	ToHead   string          `json:"to_head"`
	Amount   decimal.Decimal `json:"amount"`
}

// HeadResult is the per-head outcome: what was owed, what credit was on
// hand, and where both ended up.
type HeadResult struct {
	Liability       decimal.Decimal `json:"liability"`
	CreditAvailable decimal.Decimal `json:"credit_available"`
	// CreditUtilised is the credit (from any head) applied against this
	// head's liability.
	CreditUtilised decimal.Decimal `json:"credit_utilised"`
	// CashPayable is the liability left after all applicable steps.
	CashPayable decimal.Decimal `json:"cash_payable"`
	// CreditBalance is this head's own credit carried forward.
	CreditBalance decimal.Decimal `json:"credit_balance"`
}

// Result is the full waterfall outcome, rounded to two decimal places.
type Result struct {
	CGST HeadResult `json:"cgst"`
	SGST HeadResult `json:"sgst"`
	IGST HeadResult `json:"igst"`
	Cess HeadResult `json:"cess"`

	Allocations []Allocation `json:"allocations"`

	TotalLiability     decimal.Decimal `json:"total_liability"`
	TotalCreditUsed    decimal.Decimal `json:"total_credit_used"`
	TotalCashPayable   decimal.Decimal `json:"total_cash_payable"`
	TotalCreditBalance decimal.Decimal `json:"total_credit_balance"`
}

// Allocate runs the fixed 8-step waterfall. The step order is mandated and
// must not change:
//
//  1. IGST credit -> IGST liability
//  2. IGST credit -> CGST liability
//  3. IGST credit -> SGST liability
//  4. CGST credit -> CGST liability
//  5. CGST credit -> IGST liability (never SGST)
//  6. SGST credit -> SGST liability
//  7. SGST credit -> IGST liability (never CGST)
//  8. Cess credit -> Cess liability (Cess never cross-allocates)
//
// Both inputs must be non-negative per head.
func Allocate(liability, credit domain.TaxHeads) (*Result, error) {
	if err := validateHeads("liability", liability); err != nil {
		return nil, err
	}
	if err := validateHeads("credit", credit); err != nil {
		return nil, err
	}

	w := &waterfall{
		remLiability: map[string]decimal.Decimal{
			HeadCGST: liability.CGST, HeadSGST: liability.SGST,
			HeadIGST: liability.IGST, HeadCess: liability.Cess,
		},
		remCredit: map[string]decimal.Decimal{
			HeadCGST: credit.CGST, HeadSGST: credit.SGST,
			HeadIGST: credit.IGST, HeadCess: credit.Cess,
		},
		utilisedAgainst: map[string]decimal.Decimal{
			HeadCGST: decimal.Zero, HeadSGST: decimal.Zero,
			HeadIGST: decimal.Zero, HeadCess: decimal.Zero,
		},
	}

	w.apply(HeadIGST, HeadIGST)
	w.apply(HeadIGST, HeadCGST)
	w.apply(HeadIGST, HeadSGST)
	w.apply(HeadCGST, HeadCGST)
	w.apply(HeadCGST, HeadIGST)
	w.apply(HeadSGST, HeadSGST)
	w.apply(HeadSGST, HeadIGST)
	w.apply(HeadCess, HeadCess)

	result := &Result{
		CGST:        w.headResult(HeadCGST, liability.CGST, credit.CGST),
		SGST:        w.headResult(HeadSGST, liability.SGST, credit.SGST),
		IGST:        w.headResult(HeadIGST, liability.IGST, credit.IGST),
		Cess:        w.headResult(HeadCess, liability.Cess, credit.Cess),
		Allocations: w.allocations,
	}
	for _, h := range []HeadResult{result.CGST, result.SGST, result.IGST, result.Cess} {
		result.TotalLiability = result.TotalLiability.Add(h.Liability)
		result.TotalCreditUsed = result.TotalCreditUsed.Add(h.CreditUtilised)
		result.TotalCashPayable = result.TotalCashPayable.Add(h.CashPayable)
		result.TotalCreditBalance = result.TotalCreditBalance.Add(h.CreditBalance)
	}
	return result, nil
}

type waterfall struct {
	remLiability    map[string]decimal.Decimal
	remCredit       map[string]decimal.Decimal
	utilisedAgainst map[string]decimal.Decimal
	allocations     []Allocation
}

// apply moves min(remaining credit of from, remaining liability of to).
func (w *waterfall) apply(from, to string) {
	used := decimal.Min(w.remCredit[from], w.remLiability[to])
	if !used.IsPositive() {
		return
	}
	w.remCredit[from] = w.remCredit[from].Sub(used)
	w.remLiability[to] = w.remLiability[to].Sub(used)
	w.utilisedAgainst[to] = w.utilisedAgainst[to].Add(used)
	w.allocations = append(w.allocations, Allocation{
		FromHead: from,
		ToHead:   to,
		Amount:   used.Round(reportPlaces),
	})
}

func (w *waterfall) headResult(head string, liability, credit decimal.Decimal) HeadResult {
	return HeadResult{
		Liability:       liability.Round(reportPlaces),
		CreditAvailable: credit.Round(reportPlaces),
		CreditUtilised:  w.utilisedAgainst[head].Round(reportPlaces),
		CashPayable:     w.remLiability[head].Round(reportPlaces),
		CreditBalance:   w.remCredit[head].Round(reportPlaces),
	}
}

func validateHeads(name string, h domain.TaxHeads) error {
	for head, amount := range map[string]decimal.Decimal{
		HeadCGST: h.CGST, HeadSGST: h.SGST, HeadIGST: h.IGST, HeadCess: h.Cess,
	} {
		if amount.IsNegative() {
			return fmt.Errorf("setoff: %s %s must be non-negative, got %s", head, name, amount)
		}
	}
	return nil
}
