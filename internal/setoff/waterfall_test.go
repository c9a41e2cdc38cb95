package setoff

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"gst-recon/internal/domain"
)

func heads(cgst, sgst, igst, cess float64) domain.TaxHeads {
	return domain.TaxHeads{
		CGST: decimal.NewFromFloat(cgst),
		SGST: decimal.NewFromFloat(sgst),
		IGST: decimal.NewFromFloat(igst),
		Cess: decimal.NewFromFloat(cess),
	}
}

func TestAllocate_IGSTCreditSpillsToCGSTThenSGST(t *testing.T) {
	liability := heads(100, 100, 0, 0)
	credit := heads(60, 0, 50, 0)

	result, err := Allocate(liability, credit)
	assert.NoError(t, err)

	// IGST credit spills to CGST first, then CGST's own credit finishes the
	// head; its leftover may only go to IGST, so SGST stays fully payable.
	assert.True(t, result.CGST.CashPayable.Equal(decimal.Zero))
	assert.True(t, result.SGST.CashPayable.Equal(decimal.NewFromInt(100)))
	assert.True(t, result.IGST.CashPayable.Equal(decimal.Zero))
	assert.True(t, result.CGST.CreditBalance.Equal(decimal.NewFromInt(10)))
	assert.True(t, result.IGST.CreditBalance.Equal(decimal.Zero))
}

func TestAllocate_IGSTCreditExhaustsOwnHeadFirst(t *testing.T) {
	liability := heads(50, 0, 80, 0)
	credit := heads(0, 0, 100, 0)

	result, err := Allocate(liability, credit)
	assert.NoError(t, err)

	// 80 against IGST itself, then only 20 left for CGST.
	assert.True(t, result.IGST.CashPayable.Equal(decimal.Zero))
	assert.True(t, result.CGST.CashPayable.Equal(decimal.NewFromInt(30)))
	assert.True(t, result.IGST.CreditBalance.Equal(decimal.Zero))

	assert.Len(t, result.Allocations, 2)
	assert.Equal(t, HeadIGST, result.Allocations[0].ToHead)
	assert.True(t, result.Allocations[0].Amount.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, HeadCGST, result.Allocations[1].ToHead)
	assert.True(t, result.Allocations[1].Amount.Equal(decimal.NewFromInt(20)))
}

func TestAllocate_SymmetricHeadsNeverCross(t *testing.T) {
	liability := heads(0, 100, 0, 0)
	credit := heads(100, 0, 0, 0)

	result, err := Allocate(liability, credit)
	assert.NoError(t, err)

	// CGST credit must not touch SGST liability.
	assert.True(t, result.SGST.CashPayable.Equal(decimal.NewFromInt(100)))
	assert.True(t, result.CGST.CreditBalance.Equal(decimal.NewFromInt(100)))
	assert.Empty(t, result.Allocations)
}

func TestAllocate_CessIsolated(t *testing.T) {
	liability := heads(100, 0, 0, 40)
	credit := heads(0, 0, 0, 90)

	result, err := Allocate(liability, credit)
	assert.NoError(t, err)

	// Cess credit covers cess only; the surplus never reaches CGST.
	assert.True(t, result.Cess.CashPayable.Equal(decimal.Zero))
	assert.True(t, result.Cess.CreditBalance.Equal(decimal.NewFromInt(50)))
	assert.True(t, result.CGST.CashPayable.Equal(decimal.NewFromInt(100)))
}

func TestAllocate_Conservation(t *testing.T) {
	liability := heads(120.50, 80.25, 210.75, 15)
	credit := heads(60, 100.10, 300, 5.55)

	result, err := Allocate(liability, credit)
	assert.NoError(t, err)

	for name, h := range map[string]HeadResult{
		"CGST": result.CGST, "SGST": result.SGST, "IGST": result.IGST, "Cess": result.Cess,
	} {
		assert.True(t, h.Liability.Equal(h.CashPayable.Add(h.CreditUtilised)),
			"%s: liability must equal cash plus credit utilised", name)
	}

	utilisedFrom := decimal.Zero
	for _, alloc := range result.Allocations {
		utilisedFrom = utilisedFrom.Add(alloc.Amount)
	}
	totalCredit := credit.Total()
	assert.True(t, totalCredit.Equal(result.TotalCreditBalance.Add(utilisedFrom)),
		"credit must equal balance plus utilisation")
	assert.True(t, result.TotalCreditUsed.Equal(utilisedFrom))
}

func TestAllocate_RejectsNegativeInput(t *testing.T) {
	_, err := Allocate(heads(-1, 0, 0, 0), heads(0, 0, 0, 0))
	assert.Error(t, err)

	_, err = Allocate(heads(0, 0, 0, 0), heads(0, -5, 0, 0))
	assert.Error(t, err)
}

func TestAllocate_ZeroEverything(t *testing.T) {
	result, err := Allocate(domain.TaxHeads{}, domain.TaxHeads{})
	assert.NoError(t, err)
	assert.True(t, result.TotalCashPayable.Equal(decimal.Zero))
	assert.True(t, result.TotalCreditBalance.Equal(decimal.Zero))
	assert.Empty(t, result.Allocations)
}
