package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"gst-recon/internal/domain"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "register.csv")
	err := os.WriteFile(path, []byte(content), 0o644)
	assert.NoError(t, err)
	return path
}

func parseAll(t *testing.T, path string, source domain.RegisterSource) []domain.Invoice {
	t.Helper()
	var invoices []domain.Invoice
	p := NewCSVInvoiceParser(source)
	err := p.Parse(path, 2, func(batch []domain.Invoice) error {
		invoices = append(invoices, batch...)
		return nil
	})
	assert.NoError(t, err)
	return invoices
}

func TestCSVInvoiceParser_Parse(t *testing.T) {
	path := writeCSV(t, `Invoice No,Invoice Date,GSTIN,Party Name,Taxable Value,CGST,SGST,IGST,Cess,Total,E-Way Bill
INV-001,15/03/2024,27AAPFU0939F1ZV,Acme Traders,1000,90,90,0,0,1180,EWB-42
INV-002,2024-03-16,,Walk-in,500,,,"45",0,"545",
`)

	invoices := parseAll(t, path, domain.SourceSalesRegister)

	assert.Len(t, invoices, 2)

	first := invoices[0]
	assert.Equal(t, "INV-001", first.InvoiceNumber)
	assert.Equal(t, "15/03/2024", first.InvoiceDate)
	assert.Equal(t, "27AAPFU0939F1ZV", first.GSTIN)
	assert.True(t, first.TaxableValue.Equal(decimal.NewFromInt(1000)))
	assert.True(t, first.Total.Equal(decimal.NewFromInt(1180)))
	assert.Equal(t, domain.SourceSalesRegister, first.Source)
	assert.Equal(t, "EWB-42", first.Extra["e_way_bill"])

	second := invoices[1]
	assert.Equal(t, "", second.GSTIN)
	assert.True(t, second.CGST.Equal(decimal.Zero))
	assert.True(t, second.IGST.Equal(decimal.NewFromInt(45)))
	assert.Nil(t, second.Extra)
}

func TestCSVInvoiceParser_BadNumbersDefaultToZero(t *testing.T) {
	path := writeCSV(t, `invoice_number,taxable_value,total
INV-1,not-a-number,"1,180.50"
INV-2,,
`)

	invoices := parseAll(t, path, domain.SourcePurchaseRegister)

	assert.Len(t, invoices, 2)
	assert.True(t, invoices[0].TaxableValue.Equal(decimal.Zero))
	assert.True(t, invoices[0].Total.Equal(decimal.NewFromFloat(1180.50)))
	assert.True(t, invoices[1].Total.Equal(decimal.Zero))
}

func TestCSVInvoiceParser_MissingInvoiceNumberColumn(t *testing.T) {
	path := writeCSV(t, `amount,date
100,2024-03-15
`)

	p := NewCSVInvoiceParser(domain.SourceSalesRegister)
	err := p.Parse(path, 10, func([]domain.Invoice) error { return nil })
	assert.Error(t, err)
}

func TestCSVInvoiceParser_BatchesRespectSize(t *testing.T) {
	path := writeCSV(t, `invoice_number
INV-1
INV-2
INV-3
`)

	var sizes []int
	p := NewCSVInvoiceParser(domain.SourceGSTR1)
	err := p.Parse(path, 2, func(batch []domain.Invoice) error {
		sizes = append(sizes, len(batch))
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, []int{2, 1}, sizes)
}
