package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"gst-recon/internal/domain"
	"gst-recon/pkg/logger"
)

// InvoiceParser parses an invoice register file into batches of records.
type InvoiceParser interface {
	Parse(filePath string, batchSize int, callback func([]domain.Invoice) error) error
}

// CSVInvoiceParser implements a streaming CSV parser. Rows are never dropped
// for bad data: numeric cells that fail to parse default to zero, so a run
// always sees the complete register and reports the defects instead.
type CSVInvoiceParser struct {
	source domain.RegisterSource
}

func NewCSVInvoiceParser(source domain.RegisterSource) *CSVInvoiceParser {
	return &CSVInvoiceParser{source: source}
}

// knownColumns maps normalized header names to canonical field names.
var knownColumns = map[string]string{
	"invoice_number":  "invoice_number",
	"invoice_no":      "invoice_number",
	"inv_no":          "invoice_number",
	"invoice_date":    "invoice_date",
	"date":            "invoice_date",
	"gstin":           "gstin",
	"gstin_uin":       "gstin",
	"party_name":      "party_name",
	"party":           "party_name",
	"customer_name":   "party_name",
	"supplier_name":   "party_name",
	"taxable_value":   "taxable_value",
	"taxable_amount":  "taxable_value",
	"cgst":            "cgst",
	"cgst_amount":     "cgst",
	"sgst":            "sgst",
	"sgst_amount":     "sgst",
	"igst":            "igst",
	"igst_amount":     "igst",
	"cess":            "cess",
	"cess_amount":     "cess",
	"total":           "total",
	"invoice_value":   "total",
	"total_amount":    "total",
	"place_of_supply": "place_of_supply",
	"pos":             "place_of_supply",
	"reverse_charge":  "reverse_charge",
}

// Parse reads the CSV in streaming mode and hands batches to callback.
func (p *CSVInvoiceParser) Parse(filePath string, batchSize int, callback func([]domain.Invoice) error) error {
	file, err := os.Open(filePath)
	if err != nil {
		logger.GetLogger().WithError(err).WithField("file", filePath).Error("Failed to open file")
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to read CSV header")
		return fmt.Errorf("failed to read header: %w", err)
	}

	columnMap, extraColumns := mapColumns(header)
	if _, ok := columnMap["invoice_number"]; !ok {
		return fmt.Errorf("invalid CSV format: missing invoice_number column")
	}

	batch := make([]domain.Invoice, 0, batchSize)
	lineNumber := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNumber++
		if err != nil {
			logger.GetLogger().WithError(err).WithField("line", lineNumber).Warn("Failed to read CSV row, skipping")
			continue
		}

		batch = append(batch, p.parseRecord(record, columnMap, extraColumns))

		if len(batch) >= batchSize {
			if err := callback(batch); err != nil {
				return err
			}
			batch = make([]domain.Invoice, 0, batchSize)
		}
	}

	if len(batch) > 0 {
		if err := callback(batch); err != nil {
			return err
		}
	}

	return nil
}

// parseRecord never fails: missing cells are empty, bad numbers are zero.
func (p *CSVInvoiceParser) parseRecord(record []string, columnMap, extraColumns map[string]int) domain.Invoice {
	cell := func(field string) string {
		idx, ok := columnMap[field]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	inv := domain.Invoice{
		InvoiceNumber: cell("invoice_number"),
		InvoiceDate:   cell("invoice_date"),
		GSTIN:         cell("gstin"),
		PartyName:     cell("party_name"),
		TaxableValue:  parseAmount(cell("taxable_value")),
		CGST:          parseAmount(cell("cgst")),
		SGST:          parseAmount(cell("sgst")),
		IGST:          parseAmount(cell("igst")),
		Cess:          parseAmount(cell("cess")),
		Total:         parseAmount(cell("total")),
		PlaceOfSupply: cell("place_of_supply"),
		ReverseCharge: parseBool(cell("reverse_charge")),
		Source:        p.source,
	}

	for name, idx := range extraColumns {
		if idx >= len(record) {
			continue
		}
		if value := strings.TrimSpace(record[idx]); value != "" {
			if inv.Extra == nil {
				inv.Extra = make(map[string]string)
			}
			inv.Extra[name] = value
		}
	}

	return inv
}

// mapColumns splits the header into recognized fields and passthrough
// columns. The first occurrence of a recognized field wins.
func mapColumns(header []string) (columnMap, extraColumns map[string]int) {
	columnMap = make(map[string]int)
	extraColumns = make(map[string]int)
	replacer := strings.NewReplacer(" ", "_", "-", "_", ".", "_", "/", "_")
	for i, col := range header {
		normalized := replacer.Replace(strings.ToLower(strings.TrimSpace(col)))
		if field, ok := knownColumns[normalized]; ok {
			if _, taken := columnMap[field]; !taken {
				columnMap[field] = i
				continue
			}
		}
		if normalized != "" {
			extraColumns[normalized] = i
		}
	}
	return columnMap, extraColumns
}

// parseAmount reads a monetary cell, tolerating thousands separators.
// Anything unparseable is zero.
func parseAmount(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

func parseBool(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Y", "YES", "TRUE", "1":
		return true
	}
	return false
}
