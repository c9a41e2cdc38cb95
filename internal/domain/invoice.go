package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterSource identifies which register an invoice was loaded from.
type RegisterSource string

const (
	SourceSalesRegister    RegisterSource = "SALES_REGISTER"
	SourceGSTR1            RegisterSource = "GSTR1"
	SourcePurchaseRegister RegisterSource = "PURCHASE_REGISTER"
	SourceGSTR2A           RegisterSource = "GSTR2A"
)

// Invoice represents a single invoice row from any register. Monetary fields
// default to zero when the source column is absent or unparseable; Extra
// carries unmapped source columns through untouched.
type Invoice struct {
	ID            int               `json:"id,omitempty" db:"id"`
	InvoiceNumber string            `json:"invoice_number" db:"invoice_number"`
	InvoiceDate   string            `json:"invoice_date" db:"invoice_date"` // raw, normalized downstream
	GSTIN         string            `json:"gstin" db:"gstin"`
	PartyName     string            `json:"party_name" db:"party_name"`
	TaxableValue  decimal.Decimal   `json:"taxable_value" db:"taxable_value"`
	CGST          decimal.Decimal   `json:"cgst" db:"cgst"`
	SGST          decimal.Decimal   `json:"sgst" db:"sgst"`
	IGST          decimal.Decimal   `json:"igst" db:"igst"`
	Cess          decimal.Decimal   `json:"cess" db:"cess"`
	Total         decimal.Decimal   `json:"total" db:"total"`
	PlaceOfSupply string            `json:"place_of_supply,omitempty" db:"place_of_supply"`
	ReverseCharge bool              `json:"reverse_charge,omitempty" db:"reverse_charge"`
	Extra         map[string]string `json:"extra,omitempty"`
	Source        RegisterSource    `json:"source,omitempty" db:"source"`
	CreatedAt     time.Time         `json:"created_at,omitempty" db:"created_at"`
}

// TaxHeads groups an amount per GST head.
type TaxHeads struct {
	CGST decimal.Decimal `json:"cgst"`
	SGST decimal.Decimal `json:"sgst"`
	IGST decimal.Decimal `json:"igst"`
	Cess decimal.Decimal `json:"cess"`
}

// Add returns the head-wise sum of h and other.
func (h TaxHeads) Add(other TaxHeads) TaxHeads {
	return TaxHeads{
		CGST: h.CGST.Add(other.CGST),
		SGST: h.SGST.Add(other.SGST),
		IGST: h.IGST.Add(other.IGST),
		Cess: h.Cess.Add(other.Cess),
	}
}

// Total returns the sum across all four heads.
func (h TaxHeads) Total() decimal.Decimal {
	return h.CGST.Add(h.SGST).Add(h.IGST).Add(h.Cess)
}

// Round rounds every head to the given number of decimal places.
func (h TaxHeads) Round(places int32) TaxHeads {
	return TaxHeads{
		CGST: h.CGST.Round(places),
		SGST: h.SGST.Round(places),
		IGST: h.IGST.Round(places),
		Cess: h.Cess.Round(places),
	}
}

// TaxAmounts extracts the per-head tax amounts carried on an invoice.
func (i Invoice) TaxAmounts() TaxHeads {
	return TaxHeads{CGST: i.CGST, SGST: i.SGST, IGST: i.IGST, Cess: i.Cess}
}

// MatchStatus classifies the outcome of matching one invoice.
type MatchStatus string

const (
	StatusMatched         MatchStatus = "MATCHED"
	StatusMismatched      MatchStatus = "MISMATCHED"
	StatusMissingInReturn MatchStatus = "MISSING_IN_RETURN"
	StatusMissingInBooks  MatchStatus = "MISSING_IN_BOOKS"
)

// Severity ranks how serious a discrepancy is. Info is reserved for
// annotations that do not, by themselves, make a pair a mismatch.
type Severity string

const (
	SeverityInfo   Severity = "INFO"
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Discrepancy describes one field-level difference within a matched pair.
// Delta is set only for monetary fields.
type Discrepancy struct {
	Field      string           `json:"field"`
	LeftValue  string           `json:"left_value"`
	RightValue string           `json:"right_value"`
	Delta      *decimal.Decimal `json:"delta,omitempty"`
	Severity   Severity         `json:"severity"`
}

// MatchSide names one of the two registers fed to the matcher.
type MatchSide string

const (
	SideBooks  MatchSide = "BOOKS"
	SideReturn MatchSide = "RETURN"
)

// DuplicateGroup is a set of invoices on one side that collapse to the same
// normalized matching key.
type DuplicateGroup struct {
	Key      string    `json:"key"`
	Side     MatchSide `json:"side"`
	Invoices []Invoice `json:"invoices"`
}

// ReconSummary holds the headline counters of one reconciliation run.
type ReconSummary struct {
	TotalBooks             int             `json:"total_books"`
	TotalReturn            int             `json:"total_return"`
	Matched                int             `json:"matched"`
	Mismatched             int             `json:"mismatched"`
	MissingInReturn        int             `json:"missing_in_return"`
	MissingInBooks         int             `json:"missing_in_books"`
	TotalDiscrepancyAmount decimal.Decimal `json:"total_discrepancy_amount"`
}

// MonthStats is the per-calendar-month slice of the summary, keyed by the
// book-side invoice month (YYYY-MM).
type MonthStats struct {
	Total           int `json:"total"`
	Matched         int `json:"matched"`
	Mismatched      int `json:"mismatched"`
	MissingInReturn int `json:"missing_in_return"`
}

// PartyStats is the per-counterparty slice of the summary.
type PartyStats struct {
	PartyName         string          `json:"party_name,omitempty"`
	Total             int             `json:"total"`
	Matched           int             `json:"matched"`
	Mismatched        int             `json:"mismatched"`
	Missing           int             `json:"missing"`
	DiscrepancyAmount decimal.Decimal `json:"discrepancy_amount"`
}

// ReconType distinguishes the two reconciliation directions.
type ReconType string

const (
	ReconSales    ReconType = "SALES"
	ReconPurchase ReconType = "PURCHASE"
)

// JobStatus represents the status of a reconciliation job.
type JobStatus string

const (
	Pending    JobStatus = "PENDING"
	Processing JobStatus = "PROCESSING"
	Completed  JobStatus = "COMPLETED"
	Failed     JobStatus = "FAILED"
)

// ReconciliationJob tracks one reconciliation run end to end.
type ReconciliationJob struct {
	ID                 int             `json:"id" db:"id"`
	JobID              string          `json:"job_id" db:"job_id"`
	Type               ReconType       `json:"type" db:"type"`
	Status             JobStatus       `json:"status" db:"status"`
	TotalProcessed     int             `json:"total_processed" db:"total_processed"`
	TotalMatched       int             `json:"total_matched" db:"total_matched"`
	TotalMismatched    int             `json:"total_mismatched" db:"total_mismatched"`
	TotalMissing       int             `json:"total_missing" db:"total_missing"`
	TotalDiscrepancies decimal.Decimal `json:"total_discrepancies" db:"total_discrepancies"`
	ErrorMessage       *string         `json:"error_message,omitempty" db:"error_message"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// ReconciliationRow is one persisted outcome line of a job.
type ReconciliationRow struct {
	ID                int              `json:"id" db:"id"`
	JobID             string           `json:"job_id" db:"job_id"`
	Status            MatchStatus      `json:"status" db:"status"`
	BookInvoiceNo     *string          `json:"book_invoice_no,omitempty" db:"book_invoice_no"`
	ReturnInvoiceNo   *string          `json:"return_invoice_no,omitempty" db:"return_invoice_no"`
	GSTIN             *string          `json:"gstin,omitempty" db:"gstin"`
	BookTotal         *decimal.Decimal `json:"book_total,omitempty" db:"book_total"`
	ReturnTotal       *decimal.Decimal `json:"return_total,omitempty" db:"return_total"`
	TotalDelta        *decimal.Decimal `json:"total_delta,omitempty" db:"total_delta"`
	DiscrepancyCount  int              `json:"discrepancy_count" db:"discrepancy_count"`
	FuzzyConfidence   *float64         `json:"fuzzy_confidence,omitempty" db:"fuzzy_confidence"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
}
