package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gst-recon/internal/domain"
	"gst-recon/internal/matcher"
	"gst-recon/internal/parser"
	"gst-recon/internal/repository"
	"gst-recon/pkg/logger"
)

// SalesReconciliation is a sales-side run with its job id attached.
type SalesReconciliation struct {
	JobID string `json:"job_id"`
	*matcher.Result
}

// PurchaseReconciliation is a purchase-side run with its job id attached.
type PurchaseReconciliation struct {
	JobID string `json:"job_id"`
	*matcher.PurchaseResult
}

type ReconciliationService interface {
	ReconcileSales(booksFilePath, returnFilePath string, tolerance decimal.Decimal) (*SalesReconciliation, error)
	ReconcilePurchase(purchaseFilePath, supplierFilePath string, tolerance decimal.Decimal) (*PurchaseReconciliation, error)
	GetJobStatus(jobID string) (*domain.ReconciliationJob, error)
	GetJobRows(jobID string, status domain.MatchStatus) ([]domain.ReconciliationRow, error)
}

type reconciliationService struct {
	invRepo          repository.InvoiceRepository
	reconRepo        repository.ReconciliationRepository
	batchSize        int
	defaultTolerance decimal.Decimal
}

func NewReconciliationService(
	invRepo repository.InvoiceRepository,
	reconRepo repository.ReconciliationRepository,
	batchSize int,
	defaultTolerance decimal.Decimal,
) ReconciliationService {
	return &reconciliationService{
		invRepo:          invRepo,
		reconRepo:        reconRepo,
		batchSize:        batchSize,
		defaultTolerance: defaultTolerance,
	}
}

// effectiveTolerance resolves the per-request tolerance against the
// configured default.
func (s *reconciliationService) effectiveTolerance(tolerance decimal.Decimal) decimal.Decimal {
	if tolerance.IsPositive() {
		return tolerance
	}
	return s.defaultTolerance
}

func (s *reconciliationService) ReconcileSales(
	booksFilePath, returnFilePath string,
	tolerance decimal.Decimal,
) (*SalesReconciliation, error) {
	job, err := s.createJob(domain.ReconSales)
	if err != nil {
		return nil, err
	}

	books, err := s.loadInvoices(booksFilePath, domain.SourceSalesRegister)
	if err != nil {
		s.failJob(job, err)
		return nil, fmt.Errorf("failed to load sales register: %w", err)
	}

	filed, err := s.loadInvoices(returnFilePath, domain.SourceGSTR1)
	if err != nil {
		s.failJob(job, err)
		return nil, fmt.Errorf("failed to load return extract: %w", err)
	}

	engine := matcher.NewEngine(matcher.MatchOptions{Tolerance: s.effectiveTolerance(tolerance)})
	result, err := engine.Reconcile(books, filed)
	if err != nil {
		s.failJob(job, err)
		return nil, fmt.Errorf("reconciliation failed: %w", err)
	}

	s.completeJob(job, &result.Summary, buildRows(job.JobID, result))

	return &SalesReconciliation{JobID: job.JobID, Result: result}, nil
}

func (s *reconciliationService) ReconcilePurchase(
	purchaseFilePath, supplierFilePath string,
	tolerance decimal.Decimal,
) (*PurchaseReconciliation, error) {
	job, err := s.createJob(domain.ReconPurchase)
	if err != nil {
		return nil, err
	}

	purchases, err := s.loadInvoices(purchaseFilePath, domain.SourcePurchaseRegister)
	if err != nil {
		s.failJob(job, err)
		return nil, fmt.Errorf("failed to load purchase register: %w", err)
	}

	supplierFiled, err := s.loadInvoices(supplierFilePath, domain.SourceGSTR2A)
	if err != nil {
		s.failJob(job, err)
		return nil, fmt.Errorf("failed to load supplier-filed extract: %w", err)
	}

	engine := matcher.NewPurchaseEngine(matcher.MatchOptions{Tolerance: s.effectiveTolerance(tolerance)})
	result, err := engine.Reconcile(purchases, supplierFiled)
	if err != nil {
		s.failJob(job, err)
		return nil, fmt.Errorf("reconciliation failed: %w", err)
	}

	s.completeJob(job, &result.Summary, buildRows(job.JobID, &result.Result))

	return &PurchaseReconciliation{JobID: job.JobID, PurchaseResult: result}, nil
}

func (s *reconciliationService) GetJobStatus(jobID string) (*domain.ReconciliationJob, error) {
	return s.reconRepo.GetJobByID(jobID)
}

func (s *reconciliationService) GetJobRows(jobID string, status domain.MatchStatus) ([]domain.ReconciliationRow, error) {
	if status == "" {
		return s.reconRepo.GetRowsByJobID(jobID)
	}
	return s.reconRepo.GetRowsByJobIDAndStatus(jobID, status)
}

// loadInvoices reads a register either from an uploaded CSV file or, when no
// file is given, from previously stored invoices.
func (s *reconciliationService) loadInvoices(filePath string, source domain.RegisterSource) ([]domain.Invoice, error) {
	if filePath == "" {
		return s.invRepo.GetBySource(source)
	}

	var invoices []domain.Invoice
	p := parser.NewCSVInvoiceParser(source)
	err := p.Parse(filePath, s.batchSize, func(batch []domain.Invoice) error {
		invoices = append(invoices, batch...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if invoices == nil {
		invoices = make([]domain.Invoice, 0)
	}
	return invoices, nil
}

func (s *reconciliationService) createJob(reconType domain.ReconType) (*domain.ReconciliationJob, error) {
	job := &domain.ReconciliationJob{
		JobID:              uuid.New().String(),
		Type:               reconType,
		Status:             domain.Processing,
		TotalDiscrepancies: decimal.Zero,
	}
	if err := s.reconRepo.CreateJob(job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"job_id": job.JobID,
		"type":   reconType,
	}).Info("Starting reconciliation job")

	return job, nil
}

func (s *reconciliationService) failJob(job *domain.ReconciliationJob, cause error) {
	msg := cause.Error()
	job.Status = domain.Failed
	job.ErrorMessage = &msg
	if err := s.reconRepo.UpdateJob(job); err != nil {
		logger.GetLogger().WithError(err).Error("Failed to update job")
	}
}

func (s *reconciliationService) completeJob(job *domain.ReconciliationJob, summary *domain.ReconSummary, rows []domain.ReconciliationRow) {
	if err := s.reconRepo.BulkCreateRows(rows); err != nil {
		logger.GetLogger().WithError(err).Error("Failed to save reconciliation rows")
	}

	job.TotalProcessed = summary.TotalBooks + summary.TotalReturn
	job.TotalMatched = summary.Matched
	job.TotalMismatched = summary.Mismatched
	job.TotalMissing = summary.MissingInReturn + summary.MissingInBooks
	job.TotalDiscrepancies = summary.TotalDiscrepancyAmount
	job.Status = domain.Completed

	if err := s.reconRepo.UpdateJob(job); err != nil {
		logger.GetLogger().WithError(err).Error("Failed to update job")
	}

	logger.GetLogger().WithField("job_id", job.JobID).Info("Reconciliation job completed")
}

// buildRows flattens an engine result into persistable outcome rows.
func buildRows(jobID string, result *matcher.Result) []domain.ReconciliationRow {
	rows := make([]domain.ReconciliationRow, 0,
		len(result.Matched)+len(result.Mismatched)+len(result.MissingInReturn)+len(result.MissingInBooks))

	pairRow := func(pair matcher.MatchedPair, status domain.MatchStatus) domain.ReconciliationRow {
		row := domain.ReconciliationRow{
			JobID:            jobID,
			Status:           status,
			BookInvoiceNo:    strPtr(pair.Book.InvoiceNumber),
			ReturnInvoiceNo:  strPtr(pair.Return.InvoiceNumber),
			GSTIN:            strPtr(pair.Book.GSTIN),
			BookTotal:        decPtr(pair.Book.Total),
			ReturnTotal:      decPtr(pair.Return.Total),
			TotalDelta:       decPtr(pair.TotalDelta),
			DiscrepancyCount: len(pair.Discrepancies),
		}
		if pair.Fuzzy {
			confidence := pair.Confidence
			row.FuzzyConfidence = &confidence
		}
		return row
	}

	for _, pair := range result.Matched {
		rows = append(rows, pairRow(pair, domain.StatusMatched))
	}
	for _, pair := range result.Mismatched {
		rows = append(rows, pairRow(pair, domain.StatusMismatched))
	}
	for _, inv := range result.MissingInReturn {
		rows = append(rows, domain.ReconciliationRow{
			JobID:         jobID,
			Status:        domain.StatusMissingInReturn,
			BookInvoiceNo: strPtr(inv.InvoiceNumber),
			GSTIN:         strPtr(inv.GSTIN),
			BookTotal:     decPtr(inv.Total),
		})
	}
	for _, inv := range result.MissingInBooks {
		rows = append(rows, domain.ReconciliationRow{
			JobID:           jobID,
			Status:          domain.StatusMissingInBooks,
			ReturnInvoiceNo: strPtr(inv.InvoiceNumber),
			GSTIN:           strPtr(inv.GSTIN),
			ReturnTotal:     decPtr(inv.Total),
		})
	}

	return rows
}

func strPtr(s string) *string {
	return &s
}

func decPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
