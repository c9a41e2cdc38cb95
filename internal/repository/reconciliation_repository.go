package repository

import (
	"database/sql"
	"fmt"

	"gst-recon/internal/domain"
	"gst-recon/pkg/logger"
)

type ReconciliationRepository interface {
	CreateJob(job *domain.ReconciliationJob) error
	UpdateJob(job *domain.ReconciliationJob) error
	GetJobByID(jobID string) (*domain.ReconciliationJob, error)
	BulkCreateRows(rows []domain.ReconciliationRow) error
	GetRowsByJobID(jobID string) ([]domain.ReconciliationRow, error)
	GetRowsByJobIDAndStatus(jobID string, status domain.MatchStatus) ([]domain.ReconciliationRow, error)
}

type reconciliationRepository struct {
	db *sql.DB
}

func NewReconciliationRepository(db *sql.DB) ReconciliationRepository {
	return &reconciliationRepository{db: db}
}

func (r *reconciliationRepository) CreateJob(job *domain.ReconciliationJob) error {
	query := `
		INSERT INTO reconciliation_jobs (
			job_id, type, status, total_processed, total_matched,
			total_mismatched, total_missing, total_discrepancies
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		job.JobID,
		job.Type,
		job.Status,
		job.TotalProcessed,
		job.TotalMatched,
		job.TotalMismatched,
		job.TotalMissing,
		job.TotalDiscrepancies,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)

	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to create reconciliation job")
		return err
	}

	return nil
}

func (r *reconciliationRepository) UpdateJob(job *domain.ReconciliationJob) error {
	query := `
		UPDATE reconciliation_jobs
		SET status = $1, total_processed = $2, total_matched = $3,
			total_mismatched = $4, total_missing = $5, total_discrepancies = $6,
			error_message = $7, updated_at = NOW()
		WHERE job_id = $8
	`

	_, err := r.db.Exec(
		query,
		job.Status,
		job.TotalProcessed,
		job.TotalMatched,
		job.TotalMismatched,
		job.TotalMissing,
		job.TotalDiscrepancies,
		job.ErrorMessage,
		job.JobID,
	)

	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to update reconciliation job")
		return err
	}

	return nil
}

func (r *reconciliationRepository) GetJobByID(jobID string) (*domain.ReconciliationJob, error) {
	query := `
		SELECT id, job_id, type, status, total_processed, total_matched,
			   total_mismatched, total_missing, total_discrepancies,
			   error_message, created_at, updated_at
		FROM reconciliation_jobs
		WHERE job_id = $1
	`

	var job domain.ReconciliationJob
	err := r.db.QueryRow(query, jobID).Scan(
		&job.ID,
		&job.JobID,
		&job.Type,
		&job.Status,
		&job.TotalProcessed,
		&job.TotalMatched,
		&job.TotalMismatched,
		&job.TotalMissing,
		&job.TotalDiscrepancies,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("reconciliation job not found")
	}
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to get reconciliation job")
		return nil, err
	}

	return &job, nil
}

func (r *reconciliationRepository) BulkCreateRows(rows []domain.ReconciliationRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to begin transaction")
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO reconciliation_rows (
			job_id, status, book_invoice_no, return_invoice_no, gstin,
			book_total, return_total, total_delta, discrepancy_count, fuzzy_confidence
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to prepare statement")
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err = stmt.Exec(
			row.JobID,
			row.Status,
			row.BookInvoiceNo,
			row.ReturnInvoiceNo,
			row.GSTIN,
			row.BookTotal,
			row.ReturnTotal,
			row.TotalDelta,
			row.DiscrepancyCount,
			row.FuzzyConfidence,
		)
		if err != nil {
			logger.GetLogger().WithError(err).Error("Failed to insert reconciliation row")
			continue
		}
	}

	if err := tx.Commit(); err != nil {
		logger.GetLogger().WithError(err).Error("Failed to commit transaction")
		return err
	}

	return nil
}

func (r *reconciliationRepository) GetRowsByJobID(jobID string) ([]domain.ReconciliationRow, error) {
	query := `
		SELECT id, job_id, status, book_invoice_no, return_invoice_no, gstin,
			   book_total, return_total, total_delta, discrepancy_count,
			   fuzzy_confidence, created_at
		FROM reconciliation_rows
		WHERE job_id = $1
		ORDER BY id
	`
	return r.queryRows(query, jobID)
}

func (r *reconciliationRepository) GetRowsByJobIDAndStatus(jobID string, status domain.MatchStatus) ([]domain.ReconciliationRow, error) {
	query := `
		SELECT id, job_id, status, book_invoice_no, return_invoice_no, gstin,
			   book_total, return_total, total_delta, discrepancy_count,
			   fuzzy_confidence, created_at
		FROM reconciliation_rows
		WHERE job_id = $1 AND status = $2
		ORDER BY id
	`
	return r.queryRows(query, jobID, status)
}

func (r *reconciliationRepository) queryRows(query string, args ...interface{}) ([]domain.ReconciliationRow, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to query reconciliation rows")
		return nil, err
	}
	defer rows.Close()

	var results []domain.ReconciliationRow
	for rows.Next() {
		var row domain.ReconciliationRow
		err := rows.Scan(
			&row.ID,
			&row.JobID,
			&row.Status,
			&row.BookInvoiceNo,
			&row.ReturnInvoiceNo,
			&row.GSTIN,
			&row.BookTotal,
			&row.ReturnTotal,
			&row.TotalDelta,
			&row.DiscrepancyCount,
			&row.FuzzyConfidence,
			&row.CreatedAt,
		)
		if err != nil {
			logger.GetLogger().WithError(err).Error("Failed to scan reconciliation row")
			return nil, err
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
