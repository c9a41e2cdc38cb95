package repository

import (
	"database/sql"
	"fmt"

	"gst-recon/internal/domain"
	"gst-recon/pkg/logger"
)

type InvoiceRepository interface {
	Create(inv *domain.Invoice) error
	BulkCreate(invoices []domain.Invoice) error
	GetBySource(source domain.RegisterSource) ([]domain.Invoice, error)
	DeleteBySource(source domain.RegisterSource) (int64, error)
}

type invoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(db *sql.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(inv *domain.Invoice) error {
	query := `
		INSERT INTO invoices (
			invoice_number, invoice_date, gstin, party_name,
			taxable_value, cgst, sgst, igst, cess, total,
			place_of_supply, reverse_charge, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		query,
		inv.InvoiceNumber,
		inv.InvoiceDate,
		inv.GSTIN,
		inv.PartyName,
		inv.TaxableValue,
		inv.CGST,
		inv.SGST,
		inv.IGST,
		inv.Cess,
		inv.Total,
		inv.PlaceOfSupply,
		inv.ReverseCharge,
		inv.Source,
	).Scan(&inv.ID, &inv.CreatedAt)

	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to create invoice")
		return err
	}

	return nil
}

func (r *invoiceRepository) BulkCreate(invoices []domain.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to begin transaction")
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO invoices (
			invoice_number, invoice_date, gstin, party_name,
			taxable_value, cgst, sgst, igst, cess, total,
			place_of_supply, reverse_charge, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to prepare statement")
		return err
	}
	defer stmt.Close()

	for _, inv := range invoices {
		_, err = stmt.Exec(
			inv.InvoiceNumber,
			inv.InvoiceDate,
			inv.GSTIN,
			inv.PartyName,
			inv.TaxableValue,
			inv.CGST,
			inv.SGST,
			inv.IGST,
			inv.Cess,
			inv.Total,
			inv.PlaceOfSupply,
			inv.ReverseCharge,
			inv.Source,
		)
		if err != nil {
			logger.GetLogger().WithError(err).WithField("invoice_number", inv.InvoiceNumber).Error("Failed to insert invoice")
			continue // Continue with next invoice instead of breaking
		}
	}

	if err := tx.Commit(); err != nil {
		logger.GetLogger().WithError(err).Error("Failed to commit transaction")
		return err
	}

	return nil
}

func (r *invoiceRepository) GetBySource(source domain.RegisterSource) ([]domain.Invoice, error) {
	query := `
		SELECT id, invoice_number, invoice_date, gstin, party_name,
			   taxable_value, cgst, sgst, igst, cess, total,
			   place_of_supply, reverse_charge, source, created_at
		FROM invoices
		WHERE source = $1
		ORDER BY id
	`

	rows, err := r.db.Query(query, source)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to query invoices")
		return nil, err
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		var inv domain.Invoice
		err := rows.Scan(
			&inv.ID,
			&inv.InvoiceNumber,
			&inv.InvoiceDate,
			&inv.GSTIN,
			&inv.PartyName,
			&inv.TaxableValue,
			&inv.CGST,
			&inv.SGST,
			&inv.IGST,
			&inv.Cess,
			&inv.Total,
			&inv.PlaceOfSupply,
			&inv.ReverseCharge,
			&inv.Source,
			&inv.CreatedAt,
		)
		if err != nil {
			logger.GetLogger().WithError(err).Error("Failed to scan invoice")
			return nil, err
		}
		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if invoices == nil {
		invoices = make([]domain.Invoice, 0)
	}

	return invoices, nil
}

func (r *invoiceRepository) DeleteBySource(source domain.RegisterSource) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM invoices WHERE source = $1`, source)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to delete invoices")
		return 0, err
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return deleted, nil
}
