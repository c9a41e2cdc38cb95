package service

import (
	"fmt"

	"gst-recon/internal/domain"
	"gst-recon/internal/parser"
	"gst-recon/internal/repository"
	"gst-recon/pkg/logger"
)

type InvoiceService interface {
	Create(inv *domain.Invoice) error
	UploadRegister(filePath string, source domain.RegisterSource, replace bool) (int, error)
	GetBySource(source domain.RegisterSource) ([]domain.Invoice, error)
}

type invoiceService struct {
	repo      repository.InvoiceRepository
	batchSize int
}

func NewInvoiceService(repo repository.InvoiceRepository, batchSize int) InvoiceService {
	return &invoiceService{repo: repo, batchSize: batchSize}
}

func (s *invoiceService) Create(inv *domain.Invoice) error {
	if inv.InvoiceNumber == "" {
		return fmt.Errorf("invoice number is required")
	}
	if inv.Source == "" {
		return fmt.Errorf("register source is required")
	}
	return s.repo.Create(inv)
}

// UploadRegister ingests a register CSV into storage, optionally replacing
// the previously uploaded register of the same source. Returns the number of
// rows stored.
func (s *invoiceService) UploadRegister(filePath string, source domain.RegisterSource, replace bool) (int, error) {
	if filePath == "" {
		return 0, fmt.Errorf("file path is required")
	}

	if replace {
		deleted, err := s.repo.DeleteBySource(source)
		if err != nil {
			return 0, fmt.Errorf("failed to clear register: %w", err)
		}
		logger.GetLogger().WithFields(map[string]interface{}{
			"source":  source,
			"deleted": deleted,
		}).Info("Cleared previous register upload")
	}

	total := 0
	p := parser.NewCSVInvoiceParser(source)
	err := p.Parse(filePath, s.batchSize, func(batch []domain.Invoice) error {
		if err := s.repo.BulkCreate(batch); err != nil {
			return err
		}
		total += len(batch)
		return nil
	})
	if err != nil {
		return total, err
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"source": source,
		"rows":   total,
	}).Info("Register uploaded")

	return total, nil
}

func (s *invoiceService) GetBySource(source domain.RegisterSource) ([]domain.Invoice, error) {
	if source == "" {
		return nil, fmt.Errorf("register source is required")
	}
	return s.repo.GetBySource(source)
}
