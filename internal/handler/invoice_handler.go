package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"gst-recon/internal/domain"
	"gst-recon/internal/service"
	"gst-recon/pkg/logger"
	"gst-recon/pkg/response"
)

type InvoiceHandler struct {
	service service.InvoiceService
}

func NewInvoiceHandler(service service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

type CreateInvoiceRequest struct {
	InvoiceNumber string  `json:"invoice_number" binding:"required"`
	InvoiceDate   string  `json:"invoice_date"`
	GSTIN         string  `json:"gstin"`
	PartyName     string  `json:"party_name"`
	TaxableValue  float64 `json:"taxable_value"`
	CGST          float64 `json:"cgst"`
	SGST          float64 `json:"sgst"`
	IGST          float64 `json:"igst"`
	Cess          float64 `json:"cess"`
	Total         float64 `json:"total"`
	PlaceOfSupply string  `json:"place_of_supply"`
	ReverseCharge bool    `json:"reverse_charge"`
	Source        string  `json:"source" binding:"required,oneof=SALES_REGISTER GSTR1 PURCHASE_REGISTER GSTR2A"`
}

type UploadRegisterRequest struct {
	FilePath string `json:"file_path" binding:"required"`
	Source   string `json:"source" binding:"required,oneof=SALES_REGISTER GSTR1 PURCHASE_REGISTER GSTR2A"`
	Replace  bool   `json:"replace"`
}

// CreateInvoice godoc
// @Summary Create a single invoice
// @Description Store one invoice row in the given register
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoice body CreateInvoiceRequest true "Invoice data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithError(err).Error("Invalid request")
		response.ValidationError(c, err.Error())
		return
	}

	inv := &domain.Invoice{
		InvoiceNumber: req.InvoiceNumber,
		InvoiceDate:   req.InvoiceDate,
		GSTIN:         req.GSTIN,
		PartyName:     req.PartyName,
		TaxableValue:  decimal.NewFromFloat(req.TaxableValue),
		CGST:          decimal.NewFromFloat(req.CGST),
		SGST:          decimal.NewFromFloat(req.SGST),
		IGST:          decimal.NewFromFloat(req.IGST),
		Cess:          decimal.NewFromFloat(req.Cess),
		Total:         decimal.NewFromFloat(req.Total),
		PlaceOfSupply: req.PlaceOfSupply,
		ReverseCharge: req.ReverseCharge,
		Source:        domain.RegisterSource(req.Source),
	}

	if err := h.service.Create(inv); err != nil {
		logger.GetLogger().WithError(err).Error("Failed to create invoice")
		response.InternalError(c, "Failed to create invoice", err.Error())
		return
	}

	response.Success(c, http.StatusCreated, "Invoice created successfully", inv)
}

// UploadRegister godoc
// @Summary Upload an invoice register CSV
// @Description Ingest a register file into storage for later reconciliation
// @Tags invoices
// @Accept json
// @Produce json
// @Param request body UploadRegisterRequest true "Upload request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/invoices/upload [post]
func (h *InvoiceHandler) UploadRegister(c *gin.Context) {
	var req UploadRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithError(err).Error("Invalid request")
		response.ValidationError(c, err.Error())
		return
	}

	count, err := h.service.UploadRegister(req.FilePath, domain.RegisterSource(req.Source), req.Replace)
	if err != nil {
		logger.GetLogger().WithError(err).WithField("file", req.FilePath).Error("Failed to upload register")
		response.InternalError(c, "Failed to upload register", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Register uploaded successfully", gin.H{
		"source": req.Source,
		"rows":   count,
	})
}

// GetRegister godoc
// @Summary List invoices of a register
// @Description Get all stored invoices for one register source
// @Tags invoices
// @Produce json
// @Param source query string true "Register source"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/invoices [get]
func (h *InvoiceHandler) GetRegister(c *gin.Context) {
	source := domain.RegisterSource(c.Query("source"))
	if source == "" {
		response.BadRequest(c, "Missing source", "Provide a source query parameter")
		return
	}

	invoices, err := h.service.GetBySource(source)
	if err != nil {
		logger.GetLogger().WithError(err).Error("Failed to get invoices")
		response.InternalError(c, "Failed to get invoices", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Invoices retrieved successfully", invoices)
}
