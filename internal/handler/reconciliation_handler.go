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

type ReconciliationHandler struct {
	service service.ReconciliationService
}

func NewReconciliationHandler(service service.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{service: service}
}

type ReconcileSalesRequest struct {
	BooksFilePath   string  `json:"books_file_path"`
	ReturnFilePath  string  `json:"return_file_path"`
	ToleranceAmount float64 `json:"tolerance_amount"`
}

type ReconcilePurchaseRequest struct {
	PurchaseFilePath string  `json:"purchase_file_path"`
	SupplierFilePath string  `json:"supplier_file_path"`
	ToleranceAmount  float64 `json:"tolerance_amount"`
}

// ReconcileSales godoc
// @Summary Reconcile sales register against filed return
// @Description Match sales register invoices against the GSTR-1 extract and report discrepancies
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param request body ReconcileSalesRequest true "Reconciliation request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/reconcile/sales [post]
func (h *ReconciliationHandler) ReconcileSales(c *gin.Context) {
	var req ReconcileSalesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithError(err).Error("Invalid request")
		response.ValidationError(c, err.Error())
		return
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"books_file":  req.BooksFilePath,
		"return_file": req.ReturnFilePath,
		"tolerance":   req.ToleranceAmount,
	}).Info("Starting sales reconciliation")

	result, err := h.service.ReconcileSales(req.BooksFilePath, req.ReturnFilePath, tolerance(req.ToleranceAmount))
	if err != nil {
		logger.GetLogger().WithError(err).Error("Sales reconciliation failed")
		response.InternalError(c, "Reconciliation failed", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Reconciliation completed successfully", result)
}

// ReconcilePurchase godoc
// @Summary Reconcile purchase register against supplier-filed extract
// @Description Match purchase register invoices against the GSTR-2A extract and compute credit exposure
// @Tags reconciliation
// @Accept json
// @Produce json
// @Param request body ReconcilePurchaseRequest true "Reconciliation request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/reconcile/purchase [post]
func (h *ReconciliationHandler) ReconcilePurchase(c *gin.Context) {
	var req ReconcilePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithError(err).Error("Invalid request")
		response.ValidationError(c, err.Error())
		return
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"purchase_file": req.PurchaseFilePath,
		"supplier_file": req.SupplierFilePath,
		"tolerance":     req.ToleranceAmount,
	}).Info("Starting purchase reconciliation")

	result, err := h.service.ReconcilePurchase(req.PurchaseFilePath, req.SupplierFilePath, tolerance(req.ToleranceAmount))
	if err != nil {
		logger.GetLogger().WithError(err).Error("Purchase reconciliation failed")
		response.InternalError(c, "Reconciliation failed", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Reconciliation completed successfully", result)
}

// GetJobStatus godoc
// @Summary Get reconciliation job status
// @Description Get the status of a reconciliation job by ID
// @Tags reconciliation
// @Produce json
// @Param job_id path string true "Job ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/reconcile/jobs/{job_id} [get]
func (h *ReconciliationHandler) GetJobStatus(c *gin.Context) {
	jobID := c.Param("job_id")

	job, err := h.service.GetJobStatus(jobID)
	if err != nil {
		logger.GetLogger().WithError(err).WithField("job_id", jobID).Error("Job not found")
		response.NotFound(c, "Job not found")
		return
	}

	response.Success(c, http.StatusOK, "Job status retrieved successfully", job)
}

// GetJobRows godoc
// @Summary Get reconciliation job outcome rows
// @Description Get the persisted outcome rows of a job, optionally filtered by match status
// @Tags reconciliation
// @Produce json
// @Param job_id path string true "Job ID"
// @Param status query string false "Match status filter"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/reconcile/jobs/{job_id}/rows [get]
func (h *ReconciliationHandler) GetJobRows(c *gin.Context) {
	jobID := c.Param("job_id")
	status := domain.MatchStatus(c.Query("status"))

	rows, err := h.service.GetJobRows(jobID, status)
	if err != nil {
		logger.GetLogger().WithError(err).WithField("job_id", jobID).Error("Failed to get job rows")
		response.NotFound(c, "Job not found")
		return
	}

	response.Success(c, http.StatusOK, "Job rows retrieved successfully", rows)
}

// tolerance converts the request tolerance, falling back to the engine
// default when the caller sends zero or omits the field.
func tolerance(amount float64) decimal.Decimal {
	if amount <= 0 {
		return decimal.Zero // engine substitutes its default
	}
	return decimal.NewFromFloat(amount)
}
