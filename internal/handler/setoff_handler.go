package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"gst-recon/internal/domain"
	"gst-recon/internal/setoff"
	"gst-recon/pkg/logger"
	"gst-recon/pkg/response"
)

type SetoffHandler struct{}

func NewSetoffHandler() *SetoffHandler {
	return &SetoffHandler{}
}

type HeadAmounts struct {
	CGST float64 `json:"cgst"`
	SGST float64 `json:"sgst"`
	IGST float64 `json:"igst"`
	Cess float64 `json:"cess"`
}

type SetoffRequest struct {
	Liability HeadAmounts `json:"liability" binding:"required"`
	Credit    HeadAmounts `json:"credit" binding:"required"`
}

// Compute godoc
// @Summary Compute the credit utilisation waterfall
// @Description Allocate available input tax credit against liability in the mandated head order and return cash payable and carry-forward per head
// @Tags setoff
// @Accept json
// @Produce json
// @Param request body SetoffRequest true "Liability and credit per head"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/setoff [post]
func (h *SetoffHandler) Compute(c *gin.Context) {
	var req SetoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.GetLogger().WithError(err).Error("Invalid request")
		response.ValidationError(c, err.Error())
		return
	}

	result, err := setoff.Allocate(toHeads(req.Liability), toHeads(req.Credit))
	if err != nil {
		response.BadRequest(c, "Invalid set-off input", err.Error())
		return
	}

	response.Success(c, http.StatusOK, "Set-off computed successfully", result)
}

func toHeads(a HeadAmounts) domain.TaxHeads {
	return domain.TaxHeads{
		CGST: decimal.NewFromFloat(a.CGST),
		SGST: decimal.NewFromFloat(a.SGST),
		IGST: decimal.NewFromFloat(a.IGST),
		Cess: decimal.NewFromFloat(a.Cess),
	}
}
