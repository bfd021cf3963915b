package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	billingapp "github.com/ledgera/backend/internal/application/billing"
)

// ReportHandler handles reporting API endpoints
type ReportHandler struct {
	BaseHandler
	reports *billingapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports *billingapp.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// AgingReportRequest represents a request for the receivable aging report
type AgingReportRequest struct {
	AsOf time.Time `form:"as_of" time_format:"2006-01-02"`
}

// Aging handles GET /reports/aging
func (h *ReportHandler) Aging(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	var req AgingReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.reports.AgingReport(c.Request.Context(), tenantID, req.AsOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/aging", h.Aging)
	}
}
