package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	billingapp "github.com/ledgera/backend/internal/application/billing"
	"github.com/ledgera/backend/internal/domain/billing"
	"github.com/ledgera/backend/internal/interfaces/http/dto"
)

// LedgerHandler handles ledger API endpoints
type LedgerHandler struct {
	BaseHandler
	ledger *billingapp.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledger *billingapp.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// CreateEntryRequest represents a request to book a ledger entry
type CreateEntryRequest struct {
	Direction         string          `json:"direction" binding:"required,oneof=INCOME EXPENSE"`
	Source            string          `json:"source" binding:"required,oneof=MANUAL RECURRING_EXPENSE"`
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	EntryDate         time.Time       `json:"entry_date" binding:"required"`
	Description       string          `json:"description" binding:"required,min=1,max=500"`
	RecurringSourceID string          `json:"recurring_source_id" binding:"omitempty,uuid"`
	DedupKey          string          `json:"dedup_key" binding:"omitempty,max=200"`
}

// PeriodRequest represents a date-window query
type PeriodRequest struct {
	From time.Time `form:"from" binding:"required" time_format:"2006-01-02"`
	To   time.Time `form:"to" binding:"required" time_format:"2006-01-02"`
}

// Create handles POST /ledger
func (h *LedgerHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := billingapp.CreateEntryInput{
		Direction:   billing.EntryDirection(req.Direction),
		Source:      billing.EntrySource(req.Source),
		Amount:      req.Amount,
		EntryDate:   req.EntryDate,
		Description: req.Description,
		DedupKey:    req.DedupKey,
	}
	if req.RecurringSourceID != "" {
		sourceID, err := parseUUID(req.RecurringSourceID)
		if err != nil {
			h.BadRequest(c, "Invalid recurring source ID")
			return
		}
		input.RecurringSourceID = &sourceID
	}
	resp, err := h.ledger.CreateEntry(c.Request.Context(), tenantID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID handles GET /ledger/:id
func (h *LedgerHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid ledger entry ID")
		return
	}

	resp, err := h.ledger.GetEntry(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByPeriod handles GET /ledger
func (h *LedgerHandler) ListByPeriod(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	var period PeriodRequest
	if err := c.ShouldBindQuery(&period); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.ledger.ListByPeriod(c.Request.Context(), tenantID, period.From, period.To, toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Summarize handles GET /ledger/summary
func (h *LedgerHandler) Summarize(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	var period PeriodRequest
	if err := c.ShouldBindQuery(&period); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.ledger.Summarize(c.Request.Context(), tenantID, period.From, period.To)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByInstallment handles GET /installments/:id/payments
func (h *LedgerHandler) ListByInstallment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	installmentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid installment ID")
		return
	}

	resp, err := h.ledger.ListByInstallment(c.Request.Context(), tenantID, installmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RegisterRoutes registers ledger routes
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ledger := rg.Group("/ledger")
	{
		ledger.POST("", h.Create)
		ledger.GET("", h.ListByPeriod)
		ledger.GET("/summary", h.Summarize)
		ledger.GET("/:id", h.GetByID)
	}
	rg.GET("/installments/:id/payments", h.ListByInstallment)
}
