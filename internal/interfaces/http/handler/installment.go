package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	billingapp "github.com/ledgera/backend/internal/application/billing"
	"github.com/ledgera/backend/internal/domain/billing"
)

// InstallmentHandler handles installment API endpoints
type InstallmentHandler struct {
	BaseHandler
	installments *billingapp.InstallmentService
}

// NewInstallmentHandler creates a new InstallmentHandler
func NewInstallmentHandler(installments *billingapp.InstallmentService) *InstallmentHandler {
	return &InstallmentHandler{installments: installments}
}

// CreateInstallmentRequest represents a request to add an installment
type CreateInstallmentRequest struct {
	DueDate        time.Time       `json:"due_date" binding:"required"`
	ExpectedAmount decimal.Decimal `json:"expected_amount" binding:"required"`
	Notes          string          `json:"notes"`
}

// UpdateInstallmentRequest represents a request to update an installment
type UpdateInstallmentRequest struct {
	DueDate        *time.Time       `json:"due_date"`
	ExpectedAmount *decimal.Decimal `json:"expected_amount"`
	Notes          *string          `json:"notes"`
}

// GeneratePlanRequest represents a request to generate an installment plan
type GeneratePlanRequest struct {
	FirstDue  time.Time       `json:"first_due" binding:"required"`
	Count     int             `json:"count" binding:"required,min=1,max=120"`
	Frequency string          `json:"frequency" binding:"required,oneof=WEEKLY BIWEEKLY MONTHLY"`
	Total     decimal.Decimal `json:"total"`
}

// PayRequest represents a request to record a payment
type PayRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Method string          `json:"method" binding:"omitempty,max=50"`
	PaidAt time.Time       `json:"paid_at"`
}

// Create handles POST /contracts/:id/installments
func (h *InstallmentHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	contractID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}
	var req CreateInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.installments.CreateInstallment(c.Request.Context(), tenantID, billingapp.CreateInstallmentInput{
		ContractID:     contractID,
		DueDate:        req.DueDate,
		ExpectedAmount: req.ExpectedAmount,
		Notes:          req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GeneratePlan handles POST /contracts/:id/installments/plan
func (h *InstallmentHandler) GeneratePlan(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	contractID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}
	var req GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.installments.GeneratePlan(c.Request.Context(), tenantID, billingapp.GeneratePlanInput{
		ContractID: contractID,
		FirstDue:   req.FirstDue,
		Count:      req.Count,
		Frequency:  billing.PlanFrequency(req.Frequency),
		Total:      req.Total,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListByContract handles GET /contracts/:id/installments
func (h *InstallmentHandler) ListByContract(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	contractID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	resp, err := h.installments.ListByContract(c.Request.Context(), tenantID, contractID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByID handles GET /installments/:id
func (h *InstallmentHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid installment ID")
		return
	}

	resp, err := h.installments.GetInstallment(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update handles PUT /installments/:id
func (h *InstallmentHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid installment ID")
		return
	}
	var req UpdateInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.installments.UpdateInstallment(c.Request.Context(), tenantID, id, billingapp.UpdateInstallmentInput{
		DueDate:        req.DueDate,
		ExpectedAmount: req.ExpectedAmount,
		Notes:          req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /installments/:id
func (h *InstallmentHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid installment ID")
		return
	}

	if err := h.installments.DeleteInstallment(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Pay handles POST /installments/:id/payments
func (h *InstallmentHandler) Pay(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid installment ID")
		return
	}
	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.installments.Pay(c.Request.Context(), tenantID, id, billingapp.PayInput{
		Amount: req.Amount,
		Method: req.Method,
		PaidAt: req.PaidAt,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Unpay handles DELETE /installments/:id/payments/:entryID
func (h *InstallmentHandler) Unpay(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid installment ID")
		return
	}
	entryID, err := parseIDParam(c, "entryID")
	if err != nil {
		h.BadRequest(c, "Invalid ledger entry ID")
		return
	}

	resp, err := h.installments.Unpay(c.Request.Context(), tenantID, id, entryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RegisterRoutes registers installment routes
func (h *InstallmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	contracts := rg.Group("/contracts")
	{
		contracts.POST("/:id/installments", h.Create)
		contracts.POST("/:id/installments/plan", h.GeneratePlan)
		contracts.GET("/:id/installments", h.ListByContract)
	}
	installments := rg.Group("/installments")
	{
		installments.GET("/:id", h.GetByID)
		installments.PUT("/:id", h.Update)
		installments.DELETE("/:id", h.Delete)
		installments.POST("/:id/payments", h.Pay)
		installments.DELETE("/:id/payments/:entryID", h.Unpay)
	}
}
