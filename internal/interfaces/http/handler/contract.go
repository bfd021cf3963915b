package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	billingapp "github.com/ledgera/backend/internal/application/billing"
	"github.com/ledgera/backend/internal/domain/shared"
	"github.com/ledgera/backend/internal/interfaces/http/dto"
)

// ContractHandler handles contract API endpoints
type ContractHandler struct {
	BaseHandler
	contracts *billingapp.ContractService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contracts *billingapp.ContractService) *ContractHandler {
	return &ContractHandler{contracts: contracts}
}

// CreateContractRequest represents a request to create a contract
type CreateContractRequest struct {
	ClientID      string          `json:"client_id" binding:"required,uuid"`
	PackageLabel  string          `json:"package_label" binding:"required,min=1,max=200"`
	SaleDate      time.Time       `json:"sale_date" binding:"required"`
	StartDate     time.Time       `json:"start_date" binding:"required"`
	ExpiryDate    time.Time       `json:"expiry_date" binding:"required"`
	TotalCredits  int             `json:"total_credits" binding:"min=0"`
	TotalPrice    decimal.Decimal `json:"total_price" binding:"required"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	Notes         string          `json:"notes"`
}

// UpdateContractRequest represents a request to update a contract
type UpdateContractRequest struct {
	PackageLabel *string    `json:"package_label" binding:"omitempty,min=1,max=200"`
	SaleDate     *time.Time `json:"sale_date"`
	StartDate    *time.Time `json:"start_date"`
	ExpiryDate   *time.Time `json:"expiry_date"`
	TotalCredits *int       `json:"total_credits" binding:"omitempty,min=0"`
	Notes        *string    `json:"notes"`
}

// Create handles POST /contracts
func (h *ContractHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	clientID, err := parseUUID(req.ClientID)
	if err != nil {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	resp, err := h.contracts.CreateContract(c.Request.Context(), tenantID, billingapp.CreateContractInput{
		ClientID:      clientID,
		PackageLabel:  req.PackageLabel,
		SaleDate:      req.SaleDate,
		StartDate:     req.StartDate,
		ExpiryDate:    req.ExpiryDate,
		TotalCredits:  req.TotalCredits,
		TotalPrice:    req.TotalPrice,
		DepositAmount: req.DepositAmount,
		Notes:         req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID handles GET /contracts/:id
func (h *ContractHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	resp, err := h.contracts.GetContract(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /contracts
func (h *ContractHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.contracts.ListContracts(c.Request.Context(), tenantID, toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update handles PUT /contracts/:id
func (h *ContractHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}
	var req UpdateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.contracts.UpdateContract(c.Request.Context(), tenantID, id, billingapp.UpdateContractInput{
		PackageLabel: req.PackageLabel,
		SaleDate:     req.SaleDate,
		StartDate:    req.StartDate,
		ExpiryDate:   req.ExpiryDate,
		TotalCredits: req.TotalCredits,
		Notes:        req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /contracts/:id
func (h *ContractHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	if err := h.contracts.DeleteContract(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SyncClosure handles POST /contracts/:id/closure/sync
func (h *ContractHandler) SyncClosure(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	resp, err := h.contracts.SyncClosure(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RegisterRoutes registers contract routes
func (h *ContractHandler) RegisterRoutes(rg *gin.RouterGroup) {
	contracts := rg.Group("/contracts")
	{
		contracts.POST("", h.Create)
		contracts.GET("", h.List)
		contracts.GET("/:id", h.GetByID)
		contracts.PUT("/:id", h.Update)
		contracts.DELETE("/:id", h.Delete)
		contracts.POST("/:id/closure/sync", h.SyncClosure)
	}
}

// toFilter converts a list request to the shared query filter
func toFilter(req dto.ListRequest) shared.Filter {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search
	return filter
}
