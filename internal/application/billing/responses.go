package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgera/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// ContractResponse represents a contract in API responses
type ContractResponse struct {
	ID            uuid.UUID       `json:"id"`
	ClientID      uuid.UUID       `json:"client_id"`
	PackageLabel  string          `json:"package_label"`
	SaleDate      time.Time       `json:"sale_date"`
	StartDate     time.Time       `json:"start_date"`
	ExpiryDate    time.Time       `json:"expiry_date"`
	TotalCredits  int             `json:"total_credits"`
	UsedCredits   int             `json:"used_credits"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	PaymentStatus string          `json:"payment_status"`
	Closed        bool            `json:"closed"`
	ClosedAt      *time.Time      `json:"closed_at,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

func toContractResponse(c *billing.Contract, usedCredits int) *ContractResponse {
	return &ContractResponse{
		ID:            c.ID,
		ClientID:      c.ClientID,
		PackageLabel:  c.PackageLabel,
		SaleDate:      c.SaleDate,
		StartDate:     c.StartDate,
		ExpiryDate:    c.ExpiryDate,
		TotalCredits:  c.TotalCredits,
		UsedCredits:   usedCredits,
		TotalPrice:    c.TotalPrice,
		DepositAmount: c.DepositAmount,
		TotalPaid:     c.TotalPaid,
		Outstanding:   c.Outstanding(),
		PaymentStatus: c.PaymentStatus.String(),
		Closed:        c.Closed,
		ClosedAt:      c.ClosedAt,
		Notes:         c.Notes,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
		Version:       c.Version,
	}
}

// InstallmentResponse represents an installment in API responses
type InstallmentResponse struct {
	ID             uuid.UUID       `json:"id"`
	ContractID     uuid.UUID       `json:"contract_id"`
	DueDate        time.Time       `json:"due_date"`
	ExpectedAmount decimal.Decimal `json:"expected_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	Remaining      decimal.Decimal `json:"remaining"`
	Status         string          `json:"status"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

func toInstallmentResponse(i *billing.Installment) *InstallmentResponse {
	return &InstallmentResponse{
		ID:             i.ID,
		ContractID:     i.ContractID,
		DueDate:        i.DueDate,
		ExpectedAmount: i.ExpectedAmount,
		PaidAmount:     i.PaidAmount,
		Remaining:      i.Remaining(),
		Status:         i.Status.String(),
		Notes:          i.Notes,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
		Version:        i.Version,
	}
}

// LedgerEntryResponse represents a ledger entry in API responses
type LedgerEntryResponse struct {
	ID                uuid.UUID       `json:"id"`
	ClientID          *uuid.UUID      `json:"client_id,omitempty"`
	ContractID        *uuid.UUID      `json:"contract_id,omitempty"`
	InstallmentID     *uuid.UUID      `json:"installment_id,omitempty"`
	RecurringSourceID *uuid.UUID      `json:"recurring_source_id,omitempty"`
	Direction         string          `json:"direction"`
	Source            string          `json:"source"`
	Amount            decimal.Decimal `json:"amount"`
	EntryDate         time.Time       `json:"entry_date"`
	EffectiveDate     time.Time       `json:"effective_date"`
	Description       string          `json:"description"`
	DedupKey          string          `json:"dedup_key,omitempty"`
	Operator          string          `json:"operator,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

func toLedgerEntryResponse(e *billing.LedgerEntry) *LedgerEntryResponse {
	return &LedgerEntryResponse{
		ID:                e.ID,
		ClientID:          e.ClientID,
		ContractID:        e.ContractID,
		InstallmentID:     e.InstallmentID,
		RecurringSourceID: e.RecurringSourceID,
		Direction:         string(e.Direction),
		Source:            string(e.Source),
		Amount:            e.Amount,
		EntryDate:         e.EntryDate,
		EffectiveDate:     e.EffectiveDate,
		Description:       e.Description,
		DedupKey:          e.DedupKey,
		Operator:          e.Operator,
		CreatedAt:         e.CreatedAt,
	}
}
