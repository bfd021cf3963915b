package billing

import (
	"github.com/ledgera/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventContractCreated            = "billing.contract.created"
	EventContractClosed             = "billing.contract.closed"
	EventContractReopened           = "billing.contract.reopened"
	EventInstallmentPaid            = "billing.installment.paid"
	EventInstallmentPaymentReverted = "billing.installment.payment_reverted"
)

// ContractCreatedEvent is raised when a new contract is sold
type ContractCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID     string          `json:"client_id"`
	PackageLabel string          `json:"package_label"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

func NewContractCreatedEvent(c *Contract) *ContractCreatedEvent {
	return &ContractCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventContractCreated, "Contract", c.ID, c.TenantID),
		ClientID:        c.ClientID.String(),
		PackageLabel:    c.PackageLabel,
		TotalPrice:      c.TotalPrice,
	}
}

// ContractClosedEvent is raised when a contract becomes fully paid and
// fully consumed
type ContractClosedEvent struct {
	shared.BaseDomainEvent
	ClientID  string          `json:"client_id"`
	TotalPaid decimal.Decimal `json:"total_paid"`
}

func NewContractClosedEvent(c *Contract) *ContractClosedEvent {
	return &ContractClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventContractClosed, "Contract", c.ID, c.TenantID),
		ClientID:        c.ClientID.String(),
		TotalPaid:       c.TotalPaid,
	}
}

// ContractReopenedEvent is raised when a closed contract stops satisfying
// the closure conditions, for example after a payment reversal
type ContractReopenedEvent struct {
	shared.BaseDomainEvent
	ClientID string `json:"client_id"`
}

func NewContractReopenedEvent(c *Contract) *ContractReopenedEvent {
	return &ContractReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventContractReopened, "Contract", c.ID, c.TenantID),
		ClientID:        c.ClientID.String(),
	}
}

// InstallmentPaidEvent is raised each time cash is collected against an
// installment
type InstallmentPaidEvent struct {
	shared.BaseDomainEvent
	ContractID string          `json:"contract_id"`
	Amount     decimal.Decimal `json:"amount"`
	PaidTotal  decimal.Decimal `json:"paid_total"`
}

func NewInstallmentPaidEvent(i *Installment, amount decimal.Decimal) *InstallmentPaidEvent {
	return &InstallmentPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInstallmentPaid, "Installment", i.ID, i.TenantID),
		ContractID:      i.ContractID.String(),
		Amount:          amount,
		PaidTotal:       i.PaidAmount,
	}
}

// InstallmentPaymentRevertedEvent is raised when a recorded payment is
// undone
type InstallmentPaymentRevertedEvent struct {
	shared.BaseDomainEvent
	ContractID string          `json:"contract_id"`
	Amount     decimal.Decimal `json:"amount"`
	PaidTotal  decimal.Decimal `json:"paid_total"`
}

func NewInstallmentPaymentRevertedEvent(i *Installment, amount decimal.Decimal) *InstallmentPaymentRevertedEvent {
	return &InstallmentPaymentRevertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInstallmentPaymentReverted, "Installment", i.ID, i.TenantID),
		ContractID:      i.ContractID.String(),
		Amount:          amount,
		PaidTotal:       i.PaidAmount,
	}
}
