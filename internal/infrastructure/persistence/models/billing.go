package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgera/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// ContractModel is the persistence model for the Contract aggregate root.
// TotalPaid, PaymentStatus and Closed are stored projections of derived
// state; they are rewritten inside every transaction that touches the
// contract's money.
type ContractModel struct {
	TenantAggregateModel
	ClientID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	PackageLabel  string                `gorm:"type:varchar(200);not null"`
	SaleDate      time.Time             `gorm:"not null"`
	StartDate     time.Time             `gorm:"not null"`
	ExpiryDate    time.Time             `gorm:"not null;index"`
	TotalCredits  int                   `gorm:"not null;default:0"`
	TotalPrice    decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	DepositAmount decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TotalPaid     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaymentStatus billing.PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Closed        bool                  `gorm:"not null;default:false;index"`
	ClosedAt      *time.Time
	Notes         string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "contracts"
}

// ToDomain converts the persistence model to a domain Contract entity.
func (m *ContractModel) ToDomain() *billing.Contract {
	c := &billing.Contract{
		ClientID:      m.ClientID,
		PackageLabel:  m.PackageLabel,
		SaleDate:      m.SaleDate,
		StartDate:     m.StartDate,
		ExpiryDate:    m.ExpiryDate,
		TotalCredits:  m.TotalCredits,
		TotalPrice:    m.TotalPrice,
		DepositAmount: m.DepositAmount,
		TotalPaid:     m.TotalPaid,
		PaymentStatus: m.PaymentStatus,
		Closed:        m.Closed,
		ClosedAt:      m.ClosedAt,
		Notes:         m.Notes,
	}
	m.PopulateTenantAggregateRoot(&c.TenantAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain Contract entity.
func (m *ContractModel) FromDomain(c *billing.Contract) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.ClientID = c.ClientID
	m.PackageLabel = c.PackageLabel
	m.SaleDate = c.SaleDate
	m.StartDate = c.StartDate
	m.ExpiryDate = c.ExpiryDate
	m.TotalCredits = c.TotalCredits
	m.TotalPrice = c.TotalPrice
	m.DepositAmount = c.DepositAmount
	m.TotalPaid = c.TotalPaid
	m.PaymentStatus = c.PaymentStatus
	m.Closed = c.Closed
	m.ClosedAt = c.ClosedAt
	m.Notes = c.Notes
}

// ContractModelFromDomain creates a new persistence model from a domain Contract.
func ContractModelFromDomain(c *billing.Contract) *ContractModel {
	m := &ContractModel{}
	m.FromDomain(c)
	return m
}

// InstallmentModel is the persistence model for the Installment aggregate root.
type InstallmentModel struct {
	TenantAggregateModel
	ContractID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	DueDate        time.Time             `gorm:"not null;index"`
	ExpectedAmount decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaidAmount     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Status         billing.PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Notes          string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InstallmentModel) TableName() string {
	return "installments"
}

// ToDomain converts the persistence model to a domain Installment entity.
func (m *InstallmentModel) ToDomain() *billing.Installment {
	inst := &billing.Installment{
		ContractID:     m.ContractID,
		DueDate:        m.DueDate,
		ExpectedAmount: m.ExpectedAmount,
		PaidAmount:     m.PaidAmount,
		Status:         m.Status,
		Notes:          m.Notes,
	}
	m.PopulateTenantAggregateRoot(&inst.TenantAggregateRoot)
	return inst
}

// FromDomain populates the persistence model from a domain Installment entity.
func (m *InstallmentModel) FromDomain(inst *billing.Installment) {
	m.FromDomainTenantAggregateRoot(inst.TenantAggregateRoot)
	m.ContractID = inst.ContractID
	m.DueDate = inst.DueDate
	m.ExpectedAmount = inst.ExpectedAmount
	m.PaidAmount = inst.PaidAmount
	m.Status = inst.Status
	m.Notes = inst.Notes
}

// InstallmentModelFromDomain creates a new persistence model from a domain Installment.
func InstallmentModelFromDomain(inst *billing.Installment) *InstallmentModel {
	m := &InstallmentModel{}
	m.FromDomain(inst)
	return m
}

// LedgerEntryModel is the persistence model for the LedgerEntry aggregate root.
type LedgerEntryModel struct {
	TenantAggregateModel
	ClientID          *uuid.UUID             `gorm:"type:uuid;index"`
	ContractID        *uuid.UUID             `gorm:"type:uuid;index"`
	InstallmentID     *uuid.UUID             `gorm:"type:uuid;index"`
	RecurringSourceID *uuid.UUID             `gorm:"type:uuid;index"`
	Direction         billing.EntryDirection `gorm:"type:varchar(10);not null;index"`
	Source            billing.EntrySource    `gorm:"type:varchar(30);not null;index"`
	Amount            decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	EntryDate         time.Time              `gorm:"not null;index"`
	EffectiveDate     time.Time              `gorm:"not null;index"`
	DedupKey          string                 `gorm:"type:varchar(200);index"`
	Operator          string                 `gorm:"type:varchar(100)"`
	Description       string                 `gorm:"type:varchar(500);not null"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the persistence model to a domain LedgerEntry entity.
func (m *LedgerEntryModel) ToDomain() *billing.LedgerEntry {
	e := &billing.LedgerEntry{
		ClientID:          m.ClientID,
		ContractID:        m.ContractID,
		InstallmentID:     m.InstallmentID,
		RecurringSourceID: m.RecurringSourceID,
		Direction:         m.Direction,
		Source:            m.Source,
		Amount:            m.Amount,
		EntryDate:         m.EntryDate,
		EffectiveDate:     m.EffectiveDate,
		DedupKey:          m.DedupKey,
		Operator:          m.Operator,
		Description:       m.Description,
	}
	m.PopulateTenantAggregateRoot(&e.TenantAggregateRoot)
	return e
}

// FromDomain populates the persistence model from a domain LedgerEntry entity.
func (m *LedgerEntryModel) FromDomain(e *billing.LedgerEntry) {
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	m.ClientID = e.ClientID
	m.ContractID = e.ContractID
	m.InstallmentID = e.InstallmentID
	m.RecurringSourceID = e.RecurringSourceID
	m.Direction = e.Direction
	m.Source = e.Source
	m.Amount = e.Amount
	m.EntryDate = e.EntryDate
	m.EffectiveDate = e.EffectiveDate
	m.DedupKey = e.DedupKey
	m.Operator = e.Operator
	m.Description = e.Description
}

// LedgerEntryModelFromDomain creates a new persistence model from a domain LedgerEntry.
func LedgerEntryModelFromDomain(e *billing.LedgerEntry) *LedgerEntryModel {
	m := &LedgerEntryModel{}
	m.FromDomain(e)
	return m
}

// CreditConsumptionModel records a single credit consumed against a
// contract. Rows are written by the scheduling side; billing only counts
// them, so the model carries no domain mapping.
type CreditConsumptionModel struct {
	TenantAggregateModel
	ContractID uuid.UUID `gorm:"type:uuid;not null;index"`
	ConsumedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CreditConsumptionModel) TableName() string {
	return "credit_consumptions"
}

