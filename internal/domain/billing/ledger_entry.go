package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgera/backend/internal/domain/shared"
	"github.com/ledgera/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// EntryDirection marks the sign of a ledger entry
type EntryDirection string

const (
	DirectionIncome  EntryDirection = "INCOME"
	DirectionExpense EntryDirection = "EXPENSE"
)

// IsValid checks if the direction is a valid EntryDirection
func (d EntryDirection) IsValid() bool {
	return d == DirectionIncome || d == DirectionExpense
}

// EntrySource identifies what kind of fact produced a ledger entry
type EntrySource string

const (
	SourceDeposit            EntrySource = "DEPOSIT"
	SourceInstallmentPayment EntrySource = "INSTALLMENT_PAYMENT"
	SourceRecurringExpense   EntrySource = "RECURRING_EXPENSE"
	SourceManual             EntrySource = "MANUAL"
)

// IsValid checks if the source is a valid EntrySource
func (s EntrySource) IsValid() bool {
	switch s {
	case SourceDeposit, SourceInstallmentPayment, SourceRecurringExpense, SourceManual:
		return true
	}
	return false
}

// LedgerEntry is an append-only cash movement record. Entries are never
// edited after the fact except for EffectiveDate, which tracks the due
// date of the installment they settle; a payment reversal deletes the
// entry that recorded it, inside the same transaction that reverts the
// installment.
//
// EntryDate is when the money moved; EffectiveDate is the date reporting
// attributes it to.
type LedgerEntry struct {
	shared.TenantAggregateRoot
	ClientID          *uuid.UUID      `json:"client_id,omitempty"`
	ContractID        *uuid.UUID      `json:"contract_id,omitempty"`
	InstallmentID     *uuid.UUID      `json:"installment_id,omitempty"`
	RecurringSourceID *uuid.UUID      `json:"recurring_source_id,omitempty"`
	Direction         EntryDirection  `json:"direction"`
	Source            EntrySource     `json:"source"`
	Amount            decimal.Decimal `json:"amount"`
	EntryDate         time.Time       `json:"entry_date"`
	EffectiveDate     time.Time       `json:"effective_date"`
	DedupKey          string          `json:"dedup_key,omitempty"`
	Operator          string          `json:"operator,omitempty"`
	Description       string          `json:"description"`
}

func newLedgerEntry(
	tenantID uuid.UUID,
	direction EntryDirection,
	source EntrySource,
	amount valueobject.Money,
	entryDate time.Time,
	description string,
) (*LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Ledger amount must be positive")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Ledger description cannot be empty")
	}
	return &LedgerEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Direction:           direction,
		Source:              source,
		Amount:              amount.Amount(),
		EntryDate:           entryDate,
		EffectiveDate:       entryDate,
		Description:         description,
	}, nil
}

// NewDepositEntry records the cash collected up front on a new contract
func NewDepositEntry(tenantID uuid.UUID, contract *Contract, amount valueobject.Money, operator string) (*LedgerEntry, error) {
	entry, err := newLedgerEntry(tenantID, DirectionIncome, SourceDeposit, amount, contract.SaleDate,
		"Deposit on "+contract.PackageLabel)
	if err != nil {
		return nil, err
	}
	cid := contract.ID
	clid := contract.ClientID
	entry.ContractID = &cid
	entry.ClientID = &clid
	entry.Operator = operator
	return entry, nil
}

// NewInstallmentPaymentEntry records cash collected against an installment.
// The entry date is when the money arrived; the effective date follows the
// installment's due date so period reports stay aligned with the plan.
func NewInstallmentPaymentEntry(tenantID uuid.UUID, contract *Contract, installment *Installment, amount valueobject.Money, paidAt time.Time, method, operator string) (*LedgerEntry, error) {
	description := "Installment payment on " + contract.PackageLabel
	if method != "" {
		description += " (" + method + ")"
	}
	entry, err := newLedgerEntry(tenantID, DirectionIncome, SourceInstallmentPayment, amount, paidAt, description)
	if err != nil {
		return nil, err
	}
	cid := contract.ID
	iid := installment.ID
	clid := contract.ClientID
	entry.ContractID = &cid
	entry.InstallmentID = &iid
	entry.ClientID = &clid
	entry.EffectiveDate = installment.DueDate
	entry.Operator = operator
	return entry, nil
}

// NewRecurringExpenseEntry records a periodic outgoing cost such as rent
// or a subscription. The dedup key guards against the confirmation flow
// booking the same period twice.
func NewRecurringExpenseEntry(tenantID uuid.UUID, amount valueobject.Money, entryDate time.Time, description string, recurringSourceID *uuid.UUID, dedupKey string) (*LedgerEntry, error) {
	entry, err := newLedgerEntry(tenantID, DirectionExpense, SourceRecurringExpense, amount, entryDate, description)
	if err != nil {
		return nil, err
	}
	entry.RecurringSourceID = recurringSourceID
	entry.DedupKey = dedupKey
	return entry, nil
}

// NewManualEntry records an arbitrary income or expense booked by hand
func NewManualEntry(tenantID uuid.UUID, direction EntryDirection, amount valueobject.Money, entryDate time.Time, description, operator string) (*LedgerEntry, error) {
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid ledger direction")
	}
	entry, err := newLedgerEntry(tenantID, direction, SourceManual, amount, entryDate, description)
	if err != nil {
		return nil, err
	}
	entry.Operator = operator
	return entry, nil
}

// Reattribute moves the entry's reporting date, keeping the booking date
func (e *LedgerEntry) Reattribute(effectiveDate time.Time) {
	e.EffectiveDate = effectiveDate
}

// SignedAmount returns the amount with expense entries negated
func (e *LedgerEntry) SignedAmount() decimal.Decimal {
	if e.Direction == DirectionExpense {
		return e.Amount.Neg()
	}
	return e.Amount
}
