package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgera/backend/internal/domain/shared"
	"github.com/ledgera/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Installment represents one scheduled slice of a contract's price.
// Status is purely derived from PaidAmount vs ExpectedAmount and is never
// writable from the outside.
type Installment struct {
	shared.TenantAggregateRoot
	ContractID     uuid.UUID       `json:"contract_id"`
	DueDate        time.Time       `json:"due_date"`
	ExpectedAmount decimal.Decimal `json:"expected_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	Status         PaymentStatus   `json:"status"`
	Notes          string          `json:"notes,omitempty"`
}

// NewInstallment creates a new installment on a contract. The residual cap
// and the due-date bound are contract-level rules checked by the caller
// against fresh rows; this constructor enforces only local invariants.
func NewInstallment(
	tenantID uuid.UUID,
	contractID uuid.UUID,
	dueDate time.Time,
	expectedAmount valueobject.Money,
	notes string,
) (*Installment, error) {
	if contractID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Contract reference cannot be empty")
	}
	if !expectedAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Expected amount must be positive")
	}

	inst := &Installment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ContractID:          contractID,
		DueDate:             dueDate,
		ExpectedAmount:      expectedAmount.Amount(),
		PaidAmount:          decimal.Zero,
		Status:              PaymentStatusPending,
		Notes:               notes,
	}
	return inst, nil
}

// Remaining returns the amount still owed on this installment
func (i *Installment) Remaining() decimal.Decimal {
	return i.ExpectedAmount.Sub(i.PaidAmount)
}

// ApplyPayment records a partial or full payment against the installment.
// Payments may never push the paid amount past the expected amount.
func (i *Installment) ApplyPayment(amount valueobject.Money) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Payment amount must be positive")
	}
	if amount.Amount().GreaterThan(i.Remaining()) {
		return shared.NewDomainError("OVERPAYMENT", "Payment exceeds the remaining amount on this installment")
	}

	i.PaidAmount = i.PaidAmount.Add(amount.Amount())
	i.deriveStatus()
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	i.AddDomainEvent(NewInstallmentPaidEvent(i, amount.Amount()))
	return nil
}

// RevertPayment undoes a previously recorded payment. The exact inverse of
// ApplyPayment: reverting the last payment restores the prior state.
func (i *Installment) RevertPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Revert amount must be positive")
	}
	if amount.GreaterThan(i.PaidAmount) {
		return shared.NewDomainError("NOTHING_TO_UNPAY", "Revert exceeds the amount paid on this installment")
	}

	i.PaidAmount = i.PaidAmount.Sub(amount)
	i.deriveStatus()
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	i.AddDomainEvent(NewInstallmentPaymentRevertedEvent(i, amount))
	return nil
}

// Reschedule moves the due date. The contract-term bound is checked by the
// caller.
func (i *Installment) Reschedule(dueDate time.Time) {
	i.DueDate = dueDate
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

// ChangeExpectedAmount resizes the installment. The new amount can never
// drop below what has already been collected, and the residual cap is
// re-checked by the caller with this installment excluded.
func (i *Installment) ChangeExpectedAmount(expected valueobject.Money) error {
	if !expected.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Expected amount must be positive")
	}
	if expected.Amount().LessThan(i.PaidAmount) {
		return shared.NewDomainError("AMOUNT_BELOW_PAID", "Expected amount cannot drop below the amount already paid")
	}

	i.ExpectedAmount = expected.Amount()
	i.deriveStatus()
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// HasPayments reports whether any money has been collected
func (i *Installment) HasPayments() bool {
	return i.PaidAmount.IsPositive()
}

// DaysOverdue returns how many whole days the installment is past due as
// of the given moment. Settled installments are never overdue.
func (i *Installment) DaysOverdue(now time.Time) int {
	if i.Status == PaymentStatusSettled {
		return 0
	}
	if !now.After(i.DueDate) {
		return 0
	}
	return int(now.Sub(i.DueDate).Hours() / 24)
}

func (i *Installment) deriveStatus() {
	i.Status = derivePaymentStatus(i.PaidAmount, i.ExpectedAmount)
}
