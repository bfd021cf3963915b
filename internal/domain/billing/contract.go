package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ledgera/backend/internal/domain/shared"
	"github.com/ledgera/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the settlement state of a contract or installment
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING" // Nothing collected yet
	PaymentStatusPartial PaymentStatus = "PARTIAL" // 0 < collected < owed
	PaymentStatusSettled PaymentStatus = "SETTLED" // Collected >= owed
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusSettled:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// derivePaymentStatus computes a settlement status purely from amounts.
// Status is never assigned from user input anywhere in the domain.
func derivePaymentStatus(paid, owed decimal.Decimal) PaymentStatus {
	if paid.GreaterThanOrEqual(owed) {
		return PaymentStatusSettled
	}
	if paid.IsPositive() {
		return PaymentStatusPartial
	}
	return PaymentStatusPending
}

// Contract represents a sold prepaid package: an agreed number of credits
// for an agreed total price, collected through a deposit and installments.
// TotalPaid, PaymentStatus and Closed are derived fields; they are persisted
// as projections but always recomputed from source rows inside the
// transaction that wrote the triggering fact.
type Contract struct {
	shared.TenantAggregateRoot
	ClientID      uuid.UUID       `json:"client_id"`
	PackageLabel  string          `json:"package_label"`
	SaleDate      time.Time       `json:"sale_date"`
	StartDate     time.Time       `json:"start_date"`
	ExpiryDate    time.Time       `json:"expiry_date"`
	TotalCredits  int             `json:"total_credits"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Closed        bool            `json:"closed"`
	ClosedAt      *time.Time      `json:"closed_at,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// NewContract creates a new contract for a client
func NewContract(
	tenantID uuid.UUID,
	clientID uuid.UUID,
	packageLabel string,
	saleDate, startDate, expiryDate time.Time,
	totalCredits int,
	totalPrice valueobject.Money,
	depositAmount valueobject.Money,
	notes string,
) (*Contract, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("CLIENT_NOT_FOUND", "Client reference cannot be empty")
	}
	if packageLabel == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Package label cannot be empty")
	}
	if len(packageLabel) > 200 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Package label cannot exceed 200 characters")
	}
	if !startDate.Before(expiryDate) {
		return nil, shared.NewDomainError("INVALID_DATES", "Start date must be before expiry date")
	}
	if totalCredits < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Total credits cannot be negative")
	}
	if totalPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Total price cannot be negative")
	}
	if depositAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Deposit cannot be negative")
	}
	if depositAmount.Amount().GreaterThan(totalPrice.Amount()) {
		return nil, shared.NewDomainError("RESIDUAL_EXCEEDED", "Deposit cannot exceed total price")
	}

	c := &Contract{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ClientID:            clientID,
		PackageLabel:        packageLabel,
		SaleDate:            saleDate,
		StartDate:           startDate,
		ExpiryDate:          expiryDate,
		TotalCredits:        totalCredits,
		TotalPrice:          totalPrice.Amount(),
		DepositAmount:       depositAmount.Amount(),
		TotalPaid:           depositAmount.Amount(),
		PaymentStatus:       derivePaymentStatus(depositAmount.Amount(), totalPrice.Amount()),
		Closed:              false,
	}
	c.Notes = notes

	c.AddDomainEvent(NewContractCreatedEvent(c))

	return c, nil
}

// Recalculate recomputes every derived field from the current set of
// non-deleted installments and the externally supplied used-credits count.
// Returns true when the closed flag flipped, so callers can publish the
// matching transition event.
func (c *Contract) Recalculate(installments []Installment, usedCredits int) bool {
	paid := c.DepositAmount
	for i := range installments {
		paid = paid.Add(installments[i].PaidAmount)
	}
	c.TotalPaid = paid
	c.PaymentStatus = derivePaymentStatus(paid, c.TotalPrice)

	wasClosed := c.Closed
	c.Closed = c.PaymentStatus == PaymentStatusSettled &&
		c.TotalCredits > 0 &&
		usedCredits >= c.TotalCredits

	if c.Closed != wasClosed {
		now := time.Now()
		if c.Closed {
			c.ClosedAt = &now
			c.AddDomainEvent(NewContractClosedEvent(c))
		} else {
			c.ClosedAt = nil
			c.AddDomainEvent(NewContractReopenedEvent(c))
		}
	}

	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return c.Closed != wasClosed
}

// ResidualCap returns the maximum expected amount a new installment may
// carry: total price net of deposit and every other active installment.
func (c *Contract) ResidualCap(others []Installment) decimal.Decimal {
	cap := c.TotalPrice.Sub(c.DepositAmount)
	for i := range others {
		cap = cap.Sub(others[i].ExpectedAmount)
	}
	return cap
}

// WithinTerm reports whether a due date falls inside the contract term.
// The expiry date itself is a valid due date.
func (c *Contract) WithinTerm(dueDate time.Time) bool {
	return !dueDate.After(c.ExpiryDate)
}

// CanShortenTo checks the shortening guard: the expiry date may only be
// reduced if no active installment would be left due past the new expiry.
func (c *Contract) CanShortenTo(newExpiry time.Time, installments []Installment) error {
	for i := range installments {
		if installments[i].DueDate.After(newExpiry) {
			return shared.NewDomainError("SHORTENING_VIOLATES_INSTALLMENTS",
				fmt.Sprintf("Installment due on %s would fall outside the new expiry date", installments[i].DueDate.Format("2006-01-02")))
		}
	}
	return nil
}

// CanDelete checks the delete guard: a contract may only be soft-deleted
// when no installment still carries an obligation and no credits have been
// consumed against it.
func (c *Contract) CanDelete(installments []Installment, usedCredits int) error {
	for i := range installments {
		if installments[i].Status != PaymentStatusSettled {
			return shared.NewDomainError("HAS_PENDING_INSTALLMENTS",
				"Contract has installments that are not settled")
		}
	}
	if usedCredits > 0 {
		return shared.NewDomainError("HAS_RESIDUAL_CREDITS",
			"Contract has consumed credits and cannot be deleted")
	}
	return nil
}

// ContractPatch carries the mutable fields of a contract update
type ContractPatch struct {
	PackageLabel *string
	SaleDate     *time.Time
	StartDate    *time.Time
	ExpiryDate   *time.Time
	TotalCredits *int
	Notes        *string
}

// Apply applies a patch to the contract. Date ordering is re-validated;
// the shortening guard must be checked by the caller against fresh
// installment rows before invoking Apply.
func (c *Contract) Apply(patch ContractPatch) error {
	start := c.StartDate
	expiry := c.ExpiryDate
	if patch.StartDate != nil {
		start = *patch.StartDate
	}
	if patch.ExpiryDate != nil {
		expiry = *patch.ExpiryDate
	}
	if !start.Before(expiry) {
		return shared.NewDomainError("INVALID_DATES", "Start date must be before expiry date")
	}

	if patch.PackageLabel != nil {
		if *patch.PackageLabel == "" {
			return shared.NewDomainError("INVALID_INPUT", "Package label cannot be empty")
		}
		c.PackageLabel = *patch.PackageLabel
	}
	if patch.SaleDate != nil {
		c.SaleDate = *patch.SaleDate
	}
	if patch.TotalCredits != nil {
		if *patch.TotalCredits < 0 {
			return shared.NewDomainError("INVALID_INPUT", "Total credits cannot be negative")
		}
		c.TotalCredits = *patch.TotalCredits
	}
	if patch.Notes != nil {
		c.Notes = *patch.Notes
	}
	c.StartDate = start
	c.ExpiryDate = expiry

	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// IsSettled returns true if the contract is fully paid
func (c *Contract) IsSettled() bool {
	return c.PaymentStatus == PaymentStatusSettled
}

// Outstanding returns the amount still owed on the contract
func (c *Contract) Outstanding() decimal.Decimal {
	out := c.TotalPrice.Sub(c.TotalPaid)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}
