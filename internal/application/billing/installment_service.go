package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgera/backend/internal/domain/billing"
	"github.com/ledgera/backend/internal/domain/shared"
	"github.com/ledgera/backend/internal/domain/shared/valueobject"
	"github.com/ledgera/backend/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InstallmentService provides application-level installment operations,
// including payment recording and reversal. All money mutations lock the
// owning contract row first so the residual cap, the overpayment guard and
// the derived contract state are checked against current rows.
type InstallmentService struct {
	uow          billing.UnitOfWork
	installments billing.InstallmentRepository
	publisher    shared.EventPublisher
}

// NewInstallmentService creates a new InstallmentService
func NewInstallmentService(
	uow billing.UnitOfWork,
	installments billing.InstallmentRepository,
	publisher shared.EventPublisher,
) *InstallmentService {
	return &InstallmentService{
		uow:          uow,
		installments: installments,
		publisher:    publisher,
	}
}

// CreateInstallmentInput contains input for installment creation
type CreateInstallmentInput struct {
	ContractID     uuid.UUID
	DueDate        time.Time
	ExpectedAmount decimal.Decimal
	Notes          string
}

// UpdateInstallmentInput contains the updatable installment fields
type UpdateInstallmentInput struct {
	DueDate        *time.Time
	ExpectedAmount *decimal.Decimal
	Notes          *string
}

// GeneratePlanInput contains input for bulk plan generation
type GeneratePlanInput struct {
	ContractID uuid.UUID
	FirstDue   time.Time
	Count      int
	Frequency  billing.PlanFrequency
	Total      decimal.Decimal
}

// PayInput contains input for recording a payment
type PayInput struct {
	Amount decimal.Decimal
	Method string
	PaidAt time.Time
}

// CreateInstallment adds an installment to a contract. The due date must
// fall inside the contract term and the expected amount must fit the
// residual cap computed from the other active installments.
func (s *InstallmentService) CreateInstallment(ctx context.Context, tenantID uuid.UUID, input CreateInstallmentInput) (*InstallmentResponse, error) {
	var installment *billing.Installment
	err := s.uow.Do(ctx, func(tx billing.TxRepositories) error {
		contract, err := tx.Contracts().FindByIDLocked(ctx, tenantID, input.ContractID)
		if err != nil {
			return err
		}
		if contract.Closed {
			return shared.NewDomainError("CONTRACT_CLOSED", "Closed contracts cannot take new installments")
		}
		if !contract.WithinTerm(input.DueDate) {
			return shared.NewDomainError("DATE_OUT_OF_BOUNDS", "Due date falls outside the contract term")
		}

		others, err := tx.Installments().FindByContract(ctx, tenantID, input.ContractID)
		if err != nil {
			return err
		}
		if input.ExpectedAmount.GreaterThan(contract.ResidualCap(others)) {
			return shared.NewDomainError("RESIDUAL_EXCEEDED", "Expected amount exceeds the unscheduled remainder of the contract price")
		}

		installment, err = billing.NewInstallment(tenantID, input.ContractID, input.DueDate,
			valueobject.NewMoneyEUR(input.ExpectedAmount), input.Notes)
		if err != nil {
			return err
		}
		return tx.Installments().Save(ctx, installment)
	})
	if err != nil {
		return nil, err
	}
	return toInstallmentResponse(installment), nil
}

// GeneratePlan creates a full installment schedule on a contract in one
// transaction. A zero total splits the full residual cap; an explicit
// total must fit inside it. Every due date is capped at the contract
// expiry.
func (s *InstallmentService) GeneratePlan(ctx context.Context, tenantID uuid.UUID, input GeneratePlanInput) ([]*InstallmentResponse, error) {
	var created []*billing.Installment
	err := s.uow.Do(ctx, func(tx billing.TxRepositories) error {
		contract, err := tx.Contracts().FindByIDLocked(ctx, tenantID, input.ContractID)
		if err != nil {
			return err
		}
		if contract.Closed {
			return shared.NewDomainError("CONTRACT_CLOSED", "Closed contracts cannot take new installments")
		}

		others, err := tx.Installments().FindByContract(ctx, tenantID, input.ContractID)
		if err != nil {
			return err
		}
		cap := contract.ResidualCap(others)
		if !cap.IsPositive() {
			return shared.NewDomainError("RESIDUAL_EXHAUSTED", "The contract price is fully scheduled")
		}
		total := input.Total
		if total.IsZero() {
			total = cap
		}
		if total.GreaterThan(cap) {
			return shared.NewDomainError("RESIDUAL_EXCEEDED", "Plan total exceeds the unscheduled remainder of the contract price")
		}

		lines, err := billing.GeneratePlan(input.FirstDue, input.Count, input.Frequency,
			valueobject.NewMoneyEUR(total))
		if err != nil {
			return err
		}
		// Frequencies longer than the remaining term land past expiry;
		// those lines collapse onto the expiry date instead of failing.
		for i := range lines {
			if !contract.WithinTerm(lines[i].DueDate) {
				lines[i].DueDate = contract.ExpiryDate
			}
		}

		created = make([]*billing.Installment, 0, len(lines))
		for _, line := range lines {
			installment, err := billing.NewInstallment(tenantID, input.ContractID, line.DueDate,
				valueobject.NewMoneyEUR(line.Amount), "")
			if err != nil {
				return err
			}
			if err := tx.Installments().Save(ctx, installment); err != nil {
				return err
			}
			created = append(created, installment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	responses := make([]*InstallmentResponse, len(created))
	for i, installment := range created {
		responses[i] = toInstallmentResponse(installment)
	}
	return responses, nil
}

// GetInstallment returns one installment of the tenant
func (s *InstallmentService) GetInstallment(ctx context.Context, tenantID, id uuid.UUID) (*InstallmentResponse, error) {
	installment, err := s.installments.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toInstallmentResponse(installment), nil
}

// ListByContract returns the installments of a contract ordered by due date
func (s *InstallmentService) ListByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]*InstallmentResponse, error) {
	installments, err := s.installments.FindByContract(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}
	responses := make([]*InstallmentResponse, len(installments))
	for i := range installments {
		responses[i] = toInstallmentResponse(&installments[i])
	}
	return responses, nil
}

// UpdateInstallment reschedules or resizes an installment. Resizing
// re-checks the residual cap with this installment excluded and can never
// drop below the amount already collected.
func (s *InstallmentService) UpdateInstallment(ctx context.Context, tenantID, id uuid.UUID, input UpdateInstallmentInput) (*InstallmentResponse, error) {
	var (
		installment *billing.Installment
		events      []shared.DomainEvent
	)
	err := s.uow.Do(ctx, func(tx billing.TxRepositories) error {
		contract, installmentInTx, err := s.lockChain(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		installment = installmentInTx
		if contract.Closed {
			return shared.NewDomainError("CONTRACT_CLOSED", "Closed contracts cannot be modified")
		}

		if input.DueDate != nil {
			if !contract.WithinTerm(*input.DueDate) {
				return shared.NewDomainError("DATE_OUT_OF_BOUNDS", "Due date falls outside the contract term")
			}
			installment.Reschedule(*input.DueDate)
			// Payments already tied to this installment follow the new due date
			if err := tx.LedgerEntries().ReattributeByInstallment(ctx, tenantID, installment.ID, *input.DueDate); err != nil {
				return err
			}
		}
		if input.ExpectedAmount != nil {
			all, err := tx.Installments().FindByContract(ctx, tenantID, installment.ContractID)
			if err != nil {
				return err
			}
			others := excludeInstallment(all, installment.ID)
			capLeft := contract.ResidualCap(others)
			if input.ExpectedAmount.GreaterThan(capLeft) {
				return shared.NewDomainError("RESIDUAL_EXCEEDED", "Expected amount exceeds the unscheduled remainder of the contract price")
			}
			if err := installment.ChangeExpectedAmount(valueobject.NewMoneyEUR(*input.ExpectedAmount)); err != nil {
				return err
			}
		}
		if input.Notes != nil {
			installment.Notes = *input.Notes
		}
		if err := tx.Installments().Save(ctx, installment); err != nil {
			return err
		}

		// Resizing changes what "settled" means for the contract
		return s.recalculate(ctx, tx, tenantID, contract, &events)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events)
	return toInstallmentResponse(installment), nil
}

// DeleteInstallment soft deletes an installment along with its ledger
// entries, then recomputes the contract so collected money stops counting
// toward total_paid.
func (s *InstallmentService) DeleteInstallment(ctx context.Context, tenantID, id uuid.UUID) error {
	var events []shared.DomainEvent
	err := s.uow.Do(ctx, func(tx billing.TxRepositories) error {
		contract, installment, err := s.lockChain(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		if installment.HasPayments() {
			entries, err := tx.LedgerEntries().FindByInstallment(ctx, tenantID, id)
			if err != nil {
				return err
			}
			for i := range entries {
				if err := tx.LedgerEntries().Delete(ctx, tenantID, entries[i].ID); err != nil {
					return err
				}
			}
		}
		if err := tx.Installments().Delete(ctx, tenantID, id); err != nil {
			return err
		}
		return s.recalculate(ctx, tx, tenantID, contract, &events)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events)
	return nil
}

// Pay records a payment against an installment. The payment, its ledger
// entry and the recomputed contract state commit atomically.
func (s *InstallmentService) Pay(ctx context.Context, tenantID, id uuid.UUID, input PayInput) (*InstallmentResponse, error) {
	var (
		installment *billing.Installment
		events      []shared.DomainEvent
	)
	err := s.uow.Do(ctx, func(tx billing.TxRepositories) error {
		contract, installmentInTx, err := s.lockChain(ctx, tx, tenantID, id)
		if err != nil {
			return err
		}
		installment = installmentInTx
		if contract.Closed {
			return shared.NewDomainError("CONTRACT_CLOSED", "Closed contracts cannot take payments")
		}

		if err := installment.ApplyPayment(valueobject.NewMoneyEUR(input.Amount)); err != nil {
			return err
		}
		events = append(events, drainEvents(installment)...)
		if err := tx.Installments().Save(ctx, installment); err != nil {
			return err
		}

		paidAt := input.PaidAt
		if paidAt.IsZero() {
			paidAt = time.Now()
		}
		entry, err := billing.NewInstallmentPaymentEntry(tenantID, contract, installment,
			valueobject.NewMoneyEUR(input.Amount), paidAt, input.Method, operatorFromContext(ctx))
		if err != nil {
			return err
		}
		if err := tx.LedgerEntries().Save(ctx, entry); err != nil {
			return err
		}

		return s.recalculate(ctx, tx, tenantID, contract, &events)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events)

	logger.L(ctx).Info("installment payment recorded",
		zap.String("installment_id", id.String()),
		zap.String("amount", input.Amount.String()),
	)
	return toInstallmentResponse(installment), nil
}

// Unpay reverts a previously recorded payment by its ledger entry. The
// entry is deleted, the installment paid amount rolls back and the
// contract state is recomputed, reopening it if it was closed.
func (s *InstallmentService) Unpay(ctx context.Context, tenantID, installmentID, entryID uuid.UUID) (*InstallmentResponse, error) {
	var (
		installment *billing.Installment
		events      []shared.DomainEvent
	)
	err := s.uow.Do(ctx, func(tx billing.TxRepositories) error {
		contract, installmentInTx, err := s.lockChain(ctx, tx, tenantID, installmentID)
		if err != nil {
			return err
		}
		installment = installmentInTx

		entry, err := tx.LedgerEntries().FindByID(ctx, tenantID, entryID)
		if err != nil {
			return err
		}
		if entry.InstallmentID == nil || *entry.InstallmentID != installmentID {
			return shared.ErrNotFound
		}

		if err := installment.RevertPayment(entry.Amount); err != nil {
			return err
		}
		events = append(events, drainEvents(installment)...)
		if err := tx.Installments().Save(ctx, installment); err != nil {
			return err
		}
		if err := tx.LedgerEntries().Delete(ctx, tenantID, entryID); err != nil {
			return err
		}

		return s.recalculate(ctx, tx, tenantID, contract, &events)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events)

	logger.L(ctx).Info("installment payment reverted",
		zap.String("installment_id", installmentID.String()),
		zap.String("entry_id", entryID.String()),
	)
	return toInstallmentResponse(installment), nil
}

// lockChain resolves an installment through its owning contract: the
// contract row is locked first, then the installment is re-read inside the
// transaction so both reflect committed state. Any break in the chain
// surfaces as not found.
func (s *InstallmentService) lockChain(ctx context.Context, tx billing.TxRepositories, tenantID, installmentID uuid.UUID) (*billing.Contract, *billing.Installment, error) {
	installment, err := tx.Installments().FindByID(ctx, tenantID, installmentID)
	if err != nil {
		return nil, nil, err
	}
	contract, err := tx.Contracts().FindByIDLocked(ctx, tenantID, installment.ContractID)
	if err != nil {
		return nil, nil, err
	}
	// Re-read under the lock; the first read raced with other writers.
	installment, err = tx.Installments().FindByID(ctx, tenantID, installmentID)
	if err != nil {
		return nil, nil, err
	}
	return contract, installment, nil
}

// recalculate refreshes the contract's derived fields from current rows
// and saves it, accumulating any closure transition events.
func (s *InstallmentService) recalculate(ctx context.Context, tx billing.TxRepositories, tenantID uuid.UUID, contract *billing.Contract, events *[]shared.DomainEvent) error {
	installments, err := tx.Installments().FindByContract(ctx, tenantID, contract.ID)
	if err != nil {
		return err
	}
	used, err := tx.CreditUsage().UsedCredits(ctx, tenantID, contract.ID)
	if err != nil {
		return err
	}
	contract.Recalculate(installments, used)
	*events = append(*events, drainEvents(contract)...)
	return tx.Contracts().Save(ctx, contract)
}

func (s *InstallmentService) publish(ctx context.Context, events []shared.DomainEvent) {
	if len(events) == 0 || s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("failed to publish domain events", zap.Error(err))
	}
}

func excludeInstallment(installments []billing.Installment, id uuid.UUID) []billing.Installment {
	out := make([]billing.Installment, 0, len(installments))
	for i := range installments {
		if installments[i].ID != id {
			out = append(out, installments[i])
		}
	}
	return out
}
