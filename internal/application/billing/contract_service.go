package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgera/backend/internal/domain/billing"
	"github.com/ledgera/backend/internal/domain/partner"
	"github.com/ledgera/backend/internal/domain/shared"
	"github.com/ledgera/backend/internal/domain/shared/valueobject"
	"github.com/ledgera/backend/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ContractService provides application-level contract operations. Every
// mutation runs in a unit of work that locks the contract row, so guard
// checks and derived-state recomputation serialize with concurrent writers.
type ContractService struct {
	uow       billing.UnitOfWork
	contracts billing.ContractRepository
	clients   partner.ClientRepository
	credits   billing.CreditUsageProvider
	publisher shared.EventPublisher
}

// NewContractService creates a new ContractService
func NewContractService(
	uow billing.UnitOfWork,
	contracts billing.ContractRepository,
	clients partner.ClientRepository,
	credits billing.CreditUsageProvider,
	publisher shared.EventPublisher,
) *ContractService {
	return &ContractService{
		uow:       uow,
		contracts: contracts,
		clients:   clients,
		credits:   credits,
		publisher: publisher,
	}
}

// CreateContractInput contains input for contract creation
type CreateContractInput struct {
	ClientID      uuid.UUID
	PackageLabel  string
	SaleDate      time.Time
	StartDate     time.Time
	ExpiryDate    time.Time
	TotalCredits  int
	TotalPrice    decimal.Decimal
	DepositAmount decimal.Decimal
	Notes         string
}

// UpdateContractInput contains the updatable contract fields
type UpdateContractInput struct {
	PackageLabel *string
	SaleDate     *time.Time
	StartDate    *time.Time
	ExpiryDate   *time.Time
	TotalCredits *int
	Notes        *string
}

// CreateContract creates a contract for a client of the tenant. A positive
// deposit is recorded as an income ledger entry in the same transaction.
func (s *ContractService) CreateContract(ctx context.Context, tenantID uuid.UUID, input CreateContractInput) (*ContractResponse, error) {
	// The client must belong to the caller's tenant; a foreign client is
	// reported as missing, not forbidden.
	if _, err := s.clients.FindByID(ctx, tenantID, input.ClientID); err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found")
		}
		return nil, err
	}

	contract, err := billing.NewContract(
		tenantID,
		input.ClientID,
		input.PackageLabel,
		input.SaleDate, input.StartDate, input.ExpiryDate,
		input.TotalCredits,
		valueobject.NewMoneyEUR(input.TotalPrice),
		valueobject.NewMoneyEUR(input.DepositAmount),
		input.Notes,
	)
	if err != nil {
		return nil, err
	}

	events := drainEvents(contract)
	err = s.uow.Do(ctx, func(tx billing.TxRepositories) error {
		if err := tx.Contracts().Save(ctx, contract); err != nil {
			return err
		}
		if contract.DepositAmount.IsPositive() {
			entry, err := billing.NewDepositEntry(tenantID, contract,
				valueobject.NewMoneyEUR(contract.DepositAmount), operatorFromContext(ctx))
			if err != nil {
				return err
			}
			if err := tx.LedgerEntries().Save(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events)

	logger.L(ctx).Info("contract created",
		zap.String("contract_id", contract.ID.String()),
		zap.String("client_id", contract.ClientID.String()),
	)
	return toContractResponse(contract, 0), nil
}

// GetContract returns a contract with its live used-credits count
func (s *ContractService) GetContract(ctx context.Context, tenantID, id uuid.UUID) (*ContractResponse, error) {
	contract, err := s.contracts.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	used, err := s.credits.UsedCredits(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toContractResponse(contract, used), nil
}

// ListContracts returns a page of the tenant's contracts
func (s *ContractService) ListContracts(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*ContractResponse], error) {
	page, err := s.contracts.List(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]*ContractResponse, len(page.Items))
	for i, c := range page.Items {
		items[i] = toContractResponse(c, 0)
	}
	return shared.NewPaginated(items, page.Total, page.Page, page.PageSize), nil
}

// ListContractsByClient returns all contracts of one client
func (s *ContractService) ListContractsByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]*ContractResponse, error) {
	contracts, err := s.contracts.FindByClient(ctx, tenantID, clientID)
	if err != nil {
		return nil, err
	}
	items := make([]*ContractResponse, len(contracts))
	for i, c := range contracts {
		items[i] = toContractResponse(c, 0)
	}
	return items, nil
}

// UpdateContract updates contract terms. Shortening the expiry date is
// rejected while any installment is due past the new date, and the closure
// state is recomputed because a credit-count change can close or reopen
// the contract.
func (s *ContractService) UpdateContract(ctx context.Context, tenantID, id uuid.UUID, input UpdateContractInput) (*ContractResponse, error) {
	var (
		contract *billing.Contract
		used     int
		events   []shared.DomainEvent
	)
	err := s.uow.Do(ctx, func(tx billing.TxRepositories) error {
		var err error
		contract, err = tx.Contracts().FindByIDLocked(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if contract.Closed {
			return shared.NewDomainError("CONTRACT_CLOSED", "Closed contracts cannot be modified")
		}

		installments, err := tx.Installments().FindByContract(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if input.ExpiryDate != nil && input.ExpiryDate.Before(contract.ExpiryDate) {
			if err := contract.CanShortenTo(*input.ExpiryDate, installments); err != nil {
				return err
			}
		}

		if err := contract.Apply(billing.ContractPatch{
			PackageLabel: input.PackageLabel,
			SaleDate:     input.SaleDate,
			StartDate:    input.StartDate,
			ExpiryDate:   input.ExpiryDate,
			TotalCredits: input.TotalCredits,
			Notes:        input.Notes,
		}); err != nil {
			return err
		}

		used, err = tx.CreditUsage().UsedCredits(ctx, tenantID, id)
		if err != nil {
			return err
		}
		contract.Recalculate(installments, used)
		events = drainEvents(contract)

		return tx.Contracts().Save(ctx, contract)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events)
	return toContractResponse(contract, used), nil
}

// DeleteContract soft deletes a contract once nothing depends on it: every
// installment settled, no credits consumed. Installment rows and ledger
// entries stay untouched as history; hiding the contract hides them.
func (s *ContractService) DeleteContract(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.uow.Do(ctx, func(tx billing.TxRepositories) error {
		contract, err := tx.Contracts().FindByIDLocked(ctx, tenantID, id)
		if err != nil {
			return err
		}

		installments, err := tx.Installments().FindByContract(ctx, tenantID, id)
		if err != nil {
			return err
		}
		used, err := tx.CreditUsage().UsedCredits(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if err := contract.CanDelete(installments, used); err != nil {
			return err
		}

		return tx.Contracts().Delete(ctx, tenantID, id)
	})
}

// SyncClosure recomputes the derived payment and closure state from fresh
// rows. Exposed for the scheduling side to call after consuming or
// restoring credits.
func (s *ContractService) SyncClosure(ctx context.Context, tenantID, id uuid.UUID) (*ContractResponse, error) {
	var (
		contract *billing.Contract
		used     int
		events   []shared.DomainEvent
	)
	err := s.uow.Do(ctx, func(tx billing.TxRepositories) error {
		var err error
		contract, err = tx.Contracts().FindByIDLocked(ctx, tenantID, id)
		if err != nil {
			return err
		}
		installments, err := tx.Installments().FindByContract(ctx, tenantID, id)
		if err != nil {
			return err
		}
		used, err = tx.CreditUsage().UsedCredits(ctx, tenantID, id)
		if err != nil {
			return err
		}
		contract.Recalculate(installments, used)
		events = drainEvents(contract)
		return tx.Contracts().Save(ctx, contract)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events)
	return toContractResponse(contract, used), nil
}

func (s *ContractService) publish(ctx context.Context, events []shared.DomainEvent) {
	if len(events) == 0 || s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("failed to publish domain events", zap.Error(err))
	}
}

// drainEvents takes the pending events off an aggregate
func drainEvents(a shared.AggregateRoot) []shared.DomainEvent {
	events := a.GetDomainEvents()
	a.ClearDomainEvents()
	return events
}
