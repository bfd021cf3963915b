package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgera/backend/internal/domain/shared"
)

// ContractRepository defines the persistence port for contracts. Every
// lookup is scoped by tenant; a contract belonging to another tenant is
// indistinguishable from a missing one.
type ContractRepository interface {
	Save(ctx context.Context, contract *Contract) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Contract, error)
	// FindByIDLocked loads the contract under a row lock so derived-state
	// recomputation serializes with concurrent writers. Only valid inside
	// a unit of work.
	FindByIDLocked(ctx context.Context, tenantID, id uuid.UUID) (*Contract, error)
	FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]*Contract, error)
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Contract], error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// InstallmentRepository defines the persistence port for installments
type InstallmentRepository interface {
	Save(ctx context.Context, installment *Installment) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Installment, error)
	// FindByContract returns the non-deleted installments of a contract,
	// ordered by due date
	FindByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]Installment, error)
	// FindUnsettledWithClient joins every unsettled installment of the
	// tenant with its contract and client, feeding the aging report
	FindUnsettledWithClient(ctx context.Context, tenantID uuid.UUID) ([]AgingRow, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// LedgerEntryRepository defines the persistence port for ledger entries
type LedgerEntryRepository interface {
	Save(ctx context.Context, entry *LedgerEntry) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*LedgerEntry, error)
	FindByInstallment(ctx context.Context, tenantID, installmentID uuid.UUID) ([]LedgerEntry, error)
	FindByPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time, filter shared.Filter) (*shared.Paginated[*LedgerEntry], error)
	// ReattributeByInstallment moves the effective date of every entry tied
	// to the installment, keeping period reports aligned after a reschedule
	ReattributeByInstallment(ctx context.Context, tenantID, installmentID uuid.UUID, effectiveDate time.Time) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// CreditUsageProvider reports how many credits have been consumed against
// a contract. Consumption is recorded by the scheduling side; billing only
// reads the count.
type CreditUsageProvider interface {
	UsedCredits(ctx context.Context, tenantID, contractID uuid.UUID) (int, error)
}

// TxRepositories is the repository set bound to one open transaction
type TxRepositories interface {
	Contracts() ContractRepository
	Installments() InstallmentRepository
	LedgerEntries() LedgerEntryRepository
	CreditUsage() CreditUsageProvider
}

// UnitOfWork runs a function inside a single database transaction. Guard
// checks, writes and derived-state recomputation for one operation all
// happen against the same TxRepositories; returning an error rolls
// everything back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx TxRepositories) error) error
}
