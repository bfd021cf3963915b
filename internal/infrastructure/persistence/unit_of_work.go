package persistence

import (
	"context"

	"github.com/ledgera/backend/internal/domain/billing"
	"gorm.io/gorm"
)

// GormUnitOfWork implements billing.UnitOfWork on top of a GORM
// transaction. The repositories handed to the callback share the
// transaction, so guard checks, writes and derived-state recomputation
// either all commit or all roll back.
type GormUnitOfWork struct {
	database *Database
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(database *Database) *GormUnitOfWork {
	return &GormUnitOfWork{database: database}
}

// Do runs fn inside a single database transaction
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(tx billing.TxRepositories) error) error {
	return u.database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txRepositories{tx: tx})
	})
}

// txRepositories binds the billing repositories to one open transaction
type txRepositories struct {
	tx *gorm.DB
}

func (t *txRepositories) Contracts() billing.ContractRepository {
	return NewGormContractRepository(t.tx)
}

func (t *txRepositories) Installments() billing.InstallmentRepository {
	return NewGormInstallmentRepository(t.tx)
}

func (t *txRepositories) LedgerEntries() billing.LedgerEntryRepository {
	return NewGormLedgerEntryRepository(t.tx)
}

func (t *txRepositories) CreditUsage() billing.CreditUsageProvider {
	return NewGormCreditUsageProvider(t.tx)
}

// Ensure GormUnitOfWork implements UnitOfWork
var _ billing.UnitOfWork = (*GormUnitOfWork)(nil)
