package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/ledgera/backend/internal/domain/billing"
	"github.com/ledgera/backend/internal/domain/shared"
	"github.com/ledgera/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormContractRepository implements ContractRepository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// Save creates or updates a contract
func (r *GormContractRepository) Save(ctx context.Context, contract *billing.Contract) error {
	model := models.ContractModelFromDomain(contract)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a contract by ID for a specific tenant
func (r *GormContractRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*billing.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDLocked loads a contract under SELECT ... FOR UPDATE. Must run
// inside a transaction; the lock is held until commit or rollback. SQLite
// locks the whole database per transaction, so the clause is skipped there.
func (r *GormContractRepository) FindByIDLocked(ctx context.Context, tenantID, id uuid.UUID) (*billing.Contract, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var model models.ContractModel
	if err := query.
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByClient finds all contracts for a client
func (r *GormContractRepository) FindByClient(ctx context.Context, tenantID, clientID uuid.UUID) ([]*billing.Contract, error) {
	var contractModels []models.ContractModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND client_id = ?", tenantID, clientID).
		Order("sale_date DESC").
		Find(&contractModels).Error; err != nil {
		return nil, err
	}
	contracts := make([]*billing.Contract, len(contractModels))
	for i := range contractModels {
		contracts[i] = contractModels[i].ToDomain()
	}
	return contracts, nil
}

// List returns a page of contracts for a tenant
func (r *GormContractRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*billing.Contract], error) {
	query := r.db.WithContext(ctx).Model(&models.ContractModel{}).
		Where("tenant_id = ?", tenantID)
	if filter.Search != "" {
		query = query.Where("package_label "+likeOperator(r.db)+" ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var contractModels []models.ContractModel
	if err := applyPagination(query, filter, "sale_date DESC").
		Find(&contractModels).Error; err != nil {
		return nil, err
	}

	contracts := make([]*billing.Contract, len(contractModels))
	for i := range contractModels {
		contracts[i] = contractModels[i].ToDomain()
	}
	return shared.NewPaginated(contracts, total, filter.Page, filter.PageSize), nil
}

// Delete soft deletes a contract for a tenant
func (r *GormContractRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.ContractModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// likeOperator picks the case-insensitive match operator for the dialect.
// SQLite LIKE is already case-insensitive and has no ILIKE.
func likeOperator(db *gorm.DB) string {
	if db.Dialector.Name() == "sqlite" {
		return "LIKE"
	}
	return "ILIKE"
}

// applyPagination applies page, size and ordering to a query
func applyPagination(query *gorm.DB, filter shared.Filter, defaultOrder string) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	if filter.OrderBy != "" {
		dir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			dir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + dir)
	} else {
		query = query.Order(defaultOrder)
	}
	return query
}

// Ensure GormContractRepository implements ContractRepository
var _ billing.ContractRepository = (*GormContractRepository)(nil)
