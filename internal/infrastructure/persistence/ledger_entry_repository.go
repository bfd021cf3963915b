package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ledgera/backend/internal/domain/billing"
	"github.com/ledgera/backend/internal/domain/shared"
	"github.com/ledgera/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLedgerEntryRepository implements LedgerEntryRepository using GORM
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// Save creates or updates a ledger entry
func (r *GormLedgerEntryRepository) Save(ctx context.Context, entry *billing.LedgerEntry) error {
	model := models.LedgerEntryModelFromDomain(entry)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a ledger entry by ID for a specific tenant
func (r *GormLedgerEntryRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*billing.LedgerEntry, error) {
	var model models.LedgerEntryModel
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

// FindByInstallment returns the entries recorded against an installment,
// oldest first
func (r *GormLedgerEntryRepository) FindByInstallment(ctx context.Context, tenantID, installmentID uuid.UUID) ([]billing.LedgerEntry, error) {
	var entryModels []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND installment_id = ?", tenantID, installmentID).
		Order("created_at ASC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]billing.LedgerEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = *entryModels[i].ToDomain()
	}
	return entries, nil
}

// FindByPeriod returns a page of entries whose effective date falls in
// [from, to]. Payments report under the due date they settle, not the day
// the cash arrived.
func (r *GormLedgerEntryRepository) FindByPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time, filter shared.Filter) (*shared.Paginated[*billing.LedgerEntry], error) {
	query := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).
		Where("tenant_id = ? AND effective_date >= ? AND effective_date <= ?", tenantID, from, to)
	if filter.Search != "" {
		query = query.Where("description "+likeOperator(r.db)+" ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var entryModels []models.LedgerEntryModel
	if err := applyPagination(query, filter, "effective_date DESC").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*billing.LedgerEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = entryModels[i].ToDomain()
	}
	return shared.NewPaginated(entries, total, filter.Page, filter.PageSize), nil
}

// ReattributeByInstallment shifts the effective date of every entry tied
// to the installment. Zero matched rows is fine; unpaid installments have
// no entries to move.
func (r *GormLedgerEntryRepository) ReattributeByInstallment(ctx context.Context, tenantID, installmentID uuid.UUID, effectiveDate time.Time) error {
	return r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).
		Where("tenant_id = ? AND installment_id = ?", tenantID, installmentID).
		Update("effective_date", effectiveDate).Error
}

// Delete soft deletes a ledger entry for a tenant
func (r *GormLedgerEntryRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.LedgerEntryModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormLedgerEntryRepository implements LedgerEntryRepository
var _ billing.LedgerEntryRepository = (*GormLedgerEntryRepository)(nil)
