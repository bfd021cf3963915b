package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ledgera/backend/internal/domain/billing"
	"github.com/ledgera/backend/internal/domain/shared"
	"github.com/ledgera/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInstallmentRepository implements InstallmentRepository using GORM
type GormInstallmentRepository struct {
	db *gorm.DB
}

// NewGormInstallmentRepository creates a new GormInstallmentRepository
func NewGormInstallmentRepository(db *gorm.DB) *GormInstallmentRepository {
	return &GormInstallmentRepository{db: db}
}

// Save creates or updates an installment
func (r *GormInstallmentRepository) Save(ctx context.Context, installment *billing.Installment) error {
	model := models.InstallmentModelFromDomain(installment)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds an installment by ID for a specific tenant
func (r *GormInstallmentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*billing.Installment, error) {
	var model models.InstallmentModel
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

// FindByContract returns the non-deleted installments of a contract ordered
// by due date
func (r *GormInstallmentRepository) FindByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]billing.Installment, error) {
	var installmentModels []models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND contract_id = ?", tenantID, contractID).
		Order("due_date ASC").
		Find(&installmentModels).Error; err != nil {
		return nil, err
	}
	installments := make([]billing.Installment, len(installmentModels))
	for i := range installmentModels {
		installments[i] = *installmentModels[i].ToDomain()
	}
	return installments, nil
}

// agingJoinRow is the scan target for the aging report join
type agingJoinRow struct {
	models.InstallmentModel
	ClientID     uuid.UUID
	FirstName    string
	LastName     string
	PackageLabel string
}

// FindUnsettledWithClient joins every unsettled installment with its
// contract and client for the aging report. Soft-deleted contracts and
// clients drop their installments out of the report.
func (r *GormInstallmentRepository) FindUnsettledWithClient(ctx context.Context, tenantID uuid.UUID) ([]billing.AgingRow, error) {
	var joined []agingJoinRow
	if err := r.db.WithContext(ctx).
		Model(&models.InstallmentModel{}).
		Select("installments.*, clients.id AS client_id, clients.first_name, clients.last_name, contracts.package_label").
		Joins("JOIN contracts ON contracts.id = installments.contract_id AND contracts.deleted_at IS NULL").
		Joins("JOIN clients ON clients.id = contracts.client_id AND clients.deleted_at IS NULL").
		Where("installments.tenant_id = ? AND installments.status <> ?", tenantID, billing.PaymentStatusSettled).
		Order("installments.due_date ASC").
		Scan(&joined).Error; err != nil {
		return nil, err
	}

	rows := make([]billing.AgingRow, len(joined))
	for i := range joined {
		name := joined[i].FirstName
		if joined[i].LastName != "" {
			name += " " + joined[i].LastName
		}
		rows[i] = billing.AgingRow{
			Installment:  *joined[i].InstallmentModel.ToDomain(),
			ClientID:     joined[i].ClientID,
			ClientName:   name,
			PackageLabel: joined[i].PackageLabel,
		}
	}
	return rows, nil
}

// Delete soft deletes an installment for a tenant
func (r *GormInstallmentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&models.InstallmentModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormInstallmentRepository implements InstallmentRepository
var _ billing.InstallmentRepository = (*GormInstallmentRepository)(nil)
