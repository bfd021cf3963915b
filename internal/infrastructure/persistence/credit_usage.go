package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/ledgera/backend/internal/domain/billing"
	"github.com/ledgera/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCreditUsageProvider counts consumed credits from the
// credit_consumptions table. Consumption rows are written by the
// scheduling side; billing treats the count as an external fact.
type GormCreditUsageProvider struct {
	db *gorm.DB
}

// NewGormCreditUsageProvider creates a new GormCreditUsageProvider
func NewGormCreditUsageProvider(db *gorm.DB) *GormCreditUsageProvider {
	return &GormCreditUsageProvider{db: db}
}

// UsedCredits counts the non-deleted consumption rows of a contract
func (p *GormCreditUsageProvider) UsedCredits(ctx context.Context, tenantID, contractID uuid.UUID) (int, error) {
	var count int64
	if err := p.db.WithContext(ctx).
		Model(&models.CreditConsumptionModel{}).
		Where("tenant_id = ? AND contract_id = ?", tenantID, contractID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// Ensure GormCreditUsageProvider implements CreditUsageProvider
var _ billing.CreditUsageProvider = (*GormCreditUsageProvider)(nil)
