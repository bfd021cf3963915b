package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgera/backend/internal/domain/billing"
	"github.com/ledgera/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ReportService produces the receivables aging report
type ReportService struct {
	installments billing.InstallmentRepository
	now          func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(installments billing.InstallmentRepository) *ReportService {
	return &ReportService{
		installments: installments,
		now:          time.Now,
	}
}

// AgingReport buckets every unsettled installment of the tenant by how
// long it has been overdue as of the given date, plus the ones coming due
// within the following week. A zero asOf means today.
func (s *ReportService) AgingReport(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*billing.AgingReport, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	rows, err := s.installments.FindUnsettledWithClient(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	report := billing.BuildAgingReport(rows, asOf)

	logger.L(ctx).Debug("aging report generated",
		zap.Int("items", len(report.Items)),
		zap.String("total_overdue", report.TotalOverdue.String()),
	)
	return report, nil
}
