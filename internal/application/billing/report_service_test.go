package billing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ledgera/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService_AgingReport(t *testing.T) {
	ctx := context.Background()
	asOf := testDate(2026, 6, 15)

	t.Run("buckets overdue and incoming installments", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 2000, 0, 10)

		f.newInstallment(t, contract.ID, testDate(2026, 6, 5), 100)  // 10 days overdue
		f.newInstallment(t, contract.ID, testDate(2026, 5, 1), 200)  // 45 days overdue
		f.newInstallment(t, contract.ID, testDate(2026, 3, 1), 300)  // 106 days overdue
		f.newInstallment(t, contract.ID, testDate(2026, 6, 18), 400) // due in 3 days
		f.newInstallment(t, contract.ID, testDate(2026, 8, 1), 500)  // far future, excluded

		report, err := f.reports.AgingReport(ctx, f.tenantID, asOf)
		require.NoError(t, err)
		require.Len(t, report.Items, 4)

		assert.True(t, report.BucketTotals[billing.Bucket0To30].Equal(decimal.NewFromInt(100)))
		assert.True(t, report.BucketTotals[billing.Bucket30To60].Equal(decimal.NewFromInt(200)))
		assert.True(t, report.BucketTotals[billing.BucketOver90].Equal(decimal.NewFromInt(300)))
		assert.True(t, report.BucketTotals[billing.BucketIncoming].Equal(decimal.NewFromInt(400)))
		assert.True(t, report.TotalOverdue.Equal(decimal.NewFromInt(600)))
		assert.True(t, report.TotalIncoming.Equal(decimal.NewFromInt(400)))
		assert.Equal(t, 1, report.BucketCounts[billing.Bucket0To30])
		assert.Equal(t, 1, report.BucketClientCounts[billing.Bucket0To30])
	})

	t.Run("carries client and contract context on each row", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 0, 10)
		f.newInstallment(t, contract.ID, testDate(2026, 6, 1), 250)

		report, err := f.reports.AgingReport(ctx, f.tenantID, asOf)
		require.NoError(t, err)
		require.Len(t, report.Items, 1)

		item := report.Items[0]
		assert.Equal(t, f.clientID, item.ClientID)
		assert.Equal(t, "Ada Lovelace", item.ClientName)
		assert.Equal(t, "10-session pack", item.PackageLabel)
		assert.Equal(t, 14, item.DaysOverdue)
	})

	t.Run("settled and partially paid installments report the remainder", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 0, 10)
		paid := f.newInstallment(t, contract.ID, testDate(2026, 6, 1), 300)
		partial := f.newInstallment(t, contract.ID, testDate(2026, 6, 5), 300)

		_, err := f.installments.Pay(ctx, f.tenantID, paid.ID, PayInput{Amount: decimal.NewFromInt(300)})
		require.NoError(t, err)
		_, err = f.installments.Pay(ctx, f.tenantID, partial.ID, PayInput{Amount: decimal.NewFromInt(100)})
		require.NoError(t, err)

		report, err := f.reports.AgingReport(ctx, f.tenantID, asOf)
		require.NoError(t, err)
		require.Len(t, report.Items, 1)
		assert.Equal(t, partial.ID, report.Items[0].InstallmentID)
		assert.True(t, report.Items[0].Remaining.Equal(decimal.NewFromInt(200)))
	})

	t.Run("other tenants' installments are invisible", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 0, 10)
		f.newInstallment(t, contract.ID, testDate(2026, 6, 1), 250)

		report, err := f.reports.AgingReport(ctx, uuid.New(), asOf)
		require.NoError(t, err)
		assert.Empty(t, report.Items)
	})

	t.Run("deleted contracts drop out of the report", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 0, 10)
		inst := f.newInstallment(t, contract.ID, testDate(2026, 6, 1), 1000)
		_, err := f.installments.Pay(ctx, f.tenantID, inst.ID, PayInput{Amount: decimal.NewFromInt(1000)})
		require.NoError(t, err)
		require.NoError(t, f.contracts.DeleteContract(ctx, f.tenantID, contract.ID))

		report, err := f.reports.AgingReport(ctx, f.tenantID, asOf)
		require.NoError(t, err)
		assert.Empty(t, report.Items)
	})
}
