package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledgera/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func TestBucketForDaysOverdue(t *testing.T) {
	tests := []struct {
		days int
		want AgingBucket
	}{
		{0, Bucket0To30},
		{29, Bucket0To30},
		{30, Bucket30To60},
		{59, Bucket30To60},
		{60, Bucket60To90},
		{89, Bucket60To90},
		{90, BucketOver90},
		{400, BucketOver90},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketForDaysOverdue(tt.days), "days=%d", tt.days)
	}
}

func TestBuildAgingReport(t *testing.T) {
	now := date(2026, 6, 1)
	tenantID := uuid.New()

	row := func(due string, expected, paid float64) AgingRow {
		dueDate, err := parseDate(due)
		require.NoError(t, err)
		inst, err := NewInstallment(tenantID, uuid.New(), dueDate,
			valueobject.NewMoneyEURFromFloat(expected), "")
		require.NoError(t, err)
		if paid > 0 {
			require.NoError(t, inst.ApplyPayment(valueobject.NewMoneyEURFromFloat(paid)))
		}
		return AgingRow{
			Installment:  *inst,
			ClientID:     uuid.New(),
			ClientName:   "Ada Lovelace",
			PackageLabel: "10x Pack",
		}
	}

	t.Run("buckets overdue by age and sums remainders", func(t *testing.T) {
		rows := []AgingRow{
			row("2026-05-20", 100, 0),  // 12 days overdue
			row("2026-04-10", 200, 50), // 52 days overdue, 150 remaining
			row("2026-02-15", 300, 0),  // 106 days overdue
		}

		report := BuildAgingReport(rows, now)

		require.Len(t, report.Items, 3)
		assert.Equal(t, Bucket0To30, report.Items[0].Bucket)
		assert.Equal(t, Bucket30To60, report.Items[1].Bucket)
		assert.Equal(t, BucketOver90, report.Items[2].Bucket)
		assert.True(t, report.BucketTotals[Bucket30To60].Equal(decimal.NewFromInt(150)))
		assert.True(t, report.TotalOverdue.Equal(decimal.NewFromInt(450)))
	})

	t.Run("due on the as-of date counts as overdue at day zero", func(t *testing.T) {
		rows := []AgingRow{
			row("2026-06-01", 100, 0),
		}

		report := BuildAgingReport(rows, now)

		require.Len(t, report.Items, 1)
		assert.Equal(t, Bucket0To30, report.Items[0].Bucket)
		assert.Equal(t, 0, report.Items[0].DaysOverdue)
		assert.True(t, report.TotalOverdue.Equal(decimal.NewFromInt(100)))
		assert.True(t, report.TotalIncoming.IsZero())
	})

	t.Run("counts installments and distinct clients per bucket", func(t *testing.T) {
		sharedClient := uuid.New()
		withClient := func(r AgingRow, clientID uuid.UUID) AgingRow {
			r.ClientID = clientID
			return r
		}
		rows := []AgingRow{
			withClient(row("2026-05-20", 100, 0), sharedClient),
			withClient(row("2026-05-25", 100, 0), sharedClient),
			row("2026-05-28", 100, 0),
			row("2026-04-10", 200, 0),
		}

		report := BuildAgingReport(rows, now)

		assert.Equal(t, 3, report.BucketCounts[Bucket0To30])
		assert.Equal(t, 2, report.BucketClientCounts[Bucket0To30])
		assert.Equal(t, 1, report.BucketCounts[Bucket30To60])
		assert.Equal(t, 1, report.BucketClientCounts[Bucket30To60])
	})

	t.Run("installments due within a week are incoming", func(t *testing.T) {
		rows := []AgingRow{
			row("2026-06-05", 100, 0),
			row("2026-06-08", 100, 0), // exactly on the horizon
		}

		report := BuildAgingReport(rows, now)

		require.Len(t, report.Items, 2)
		for _, item := range report.Items {
			assert.Equal(t, BucketIncoming, item.Bucket)
			assert.Equal(t, 0, item.DaysOverdue)
		}
		assert.True(t, report.TotalIncoming.Equal(decimal.NewFromInt(200)))
	})

	t.Run("excludes settled and far-future installments", func(t *testing.T) {
		rows := []AgingRow{
			row("2026-05-01", 100, 100), // settled
			row("2026-08-01", 100, 0),   // well past the horizon
		}

		report := BuildAgingReport(rows, now)

		assert.Empty(t, report.Items)
		assert.True(t, report.TotalOverdue.IsZero())
		assert.True(t, report.TotalIncoming.IsZero())
	})
}
