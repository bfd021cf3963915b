package billing

import (
	"testing"

	"github.com/ledgera/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePlan(t *testing.T) {
	t.Run("even split sums exactly to the total", func(t *testing.T) {
		lines, err := GeneratePlan(date(2026, 2, 1), 3, FrequencyMonthly,
			valueobject.NewMoneyEURFromFloat(1000))

		require.NoError(t, err)
		require.Len(t, lines, 3)
		sum := decimal.Zero
		for _, line := range lines {
			sum = sum.Add(line.Amount)
		}
		assert.True(t, sum.Equal(decimal.NewFromInt(1000)), "plan sums to %s", sum)
		assert.True(t, lines[0].Amount.Equal(decimal.RequireFromString("333.33")))
		assert.True(t, lines[2].Amount.Equal(decimal.RequireFromString("333.34")))
	})

	t.Run("monthly cadence advances by calendar month", func(t *testing.T) {
		lines, err := GeneratePlan(date(2026, 1, 31), 3, FrequencyMonthly,
			valueobject.NewMoneyEURFromFloat(300))

		require.NoError(t, err)
		assert.Equal(t, date(2026, 1, 31), lines[0].DueDate)
		assert.Equal(t, date(2026, 3, 3), lines[1].DueDate) // Jan 31 + 1 month normalizes past Feb
		assert.Equal(t, date(2026, 4, 3), lines[2].DueDate)
	})

	t.Run("weekly cadence advances by seven days", func(t *testing.T) {
		lines, err := GeneratePlan(date(2026, 2, 2), 4, FrequencyWeekly,
			valueobject.NewMoneyEURFromFloat(400))

		require.NoError(t, err)
		assert.Equal(t, date(2026, 2, 9), lines[1].DueDate)
		assert.Equal(t, date(2026, 2, 23), lines[3].DueDate)
	})

	t.Run("rejects zero installments", func(t *testing.T) {
		_, err := GeneratePlan(date(2026, 2, 1), 0, FrequencyMonthly,
			valueobject.NewMoneyEURFromFloat(100))
		require.Error(t, err)
		assert.Equal(t, "INVALID_INPUT", domainCode(t, err))
	})

	t.Run("rejects unknown frequency", func(t *testing.T) {
		_, err := GeneratePlan(date(2026, 2, 1), 2, PlanFrequency("DAILY"),
			valueobject.NewMoneyEURFromFloat(100))
		require.Error(t, err)
		assert.Equal(t, "INVALID_INPUT", domainCode(t, err))
	})
}
