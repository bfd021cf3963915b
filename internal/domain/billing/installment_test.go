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

func newTestInstallment(t *testing.T, expected float64) *Installment {
	t.Helper()
	inst, err := NewInstallment(uuid.New(), uuid.New(), date(2026, 3, 1),
		valueobject.NewMoneyEURFromFloat(expected), "")
	require.NoError(t, err)
	return inst
}

func TestNewInstallment(t *testing.T) {
	t.Run("starts pending with nothing paid", func(t *testing.T) {
		inst := newTestInstallment(t, 300)
		assert.Equal(t, PaymentStatusPending, inst.Status)
		assert.True(t, inst.PaidAmount.IsZero())
		assert.True(t, inst.Remaining().Equal(decimal.NewFromInt(300)))
	})

	t.Run("rejects non-positive expected amount", func(t *testing.T) {
		_, err := NewInstallment(uuid.New(), uuid.New(), date(2026, 3, 1),
			valueobject.ZeroEUR(), "")
		require.Error(t, err)
		assert.Equal(t, "INVALID_INPUT", domainCode(t, err))
	})
}

func TestInstallmentApplyPayment(t *testing.T) {
	t.Run("partial payment moves to partial", func(t *testing.T) {
		inst := newTestInstallment(t, 300)

		err := inst.ApplyPayment(valueobject.NewMoneyEURFromFloat(100))

		require.NoError(t, err)
		assert.Equal(t, PaymentStatusPartial, inst.Status)
		assert.True(t, inst.Remaining().Equal(decimal.NewFromInt(200)))
	})

	t.Run("paying the exact remainder settles", func(t *testing.T) {
		inst := newTestInstallment(t, 300)
		require.NoError(t, inst.ApplyPayment(valueobject.NewMoneyEURFromFloat(100)))

		err := inst.ApplyPayment(valueobject.NewMoneyEURFromFloat(200))

		require.NoError(t, err)
		assert.Equal(t, PaymentStatusSettled, inst.Status)
		assert.True(t, inst.Remaining().IsZero())
	})

	t.Run("rejects payment past the remainder", func(t *testing.T) {
		inst := newTestInstallment(t, 300)
		require.NoError(t, inst.ApplyPayment(valueobject.NewMoneyEURFromFloat(250)))

		err := inst.ApplyPayment(valueobject.NewMoneyEURFromFloat(51))

		require.Error(t, err)
		assert.Equal(t, "OVERPAYMENT", domainCode(t, err))
		assert.True(t, inst.PaidAmount.Equal(decimal.NewFromInt(250)), "failed payment must not mutate")
	})

	t.Run("rejects non-positive payment", func(t *testing.T) {
		inst := newTestInstallment(t, 300)
		err := inst.ApplyPayment(valueobject.ZeroEUR())
		require.Error(t, err)
		assert.Equal(t, "INVALID_INPUT", domainCode(t, err))
	})
}

func TestInstallmentRevertPayment(t *testing.T) {
	t.Run("revert is the exact inverse of apply", func(t *testing.T) {
		inst := newTestInstallment(t, 300)
		require.NoError(t, inst.ApplyPayment(valueobject.NewMoneyEURFromFloat(300)))
		require.Equal(t, PaymentStatusSettled, inst.Status)

		err := inst.RevertPayment(decimal.NewFromInt(300))

		require.NoError(t, err)
		assert.Equal(t, PaymentStatusPending, inst.Status)
		assert.True(t, inst.PaidAmount.IsZero())
	})

	t.Run("partial revert drops back to partial", func(t *testing.T) {
		inst := newTestInstallment(t, 300)
		require.NoError(t, inst.ApplyPayment(valueobject.NewMoneyEURFromFloat(300)))

		err := inst.RevertPayment(decimal.NewFromInt(100))

		require.NoError(t, err)
		assert.Equal(t, PaymentStatusPartial, inst.Status)
		assert.True(t, inst.PaidAmount.Equal(decimal.NewFromInt(200)))
	})

	t.Run("rejects revert past the paid amount", func(t *testing.T) {
		inst := newTestInstallment(t, 300)
		require.NoError(t, inst.ApplyPayment(valueobject.NewMoneyEURFromFloat(100)))

		err := inst.RevertPayment(decimal.NewFromInt(150))

		require.Error(t, err)
		assert.Equal(t, "NOTHING_TO_UNPAY", domainCode(t, err))
	})
}

func TestInstallmentChangeExpectedAmount(t *testing.T) {
	t.Run("resizing below paid is rejected", func(t *testing.T) {
		inst := newTestInstallment(t, 300)
		require.NoError(t, inst.ApplyPayment(valueobject.NewMoneyEURFromFloat(200)))

		err := inst.ChangeExpectedAmount(valueobject.NewMoneyEURFromFloat(150))

		require.Error(t, err)
		assert.Equal(t, "AMOUNT_BELOW_PAID", domainCode(t, err))
	})

	t.Run("resizing down to paid settles the installment", func(t *testing.T) {
		inst := newTestInstallment(t, 300)
		require.NoError(t, inst.ApplyPayment(valueobject.NewMoneyEURFromFloat(200)))

		err := inst.ChangeExpectedAmount(valueobject.NewMoneyEURFromFloat(200))

		require.NoError(t, err)
		assert.Equal(t, PaymentStatusSettled, inst.Status)
	})

	t.Run("resizing up reopens a settled installment", func(t *testing.T) {
		inst := newTestInstallment(t, 200)
		require.NoError(t, inst.ApplyPayment(valueobject.NewMoneyEURFromFloat(200)))
		require.Equal(t, PaymentStatusSettled, inst.Status)

		err := inst.ChangeExpectedAmount(valueobject.NewMoneyEURFromFloat(250))

		require.NoError(t, err)
		assert.Equal(t, PaymentStatusPartial, inst.Status)
	})
}

func TestInstallmentDaysOverdue(t *testing.T) {
	inst := newTestInstallment(t, 300)
	inst.DueDate = date(2026, 3, 1)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"before due date", date(2026, 2, 20), 0},
		{"on due date", date(2026, 3, 1), 0},
		{"one day after", date(2026, 3, 2), 1},
		{"ninety days after", date(2026, 5, 30), 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inst.DaysOverdue(tt.now))
		})
	}

	t.Run("settled installment is never overdue", func(t *testing.T) {
		require.NoError(t, inst.ApplyPayment(valueobject.NewMoneyEURFromFloat(300)))
		assert.Equal(t, 0, inst.DaysOverdue(date(2026, 5, 30)))
	})
}
