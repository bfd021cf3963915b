package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledgera/backend/internal/domain/shared"
	"github.com/ledgera/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestContract(t *testing.T, totalPrice, deposit float64, credits int) *Contract {
	t.Helper()
	c, err := NewContract(
		uuid.New(),
		uuid.New(),
		"10x Personal Training",
		date(2026, 1, 10),
		date(2026, 1, 15),
		date(2026, 7, 15),
		credits,
		valueobject.NewMoneyEURFromFloat(totalPrice),
		valueobject.NewMoneyEURFromFloat(deposit),
		"",
	)
	require.NoError(t, err)
	return c
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	return de.Code
}

func TestNewContract(t *testing.T) {
	t.Run("valid contract starts pending with deposit collected", func(t *testing.T) {
		c := newTestContract(t, 1000, 200, 10)

		assert.True(t, c.TotalPaid.Equal(decimal.NewFromInt(200)))
		assert.Equal(t, PaymentStatusPartial, c.PaymentStatus)
		assert.False(t, c.Closed)
		assert.Len(t, c.GetDomainEvents(), 1)
	})

	t.Run("zero deposit starts pending", func(t *testing.T) {
		c := newTestContract(t, 1000, 0, 10)
		assert.Equal(t, PaymentStatusPending, c.PaymentStatus)
	})

	t.Run("deposit covering full price starts settled", func(t *testing.T) {
		c := newTestContract(t, 500, 500, 10)
		assert.Equal(t, PaymentStatusSettled, c.PaymentStatus)
	})

	t.Run("rejects start date not before expiry", func(t *testing.T) {
		_, err := NewContract(uuid.New(), uuid.New(), "Pack",
			date(2026, 1, 1), date(2026, 6, 1), date(2026, 6, 1), 5,
			valueobject.NewMoneyEURFromFloat(100), valueobject.ZeroEUR(), "")
		require.Error(t, err)
		assert.Equal(t, "INVALID_DATES", domainCode(t, err))
	})

	t.Run("rejects deposit above total price", func(t *testing.T) {
		_, err := NewContract(uuid.New(), uuid.New(), "Pack",
			date(2026, 1, 1), date(2026, 1, 1), date(2026, 6, 1), 5,
			valueobject.NewMoneyEURFromFloat(100), valueobject.NewMoneyEURFromFloat(150), "")
		require.Error(t, err)
		assert.Equal(t, "RESIDUAL_EXCEEDED", domainCode(t, err))
	})

	t.Run("rejects empty client", func(t *testing.T) {
		_, err := NewContract(uuid.New(), uuid.Nil, "Pack",
			date(2026, 1, 1), date(2026, 1, 1), date(2026, 6, 1), 5,
			valueobject.NewMoneyEURFromFloat(100), valueobject.ZeroEUR(), "")
		require.Error(t, err)
		assert.Equal(t, "CLIENT_NOT_FOUND", domainCode(t, err))
	})
}

func TestContractRecalculate(t *testing.T) {
	makeInstallment := func(c *Contract, expected, paid float64) Installment {
		inst, err := NewInstallment(c.TenantID, c.ID, date(2026, 2, 1),
			valueobject.NewMoneyEURFromFloat(expected), "")
		require.NoError(t, err)
		if paid > 0 {
			require.NoError(t, inst.ApplyPayment(valueobject.NewMoneyEURFromFloat(paid)))
		}
		return *inst
	}

	t.Run("sums deposit and installment payments", func(t *testing.T) {
		c := newTestContract(t, 1000, 200, 10)
		installments := []Installment{
			makeInstallment(c, 400, 400),
			makeInstallment(c, 400, 100),
		}

		c.Recalculate(installments, 0)

		assert.True(t, c.TotalPaid.Equal(decimal.NewFromInt(700)))
		assert.Equal(t, PaymentStatusPartial, c.PaymentStatus)
		assert.False(t, c.Closed)
	})

	t.Run("settled but credits remaining stays open", func(t *testing.T) {
		c := newTestContract(t, 1000, 200, 10)
		installments := []Installment{makeInstallment(c, 800, 800)}

		c.Recalculate(installments, 9)

		assert.Equal(t, PaymentStatusSettled, c.PaymentStatus)
		assert.False(t, c.Closed)
	})

	t.Run("settled and consumed closes the contract", func(t *testing.T) {
		c := newTestContract(t, 1000, 200, 10)
		c.ClearDomainEvents()
		installments := []Installment{makeInstallment(c, 800, 800)}

		flipped := c.Recalculate(installments, 10)

		assert.True(t, flipped)
		assert.True(t, c.Closed)
		require.NotNil(t, c.ClosedAt)
		events := c.GetDomainEvents()
		found := false
		for _, e := range events {
			if e.EventType() == EventContractClosed {
				found = true
			}
		}
		assert.True(t, found, "expected a contract closed event")
	})

	t.Run("reverting a payment reopens a closed contract", func(t *testing.T) {
		c := newTestContract(t, 1000, 200, 10)
		inst := makeInstallment(c, 800, 800)
		c.Recalculate([]Installment{inst}, 10)
		require.True(t, c.Closed)
		c.ClearDomainEvents()

		require.NoError(t, inst.RevertPayment(decimal.NewFromInt(800)))
		flipped := c.Recalculate([]Installment{inst}, 10)

		assert.True(t, flipped)
		assert.False(t, c.Closed)
		assert.Nil(t, c.ClosedAt)
		assert.Equal(t, PaymentStatusPartial, c.PaymentStatus)
		events := c.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventContractReopened, events[0].EventType())
	})

	t.Run("zero credit contract never closes", func(t *testing.T) {
		c := newTestContract(t, 500, 500, 0)
		c.Recalculate(nil, 0)
		assert.Equal(t, PaymentStatusSettled, c.PaymentStatus)
		assert.False(t, c.Closed)
	})
}

func TestContractResidualCap(t *testing.T) {
	c := newTestContract(t, 1000, 200, 10)

	t.Run("no installments leaves price minus deposit", func(t *testing.T) {
		assert.True(t, c.ResidualCap(nil).Equal(decimal.NewFromInt(800)))
	})

	t.Run("existing installments shrink the cap", func(t *testing.T) {
		inst, err := NewInstallment(c.TenantID, c.ID, date(2026, 2, 1),
			valueobject.NewMoneyEURFromFloat(300), "")
		require.NoError(t, err)

		cap := c.ResidualCap([]Installment{*inst})
		assert.True(t, cap.Equal(decimal.NewFromInt(500)))
	})
}

func TestContractCanShortenTo(t *testing.T) {
	c := newTestContract(t, 1000, 200, 10)
	inst, err := NewInstallment(c.TenantID, c.ID, date(2026, 5, 1),
		valueobject.NewMoneyEURFromFloat(300), "")
	require.NoError(t, err)

	t.Run("rejects expiry before an installment due date", func(t *testing.T) {
		err := c.CanShortenTo(date(2026, 4, 1), []Installment{*inst})
		require.Error(t, err)
		assert.Equal(t, "SHORTENING_VIOLATES_INSTALLMENTS", domainCode(t, err))
	})

	t.Run("allows expiry on the due date itself", func(t *testing.T) {
		assert.NoError(t, c.CanShortenTo(date(2026, 5, 1), []Installment{*inst}))
	})
}

func TestContractCanDelete(t *testing.T) {
	c := newTestContract(t, 1000, 200, 10)

	t.Run("blocks on unsettled installment", func(t *testing.T) {
		inst, err := NewInstallment(c.TenantID, c.ID, date(2026, 2, 1),
			valueobject.NewMoneyEURFromFloat(300), "")
		require.NoError(t, err)

		err = c.CanDelete([]Installment{*inst}, 0)
		require.Error(t, err)
		assert.Equal(t, "HAS_PENDING_INSTALLMENTS", domainCode(t, err))
	})

	t.Run("blocks on consumed credits", func(t *testing.T) {
		err := c.CanDelete(nil, 3)
		require.Error(t, err)
		assert.Equal(t, "HAS_RESIDUAL_CREDITS", domainCode(t, err))
	})

	t.Run("allows deletion when clean", func(t *testing.T) {
		assert.NoError(t, c.CanDelete(nil, 0))
	})
}

func TestContractApply(t *testing.T) {
	t.Run("updates fields and bumps version", func(t *testing.T) {
		c := newTestContract(t, 1000, 200, 10)
		before := c.Version
		label := "20x Personal Training"
		credits := 20

		err := c.Apply(ContractPatch{PackageLabel: &label, TotalCredits: &credits})

		require.NoError(t, err)
		assert.Equal(t, label, c.PackageLabel)
		assert.Equal(t, 20, c.TotalCredits)
		assert.Equal(t, before+1, c.Version)
	})

	t.Run("rejects inverted date pair", func(t *testing.T) {
		c := newTestContract(t, 1000, 200, 10)
		expiry := date(2026, 1, 1)

		err := c.Apply(ContractPatch{ExpiryDate: &expiry})

		require.Error(t, err)
		assert.Equal(t, "INVALID_DATES", domainCode(t, err))
	})
}
