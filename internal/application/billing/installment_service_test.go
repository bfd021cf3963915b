package billing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/ledgera/backend/internal/domain/billing"
	"github.com/ledgera/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallmentService_CreateInstallment(t *testing.T) {
	ctx := context.Background()

	t.Run("creates installment inside the term and cap", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 200, 10)

		resp := f.newInstallment(t, contract.ID, testDate(2026, 3, 1), 400)
		assert.Equal(t, "PENDING", resp.Status)
		assert.True(t, resp.Remaining.Equal(decimal.NewFromInt(400)))
	})

	t.Run("due date on the expiry date is allowed", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 0, 10)

		f.newInstallment(t, contract.ID, testDate(2026, 12, 31), 100)
	})

	t.Run("due date past the expiry date is rejected", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 0, 10)

		_, err := f.installments.CreateInstallment(ctx, f.tenantID, CreateInstallmentInput{
			ContractID:     contract.ID,
			DueDate:        testDate(2027, 1, 1),
			ExpectedAmount: decimal.NewFromInt(100),
		})
		assert.Equal(t, "DATE_OUT_OF_BOUNDS", errCode(t, err))
	})

	t.Run("amount over the residual cap is rejected", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 200, 10)
		f.newInstallment(t, contract.ID, testDate(2026, 3, 1), 500)

		// 1000 - 200 deposit - 500 scheduled leaves 300
		_, err := f.installments.CreateInstallment(ctx, f.tenantID, CreateInstallmentInput{
			ContractID:     contract.ID,
			DueDate:        testDate(2026, 4, 1),
			ExpectedAmount: decimal.NewFromInt(301),
		})
		assert.Equal(t, "RESIDUAL_EXCEEDED", errCode(t, err))
	})

	t.Run("zero cap rejects even the smallest amount", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 200, 10)
		f.newInstallment(t, contract.ID, testDate(2026, 3, 1), 400)
		f.newInstallment(t, contract.ID, testDate(2026, 4, 1), 400)

		// 1000 - 200 deposit - 400 - 400 leaves exactly 0
		_, err := f.installments.CreateInstallment(ctx, f.tenantID, CreateInstallmentInput{
			ContractID:     contract.ID,
			DueDate:        testDate(2026, 5, 1),
			ExpectedAmount: decimal.NewFromInt(1),
		})
		assert.Equal(t, "RESIDUAL_EXCEEDED", errCode(t, err))
	})

	t.Run("contract of another tenant reads as missing", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 0, 10)

		_, err := f.installments.CreateInstallment(ctx, uuid.New(), CreateInstallmentInput{
			ContractID:     contract.ID,
			DueDate:        testDate(2026, 3, 1),
			ExpectedAmount: decimal.NewFromInt(100),
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestInstallmentService_GeneratePlan(t *testing.T) {
	ctx := context.Background()

	t.Run("splits the total into monthly slices with the remainder last", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 0, 10)

		lines, err := f.installments.GeneratePlan(ctx, f.tenantID, GeneratePlanInput{
			ContractID: contract.ID,
			FirstDue:   testDate(2026, 2, 1),
			Count:      3,
			Frequency:  billing.FrequencyMonthly,
			Total:      decimal.NewFromInt(1000),
		})
		require.NoError(t, err)
		require.Len(t, lines, 3)
		assert.True(t, lines[0].ExpectedAmount.Equal(decimal.RequireFromString("333.33")))
		assert.True(t, lines[1].ExpectedAmount.Equal(decimal.RequireFromString("333.33")))
		assert.True(t, lines[2].ExpectedAmount.Equal(decimal.RequireFromString("333.34")))
		assert.True(t, lines[1].DueDate.Equal(testDate(2026, 3, 1)))
	})

	t.Run("due dates past the expiry collapse onto the expiry date", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 0, 10)

		lines, err := f.installments.GeneratePlan(ctx, f.tenantID, GeneratePlanInput{
			ContractID: contract.ID,
			FirstDue:   testDate(2026, 11, 1),
			Count:      4,
			Frequency:  billing.FrequencyMonthly,
			Total:      decimal.NewFromInt(1000),
		})
		require.NoError(t, err)
		require.Len(t, lines, 4)
		assert.True(t, lines[0].DueDate.Equal(testDate(2026, 11, 1)))
		assert.True(t, lines[1].DueDate.Equal(testDate(2026, 12, 1)))
		assert.True(t, lines[2].DueDate.Equal(testDate(2026, 12, 31)))
		assert.True(t, lines[3].DueDate.Equal(testDate(2026, 12, 31)))
	})

	t.Run("omitted total splits the residual cap", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 200, 10)
		f.newInstallment(t, contract.ID, testDate(2026, 2, 1), 300)

		// cap = 1000 - 200 - 300 = 500, split over two lines
		lines, err := f.installments.GeneratePlan(ctx, f.tenantID, GeneratePlanInput{
			ContractID: contract.ID,
			FirstDue:   testDate(2026, 3, 1),
			Count:      2,
			Frequency:  billing.FrequencyMonthly,
		})
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.True(t, lines[0].ExpectedAmount.Equal(decimal.NewFromInt(250)))
		assert.True(t, lines[1].ExpectedAmount.Equal(decimal.NewFromInt(250)))
	})

	t.Run("fully scheduled contract cannot take a plan", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 200, 10)
		f.newInstallment(t, contract.ID, testDate(2026, 2, 1), 800)

		_, err := f.installments.GeneratePlan(ctx, f.tenantID, GeneratePlanInput{
			ContractID: contract.ID,
			FirstDue:   testDate(2026, 3, 1),
			Count:      2,
			Frequency:  billing.FrequencyMonthly,
			Total:      decimal.NewFromInt(100),
		})
		assert.Equal(t, "RESIDUAL_EXHAUSTED", errCode(t, err))
	})

	t.Run("plan total over the residual cap is rejected and rolled back", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 200, 10)

		_, err := f.installments.GeneratePlan(ctx, f.tenantID, GeneratePlanInput{
			ContractID: contract.ID,
			FirstDue:   testDate(2026, 2, 1),
			Count:      2,
			Frequency:  billing.FrequencyMonthly,
			Total:      decimal.NewFromInt(900),
		})
		assert.Equal(t, "RESIDUAL_EXCEEDED", errCode(t, err))

		installments, listErr := f.installments.ListByContract(ctx, f.tenantID, contract.ID)
		require.NoError(t, listErr)
		assert.Empty(t, installments)
	})
}

func TestInstallmentService_Pay(t *testing.T) {
	ctx := context.Background()

	t.Run("partial payment updates installment and contract", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 200, 10)
		inst := f.newInstallment(t, contract.ID, testDate(2026, 3, 1), 800)

		resp, err := f.installments.Pay(ctx, f.tenantID, inst.ID, PayInput{
			Amount: decimal.NewFromInt(300),
			Method: "cash",
			PaidAt: testDate(2026, 2, 20),
		})
		require.NoError(t, err)
		assert.Equal(t, "PARTIAL", resp.Status)
		assert.True(t, resp.Remaining.Equal(decimal.NewFromInt(500)))

		updated, err := f.contracts.GetContract(ctx, f.tenantID, contract.ID)
		require.NoError(t, err)
		assert.True(t, updated.TotalPaid.Equal(decimal.NewFromInt(500)))
		assert.Equal(t, "PARTIAL", updated.PaymentStatus)

		entries, err := f.ledger.ListByInstallment(ctx, f.tenantID, inst.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, string(billing.SourceInstallmentPayment), entries[0].Source)
		assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(300)))
		assert.Contains(t, entries[0].Description, "(cash)")
		assert.True(t, entries[0].EffectiveDate.Equal(testDate(2026, 3, 1)))
	})

	t.Run("final payment with exhausted credits closes the contract", func(t *testing.T) {
		f := newFixture(t)
		handler := &capturingHandler{}
		f.bus.Subscribe(handler, billing.EventContractClosed)

		contract := f.newContract(t, 1000, 200, 5)
		inst := f.newInstallment(t, contract.ID, testDate(2026, 3, 1), 800)
		f.consumeCredits(t, contract.ID, 5)

		_, err := f.installments.Pay(ctx, f.tenantID, inst.ID, PayInput{Amount: decimal.NewFromInt(800)})
		require.NoError(t, err)

		updated, err := f.contracts.GetContract(ctx, f.tenantID, contract.ID)
		require.NoError(t, err)
		assert.Equal(t, "SETTLED", updated.PaymentStatus)
		assert.True(t, updated.Closed)
		assert.Contains(t, handler.eventTypes(), billing.EventContractClosed)
	})

	t.Run("overpayment is rejected and leaves no ledger entry", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 0, 10)
		inst := f.newInstallment(t, contract.ID, testDate(2026, 3, 1), 500)
		before := f.countEntries(t)

		_, err := f.installments.Pay(ctx, f.tenantID, inst.ID, PayInput{Amount: decimal.NewFromInt(501)})
		assert.Equal(t, "OVERPAYMENT", errCode(t, err))
		assert.Equal(t, before, f.countEntries(t))

		unchanged, err := f.installments.GetInstallment(ctx, f.tenantID, inst.ID)
		require.NoError(t, err)
		assert.True(t, unchanged.PaidAmount.IsZero())
	})

	t.Run("paying a closed contract is rejected", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 200, 5)
		inst := f.newInstallment(t, contract.ID, testDate(2026, 3, 1), 800)
		f.consumeCredits(t, contract.ID, 5)
		_, err := f.installments.Pay(ctx, f.tenantID, inst.ID, PayInput{Amount: decimal.NewFromInt(800)})
		require.NoError(t, err)

		_, err = f.installments.Pay(ctx, f.tenantID, inst.ID, PayInput{Amount: decimal.NewFromInt(1)})
		assert.Equal(t, "CONTRACT_CLOSED", errCode(t, err))
	})

	t.Run("installment of another tenant reads as missing", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 0, 10)
		inst := f.newInstallment(t, contract.ID, testDate(2026, 3, 1), 500)

		_, err := f.installments.Pay(ctx, uuid.New(), inst.ID, PayInput{Amount: decimal.NewFromInt(100)})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestInstallmentService_Unpay(t *testing.T) {
	ctx := context.Background()

	t.Run("reverting the closing payment reopens the contract", func(t *testing.T) {
		f := newFixture(t)
		handler := &capturingHandler{}
		f.bus.Subscribe(handler, billing.EventContractReopened)

		contract := f.newContract(t, 1000, 200, 5)
		inst := f.newInstallment(t, contract.ID, testDate(2026, 3, 1), 800)
		f.consumeCredits(t, contract.ID, 5)
		_, err := f.installments.Pay(ctx, f.tenantID, inst.ID, PayInput{Amount: decimal.NewFromInt(800)})
		require.NoError(t, err)

		entries, err := f.ledger.ListByInstallment(ctx, f.tenantID, inst.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)

		resp, err := f.installments.Unpay(ctx, f.tenantID, inst.ID, entries[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "PENDING", resp.Status)
		assert.True(t, resp.PaidAmount.IsZero())

		reopened, err := f.contracts.GetContract(ctx, f.tenantID, contract.ID)
		require.NoError(t, err)
		assert.False(t, reopened.Closed)
		assert.Nil(t, reopened.ClosedAt)
		assert.Equal(t, "PARTIAL", reopened.PaymentStatus)
		assert.Contains(t, handler.eventTypes(), billing.EventContractReopened)

		remaining, err := f.ledger.ListByInstallment(ctx, f.tenantID, inst.ID)
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})

	t.Run("pay then unpay restores the exact prior state", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 200, 10)
		inst := f.newInstallment(t, contract.ID, testDate(2026, 3, 1), 800)

		_, err := f.installments.Pay(ctx, f.tenantID, inst.ID, PayInput{Amount: decimal.NewFromInt(300)})
		require.NoError(t, err)
		entries, err := f.ledger.ListByInstallment(ctx, f.tenantID, inst.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)

		_, err = f.installments.Unpay(ctx, f.tenantID, inst.ID, entries[0].ID)
		require.NoError(t, err)

		restored, err := f.contracts.GetContract(ctx, f.tenantID, contract.ID)
		require.NoError(t, err)
		assert.True(t, restored.TotalPaid.Equal(decimal.NewFromInt(200)))
		assert.Equal(t, "PARTIAL", restored.PaymentStatus)
	})

	t.Run("entry of a different installment reads as missing", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 0, 10)
		first := f.newInstallment(t, contract.ID, testDate(2026, 3, 1), 500)
		second := f.newInstallment(t, contract.ID, testDate(2026, 4, 1), 500)

		_, err := f.installments.Pay(ctx, f.tenantID, first.ID, PayInput{Amount: decimal.NewFromInt(100)})
		require.NoError(t, err)
		entries, err := f.ledger.ListByInstallment(ctx, f.tenantID, first.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)

		_, err = f.installments.Unpay(ctx, f.tenantID, second.ID, entries[0].ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestInstallmentService_UpdateInstallment(t *testing.T) {
	ctx := context.Background()

	t.Run("resizing below the paid amount is rejected", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 0, 10)
		inst := f.newInstallment(t, contract.ID, testDate(2026, 3, 1), 500)
		_, err := f.installments.Pay(ctx, f.tenantID, inst.ID, PayInput{Amount: decimal.NewFromInt(300)})
		require.NoError(t, err)

		amount := decimal.NewFromInt(200)
		_, err = f.installments.UpdateInstallment(ctx, f.tenantID, inst.ID, UpdateInstallmentInput{
			ExpectedAmount: &amount,
		})
		assert.Equal(t, "AMOUNT_BELOW_PAID", errCode(t, err))
	})

	t.Run("resizing over the residual cap is rejected", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 200, 10)
		inst := f.newInstallment(t, contract.ID, testDate(2026, 3, 1), 400)
		f.newInstallment(t, contract.ID, testDate(2026, 4, 1), 300)

		// cap excluding the resized one: 1000 - 200 - 300 = 500
		amount := decimal.NewFromInt(501)
		_, err := f.installments.UpdateInstallment(ctx, f.tenantID, inst.ID, UpdateInstallmentInput{
			ExpectedAmount: &amount,
		})
		assert.Equal(t, "RESIDUAL_EXCEEDED", errCode(t, err))
	})

	t.Run("resizing a settled installment up makes it partial again", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 0, 10)
		inst := f.newInstallment(t, contract.ID, testDate(2026, 3, 1), 500)
		_, err := f.installments.Pay(ctx, f.tenantID, inst.ID, PayInput{Amount: decimal.NewFromInt(500)})
		require.NoError(t, err)

		amount := decimal.NewFromInt(600)
		resp, err := f.installments.UpdateInstallment(ctx, f.tenantID, inst.ID, UpdateInstallmentInput{
			ExpectedAmount: &amount,
		})
		require.NoError(t, err)
		assert.Equal(t, "PARTIAL", resp.Status)
		assert.True(t, resp.Remaining.Equal(decimal.NewFromInt(100)))
	})

	t.Run("rescheduling outside the term is rejected", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 0, 10)
		inst := f.newInstallment(t, contract.ID, testDate(2026, 3, 1), 500)

		due := testDate(2027, 2, 1)
		_, err := f.installments.UpdateInstallment(ctx, f.tenantID, inst.ID, UpdateInstallmentInput{
			DueDate: &due,
		})
		assert.Equal(t, "DATE_OUT_OF_BOUNDS", errCode(t, err))
	})
}

func TestInstallmentService_DeleteInstallment(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes an unpaid installment", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 0, 10)
		inst := f.newInstallment(t, contract.ID, testDate(2026, 3, 1), 500)

		require.NoError(t, f.installments.DeleteInstallment(ctx, f.tenantID, inst.ID))
		_, err := f.installments.GetInstallment(ctx, f.tenantID, inst.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("deleting a paid installment drops its money from the contract", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 200, 10)
		inst := f.newInstallment(t, contract.ID, testDate(2026, 3, 1), 500)
		_, err := f.installments.Pay(ctx, f.tenantID, inst.ID, PayInput{Amount: decimal.NewFromInt(100)})
		require.NoError(t, err)

		require.NoError(t, f.installments.DeleteInstallment(ctx, f.tenantID, inst.ID))

		// total_paid falls back to the deposit alone
		updated, err := f.contracts.GetContract(ctx, f.tenantID, contract.ID)
		require.NoError(t, err)
		assert.True(t, updated.TotalPaid.Equal(decimal.NewFromInt(200)))

		// the payment entry went with the installment
		entries, err := f.ledger.ListByInstallment(ctx, f.tenantID, inst.ID)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("deleting frees residual cap for new installments", func(t *testing.T) {
		f := newFixture(t)
		contract := f.newContract(t, 1000, 200, 10)
		inst := f.newInstallment(t, contract.ID, testDate(2026, 3, 1), 800)
		require.NoError(t, f.installments.DeleteInstallment(ctx, f.tenantID, inst.ID))

		f.newInstallment(t, contract.ID, testDate(2026, 4, 1), 800)
	})
}
