package billing

import (
	"time"

	"github.com/ledgera/backend/internal/domain/shared"
	"github.com/ledgera/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PlanFrequency is the cadence of a generated installment plan
type PlanFrequency string

const (
	FrequencyWeekly   PlanFrequency = "WEEKLY"
	FrequencyBiweekly PlanFrequency = "BIWEEKLY"
	FrequencyMonthly  PlanFrequency = "MONTHLY"
)

// IsValid checks if the frequency is a valid PlanFrequency
func (f PlanFrequency) IsValid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

func (f PlanFrequency) next(t time.Time) time.Time {
	switch f {
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case FrequencyBiweekly:
		return t.AddDate(0, 0, 14)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// PlanLine is one slice of a generated installment plan
type PlanLine struct {
	DueDate time.Time       `json:"due_date"`
	Amount  decimal.Decimal `json:"amount"`
}

// GeneratePlan splits a total evenly across count installments starting at
// firstDue. Amounts are rounded to cents; any rounding remainder lands on
// the final installment so the plan sums exactly to the total.
func GeneratePlan(firstDue time.Time, count int, frequency PlanFrequency, total valueobject.Money) ([]PlanLine, error) {
	if count <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Plan must have at least one installment")
	}
	if count > 120 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Plan cannot exceed 120 installments")
	}
	if !frequency.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid plan frequency")
	}
	if !total.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Plan total must be positive")
	}

	slice := total.Amount().Div(decimal.NewFromInt(int64(count))).RoundDown(2)
	if slice.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Plan total is too small to split")
	}
	last := total.Amount().Sub(slice.Mul(decimal.NewFromInt(int64(count - 1))))

	lines := make([]PlanLine, count)
	due := firstDue
	for n := 0; n < count; n++ {
		amount := slice
		if n == count-1 {
			amount = last
		}
		lines[n] = PlanLine{DueDate: due, Amount: amount}
		due = frequency.next(due)
	}
	return lines, nil
}
