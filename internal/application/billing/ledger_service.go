package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ledgera/backend/internal/domain/billing"
	"github.com/ledgera/backend/internal/domain/shared"
	"github.com/ledgera/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LedgerService provides read access to the cash ledger and lets operators
// book standalone entries. Deposit and installment-payment entries are
// written by the contract and installment flows, never through this
// service.
type LedgerService struct {
	entries billing.LedgerEntryRepository
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(entries billing.LedgerEntryRepository) *LedgerService {
	return &LedgerService{entries: entries}
}

// CreateEntryInput contains input for a manually booked ledger entry
type CreateEntryInput struct {
	Direction         billing.EntryDirection
	Source            billing.EntrySource
	Amount            decimal.Decimal
	EntryDate         time.Time
	Description       string
	RecurringSourceID *uuid.UUID
	DedupKey          string
}

// CreateEntry books a manual or recurring-expense ledger entry
func (s *LedgerService) CreateEntry(ctx context.Context, tenantID uuid.UUID, input CreateEntryInput) (*LedgerEntryResponse, error) {
	var (
		entry *billing.LedgerEntry
		err   error
	)
	switch input.Source {
	case billing.SourceRecurringExpense:
		entry, err = billing.NewRecurringExpenseEntry(tenantID,
			valueobject.NewMoneyEUR(input.Amount), input.EntryDate, input.Description,
			input.RecurringSourceID, input.DedupKey)
	case billing.SourceManual:
		entry, err = billing.NewManualEntry(tenantID, input.Direction,
			valueobject.NewMoneyEUR(input.Amount), input.EntryDate, input.Description,
			operatorFromContext(ctx))
	default:
		return nil, shared.NewDomainError("INVALID_INPUT", "Only manual and recurring-expense entries can be booked directly")
	}
	if err != nil {
		return nil, err
	}
	if err := s.entries.Save(ctx, entry); err != nil {
		return nil, err
	}
	return toLedgerEntryResponse(entry), nil
}

// GetEntry returns one ledger entry of the tenant
func (s *LedgerService) GetEntry(ctx context.Context, tenantID, id uuid.UUID) (*LedgerEntryResponse, error) {
	entry, err := s.entries.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toLedgerEntryResponse(entry), nil
}

// ListByInstallment returns the payment entries recorded against an
// installment, newest first
func (s *LedgerService) ListByInstallment(ctx context.Context, tenantID, installmentID uuid.UUID) ([]*LedgerEntryResponse, error) {
	entries, err := s.entries.FindByInstallment(ctx, tenantID, installmentID)
	if err != nil {
		return nil, err
	}
	responses := make([]*LedgerEntryResponse, len(entries))
	for i := range entries {
		responses[i] = toLedgerEntryResponse(&entries[i])
	}
	return responses, nil
}

// PeriodSummary aggregates the ledger over a date range
type PeriodSummary struct {
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Net          decimal.Decimal `json:"net"`
}

// ListByPeriod returns the ledger entries whose effective date falls in
// [from, to], paginated
func (s *LedgerService) ListByPeriod(ctx context.Context, tenantID uuid.UUID, from, to time.Time, filter shared.Filter) (*shared.Paginated[*LedgerEntryResponse], error) {
	if to.Before(from) {
		return nil, shared.NewDomainError("INVALID_DATES", "Period end cannot precede its start")
	}
	page, err := s.entries.FindByPeriod(ctx, tenantID, from, to, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]*LedgerEntryResponse, len(page.Items))
	for i, entry := range page.Items {
		responses[i] = toLedgerEntryResponse(entry)
	}
	return shared.NewPaginated(responses, page.Total, page.Page, page.PageSize), nil
}

// Summarize totals the ledger over a date range, netting income against
// expenses
func (s *LedgerService) Summarize(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*PeriodSummary, error) {
	if to.Before(from) {
		return nil, shared.NewDomainError("INVALID_DATES", "Period end cannot precede its start")
	}
	filter := shared.Filter{Page: 1, PageSize: summaryPageSize}
	summary := &PeriodSummary{
		From:         from,
		To:           to,
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	for {
		page, err := s.entries.FindByPeriod(ctx, tenantID, from, to, filter)
		if err != nil {
			return nil, err
		}
		for _, entry := range page.Items {
			if entry.Direction == billing.DirectionExpense {
				summary.TotalExpense = summary.TotalExpense.Add(entry.Amount)
			} else {
				summary.TotalIncome = summary.TotalIncome.Add(entry.Amount)
			}
		}
		if len(page.Items) < filter.PageSize {
			break
		}
		filter.Page++
	}
	summary.Net = summary.TotalIncome.Sub(summary.TotalExpense)
	return summary, nil
}

const summaryPageSize = 500
