package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AgingBucket groups overdue installments by how long they have been due
type AgingBucket string

const (
	Bucket0To30    AgingBucket = "0_30"
	Bucket30To60   AgingBucket = "30_60"
	Bucket60To90   AgingBucket = "60_90"
	BucketOver90   AgingBucket = "90_PLUS"
	BucketIncoming AgingBucket = "INCOMING"
)

// incomingWindowDays is how far ahead the report looks for installments
// coming due
const incomingWindowDays = 7

// BucketForDaysOverdue maps a positive overdue age to its bucket
func BucketForDaysOverdue(days int) AgingBucket {
	switch {
	case days < 30:
		return Bucket0To30
	case days < 60:
		return Bucket30To60
	case days < 90:
		return Bucket60To90
	default:
		return BucketOver90
	}
}

// AgingItem is one unsettled installment as it appears on the report
type AgingItem struct {
	InstallmentID uuid.UUID       `json:"installment_id"`
	ContractID    uuid.UUID       `json:"contract_id"`
	ClientID      uuid.UUID       `json:"client_id"`
	ClientName    string          `json:"client_name"`
	PackageLabel  string          `json:"package_label"`
	DueDate       time.Time       `json:"due_date"`
	Remaining     decimal.Decimal `json:"remaining"`
	DaysOverdue   int             `json:"days_overdue"`
	Bucket        AgingBucket     `json:"bucket"`
}

// AgingReport is the full receivables aging snapshot for one tenant
type AgingReport struct {
	GeneratedAt        time.Time                       `json:"generated_at"`
	Items              []AgingItem                     `json:"items"`
	BucketTotals       map[AgingBucket]decimal.Decimal `json:"bucket_totals"`
	BucketCounts       map[AgingBucket]int             `json:"bucket_counts"`
	BucketClientCounts map[AgingBucket]int             `json:"bucket_client_counts"`
	TotalOverdue       decimal.Decimal                 `json:"total_overdue"`
	TotalIncoming      decimal.Decimal                 `json:"total_incoming"`
}

// AgingRow is the joined row the repository feeds into the report: an
// unsettled installment plus the client it ultimately belongs to.
type AgingRow struct {
	Installment  Installment
	ClientID     uuid.UUID
	ClientName   string
	PackageLabel string
}

// BuildAgingReport buckets every unsettled installment that is either
// overdue or coming due within the incoming window. Installments due
// further out are excluded entirely.
func BuildAgingReport(rows []AgingRow, now time.Time) *AgingReport {
	report := &AgingReport{
		GeneratedAt:        now,
		Items:              make([]AgingItem, 0, len(rows)),
		BucketTotals:       make(map[AgingBucket]decimal.Decimal),
		BucketCounts:       make(map[AgingBucket]int),
		BucketClientCounts: make(map[AgingBucket]int),
		TotalOverdue:       decimal.Zero,
		TotalIncoming:      decimal.Zero,
	}
	horizon := now.AddDate(0, 0, incomingWindowDays)
	bucketClients := make(map[AgingBucket]map[uuid.UUID]struct{})

	for _, row := range rows {
		inst := row.Installment
		if inst.Status == PaymentStatusSettled {
			continue
		}
		remaining := inst.Remaining()

		var bucket AgingBucket
		days := inst.DaysOverdue(now)
		switch {
		case !inst.DueDate.After(now):
			// Due today counts as overdue at day 0
			bucket = BucketForDaysOverdue(days)
			report.TotalOverdue = report.TotalOverdue.Add(remaining)
		case !inst.DueDate.After(horizon):
			bucket = BucketIncoming
			report.TotalIncoming = report.TotalIncoming.Add(remaining)
		default:
			continue
		}

		report.Items = append(report.Items, AgingItem{
			InstallmentID: inst.ID,
			ContractID:    inst.ContractID,
			ClientID:      row.ClientID,
			ClientName:    row.ClientName,
			PackageLabel:  row.PackageLabel,
			DueDate:       inst.DueDate,
			Remaining:     remaining,
			DaysOverdue:   days,
			Bucket:        bucket,
		})

		total, ok := report.BucketTotals[bucket]
		if !ok {
			total = decimal.Zero
		}
		report.BucketTotals[bucket] = total.Add(remaining)
		report.BucketCounts[bucket]++

		clients, ok := bucketClients[bucket]
		if !ok {
			clients = make(map[uuid.UUID]struct{})
			bucketClients[bucket] = clients
		}
		if _, seen := clients[row.ClientID]; !seen {
			clients[row.ClientID] = struct{}{}
			report.BucketClientCounts[bucket]++
		}
	}

	return report
}
