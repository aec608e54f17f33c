package reconcile

import (
	"time"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/ledgerline/internal/invoice/domain"
)

// AgingBucket groups overdue installments by how many days past due.
// MaxDays nil means open-ended.
type AgingBucket struct {
	Label   string
	MinDays int
	MaxDays *int
}

// AgingBucketTotal is one bucket's share of the overdue amount.
type AgingBucketTotal struct {
	Label   string          `json:"label"`
	MinDays int             `json:"min_days"`
	MaxDays *int            `json:"max_days,omitempty"`
	Count   int             `json:"count"`
	Amount  decimal.Decimal `json:"amount"`
}

// AgeOverdueInstallments distributes the remaining amount of every overdue
// installment across the configured aging buckets. An overdue row falls into
// the first bucket whose day range contains its days past due.
func AgeOverdueInstallments(invoices []invoicedomain.Invoice, now time.Time, buckets []AgingBucket) ([]AgingBucketTotal, error) {
	totals := make([]AgingBucketTotal, len(buckets))
	for i, b := range buckets {
		totals[i] = AgingBucketTotal{Label: b.Label, MinDays: b.MinDays, MaxDays: b.MaxDays}
	}

	rows, _, err := ProjectInstallmentRows(invoices, now)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		if row.Status != invoicedomain.InstallmentStatusOverdue {
			continue
		}
		daysPastDue := -row.DaysUntilDue
		if daysPastDue < 0 {
			// Stored overdue with a future due date; count it as freshly due.
			daysPastDue = 0
		}
		for i, b := range buckets {
			if daysPastDue < b.MinDays {
				continue
			}
			if b.MaxDays != nil && daysPastDue > *b.MaxDays {
				continue
			}
			totals[i].Count++
			totals[i].Amount = totals[i].Amount.Add(row.RemainingAmount)
			break
		}
	}

	return totals, nil
}
