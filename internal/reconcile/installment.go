package reconcile

import (
	"time"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/ledgerline/internal/invoice/domain"
)

// InstallmentTotals are the four amount buckets plus per-status counts for
// one invoice's installment schedule, or the merged buckets of many.
//
// The three counts always sum to the number of installments. When paid
// installments are settled in full, Paid + Pending + Overdue == Total; a
// partial or excess paid amount shifts Paid accordingly (excess is surfaced
// as a warning).
type InstallmentTotals struct {
	Total   decimal.Decimal `json:"total"`
	Paid    decimal.Decimal `json:"paid"`
	Pending decimal.Decimal `json:"pending"`
	Overdue decimal.Decimal `json:"overdue"`

	PaidCount    int `json:"paid_count"`
	PendingCount int `json:"pending_count"`
	OverdueCount int `json:"overdue_count"`
}

// Collected is the amount actually received for the schedule. Direct
// payments recorded on an installment invoice are not added on top; the paid
// bucket already represents them.
func (t InstallmentTotals) Collected() decimal.Decimal {
	return t.Paid
}

// Outstanding is the amount still owed: pending plus overdue.
func (t InstallmentTotals) Outstanding() decimal.Decimal {
	return t.Pending.Add(t.Overdue)
}

func (t InstallmentTotals) merge(other InstallmentTotals) InstallmentTotals {
	return InstallmentTotals{
		Total:        t.Total.Add(other.Total),
		Paid:         t.Paid.Add(other.Paid),
		Pending:      t.Pending.Add(other.Pending),
		Overdue:      t.Overdue.Add(other.Overdue),
		PaidCount:    t.PaidCount + other.PaidCount,
		PendingCount: t.PendingCount + other.PendingCount,
		OverdueCount: t.OverdueCount + other.OverdueCount,
	}
}

// ReduceInstallments folds one installment-regime invoice into its amount
// buckets. The effective status of each installment decides the bucket: paid
// amounts count as collected, overdue and not-yet-due amounts both count as
// outstanding.
func ReduceInstallments(inv invoicedomain.Invoice, now time.Time) (InstallmentTotals, []Warning) {
	var totals InstallmentTotals
	var warnings []Warning

	for idx, in := range inv.Installments {
		totals.Total = totals.Total.Add(in.Amount)

		switch EffectiveStatus(in, now) {
		case invoicedomain.InstallmentStatusPaid:
			paid := effectivePaidAmount(in)
			totals.Paid = totals.Paid.Add(paid)
			totals.PaidCount++
			if paid.GreaterThan(in.Amount) {
				i := idx
				warnings = append(warnings, Warning{
					Code:             WarningInstallmentOverpaid,
					InvoiceID:        inv.ID,
					InstallmentID:    in.ID,
					InstallmentIndex: &i,
					Excess:           paid.Sub(in.Amount),
				})
			}
		case invoicedomain.InstallmentStatusOverdue:
			totals.Overdue = totals.Overdue.Add(in.Amount)
			totals.OverdueCount++
		default:
			totals.Pending = totals.Pending.Add(in.Amount)
			totals.PendingCount++
		}
	}

	return totals, warnings
}
