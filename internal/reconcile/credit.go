package reconcile

import (
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/ledgerline/internal/invoice/domain"
)

// CreditTotals are the amount buckets for credit-regime invoices: an open
// balance settled by ad hoc payments, with no schedule.
type CreditTotals struct {
	Total   decimal.Decimal `json:"total"`
	Paid    decimal.Decimal `json:"paid"`
	Pending decimal.Decimal `json:"pending"`
}

func (t CreditTotals) merge(other CreditTotals) CreditTotals {
	return CreditTotals{
		Total:   t.Total.Add(other.Total),
		Paid:    t.Paid.Add(other.Paid),
		Pending: t.Pending.Add(other.Pending),
	}
}

// ReduceCredit computes the remaining balance of one credit invoice. The
// reported pending amount is clamped at zero, but an over-payment is not
// silently hidden: it comes back as a credit_overpaid warning so the caller
// can flag the upstream inconsistency.
func ReduceCredit(inv invoicedomain.Invoice) (CreditTotals, []Warning) {
	collected := inv.PaymentsTotal()
	remaining := inv.TotalInvoice.Sub(collected)

	totals := CreditTotals{
		Total: inv.TotalInvoice,
		Paid:  collected,
	}
	if remaining.IsPositive() {
		totals.Pending = remaining
	}

	var warnings []Warning
	if remaining.IsNegative() {
		warnings = append(warnings, Warning{
			Code:      WarningCreditOverpaid,
			InvoiceID: inv.ID,
			Excess:    remaining.Neg(),
		})
	}
	return totals, warnings
}
