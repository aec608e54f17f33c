package reconcile

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/ledgerline/internal/invoice/domain"
)

// EffectiveStatus reconciles an installment's stored status against now.
// Paid is authoritative from storage. A stored pending promotes to overdue
// once its due date has passed; a due date of exactly now is still pending.
// An installment without a usable due date keeps its stored status.
func EffectiveStatus(in invoicedomain.Installment, now time.Time) invoicedomain.InstallmentStatus {
	switch in.Status {
	case invoicedomain.InstallmentStatusPaid:
		return invoicedomain.InstallmentStatusPaid
	case invoicedomain.InstallmentStatusOverdue:
		return invoicedomain.InstallmentStatusOverdue
	}
	if in.DueDate.IsZero() {
		return invoicedomain.InstallmentStatusPending
	}
	if in.DueDate.Before(now) {
		return invoicedomain.InstallmentStatusOverdue
	}
	return invoicedomain.InstallmentStatusPending
}

// DaysUntilDue is the signed number of whole days until the due date,
// rounded up. Negative means overdue by that many days; a due date of
// exactly now yields 0.
func DaysUntilDue(dueDate, now time.Time) int {
	if dueDate.IsZero() {
		return 0
	}
	return int(math.Ceil(dueDate.Sub(now).Hours() / 24))
}

// effectivePaidAmount applies the legacy defaulting rule: a paid installment
// whose paidAmount was never written counts as paid in full.
func effectivePaidAmount(in invoicedomain.Installment) decimal.Decimal {
	if in.Status == invoicedomain.InstallmentStatusPaid && in.PaidAmount.IsZero() {
		return in.Amount
	}
	return in.PaidAmount
}
