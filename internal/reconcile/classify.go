// Package reconcile turns a heterogeneous invoice set into a consistent set
// of financial metrics across three views of money: billed, collected, and
// still pending. All functions are pure; the current time is always an
// explicit parameter.
package reconcile

import (
	invoicedomain "github.com/smallbiznis/ledgerline/internal/invoice/domain"
)

// Regime is the aggregation rule an invoice falls under.
type Regime string

const (
	RegimeDirect      Regime = "direct"
	RegimeInstallment Regime = "installment"
	RegimeCredit      Regime = "credit"
)

// Classify determines which aggregation rule applies to an invoice. An
// invoice declared as installment but carrying no installment documents is
// treated as direct, as is anything else that is neither installment nor
// credit. Direct invoices never track a pending amount even when their
// payments fall short of the billed total.
func Classify(inv invoicedomain.Invoice) Regime {
	switch {
	case inv.PaymentType == invoicedomain.PaymentTypeInstallment && len(inv.Installments) > 0:
		return RegimeInstallment
	case inv.PaymentType == invoicedomain.PaymentTypeCredit:
		return RegimeCredit
	default:
		return RegimeDirect
	}
}
