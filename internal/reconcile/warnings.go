package reconcile

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// WarningCode identifies a non-fatal consistency finding.
type WarningCode string

const (
	// WarningCreditOverpaid means payments on a credit invoice exceed its
	// billed total. Reporting clamps the remaining balance to zero but the
	// over-payment itself must not be hidden.
	WarningCreditOverpaid WarningCode = "credit_overpaid"

	// WarningInstallmentOverpaid means an installment's paid amount exceeds
	// its obligated amount.
	WarningInstallmentOverpaid WarningCode = "installment_overpaid"
)

// Warning is reported alongside a snapshot or listing. It never prevents the
// report from being produced.
type Warning struct {
	Code             WarningCode     `json:"code"`
	InvoiceID        snowflake.ID    `json:"invoice_id"`
	InstallmentID    string          `json:"installment_id,omitempty"`
	InstallmentIndex *int            `json:"installment_index,omitempty"`
	Excess           decimal.Decimal `json:"excess"`
}
