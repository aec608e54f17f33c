package reconcile

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/ledgerline/internal/invoice/domain"
)

var oneHundred = decimal.NewFromInt(100)

// DirectionTotals reconciles the three parallel ledgers for one direction of
// money flow: billed (TotalInvoiced), collected (TotalPaid), and outstanding
// (TotalPending).
type DirectionTotals struct {
	TotalInvoiced decimal.Decimal `json:"total_invoiced"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	TotalPending  decimal.Decimal `json:"total_pending"`

	Installments InstallmentTotals `json:"installments"`
	Credit       CreditTotals      `json:"credit"`

	InvoiceCount   int             `json:"invoice_count"`
	PaidPercentage decimal.Decimal `json:"paid_percentage"`
}

// NetProfit is revenue minus expense under each of the three money views.
type NetProfit struct {
	Invoiced   decimal.Decimal `json:"invoiced"`
	ActualPaid decimal.Decimal `json:"actual_paid"`
	Pending    decimal.Decimal `json:"pending"`
}

// DebtAnalysis re-reads the installment ledgers through the lens of who owes
// whom. Credit balances are deliberately excluded: only scheduled
// obligations count as structured debt.
type DebtAnalysis struct {
	DebtOnUs        decimal.Decimal `json:"debt_on_us"`
	ProfitsDeferred decimal.Decimal `json:"profits_deferred"`
	NetDebtPosition decimal.Decimal `json:"net_debt_position"`
}

// StatusCounts tallies installments by effective status across the invoice
// set.
type StatusCounts struct {
	Paid    int `json:"paid"`
	Pending int `json:"pending"`
	Overdue int `json:"overdue"`
}

// FinancialSnapshot is the engine's aggregate report. It is built fresh on
// every call and never persisted.
type FinancialSnapshot struct {
	Revenue DirectionTotals `json:"revenue"`
	Expense DirectionTotals `json:"expense"`

	NetProfit    NetProfit    `json:"net_profit"`
	DebtAnalysis DebtAnalysis `json:"debt_analysis"`

	InstallmentCounts StatusCounts `json:"installment_counts"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// BuildFinancialSnapshot folds a tenant-scoped invoice set into one
// internally consistent snapshot. The fold is pure: the same invoices and
// the same now produce an identical snapshot. An empty set yields an
// all-zero snapshot.
func BuildFinancialSnapshot(invoices []invoicedomain.Invoice, now time.Time) (*FinancialSnapshot, error) {
	snapshot := &FinancialSnapshot{}

	for _, inv := range invoices {
		if err := validateInvoice(inv); err != nil {
			return nil, err
		}

		totals := &snapshot.Revenue
		if inv.Type == invoicedomain.InvoiceTypeExpense {
			totals = &snapshot.Expense
		}
		totals.InvoiceCount++

		switch Classify(inv) {
		case RegimeInstallment:
			reduced, warnings := ReduceInstallments(inv, now)
			totals.Installments = totals.Installments.merge(reduced)
			totals.TotalInvoiced = totals.TotalInvoiced.Add(reduced.Total)
			totals.TotalPaid = totals.TotalPaid.Add(reduced.Collected())
			totals.TotalPending = totals.TotalPending.Add(reduced.Outstanding())
			snapshot.Warnings = append(snapshot.Warnings, warnings...)

		case RegimeCredit:
			reduced, warnings := ReduceCredit(inv)
			totals.Credit = totals.Credit.merge(reduced)
			totals.TotalInvoiced = totals.TotalInvoiced.Add(reduced.Total)
			totals.TotalPaid = totals.TotalPaid.Add(reduced.Paid)
			totals.TotalPending = totals.TotalPending.Add(reduced.Pending)
			snapshot.Warnings = append(snapshot.Warnings, warnings...)

		default:
			// Direct invoices count what was billed and what was paid;
			// a shortfall is not tracked as pending.
			totals.TotalInvoiced = totals.TotalInvoiced.Add(inv.TotalInvoice)
			totals.TotalPaid = totals.TotalPaid.Add(inv.PaymentsTotal())
		}
	}

	snapshot.Revenue.PaidPercentage = paidPercentage(snapshot.Revenue)
	snapshot.Expense.PaidPercentage = paidPercentage(snapshot.Expense)

	snapshot.NetProfit = NetProfit{
		Invoiced:   snapshot.Revenue.TotalInvoiced.Sub(snapshot.Expense.TotalInvoiced),
		ActualPaid: snapshot.Revenue.TotalPaid.Sub(snapshot.Expense.TotalPaid),
		Pending:    snapshot.Revenue.TotalPending.Sub(snapshot.Expense.TotalPending),
	}

	debtOnUs := snapshot.Expense.Installments.Outstanding()
	profitsDeferred := snapshot.Revenue.Installments.Outstanding()
	snapshot.DebtAnalysis = DebtAnalysis{
		DebtOnUs:        debtOnUs,
		ProfitsDeferred: profitsDeferred,
		NetDebtPosition: profitsDeferred.Sub(debtOnUs),
	}

	snapshot.InstallmentCounts = StatusCounts{
		Paid:    snapshot.Revenue.Installments.PaidCount + snapshot.Expense.Installments.PaidCount,
		Pending: snapshot.Revenue.Installments.PendingCount + snapshot.Expense.Installments.PendingCount,
		Overdue: snapshot.Revenue.Installments.OverdueCount + snapshot.Expense.Installments.OverdueCount,
	}

	return snapshot, nil
}

func paidPercentage(totals DirectionTotals) decimal.Decimal {
	if totals.TotalInvoiced.IsZero() {
		return decimal.Zero
	}
	return totals.TotalPaid.Div(totals.TotalInvoiced).Mul(oneHundred).Round(2)
}

func validateInvoice(inv invoicedomain.Invoice) error {
	if inv.TotalInvoice.IsNegative() {
		return fmt.Errorf("%w: invoice %s has negative total", ErrInvalidInvoiceData, inv.ID)
	}
	for _, p := range inv.Payments {
		if p.Amount.IsNegative() {
			return fmt.Errorf("%w: invoice %s has a negative payment", ErrInvalidInvoiceData, inv.ID)
		}
	}
	for idx, in := range inv.Installments {
		if in.Amount.IsNegative() || in.PaidAmount.IsNegative() {
			return fmt.Errorf("%w: invoice %s installment %d has a negative amount", ErrInvalidInvoiceData, inv.ID, idx)
		}
	}
	return nil
}
