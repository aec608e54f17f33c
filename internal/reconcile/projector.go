package reconcile

import (
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/ledgerline/internal/invoice/domain"
)

// InstallmentRow is one denormalized record per installment across the
// matching invoice set.
type InstallmentRow struct {
	InvoiceID        snowflake.ID                    `json:"invoice_id"`
	InvoiceType      invoicedomain.InvoiceType       `json:"invoice_type"`
	CounterpartyName string                          `json:"counterparty_name"`
	InstallmentID    string                          `json:"installment_id,omitempty"`
	InstallmentIndex int                             `json:"installment_index"`
	Amount           decimal.Decimal                 `json:"amount"`
	PaidAmount       decimal.Decimal                 `json:"paid_amount"`
	RemainingAmount  decimal.Decimal                 `json:"remaining_amount"`
	DueDate          time.Time                       `json:"due_date"`
	Status           invoicedomain.InstallmentStatus `json:"status"`
	DaysUntilDue     int                             `json:"days_until_due"`
}

// RowStats accompany an installment listing. RemainingAmount sums only rows
// that are not yet paid.
type RowStats struct {
	TotalCount   int `json:"total_count"`
	PaidCount    int `json:"paid_count"`
	PendingCount int `json:"pending_count"`
	OverdueCount int `json:"overdue_count"`

	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

// OverdueStatus is the roll-up urgency tag for an invoice's nearest pending
// installment.
type OverdueStatus string

const (
	OverdueStatusOverdue OverdueStatus = "overdue"
	OverdueStatusDueSoon OverdueStatus = "due_soon"
	OverdueStatusCurrent OverdueStatus = "current"
)

// PendingInvoice annotates one invoice that still owes money with its
// nearest-due pending installment.
type PendingInvoice struct {
	InvoiceID        snowflake.ID              `json:"invoice_id"`
	InvoiceType      invoicedomain.InvoiceType `json:"invoice_type"`
	CounterpartyName string                    `json:"counterparty_name"`
	TotalInvoice     decimal.Decimal           `json:"total_invoice"`
	PendingCount     int                       `json:"pending_count"`
	PendingAmount    decimal.Decimal           `json:"pending_amount"`
	NextInstallment  InstallmentRow            `json:"next_installment"`
	OverdueStatus    OverdueStatus             `json:"overdue_status"`
}

// ProjectInstallmentRows emits one row per installment across every
// installment-regime invoice, sorted ascending by due date. Ties keep
// invoice creation order, then installment index.
func ProjectInstallmentRows(invoices []invoicedomain.Invoice, now time.Time) ([]InstallmentRow, RowStats, error) {
	rows := make([]InstallmentRow, 0)
	var stats RowStats

	for _, inv := range byCreation(invoices) {
		if err := validateInvoice(inv); err != nil {
			return nil, RowStats{}, err
		}
		if Classify(inv) != RegimeInstallment {
			continue
		}
		for idx, in := range inv.Installments {
			row := projectRow(inv, idx, in, now)
			rows = append(rows, row)

			stats.TotalCount++
			stats.TotalAmount = stats.TotalAmount.Add(row.Amount)
			switch row.Status {
			case invoicedomain.InstallmentStatusPaid:
				stats.PaidCount++
				stats.PaidAmount = stats.PaidAmount.Add(row.PaidAmount)
			case invoicedomain.InstallmentStatusOverdue:
				stats.OverdueCount++
				stats.RemainingAmount = stats.RemainingAmount.Add(row.RemainingAmount)
			default:
				stats.PendingCount++
				stats.RemainingAmount = stats.RemainingAmount.Add(row.RemainingAmount)
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].DueDate.Before(rows[j].DueDate)
	})
	return rows, stats, nil
}

// ProjectPendingInstallments is the "which invoices still owe money" view:
// per invoice, the single nearest-due unpaid installment plus an urgency
// roll-up. dueSoonDays controls the due_soon window.
func ProjectPendingInstallments(invoices []invoicedomain.Invoice, now time.Time, dueSoonDays int) ([]PendingInvoice, RowStats, error) {
	if dueSoonDays <= 0 {
		dueSoonDays = 7
	}

	annotated := make([]PendingInvoice, 0)
	var stats RowStats

	for _, inv := range byCreation(invoices) {
		if err := validateInvoice(inv); err != nil {
			return nil, RowStats{}, err
		}
		if Classify(inv) != RegimeInstallment {
			continue
		}

		var pending []InstallmentRow
		for idx, in := range inv.Installments {
			row := projectRow(inv, idx, in, now)
			if row.Status == invoicedomain.InstallmentStatusPaid {
				continue
			}
			pending = append(pending, row)
		}
		if len(pending) == 0 {
			continue
		}

		next := pending[0]
		pendingAmount := decimal.Zero
		for _, row := range pending {
			pendingAmount = pendingAmount.Add(row.RemainingAmount)
			if row.DueDate.Before(next.DueDate) {
				next = row
			}

			stats.TotalCount++
			stats.TotalAmount = stats.TotalAmount.Add(row.Amount)
			stats.RemainingAmount = stats.RemainingAmount.Add(row.RemainingAmount)
			if row.Status == invoicedomain.InstallmentStatusOverdue {
				stats.OverdueCount++
			} else {
				stats.PendingCount++
			}
		}

		annotated = append(annotated, PendingInvoice{
			InvoiceID:        inv.ID,
			InvoiceType:      inv.Type,
			CounterpartyName: inv.CounterpartyName,
			TotalInvoice:     inv.TotalInvoice,
			PendingCount:     len(pending),
			PendingAmount:    pendingAmount,
			NextInstallment:  next,
			OverdueStatus:    rollupOverdueStatus(next, dueSoonDays),
		})
	}

	sort.SliceStable(annotated, func(i, j int) bool {
		return annotated[i].NextInstallment.DueDate.Before(annotated[j].NextInstallment.DueDate)
	})
	return annotated, stats, nil
}

func projectRow(inv invoicedomain.Invoice, idx int, in invoicedomain.Installment, now time.Time) InstallmentRow {
	status := EffectiveStatus(in, now)
	paid := effectivePaidAmount(in)

	remaining := in.Amount.Sub(paid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	if status == invoicedomain.InstallmentStatusPaid {
		remaining = decimal.Zero
	}

	return InstallmentRow{
		InvoiceID:        inv.ID,
		InvoiceType:      inv.Type,
		CounterpartyName: inv.CounterpartyName,
		InstallmentID:    in.ID,
		InstallmentIndex: idx,
		Amount:           in.Amount,
		PaidAmount:       paid,
		RemainingAmount:  remaining,
		DueDate:          in.DueDate,
		Status:           status,
		DaysUntilDue:     DaysUntilDue(in.DueDate, now),
	}
}

func rollupOverdueStatus(next InstallmentRow, dueSoonDays int) OverdueStatus {
	switch {
	case next.Status == invoicedomain.InstallmentStatusOverdue:
		return OverdueStatusOverdue
	case next.DaysUntilDue <= dueSoonDays:
		return OverdueStatusDueSoon
	default:
		return OverdueStatusCurrent
	}
}

// byCreation orders invoices by creation time so listings tie-break
// deterministically regardless of store ordering.
func byCreation(invoices []invoicedomain.Invoice) []invoicedomain.Invoice {
	ordered := make([]invoicedomain.Invoice, len(invoices))
	copy(ordered, invoices)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})
	return ordered
}
