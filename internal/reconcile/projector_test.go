package reconcile

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/smallbiznis/ledgerline/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectInstallmentRowsSortedByDueDate(t *testing.T) {
	later := installmentInvoice(1, invoicedomain.InvoiceTypeRevenue,
		invoicedomain.Installment{Amount: dec(100), Status: invoicedomain.InstallmentStatusPending, DueDate: testNow.AddDate(0, 0, 20)},
		invoicedomain.Installment{Amount: dec(100), Status: invoicedomain.InstallmentStatusPending, DueDate: testNow.AddDate(0, 0, 2)},
	)
	later.CreatedAt = testNow.AddDate(0, 0, -5)
	earlier := installmentInvoice(2, invoicedomain.InvoiceTypeExpense,
		invoicedomain.Installment{Amount: dec(300), Status: invoicedomain.InstallmentStatusPending, DueDate: testNow.AddDate(0, 0, 10)},
	)
	earlier.CreatedAt = testNow.AddDate(0, 0, -9)

	// Store order deliberately does not match creation order.
	rows, stats, err := ProjectInstallmentRows([]invoicedomain.Invoice{later, earlier}, testNow)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.True(t, rows[0].DueDate.Before(rows[1].DueDate))
	assert.True(t, rows[1].DueDate.Before(rows[2].DueDate))
	assert.Equal(t, snowflake.ID(1), rows[0].InvoiceID)
	assert.Equal(t, snowflake.ID(2), rows[1].InvoiceID)
	assert.Equal(t, 3, stats.TotalCount)
	assert.Equal(t, 3, stats.PendingCount)
	assert.True(t, stats.TotalAmount.Equal(dec(500)))
	assert.True(t, stats.RemainingAmount.Equal(dec(500)))
}

func TestProjectInstallmentRowsStableTieBreak(t *testing.T) {
	due := testNow.AddDate(0, 0, 3)

	second := installmentInvoice(20, invoicedomain.InvoiceTypeRevenue,
		invoicedomain.Installment{Amount: dec(100), Status: invoicedomain.InstallmentStatusPending, DueDate: due},
	)
	second.CreatedAt = testNow.AddDate(0, 0, -1)
	first := installmentInvoice(10, invoicedomain.InvoiceTypeRevenue,
		invoicedomain.Installment{Amount: dec(100), Status: invoicedomain.InstallmentStatusPending, DueDate: due},
		invoicedomain.Installment{Amount: dec(100), Status: invoicedomain.InstallmentStatusPending, DueDate: due},
	)
	first.CreatedAt = testNow.AddDate(0, 0, -2)

	rows, _, err := ProjectInstallmentRows([]invoicedomain.Invoice{second, first}, testNow)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Equal due dates preserve invoice creation order, then installment index.
	assert.Equal(t, snowflake.ID(10), rows[0].InvoiceID)
	assert.Equal(t, 0, rows[0].InstallmentIndex)
	assert.Equal(t, snowflake.ID(10), rows[1].InvoiceID)
	assert.Equal(t, 1, rows[1].InstallmentIndex)
	assert.Equal(t, snowflake.ID(20), rows[2].InvoiceID)
}

func TestProjectInstallmentRowsComputesRowFields(t *testing.T) {
	inv := installmentInvoice(1, invoicedomain.InvoiceTypeRevenue,
		invoicedomain.Installment{
			ID:         "inst-1",
			Amount:     dec(500),
			PaidAmount: dec(200),
			Status:     invoicedomain.InstallmentStatusPending,
			DueDate:    testNow.AddDate(0, 0, -3),
		},
	)
	inv.CounterpartyName = "Acme Supplies"

	rows, stats, err := ProjectInstallmentRows([]invoicedomain.Invoice{inv}, testNow)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "inst-1", row.InstallmentID)
	assert.Equal(t, "Acme Supplies", row.CounterpartyName)
	assert.Equal(t, invoicedomain.InstallmentStatusOverdue, row.Status)
	assert.Equal(t, -3, row.DaysUntilDue)
	assert.True(t, row.RemainingAmount.Equal(dec(300)))
	assert.Equal(t, 1, stats.OverdueCount)
	assert.True(t, stats.RemainingAmount.Equal(dec(300)))
}

func TestProjectInstallmentRowsSkipsNonInstallmentInvoices(t *testing.T) {
	direct := invoicedomain.Invoice{
		ID: 1, Type: invoicedomain.InvoiceTypeRevenue, PaymentType: invoicedomain.PaymentTypeDirect,
		TotalInvoice: dec(100),
	}
	credit := invoicedomain.Invoice{
		ID: 2, Type: invoicedomain.InvoiceTypeExpense, PaymentType: invoicedomain.PaymentTypeCredit,
		TotalInvoice: dec(100),
	}

	rows, stats, err := ProjectInstallmentRows([]invoicedomain.Invoice{direct, credit}, testNow)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Zero(t, stats.TotalCount)
}

func TestProjectPendingInstallments(t *testing.T) {
	overdue := installmentInvoice(1, invoicedomain.InvoiceTypeRevenue,
		invoicedomain.Installment{Amount: dec(500), Status: invoicedomain.InstallmentStatusPaid, PaidAmount: dec(500)},
		invoicedomain.Installment{Amount: dec(500), Status: invoicedomain.InstallmentStatusPending, DueDate: testNow.AddDate(0, 0, -2)},
	)
	dueSoon := installmentInvoice(2, invoicedomain.InvoiceTypeExpense,
		invoicedomain.Installment{Amount: dec(200), Status: invoicedomain.InstallmentStatusPending, DueDate: testNow.AddDate(0, 0, 3)},
	)
	current := installmentInvoice(3, invoicedomain.InvoiceTypeRevenue,
		invoicedomain.Installment{Amount: dec(900), Status: invoicedomain.InstallmentStatusPending, DueDate: testNow.AddDate(0, 0, 30)},
	)
	settled := installmentInvoice(4, invoicedomain.InvoiceTypeRevenue,
		invoicedomain.Installment{Amount: dec(100), Status: invoicedomain.InstallmentStatusPaid, PaidAmount: dec(100)},
	)

	annotated, stats, err := ProjectPendingInstallments(
		[]invoicedomain.Invoice{overdue, dueSoon, current, settled}, testNow, 7)
	require.NoError(t, err)
	require.Len(t, annotated, 3)

	// Sorted by nearest due date; fully settled invoices are absent.
	assert.Equal(t, snowflake.ID(1), annotated[0].InvoiceID)
	assert.Equal(t, OverdueStatusOverdue, annotated[0].OverdueStatus)
	assert.True(t, annotated[0].PendingAmount.Equal(dec(500)))
	assert.Equal(t, 1, annotated[0].PendingCount)

	assert.Equal(t, snowflake.ID(2), annotated[1].InvoiceID)
	assert.Equal(t, OverdueStatusDueSoon, annotated[1].OverdueStatus)

	assert.Equal(t, snowflake.ID(3), annotated[2].InvoiceID)
	assert.Equal(t, OverdueStatusCurrent, annotated[2].OverdueStatus)

	assert.Equal(t, 3, stats.TotalCount)
	assert.Equal(t, 1, stats.OverdueCount)
	assert.Equal(t, 2, stats.PendingCount)
	assert.True(t, stats.RemainingAmount.Equal(dec(1600)))
}

func TestProjectPendingInstallmentsNearestDueWins(t *testing.T) {
	inv := installmentInvoice(1, invoicedomain.InvoiceTypeRevenue,
		invoicedomain.Installment{ID: "far", Amount: dec(100), Status: invoicedomain.InstallmentStatusPending, DueDate: testNow.AddDate(0, 0, 60)},
		invoicedomain.Installment{ID: "near", Amount: dec(100), Status: invoicedomain.InstallmentStatusPending, DueDate: testNow.AddDate(0, 0, 10)},
	)

	annotated, _, err := ProjectPendingInstallments([]invoicedomain.Invoice{inv}, testNow, 7)
	require.NoError(t, err)
	require.Len(t, annotated, 1)
	assert.Equal(t, "near", annotated[0].NextInstallment.InstallmentID)
	assert.Equal(t, 2, annotated[0].PendingCount)
	assert.True(t, annotated[0].PendingAmount.Equal(dec(200)))
}

func TestAgeOverdueInstallments(t *testing.T) {
	buckets := []AgingBucket{
		{Label: "0-30", MinDays: 0, MaxDays: intPtr(30)},
		{Label: "31-60", MinDays: 31, MaxDays: intPtr(60)},
		{Label: "61+", MinDays: 61},
	}

	inv := installmentInvoice(1, invoicedomain.InvoiceTypeExpense,
		invoicedomain.Installment{Amount: dec(100), Status: invoicedomain.InstallmentStatusPending, DueDate: testNow.AddDate(0, 0, -10)},
		invoicedomain.Installment{Amount: dec(200), Status: invoicedomain.InstallmentStatusPending, DueDate: testNow.AddDate(0, 0, -45)},
		invoicedomain.Installment{Amount: dec(400), Status: invoicedomain.InstallmentStatusPending, DueDate: testNow.AddDate(0, 0, -90)},
		invoicedomain.Installment{Amount: dec(800), Status: invoicedomain.InstallmentStatusPending, DueDate: testNow.AddDate(0, 0, 5)},
	)

	totals, err := AgeOverdueInstallments([]invoicedomain.Invoice{inv}, testNow, buckets)
	require.NoError(t, err)
	require.Len(t, totals, 3)

	assert.Equal(t, 1, totals[0].Count)
	assert.True(t, totals[0].Amount.Equal(dec(100)))
	assert.Equal(t, 1, totals[1].Count)
	assert.True(t, totals[1].Amount.Equal(dec(200)))
	assert.Equal(t, 1, totals[2].Count)
	assert.True(t, totals[2].Amount.Equal(dec(400)))
}

func intPtr(v int) *int { return &v }

func TestProjectPendingInstallmentsDefaultWindow(t *testing.T) {
	inv := installmentInvoice(1, invoicedomain.InvoiceTypeRevenue,
		invoicedomain.Installment{Amount: dec(100), Status: invoicedomain.InstallmentStatusPending, DueDate: testNow.AddDate(0, 0, 6)},
	)

	annotated, _, err := ProjectPendingInstallments([]invoicedomain.Invoice{inv}, testNow, 0)
	require.NoError(t, err)
	require.Len(t, annotated, 1)
	assert.Equal(t, OverdueStatusDueSoon, annotated[0].OverdueStatus)
}
