package reconcile

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/ledgerline/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func installmentInvoice(id int64, invType invoicedomain.InvoiceType, installments ...invoicedomain.Installment) invoicedomain.Invoice {
	total := decimal.Zero
	for _, in := range installments {
		total = total.Add(in.Amount)
	}
	return invoicedomain.Invoice{
		ID:           snowflake.ID(id),
		Type:         invType,
		PaymentType:  invoicedomain.PaymentTypeInstallment,
		TotalInvoice: total,
		Installments: installments,
		CreatedAt:    testNow.AddDate(0, 0, -30),
	}
}

func TestBuildFinancialSnapshotEmptySet(t *testing.T) {
	snapshot, err := BuildFinancialSnapshot(nil, testNow)
	require.NoError(t, err)

	assert.True(t, snapshot.Revenue.TotalInvoiced.IsZero())
	assert.True(t, snapshot.Revenue.PaidPercentage.IsZero())
	assert.True(t, snapshot.Expense.TotalInvoiced.IsZero())
	assert.True(t, snapshot.NetProfit.Invoiced.IsZero())
	assert.True(t, snapshot.DebtAnalysis.NetDebtPosition.IsZero())
	assert.Zero(t, snapshot.InstallmentCounts.Paid)
	assert.Empty(t, snapshot.Warnings)
}

func TestBuildFinancialSnapshotInstallmentInvoice(t *testing.T) {
	// Two installments of 500: one paid, one pending but past due.
	inv := installmentInvoice(1, invoicedomain.InvoiceTypeRevenue,
		invoicedomain.Installment{
			Amount:     dec(500),
			PaidAmount: dec(500),
			Status:     invoicedomain.InstallmentStatusPaid,
			DueDate:    testNow.AddDate(0, 0, -10),
		},
		invoicedomain.Installment{
			Amount:  dec(500),
			Status:  invoicedomain.InstallmentStatusPending,
			DueDate: testNow.AddDate(0, 0, -1),
		},
	)

	snapshot, err := BuildFinancialSnapshot([]invoicedomain.Invoice{inv}, testNow)
	require.NoError(t, err)

	assert.True(t, snapshot.Revenue.Installments.Paid.Equal(dec(500)))
	assert.True(t, snapshot.Revenue.Installments.Overdue.Equal(dec(500)))
	assert.True(t, snapshot.Revenue.Installments.Pending.IsZero())
	assert.True(t, snapshot.Revenue.Installments.Total.Equal(dec(1000)))
	assert.True(t, snapshot.Revenue.TotalPaid.Equal(dec(500)))
	assert.True(t, snapshot.Revenue.TotalPending.Equal(dec(500)))
	assert.True(t, snapshot.DebtAnalysis.ProfitsDeferred.Equal(dec(500)))
	assert.True(t, snapshot.DebtAnalysis.NetDebtPosition.Equal(dec(500)))
	assert.Equal(t, 1, snapshot.InstallmentCounts.Paid)
	assert.Equal(t, 1, snapshot.InstallmentCounts.Overdue)
	assert.True(t, snapshot.Revenue.PaidPercentage.Equal(dec(50)))
}

func TestBuildFinancialSnapshotCreditInvoice(t *testing.T) {
	inv := invoicedomain.Invoice{
		ID:           snowflake.ID(2),
		Type:         invoicedomain.InvoiceTypeExpense,
		PaymentType:  invoicedomain.PaymentTypeCredit,
		TotalInvoice: dec(2000),
		Payments:     []invoicedomain.Payment{{Amount: dec(1200), Date: testNow}},
	}

	snapshot, err := BuildFinancialSnapshot([]invoicedomain.Invoice{inv}, testNow)
	require.NoError(t, err)

	assert.True(t, snapshot.Expense.Credit.Total.Equal(dec(2000)))
	assert.True(t, snapshot.Expense.Credit.Paid.Equal(dec(1200)))
	assert.True(t, snapshot.Expense.Credit.Pending.Equal(dec(800)))
	assert.True(t, snapshot.Expense.TotalPending.Equal(dec(800)))

	// Credit balances are not structured debt: debtOnUs only counts
	// installment buckets.
	assert.True(t, snapshot.DebtAnalysis.DebtOnUs.IsZero())
}

func TestBuildFinancialSnapshotDirectInvoiceNeverPending(t *testing.T) {
	inv := invoicedomain.Invoice{
		ID:           snowflake.ID(3),
		Type:         invoicedomain.InvoiceTypeRevenue,
		PaymentType:  invoicedomain.PaymentTypeDirect,
		TotalInvoice: dec(1000),
		Payments:     []invoicedomain.Payment{{Amount: dec(400), Date: testNow}},
	}

	snapshot, err := BuildFinancialSnapshot([]invoicedomain.Invoice{inv}, testNow)
	require.NoError(t, err)

	assert.True(t, snapshot.Revenue.TotalInvoiced.Equal(dec(1000)))
	assert.True(t, snapshot.Revenue.TotalPaid.Equal(dec(400)))
	// The 600 shortfall is not tracked for direct invoices.
	assert.True(t, snapshot.Revenue.TotalPending.IsZero())
	assert.True(t, snapshot.Revenue.PaidPercentage.Equal(dec(40)))
}

func TestBuildFinancialSnapshotNetProfit(t *testing.T) {
	invoices := []invoicedomain.Invoice{
		{
			ID: 1, Type: invoicedomain.InvoiceTypeRevenue, PaymentType: invoicedomain.PaymentTypeDirect,
			TotalInvoice: dec(5000), Payments: []invoicedomain.Payment{{Amount: dec(5000)}},
		},
		{
			ID: 2, Type: invoicedomain.InvoiceTypeExpense, PaymentType: invoicedomain.PaymentTypeDirect,
			TotalInvoice: dec(3000), Payments: []invoicedomain.Payment{{Amount: dec(2000)}},
		},
		installmentInvoice(3, invoicedomain.InvoiceTypeExpense,
			invoicedomain.Installment{Amount: dec(700), Status: invoicedomain.InstallmentStatusPending, DueDate: testNow.AddDate(0, 0, 14)},
		),
	}

	snapshot, err := BuildFinancialSnapshot(invoices, testNow)
	require.NoError(t, err)

	assert.True(t, snapshot.NetProfit.Invoiced.Equal(snapshot.Revenue.TotalInvoiced.Sub(snapshot.Expense.TotalInvoiced)))
	assert.True(t, snapshot.NetProfit.Invoiced.Equal(dec(1300)))
	assert.True(t, snapshot.NetProfit.ActualPaid.Equal(dec(3000)))
	assert.True(t, snapshot.NetProfit.Pending.Equal(dec(-700)))
	assert.True(t, snapshot.DebtAnalysis.DebtOnUs.Equal(dec(700)))
	assert.True(t, snapshot.DebtAnalysis.NetDebtPosition.Equal(dec(-700)))
	assert.Equal(t, 1, snapshot.Revenue.InvoiceCount)
	assert.Equal(t, 2, snapshot.Expense.InvoiceCount)
}

func TestBuildFinancialSnapshotIdempotent(t *testing.T) {
	invoices := []invoicedomain.Invoice{
		installmentInvoice(1, invoicedomain.InvoiceTypeRevenue,
			invoicedomain.Installment{Amount: dec(500), Status: invoicedomain.InstallmentStatusPaid},
			invoicedomain.Installment{Amount: dec(500), Status: invoicedomain.InstallmentStatusPending, DueDate: testNow.AddDate(0, 0, -1)},
		),
		{
			ID: 2, Type: invoicedomain.InvoiceTypeExpense, PaymentType: invoicedomain.PaymentTypeCredit,
			TotalInvoice: dec(2000), Payments: []invoicedomain.Payment{{Amount: dec(1200)}},
		},
	}

	first, err := BuildFinancialSnapshot(invoices, testNow)
	require.NoError(t, err)
	second, err := BuildFinancialSnapshot(invoices, testNow)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildFinancialSnapshotInstallmentBucketsSumToTotal(t *testing.T) {
	inv := installmentInvoice(1, invoicedomain.InvoiceTypeRevenue,
		invoicedomain.Installment{Amount: dec(300), Status: invoicedomain.InstallmentStatusPaid},
		invoicedomain.Installment{Amount: dec(300), Status: invoicedomain.InstallmentStatusPending, DueDate: testNow.AddDate(0, 0, -2)},
		invoicedomain.Installment{Amount: dec(400), Status: invoicedomain.InstallmentStatusPending, DueDate: testNow.AddDate(0, 0, 5)},
	)

	snapshot, err := BuildFinancialSnapshot([]invoicedomain.Invoice{inv}, testNow)
	require.NoError(t, err)

	buckets := snapshot.Revenue.Installments
	assert.True(t, buckets.Paid.Add(buckets.Pending).Add(buckets.Overdue).Equal(buckets.Total))
	assert.Equal(t, 3, buckets.PaidCount+buckets.PendingCount+buckets.OverdueCount)
}

func TestBuildFinancialSnapshotWarnings(t *testing.T) {
	invoices := []invoicedomain.Invoice{
		{
			ID: 1, Type: invoicedomain.InvoiceTypeExpense, PaymentType: invoicedomain.PaymentTypeCredit,
			TotalInvoice: dec(1000), Payments: []invoicedomain.Payment{{Amount: dec(1500)}},
		},
		installmentInvoice(2, invoicedomain.InvoiceTypeRevenue,
			invoicedomain.Installment{Amount: dec(500), PaidAmount: dec(600), Status: invoicedomain.InstallmentStatusPaid},
		),
	}

	snapshot, err := BuildFinancialSnapshot(invoices, testNow)
	require.NoError(t, err)
	require.Len(t, snapshot.Warnings, 2)

	// Over-payment on credit is clamped in reporting but surfaced as a warning.
	assert.True(t, snapshot.Expense.Credit.Pending.IsZero())
	assert.Equal(t, WarningCreditOverpaid, snapshot.Warnings[0].Code)
	assert.True(t, snapshot.Warnings[0].Excess.Equal(dec(500)))

	assert.Equal(t, WarningInstallmentOverpaid, snapshot.Warnings[1].Code)
	assert.True(t, snapshot.Warnings[1].Excess.Equal(dec(100)))
}

func TestBuildFinancialSnapshotRejectsNegativeAmounts(t *testing.T) {
	tests := []struct {
		name string
		inv  invoicedomain.Invoice
	}{
		{
			name: "negative total",
			inv:  invoicedomain.Invoice{ID: 1, Type: invoicedomain.InvoiceTypeRevenue, TotalInvoice: dec(-1)},
		},
		{
			name: "negative payment",
			inv: invoicedomain.Invoice{
				ID: 2, Type: invoicedomain.InvoiceTypeRevenue, TotalInvoice: dec(100),
				Payments: []invoicedomain.Payment{{Amount: dec(-5)}},
			},
		},
		{
			name: "negative installment amount",
			inv: invoicedomain.Invoice{
				ID: 3, Type: invoicedomain.InvoiceTypeRevenue, PaymentType: invoicedomain.PaymentTypeInstallment,
				TotalInvoice: dec(100),
				Installments: []invoicedomain.Installment{{Amount: dec(-100)}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildFinancialSnapshot([]invoicedomain.Invoice{tt.inv}, testNow)
			assert.ErrorIs(t, err, ErrInvalidInvoiceData)
		})
	}
}

func TestBuildFinancialSnapshotPaidAmountDefaultsToAmount(t *testing.T) {
	inv := installmentInvoice(1, invoicedomain.InvoiceTypeRevenue,
		invoicedomain.Installment{Amount: dec(250), Status: invoicedomain.InstallmentStatusPaid},
	)

	snapshot, err := BuildFinancialSnapshot([]invoicedomain.Invoice{inv}, testNow)
	require.NoError(t, err)
	assert.True(t, snapshot.Revenue.Installments.Paid.Equal(dec(250)))
}

func TestBuildFinancialSnapshotZeroDueDateKeepsStoredStatus(t *testing.T) {
	inv := installmentInvoice(1, invoicedomain.InvoiceTypeRevenue,
		invoicedomain.Installment{Amount: dec(100), Status: invoicedomain.InstallmentStatusPending, DueDate: time.Time{}},
	)

	snapshot, err := BuildFinancialSnapshot([]invoicedomain.Invoice{inv}, testNow)
	require.NoError(t, err)
	assert.True(t, snapshot.Revenue.Installments.Pending.Equal(dec(100)))
	assert.True(t, snapshot.Revenue.Installments.Overdue.IsZero())
}
