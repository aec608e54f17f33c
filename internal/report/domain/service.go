// Package domain declares the read-side reporting contracts. Reports are
// derived on demand from the invoice store; nothing here is persisted.
package domain

import (
	"context"
	"time"

	invoicedomain "github.com/smallbiznis/ledgerline/internal/invoice/domain"
	"github.com/smallbiznis/ledgerline/internal/reconcile"
)

// ReportRequest narrows which invoices feed a report build.
type ReportRequest struct {
	Filter invoicedomain.ListInvoiceFilter
}

// FinancialSnapshotReport is the point-in-time reconciliation of the whole
// matching invoice set.
type FinancialSnapshotReport struct {
	GeneratedAt  time.Time `json:"generated_at"`
	InvoiceCount int       `json:"invoice_count"`

	reconcile.FinancialSnapshot
}

// InstallmentListReport is the flattened per-installment listing.
type InstallmentListReport struct {
	GeneratedAt time.Time `json:"generated_at"`

	Rows  []reconcile.InstallmentRow `json:"rows"`
	Stats reconcile.RowStats         `json:"stats"`
}

// PendingInstallmentsReport lists invoices that still owe money, nearest
// due first.
type PendingInstallmentsReport struct {
	GeneratedAt time.Time `json:"generated_at"`

	Invoices []reconcile.PendingInvoice `json:"invoices"`
	Stats    reconcile.RowStats         `json:"stats"`
}

// AgingReport distributes overdue installments across configured day buckets.
type AgingReport struct {
	GeneratedAt time.Time `json:"generated_at"`

	Buckets []reconcile.AgingBucketTotal `json:"buckets"`
}

type Service interface {
	FinancialSnapshot(ctx context.Context, req ReportRequest) (*FinancialSnapshotReport, error)
	InstallmentRows(ctx context.Context, req ReportRequest) (*InstallmentListReport, error)
	PendingInstallments(ctx context.Context, req ReportRequest) (*PendingInstallmentsReport, error)
	Aging(ctx context.Context, req ReportRequest) (*AgingReport, error)
}
