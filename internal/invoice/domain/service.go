package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/ledgerline/pkg/db/pagination"
)

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvoiceNotFound     = errors.New("invoice_not_found")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidType         = errors.New("invalid_type")
	ErrInvalidPaymentType  = errors.New("invalid_payment_type")
	ErrInvoiceBusy         = errors.New("invoice_busy")
)

type CreateInstallmentRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	DueDate time.Time       `json:"due_date"`
}

type CreateInvoiceRequest struct {
	Type             InvoiceType                `json:"type"`
	PaymentType      PaymentType                `json:"payment_type"`
	CounterpartyName string                     `json:"counterparty_name"`
	TotalInvoice     decimal.Decimal            `json:"total_invoice"`
	Payments         []Payment                  `json:"payments"`
	Installments     []CreateInstallmentRequest `json:"installments"`
}

type ListInvoiceRequest struct {
	Filter ListInvoiceFilter
	Page   pagination.Pagination
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []*Invoice `json:"invoices"`
}

// UpdateInstallmentStatusRequest identifies one installment inside one
// invoice. Identifier is either a stored installment id or, on legacy
// records without ids, a zero-based positional index.
type UpdateInstallmentStatusRequest struct {
	InvoiceID  string            `json:"-"`
	Identifier string            `json:"-"`
	Status     InstallmentStatus `json:"status"`
	PaidAmount *decimal.Decimal  `json:"paid_amount,omitempty"`
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(ctx context.Context, id string) (*Invoice, error)
	UpdateInstallmentStatus(ctx context.Context, req UpdateInstallmentStatusRequest) (*Installment, error)
}
