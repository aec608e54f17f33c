package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/ledgerline/pkg/db/pagination"
	"gorm.io/gorm"
)

// ListInvoiceFilter narrows a tenant-scoped invoice listing.
type ListInvoiceFilter struct {
	BranchID    *snowflake.ID
	Type        InvoiceType
	PaymentType PaymentType
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListInvoiceFilter, page pagination.Pagination) ([]*Invoice, error)
	// ListAll loads the full matching set without pagination, for report
	// builds that reduce over every invoice.
	ListAll(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListInvoiceFilter) ([]Invoice, error)
	// UpdateInstallments replaces the installment document of one invoice as
	// a single field-level write scoped by invoice id. Concurrent mutations
	// against different invoices never interfere.
	UpdateInstallments(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, installments []Installment, updatedAt time.Time) error
}
