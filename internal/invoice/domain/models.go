// Package domain contains persistence models for invoices and their embedded
// payment documents.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InvoiceType is the direction of money flow.
type InvoiceType string

const (
	InvoiceTypeRevenue InvoiceType = "revenue"
	InvoiceTypeExpense InvoiceType = "expense"
)

// PaymentType declares how an invoice is settled.
type PaymentType string

const (
	PaymentTypeDirect      PaymentType = "direct"
	PaymentTypeInstallment PaymentType = "installment"
	PaymentTypeCredit      PaymentType = "credit"
)

// InstallmentStatus is the stored status of one installment. It may be stale;
// read-side code derives the effective status against the current date.
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "pending"
	InstallmentStatusPaid    InstallmentStatus = "paid"
	InstallmentStatusOverdue InstallmentStatus = "overdue"
)

// ValidInstallmentStatus reports whether s is one of the stored status values.
func ValidInstallmentStatus(s InstallmentStatus) bool {
	switch s {
	case InstallmentStatusPending, InstallmentStatusPaid, InstallmentStatusOverdue:
		return true
	}
	return false
}

// Payment is one ad hoc payment recorded against an invoice.
type Payment struct {
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

// Installment is one scheduled payment obligation embedded in an invoice.
// ID is empty on legacy records, in which case the positional index is the
// identity.
type Installment struct {
	ID         string            `json:"id,omitempty"`
	Amount     decimal.Decimal   `json:"amount"`
	PaidAmount decimal.Decimal   `json:"paid_amount"`
	Status     InstallmentStatus `json:"status"`
	DueDate    time.Time         `json:"due_date"`
	PaidDate   *time.Time        `json:"paid_date,omitempty"`
	UpdatedAt  *time.Time        `json:"updated_at,omitempty"`
}

// Invoice represents one commercial transaction with its payment and
// installment documents embedded, document-store style.
type Invoice struct {
	ID               snowflake.ID                     `gorm:"primaryKey" json:"id"`
	OrgID            snowflake.ID                     `gorm:"not null;index" json:"org_id"`
	BranchID         *snowflake.ID                    `gorm:"index" json:"branch_id,omitempty"`
	Type             InvoiceType                      `gorm:"type:text;not null" json:"type"`
	PaymentType      PaymentType                      `gorm:"type:text;not null" json:"payment_type"`
	CounterpartyName string                           `gorm:"type:text" json:"counterparty_name"`
	TotalInvoice     decimal.Decimal                  `gorm:"type:numeric(18,2);not null" json:"total_invoice"`
	Payments         datatypes.JSONSlice[Payment]     `gorm:"type:jsonb" json:"payments"`
	Installments     datatypes.JSONSlice[Installment] `gorm:"type:jsonb" json:"installments"`
	Metadata         datatypes.JSONMap                `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt        time.Time                        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time                        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// PaymentsTotal sums the ad hoc payments recorded on the invoice.
func (i Invoice) PaymentsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range i.Payments {
		total = total.Add(p.Amount)
	}
	return total
}
