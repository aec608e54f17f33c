// Package seed loads a small demo ledger so a fresh install has data to
// report on. Seeding is idempotent per organization.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/ledgerline/internal/config"
	invoicedomain "github.com/smallbiznis/ledgerline/internal/invoice/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EnsureDemoInvoices inserts a representative invoice mix (direct, credit,
// installment) for the configured default org when the org has no invoices
// yet.
func EnsureDemoInvoices(db *gorm.DB, cfg config.Config) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if cfg.DefaultOrgID == 0 {
		return errors.New("seed requires a default org id")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	orgID := snowflake.ID(cfg.DefaultOrgID)
	ctx := context.Background()

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&invoicedomain.Invoice{}).
			Where("org_id = ?", orgID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		for _, invoice := range demoInvoices(node, orgID, now) {
			if err := tx.Create(&invoice).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func demoInvoices(node *snowflake.Node, orgID snowflake.ID, now time.Time) []invoicedomain.Invoice {
	dec := decimal.NewFromInt

	return []invoicedomain.Invoice{
		{
			ID:               node.Generate(),
			OrgID:            orgID,
			Type:             invoicedomain.InvoiceTypeRevenue,
			PaymentType:      invoicedomain.PaymentTypeDirect,
			CounterpartyName: "Walk-in Sales",
			TotalInvoice:     dec(1500),
			Payments: datatypes.NewJSONSlice([]invoicedomain.Payment{
				{Amount: dec(1500), Date: now.AddDate(0, 0, -20)},
			}),
			Metadata:  datatypes.JSONMap{"seed": true},
			CreatedAt: now.AddDate(0, 0, -20),
			UpdatedAt: now.AddDate(0, 0, -20),
		},
		{
			ID:               node.Generate(),
			OrgID:            orgID,
			Type:             invoicedomain.InvoiceTypeRevenue,
			PaymentType:      invoicedomain.PaymentTypeInstallment,
			CounterpartyName: "Acme Distribution",
			TotalInvoice:     dec(6000),
			Installments: datatypes.NewJSONSlice([]invoicedomain.Installment{
				{
					ID:         uuid.NewString(),
					Amount:     dec(2000),
					PaidAmount: dec(2000),
					Status:     invoicedomain.InstallmentStatusPaid,
					DueDate:    now.AddDate(0, -1, 0),
					PaidDate:   timePtr(now.AddDate(0, -1, -2)),
				},
				{
					ID:      uuid.NewString(),
					Amount:  dec(2000),
					Status:  invoicedomain.InstallmentStatusPending,
					DueDate: now.AddDate(0, 0, -5),
				},
				{
					ID:      uuid.NewString(),
					Amount:  dec(2000),
					Status:  invoicedomain.InstallmentStatusPending,
					DueDate: now.AddDate(0, 1, 0),
				},
			}),
			Metadata:  datatypes.JSONMap{"seed": true},
			CreatedAt: now.AddDate(0, -2, 0),
			UpdatedAt: now.AddDate(0, -1, -2),
		},
		{
			ID:               node.Generate(),
			OrgID:            orgID,
			Type:             invoicedomain.InvoiceTypeExpense,
			PaymentType:      invoicedomain.PaymentTypeCredit,
			CounterpartyName: "Northwind Supplies",
			TotalInvoice:     dec(2000),
			Payments: datatypes.NewJSONSlice([]invoicedomain.Payment{
				{Amount: dec(700), Date: now.AddDate(0, 0, -15)},
				{Amount: dec(500), Date: now.AddDate(0, 0, -3)},
			}),
			Metadata:  datatypes.JSONMap{"seed": true},
			CreatedAt: now.AddDate(0, -1, -10),
			UpdatedAt: now.AddDate(0, 0, -3),
		},
		{
			ID:               node.Generate(),
			OrgID:            orgID,
			Type:             invoicedomain.InvoiceTypeExpense,
			PaymentType:      invoicedomain.PaymentTypeInstallment,
			CounterpartyName: "Fleet Leasing Co",
			TotalInvoice:     dec(9000),
			Installments: datatypes.NewJSONSlice([]invoicedomain.Installment{
				{
					ID:      uuid.NewString(),
					Amount:  dec(3000),
					Status:  invoicedomain.InstallmentStatusOverdue,
					DueDate: now.AddDate(0, 0, -40),
				},
				{
					ID:      uuid.NewString(),
					Amount:  dec(3000),
					Status:  invoicedomain.InstallmentStatusPending,
					DueDate: now.AddDate(0, 0, 3),
				},
				{
					ID:      uuid.NewString(),
					Amount:  dec(3000),
					Status:  invoicedomain.InstallmentStatusPending,
					DueDate: now.AddDate(0, 2, 0),
				},
			}),
			Metadata:  datatypes.JSONMap{"seed": true},
			CreatedAt: now.AddDate(0, -3, 0),
			UpdatedAt: now.AddDate(0, -3, 0),
		},
	}
}

func timePtr(t time.Time) *time.Time { return &t }
