package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/ledgerline/internal/clock"
	"github.com/smallbiznis/ledgerline/internal/invoice/domain"
	"github.com/smallbiznis/ledgerline/internal/invoice/repository"
	"github.com/smallbiznis/ledgerline/internal/orgcontext"
	"github.com/smallbiznis/ledgerline/internal/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock, snowflake.ID) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Invoice{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(testNow)
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fake,
		GenID: node,
		Repo:  repository.Provide(),
	})

	return svc, fake, node.Generate()
}

func orgCtx(orgID snowflake.ID) context.Context {
	return orgcontext.WithOrgID(context.Background(), orgID)
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestCreateAssignsInstallmentIDs(t *testing.T) {
	svc, _, orgID := newTestService(t)
	ctx := orgCtx(orgID)

	created, err := svc.Create(ctx, domain.CreateInvoiceRequest{
		Type:             domain.InvoiceTypeRevenue,
		PaymentType:      domain.PaymentTypeInstallment,
		CounterpartyName: "Acme Corp",
		TotalInvoice:     dec(1000),
		Installments: []domain.CreateInstallmentRequest{
			{Amount: dec(500), DueDate: testNow.AddDate(0, 1, 0)},
			{Amount: dec(500), DueDate: testNow.AddDate(0, 2, 0)},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Len(t, created.Installments, 2)

	for _, in := range created.Installments {
		assert.NotEmpty(t, in.ID)
		assert.Equal(t, domain.InstallmentStatusPending, in.Status)
		assert.True(t, in.PaidAmount.IsZero())
	}
	assert.NotEqual(t, created.Installments[0].ID, created.Installments[1].ID)

	stored, err := svc.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.Installments[0].ID, stored.Installments[0].ID)
	assert.True(t, stored.TotalInvoice.Equal(dec(1000)))
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc, _, orgID := newTestService(t)
	ctx := orgCtx(orgID)

	_, err := svc.Create(ctx, domain.CreateInvoiceRequest{
		Type:        domain.InvoiceType("transfer"),
		PaymentType: domain.PaymentTypeDirect,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidType)

	_, err = svc.Create(ctx, domain.CreateInvoiceRequest{
		Type:        domain.InvoiceTypeRevenue,
		PaymentType: domain.PaymentType("barter"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentType)

	_, err = svc.Create(ctx, domain.CreateInvoiceRequest{
		Type:         domain.InvoiceTypeRevenue,
		PaymentType:  domain.PaymentTypeDirect,
		TotalInvoice: dec(-100),
	})
	assert.ErrorIs(t, err, reconcile.ErrInvalidInvoiceData)

	_, err = svc.Create(context.Background(), domain.CreateInvoiceRequest{
		Type:        domain.InvoiceTypeRevenue,
		PaymentType: domain.PaymentTypeDirect,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestListScopedToOrganization(t *testing.T) {
	svc, _, orgID := newTestService(t)
	ctx := orgCtx(orgID)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, domain.CreateInvoiceRequest{
			Type:         domain.InvoiceTypeRevenue,
			PaymentType:  domain.PaymentTypeDirect,
			TotalInvoice: dec(100),
		})
		require.NoError(t, err)
	}

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	otherCtx := orgCtx(node.Generate())
	_, err = svc.Create(otherCtx, domain.CreateInvoiceRequest{
		Type:         domain.InvoiceTypeExpense,
		PaymentType:  domain.PaymentTypeDirect,
		TotalInvoice: dec(999),
	})
	require.NoError(t, err)

	resp, err := svc.List(ctx, domain.ListInvoiceRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Invoices, 3)
	for _, inv := range resp.Invoices {
		assert.Equal(t, orgID, inv.OrgID)
	}
}

func TestListFiltersByType(t *testing.T) {
	svc, _, orgID := newTestService(t)
	ctx := orgCtx(orgID)

	_, err := svc.Create(ctx, domain.CreateInvoiceRequest{
		Type: domain.InvoiceTypeRevenue, PaymentType: domain.PaymentTypeDirect, TotalInvoice: dec(100),
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateInvoiceRequest{
		Type: domain.InvoiceTypeExpense, PaymentType: domain.PaymentTypeCredit, TotalInvoice: dec(200),
	})
	require.NoError(t, err)

	resp, err := svc.List(ctx, domain.ListInvoiceRequest{
		Filter: domain.ListInvoiceFilter{Type: domain.InvoiceTypeExpense},
	})
	require.NoError(t, err)
	require.Len(t, resp.Invoices, 1)
	assert.Equal(t, domain.PaymentTypeCredit, resp.Invoices[0].PaymentType)
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _, orgID := newTestService(t)
	ctx := orgCtx(orgID)

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)

	_, err = svc.GetByID(ctx, "not-a-snowflake")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestUpdateInstallmentStatusPersists(t *testing.T) {
	svc, fake, orgID := newTestService(t)
	ctx := orgCtx(orgID)

	created, err := svc.Create(ctx, domain.CreateInvoiceRequest{
		Type:         domain.InvoiceTypeRevenue,
		PaymentType:  domain.PaymentTypeInstallment,
		TotalInvoice: dec(1000),
		Installments: []domain.CreateInstallmentRequest{
			{Amount: dec(500), DueDate: testNow.AddDate(0, 1, 0)},
			{Amount: dec(500), DueDate: testNow.AddDate(0, 2, 0)},
		},
	})
	require.NoError(t, err)

	fake.Advance(48 * time.Hour)

	updated, err := svc.UpdateInstallmentStatus(ctx, domain.UpdateInstallmentStatusRequest{
		InvoiceID:  created.ID.String(),
		Identifier: created.Installments[1].ID,
		Status:     domain.InstallmentStatusPaid,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.InstallmentStatusPaid, updated.Status)
	assert.True(t, updated.PaidAmount.Equal(dec(500)))
	require.NotNil(t, updated.PaidDate)
	assert.Equal(t, testNow.Add(48*time.Hour), *updated.PaidDate)

	stored, err := svc.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.InstallmentStatusPending, stored.Installments[0].Status)
	assert.Equal(t, domain.InstallmentStatusPaid, stored.Installments[1].Status)
	assert.True(t, stored.UpdatedAt.After(created.UpdatedAt))
}

func TestUpdateInstallmentStatusUnknownInstallment(t *testing.T) {
	svc, _, orgID := newTestService(t)
	ctx := orgCtx(orgID)

	created, err := svc.Create(ctx, domain.CreateInvoiceRequest{
		Type:         domain.InvoiceTypeRevenue,
		PaymentType:  domain.PaymentTypeInstallment,
		TotalInvoice: dec(500),
		Installments: []domain.CreateInstallmentRequest{
			{Amount: dec(500), DueDate: testNow.AddDate(0, 1, 0)},
		},
	})
	require.NoError(t, err)

	_, err = svc.UpdateInstallmentStatus(ctx, domain.UpdateInstallmentStatusRequest{
		InvoiceID:  created.ID.String(),
		Identifier: "7",
		Status:     domain.InstallmentStatusPaid,
	})
	assert.ErrorIs(t, err, reconcile.ErrInstallmentNotFound)

	// Nothing was persisted.
	stored, err := svc.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.InstallmentStatusPending, stored.Installments[0].Status)
}

func TestUpdateInstallmentStatusUnknownInvoice(t *testing.T) {
	svc, _, orgID := newTestService(t)
	ctx := orgCtx(orgID)

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	_, err = svc.UpdateInstallmentStatus(ctx, domain.UpdateInstallmentStatusRequest{
		InvoiceID:  node.Generate().String(),
		Identifier: "0",
		Status:     domain.InstallmentStatusPaid,
	})
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}
