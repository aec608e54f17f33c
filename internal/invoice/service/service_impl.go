package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/ledgerline/internal/clock"
	"github.com/smallbiznis/ledgerline/internal/invoice/domain"
	"github.com/smallbiznis/ledgerline/internal/orgcontext"
	"github.com/smallbiznis/ledgerline/internal/ratelimit"
	"github.com/smallbiznis/ledgerline/internal/reconcile"
	"github.com/smallbiznis/ledgerline/pkg/db"
	"github.com/smallbiznis/ledgerline/pkg/db/pagination"
	"github.com/smallbiznis/ledgerline/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	GenID   *snowflake.Node
	Repo    domain.Repository
	Limiter *ratelimit.Limiter `optional:"true"`
	Metrics *telemetry.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	genID   *snowflake.Node
	repo    domain.Repository
	limiter *ratelimit.Limiter
	metrics *telemetry.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("invoice.service"),
		clock:   p.Clock,
		genID:   p.GenID,
		repo:    p.Repo,
		limiter: p.Limiter,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (*domain.Invoice, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	switch req.Type {
	case domain.InvoiceTypeRevenue, domain.InvoiceTypeExpense:
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidType, req.Type)
	}
	switch req.PaymentType {
	case domain.PaymentTypeDirect, domain.PaymentTypeInstallment, domain.PaymentTypeCredit:
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPaymentType, req.PaymentType)
	}
	if req.TotalInvoice.IsNegative() {
		return nil, fmt.Errorf("%w: negative total", reconcile.ErrInvalidInvoiceData)
	}

	now := s.clock.Now()
	invoice := domain.Invoice{
		ID:               s.genID.Generate(),
		OrgID:            orgID,
		Type:             req.Type,
		PaymentType:      req.PaymentType,
		CounterpartyName: strings.TrimSpace(req.CounterpartyName),
		TotalInvoice:     req.TotalInvoice,
		Payments:         datatypes.NewJSONSlice(req.Payments),
		Metadata:         datatypes.JSONMap{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if branchID, ok := orgcontext.BranchIDFromContext(ctx); ok && branchID != 0 {
		invoice.BranchID = &branchID
	}

	installments := make([]domain.Installment, 0, len(req.Installments))
	for _, in := range req.Installments {
		if in.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: negative installment amount", reconcile.ErrInvalidInvoiceData)
		}
		installments = append(installments, domain.Installment{
			ID:      uuid.NewString(),
			Amount:  in.Amount,
			Status:  domain.InstallmentStatusPending,
			DueDate: in.DueDate,
		})
	}
	invoice.Installments = datatypes.NewJSONSlice(installments)

	if err := s.repo.Insert(ctx, s.db, &invoice); err != nil {
		if db.IsDuplicateKeyErr(err) {
			invoice.ID = s.genID.Generate()
			err = s.repo.Insert(ctx, s.db, &invoice)
		}
		if err != nil {
			s.log.Error("insert invoice", zap.Error(err))
			return nil, err
		}
	}

	return &invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListInvoiceResponse{}, domain.ErrInvalidOrganization
	}

	pageSize := req.Page.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, orgID, req.Filter, pagination.Pagination{
		PageToken: req.Page.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(invoice *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        invoice.ID.String(),
			CreatedAt: invoice.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	resp := domain.ListInvoiceResponse{Invoices: items}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	invoiceID, err := s.parseID(id)
	if err != nil {
		return nil, err
	}

	invoice, err := s.repo.FindByID(ctx, s.db, orgID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrInvoiceNotFound
	}
	return invoice, nil
}

// UpdateInstallmentStatus loads the invoice, applies the status change in
// memory, then persists only the installments column.
func (s *Service) UpdateInstallmentStatus(ctx context.Context, req domain.UpdateInstallmentStatusRequest) (*domain.Installment, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	invoiceID, err := s.parseID(req.InvoiceID)
	if err != nil {
		return nil, err
	}

	release, locked, err := s.limiter.LockInvoice(ctx, orgID.String(), invoiceID.String())
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, domain.ErrInvoiceBusy
	}
	defer release()

	invoice, err := s.repo.FindByID(ctx, s.db, orgID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrInvoiceNotFound
	}

	now := s.clock.Now()
	updated, err := reconcile.MutateInstallmentStatus(invoice, req.Identifier, req.Status, req.PaidAmount, now)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateInstallments(ctx, s.db, orgID, invoice.ID, invoice.Installments, now); err != nil {
		s.log.Error("update installments",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveMutation(string(updated.Status))
	}
	s.log.Info("installment status updated",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("installment_id", updated.ID),
		zap.String("status", string(updated.Status)),
	)
	return updated, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
