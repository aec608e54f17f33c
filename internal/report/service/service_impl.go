package service

import (
	"context"
	"time"

	"github.com/smallbiznis/ledgerline/internal/clock"
	"github.com/smallbiznis/ledgerline/internal/config"
	invoicedomain "github.com/smallbiznis/ledgerline/internal/invoice/domain"
	"github.com/smallbiznis/ledgerline/internal/orgcontext"
	"github.com/smallbiznis/ledgerline/internal/reconcile"
	"github.com/smallbiznis/ledgerline/internal/report/domain"
	"github.com/smallbiznis/ledgerline/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Invoices  invoicedomain.Repository
	Reporting *config.ReportingConfigHolder
	Metrics   *telemetry.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	invoices  invoicedomain.Repository
	reporting *config.ReportingConfigHolder
	metrics   *telemetry.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("report.service"),
		clock:     p.Clock,
		invoices:  p.Invoices,
		reporting: p.Reporting,
		metrics:   p.Metrics,
	}
}

func (s *Service) FinancialSnapshot(ctx context.Context, req domain.ReportRequest) (*domain.FinancialSnapshotReport, error) {
	now := s.clock.Now()
	start := time.Now()

	invoices, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}

	snapshot, err := reconcile.BuildFinancialSnapshot(invoices, now)
	s.observe("financial_snapshot", len(invoices), start, err)
	if err != nil {
		return nil, err
	}
	for _, w := range snapshot.Warnings {
		s.warn(w)
	}

	return &domain.FinancialSnapshotReport{
		GeneratedAt:       now,
		InvoiceCount:      len(invoices),
		FinancialSnapshot: *snapshot,
	}, nil
}

func (s *Service) InstallmentRows(ctx context.Context, req domain.ReportRequest) (*domain.InstallmentListReport, error) {
	now := s.clock.Now()
	start := time.Now()

	invoices, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}

	rows, stats, err := reconcile.ProjectInstallmentRows(invoices, now)
	s.observe("installment_rows", len(invoices), start, err)
	if err != nil {
		return nil, err
	}

	return &domain.InstallmentListReport{
		GeneratedAt: now,
		Rows:        rows,
		Stats:       stats,
	}, nil
}

func (s *Service) PendingInstallments(ctx context.Context, req domain.ReportRequest) (*domain.PendingInstallmentsReport, error) {
	now := s.clock.Now()
	start := time.Now()

	invoices, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}

	pending, stats, err := reconcile.ProjectPendingInstallments(invoices, now, s.reporting.Get().DueSoonDays)
	s.observe("pending_installments", len(invoices), start, err)
	if err != nil {
		return nil, err
	}

	return &domain.PendingInstallmentsReport{
		GeneratedAt: now,
		Invoices:    pending,
		Stats:       stats,
	}, nil
}

func (s *Service) Aging(ctx context.Context, req domain.ReportRequest) (*domain.AgingReport, error) {
	now := s.clock.Now()
	start := time.Now()

	invoices, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}

	buckets := make([]reconcile.AgingBucket, 0)
	for _, b := range s.reporting.Get().AgingBuckets {
		buckets = append(buckets, reconcile.AgingBucket{
			Label:   b.Label,
			MinDays: b.MinDays,
			MaxDays: b.MaxDays,
		})
	}

	totals, err := reconcile.AgeOverdueInstallments(invoices, now, buckets)
	s.observe("aging", len(invoices), start, err)
	if err != nil {
		return nil, err
	}

	return &domain.AgingReport{
		GeneratedAt: now,
		Buckets:     totals,
	}, nil
}

func (s *Service) load(ctx context.Context, req domain.ReportRequest) ([]invoicedomain.Invoice, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, invoicedomain.ErrInvalidOrganization
	}

	filter := req.Filter
	if filter.BranchID == nil {
		if branchID, ok := orgcontext.BranchIDFromContext(ctx); ok && branchID != 0 {
			filter.BranchID = &branchID
		}
	}

	return s.invoices.ListAll(ctx, s.db, orgID, filter)
}

func (s *Service) observe(kind string, invoices int, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.ObserveReportBuild(kind, invoices, time.Since(start), err)
	}
	if err != nil {
		s.log.Error("report build failed", zap.String("kind", kind), zap.Error(err))
	}
}

func (s *Service) warn(w reconcile.Warning) {
	if s.metrics != nil {
		s.metrics.ObserveWarning(string(w.Code))
	}
	s.log.Warn("reconciliation warning",
		zap.String("code", string(w.Code)),
		zap.String("invoice_id", w.InvoiceID.String()),
		zap.String("excess", w.Excess.String()),
	)
}
