package telemetry

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics exposes Prometheus observability primitives for the reconciliation
// service.
type Metrics struct {
	apiRequests        *prometheus.CounterVec
	apiDuration        *prometheus.HistogramVec
	reportBuilds       *prometheus.CounterVec
	reportDuration     *prometheus.HistogramVec
	reportInvoiceCount prometheus.Histogram
	mutationOutcomes   *prometheus.CounterVec
	warnings           *prometheus.CounterVec
}

// NewMetrics registers and returns Prometheus metrics for telemetry.
func NewMetrics() *Metrics {
	apiRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledgerline_api_requests_total",
		Help: "Counts API requests by method, path, and status.",
	}, []string{"method", "path", "status"})

	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledgerline_api_duration_seconds",
		Help:    "API request latency per method and path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	reportBuilds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledgerline_report_builds_total",
		Help: "Counts report computations by kind and status.",
	}, []string{"kind", "status"})

	reportDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledgerline_report_build_duration_seconds",
		Help:    "Report computation durations by kind.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	reportInvoiceCount := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ledgerline_report_invoice_count",
		Help:    "Number of invoices folded into a single report.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	mutationOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledgerline_installment_mutations_total",
		Help: "Installment status mutation outcomes.",
	}, []string{"status"})

	warnings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledgerline_reconciliation_warnings_total",
		Help: "Consistency warnings surfaced while building reports.",
	}, []string{"code"})

	prometheus.MustRegister(
		apiRequests,
		apiDuration,
		reportBuilds,
		reportDuration,
		reportInvoiceCount,
		mutationOutcomes,
		warnings,
	)

	return &Metrics{
		apiRequests:        apiRequests,
		apiDuration:        apiDuration,
		reportBuilds:       reportBuilds,
		reportDuration:     reportDuration,
		reportInvoiceCount: reportInvoiceCount,
		mutationOutcomes:   mutationOutcomes,
		warnings:           warnings,
	}
}

// ObserveReportBuild records one report computation.
func (m *Metrics) ObserveReportBuild(kind string, invoices int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.reportBuilds.WithLabelValues(kind, status).Inc()
	m.reportDuration.WithLabelValues(kind).Observe(duration.Seconds())
	m.reportInvoiceCount.Observe(float64(invoices))
}

// ObserveMutation records one installment status mutation outcome.
func (m *Metrics) ObserveMutation(status string) {
	if m == nil {
		return
	}
	m.mutationOutcomes.WithLabelValues(status).Inc()
}

// ObserveWarning records one reconciliation warning by code.
func (m *Metrics) ObserveWarning(code string) {
	if m == nil {
		return
	}
	m.warnings.WithLabelValues(code).Inc()
}

// GinMiddleware records request counts and latency per route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.apiRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.apiDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

var Module = fx.Module("telemetry",
	fx.Provide(NewMetrics),
)
