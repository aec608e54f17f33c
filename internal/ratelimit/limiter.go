// Package ratelimit guards the report endpoints with a redis token bucket
// and serializes installment mutations on the same invoice with a short
// redis lock. Both are disabled when no redis address is configured.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/ledgerline/internal/config"
)

const (
	keyReportOrg   = "report:org:%s"
	keyInvoiceLock = "invoice:lock:%s:%s"

	invoiceLockTTL = 5 * time.Second
)

type Limiter struct {
	bucket *TokenBucket
	locker *Locker

	reportRate  float64
	reportBurst int
}

// New returns nil when redis is not configured; callers treat a nil limiter
// as disabled.
func New(cfg config.Config) *Limiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})

	return &Limiter{
		bucket:      NewTokenBucket(client),
		locker:      NewLocker(client),
		reportRate:  cfg.ReportRateLimit,
		reportBurst: cfg.ReportRateBurst,
	}
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// AllowReport charges one token from the organization's report bucket.
func (l *Limiter) AllowReport(ctx context.Context, orgID string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyReportOrg, strings.TrimSpace(orgID)), l.reportRate, l.reportBurst)
}

// LockInvoice takes a short exclusive lock for one invoice. The returned
// release func is a no-op when locking is disabled.
func (l *Limiter) LockInvoice(ctx context.Context, orgID, invoiceID string) (func(), bool, error) {
	if l == nil || l.locker == nil {
		return func() {}, true, nil
	}

	key := fmt.Sprintf(keyInvoiceLock, orgID, invoiceID)
	token, ok, err := l.locker.TryLock(ctx, key, invoiceLockTTL)
	if err != nil || !ok {
		return func() {}, ok, err
	}
	return func() {
		_ = l.locker.Release(context.WithoutCancel(ctx), key, token)
	}, true, nil
}
