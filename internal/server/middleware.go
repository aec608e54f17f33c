package server

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/ledgerline/internal/orgcontext"
	"github.com/smallbiznis/ledgerline/pkg/telemetry/correlation"
	"go.uber.org/zap"
)

const (
	HeaderOrg           = "X-Org-ID"
	HeaderBranch        = "X-Branch-ID"
	HeaderCorrelationID = "X-Correlation-ID"
)

// CorrelationID propagates the caller's correlation id, or mints one, and
// echoes it on the response.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if cid := strings.TrimSpace(c.GetHeader(HeaderCorrelationID)); cid != "" {
			ctx = correlation.ContextWithCorrelationID(ctx, cid)
		}
		ctx, cid := correlation.EnsureCorrelationID(ctx)

		c.Writer.Header().Set(HeaderCorrelationID, cid)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// OrgContext resolves the tenant scope from headers. A configured default
// org covers single-tenant deployments that send no header.
func (s *Server) OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		orgID, err := parseHeaderID(c.GetHeader(HeaderOrg))
		if err != nil {
			AbortWithError(c, newValidationError("org_id", "invalid_org_id", "invalid org id header"))
			return
		}
		if orgID == 0 {
			orgID = snowflake.ID(s.cfg.DefaultOrgID)
		}
		if orgID != 0 {
			ctx = orgcontext.WithOrgID(ctx, orgID)
		}

		branchID, err := parseHeaderID(c.GetHeader(HeaderBranch))
		if err != nil {
			AbortWithError(c, newValidationError("branch_id", "invalid_branch_id", "invalid branch id header"))
			return
		}
		if branchID != 0 {
			ctx = orgcontext.WithBranchID(ctx, branchID)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ReportRateLimit charges one token per report request against the org
// bucket. Disabled limiters let everything through.
func (s *Server) ReportRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}

		orgID, ok := orgcontext.OrgIDFromContext(c.Request.Context())
		if !ok || orgID == 0 {
			c.Next()
			return
		}

		res, err := s.limiter.AllowReport(c.Request.Context(), orgID.String())
		if err != nil {
			// Redis being down should not take reporting down with it.
			s.log.Warn("report rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !res.Allowed {
			c.Header("Retry-After", formatRetryAfter(res.RetryAfter))
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

func formatRetryAfter(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

func parseHeaderID(value string) (snowflake.ID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	return snowflake.ParseString(trimmed)
}
