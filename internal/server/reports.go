package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/ledgerline/internal/invoice/domain"
	reportdomain "github.com/smallbiznis/ledgerline/internal/report/domain"
)

func (s *Server) FinancialSnapshot(c *gin.Context) {
	req, ok := s.bindReportRequest(c)
	if !ok {
		return
	}

	resp, err := s.reportSvc.FinancialSnapshot(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) InstallmentRows(c *gin.Context) {
	req, ok := s.bindReportRequest(c)
	if !ok {
		return
	}

	resp, err := s.reportSvc.InstallmentRows(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) PendingInstallments(c *gin.Context) {
	req, ok := s.bindReportRequest(c)
	if !ok {
		return
	}

	resp, err := s.reportSvc.PendingInstallments(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) InstallmentAging(c *gin.Context) {
	req, ok := s.bindReportRequest(c)
	if !ok {
		return
	}

	resp, err := s.reportSvc.Aging(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) bindReportRequest(c *gin.Context) (reportdomain.ReportRequest, bool) {
	var query struct {
		BranchID    string `form:"branch_id"`
		Type        string `form:"type"`
		CreatedFrom string `form:"created_from"`
		CreatedTo   string `form:"created_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return reportdomain.ReportRequest{}, false
	}

	branchID, err := parseOptionalSnowflakeID(query.BranchID)
	if err != nil {
		AbortWithError(c, newValidationError("branch_id", "invalid_branch_id", "invalid branch_id"))
		return reportdomain.ReportRequest{}, false
	}
	createdFrom, err := parseOptionalTime(query.CreatedFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("created_from", "invalid_created_from", "invalid created_from"))
		return reportdomain.ReportRequest{}, false
	}
	createdTo, err := parseOptionalTime(query.CreatedTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("created_to", "invalid_created_to", "invalid created_to"))
		return reportdomain.ReportRequest{}, false
	}

	return reportdomain.ReportRequest{
		Filter: invoicedomain.ListInvoiceFilter{
			BranchID:    branchID,
			Type:        invoicedomain.InvoiceType(strings.TrimSpace(query.Type)),
			CreatedFrom: createdFrom,
			CreatedTo:   createdTo,
		},
	}, true
}
