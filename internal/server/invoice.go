package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/ledgerline/internal/invoice/domain"
	"github.com/smallbiznis/ledgerline/pkg/db/pagination"
)

type createInstallmentRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	DueDate time.Time       `json:"due_date"`
}

type createInvoiceRequest struct {
	Type             string                     `json:"type"`
	PaymentType      string                     `json:"payment_type"`
	CounterpartyName string                     `json:"counterparty_name"`
	TotalInvoice     decimal.Decimal            `json:"total_invoice"`
	Payments         []invoicedomain.Payment    `json:"payments"`
	Installments     []createInstallmentRequest `json:"installments"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	installments := make([]invoicedomain.CreateInstallmentRequest, 0, len(req.Installments))
	for _, in := range req.Installments {
		installments = append(installments, invoicedomain.CreateInstallmentRequest{
			Amount:  in.Amount,
			DueDate: in.DueDate,
		})
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateInvoiceRequest{
		Type:             invoicedomain.InvoiceType(strings.TrimSpace(req.Type)),
		PaymentType:      invoicedomain.PaymentType(strings.TrimSpace(req.PaymentType)),
		CounterpartyName: strings.TrimSpace(req.CounterpartyName),
		TotalInvoice:     req.TotalInvoice,
		Payments:         req.Payments,
		Installments:     installments,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		BranchID    string `form:"branch_id"`
		Type        string `form:"type"`
		PaymentType string `form:"payment_type"`
		CreatedFrom string `form:"created_from"`
		CreatedTo   string `form:"created_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	branchID, err := parseOptionalSnowflakeID(query.BranchID)
	if err != nil {
		AbortWithError(c, newValidationError("branch_id", "invalid_branch_id", "invalid branch_id"))
		return
	}
	createdFrom, err := parseOptionalTime(query.CreatedFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("created_from", "invalid_created_from", "invalid created_from"))
		return
	}
	createdTo, err := parseOptionalTime(query.CreatedTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("created_to", "invalid_created_to", "invalid created_to"))
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		Filter: invoicedomain.ListInvoiceFilter{
			BranchID:    branchID,
			Type:        invoicedomain.InvoiceType(strings.TrimSpace(query.Type)),
			PaymentType: invoicedomain.PaymentType(strings.TrimSpace(query.PaymentType)),
			CreatedFrom: createdFrom,
			CreatedTo:   createdTo,
		},
		Page: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateInstallmentStatusRequest struct {
	Status     string           `json:"status"`
	PaidAmount *decimal.Decimal `json:"paid_amount,omitempty"`
}

func (s *Server) UpdateInstallmentStatus(c *gin.Context) {
	var req updateInstallmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.UpdateInstallmentStatus(c.Request.Context(), invoicedomain.UpdateInstallmentStatusRequest{
		InvoiceID:  strings.TrimSpace(c.Param("id")),
		Identifier: strings.TrimSpace(c.Param("installment_id")),
		Status:     invoicedomain.InstallmentStatus(strings.TrimSpace(req.Status)),
		PaidAmount: req.PaidAmount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
