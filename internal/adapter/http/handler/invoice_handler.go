package handler

import (
	"starbooks/internal/adapter/http/dto"
	"starbooks/internal/core/ports"
	"starbooks/pkg/apperror"
	"starbooks/pkg/response"

	"github.com/gin-gonic/gin"
)

// InvoiceHandler handles invoice endpoints.
type InvoiceHandler struct {
	invoiceSvc ports.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceSvc ports.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceSvc: invoiceSvc}
}

// CreateInvoice handles POST /api/v1/invoices.
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	invoice, err := h.invoiceSvc.CreateInvoice(c.Request.Context(), req.BookID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.InvoiceResponse{
		PaymentID:    invoice.PaymentID,
		BookID:       invoice.BookID,
		Title:        invoice.Title,
		AmountStars:  invoice.AmountStars,
		Currency:     invoice.Currency,
		CheckoutLink: invoice.CheckoutLink,
		Status:       string(invoice.Status),
	})
}
