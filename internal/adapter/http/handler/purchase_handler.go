package handler

import (
	"time"

	"starbooks/internal/adapter/http/dto"
	"starbooks/internal/adapter/http/middleware"
	"starbooks/internal/core/domain"
	"starbooks/internal/core/ports"
	"starbooks/pkg/apperror"
	"starbooks/pkg/response"

	"github.com/gin-gonic/gin"
)

// PurchaseHandler handles purchase confirmation and read endpoints.
type PurchaseHandler struct {
	purchaseSvc ports.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(purchaseSvc ports.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseSvc: purchaseSvc}
}

// ConfirmPurchase handles POST /api/v1/purchases/confirm.
func (h *PurchaseHandler) ConfirmPurchase(c *gin.Context) {
	buyerID := c.GetString(middleware.CtxBuyerID)
	if buyerID == "" {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.ConfirmPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	purchase, err := h.purchaseSvc.ConfirmPurchase(c.Request.Context(), buyerID, req.BookID, req.PaymentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toPurchaseResponse(purchase))
}

// GetPurchaseStatus handles GET /api/v1/purchases/:bookID.
func (h *PurchaseHandler) GetPurchaseStatus(c *gin.Context) {
	buyerID := c.GetString(middleware.CtxBuyerID)
	if buyerID == "" {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	purchase, err := h.purchaseSvc.GetPurchaseStatus(c.Request.Context(), buyerID, c.Param("bookID"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toPurchaseResponse(purchase))
}

// ListPurchases handles GET /api/v1/purchases.
func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	buyerID := c.GetString(middleware.CtxBuyerID)
	if buyerID == "" {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	purchases, err := h.purchaseSvc.ListPurchases(c.Request.Context(), buyerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.PurchaseResponse, 0, len(purchases))
	for i := range purchases {
		out = append(out, toPurchaseResponse(&purchases[i]))
	}
	response.OK(c, out)
}

// toPurchaseResponse converts domain.Purchase to DTO. The content
// locator fields stay server-side.
func toPurchaseResponse(p *domain.Purchase) dto.PurchaseResponse {
	return dto.PurchaseResponse{
		ID:            p.ID.String(),
		BookID:        p.BookID,
		PaymentID:     p.PaymentID,
		AmountStars:   p.AmountStars,
		PurchasedAt:   p.PurchasedAt.Format(time.RFC3339),
		NFTStatus:     string(p.NFTStatus),
		TransactionID: p.TransactionID,
		NFTAddress:    p.NFTAddress,
	}
}
