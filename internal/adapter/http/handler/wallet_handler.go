package handler

import (
	"time"

	"starbooks/internal/adapter/http/dto"
	"starbooks/internal/core/ports"
	"starbooks/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler exposes the service wallet balance read-out.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// GetBalance handles GET /api/v1/wallet/balance. With ?cached=true a
// snapshot within its validity window may be served.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	allowCached := c.Query("cached") == "true"

	snapshot, err := h.walletSvc.GetBalances(c.Request.Context(), allowCached)
	if err != nil {
		response.Error(c, err)
		return
	}

	coins := make([]dto.CoinBalanceResponse, 0, len(snapshot.Coins))
	for _, coin := range snapshot.Coins {
		coins = append(coins, dto.CoinBalanceResponse{Denom: coin.Denom, Amount: coin.Amount})
	}

	response.OK(c, dto.WalletBalanceResponse{
		Address:   snapshot.Address,
		Coins:     coins,
		FetchedAt: snapshot.FetchedAt.Format(time.RFC3339),
	})
}
