package handler

import (
	"starbooks/internal/adapter/http/middleware"
	"starbooks/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	InvoiceSvc     ports.InvoiceService
	PurchaseSvc    ports.PurchaseService
	ContentSvc     ports.ContentService
	WalletSvc      ports.WalletService
	TokenSvc       ports.TokenService
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	buyerAuth := middleware.BuyerAuth(deps.TokenSvc, deps.Logger)

	v1 := r.Group("/api/v1", buyerAuth)

	invoiceHandler := NewInvoiceHandler(deps.InvoiceSvc)
	v1.POST("/invoices", invoiceHandler.CreateInvoice)

	purchaseHandler := NewPurchaseHandler(deps.PurchaseSvc)
	purchases := v1.Group("/purchases")
	{
		purchases.POST("/confirm", purchaseHandler.ConfirmPurchase)
		purchases.GET("", purchaseHandler.ListPurchases)
		purchases.GET("/:bookID", purchaseHandler.GetPurchaseStatus)
	}

	contentHandler := NewContentHandler(deps.ContentSvc)
	v1.GET("/books/:bookID/content", contentHandler.GetContent)

	walletHandler := NewWalletHandler(deps.WalletSvc)
	v1.GET("/wallet/balance", walletHandler.GetBalance)

	return r
}
