package ports

import (
	"context"

	"starbooks/internal/core/domain"
)

// RailInvoice is the payment rail's response to invoice creation.
type RailInvoice struct {
	PaymentID   string
	InvoiceLink string
	AmountStars int64
	Currency    string
}

// RailPayment is the rail's view of a payment, fetched for verification.
type RailPayment struct {
	PaymentID   string
	BookID      string
	AmountStars int64
	Settled     bool
}

// PaymentRail is the external stars-denominated payment channel.
type PaymentRail interface {
	CreateInvoice(ctx context.Context, bookID, title string, amountStars int64) (*RailInvoice, error)
	// GetPayment fetches the rail's authoritative state for a payment ID.
	// Confirmation must never trust an unauthenticated client claim alone.
	GetPayment(ctx context.Context, paymentID string) (*RailPayment, error)
}

// BlobStorage is the external content-addressed storage provider.
// There is no write path in scope.
type BlobStorage interface {
	GetBlob(ctx context.Context, blobID string) ([]byte, error)
}

// ChainClient is the external blockchain RPC surface. SubmitMint
// returns the chain's NFTRecord for the payment.
type ChainClient interface {
	SubmitMint(ctx context.Context, bookID, paymentID, recipientAddress string) (*domain.NFTRecord, error)
	GetBalances(ctx context.Context, address string) ([]domain.CoinBalance, error)
}
