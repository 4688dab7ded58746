package ports

import (
	"context"
	"time"

	"starbooks/internal/core/domain"
)

// InvoiceService issues payment-rail invoices for catalog books.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, bookID string) (*domain.Invoice, error)
}

// PurchaseService is the purchase confirmation coordinator plus the
// buyer-facing read operations over entitlements.
type PurchaseService interface {
	ConfirmPurchase(ctx context.Context, buyerID, bookID, paymentID string) (*domain.Purchase, error)
	GetPurchaseStatus(ctx context.Context, buyerID, bookID string) (*domain.Purchase, error)
	ListPurchases(ctx context.Context, buyerID string) ([]domain.Purchase, error)
}

// Content is decrypted book bytes plus the mime type to serve them with.
type Content struct {
	Bytes    []byte
	MimeType string
}

// ContentService is the delivery gateway: the only path in the system
// that may expose decrypted content, and only to an entitled buyer.
type ContentService interface {
	GetContent(ctx context.Context, buyerID, bookID string) (*Content, error)
}

// MintScheduler accepts purchases for asynchronous proof-of-purchase
// minting. Scheduling the same payment ID twice is a no-op.
type MintScheduler interface {
	Schedule(purchase *domain.Purchase) bool
}

// WalletService reads the service wallet's chain balances.
type WalletService interface {
	GetBalances(ctx context.Context, allowCached bool) (*domain.WalletBalanceSnapshot, error)
}

// ContentCrypto seals and opens content blobs with AES-256-GCM using
// externally stored IV and auth tag.
type ContentCrypto interface {
	Encrypt(plaintext []byte) (ciphertext, iv, tag []byte, err error)
	Decrypt(ciphertext, iv, tag []byte) ([]byte, error)
}

// ConfirmationCache is the Redis fast path for duplicate confirmations:
// it short-circuits re-delivered webhooks before touching the database.
// The database unique constraints remain the source of truth.
type ConfirmationCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // cached Purchase JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// WalletSnapshotCache stores the last wallet balance snapshot with a
// short validity window.
type WalletSnapshotCache interface {
	Get(ctx context.Context) (*domain.WalletBalanceSnapshot, error) // nil when absent/expired
	Set(ctx context.Context, snapshot *domain.WalletBalanceSnapshot, ttl time.Duration) error
}

// BlobCache memoizes fetched ciphertext blobs by blob ID. Entries are
// never authoritative; losing one only costs a re-fetch.
type BlobCache interface {
	Get(blobID string) ([]byte, bool)
	Put(blobID string, data []byte)
	Clear()
}

// TokenService validates buyer identity tokens issued upstream.
type TokenService interface {
	Generate(buyerID string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed identity claims.
type TokenClaims struct {
	BuyerID string
}
