package ports

import (
	"context"

	"starbooks/internal/core/domain"
)

// PurchaseRepository defines persistence for entitlement records.
// InsertIfAbsent is the load-bearing primitive: its atomicity (unique
// constraints on payment_id and (buyer_id, book_id)) is what makes
// duplicate confirmations converge on a single row.
type PurchaseRepository interface {
	// InsertIfAbsent inserts the purchase. If a row already exists for the
	// same (buyer, book) or payment ID, it returns that existing row and
	// inserted=false. The caller's purchase is discarded in that case.
	InsertIfAbsent(ctx context.Context, purchase *domain.Purchase) (*domain.Purchase, bool, error)
	Get(ctx context.Context, buyerID, bookID string) (*domain.Purchase, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*domain.Purchase, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.Purchase, error)
	// UpdateMintResult records the minting outcome. transactionID and
	// nftAddress may be nil when the mint failed terminally.
	UpdateMintResult(ctx context.Context, paymentID string, transactionID, nftAddress *string, status domain.NFTStatus) error
}

// BookRepository is a read-only view over the catalog's books table.
type BookRepository interface {
	GetByID(ctx context.Context, bookID string) (*domain.Book, error)
}
