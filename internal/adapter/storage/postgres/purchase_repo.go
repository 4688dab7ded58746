package postgres

import (
	"context"
	"errors"
	"fmt"

	"starbooks/internal/core/domain"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PurchaseRepo implements ports.PurchaseRepository.
//
// Schema (unique constraints carry the idempotence guarantee):
//
//	CREATE TABLE purchases (
//	    id             UUID PRIMARY KEY,
//	    buyer_id       TEXT NOT NULL,
//	    book_id        TEXT NOT NULL,
//	    payment_id     TEXT NOT NULL UNIQUE,
//	    blob_id        TEXT NOT NULL,
//	    encryption_iv  TEXT NOT NULL,
//	    encryption_tag TEXT NOT NULL,
//	    mime_type      TEXT NOT NULL,
//	    amount_stars   BIGINT NOT NULL,
//	    purchased_at   TIMESTAMPTZ NOT NULL,
//	    nft_status     TEXT NOT NULL,
//	    transaction_id TEXT,
//	    nft_address    TEXT,
//	    UNIQUE (buyer_id, book_id)
//	);
type PurchaseRepo struct {
	pool Pool
}

// NewPurchaseRepo creates a new PurchaseRepo.
func NewPurchaseRepo(pool Pool) *PurchaseRepo {
	return &PurchaseRepo{pool: pool}
}

const purchaseColumns = `id, buyer_id, book_id, payment_id, blob_id, encryption_iv, encryption_tag,
	mime_type, amount_stars, purchased_at, nft_status, transaction_id, nft_address`

// InsertIfAbsent inserts the purchase row. A unique violation on either
// (buyer_id, book_id) or payment_id means a concurrent or earlier
// confirmation already won; the existing row is fetched and returned.
func (r *PurchaseRepo) InsertIfAbsent(ctx context.Context, p *domain.Purchase) (*domain.Purchase, bool, error) {
	query := `INSERT INTO purchases (` + purchaseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.BuyerID, p.BookID, p.PaymentID, p.BlobID,
		p.EncryptionIV, p.EncryptionTag, p.MimeType, p.AmountStars,
		p.PurchasedAt, p.NFTStatus, p.TransactionID, p.NFTAddress,
	)
	if err == nil {
		return p, true, nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil, false, fmt.Errorf("insert purchase: %w", err)
	}

	// Lost the race (or re-delivered confirmation): return the winner's row.
	existing, err := r.Get(ctx, p.BuyerID, p.BookID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		// Conflict was on payment_id with a different (buyer, book) pair.
		existing, err = r.GetByPaymentID(ctx, p.PaymentID)
		if err != nil {
			return nil, false, err
		}
	}
	if existing == nil {
		return nil, false, fmt.Errorf("insert purchase: unique violation but no existing row found")
	}
	return existing, false, nil
}

// Get fetches the purchase for a (buyer, book) pair.
func (r *PurchaseRepo) Get(ctx context.Context, buyerID, bookID string) (*domain.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE buyer_id = $1 AND book_id = $2`
	return r.scanPurchase(r.pool.QueryRow(ctx, query, buyerID, bookID))
}

// GetByPaymentID fetches the purchase keyed by the rail's payment ID.
func (r *PurchaseRepo) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE payment_id = $1`
	return r.scanPurchase(r.pool.QueryRow(ctx, query, paymentID))
}

// ListByBuyer fetches a buyer's purchases ordered by purchase time.
func (r *PurchaseRepo) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE buyer_id = $1 ORDER BY purchased_at`

	rows, err := r.pool.Query(ctx, query, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []domain.Purchase
	for rows.Next() {
		p := domain.Purchase{}
		err := rows.Scan(
			&p.ID, &p.BuyerID, &p.BookID, &p.PaymentID, &p.BlobID,
			&p.EncryptionIV, &p.EncryptionTag, &p.MimeType, &p.AmountStars,
			&p.PurchasedAt, &p.NFTStatus, &p.TransactionID, &p.NFTAddress,
		)
		if err != nil {
			return nil, fmt.Errorf("scan purchase row: %w", err)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase rows: %w", err)
	}
	return purchases, nil
}

// UpdateMintResult records the minting outcome for a payment.
func (r *PurchaseRepo) UpdateMintResult(ctx context.Context, paymentID string, transactionID, nftAddress *string, status domain.NFTStatus) error {
	query := `UPDATE purchases SET transaction_id = $1, nft_address = $2, nft_status = $3 WHERE payment_id = $4`

	tag, err := r.pool.Exec(ctx, query, transactionID, nftAddress, status, paymentID)
	if err != nil {
		return fmt.Errorf("update mint result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("purchase not found for payment: %s", paymentID)
	}
	return nil
}

// scanPurchase is a helper to scan a single row into a Purchase.
func (r *PurchaseRepo) scanPurchase(row pgx.Row) (*domain.Purchase, error) {
	p := &domain.Purchase{}
	err := row.Scan(
		&p.ID, &p.BuyerID, &p.BookID, &p.PaymentID, &p.BlobID,
		&p.EncryptionIV, &p.EncryptionTag, &p.MimeType, &p.AmountStars,
		&p.PurchasedAt, &p.NFTStatus, &p.TransactionID, &p.NFTAddress,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan purchase: %w", err)
	}
	return p, nil
}
