package postgres

import (
	"context"
	"errors"
	"fmt"

	"starbooks/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// BookRepo implements ports.BookRepository over the catalog's read-only
// books table (keyed by book id, owned by the catalog service).
type BookRepo struct {
	pool Pool
}

// NewBookRepo creates a new BookRepo.
func NewBookRepo(pool Pool) *BookRepo {
	return &BookRepo{pool: pool}
}

// GetByID fetches a book and its content locator columns.
func (r *BookRepo) GetByID(ctx context.Context, bookID string) (*domain.Book, error) {
	query := `SELECT id, title, price_stars, blob_id, encryption_iv, encryption_tag, mime_type
		FROM books WHERE id = $1`

	b := &domain.Book{}
	err := r.pool.QueryRow(ctx, query, bookID).Scan(
		&b.ID, &b.Title, &b.PriceStars, &b.BlobID,
		&b.EncryptionIV, &b.EncryptionTag, &b.MimeType,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}
