package service

import (
	"context"
	"encoding/hex"
	"fmt"

	"starbooks/internal/core/ports"
	"starbooks/pkg/apperror"

	"github.com/rs/zerolog"
)

// ContentServiceImpl implements ports.ContentService. Plaintext exists
// only in the response path; the blob cache holds ciphertext only.
type ContentServiceImpl struct {
	purchaseRepo ports.PurchaseRepository
	storage      ports.BlobStorage
	blobCache    ports.BlobCache
	crypto       ports.ContentCrypto
	log          zerolog.Logger
}

// NewContentService creates a new ContentServiceImpl.
func NewContentService(
	purchaseRepo ports.PurchaseRepository,
	storage ports.BlobStorage,
	blobCache ports.BlobCache,
	crypto ports.ContentCrypto,
	log zerolog.Logger,
) *ContentServiceImpl {
	return &ContentServiceImpl{
		purchaseRepo: purchaseRepo,
		storage:      storage,
		blobCache:    blobCache,
		crypto:       crypto,
		log:          log,
	}
}

// GetContent returns the decrypted book for an entitled buyer. The
// locator on the purchase row, not the catalog, decides which blob and
// which IV and tag are used, so the buyer always gets the exact bytes
// they paid for.
func (s *ContentServiceImpl) GetContent(ctx context.Context, buyerID, bookID string) (*ports.Content, error) {
	purchase, err := s.purchaseRepo.Get(ctx, buyerID, bookID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if purchase == nil {
		return nil, apperror.ErrNotEntitled()
	}

	ciphertext, hit := s.blobCache.Get(purchase.BlobID)
	if !hit {
		ciphertext, err = s.storage.GetBlob(ctx, purchase.BlobID)
		if err != nil {
			return nil, err
		}
		s.blobCache.Put(purchase.BlobID, ciphertext)
	}

	iv, err := hex.DecodeString(purchase.EncryptionIV)
	if err != nil {
		return nil, apperror.ErrContentCorrupted(fmt.Errorf("decode IV: %w", err))
	}
	tag, err := hex.DecodeString(purchase.EncryptionTag)
	if err != nil {
		return nil, apperror.ErrContentCorrupted(fmt.Errorf("decode auth tag: %w", err))
	}

	plaintext, err := s.crypto.Decrypt(ciphertext, iv, tag)
	if err != nil {
		s.log.Error().Err(err).
			Str("buyer_id", buyerID).
			Str("book_id", bookID).
			Str("blob_id", purchase.BlobID).
			Msg("content decryption failed")
		return nil, apperror.ErrContentCorrupted(err)
	}

	return &ports.Content{
		Bytes:    plaintext,
		MimeType: purchase.MimeType,
	}, nil
}
