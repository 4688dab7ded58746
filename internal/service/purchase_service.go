package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"starbooks/internal/core/domain"
	"starbooks/internal/core/ports"
	"starbooks/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const confirmationTTL = 24 * time.Hour

// PurchaseServiceImpl implements ports.PurchaseService.
type PurchaseServiceImpl struct {
	purchaseRepo ports.PurchaseRepository
	bookRepo     ports.BookRepository
	rail         ports.PaymentRail
	confirmCache ports.ConfirmationCache
	minter       ports.MintScheduler
	log          zerolog.Logger
}

// NewPurchaseService creates a new PurchaseServiceImpl.
func NewPurchaseService(
	purchaseRepo ports.PurchaseRepository,
	bookRepo ports.BookRepository,
	rail ports.PaymentRail,
	confirmCache ports.ConfirmationCache,
	minter ports.MintScheduler,
	log zerolog.Logger,
) *PurchaseServiceImpl {
	return &PurchaseServiceImpl{
		purchaseRepo: purchaseRepo,
		bookRepo:     bookRepo,
		rail:         rail,
		confirmCache: confirmCache,
		minter:       minter,
		log:          log,
	}
}

// ConfirmPurchase turns a settled rail payment into an entitlement.
// Duplicate confirmations for the same (buyer, book), whatever their
// payment ID, converge on the first recorded purchase: the cache
// short-circuits hot duplicates and the database unique constraints
// decide the winner under true concurrency. A payment already bound
// to a different buyer's purchase is refused.
func (s *PurchaseServiceImpl) ConfirmPurchase(ctx context.Context, buyerID, bookID, paymentID string) (*domain.Purchase, error) {
	if buyerID == "" || bookID == "" || paymentID == "" {
		return nil, apperror.Validation("buyer_id, book_id and payment_id are required")
	}

	confirmKey := domain.BuildConfirmationKey(buyerID, bookID)

	// Layer 1: Redis confirmation check
	cached, err := s.confirmCache.Get(ctx, confirmKey)
	if err != nil {
		s.log.Warn().Err(err).Str("key", confirmKey).Msg("redis confirmation check failed, falling through to DB")
	}
	if cached != nil {
		return s.unmarshalCachedPurchase(cached)
	}

	// Verify the payment with the rail before granting anything.
	payment, err := s.rail.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperror.ErrNotFound("payment")
	}
	if !payment.Settled {
		return nil, apperror.ErrPaymentNotConfirmed()
	}
	if payment.BookID != bookID {
		return nil, apperror.Validation("payment was issued for a different book")
	}

	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if book == nil {
		return nil, apperror.ErrNotFound("book")
	}

	// The content locator is copied onto the entitlement row so that
	// delivery never depends on the catalog row staying unchanged.
	purchase := &domain.Purchase{
		ID:            uuid.New(),
		BuyerID:       buyerID,
		BookID:        bookID,
		PaymentID:     paymentID,
		BlobID:        book.BlobID,
		EncryptionIV:  book.EncryptionIV,
		EncryptionTag: book.EncryptionTag,
		MimeType:      book.MimeType,
		AmountStars:   payment.AmountStars,
		PurchasedAt:   time.Now().UTC(),
		NFTStatus:     domain.NFTStatusPending,
	}

	winner, inserted, err := s.purchaseRepo.InsertIfAbsent(ctx, purchase)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("insert purchase: %w", err))
	}

	// A payment_id conflict can surface another buyer's row. That row
	// must never be returned or cached under this buyer's key: the
	// payment is spent, the caller holds no entitlement.
	if !inserted && winner.BuyerID != buyerID {
		s.log.Warn().
			Str("buyer_id", buyerID).
			Str("book_id", bookID).
			Str("payment_id", paymentID).
			Str("owner_buyer_id", winner.BuyerID).
			Msg("payment already bound to another buyer's purchase")
		return nil, apperror.ErrPaymentAlreadyUsed()
	}

	if inserted {
		s.log.Info().
			Str("buyer_id", buyerID).
			Str("book_id", bookID).
			Str("payment_id", paymentID).
			Msg("purchase recorded")
	} else {
		s.log.Info().
			Str("buyer_id", buyerID).
			Str("book_id", bookID).
			Str("payment_id", paymentID).
			Str("winner_payment_id", winner.PaymentID).
			Msg("duplicate confirmation, returning existing purchase")
	}

	if winner.IsMintable() {
		s.minter.Schedule(winner)
	}

	s.cachePurchase(ctx, confirmKey, winner)

	return winner, nil
}

// GetPurchaseStatus returns the buyer's purchase of a book, or a not
// found error when the buyer never bought it.
func (s *PurchaseServiceImpl) GetPurchaseStatus(ctx context.Context, buyerID, bookID string) (*domain.Purchase, error) {
	purchase, err := s.purchaseRepo.Get(ctx, buyerID, bookID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if purchase == nil {
		return nil, apperror.ErrNotFound("purchase")
	}
	return purchase, nil
}

// ListPurchases returns every purchase the buyer holds, oldest first.
func (s *PurchaseServiceImpl) ListPurchases(ctx context.Context, buyerID string) ([]domain.Purchase, error) {
	purchases, err := s.purchaseRepo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	return purchases, nil
}

// cachePurchase stores the winning purchase for the confirmation fast
// path. Cache failures are logged, not surfaced: the row is committed.
func (s *PurchaseServiceImpl) cachePurchase(ctx context.Context, key string, purchase *domain.Purchase) {
	raw, err := json.Marshal(purchase)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to marshal purchase for cache")
		return
	}
	if err := s.confirmCache.Set(ctx, key, raw, confirmationTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to cache confirmation")
	}
}

func (s *PurchaseServiceImpl) unmarshalCachedPurchase(data []byte) (*domain.Purchase, error) {
	var purchase domain.Purchase
	if err := json.Unmarshal(data, &purchase); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached purchase: %w", err))
	}
	return &purchase, nil
}
