package service

import (
	"context"

	"starbooks/internal/core/domain"
	"starbooks/internal/core/ports"
	"starbooks/pkg/apperror"

	"github.com/rs/zerolog"
)

// InvoiceServiceImpl implements ports.InvoiceService.
type InvoiceServiceImpl struct {
	bookRepo ports.BookRepository
	rail     ports.PaymentRail
	log      zerolog.Logger
}

// NewInvoiceService creates a new invoice service.
func NewInvoiceService(bookRepo ports.BookRepository, rail ports.PaymentRail, log zerolog.Logger) *InvoiceServiceImpl {
	return &InvoiceServiceImpl{
		bookRepo: bookRepo,
		rail:     rail,
		log:      log,
	}
}

// CreateInvoice issues a star invoice for the book on the payment rail.
// The invoice is not an entitlement; nothing is granted until the
// payment settles and is confirmed.
func (s *InvoiceServiceImpl) CreateInvoice(ctx context.Context, bookID string) (*domain.Invoice, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if book == nil {
		return nil, apperror.ErrNotFound("book")
	}
	if book.PriceStars <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	railInv, err := s.rail.CreateInvoice(ctx, book.ID, book.Title, book.PriceStars)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("book_id", book.ID).
		Str("payment_id", railInv.PaymentID).
		Int64("amount_stars", railInv.AmountStars).
		Msg("invoice created")

	return &domain.Invoice{
		PaymentID:    railInv.PaymentID,
		BookID:       book.ID,
		Title:        book.Title,
		AmountStars:  railInv.AmountStars,
		Currency:     railInv.Currency,
		CheckoutLink: railInv.InvoiceLink,
		Status:       domain.InvoiceStatusIssued,
	}, nil
}
