package service

import (
	"context"
	"errors"
	"testing"

	"starbooks/internal/core/domain"
	"starbooks/internal/core/ports"
	"starbooks/internal/core/ports/mocks"
	"starbooks/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type invoiceTestDeps struct {
	svc      *InvoiceServiceImpl
	bookRepo *mocks.MockBookRepository
	rail     *mocks.MockPaymentRail
	ctrl     *gomock.Controller
}

func setupInvoiceService(t *testing.T) *invoiceTestDeps {
	ctrl := gomock.NewController(t)
	d := &invoiceTestDeps{
		bookRepo: mocks.NewMockBookRepository(ctrl),
		rail:     mocks.NewMockPaymentRail(ctrl),
		ctrl:     ctrl,
	}
	d.svc = NewInvoiceService(d.bookRepo, d.rail, zerolog.Nop())
	return d
}

func TestInvoiceService_CreateInvoice_Success(t *testing.T) {
	d := setupInvoiceService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.bookRepo.EXPECT().GetByID(ctx, "book-1").Return(&domain.Book{
		ID:         "book-1",
		Title:      "A Book",
		PriceStars: 50,
	}, nil)
	d.rail.EXPECT().CreateInvoice(ctx, "book-1", "A Book", int64(50)).Return(&ports.RailInvoice{
		PaymentID:   "pay-1",
		InvoiceLink: "https://rail.example/i/pay-1",
		AmountStars: 50,
		Currency:    "XTR",
	}, nil)

	inv, err := d.svc.CreateInvoice(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, "pay-1", inv.PaymentID)
	assert.Equal(t, "book-1", inv.BookID)
	assert.Equal(t, int64(50), inv.AmountStars)
	assert.Equal(t, domain.InvoiceStatusIssued, inv.Status)
	assert.Equal(t, "https://rail.example/i/pay-1", inv.CheckoutLink)
}

func TestInvoiceService_CreateInvoice_BookNotFound(t *testing.T) {
	d := setupInvoiceService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.bookRepo.EXPECT().GetByID(ctx, "missing").Return(nil, nil)

	_, err := d.svc.CreateInvoice(ctx, "missing")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "PAY_003", appErr.Code)
}

func TestInvoiceService_CreateInvoice_NonPositivePrice(t *testing.T) {
	d := setupInvoiceService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.bookRepo.EXPECT().GetByID(ctx, "book-free").Return(&domain.Book{
		ID:         "book-free",
		Title:      "Free Book",
		PriceStars: 0,
	}, nil)

	_, err := d.svc.CreateInvoice(ctx, "book-free")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "PAY_002", appErr.Code)
}

func TestInvoiceService_CreateInvoice_RailFailure(t *testing.T) {
	d := setupInvoiceService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.bookRepo.EXPECT().GetByID(ctx, "book-1").Return(&domain.Book{
		ID:         "book-1",
		Title:      "A Book",
		PriceStars: 50,
	}, nil)
	railErr := apperror.ErrInvoiceCreationFailed(errors.New("rail down"))
	d.rail.EXPECT().CreateInvoice(ctx, "book-1", "A Book", int64(50)).Return(nil, railErr)

	_, err := d.svc.CreateInvoice(ctx, "book-1")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "INV_001", appErr.Code)
}
