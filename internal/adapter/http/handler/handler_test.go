package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"starbooks/internal/core/domain"
	"starbooks/internal/core/ports"
	"starbooks/internal/core/ports/mocks"
	"starbooks/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type routerTestDeps struct {
	router      *gin.Engine
	invoiceSvc  *mocks.MockInvoiceService
	purchaseSvc *mocks.MockPurchaseService
	contentSvc  *mocks.MockContentService
	walletSvc   *mocks.MockWalletService
	tokenSvc    *mocks.MockTokenService
	ctrl        *gomock.Controller
}

func setupRouter(t *testing.T) *routerTestDeps {
	ctrl := gomock.NewController(t)
	d := &routerTestDeps{
		invoiceSvc:  mocks.NewMockInvoiceService(ctrl),
		purchaseSvc: mocks.NewMockPurchaseService(ctrl),
		contentSvc:  mocks.NewMockContentService(ctrl),
		walletSvc:   mocks.NewMockWalletService(ctrl),
		tokenSvc:    mocks.NewMockTokenService(ctrl),
		ctrl:        ctrl,
	}
	d.tokenSvc.EXPECT().Validate("buyer-token").
		Return(&ports.TokenClaims{BuyerID: "buyer-1"}, nil).AnyTimes()

	d.router = SetupRouter(RouterDeps{
		InvoiceSvc:  d.invoiceSvc,
		PurchaseSvc: d.purchaseSvc,
		ContentSvc:  d.contentSvc,
		WalletSvc:   d.walletSvc,
		TokenSvc:    d.tokenSvc,
		Logger:      zerolog.Nop(),
	})
	return d
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer buyer-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ==================== Invoice Tests ====================

func TestCreateInvoice_Success(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	d.invoiceSvc.EXPECT().CreateInvoice(gomock.Any(), "book-1").Return(&domain.Invoice{
		PaymentID:    "pay-1",
		BookID:       "book-1",
		Title:        "A Book",
		AmountStars:  50,
		Currency:     "XTR",
		CheckoutLink: "https://rail.example/i/pay-1",
		Status:       domain.InvoiceStatusIssued,
	}, nil)

	w := doRequest(d.router, http.MethodPost, "/api/v1/invoices", `{"book_id":"book-1"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "pay-1")
	assert.Contains(t, w.Body.String(), "checkout_link")
}

func TestCreateInvoice_MissingBookID(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	w := doRequest(d.router, http.MethodPost, "/api/v1/invoices", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateInvoice_Unauthenticated(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices", strings.NewReader(`{"book_id":"book-1"}`))
	w := httptest.NewRecorder()
	d.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_001")
}

// ==================== Purchase Tests ====================

func TestConfirmPurchase_Success(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	purchase := &domain.Purchase{
		ID:          uuid.New(),
		BuyerID:     "buyer-1",
		BookID:      "book-1",
		PaymentID:   "pay-1",
		AmountStars: 50,
		PurchasedAt: time.Now().UTC(),
		NFTStatus:   domain.NFTStatusPending,
	}
	d.purchaseSvc.EXPECT().
		ConfirmPurchase(gomock.Any(), "buyer-1", "book-1", "pay-1").
		Return(purchase, nil)

	w := doRequest(d.router, http.MethodPost, "/api/v1/purchases/confirm",
		`{"book_id":"book-1","payment_id":"pay-1"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), purchase.ID.String())
	assert.Contains(t, w.Body.String(), `"nft_status":"PENDING"`)
	// The content locator must not leak through the API.
	assert.NotContains(t, w.Body.String(), "blob_id")
	assert.NotContains(t, w.Body.String(), "encryption_iv")
}

func TestConfirmPurchase_PaymentNotSettled(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	d.purchaseSvc.EXPECT().
		ConfirmPurchase(gomock.Any(), "buyer-1", "book-1", "pay-1").
		Return(nil, apperror.ErrPaymentNotConfirmed())

	w := doRequest(d.router, http.MethodPost, "/api/v1/purchases/confirm",
		`{"book_id":"book-1","payment_id":"pay-1"}`)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "PAY_001")
}

func TestGetPurchaseStatus_NotFound(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	d.purchaseSvc.EXPECT().
		GetPurchaseStatus(gomock.Any(), "buyer-1", "book-unowned").
		Return(nil, apperror.ErrNotFound("purchase"))

	w := doRequest(d.router, http.MethodGet, "/api/v1/purchases/book-unowned", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPurchases_Success(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	d.purchaseSvc.EXPECT().ListPurchases(gomock.Any(), "buyer-1").Return([]domain.Purchase{
		{ID: uuid.New(), BookID: "book-1", PurchasedAt: time.Now().UTC()},
		{ID: uuid.New(), BookID: "book-2", PurchasedAt: time.Now().UTC()},
	}, nil)

	w := doRequest(d.router, http.MethodGet, "/api/v1/purchases", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 2)
}

// ==================== Content Tests ====================

func TestGetContent_Success(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	d.contentSvc.EXPECT().GetContent(gomock.Any(), "buyer-1", "book-1").Return(&ports.Content{
		Bytes:    []byte("the decrypted book"),
		MimeType: "application/epub+zip",
	}, nil)

	w := doRequest(d.router, http.MethodGet, "/api/v1/books/book-1/content", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "the decrypted book", w.Body.String())
	assert.Equal(t, "application/epub+zip", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestGetContent_NotEntitled(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	d.contentSvc.EXPECT().GetContent(gomock.Any(), "buyer-1", "book-1").
		Return(nil, apperror.ErrNotEntitled())

	w := doRequest(d.router, http.MethodGet, "/api/v1/books/book-1/content", "")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "ENT_001")
}

// ==================== Wallet Tests ====================

func TestGetBalance_Fresh(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	d.walletSvc.EXPECT().GetBalances(gomock.Any(), false).Return(&domain.WalletBalanceSnapshot{
		Address:   "addr-1",
		Coins:     []domain.CoinBalance{{Denom: "ton", Amount: "1250000000"}},
		FetchedAt: time.Now().UTC(),
	}, nil)

	w := doRequest(d.router, http.MethodGet, "/api/v1/wallet/balance", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "addr-1")
	assert.Contains(t, w.Body.String(), "1250000000")
}

func TestGetBalance_AllowCached(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	d.walletSvc.EXPECT().GetBalances(gomock.Any(), true).Return(&domain.WalletBalanceSnapshot{
		Address:   "addr-1",
		FetchedAt: time.Now().UTC(),
	}, nil)

	w := doRequest(d.router, http.MethodGet, "/api/v1/wallet/balance?cached=true", "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetBalance_ChainUnavailable(t *testing.T) {
	d := setupRouter(t)
	defer d.ctrl.Finish()

	d.walletSvc.EXPECT().GetBalances(gomock.Any(), false).
		Return(nil, apperror.ErrChainUnavailable(errors.New("rpc timeout")))

	w := doRequest(d.router, http.MethodGet, "/api/v1/wallet/balance", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "CHN_001")
}

// ==================== Health Tests ====================

type fakeChecker struct {
	name string
	err  error
}

func (f fakeChecker) Ping(_ context.Context) error { return f.err }
func (f fakeChecker) Name() string                 { return f.name }

func TestHealthCheck_AllHealthy(t *testing.T) {
	r := gin.New()
	r.GET("/health", HealthCheck(fakeChecker{name: "postgresql"}, fakeChecker{name: "redis"}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestHealthCheck_Degraded(t *testing.T) {
	r := gin.New()
	r.GET("/health", HealthCheck(
		fakeChecker{name: "postgresql"},
		fakeChecker{name: "redis", err: errors.New("connection refused")},
	))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
	assert.Contains(t, w.Body.String(), "connection refused")
}
