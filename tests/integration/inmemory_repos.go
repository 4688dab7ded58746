package integration

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"starbooks/internal/core/domain"
	"starbooks/internal/core/ports"
)

// --- In-Memory Purchase Repo ---

// inMemoryPurchaseRepo mirrors the postgres repo's semantics: unique on
// payment ID and on (buyer, book), with the first writer winning.
type inMemoryPurchaseRepo struct {
	mu          sync.RWMutex
	byBuyerBook map[string]*domain.Purchase
	byPayment   map[string]*domain.Purchase
}

func newInMemoryPurchaseRepo() *inMemoryPurchaseRepo {
	return &inMemoryPurchaseRepo{
		byBuyerBook: make(map[string]*domain.Purchase),
		byPayment:   make(map[string]*domain.Purchase),
	}
}

func buyerBookKey(buyerID, bookID string) string {
	return buyerID + ":" + bookID
}

func (r *inMemoryPurchaseRepo) InsertIfAbsent(ctx context.Context, purchase *domain.Purchase) (*domain.Purchase, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byPayment[purchase.PaymentID]; ok {
		cp := *existing
		return &cp, false, nil
	}
	if existing, ok := r.byBuyerBook[buyerBookKey(purchase.BuyerID, purchase.BookID)]; ok {
		cp := *existing
		return &cp, false, nil
	}

	cp := *purchase
	r.byPayment[cp.PaymentID] = &cp
	r.byBuyerBook[buyerBookKey(cp.BuyerID, cp.BookID)] = &cp
	out := cp
	return &out, true, nil
}

func (r *inMemoryPurchaseRepo) Get(ctx context.Context, buyerID, bookID string) (*domain.Purchase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byBuyerBook[buyerBookKey(buyerID, bookID)]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryPurchaseRepo) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Purchase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byPayment[paymentID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryPurchaseRepo) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Purchase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Purchase
	for _, p := range r.byBuyerBook {
		if p.BuyerID == buyerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *inMemoryPurchaseRepo) UpdateMintResult(ctx context.Context, paymentID string, transactionID, nftAddress *string, status domain.NFTStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byPayment[paymentID]
	if !ok {
		return fmt.Errorf("purchase not found for payment %s", paymentID)
	}
	p.TransactionID = transactionID
	p.NFTAddress = nftAddress
	p.NFTStatus = status
	return nil
}

func (r *inMemoryPurchaseRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byPayment)
}

// --- In-Memory Book Repo ---

type inMemoryBookRepo struct {
	mu    sync.RWMutex
	books map[string]*domain.Book
}

func newInMemoryBookRepo() *inMemoryBookRepo {
	return &inMemoryBookRepo{books: make(map[string]*domain.Book)}
}

func (r *inMemoryBookRepo) add(b *domain.Book) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.books[b.ID] = b
}

func (r *inMemoryBookRepo) GetByID(ctx context.Context, bookID string) (*domain.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.books[bookID]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

// --- Fake Payment Rail ---

type fakeRail struct {
	mu       sync.Mutex
	payments map[string]*ports.RailPayment
	issued   int
}

func newFakeRail() *fakeRail {
	return &fakeRail{payments: make(map[string]*ports.RailPayment)}
}

func (r *fakeRail) CreateInvoice(ctx context.Context, bookID, title string, amountStars int64) (*ports.RailInvoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issued++
	paymentID := fmt.Sprintf("pay-%d", r.issued)
	r.payments[paymentID] = &ports.RailPayment{
		PaymentID:   paymentID,
		BookID:      bookID,
		AmountStars: amountStars,
		Settled:     false,
	}
	return &ports.RailInvoice{
		PaymentID:   paymentID,
		InvoiceLink: "https://rail.test/i/" + paymentID,
		AmountStars: amountStars,
		Currency:    "XTR",
	}, nil
}

func (r *fakeRail) GetPayment(ctx context.Context, paymentID string) (*ports.RailPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[paymentID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRail) settle(paymentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.payments[paymentID]; ok {
		p.Settled = true
	}
}

// settleExternal registers an already-settled payment that was not
// issued through CreateInvoice, as a re-delivered webhook would carry.
func (r *fakeRail) settleExternal(paymentID, bookID string, amountStars int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[paymentID] = &ports.RailPayment{
		PaymentID:   paymentID,
		BookID:      bookID,
		AmountStars: amountStars,
		Settled:     true,
	}
}

// --- Fake Chain Client ---

type fakeChain struct {
	mu      sync.Mutex
	mints   map[string]*domain.NFTRecord // by payment ID
	submits int64
}

func newFakeChain() *fakeChain {
	return &fakeChain{mints: make(map[string]*domain.NFTRecord)}
}

func (c *fakeChain) SubmitMint(ctx context.Context, bookID, paymentID, recipientAddress string) (*domain.NFTRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	atomic.AddInt64(&c.submits, 1)
	if result, ok := c.mints[paymentID]; ok {
		cp := *result
		return &cp, nil
	}
	result := &domain.NFTRecord{
		TransactionID: fmt.Sprintf("tx-%s", paymentID),
		NFTAddress:    fmt.Sprintf("nft-%s", paymentID),
		MintedAt:      time.Now().UTC(),
	}
	c.mints[paymentID] = result
	cp := *result
	return &cp, nil
}

func (c *fakeChain) GetBalances(ctx context.Context, address string) ([]domain.CoinBalance, error) {
	return []domain.CoinBalance{
		{Denom: "ton", Amount: "1250000000"},
		{Denom: "usdt", Amount: "30000000"},
	}, nil
}

func (c *fakeChain) submitCount() int64 {
	return atomic.LoadInt64(&c.submits)
}

// --- Fake Blob Storage ---

type fakeBlobStorage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func newFakeBlobStorage() *fakeBlobStorage {
	return &fakeBlobStorage{blobs: make(map[string][]byte)}
}

func (s *fakeBlobStorage) put(blobID string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[blobID] = data
}

func (s *fakeBlobStorage) GetBlob(ctx context.Context, blobID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[blobID]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", blobID)
	}
	return data, nil
}
