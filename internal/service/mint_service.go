package service

import (
	"context"
	"sync"
	"time"

	"starbooks/config"
	"starbooks/internal/core/domain"
	"starbooks/internal/core/ports"

	"github.com/rs/zerolog"
)

// MintServiceImpl implements ports.MintScheduler with a background
// worker pool. Minting is best effort: a purchase whose mint fails
// terminally keeps its entitlement, only its nft_status records the
// failure.
type MintServiceImpl struct {
	purchaseRepo ports.PurchaseRepository
	chain        ports.ChainClient
	recipient    string
	maxAttempts  int
	baseBackoff  time.Duration
	maxBackoff   time.Duration
	log          zerolog.Logger

	queue chan *domain.Purchase
	wg    sync.WaitGroup

	mu        sync.Mutex
	scheduled map[string]struct{} // payment IDs queued or in flight

	rootCtx  context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// NewMintService creates the mint service and starts its workers.
// recipient is the chain address NFTs are minted to.
func NewMintService(
	purchaseRepo ports.PurchaseRepository,
	chain ports.ChainClient,
	recipient string,
	cfg config.MintConfig,
	log zerolog.Logger,
) *MintServiceImpl {
	ctx, cancel := context.WithCancel(context.Background())
	s := &MintServiceImpl{
		purchaseRepo: purchaseRepo,
		chain:        chain,
		recipient:    recipient,
		maxAttempts:  cfg.MaxAttempts,
		baseBackoff:  cfg.BaseBackoff,
		maxBackoff:   cfg.MaxBackoff,
		log:          log.With().Str("component", "mint").Logger(),
		queue:        make(chan *domain.Purchase, cfg.QueueSize),
		scheduled:    make(map[string]struct{}),
		rootCtx:      ctx,
		cancel:       cancel,
	}

	for i := 0; i < cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	return s
}

// Schedule enqueues the purchase for minting. It returns false when the
// purchase is not mintable, already queued, or the queue is full; none
// of those affect the entitlement.
func (s *MintServiceImpl) Schedule(purchase *domain.Purchase) bool {
	if purchase == nil || !purchase.IsMintable() {
		return false
	}

	s.mu.Lock()
	if _, exists := s.scheduled[purchase.PaymentID]; exists {
		s.mu.Unlock()
		return false
	}
	s.scheduled[purchase.PaymentID] = struct{}{}
	s.mu.Unlock()

	select {
	case s.queue <- purchase:
		return true
	default:
		s.unschedule(purchase.PaymentID)
		// The row stays PENDING with no queued work; the event field
		// lets reconciliation find these drops in the logs.
		s.log.Error().
			Str("event", "mint_backlog_drop").
			Str("payment_id", purchase.PaymentID).
			Str("book_id", purchase.BookID).
			Msg("mint queue full, schedule dropped")
		return false
	}
}

// Stop drains the queue and waits for in-flight mints, up to the
// context deadline. After Stop, Schedule must not be called.
func (s *MintServiceImpl) Stop(ctx context.Context) {
	s.stopOnce.Do(func() {
		close(s.queue)

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			s.log.Info().Msg("mint workers drained")
		case <-ctx.Done():
			s.log.Warn().Msg("mint drain deadline reached, aborting in-flight mints")
		}
		s.cancel()
	})
}

func (s *MintServiceImpl) worker() {
	defer s.wg.Done()
	for purchase := range s.queue {
		s.process(purchase)
		s.unschedule(purchase.PaymentID)
	}
}

func (s *MintServiceImpl) process(purchase *domain.Purchase) {
	log := s.log.With().
		Str("payment_id", purchase.PaymentID).
		Str("book_id", purchase.BookID).
		Logger()

	// Re-read before submitting: the row may have been minted by an
	// earlier run between scheduling and pickup.
	fresh, err := s.purchaseRepo.GetByPaymentID(s.rootCtx, purchase.PaymentID)
	if err != nil {
		log.Error().Err(err).Msg("mint pre-check failed")
		return
	}
	if fresh == nil || !fresh.IsMintable() {
		log.Debug().Msg("purchase no longer mintable, skipping")
		return
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		result, err := s.chain.SubmitMint(s.rootCtx, fresh.BookID, fresh.PaymentID, s.recipient)
		if err == nil {
			if err := s.purchaseRepo.UpdateMintResult(
				s.rootCtx, fresh.PaymentID, &result.TransactionID, &result.NFTAddress, domain.NFTStatusMinted,
			); err != nil {
				log.Error().Err(err).Str("transaction_id", result.TransactionID).Msg("failed to record mint result")
				return
			}
			log.Info().
				Str("transaction_id", result.TransactionID).
				Str("nft_address", result.NFTAddress).
				Int("attempt", attempt).
				Msg("nft minted")
			return
		}

		log.Warn().Err(err).Int("attempt", attempt).Msg("mint attempt failed")

		if attempt < s.maxAttempts {
			if !s.sleep(s.backoff(attempt)) {
				return
			}
		}
	}

	if err := s.purchaseRepo.UpdateMintResult(s.rootCtx, fresh.PaymentID, nil, nil, domain.NFTStatusFailed); err != nil {
		log.Error().Err(err).Msg("failed to record mint failure")
		return
	}
	log.Error().Int("attempts", s.maxAttempts).Msg("mint attempts exhausted, entitlement unaffected")
}

// backoff returns the delay before the next attempt: base doubled per
// attempt, capped at the configured maximum.
func (s *MintServiceImpl) backoff(attempt int) time.Duration {
	d := s.baseBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= s.maxBackoff {
			return s.maxBackoff
		}
	}
	if d > s.maxBackoff {
		return s.maxBackoff
	}
	return d
}

// sleep waits for d, returning false if the service is shutting down.
func (s *MintServiceImpl) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-s.rootCtx.Done():
		return false
	}
}

func (s *MintServiceImpl) unschedule(paymentID string) {
	s.mu.Lock()
	delete(s.scheduled, paymentID)
	s.mu.Unlock()
}
