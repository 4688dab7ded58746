package service

import (
	"context"
	"time"

	"starbooks/internal/core/domain"
	"starbooks/internal/core/ports"

	"github.com/rs/zerolog"
)

// WalletServiceImpl implements ports.WalletService for the service's
// own custody wallet. The address is fixed for the process lifetime.
type WalletServiceImpl struct {
	chain       ports.ChainClient
	snapCache   ports.WalletSnapshotCache
	address     string
	snapshotTTL time.Duration
	log         zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	chain ports.ChainClient,
	snapCache ports.WalletSnapshotCache,
	address string,
	snapshotTTL time.Duration,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		chain:       chain,
		snapCache:   snapCache,
		address:     address,
		snapshotTTL: snapshotTTL,
		log:         log,
	}
}

// GetBalances reads the wallet's coin balances. With allowCached a
// snapshot inside its validity window is served without touching the
// node; a fresh read always updates the snapshot.
func (s *WalletServiceImpl) GetBalances(ctx context.Context, allowCached bool) (*domain.WalletBalanceSnapshot, error) {
	if allowCached {
		snapshot, err := s.snapCache.Get(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("wallet snapshot read failed, querying node")
		}
		if snapshot != nil {
			return snapshot, nil
		}
	}

	coins, err := s.chain.GetBalances(ctx, s.address)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.WalletBalanceSnapshot{
		Address:   s.address,
		Coins:     coins,
		FetchedAt: time.Now().UTC(),
	}

	if err := s.snapCache.Set(ctx, snapshot, s.snapshotTTL); err != nil {
		s.log.Warn().Err(err).Msg("failed to cache wallet snapshot")
	}

	return snapshot, nil
}
