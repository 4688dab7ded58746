package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"starbooks/internal/core/domain"
	"starbooks/internal/core/ports/mocks"
	"starbooks/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type walletTestDeps struct {
	svc       *WalletServiceImpl
	chain     *mocks.MockChainClient
	snapCache *mocks.MockWalletSnapshotCache
	ctrl      *gomock.Controller
}

func setupWalletService(t *testing.T) *walletTestDeps {
	ctrl := gomock.NewController(t)
	d := &walletTestDeps{
		chain:     mocks.NewMockChainClient(ctrl),
		snapCache: mocks.NewMockWalletSnapshotCache(ctrl),
		ctrl:      ctrl,
	}
	d.svc = NewWalletService(d.chain, d.snapCache, "addr-1", 30*time.Second, zerolog.Nop())
	return d
}

func TestWalletService_GetBalances_FreshRead(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	coins := []domain.CoinBalance{{Denom: "ton", Amount: "1250000000"}}

	d.chain.EXPECT().GetBalances(ctx, "addr-1").Return(coins, nil)
	d.snapCache.EXPECT().Set(ctx, gomock.Any(), 30*time.Second).Return(nil)

	snapshot, err := d.svc.GetBalances(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "addr-1", snapshot.Address)
	assert.Equal(t, coins, snapshot.Coins)
	assert.WithinDuration(t, time.Now().UTC(), snapshot.FetchedAt, time.Second)
}

func TestWalletService_GetBalances_CachedSnapshot(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	cached := &domain.WalletBalanceSnapshot{
		Address:   "addr-1",
		Coins:     []domain.CoinBalance{{Denom: "ton", Amount: "42"}},
		FetchedAt: time.Now().UTC().Add(-10 * time.Second),
	}
	d.snapCache.EXPECT().Get(ctx).Return(cached, nil)

	snapshot, err := d.svc.GetBalances(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, cached, snapshot)
}

func TestWalletService_GetBalances_CacheMissQueriesNode(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	coins := []domain.CoinBalance{{Denom: "usdt", Amount: "30000000"}}

	d.snapCache.EXPECT().Get(ctx).Return(nil, nil)
	d.chain.EXPECT().GetBalances(ctx, "addr-1").Return(coins, nil)
	d.snapCache.EXPECT().Set(ctx, gomock.Any(), 30*time.Second).Return(nil)

	snapshot, err := d.svc.GetBalances(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, coins, snapshot.Coins)
}

func TestWalletService_GetBalances_NodeUnavailable(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	chainErr := apperror.ErrChainUnavailable(errors.New("rpc timeout"))
	d.chain.EXPECT().GetBalances(ctx, "addr-1").Return(nil, chainErr)

	_, err := d.svc.GetBalances(ctx, false)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "CHN_001", appErr.Code)
}

func TestWalletService_GetBalances_CacheWriteFailureIsNonFatal(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.chain.EXPECT().GetBalances(ctx, "addr-1").Return([]domain.CoinBalance{}, nil)
	d.snapCache.EXPECT().Set(ctx, gomock.Any(), 30*time.Second).Return(errors.New("redis down"))

	snapshot, err := d.svc.GetBalances(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "addr-1", snapshot.Address)
}
