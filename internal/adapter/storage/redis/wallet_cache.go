package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"starbooks/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

const walletSnapshotKey = "wallet:snapshot"

// WalletCache implements ports.WalletSnapshotCache using Redis. The TTL
// is the snapshot's validity window; an expired key reads as a miss so
// stale balances are never served by accident.
type WalletCache struct {
	client *goredis.Client
}

// NewWalletCache creates a new Redis-backed wallet snapshot cache.
func NewWalletCache(client *goredis.Client) *WalletCache {
	return &WalletCache{client: client}
}

// Get retrieves the cached snapshot. Returns nil, nil on miss or expiry.
func (c *WalletCache) Get(ctx context.Context) (*domain.WalletBalanceSnapshot, error) {
	val, err := c.client.Get(ctx, walletSnapshotKey).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis wallet snapshot get: %w", err)
	}

	snapshot := &domain.WalletBalanceSnapshot{}
	if err := json.Unmarshal(val, snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal wallet snapshot: %w", err)
	}
	return snapshot, nil
}

// Set stores the snapshot with the given validity window.
func (c *WalletCache) Set(ctx context.Context, snapshot *domain.WalletBalanceSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal wallet snapshot: %w", err)
	}
	if err := c.client.Set(ctx, walletSnapshotKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis wallet snapshot set: %w", err)
	}
	return nil
}
