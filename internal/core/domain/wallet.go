package domain

import "time"

// CoinBalance is a single asset balance on the chain wallet.
type CoinBalance struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"` // decimal string, chain-native precision
}

// WalletBalanceSnapshot is a read-only projection of chain state for the
// service wallet. It is cached with a short validity window; callers decide
// whether a stale snapshot is acceptable.
type WalletBalanceSnapshot struct {
	Address   string        `json:"address"`
	Coins     []CoinBalance `json:"coins"`
	FetchedAt time.Time     `json:"fetched_at"`
}
