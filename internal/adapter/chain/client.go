// Package chain talks to the blockchain RPC node that mints
// proof-of-purchase NFTs and reports wallet balances.
package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"starbooks/config"
	"starbooks/internal/core/domain"
	"starbooks/pkg/apperror"

	"github.com/rs/zerolog"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.ChainClient over the node's REST RPC.
type Client struct {
	rpcURL     string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewClient creates a chain client from config.
func NewClient(cfg config.ChainConfig, log zerolog.Logger) *Client {
	return &Client{
		rpcURL:     strings.TrimRight(cfg.RPCURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.With().Str("component", "chain").Logger(),
	}
}

// NewClientWithHTTP creates a client with a caller-supplied HTTP client.
func NewClientWithHTTP(rpcURL string, httpClient HTTPClient, log zerolog.Logger) *Client {
	return &Client{
		rpcURL:     strings.TrimRight(rpcURL, "/"),
		httpClient: httpClient,
		log:        log.With().Str("component", "chain").Logger(),
	}
}

type mintRequest struct {
	BookID    string `json:"book_id"`
	PaymentID string `json:"payment_id"`
	Recipient string `json:"recipient"`
}

type mintResponse struct {
	TransactionID string `json:"transaction_id"`
	NFTAddress    string `json:"nft_address"`
	MintedAt      int64  `json:"minted_at"`
}

type balancesResponse struct {
	Coins []domain.CoinBalance `json:"coins"`
}

// SubmitMint asks the node to mint a proof-of-purchase NFT for the
// given payment. The node deduplicates on payment ID, so resubmitting
// the same payment returns the original transaction.
func (c *Client) SubmitMint(ctx context.Context, bookID, paymentID, recipientAddress string) (*domain.NFTRecord, error) {
	body := mintRequest{
		BookID:    bookID,
		PaymentID: paymentID,
		Recipient: recipientAddress,
	}

	var out mintResponse
	if err := c.doJSON(ctx, http.MethodPost, "/nft/mint", body, &out); err != nil {
		c.log.Error().Err(err).Str("payment_id", paymentID).Msg("mint submission failed")
		return nil, apperror.ErrChainUnavailable(err)
	}

	return &domain.NFTRecord{
		TransactionID: out.TransactionID,
		NFTAddress:    out.NFTAddress,
		MintedAt:      time.Unix(out.MintedAt, 0).UTC(),
	}, nil
}

// GetBalances fetches the coin balances held by address.
func (c *Client) GetBalances(ctx context.Context, address string) ([]domain.CoinBalance, error) {
	var out balancesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/balances/"+url.PathEscape(address), nil, &out); err != nil {
		c.log.Error().Err(err).Str("address", address).Msg("balance query failed")
		return nil, apperror.ErrChainUnavailable(err)
	}
	return out.Coins, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var reqBody *strings.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = strings.NewReader(string(raw))
	} else {
		reqBody = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.rpcURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("node returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
