// Package blobstore fetches encrypted content blobs from the storage
// provider. Blobs are content addressed: the blob ID is the hex
// SHA3-256 digest of the ciphertext, verified on every fetch.
package blobstore

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"starbooks/config"
	"starbooks/pkg/apperror"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/sha3"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.BlobStorage over HTTP.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewClient creates a blob storage client from config.
func NewClient(cfg config.StorageConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.With().Str("component", "blobstore").Logger(),
	}
}

// NewClientWithHTTP creates a client with a caller-supplied HTTP client.
func NewClientWithHTTP(baseURL string, httpClient HTTPClient, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log.With().Str("component", "blobstore").Logger(),
	}
}

// GetBlob downloads the ciphertext for blobID and verifies its digest.
// A digest mismatch means the stored content no longer matches what was
// sold and is reported as corruption, never served.
func (c *Client) GetBlob(ctx context.Context, blobID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/blobs/"+url.PathEscape(blobID), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("blob_id", blobID).Msg("blob fetch failed")
		return nil, apperror.ErrStorageUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("storage returned status %d", resp.StatusCode)
		c.log.Error().Err(err).Str("blob_id", blobID).Msg("blob fetch failed")
		return nil, apperror.ErrStorageUnavailable(err)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.ErrStorageUnavailable(err)
	}

	digest := sha3.Sum256(data)
	if hex.EncodeToString(digest[:]) != blobID {
		c.log.Error().Str("blob_id", blobID).Msg("blob digest mismatch")
		return nil, apperror.ErrContentCorrupted(fmt.Errorf("blob %s digest mismatch", blobID))
	}

	return data, nil
}
