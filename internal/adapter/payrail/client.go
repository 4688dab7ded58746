// Package payrail talks to the external star payment rail over HTTP.
package payrail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"starbooks/config"
	"starbooks/internal/core/ports"
	"starbooks/pkg/apperror"

	"github.com/rs/zerolog"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.PaymentRail against the rail's REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewClient creates a payment rail client from config.
func NewClient(cfg config.PayRailConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.With().Str("component", "payrail").Logger(),
	}
}

// NewClientWithHTTP creates a client with a caller-supplied HTTP client.
func NewClientWithHTTP(baseURL, token string, httpClient HTTPClient, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
		log:        log.With().Str("component", "payrail").Logger(),
	}
}

type createInvoiceRequest struct {
	Title       string `json:"title"`
	Payload     string `json:"payload"`
	Currency    string `json:"currency"`
	AmountStars int64  `json:"amount"`
}

type createInvoiceResponse struct {
	PaymentID   string `json:"payment_id"`
	InvoiceLink string `json:"invoice_link"`
	Currency    string `json:"currency"`
	AmountStars int64  `json:"amount"`
}

type paymentResponse struct {
	PaymentID   string `json:"payment_id"`
	Payload     string `json:"payload"`
	AmountStars int64  `json:"amount"`
	Status      string `json:"status"`
}

// CreateInvoice issues a star invoice for the given book on the rail.
// The book ID travels in the invoice payload and comes back on the
// payment record, which is how a settled payment is tied to a book.
func (c *Client) CreateInvoice(ctx context.Context, bookID, title string, amountStars int64) (*ports.RailInvoice, error) {
	body := createInvoiceRequest{
		Title:       title,
		Payload:     bookID,
		Currency:    "XTR",
		AmountStars: amountStars,
	}

	var out createInvoiceResponse
	if err := c.doJSON(ctx, http.MethodPost, "/invoices", body, &out); err != nil {
		c.log.Error().Err(err).Str("book_id", bookID).Msg("create invoice failed")
		return nil, apperror.ErrInvoiceCreationFailed(err)
	}

	return &ports.RailInvoice{
		PaymentID:   out.PaymentID,
		InvoiceLink: out.InvoiceLink,
		AmountStars: out.AmountStars,
		Currency:    out.Currency,
	}, nil
}

// GetPayment fetches the rail's record for a payment ID. A missing
// payment returns (nil, nil).
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*ports.RailPayment, error) {
	var out paymentResponse
	err := c.doJSON(ctx, http.MethodGet, "/payments/"+url.PathEscape(paymentID), nil, &out)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		c.log.Error().Err(err).Str("payment_id", paymentID).Msg("get payment failed")
		return nil, fmt.Errorf("get payment: %w", err)
	}

	return &ports.RailPayment{
		PaymentID:   out.PaymentID,
		BookID:      out.Payload,
		AmountStars: out.AmountStars,
		Settled:     out.Status == "settled",
	}, nil
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("rail returned status %d", e.code)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
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

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
