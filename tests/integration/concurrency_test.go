package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"starbooks/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIntegration_ConcurrentDuplicateConfirms fires many confirmations
// for the same (buyer, book) at once. Exactly one purchase row may
// exist afterwards and every caller must observe that same row.
func TestIntegration_ConcurrentDuplicateConfirms(t *testing.T) {
	app := newTestApp(t)
	app.seedBook(t, "b1", "Storm Stories", 50, []byte("content"), "text/plain")

	const goroutines = 16
	u1 := app.token(t, "u1")

	// Half repeat the same payment, half carry distinct settled payments.
	for i := 0; i < goroutines; i++ {
		app.rail.settleExternal(fmt.Sprintf("p-%d", i), "b1", 50)
	}

	type confirmResult struct {
		status      int
		purchaseID  string
		purchasedAt string
	}

	results := make([]confirmResult, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			paymentID := "p-0" // even callers re-deliver the same payment
			if n%2 == 1 {
				paymentID = fmt.Sprintf("p-%d", n)
			}
			resp, raw := app.do(t, http.MethodPost, "/api/v1/purchases/confirm", u1,
				`{"book_id":"b1","payment_id":"`+paymentID+`"}`)
			var envelope struct {
				Data struct {
					ID          string `json:"id"`
					PurchasedAt string `json:"purchased_at"`
				} `json:"data"`
			}
			_ = json.Unmarshal(raw, &envelope)
			results[n] = confirmResult{
				status:      resp.StatusCode,
				purchaseID:  envelope.Data.ID,
				purchasedAt: envelope.Data.PurchasedAt,
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, app.purchaseRepo.count(), "duplicate confirms must converge on one row")

	winnerID := results[0].purchaseID
	winnerAt := results[0].purchasedAt
	for i, r := range results {
		assert.Equal(t, http.StatusOK, r.status, "confirm %d failed", i)
		assert.Equal(t, winnerID, r.purchaseID, "confirm %d saw a different purchase", i)
		assert.Equal(t, winnerAt, r.purchasedAt, "confirm %d saw a different purchase time", i)
	}
}

// TestIntegration_ConcurrentConfirmsMintOnce verifies that racing
// confirmations produce a single mint submission for the winning row.
func TestIntegration_ConcurrentConfirmsMintOnce(t *testing.T) {
	app := newTestApp(t)
	app.seedBook(t, "b1", "Storm Stories", 50, []byte("content"), "text/plain")

	u1 := app.token(t, "u1")
	app.rail.settleExternal("p-1", "b1", 50)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, _ := app.do(t, http.MethodPost, "/api/v1/purchases/confirm", u1,
				`{"book_id":"b1","payment_id":"p-1"}`)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		p, err := app.purchaseRepo.GetByPaymentID(context.Background(), "p-1")
		return err == nil && p != nil && p.NFTStatus == domain.NFTStatusMinted
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, int64(1), app.chain.submitCount(), "winning purchase must be minted exactly once")

	// A later confirmation of the minted purchase does not schedule again.
	app.redis.FlushAll()
	resp, _ := app.do(t, http.MethodPost, "/api/v1/purchases/confirm", u1,
		`{"book_id":"b1","payment_id":"p-1"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(1), app.chain.submitCount())
}

// TestIntegration_ConcurrentContentReads exercises the blob cache under
// parallel entitled readers.
func TestIntegration_ConcurrentContentReads(t *testing.T) {
	app := newTestApp(t)
	plaintext := []byte("shared ciphertext, per-reader decryption")
	app.seedBook(t, "b1", "Storm Stories", 50, plaintext, "text/plain")

	u1 := app.token(t, "u1")
	app.rail.settleExternal("p-1", "b1", 50)
	resp, _ := app.do(t, http.MethodPost, "/api/v1/purchases/confirm", u1, `{"book_id":"b1","payment_id":"p-1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, raw := app.do(t, http.MethodGet, "/api/v1/books/b1/content", u1, "")
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, plaintext, raw)
		}()
	}
	wg.Wait()
}
