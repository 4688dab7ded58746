package blobstore

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"starbooks/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

func blobIDFor(data []byte) string {
	digest := sha3.Sum256(data)
	return hex.EncodeToString(digest[:])
}

func TestClient_GetBlob(t *testing.T) {
	ciphertext := []byte("encrypted book bytes")
	blobID := blobIDFor(ciphertext)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/blobs/"+blobID, r.URL.Path)
		w.Write(ciphertext)
	}))
	defer srv.Close()

	c := NewClientWithHTTP(srv.URL, srv.Client(), zerolog.Nop())

	got, err := c.GetBlob(context.Background(), blobID)
	require.NoError(t, err)
	assert.Equal(t, ciphertext, got)
}

func TestClient_GetBlob_DigestMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tampered bytes"))
	}))
	defer srv.Close()

	c := NewClientWithHTTP(srv.URL, srv.Client(), zerolog.Nop())

	_, err := c.GetBlob(context.Background(), blobIDFor([]byte("original bytes")))
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "CNT_001", appErr.Code)
}

func TestClient_GetBlob_StorageError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClientWithHTTP(srv.URL, srv.Client(), zerolog.Nop())

	_, err := c.GetBlob(context.Background(), blobIDFor([]byte("anything")))
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "CNT_002", appErr.Code)
}
