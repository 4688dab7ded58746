package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPurchase_IsMintable(t *testing.T) {
	txID := "tx-123"

	tests := []struct {
		name     string
		purchase Purchase
		want     bool
	}{
		{"fresh purchase", Purchase{NFTStatus: NFTStatusNone}, true},
		{"pending without transaction", Purchase{NFTStatus: NFTStatusPending}, true},
		{"already minted", Purchase{NFTStatus: NFTStatusMinted, TransactionID: &txID}, false},
		{"transaction recorded but status lagging", Purchase{NFTStatus: NFTStatusPending, TransactionID: &txID}, false},
		{"failed without transaction", Purchase{NFTStatus: NFTStatusFailed}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.purchase.IsMintable())
		})
	}
}

func TestPurchase_Locator(t *testing.T) {
	p := Purchase{
		BookID:        "b1",
		BlobID:        "blob-1",
		EncryptionIV:  "aabb",
		EncryptionTag: "ccdd",
		MimeType:      "application/epub+zip",
	}

	loc := p.Locator()
	assert.Equal(t, "b1", loc.BookID)
	assert.Equal(t, "blob-1", loc.BlobID)
	assert.Equal(t, "aabb", loc.EncryptionIV)
	assert.Equal(t, "ccdd", loc.EncryptionTag)
	assert.Equal(t, "application/epub+zip", loc.MimeType)
}

func TestBook_Locator(t *testing.T) {
	b := Book{
		ID:            "b2",
		BlobID:        "blob-2",
		EncryptionIV:  "0011",
		EncryptionTag: "2233",
		MimeType:      "application/pdf",
	}

	loc := b.Locator()
	assert.Equal(t, "b2", loc.BookID)
	assert.Equal(t, "blob-2", loc.BlobID)
	assert.Equal(t, "application/pdf", loc.MimeType)
}

func TestBuildConfirmationKey(t *testing.T) {
	assert.Equal(t, "u1:b1", BuildConfirmationKey("u1", "b1"))
}
