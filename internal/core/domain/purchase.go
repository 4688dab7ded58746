package domain

import (
	"time"

	"github.com/google/uuid"
)

// NFTStatus tracks the proof-of-purchase minting lifecycle.
// It never affects content entitlement: a FAILED mint leaves access intact.
type NFTStatus string

const (
	NFTStatusNone    NFTStatus = "NONE"
	NFTStatusPending NFTStatus = "PENDING"
	NFTStatusMinted  NFTStatus = "MINTED"
	NFTStatusFailed  NFTStatus = "FAILED"
)

// Purchase is the entitlement record: the durable right of a buyer to
// decrypt a specific book. At most one row exists per (buyer, book) and
// per payment ID. The content locator fields are snapshotted at creation
// so a later catalog edit cannot change what a past buyer received.
type Purchase struct {
	ID            uuid.UUID `json:"id"`
	BuyerID       string    `json:"buyer_id"`
	BookID        string    `json:"book_id"`
	PaymentID     string    `json:"payment_id"`
	BlobID        string    `json:"blob_id"`
	EncryptionIV  string    `json:"-"` // hex, frozen from the catalog at purchase time
	EncryptionTag string    `json:"-"` // hex GCM auth tag
	MimeType      string    `json:"mime_type"`
	AmountStars   int64     `json:"amount_stars"`
	PurchasedAt   time.Time `json:"purchased_at"`
	NFTStatus     NFTStatus `json:"nft_status"`
	TransactionID *string   `json:"transaction_id,omitempty"`
	NFTAddress    *string   `json:"nft_address,omitempty"`
}

// NFTRecord is the chain's acknowledgement of a proof-of-purchase mint.
type NFTRecord struct {
	TransactionID string    `json:"transaction_id"`
	NFTAddress    string    `json:"nft_address"`
	MintedAt      time.Time `json:"minted_at"`
}

// IsMintable reports whether a mint attempt may still be submitted.
func (p *Purchase) IsMintable() bool {
	return p.TransactionID == nil && p.NFTStatus != NFTStatusMinted
}

// Locator returns the content locator snapshot frozen on this purchase.
func (p *Purchase) Locator() ContentLocator {
	return ContentLocator{
		BookID:        p.BookID,
		BlobID:        p.BlobID,
		EncryptionIV:  p.EncryptionIV,
		EncryptionTag: p.EncryptionTag,
		MimeType:      p.MimeType,
	}
}

// BuildConfirmationKey constructs the fast-path dedup key for a
// confirmation of (buyer, book).
func BuildConfirmationKey(buyerID, bookID string) string {
	return buyerID + ":" + bookID
}
