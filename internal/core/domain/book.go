package domain

// Book is a read-only catalog row. The core never mutates it.
type Book struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	PriceStars    int64  `json:"price_stars"`
	BlobID        string `json:"blob_id"`
	EncryptionIV  string `json:"-"`
	EncryptionTag string `json:"-"`
	MimeType      string `json:"mime_type"`
}

// ContentLocator points at a stored encrypted blob and carries the
// parameters needed to decrypt it.
type ContentLocator struct {
	BookID        string
	BlobID        string
	EncryptionIV  string // hex-encoded GCM nonce
	EncryptionTag string // hex-encoded GCM auth tag
	MimeType      string
}

// Locator returns the book's content locator.
func (b *Book) Locator() ContentLocator {
	return ContentLocator{
		BookID:        b.ID,
		BlobID:        b.BlobID,
		EncryptionIV:  b.EncryptionIV,
		EncryptionTag: b.EncryptionTag,
		MimeType:      b.MimeType,
	}
}
