// Package dto defines the request and response bodies of the HTTP API.
package dto

// CreateInvoiceRequest is the body of POST /api/v1/invoices.
type CreateInvoiceRequest struct {
	BookID string `json:"book_id" binding:"required"`
}

// InvoiceResponse is the invoice returned to the client.
type InvoiceResponse struct {
	PaymentID    string `json:"payment_id"`
	BookID       string `json:"book_id"`
	Title        string `json:"title"`
	AmountStars  int64  `json:"amount_stars"`
	Currency     string `json:"currency"`
	CheckoutLink string `json:"checkout_link"`
	Status       string `json:"status"`
}

// ConfirmPurchaseRequest is the body of POST /api/v1/purchases/confirm.
type ConfirmPurchaseRequest struct {
	BookID    string `json:"book_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
}

// PurchaseResponse is the entitlement record returned to the buyer.
// The content locator never leaves the server.
type PurchaseResponse struct {
	ID            string  `json:"id"`
	BookID        string  `json:"book_id"`
	PaymentID     string  `json:"payment_id"`
	AmountStars   int64   `json:"amount_stars"`
	PurchasedAt   string  `json:"purchased_at"`
	NFTStatus     string  `json:"nft_status"`
	TransactionID *string `json:"transaction_id,omitempty"`
	NFTAddress    *string `json:"nft_address,omitempty"`
}

// CoinBalanceResponse is one coin entry in the wallet read-out.
type CoinBalanceResponse struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// WalletBalanceResponse is the body of GET /api/v1/wallet/balance.
type WalletBalanceResponse struct {
	Address   string                `json:"address"`
	Coins     []CoinBalanceResponse `json:"coins"`
	FetchedAt string                `json:"fetched_at"`
}
