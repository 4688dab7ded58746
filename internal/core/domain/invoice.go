package domain

// InvoiceStatus is the rail-side lifecycle of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusIssued  InvoiceStatus = "ISSUED"
	InvoiceStatusSettled InvoiceStatus = "SETTLED"
)

// Invoice is a payment-rail-issued request for funds. The rail is the
// system of record until confirmation; invoices are immutable once issued
// and a retry produces a fresh invoice with a new payment ID.
type Invoice struct {
	PaymentID    string        `json:"payment_id"` // provider-issued, unique
	BookID       string        `json:"book_id"`
	Title        string        `json:"title"`
	AmountStars  int64         `json:"amount_stars"`
	Currency     string        `json:"currency"`
	CheckoutLink string        `json:"checkout_link"`
	Status       InvoiceStatus `json:"status"`
}
