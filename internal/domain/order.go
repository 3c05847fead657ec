package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the shopper intends to pay. No payment is processed.
type PaymentMethod string

const (
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCash     PaymentMethod = "cash"
)

// Label is the human-readable name used in rendered documents.
func (p PaymentMethod) Label() string {
	switch p {
	case PaymentTransfer:
		return "Bank transfer"
	case PaymentCash:
		return "Cash on delivery"
	default:
		return string(p)
	}
}

// ShippingInfo is the shopper's contact and delivery details.
type ShippingInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// OrderLine is a cart line frozen at checkout.
type OrderLine struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Order is the immutable result of a checkout. Nothing modifies an Order
// after the assembler builds it.
type Order struct {
	ID            string          `json:"id"`
	Shipping      ShippingInfo    `json:"shipping"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Lines         []OrderLine     `json:"lines"`
	Total         decimal.Decimal `json:"total"`
	CatalogName   string          `json:"catalog_name,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ItemCount is the sum of line quantities.
func (o *Order) ItemCount() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}
