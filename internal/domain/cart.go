package domain

import (
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/pkg/money"
)

// MaxLineQuantity is the largest quantity a single cart line may hold.
const MaxLineQuantity = 9999

// CartLine is one distinct item in a shopper's cart.
type CartLine struct {
	ItemID      string          `json:"item_id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	ImageRef    string          `json:"image_ref,omitempty"`
	CatalogID   string          `json:"catalog_id"`
	CatalogName string          `json:"catalog_name,omitempty"`
}

// LineTotal is UnitPrice * Quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return money.LineTotal(l.UnitPrice, l.Quantity)
}

// Valid reports whether a line restored from storage can be kept.
func (l CartLine) Valid() bool {
	return l.ItemID != "" && l.Quantity >= 1 && l.Quantity <= MaxLineQuantity && !l.UnitPrice.IsNegative()
}
