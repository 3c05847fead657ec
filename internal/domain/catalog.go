package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Catalog is a shop's named collection of items.
type Catalog struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsVisible   bool   `json:"is_visible"`
}

// Ref returns the reference carried by cart lines.
func (c Catalog) Ref() CatalogRef {
	return CatalogRef{ID: c.ID, Name: c.Name}
}

// CatalogRef identifies the catalog an item was added from.
type CatalogRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Item is a purchasable catalog entry. Price is null when the source
// record carries no usable price.
type Item struct {
	ID          string              `json:"id"`
	CatalogID   string              `json:"catalog_id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Price       decimal.NullDecimal `json:"price"`
	ImageRef    string              `json:"image_ref,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	IsFeatured  bool                `json:"is_featured"`
	IsVisible   bool                `json:"is_visible"`
}

var (
	ErrItemNoID     = errors.New("item has no id")
	ErrItemNoName   = errors.New("item has no name")
	ErrItemNoPrice  = errors.New("item has no price")
	ErrItemNegative = errors.New("item price is negative")
)

// Validate rejects records that cannot be sold.
func (i Item) Validate() error {
	switch {
	case i.ID == "":
		return ErrItemNoID
	case i.Name == "":
		return ErrItemNoName
	case !i.Price.Valid:
		return ErrItemNoPrice
	case i.Price.Decimal.IsNegative():
		return ErrItemNegative
	}
	return nil
}

// Purchasable reports whether the item can enter a cart.
func (i Item) Purchasable() bool {
	return i.ID != "" && i.Price.Valid && !i.Price.Decimal.IsNegative()
}
