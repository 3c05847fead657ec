package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/money"
)

// Amounts leave the service as fixed two-place decimal strings.
func amount(d decimal.Decimal) string {
	return d.StringFixed(money.Places)
}

type cartLineView struct {
	ItemID      string `json:"item_id"`
	Name        string `json:"name"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	LineTotal   string `json:"line_total"`
	ImageRef    string `json:"image_ref,omitempty"`
	CatalogID   string `json:"catalog_id"`
	CatalogName string `json:"catalog_name,omitempty"`
}

type cartView struct {
	Lines     []cartLineView `json:"lines"`
	Subtotal  string         `json:"subtotal"`
	Shipping  string         `json:"shipping"`
	Total     string         `json:"total"`
	ItemCount int            `json:"item_count"`
	State     cart.State     `json:"state"`
	Currency  string         `json:"currency"`
}

func newCartView(s cart.Snapshot, currency string) cartView {
	lines := make([]cartLineView, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, cartLineView{
			ItemID:      l.ItemID,
			Name:        l.Name,
			UnitPrice:   amount(l.UnitPrice),
			Quantity:    l.Quantity,
			LineTotal:   amount(l.LineTotal()),
			ImageRef:    l.ImageRef,
			CatalogID:   l.CatalogID,
			CatalogName: l.CatalogName,
		})
	}
	return cartView{
		Lines:     lines,
		Subtotal:  amount(s.Subtotal),
		Shipping:  amount(s.Shipping),
		Total:     amount(s.Total),
		ItemCount: s.ItemCount,
		State:     s.State,
		Currency:  currency,
	}
}

type orderLineView struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type orderView struct {
	ID            string              `json:"id"`
	Shipping      domain.ShippingInfo `json:"shipping"`
	PaymentMethod string              `json:"payment_method"`
	PaymentLabel  string              `json:"payment_label"`
	Lines         []orderLineView     `json:"lines"`
	Total         string              `json:"total"`
	ItemCount     int                 `json:"item_count"`
	CatalogName   string              `json:"catalog_name,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	Currency      string              `json:"currency"`
}

func newOrderView(o *domain.Order, currency string) orderView {
	lines := make([]orderLineView, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, orderLineView{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: amount(l.UnitPrice),
			LineTotal: amount(l.LineTotal),
		})
	}
	return orderView{
		ID:            o.ID,
		Shipping:      o.Shipping,
		PaymentMethod: string(o.PaymentMethod),
		PaymentLabel:  o.PaymentMethod.Label(),
		Lines:         lines,
		Total:         amount(o.Total),
		ItemCount:     o.ItemCount(),
		CatalogName:   o.CatalogName,
		CreatedAt:     o.CreatedAt,
		Currency:      currency,
	}
}
