package render

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/money"
)

// ShareText is the plain-text order summary sent through the messaging
// link. It is empty for a nil order.
func (r *Renderer) ShareText(o *domain.Order) string {
	if o == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "New order from %s\n", r.shopName)
	fmt.Fprintf(&b, "Reference: %s\n", o.ID)
	fmt.Fprintf(&b, "Customer: %s\n", o.Shipping.Name)
	fmt.Fprintf(&b, "Address: %s\n", o.Shipping.Address)
	fmt.Fprintf(&b, "Phone: %s\n", o.Shipping.Phone)
	fmt.Fprintf(&b, "Email: %s\n\n", o.Shipping.Email)
	for _, l := range o.Lines {
		fmt.Fprintf(&b, "%d x %s @ %s = %s\n",
			l.Quantity, l.Name,
			money.Format(r.currency, l.UnitPrice),
			money.Format(r.currency, l.LineTotal))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", money.Format(r.currency, o.Total))
	fmt.Fprintf(&b, "Payment: %s", o.PaymentMethod.Label())
	return b.String()
}

// ShareLink returns the messaging deep link carrying ShareText, e.g.
// https://wa.me/15551234567?text=New%20order...
func (r *Renderer) ShareLink(o *domain.Order) (string, error) {
	if o == nil {
		return "", ErrNoOrder
	}
	return r.shareBase + r.sharePhone + "?text=" + encode(r.ShareText(o)), nil
}

// encode percent-encodes s for a query value, spaces as %20.
func encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
