// Package render produces the shopper-facing artifacts of a placed order:
// a PDF document and a messaging share link.
package render

import (
	"errors"
	"regexp"
	"strconv"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/money"
)

// ErrNoOrder is returned when there is no order to render.
var ErrNoOrder = errors.New("render: no order")

// Option configures a Renderer.
type Option func(*Renderer)

// WithCurrency sets the symbol prefixed to every amount.
func WithCurrency(symbol string) Option {
	return func(r *Renderer) { r.currency = symbol }
}

// WithShopName sets the title printed on documents.
func WithShopName(name string) Option {
	return func(r *Renderer) {
		if name != "" {
			r.shopName = name
		}
	}
}

// WithShareBaseURL sets the messaging deep-link base, e.g. https://wa.me/.
func WithShareBaseURL(base string) Option {
	return func(r *Renderer) {
		if base != "" {
			r.shareBase = base
		}
	}
}

// WithSharePhone sets the shop number the share link opens a chat with.
// Anything other than digits is dropped.
func WithSharePhone(phone string) Option {
	return func(r *Renderer) { r.sharePhone = nonDigits.ReplaceAllString(phone, "") }
}

// WithFonts replaces the embedded DejaVu Sans faces used in PDFs with
// TrueType fonts of the caller's choice, e.g. one covering CJK scripts.
// Nil arguments keep the default face.
func WithFonts(regular, bold []byte) Option {
	return func(r *Renderer) {
		if regular != nil {
			r.fontRegular = regular
		}
		if bold != nil {
			r.fontBold = bold
		}
	}
}

var nonDigits = regexp.MustCompile(`[^0-9]`)

// Renderer turns orders into documents. It never modifies the order and the
// same order always renders to the same output.
type Renderer struct {
	currency   string
	shopName   string
	shareBase  string
	sharePhone string

	fontRegular []byte
	fontBold    []byte
}

// New creates a Renderer with "$" amounts and wa.me links.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		currency:  "$",
		shopName:  "Storefront",
		shareBase: "https://wa.me/",

		fontRegular: defaultFontRegular,
		fontBold:    defaultFontBold,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TableRows returns the order table body as printed in the PDF: one row per
// line (name, quantity, unit price, line total) followed by the total row.
func (r *Renderer) TableRows(o *domain.Order) [][]string {
	if o == nil {
		return nil
	}
	rows := make([][]string, 0, len(o.Lines)+1)
	for _, l := range o.Lines {
		rows = append(rows, []string{
			l.Name,
			strconv.Itoa(l.Quantity),
			money.Format(r.currency, l.UnitPrice),
			money.Format(r.currency, l.LineTotal),
		})
	}
	return append(rows, []string{"Total", "", "", money.Format(r.currency, o.Total)})
}
