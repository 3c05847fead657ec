package render

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/money"
	"github.com/utafrali/storefront/pkg/slug"
)

const (
	fontFamily = "Body"
	rowHeight  = 7.0
	labelWidth = 40.0
)

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	defaultFontRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	defaultFontBold []byte
)

// pdfText makes s printable by the embedded UTF-8 fonts, which address
// glyphs by 16-bit code point. Text in the Basic Multilingual Plane passes
// through unchanged; other runes and invalid bytes become U+FFFD.
func pdfText(s string) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	if !strings.ContainsFunc(s, func(r rune) bool { return r > 0xFFFF }) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return '\uFFFD'
		}
		return r
	}, s)
}

// column widths as a share of the printable width
var columnShares = [4]float64{0.52, 0.12, 0.18, 0.18}

var tableHeader = [4]string{"Item", "Qty", "Unit price", "Line total"}

var columnAlign = [4]string{"L", "R", "R", "R"}

// Filename returns the download name of the order PDF.
func Filename(o *domain.Order) string {
	return fmt.Sprintf("order-%s-%s.pdf",
		slug.Or(o.CatalogName, "catalog"),
		o.CreatedAt.UTC().Format("20060102-150405"))
}

// PDF writes the order document to w and returns its download filename.
func (r *Renderer) PDF(w io.Writer, o *domain.Order) (string, error) {
	if o == nil {
		return "", ErrNoOrder
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(o.CreatedAt)
	pdf.SetModificationDate(o.CreatedAt)
	pdf.SetAutoPageBreak(true, 15)

	pdf.AddUTF8FontFromBytes(fontFamily, "", r.fontRegular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", r.fontBold)
	pdf.SetFont(fontFamily, "B", 10)
	pdf.SetFont(fontFamily, "", 10)
	if err := pdf.Error(); err != nil {
		return "", fmt.Errorf("load pdf fonts: %w", err)
	}
	pdf.SetTitle(pdfText(r.shopName+" order "+o.ID), true)
	pdf.SetAuthor(pdfText(r.shopName), true)

	pdf.AddPage()
	r.writeTitle(pdf)
	r.writeCustomer(pdf, o)
	r.writeMeta(pdf, o)
	r.writeTable(pdf, o)

	if err := pdf.Output(w); err != nil {
		return "", fmt.Errorf("render order pdf: %w", err)
	}
	return Filename(o), nil
}

func (r *Renderer) writeTitle(pdf *fpdf.Fpdf) {
	pdf.SetFont(fontFamily, "B", 18)
	pdf.CellFormat(0, 12, pdfText(r.shopName), "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 11)
	pdf.CellFormat(0, 6, "Order summary", "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func (r *Renderer) writeCustomer(pdf *fpdf.Fpdf, o *domain.Order) {
	section(pdf, "Customer")
	field(pdf, "Name", o.Shipping.Name)
	field(pdf, "Address", o.Shipping.Address)
	field(pdf, "Phone", o.Shipping.Phone)
	field(pdf, "Email", o.Shipping.Email)
	pdf.Ln(4)
}

func (r *Renderer) writeMeta(pdf *fpdf.Fpdf, o *domain.Order) {
	section(pdf, "Order")
	field(pdf, "Reference", o.ID)
	field(pdf, "Date", o.CreatedAt.UTC().Format("2006-01-02 15:04 UTC"))
	field(pdf, "Payment", o.PaymentMethod.Label())
	field(pdf, "Total", money.Format(r.currency, o.Total))
	pdf.Ln(4)
}

// writeTable prints the line items. The header row is repeated at the top
// of every page the table spills onto.
func (r *Renderer) writeTable(pdf *fpdf.Fpdf, o *domain.Order) {
	pageW, pageH := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	_, bottom := pdf.GetAutoPageBreak()

	var widths [4]float64
	for i, share := range columnShares {
		widths[i] = (pageW - left - right) * share
	}

	header := func() {
		pdf.SetFont(fontFamily, "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range tableHeader {
			pdf.CellFormat(widths[i], rowHeight, h, "1", 0, columnAlign[i], true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(fontFamily, "", 10)
	}

	header()
	rows := r.TableRows(o)
	for n, row := range rows {
		if pdf.GetY()+rowHeight > pageH-bottom {
			pdf.AddPage()
			header()
		}
		if n == len(rows)-1 {
			pdf.SetFont(fontFamily, "B", 10)
		}
		for i, cell := range row {
			pdf.CellFormat(widths[i], rowHeight, pdfText(cell), "1", 0, columnAlign[i], false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont(fontFamily, "B", 12)
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
}

func field(pdf *fpdf.Fpdf, label, value string) {
	pdf.CellFormat(labelWidth, 6, label+":", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, pdfText(value), "", 1, "L", false, 0, "")
}
