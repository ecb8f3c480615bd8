package infra

// pdf.go: order invoice rendering using go-pdf/fpdf.
// Generates an A4 document with:
//   - Business identity header (name, address, phone)
//   - Order number and localized creation timestamp
//   - Customer block and the three order dates
//   - Item table (product, category, quantity, unit price, subtotal)
//   - Bold total and optional observations
//
// The renderer is stateless: it returns the PDF bytes and never touches disk.

import (
	"bytes"
	"fmt"
	"time"

	"github.com/JoaquinAb/web-alquiler/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// NegocioInfo identifies the business on every invoice.
type NegocioInfo struct {
	Nombre    string
	Direccion string
	Telefono  string
	// Zona localizes the creation timestamp. nil means UTC.
	Zona *time.Location
}

// FacturaRenderer renders order invoices. Safe for concurrent use.
type FacturaRenderer struct {
	info NegocioInfo
}

func NewFacturaRenderer(info NegocioInfo) *FacturaRenderer {
	if info.Zona == nil {
		info.Zona = time.UTC
	}
	return &FacturaRenderer{info: info}
}

// FormatoMoneda prints an amount the way invoices show it: "$1234.50".
func FormatoMoneda(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// RenderPedido builds the invoice for p. Items are expected to have Producto preloaded.
func (r *FacturaRenderer) RenderPedido(p *model.Pedido) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle(fmt.Sprintf("Pedido %d", p.ID), true)
	pdf.AddPage()

	// Core fonts are cp1252; translate accents (Categoría, Devolución).
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentW, 9, tr(r.info.Nombre), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(128, 128, 128)
	if r.info.Direccion != "" {
		pdf.CellFormat(contentW, 5, tr("Dir: "+r.info.Direccion), "", 1, "C", false, 0, "")
	}
	if r.info.Telefono != "" {
		pdf.CellFormat(contentW, 5, tr("Tel: "+r.info.Telefono), "", 1, "C", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(3)

	// ── Separator ────────────────────────────────────────────────────────────
	pdf.SetDrawColor(211, 211, 211)
	pdf.Line(left, pdf.GetY(), pageW-right, pdf.GetY())
	pdf.Ln(5)

	// ── Order info ───────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, fmt.Sprintf("Pedido # %d", p.ID), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	creado := p.CreatedAt.In(r.info.Zona).Format("02/01/2006 15:04")
	pdf.CellFormat(contentW, 5, "Fecha: "+creado, "", 1, "L", false, 0, "")

	// ── Customer ─────────────────────────────────────────────────────────────
	seccion(pdf, tr, contentW, "Datos del Cliente:")
	campo(pdf, tr, "Nombre:", p.ClienteNombre)
	if p.ClienteTelefono != "" {
		campo(pdf, tr, "Teléfono:", p.ClienteTelefono)
	}
	if p.ClienteDireccion != "" {
		campo(pdf, tr, "Dirección:", p.ClienteDireccion)
	}

	// ── Dates ────────────────────────────────────────────────────────────────
	seccion(pdf, tr, contentW, "Fechas:")
	campo(pdf, tr, "Fecha del evento:", p.FechaEvento.Format("02/01/2006"))
	campo(pdf, tr, "Entrega:", p.FechaEntrega.Format("02/01/2006"))
	campo(pdf, tr, "Devolución:", p.FechaDevolucion.Format("02/01/2006"))

	// ── Items ────────────────────────────────────────────────────────────────
	seccion(pdf, tr, contentW, "Productos Alquilados:")

	widths := []float64{contentW * 0.34, contentW * 0.20, contentW * 0.14, contentW * 0.16, contentW * 0.16}
	headers := []string{"Producto", "Categoría", "Cantidad", "Precio Unit.", "Subtotal"}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(44, 62, 80)
	pdf.SetTextColor(245, 245, 245)
	pdf.SetDrawColor(128, 128, 128)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for n, item := range p.Items {
		if n%2 == 1 {
			pdf.SetFillColor(248, 249, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		nombre, categoria := "", ""
		if item.Producto != nil {
			nombre = item.Producto.Nombre
			categoria = item.Producto.Categoria.Label()
		}
		unitario := "-"
		if item.PrecioUnitario.Valid {
			unitario = FormatoMoneda(item.PrecioUnitario.Decimal)
		}
		pdf.CellFormat(widths[0], 7, recortar(pdf, tr(nombre), widths[0]-2), "1", 0, "L", true, 0, "")
		pdf.CellFormat(widths[1], 7, recortar(pdf, tr(categoria), widths[1]-2), "1", 0, "L", true, 0, "")
		pdf.CellFormat(widths[2], 7, fmt.Sprintf("%d", item.Cantidad), "1", 0, "C", true, 0, "")
		pdf.CellFormat(widths[3], 7, unitario, "1", 0, "R", true, 0, "")
		pdf.CellFormat(widths[4], 7, FormatoMoneda(item.Subtotal()), "1", 1, "R", true, 0, "")
	}

	// ── Total ────────────────────────────────────────────────────────────────
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "TOTAL: "+FormatoMoneda(p.Total()), "", 1, "R", false, 0, "")

	// ── Observations ─────────────────────────────────────────────────────────
	if p.Observaciones != "" {
		seccion(pdf, tr, contentW, "Observaciones")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(contentW, 5, tr(p.Observaciones), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render pedido %d: %w", p.ID, err)
	}
	return buf.Bytes(), nil
}

func seccion(pdf *fpdf.Fpdf, tr func(string) string, w float64, titulo string) {
	pdf.Ln(5)
	pdf.SetFont("Helvetica", "BU", 12)
	pdf.CellFormat(w, 7, tr(titulo), "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func campo(pdf *fpdf.Fpdf, tr func(string) string, etiqueta, valor string) {
	pdf.SetFont("Helvetica", "B", 11)
	lw := pdf.GetStringWidth(tr(etiqueta)) + 2
	pdf.CellFormat(lw, 6, tr(etiqueta), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr(valor), "", 1, "L", false, 0, "")
}

// recortar shortens s with "..." until it fits in w.
func recortar(pdf *fpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	b := []byte(s) // already cp1252, one byte per glyph
	for len(b) > 0 && pdf.GetStringWidth(string(b)+"...") > w {
		b = b[:len(b)-1]
	}
	return string(b) + "..."
}
