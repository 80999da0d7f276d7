package infra

// pdf.go — invoice PDF generation using go-pdf/fpdf.
// Rendering happens in the background worker, never on the request path:
// the returned file is written to storagePath/factura_{comprobante}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/FrancoGarayBenitez/buensabor-backend-sub000/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerarFacturaPDF renders the invoice for a placed order and returns the
// absolute path of the generated file.
func GenerarFacturaPDF(factura *model.Factura, pedido *model.Pedido, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("factura_%s.pdf", factura.NumeroComprobante)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentW, 10, "El Buen Sabor", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Factura", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW/2, 6, "Comprobante "+factura.NumeroComprobante, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW/2, 6, factura.FechaComprobante.Format("02/01/2006"), "", 1, "R", false, 0, "")

	pdf.CellFormat(contentW, 6, fmt.Sprintf("Pedido N° %d", pedido.Numero), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 6, "Cliente: "+factura.ClienteNombre, "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 6, "Entrega: "+factura.DomicilioEntrega, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	// ── Item table ───────────────────────────────────────────────────────────
	col1 := contentW * 0.46 // article
	col2 := contentW * 0.12 // qty
	col3 := contentW * 0.21 // unit price
	col4 := contentW * 0.21 // subtotal

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 7, "Articulo", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 7, "P. Unit.", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 7, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, det := range pedido.Detalles {
		nombre := ""
		if det.Articulo != nil {
			nombre = det.Articulo.Denominacion
		}
		if len(nombre) > 38 {
			nombre = nombre[:37] + "…"
		}
		pdf.CellFormat(col1, 6, nombre, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, fmt.Sprintf("x%d", det.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, "$"+det.PrecioUnitario.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, "$"+det.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
		if det.LeyendaPromocion != "" {
			pdf.SetFont("Helvetica", "I", 8)
			pdf.CellFormat(contentW, 5, "    "+det.LeyendaPromocion, "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 9)
		}
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(col1+col2+col3, 6, "Subtotal:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, "$"+factura.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")

	if !factura.Descuento.IsZero() {
		pdf.CellFormat(col1+col2+col3, 6, "Descuento:", "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, "-$"+factura.Descuento.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if !factura.GastosEnvio.IsZero() {
		pdf.CellFormat(col1+col2+col3, 6, "Gastos de envio:", "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, "$"+factura.GastosEnvio.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(col1+col2+col3, 8, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 8, "$"+factura.Total.StringFixed(2), "", 1, "R", false, 0, "")

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(contentW, 5, "¡Gracias por su pedido!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
