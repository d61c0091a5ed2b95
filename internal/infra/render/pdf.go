// Package render produces the printable invoice artifact and writes it to
// the export folder.
package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/fatoora-app/fatoora/internal/domain"
)

// PDFRenderer renders an invoice as an A4 PDF.
type PDFRenderer struct{}

// NewPDFRenderer returns a ready renderer.
func NewPDFRenderer() *PDFRenderer { return &PDFRenderer{} }

// Render lays out the invoice: issuer block, bill-to block, the line-item
// table, totals, and the amount in words.
func (r *PDFRenderer) Render(inv domain.Invoice, client *domain.Client) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "TAX INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// Issuer
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 6, inv.Company.Name, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range []string{inv.Company.Address, inv.Company.CityCountry, inv.Company.Contact} {
		if line != "" {
			pdf.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
		}
	}
	pdf.CellFormat(0, 5, "TRN: "+inv.Company.TRN, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Invoice metadata
	pdf.SetFont("Helvetica", "", 10)
	meta := [][2]string{
		{"Invoice No", inv.InvoiceNo},
		{"Date", inv.Date},
		{"Due Date", inv.DueDate},
		{"Payment Mode", inv.PaymentMode},
		{"Currency", inv.Currency},
	}
	for _, kv := range meta {
		if kv[1] == "" {
			continue
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(35, 6, kv[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, kv[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Bill-to
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, "Bill To:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, inv.Client, "", 1, "L", false, 0, "")
	if client != nil {
		for _, line := range []string{client.Address, client.Phone} {
			if line != "" {
				pdf.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
			}
		}
	}
	pdf.Ln(4)

	// Line-item table
	widths := []float64{12, 45, 58, 22, 20, 23}
	headers := []string{"SL", "Service", "Description", "Amount", "VAT 5%", "Total"}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range inv.Items {
		pdf.CellFormat(widths[0], 6, fmt.Sprintf("%d", item.Sequence), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, item.Service, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprintf("%.2f", item.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.2f", item.VAT), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 6, fmt.Sprintf("%.2f", item.Total), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	// Totals
	labelW := widths[0] + widths[1] + widths[2] + widths[3]
	rows := [][2]string{
		{"Subtotal", fmt.Sprintf("%.2f", inv.Subtotal)},
		{"VAT Total", fmt.Sprintf("%.2f", inv.VATTotal)},
		{"Grand Total", fmt.Sprintf("%.2f", inv.GrandTotal)},
	}
	for i, row := range rows {
		style := ""
		if i == len(rows)-1 {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(labelW, 6, row[0], "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4]+widths[5], 6, row[1], "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Amount in words: "+inv.AmountInWords, "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return buf.Bytes(), nil
}
