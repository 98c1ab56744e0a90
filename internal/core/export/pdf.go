package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// maxPDFCell caps long values so a single chat message cannot span pages
const maxPDFCell = 400

// PDFExporter implements PDF export using gofpdf
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Export renders the table with wrapped cells and repeats the header on
// every page
func (p *PDFExporter) Export(table *Table, writer io.Writer) error {
	if len(table.Headers) == 0 {
		return fmt.Errorf("no headers provided")
	}

	orientation := "P"
	if table.Style.Orientation == "landscape" {
		orientation = "L"
	}
	pageSize := table.Style.PageSize
	if pageSize == "" {
		pageSize = "A4"
	}
	fontSize := table.Style.FontSize
	if fontSize == 0 {
		fontSize = 9
	}

	pdf := gofpdf.New(orientation, "mm", pageSize, "")
	// Core fonts are cp1252; translate UTF-8 so accents survive
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(false, 10)
	pdf.AddPage()

	if table.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 8, tr(table.Title), "", 1, "L", false, 0, "")
	}
	if !table.GeneratedAt.IsZero() {
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Generado: %s", table.GeneratedAt.Format("02-01-2006 15:04:05")), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}

	widths := p.columnWidths(pdf, table)
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	lineHeight := fontSize * 0.5

	drawHeader := func() {
		pdf.SetFont("Arial", "B", fontSize)
		r, g, b := hexToRGB(table.Style.HeaderBgColor)
		pdf.SetFillColor(r, g, b)
		pdf.SetTextColor(255, 255, 255)
		for i, h := range table.Headers {
			pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Arial", "", fontSize)
	}
	drawHeader()

	for rowIdx, row := range table.Rows {
		cells := make([]string, len(row))
		lines := 1
		for i, v := range row {
			if r := []rune(v); len(r) > maxPDFCell {
				v = string(r[:maxPDFCell]) + "..."
			}
			cells[i] = tr(v)
			if i < len(widths) {
				if n := len(pdf.SplitLines([]byte(cells[i]), widths[i]-2)); n > lines {
					lines = n
				}
			}
		}
		rowHeight := float64(lines) * lineHeight

		if pdf.GetY()+rowHeight > pageHeight-bottom {
			pdf.AddPage()
			drawHeader()
		}

		fill := false
		if table.Style.AlternateRows {
			color := table.Style.RowBgColor1
			if rowIdx%2 == 1 {
				color = table.Style.RowBgColor2
			}
			r, g, b := hexToRGB(color)
			pdf.SetFillColor(r, g, b)
			fill = true
		}

		startX, y := pdf.GetXY()
		x := startX
		for i, v := range cells {
			if i >= len(widths) {
				break
			}
			pdf.Rect(x, y, widths[i], rowHeight, rectStyle(fill))
			pdf.SetXY(x+1, y)
			pdf.MultiCell(widths[i]-2, lineHeight, v, "", "L", false)
			x += widths[i]
			pdf.SetXY(x, y)
		}
		pdf.SetXY(startX, y+rowHeight)
	}

	if err := pdf.Output(writer); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// GetContentType returns the MIME type for PDF files
func (p *PDFExporter) GetContentType() string {
	return "application/pdf"
}

// GetFileExtension returns the file extension for PDF files
func (p *PDFExporter) GetFileExtension() string {
	return ".pdf"
}

// columnWidths honours Style.ColumnWidths as relative weights, equal
// otherwise, scaled to the usable page width
func (p *PDFExporter) columnWidths(pdf *gofpdf.Fpdf, table *Table) []float64 {
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right

	weights := make([]float64, len(table.Headers))
	total := 0.0
	for i := range weights {
		w, ok := table.Style.ColumnWidths[i]
		if !ok || w <= 0 {
			w = 1
		}
		weights[i] = w
		total += w
	}
	for i := range weights {
		weights[i] = usable * weights[i] / total
	}
	return weights
}

func rectStyle(fill bool) string {
	if fill {
		return "FD"
	}
	return "D"
}

// hexToRGB converts hex color to RGB values
func hexToRGB(hex string) (int, int, int) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}

	// Default to white if invalid
	if len(hex) != 6 {
		return 255, 255, 255
	}

	var r, g, b int
	fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b)
	return r, g, b
}
