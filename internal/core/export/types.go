package export

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ExportFormat represents the export file format
type ExportFormat string

const (
	FormatCSV   ExportFormat = "csv"
	FormatExcel ExportFormat = "excel"
	FormatPDF   ExportFormat = "pdf"
)

// ParseFormat accepts csv, excel (or xlsx) and pdf. Empty means csv.
func ParseFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// Exporter is the interface for all export formats
type Exporter interface {
	Export(table *Table, writer io.Writer) error
	GetContentType() string
	GetFileExtension() string
}

// Table is the data handed to every exporter. Cells are already formatted.
type Table struct {
	Title       string
	GeneratedAt time.Time

	Headers []string
	Rows    [][]string

	Style ExportStyle
}

// ExportStyle defines styling options for exports
type ExportStyle struct {
	// PDF specific
	Orientation string // "portrait" or "landscape"
	PageSize    string

	HeaderBgColor string // Hex color
	AlternateRows bool
	RowBgColor1   string
	RowBgColor2   string
	FontSize      float64

	// Excel specific
	FreezeHeader bool
	AutoFilter   bool
	ColumnWidths map[int]float64 // Column index -> width
	WrapColumns  map[int]bool
}

// DefaultStyle returns default export styling
func DefaultStyle() ExportStyle {
	return ExportStyle{
		Orientation:   "landscape",
		PageSize:      "A4",
		HeaderBgColor: "#4472C4",
		AlternateRows: true,
		RowBgColor1:   "#FFFFFF",
		RowBgColor2:   "#F2F2F2",
		FontSize:      9,
		FreezeHeader:  true,
		AutoFilter:    true,
		ColumnWidths:  make(map[int]float64),
		WrapColumns:   make(map[int]bool),
	}
}
