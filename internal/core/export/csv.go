package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const utf8BOM = "\ufeff"

// CSVExporter writes a BOM-prefixed UTF-8 CSV. The header line is plain,
// every data value is quoted. Embedded quotes are doubled and line breaks are
// written as a literal \n so every record stays on one line.
type CSVExporter struct {
	escaper *strings.Replacer
}

// NewCSVExporter creates a new CSV exporter
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{
		escaper: strings.NewReplacer(`"`, `""`, "\r\n", `\n`, "\n", `\n`, "\r", `\n`),
	}
}

// Export writes the table as CSV
func (e *CSVExporter) Export(table *Table, writer io.Writer) error {
	w := bufio.NewWriter(writer)

	if _, err := w.WriteString(utf8BOM); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	if _, err := w.WriteString(strings.Join(table.Headers, ",")); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	for _, row := range table.Rows {
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
		if err := e.writeRecord(w, row); err != nil {
			return err
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

func (e *CSVExporter) writeRecord(w *bufio.Writer, values []string) error {
	for i, v := range values {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return fmt.Errorf("failed to write CSV: %w", err)
			}
		}
		if _, err := w.WriteString(`"` + e.escaper.Replace(v) + `"`); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
	}
	return nil
}

// GetContentType returns the MIME type for CSV files
func (e *CSVExporter) GetContentType() string {
	return "text/csv;charset=utf-8"
}

// GetFileExtension returns the file extension for CSV files
func (e *CSVExporter) GetFileExtension() string {
	return ".csv"
}
