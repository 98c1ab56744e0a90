package export

import (
	"bytes"
	"fmt"
	"time"
)

// Service picks the exporter for a format
type Service struct {
	exporters map[ExportFormat]Exporter
}

// NewService creates a new export service
func NewService() *Service {
	return &Service{
		exporters: map[ExportFormat]Exporter{
			FormatCSV:   NewCSVExporter(),
			FormatExcel: NewExcelExporter(),
			FormatPDF:   NewPDFExporter(),
		},
	}
}

// File is a rendered export ready to be downloaded
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// Export renders table in the given format. The file name is
// <prefix>_YYYY-MM-DD<ext>, dated with on.
func (s *Service) Export(table *Table, format ExportFormat, prefix string, on time.Time) (*File, error) {
	exporter, ok := s.exporters[format]
	if !ok {
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}

	var buf bytes.Buffer
	if err := exporter.Export(table, &buf); err != nil {
		return nil, fmt.Errorf("%s export failed: %w", format, err)
	}

	return &File{
		Name:        prefix + "_" + on.Format("2006-01-02") + exporter.GetFileExtension(),
		ContentType: exporter.GetContentType(),
		Body:        buf.Bytes(),
	}, nil
}
