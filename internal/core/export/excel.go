package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExcelExporter implements Excel export using excelize
type ExcelExporter struct {
	sheetName string
}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{
		sheetName: "Logs",
	}
}

// Export writes the table to a single sheet, header first
func (e *ExcelExporter) Export(table *Table, writer io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", e.sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := e.headerStyle(f, table.Style)
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	evenStyle, _ := e.rowStyle(f, table.Style, table.Style.RowBgColor1, false)
	oddStyle, _ := e.rowStyle(f, table.Style, table.Style.RowBgColor2, false)
	wrapEven, _ := e.rowStyle(f, table.Style, table.Style.RowBgColor1, true)
	wrapOdd, _ := e.rowStyle(f, table.Style, table.Style.RowBgColor2, true)

	for col := range table.Headers {
		if width, ok := table.Style.ColumnWidths[col]; ok {
			name, _ := excelize.ColumnNumberToName(col + 1)
			if err := f.SetColWidth(e.sheetName, name, name, width); err != nil {
				return fmt.Errorf("failed to set column width: %w", err)
			}
		}
	}

	header := make([]interface{}, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(e.sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(table.Headers), 1)
	f.SetCellStyle(e.sheetName, "A1", lastHeader, headerStyle)

	for r, row := range table.Rows {
		line := r + 2
		values := make([]interface{}, len(row))
		for c, v := range row {
			values[c] = v
		}
		first, _ := excelize.CoordinatesToCellName(1, line)
		if err := f.SetSheetRow(e.sheetName, first, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}

		odd := table.Style.AlternateRows && r%2 == 1
		for c := range row {
			style := evenStyle
			switch wrap := table.Style.WrapColumns[c]; {
			case odd && wrap:
				style = wrapOdd
			case odd:
				style = oddStyle
			case wrap:
				style = wrapEven
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, line)
			f.SetCellStyle(e.sheetName, cell, cell, style)
		}
	}

	if table.Style.FreezeHeader {
		if err := f.SetPanes(e.sheetName, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("failed to freeze header: %w", err)
		}
	}

	if table.Style.AutoFilter && len(table.Headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(table.Headers), len(table.Rows)+1)
		if err := f.AutoFilter(e.sheetName, "A1:"+last, nil); err != nil {
			return fmt.Errorf("failed to add filter: %w", err)
		}
	}

	if err := f.Write(writer); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

// GetContentType returns the MIME type for Excel files
func (e *ExcelExporter) GetContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// GetFileExtension returns the file extension for Excel files
func (e *ExcelExporter) GetFileExtension() string {
	return ".xlsx"
}

func (e *ExcelExporter) headerStyle(f *excelize.File, style ExportStyle) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Size:  style.FontSize,
			Color: "FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{stripHashFromColor(style.HeaderBgColor)},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
}

func (e *ExcelExporter) rowStyle(f *excelize.File, style ExportStyle, bgColor string, wrap bool) (int, error) {
	rowStyle := &excelize.Style{
		Font: &excelize.Font{
			Size: style.FontSize,
		},
		Alignment: &excelize.Alignment{
			Vertical: "top",
			WrapText: wrap,
		},
	}

	// Only add fill if bgColor is not white
	if bgColor != "" && bgColor != "#FFFFFF" {
		rowStyle.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{stripHashFromColor(bgColor)},
		}
	}

	return f.NewStyle(rowStyle)
}

// stripHashFromColor removes # from hex color codes
func stripHashFromColor(color string) string {
	if len(color) > 0 && color[0] == '#' {
		return color[1:]
	}
	return color
}
