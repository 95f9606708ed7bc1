// Package export writes daily reports as flat spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const sheetName = "daily_reports"

// ParseFormat maps a name to a Format
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType is the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Row is one product price of one report
type Row struct {
	Date         string  `csv:"date"`
	Category     string  `csv:"category"`
	Source       string  `csv:"source"`
	ProductName  string  `csv:"product_name"`
	AveragePrice float64 `csv:"average_price"`
}

var header = []string{"date", "category", "source", "product_name", "average_price"}

// Rows flattens reports into rows, report order preserved
func Rows(reports []*report.DailyReport) []*Row {
	var rows []*Row
	for _, dr := range reports {
		for _, p := range dr.Products {
			rows = append(rows, &Row{
				Date:         dr.Date.Format(report.DateLayout),
				Category:     dr.Category,
				Source:       dr.Source,
				ProductName:  p.ProductName,
				AveragePrice: p.AveragePrice,
			})
		}
	}
	return rows
}

// Write writes reports to w in format
func Write(w io.Writer, format Format, reports []*report.DailyReport) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, reports)
	case FormatXLSX:
		return WriteXLSX(w, reports)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// WriteCSV writes reports as CSV with a header row
func WriteCSV(w io.Writer, reports []*report.DailyReport) error {
	rows := Rows(reports)
	if len(rows) == 0 {
		_, err := io.WriteString(w, strings.Join(header, ",")+"\n")
		return err
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes reports as a single-sheet workbook
func WriteXLSX(w io.Writer, reports []*report.DailyReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := sw.SetRow("A1", cells); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range Rows(reports) {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, []any{r.Date, r.Category, r.Source, r.ProductName, r.AveragePrice}); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
