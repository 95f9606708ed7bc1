package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report"
)

func sampleReports() []*report.DailyReport {
	return []*report.DailyReport{
		{
			Date: time.Date(2024, 10, 3, 0, 0, 0, 0, time.UTC), Category: "水果", Source: "產地",
			Products: []report.ProductRecord{
				{ProductName: "香蕉", AveragePrice: 11.1},
				{ProductName: "鳳梨", AveragePrice: 20.5},
			},
		},
		{
			Date: time.Date(2024, 10, 3, 0, 0, 0, 0, time.UTC), Category: "魚類", Source: "批發",
			Products: []report.ProductRecord{{ProductName: "白鯧", AveragePrice: 420}},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"csv", FormatCSV},
		{" CSV ", FormatCSV},
		{"xlsx", FormatXLSX},
		{"excel", FormatXLSX},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleReports()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "date,category,source,product_name,average_price", lines[0])
	assert.Equal(t, "2024-10-03,水果,產地,香蕉,11.1", lines[1])

	var rows []*Row
	require.NoError(t, gocsv.UnmarshalBytes(buf.Bytes(), &rows))
	assert.Equal(t, Rows(sampleReports()), rows)
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "date,category,source,product_name,average_price\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sampleReports()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, header, rows[0])
	assert.Equal(t, []string{"2024-10-03", "魚類", "批發", "白鯧", "420"}, rows[3])
}
