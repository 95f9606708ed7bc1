package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanProductName(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"香蕉\n產地價格監控", "香蕉"},
		{"香蕉", "香蕉"},
		{"  芒果-愛文 \r\n備註", "芒果-愛文"},
		{"香蕉產地價格監控", "香蕉"},
		{"木瓜※", "木瓜"},
		{"鳳梨 (監控品項)", "鳳梨"},
		{"香蕉※產地價格監控", "香蕉"},
		{"※", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanProductName(tt.raw))
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"11.1\n", "11.1"},
		{" 18 ", "18"},
		{"1,020.5", "1020.5"},
		{"\t0.8\r\n", "0.8"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParsePrice(tt.raw)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(got))
		})
	}

	for _, raw := range []string{"", " \n", "-", "休市", "n/a"} {
		_, err := ParsePrice(raw)
		assert.Error(t, err, raw)
	}
}

func TestMonthDay(t *testing.T) {
	assert.Equal(t, "9/28", MonthDay(day(2024, 9, 28)))
	assert.Equal(t, "10/2", MonthDay(day(2024, 10, 2)))
	assert.Equal(t, "1/1", MonthDay(day(2025, 1, 1)))
}
