package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report/table"
	"github.com/FACorreiaa/afa-daily-reports/pkg/storage"
)

// fakeSource returns canned tables and records what it was asked for.
type fakeSource struct {
	tables []table.Table
	err    error
	calls  []string
}

func (f *fakeSource) Tables(ctx context.Context, name string, anchor string) ([]table.Table, error) {
	f.calls = append(f.calls, name)
	return f.tables, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestFactory(src table.Source) *ReaderFactory {
	return NewReaderFactory(src, testLogger())
}

func mustReader(t *testing.T, date time.Time, product ProductType) *Reader {
	t.Helper()
	r, err := newTestFactory(&fakeSource{}).GetReader(date, FileTypePDF, product, testHolidays())
	require.NoError(t, err)
	return r
}

func TestFruitReader(t *testing.T) {
	r := mustReader(t, day(2024, 10, 3), ProductTypeFruit)

	assert.Equal(t, FamilyFruit, r.Family())
	assert.Equal(t, SupplyTypeOrigin, r.SupplyType())
	assert.Equal(t, CategoryAgriculture, r.Category())
	assert.Equal(t, "產品別", r.ProductLabel())
}

func TestFishReader(t *testing.T) {
	r := mustReader(t, day(2024, 10, 3), ProductTypeFish)

	assert.Equal(t, FamilyFishery, r.Family())
	assert.Equal(t, SupplyTypeWholesale, r.SupplyType())
	assert.Equal(t, CategoryFishery, r.Category())
	assert.Equal(t, "品名", r.ProductLabel())
}

func TestFruitReader_PrevDayIsHoliday(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		expected bool
	}{
		{"thursday", day(2024, 10, 3), false},
		{"saturday", day(2024, 10, 5), true},
		{"sunday", day(2024, 10, 6), true},
		{"monday", day(2024, 10, 7), true},
		{"day after moon festival", day(2024, 9, 18), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustReader(t, tt.date, ProductTypeFruit)
			assert.Equal(t, tt.expected, r.PrevDayIsHoliday())
		})
	}
}

func TestSupplyTypeOf(t *testing.T) {
	assert.Equal(t, SupplyTypeOrigin, SupplyTypeOf(ProductTypeFruit))
	assert.Equal(t, SupplyTypeWholesale, SupplyTypeOf(ProductTypeShrimp))
	assert.Equal(t, SupplyTypeOrigin, SupplyTypeOf(ProductTypeFlower))
}

func TestFishReader_PrevDayIsHoliday(t *testing.T) {
	assert.False(t, mustReader(t, day(2024, 10, 3), ProductTypeFish).PrevDayIsHoliday())
	assert.True(t, mustReader(t, day(2024, 9, 18), ProductTypeFish).PrevDayIsHoliday())
	assert.True(t, mustReader(t, day(2024, 10, 11), ProductTypeFish).PrevDayIsHoliday())
}

func TestFishReader_Weekend(t *testing.T) {
	tests := []struct {
		name       string
		date       time.Time
		prevClosed bool
		reportDate time.Time
		columns    []string
	}{
		{"friday", day(2024, 10, 4), false, day(2024, 10, 3), []string{"品名", "10/3"}},
		{"saturday", day(2024, 10, 5), true, day(2024, 10, 4), []string{"品名", "10/4"}},
		{"sunday", day(2024, 10, 6), true, day(2024, 10, 5), []string{"品名", "10/5"}},
		{"monday", day(2024, 10, 7), true, day(2024, 10, 5), []string{"品名", "10/5"}},
		{"tuesday", day(2024, 10, 8), false, day(2024, 10, 7), []string{"品名", "10/7"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustReader(t, tt.date, ProductTypeFish)
			assert.Equal(t, tt.prevClosed, r.PrevDayIsHoliday())

			reportDate, ok := r.Meta().CalculatedReportDate()
			require.True(t, ok)
			assert.Equal(t, tt.reportDate, reportDate)
			assert.Equal(t, tt.columns, r.SelectedColumns())
			assert.Equal(t, MonthDay(reportDate), r.SelectedColumns()[len(tt.columns)-1])
		})
	}
}

func TestFruitReader_SelectedColumns(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		expected []string
	}{
		{"normal", day(2024, 10, 3), []string{"產品別", "10/2"}},
		{"tuesday", day(2024, 10, 1), []string{"產品別", "9/28", "9/29", "9/30"}},
		{"special holiday", day(2024, 9, 19), []string{"產品別", "9/17", "9/18"}},
		{"monday", day(2024, 9, 30), []string{"產品別", "9/28"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustReader(t, tt.date, ProductTypeFruit)
			assert.Equal(t, tt.expected, r.SelectedColumns())
		})
	}
}

func TestFruitReader_SelectedColumnsHolidayRun(t *testing.T) {
	// Lunar New Year 2024: Feb 8-14 off, bulletin resumes on Thursday Feb 15.
	var days []time.Time
	for d := day(2024, 2, 8); d.Before(day(2024, 2, 14)); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	r, err := newTestFactory(&fakeSource{}).GetReader(day(2024, 2, 15), FileTypePDF, ProductTypeFruit, NewHolidaySet(days...))
	require.NoError(t, err)

	assert.Equal(t, []string{"產品別", "2/8", "2/9", "2/10", "2/11", "2/12", "2/13", "2/14"}, r.SelectedColumns())
}

func TestFishReader_SelectedColumns(t *testing.T) {
	assert.Equal(t, []string{"品名", "9/17", "9/18"}, mustReader(t, day(2024, 9, 19), ProductTypeFish).SelectedColumns())
	assert.Equal(t, []string{"品名", "9/30"}, mustReader(t, day(2024, 10, 1), ProductTypeFish).SelectedColumns())
	assert.Equal(t, []string{"品名", "10/5"}, mustReader(t, day(2024, 10, 6), ProductTypeFish).SelectedColumns())
	assert.Equal(t, []string{"品名", "10/5"}, mustReader(t, day(2024, 10, 7), ProductTypeFish).SelectedColumns())
}

func TestReader_ExtractFile(t *testing.T) {
	t.Run("cleans names and prices", func(t *testing.T) {
		src := &fakeSource{tables: []table.Table{{
			Page:   1,
			Header: []string{"產品別", "產地", "10/2"},
			Rows: [][]string{
				{"香蕉\n產地價格監控", "平均", "11.1\n"},
			},
		}}}
		r, err := newTestFactory(src).GetReader(day(2024, 10, 3), FileTypePDF, ProductTypeFruit, testHolidays())
		require.NoError(t, err)

		result, err := r.ExtractFile(context.Background(), "test.pdf")

		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "香蕉", result[0].ProductName)
		assert.Equal(t, 11.1, result[0].AveragePrice)
		assert.Equal(t, []string{"test.pdf"}, src.calls)
	})

	t.Run("drops unparseable rows and keeps order", func(t *testing.T) {
		src := &fakeSource{tables: []table.Table{{
			Header: []string{"產品別", "產地", "10/2"},
			Rows: [][]string{
				{"香蕉", "平均", "11.1"},
				{"芒果-愛文", "平均", "-"},
				{"", "", "30.2"},
				{"鳳梨", "平均", " 1,020.5 \n"},
				{"木瓜※", "平均", "18"},
			},
		}}}
		r, err := newTestFactory(src).GetReader(day(2024, 10, 3), FileTypePDF, ProductTypeFruit, testHolidays())
		require.NoError(t, err)

		result, err := r.ExtractFile(context.Background(), "test.pdf")

		require.NoError(t, err)
		assert.Equal(t, []ProductRecord{
			{ProductName: "香蕉", AveragePrice: 11.1},
			{ProductName: "鳳梨", AveragePrice: 1020.5},
			{ProductName: "木瓜", AveragePrice: 18},
		}, result)
	})

	t.Run("averages the covered days", func(t *testing.T) {
		src := &fakeSource{tables: []table.Table{{
			Header: []string{"產品別", "產地", "9/28", "9/29", "9/30"},
			Rows: [][]string{
				{"香蕉", "平均", "10", "", "11"},
				{"芭樂", "平均", "20", "21", "22.5"},
			},
		}}}
		r, err := newTestFactory(src).GetReader(day(2024, 10, 1), FileTypePDF, ProductTypeFruit, testHolidays())
		require.NoError(t, err)

		result, err := r.ExtractFile(context.Background(), "test.pdf")

		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, 10.5, result[0].AveragePrice)
		assert.Equal(t, 21.17, result[1].AveragePrice)
	})

	t.Run("skips tables with another layout", func(t *testing.T) {
		src := &fakeSource{tables: []table.Table{
			{Header: []string{"產品別", "10/1"}, Rows: [][]string{{"香蕉", "9"}}},
			{Header: []string{"產品別", "10/2\n(三)"}, Rows: [][]string{{"香蕉", "11.1"}}},
		}}
		r, err := newTestFactory(src).GetReader(day(2024, 10, 3), FileTypePDF, ProductTypeFruit, testHolidays())
		require.NoError(t, err)

		result, err := r.ExtractFile(context.Background(), "test.pdf")

		require.NoError(t, err)
		assert.Equal(t, []ProductRecord{{ProductName: "香蕉", AveragePrice: 11.1}}, result)
	})

	t.Run("table shape mismatch", func(t *testing.T) {
		src := &fakeSource{tables: []table.Table{{Header: []string{"產品別", "10/1"}}}}
		r, err := newTestFactory(src).GetReader(day(2024, 10, 3), FileTypePDF, ProductTypeFruit, testHolidays())
		require.NoError(t, err)

		_, err = r.ExtractFile(context.Background(), "test.pdf")

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTableShape)
		var shapeErr *TableShapeError
		require.True(t, errors.As(err, &shapeErr))
		assert.Equal(t, []string{"產品別", "10/2"}, shapeErr.Columns)
		assert.Equal(t, 1, shapeErr.Tables)
	})

	t.Run("malformed document", func(t *testing.T) {
		src := &fakeSource{err: fmt.Errorf("%w: test.pdf: bad xref", table.ErrMalformed)}
		r, err := newTestFactory(src).GetReader(day(2024, 10, 3), FileTypePDF, ProductTypeFruit, testHolidays())
		require.NoError(t, err)

		_, err = r.ExtractFile(context.Background(), "test.pdf")

		assert.ErrorIs(t, err, ErrDocument)
		assert.ErrorIs(t, err, table.ErrMalformed)
	})

	t.Run("missing file", func(t *testing.T) {
		src := &fakeSource{err: fmt.Errorf("%w: test.pdf", storage.ErrNotFound)}
		r, err := newTestFactory(src).GetReader(day(2024, 10, 3), FileTypePDF, ProductTypeFruit, testHolidays())
		require.NoError(t, err)

		_, err = r.ExtractFile(context.Background(), "test.pdf")

		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.NotErrorIs(t, err, ErrDocument)
	})
}

func TestReader_ExtractUsesResolvedFilename(t *testing.T) {
	src := &fakeSource{tables: []table.Table{{
		Header: []string{"品名", "10/2"},
		Rows:   [][]string{{"白鯧", "420"}},
	}}}
	r, err := newTestFactory(src).GetReader(day(2024, 10, 3), FileTypePDF, ProductTypeFish, testHolidays())
	require.NoError(t, err)

	result, err := r.Extract(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []ProductRecord{{ProductName: "白鯧", AveragePrice: 420}}, result)
	assert.Equal(t, []string{FamilyFishery.Render(113, 10, 3)}, src.calls)
}
