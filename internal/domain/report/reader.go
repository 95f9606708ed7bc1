package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report/table"
	"github.com/FACorreiaa/afa-daily-reports/pkg/storage"
)

// Longest run of consecutive holidays folded into one bulletin's columns.
const maxHolidayRun = 7

// layout is the per-family business-day rule and table shape.
type layout struct {
	supplyType       SupplyType
	category         Category
	label            string
	prevDayIsHoliday func(date time.Time, holidays HolidaySet) bool
	columnDays       func(date time.Time, holidays HolidaySet) []time.Time
}

var layouts = map[Family]layout{
	FamilyFruit: {
		supplyType:       SupplyTypeOrigin,
		category:         CategoryAgriculture,
		label:            "產品別",
		prevDayIsHoliday: closedBefore,
		columnDays:       fruitColumnDays,
	},
	FamilyFishery: {
		supplyType:       SupplyTypeWholesale,
		category:         CategoryFishery,
		label:            "品名",
		prevDayIsHoliday: closedBefore,
		columnDays:       fishColumnDays,
	},
	FamilyUnsupported: {
		supplyType: SupplyTypeOrigin,
		category:   CategoryAgriculture,
		label:      "產品別",
		prevDayIsHoliday: func(date time.Time, holidays HolidaySet) bool {
			return !holidays.IsBusinessDay(date.AddDate(0, 0, -1))
		},
		columnDays: func(date time.Time, _ HolidaySet) []time.Time {
			return []time.Time{date.AddDate(0, 0, -1)}
		},
	},
}

// closedBefore reports whether the bulletin of date follows a closed day:
// date or the day before it falls on a weekend, or the day before is a holiday.
func closedBefore(date time.Time, holidays HolidaySet) bool {
	prev := date.AddDate(0, 0, -1)
	return WeekDayOf(date).IsWeekend() || WeekDayOf(prev).IsWeekend() || holidays.Contains(prev)
}

// fruitColumnDays returns the trading days a fruit bulletin covers. A
// Tuesday bulletin covers the three days before it; others cover the
// calculated report day. Holidays right before the window come first.
func fruitColumnDays(date time.Time, holidays HolidaySet) []time.Time {
	var window []time.Time
	switch WeekDayOf(date) {
	case Tuesday:
		window = []time.Time{date.AddDate(0, 0, -3), date.AddDate(0, 0, -2), date.AddDate(0, 0, -1)}
	default:
		window = []time.Time{reflectedDay(date)}
	}
	return append(precedingHolidays(window[0], holidays), window...)
}

// fishColumnDays returns the calculated report day, after any holidays
// right before it. Fishery bulletins never widen on Tuesdays.
func fishColumnDays(date time.Time, holidays HolidaySet) []time.Time {
	reflected := reflectedDay(date)
	return append(precedingHolidays(reflected, holidays), reflected)
}

// precedingHolidays returns the contiguous holidays immediately before day,
// oldest first.
func precedingHolidays(day time.Time, holidays HolidaySet) []time.Time {
	var run []time.Time
	for d := day.AddDate(0, 0, -1); holidays.Contains(d) && len(run) < maxHolidayRun; d = d.AddDate(0, 0, -1) {
		run = append([]time.Time{d}, run...)
	}
	return run
}

// Reader extracts product prices from one bulletin. The family of the
// product type selects its layout.
type Reader struct {
	meta     *MetaInfo
	family   Family
	layout   layout
	fileType FileType
	source   table.Source
	logger   *slog.Logger
}

func newReader(meta *MetaInfo, fileType FileType, source table.Source, logger *slog.Logger) *Reader {
	family := meta.Family()
	return &Reader{
		meta:     meta,
		family:   family,
		layout:   layouts[family],
		fileType: fileType,
		source:   source,
		logger:   logger,
	}
}

// Family is the report family whose layout the reader applies.
func (r *Reader) Family() Family { return r.family }

// SupplyType is the market stage of the bulletin.
func (r *Reader) SupplyType() SupplyType { return r.layout.supplyType }

// Category is the domain of the bulletin.
func (r *Reader) Category() Category { return r.layout.category }

// FileType is the document format the reader opens.
func (r *Reader) FileType() FileType { return r.fileType }

// Meta is the resolved bulletin identity.
func (r *Reader) Meta() *MetaInfo { return r.meta }

// ProductLabel is the header of the product name column.
func (r *Reader) ProductLabel() string { return r.layout.label }

// PrevDayIsHoliday reports whether the day before the publication date was
// not a trading day for this family.
func (r *Reader) PrevDayIsHoliday() bool {
	return r.layout.prevDayIsHoliday(r.meta.Date(), r.meta.Holidays())
}

// SelectedColumns lists the product label followed by one "M/D" label per
// trading day the bulletin covers, in chronological order.
func (r *Reader) SelectedColumns() []string {
	days := r.layout.columnDays(r.meta.Date(), r.meta.Holidays())
	cols := make([]string, 0, len(days)+1)
	cols = append(cols, r.layout.label)
	for _, d := range days {
		cols = append(cols, MonthDay(d))
	}
	return cols
}

// Extract reads the bulletin named by the resolved filename.
func (r *Reader) Extract(ctx context.Context) ([]ProductRecord, error) {
	return r.ExtractFile(ctx, r.meta.Filename())
}

// ExtractFile reads the price table of a stored bulletin. Rows without a
// name or a parseable price are dropped.
func (r *Reader) ExtractFile(ctx context.Context, name string) ([]ProductRecord, error) {
	tables, err := r.source.Tables(ctx, name, r.layout.label)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrDocument, err)
	}

	cols := r.SelectedColumns()
	t, idx, ok := findTable(tables, cols)
	if !ok {
		return nil, &TableShapeError{Filename: name, Columns: cols, Tables: len(tables)}
	}

	records, dropped := projectRows(t, idx)
	r.logger.Debug("report table extracted",
		slog.String("file", name),
		slog.Int("page", t.Page),
		slog.Int("records", len(records)),
		slog.Int("dropped", dropped),
	)
	return records, nil
}

// findTable returns the first table whose header holds every column, and
// the header index of each column.
func findTable(tables []table.Table, cols []string) (table.Table, []int, bool) {
	for _, t := range tables {
		idx := make([]int, len(cols))
		found := true
		for i, c := range cols {
			if idx[i] = t.Column(c); idx[i] < 0 {
				found = false
				break
			}
		}
		if found {
			return t, idx, true
		}
	}
	return table.Table{}, nil, false
}

// projectRows turns rows into records; idx[0] is the name column, the rest
// are price columns whose parseable values are averaged.
func projectRows(t table.Table, idx []int) ([]ProductRecord, int) {
	records := make([]ProductRecord, 0, len(t.Rows))
	dropped := 0
	for _, row := range t.Rows {
		name := CleanProductName(cellAt(row, idx[0]))
		if name == "" {
			dropped++
			continue
		}

		sum, n := decimal.Zero, 0
		for _, i := range idx[1:] {
			price, err := ParsePrice(cellAt(row, i))
			if err != nil {
				continue
			}
			sum = sum.Add(price)
			n++
		}
		if n == 0 {
			dropped++
			continue
		}

		records = append(records, ProductRecord{
			ProductName:  name,
			AveragePrice: sum.Div(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64(),
		})
	}
	return records, dropped
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// SupplyTypeOf is the market stage of the product type's bulletin.
func SupplyTypeOf(p ProductType) SupplyType {
	return layouts[FamilyOf(p)].supplyType
}
