package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// testHolidays holds the 2024 Moon Festival plus unrelated days.
func testHolidays() HolidaySet {
	return NewHolidaySet(
		day(2024, 1, 1),
		day(2024, 9, 17),
		day(2024, 10, 10),
	)
}

func TestResolve(t *testing.T) {
	date := day(2024, 10, 3)
	meta := Resolve(date, ProductTypeFruit, testHolidays())

	assert.Equal(t, 113, meta.ROCYear())
	assert.Equal(t, date, meta.Date())
	assert.Equal(t, ProductTypeFruit, meta.ProductType())
	assert.Equal(t, FamilyFruit, meta.Family())
}

func TestResolve_TruncatesClock(t *testing.T) {
	taipei := time.FixedZone("CST", 8*3600)
	meta := Resolve(time.Date(2024, 10, 3, 23, 30, 0, 0, taipei), ProductTypeFruit, HolidaySet{})

	assert.Equal(t, day(2024, 10, 3), meta.Date())
}

func TestMetaInfo_CalculatedReportDate(t *testing.T) {
	holidays := testHolidays()

	t.Run("tuesday reflects monday", func(t *testing.T) {
		date := day(2024, 10, 1)
		got, ok := Resolve(date, ProductTypeFruit, holidays).CalculatedReportDate()

		require.True(t, ok)
		assert.Equal(t, date.AddDate(0, 0, -1), got)
	})

	t.Run("monday reflects saturday", func(t *testing.T) {
		date := day(2024, 9, 30)
		got, ok := Resolve(date, ProductTypeFruit, holidays).CalculatedReportDate()

		require.True(t, ok)
		assert.Equal(t, date.AddDate(0, 0, -2), got)
		assert.Equal(t, Saturday, WeekDayOf(got))
	})

	t.Run("day after moon festival has no report", func(t *testing.T) {
		_, ok := Resolve(day(2024, 9, 18), ProductTypeFruit, holidays).CalculatedReportDate()

		assert.False(t, ok)
	})

	t.Run("holiday sunday before a monday has no report", func(t *testing.T) {
		date := day(2024, 9, 30)
		_, ok := Resolve(date, ProductTypeFruit, NewHolidaySet(day(2024, 9, 29))).CalculatedReportDate()

		assert.False(t, ok)
	})

	t.Run("weekdays reflect the previous day", func(t *testing.T) {
		for d := day(2024, 11, 5); d.Before(day(2024, 12, 31)); d = d.AddDate(0, 0, 1) {
			if WeekDayOf(d) == Monday {
				continue
			}
			got, ok := Resolve(d, ProductTypeFruit, HolidaySet{}).CalculatedReportDate()
			require.True(t, ok, d.Format(DateLayout))
			assert.Equal(t, d.AddDate(0, 0, -1), got, d.Format(DateLayout))
		}
	})

	t.Run("every monday reflects a saturday", func(t *testing.T) {
		for d := day(2024, 1, 1); d.Year() == 2024; d = d.AddDate(0, 0, 7) {
			got, ok := Resolve(d, ProductTypeFruit, HolidaySet{}).CalculatedReportDate()
			require.True(t, ok)
			assert.Equal(t, Saturday, WeekDayOf(got))
			assert.Equal(t, d.AddDate(0, 0, -2), got)
		}
	})
}

func TestMetaInfo_Filename(t *testing.T) {
	holidays := testHolidays()

	tests := []struct {
		name     string
		date     time.Time
		product  ProductType
		expected string
	}{
		{"fruit", day(2024, 10, 3), ProductTypeFruit, FamilyFruit.Render(113, 10, 3)},
		{"fish", day(2024, 9, 3), ProductTypeFish, FamilyFishery.Render(113, 9, 3)},
		{"shellfish shares the fishery template", day(2024, 9, 3), ProductTypeShellfish, FamilyFishery.Render(113, 9, 3)},
		{"previous day is holiday", day(2024, 9, 18), ProductTypeFish, ""},
		{"product without family", day(2024, 9, 3), ProductTypeFlower, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := Resolve(tt.date, tt.product, holidays)
			assert.Equal(t, tt.expected, meta.Filename())
		})
	}
}

func TestMetaInfo_FilenameTemplate(t *testing.T) {
	meta := Resolve(day(2024, 10, 3), ProductTypeFruit, HolidaySet{})

	assert.Equal(t, "113年10月03日重要水果產地價格日報.pdf", meta.Filename())
}

func TestMetaInfo_FilenameUsesPublicationDate(t *testing.T) {
	// Monday bulletins reflect Saturday but are named after the Monday.
	meta := Resolve(day(2024, 9, 30), ProductTypeFruit, HolidaySet{})

	assert.Equal(t, "113年09月30日重要水果產地價格日報.pdf", meta.Filename())
}

func TestMetaInfo_FilenameIsCached(t *testing.T) {
	meta := Resolve(day(2024, 10, 3), ProductTypeFruit, testHolidays())

	first := meta.Filename()
	second := meta.Filename()

	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestMetaInfo_WithDate(t *testing.T) {
	meta := Resolve(day(2024, 9, 3), ProductTypeFish, testHolidays())
	require.NotEmpty(t, meta.Filename())

	moved := meta.WithDate(day(2024, 9, 18))

	assert.Empty(t, moved.Filename())
	assert.Equal(t, FamilyFishery.Render(113, 9, 3), meta.Filename())
	assert.Equal(t, ProductTypeFish, moved.ProductType())
}

func TestFamilyOf(t *testing.T) {
	assert.Equal(t, FamilyFruit, FamilyOf(ProductTypeFruit))
	assert.Equal(t, FamilyFishery, FamilyOf(ProductTypeFish))
	assert.Equal(t, FamilyFishery, FamilyOf(ProductTypeShrimp))
	assert.Equal(t, FamilyUnsupported, FamilyOf(ProductTypeVegetable))
	assert.Equal(t, "", FamilyUnsupported.Render(113, 1, 1))
}

func TestHolidaySet(t *testing.T) {
	taipei := time.FixedZone("CST", 8*3600)
	set := NewHolidaySet(time.Date(2024, 9, 17, 8, 0, 0, 0, taipei), day(2024, 1, 1))

	assert.True(t, set.Contains(day(2024, 9, 17)))
	assert.False(t, set.Contains(day(2024, 9, 18)))
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []time.Time{day(2024, 1, 1), day(2024, 9, 17)}, set.Dates())

	var empty HolidaySet
	assert.False(t, empty.Contains(day(2024, 9, 17)))
	assert.True(t, empty.IsBusinessDay(day(2024, 10, 3)))
	assert.False(t, empty.IsBusinessDay(day(2024, 10, 5)))
}

func TestWeekDayOf(t *testing.T) {
	assert.Equal(t, Monday, WeekDayOf(day(2024, 9, 30)))
	assert.Equal(t, Thursday, WeekDayOf(day(2024, 10, 3)))
	assert.Equal(t, Sunday, WeekDayOf(day(2024, 10, 6)))
	assert.Equal(t, "Sunday", Sunday.String())
	assert.True(t, Saturday.IsWeekend())
	assert.False(t, Friday.IsWeekend())
}

func TestParseEnums(t *testing.T) {
	p, err := ParseProductType("水果")
	require.NoError(t, err)
	assert.Equal(t, ProductTypeFruit, p)

	_, err = ParseProductType("banana")
	assert.Error(t, err)

	f, err := ParseFileType("pdf")
	require.NoError(t, err)
	assert.Equal(t, FileTypePDF, f)

	_, err = ParseFileType("docx")
	assert.Error(t, err)
}
