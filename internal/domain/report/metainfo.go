package report

import (
	"sync"
	"time"
)

// rocEpochOffset converts a Gregorian year to a Republic of China year.
const rocEpochOffset = 1911

// MetaInfo identifies the bulletin expected for a publication date and
// product type. It is immutable; use WithDate to look at another date.
type MetaInfo struct {
	date        time.Time
	productType ProductType
	holidays    HolidaySet
	rocYear     int

	filenameOnce sync.Once
	filename     string
}

// Resolve builds the MetaInfo for a publication date.
func Resolve(date time.Time, productType ProductType, holidays HolidaySet) *MetaInfo {
	d := Day(date)
	return &MetaInfo{
		date:        d,
		productType: productType,
		holidays:    holidays,
		rocYear:     d.Year() - rocEpochOffset,
	}
}

// WithDate returns a new MetaInfo for date with the same product and holidays.
func (m *MetaInfo) WithDate(date time.Time) *MetaInfo {
	return Resolve(date, m.productType, m.holidays)
}

// Date is the publication date of the bulletin.
func (m *MetaInfo) Date() time.Time { return m.date }

// ProductType is the commodity the bulletin covers.
func (m *MetaInfo) ProductType() ProductType { return m.productType }

// Holidays is the holiday calendar used for the resolution.
func (m *MetaInfo) Holidays() HolidaySet { return m.holidays }

// ROCYear is the publication year in the Republic of China calendar.
func (m *MetaInfo) ROCYear() int { return m.rocYear }

// Family is the report family of the product type.
func (m *MetaInfo) Family() Family { return FamilyOf(m.productType) }

// CalculatedReportDate returns the trading day whose prices the bulletin
// reflects. A Monday bulletin reflects the preceding Saturday, any other day
// reflects the day before. ok is false when that day, or a day between it
// and the publication date, is a holiday: no bulletin is expected then.
func (m *MetaInfo) CalculatedReportDate() (time.Time, bool) {
	return calculatedReportDate(m.date, m.holidays)
}

func calculatedReportDate(date time.Time, holidays HolidaySet) (time.Time, bool) {
	reflected := reflectedDay(date)
	for d := reflected; d.Before(date); d = d.AddDate(0, 0, 1) {
		if holidays.Contains(d) {
			return time.Time{}, false
		}
	}
	return reflected, true
}

// reflectedDay is the day whose prices a bulletin published on date carries.
func reflectedDay(date time.Time) time.Time {
	if WeekDayOf(date) == Monday {
		return date.AddDate(0, 0, -2)
	}
	return date.AddDate(0, 0, -1)
}

// Filename is the expected bulletin filename, or "" when no bulletin exists
// for the date or the product type has no report family. The value is
// computed once per instance.
func (m *MetaInfo) Filename() string {
	m.filenameOnce.Do(func() {
		m.filename = m.computeFilename()
	})
	return m.filename
}

func (m *MetaInfo) computeFilename() string {
	if _, ok := m.CalculatedReportDate(); !ok {
		return ""
	}
	return m.Family().Render(m.rocYear, int(m.date.Month()), m.date.Day())
}
