package report

import (
	"sort"
	"strconv"
	"time"
)

// DateLayout is the ISO calendar date layout used across the service.
const DateLayout = "2006-01-02"

// Day truncates t to its calendar date in UTC, dropping clock and zone.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses an ISO date (YYYY-MM-DD).
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// MonthDay formats t as an unpadded "M/D" column label (e.g. "9/28").
func MonthDay(t time.Time) string {
	return strconv.Itoa(int(t.Month())) + "/" + strconv.Itoa(t.Day())
}

// HolidaySet is a set of non-business days beyond ordinary weekends.
// The zero value is an empty set.
type HolidaySet struct {
	days map[time.Time]struct{}
}

// NewHolidaySet builds a set from dates; clock and zone are ignored.
func NewHolidaySet(dates ...time.Time) HolidaySet {
	s := HolidaySet{days: make(map[time.Time]struct{}, len(dates))}
	for _, d := range dates {
		s.days[Day(d)] = struct{}{}
	}
	return s
}

// Contains reports whether t's calendar date is a holiday.
func (s HolidaySet) Contains(t time.Time) bool {
	if s.days == nil {
		return false
	}
	_, ok := s.days[Day(t)]
	return ok
}

// Len returns the number of holidays in the set.
func (s HolidaySet) Len() int { return len(s.days) }

// Dates returns the holidays in chronological order.
func (s HolidaySet) Dates() []time.Time {
	out := make([]time.Time, 0, len(s.days))
	for d := range s.days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// IsBusinessDay reports whether t is neither a weekend nor a holiday.
func (s HolidaySet) IsBusinessDay(t time.Time) bool {
	return !WeekDayOf(t).IsWeekend() && !s.Contains(t)
}
