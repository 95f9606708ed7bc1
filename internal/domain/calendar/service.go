package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report"
)

// lookbackDays bounds how far before a bulletin date holidays can matter.
const lookbackDays = 14

// Fetcher is the upstream calendar source
type Fetcher interface {
	GetCleanedList(ctx context.Context, year int) ([]Holiday, error)
	Invalidate(year int)
}

// Service serves holidays from the database, filling missing years from upstream
type Service struct {
	client Fetcher
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new calendar service
func NewService(client Fetcher, repo Repository, logger *slog.Logger) *Service {
	return &Service{client: client, repo: repo, logger: logger}
}

// Holidays returns the holidays of year, fetching and storing them when the
// year has not been loaded yet.
func (s *Service) Holidays(ctx context.Context, year int) ([]Holiday, error) {
	stored, err := s.repo.ListByYears(ctx, []int{year})
	if err != nil {
		return nil, err
	}
	if len(stored) > 0 {
		return stored, nil
	}
	return s.Refresh(ctx, year)
}

// Refresh refetches year from upstream and replaces the stored copy.
func (s *Service) Refresh(ctx context.Context, year int) ([]Holiday, error) {
	s.client.Invalidate(year)
	holidays, err := s.client.GetCleanedList(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holidays of %d: %w", year, err)
	}
	if len(holidays) == 0 {
		s.logger.Warn("calendar has no holidays for year", slog.Int("year", year))
		return holidays, nil
	}
	if err := s.repo.ReplaceYear(ctx, year, holidays); err != nil {
		return nil, err
	}
	s.logger.Info("holidays refreshed",
		slog.Int("year", year),
		slog.Int("count", len(holidays)),
	)
	return holidays, nil
}

// HolidaySet returns the holidays of years as a set.
func (s *Service) HolidaySet(ctx context.Context, years ...int) (report.HolidaySet, error) {
	stored, err := s.repo.ListByYears(ctx, years)
	if err != nil {
		return report.HolidaySet{}, err
	}

	loaded := make(map[int]bool, len(years))
	dates := make([]time.Time, 0, len(stored))
	for _, h := range stored {
		loaded[h.Date.Year()] = true
		dates = append(dates, h.Date)
	}

	for _, year := range years {
		if loaded[year] {
			continue
		}
		fetched, err := s.Refresh(ctx, year)
		if err != nil {
			return report.HolidaySet{}, err
		}
		loaded[year] = true
		for _, h := range fetched {
			dates = append(dates, h.Date)
		}
	}
	return report.NewHolidaySet(dates...), nil
}

// HolidaySetFor returns the holidays that can affect the bulletin of date.
func (s *Service) HolidaySetFor(ctx context.Context, date time.Time) (report.HolidaySet, error) {
	return s.HolidaySet(ctx, YearsAround(date)...)
}

// YearsAround returns the calendar years spanned by date and its lookback.
func YearsAround(date time.Time) []int {
	years := []int{date.AddDate(0, 0, -lookbackDays).Year(), date.Year()}
	return slices.Compact(years)
}
