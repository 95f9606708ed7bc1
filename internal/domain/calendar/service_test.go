package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	byYear      map[int][]Holiday
	err         error
	calls       []int
	invalidated []int
}

func (f *fakeFetcher) GetCleanedList(_ context.Context, year int) ([]Holiday, error) {
	f.calls = append(f.calls, year)
	if f.err != nil {
		return nil, f.err
	}
	return f.byYear[year], nil
}

func (f *fakeFetcher) Invalidate(year int) { f.invalidated = append(f.invalidated, year) }

type memRepository struct {
	byYear map[int][]Holiday
}

func (m *memRepository) ReplaceYear(_ context.Context, year int, holidays []Holiday) error {
	m.byYear[year] = holidays
	return nil
}

func (m *memRepository) ListByYears(_ context.Context, years []int) ([]Holiday, error) {
	var out []Holiday
	for _, y := range years {
		out = append(out, m.byYear[y]...)
	}
	return out, nil
}

func TestService_HolidaySet_FillsMissingYears(t *testing.T) {
	fetcher := &fakeFetcher{byYear: map[int][]Holiday{
		2024: {holiday(2024, 12, 31, "測試假日")},
	}}
	repo := &memRepository{byYear: map[int][]Holiday{
		2025: {holiday(2025, 1, 1, "開國紀念日")},
	}}
	svc := NewService(fetcher, repo, testLogger())

	set, err := svc.HolidaySet(context.Background(), 2024, 2025)
	require.NoError(t, err)

	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.True(t, set.Contains(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, []int{2024}, fetcher.calls)
	assert.Len(t, repo.byYear[2024], 1)
}

func TestService_Holidays_UsesStoredYear(t *testing.T) {
	fetcher := &fakeFetcher{}
	repo := &memRepository{byYear: map[int][]Holiday{
		2024: {holiday(2024, 10, 10, "國慶日")},
	}}
	svc := NewService(fetcher, repo, testLogger())

	got, err := svc.Holidays(context.Background(), 2024)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Empty(t, fetcher.calls)
}

func TestService_Refresh(t *testing.T) {
	t.Run("replaces stored year", func(t *testing.T) {
		fetcher := &fakeFetcher{byYear: map[int][]Holiday{2024: {holiday(2024, 10, 10, "國慶日")}}}
		repo := &memRepository{byYear: map[int][]Holiday{2024: {holiday(2024, 1, 1, "開國紀念日")}}}
		svc := NewService(fetcher, repo, testLogger())

		_, err := svc.Refresh(context.Background(), 2024)
		require.NoError(t, err)
		assert.Equal(t, []int{2024}, fetcher.invalidated)
		assert.Equal(t, "國慶日", repo.byYear[2024][0].Info.Name)
	})

	t.Run("keeps stored year when upstream is empty", func(t *testing.T) {
		fetcher := &fakeFetcher{byYear: map[int][]Holiday{}}
		repo := &memRepository{byYear: map[int][]Holiday{2024: {holiday(2024, 1, 1, "開國紀念日")}}}
		svc := NewService(fetcher, repo, testLogger())

		got, err := svc.Refresh(context.Background(), 2024)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Len(t, repo.byYear[2024], 1)
	})

	t.Run("upstream failure", func(t *testing.T) {
		fetcher := &fakeFetcher{err: ErrUpstream}
		svc := NewService(fetcher, &memRepository{byYear: map[int][]Holiday{}}, testLogger())

		_, err := svc.HolidaySet(context.Background(), 2024)
		assert.True(t, errors.Is(err, ErrUpstream))
	})
}

func TestYearsAround(t *testing.T) {
	assert.Equal(t, []int{2024}, YearsAround(time.Date(2024, 10, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, []int{2024, 2025}, YearsAround(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)))
}
