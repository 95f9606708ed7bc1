// Package calendar keeps the Taiwan government holiday calendar used to decide
// which days the market bulletins are not published.
package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report"
)

const (
	// DefaultURL is the New Taipei open-data government calendar dataset
	DefaultURL = "https://data.ntpc.gov.tw/api/datasets/308DCD75-6434-45BC-A95F-584DA4FED251/json"

	// DefaultPageSize covers a full year in one request
	DefaultPageSize = 1000

	cacheKeyFormat = "taiwan_calendar_%d"
)

// Days the dataset names that only some workers get off. Markets stay open.
var notHolidays = map[string]struct{}{
	"勞動節": {},
	"軍人節": {},
}

var ErrUpstream = errors.New("calendar upstream error")

// Holiday is a cleaned calendar entry
type Holiday struct {
	Date time.Time   `json:"date"`
	Info HolidayInfo `json:"info"`
}

type HolidayInfo struct {
	Name            string `json:"name"`
	HolidayCategory string `json:"holidaycategory"`
	Description     string `json:"description"`
}

// entry is one row of the upstream dataset. Weekend rows carry no name.
type entry struct {
	Date            string  `json:"date"`
	Year            string  `json:"year"`
	Name            *string `json:"name"`
	IsHoliday       string  `json:"isholiday"`
	HolidayCategory string  `json:"holidaycategory"`
	Description     string  `json:"description"`
}

// ClientConfig configures the calendar client
type ClientConfig struct {
	URL               string
	PageSize          int
	RequestsPerSecond int
	CacheTTL          time.Duration
	Timeout           time.Duration
}

// Client fetches the holiday calendar
type Client struct {
	baseURL  string
	pageSize int
	http     *http.Client
	limiter  *rate.Limiter
	cache    *cache.Cache
	logger   *slog.Logger
}

// NewClient creates a calendar client
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Client{
		baseURL:  cfg.URL,
		pageSize: cfg.PageSize,
		http:     &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		cache:    cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		logger:   logger,
	}
}

// GetCleanedList returns the holidays of a year, cached per year.
func (c *Client) GetCleanedList(ctx context.Context, year int) ([]Holiday, error) {
	key := fmt.Sprintf(cacheKeyFormat, year)
	if cached, ok := c.cache.Get(key); ok {
		return cached.([]Holiday), nil
	}

	entries, err := c.get(ctx, year)
	if err != nil {
		return nil, err
	}

	holidays := make([]Holiday, 0, len(entries))
	for _, e := range entries {
		h, ok := clean(e)
		if !ok {
			continue
		}
		holidays = append(holidays, h)
	}

	c.cache.SetDefault(key, holidays)
	c.logger.Info("calendar fetched",
		slog.Int("year", year),
		slog.Int("entries", len(entries)),
		slog.Int("holidays", len(holidays)),
	)
	return holidays, nil
}

// Invalidate drops the cached list for year
func (c *Client) Invalidate(year int) {
	c.cache.Delete(fmt.Sprintf(cacheKeyFormat, year))
}

func (c *Client) get(ctx context.Context, year int) ([]entry, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar url: %w", err)
	}
	q := u.Query()
	q.Set("year", strconv.Itoa(year))
	q.Set("size", strconv.Itoa(c.pageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var entries []entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", ErrUpstream, err)
	}
	return entries, nil
}

func clean(e entry) (Holiday, bool) {
	if e.Name == nil || strings.TrimSpace(*e.Name) == "" {
		return Holiday{}, false
	}
	name := strings.TrimSpace(*e.Name)
	if _, skip := notHolidays[name]; skip {
		return Holiday{}, false
	}
	if strings.TrimSpace(e.IsHoliday) == "否" {
		return Holiday{}, false
	}
	date, err := parseEntryDate(e.Date)
	if err != nil {
		return Holiday{}, false
	}
	return Holiday{
		Date: date,
		Info: HolidayInfo{
			Name:            name,
			HolidayCategory: e.HolidayCategory,
			Description:     e.Description,
		},
	}, true
}

func parseEntryDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"20060102", "2006/1/2", report.DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return report.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized calendar date %q", s)
}

// HolidaySetFor builds the holiday set for the bulletin of date straight from
// upstream. Used where no database is available.
func (c *Client) HolidaySetFor(ctx context.Context, date time.Time) (report.HolidaySet, error) {
	var dates []time.Time
	for _, year := range YearsAround(date) {
		holidays, err := c.GetCleanedList(ctx, year)
		if err != nil {
			return report.HolidaySet{}, err
		}
		for _, h := range holidays {
			dates = append(dates, h.Date)
		}
	}
	return report.NewHolidaySet(dates...), nil
}
