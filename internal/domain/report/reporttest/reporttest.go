// Package reporttest provides fixtures for code built on the report package.
package reporttest

import (
	"context"
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report"
	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report/repository"
	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report/table"
	"github.com/FACorreiaa/afa-daily-reports/pkg/storage"
)

var (
	fruitNames = []string{"香蕉", "鳳梨", "芒果-愛文", "木瓜", "番石榴-珍珠芭", "蓮霧", "柳橙", "西瓜-大西瓜", "葡萄-巨峰", "椪柑"}
	fishNames  = []string{"白鯧", "吳郭魚", "虱目魚", "白帶魚", "鯖魚", "秋刀魚", "草蝦", "白蝦", "文蛤", "牡蠣"}
)

// Generator generates realistic bulletin data using gofakeit.
type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator creates a generator with a fixed seed for reproducibility.
func NewGenerator(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Products returns n records with distinct names of the product type's family.
func (g *Generator) Products(productType report.ProductType, n int) []report.ProductRecord {
	names := fruitNames
	if report.FamilyOf(productType) == report.FamilyFishery {
		names = fishNames
	}
	names = append([]string(nil), names...)
	g.faker.ShuffleStrings(names)
	if n > len(names) {
		n = len(names)
	}

	out := make([]report.ProductRecord, n)
	for i := range out {
		out[i] = report.ProductRecord{
			ProductName:  names[i],
			AveragePrice: math.Round(g.faker.Float64Range(5, 450)*10) / 10,
		}
	}
	return out
}

// DailyReport returns a stored-looking report for date.
func (g *Generator) DailyReport(date time.Time, productType report.ProductType, n int) *report.DailyReport {
	source := report.SupplyTypeOrigin
	if report.FamilyOf(productType) == report.FamilyFishery {
		source = report.SupplyTypeWholesale
	}
	created := report.Day(date).Add(10 * time.Hour)
	return &report.DailyReport{
		ID:        uuid.MustParse(g.faker.UUID()),
		Date:      report.Day(date),
		Category:  productType.String(),
		Source:    source.String(),
		Products:  g.Products(productType, n),
		CreatedAt: created,
	}
}

// BulletinTable lays records out the way a bulletin prints them: the
// product label column, a unit column, then one price column per selected
// date. Every date column carries the record's price.
func BulletinTable(columns []string, records []report.ProductRecord) table.Table {
	header := []string{columns[0], "單位"}
	header = append(header, columns[1:]...)

	t := table.Table{Page: 1, Header: header}
	for _, r := range records {
		row := []string{r.ProductName, "元/公斤"}
		for range columns[1:] {
			row = append(row, strconv.FormatFloat(r.AveragePrice, 'f', -1, 64))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Source is an in-memory table.Source keyed by bulletin filename.
type Source struct {
	mu     sync.Mutex
	tables map[string][]table.Table
	calls  []string
}

// NewSource creates an empty source
func NewSource() *Source {
	return &Source{tables: map[string][]table.Table{}}
}

// Add registers the tables of a bulletin
func (s *Source) Add(name string, tables ...table.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[name] = append(s.tables[name], tables...)
}

// Tables returns the registered tables, or storage.ErrNotFound
func (s *Source) Tables(_ context.Context, name string, _ string) ([]table.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
	tables, ok := s.tables[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return tables, nil
}

// Calls returns the requested filenames in order
func (s *Source) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Repository is an in-memory repository.DailyReportRepository.
type Repository struct {
	mu      sync.Mutex
	reports map[string]*report.DailyReport
	Err     error
}

// NewRepository creates an empty repository seeded with reports
func NewRepository(reports ...*report.DailyReport) *Repository {
	r := &Repository{reports: map[string]*report.DailyReport{}}
	for _, dr := range reports {
		r.reports[key(dr.Date, dr.Category, dr.Source)] = dr
	}
	return r
}

func key(date time.Time, category, source string) string {
	return report.Day(date).Format(report.DateLayout) + "|" + category + "|" + source
}

func (r *Repository) Upsert(_ context.Context, dr *report.DailyReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	k := key(dr.Date, dr.Category, dr.Source)
	if existing, ok := r.reports[k]; ok {
		dr.ID = existing.ID
		dr.CreatedAt = existing.CreatedAt
		now := time.Now()
		dr.UpdatedAt = &now
	} else {
		if dr.ID == uuid.Nil {
			dr.ID = uuid.New()
		}
		dr.CreatedAt = time.Now()
	}
	cp := *dr
	r.reports[k] = &cp
	return nil
}

func (r *Repository) Get(_ context.Context, date time.Time, category, source string) (*report.DailyReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	dr, ok := r.reports[key(date, category, source)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return dr, nil
}

func (r *Repository) List(_ context.Context, f repository.ListFilter) ([]*report.DailyReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	var out []*report.DailyReport
	for _, dr := range r.reports {
		if !f.From.IsZero() && dr.Date.Before(report.Day(f.From)) {
			continue
		}
		if !f.To.IsZero() && dr.Date.After(report.Day(f.To)) {
			continue
		}
		if f.Category != "" && dr.Category != f.Category {
			continue
		}
		if f.Source != "" && dr.Source != f.Source {
			continue
		}
		out = append(out, dr)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Category < out[j].Category
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Len returns the number of stored reports
func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}
