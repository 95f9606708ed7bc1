package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report"
	"github.com/FACorreiaa/afa-daily-reports/pkg/db"
)

const defaultListLimit = 100

// PostgresDailyReportRepository implements DailyReportRepository using PostgreSQL
type PostgresDailyReportRepository struct {
	db db.Querier
}

// NewPostgresDailyReportRepository creates a new PostgreSQL daily report repository
func NewPostgresDailyReportRepository(q db.Querier) *PostgresDailyReportRepository {
	return &PostgresDailyReportRepository{db: q}
}

// Upsert inserts or replaces a daily report
func (r *PostgresDailyReportRepository) Upsert(ctx context.Context, dr *report.DailyReport) error {
	query := `
		INSERT INTO daily_reports (id, report_date, category, source, products)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (report_date, category, source) DO UPDATE
		SET products = EXCLUDED.products, updated_at = now()
		RETURNING id, created_at, updated_at`

	if dr.ID == uuid.Nil {
		dr.ID = uuid.New()
	}
	products := dr.Products
	if products == nil {
		products = []report.ProductRecord{}
	}
	payload, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode products: %w", err)
	}

	err = r.db.QueryRow(ctx, query,
		dr.ID,
		report.Day(dr.Date),
		dr.Category,
		dr.Source,
		payload,
	).Scan(&dr.ID, &dr.CreatedAt, &dr.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert daily report: %w", err)
	}
	return nil
}

// Get retrieves the report of a date, category and source
func (r *PostgresDailyReportRepository) Get(ctx context.Context, date time.Time, category, source string) (*report.DailyReport, error) {
	query := `
		SELECT id, report_date, category, source, products, created_at, updated_at
		FROM daily_reports
		WHERE report_date = $1 AND category = $2 AND source = $3`

	dr, err := scanReport(r.db.QueryRow(ctx, query, report.Day(date), category, source))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get daily report: %w", err)
	}
	return dr, nil
}

// List returns reports matching filter, newest first
func (r *PostgresDailyReportRepository) List(ctx context.Context, filter ListFilter) ([]*report.DailyReport, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if !filter.From.IsZero() {
		add("report_date >= $%d", report.Day(filter.From))
	}
	if !filter.To.IsZero() {
		add("report_date <= $%d", report.Day(filter.To))
	}
	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.Source != "" {
		add("source = $%d", filter.Source)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var b strings.Builder
	b.WriteString(`
		SELECT id, report_date, category, source, products, created_at, updated_at
		FROM daily_reports`)
	if len(conds) > 0 {
		b.WriteString("\n\t\tWHERE " + strings.Join(conds, " AND "))
	}
	args = append(args, limit, filter.Offset)
	fmt.Fprintf(&b, "\n\t\tORDER BY report_date DESC, category\n\t\tLIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily reports: %w", err)
	}
	defer rows.Close()

	var reports []*report.DailyReport
	for rows.Next() {
		dr, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily report: %w", err)
		}
		reports = append(reports, dr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily reports: %w", err)
	}
	return reports, nil
}

func scanReport(row pgx.Row) (*report.DailyReport, error) {
	var (
		dr       report.DailyReport
		products []byte
	)
	if err := row.Scan(
		&dr.ID,
		&dr.Date,
		&dr.Category,
		&dr.Source,
		&products,
		&dr.CreatedAt,
		&dr.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(products, &dr.Products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return &dr, nil
}
