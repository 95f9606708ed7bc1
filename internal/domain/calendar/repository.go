package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/FACorreiaa/afa-daily-reports/pkg/db"
)

// Repository persists the cleaned holiday calendar
type Repository interface {
	ReplaceYear(ctx context.Context, year int, holidays []Holiday) error
	ListByYears(ctx context.Context, years []int) ([]Holiday, error)
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db db.Querier
}

// NewPostgresRepository creates a new PostgreSQL holiday repository
func NewPostgresRepository(q db.Querier) *PostgresRepository {
	return &PostgresRepository{db: q}
}

// ReplaceYear swaps the stored holidays of year for holidays in one transaction
func (r *PostgresRepository) ReplaceYear(ctx context.Context, year int, holidays []Holiday) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM special_holidays WHERE year = $1`, year); err != nil {
		return fmt.Errorf("failed to clear holidays of %d: %w", year, err)
	}

	query := `
		INSERT INTO special_holidays (holiday_date, year, name, holiday_category, description)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (holiday_date) DO UPDATE
		SET year = EXCLUDED.year, name = EXCLUDED.name,
			holiday_category = EXCLUDED.holiday_category, description = EXCLUDED.description`

	for _, h := range holidays {
		if _, err := tx.Exec(ctx, query,
			h.Date,
			h.Date.Year(),
			h.Info.Name,
			h.Info.HolidayCategory,
			h.Info.Description,
		); err != nil {
			return fmt.Errorf("failed to insert holiday %s: %w", h.Date.Format(time.DateOnly), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit holidays of %d: %w", year, err)
	}
	return nil
}

// ListByYears returns the stored holidays of years in date order
func (r *PostgresRepository) ListByYears(ctx context.Context, years []int) ([]Holiday, error) {
	query := `
		SELECT holiday_date, name, holiday_category, description
		FROM special_holidays
		WHERE year = ANY($1)
		ORDER BY holiday_date`

	rows, err := r.db.Query(ctx, query, years)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.Date, &h.Info.Name, &h.Info.HolidayCategory, &h.Info.Description); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holidays: %w", err)
	}
	return holidays, nil
}
