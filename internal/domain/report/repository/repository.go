// Package repository provides database operations for daily reports.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report"
)

var ErrNotFound = errors.New("daily report not found")

// ListFilter narrows a report listing. Zero fields are ignored.
type ListFilter struct {
	From     time.Time
	To       time.Time
	Category string
	Source   string
	Limit    int
	Offset   int
}

// DailyReportRepository persists extracted bulletins
type DailyReportRepository interface {
	// Upsert stores r, replacing the products of an existing report with the
	// same date, category and source. ID and timestamps are filled in.
	Upsert(ctx context.Context, r *report.DailyReport) error
	Get(ctx context.Context, date time.Time, category, source string) (*report.DailyReport, error)
	List(ctx context.Context, filter ListFilter) ([]*report.DailyReport, error)
}
