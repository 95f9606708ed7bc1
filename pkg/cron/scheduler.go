// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FACorreiaa/afa-daily-reports/internal/domain/calendar"
	"github.com/FACorreiaa/afa-daily-reports/internal/domain/ingest"
	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report"
	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report/repository"
	"github.com/FACorreiaa/afa-daily-reports/pkg/notify"
)

// Ingester ingests all bulletins of a date
type Ingester interface {
	IngestAll(ctx context.Context, date time.Time) ([]*ingest.Result, error)
}

// HolidayRefresher reloads a calendar year
type HolidayRefresher interface {
	Refresh(ctx context.Context, year int) ([]calendar.Holiday, error)
}

// DigestSender mails the daily digest
type DigestSender interface {
	Digest(ctx context.Context, date time.Time, sections []notify.DigestSection) error
}

// Config configures the scheduler
type Config struct {
	IngestSpec      string
	HolidaySpec     string
	Location        *time.Location
	IngestTimeout   time.Duration
	RefreshNextYear bool
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron     *cron.Cron
	cfg      Config
	ingester Ingester
	holidays HolidayRefresher
	reports  repository.DailyReportRepository
	digest   DigestSender
	now      func() time.Time
	logger   *slog.Logger
}

// NewScheduler creates a new job scheduler.
func NewScheduler(
	cfg Config,
	ingester Ingester,
	holidays HolidayRefresher,
	reports repository.DailyReportRepository,
	digest DigestSender,
	logger *slog.Logger,
) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.IngestTimeout <= 0 {
		cfg.IngestTimeout = 10 * time.Minute
	}

	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(
		cron.WithLocation(cfg.Location),
		cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))),
	)

	return &Scheduler{
		cron:     c,
		cfg:      cfg,
		ingester: ingester,
		holidays: holidays,
		reports:  reports,
		digest:   digest,
		now:      time.Now,
		logger:   logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	// Bulletins for the day are published in the morning, Taipei time
	if _, err := s.cron.AddFunc(s.cfg.IngestSpec, s.runDailyIngest); err != nil {
		return fmt.Errorf("invalid ingest schedule %q: %w", s.cfg.IngestSpec, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.HolidaySpec, s.runHolidayRefresh); err != nil {
		return fmt.Errorf("invalid holiday schedule %q: %w", s.cfg.HolidaySpec, err)
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.String("location", s.cfg.Location.String()),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers today's ingestion (for admin use).
func (s *Scheduler) RunNow() {
	go s.runDailyIngest()
}

func (s *Scheduler) runDailyIngest() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.IngestTimeout)
	defer cancel()

	// The bulletin date is the local calendar date in Taipei
	today := report.Day(s.now().In(s.cfg.Location))
	if err := s.IngestDate(ctx, today); err != nil {
		s.logger.Warn("daily ingest finished with errors",
			slog.String("date", today.Format(report.DateLayout)),
			slog.Any("error", err),
		)
	}
}

// IngestDate ingests every bulletin of date and mails the digest of what was
// saved. Individual failures are already alerted by the ingester.
func (s *Scheduler) IngestDate(ctx context.Context, date time.Time) error {
	s.logger.Info("starting daily ingest", slog.String("date", date.Format(report.DateLayout)))

	results, ingestErr := s.ingester.IngestAll(ctx, date)

	var sections []notify.DigestSection
	saved := 0
	for _, res := range results {
		if res == nil || res.Outcome != ingest.OutcomeSaved {
			continue
		}
		saved++
		sections = append(sections, notify.DigestSection{
			Report:   res.Report,
			Previous: s.previous(ctx, res.Report),
		})
	}

	s.logger.Info("daily ingest completed",
		slog.String("date", date.Format(report.DateLayout)),
		slog.Int("bulletins", len(results)),
		slog.Int("saved", saved),
	)

	if s.digest != nil && len(sections) > 0 {
		if err := s.digest.Digest(ctx, date, sections); err != nil {
			s.logger.Warn("failed to send digest", slog.Any("error", err))
		}
	}
	return ingestErr
}

// previous returns the latest stored report before dr of the same kind.
func (s *Scheduler) previous(ctx context.Context, dr *report.DailyReport) *report.DailyReport {
	if s.reports == nil {
		return nil
	}
	prev, err := s.reports.List(ctx, repository.ListFilter{
		To:       dr.Date.AddDate(0, 0, -1),
		Category: dr.Category,
		Source:   dr.Source,
		Limit:    1,
	})
	if err != nil {
		s.logger.Debug("failed to load previous report", slog.Any("error", err))
		return nil
	}
	if len(prev) == 0 {
		return nil
	}
	return prev[0]
}

func (s *Scheduler) runHolidayRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	s.RefreshHolidays(ctx)
}

// RefreshHolidays reloads the current year, and the next one when enabled.
func (s *Scheduler) RefreshHolidays(ctx context.Context) {
	year := s.now().In(s.cfg.Location).Year()
	years := []int{year}
	if s.cfg.RefreshNextYear {
		years = append(years, year+1)
	}

	for _, y := range years {
		holidays, err := s.holidays.Refresh(ctx, y)
		if err != nil {
			s.logger.Warn("failed to refresh holidays",
				slog.Int("year", y),
				slog.Any("error", err),
			)
			continue
		}
		s.logger.Debug("holidays refreshed",
			slog.Int("year", y),
			slog.Int("count", len(holidays)),
		)
	}
}
