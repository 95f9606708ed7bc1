// Package ingest turns published bulletins into stored daily reports.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report"
	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report/repository"
	"github.com/FACorreiaa/afa-daily-reports/pkg/storage"
)

var tracer = otel.Tracer("github.com/FACorreiaa/afa-daily-reports/internal/domain/ingest")

// Outcome describes what happened to one bulletin
type Outcome string

const (
	OutcomeSaved    Outcome = "saved"
	OutcomeNoReport Outcome = "no_report"
	OutcomeEmpty    Outcome = "empty"
	OutcomeMissing  Outcome = "missing"
	OutcomeFailed   Outcome = "failed"
)

// Result is the outcome of ingesting one product type for one date
type Result struct {
	Date        time.Time
	ProductType report.ProductType
	Filename    string
	Outcome     Outcome
	Records     int
	Report      *report.DailyReport
	Err         error
}

// HolidayProvider supplies the holidays relevant to a bulletin date
type HolidayProvider interface {
	HolidaySetFor(ctx context.Context, date time.Time) (report.HolidaySet, error)
}

// Alerter reports failures to operators
type Alerter interface {
	Alert(ctx context.Context, subject string, cause error) error
}

// Config configures the ingestion service
type Config struct {
	FileType report.FileType
	Workers  int
}

// Service ingests bulletins
type Service struct {
	factory  *report.ReaderFactory
	holidays HolidayProvider
	repo     repository.DailyReportRepository
	alerter  Alerter
	metrics  *Metrics
	cfg      Config
	logger   *slog.Logger
}

// NewService creates a new ingestion service
func NewService(
	factory *report.ReaderFactory,
	holidays HolidayProvider,
	repo repository.DailyReportRepository,
	alerter Alerter,
	metrics *Metrics,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if cfg.FileType == "" {
		cfg.FileType = report.FileTypePDF
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Service{
		factory:  factory,
		holidays: holidays,
		repo:     repo,
		alerter:  alerter,
		metrics:  metrics,
		cfg:      cfg,
		logger:   logger,
	}
}

// Ingest extracts and stores the bulletin of productType for date. A date
// without a bulletin is not an error; the result says OutcomeNoReport.
func (s *Service) Ingest(ctx context.Context, date time.Time, productType report.ProductType) (*Result, error) {
	date = report.Day(date)
	ctx, span := tracer.Start(ctx, "ingest.Ingest")
	defer span.End()
	span.SetAttributes(
		attribute.String("ingest.date", date.Format(report.DateLayout)),
		attribute.String("ingest.product_type", productType.String()),
	)

	start := time.Now()
	res, err := s.ingest(ctx, date, productType)
	if s.metrics != nil {
		s.metrics.duration.WithLabelValues(productType.String()).Observe(time.Since(start).Seconds())
		s.metrics.runs.WithLabelValues(productType.String(), string(res.Outcome)).Inc()
		s.metrics.records.WithLabelValues(productType.String()).Add(float64(res.Records))
	}
	span.SetAttributes(attribute.String("ingest.outcome", string(res.Outcome)))

	if err != nil {
		res.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("ingest failed",
			slog.String("date", date.Format(report.DateLayout)),
			slog.String("product_type", productType.String()),
			slog.String("filename", res.Filename),
			slog.Any("error", err),
		)
		s.alert(ctx, res)
		return res, err
	}

	s.logger.Info("ingest completed",
		slog.String("date", date.Format(report.DateLayout)),
		slog.String("product_type", productType.String()),
		slog.String("outcome", string(res.Outcome)),
		slog.Int("records", res.Records),
	)
	return res, nil
}

func (s *Service) ingest(ctx context.Context, date time.Time, productType report.ProductType) (*Result, error) {
	res := &Result{Date: date, ProductType: productType, Outcome: OutcomeFailed}

	holidays, err := s.holidays.HolidaySetFor(ctx, date)
	if err != nil {
		return res, fmt.Errorf("failed to load holidays: %w", err)
	}

	processor, err := s.factory.NewDocumentProcessor(date, s.cfg.FileType, productType, holidays)
	if err != nil {
		return res, err
	}
	res.Filename = processor.Meta().Filename()
	if res.Filename == "" {
		res.Outcome = OutcomeNoReport
		return res, nil
	}

	records, err := processor.Process(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			res.Outcome = OutcomeMissing
		}
		return res, err
	}
	if len(records) == 0 {
		res.Outcome = OutcomeEmpty
		s.logger.Warn("bulletin has no usable records",
			slog.String("filename", res.Filename),
		)
		return res, nil
	}

	dr := &report.DailyReport{
		Date:     date,
		Category: productType.String(),
		Source:   processor.Reader().SupplyType().String(),
		Products: records,
	}
	if err := s.repo.Upsert(ctx, dr); err != nil {
		return res, err
	}

	res.Outcome = OutcomeSaved
	res.Records = len(records)
	res.Report = dr
	return res, nil
}

// IngestAll ingests every product type that has a bulletin family. One
// failing product type does not stop the others; the joined error is
// returned with all results.
func (s *Service) IngestAll(ctx context.Context, date time.Time) ([]*Result, error) {
	var types []report.ProductType
	for _, pt := range report.ProductTypes {
		if report.FamilyOf(pt) != report.FamilyUnsupported {
			types = append(types, pt)
		}
	}

	results := make([]*Result, len(types))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, pt := range types {
		g.Go(func() error {
			res, err := s.Ingest(gctx, date, pt)
			results[i] = res
			if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	var errs []error
	for _, res := range results {
		if res != nil && res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.ProductType, res.Err))
		}
	}
	return results, errors.Join(errs...)
}

func (s *Service) alert(ctx context.Context, res *Result) {
	if s.alerter == nil {
		return
	}
	subject := fmt.Sprintf("ingest %s for %s %s", res.Outcome, res.ProductType, res.Date.Format(report.DateLayout))
	if err := s.alerter.Alert(context.WithoutCancel(ctx), subject, res.Err); err != nil {
		s.logger.Warn("failed to send alert", slog.Any("error", err))
	}
}
