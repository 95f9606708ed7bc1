package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/FACorreiaa/afa-daily-reports/internal/domain/calendar"
	"github.com/FACorreiaa/afa-daily-reports/internal/domain/ingest"
	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report"
	reportrepo "github.com/FACorreiaa/afa-daily-reports/internal/domain/report/repository"
	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report/table"
	"github.com/FACorreiaa/afa-daily-reports/pkg/config"
	"github.com/FACorreiaa/afa-daily-reports/pkg/db"
	"github.com/FACorreiaa/afa-daily-reports/pkg/notify"
	"github.com/FACorreiaa/afa-daily-reports/pkg/storage"
)

// newApp wires the same stack as the API server. The database is opened
// only when withDB is set.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, withDB bool) (*App, error) {
	fileType, err := report.ParseFileType(cfg.Report.FileType)
	if err != nil {
		return nil, err
	}

	store, err := storage.New(ctx, &storage.Config{
		Type:              storage.StorageType(cfg.Storage.Type),
		LocalPath:         cfg.Storage.LocalPath,
		S3Bucket:          cfg.Storage.S3Bucket,
		S3Region:          cfg.Storage.S3Region,
		S3Prefix:          cfg.Storage.S3Prefix,
		S3Endpoint:        cfg.Storage.S3Endpoint,
		S3AccessKeyID:     cfg.Storage.S3AccessKeyID,
		S3SecretAccessKey: cfg.Storage.S3SecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init file storage: %w", err)
	}

	client := calendar.NewClient(calendar.ClientConfig{
		URL:               cfg.Calendar.URL,
		PageSize:          cfg.Calendar.PageSize,
		RequestsPerSecond: cfg.Calendar.RequestsPerSecond,
		CacheTTL:          cfg.Calendar.CacheTTL,
		Timeout:           cfg.Calendar.Timeout,
	}, logger)

	a := &App{
		Logger:   logger,
		FileType: fileType,
		Storage:  store,
		Calendar: client,
		Factory:  report.NewReaderFactory(table.NewPDFSource(store, logger), logger),
	}
	if !withDB {
		return a, nil
	}

	database, err := db.New(db.Config{
		DSN:             cfg.Database.DSN(),
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        1,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}
	if err := database.RunMigrations(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	a.cleanup = database.Close

	holidays := calendar.NewService(client, calendar.NewPostgresRepository(database.Pool), logger)
	mailer := notify.NewMailer(notify.Config{
		APIKey:            cfg.Notify.ResendAPIKey,
		From:              cfg.Notify.From,
		SystemRecipients:  cfg.Notify.SystemRecipients,
		ServiceRecipients: cfg.Notify.ServiceRecipients,
	}, notify.NewPostgresLog(database.Pool), logger)

	a.Reports = reportrepo.NewPostgresDailyReportRepository(database.Pool)
	a.Refresher = holidays
	a.Ingester = ingest.NewService(
		a.Factory,
		holidays,
		a.Reports,
		mailer,
		ingest.NewMetrics(prometheus.NewRegistry()),
		ingest.Config{FileType: fileType, Workers: cfg.Scheduler.IngestWorkers},
		logger,
	)
	return a, nil
}
