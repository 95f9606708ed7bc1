package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/FACorreiaa/afa-daily-reports/internal/domain/calendar"
	"github.com/FACorreiaa/afa-daily-reports/internal/domain/ingest"
	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report"
	reporthandler "github.com/FACorreiaa/afa-daily-reports/internal/domain/report/handler"
	reportrepo "github.com/FACorreiaa/afa-daily-reports/internal/domain/report/repository"
	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report/table"
	"github.com/FACorreiaa/afa-daily-reports/pkg/config"
	"github.com/FACorreiaa/afa-daily-reports/pkg/cron"
	"github.com/FACorreiaa/afa-daily-reports/pkg/db"
	"github.com/FACorreiaa/afa-daily-reports/pkg/notify"
	"github.com/FACorreiaa/afa-daily-reports/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config   *config.Config
	DB       *db.DB
	Logger   *slog.Logger
	Registry *prometheus.Registry

	// Repositories
	ReportRepo   reportrepo.DailyReportRepository
	HolidayRepo  calendar.Repository
	Notification notify.Log

	// Services
	FileStorage     storage.Storage
	CalendarClient  *calendar.Client
	CalendarService *calendar.Service
	ReaderFactory   *report.ReaderFactory
	Mailer          *notify.Mailer
	IngestService   *ingest.Service
	Scheduler       *cron.Scheduler

	// Handlers
	ReportHandler *reporthandler.Handler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}

	// Initialize database
	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	// Initialize repositories
	deps.initRepositories()

	// Initialize services
	if err := deps.initServices(ctx); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	// Initialize handlers
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        int32(d.Config.Database.MaxConns),
		MinConns:        1,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	// Run migrations
	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() {
	d.ReportRepo = reportrepo.NewPostgresDailyReportRepository(d.DB.Pool)
	d.HolidayRepo = calendar.NewPostgresRepository(d.DB.Pool)
	d.Notification = notify.NewPostgresLog(d.DB.Pool)

	d.Logger.Info("repositories initialized")
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices(ctx context.Context) error {
	cfg := d.Config

	// Bulletin storage (local directory or S3 bucket)
	fileStorage, err := storage.New(ctx, &storage.Config{
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
		return fmt.Errorf("failed to init file storage: %w", err)
	}
	d.FileStorage = fileStorage

	d.CalendarClient = calendar.NewClient(calendar.ClientConfig{
		URL:               cfg.Calendar.URL,
		PageSize:          cfg.Calendar.PageSize,
		RequestsPerSecond: cfg.Calendar.RequestsPerSecond,
		CacheTTL:          cfg.Calendar.CacheTTL,
		Timeout:           cfg.Calendar.Timeout,
	}, d.Logger)
	d.CalendarService = calendar.NewService(d.CalendarClient, d.HolidayRepo, d.Logger)

	d.ReaderFactory = report.NewReaderFactory(table.NewPDFSource(d.FileStorage, d.Logger), d.Logger)

	d.Mailer = notify.NewMailer(notify.Config{
		APIKey:            cfg.Notify.ResendAPIKey,
		From:              cfg.Notify.From,
		SystemRecipients:  cfg.Notify.SystemRecipients,
		ServiceRecipients: cfg.Notify.ServiceRecipients,
	}, d.Notification, d.Logger)

	fileType, err := report.ParseFileType(cfg.Report.FileType)
	if err != nil {
		return err
	}
	d.IngestService = ingest.NewService(
		d.ReaderFactory,
		d.CalendarService,
		d.ReportRepo,
		d.Mailer,
		ingest.NewMetrics(d.Registry),
		ingest.Config{FileType: fileType, Workers: cfg.Scheduler.IngestWorkers},
		d.Logger,
	)

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load scheduler timezone: %w", err)
	}
	d.Scheduler = cron.NewScheduler(cron.Config{
		IngestSpec:      cfg.Scheduler.IngestSpec,
		HolidaySpec:     cfg.Scheduler.HolidaySpec,
		Location:        loc,
		IngestTimeout:   cfg.Scheduler.IngestTimeout,
		RefreshNextYear: cfg.Scheduler.RefreshNextYear,
	}, d.IngestService, d.CalendarService, d.ReportRepo, d.Mailer, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	fileType, _ := report.ParseFileType(d.Config.Report.FileType)
	d.ReportHandler = reporthandler.NewHandler(d.ReportRepo, d.CalendarService, d.ReaderFactory, fileType, d.Logger)

	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
