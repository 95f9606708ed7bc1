// Package cli implements reportctl, the operator command line for bulletin
// resolution, extraction and ingestion.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/afa-daily-reports/internal/domain/calendar"
	"github.com/FACorreiaa/afa-daily-reports/internal/domain/ingest"
	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report"
	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report/repository"
	"github.com/FACorreiaa/afa-daily-reports/pkg/config"
	"github.com/FACorreiaa/afa-daily-reports/pkg/storage"
)

var Version = "dev"

// annotationDB marks commands that need the database.
const annotationDB = "needs-db"

var errNoDatabase = errors.New("database is not configured")

// CalendarSource reads the upstream holiday calendar
type CalendarSource interface {
	GetCleanedList(ctx context.Context, year int) ([]calendar.Holiday, error)
	HolidaySetFor(ctx context.Context, date time.Time) (report.HolidaySet, error)
}

// Ingester runs bulletin ingestion
type Ingester interface {
	Ingest(ctx context.Context, date time.Time, productType report.ProductType) (*ingest.Result, error)
	IngestAll(ctx context.Context, date time.Time) ([]*ingest.Result, error)
}

// HolidayRefresher stores a refreshed calendar year
type HolidayRefresher interface {
	Refresh(ctx context.Context, year int) ([]calendar.Holiday, error)
}

// App is what the commands run against. Database backed fields are nil
// unless the running command needs them.
type App struct {
	Logger    *slog.Logger
	FileType  report.FileType
	Storage   storage.Storage
	Calendar  CalendarSource
	Factory   *report.ReaderFactory
	Reports   repository.DailyReportRepository
	Ingester  Ingester
	Refresher HolidayRefresher

	cleanup func()
}

// Close releases the resources opened for the app
func (a *App) Close() {
	if a.cleanup != nil {
		a.cleanup()
	}
}

var (
	app *App

	flagVerbose bool
	flagJSON    bool
)

var rootCmd = &cobra.Command{
	Use:           "reportctl",
	Short:         "Resolve, extract and ingest agricultural price bulletins",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if app != nil {
			return nil
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

		needsDB := cmd.Annotations[annotationDB] == "true" || (cmd == holidaysCmd && flagHolidaysStore)
		app, err = newApp(cmd.Context(), cfg, logger, needsDB)
		return err
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if app != nil {
			app.Close()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("reportctl %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of a table")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command
func Execute() error {
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func parseDateFlag(value string) (time.Time, error) {
	if value == "" {
		return report.Day(time.Now()), nil
	}
	date, err := report.ParseDay(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", value)
	}
	return date, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
