package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report"
	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report/repository"
	"github.com/FACorreiaa/afa-daily-reports/pkg/export"
)

var (
	flagExportFrom     string
	flagExportTo       string
	flagExportCategory string
	flagExportSource   string
	flagExportFormat   string
	flagExportOut      string
	flagExportLimit    int
)

var exportCmd = &cobra.Command{
	Use:         "export",
	Short:       "Export stored daily reports to CSV or XLSX",
	Annotations: map[string]string{annotationDB: "true"},
	RunE:        runExport,
}

func init() {
	exportCmd.Flags().StringVar(&flagExportFrom, "from", "", "First report date (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&flagExportTo, "to", "", "Last report date (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&flagExportCategory, "category", "", "Only this category")
	exportCmd.Flags().StringVar(&flagExportSource, "source", "", "Only this source")
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "F", "csv", "Output format: csv, xlsx")
	exportCmd.Flags().StringVarP(&flagExportOut, "output", "o", "-", "Output file, - for stdout")
	exportCmd.Flags().IntVar(&flagExportLimit, "limit", 1000, "Maximum number of reports")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	if app.Reports == nil {
		return errNoDatabase
	}
	format, err := export.ParseFormat(flagExportFormat)
	if err != nil {
		return err
	}

	filter := repository.ListFilter{
		Category: flagExportCategory,
		Source:   flagExportSource,
		Limit:    flagExportLimit,
	}
	if flagExportFrom != "" {
		if filter.From, err = report.ParseDay(flagExportFrom); err != nil {
			return fmt.Errorf("invalid --from %q", flagExportFrom)
		}
	}
	if flagExportTo != "" {
		if filter.To, err = report.ParseDay(flagExportTo); err != nil {
			return fmt.Errorf("invalid --to %q", flagExportTo)
		}
	}

	reports, err := app.Reports.List(cmd.Context(), filter)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if flagExportOut != "-" {
		f, err := os.Create(flagExportOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", flagExportOut, err)
		}
		defer f.Close()
		w = f
	}

	if err := export.Write(w, format, reports); err != nil {
		return err
	}
	app.Logger.Info("reports exported",
		slog.Int("reports", len(reports)),
		slog.String("format", string(format)),
	)
	return nil
}
