package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report"
	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report/handler"
)

var (
	flagDate    string
	flagProduct string
	flagFile    string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show the bulletin file and columns expected for a date",
	RunE:  runResolve,
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract product prices from a stored bulletin without saving them",
	RunE:  runExtract,
}

func init() {
	for _, cmd := range []*cobra.Command{resolveCmd, extractCmd} {
		cmd.Flags().StringVarP(&flagDate, "date", "d", "", "Bulletin date (YYYY-MM-DD, default today)")
		cmd.Flags().StringVarP(&flagProduct, "product", "p", string(report.ProductTypeFruit), "Product type (水果, 魚類, 蝦類, 貝類)")
		rootCmd.AddCommand(cmd)
	}
	extractCmd.Flags().StringVarP(&flagFile, "file", "f", "", "Read this stored file instead of the resolved one")
}

func newReader(cmd *cobra.Command) (*report.Reader, error) {
	date, err := parseDateFlag(flagDate)
	if err != nil {
		return nil, err
	}
	productType, err := report.ParseProductType(flagProduct)
	if err != nil {
		return nil, err
	}
	holidays, err := app.Calendar.HolidaySetFor(cmd.Context(), date)
	if err != nil {
		return nil, fmt.Errorf("failed to load holidays: %w", err)
	}
	return app.Factory.GetReader(date, app.FileType, productType, holidays)
}

func runResolve(cmd *cobra.Command, _ []string) error {
	reader, err := newReader(cmd)
	if err != nil {
		return err
	}
	res := handler.NewResolution(reader)
	if flagJSON {
		return printJSON(cmd.OutOrStdout(), res)
	}

	calculated := "-"
	if res.CalculatedReportDate != nil {
		calculated = *res.CalculatedReportDate
	}
	filename := res.Filename
	if filename == "" {
		filename = "(no bulletin)"
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "date\t%s\n", res.Date)
	fmt.Fprintf(tw, "product type\t%s\n", res.ProductType)
	fmt.Fprintf(tw, "roc year\t%d\n", res.ROCYear)
	fmt.Fprintf(tw, "report date\t%s\n", calculated)
	fmt.Fprintf(tw, "file\t%s\n", filename)
	fmt.Fprintf(tw, "columns\t%v\n", res.SelectedColumns)
	fmt.Fprintf(tw, "prev day holiday\t%t\n", res.PrevDayIsHoliday)
	return tw.Flush()
}

func runExtract(cmd *cobra.Command, _ []string) error {
	reader, err := newReader(cmd)
	if err != nil {
		return err
	}

	var records []report.ProductRecord
	if flagFile != "" {
		records, err = reader.ExtractFile(cmd.Context(), flagFile)
	} else {
		if reader.Meta().Filename() == "" {
			cmd.Println("no bulletin is published for this date")
			return nil
		}
		records, err = reader.Extract(cmd.Context())
	}
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(cmd.OutOrStdout(), records)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "product\taverage price")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\n", r.ProductName, strconv.FormatFloat(r.AveragePrice, 'f', 2, 64))
	}
	return tw.Flush()
}
