package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/afa-daily-reports/internal/domain/ingest"
	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report"
)

var flagIngestProduct string

var ingestCmd = &cobra.Command{
	Use:         "ingest",
	Short:       "Extract and store the bulletins of a date",
	Long:        "Extract and store the bulletins of a date. Without --product every supported product type is ingested.",
	Annotations: map[string]string{annotationDB: "true"},
	RunE:        runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&flagDate, "date", "d", "", "Bulletin date (YYYY-MM-DD, default today)")
	ingestCmd.Flags().StringVarP(&flagIngestProduct, "product", "p", "", "Only ingest this product type")
	rootCmd.AddCommand(ingestCmd)
}

type ingestRow struct {
	ProductType string `json:"product_type"`
	Filename    string `json:"filename"`
	Outcome     string `json:"outcome"`
	Records     int    `json:"records"`
	Error       string `json:"error,omitempty"`
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if app.Ingester == nil {
		return errNoDatabase
	}
	date, err := parseDateFlag(flagDate)
	if err != nil {
		return err
	}

	var (
		results []*ingest.Result
		runErr  error
	)
	if flagIngestProduct != "" {
		productType, err := report.ParseProductType(flagIngestProduct)
		if err != nil {
			return err
		}
		res, err := app.Ingester.Ingest(cmd.Context(), date, productType)
		if res != nil {
			results = append(results, res)
		}
		runErr = err
	} else {
		results, runErr = app.Ingester.IngestAll(cmd.Context(), date)
	}

	rows := make([]ingestRow, 0, len(results))
	for _, res := range results {
		if res == nil {
			continue
		}
		row := ingestRow{
			ProductType: res.ProductType.String(),
			Filename:    res.Filename,
			Outcome:     string(res.Outcome),
			Records:     res.Records,
		}
		if res.Err != nil {
			row.Error = res.Err.Error()
		}
		rows = append(rows, row)
	}

	if flagJSON {
		if err := printJSON(cmd.OutOrStdout(), rows); err != nil {
			return err
		}
	} else {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "product\toutcome\trecords\tfile\terror")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", r.ProductType, r.Outcome, r.Records, r.Filename, r.Error)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return runErr
}
