package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/afa-daily-reports/internal/domain/calendar"
	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report"
)

var flagHolidaysStore bool

var holidaysCmd = &cobra.Command{
	Use:   "holidays [year]",
	Short: "List the holidays that close the markets",
	Long:  "List the cleaned government calendar of a year. With --store the year is refetched and saved to the database.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHolidays,
}

func init() {
	holidaysCmd.Flags().BoolVar(&flagHolidaysStore, "store", false, "Refetch the year and replace the stored copy")
	rootCmd.AddCommand(holidaysCmd)
}

func runHolidays(cmd *cobra.Command, args []string) error {
	year := time.Now().Year()
	if len(args) == 1 {
		y, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid year %q", args[0])
		}
		year = y
	}

	var (
		holidays []calendar.Holiday
		err      error
	)
	if flagHolidaysStore {
		if app.Refresher == nil {
			return errNoDatabase
		}
		holidays, err = app.Refresher.Refresh(cmd.Context(), year)
	} else {
		holidays, err = app.Calendar.GetCleanedList(cmd.Context(), year)
	}
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(cmd.OutOrStdout(), holidays)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, h := range holidays {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", h.Date.Format(report.DateLayout), report.WeekDayOf(h.Date), h.Info.Name)
	}
	return tw.Flush()
}
