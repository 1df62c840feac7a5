package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"kira/internal/app"
	"kira/internal/domain"
	"kira/internal/readings"
)

var dailyDate string

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Daily report batch",
}

var dailyRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate daily reports for every premium subscriber now",
	Long: `Run the daily report batch once.

Examples:
  kiractl daily run
  kiractl daily run --date 2025-03-10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := domain.ParseDay(dailyDate, time.Now())
		if err != nil {
			return err
		}
		return withContainer(cmd.Context(), true, func(c *app.Container) error {
			summary, err := c.Service.RunDaily(cmd.Context(), date)
			printSummary(cmd.OutOrStdout(), summary)
			return err
		})
	},
}

func init() {
	dailyRunCmd.Flags().StringVar(&dailyDate, "date", "", "report date (YYYY-MM-DD), defaults to today (UTC)")
	dailyCmd.AddCommand(dailyRunCmd)
}

func printSummary(w io.Writer, s readings.DailySummary) {
	fmt.Fprintf(w, "Daily run for %s: %d processed\n", domain.FormatDay(s.Date), len(s.Results))
	for _, r := range s.Results {
		if r.Error != "" {
			fmt.Fprintf(w, "  %s  %-8s %s\n", r.AccountID, r.Status, r.Error)
			continue
		}
		fmt.Fprintf(w, "  %s  %s\n", r.AccountID, r.Status)
	}
}
