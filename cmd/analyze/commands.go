package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fundamentals-agent/internal/chat"
)

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

func newAnalyzeCmd() *cobra.Command {
	var (
		date    string
		asJSON  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "analyze TICKER...",
		Short: "Score company fundamentals for one or more tickers",
		Example: `  analyze AAPL MSFT
  analyze '$NVDA' --date 2023-12-31 --json
  analyze summary --date 2024-06-30`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			asOf, err := parseDate(date)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			result, err := a.Agent.Analyze(ctx, args, asOf)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Fprintln(out, chat.FormatResult(result))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Evaluate as of this date (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw analysis as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Overall deadline for the batch")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Write the daily CSV summary from the signal log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDate(date)
			if err != nil {
				return err
			}

			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			if a.SignalLog == nil {
				return errors.New("signal log is disabled in the configuration")
			}

			p, err := a.Summarizer.SummarizeDay(day)
			if err != nil {
				return err
			}
			if p == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "No signals logged on %s\n", day.Format(dateLayout))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to summarize (YYYY-MM-DD, default today)")
	return cmd
}
