package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"QuantAI/internal/app"
	"QuantAI/internal/config"
	"QuantAI/internal/model"
	"QuantAI/internal/recorder"
)

type rootFlags struct {
	configPath string
	provider   string
	asJSON     bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:          "quant",
		Short:        "Technical and sentiment analysis for a single ticker",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "configs/config.yaml", "path to the YAML config")
	root.PersistentFlags().StringVar(&flags.provider, "provider", "", "override provider.name (yahoo, eastmoney, mock)")
	root.PersistentFlags().BoolVar(&flags.asJSON, "json", false, "print the raw JSON report")

	root.AddCommand(newAnalyzeCmd(flags), newHistoryCmd(flags))
	return root
}

func loadApp(flags *rootFlags) (*app.App, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.provider != "" {
		cfg.Provider.Name = strings.ToLower(flags.provider)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return app.New(cfg, app.NewLogger(os.Stderr, cfg.Log.Level))
}

func newAnalyzeCmd(flags *rootFlags) *cobra.Command {
	var holdingCost float64
	cmd := &cobra.Command{
		Use:   "analyze <ticker>",
		Short: "Fetch history, score indicators and print advice",
		Example: `  quant analyze AAPL
  quant analyze 600519 --provider eastmoney --holding-cost 1650`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			var cost *float64
			if cmd.Flags().Changed("holding-cost") {
				cost = &holdingCost
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			rep, err := a.Service.Analyze(ctx, args[0], cost)
			if err != nil {
				return err
			}
			if flags.asJSON {
				return writeJSON(cmd.OutOrStdout(), rep)
			}
			printReport(cmd.OutOrStdout(), rep)
			return nil
		},
	}
	cmd.Flags().Float64Var(&holdingCost, "holding-cost", 0, "average cost of an open position")
	return cmd
}

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <ticker>",
		Short: "List recorded analyses, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 || limit > recorder.MaxHistory {
				return fmt.Errorf("--limit must be between 1 and %d", recorder.MaxHistory)
			}
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			reports, err := a.Service.History(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if flags.asJSON {
				return writeJSON(cmd.OutOrStdout(), reports)
			}
			printHistory(cmd.OutOrStdout(), reports)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of reports to show")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(w io.Writer, rep *model.Report) {
	fmt.Fprintf(w, "%s  %.2f  (%d bars, %s)\n", rep.Ticker, rep.CurrentPrice, rep.Bars, rep.AnalyzedAt.Format(time.RFC3339))
	fmt.Fprintln(w, strings.Repeat("-", 48))
	for _, name := range model.IndicatorNames {
		fmt.Fprintf(w, "  %-12s %12.4f\n", name, rep.Analysis.Indicators.Get(name))
	}
	fmt.Fprintln(w)
	for _, f := range rep.Analysis.Factors {
		fmt.Fprintf(w, "  %+4.0f  %s\n", f.Adjustment, f.Commentary)
	}
	fmt.Fprintf(w, "%s\n", rep.Analysis.Summary)
	fmt.Fprintf(w, "Sentiment: %.1f  %s\n", rep.Sentiment.Score, rep.Sentiment.Summary)
	fmt.Fprintf(w, "Advice:    %s (alpha %.1f)\n", rep.Advice.Action, rep.Advice.Alpha)
	if rep.Advice.EntryPoint != nil {
		fmt.Fprintf(w, "  entry %.2f\n", *rep.Advice.EntryPoint)
	}
	if rep.Advice.ExitPoint != nil {
		fmt.Fprintf(w, "  exit  %.2f\n", *rep.Advice.ExitPoint)
	}
	fmt.Fprintf(w, "  %s\n", rep.Advice.Rationale)
}

func printHistory(w io.Writer, reports []model.Report) {
	if len(reports) == 0 {
		fmt.Fprintln(w, "no recorded analyses")
		return
	}
	for _, rep := range reports {
		fmt.Fprintf(w, "%s  %-8s %10.2f  %-11s %5.1f  %s\n",
			rep.AnalyzedAt.Format("2006-01-02 15:04"), rep.Ticker, rep.CurrentPrice,
			rep.Analysis.Signal, rep.Analysis.Score, rep.Advice.Action)
	}
}
