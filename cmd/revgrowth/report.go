package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seenimoa/revgrowth/internal/config"
	"github.com/seenimoa/revgrowth/internal/pipeline"
	"github.com/seenimoa/revgrowth/internal/provider"
	"github.com/seenimoa/revgrowth/internal/providers"
	"github.com/seenimoa/revgrowth/internal/report"
	"github.com/seenimoa/revgrowth/pkg/utils"
)

// --- Report Command ---

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute revenue growth and write the CSV report",
	Long: `Compute QoQ and YoY revenue growth for every ticker as of the cutoff date.

The CSV report is always written, header-only when no ticker produced a
row. A markdown preview is printed to stdout.

Examples:
  revgrowth report
  revgrowth report --cutoff 2024-06-30 --tickers AAPL,MSFT
  revgrowth report --provider screener --tickers-file nse.txt --output out/nse.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyReportFlags(cmd, cfg); err != nil {
			return err
		}

		reg, err := providers.NewRegistry(cfg.Provider)
		if err != nil {
			return err
		}

		htmlPath, _ := cmd.Flags().GetString("html")
		return runReport(cmd.Context(), cfg, reg, htmlPath, cmd.OutOrStdout())
	},
}

func init() {
	defineReportFlags(reportCmd)
}

func defineReportFlags(cmd *cobra.Command) {
	cmd.Flags().String("cutoff", "", "cutoff date YYYY-MM-DD (overrides analysis.cutoff_date)")
	cmd.Flags().String("tickers", "", "comma separated tickers (overrides the tickers file)")
	cmd.Flags().String("tickers-file", "", "file with one ticker per line")
	cmd.Flags().String("provider", "", "statement provider (fmp, yfinance, screener)")
	cmd.Flags().StringP("output", "o", "", "CSV output path")
	cmd.Flags().Bool("dated-labels", false, "label trailing quarters with their end dates")
	cmd.Flags().String("html", "", "also write an HTML report to this path")
	cmd.Flags().Int("concurrency", 0, "tickers fetched in parallel")
}

// applyReportFlags copies explicitly set report flags over cfg.
func applyReportFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("cutoff") {
		cfg.Analysis.CutoffDate, _ = flags.GetString("cutoff")
	}
	if flags.Changed("tickers") {
		raw, _ := flags.GetString("tickers")
		cfg.Analysis.Tickers = utils.SplitTickers(raw)
		if len(cfg.Analysis.Tickers) == 0 {
			return &config.Error{Field: "--tickers", Err: fmt.Errorf("no ticker in %q", raw)}
		}
	}
	if flags.Changed("tickers-file") {
		cfg.Analysis.TickersFile, _ = flags.GetString("tickers-file")
		if !flags.Changed("tickers") {
			cfg.Analysis.Tickers = nil
		}
	}
	if flags.Changed("provider") {
		cfg.Provider.Name, _ = flags.GetString("provider")
	}
	if flags.Changed("output") {
		cfg.Report.CSVPath, _ = flags.GetString("output")
	}
	if flags.Changed("dated-labels") {
		cfg.Report.DatedLabels, _ = flags.GetBool("dated-labels")
	}
	if flags.Changed("concurrency") {
		cfg.Analysis.ConcurrentFetches, _ = flags.GetInt("concurrency")
	}
	return nil
}

// runReport resolves the cutoff and tickers, runs the pipeline and writes
// the outputs. Configuration problems are returned; per-ticker failures
// are logged and skipped.
func runReport(ctx context.Context, cfg *config.Config, reg *provider.Registry, htmlPath string, stdout io.Writer) error {
	log := zerolog.Ctx(ctx)

	cutoff, err := config.ResolveCutoff(cfg)
	if err != nil {
		return err
	}
	tickers, err := config.ResolveTickers(cfg)
	if err != nil {
		return err
	}
	fetcher, err := reg.Get(cfg.Provider.Name)
	if err != nil {
		return &config.Error{Field: "provider.name", Err: err}
	}

	log.Info().
		Str("cutoff", utils.FormatDate(cutoff)).
		Str("provider", fetcher.Info().Name).
		Int("tickers", len(tickers)).
		Msg("Starting growth report")

	runner := &pipeline.Runner{
		Fetcher:     fetcher,
		Cutoff:      cutoff,
		Timeout:     time.Duration(cfg.Provider.TimeoutSec) * time.Second,
		Concurrency: cfg.Analysis.ConcurrentFetches,
	}
	res := runner.Run(ctx, tickers)

	table := report.NewAggregator(res.Rows...).Table(report.Options{
		DatedLabels: cfg.Report.DatedLabels,
		Decimals:    cfg.Report.Decimals,
	})

	if err := table.WriteCSVFile(cfg.Report.CSVPath); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	log.Info().Str("path", cfg.Report.CSVPath).Int("rows", len(table.Records)).Msg("CSV report written")

	if htmlPath != "" {
		if err := writeHTML(htmlPath, table, utils.FormatDate(cutoff), fetcher.Info().Name, res.Failures); err != nil {
			return fmt.Errorf("write html report: %w", err)
		}
		log.Info().Str("path", htmlPath).Msg("HTML report written")
	}

	_, err = fmt.Fprint(stdout, table.Markdown())
	return err
}

func writeHTML(path string, table *report.Table, cutoff, providerName string, failures []pipeline.Failure) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	meta := report.PageMeta{Cutoff: cutoff, Provider: providerName, GeneratedAt: time.Now()}
	for _, fl := range failures {
		meta.Skipped = append(meta.Skipped, fl.Symbol)
	}
	if err := table.WriteHTML(f, meta); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
