// revgrowth computes quarter-over-quarter and year-over-year revenue growth
// for a list of tickers as of a cutoff date.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seenimoa/revgrowth/api"
	"github.com/seenimoa/revgrowth/internal/config"
	"github.com/seenimoa/revgrowth/internal/logging"
	"github.com/seenimoa/revgrowth/internal/providers"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set up by the root command.
var (
	cfg    *config.Config
	logger zerolog.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "revgrowth",
	Short: "Quarterly revenue growth report",
	Long: `revgrowth fetches quarterly income statements for a list of tickers,
selects the five most recent quarters on or before a cutoff date and
reports quarter-over-quarter and year-over-year revenue growth.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logger = logging.New(cfg.Logging, os.Stderr)
		cmd.SetContext(logger.WithContext(cmd.Context()))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("revgrowth %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.API.Port = port
		}

		reg, err := providers.NewRegistry(cfg.Provider)
		if err != nil {
			return err
		}

		api.Version = version
		srv := api.NewServer(cfg, reg, logger)
		return srv.ListenAndServe(fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides api.port)")
}

// --- Providers Command ---

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List registered statement providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := providers.NewRegistry(cfg.Provider)
		if err != nil {
			return err
		}
		def := reg.Default()
		for _, info := range reg.List() {
			marker := " "
			if info.Name == def {
				marker = "*"
			}
			fmt.Printf("%s %-10s %s (%s)\n", marker, info.Name, info.Description, info.Website)
		}
		return nil
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and API key status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  revgrowth - Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		cutoff := cfg.Analysis.CutoffDate
		if cutoff == "" {
			cutoff = "from " + cfg.Analysis.CutoffFile
		}
		fmt.Printf("    Cutoff:        %s\n", cutoff)
		fmt.Printf("    Tickers file:  %s\n", cfg.Analysis.TickersFile)
		fmt.Printf("    Provider:      %s (timeout %ds, limit %d)\n", cfg.Provider.Name, cfg.Provider.TimeoutSec, cfg.Provider.Limit)
		fmt.Printf("    CSV output:    %s\n", cfg.Report.CSVPath)
		fmt.Printf("    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
