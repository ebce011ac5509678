// Package config handles configuration loading for revgrowth.
// It supports YAML config files with .env and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis" json:"analysis"`
	Provider ProviderConfig `mapstructure:"provider" yaml:"provider" json:"provider"`
	Report   ReportConfig   `mapstructure:"report"   yaml:"report" json:"report"`
	API      APIConfig      `mapstructure:"api"      yaml:"api" json:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging" json:"logging"`
}

// AnalysisConfig holds the point-in-time inputs of a growth run.
type AnalysisConfig struct {
	CutoffDate        string   `mapstructure:"cutoff_date"        yaml:"cutoff_date" json:"cutoff_date"` // YYYY-MM-DD, wins over CutoffFile
	CutoffFile        string   `mapstructure:"cutoff_file"        yaml:"cutoff_file" json:"cutoff_file"`
	Tickers           []string `mapstructure:"tickers"            yaml:"tickers" json:"tickers"` // wins over TickersFile
	TickersFile       string   `mapstructure:"tickers_file"       yaml:"tickers_file" json:"tickers_file"`
	ConcurrentFetches int      `mapstructure:"concurrent_fetches" yaml:"concurrent_fetches" json:"concurrent_fetches"`
}

// ProviderConfig selects and configures the statement provider.
type ProviderConfig struct {
	Name            string `mapstructure:"name"              yaml:"name" json:"name"` // "fmp", "yfinance", "screener"
	TimeoutSec      int    `mapstructure:"timeout_sec"       yaml:"timeout_sec" json:"timeout_sec"`
	Limit           int    `mapstructure:"limit"             yaml:"limit" json:"limit"`
	FMPAPIKey       string `mapstructure:"fmp_api_key"       yaml:"fmp_api_key" json:"fmp_api_key"`
	FMPBaseURL      string `mapstructure:"fmp_base_url"      yaml:"fmp_base_url" json:"fmp_base_url"`
	YFinanceBaseURL string `mapstructure:"yfinance_base_url" yaml:"yfinance_base_url" json:"yfinance_base_url"`
	ScreenerBaseURL string `mapstructure:"screener_base_url" yaml:"screener_base_url" json:"screener_base_url"`
}

// ReportConfig holds report output settings.
type ReportConfig struct {
	CSVPath     string `mapstructure:"csv_path"     yaml:"csv_path" json:"csv_path"`
	DatedLabels bool   `mapstructure:"dated_labels" yaml:"dated_labels" json:"dated_labels"`
	Decimals    int32  `mapstructure:"decimals"     yaml:"decimals" json:"decimals"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host" json:"host"`
	Port        int      `mapstructure:"port"         yaml:"port" json:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level" json:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "text" or "json"
}

const envPrefix = "REVGROWTH"

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.revgrowth/config.yaml (home directory)
//  3. /etc/revgrowth/config.yaml (system)
//
// A .env file in the working directory is loaded first, if present.
// Environment variables override config file values.
// Format: REVGROWTH_<SECTION>_<KEY>, e.g., REVGROWTH_ANALYSIS_CUTOFF_DATE
func Load() (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".revgrowth"))
	v.AddConfigPath("/etc/revgrowth")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Override sensitive values from environment
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// loadDotEnv loads ./.env without overriding variables already set.
func loadDotEnv() {
	_ = godotenv.Load()
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Analysis defaults
	v.SetDefault("analysis.cutoff_date", "")
	v.SetDefault("analysis.cutoff_file", "config.txt")
	v.SetDefault("analysis.tickers", []string{})
	v.SetDefault("analysis.tickers_file", "stocks.txt")
	v.SetDefault("analysis.concurrent_fetches", 1) // sequential

	// Provider defaults
	v.SetDefault("provider.name", "fmp")
	v.SetDefault("provider.timeout_sec", 30)
	v.SetDefault("provider.limit", 8)
	v.SetDefault("provider.fmp_api_key", "")
	v.SetDefault("provider.fmp_base_url", "https://financialmodelingprep.com/api/v3")
	v.SetDefault("provider.yfinance_base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("provider.screener_base_url", "https://www.screener.in")

	// Report defaults
	v.SetDefault("report.csv_path", "report.csv")
	v.SetDefault("report.dated_labels", false)
	v.SetDefault("report.decimals", 0)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// The bare FMP_API_KEY is honored for compatibility with other FMP tooling.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("FMP_API_KEY"); key != "" && cfg.Provider.FMPAPIKey == "" {
		cfg.Provider.FMPAPIKey = key
	}
	if key := os.Getenv("REVGROWTH_PROVIDER_FMP_API_KEY"); key != "" {
		cfg.Provider.FMPAPIKey = key
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
