package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FMP_API_KEY", "")
	t.Setenv("REVGROWTH_PROVIDER_FMP_API_KEY", "")
}

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	clearKeyEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Analysis defaults
	if cfg.Analysis.CutoffFile != "config.txt" {
		t.Errorf("Analysis.CutoffFile: got %q, want %q", cfg.Analysis.CutoffFile, "config.txt")
	}
	if cfg.Analysis.TickersFile != "stocks.txt" {
		t.Errorf("Analysis.TickersFile: got %q, want %q", cfg.Analysis.TickersFile, "stocks.txt")
	}
	if cfg.Analysis.ConcurrentFetches != 1 {
		t.Errorf("Analysis.ConcurrentFetches: got %d, want 1", cfg.Analysis.ConcurrentFetches)
	}

	// Provider defaults
	if cfg.Provider.Name != "fmp" {
		t.Errorf("Provider.Name: got %q, want %q", cfg.Provider.Name, "fmp")
	}
	if cfg.Provider.TimeoutSec != 30 {
		t.Errorf("Provider.TimeoutSec: got %d, want 30", cfg.Provider.TimeoutSec)
	}
	if cfg.Provider.Limit != 8 {
		t.Errorf("Provider.Limit: got %d, want 8", cfg.Provider.Limit)
	}
	if cfg.Provider.FMPAPIKey != "" {
		t.Errorf("Provider.FMPAPIKey: got %q, want empty", cfg.Provider.FMPAPIKey)
	}

	// Report defaults
	if cfg.Report.CSVPath != "report.csv" {
		t.Errorf("Report.CSVPath: got %q", cfg.Report.CSVPath)
	}
	if cfg.Report.DatedLabels {
		t.Error("Report.DatedLabels should be false by default")
	}

	// API defaults
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port: got %d, want 8080", cfg.API.Port)
	}
	if len(cfg.API.CORSOrigins) != 1 || cfg.API.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("API.CORSOrigins: got %v", cfg.API.CORSOrigins)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "text")
	}
}

func TestLoadFromFile(t *testing.T) {
	clearKeyEnv(t)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test_config.yaml")
	content := []byte(`
analysis:
  cutoff_date: "2024-12-31"
  tickers: ["aapl", "msft"]
  concurrent_fetches: 4
provider:
  name: "screener"
  timeout_sec: 10
  fmp_api_key: "file_key_1234567890"
report:
  dated_labels: true
  decimals: 2
api:
  port: 9090
logging:
  level: "debug"
  format: "json"
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Analysis.CutoffDate != "2024-12-31" {
		t.Errorf("Analysis.CutoffDate: got %q", cfg.Analysis.CutoffDate)
	}
	if len(cfg.Analysis.Tickers) != 2 {
		t.Errorf("Analysis.Tickers: got %v", cfg.Analysis.Tickers)
	}
	if cfg.Analysis.ConcurrentFetches != 4 {
		t.Errorf("Analysis.ConcurrentFetches: got %d, want 4", cfg.Analysis.ConcurrentFetches)
	}
	if cfg.Provider.Name != "screener" {
		t.Errorf("Provider.Name: got %q, want %q", cfg.Provider.Name, "screener")
	}
	if cfg.Provider.TimeoutSec != 10 {
		t.Errorf("Provider.TimeoutSec: got %d, want 10", cfg.Provider.TimeoutSec)
	}
	if cfg.Provider.Limit != 8 {
		t.Errorf("Provider.Limit should keep its default, got %d", cfg.Provider.Limit)
	}
	if cfg.Provider.FMPAPIKey != "file_key_1234567890" {
		t.Errorf("Provider.FMPAPIKey: got %q", cfg.Provider.FMPAPIKey)
	}
	if !cfg.Report.DatedLabels || cfg.Report.Decimals != 2 {
		t.Errorf("Report: got %+v", cfg.Report)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port: got %d, want 9090", cfg.API.Port)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("REVGROWTH_ANALYSIS_CUTOFF_DATE", "2023-06-30")

	cfgPath := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(cfgPath, []byte("analysis:\n  cutoff_date: \"2024-12-31\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Analysis.CutoffDate != "2023-06-30" {
		t.Errorf("env should win, got %q", cfg.Analysis.CutoffDate)
	}
}

// ── overrideFromEnv ──

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("FMP_API_KEY", "bare-fmp-key")
	t.Setenv("REVGROWTH_PROVIDER_FMP_API_KEY", "")

	cfg := &Config{}
	overrideFromEnv(cfg)
	if cfg.Provider.FMPAPIKey != "bare-fmp-key" {
		t.Errorf("FMPAPIKey: got %q", cfg.Provider.FMPAPIKey)
	}

	t.Setenv("REVGROWTH_PROVIDER_FMP_API_KEY", "prefixed-key")
	overrideFromEnv(cfg)
	if cfg.Provider.FMPAPIKey != "prefixed-key" {
		t.Errorf("prefixed env should win, got %q", cfg.Provider.FMPAPIKey)
	}
}

func TestOverrideFromEnvNoEnvSet(t *testing.T) {
	clearKeyEnv(t)

	cfg := &Config{Provider: ProviderConfig{FMPAPIKey: "from-config"}}
	overrideFromEnv(cfg)

	if cfg.Provider.FMPAPIKey != "from-config" {
		t.Errorf("FMPAPIKey should stay as 'from-config' when env is unset, got %q", cfg.Provider.FMPAPIKey)
	}
}

// ── ResolveCutoff ──

func TestResolveCutoffInline(t *testing.T) {
	cfg := &Config{Analysis: AnalysisConfig{CutoffDate: " 2024-12-31 ", CutoffFile: "/does/not/matter"}}
	got, err := ResolveCutoff(cfg)
	if err != nil {
		t.Fatalf("ResolveCutoff: %v", err)
	}
	if want := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestResolveCutoffFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.txt")
	if err := os.WriteFile(path, []byte("2024-06-01\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := ResolveCutoff(&Config{Analysis: AnalysisConfig{CutoffFile: path}})
	if err != nil {
		t.Fatalf("ResolveCutoff: %v", err)
	}
	if want := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestResolveCutoffErrors(t *testing.T) {
	garbage := filepath.Join(t.TempDir(), "config.txt")
	if err := os.WriteFile(garbage, []byte("next tuesday"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		cfg   AnalysisConfig
		field string
	}{
		{"unparseable inline", AnalysisConfig{CutoffDate: "31/31/2024"}, "analysis.cutoff_date"},
		{"missing file", AnalysisConfig{CutoffFile: "/nonexistent/config.txt"}, "analysis.cutoff_file"},
		{"unparseable file", AnalysisConfig{CutoffFile: garbage}, "analysis.cutoff_file"},
		{"nothing configured", AnalysisConfig{}, "analysis.cutoff_date"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ResolveCutoff(&Config{Analysis: tc.cfg})
			var cfgErr *Error
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if cfgErr.Field != tc.field {
				t.Errorf("Field: got %q, want %q", cfgErr.Field, tc.field)
			}
		})
	}
}

// ── ResolveTickers ──

func TestResolveTickersInline(t *testing.T) {
	cfg := &Config{Analysis: AnalysisConfig{Tickers: []string{"aapl", " msft,googl ", ""}}}
	got, err := ResolveTickers(cfg)
	if err != nil {
		t.Fatalf("ResolveTickers: %v", err)
	}
	want := []string{"AAPL", "MSFT", "GOOGL"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestResolveTickersFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stocks.txt")
	if err := os.WriteFile(path, []byte("aapl\n\n  msft \n# comment\naapl\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := ResolveTickers(&Config{Analysis: AnalysisConfig{TickersFile: path}})
	if err != nil {
		t.Fatalf("ResolveTickers: %v", err)
	}
	want := []string{"AAPL", "MSFT", "AAPL"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestResolveTickersErrors(t *testing.T) {
	empty := filepath.Join(t.TempDir(), "stocks.txt")
	if err := os.WriteFile(empty, []byte("\n\n"), 0644); err != nil {
		t.Fatal(err)
	}

	for name, cfg := range map[string]AnalysisConfig{
		"missing file":  {TickersFile: "/nonexistent/stocks.txt"},
		"empty file":    {TickersFile: empty},
		"blank inline":  {Tickers: []string{" ", ","}},
		"no source set": {},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ResolveTickers(&Config{Analysis: cfg})
			var cfgErr *Error
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected *Error, got %v", err)
			}
		})
	}
}

// ── maskKey ──

func TestMaskKeyShort(t *testing.T) {
	// Keys with 8 or fewer characters should be fully masked
	tests := []struct {
		input string
		want  string
	}{
		{"", "***"},
		{"a", "***"},
		{"abcd", "***"},
		{"12345678", "***"},
	}
	for _, tc := range tests {
		got := maskKey(tc.input)
		if got != tc.want {
			t.Errorf("maskKey(%q): got %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestMaskKeyLong(t *testing.T) {
	// Keys with more than 8 characters show first 3 + ... + last 3
	tests := []struct {
		input string
		want  string
	}{
		{"123456789", "123...789"},
		{"sk-abcdef1234567890xyz", "sk-...xyz"},
		{"ABCDEFGHIJKLMNOP", "ABC...NOP"},
	}
	for _, tc := range tests {
		got := maskKey(tc.input)
		if got != tc.want {
			t.Errorf("maskKey(%q): got %q, want %q", tc.input, got, tc.want)
		}
	}
}

// ── CheckAPIKeys ──

func TestCheckAPIKeysEmpty(t *testing.T) {
	clearKeyEnv(t)

	statuses := CheckAPIKeys(&Config{})
	if len(statuses) != 1 {
		t.Fatalf("expected 1 key status, got %d", len(statuses))
	}
	s := statuses[0]
	if s.IsSet || s.Source != KeySourceNone || s.Masked != "" {
		t.Errorf("unexpected status for empty key: %+v", s)
	}
}

func TestCheckAPIKeysFromConfig(t *testing.T) {
	clearKeyEnv(t)

	statuses := CheckAPIKeys(&Config{Provider: ProviderConfig{FMPAPIKey: "cfg-key-abcdefgh"}})
	s := statuses[0]
	if !s.IsSet || s.Source != KeySourceConfig {
		t.Errorf("expected config source, got %+v", s)
	}
	if s.Masked != "cfg...fgh" {
		t.Errorf("Masked: got %q", s.Masked)
	}
}

func TestCheckAPIKeysFromEnv(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("FMP_API_KEY", "env-key-abcdefgh")

	statuses := CheckAPIKeys(&Config{Provider: ProviderConfig{FMPAPIKey: "env-key-abcdefgh"}})
	if statuses[0].Source != KeySourceEnv {
		t.Errorf("expected env source, got %+v", statuses[0])
	}
}
