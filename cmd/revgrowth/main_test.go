package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/revgrowth/internal/config"
	"github.com/seenimoa/revgrowth/internal/provider"
	"github.com/seenimoa/revgrowth/pkg/models"
)

type fakeFetcher struct {
	provider.BaseProvider
	revenue map[string][]float64 // most recent first, quarterly from 2024-06-30 backwards
}

func (f *fakeFetcher) FetchQuarterlyStatements(_ context.Context, symbol string) (*models.StatementHistory, error) {
	revs, ok := f.revenue[symbol]
	if !ok {
		return nil, provider.NewError("fake", symbol, provider.KindNotFound, errors.New("unknown"))
	}
	h := &models.StatementHistory{Symbol: symbol, Provider: "fake"}
	end := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	for i, v := range revs {
		h.Snapshots = append(h.Snapshots, models.Snapshot{
			EndDate:   end.AddDate(0, -3*i, 0),
			LineItems: models.LineItems{"revenue": null.FloatFrom(v)},
		})
	}
	return h, nil
}

func testRegistry(t *testing.T) *provider.Registry {
	t.Helper()
	reg := provider.NewRegistry()
	require.NoError(t, reg.Register(&fakeFetcher{
		BaseProvider: provider.NewBaseProvider("fake", "fake provider", "https://example.com", nil),
		revenue: map[string][]float64{
			"AAA": {110, 100, 90, 80, 50},
		},
	}))
	return reg
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.txt"), []byte("2024-12-31\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stocks.txt"), []byte("aaa\nMISSING\n"), 0o644))
	return &config.Config{
		Analysis: config.AnalysisConfig{
			CutoffFile:        filepath.Join(dir, "config.txt"),
			TickersFile:       filepath.Join(dir, "stocks.txt"),
			ConcurrentFetches: 1,
		},
		Provider: config.ProviderConfig{TimeoutSec: 5},
		Report:   config.ReportConfig{CSVPath: filepath.Join(dir, "out", "report.csv")},
	}
}

func TestRunReportWritesCSVAndPreview(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer

	require.NoError(t, runReport(context.Background(), cfg, testRegistry(t), "", &out))

	data, err := os.ReadFile(cfg.Report.CSVPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Symbol,Report_Date,Rev_Latest,Rev_Q-1,Rev_Q-2,Rev_Q-3,QoQ,YoY", lines[0])
	assert.Equal(t, "AAA,2024-06-30,110,100,90,80,+10.00%,+120.00%", lines[1])

	assert.Contains(t, out.String(), "| AAA ")
	assert.NotContains(t, out.String(), "MISSING")
}

func TestRunReportNoRows(t *testing.T) {
	cfg := testConfig(t)
	cfg.Analysis.CutoffDate = "2000-01-01"
	var out bytes.Buffer

	require.NoError(t, runReport(context.Background(), cfg, testRegistry(t), "", &out))

	data, err := os.ReadFile(cfg.Report.CSVPath)
	require.NoError(t, err)
	assert.Equal(t, "Symbol,Report_Date,Rev_Latest,Rev_Q-1,Rev_Q-2,Rev_Q-3,QoQ,YoY\n", string(data))
	assert.Contains(t, out.String(), "No data")
}

func TestRunReportHTML(t *testing.T) {
	cfg := testConfig(t)
	htmlPath := filepath.Join(t.TempDir(), "report.html")

	require.NoError(t, runReport(context.Background(), cfg, testRegistry(t), htmlPath, &bytes.Buffer{}))

	data, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "+120.00%")
	assert.Contains(t, string(data), "MISSING")
}

func TestRunReportConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"missing cutoff file", func(c *config.Config) { c.Analysis.CutoffFile = "/nonexistent/config.txt" }, "analysis.cutoff_file"},
		{"bad cutoff", func(c *config.Config) { c.Analysis.CutoffDate = "31/12/2024" }, "analysis.cutoff_date"},
		{"missing tickers file", func(c *config.Config) { c.Analysis.TickersFile = "/nonexistent/stocks.txt" }, "analysis.tickers_file"},
		{"unknown provider", func(c *config.Config) { c.Provider.Name = "nope" }, "provider.name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)

			err := runReport(context.Background(), cfg, testRegistry(t), "", &bytes.Buffer{})
			var cfgErr *config.Error
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)

			_, statErr := os.Stat(cfg.Report.CSVPath)
			assert.True(t, os.IsNotExist(statErr), "no report is written on configuration errors")
		})
	}
}

func TestApplyReportFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "report"}
	defineReportFlags(cmd)
	require.NoError(t, cmd.Flags().Parse([]string{
		"--cutoff", "2024-03-31",
		"--tickers", "aapl, msft",
		"--provider", "screener",
		"-o", "x.csv",
		"--dated-labels",
		"--concurrency", "4",
	}))

	cfg := &config.Config{}
	require.NoError(t, applyReportFlags(cmd, cfg))
	assert.Equal(t, "2024-03-31", cfg.Analysis.CutoffDate)
	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Analysis.Tickers)
	assert.Equal(t, "screener", cfg.Provider.Name)
	assert.Equal(t, "x.csv", cfg.Report.CSVPath)
	assert.True(t, cfg.Report.DatedLabels)
	assert.Equal(t, 4, cfg.Analysis.ConcurrentFetches)
}

func TestApplyReportFlagsEmptyTickers(t *testing.T) {
	cmd := &cobra.Command{Use: "report"}
	defineReportFlags(cmd)
	require.NoError(t, cmd.Flags().Parse([]string{"--tickers", " , "}))

	err := applyReportFlags(cmd, &config.Config{})
	var cfgErr *config.Error
	assert.True(t, errors.As(err, &cfgErr))
}
