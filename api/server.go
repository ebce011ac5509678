// Package api provides the HTTP REST API server for revgrowth.
//
// It exposes the growth report over HTTP: a batch endpoint that returns
// rows for a list of symbols, a per-symbol window view, provider listing
// and the running configuration.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/seenimoa/revgrowth/internal/config"
	"github.com/seenimoa/revgrowth/internal/pipeline"
	"github.com/seenimoa/revgrowth/internal/provider"
	"github.com/seenimoa/revgrowth/internal/report"
	"github.com/seenimoa/revgrowth/pkg/models"
	"github.com/seenimoa/revgrowth/pkg/utils"
)

// Version is reported by the health endpoint. Set at build time.
var Version = "dev"

// maxSymbols bounds a single batch request.
const maxSymbols = 100

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	registry *provider.Registry
	logger   zerolog.Logger
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, reg *provider.Registry, logger zerolog.Logger) *Server {
	srv := &Server{
		cfg:      cfg,
		registry: reg,
		logger:   logger,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-done:
	}
	s.logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Providers
		r.Get("/providers", s.handleProviders)

		// Growth
		r.Get("/growth", s.handleGrowth)
		r.Get("/growth/{symbol}", s.handleGrowthSymbol)

		// Config (read-only, secrets masked)
		r.Get("/config", s.handleGetConfig)
	})

	return r
}

// ════════════════════════════════════════════════════════════════════
// Request / Response types
// ════════════════════════════════════════════════════════════════════

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SkippedTicker explains why a requested symbol has no row.
type SkippedTicker struct {
	Symbol string `json:"symbol"`
	Stage  string `json:"stage"`
	Kind   string `json:"kind,omitempty"`
	Error  string `json:"error"`
}

// GrowthResponse is returned by GET /api/v1/growth.
type GrowthResponse struct {
	Cutoff   string             `json:"cutoff"`
	Provider string             `json:"provider"`
	Rows     []models.ReportRow `json:"rows"`
	Skipped  []SkippedTicker    `json:"skipped"`
}

// WindowEntry is one trailing quarter of GET /api/v1/growth/{symbol}.
type WindowEntry struct {
	Index   int      `json:"index"`
	Present bool     `json:"present"`
	EndDate string   `json:"end_date,omitempty"`
	Revenue *float64 `json:"revenue"`
}

// SymbolGrowthResponse is returned by GET /api/v1/growth/{symbol}.
type SymbolGrowthResponse struct {
	Symbol    string        `json:"symbol"`
	Cutoff    string        `json:"cutoff"`
	Provider  string        `json:"provider"`
	Snapshots int           `json:"snapshots"`
	Window    []WindowEntry `json:"window"`
	QoQ       models.Growth `json:"qoq"`
	YoY       models.Growth `json:"yoy"`
}

// ProvidersResponse is returned by GET /api/v1/providers.
type ProvidersResponse struct {
	Default   string                  `json:"default"`
	Providers []provider.ProviderInfo `json:"providers"`
	Keys      []config.KeyStatus      `json:"keys"`
}

// ════════════════════════════════════════════════════════════════════
// Handlers
// ════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":   "ok",
			"version":  Version,
			"provider": s.registry.Default(),
			"time":     time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ProvidersResponse{
			Default:   s.registry.Default(),
			Providers: s.registry.List(),
			Keys:      config.CheckAPIKeys(s.cfg),
		},
	})
}

// handleGrowth runs the growth pipeline for ?symbols=A,B and renders the
// result as JSON (default), CSV or HTML (?format=).
func (s *Server) handleGrowth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	symbols := utils.SplitTickers(q.Get("symbols"))
	if len(symbols) == 0 {
		writeError(w, http.StatusBadRequest, "symbols is required")
		return
	}
	if len(symbols) > maxSymbols {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d symbols per request", maxSymbols))
		return
	}

	format := strings.ToLower(q.Get("format"))
	switch format {
	case "", "json", "csv", "html":
	default:
		writeError(w, http.StatusBadRequest, "format must be json, csv or html")
		return
	}

	opts := report.Options{DatedLabels: s.cfg.Report.DatedLabels, Decimals: s.cfg.Report.Decimals}
	if v := q.Get("dated"); v != "" {
		dated, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "dated must be a boolean")
			return
		}
		opts.DatedLabels = dated
	}

	runner, fetcherName, ok := s.runnerFor(w, r)
	if !ok {
		return
	}

	res := runner.Run(r.Context(), symbols)

	cutoff := utils.FormatDate(runner.Cutoff)
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="report.csv"`)
		if err := report.NewAggregator(res.Rows...).Table(opts).WriteCSV(w); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write CSV response")
		}
		return
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		meta := report.PageMeta{
			Cutoff:      cutoff,
			Provider:    fetcherName,
			GeneratedAt: time.Now(),
		}
		for _, f := range res.Failures {
			meta.Skipped = append(meta.Skipped, f.Symbol)
		}
		if err := report.NewAggregator(res.Rows...).Table(opts).WriteHTML(w, meta); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write HTML response")
		}
		return
	}

	resp := GrowthResponse{
		Cutoff:   cutoff,
		Provider: fetcherName,
		Rows:     res.Rows,
		Skipped:  skipped(res.Failures),
	}
	if resp.Rows == nil {
		resp.Rows = []models.ReportRow{}
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

// handleGrowthSymbol returns the selected window and growth for one symbol.
func (s *Server) handleGrowthSymbol(w http.ResponseWriter, r *http.Request) {
	symbol := utils.NormalizeTicker(chi.URLParam(r, "symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	runner, fetcherName, ok := s.runnerFor(w, r)
	if !ok {
		return
	}

	a, err := runner.Analyze(r.Context(), symbol)
	if err != nil {
		writeError(w, statusForFailure(err), err.Error())
		return
	}

	resp := SymbolGrowthResponse{
		Symbol:    a.Symbol,
		Cutoff:    utils.FormatDate(runner.Cutoff),
		Provider:  fetcherName,
		Snapshots: len(a.History.Snapshots),
		QoQ:       a.Growth.QoQ,
		YoY:       a.Growth.YoY,
	}
	for i, slot := range a.Window {
		e := WindowEntry{Index: i, Present: slot.Present}
		if slot.Present {
			e.EndDate = utils.FormatDate(slot.Period.EndDate)
			e.Revenue = slot.Period.Revenue.Ptr()
		}
		resp.Window = append(resp.Window, e)
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

// runnerFor builds a pipeline runner from the request's ?cutoff= and
// ?provider= parameters, falling back to configuration. It writes the error
// response itself and reports false when the request cannot proceed.
func (s *Server) runnerFor(w http.ResponseWriter, r *http.Request) (*pipeline.Runner, string, bool) {
	q := r.URL.Query()

	var (
		cutoff time.Time
		err    error
	)
	if raw := q.Get("cutoff"); raw != "" {
		cutoff, err = utils.ParseDate(raw)
	} else {
		cutoff, err = config.ResolveCutoff(s.cfg)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cutoff: "+err.Error())
		return nil, "", false
	}

	fetcher, err := s.registry.Get(q.Get("provider"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, "", false
	}

	timeout := time.Duration(s.cfg.Provider.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = pipeline.DefaultTimeout
	}

	return &pipeline.Runner{
		Fetcher:     fetcher,
		Cutoff:      cutoff,
		Timeout:     timeout,
		Concurrency: s.cfg.Analysis.ConcurrentFetches,
	}, fetcher.Info().Name, true
}

func skipped(failures []pipeline.Failure) []SkippedTicker {
	out := make([]SkippedTicker, 0, len(failures))
	for _, f := range failures {
		st := SkippedTicker{Symbol: f.Symbol, Stage: string(f.Stage), Error: f.Err.Error()}
		if f.Stage == pipeline.StageFetch {
			st.Kind = string(provider.KindOf(f.Err))
		}
		out = append(out, st)
	}
	return out
}

// statusForFailure maps a single-ticker failure onto an HTTP status. The
// skip rules are the batch endpoint's, so a ticker skipped there is a 404 here.
func statusForFailure(err error) int {
	var f pipeline.Failure
	if !errors.As(err, &f) {
		return http.StatusInternalServerError
	}
	switch f.Stage {
	case pipeline.StageFetch:
		return statusForProviderError(f.Err)
	case pipeline.StageWindow, pipeline.StageData:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func statusForProviderError(err error) int {
	switch provider.KindOf(err) {
	case provider.KindNotFound, provider.KindEmpty:
		return http.StatusNotFound
	case provider.KindRateLimited:
		return http.StatusTooManyRequests
	case provider.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
