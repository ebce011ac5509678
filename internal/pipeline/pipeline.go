// Package pipeline runs the per-ticker growth computation: fetch the
// statement history, select the trailing window, compute growth and build
// a report row. Tickers are isolated from one another; a failure for one
// is recorded and the rest of the batch carries on.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/revgrowth/internal/analysis/fundamental"
	"github.com/seenimoa/revgrowth/internal/provider"
	"github.com/seenimoa/revgrowth/pkg/models"
	"github.com/seenimoa/revgrowth/pkg/utils"
)

// Stage names where a ticker dropped out of the run.
type Stage string

const (
	StageFetch  Stage = "fetch"  // provider error
	StageWindow Stage = "window" // no period on or before the cutoff
	StageData   Stage = "data"   // the latest period carries no revenue
	StagePanic  Stage = "panic"  // unexpected failure while processing
)

// DefaultTimeout bounds one ticker's fetch when Runner.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// ErrNoPeriods and ErrNoRevenue are recorded for tickers skipped for lack of data.
var (
	ErrNoPeriods = errors.New("no reporting period on or before cutoff")
	ErrNoRevenue = errors.New("no revenue line item in the latest period")
)

// Failure records why a ticker produced no row.
type Failure struct {
	Symbol string
	Stage  Stage
	Err    error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %s: %v", f.Symbol, f.Stage, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Result is the outcome of a run. Rows and Failures are both in input order.
type Result struct {
	Rows     []models.ReportRow
	Failures []Failure
}

// Runner computes growth rows for a list of tickers as of Cutoff.
type Runner struct {
	Fetcher     provider.StatementFetcher
	Cutoff      time.Time
	Timeout     time.Duration // per-ticker fetch bound; zero means DefaultTimeout
	Concurrency int           // tickers in flight; <= 1 means sequential
}

type outcome struct {
	row     *models.ReportRow
	failure *Failure
}

// Run processes every ticker and never fails as a whole. The logger is
// taken from ctx (zerolog.Ctx).
func (r *Runner) Run(ctx context.Context, tickers []string) Result {
	log := zerolog.Ctx(ctx)
	outcomes := make([]outcome, len(tickers))

	limit := r.Concurrency
	if limit < 1 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, ticker := range tickers {
		g.Go(func() error {
			outcomes[i] = r.processTicker(gctx, ticker)
			return nil // per-ticker failures never cancel the batch
		})
	}
	_ = g.Wait()

	var res Result
	for _, o := range outcomes {
		switch {
		case o.row != nil:
			res.Rows = append(res.Rows, *o.row)
		case o.failure != nil:
			ev := log.Warn().
				Str("symbol", o.failure.Symbol).
				Str("stage", string(o.failure.Stage))
			if o.failure.Stage == StageFetch {
				ev = ev.Str("kind", string(provider.KindOf(o.failure.Err)))
			}
			ev.Err(o.failure.Err).Msg("ticker skipped")
			res.Failures = append(res.Failures, *o.failure)
		}
	}

	log.Info().
		Int("tickers", len(tickers)).
		Int("rows", len(res.Rows)).
		Int("skipped", len(res.Failures)).
		Msg("growth run complete")
	return res
}

// Analysis is the outcome of one ticker that produced a row.
type Analysis struct {
	Symbol  string
	History *models.StatementHistory
	Window  models.Window
	Growth  models.GrowthResult
	Row     models.ReportRow
}

// Analyze runs one ticker end to end: timeout-bounded fetch, window
// selection, skip rules and growth. A ticker that yields no row returns a
// Failure as the error. Panics are converted into a StagePanic failure so
// one bad payload cannot take a batch down.
func (r *Runner) Analyze(ctx context.Context, ticker string) (a *Analysis, err error) {
	symbol := utils.NormalizeTicker(ticker)
	fail := func(stage Stage, cause error) error {
		return Failure{Symbol: symbol, Stage: stage, Err: cause}
	}

	defer func() {
		if rec := recover(); rec != nil {
			a, err = nil, fail(StagePanic, fmt.Errorf("recovered: %v", rec))
		}
	}()

	hist, ferr := r.fetch(ctx, symbol)
	if ferr != nil {
		return nil, fail(StageFetch, ferr)
	}

	w := fundamental.SelectWindow(fundamental.PeriodsFromHistory(hist), r.Cutoff)
	if w.Empty() {
		return nil, fail(StageWindow, ErrNoPeriods)
	}
	if !w.HasLatestRevenue() {
		return nil, fail(StageData, ErrNoRevenue)
	}

	zerolog.Ctx(ctx).Debug().
		Str("symbol", symbol).
		Int("snapshots", len(hist.Snapshots)).
		Int("window", w.Len()).
		Msg("window selected")

	g := fundamental.ComputeGrowth(w)
	return &Analysis{
		Symbol:  symbol,
		History: hist,
		Window:  w,
		Growth:  g,
		Row:     NewReportRow(symbol, w, g),
	}, nil
}

func (r *Runner) processTicker(ctx context.Context, ticker string) outcome {
	a, err := r.Analyze(ctx, ticker)
	if err != nil {
		var f Failure
		if !errors.As(err, &f) {
			f = Failure{Symbol: utils.NormalizeTicker(ticker), Stage: StagePanic, Err: err}
		}
		return outcome{failure: &f}
	}
	return outcome{row: &a.Row}
}

func (r *Runner) fetch(ctx context.Context, symbol string) (*models.StatementHistory, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	hist, err := r.Fetcher.FetchQuarterlyStatements(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if hist == nil {
		return nil, provider.NewError(r.Fetcher.Info().Name, symbol, provider.KindEmpty, errors.New("nil statement history"))
	}
	return hist, nil
}

// NewReportRow lays a window and its growth out as a report row. Absent
// trailing quarters get a null revenue and models.NotComputableLabel as date.
func NewReportRow(symbol string, w models.Window, g models.GrowthResult) models.ReportRow {
	row := models.ReportRow{
		Symbol: symbol,
		QoQ:    g.QoQ,
		YoY:    g.YoY,
	}
	for i := range row.Revenues {
		if !w[i].Present {
			row.QuarterDates[i] = models.NotComputableLabel
			continue
		}
		row.Revenues[i] = w[i].Period.Revenue
		row.QuarterDates[i] = utils.FormatDate(w[i].Period.EndDate)
	}
	row.ReportDate = row.QuarterDates[0]
	return row
}
