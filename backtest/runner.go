// Package backtest drives strategies over bar series.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rustyeddy/barbt/journal"
	"github.com/rustyeddy/barbt/logx"
	"github.com/rustyeddy/barbt/market"
	"github.com/rustyeddy/barbt/metrics"
	"github.com/rustyeddy/barbt/portfolio"
	"github.com/rustyeddy/barbt/strategies"
)

// ErrInsufficientData is returned when the series is shorter than the
// strategy's minimum. No bar is processed in that case.
var ErrInsufficientData = errors.New("insufficient data")

// Runner plays one strategy over one instrument's bars.
//
// Either Series or Feed must be set; a Feed is drained into a series first
// because indicators look back over earlier bars.
type Runner struct {
	Symbol   string
	Series   *market.TimeSeries
	Feed     market.BarFeed
	Strategy strategies.Strategy
	Cash     float64 // starting balance

	Sink    journal.Sink // nil discards events
	Log     *slog.Logger
	Metrics *metrics.Metrics
}

// Result is the outcome of one run.
type Result struct {
	Symbol   string
	Strategy string

	Bars      int
	StartDate string
	EndDate   string

	StartCash   float64
	FinalCash   float64
	FinalShares int64
	LastClose   float64
	NetWorth    float64 // FinalCash + FinalShares*LastClose

	Trades     []portfolio.TradeEvent
	SinkErrors int
	Duration   time.Duration
}

// Counts returns the number of buys and sells.
func (r Result) Counts() (buys, sells int) {
	for _, e := range r.Trades {
		switch e.Action {
		case portfolio.Buy:
			buys++
		case portfolio.Sell:
			sells++
		}
	}
	return buys, sells
}

// Run executes the backtest loop. For each bar i:
//  1. strategy.Decide(i)
//  2. portfolio.Apply(intent, bar.Date, bar.Close)
//  3. sink.Record(event), if a trade executed
//
// The sink is closed on every return path, including validation failures
// and insufficient data. Sink errors are logged and counted in the result;
// they never abort the simulation.
func (r *Runner) Run(ctx context.Context) (res Result, err error) {
	sink := r.Sink
	if sink == nil {
		sink = journal.Discard
	}
	log := logx.OrDiscard(r.Log)

	defer func() {
		if cerr := sink.Close(); cerr != nil {
			res.SinkErrors++
			r.Metrics.IncSinkError()
			log.Error("closing trade sink", "symbol", r.Symbol, "err", cerr)
		}
	}()

	if r.Strategy == nil {
		if r.Feed != nil {
			_ = r.Feed.Close()
		}
		return res, fmt.Errorf("backtest: Strategy is required")
	}
	if r.Series == nil && r.Feed == nil {
		return res, fmt.Errorf("backtest: Series or Feed is required")
	}

	ts := r.Series
	if ts == nil {
		ts, err = market.Collect(r.Symbol, r.Feed)
		if err != nil {
			return res, fmt.Errorf("backtest: read bars: %w", err)
		}
	}

	start := time.Now()
	name := r.Strategy.Name()
	p := portfolio.New(r.Cash)
	n := ts.Len()

	res = Result{
		Symbol:    r.Symbol,
		Strategy:  name,
		Bars:      n,
		StartCash: p.Cash(),
	}
	if first, ok := ts.First(); ok {
		res.StartDate = first.Date
	}
	if last, ok := ts.Last(); ok {
		res.EndDate = last.Date
		res.LastClose = last.Close
	}

	finish := func(outcome string) {
		res.FinalCash = p.Cash()
		res.FinalShares = p.Shares()
		res.NetWorth = p.Value(res.LastClose)
		res.Duration = time.Since(start)
		r.Metrics.ObserveRun(name, outcome, res.Duration)
	}

	if n < r.Strategy.MinBars() {
		finish(journal.StatusInsufficientData)
		log.Warn("insufficient data", "symbol", r.Symbol, "strategy", name, "bars", n, "need", r.Strategy.MinBars())
		return res, fmt.Errorf("%w: %d bars, %s needs %d", ErrInsufficientData, n, name, r.Strategy.MinBars())
	}

	log.Info("run started", "symbol", r.Symbol, "strategy", name, "bars", n, "cash", res.StartCash)

	sctx := &strategies.Context{Series: ts}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			finish(journal.StatusError)
			return res, err
		}

		bar := ts.At(i)
		sctx.Idx = i
		sctx.Last = i == n-1
		sctx.Cash = p.Cash()
		sctx.Shares = p.Shares()

		d := r.Strategy.Decide(sctx)
		ev, ok := p.Apply(d.Intent, bar.Date, bar.Close)
		if !ok {
			continue
		}

		log.Debug("trade", "symbol", r.Symbol, "date", ev.Date, "action", ev.Action.String(),
			"qty", ev.Quantity, "price", ev.Price, "cash", ev.Cash, "reason", d.Reason)
		res.Trades = append(res.Trades, ev)
		r.Metrics.IncTrade(name, ev.Action.String())

		if err := sink.Record(ev); err != nil {
			res.SinkErrors++
			r.Metrics.IncSinkError()
			log.Error("recording trade", "symbol", r.Symbol, "date", ev.Date, "err", err)
		}
	}

	finish(journal.StatusOK)
	log.Info("run finished", "symbol", r.Symbol, "strategy", name,
		"trades", len(res.Trades), "cash", res.FinalCash, "shares", res.FinalShares, "net_worth", res.NetWorth)

	return res, nil
}
