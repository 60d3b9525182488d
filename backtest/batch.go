package backtest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/barbt/journal"
	"github.com/rustyeddy/barbt/logx"
	"github.com/rustyeddy/barbt/market"
	"github.com/rustyeddy/barbt/metrics"
	"github.com/rustyeddy/barbt/pkg/id"
	"github.com/rustyeddy/barbt/strategies"
)

// Job is one instrument of a batch. Path is loaded when Series is nil.
type Job struct {
	Symbol string
	Path   string
	Series *market.TimeSeries
}

// RunRecorder persists run summaries.
type RunRecorder interface {
	RecordRun(ctx context.Context, r journal.RunRecord) error
}

// Batch runs one strategy over several instruments concurrently. Each
// instrument gets its own portfolio and sink; nothing mutable is shared.
type Batch struct {
	Jobs        []Job
	Strategy    strategies.Strategy
	Cash        float64
	Parallelism int // <1 means 1

	Sinks    SinkFactory // nil discards trades
	Recorder RunRecorder // nil skips run summaries
	OrgDir   string      // write <SYMBOL>.<run-id>.org reports when set

	Log     *slog.Logger
	Metrics *metrics.Metrics
}

// Outcome is the result of one job. Err is that job's own failure; it does
// not stop the other jobs.
type Outcome struct {
	RunID  string
	Job    Job
	Result Result
	Record journal.RunRecord
	Err    error
}

// Run executes every job and returns outcomes in job order. The returned
// error is non-nil only when ctx is cancelled.
func (b *Batch) Run(ctx context.Context) ([]Outcome, error) {
	if b.Strategy == nil {
		return nil, fmt.Errorf("backtest: Strategy is required")
	}
	log := logx.OrDiscard(b.Log)

	limit := b.Parallelism
	if limit < 1 {
		limit = 1
	}

	out := make([]Outcome, len(b.Jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, job := range b.Jobs {
		i, job := i, job
		g.Go(func() error {
			out[i] = b.runOne(gctx, job, log)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, ctx.Err()
}

func (b *Batch) runOne(ctx context.Context, job Job, log *slog.Logger) Outcome {
	runID := id.New()
	o := Outcome{RunID: runID, Job: job}
	log = log.With("run_id", runID, "symbol", job.Symbol)

	r := &Runner{
		Symbol:   job.Symbol,
		Series:   job.Series,
		Strategy: b.Strategy,
		Cash:     b.Cash,
		Log:      log,
		Metrics:  b.Metrics,
	}

	if r.Series == nil {
		feed, err := market.Open(job.Path)
		if err != nil {
			o.Err = fmt.Errorf("open %s: %w", job.Path, err)
			o.Record = Result{Symbol: job.Symbol, Strategy: b.Strategy.Name(), StartCash: b.Cash}.Record(runID, job.Path, o.Err)
			log.Error("loading bars", "path", job.Path, "err", o.Err)
			b.record(ctx, &o, log)
			return o
		}
		r.Feed = feed
	}

	if b.Sinks != nil {
		sink, err := b.Sinks(runID, job.Symbol)
		if err != nil {
			// Without a sink the run still produces its in-memory result.
			log.Error("opening trade sink", "err", err)
			b.Metrics.IncSinkError()
		} else {
			r.Sink = sink
		}
	}

	o.Result, o.Err = r.Run(ctx)
	o.Record = o.Result.Record(runID, job.Path, o.Err)
	if o.Result.Strategy == "" {
		o.Record.Strategy = b.Strategy.Name()
		o.Record.Symbol = job.Symbol
	}
	b.record(ctx, &o, log)
	return o
}

func (b *Batch) record(ctx context.Context, o *Outcome, log *slog.Logger) {
	if b.OrgDir != "" {
		o.Record.OrgPath = filepath.Join(b.OrgDir, fmt.Sprintf("%s.%s.org", o.Job.Symbol, o.RunID))
		err := os.MkdirAll(b.OrgDir, 0o755)
		if err == nil {
			err = o.Record.WriteOrg()
		}
		if err != nil {
			log.Error("writing org report", "path", o.Record.OrgPath, "err", err)
			o.Record.OrgPath = ""
		}
	}
	if b.Recorder != nil {
		if err := b.Recorder.RecordRun(ctx, o.Record); err != nil {
			log.Error("recording run", "err", err)
		}
	}
}
