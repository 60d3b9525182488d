package cmd

import (
	"context"
	"fmt"
	"io"

	goredis "github.com/go-redis/redis/v8"

	"github.com/rustyeddy/barbt/backtest"
	"github.com/rustyeddy/barbt/config"
	"github.com/rustyeddy/barbt/journal"
	"github.com/rustyeddy/barbt/metrics"
)

// batchEnv is a batch plus the resources it holds open.
type batchEnv struct {
	Batch *backtest.Batch
	Store *journal.SQLite

	closers []io.Closer
}

func (e *batchEnv) Close() error {
	var first error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// newBatch wires the journal outputs, strategy and jobs described by cfg.
func newBatch(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*batchEnv, error) {
	strat, err := cfg.Strategy.Build()
	if err != nil {
		return nil, err
	}

	env := &batchEnv{}
	opts := backtest.SinkOptions{
		Dir:         cfg.Journal.Dir,
		Tag:         cfg.Strategy.Name,
		CSV:         cfg.Journal.Has(config.JournalCSV),
		Parquet:     cfg.Journal.Has(config.JournalParquet),
		RedisStream: cfg.Journal.RedisStream,
	}

	if cfg.Journal.Has(config.JournalSQLite) {
		store, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		env.Store = store
		env.closers = append(env.closers, store)
		opts.Store = store
	}

	if cfg.Journal.Has(config.JournalRedis) {
		var client *goredis.Client
		client, err = journal.DialRedis(ctx, cfg.Journal.RedisAddr)
		if err != nil {
			_ = env.Close()
			return nil, err
		}
		env.closers = append(env.closers, client)
		opts.Redis = client
	}

	jobs := make([]backtest.Job, 0, len(cfg.Data.Instruments))
	for _, in := range cfg.Data.Instruments {
		jobs = append(jobs, backtest.Job{Symbol: in.Symbol, Path: in.Path})
	}

	b := &backtest.Batch{
		Jobs:        jobs,
		Strategy:    strat,
		Cash:        cfg.Account.Balance,
		Parallelism: cfg.Runner.Parallelism,
		Sinks:       opts.Factory(),
		Log:         logger,
		Metrics:     m,
	}
	if env.Store != nil {
		b.Recorder = env.Store
	}
	if cfg.Journal.Org {
		b.OrgDir = cfg.Journal.Dir
	}
	env.Batch = b
	return env, nil
}
