// Package scheduler re-runs backtests on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rustyeddy/barbt/logx"
)

// Task is one scheduled job, typically a batch backtest.
type Task func(ctx context.Context) error

// Scheduler manages the cron entries. A task still running when its next
// tick fires is skipped rather than overlapped.
type Scheduler struct {
	Cron *cron.Cron
	Ctx  context.Context
	Log  *slog.Logger

	mu      sync.Mutex
	runs    int
	lastErr error
	lastRun time.Time
}

func New(ctx context.Context, log *slog.Logger) *Scheduler {
	log = logx.OrDiscard(log)
	cl := cronLogger{log}
	return &Scheduler{
		Cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		Ctx: ctx,
		Log: log,
	}
}

// Register adds task under a standard 5-field cron spec.
func (s *Scheduler) Register(name, spec string, task Task) error {
	if _, err := s.Cron.AddFunc(spec, func() { s.RunNow(name, task) }); err != nil {
		return fmt.Errorf("register %s task: %w", name, err)
	}
	s.Log.Info("task registered", "task", name, "cron", spec)
	return nil
}

// RunNow executes task immediately and records the outcome.
func (s *Scheduler) RunNow(name string, task Task) error {
	start := time.Now()
	s.Log.Info("running task", "task", name)

	err := task(s.Ctx)

	s.mu.Lock()
	s.runs++
	s.lastErr = err
	s.lastRun = start
	s.mu.Unlock()

	if err != nil {
		s.Log.Error("task failed", "task", name, "err", err, "elapsed", time.Since(start))
	} else {
		s.Log.Info("task finished", "task", name, "elapsed", time.Since(start))
	}
	return err
}

// Stats reports how many tasks ran and the last outcome.
func (s *Scheduler) Stats() (runs int, last time.Time, lastErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs, s.lastRun, s.lastErr
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started", "entries", len(s.Cron.Entries()))
}

// Stop stops the scheduler and waits for running tasks to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// Next returns the next activation time of every entry.
func (s *Scheduler) Next() []time.Time {
	var out []time.Time
	for _, e := range s.Cron.Entries() {
		out = append(out, e.Next)
	}
	return out
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append([]interface{}{"err", err}, keysAndValues...)...)
}
