// Package metrics exposes backtest counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the backtest collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	RunsTotal   *prometheus.CounterVec // labels: strategy, outcome
	TradesTotal *prometheus.CounterVec // labels: strategy, action
	SinkErrors  prometheus.Counter
	RunDuration prometheus.Histogram
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "barbt_runs_total",
			Help: "Backtest runs by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		TradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "barbt_trades_total",
			Help: "Executed trades by strategy and action",
		}, []string{"strategy", "action"}),
		SinkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "barbt_sink_errors_total",
			Help: "Trade sink write or close failures",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "barbt_run_duration_seconds",
			Help:    "Wall time of one backtest run",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}

	reg.MustRegister(
		m.RunsTotal,
		m.TradesTotal,
		m.SinkErrors,
		m.RunDuration,
	)

	return m
}

func (m *Metrics) ObserveRun(strategy, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(strategy, outcome).Inc()
	m.RunDuration.Observe(d.Seconds())
}

func (m *Metrics) IncTrade(strategy, action string) {
	if m == nil {
		return
	}
	m.TradesTotal.WithLabelValues(strategy, action).Inc()
}

func (m *Metrics) IncSinkError() {
	if m == nil {
		return
	}
	m.SinkErrors.Inc()
}

// Server exposes /metrics for a gatherer.
type Server struct {
	addr string
	srv  *http.Server
	log  *slog.Logger
}

func NewServer(addr string, g prometheus.Gatherer, log *slog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	return &Server{
		addr: addr,
		log:  log,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the server's mux.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		s.log.Info("metrics server listening", "addr", s.addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("metrics server error", "err", err)
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
