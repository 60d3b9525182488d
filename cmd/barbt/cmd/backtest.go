package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/barbt/backtest"
	"github.com/rustyeddy/barbt/config"
	"github.com/rustyeddy/barbt/journal"
	"github.com/rustyeddy/barbt/metrics"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a strategy over one instrument or a configured batch",
	Long: `Backtest replays daily bars through a strategy and a cash-and-shares
portfolio, logging each executed trade.

Supported strategies:
  - buy-and-hold: Spend all cash on the first bar, hold to the end
  - momentum:     Buy 10 when RSI(14) <= 30 below EMA(14), sell 10 when
                  RSI >= 70 above EMA; sell everything on the last bar
  - band:         Buy with all cash below mean-2SD of the prior 14 closes,
                  sell everything above mean+2SD (needs 20 bars)
  - noop:         Never trade (baseline)

Without --data the instruments listed in the config are run in parallel.

Examples:
  barbt backtest -d data/AAPL.csv -s band
  barbt backtest -c barbt.yaml --journal csv,sqlite --db runs.db`,
	RunE: runBacktest,
}

var (
	btDataPath    string
	btSymbol      string
	btStrategy    string
	btBalance     float64
	btJournal     []string
	btOutDir      string
	btDBPath      string
	btRedisAddr   string
	btParallelism int
	btOrg         bool

	btPeriod     int
	btOversold   float64
	btOverbought float64
	btQuantity   int64
	btLookback   int
	btK          float64
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	f := backtestCmd.Flags()
	f.StringVarP(&btDataPath, "data", "d", "", "bar file (date,open,high,low,close,volume csv or .parquet)")
	f.StringVar(&btSymbol, "symbol", "", "instrument symbol (default: data file name)")
	f.StringVarP(&btStrategy, "strategy", "s", "", "strategy name (buy-and-hold, momentum, band, noop)")
	f.Float64VarP(&btBalance, "balance", "b", 0, "starting cash")
	f.StringSliceVar(&btJournal, "journal", nil, "trade outputs: csv, sqlite, parquet, redis")
	f.StringVarP(&btOutDir, "out", "o", "", "directory for per-instrument trade logs")
	f.StringVar(&btDBPath, "db", "", "path to SQLite journal DB")
	f.StringVar(&btRedisAddr, "redis", "", "redis address for the trade stream")
	f.IntVarP(&btParallelism, "parallel", "p", 0, "instruments run at once")
	f.BoolVar(&btOrg, "org", false, "write an org-mode report per run into --out")

	f.IntVar(&btPeriod, "period", 0, "momentum: RSI and EMA period")
	f.Float64Var(&btOversold, "oversold", 0, "momentum: buy at or below this RSI")
	f.Float64Var(&btOverbought, "overbought", 0, "momentum: sell at or above this RSI")
	f.Int64Var(&btQuantity, "qty", 0, "momentum: shares per signal")
	f.IntVar(&btLookback, "lookback", 0, "band: closes in the band window")
	f.Float64Var(&btK, "k", 0, "band: width in standard deviations")
}

// applyBacktestFlags overrides cfg with the flags the user actually set.
func applyBacktestFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if btDataPath != "" {
		sym := btSymbol
		if sym == "" {
			sym = symbolFromPath(btDataPath)
		}
		cfg.Data.Instruments = []config.Instrument{{Symbol: sym, Path: btDataPath}}
	}
	if f.Changed("strategy") {
		cfg.Strategy.Name = btStrategy
	}
	if f.Changed("balance") {
		cfg.Account.Balance = btBalance
	}
	if f.Changed("journal") {
		cfg.Journal.Types = btJournal
	}
	if f.Changed("out") {
		cfg.Journal.Dir = btOutDir
	}
	if f.Changed("db") {
		cfg.Journal.DBPath = btDBPath
	}
	if f.Changed("redis") {
		cfg.Journal.RedisAddr = btRedisAddr
	}
	if f.Changed("parallel") {
		cfg.Runner.Parallelism = btParallelism
	}
	if f.Changed("org") {
		cfg.Journal.Org = btOrg
	}
	if f.Changed("period") {
		cfg.Strategy.Momentum.Period = btPeriod
	}
	if f.Changed("oversold") {
		cfg.Strategy.Momentum.Oversold = btOversold
	}
	if f.Changed("overbought") {
		cfg.Strategy.Momentum.Overbought = btOverbought
	}
	if f.Changed("qty") {
		cfg.Strategy.Momentum.Quantity = btQuantity
	}
	if f.Changed("lookback") {
		cfg.Strategy.Band.Lookback = btLookback
	}
	if f.Changed("k") {
		cfg.Strategy.Band.K = btK
	}
}

// symbolFromPath turns data/aapl.csv into AAPL.
func symbolFromPath(path string) string {
	base := filepath.Base(path)
	return strings.ToUpper(strings.TrimSuffix(base, filepath.Ext(base)))
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyBacktestFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if len(cfg.Data.Instruments) == 0 {
		return fmt.Errorf("no instruments: pass --data or list data.instruments in the config")
	}

	m := metrics.New(prometheus.NewRegistry())
	env, err := newBatch(cmd.Context(), cfg, m)
	if err != nil {
		return err
	}
	defer env.Close()

	outcomes, err := env.Batch.Run(cmd.Context())
	if err != nil {
		return err
	}

	return reportOutcomes(cmd, outcomes)
}

func reportOutcomes(cmd *cobra.Command, outcomes []backtest.Outcome) error {
	out := cmd.OutOrStdout()
	failed := 0
	recs := make([]journal.RunRecord, 0, len(outcomes))
	for _, o := range outcomes {
		recs = append(recs, o.Record)
		if o.Err != nil {
			failed++
		}
	}

	if len(outcomes) == 1 {
		backtest.PrintRun(out, recs[0])
	} else {
		backtest.PrintSummary(out, recs)
		for _, o := range outcomes {
			if o.Err != nil {
				fmt.Fprintf(out, "%s: %v\n", o.Job.Symbol, o.Err)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d runs failed", failed, len(outcomes))
	}
	return nil
}
