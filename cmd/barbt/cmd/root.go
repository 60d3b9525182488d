package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/barbt/config"
	"github.com/rustyeddy/barbt/logx"
)

var rootCmd = &cobra.Command{
	Use:   "barbt",
	Short: "Backtest rule-based strategies over daily equity bars",
	Long: `barbt replays daily OHLCV bars through a trading strategy and a
cash-and-shares portfolio, and records every executed trade.

It provides tools for:
  - Backtesting buy-and-hold, RSI/EMA momentum and band reversion strategies
  - Running many instruments in parallel from a config file
  - Journaling trades to CSV, Parquet, SQLite or a redis stream
  - Exporting indicator series (RSI, EMA, rolling average) as CSV
  - Re-running a batch on a cron schedule with Prometheus metrics`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	cfgFile   string
	envFile   string
	logLevel  string
	logFormat string

	logger *slog.Logger
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (yaml or json)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with BARBT_* overrides")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "text or json (overrides config)")
}

func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	logger = logx.NewDefault(logLevel)
	return nil
}

// loadConfig reads --config, or starts from the defaults, and applies
// environment overrides. The logger is rebuilt from the result.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if cfgFile != "" {
		c, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else {
		cfg = config.Default()
		if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
			return nil, err
		}
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	logger = logx.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}
