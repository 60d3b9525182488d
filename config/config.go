package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/barbt/strategies"
)

// Config is the complete backtest configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Runner   RunnerConfig   `json:"runner" yaml:"runner"`
	Schedule ScheduleConfig `json:"schedule" yaml:"schedule"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// AccountConfig contains account initialization parameters
type AccountConfig struct {
	ID      string  `json:"id" yaml:"id"`
	Balance float64 `json:"balance" yaml:"balance"`
}

// StrategyConfig selects a strategy and carries the tunables of each one.
type StrategyConfig struct {
	Name     string                    `json:"name" yaml:"name"`
	Momentum strategies.MomentumConfig `json:"momentum" yaml:"momentum"`
	Band     strategies.BandConfig     `json:"band" yaml:"band"`
}

// Params converts the config blocks for strategies.ByName.
func (s StrategyConfig) Params() strategies.Params {
	return strategies.Params{Momentum: s.Momentum, Band: s.Band}
}

// Build returns the configured strategy.
func (s StrategyConfig) Build() (strategies.Strategy, error) {
	return strategies.ByName(s.Name, s.Params())
}

type Instrument struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Path   string `json:"path" yaml:"path"` // .csv or .parquet
}

type DataConfig struct {
	Instruments []Instrument `json:"instruments" yaml:"instruments"`
}

// Journal types
const (
	JournalCSV     = "csv"
	JournalSQLite  = "sqlite"
	JournalParquet = "parquet"
	JournalRedis   = "redis"
)

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Types       []string `json:"type" yaml:"type"`
	Dir         string   `json:"dir,omitempty" yaml:"dir,omitempty"` // per-instrument csv/parquet logs and org reports
	DBPath      string   `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	RedisAddr   string   `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	RedisStream string   `json:"redis_stream,omitempty" yaml:"redis_stream,omitempty"`
	Org         bool     `json:"org,omitempty" yaml:"org,omitempty"`
}

// Has reports whether journal type t is enabled.
func (j JournalConfig) Has(t string) bool {
	for _, x := range j.Types {
		if strings.EqualFold(x, t) {
			return true
		}
	}
	return false
}

type RunnerConfig struct {
	Parallelism int `json:"parallelism" yaml:"parallelism"`
}

type ScheduleConfig struct {
	Cron        string `json:"cron,omitempty" yaml:"cron,omitempty"`
	MetricsAddr string `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // text or json
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON),
// applies BARBT_* environment overrides and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads .env style files into the process environment. Missing
// files are ignored; with no arguments ./.env is tried.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	// Determine format by extension
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides fields from BARBT_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("BARBT_ACCOUNT_ID", &c.Account.ID)
	str("BARBT_STRATEGY", &c.Strategy.Name)
	str("BARBT_JOURNAL_DIR", &c.Journal.Dir)
	str("BARBT_DB_PATH", &c.Journal.DBPath)
	str("BARBT_REDIS_ADDR", &c.Journal.RedisAddr)
	str("BARBT_REDIS_STREAM", &c.Journal.RedisStream)
	str("BARBT_CRON", &c.Schedule.Cron)
	str("BARBT_METRICS_ADDR", &c.Schedule.MetricsAddr)
	str("BARBT_LOG_LEVEL", &c.Log.Level)
	str("BARBT_LOG_FORMAT", &c.Log.Format)

	if v, ok := lookup("BARBT_JOURNAL"); ok && v != "" {
		c.Journal.Types = splitAndTrim(v)
	}
	if v, ok := lookup("BARBT_BALANCE"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("BARBT_BALANCE: %w", err)
		}
		c.Account.Balance = f
	}
	if v, ok := lookup("BARBT_PARALLELISM"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BARBT_PARALLELISM: %w", err)
		}
		c.Runner.Parallelism = n
	}
	return nil
}

func splitAndTrim(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if _, err := c.Strategy.Build(); err != nil {
		return fmt.Errorf("strategy.name: %w", err)
	}
	if c.Strategy.Momentum.Oversold > c.Strategy.Momentum.Overbought {
		return fmt.Errorf("strategy.momentum.oversold must not exceed overbought")
	}

	seen := map[string]bool{}
	for i, in := range c.Data.Instruments {
		if in.Symbol == "" {
			return fmt.Errorf("data.instruments[%d].symbol is required", i)
		}
		if in.Path == "" {
			return fmt.Errorf("data.instruments[%d].path is required", i)
		}
		if seen[in.Symbol] {
			return fmt.Errorf("data.instruments: duplicate symbol %s", in.Symbol)
		}
		seen[in.Symbol] = true
	}

	for _, t := range c.Journal.Types {
		switch strings.ToLower(t) {
		case JournalCSV, JournalSQLite, JournalParquet, JournalRedis:
		default:
			return fmt.Errorf("journal.type must be one of csv, sqlite, parquet, redis (got %q)", t)
		}
	}
	if (c.Journal.Has(JournalCSV) || c.Journal.Has(JournalParquet) || c.Journal.Org) && c.Journal.Dir == "" {
		return fmt.Errorf("journal dir required for csv, parquet and org output")
	}
	if c.Journal.Has(JournalSQLite) && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for SQLite type")
	}
	if c.Journal.Has(JournalRedis) && c.Journal.RedisAddr == "" {
		return fmt.Errorf("journal redis_addr required for redis type")
	}

	if c.Runner.Parallelism < 1 {
		return fmt.Errorf("runner.parallelism must be at least 1")
	}
	if c.Schedule.Cron != "" {
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			return fmt.Errorf("schedule.cron: %w", err)
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be 'text' or 'json'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:      "SIM-001",
			Balance: 10000,
		},
		Strategy: StrategyConfig{
			Name:     "momentum",
			Momentum: strategies.DefaultMomentumConfig(),
			Band:     strategies.DefaultBandConfig(),
		},
		Data: DataConfig{
			Instruments: []Instrument{
				{Symbol: "AAPL", Path: "./data/AAPL.csv"},
			},
		},
		Journal: JournalConfig{
			Types: []string{JournalCSV},
			Dir:   "./logs",
		},
		Runner: RunnerConfig{
			Parallelism: 4,
		},
		Schedule: ScheduleConfig{
			Cron:        "30 22 * * 1-5",
			MetricsAddr: ":9108",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
