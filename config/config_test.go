package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	require.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"zero balance", func(c *Config) { c.Account.Balance = 0 }, "account.balance must be positive"},
		{"unknown strategy", func(c *Config) { c.Strategy.Name = "martingale" }, "strategy.name"},
		{"inverted thresholds", func(c *Config) { c.Strategy.Momentum.Oversold = 80 }, "oversold must not exceed"},
		{"missing symbol", func(c *Config) { c.Data.Instruments[0].Symbol = "" }, "data.instruments[0].symbol is required"},
		{"missing path", func(c *Config) { c.Data.Instruments[0].Path = "" }, "data.instruments[0].path is required"},
		{"duplicate symbol", func(c *Config) {
			c.Data.Instruments = append(c.Data.Instruments, c.Data.Instruments[0])
		}, "duplicate symbol AAPL"},
		{"bad journal type", func(c *Config) { c.Journal.Types = []string{"kafka"} }, "journal.type must be one of"},
		{"csv without dir", func(c *Config) { c.Journal.Dir = "" }, "journal dir required"},
		{"sqlite without path", func(c *Config) { c.Journal.Types = []string{"sqlite"} }, "db_path required"},
		{"redis without addr", func(c *Config) { c.Journal.Types = []string{"redis"} }, "redis_addr required"},
		{"zero parallelism", func(c *Config) { c.Runner.Parallelism = 0 }, "runner.parallelism"},
		{"bad cron", func(c *Config) { c.Schedule.Cron = "every day" }, "schedule.cron"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := Default()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"barbt.yaml", "barbt.yml", "barbt.json"} {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), name)
			want := Default()
			want.Journal.Types = []string{"csv", "sqlite"}
			want.Journal.DBPath = "runs.db"
			require.NoError(t, want.SaveToFile(path))

			got, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoadFromFileYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "barbt.yaml")
	yml := `
account:
  balance: 1000
strategy:
  name: band
  band:
    lookback: 10
data:
  instruments:
    - symbol: MSFT
      path: msft.parquet
journal:
  type: [parquet]
  dir: out
runner:
  parallelism: 2
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	c, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, c.Account.Balance)
	assert.Equal(t, 10, c.Strategy.Band.Lookback)
	assert.True(t, c.Journal.Has("PARQUET"))
	assert.False(t, c.Journal.Has("csv"))

	s, err := c.Strategy.Build()
	require.NoError(t, err)
	assert.Equal(t, "BAND(10,2.0)", s.Name())
}

func TestLoadFromFileErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("account: [\n"), 0644))
	_, err = LoadFromFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("account:\n  balance: -1\n"), 0644))
	_, err = LoadFromFile(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestApplyEnvFromDotEnv(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".env")
	env := "BARBT_BALANCE=2500.5\n" +
		"BARBT_STRATEGY=buy-and-hold\n" +
		"BARBT_JOURNAL=csv, sqlite\n" +
		"BARBT_DB_PATH=/tmp/runs.db\n" +
		"BARBT_PARALLELISM=8\n" +
		"BARBT_LOG_FORMAT=json\n"
	require.NoError(t, os.WriteFile(path, []byte(env), 0644))

	vars, err := godotenv.Read(path)
	require.NoError(t, err)

	c := Default()
	require.NoError(t, c.ApplyEnv(mapLookup(vars)))

	assert.Equal(t, 2500.5, c.Account.Balance)
	assert.Equal(t, "buy-and-hold", c.Strategy.Name)
	assert.Equal(t, []string{"csv", "sqlite"}, c.Journal.Types)
	assert.Equal(t, "/tmp/runs.db", c.Journal.DBPath)
	assert.Equal(t, 8, c.Runner.Parallelism)
	assert.Equal(t, "json", c.Log.Format)
	require.NoError(t, c.Validate())
}

func TestApplyEnvBadNumbers(t *testing.T) {
	t.Parallel()

	c := Default()
	err := c.ApplyEnv(mapLookup(map[string]string{"BARBT_BALANCE": "lots"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BARBT_BALANCE")

	err = c.ApplyEnv(mapLookup(map[string]string{"BARBT_PARALLELISM": "x"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BARBT_PARALLELISM")
}

func TestLoadDotEnvMissingIsIgnored(t *testing.T) {
	t.Parallel()
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}
