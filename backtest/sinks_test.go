package backtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rustyeddy/barbt/journal"
	"github.com/rustyeddy/barbt/portfolio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkOptionsPaths(t *testing.T) {
	t.Parallel()

	o := SinkOptions{Dir: "logs", Tag: " Momentum "}
	assert.Equal(t, filepath.Join("logs", "AAPL.momentum.log.csv"), o.LogPath("AAPL"))
	assert.Equal(t, filepath.Join("logs", "AAPL.momentum.trades.parquet"), o.ParquetPath("AAPL"))
	assert.Equal(t, filepath.Join("logs", "AAPL.trades.log.csv"), SinkOptions{Dir: "logs"}.LogPath("AAPL"))
}

func TestSinkOptionsFactory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := journal.NewSQLite(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	o := SinkOptions{Dir: filepath.Join(dir, "out"), Tag: "band", CSV: true, Parquet: true, Store: store}
	sink, err := o.Factory()("RUN1", "AAPL")
	require.NoError(t, err)

	ev := portfolio.TradeEvent{Date: "2024-01-02", Action: portfolio.Buy, Price: 10, Quantity: 3, Cash: 70}
	require.NoError(t, sink.Record(ev))
	require.NoError(t, sink.Close())

	assert.FileExists(t, o.LogPath("AAPL"))

	pq, err := journal.ReadParquetTrades(o.ParquetPath("AAPL"))
	require.NoError(t, err)
	require.Len(t, pq, 1)
	assert.Equal(t, int64(3), pq[0].Quantity)

	rows, err := store.ListTradesByRunID(context.Background(), "RUN1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "BUY", rows[0].Action)
}

func TestSinkOptionsNothingEnabled(t *testing.T) {
	t.Parallel()

	sink, err := SinkOptions{}.Factory()("RUN1", "AAPL")
	require.NoError(t, err)
	assert.Equal(t, journal.Discard, sink)
}
