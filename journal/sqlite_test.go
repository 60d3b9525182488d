package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('runs','trade_events')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["runs"])
	assert.True(t, found["trade_events"])
}

func TestSQLiteSinkAndQueries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	s := j.Sink("RUN1", "AAPL")
	for _, e := range testEvents {
		require.NoError(t, s.Record(e))
	}
	require.NoError(t, s.Close())

	// A second run must not leak into the first.
	other := j.Sink("RUN2", "MSFT")
	require.NoError(t, other.Record(testEvents[0]))

	trades, err := j.ListTradesByRunID(ctx, "RUN1")
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, 1, trades[0].Seq)
	assert.Equal(t, "BUY", trades[0].Action)
	assert.Equal(t, "SELL", trades[1].Action)
	assert.InDelta(t, 150.25, trades[1].Price, 1e-9)
	assert.Equal(t, "AAPL", trades[1].Symbol)

	none, err := j.ListTradesByRunID(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteRuns(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	older := RunRecord{
		RunID:        "RUN1",
		Created:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Symbol:       "AAPL",
		Strategy:     "BUY_AND_HOLD",
		Dataset:      "aapl.csv",
		Bars:         3,
		StartDate:    "2024-01-02",
		EndDate:      "2024-01-04",
		StartBalance: 1000,
		EndBalance:   0,
		EndShares:    10,
		LastClose:    150,
		NetWorth:     1500,
		Trades:       1,
		Buys:         1,
		Status:       StatusOK,
	}
	newer := older
	newer.RunID = "RUN2"
	newer.Created = older.Created.Add(time.Hour)
	newer.Status = StatusInsufficientData
	newer.Error = "insufficient data"

	require.NoError(t, j.RecordRun(ctx, older))
	require.NoError(t, j.RecordRun(ctx, newer))

	got, err := j.GetRun(ctx, "RUN1")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, int64(10), got.EndShares)
	assert.InDelta(t, 1500, got.NetWorth, 1e-9)
	assert.True(t, older.Created.Equal(got.Created))

	runs, err := j.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "RUN2", runs[0].RunID)
	assert.Equal(t, StatusInsufficientData, runs[0].Status)

	runs, err = j.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	_, err = j.GetRun(ctx, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	assert.Error(t, j.RecordRun(ctx, RunRecord{}))
}

func TestSQLiteExportRunOrg(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	require.NoError(t, j.RecordRun(ctx, RunRecord{RunID: "RUN1", Symbol: "AAPL", Strategy: "BUY_AND_HOLD", Status: StatusOK}))
	s := j.Sink("RUN1", "AAPL")
	require.NoError(t, s.Record(testEvents[0]))

	out, err := j.ExportRunOrg(ctx, "RUN1")
	require.NoError(t, err)
	assert.Contains(t, out, "* BACKTEST: BUY_AND_HOLD AAPL")
	assert.Contains(t, out, "** Trades")
	assert.Contains(t, out, ":ACTION: BUY")
}
