package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/barbt/portfolio"
)

// SQLite stores run summaries and their trade events.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time; batch runs share the handle.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

// Sink returns a per-run sink writing into trade_events. Closing the sink
// leaves the database open.
func (j *SQLite) Sink(runID, symbol string) Sink {
	return &sqliteSink{j: j, runID: runID, symbol: symbol}
}

type sqliteSink struct {
	j      *SQLite
	runID  string
	symbol string
	seq    int
}

func (s *sqliteSink) Record(e portfolio.TradeEvent) error {
	s.seq++
	return s.j.RecordTrade(newTradeRecord(s.runID, s.symbol, s.seq, e))
}

func (s *sqliteSink) Close() error { return nil }

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trade_events
		(run_id, seq, symbol, date, action, price, quantity, cash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.Seq, t.Symbol, t.Date, t.Action, t.Price, t.Quantity, t.Cash,
	)
	return err
}

// RecordRun inserts or replaces the summary row for r.RunID.
func (j *SQLite) RecordRun(ctx context.Context, r RunRecord) error {
	if r.RunID == "" {
		return fmt.Errorf("journal: run id is required")
	}
	if r.Created.IsZero() {
		r.Created = time.Now().UTC()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
		(run_id, created, symbol, strategy, dataset, bars, start_date, end_date,
		 start_balance, end_balance, end_shares, last_close, net_worth,
		 trades, buys, sells, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created.UTC(), r.Symbol, r.Strategy, r.Dataset, r.Bars, r.StartDate, r.EndDate,
		r.StartBalance, r.EndBalance, r.EndShares, r.LastClose, r.NetWorth,
		r.Trades, r.Buys, r.Sells, r.Status, r.Error,
	)
	return err
}

const runColumns = `run_id, created, symbol, strategy, dataset, bars, start_date, end_date,
	start_balance, end_balance, end_shares, last_close, net_worth,
	trades, buys, sells, status, error`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunRecord, error) {
	var r RunRecord
	err := s.Scan(
		&r.RunID, &r.Created, &r.Symbol, &r.Strategy, &r.Dataset, &r.Bars, &r.StartDate, &r.EndDate,
		&r.StartBalance, &r.EndBalance, &r.EndShares, &r.LastClose, &r.NetWorth,
		&r.Trades, &r.Buys, &r.Sells, &r.Status, &r.Error,
	)
	return r, err
}

// GetRun returns the run summary for runID.
func (j *SQLite) GetRun(ctx context.Context, runID string) (RunRecord, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}
	return r, nil
}

// ListRuns returns the most recent runs first. limit <= 0 means no limit.
func (j *SQLite) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTradesByRunID returns the trades of one run in execution order.
func (j *SQLite) ListTradesByRunID(ctx context.Context, runID string) ([]TradeRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, seq, symbol, date, action, price, quantity, cash
		FROM trade_events
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.RunID, &t.Seq, &t.Symbol, &t.Date, &t.Action, &t.Price, &t.Quantity, &t.Cash); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ExportRunOrg loads a run and its trades and returns the Org block.
func (j *SQLite) ExportRunOrg(ctx context.Context, runID string) (string, error) {
	r, err := j.GetRun(ctx, runID)
	if err != nil {
		return "", err
	}
	trades, err := j.ListTradesByRunID(ctx, runID)
	if err != nil {
		return "", err
	}
	s, err := FormatRunOrg(r)
	if err != nil {
		return "", err
	}
	if len(trades) > 0 {
		s += "\n** Trades\n" + FormatTradesOrg(trades)
	}
	return s, nil
}
