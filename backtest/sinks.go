package backtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rustyeddy/barbt/journal"
)

// SinkFactory builds the trade sink for one run.
type SinkFactory func(runID, symbol string) (journal.Sink, error)

// SinkOptions selects the journal outputs of a batch.
type SinkOptions struct {
	// Dir holds per-instrument files named <SYMBOL>.<Tag>.log.csv and
	// <SYMBOL>.<Tag>.trades.parquet.
	Dir string
	Tag string

	CSV     bool
	Parquet bool

	Store *journal.SQLite // trade_events rows, nil to skip

	Redis       journal.StreamAdder // nil to skip
	RedisStream string
}

// LogPath returns the csv trade log path for symbol.
func (o SinkOptions) LogPath(symbol string) string {
	return filepath.Join(o.Dir, fmt.Sprintf("%s.%s.log.csv", symbol, o.tag()))
}

// ParquetPath returns the parquet trade file path for symbol.
func (o SinkOptions) ParquetPath(symbol string) string {
	return filepath.Join(o.Dir, fmt.Sprintf("%s.%s.trades.parquet", symbol, o.tag()))
}

func (o SinkOptions) tag() string {
	t := strings.ToLower(strings.TrimSpace(o.Tag))
	if t == "" {
		return "trades"
	}
	return t
}

// Factory returns a SinkFactory teeing every enabled output.
func (o SinkOptions) Factory() SinkFactory {
	return func(runID, symbol string) (journal.Sink, error) {
		var sinks []journal.Sink

		if o.CSV || o.Parquet {
			if err := os.MkdirAll(o.Dir, 0o755); err != nil {
				return nil, err
			}
		}
		if o.CSV {
			s, err := journal.NewCSV(o.LogPath(symbol))
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, s)
		}
		if o.Parquet {
			sinks = append(sinks, journal.NewParquet(o.ParquetPath(symbol), runID, symbol))
		}
		if o.Store != nil {
			sinks = append(sinks, o.Store.Sink(runID, symbol))
		}
		if o.Redis != nil {
			sinks = append(sinks, journal.NewRedis(o.Redis, o.RedisStream, runID, symbol))
		}
		return journal.Tee(sinks...), nil
	}
}
