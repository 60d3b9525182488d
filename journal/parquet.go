package journal

import (
	"github.com/parquet-go/parquet-go"

	"github.com/rustyeddy/barbt/portfolio"
)

// ParquetSink buffers a run's trades and writes them as one Parquet file on
// Close. Nothing is written for a run that is never closed.
type ParquetSink struct {
	path   string
	runID  string
	symbol string
	rows   []TradeRecord
}

func NewParquet(path, runID, symbol string) *ParquetSink {
	return &ParquetSink{path: path, runID: runID, symbol: symbol}
}

func (s *ParquetSink) Record(e portfolio.TradeEvent) error {
	s.rows = append(s.rows, newTradeRecord(s.runID, s.symbol, len(s.rows)+1, e))
	return nil
}

func (s *ParquetSink) Close() error {
	return parquet.WriteFile(s.path, s.rows)
}

// ReadParquetTrades loads a trade file written by ParquetSink.
func ReadParquetTrades(path string) ([]TradeRecord, error) {
	return parquet.ReadFile[TradeRecord](path)
}
