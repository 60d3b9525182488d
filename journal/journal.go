// Package journal records executed trades and run summaries.
package journal

import (
	"errors"

	"github.com/rustyeddy/barbt/portfolio"
)

// Sink receives the trade events of one run, in order. Close flushes and
// releases whatever the sink holds; it is called exactly once per run.
type Sink interface {
	Record(portfolio.TradeEvent) error
	Close() error
}

// TradeRecord is a trade event tagged with the run and instrument it
// belongs to. It is the row shape of the sqlite, parquet and redis sinks.
type TradeRecord struct {
	RunID    string  `json:"run_id" parquet:"run_id"`
	Seq      int     `json:"seq" parquet:"seq"`
	Symbol   string  `json:"symbol" parquet:"symbol"`
	Date     string  `json:"date" parquet:"date"`
	Action   string  `json:"action" parquet:"action"`
	Price    float64 `json:"price" parquet:"price"`
	Quantity int64   `json:"quantity" parquet:"quantity"`
	Cash     float64 `json:"cash" parquet:"cash"`
}

func newTradeRecord(runID, symbol string, seq int, e portfolio.TradeEvent) TradeRecord {
	return TradeRecord{
		RunID:    runID,
		Seq:      seq,
		Symbol:   symbol,
		Date:     e.Date,
		Action:   e.Action.String(),
		Price:    e.Price,
		Quantity: e.Quantity,
		Cash:     e.Cash,
	}
}

// Discard accepts and drops every event.
var Discard Sink = discard{}

type discard struct{}

func (discard) Record(portfolio.TradeEvent) error { return nil }
func (discard) Close() error                      { return nil }

// Tee fans each event out to every sink. A failing sink does not stop the
// others from receiving the event; errors are joined.
func Tee(sinks ...Sink) Sink {
	switch len(sinks) {
	case 0:
		return Discard
	case 1:
		return sinks[0]
	}
	return tee(sinks)
}

type tee []Sink

func (t tee) Record(e portfolio.TradeEvent) error {
	var errs []error
	for _, s := range t {
		if err := s.Record(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t tee) Close() error {
	var errs []error
	for _, s := range t {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Memory keeps events in a slice. Used by tests and by callers that want
// the trade list after a run.
type Memory struct {
	Events []portfolio.TradeEvent
	Closed bool
}

func (m *Memory) Record(e portfolio.TradeEvent) error {
	m.Events = append(m.Events, e)
	return nil
}

func (m *Memory) Close() error {
	m.Closed = true
	return nil
}
