package journal

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/rustyeddy/barbt/portfolio"
)

// CSVHeader is written once at the top of every trade log.
var CSVHeader = []string{"Date", "Action", "Price", "Shares", "Balance"}

// CSVSink writes the trade log as CSV. The header goes out when the sink is
// created, so an aborted run still leaves a valid, empty log behind.
type CSVSink struct {
	w *csv.Writer
	c io.Closer
}

// NewCSV creates (or truncates) path and writes the header.
func NewCSV(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	s, err := newCSV(f, f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return s, nil
}

// NewCSVWriter writes the log to w. Close flushes but does not close w.
func NewCSVWriter(w io.Writer) (*CSVSink, error) {
	return newCSV(w, nil)
}

func newCSV(w io.Writer, c io.Closer) (*CSVSink, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return nil, err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return &CSVSink{w: cw, c: c}, nil
}

func (s *CSVSink) Record(e portfolio.TradeEvent) error {
	return s.w.Write([]string{
		e.Date,
		e.Action.String(),
		money(e.Price),
		strconv.FormatInt(e.Quantity, 10),
		money(e.Cash),
	})
}

func (s *CSVSink) Close() error {
	s.w.Flush()
	err := s.w.Error()
	if s.c != nil {
		if cerr := s.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func money(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
