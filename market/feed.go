package market

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// BarFeed yields bars one at a time in file order.
// Implementations return (ok=false, err=nil) at EOF.
type BarFeed interface {
	Next() (b Bar, ok bool, err error)
	Close() error
}

// Open picks a feed by file extension: .parquet is read with parquet-go,
// anything else is treated as comma delimited text.
func Open(path string) (BarFeed, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
		return NewParquetBarFeed(path)
	default:
		return NewCSVBarFeed(path)
	}
}

// Collect drains feed into a TimeSeries and closes it.
func Collect(symbol string, feed BarFeed) (*TimeSeries, error) {
	defer feed.Close()

	var bars []Bar
	for {
		b, ok, err := feed.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		bars = append(bars, b)
	}
	return &TimeSeries{Symbol: symbol, bars: bars}, nil
}

// Load opens path and collects it into a series tagged with symbol.
func Load(symbol, path string) (*TimeSeries, error) {
	feed, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	ts, err := Collect(symbol, feed)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	ts.Source = path
	return ts, nil
}

// CSVBarFeed reads rows of
//
//	date,open,high,low,close,volume
//
// The first row is skipped when it does not parse as a bar (a header).
// Empty and short rows are skipped.
type CSVBarFeed struct {
	f    *os.File
	r    *csv.Reader
	line int
}

func NewCSVBarFeed(path string) (*CSVBarFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return newCSVBarFeed(f, f), nil
}

// NewCSVBarReader reads bars from r. Close is a no-op for the reader.
func NewCSVBarReader(r io.Reader) *CSVBarFeed {
	return newCSVBarFeed(r, nil)
}

func newCSVBarFeed(r io.Reader, f *os.File) *CSVBarFeed {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return &CSVBarFeed{f: f, r: cr}
}

func (f *CSVBarFeed) Close() error {
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

func (f *CSVBarFeed) Next() (Bar, bool, error) {
	for {
		row, err := f.r.Read()
		if errors.Is(err, io.EOF) {
			return Bar{}, false, nil
		}
		if err != nil {
			return Bar{}, false, err
		}
		f.line++

		b, ok, err := parseBarRow(row)
		if f.line == 1 && err != nil {
			// header
			continue
		}
		if err != nil {
			return Bar{}, false, fmt.Errorf("line %d: %w", f.line, err)
		}
		if !ok {
			continue
		}
		return b, true, nil
	}
}

var barColumns = []string{"open", "high", "low", "close", "volume"}

func parseBarRow(row []string) (Bar, bool, error) {
	if len(row) < 6 {
		return Bar{}, false, nil
	}
	date := strings.TrimSpace(row[0])
	if date == "" {
		return Bar{}, false, nil
	}

	var vals [5]float64
	for i := range vals {
		s := strings.TrimSpace(row[i+1])
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Bar{}, false, fmt.Errorf("bad %s %q: %w", barColumns[i], s, err)
		}
		vals[i] = v
	}

	return Bar{
		Date:   date,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, true, nil
}

// ParquetBarFeed serves bars from a Parquet file whose columns follow the
// Bar struct tags. The whole file is read up front.
type ParquetBarFeed struct {
	*SliceFeed
}

func NewParquetBarFeed(path string) (*ParquetBarFeed, error) {
	bars, err := parquet.ReadFile[Bar](path)
	if err != nil {
		return nil, err
	}
	return &ParquetBarFeed{SliceFeed: NewSliceFeed(bars)}, nil
}

// WriteParquet stores bars in the layout ParquetBarFeed reads.
func WriteParquet(path string, bars []Bar) error {
	return parquet.WriteFile(path, bars)
}

// WriteCSV writes bars with a date,open,high,low,close,volume header.
func WriteCSV(w io.Writer, bars []Bar) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"date"}, barColumns...)); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for _, b := range bars {
		row := []string{b.Date, f(b.Open), f(b.High), f(b.Low), f(b.Close), f(b.Volume)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes bars to path, choosing the format by extension like Open.
func Save(path string, bars []Bar) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
		return WriteParquet(path, bars)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, bars); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SliceFeed serves bars from memory.
type SliceFeed struct {
	bars   []Bar
	idx    int
	closed bool
}

func NewSliceFeed(bars []Bar) *SliceFeed {
	return &SliceFeed{bars: bars}
}

func (s *SliceFeed) Next() (Bar, bool, error) {
	if s.idx >= len(s.bars) {
		return Bar{}, false, nil
	}
	b := s.bars[s.idx]
	s.idx++
	return b, true, nil
}

func (s *SliceFeed) Close() error {
	s.closed = true
	return nil
}

func (s *SliceFeed) Closed() bool { return s.closed }
