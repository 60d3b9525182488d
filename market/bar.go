package market

import "strconv"

// Bar is one daily OHLCV observation. Date is an opaque label kept for
// logging and trade records; bars are never re-sorted by it.
//
// OHLC consistency (Low <= Open, Close <= High) is not checked.
type Bar struct {
	Date   string  `json:"date" parquet:"date"`
	Open   float64 `json:"open" parquet:"open"`
	High   float64 `json:"high" parquet:"high"`
	Low    float64 `json:"low" parquet:"low"`
	Close  float64 `json:"close" parquet:"close"`
	Volume float64 `json:"volume" parquet:"volume"`
}

// TimeSeries is an ordered, index addressable sequence of bars for a single
// instrument. Chronological order is trusted, not verified.
type TimeSeries struct {
	Symbol string
	Source string

	bars []Bar
}

// NewTimeSeries copies bars into a new series.
func NewTimeSeries(symbol string, bars []Bar) *TimeSeries {
	cp := make([]Bar, len(bars))
	copy(cp, bars)
	return &TimeSeries{Symbol: symbol, bars: cp}
}

// FromCloses builds a series where every OHLC field equals the close.
// Dates are "1", "2", ... Handy for tests and indicator exports of raw prices.
func FromCloses(symbol string, closes ...float64) *TimeSeries {
	bars := make([]Bar, len(closes))
	for i, c := range closes {
		bars[i] = Bar{Date: strconv.Itoa(i + 1), Open: c, High: c, Low: c, Close: c}
	}
	return &TimeSeries{Symbol: symbol, bars: bars}
}

func (ts *TimeSeries) Len() int {
	if ts == nil {
		return 0
	}
	return len(ts.bars)
}

// At returns the bar at index i. It panics if i is out of range.
func (ts *TimeSeries) At(i int) Bar {
	return ts.bars[i]
}

func (ts *TimeSeries) Close(i int) float64 {
	return ts.bars[i].Close
}

// Closes returns the closes in [from, to). The slice is a fresh copy.
func (ts *TimeSeries) Closes(from, to int) []float64 {
	out := make([]float64, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, ts.bars[i].Close)
	}
	return out
}

// First and Last return false on an empty series.
func (ts *TimeSeries) First() (Bar, bool) {
	if ts.Len() == 0 {
		return Bar{}, false
	}
	return ts.bars[0], true
}

func (ts *TimeSeries) Last() (Bar, bool) {
	if ts.Len() == 0 {
		return Bar{}, false
	}
	return ts.bars[len(ts.bars)-1], true
}

// Bars returns a copy of the underlying bars.
func (ts *TimeSeries) Bars() []Bar {
	cp := make([]Bar, len(ts.bars))
	copy(cp, ts.bars)
	return cp
}
