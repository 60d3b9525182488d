package indicators

import (
	"math"

	"github.com/rustyeddy/barbt/market"
)

// EMA computes an exponential moving average over the period closes ending
// at bar i. The average is seeded with the first close of that window and
// blended forward with alpha = 2/(period+1).
//
// This is a windowed EMA: each call starts over from the window's first
// close and does not carry state from earlier bars, so EMA(i) is not the
// recursive continuation of EMA(i-1). Momentum thresholds are tuned against
// this behaviour.
func EMA(ts *market.TimeSeries, i, period int) Value {
	if period < 1 || i < period-1 || i >= ts.Len() {
		return Undefined
	}

	alpha := 2.0 / float64(period+1)
	start := i - period + 1
	ema := ts.Close(start)
	for k := start + 1; k <= i; k++ {
		ema = ts.Close(k)*alpha + ema*(1-alpha)
	}
	return Computed(ema)
}

// RollingMean is the arithmetic mean of the window closes ending at bar i
// (inclusive).
func RollingMean(ts *market.TimeSeries, i, window int) Value {
	if window < 1 || i < window-1 || i >= ts.Len() {
		return Undefined
	}
	return Computed(Mean(ts.Closes(i-window+1, i+1)))
}

// RollingStdDev is the population standard deviation of the window closes
// ending at bar i (inclusive).
func RollingStdDev(ts *market.TimeSeries, i, window int) Value {
	if window < 1 || i < window-1 || i >= ts.Len() {
		return Undefined
	}
	return Computed(StdDev(ts.Closes(i-window+1, i+1)))
}

// PriorCloses returns the n closes strictly before bar i, [i-n, i-1].
// ok is false when fewer than n bars precede i.
func PriorCloses(ts *market.TimeSeries, i, n int) (closes []float64, ok bool) {
	if n < 1 || i < n || i > ts.Len() {
		return nil, false
	}
	return ts.Closes(i-n, i), true
}

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	if allEqual(xs) {
		return xs[0]
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation of xs (divides by N).
func StdDev(xs []float64) float64 {
	if len(xs) == 0 || allEqual(xs) {
		return 0
	}
	m := Mean(xs)
	ss := 0.0
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// allEqual short-circuits flat windows so they report an exact mean and a
// zero deviation regardless of float summation error.
func allEqual(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}
