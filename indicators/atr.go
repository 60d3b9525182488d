package indicators

import (
	"math"

	"github.com/rustyeddy/barbt/market"
)

// ATR is Wilder's Average True Range at bar i. The first value, at
// i == period, is the mean of the true ranges of bars 1..period; later bars
// are smoothed as atr = (atr*(period-1) + tr) / period.
func ATR(ts *market.TimeSeries, i, period int) Value {
	if period < 1 || i < period || i >= ts.Len() {
		return Undefined
	}

	sum := 0.0
	for k := 1; k <= period; k++ {
		sum += trueRange(ts.At(k), ts.At(k-1))
	}
	atr := sum / float64(period)

	for k := period + 1; k <= i; k++ {
		atr = (atr*float64(period-1) + trueRange(ts.At(k), ts.At(k-1))) / float64(period)
	}
	return Computed(atr)
}

// trueRange is the largest of high-low and the gaps from the previous close.
func trueRange(cur, prev market.Bar) float64 {
	highLow := cur.High - cur.Low
	highClose := math.Abs(cur.High - prev.Close)
	lowClose := math.Abs(cur.Low - prev.Close)

	return math.Max(highLow, math.Max(highClose, lowClose))
}
