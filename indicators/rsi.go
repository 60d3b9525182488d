package indicators

import "github.com/rustyeddy/barbt/market"

// RSI computes the Relative Strength Index at bar i from the period
// close-to-close deltas ending at i (indices i-period+1 .. i, each against its
// predecessor). Gains and losses are simple averages over the window.
//
// The result is undefined when i < period. When the window holds no losses
// the RSI is 100, even if it also holds no gains.
func RSI(ts *market.TimeSeries, i, period int) Value {
	if period < 1 || i < period || i >= ts.Len() {
		return Undefined
	}

	var avgGain, avgLoss float64
	for k := i - period + 1; k <= i; k++ {
		change := ts.Close(k) - ts.Close(k-1)
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		return Computed(100)
	}
	rs := avgGain / avgLoss
	return Computed(100 - 100/(1+rs))
}
