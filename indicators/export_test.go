package indicators

import (
	"bytes"
	"testing"

	"github.com/rustyeddy/barbt/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestATR(t *testing.T) {
	t.Parallel()

	ts := market.FromCloses("X", 10, 11, 13, 12)

	assert.False(t, ATR(ts, 1, 2).OK)
	assert.InDelta(t, 1.5, ATR(ts, 2, 2).V, 1e-12)
	assert.InDelta(t, 1.25, ATR(ts, 3, 2).V, 1e-12)
	assert.False(t, ATR(ts, 4, 2).OK)
}

func TestATR_UsesHighLow(t *testing.T) {
	t.Parallel()

	ts := market.NewTimeSeries("X", []market.Bar{
		{Close: 10, High: 10, Low: 10},
		{Close: 10, High: 12, Low: 9},  // high-low 3
		{Close: 15, High: 15, Low: 14}, // gap from prev close 5
	})
	assert.InDelta(t, 3, ATR(ts, 1, 1).V, 1e-12)
	assert.InDelta(t, 5, ATR(ts, 2, 1).V, 1e-12)
}

func TestExportRSI(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := Export(&buf, market.FromCloses("X", 1, 2, 3, 2), "RSI", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "Date,RSI\n3,100.0000\n4,50.0000\n", buf.String())
}

func TestExportRollingAverage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := Export(&buf, market.FromCloses("X", 2, 4, 6), "ma", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "Date,Rolling Average\n2,3.0000\n3,5.0000\n", buf.String())
}

func TestExportUnknownKind(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	_, err := Export(&buf, market.FromCloses("X", 1), "macd", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "atr, ema, ma, rsi, sd")
	assert.Empty(t, buf.String())
}
