package portfolio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_Buy(t *testing.T) {
	t.Parallel()

	p := New(1000)
	ev, ok := p.Apply(BuyIntent(3), "d1", 100)
	require.True(t, ok)
	assert.Equal(t, TradeEvent{Date: "d1", Action: Buy, Price: 100, Quantity: 3, Cash: 700}, ev)
	assert.Equal(t, 700.0, p.Cash())
	assert.Equal(t, int64(3), p.Shares())
}

func TestApply_AffordabilityClamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cash  float64
		q     int64
		price float64
		want  int64
	}{
		{"exact fit", 1000, 10, 100, 10},
		{"clamped", 950, 10, 100, 9},
		{"fractional price", 100, 1000, 33.33, 3},
		{"cannot afford one", 99.99, 10, 100, 0},
		{"no cash", 0, 10, 1, 0},
		{"tiny price rounding", 0.3, 10, 0.1, 2},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := New(tt.cash)
			ev, ok := p.Apply(BuyIntent(tt.q), "d", tt.price)
			assert.Equal(t, tt.want > 0, ok)
			assert.Equal(t, tt.want, p.Shares())
			if ok {
				assert.Equal(t, tt.want, ev.Quantity)
			}
			assert.GreaterOrEqual(t, p.Cash(), 0.0)
			assert.LessOrEqual(t, float64(p.Shares())*tt.price, tt.cash)
		})
	}
}

func TestApply_HoldingsClamp(t *testing.T) {
	t.Parallel()

	p := New(1000)
	_, ok := p.Apply(BuyIntent(4), "d1", 100)
	require.True(t, ok)

	ev, ok := p.Apply(SellIntent(10), "d2", 110)
	require.True(t, ok)
	assert.Equal(t, int64(4), ev.Quantity)
	assert.Equal(t, Sell, ev.Action)
	assert.Equal(t, int64(0), p.Shares())
	assert.InDelta(t, 1040.0, p.Cash(), 1e-9)
	assert.InDelta(t, 1040.0, ev.Cash, 1e-9)

	// nothing left to sell
	_, ok = p.Apply(SellIntent(1), "d3", 110)
	assert.False(t, ok)
	assert.Equal(t, int64(0), p.Shares())
}

func TestApply_NoOps(t *testing.T) {
	t.Parallel()

	p := New(500)
	cases := []Intent{
		HoldIntent,
		{Action: Hold, Quantity: 5},
		BuyIntent(0),
		BuyIntent(-3),
		SellIntent(0),
		SellIntent(2),
	}
	for _, in := range cases {
		_, ok := p.Apply(in, "d", 10)
		assert.False(t, ok, "%+v", in)
	}
	assert.Equal(t, 500.0, p.Cash())
	assert.Equal(t, int64(0), p.Shares())
}

func TestApply_NonPositivePrice(t *testing.T) {
	t.Parallel()

	p := New(500)
	for _, price := range []float64{0, -1, math.NaN()} {
		_, ok := p.Apply(BuyIntent(1), "d", price)
		assert.False(t, ok)
	}
	assert.Equal(t, 500.0, p.Cash())
}

func TestApply_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, price := range []float64{1, 0.1, 33.33, 99.99, 250} {
		p := New(1000)
		before := p.Cash()

		buy, ok := p.Apply(BuyIntent(3), "d", price)
		require.True(t, ok)
		_, ok = p.Apply(SellIntent(buy.Quantity), "d", price)
		require.True(t, ok)

		assert.InDelta(t, before, p.Cash(), 1e-9, "price=%v", price)
		assert.Equal(t, int64(0), p.Shares())
	}
}

func TestNew_ClampsNegativeCash(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, New(-10).Cash())
	assert.Equal(t, 0.0, New(math.NaN()).Cash())
}

func TestValue(t *testing.T) {
	t.Parallel()

	p := New(1000)
	_, _ = p.Apply(BuyIntent(10), "d", 100)
	assert.Equal(t, 1500.0, p.Value(150))
}

func TestMaxAffordable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(10), MaxAffordable(1000, 100))
	assert.Equal(t, int64(0), MaxAffordable(1000, 0))
	assert.Equal(t, int64(0), MaxAffordable(-5, 1))
	assert.Equal(t, int64(0), MaxAffordable(1, math.Inf(1)))
}

func TestActionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "BUY", Buy.String())
	assert.Equal(t, "SELL", Sell.String())
	assert.Equal(t, "HOLD", Hold.String())

	a, err := ParseAction(" sell ")
	require.NoError(t, err)
	assert.Equal(t, Sell, a)

	_, err = ParseAction("short")
	assert.Error(t, err)
}
