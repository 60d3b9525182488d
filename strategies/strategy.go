package strategies

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/barbt/market"
	"github.com/rustyeddy/barbt/portfolio"
)

// Strategy maps a bar, addressed by its index in the series, to an intent.
// Decide is called exactly once per bar, in order.
type Strategy interface {
	Name() string

	// MinBars is the shortest series the strategy will run on. The runner
	// aborts before the first bar when the series is shorter.
	MinBars() int

	Decide(ctx *Context) Decision
}

// Context is the per-bar view handed to a strategy.
type Context struct {
	Series *market.TimeSeries
	Idx    int
	Last   bool // Idx == Series.Len()-1

	Cash   float64
	Shares int64
}

func (c *Context) Bar() market.Bar { return c.Series.At(c.Idx) }
func (c *Context) Close() float64  { return c.Series.Close(c.Idx) }

// Decision is an intent plus a short reason for logs.
type Decision struct {
	portfolio.Intent
	Reason string
}

func hold(reason string) Decision {
	return Decision{Intent: portfolio.HoldIntent, Reason: reason}
}

// Params gathers the tunables of every strategy so a single config block can
// build any of them. Zero values fall back to defaults.
type Params struct {
	Momentum MomentumConfig
	Band     BandConfig
}

// Names lists the canonical strategy names ByName understands.
var Names = []string{"buy-and-hold", "momentum", "band", "noop"}

// ByName builds a strategy from its name. Matching ignores case and
// surrounding whitespace.
func ByName(name string, p Params) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "buy-and-hold", "buyandhold", "hold":
		return BuyAndHold{}, nil

	case "momentum", "threshold-momentum", "rsi-ema":
		return NewMomentum(p.Momentum), nil

	case "band", "band-reversion", "mean-reversion":
		return NewBandReversion(p.Band), nil

	case "noop", "none":
		return NoopStrategy{}, nil

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)", name, strings.Join(Names, ", "))
	}
}
