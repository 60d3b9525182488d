package strategies

import (
	"fmt"

	"github.com/rustyeddy/barbt/indicators"
	"github.com/rustyeddy/barbt/portfolio"
)

type MomentumConfig struct {
	Period     int     `json:"period" yaml:"period"`         // RSI and EMA period, default 14
	Oversold   float64 `json:"oversold" yaml:"oversold"`     // default 30
	Overbought float64 `json:"overbought" yaml:"overbought"` // default 70
	Quantity   int64   `json:"quantity" yaml:"quantity"`     // shares per signal, default 10
}

func DefaultMomentumConfig() MomentumConfig {
	return MomentumConfig{Period: 14, Oversold: 30, Overbought: 70, Quantity: 10}
}

// ThresholdMomentum buys a fixed lot when RSI is oversold and price trades
// below its EMA, and sells a fixed lot when RSI is overbought and price
// trades above it. The whole position is sold on the final bar.
type ThresholdMomentum struct {
	cfg  MomentumConfig
	name string
}

func NewMomentum(cfg MomentumConfig) *ThresholdMomentum {
	def := DefaultMomentumConfig()
	if cfg.Period <= 0 {
		cfg.Period = def.Period
	}
	if cfg.Oversold == 0 && cfg.Overbought == 0 {
		cfg.Oversold, cfg.Overbought = def.Oversold, def.Overbought
	}
	if cfg.Quantity <= 0 {
		cfg.Quantity = def.Quantity
	}
	return &ThresholdMomentum{
		cfg:  cfg,
		name: fmt.Sprintf("MOMENTUM(%d,%.0f/%.0f)", cfg.Period, cfg.Oversold, cfg.Overbought),
	}
}

func (m *ThresholdMomentum) Name() string           { return m.name }
func (m *ThresholdMomentum) MinBars() int           { return 1 }
func (m *ThresholdMomentum) Config() MomentumConfig { return m.cfg }

func (m *ThresholdMomentum) Decide(ctx *Context) Decision {
	// Final bar always liquidates, whatever the indicators say.
	if ctx.Last {
		return Decision{Intent: portfolio.SellIntent(ctx.Shares), Reason: "final liquidation"}
	}

	rsi := indicators.RSI(ctx.Series, ctx.Idx, m.cfg.Period)
	ema := indicators.EMA(ctx.Series, ctx.Idx, m.cfg.Period)
	if !rsi.OK || !ema.OK {
		return hold("warming up")
	}

	c := ctx.Close()
	switch {
	case rsi.V <= m.cfg.Oversold && c < ema.V:
		return Decision{
			Intent: portfolio.BuyIntent(m.cfg.Quantity),
			Reason: fmt.Sprintf("RSI %.2f oversold, close below EMA %.2f", rsi.V, ema.V),
		}
	case rsi.V >= m.cfg.Overbought && c > ema.V:
		return Decision{
			Intent: portfolio.SellIntent(m.cfg.Quantity),
			Reason: fmt.Sprintf("RSI %.2f overbought, close above EMA %.2f", rsi.V, ema.V),
		}
	}
	return hold("no signal")
}
