package strategies

import (
	"fmt"

	"github.com/rustyeddy/barbt/indicators"
	"github.com/rustyeddy/barbt/portfolio"
)

type BandConfig struct {
	Lookback int     `json:"lookback" yaml:"lookback"` // bars before the current one, default 14
	K        float64 `json:"k" yaml:"k"`               // band width in standard deviations, default 2
	MinBars  int     `json:"min_bars" yaml:"min_bars"` // default 20
}

func DefaultBandConfig() BandConfig {
	return BandConfig{Lookback: 14, K: 2, MinBars: 20}
}

// BandReversion trades closes that break out of a mean +/- K*SD band built
// from the previous Lookback closes (the current bar is excluded). It buys
// as many shares as cash allows below the band and sells everything above.
// Open positions are left open at the end of the series.
type BandReversion struct {
	cfg  BandConfig
	name string
}

func NewBandReversion(cfg BandConfig) *BandReversion {
	def := DefaultBandConfig()
	if cfg.Lookback <= 0 {
		cfg.Lookback = def.Lookback
	}
	if cfg.K <= 0 {
		cfg.K = def.K
	}
	if cfg.MinBars <= 0 {
		cfg.MinBars = def.MinBars
	}
	return &BandReversion{
		cfg:  cfg,
		name: fmt.Sprintf("BAND(%d,%.1f)", cfg.Lookback, cfg.K),
	}
}

func (b *BandReversion) Name() string       { return b.name }
func (b *BandReversion) MinBars() int       { return b.cfg.MinBars }
func (b *BandReversion) Config() BandConfig { return b.cfg }

func (b *BandReversion) Decide(ctx *Context) Decision {
	window, ok := indicators.PriorCloses(ctx.Series, ctx.Idx, b.cfg.Lookback)
	if !ok {
		return hold("warming up")
	}

	mean := indicators.Mean(window)
	sd := indicators.StdDev(window)
	c := ctx.Close()

	switch {
	case c < mean-b.cfg.K*sd:
		q := portfolio.MaxAffordable(ctx.Cash, c)
		return Decision{
			Intent: portfolio.BuyIntent(q),
			Reason: fmt.Sprintf("close %.2f below band %.2f", c, mean-b.cfg.K*sd),
		}
	case c > mean+b.cfg.K*sd:
		return Decision{
			Intent: portfolio.SellIntent(ctx.Shares),
			Reason: fmt.Sprintf("close %.2f above band %.2f", c, mean+b.cfg.K*sd),
		}
	}
	return hold("inside band")
}
