package strategies

import "github.com/rustyeddy/barbt/portfolio"

// BuyAndHold spends all cash on the first bar and holds to the end. It never
// sells; the runner marks the position to the final close.
type BuyAndHold struct{}

func (BuyAndHold) Name() string { return "BUY_AND_HOLD" }
func (BuyAndHold) MinBars() int { return 1 }

func (BuyAndHold) Decide(ctx *Context) Decision {
	if ctx.Idx != 0 {
		return hold("holding")
	}
	q := portfolio.MaxAffordable(ctx.Cash, ctx.Close())
	return Decision{Intent: portfolio.BuyIntent(q), Reason: "initial buy"}
}
