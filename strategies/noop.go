package strategies

// NoopStrategy never trades. Useful as a baseline: the result is the
// starting balance.
type NoopStrategy struct{}

func (NoopStrategy) Name() string { return "NOOP" }
func (NoopStrategy) MinBars() int { return 0 }

func (NoopStrategy) Decide(ctx *Context) Decision {
	return hold("noop")
}
