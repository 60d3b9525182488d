// Package portfolio simulates a single-instrument cash and shares account.
package portfolio

import (
	"fmt"
	"math"
	"strings"
)

type Action int8

const (
	Hold Action = iota
	Buy
	Sell
)

func (a Action) String() string {
	switch a {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// ParseAction accepts BUY, SELL and HOLD in any case.
func ParseAction(s string) (Action, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	case "HOLD":
		return Hold, nil
	}
	return Hold, fmt.Errorf("unknown action %q", s)
}

// Intent is what a strategy wants to do on a bar. Quantity is a request;
// the portfolio clamps it to what cash or holdings allow.
type Intent struct {
	Action   Action
	Quantity int64
}

var HoldIntent = Intent{Action: Hold}

func BuyIntent(q int64) Intent  { return Intent{Action: Buy, Quantity: q} }
func SellIntent(q int64) Intent { return Intent{Action: Sell, Quantity: q} }

// TradeEvent records one executed trade. Cash is the balance after the trade.
type TradeEvent struct {
	Date     string
	Action   Action
	Price    float64
	Quantity int64
	Cash     float64
}

// Portfolio holds cash and whole shares of one instrument.
// Both stay non-negative across every Apply.
type Portfolio struct {
	cash   float64
	shares int64
}

// New returns a portfolio with the given cash and no shares.
// Negative or NaN cash is treated as zero.
func New(cash float64) *Portfolio {
	if cash < 0 || math.IsNaN(cash) {
		cash = 0
	}
	return &Portfolio{cash: cash}
}

func (p *Portfolio) Cash() float64 { return p.cash }
func (p *Portfolio) Shares() int64 { return p.shares }

// Value marks the holdings to price: cash + shares*price.
func (p *Portfolio) Value(price float64) float64 {
	return p.cash + float64(p.shares)*price
}

// Apply executes intent at price and reports the resulting trade.
//
// BUY is clamped to the shares cash can cover, SELL to the shares held.
// A request that clamps to zero, a HOLD, or a non-positive quantity leaves the
// portfolio untouched and returns ok=false.
func (p *Portfolio) Apply(in Intent, date string, price float64) (ev TradeEvent, ok bool) {
	if in.Quantity <= 0 {
		return TradeEvent{}, false
	}

	switch in.Action {
	case Buy:
		q := min(in.Quantity, MaxAffordable(p.cash, price))
		if q <= 0 {
			return TradeEvent{}, false
		}
		p.cash -= float64(q) * price
		p.shares += q
		return TradeEvent{Date: date, Action: Buy, Price: price, Quantity: q, Cash: p.cash}, true

	case Sell:
		q := min(in.Quantity, p.shares)
		if q <= 0 {
			return TradeEvent{}, false
		}
		p.cash += float64(q) * price
		p.shares -= q
		return TradeEvent{Date: date, Action: Sell, Price: price, Quantity: q, Cash: p.cash}, true
	}

	return TradeEvent{}, false
}

// MaxAffordable is floor(cash/price), never more than cash can pay for.
// It is zero for a non-positive price or cash.
func MaxAffordable(cash, price float64) int64 {
	if !(price > 0) || !(cash > 0) || math.IsInf(price, 0) {
		return 0
	}
	q := math.Floor(cash / price)
	if q >= math.MaxInt64 {
		return math.MaxInt64
	}
	n := int64(q)
	for n > 0 && float64(n)*price > cash {
		n--
	}
	return n
}
