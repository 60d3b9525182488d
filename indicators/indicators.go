// Package indicators provides technical analysis indicators computed over a
// market.TimeSeries at an explicit bar index.
//
// Every function is pure: it reads the series and returns a Value. Nothing is
// cached between calls, so callers may ask for any index in any order.
package indicators

import (
	"fmt"
	"strconv"
)

// Value is an indicator reading tagged with validity. OK is false when the
// series does not hold enough history for the requested period; V is then 0
// and must not be interpreted.
type Value struct {
	V  float64
	OK bool
}

// Undefined is the zero Value.
var Undefined = Value{}

func Computed(v float64) Value {
	return Value{V: v, OK: true}
}

func (v Value) String() string {
	if !v.OK {
		return "undefined"
	}
	return strconv.FormatFloat(v.V, 'f', 4, 64)
}

// Name returns a stable identifier like "EMA(14)".
func Name(kind string, period int) string {
	return fmt.Sprintf("%s(%d)", kind, period)
}
