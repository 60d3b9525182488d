package indicators

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rustyeddy/barbt/market"
)

// Series is an indexed indicator such as RSI or EMA.
type Series func(ts *market.TimeSeries, i, period int) Value

type exportKind struct {
	column string
	fn     Series
}

var exportKinds = map[string]exportKind{
	"rsi": {"RSI", RSI},
	"ema": {"EMA", EMA},
	"ma":  {"Rolling Average", RollingMean},
	"sd":  {"Rolling StdDev", RollingStdDev},
	"atr": {"ATR", ATR},
}

// Kinds lists the indicator names Export accepts.
func Kinds() []string {
	out := make([]string, 0, len(exportKinds))
	for k := range exportKinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Export writes Date,<Indicator> rows for every bar where the indicator is
// defined. Bars still warming up are left out rather than written as 0.
func Export(w io.Writer, ts *market.TimeSeries, kind string, period int) (rows int, err error) {
	k, ok := exportKinds[strings.ToLower(strings.TrimSpace(kind))]
	if !ok {
		return 0, fmt.Errorf("unknown indicator %q (supported: %s)", kind, strings.Join(Kinds(), ", "))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", k.column}); err != nil {
		return 0, err
	}
	for i := 0; i < ts.Len(); i++ {
		v := k.fn(ts, i, period)
		if !v.OK {
			continue
		}
		if err := cw.Write([]string{ts.At(i).Date, v.String()}); err != nil {
			return rows, err
		}
		rows++
	}
	cw.Flush()
	return rows, cw.Error()
}
