package journal

import (
	"bytes"
	"os"
	"text/template"
	"time"
)

// Run outcomes stored in RunRecord.Status.
const (
	StatusOK               = "ok"
	StatusInsufficientData = "insufficient_data"
	StatusError            = "error"
)

// RunRecord mirrors the runs table.
type RunRecord struct {
	RunID   string
	Created time.Time

	Symbol   string
	Strategy string
	Dataset  string

	// Series covered by the run
	Bars      int
	StartDate string
	EndDate   string

	// Results
	StartBalance float64
	EndBalance   float64
	EndShares    int64
	LastClose    float64
	NetWorth     float64 // EndBalance + EndShares*LastClose

	Trades int
	Buys   int
	Sells  int

	Status string
	Error  string

	OrgPath string
	Notes   []string
}

// NetPL is net worth minus starting balance.
func (r RunRecord) NetPL() float64 { return r.NetWorth - r.StartBalance }

// ReturnPct is NetPL as a percentage of the starting balance.
func (r RunRecord) ReturnPct() float64 {
	if r.StartBalance == 0 {
		return 0
	}
	return r.NetPL() / r.StartBalance * 100
}

var runOrgFuncs = template.FuncMap{
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var runOrgTmpl = template.Must(template.New("run").Funcs(runOrgFuncs).Parse(RunOrgTemplate))

// FormatRunOrg renders r as an Org-mode block.
func FormatRunOrg(r RunRecord) (string, error) {
	buf := new(bytes.Buffer)
	if err := runOrgTmpl.Execute(buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteOrg renders the run report to r.OrgPath.
func (r *RunRecord) WriteOrg() error {
	s, err := FormatRunOrg(*r)
	if err != nil {
		return err
	}
	return os.WriteFile(r.OrgPath, []byte(s), 0644)
}

const RunOrgTemplate = `
* BACKTEST: {{.Strategy}} {{.Symbol}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:STRATEGY:    {{.Strategy}}
:SYMBOL:      {{.Symbol}}
:DATASET:     {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:BARS:        {{.Bars}}
:START_DATE:  {{.StartDate}}
:END_DATE:    {{.EndDate}}
:START_BAL:   {{printf "%.2f" .StartBalance}}
:END_BAL:     {{printf "%.2f" .EndBalance}}
:END_SHARES:  {{.EndShares}}
:NET_WORTH:   {{printf "%.2f" .NetWorth}}
:NET_PL:      {{printf "%.2f" .NetPL}}
:RETURN_PCT:  {{printf "%.2f" .ReturnPct}}
:TRADES:      {{.Trades}}
:STATUS:      {{.Status}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Net Worth:        *{{printf "%.2f" .NetWorth}}*
- Net P/L:          *{{printf "%.2f" .NetPL}}*
- Return:           *{{printf "%.2f" .ReturnPct}}%*
- Open Position:    *{{.EndShares}} @ {{printf "%.2f" .LastClose}}*
{{- if .Error }}
- Error:            *{{.Error}}*
{{- end }}

** Trade Distribution
| Action | Count |
|--------+-------|
| Buy    | {{.Buys}} |
| Sell   | {{.Sells}} |
| Total  | {{.Trades}} |

{{- if .Notes }}
** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
