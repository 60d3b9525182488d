package backtest

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/barbt/journal"
)

// Record converts a run result into the journal's run summary.
func (r Result) Record(runID, dataset string, runErr error) journal.RunRecord {
	buys, sells := r.Counts()
	rec := journal.RunRecord{
		RunID:        runID,
		Created:      time.Now().UTC(),
		Symbol:       r.Symbol,
		Strategy:     r.Strategy,
		Dataset:      dataset,
		Bars:         r.Bars,
		StartDate:    r.StartDate,
		EndDate:      r.EndDate,
		StartBalance: r.StartCash,
		EndBalance:   r.FinalCash,
		EndShares:    r.FinalShares,
		LastClose:    r.LastClose,
		NetWorth:     r.NetWorth,
		Trades:       len(r.Trades),
		Buys:         buys,
		Sells:        sells,
		Status:       journal.StatusOK,
	}
	switch {
	case errors.Is(runErr, ErrInsufficientData):
		rec.Status = journal.StatusInsufficientData
		rec.Error = runErr.Error()
	case runErr != nil:
		rec.Status = journal.StatusError
		rec.Error = runErr.Error()
	}
	if r.FinalShares > 0 {
		rec.Notes = append(rec.Notes, fmt.Sprintf("%d shares still held, marked at %.2f", r.FinalShares, r.LastClose))
	}
	if r.SinkErrors > 0 {
		rec.Notes = append(rec.Notes, fmt.Sprintf("%d trade log write failures", r.SinkErrors))
	}
	return rec
}

// PrintRun writes a plain text report of one run.
func PrintRun(w io.Writer, r journal.RunRecord) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	if r.RunID != "" {
		fmt.Fprintf(w, "Run ID:        %s\n", r.RunID)
	}
	if !r.Created.IsZero() {
		fmt.Fprintf(w, "Created:       %s\n", r.Created.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "Strategy:      %s\n", r.Strategy)
	fmt.Fprintf(w, "Symbol:        %s\n", r.Symbol)
	if r.Dataset != "" {
		fmt.Fprintf(w, "Dataset:       %s\n", r.Dataset)
	}
	fmt.Fprintf(w, "Status:        %s\n", r.Status)
	if r.Error != "" {
		fmt.Fprintf(w, "Error:         %s\n", r.Error)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Period")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start:         %s\n", r.StartDate)
	fmt.Fprintf(w, "End:           %s\n", r.EndDate)
	fmt.Fprintf(w, "Bars:          %d\n", r.Bars)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d\n", r.Trades)
	fmt.Fprintf(w, "Buys:          %d\n", r.Buys)
	fmt.Fprintf(w, "Sells:         %d\n", r.Sells)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start Balance: %.2f\n", r.StartBalance)
	fmt.Fprintf(w, "Final Balance: %.2f\n", r.EndBalance)
	fmt.Fprintf(w, "Shares Held:   %d\n", r.EndShares)
	if r.EndShares > 0 {
		fmt.Fprintf(w, "Last Close:    %.2f\n", r.LastClose)
	}
	fmt.Fprintf(w, "Net Worth:     %.2f\n", r.NetWorth)
	fmt.Fprintf(w, "Net P/L:       %.2f\n", r.NetPL())
	fmt.Fprintf(w, "Return:        %.2f%%\n", r.ReturnPct())

	if r.OrgPath != "" {
		fmt.Fprintf(w, "Org Report:    %s\n", r.OrgPath)
	}

	if len(r.Notes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Observations")
		fmt.Fprintln(w, "--------------------------------------------------")
		for _, note := range r.Notes {
			fmt.Fprintf(w, "- %s\n", note)
		}
	}

	fmt.Fprintln(w)
}

// PrintSummary writes one line per run, for batch output.
func PrintSummary(w io.Writer, recs []journal.RunRecord) {
	fmt.Fprintf(w, "%-10s %-22s %-18s %6s %12s %8s %12s\n",
		"SYMBOL", "STRATEGY", "STATUS", "TRADES", "BALANCE", "SHARES", "NET WORTH")
	for _, r := range recs {
		fmt.Fprintf(w, "%-10s %-22s %-18s %6d %12.2f %8d %12.2f\n",
			r.Symbol, r.Strategy, r.Status, r.Trades, r.EndBalance, r.EndShares, r.NetWorth)
	}
}
