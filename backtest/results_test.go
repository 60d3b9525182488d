package backtest

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/rustyeddy/barbt/journal"
	"github.com/rustyeddy/barbt/portfolio"
	"github.com/stretchr/testify/assert"
)

func sampleResult() Result {
	return Result{
		Symbol:      "AAPL",
		Strategy:    "BUY_AND_HOLD",
		Bars:        3,
		StartDate:   "1",
		EndDate:     "3",
		StartCash:   1000,
		FinalCash:   0,
		FinalShares: 10,
		LastClose:   150,
		NetWorth:    1500,
		Trades: []portfolio.TradeEvent{
			{Date: "1", Action: portfolio.Buy, Price: 100, Quantity: 10},
		},
	}
}

func TestResultRecord(t *testing.T) {
	t.Parallel()

	rec := sampleResult().Record("RUN1", "aapl.csv", nil)
	assert.Equal(t, "RUN1", rec.RunID)
	assert.Equal(t, journal.StatusOK, rec.Status)
	assert.Equal(t, 1, rec.Trades)
	assert.Equal(t, 1, rec.Buys)
	assert.Equal(t, 0, rec.Sells)
	assert.Equal(t, 1500.0, rec.NetWorth)
	assert.Contains(t, rec.Notes, "10 shares still held, marked at 150.00")

	rec = Result{}.Record("RUN2", "", fmt.Errorf("%w: 3 bars", ErrInsufficientData))
	assert.Equal(t, journal.StatusInsufficientData, rec.Status)
	assert.Contains(t, rec.Error, "insufficient data")
}

func TestPrintRun(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	PrintRun(&buf, sampleResult().Record("RUN1", "aapl.csv", nil))
	out := buf.String()

	assert.Contains(t, out, "Run ID:        RUN1")
	assert.Contains(t, out, "Final Balance: 0.00")
	assert.Contains(t, out, "Shares Held:   10")
	assert.Contains(t, out, "Last Close:    150.00")
	assert.Contains(t, out, "Net Worth:     1500.00")
	assert.Contains(t, out, "Return:        50.00%")
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	PrintSummary(&buf, []journal.RunRecord{sampleResult().Record("RUN1", "", nil)})
	assert.Contains(t, buf.String(), "AAPL")
	assert.Contains(t, buf.String(), "1500.00")
}
