package journal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParquetSinkRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.parquet")
	s := NewParquet(path, "RUN1", "AAPL")
	for _, e := range testEvents {
		require.NoError(t, s.Record(e))
	}
	require.NoError(t, s.Close())

	got, err := ReadParquetTrades(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newTradeRecord("RUN1", "AAPL", 1, testEvents[0]), got[0])
	assert.Equal(t, newTradeRecord("RUN1", "AAPL", 2, testEvents[1]), got[1])
}
