package journal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVSinkHeaderOnly(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "AAPLlog.csv")
	s, err := NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Date,Action,Price,Shares,Balance\n", string(data))
}

func TestCSVSinkRecord(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")
	s, err := NewCSV(path)
	require.NoError(t, err)

	for _, e := range testEvents {
		require.NoError(t, s.Record(e))
	}
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	want := "Date,Action,Price,Shares,Balance\n" +
		"2024-01-02,BUY,100.00,10,0.00\n" +
		"2024-01-09,SELL,150.25,10,1502.50\n"
	assert.Equal(t, want, string(data))
}

func TestCSVSinkWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s, err := NewCSVWriter(&buf)
	require.NoError(t, err)
	assert.Equal(t, "Date,Action,Price,Shares,Balance\n", buf.String())

	require.NoError(t, s.Record(testEvents[0]))
	require.NoError(t, s.Close())
	assert.Contains(t, buf.String(), "2024-01-02,BUY,100.00,10,0.00\n")
}

func TestCSVSinkBadPath(t *testing.T) {
	t.Parallel()

	_, err := NewCSV(filepath.Join(t.TempDir(), "missing", "x.csv"))
	assert.Error(t, err)
}
