package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rustyeddy/barbt/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	s := New(context.Background(), logx.Discard())
	require.NoError(t, s.Register("batch", "30 22 * * 1-5", func(context.Context) error { return nil }))

	err := s.Register("bad", "whenever", func(context.Context) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "register bad task")

	assert.Len(t, s.Cron.Entries(), 1)
}

func TestRunNowRecordsOutcome(t *testing.T) {
	t.Parallel()

	s := New(context.Background(), nil)

	require.NoError(t, s.RunNow("ok", func(context.Context) error { return nil }))
	runs, last, lastErr := s.Stats()
	assert.Equal(t, 1, runs)
	assert.False(t, last.IsZero())
	assert.NoError(t, lastErr)

	boom := errors.New("boom")
	assert.ErrorIs(t, s.RunNow("fail", func(context.Context) error { return boom }), boom)
	runs, _, lastErr = s.Stats()
	assert.Equal(t, 2, runs)
	assert.ErrorIs(t, lastErr, boom)
}

func TestScheduledTaskFires(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(ctx, logx.Discard())
	fired := make(chan struct{}, 1)
	_, err := s.Cron.AddFunc("@every 1s", func() {
		_ = s.RunNow("tick", func(context.Context) error {
			select {
			case fired <- struct{}{}:
			default:
			}
			return nil
		})
	})
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("task never fired")
	}
	assert.NotEmpty(t, s.Next())
}
