package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/rustyeddy/barbt/portfolio"
)

const (
	DefaultRedisStream = "barbt:trades"

	redisStreamMaxLen = 100000
	redisOpTimeout    = 5 * time.Second
)

// StreamAdder is the slice of the redis client the sink uses.
type StreamAdder interface {
	XAdd(ctx context.Context, a *goredis.XAddArgs) *goredis.StringCmd
}

// DialRedis connects to addr and pings the server.
func DialRedis(ctx context.Context, addr string) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// RedisSink publishes every trade to a redis stream as a JSON "data" field.
// The client is owned by the caller and stays open after Close.
type RedisSink struct {
	client StreamAdder
	stream string
	runID  string
	symbol string
	seq    int
}

func NewRedis(client StreamAdder, stream, runID, symbol string) *RedisSink {
	if stream == "" {
		stream = DefaultRedisStream
	}
	return &RedisSink{client: client, stream: stream, runID: runID, symbol: symbol}
}

func (s *RedisSink) Record(e portfolio.TradeEvent) error {
	s.seq++
	data, err := json.Marshal(newTradeRecord(s.runID, s.symbol, s.seq, e))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	err = s.client.XAdd(ctx, &goredis.XAddArgs{
		Stream: s.stream,
		MaxLen: redisStreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"run_id": s.runID,
			"symbol": s.symbol,
			"data":   data,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("redis xadd %s: %w", s.stream, err)
	}
	return nil
}

func (s *RedisSink) Close() error { return nil }
