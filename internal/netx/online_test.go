package netx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/krawl-app/krawl-offline/internal/logging"
)

type fakePinger struct {
	err   error
	delay time.Duration
}

func (f *fakePinger) Ping(ctx context.Context) error {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

func TestIsOnline(t *testing.T) {
	log := logging.NewNop()

	c := NewPingChecker(&fakePinger{}, log)
	assert.True(t, c.IsOnline(context.Background()))

	c = NewPingChecker(&fakePinger{err: errors.New("connection refused")}, log)
	assert.False(t, c.IsOnline(context.Background()))
}

func TestIsOnline_SlowServerCountsAsOffline(t *testing.T) {
	c := NewPingChecker(&fakePinger{delay: time.Minute}, logging.NewNop())
	c.timeout = 20 * time.Millisecond

	start := time.Now()
	online := c.IsOnline(context.Background())
	assert.False(t, online)
	assert.Less(t, time.Since(start), time.Second)
}
