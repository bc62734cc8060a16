// Package netx provides connectivity detection for the offline engine.
package netx

import (
	"context"
	"time"

	"github.com/krawl-app/krawl-offline/internal/logging"
)

const defaultProbeTimeout = 3 * time.Second

// Pinger is the minimal reachability probe, satisfied by api.Client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker reports whether the remote service is currently reachable.
type Checker interface {
	IsOnline(ctx context.Context) bool
}

// PingChecker probes the server's health endpoint with a short timeout.
// A slow server counts as offline: the engine would rather read from the
// local store than block the caller.
type PingChecker struct {
	pinger  Pinger
	timeout time.Duration
	logger  logging.Logger
}

func NewPingChecker(pinger Pinger, logger logging.Logger) *PingChecker {
	return &PingChecker{pinger: pinger, timeout: defaultProbeTimeout, logger: logger}
}

func (c *PingChecker) IsOnline(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.pinger.Ping(ctx); err != nil {
		c.logger.Debug(ctx, "connectivity probe failed", "error", err)
		return false
	}
	return true
}
