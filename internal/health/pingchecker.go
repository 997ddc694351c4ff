package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// PingChecker polls a HealthPinger and caches the outcome.
type PingChecker struct {
	name         string
	target       HealthPinger
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

// NewPingChecker creates a checker that starts unhealthy until the first
// successful probe.
func NewPingChecker(name string, target HealthPinger, log zerolog.Logger, probeTimeout time.Duration) *PingChecker {
	hc := &PingChecker{name: name, target: target, log: log, probeTimeout: probeTimeout}
	hc.healthy.Store(0)
	return hc
}

func (c *PingChecker) Name() string    { return c.name }
func (c *PingChecker) IsHealthy() bool { return c.healthy.Load() == 1 }

// Start probes once immediately, then on every tick until ctx is done.
func (c *PingChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Probe(ctx)
		}
	}
}

// Probe runs a single check and returns the new state.
func (c *PingChecker) Probe(ctx context.Context) bool {
	to := c.probeTimeout
	if to <= 0 {
		to = 2 * time.Second
	}
	checkCtx, cancel := context.WithTimeout(ctx, to)
	defer cancel()

	if err := c.target.HealthPing(checkCtx); err != nil {
		if c.healthy.Swap(0) == 1 {
			c.log.Error().Str("checker", c.name).Err(err).Msg("health check failed")
		}
		return false
	}
	if c.healthy.Swap(1) == 0 {
		c.log.Debug().Str("checker", c.name).Msg("health check passed")
	}
	return true
}

// PingFunc adapts a function to HealthPinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) HealthPing(ctx context.Context) error { return f(ctx) }
