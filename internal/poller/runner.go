// internal/poller/runner.go
package poller

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Run sweeps, sleeps for the interval, and repeats until ctx is cancelled.
// Cancellation is the only Running -> Stopping transition; it is observed
// between metrics and during the sleep, which it cuts short.
// Returns nil on shutdown, or ErrConnectionLost once the device has been
// unreachable for MaxDeadSweeps consecutive sweeps.
// One goroutine. No overlap. No retries inside a sweep.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Info("polling started",
		zap.Duration("interval", p.cfg.Interval),
		zap.Int("metrics", len(p.cfg.Entries)),
		zap.String("measurement", p.cfg.Measurement))

	for {
		if ctx.Err() != nil {
			p.log.Info("polling stopped")
			return nil
		}

		res := p.PollOnce(ctx)
		if res.Interrupted {
			p.log.Info("polling stopped mid-sweep",
				zap.Int("reads", res.Reads))
			return nil
		}

		p.observe(ctx, res)

		if res.ConnectionLost {
			p.deadSweeps++
			if p.cfg.MaxDeadSweeps > 0 && p.deadSweeps >= p.cfg.MaxDeadSweeps {
				return fmt.Errorf("%w: %d consecutive sweeps without a connection", ErrConnectionLost, p.deadSweeps)
			}
		} else {
			p.deadSweeps = 0
		}

		if !p.sleep(ctx) {
			p.log.Info("polling stopped")
			return nil
		}
	}
}

// sleep waits one interval. It returns false if ctx was cancelled first.
func (p *Poller) sleep(ctx context.Context) bool {
	timer := time.NewTimer(p.cfg.Interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
