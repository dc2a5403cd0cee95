// Package refresh re-runs a callback immediately and then at a fixed cadence
// until it is stopped.
package refresh

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"releaseday/internal/clock"
)

const DefaultInterval = time.Second

var (
	ErrAlreadyStarted = errors.New("refresh driver already started")
	ErrStopped        = errors.New("refresh driver stopped")
)

// TickFunc receives the instant of each tick. Instants never go backwards.
type TickFunc func(now time.Time)

// Driver owns one periodic loop. It is created by the view that needs it and
// must be stopped by that view.
type Driver struct {
	clock    clock.Clock
	interval time.Duration
	fn       TickFunc

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
	last    time.Time
}

func New(c clock.Clock, interval time.Duration, fn TickFunc) *Driver {
	if c == nil {
		c = clock.Real{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Driver{
		clock:    c,
		interval: interval,
		fn:       fn,
		done:     make(chan struct{}),
	}
}

// Start runs the first tick synchronously, then keeps ticking on its own
// goroutine until Stop is called or ctx is cancelled.
func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return ErrStopped
	}
	if d.started {
		d.mu.Unlock()
		return ErrAlreadyStarted
	}
	d.started = true
	ctx, d.cancel = context.WithCancel(ctx)
	d.mu.Unlock()

	log.Debug().Dur("interval", d.interval).Msg("refresh started")
	d.tick()

	go d.loop(ctx)
	return nil
}

// Stop cancels the loop. Calling it more than once, or before Start, is
// harmless. It does not wait; use Done for that.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	if d.cancel != nil {
		d.cancel()
		return
	}
	// never started: nothing will close done
	close(d.done)
}

// Done is closed once the loop has exited.
func (d *Driver) Done() <-chan struct{} {
	return d.done
}

func (d *Driver) loop(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer func() {
		ticker.Stop()
		d.mu.Lock()
		d.stopped = true
		d.mu.Unlock()
		close(d.done)
		log.Debug().Msg("refresh stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Stop may race with a ready tick
			if ctx.Err() != nil {
				return
			}
			d.tick()
		}
	}
}

func (d *Driver) tick() {
	now := d.clock.Now()
	if now.Before(d.last) {
		now = d.last
	}
	d.last = now
	if d.fn != nil {
		d.fn(now)
	}
}
