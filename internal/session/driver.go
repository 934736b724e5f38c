package session

import (
	"context"
	"sync"
	"time"
)

// Redrawer is anything that can repaint its sessions in one pass.
type Redrawer interface {
	RedrawAll()
}

// Driver runs RedrawAll at a fixed interval until stopped.
type Driver struct {
	target   Redrawer
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDriver creates a driver that repaints target every interval.
func NewDriver(target Redrawer, interval time.Duration) *Driver {
	return &Driver{target: target, interval: interval}
}

// Start launches the redraw loop. The loop exits when ctx is cancelled or
// Stop is called. Calling Start twice is a no-op.
func (d *Driver) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return
	}
	ctx, d.cancel = context.WithCancel(ctx)
	d.wg.Add(1)
	go d.loop(ctx)
}

// Stop cancels the loop. A pass in progress completes first; use Wait if a
// clean drain is required.
func (d *Driver) Stop() {
	d.mu.Lock()
	cancel := d.cancel
	d.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the loop has exited.
func (d *Driver) Wait() {
	d.wg.Wait()
}

func (d *Driver) loop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A late tick after cancel must not start another pass.
			if ctx.Err() != nil {
				return
			}
			d.target.RedrawAll()
		}
	}
}
