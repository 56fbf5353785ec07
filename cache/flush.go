package cache

import (
	"context"
	"time"
)

// StartFlush starts the background flush loop if it is not running.
// It has no effect on a closed cache.
func (c *PersistentCache) StartFlush() {
	if c.Closed() {
		return
	}

	c.loopMu.Lock()
	defer c.loopMu.Unlock()

	if c.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	go c.flushLoop(ctx, done)
}

// StopFlush stops the background flush loop without touching stored state.
// When it returns the loop has exited and no further flush will run.
func (c *PersistentCache) StopFlush() {
	c.loopMu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.loopMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Flushing reports whether the background flush loop is running.
func (c *PersistentCache) Flushing() bool {
	c.loopMu.Lock()
	defer c.loopMu.Unlock()
	return c.cancel != nil
}

func (c *PersistentCache) flushLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil || c.Closed() {
				return
			}
			c.flush()
		}
	}
}

// flush sweeps expired entries and saves if anything changed.
// Save failures are logged; the loop keeps running.
func (c *PersistentCache) flush() {
	if n := c.sweep(); n > 0 {
		c.log.Log("evicted expired entries", "count", n)
	}

	if !c.Dirty() {
		return
	}
	if err := c.Save(); err != nil {
		c.log.Error("background save failed", err, "location", c.store.Location())
	}
}

// sweep removes every expired entry and returns how many were removed.
func (c *PersistentCache) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
			n++
		}
	}
	if n > 0 {
		c.version++
	}
	return n
}
