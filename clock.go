package compositor

import (
	"sync"
	"time"
)

// FrameClock is the scheduling collaborator driving a render loop.
//
// A real clock pulses at a display-refresh-style rate; tests substitute a
// manual clock to exercise throttling and sequencing deterministically.
//
// The contract the render loop depends on:
//   - At most one tick is pending at a time; ScheduleTick replaces any
//     previously scheduled callback.
//   - Callbacks run one at a time on the clock's scheduling context,
//     never concurrently.
//   - After Cancel returns, no new callback fires — including callbacks
//     scheduled after the Cancel call. A callback already in flight may
//     still complete; the render loop's own stop barrier waits it out.
type FrameClock interface {
	// ScheduleTick arranges for fn to be called on the next clock pulse.
	ScheduleTick(fn func())

	// Cancel drops any pending tick and shuts the clock down.
	Cancel()

	// Now returns the clock's current time. The render loop derives all
	// throttling decisions from this, never from time.Now directly.
	Now() time.Time
}

// defaultPulse is the real clock's tick rate. It matches MaxFPS so the
// throttle in the render loop, not the pulse, decides the draw rate.
const defaultPulse = time.Second / MaxFPS

// tickerClock is the production FrameClock: a time.Ticker pulse with a
// single pending callback slot, consumed on a dedicated goroutine.
type tickerClock struct {
	pulse *time.Ticker
	done  chan struct{}
	once  sync.Once

	mu      sync.Mutex
	pending func()
}

func newTickerClock(interval time.Duration) *tickerClock {
	c := &tickerClock{
		pulse: time.NewTicker(interval),
		done:  make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *tickerClock) run() {
	for {
		select {
		case <-c.done:
			return
		case <-c.pulse.C:
			c.mu.Lock()
			fn := c.pending
			c.pending = nil
			c.mu.Unlock()

			if fn != nil {
				fn()
			}
		}
	}
}

func (c *tickerClock) ScheduleTick(fn func()) {
	c.mu.Lock()
	c.pending = fn
	c.mu.Unlock()
}

func (c *tickerClock) Cancel() {
	c.once.Do(func() {
		close(c.done)
		c.pulse.Stop()
	})

	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
}

func (c *tickerClock) Now() time.Time {
	return time.Now()
}
