package compositor

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// manualClock is a deterministic FrameClock for tests. Time only moves
// when advance is called; each pulse fires at most one pending tick,
// synchronously on the calling goroutine.
type manualClock struct {
	mu        sync.Mutex
	now       time.Time
	pulse     time.Duration
	pending   func()
	cancelled bool
}

func newManualClock(pulse time.Duration) *manualClock {
	return &manualClock{
		now:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		pulse: pulse,
	}
}

func (c *manualClock) ScheduleTick(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelled {
		return
	}
	c.pending = fn
}

func (c *manualClock) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelled = true
	c.pending = nil
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// advance moves time forward one pulse at a time, firing the pending
// tick at each step.
func (c *manualClock) advance(d time.Duration) {
	for steps := int(d / c.pulse); steps > 0; steps-- {
		c.mu.Lock()
		c.now = c.now.Add(c.pulse)
		fn := c.pending
		c.pending = nil
		c.mu.Unlock()

		if fn != nil {
			fn()
		}
	}
}

func TestManualClock(t *testing.T) {
	c := newManualClock(4 * time.Millisecond)

	var count int
	c.ScheduleTick(func() { count++ })

	c.advance(4 * time.Millisecond)
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	// The slot was consumed; further pulses fire nothing.
	c.advance(20 * time.Millisecond)
	if count != 1 {
		t.Errorf("count = %d, want 1 after consumed slot", count)
	}

	c.Cancel()
	c.ScheduleTick(func() { count++ })
	c.advance(20 * time.Millisecond)
	if count != 1 {
		t.Errorf("count = %d, want 1 after Cancel", count)
	}
}

func TestTickerClockFiresScheduledTick(t *testing.T) {
	c := newTickerClock(time.Millisecond)
	defer c.Cancel()

	fired := make(chan struct{})
	c.ScheduleTick(func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("scheduled tick never fired")
	}
}

func TestTickerClockConsumesPending(t *testing.T) {
	c := newTickerClock(time.Millisecond)
	defer c.Cancel()

	var count atomic.Int32
	fired := make(chan struct{})
	c.ScheduleTick(func() {
		count.Add(1)
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("scheduled tick never fired")
	}

	// One ScheduleTick means one callback, no matter how many pulses pass.
	time.Sleep(10 * time.Millisecond)
	if got := count.Load(); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
}

func TestTickerClockCancel(t *testing.T) {
	c := newTickerClock(time.Millisecond)
	c.Cancel()

	var count atomic.Int32
	c.ScheduleTick(func() { count.Add(1) })

	time.Sleep(10 * time.Millisecond)
	if got := count.Load(); got != 0 {
		t.Errorf("callback fired %d times after Cancel", got)
	}

	// Idempotent.
	c.Cancel()
}

func TestTickerClockNow(t *testing.T) {
	c := newTickerClock(time.Millisecond)
	defer c.Cancel()

	before := time.Now()
	got := c.Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("Now = %v, want between %v and %v", got, before, after)
	}
}
