package compositor

import (
	"image/color"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wilburlive/compositor/surface"
)

// renderLoop is the cooperative scheduler at the heart of a session.
//
// It ticks on every clock pulse, throttles actual draws to the frame
// interval, and runs the draw sequence: clear, background, overlay,
// publish. Ticks under budget are cheap no-ops.
//
// All draw work is serialized under mu; stop waits out an in-flight
// draw, so no draw call can outlive stop().
type renderLoop struct {
	sessionID string

	clock   FrameClock
	target  surface.Surface
	source  *frameSource
	overlay *overlayBinder
	modes   *modeController
	stream  *Stream

	// interval is computed once from the target fps at session start,
	// not re-derived per tick, to avoid drift from repeated rounding.
	interval time.Duration

	mu       sync.Mutex
	lastDraw time.Time

	stopped atomic.Bool
	draws   atomic.Uint64
}

func newRenderLoop(sessionID string, clock FrameClock, target surface.Surface,
	source *frameSource, overlay *overlayBinder, modes *modeController,
	stream *Stream, fps int) *renderLoop {
	return &renderLoop{
		sessionID: sessionID,
		clock:     clock,
		target:    target,
		source:    source,
		overlay:   overlay,
		modes:     modes,
		stream:    stream,
		interval:  time.Second / time.Duration(fps),
	}
}

// start schedules the first tick. Drawing begins asynchronously on the
// clock's scheduling context.
func (l *renderLoop) start() {
	l.clock.ScheduleTick(l.tick)
}

// tick runs once per clock pulse. It draws when the frame interval has
// elapsed, then re-arms itself.
func (l *renderLoop) tick() {
	if l.stopped.Load() {
		return
	}

	l.mu.Lock()
	l.drawIfDue()
	l.mu.Unlock()

	if !l.stopped.Load() {
		// Re-arming a cancelled clock is harmless; the callback never
		// fires once Cancel has run.
		l.clock.ScheduleTick(l.tick)
	}
}

// drawIfDue performs one throttled draw pass. Must hold mu.
func (l *renderLoop) drawIfDue() {
	// stopped can flip between the tick's entry check and taking mu;
	// re-check under the lock so no draw starts after stop has returned.
	if l.stopped.Load() {
		return
	}

	now := l.clock.Now()
	if !l.lastDraw.IsZero() && now.Sub(l.lastDraw) < l.interval {
		return
	}

	// A panicking frame is logged and absorbed; the next due frame
	// retries. Recording the attempt keeps a failing source throttled to
	// the frame interval rather than the clock's pulse rate.
	defer func() {
		if r := recover(); r != nil {
			l.lastDraw = now
			Logger().Warn("draw pass failed, continuing",
				"session", l.sessionID, "panic", r)
		}
	}()

	mode, background := l.modes.Snapshot()

	l.target.Clear(color.Transparent)
	l.drawBackground(mode, background)
	l.overlay.Draw(l.target)

	if err := l.target.Flush(); err != nil {
		Logger().Warn("surface flush failed",
			"session", l.sessionID, "error", err)
	}

	l.stream.publish(l.target.Snapshot(), now)

	l.lastDraw = now
	l.draws.Add(1)

	Logger().Debug("frame drawn",
		"session", l.sessionID, "mode", mode.String(), "seq", l.draws.Load())
}

// drawBackground paints the background layer for the current mode.
func (l *renderLoop) drawBackground(mode Mode, background color.Color) {
	bounds := l.target.Bounds()

	switch mode {
	case ModePassThrough:
		if img, ok := l.source.CurrentFrame(); ok {
			opts := surface.DefaultDrawImageOptions()
			opts.DstRect = &bounds
			l.target.DrawImage(img, opts)
			return
		}
		// Source has no decodable frame yet: fall back to a fill so the
		// stream keeps emitting frames instead of stalling.
		l.target.Fill(bounds, background)
	case ModeSolid:
		l.target.Fill(bounds, background)
	}
}

// stop cancels the pending tick and waits out any in-flight draw.
// After stop returns, zero further draw calls occur. Idempotent.
func (l *renderLoop) stop() {
	if !l.stopped.CompareAndSwap(false, true) {
		return
	}

	l.clock.Cancel()
	l.waitIdle()
}

// waitIdle returns once no draw pass is executing.
func (l *renderLoop) waitIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()
}

// framesDrawn reports the number of completed draw passes.
func (l *renderLoop) framesDrawn() uint64 {
	return l.draws.Load()
}
