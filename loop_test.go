package compositor

import (
	"image/color"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/wilburlive/compositor/surface"
)

// loopFixture wires a render loop to a manual clock and an in-memory
// target so draw scheduling can be tested deterministically.
type loopFixture struct {
	loop    *renderLoop
	clock   *manualClock
	stream  *Stream
	target  *surface.ImageSurface
	source  *frameSource
	overlay *overlayBinder
	modes   *modeController
}

func newLoopFixture(t *testing.T, fps int, mode Mode, bg color.Color) *loopFixture {
	t.Helper()

	f := &loopFixture{
		clock:   newManualClock(4 * time.Millisecond),
		stream:  newStream(),
		target:  surface.NewImageSurface(32, 32),
		source:  &frameSource{},
		overlay: &overlayBinder{},
		modes:   newModeController(mode, bg),
	}
	f.loop = newRenderLoop("test", f.clock, f.target, f.source, f.overlay,
		f.modes, f.stream, fps)

	t.Cleanup(func() {
		f.loop.stop()
		f.target.Close()
	})
	return f
}

// latestPixel samples the center of the most recently published frame.
func (f *loopFixture) latestPixel(t *testing.T) color.RGBA {
	t.Helper()
	frame := f.stream.Latest()
	if frame == nil {
		t.Fatal("no frame published")
	}
	return frame.Image.RGBAAt(16, 16)
}

func TestRenderLoopConvergesOnTargetRate(t *testing.T) {
	f := newLoopFixture(t, 30, ModeSolid, Hex("#0b0f19").Color())
	f.loop.start()

	f.clock.advance(time.Second)

	// One simulated second at 30 fps on a 4ms pulse: the throttle grants
	// a draw every 36ms. Allow ±10% around the target.
	draws := f.loop.framesDrawn()
	if draws < 27 || draws > 33 {
		t.Errorf("framesDrawn = %d, want within 10%% of 30", draws)
	}
}

func TestRenderLoopSolidFill(t *testing.T) {
	f := newLoopFixture(t, 30, ModeSolid, Hex("#112233").Color())
	f.loop.start()

	f.clock.advance(4 * time.Millisecond)

	want := color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 255}
	if got := f.latestPixel(t); got != want {
		t.Errorf("pixel = %v, want %v", got, want)
	}
}

func TestRenderLoopPassThroughFallback(t *testing.T) {
	f := newLoopFixture(t, 30, ModePassThrough, Hex("#0b0f19").Color())
	f.loop.start()

	// No decodable frame yet: the loop keeps emitting, filled with the
	// background color, instead of stalling the stream.
	f.clock.advance(4 * time.Millisecond)

	want := color.RGBA{R: 0x0b, G: 0x0f, B: 0x19, A: 255}
	if got := f.latestPixel(t); got != want {
		t.Errorf("fallback pixel = %v, want %v", got, want)
	}

	// Once the source is live its frames take over.
	f.source.Attach(&stubTrack{img: solidImage(4, 4, color.RGBA{G: 255, A: 255})})
	f.clock.advance(40 * time.Millisecond)

	if got := f.latestPixel(t); got.G != 255 {
		t.Errorf("pixel = %v, want source green", got)
	}
}

func TestRenderLoopModeSwapVisibleNextFrame(t *testing.T) {
	f := newLoopFixture(t, 30, ModeSolid, color.NRGBA{A: 255})
	f.loop.start()

	f.clock.advance(4 * time.Millisecond)
	if got := f.latestPixel(t); got.R != 0 {
		t.Fatalf("pixel = %v, want black before the swap", got)
	}

	f.modes.Swap(ModeSolid, Hex("#ffffff").Color())
	f.clock.advance(40 * time.Millisecond)

	want := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if got := f.latestPixel(t); got != want {
		t.Errorf("pixel = %v, want white after the swap", got)
	}
}

func TestRenderLoopAbsorbsDrawPanic(t *testing.T) {
	f := newLoopFixture(t, 30, ModePassThrough, Hex("#0b0f19").Color())
	f.source.Attach(&panicTrack{})
	f.loop.start()

	// Every attempted draw panics; the loop logs, absorbs, and retries.
	f.clock.advance(100 * time.Millisecond)
	if got := f.loop.framesDrawn(); got != 0 {
		t.Errorf("framesDrawn = %d, want 0 while the source panics", got)
	}

	// Recovery: a healthy source resumes drawing on the same loop.
	f.source.Attach(&stubTrack{img: solidImage(4, 4, color.RGBA{B: 255, A: 255})})
	f.clock.advance(40 * time.Millisecond)
	if f.loop.framesDrawn() == 0 {
		t.Error("loop should draw again once the source recovers")
	}
}

func TestRenderLoopStop(t *testing.T) {
	f := newLoopFixture(t, 30, ModeSolid, Hex("#0b0f19").Color())
	f.loop.start()

	f.clock.advance(100 * time.Millisecond)
	if f.loop.framesDrawn() == 0 {
		t.Fatal("expected draws before stop")
	}

	f.loop.stop()
	f.loop.stop() // Idempotent

	before := f.loop.framesDrawn()
	f.clock.advance(time.Second)
	if got := f.loop.framesDrawn(); got != before {
		t.Errorf("framesDrawn = %d after stop, want %d", got, before)
	}
}

func TestRenderLoopStopBeforeFirstDraw(t *testing.T) {
	f := newLoopFixture(t, 30, ModeSolid, Hex("#0b0f19").Color())
	f.loop.start()
	f.loop.stop()

	f.clock.advance(time.Second)
	if got := f.loop.framesDrawn(); got != 0 {
		t.Errorf("framesDrawn = %d, want 0", got)
	}
}

func TestRenderLoopThrottlesFailingSource(t *testing.T) {
	f := newLoopFixture(t, 30, ModePassThrough, Hex("#0b0f19").Color())
	track := &panicTrack{}
	f.source.Attach(track)
	f.loop.start()

	f.clock.advance(time.Second)

	// A failed draw pass burns its frame slot like a successful one:
	// retries happen at the frame interval, never at the clock's full
	// pulse rate.
	attempts := track.calls.Load()
	if attempts == 0 {
		t.Fatal("expected draw attempts")
	}
	if attempts > 33 {
		t.Errorf("attempts = %d, want at most ~30 over one second", attempts)
	}
}

// hotClock fires ticks from a dedicated goroutine as fast as they are
// scheduled, with tickerClock's Cancel semantics but none of its pacing.
// It exposes scheduling races the paced clocks hide.
type hotClock struct {
	done chan struct{}
	once sync.Once

	mu      sync.Mutex
	pending func()
}

func newHotClock() *hotClock {
	c := &hotClock{done: make(chan struct{})}
	go c.run()
	return c
}

func (c *hotClock) run() {
	for {
		select {
		case <-c.done:
			return
		default:
		}

		c.mu.Lock()
		fn := c.pending
		c.pending = nil
		c.mu.Unlock()

		if fn != nil {
			fn()
		}
	}
}

func (c *hotClock) ScheduleTick(fn func()) {
	c.mu.Lock()
	c.pending = fn
	c.mu.Unlock()
}

func (c *hotClock) Cancel() {
	c.once.Do(func() { close(c.done) })

	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
}

func (c *hotClock) Now() time.Time {
	return time.Now()
}

func TestRenderLoopStopFreezesDrawCount(t *testing.T) {
	bg := Hex("#0b0f19").Color()

	// Hammer stop against a clock that never pauses between ticks: a
	// tick racing stop for the draw lock must not land a draw after stop
	// has returned.
	for i := 0; i < 1000; i++ {
		clock := newHotClock()
		target := surface.NewImageSurface(8, 8)
		loop := newRenderLoop("test", clock, target, &frameSource{},
			&overlayBinder{}, newModeController(ModeSolid, bg), newStream(), MaxFPS)

		loop.start()
		runtime.Gosched()
		loop.stop()

		frozen := loop.framesDrawn()
		time.Sleep(20 * time.Microsecond)
		if got := loop.framesDrawn(); got != frozen {
			t.Fatalf("iteration %d: framesDrawn advanced from %d to %d after stop returned",
				i, frozen, got)
		}
		target.Close()
	}
}
