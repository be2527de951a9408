package compositor

import (
	"errors"
	"fmt"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/wilburlive/compositor/surface"
)

// Construction-time errors returned by Start.
var (
	// ErrMissingTrack is returned when pass-through mode is requested
	// without a source track.
	ErrMissingTrack = errors.New("compositor: pass-through mode requires a source track")

	// ErrInvalidDimensions is returned for negative render-target sizes.
	ErrInvalidDimensions = errors.New("compositor: invalid render target dimensions")
)

// State is a session's lifecycle state.
type State int32

const (
	// StateRunning means the render loop is scheduled and drawing.
	StateRunning State = iota

	// StateStopped means Stop has run; no further frames will be drawn.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Session is one live compositing session: a render target, a render
// loop, and an output stream.
//
// Sessions are created running by Start and are independent of each
// other — there is no shared package-level session state. A Session
// cannot be restarted; create a new one instead.
type Session struct {
	id string

	modes   *modeController
	source  *frameSource
	overlay *overlayBinder
	target  surface.Surface
	clock   FrameClock
	loop    *renderLoop
	stream  *Stream

	// proxy is the internally created track pump, owned by the session.
	// nil when the caller supplied its own Track.
	proxy *ChannelTrack

	state    atomic.Int32
	stopOnce sync.Once
}

// Start validates opts, creates the render target via capability-probed
// backend selection, derives the output stream, and begins the render
// loop.
//
// The stream exists before Start returns: callers may hand it to a
// recorder immediately, even though no frame has necessarily been drawn
// yet. Drawing begins asynchronously.
//
// Failure to build any render target at all is fatal and reported here,
// never deferred to the first frame.
func Start(opts Options) (*Session, error) {
	if opts.Width < 0 || opts.Height < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, opts.Width, opts.Height)
	}
	if opts.Mode == ModePassThrough && opts.Track == nil && opts.TrackFrames == nil {
		return nil, ErrMissingTrack
	}

	opts = opts.withDefaults()

	target, err := createTarget(opts)
	if err != nil {
		return nil, fmt.Errorf("compositor: create render target: %w", err)
	}

	s := &Session{
		id:      uuid.NewString(),
		modes:   newModeController(opts.Mode, opts.BackgroundColor),
		source:  &frameSource{},
		overlay: &overlayBinder{},
		target:  target,
		stream:  newStream(),
	}

	switch {
	case opts.Track != nil:
		s.source.Attach(opts.Track)
	case opts.TrackFrames != nil:
		s.proxy = NewChannelTrack(opts.TrackFrames)
		s.source.Attach(s.proxy)
	}
	s.overlay.Bind(opts.Overlay)

	s.clock = opts.Clock
	if s.clock == nil {
		s.clock = newTickerClock(defaultPulse)
	}

	s.loop = newRenderLoop(s.id, s.clock, s.target, s.source, s.overlay,
		s.modes, s.stream, opts.TargetFPS)

	s.state.Store(int32(StateRunning))
	s.loop.start()

	Logger().Info("session started",
		"session", s.id,
		"stream", s.stream.ID(),
		"mode", opts.Mode.String(),
		"fps", opts.TargetFPS,
		"size", fmt.Sprintf("%dx%d", target.Width(), target.Height()))

	return s, nil
}

// createTarget selects the best available surface backend for this
// session. Probing happens here, once; it is never repeated per frame.
func createTarget(opts Options) (surface.Surface, error) {
	if reg := opts.Surfaces; reg != nil {
		return reg.NewSurface(surface.DefaultOptions(opts.Width, opts.Height))
	}

	// A session-scoped GPU context must stay private to this session, so
	// a texture host gets its own registry instead of registering with
	// the global one.
	if host := opts.TextureHost; host != nil {
		reg := surface.NewRegistry()
		reg.Register(surface.BackendImage, 10, func(o surface.Options) (surface.Surface, error) {
			return surface.NewImageSurface(o.Width, o.Height), nil
		}, nil)
		reg.Register(surface.BackendTexture, 100, func(o surface.Options) (surface.Surface, error) {
			return surface.NewTextureSurface(o.Width, o.Height, host)
		}, surface.TextureAvailable(host))
		return reg.NewSurface(surface.DefaultOptions(opts.Width, opts.Height))
	}

	return surface.NewSurface(opts.Width, opts.Height)
}

// ID returns the session's identity, used in log output.
func (s *Session) ID() string {
	return s.id
}

// State returns the session's lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Stream returns the session's output stream, or nil once the session
// has stopped.
func (s *Session) Stream() *Stream {
	if s.State() != StateRunning {
		return nil
	}
	return s.stream
}

// FramesDrawn reports how many frames the session has composited.
func (s *Session) FramesDrawn() uint64 {
	return s.loop.framesDrawn()
}

// SwapMode switches the background mode and, when background is non-nil,
// the background color. The change is visible from the next drawn frame;
// a draw already in progress is never interrupted, and the stream's
// identity is unaffected.
//
// SwapMode after Stop is a no-op.
func (s *Session) SwapMode(mode Mode, background color.Color) {
	if s.State() != StateRunning {
		return
	}

	s.modes.Swap(mode, background)
	Logger().Info("mode swapped", "session", s.id, "mode", mode.String())
}

// Stop tears the session down: the pending tick is cancelled, any
// internally created track proxy is stopped, the render target released,
// and the stream closed. The caller's track and overlay are detached but
// never closed.
//
// Stop is idempotent and safe from any goroutine, including before the
// first frame has been drawn. After Stop returns, zero further draw
// calls occur.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.state.Store(int32(StateStopped))

		s.loop.stop()
		s.source.Detach()
		if s.proxy != nil {
			s.proxy.Close()
		}
		s.overlay.Unbind()
		s.stream.close()

		if err := s.target.Close(); err != nil {
			Logger().Warn("render target close failed", "session", s.id, "error", err)
		}

		Logger().Info("session stopped", "session", s.id, "frames", s.loop.framesDrawn())
	})
}
