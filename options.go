package compositor

import (
	"image"
	"image/color"

	"github.com/wilburlive/compositor/surface"
)

// Mode selects the background layer of composited frames.
type Mode uint8

const (
	// ModePassThrough draws the live source track as the background.
	// Requires a source track.
	ModePassThrough Mode = iota

	// ModeSolid draws a flat fill color. No source track is required.
	ModeSolid
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModePassThrough:
		return "pass-through"
	case ModeSolid:
		return "solid"
	default:
		return "unknown"
	}
}

// Frame-rate and dimension defaults.
const (
	// DefaultFPS is the draw rate used when Options.TargetFPS is zero.
	DefaultFPS = 30

	// MinFPS and MaxFPS bound the effective draw rate. Requests outside
	// the range are clamped, not rejected, so an absurd TargetFPS can
	// never busy-loop the scheduler.
	MinFPS = 1
	MaxFPS = 240

	// DefaultWidth and DefaultHeight size the render target when
	// Options leaves dimensions at zero.
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// DefaultBackground is the dark neutral used when no background color is
// configured. It also serves as the pass-through fallback fill while the
// source track has not yet produced a decodable frame.
var DefaultBackground = Hex("#0b0f19").Color()

// Options configures a compositor session. The zero value is not usable
// on its own: pass-through mode (the zero Mode) requires a source track.
type Options struct {
	// Mode selects the initial background mode.
	Mode Mode

	// Track is the live source video track. Required for ModePassThrough
	// unless TrackFrames is set. The track's lifetime stays with the
	// caller; Stop detaches but never closes it.
	Track Track

	// TrackFrames, when non-nil, makes the session build an internal
	// proxy track fed from this channel. The session owns the proxy and
	// tears it down on Stop; the channel itself remains the caller's.
	// Ignored when Track is set.
	TrackFrames <-chan image.Image

	// Overlay is the externally refreshed annotation surface sampled
	// each frame. May be nil or content-less; the overlay layer is then
	// skipped per frame rather than failing.
	Overlay Overlay

	// BackgroundColor is used by ModeSolid and as the pass-through
	// fallback fill. Nil selects DefaultBackground.
	BackgroundColor color.Color

	// TargetFPS is the desired draw rate. Zero selects DefaultFPS;
	// values outside [MinFPS, MaxFPS] are clamped.
	TargetFPS int

	// Width and Height size the render target. Zero selects the
	// defaults. Dimensions are fixed for the session's lifetime.
	Width  int
	Height int

	// Clock overrides the frame clock driving the render loop. Nil
	// selects the real-time clock. The session owns the clock and
	// cancels it on Stop.
	Clock FrameClock

	// TextureHost, when non-nil, enables the GPU-texture surface
	// backend for this session's render target. The CPU image backend
	// remains the fallback.
	TextureHost surface.TextureHost

	// Surfaces overrides the surface backend registry. Nil makes the
	// session build its own registry from the options above. Mostly
	// useful in tests.
	Surfaces *surface.Registry
}

// withDefaults resolves zero values and clamps the frame rate.
func (o Options) withDefaults() Options {
	if o.BackgroundColor == nil {
		o.BackgroundColor = DefaultBackground
	}
	if o.TargetFPS == 0 {
		o.TargetFPS = DefaultFPS
	}
	if o.TargetFPS < MinFPS {
		Logger().Warn("target fps below minimum, clamped", "requested", o.TargetFPS, "min", MinFPS)
		o.TargetFPS = MinFPS
	}
	if o.TargetFPS > MaxFPS {
		Logger().Warn("target fps above ceiling, clamped", "requested", o.TargetFPS, "max", MaxFPS)
		o.TargetFPS = MaxFPS
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	return o
}
