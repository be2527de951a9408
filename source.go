package compositor

import (
	"image"
	"sync"
	"sync/atomic"
)

// Track is a non-owning handle to a live video source. The compositor
// only reads from it; the track's lifetime stays with whoever supplied it.
type Track interface {
	// Frame returns the most recent decodable frame. ok is false until
	// the track has produced at least one frame. Never blocks.
	Frame() (image.Image, bool)
}

// frameBox wraps a frame for atomic publication.
type frameBox struct {
	img image.Image
}

// ChannelTrack adapts a frame channel into a Track by pumping frames
// into a latest-frame slot on its own goroutine. Sessions build one of
// these as the internal proxy when Options.TrackFrames is used; the
// session then owns the proxy's teardown, while the channel itself
// remains the caller's.
type ChannelTrack struct {
	latest atomic.Pointer[frameBox]
	done   chan struct{}
	once   sync.Once
}

// NewChannelTrack starts a pump reading frames from the channel. Nil
// frames are ignored. The pump exits when Close is called or the channel
// is closed.
func NewChannelTrack(frames <-chan image.Image) *ChannelTrack {
	t := &ChannelTrack{done: make(chan struct{})}
	go t.pump(frames)
	return t
}

func (t *ChannelTrack) pump(frames <-chan image.Image) {
	for {
		select {
		case <-t.done:
			return
		case img, ok := <-frames:
			if !ok {
				return
			}
			if img != nil {
				t.latest.Store(&frameBox{img: img})
			}
		}
	}
}

// Frame returns the most recent pumped frame.
func (t *ChannelTrack) Frame() (image.Image, bool) {
	b := t.latest.Load()
	if b == nil {
		return nil, false
	}
	return b.img, true
}

// Close stops the pump goroutine. It does not close or drain the
// caller's channel. Idempotent.
func (t *ChannelTrack) Close() {
	t.once.Do(func() {
		close(t.done)
	})
}

var _ Track = (*ChannelTrack)(nil)

// trackRef boxes a Track for atomic attach/detach.
type trackRef struct {
	track Track
}

// frameSource wraps the externally supplied track into a drawable input
// with a readiness predicate. It never owns the track.
type frameSource struct {
	ref atomic.Pointer[trackRef]
}

// Attach stores a non-owning reference to the track.
func (s *frameSource) Attach(t Track) {
	if t == nil {
		s.ref.Store(nil)
		return
	}
	s.ref.Store(&trackRef{track: t})
}

// Detach clears the reference. The track itself is untouched.
func (s *frameSource) Detach() {
	s.ref.Store(nil)
}

// Ready reports whether the track has produced at least one decodable
// frame. Never blocks.
func (s *frameSource) Ready() bool {
	_, ok := s.CurrentFrame()
	return ok
}

// CurrentFrame returns the track's latest frame, or ok=false when no
// track is attached or no frame has arrived yet.
func (s *frameSource) CurrentFrame() (image.Image, bool) {
	ref := s.ref.Load()
	if ref == nil {
		return nil, false
	}
	return ref.track.Frame()
}
