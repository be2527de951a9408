package compositor

import (
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Frame is one composited output frame.
type Frame struct {
	// Seq increments once per published frame within a stream.
	Seq uint64

	// Time is the clock time the frame was drawn.
	Time time.Time

	// Image is the composited frame. It is shared by all subscribers
	// and must be treated as read-only.
	Image *image.RGBA
}

// Stream is the live output derived from a session's render target.
//
// Exactly one Stream exists per session, created before Start returns,
// so callers can hand it to a recorder immediately even though no frame
// has been drawn yet. Its identity — the ID and the value itself — is
// stable across mode switches; only Stop closes it.
//
// Delivery uses latest-frame-wins mailboxes: publishing never blocks on
// a slow subscriber, the stale frame is dropped and counted instead.
type Stream struct {
	id string

	mu   sync.Mutex
	subs map[string]*Subscription

	latest atomic.Pointer[Frame]
	seq    atomic.Uint64
	closed atomic.Bool
}

func newStream() *Stream {
	return &Stream{
		id:   uuid.NewString(),
		subs: make(map[string]*Subscription),
	}
}

// ID returns the stream's stable identity.
func (s *Stream) ID() string {
	return s.id
}

// Latest returns the most recently published frame, or nil if none has
// been drawn yet.
func (s *Stream) Latest() *Frame {
	return s.latest.Load()
}

// Closed reports whether the owning session has stopped.
func (s *Stream) Closed() bool {
	return s.closed.Load()
}

// Subscribe registers a consumer. On a closed stream the returned
// subscription's Frames channel is already closed.
func (s *Stream) Subscribe() *Subscription {
	sub := &Subscription{
		id:     uuid.NewString(),
		stream: s,
		frames: make(chan *Frame, 1),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		close(sub.frames)
		return sub
	}
	s.subs[sub.id] = sub
	return sub
}

// publish fans a frame out to all subscribers without blocking.
func (s *Stream) publish(img *image.RGBA, at time.Time) {
	if img == nil || s.closed.Load() {
		return
	}

	f := &Frame{
		Seq:   s.seq.Add(1),
		Time:  at,
		Image: img,
	}
	s.latest.Store(f)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		sub.offer(f)
	}
}

// close marks the stream closed and ends all subscriptions. Called once
// from Session.Stop.
func (s *Stream) close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sub := range s.subs {
		close(sub.frames)
		delete(s.subs, id)
	}
}

// Subscription is one consumer's view of a Stream.
type Subscription struct {
	id     string
	stream *Stream
	frames chan *Frame
	drops  atomic.Uint64
}

// Frames returns the subscriber's frame channel. The channel is closed
// when the subscription or the owning stream is closed.
func (sub *Subscription) Frames() <-chan *Frame {
	return sub.frames
}

// Drops reports how many frames were discarded because the subscriber
// was not keeping up.
func (sub *Subscription) Drops() uint64 {
	return sub.drops.Load()
}

// Close detaches the subscription from the stream. Idempotent; safe to
// call after the stream itself has closed.
func (sub *Subscription) Close() {
	s := sub.stream

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[sub.id]; ok {
		delete(s.subs, sub.id)
		close(sub.frames)
	}
}

// offer delivers without blocking: a full mailbox is drained and the
// stale frame counted as dropped. Called with the stream lock held, so
// offers are serialized with close.
func (sub *Subscription) offer(f *Frame) {
	for {
		select {
		case sub.frames <- f:
			return
		default:
		}

		select {
		case <-sub.frames:
			sub.drops.Add(1)
		default:
		}
	}
}
