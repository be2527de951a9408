package compositor

import (
	"image"
	"sync/atomic"

	"github.com/wilburlive/compositor/surface"
)

// Overlay is a drawable surface whose contents are produced elsewhere
// (annotations, cursors, chat badges). The compositor only samples it.
type Overlay interface {
	// Image returns the overlay's current contents, or nil while it has
	// none. Called once per composited frame; must not block.
	Image() image.Image
}

// overlayRef boxes an Overlay for atomic bind/unbind.
type overlayRef struct {
	overlay Overlay
}

// overlayBinder draws the bound overlay onto the render target each
// frame. An absent overlay, or one that panics while being sampled,
// skips the overlay layer for that frame; it is never fatal.
type overlayBinder struct {
	ref atomic.Pointer[overlayRef]
}

// Bind stores a non-owning reference to the overlay.
func (b *overlayBinder) Bind(ov Overlay) {
	if ov == nil {
		b.ref.Store(nil)
		return
	}
	b.ref.Store(&overlayRef{overlay: ov})
}

// Unbind clears the reference without touching the overlay itself.
func (b *overlayBinder) Unbind() {
	b.ref.Store(nil)
}

// Draw samples the overlay and composites it over the whole target.
func (b *overlayBinder) Draw(target surface.Surface) {
	ref := b.ref.Load()
	if ref == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			Logger().Warn("overlay draw failed, layer skipped", "panic", r)
		}
	}()

	img := ref.overlay.Image()
	if img == nil {
		return
	}

	dst := target.Bounds()
	opts := surface.DefaultDrawImageOptions()
	opts.DstRect = &dst
	target.DrawImage(img, opts)
}
