// Copyright 2026 The Wilbur Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/gpucontext"
)

// Texture surface errors.
var (
	// ErrNilHost is returned when a nil TextureHost is passed.
	ErrNilHost = errors.New("surface: nil TextureHost")
)

// TextureHost is the slice of a host GPU context the texture surface
// needs: creating a texture from RGBA pixels and presenting it. gogpu
// draw contexts satisfy it via their texture-drawer adapters.
type TextureHost interface {
	// NewTextureFromRGBA uploads premultiplied RGBA pixels into a new
	// texture and returns the backend's texture handle.
	NewTextureFromRGBA(width, height int, data []byte) (any, error)

	// DrawTexture presents the texture at the given position.
	DrawTexture(tex any, x, y float32) error
}

// textureDestroyer is the interface for destroying textures.
// This matches the gogpu.Texture.Destroy signature.
type textureDestroyer interface {
	Destroy()
}

// TextureSurface is the preferred, GPU-texture backed surface.
//
// Compositing happens on a CPU pixel buffer; each Flush uploads the
// buffer into a GPU texture owned by the host and presents it. The
// texture is created lazily on the first Flush and updated in place
// afterwards when the host supports gpucontext.TextureUpdater,
// recreated otherwise.
//
// TextureSurface is NOT safe for concurrent use; it is private to a
// single compositor session.
type TextureSurface struct {
	inner *ImageSurface
	host  TextureHost

	texture any  // Lazy-created host texture handle
	dirty   bool // Needs GPU upload
	closed  bool
}

// NewTextureSurface creates a GPU-texture backed surface on the given
// host. Returns ErrNilHost if host is nil.
func NewTextureSurface(width, height int, host TextureHost) (*TextureSurface, error) {
	if host == nil {
		return nil, ErrNilHost
	}

	return &TextureSurface{
		inner: NewImageSurface(width, height),
		host:  host,
		dirty: true, // Mark dirty so first Flush creates the texture
	}, nil
}

// TextureAvailable returns the registry availability probe for a
// texture backend built on the given host. Evaluated once at surface
// selection, never per frame.
func TextureAvailable(host TextureHost) func() bool {
	return func() bool {
		return host != nil
	}
}

// Width returns the surface width.
func (s *TextureSurface) Width() int {
	return s.inner.Width()
}

// Height returns the surface height.
func (s *TextureSurface) Height() int {
	return s.inner.Height()
}

// Bounds returns the surface rectangle.
func (s *TextureSurface) Bounds() image.Rectangle {
	return s.inner.Bounds()
}

// Clear fills the entire surface with the given color.
func (s *TextureSurface) Clear(c color.Color) {
	if s.closed {
		return
	}
	s.inner.Clear(c)
	s.dirty = true
}

// Fill paints the rectangle with the color.
func (s *TextureSurface) Fill(r image.Rectangle, c color.Color) {
	if s.closed {
		return
	}
	s.inner.Fill(r, c)
	s.dirty = true
}

// DrawImage composites an image layer onto the surface.
func (s *TextureSurface) DrawImage(img image.Image, opts *DrawImageOptions) {
	if s.closed {
		return
	}
	s.inner.DrawImage(img, opts)
	s.dirty = true
}

// Flush uploads the composited pixels to the GPU texture and presents it.
func (s *TextureSurface) Flush() error {
	if s.closed {
		return nil
	}

	if s.dirty {
		if err := s.upload(); err != nil {
			return err
		}
		s.dirty = false
	}

	if s.texture == nil {
		return nil
	}
	return s.host.DrawTexture(s.texture, 0, 0)
}

// upload pushes the CPU pixel buffer into the host texture.
func (s *TextureSurface) upload() error {
	img := s.inner.Image()
	if img == nil {
		return nil
	}
	data := img.Pix

	if s.texture != nil {
		if updater, ok := s.texture.(gpucontext.TextureUpdater); ok {
			if err := updater.UpdateData(data); err != nil {
				return fmt.Errorf("surface: texture update failed: %w", err)
			}
			return nil
		}

		// Host cannot update in place; recreate below.
		if destroyer, ok := s.texture.(textureDestroyer); ok {
			destroyer.Destroy()
		}
		s.texture = nil
	}

	tex, err := s.host.NewTextureFromRGBA(s.inner.Width(), s.inner.Height(), data)
	if err != nil {
		return fmt.Errorf("surface: texture creation failed: %w", err)
	}

	// image.RGBA pixel data is premultiplied alpha — mark the texture
	// accordingly so the host composites with the right blend factors.
	if pt, ok := tex.(interface{ SetPremultiplied(bool) }); ok {
		pt.SetPremultiplied(true)
	}

	s.texture = tex
	return nil
}

// Snapshot returns a copy of the current surface contents.
// This reads the CPU-side buffer; no GPU readback is needed.
func (s *TextureSurface) Snapshot() *image.RGBA {
	if s.closed {
		return nil
	}
	return s.inner.Snapshot()
}

// Close releases the host texture and the CPU buffer.
// Close is idempotent.
func (s *TextureSurface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if s.texture != nil {
		if destroyer, ok := s.texture.(textureDestroyer); ok {
			destroyer.Destroy()
		}
		s.texture = nil
	}

	return s.inner.Close()
}

// Texture returns the current host texture handle without flushing.
// Returns nil if the texture hasn't been created yet.
func (s *TextureSurface) Texture() any {
	return s.texture
}

// Capabilities returns the surface capabilities.
func (s *TextureSurface) Capabilities() Capabilities {
	return Capabilities{
		Accelerated:   true,
		SupportsAlpha: true,
		MaxWidth:      16384, // Typical GPU texture limit
		MaxHeight:     16384,
	}
}

// Verify TextureSurface implements Surface interface.
var _ Surface = (*TextureSurface)(nil)
var _ CapableSurface = (*TextureSurface)(nil)
