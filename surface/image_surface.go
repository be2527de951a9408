// Copyright 2026 The Wilbur Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// ImageSurface is a CPU-based surface that renders to an *image.RGBA.
//
// This is the in-process fallback surface: it needs no GPU context and is
// always available. Layer scaling uses the golang.org/x/image scalers.
//
// Example:
//
//	s := surface.NewImageSurface(1280, 720)
//	defer s.Close()
//
//	s.Clear(color.Transparent)
//	s.Fill(s.Bounds(), color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xff})
//	s.DrawImage(frame, nil)
//
//	img := s.Snapshot()
type ImageSurface struct {
	width  int
	height int
	img    *image.RGBA

	// closed tracks if Close has been called
	closed bool
}

// NewImageSurface creates a new CPU-based surface with the given dimensions.
func NewImageSurface(width, height int) *ImageSurface {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}

	return &ImageSurface{
		width:  width,
		height: height,
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// NewImageSurfaceFromImage creates a surface backed by an existing image.
// The surface will render into the provided image directly.
func NewImageSurfaceFromImage(img *image.RGBA) *ImageSurface {
	bounds := img.Bounds()

	return &ImageSurface{
		width:  bounds.Dx(),
		height: bounds.Dy(),
		img:    img,
	}
}

// Width returns the surface width.
func (s *ImageSurface) Width() int {
	return s.width
}

// Height returns the surface height.
func (s *ImageSurface) Height() int {
	return s.height
}

// Bounds returns the surface rectangle.
func (s *ImageSurface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.width, s.height)
}

// Clear fills the entire surface with the given color, replacing any
// previous content including alpha.
func (s *ImageSurface) Clear(c color.Color) {
	if s.closed {
		return
	}

	xdraw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, xdraw.Src)
}

// Fill paints the rectangle with the color using source-over compositing.
func (s *ImageSurface) Fill(r image.Rectangle, c color.Color) {
	if s.closed {
		return
	}

	r = r.Intersect(s.img.Bounds())
	if r.Empty() {
		return
	}

	xdraw.Draw(s.img, r, image.NewUniform(c), image.Point{}, xdraw.Over)
}

// DrawImage composites an image layer onto the surface.
//
// A nil opts draws the full image at the origin, unscaled and opaque.
// An Alpha of exactly 0 is treated as unset (opaque) so that zero-value
// options behave sensibly.
func (s *ImageSurface) DrawImage(img image.Image, opts *DrawImageOptions) {
	if s.closed || img == nil {
		return
	}

	sr := img.Bounds()
	if opts != nil && opts.SrcRect != nil {
		sr = *opts.SrcRect
	}

	dr := image.Rect(0, 0, sr.Dx(), sr.Dy())
	if opts != nil && opts.DstRect != nil {
		dr = *opts.DstRect
	}

	alpha := 1.0
	if opts != nil && opts.Alpha > 0 && opts.Alpha < 1.0 {
		alpha = opts.Alpha
	}

	var mask image.Image
	if alpha < 1.0 {
		mask = image.NewUniform(color.Alpha{A: uint8(alpha*255 + 0.5)})
	}

	if dr.Dx() == sr.Dx() && dr.Dy() == sr.Dy() {
		// No scaling: direct masked blit.
		xdraw.DrawMask(s.img, dr, img, sr.Min, mask, image.Point{}, xdraw.Over)
		return
	}

	var scaler xdraw.Scaler = xdraw.ApproxBiLinear
	if opts != nil && opts.Filter == FilterNearest {
		scaler = xdraw.NearestNeighbor
	}

	var xopts *xdraw.Options
	if mask != nil {
		xopts = &xdraw.Options{SrcMask: mask}
	}
	scaler.Scale(s.img, dr, img, sr, xdraw.Over, xopts)
}

// Flush ensures all pending operations are complete.
// For ImageSurface, this is a no-op.
func (s *ImageSurface) Flush() error {
	return nil
}

// Snapshot returns a copy of the current surface contents.
func (s *ImageSurface) Snapshot() *image.RGBA {
	if s.closed {
		return nil
	}

	result := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	copy(result.Pix, s.img.Pix)
	return result
}

// Close releases resources associated with the surface.
func (s *ImageSurface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.img = nil
	return nil
}

// Image returns the underlying image.RGBA.
// This is a direct reference, not a copy. Returns nil after Close.
func (s *ImageSurface) Image() *image.RGBA {
	return s.img
}

// Capabilities returns the surface capabilities.
func (s *ImageSurface) Capabilities() Capabilities {
	return Capabilities{
		Accelerated:   false,
		SupportsAlpha: true,
		MaxWidth:      0, // Unlimited
		MaxHeight:     0,
	}
}

// Verify ImageSurface implements Surface interface.
var _ Surface = (*ImageSurface)(nil)
var _ CapableSurface = (*ImageSurface)(nil)
