// Copyright 2026 The Wilbur Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"image"
	"image/color"
)

// Surface is the core render-target abstraction.
//
// A Surface represents the fixed-size canvas a compositor session draws
// into each frame. Implementations may render on the CPU, mirror into a
// GPU texture, or use any other backend.
//
// Dimensions are fixed at creation and never change for the lifetime of
// the surface.
//
// Surfaces are NOT thread-safe. Each surface should be used from a single
// goroutine, or external synchronization must be used.
type Surface interface {
	// Width returns the surface width in pixels.
	Width() int

	// Height returns the surface height in pixels.
	Height() int

	// Bounds returns the surface rectangle, anchored at the origin.
	Bounds() image.Rectangle

	// Clear fills the entire surface with the given color, replacing
	// whatever was there. This is the fastest way to reset the surface.
	Clear(c color.Color)

	// Fill paints the given rectangle with the color using source-over
	// compositing. Used for solid and fallback background layers.
	Fill(r image.Rectangle, c color.Color)

	// DrawImage composites an image layer onto the surface.
	// If opts is nil, the image is drawn at the origin without scaling.
	DrawImage(img image.Image, opts *DrawImageOptions)

	// Flush ensures all pending drawing operations are complete.
	// For CPU surfaces, this is typically a no-op.
	// For GPU-backed surfaces, this may upload and present the frame.
	// Returns an error if flushing fails.
	Flush() error

	// Snapshot returns the current surface contents as an RGBA image.
	// The returned image is a copy; modifications to it do not affect
	// the surface. Returns nil after Close.
	Snapshot() *image.RGBA

	// Close releases all resources associated with the surface.
	// After Close, the surface must not be drawn to.
	// Close is idempotent; multiple calls are safe.
	Close() error
}

// Capabilities describes the optional features a surface supports.
type Capabilities struct {
	// Accelerated indicates frames are mirrored to a GPU texture.
	Accelerated bool

	// SupportsAlpha indicates layers with partial opacity composite
	// correctly rather than being drawn opaque.
	SupportsAlpha bool

	// MaxWidth is the maximum supported width (0 = unlimited).
	MaxWidth int

	// MaxHeight is the maximum supported height (0 = unlimited).
	MaxHeight int
}

// CapableSurface is an optional interface for querying surface capabilities.
type CapableSurface interface {
	Surface

	// Capabilities returns the surface's capabilities.
	Capabilities() Capabilities
}
