// Copyright 2026 The Wilbur Authors
// SPDX-License-Identifier: MIT

// Package surface provides the render-target abstraction for the compositor.
//
// Surface is the fixed-size canvas that composited frames are drawn into
// before being exposed as a stream. The abstraction decouples the draw
// sequence (clear, background, overlay) from its implementation:
//
//   - ImageSurface: in-process CPU rendering to *image.RGBA
//   - TextureSurface: GPU-texture mirroring via gogpu/gpucontext
//
// # Backend selection
//
// Backends register with a priority and an availability probe. Selection
// happens once, at surface creation, in priority order with deterministic
// fallback; it is never re-probed per frame:
//
//	reg := surface.NewRegistry()
//	reg.Register(surface.BackendTexture, 100, textureFactory, textureAvailable)
//	reg.Register(surface.BackendImage, 10, imageFactory, nil)
//
//	s, err := reg.NewSurface(surface.Options{Width: 1280, Height: 720})
//
// Total absence of any available backend is reported as
// ErrNoBackendAvailable; callers treat this as fatal.
//
// # Usage
//
//	s := surface.NewImageSurface(1280, 720)
//	defer s.Close()
//
//	s.Clear(color.Transparent)
//	s.Fill(s.Bounds(), color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xff})
//	s.DrawImage(frame, nil)
//	img := s.Snapshot()
//
// Surfaces are NOT thread-safe. Each surface is private to a single
// compositor session and is only touched from the session's render loop,
// so no external synchronization is needed in normal use.
package surface
