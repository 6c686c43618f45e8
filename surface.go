// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import "image"

// SurfaceHandle identifies a pixel surface owned by a SurfaceProvider.
// The manager never inspects it.
type SurfaceHandle = any

// SurfaceProvider moves pixels on behalf of a Manager. The manager computes
// rectangles; the provider owns the surfaces backing each page.
//
// Methods are called with the manager's write lock held and must not call
// back into the manager.
type SurfaceProvider interface {
	// CreateSurface allocates an empty size x size surface.
	CreateSurface(size int) (SurfaceHandle, error)

	// ResizeSurface grows h to newSize x newSize, keeping the existing
	// content at the top-left. It may return a new handle.
	ResizeSurface(h SurfaceHandle, newSize int) (SurfaceHandle, error)

	// CopyPixels writes src into dst with its bounds origin at (x, y).
	CopyPixels(src image.Image, dst SurfaceHandle, x, y int) error

	// ClearRegion resets r of h to transparent.
	ClearRegion(h SurfaceHandle, r image.Rectangle) error

	// ReadPixels returns a copy of r of h, with bounds starting at r.Min.
	// The copy must stay valid after h is modified.
	ReadPixels(h SurfaceHandle, r image.Rectangle) (image.Image, error)

	// DestroySurface releases h.
	DestroySurface(h SurfaceHandle)
}

// Flusher is implemented by providers that batch writes. Flush makes the
// pending writes of h visible, for example by uploading to a GPU texture.
// The manager calls it once per touched page after each operation.
type Flusher interface {
	Flush(h SurfaceHandle) error
}

// nopProvider backs geometry-only managers.
type nopProvider struct{}

func (nopProvider) CreateSurface(int) (SurfaceHandle, error) {
	return nil, nil
}

func (nopProvider) ResizeSurface(h SurfaceHandle, _ int) (SurfaceHandle, error) {
	return h, nil
}

func (nopProvider) CopyPixels(image.Image, SurfaceHandle, int, int) error {
	return nil
}

func (nopProvider) ClearRegion(SurfaceHandle, image.Rectangle) error {
	return nil
}

func (nopProvider) ReadPixels(SurfaceHandle, image.Rectangle) (image.Image, error) {
	return nil, nil
}

func (nopProvider) DestroySurface(SurfaceHandle) {}
