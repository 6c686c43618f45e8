// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/draw"

	"github.com/gogpu/atlas"
)

var (
	// ErrUnknownSurface is returned for handles not created by the provider
	// or already destroyed.
	ErrUnknownSurface = errors.New("surface: unknown surface")

	// ErrOutOfBounds is returned when a write or read leaves the surface.
	ErrOutOfBounds = errors.New("surface: region out of bounds")

	// ErrInvalidSize is returned for non-positive surface sizes.
	ErrInvalidSize = errors.New("surface: invalid size")
)

// Page is the handle of a surface created by MemoryProvider.
type Page struct {
	img  *image.RGBA
	live bool
}

// MemoryProvider keeps page surfaces in CPU memory as *image.RGBA.
//
// ResizeSurface grows a page in place and returns the same handle.
type MemoryProvider struct {
	mu    sync.RWMutex
	pages map[*Page]struct{}
}

var _ atlas.SurfaceProvider = (*MemoryProvider)(nil)

// NewMemoryProvider creates an empty provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{pages: make(map[*Page]struct{})}
}

// lookup returns the live page behind h. Callers hold mu.
func (p *MemoryProvider) lookup(h atlas.SurfaceHandle) (*Page, error) {
	pg, ok := h.(*Page)
	if !ok || pg == nil {
		return nil, fmt.Errorf("%w: %T", ErrUnknownSurface, h)
	}
	if _, ok := p.pages[pg]; !ok || !pg.live {
		return nil, ErrUnknownSurface
	}
	return pg, nil
}

// CreateSurface allocates a transparent size x size page.
func (p *MemoryProvider) CreateSurface(size int) (atlas.SurfaceHandle, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	pg := &Page{img: image.NewRGBA(image.Rect(0, 0, size, size)), live: true}

	p.mu.Lock()
	p.pages[pg] = struct{}{}
	p.mu.Unlock()
	return pg, nil
}

// ResizeSurface grows h to newSize x newSize. Shrinking is rejected.
func (p *MemoryProvider) ResizeSurface(h atlas.SurfaceHandle, newSize int) (atlas.SurfaceHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pg, err := p.lookup(h)
	if err != nil {
		return nil, err
	}
	old := pg.img.Bounds()
	if newSize < old.Dx() || newSize < old.Dy() {
		return nil, fmt.Errorf("%w: cannot shrink %dx%d to %d", ErrInvalidSize, old.Dx(), old.Dy(), newSize)
	}
	if newSize == old.Dx() && newSize == old.Dy() {
		return pg, nil
	}

	grown := image.NewRGBA(image.Rect(0, 0, newSize, newSize))
	draw.Copy(grown, image.Point{}, pg.img, old, draw.Src, nil)
	pg.img = grown
	return pg, nil
}

// CopyPixels writes src into dst with its bounds origin at (x, y).
func (p *MemoryProvider) CopyPixels(src image.Image, dst atlas.SurfaceHandle, x, y int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pg, err := p.lookup(dst)
	if err != nil {
		return err
	}
	sb := src.Bounds()
	target := image.Rect(x, y, x+sb.Dx(), y+sb.Dy())
	if !target.In(pg.img.Bounds()) {
		return fmt.Errorf("%w: %v in %v", ErrOutOfBounds, target, pg.img.Bounds())
	}
	draw.Copy(pg.img, target.Min, src, sb, draw.Src, nil)
	return nil
}

// ClearRegion resets r of h to transparent black.
func (p *MemoryProvider) ClearRegion(h atlas.SurfaceHandle, r image.Rectangle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pg, err := p.lookup(h)
	if err != nil {
		return err
	}
	if !r.In(pg.img.Bounds()) {
		return fmt.Errorf("%w: %v in %v", ErrOutOfBounds, r, pg.img.Bounds())
	}
	draw.Draw(pg.img, r, image.Transparent, image.Point{}, draw.Src)
	return nil
}

// ReadPixels returns a copy of r with bounds starting at r.Min.
func (p *MemoryProvider) ReadPixels(h atlas.SurfaceHandle, r image.Rectangle) (image.Image, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	pg, err := p.lookup(h)
	if err != nil {
		return nil, err
	}
	if !r.In(pg.img.Bounds()) {
		return nil, fmt.Errorf("%w: %v in %v", ErrOutOfBounds, r, pg.img.Bounds())
	}
	out := image.NewRGBA(r)
	draw.Copy(out, r.Min, pg.img, r, draw.Src, nil)
	return out, nil
}

// DestroySurface releases h. Unknown handles are ignored.
func (p *MemoryProvider) DestroySurface(h atlas.SurfaceHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pg, err := p.lookup(h)
	if err != nil {
		return
	}
	pg.live = false
	pg.img = nil
	delete(p.pages, pg)
}

// Image returns a snapshot of the pixels behind h, or nil for unknown handles.
func (p *MemoryProvider) Image(h atlas.SurfaceHandle) *image.RGBA {
	p.mu.RLock()
	defer p.mu.RUnlock()

	pg, err := p.lookup(h)
	if err != nil {
		return nil
	}
	out := image.NewRGBA(pg.img.Bounds())
	copy(out.Pix, pg.img.Pix)
	return out
}

// Size returns the side length of h, or 0 for unknown handles.
func (p *MemoryProvider) Size(h atlas.SurfaceHandle) int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	pg, err := p.lookup(h)
	if err != nil {
		return 0
	}
	return pg.img.Bounds().Dx()
}

// Len returns the number of live surfaces.
func (p *MemoryProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.pages)
}

// pixels calls fn with the raw pixels of h under the read lock.
func (p *MemoryProvider) pixels(h atlas.SurfaceHandle, fn func(img *image.RGBA) error) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	pg, err := p.lookup(h)
	if err != nil {
		return err
	}
	return fn(pg.img)
}
