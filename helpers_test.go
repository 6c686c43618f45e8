// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"testing"

	"github.com/gogpu/atlas/rectpack"
)

var errInjected = errors.New("injected failure")

// fakeSurface is the handle type of fakeProvider.
type fakeSurface struct {
	img *image.RGBA
}

// fakeProvider keeps pages in memory and fails on demand.
type fakeProvider struct {
	mu sync.Mutex

	failCreate bool
	failResize bool
	failCopy   bool
	failClear  bool
	failRead   bool

	created   int
	destroyed int
	flushes   int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{}
}

func (p *fakeProvider) CreateSurface(size int) (SurfaceHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failCreate {
		return nil, errInjected
	}
	p.created++
	return &fakeSurface{img: image.NewRGBA(image.Rect(0, 0, size, size))}, nil
}

func (p *fakeProvider) ResizeSurface(h SurfaceHandle, size int) (SurfaceHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failResize {
		return nil, errInjected
	}
	old := h.(*fakeSurface).img
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, old.Bounds(), old, image.Point{}, draw.Src)
	return &fakeSurface{img: img}, nil
}

func (p *fakeProvider) CopyPixels(src image.Image, dst SurfaceHandle, x, y int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failCopy {
		return errInjected
	}
	b := src.Bounds()
	draw.Draw(dst.(*fakeSurface).img, image.Rect(x, y, x+b.Dx(), y+b.Dy()), src, b.Min, draw.Src)
	return nil
}

func (p *fakeProvider) ClearRegion(h SurfaceHandle, r image.Rectangle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failClear {
		return errInjected
	}
	draw.Draw(h.(*fakeSurface).img, r, image.Transparent, image.Point{}, draw.Src)
	return nil
}

func (p *fakeProvider) ReadPixels(h SurfaceHandle, r image.Rectangle) (image.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failRead {
		return nil, errInjected
	}
	out := image.NewRGBA(r)
	draw.Draw(out, r, h.(*fakeSurface).img, r.Min, draw.Src)
	return out, nil
}

func (p *fakeProvider) DestroySurface(SurfaceHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.destroyed++
}

func (p *fakeProvider) Flush(SurfaceHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.flushes++
	return nil
}

func (p *fakeProvider) set(fn func(p *fakeProvider)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p)
}

// pixel returns the color at (x, y) of a page surface.
func pixel(h SurfaceHandle, x, y int) color.RGBA {
	return h.(*fakeSurface).img.RGBAAt(x, y)
}

// recorder is an Observer that keeps every notification.
type recorder struct {
	mu      sync.Mutex
	resized [][2]int
	updated []updateEvent
}

type updateEvent struct {
	id      ID
	rect    rectpack.Rect
	uv      UV
	version uint64
}

func (r *recorder) PageResized(page, size int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resized = append(r.resized, [2]int{page, size})
}

func (r *recorder) EntryUpdated(id ID, rect rectpack.Rect, uv UV, version uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = append(r.updated, updateEvent{id, rect, uv, version})
}

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

// solid returns an opaque white w x h image.
func solid(w, h int) *image.RGBA {
	return filled(w, h, color.RGBA{R: 255, G: 255, B: 255, A: 255})
}

func filled(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// testSettings returns a single square page that never grows, without padding.
func testSettings(size int) Settings {
	s := DefaultSettings()
	s.InitialSize = size
	s.MaxSize = size
	s.Padding = 0
	s.Growth = GrowNone
	s.MaxPageCount = 0
	return s
}

func mustNew(t testing.TB, s Settings, opts ...Option) *Manager {
	t.Helper()
	m, err := New(s, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return m
}
