// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/atlas"
)

var (
	// ErrNilProvider is returned when a nil DeviceProvider is passed.
	ErrNilProvider = errors.New("surface: nil DeviceProvider")

	// ErrNilCreator is returned when a nil TextureCreator is passed.
	ErrNilCreator = errors.New("surface: nil TextureCreator")

	// ErrTextureCreationFailed is returned when texture creation fails.
	ErrTextureCreationFailed = errors.New("surface: texture creation failed")
)

// TextureFormat is the pixel format of page textures.
const TextureFormat = gputypes.TextureFormatRGBA8Unorm

// TextureUsage is the usage of page textures: sampled by shaders and
// refreshed by copies.
const TextureUsage = gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding

// TextureCreator creates GPU textures from RGBA pixel data.
// gogpu renderers implement it.
type TextureCreator interface {
	NewTextureFromRGBA(width, height int, data []byte) (any, error)
}

// textureDestroyer matches the gogpu.Texture.Destroy signature.
type textureDestroyer interface {
	Destroy()
}

// TextureInfo describes the texture backing a page.
type TextureInfo struct {
	Size   gputypes.Extent3D
	Format gputypes.TextureFormat
	Usage  gputypes.TextureUsage
}

// pageTexture tracks the GPU side of one page.
type pageTexture struct {
	texture     any  // lazily created on Flush
	oldTexture  any  // previous texture awaiting deferred destruction
	dirty       bool // needs upload
	sizeChanged bool // texture must be recreated
}

// TextureProvider keeps pages in CPU memory and mirrors them into GPU
// textures when the manager flushes a page.
//
// After a resize, the previous texture stays alive until its replacement
// has been created, since in-flight command buffers may still sample it.
type TextureProvider struct {
	mem     *MemoryProvider
	device  gpucontext.DeviceProvider
	creator TextureCreator

	mu       sync.Mutex
	textures map[*Page]*pageTexture
}

var (
	_ atlas.SurfaceProvider = (*TextureProvider)(nil)
	_ atlas.Flusher         = (*TextureProvider)(nil)
)

// NewTextureProvider creates a provider uploading pages through creator.
func NewTextureProvider(device gpucontext.DeviceProvider, creator TextureCreator) (*TextureProvider, error) {
	if device == nil {
		return nil, ErrNilProvider
	}
	if creator == nil {
		return nil, ErrNilCreator
	}
	return &TextureProvider{
		mem:      NewMemoryProvider(),
		device:   device,
		creator:  creator,
		textures: make(map[*Page]*pageTexture),
	}, nil
}

// DeviceProvider returns the device provider passed to NewTextureProvider.
func (p *TextureProvider) DeviceProvider() gpucontext.DeviceProvider {
	return p.device
}

// state returns the texture state of h. Callers hold mu.
func (p *TextureProvider) state(h atlas.SurfaceHandle) (*pageTexture, error) {
	pg, ok := h.(*Page)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnknownSurface, h)
	}
	st, ok := p.textures[pg]
	if !ok {
		return nil, ErrUnknownSurface
	}
	return st, nil
}

// CreateSurface allocates a page. Its texture is created on first Flush.
func (p *TextureProvider) CreateSurface(size int) (atlas.SurfaceHandle, error) {
	h, err := p.mem.CreateSurface(size)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.textures[h.(*Page)] = &pageTexture{dirty: true}
	p.mu.Unlock()
	return h, nil
}

// ResizeSurface grows the page and schedules texture recreation.
func (p *TextureProvider) ResizeSurface(h atlas.SurfaceHandle, newSize int) (atlas.SurfaceHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	st, err := p.state(h)
	if err != nil {
		return nil, err
	}
	nh, err := p.mem.ResizeSurface(h, newSize)
	if err != nil {
		return nil, err
	}
	st.sizeChanged = true
	st.dirty = true
	return nh, nil
}

// CopyPixels writes src into the page and marks it dirty.
func (p *TextureProvider) CopyPixels(src image.Image, dst atlas.SurfaceHandle, x, y int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	st, err := p.state(dst)
	if err != nil {
		return err
	}
	if err := p.mem.CopyPixels(src, dst, x, y); err != nil {
		return err
	}
	st.dirty = true
	return nil
}

// ClearRegion clears r of the page and marks it dirty.
func (p *TextureProvider) ClearRegion(h atlas.SurfaceHandle, r image.Rectangle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	st, err := p.state(h)
	if err != nil {
		return err
	}
	if err := p.mem.ClearRegion(h, r); err != nil {
		return err
	}
	st.dirty = true
	return nil
}

// ReadPixels reads from the CPU copy of the page.
func (p *TextureProvider) ReadPixels(h atlas.SurfaceHandle, r image.Rectangle) (image.Image, error) {
	return p.mem.ReadPixels(h, r)
}

// Flush uploads pending writes of h, creating or recreating its texture
// when needed.
func (p *TextureProvider) Flush(h atlas.SurfaceHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	st, err := p.state(h)
	if err != nil {
		return err
	}

	if st.sizeChanged {
		if st.texture != nil {
			destroy(st.oldTexture)
			st.oldTexture = st.texture
			st.texture = nil
		}
		st.sizeChanged = false
	}

	if !st.dirty && st.texture != nil {
		return nil
	}

	return p.mem.pixels(h, func(img *image.RGBA) error {
		size := img.Bounds().Dx()
		data := make([]byte, len(img.Pix))
		copy(data, img.Pix)

		if st.texture == nil {
			tex, err := p.creator.NewTextureFromRGBA(size, size, data)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrTextureCreationFailed, err)
			}
			st.texture = tex
			destroy(st.oldTexture)
			st.oldTexture = nil
			st.dirty = false
			return nil
		}

		if updater, ok := st.texture.(gpucontext.TextureUpdater); ok {
			if err := updater.UpdateData(data); err != nil {
				return fmt.Errorf("surface: texture update failed: %w", err)
			}
		}
		st.dirty = false
		return nil
	})
}

// Texture returns the current texture of h without flushing, or nil.
func (p *TextureProvider) Texture(h atlas.SurfaceHandle) any {
	p.mu.Lock()
	defer p.mu.Unlock()

	st, err := p.state(h)
	if err != nil {
		return nil
	}
	return st.texture
}

// Info describes the texture of h. The zero value is returned for
// unknown handles.
func (p *TextureProvider) Info(h atlas.SurfaceHandle) TextureInfo {
	size := p.mem.Size(h)
	if size == 0 {
		return TextureInfo{}
	}
	return TextureInfo{
		Size: gputypes.Extent3D{
			Width:              uint32(size),
			Height:             uint32(size),
			DepthOrArrayLayers: 1,
		},
		Format: TextureFormat,
		Usage:  TextureUsage,
	}
}

// Image returns a snapshot of the CPU copy of h.
func (p *TextureProvider) Image(h atlas.SurfaceHandle) *image.RGBA {
	return p.mem.Image(h)
}

// DestroySurface releases the page and its textures.
func (p *TextureProvider) DestroySurface(h atlas.SurfaceHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()

	st, err := p.state(h)
	if err != nil {
		return
	}
	destroy(st.oldTexture)
	destroy(st.texture)
	delete(p.textures, h.(*Page))
	p.mem.DestroySurface(h)
}

// Close destroys every remaining page and texture. It is idempotent.
func (p *TextureProvider) Close() error {
	p.mu.Lock()
	pages := make([]*Page, 0, len(p.textures))
	for pg := range p.textures {
		pages = append(pages, pg)
	}
	p.mu.Unlock()

	for _, pg := range pages {
		p.DestroySurface(pg)
	}
	return nil
}

func destroy(tex any) {
	if d, ok := tex.(textureDestroyer); ok {
		d.Destroy()
	}
}
