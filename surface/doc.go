// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides pixel surface providers for atlas pages.
//
// A provider owns the pixels behind each atlas page while the manager owns
// the geometry. Two providers are included:
//
//   - [MemoryProvider]: CPU pages backed by *image.RGBA.
//   - [TextureProvider]: memory pages mirrored into GPU textures on Flush.
//
// # Usage
//
//	mem := surface.NewMemoryProvider()
//	m, err := atlas.New(atlas.DefaultSettings(), atlas.WithSurfaceProvider(mem))
//	if err != nil {
//	    return err
//	}
//	ref, err := m.Insert(glyph)
//	...
//	img := mem.Image(m.Surface(ref.Page()))
//
// For GPU use, wrap a device provider and a texture creator:
//
//	tp, err := surface.NewTextureProvider(app.GPUContextProvider(), renderer)
//	m, err := atlas.New(settings, atlas.WithSurfaceProvider(tp))
//
// The manager flushes touched pages after each operation, so tp.Texture
// always returns an up-to-date texture for a page.
//
// Providers are safe for concurrent use.
package surface
