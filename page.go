// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import (
	"slices"

	"github.com/gogpu/atlas/rectpack"
)

// page is one square surface with its allocator.
type page struct {
	index   int
	size    int
	alloc   rectpack.Allocator
	surface SurfaceHandle
	entries map[ID]struct{}
}

func newPage(index, size int, kind rectpack.Kind, h SurfaceHandle) *page {
	return &page{
		index:   index,
		size:    size,
		alloc:   rectpack.New(kind, size, size),
		surface: h,
		entries: make(map[ID]struct{}),
	}
}

// ids returns the live entry ids on the page in ascending order.
func (p *page) ids() []ID {
	ids := make([]ID, 0, len(p.entries))
	for id := range p.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// PageInfo contains information about a page.
type PageInfo struct {
	Index     int
	Size      int
	Entries   int
	FillRatio float64
	Allocator rectpack.Kind
}

func (p *page) info() PageInfo {
	return PageInfo{
		Index:     p.index,
		Size:      p.size,
		Entries:   len(p.entries),
		FillRatio: p.alloc.FillRatio(),
		Allocator: p.alloc.Kind(),
	}
}
