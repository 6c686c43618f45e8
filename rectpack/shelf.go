// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rectpack

import "slices"

// ShelfAllocator implements shelf-based rectangle packing.
// Simple and fast, suitable for blocks of similar height.
//
// The area is organised in horizontal "shelves". A shelf's height is fixed
// by the first block placed on it. Blocks go left-to-right on the lowest
// shelf that can hold them; when none can, a new shelf is opened below the
// last one.
//
// Free only rolls back a shelf's cursor when the freed block is the last one
// on it. Gaps in the middle of a shelf stay unusable until a repack.
type ShelfAllocator struct {
	width    int     // Total width of the area
	height   int     // Total height of the area
	shelves  []shelf // Shelves, sorted by y
	usedArea int
}

// shelf represents a horizontal strip.
type shelf struct {
	y      int // Y position of shelf top
	height int // Height of the shelf
	used   int // Current X position (next free slot)
}

// NewShelf creates a Shelf allocator for the given dimensions.
func NewShelf(width, height int) *ShelfAllocator {
	a := &ShelfAllocator{
		shelves: make([]shelf, 0, 16), // Preallocate for typical use
	}
	a.Init(width, height)
	return a
}

// Init resets the allocator with new dimensions.
func (a *ShelfAllocator) Init(width, height int) {
	a.width = width
	a.height = height
	a.Clear()
}

// Clear drops every shelf, keeping capacity.
func (a *ShelfAllocator) Clear() {
	a.shelves = a.shelves[:0]
	a.usedArea = 0
}

// nextShelfY returns the top of the next shelf to open.
func (a *ShelfAllocator) nextShelfY() int {
	if len(a.shelves) == 0 {
		return 0
	}
	last := a.shelves[len(a.shelves)-1]
	return last.y + last.height
}

// find returns the index of the shelf to use, len(shelves) for a new shelf,
// or -1 when nothing fits.
//
// The algorithm:
// 1. Among shelves tall enough with enough room left, take the shortest one
// 2. On equal heights, the topmost shelf wins
// 3. Otherwise open a new shelf if there is vertical room
func (a *ShelfAllocator) find(width, height int) int {
	if width <= 0 || height <= 0 || width > a.width {
		return -1
	}
	best := -1
	for i := range a.shelves {
		s := &a.shelves[i]
		if s.height < height || a.width-s.used < width {
			continue
		}
		if best < 0 || s.height < a.shelves[best].height {
			best = i
		}
	}
	if best >= 0 {
		return best
	}
	if a.nextShelfY()+height > a.height {
		return -1
	}
	return len(a.shelves)
}

// Fit reports where a block would be placed.
func (a *ShelfAllocator) Fit(width, height int) (Rect, bool) {
	i := a.find(width, height)
	switch {
	case i < 0:
		return Rect{}, false
	case i == len(a.shelves):
		return NewRect(0, a.nextShelfY(), width, height), true
	default:
		s := a.shelves[i]
		return NewRect(s.used, s.y, width, height), true
	}
}

// TryPack places a block on a shelf, opening one if needed.
func (a *ShelfAllocator) TryPack(width, height int) (Rect, bool) {
	r, ok := a.Fit(width, height)
	if !ok {
		return Rect{}, false
	}
	i := a.find(width, height)
	if i == len(a.shelves) {
		a.shelves = append(a.shelves, shelf{y: r.Y, height: height})
	}
	a.shelves[i].used = r.Right()
	a.usedArea += r.Area()
	return r, true
}

// Free reclaims r only if it ends at its shelf's cursor. An emptied last
// shelf is removed so its rows can host a shelf of a different height.
func (a *ShelfAllocator) Free(r Rect) error {
	if !inBounds(r, a.width, a.height) {
		return ErrNotAllocated
	}
	i := slices.IndexFunc(a.shelves, func(s shelf) bool { return s.y == r.Y })
	if i < 0 {
		return ErrNotAllocated
	}
	s := &a.shelves[i]
	if r.Height > s.height || r.Right() > s.used {
		return ErrNotAllocated
	}

	a.usedArea -= r.Area()
	if a.usedArea < 0 {
		a.usedArea = 0
	}
	if r.Right() == s.used {
		s.used = r.X
	}
	for n := len(a.shelves); n > 0 && a.shelves[n-1].used == 0; n-- {
		a.shelves = a.shelves[:n-1]
	}
	return nil
}

// Resize grows the area. Existing shelves gain width; new shelves may
// open in the added height.
func (a *ShelfAllocator) Resize(width, height int) {
	if width < a.width || height < a.height {
		return
	}
	a.width, a.height = width, height
}

// FillRatio returns the fraction of the area in use (0.0 to 1.0).
func (a *ShelfAllocator) FillRatio() float64 {
	return fillRatio(a.usedArea, a.width, a.height)
}

// UsedArea returns the total area used by allocations.
func (a *ShelfAllocator) UsedArea() int {
	return a.usedArea
}

// Size returns the tracked dimensions.
func (a *ShelfAllocator) Size() (width, height int) {
	return a.width, a.height
}

// Kind returns Shelf.
func (a *ShelfAllocator) Kind() Kind {
	return Shelf
}

// ShelfCount returns the number of shelves currently in use.
func (a *ShelfAllocator) ShelfCount() int {
	return len(a.shelves)
}

// Clone returns a deep copy.
func (a *ShelfAllocator) Clone() Allocator {
	return &ShelfAllocator{
		width:    a.width,
		height:   a.height,
		shelves:  slices.Clone(a.shelves),
		usedArea: a.usedArea,
	}
}
