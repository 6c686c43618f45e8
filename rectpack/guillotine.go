// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rectpack

import (
	"math"
	"slices"
)

// GuillotineAllocator keeps a flat list of disjoint free rectangles.
// Each placement cuts its free rectangle in two with one straight line
// along the shorter leftover axis. Neighbouring free rectangles that line up
// are merged back after every change.
type GuillotineAllocator struct {
	width    int
	height   int
	free     []Rect
	usedArea int
}

// NewGuillotine creates a Guillotine allocator for the given dimensions.
func NewGuillotine(width, height int) *GuillotineAllocator {
	a := &GuillotineAllocator{}
	a.Init(width, height)
	return a
}

// Init resets the allocator to a single free rectangle.
func (a *GuillotineAllocator) Init(width, height int) {
	a.width = width
	a.height = height
	a.Clear()
}

// Clear drops every placement.
func (a *GuillotineAllocator) Clear() {
	a.free = a.free[:0]
	if a.width > 0 && a.height > 0 {
		a.free = append(a.free, NewRect(0, 0, a.width, a.height))
	}
	a.usedArea = 0
}

// find picks the free rectangle with the least leftover area, ties broken by
// the shorter leftover side. A perfect fit wins immediately.
func (a *GuillotineAllocator) find(width, height int) int {
	if width <= 0 || height <= 0 {
		return -1
	}
	best := -1
	bestArea := math.MaxInt
	bestShort := math.MaxInt
	for i, f := range a.free {
		if f.Width < width || f.Height < height {
			continue
		}
		if f.Width == width && f.Height == height {
			return i
		}
		area := f.Area() - width*height
		short := min(f.Width-width, f.Height-height)
		if area < bestArea || (area == bestArea && short < bestShort) {
			best = i
			bestArea = area
			bestShort = short
		}
	}
	return best
}

// Fit reports where a block would be placed.
func (a *GuillotineAllocator) Fit(width, height int) (Rect, bool) {
	i := a.find(width, height)
	if i < 0 {
		return Rect{}, false
	}
	return NewRect(a.free[i].X, a.free[i].Y, width, height), true
}

// TryPack places a block and splits its free rectangle.
func (a *GuillotineAllocator) TryPack(width, height int) (Rect, bool) {
	i := a.find(width, height)
	if i < 0 {
		return Rect{}, false
	}
	f := a.free[i]
	placed := NewRect(f.X, f.Y, width, height)
	a.free = slices.Delete(a.free, i, i+1)
	a.split(f, placed)
	a.mergeFreeList()
	a.usedArea += placed.Area()
	return placed, true
}

// split cuts the L-shaped leftover of f around placed into two rectangles.
func (a *GuillotineAllocator) split(f, placed Rect) {
	leftoverW := f.Width - placed.Width
	leftoverH := f.Height - placed.Height

	// Cut along the shorter leftover axis so the larger leftover stays whole.
	horizontal := leftoverW <= leftoverH

	bottom := NewRect(f.X, f.Y+placed.Height, 0, leftoverH)
	right := NewRect(f.X+placed.Width, f.Y, leftoverW, 0)
	if horizontal {
		bottom.Width = f.Width
		right.Height = placed.Height
	} else {
		bottom.Width = placed.Width
		right.Height = f.Height
	}

	if bottom.IsValid() {
		a.free = append(a.free, bottom)
	}
	if right.IsValid() {
		a.free = append(a.free, right)
	}
}

// mergeFreeList joins pairs of free rectangles that share a full edge,
// repeating until no pair can be merged.
func (a *GuillotineAllocator) mergeFreeList() {
	for merged := true; merged; {
		merged = false
		for i := 0; i < len(a.free); i++ {
			for j := i + 1; j < len(a.free); j++ {
				if joined, ok := join(a.free[i], a.free[j]); ok {
					a.free[i] = joined
					a.free = slices.Delete(a.free, j, j+1)
					merged = true
					j--
				}
			}
		}
	}
}

// join returns the union of r and o when it is itself a rectangle.
func join(r, o Rect) (Rect, bool) {
	if r.X == o.X && r.Width == o.Width {
		if r.Bottom() == o.Y {
			return NewRect(r.X, r.Y, r.Width, r.Height+o.Height), true
		}
		if o.Bottom() == r.Y {
			return NewRect(r.X, o.Y, r.Width, r.Height+o.Height), true
		}
	}
	if r.Y == o.Y && r.Height == o.Height {
		if r.Right() == o.X {
			return NewRect(r.X, r.Y, r.Width+o.Width, r.Height), true
		}
		if o.Right() == r.X {
			return NewRect(o.X, r.Y, r.Width+o.Width, r.Height), true
		}
	}
	return Rect{}, false
}

// Free adds r back to the free list and merges it with its neighbours.
func (a *GuillotineAllocator) Free(r Rect) error {
	if !inBounds(r, a.width, a.height) {
		return ErrNotAllocated
	}
	for _, f := range a.free {
		if f.Intersects(r) {
			return ErrNotAllocated
		}
	}
	a.free = append(a.free, r)
	a.mergeFreeList()
	a.usedArea -= r.Area()
	if a.usedArea < 0 {
		a.usedArea = 0
	}
	return nil
}

// Resize grows the area by adding a right strip and a bottom strip.
func (a *GuillotineAllocator) Resize(width, height int) {
	if width < a.width || height < a.height {
		return
	}
	oldW, oldH := a.width, a.height
	if width > oldW && oldH > 0 {
		a.free = append(a.free, NewRect(oldW, 0, width-oldW, oldH))
	}
	if height > oldH {
		a.free = append(a.free, NewRect(0, oldH, width, height-oldH))
	}
	a.width, a.height = width, height
	a.mergeFreeList()
}

// FillRatio returns the fraction of the area in use.
func (a *GuillotineAllocator) FillRatio() float64 {
	return fillRatio(a.usedArea, a.width, a.height)
}

// UsedArea returns the total area of live placements.
func (a *GuillotineAllocator) UsedArea() int {
	return a.usedArea
}

// Size returns the tracked dimensions.
func (a *GuillotineAllocator) Size() (width, height int) {
	return a.width, a.height
}

// Kind returns Guillotine.
func (a *GuillotineAllocator) Kind() Kind {
	return Guillotine
}

// FreeRects returns a copy of the free rectangle list.
func (a *GuillotineAllocator) FreeRects() []Rect {
	return slices.Clone(a.free)
}

// Clone returns a deep copy.
func (a *GuillotineAllocator) Clone() Allocator {
	return &GuillotineAllocator{
		width:    a.width,
		height:   a.height,
		free:     slices.Clone(a.free),
		usedArea: a.usedArea,
	}
}
