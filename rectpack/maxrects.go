// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rectpack

import "math"

// MaxRectsAllocator keeps an unordered list of maximal free rectangles.
// Free rectangles may overlap each other but never overlap a placement.
//
// Placement uses the best short side fit heuristic: the free rectangle
// leaving the smallest leftover on its shorter side wins, ties go to the
// smallest leftover on the longer side.
type MaxRectsAllocator struct {
	width    int
	height   int
	free     []Rect
	scratch  []Rect
	usedArea int
}

// NewMaxRects creates a MaxRects allocator for the given dimensions.
func NewMaxRects(width, height int) *MaxRectsAllocator {
	a := &MaxRectsAllocator{}
	a.Init(width, height)
	return a
}

// Init resets the allocator to a single free rectangle.
func (a *MaxRectsAllocator) Init(width, height int) {
	a.width = width
	a.height = height
	a.Clear()
}

// Clear drops every placement.
func (a *MaxRectsAllocator) Clear() {
	a.free = a.free[:0]
	if a.width > 0 && a.height > 0 {
		a.free = append(a.free, NewRect(0, 0, a.width, a.height))
	}
	a.usedArea = 0
}

// Fit finds the best short side fit position for a width x height block.
func (a *MaxRectsAllocator) Fit(width, height int) (Rect, bool) {
	if width <= 0 || height <= 0 {
		return Rect{}, false
	}

	var best Rect
	bestShort := math.MaxInt
	bestLong := math.MaxInt
	found := false

	for _, f := range a.free {
		if f.Width < width || f.Height < height {
			continue
		}
		leftoverW := f.Width - width
		leftoverH := f.Height - height
		short := min(leftoverW, leftoverH)
		long := max(leftoverW, leftoverH)
		if short < bestShort || (short == bestShort && long < bestLong) {
			best = NewRect(f.X, f.Y, width, height)
			bestShort = short
			bestLong = long
			found = true
		}
	}
	return best, found
}

// TryPack places a block and splits the free rectangles it covers.
func (a *MaxRectsAllocator) TryPack(width, height int) (Rect, bool) {
	r, ok := a.Fit(width, height)
	if !ok {
		return Rect{}, false
	}
	a.place(r)
	return r, true
}

// place removes r from every free rectangle it intersects.
func (a *MaxRectsAllocator) place(r Rect) {
	a.scratch = a.scratch[:0]
	for i := 0; i < len(a.free); {
		f := a.free[i]
		if !f.Intersects(r) {
			i++
			continue
		}
		a.scratch = splitFree(a.scratch, f, r)
		last := len(a.free) - 1
		a.free[i] = a.free[last]
		a.free = a.free[:last]
	}
	a.free = append(a.free, a.scratch...)
	a.free = pruneContained(a.free)
	a.usedArea += r.Area()
}

// splitFree appends the parts of f lying outside used.
func splitFree(dst []Rect, f, used Rect) []Rect {
	// Left
	if used.X > f.X {
		dst = append(dst, NewRect(f.X, f.Y, used.X-f.X, f.Height))
	}
	// Right
	if used.Right() < f.Right() {
		dst = append(dst, NewRect(used.Right(), f.Y, f.Right()-used.Right(), f.Height))
	}
	// Top
	if used.Y > f.Y {
		dst = append(dst, NewRect(f.X, f.Y, f.Width, used.Y-f.Y))
	}
	// Bottom
	if used.Bottom() < f.Bottom() {
		dst = append(dst, NewRect(f.X, used.Bottom(), f.Width, f.Bottom()-used.Bottom()))
	}
	return dst
}

// Free re-inserts r into the free list. Adjacent free rectangles are not
// merged; a repack is the way to defragment. Freeing the last used area
// resets the list to the whole area.
func (a *MaxRectsAllocator) Free(r Rect) error {
	if !inBounds(r, a.width, a.height) {
		return ErrNotAllocated
	}
	for _, f := range a.free {
		if f.Intersects(r) {
			return ErrNotAllocated
		}
	}
	a.free = append(a.free, r)
	a.free = pruneContained(a.free)
	a.usedArea -= r.Area()
	if a.usedArea <= 0 {
		a.Clear()
	}
	return nil
}

// Resize grows the area. Free rectangles touching the old right or bottom
// edge are extended into the new space, then the new strips are added.
func (a *MaxRectsAllocator) Resize(width, height int) {
	if width < a.width || height < a.height || (width == a.width && height == a.height) {
		return
	}
	oldW, oldH := a.width, a.height
	for i := range a.free {
		f := &a.free[i]
		if f.Right() == oldW {
			f.Width = width - f.X
		}
		if f.Bottom() == oldH {
			f.Height = height - f.Y
		}
	}
	if width > oldW {
		a.free = append(a.free, NewRect(oldW, 0, width-oldW, height))
	}
	if height > oldH {
		a.free = append(a.free, NewRect(0, oldH, width, height-oldH))
	}
	a.width, a.height = width, height
	a.free = pruneContained(a.free)
}

// FillRatio returns the fraction of the area in use.
func (a *MaxRectsAllocator) FillRatio() float64 {
	return fillRatio(a.usedArea, a.width, a.height)
}

// UsedArea returns the total area of live placements.
func (a *MaxRectsAllocator) UsedArea() int {
	return a.usedArea
}

// Size returns the tracked dimensions.
func (a *MaxRectsAllocator) Size() (width, height int) {
	return a.width, a.height
}

// Kind returns MaxRects.
func (a *MaxRectsAllocator) Kind() Kind {
	return MaxRects
}

// FreeRects returns a copy of the free rectangle list.
func (a *MaxRectsAllocator) FreeRects() []Rect {
	return append([]Rect(nil), a.free...)
}

// Clone returns a deep copy.
func (a *MaxRectsAllocator) Clone() Allocator {
	return &MaxRectsAllocator{
		width:    a.width,
		height:   a.height,
		free:     append([]Rect(nil), a.free...),
		usedArea: a.usedArea,
	}
}
