// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rectpack

import (
	"math"
	"slices"
)

// segment is one step of the skyline: the span [x, x+width) is free from y down.
type segment struct {
	x, y, width int
}

// SkylineAllocator packs blocks bottom-left onto a skyline spanning the full width.
//
// It is faster than MaxRects but packs less tightly. Free only lowers the
// skyline when the freed block is still the topmost content over its span;
// holes under other blocks are never reopened, only a repack reclaims them.
type SkylineAllocator struct {
	width    int
	height   int
	skyline  []segment
	usedArea int
}

// NewSkyline creates a Skyline allocator for the given dimensions.
func NewSkyline(width, height int) *SkylineAllocator {
	a := &SkylineAllocator{}
	a.Init(width, height)
	return a
}

// Init resets the allocator to a flat skyline.
func (a *SkylineAllocator) Init(width, height int) {
	a.width = width
	a.height = height
	a.Clear()
}

// Clear drops every placement.
func (a *SkylineAllocator) Clear() {
	a.skyline = a.skyline[:0]
	if a.width > 0 {
		a.skyline = append(a.skyline, segment{x: 0, y: 0, width: a.width})
	}
	a.usedArea = 0
}

// testFit returns the y at which a width x height block rests when its left
// edge is aligned with segment index.
func (a *SkylineAllocator) testFit(index, width, height int) (int, bool) {
	x := a.skyline[index].x
	if x+width > a.width {
		return 0, false
	}
	y := 0
	left := width
	for i := index; left > 0; i++ {
		y = max(y, a.skyline[i].y)
		if y+height > a.height {
			return 0, false
		}
		left -= a.skyline[i].width
	}
	return y, true
}

// find returns the bottom-left position and the segment index it starts on.
func (a *SkylineAllocator) find(width, height int) (Rect, int, bool) {
	if width <= 0 || height <= 0 {
		return Rect{}, -1, false
	}
	bestTop := math.MaxInt
	bestWidth := math.MaxInt
	bestIndex := -1
	var best Rect
	for i := range a.skyline {
		y, ok := a.testFit(i, width, height)
		if !ok {
			continue
		}
		top := y + height
		if top < bestTop || (top == bestTop && a.skyline[i].width < bestWidth) {
			bestTop = top
			bestWidth = a.skyline[i].width
			bestIndex = i
			best = NewRect(a.skyline[i].x, y, width, height)
		}
	}
	return best, bestIndex, bestIndex >= 0
}

// Fit reports the bottom-left position for a block.
func (a *SkylineAllocator) Fit(width, height int) (Rect, bool) {
	r, _, ok := a.find(width, height)
	return r, ok
}

// TryPack places a block and raises the skyline under it.
func (a *SkylineAllocator) TryPack(width, height int) (Rect, bool) {
	r, index, ok := a.find(width, height)
	if !ok {
		return Rect{}, false
	}
	a.addLevel(index, r)
	a.usedArea += r.Area()
	return r, true
}

// addLevel inserts a segment for r at index and trims the segments it covers.
func (a *SkylineAllocator) addLevel(index int, r Rect) {
	a.skyline = slices.Insert(a.skyline, index, segment{x: r.X, y: r.Bottom(), width: r.Width})
	for i := index + 1; i < len(a.skyline); {
		prev := a.skyline[i-1]
		cur := &a.skyline[i]
		if cur.x >= prev.x+prev.width {
			break
		}
		shrink := prev.x + prev.width - cur.x
		cur.x += shrink
		cur.width -= shrink
		if cur.width > 0 {
			break
		}
		a.skyline = slices.Delete(a.skyline, i, i+1)
	}
	a.merge()
}

// merge joins neighbouring segments of equal height.
func (a *SkylineAllocator) merge() {
	for i := 0; i < len(a.skyline)-1; {
		if a.skyline[i].y == a.skyline[i+1].y {
			a.skyline[i].width += a.skyline[i+1].width
			a.skyline = slices.Delete(a.skyline, i+1, i+2)
			continue
		}
		i++
	}
}

// splitAt makes sure a segment boundary exists at x and returns the index of
// the segment starting there.
func (a *SkylineAllocator) splitAt(x int) int {
	for i, s := range a.skyline {
		if s.x == x {
			return i
		}
		if x > s.x && x < s.x+s.width {
			left := segment{x: s.x, y: s.y, width: x - s.x}
			right := segment{x: x, y: s.y, width: s.x + s.width - x}
			a.skyline[i] = left
			a.skyline = slices.Insert(a.skyline, i+1, right)
			return i + 1
		}
	}
	return len(a.skyline)
}

// Free lowers the skyline back to r.Y when r is still the topmost content
// across its whole span. Otherwise only the accounting changes.
func (a *SkylineAllocator) Free(r Rect) error {
	if !inBounds(r, a.width, a.height) {
		return ErrNotAllocated
	}

	top := r.Bottom()
	topmost := true
	for _, s := range a.skyline {
		if s.x+s.width <= r.X || s.x >= r.Right() {
			continue
		}
		if s.y < top {
			// A placed block never sits above the skyline.
			return ErrNotAllocated
		}
		if s.y != top {
			topmost = false
		}
	}

	a.usedArea -= r.Area()
	if a.usedArea < 0 {
		a.usedArea = 0
	}
	if !topmost {
		return nil
	}

	start := a.splitAt(r.X)
	end := a.splitAt(r.Right())
	for i := start; i < end; i++ {
		a.skyline[i].y = r.Y
	}
	a.merge()
	return nil
}

// Resize grows the area; new columns start with an empty skyline.
func (a *SkylineAllocator) Resize(width, height int) {
	if width < a.width || height < a.height {
		return
	}
	if width > a.width {
		a.skyline = append(a.skyline, segment{x: a.width, y: 0, width: width - a.width})
		a.merge()
	}
	a.width, a.height = width, height
}

// FillRatio returns the fraction of the area in use.
func (a *SkylineAllocator) FillRatio() float64 {
	return fillRatio(a.usedArea, a.width, a.height)
}

// UsedArea returns the total area of live placements.
func (a *SkylineAllocator) UsedArea() int {
	return a.usedArea
}

// Size returns the tracked dimensions.
func (a *SkylineAllocator) Size() (width, height int) {
	return a.width, a.height
}

// Kind returns Skyline.
func (a *SkylineAllocator) Kind() Kind {
	return Skyline
}

// SegmentCount returns the number of skyline segments.
func (a *SkylineAllocator) SegmentCount() int {
	return len(a.skyline)
}

// Clone returns a deep copy.
func (a *SkylineAllocator) Clone() Allocator {
	return &SkylineAllocator{
		width:    a.width,
		height:   a.height,
		skyline:  slices.Clone(a.skyline),
		usedArea: a.usedArea,
	}
}
