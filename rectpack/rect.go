// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rectpack

import (
	"fmt"
	"image"
)

// Rect is an axis-aligned integer rectangle anchored at its top-left corner.
type Rect struct {
	// X is the left edge of the rectangle.
	X int
	// Y is the top edge of the rectangle.
	Y int
	// Width is the rectangle width.
	Width int
	// Height is the rectangle height.
	Height int
}

// NewRect returns the rectangle with origin (x, y) and the given size.
func NewRect(x, y, width, height int) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// IsValid returns true if the rectangle has positive dimensions.
func (r Rect) IsValid() bool {
	return r.Width > 0 && r.Height > 0
}

// Area returns Width*Height.
func (r Rect) Area() int {
	return r.Width * r.Height
}

// Right returns the exclusive right edge.
func (r Rect) Right() int {
	return r.X + r.Width
}

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.Height
}

// Contains returns true if the point (x, y) is inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// ContainsRect returns true if o lies entirely within r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Intersects returns true if r and o share any area.
// Rectangles that only touch along an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Inset shrinks the rectangle by n on every side.
func (r Rect) Inset(n int) Rect {
	return Rect{X: r.X + n, Y: r.Y + n, Width: r.Width - 2*n, Height: r.Height - 2*n}
}

// Outset grows the rectangle by n on every side.
func (r Rect) Outset(n int) Rect {
	return r.Inset(-n)
}

// Image converts the rectangle to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.Right(), r.Bottom())
}

// String returns a string representation of the rectangle.
func (r Rect) String() string {
	return fmt.Sprintf("Rect(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// inBounds reports whether r is a valid rectangle inside a width x height area.
func inBounds(r Rect, width, height int) bool {
	return r.IsValid() && r.X >= 0 && r.Y >= 0 && r.Right() <= width && r.Bottom() <= height
}

// pruneContained removes every rectangle that lies inside another one.
// Identical rectangles collapse to a single entry.
func pruneContained(rects []Rect) []Rect {
	for i := 0; i < len(rects); i++ {
		for j := i + 1; j < len(rects); {
			switch {
			case rects[i].ContainsRect(rects[j]):
				last := len(rects) - 1
				rects[j] = rects[last]
				rects = rects[:last]
			case rects[j].ContainsRect(rects[i]):
				last := len(rects) - 1
				rects[i] = rects[j]
				rects[j] = rects[last]
				rects = rects[:last]
				j = i + 1
			default:
				j++
			}
		}
	}
	return rects
}
