// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rectpack

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotAllocated is returned by Free when the rectangle cannot have been
// produced by the allocator. It signals a caller bug, not a packing outcome.
var ErrNotAllocated = errors.New("rectpack: rectangle was not allocated")

// Allocator tracks free space in a rectangular area and places blocks in it.
//
// Every variant satisfies the same contract:
//   - TryPack never mutates state when it reports no fit.
//   - Fit returns exactly the rectangle TryPack would return in the same state.
//   - Rectangles returned by TryPack never overlap each other.
//   - Resize only grows the area; placed rectangles stay valid.
//
// Allocators are not safe for concurrent use.
type Allocator interface {
	// Init resets the allocator to one fully free width x height area.
	Init(width, height int)

	// TryPack places a width x height block and returns its rectangle,
	// or false if it does not fit.
	TryPack(width, height int) (Rect, bool)

	// Fit reports where TryPack would place the block without placing it.
	Fit(width, height int) (Rect, bool)

	// Free returns a previously packed rectangle to the allocator.
	// How much of it becomes reusable depends on the variant.
	Free(r Rect) error

	// Resize grows the tracked area. Shrinking is not supported.
	Resize(width, height int)

	// Clear drops every placement.
	Clear()

	// FillRatio returns occupied area divided by total area, in [0, 1].
	FillRatio() float64

	// UsedArea returns the total area of live placements.
	UsedArea() int

	// Size returns the tracked area dimensions.
	Size() (width, height int)

	// Kind identifies the variant.
	Kind() Kind

	// Clone returns an independent deep copy.
	Clone() Allocator
}

// Kind selects an Allocator variant.
type Kind uint8

const (
	// MaxRects keeps a list of maximal free rectangles (best short side fit).
	MaxRects Kind = iota

	// Skyline tracks the lowest free y per horizontal segment (bottom-left).
	Skyline

	// Guillotine splits free rectangles with straight cuts.
	Guillotine

	// Shelf stacks fixed-height rows.
	Shelf
)

var kindNames = [...]string{
	MaxRects:   "maxrects",
	Skyline:    "skyline",
	Guillotine: "guillotine",
	Shelf:      "shelf",
}

// String returns the lower-case name of the variant.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind parses a variant name case-insensitively.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("rectpack: unknown allocator kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if int(k) >= len(kindNames) {
		return nil, fmt.Errorf("rectpack: invalid allocator kind %d", k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// New creates an allocator of the given kind covering width x height.
// Unknown kinds fall back to MaxRects.
func New(kind Kind, width, height int) Allocator {
	switch kind {
	case Skyline:
		return NewSkyline(width, height)
	case Guillotine:
		return NewGuillotine(width, height)
	case Shelf:
		return NewShelf(width, height)
	default:
		return NewMaxRects(width, height)
	}
}

// fillRatio divides used by the total area, guarding against empty areas.
func fillRatio(used, width, height int) float64 {
	total := width * height
	if total <= 0 {
		return 0
	}
	r := float64(used) / float64(total)
	if r > 1 {
		return 1
	}
	return r
}
