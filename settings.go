// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import (
	"fmt"
	"strings"

	"github.com/gogpu/atlas/rectpack"
)

// Page size limits accepted by Validate.
const (
	MinPageSize = 1
	MaxPageSize = 16384
)

// GrowthStrategy selects how a page grows when it runs out of room.
type GrowthStrategy uint8

const (
	// GrowDouble doubles the page size on each step.
	GrowDouble GrowthStrategy = iota

	// Grow50Percent multiplies the page size by 1.5, rounding up.
	Grow50Percent

	// GrowNone keeps pages at InitialSize.
	GrowNone
)

var growthNames = [...]string{
	GrowDouble:    "double",
	Grow50Percent: "grow50",
	GrowNone:      "none",
}

// String returns the config name of the strategy.
func (g GrowthStrategy) String() string {
	if int(g) < len(growthNames) {
		return growthNames[g]
	}
	return fmt.Sprintf("GrowthStrategy(%d)", g)
}

// ParseGrowth parses a strategy name as produced by String.
func ParseGrowth(s string) (GrowthStrategy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range growthNames {
		if name == s {
			return GrowthStrategy(i), nil
		}
	}
	return 0, fmt.Errorf("atlas: unknown growth strategy %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (g GrowthStrategy) MarshalText() ([]byte, error) {
	if int(g) >= len(growthNames) {
		return nil, fmt.Errorf("atlas: invalid growth strategy %d", g)
	}
	return []byte(growthNames[g]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *GrowthStrategy) UnmarshalText(text []byte) error {
	v, err := ParseGrowth(string(text))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// next returns the size after one growth step, clamped to limit.
// It returns size unchanged when no growth is possible.
func (g GrowthStrategy) next(size, limit int) int {
	var n int
	switch g {
	case GrowDouble:
		n = size * 2
	case Grow50Percent:
		n = (size*3 + 1) / 2
	default:
		return size
	}
	if n > limit {
		n = limit
	}
	if n < size {
		return size
	}
	return n
}

// Settings configures a Manager. Settings are copied by New and never
// change afterwards.
type Settings struct {
	// InitialSize is the side length of a newly created page.
	// Default: 512
	InitialSize int

	// MaxSize is the largest side length a page may grow to.
	// Default: 4096
	MaxSize int

	// Padding is the empty border reserved around every entry, in pixels.
	// Default: 1
	Padding int

	// MaxPageCount limits the number of pages: -1 for unlimited,
	// 0 for a single page, N for at most N pages.
	// Default: -1
	MaxPageCount int

	// Growth selects how a full page grows.
	// Default: GrowDouble
	Growth GrowthStrategy

	// Allocator selects the packing strategy of every page.
	// Default: rectpack.MaxRects
	Allocator rectpack.Kind

	// RepackOnInsert repacks the target page after each successful insert.
	RepackOnInsert bool

	// ClearOnRemove asks the surface provider to clear the region of a
	// removed entry.
	ClearOnRemove bool

	// Debug validates that no entries overlap after every mutation and
	// logs any violation at Error level.
	Debug bool
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	return Settings{
		InitialSize:  512,
		MaxSize:      4096,
		Padding:      1,
		MaxPageCount: -1,
		Growth:       GrowDouble,
		Allocator:    rectpack.MaxRects,
	}
}

// Validate checks if the settings are valid.
func (s *Settings) Validate() error {
	if s.InitialSize < MinPageSize {
		return &SettingsError{Field: "InitialSize", Reason: "must be at least 1"}
	}
	if s.MaxSize > MaxPageSize {
		return &SettingsError{Field: "MaxSize", Reason: fmt.Sprintf("must be at most %d", MaxPageSize)}
	}
	if s.MaxSize < s.InitialSize {
		return &SettingsError{Field: "MaxSize", Reason: "must be at least InitialSize"}
	}
	if s.Padding < 0 {
		return &SettingsError{Field: "Padding", Reason: "must be non-negative"}
	}
	if 2*s.Padding >= s.MaxSize {
		return &SettingsError{Field: "Padding", Reason: "must leave room for content within MaxSize"}
	}
	if s.MaxPageCount < -1 {
		return &SettingsError{Field: "MaxPageCount", Reason: "must be -1, 0 or positive"}
	}
	if int(s.Growth) >= len(growthNames) {
		return &SettingsError{Field: "Growth", Reason: "unknown strategy"}
	}
	if _, err := s.Allocator.MarshalText(); err != nil {
		return &SettingsError{Field: "Allocator", Reason: "unknown allocator kind"}
	}
	return nil
}

// pageLimit returns the largest page side reachable under these settings.
func (s *Settings) pageLimit() int {
	if s.Growth == GrowNone {
		return s.InitialSize
	}
	return s.MaxSize
}

// pageBudget reports whether a manager with n pages may create another.
func (s *Settings) pageBudget(n int) bool {
	switch {
	case s.MaxPageCount < 0:
		return true
	case s.MaxPageCount == 0:
		return n < 1
	default:
		return n < s.MaxPageCount
	}
}

// SettingsError represents a settings validation error.
type SettingsError struct {
	Field  string
	Reason string
}

func (e *SettingsError) Error() string {
	return "atlas: invalid settings." + e.Field + ": " + e.Reason
}
