// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rectpack

import (
	"math/rand"
	"reflect"
	"testing"
)

var allKinds = []Kind{MaxRects, Skyline, Guillotine, Shelf}

func checkDisjoint(t *testing.T, kind Kind, placed []Rect, width, height int) {
	t.Helper()
	for i, a := range placed {
		if !inBounds(a, width, height) {
			t.Fatalf("%v: %v outside %dx%d", kind, a, width, height)
		}
		for _, b := range placed[i+1:] {
			if a.Intersects(b) {
				t.Fatalf("%v: %v overlaps %v", kind, a, b)
			}
		}
	}
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{MaxRects, "maxrects"},
		{Skyline, "skyline"},
		{Guillotine, "guillotine"},
		{Shelf, "shelf"},
		{Kind(9), "Kind(9)"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range allKinds {
		got, err := ParseKind(" " + k.String() + " ")
		if err != nil {
			t.Fatalf("ParseKind(%q) error: %v", k.String(), err)
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
	if got, err := ParseKind("MaxRects"); err != nil || got != MaxRects {
		t.Errorf("ParseKind(MaxRects) = %v, %v; want maxrects, nil", got, err)
	}
	if _, err := ParseKind("binary-tree"); err == nil {
		t.Error("ParseKind(binary-tree) should fail")
	}
}

func TestKind_TextRoundTrip(t *testing.T) {
	var k Kind
	if err := k.UnmarshalText([]byte("guillotine")); err != nil {
		t.Fatalf("UnmarshalText error: %v", err)
	}
	text, err := k.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText error: %v", err)
	}
	if string(text) != "guillotine" {
		t.Errorf("MarshalText() = %q, want guillotine", text)
	}
	if _, err := Kind(42).MarshalText(); err == nil {
		t.Error("MarshalText on invalid kind should fail")
	}
}

func TestNew_Kinds(t *testing.T) {
	for _, k := range allKinds {
		a := New(k, 64, 32)
		if a.Kind() != k {
			t.Errorf("New(%v).Kind() = %v", k, a.Kind())
		}
		w, h := a.Size()
		if w != 64 || h != 32 {
			t.Errorf("New(%v).Size() = %dx%d, want 64x32", k, w, h)
		}
		if a.FillRatio() != 0 {
			t.Errorf("New(%v).FillRatio() = %f, want 0", k, a.FillRatio())
		}
	}
}

func TestAllocator_ExactCapacity(t *testing.T) {
	for _, k := range allKinds {
		a := New(k, 128, 128)
		r, ok := a.TryPack(128, 128)
		if !ok {
			t.Fatalf("%v: full-size block did not fit", k)
		}
		if r != NewRect(0, 0, 128, 128) {
			t.Errorf("%v: TryPack(128,128) = %v, want origin", k, r)
		}
		if a.FillRatio() != 1 {
			t.Errorf("%v: FillRatio() = %f, want 1", k, a.FillRatio())
		}
		if _, ok := a.TryPack(1, 1); ok {
			t.Errorf("%v: packed into a full area", k)
		}
	}
}

func TestAllocator_RejectsOversizeAndEmpty(t *testing.T) {
	for _, k := range allKinds {
		a := New(k, 64, 64)
		for _, sz := range [][2]int{{65, 1}, {1, 65}, {0, 4}, {4, 0}, {-1, 3}} {
			if _, ok := a.TryPack(sz[0], sz[1]); ok {
				t.Errorf("%v: TryPack(%d,%d) should fail", k, sz[0], sz[1])
			}
		}
	}
}

func TestAllocator_FailedPackDoesNotMutate(t *testing.T) {
	for _, k := range allKinds {
		a := New(k, 100, 100)
		a.TryPack(60, 40)
		a.TryPack(30, 70)
		before := a.Clone()
		if _, ok := a.TryPack(90, 90); ok {
			t.Fatalf("%v: 90x90 should not fit", k)
		}
		if _, ok := a.Fit(90, 90); ok {
			t.Fatalf("%v: Fit(90,90) should not fit", k)
		}
		if !reflect.DeepEqual(before, a.Clone()) {
			t.Errorf("%v: failed TryPack mutated state", k)
		}
	}
}

func TestAllocator_FitMatchesTryPack(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, k := range allKinds {
		a := New(k, 256, 256)
		for i := 0; i < 200; i++ {
			w, h := 1+rng.Intn(40), 1+rng.Intn(40)
			fit, fitOK := a.Fit(w, h)
			got, ok := a.TryPack(w, h)
			if fit != got || fitOK != ok {
				t.Fatalf("%v: Fit(%d,%d) = %v,%v but TryPack = %v,%v", k, w, h, fit, fitOK, got, ok)
			}
		}
	}
}

func TestAllocator_CloneIsIndependent(t *testing.T) {
	for _, k := range allKinds {
		a := New(k, 64, 64)
		a.TryPack(10, 10)
		c := a.Clone()
		c.TryPack(20, 20)
		if a.UsedArea() != 100 {
			t.Errorf("%v: clone mutation leaked, UsedArea = %d", k, a.UsedArea())
		}
		if c.UsedArea() != 500 {
			t.Errorf("%v: clone UsedArea = %d, want 500", k, c.UsedArea())
		}
	}
}

// TestAllocator_RandomNoOverlap runs a seeded mix of packs and frees against
// every variant and checks placements stay disjoint and in bounds.
func TestAllocator_RandomNoOverlap(t *testing.T) {
	for _, k := range allKinds {
		rng := rand.New(rand.NewSource(int64(k) + 1))
		size := 200
		a := New(k, size, size)
		var placed []Rect

		for step := 0; step < 600; step++ {
			switch {
			case step == 300:
				size = 400
				a.Resize(size, size)
			case len(placed) > 0 && rng.Intn(3) == 0:
				i := rng.Intn(len(placed))
				before := a.FillRatio()
				if err := a.Free(placed[i]); err != nil {
					t.Fatalf("%v: Free(%v) error: %v", k, placed[i], err)
				}
				if a.FillRatio() > before {
					t.Fatalf("%v: FillRatio rose after Free", k)
				}
				placed = append(placed[:i], placed[i+1:]...)
			default:
				before := a.FillRatio()
				r, ok := a.TryPack(1+rng.Intn(48), 1+rng.Intn(48))
				if !ok {
					continue
				}
				if a.FillRatio() < before {
					t.Fatalf("%v: FillRatio fell after TryPack", k)
				}
				placed = append(placed, r)
			}
			if fr := a.FillRatio(); fr < 0 || fr > 1 {
				t.Fatalf("%v: FillRatio() = %f out of range", k, fr)
			}
		}
		checkDisjoint(t, k, placed, size, size)

		used := 0
		for _, r := range placed {
			used += r.Area()
		}
		if a.UsedArea() != used {
			t.Errorf("%v: UsedArea() = %d, want %d", k, a.UsedArea(), used)
		}
	}
}

func TestAllocator_ResizeKeepsPlacements(t *testing.T) {
	for _, k := range allKinds {
		a := New(k, 64, 64)
		var placed []Rect
		for {
			r, ok := a.TryPack(16, 16)
			if !ok {
				break
			}
			placed = append(placed, r)
		}
		if len(placed) != 16 {
			t.Fatalf("%v: packed %d 16x16 blocks into 64x64, want 16", k, len(placed))
		}

		a.Resize(128, 128)
		if w, h := a.Size(); w != 128 || h != 128 {
			t.Fatalf("%v: Size() after Resize = %dx%d", k, w, h)
		}
		for i := 0; i < 48; i++ {
			r, ok := a.TryPack(16, 16)
			if !ok {
				t.Fatalf("%v: block %d did not fit after growth", k, i)
			}
			placed = append(placed, r)
		}
		checkDisjoint(t, k, placed, 128, 128)
		if a.FillRatio() != 1 {
			t.Errorf("%v: FillRatio() = %f, want 1", k, a.FillRatio())
		}
	}
}

func TestAllocator_ClearResets(t *testing.T) {
	for _, k := range allKinds {
		a := New(k, 32, 32)
		a.TryPack(32, 32)
		a.Clear()
		if a.FillRatio() != 0 {
			t.Errorf("%v: FillRatio after Clear = %f", k, a.FillRatio())
		}
		if _, ok := a.TryPack(32, 32); !ok {
			t.Errorf("%v: full block did not fit after Clear", k)
		}
	}
}

func TestAllocator_FreeLastIsReusable(t *testing.T) {
	// Every variant reclaims the most recent block.
	for _, k := range allKinds {
		a := New(k, 100, 100)
		a.TryPack(30, 20)
		a.TryPack(25, 40)
		last, ok := a.TryPack(40, 35)
		if !ok {
			t.Fatalf("%v: setup pack failed", k)
		}
		if err := a.Free(last); err != nil {
			t.Fatalf("%v: Free error: %v", k, err)
		}
		if _, ok := a.TryPack(40, 35); !ok {
			t.Errorf("%v: freed space was not reusable", k)
		}
	}
}

func TestAllocator_FreeRejectsForeignRects(t *testing.T) {
	for _, k := range allKinds {
		a := New(k, 50, 50)
		if err := a.Free(NewRect(40, 40, 20, 20)); err != ErrNotAllocated {
			t.Errorf("%v: Free(out of bounds) = %v, want ErrNotAllocated", k, err)
		}
	}
	// Variants tracking free space detect double frees.
	for _, k := range []Kind{MaxRects, Guillotine} {
		a := New(k, 50, 50)
		r, _ := a.TryPack(10, 10)
		if err := a.Free(r); err != nil {
			t.Fatalf("%v: Free error: %v", k, err)
		}
		if err := a.Free(r); err != ErrNotAllocated {
			t.Errorf("%v: double Free = %v, want ErrNotAllocated", k, err)
		}
	}
}

func TestRect_Geometry(t *testing.T) {
	r := NewRect(10, 20, 30, 40)
	if r.Right() != 40 || r.Bottom() != 60 || r.Area() != 1200 {
		t.Errorf("edges = %d,%d area %d", r.Right(), r.Bottom(), r.Area())
	}
	if !r.Contains(10, 20) || r.Contains(40, 20) {
		t.Error("Contains boundary mismatch")
	}
	if r.Intersects(NewRect(40, 20, 5, 5)) {
		t.Error("edge-touching rects should not intersect")
	}
	if !r.Intersects(NewRect(39, 59, 5, 5)) {
		t.Error("corner overlap should intersect")
	}
	if got := r.Outset(2); got != NewRect(8, 18, 34, 44) {
		t.Errorf("Outset(2) = %v", got)
	}
	if got := r.Outset(2).Inset(2); got != r {
		t.Errorf("Outset/Inset = %v, want %v", got, r)
	}
	if got := r.Image(); got.Min.X != 10 || got.Max.Y != 60 {
		t.Errorf("Image() = %v", got)
	}
	if r.String() != "Rect(10,20 30x40)" {
		t.Errorf("String() = %q", r.String())
	}
}

func TestPruneContained(t *testing.T) {
	rects := []Rect{
		NewRect(0, 0, 10, 10),
		NewRect(2, 2, 3, 3),
		NewRect(0, 0, 10, 10),
		NewRect(5, 5, 10, 10),
		NewRect(-5, -5, 30, 30),
	}
	got := pruneContained(rects)
	if len(got) != 1 || got[0] != NewRect(-5, -5, 30, 30) {
		t.Errorf("pruneContained() = %v", got)
	}
}
