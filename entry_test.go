// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import (
	"strings"
	"testing"

	"github.com/gogpu/atlas/rectpack"
)

func TestEntryTable_AllocRetire(t *testing.T) {
	tab := newEntryTable()
	_, a := tab.alloc()
	_, b := tab.alloc()
	_, c := tab.alloc()
	if a != 1 || b != 2 || c != 3 {
		t.Fatalf("ids = %d %d %d, want 1 2 3", a, b, c)
	}

	tab.retire(c)
	tab.retire(a)
	if tab.count != 1 {
		t.Errorf("count = %d, want 1", tab.count)
	}
	if _, ok := tab.get(a); ok {
		t.Error("retired id still live")
	}

	_, x := tab.alloc()
	_, y := tab.alloc()
	_, z := tab.alloc()
	if x != c || y != a || z != 4 {
		t.Errorf("reused ids = %d %d %d, want %d %d 4", x, y, z, c, a)
	}
}

func TestEntryTable_Generation(t *testing.T) {
	tab := newEntryTable()
	s, id := tab.alloc()
	gen := s.gen
	if _, ok := tab.resolve(id, gen); !ok {
		t.Fatal("fresh slot does not resolve")
	}
	tab.retire(id)
	s, again := tab.alloc()
	if again != id {
		t.Fatalf("id = %d, want %d", again, id)
	}
	if s.gen == gen {
		t.Error("generation unchanged after retire")
	}
	if _, ok := tab.resolve(id, gen); ok {
		t.Error("old generation resolves to the new occupant")
	}
}

func TestEntryTable_Names(t *testing.T) {
	tab := newEntryTable()
	s, id := tab.alloc()
	s.entry.Name = "icon"
	tab.bindName("icon", id)
	if got, ok := tab.lookupName("icon"); !ok || got != id {
		t.Errorf("lookupName() = %d, %v", got, ok)
	}
	tab.retire(id)
	if _, ok := tab.lookupName("icon"); ok {
		t.Error("name bound after retire")
	}
	tab.retire(id)
	if tab.count != 0 {
		t.Errorf("double retire changed count to %d", tab.count)
	}
	if _, ok := tab.get(0); ok {
		t.Error("id 0 resolved")
	}
}

func TestNormalizeName(t *testing.T) {
	if got := normalizeName("A\u030a"); got != "\u00c5" {
		t.Errorf("normalizeName() = %q, want NFC", got)
	}
	if normalizeName("") != "" {
		t.Error("empty name changed")
	}
}

func TestUVOf(t *testing.T) {
	got := uvOf(rectpack.NewRect(16, 32, 16, 32), 64)
	want := UV{U0: 0.25, V0: 0.5, U1: 0.5, V1: 1}
	if got != want {
		t.Errorf("uvOf() = %v, want %v", got, want)
	}
}

func TestObserverFuncs_NilFields(t *testing.T) {
	var f ObserverFuncs
	f.PageResized(0, 64)
	f.EntryUpdated(1, rectpack.Rect{}, UV{}, 1)

	var pages []int
	f.OnPageResized = func(page, _ int) { pages = append(pages, page) }
	q := eventQueue{}
	q.pageResized(2, 128)
	q.entryUpdated(&Entry{ID: 1})
	q.dispatch(f)
	q.dispatch(nil)
	if len(pages) != 1 || pages[0] != 2 {
		t.Errorf("pages = %v, want [2]", pages)
	}
}

func TestValidate_ReportsOverlap(t *testing.T) {
	buf := captureLogs(t)
	s := testSettings(64)
	s.Debug = true
	m := mustNew(t, s)
	a, _ := m.Insert(solid(16, 16))
	b, _ := m.Insert(solid(16, 16))
	if o := m.Validate(); o != nil {
		t.Fatalf("Validate() = %v on a healthy atlas", o)
	}

	// Corrupt b so it overlaps a.
	m.mu.Lock()
	sb, _ := m.entries.get(b.ID())
	sb.entry.Rect = rectpack.NewRect(8, 8, 16, 16)
	m.debugCheck(m.pages[0])
	m.mu.Unlock()

	got := m.Validate()
	if len(got) != 1 || got[0] != (Overlap{Page: 0, A: a.ID(), B: b.ID()}) {
		t.Errorf("Validate() = %v", got)
	}
	if !strings.Contains(buf.String(), "atlas: overlapping entries") {
		t.Errorf("debug check did not log: %s", buf.String())
	}
}
