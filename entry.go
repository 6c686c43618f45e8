// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import (
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/atlas/rectpack"
)

// ID identifies an entry within one Manager. Valid ids start at 1.
// An id is reused only after its entry has been removed.
type ID uint32

// UV holds normalized texture coordinates of an entry's content rectangle.
type UV struct {
	U0, V0 float32 // top-left
	U1, V1 float32 // bottom-right
}

// uvOf maps r into the unit square of a size x size page.
func uvOf(r rectpack.Rect, size int) UV {
	s := float32(size)
	return UV{
		U0: float32(r.X) / s,
		V0: float32(r.Y) / s,
		U1: float32(r.Right()) / s,
		V1: float32(r.Bottom()) / s,
	}
}

// Entry describes one image placed in the atlas.
// Values returned by the Manager are snapshots.
type Entry struct {
	ID   ID
	Page int

	// Rect is the content rectangle, excluding padding.
	Rect rectpack.Rect

	// UV is Rect normalized by the page size.
	UV UV

	// Name is the NFC-normalized name, or empty.
	Name string

	// Version increases whenever Rect, UV or Page changes.
	Version uint64
}

// slot is one arena cell. gen changes every time the cell is retired so
// that a Ref to an old occupant stops resolving.
type slot struct {
	entry Entry
	gen   uint32
	live  bool
}

// entryTable stores entries in an arena indexed by id. Retired ids are
// handed out again in retirement order.
type entryTable struct {
	slots []slot
	free  []ID
	names map[string]ID
	count int
}

func newEntryTable() *entryTable {
	return &entryTable{names: make(map[string]ID)}
}

// alloc reserves an id and returns its slot marked live.
func (t *entryTable) alloc() (*slot, ID) {
	var id ID
	if len(t.free) > 0 {
		id = t.free[0]
		t.free = t.free[1:]
	} else {
		t.slots = append(t.slots, slot{})
		id = ID(len(t.slots))
	}
	s := &t.slots[id-1]
	s.live = true
	s.entry = Entry{ID: id}
	t.count++
	return s, id
}

// get returns the live slot for id.
func (t *entryTable) get(id ID) (*slot, bool) {
	if id == 0 || int(id) > len(t.slots) {
		return nil, false
	}
	s := &t.slots[id-1]
	if !s.live {
		return nil, false
	}
	return s, true
}

// resolve returns the slot if it is live and still holds generation gen.
func (t *entryTable) resolve(id ID, gen uint32) (*slot, bool) {
	s, ok := t.get(id)
	if !ok || s.gen != gen {
		return nil, false
	}
	return s, true
}

// retire releases id, unbinding its name.
func (t *entryTable) retire(id ID) {
	s, ok := t.get(id)
	if !ok {
		return
	}
	if s.entry.Name != "" && t.names[s.entry.Name] == id {
		delete(t.names, s.entry.Name)
	}
	s.live = false
	s.gen++
	s.entry = Entry{}
	t.free = append(t.free, id)
	t.count--
}

// bindName associates name with id. The name must be normalized.
func (t *entryTable) bindName(name string, id ID) {
	if name != "" {
		t.names[name] = id
	}
}

// lookupName returns the live id bound to name.
func (t *entryTable) lookupName(name string) (ID, bool) {
	id, ok := t.names[name]
	return id, ok
}

// each calls fn for every live entry in id order.
func (t *entryTable) each(fn func(s *slot)) {
	for i := range t.slots {
		if t.slots[i].live {
			fn(&t.slots[i])
		}
	}
}

// normalizeName returns the canonical form used for name lookups.
func normalizeName(name string) string {
	if name == "" {
		return ""
	}
	return norm.NFC.String(name)
}

// Ref is a handle to an entry. Its accessors read the current state, so
// growth and repack stay visible through a Ref held by the caller. A Ref
// to a removed entry is invalid even after its id is reused.
//
// The zero Ref is invalid.
type Ref struct {
	m   *Manager
	id  ID
	gen uint32
}

// ID returns the entry id.
func (r Ref) ID() ID {
	return r.id
}

// Entry returns the current state of the entry.
func (r Ref) Entry() (Entry, bool) {
	if r.m == nil {
		return Entry{}, false
	}
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	s, ok := r.m.entries.resolve(r.id, r.gen)
	if !ok {
		return Entry{}, false
	}
	return s.entry, true
}

// Valid reports whether the entry is still live.
func (r Ref) Valid() bool {
	_, ok := r.Entry()
	return ok
}

// Page returns the page index, or -1 for an invalid Ref.
func (r Ref) Page() int {
	e, ok := r.Entry()
	if !ok {
		return -1
	}
	return e.Page
}

// Rect returns the content rectangle.
func (r Ref) Rect() rectpack.Rect {
	e, _ := r.Entry()
	return e.Rect
}

// UV returns the normalized texture coordinates.
func (r Ref) UV() UV {
	e, _ := r.Entry()
	return e.UV
}

// Version returns the entry version.
func (r Ref) Version() uint64 {
	e, _ := r.Entry()
	return e.Version
}
