// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

// Lookup returns a snapshot of the entry with the given id.
func (m *Manager) Lookup(id ID) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.entries.get(id)
	if !ok {
		return Entry{}, false
	}
	return s.entry, true
}

// Ref returns a live handle for id.
func (m *Manager) Ref(id ID) (Ref, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.entries.get(id)
	if !ok {
		return Ref{}, false
	}
	return Ref{m: m, id: id, gen: s.gen}, true
}

// LookupName returns a handle for the entry inserted with name.
func (m *Manager) LookupName(name string) (Ref, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.entries.lookupName(normalizeName(name))
	if !ok {
		return Ref{}, false
	}
	s, _ := m.entries.get(id)
	return Ref{m: m, id: id, gen: s.gen}, true
}

// Entries returns snapshots of the entries on a page in id order.
// It returns nil for an unknown page.
func (m *Manager) Entries(index int) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if index < 0 || index >= len(m.pages) {
		return nil
	}
	ids := m.pages[index].ids()
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		s, _ := m.entries.get(id)
		out = append(out, s.entry)
	}
	return out
}

// Len returns the number of live entries.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries.count
}

// PageCount returns the number of pages.
func (m *Manager) PageCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pages)
}

// PageSize returns the side length of a page, or 0 for an unknown page.
func (m *Manager) PageSize(index int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if index < 0 || index >= len(m.pages) {
		return 0
	}
	return m.pages[index].size
}

// FillRatio returns the occupied fraction of a page, or 0 for an unknown page.
func (m *Manager) FillRatio(index int) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if index < 0 || index >= len(m.pages) {
		return 0
	}
	return m.pages[index].alloc.FillRatio()
}

// Surface returns the provider handle of a page, or nil for an unknown page.
func (m *Manager) Surface(index int) SurfaceHandle {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if index < 0 || index >= len(m.pages) {
		return nil
	}
	return m.pages[index].surface
}

// Version returns a counter that changes on every mutation of the atlas.
func (m *Manager) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// PageInfos returns information about all pages.
func (m *Manager) PageInfos() []PageInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]PageInfo, len(m.pages))
	for i, p := range m.pages {
		infos[i] = p.info()
	}
	return infos
}

// Stats holds manager statistics.
type Stats struct {
	Pages   int
	Entries int

	Inserts  uint64
	Removals uint64
	Growths  uint64
	Repacks  uint64
	Failures uint64
}

// Stats returns manager statistics.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	pages, entries := len(m.pages), m.entries.count
	m.mu.RUnlock()

	return Stats{
		Pages:    pages,
		Entries:  entries,
		Inserts:  m.inserts.Load(),
		Removals: m.removals.Load(),
		Growths:  m.growths.Load(),
		Repacks:  m.repacks.Load(),
		Failures: m.failures.Load(),
	}
}
