// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import "github.com/gogpu/atlas/rectpack"

// Overlap reports two entries on one page whose padded rectangles
// intersect, or an entry that leaves its page (B == 0).
type Overlap struct {
	Page int
	A, B ID
}

// Validate checks every page and returns the violations found.
// A healthy atlas returns nil.
func (m *Manager) Validate() []Overlap {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Overlap
	for _, p := range m.pages {
		out = append(out, m.overlaps(p)...)
	}
	return out
}

func (m *Manager) overlaps(p *page) []Overlap {
	ids := p.ids()
	rects := make([]rectpack.Rect, len(ids))
	bounds := rectpack.NewRect(0, 0, p.size, p.size)
	var out []Overlap
	for i, id := range ids {
		s, _ := m.entries.get(id)
		rects[i] = s.entry.Rect.Outset(m.settings.Padding)
		if !bounds.ContainsRect(rects[i]) {
			out = append(out, Overlap{Page: p.index, A: id})
		}
	}
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			if rects[i].Intersects(rects[j]) {
				out = append(out, Overlap{Page: p.index, A: ids[i], B: ids[j]})
			}
		}
	}
	return out
}

// debugCheck logs violations on p when Settings.Debug is set.
func (m *Manager) debugCheck(p *page) {
	if !m.settings.Debug {
		return
	}
	for _, o := range m.overlaps(p) {
		Logger().Error("atlas: overlapping entries", "page", o.Page, "a", o.A, "b", o.B)
	}
}
