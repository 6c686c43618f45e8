// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import (
	"errors"
	"fmt"
	"image"
	"slices"

	"github.com/gogpu/atlas/rectpack"
)

// Repack rebuilds the layout of one page to reclaim fragmented space.
// Entries keep their ids and may move; each moved entry is reported through
// EntryUpdated. The page size never changes.
//
// When the entries cannot all be placed again, or their pixels cannot be
// read back, the page is left untouched and the error wraps ErrRepackFailed.
func (m *Manager) Repack(index int) error {
	var q eventQueue
	m.mu.Lock()
	err := m.repackIndex(index, &q)
	m.mu.Unlock()

	q.dispatch(m.observer)
	return err
}

// RepackAll repacks every page. Pages that fail are left untouched and
// their errors are joined.
func (m *Manager) RepackAll() error {
	var q eventQueue
	var errs []error
	m.mu.Lock()
	if m.closed {
		errs = append(errs, ErrClosed)
	} else {
		for i := range m.pages {
			if err := m.repackIndex(i, &q); err != nil {
				errs = append(errs, err)
			}
		}
	}
	m.mu.Unlock()

	q.dispatch(m.observer)
	return errors.Join(errs...)
}

func (m *Manager) repackIndex(index int, q *eventQueue) error {
	if m.closed {
		return ErrClosed
	}
	if index < 0 || index >= len(m.pages) {
		return fmt.Errorf("%w: %d", ErrPageOutOfRange, index)
	}
	p := m.pages[index]
	if err := m.repack(p, q); err != nil {
		return err
	}
	m.flush(p)
	m.debugCheck(p)
	return nil
}

// moved is one entry of a repack plan.
type moved struct {
	slot   *slot
	padded rectpack.Rect
	pixels image.Image
}

// repack plans the new layout on a fresh allocator and applies it only
// once every entry has a place and a pixel snapshot.
func (m *Manager) repack(p *page, q *eventQueue) error {
	plan := make([]moved, 0, len(p.entries))
	for _, id := range p.ids() {
		s, _ := m.entries.get(id)
		plan = append(plan, moved{slot: s})
	}
	// Largest first, ids break ties for a deterministic layout.
	slices.SortStableFunc(plan, func(a, b moved) int {
		return b.slot.entry.Rect.Area() - a.slot.entry.Rect.Area()
	})

	fresh := rectpack.New(p.alloc.Kind(), p.size, p.size)
	pad := m.settings.Padding
	for i := range plan {
		r := plan[i].slot.entry.Rect.Outset(pad)
		placed, ok := fresh.TryPack(r.Width, r.Height)
		if !ok {
			return fmt.Errorf("%w: page %d: entry %d (%dx%d) does not fit",
				ErrRepackFailed, p.index, plan[i].slot.entry.ID, r.Width, r.Height)
		}
		plan[i].padded = placed
	}

	for i := range plan {
		e := &plan[i].slot.entry
		img, err := m.provider.ReadPixels(p.surface, e.Rect.Image())
		if err != nil {
			m.failures.Add(1)
			return fmt.Errorf("%w: page %d: read entry %d: %w", ErrRepackFailed, p.index, e.ID, err)
		}
		plan[i].pixels = img
	}

	full := image.Rect(0, 0, p.size, p.size)
	if err := m.provider.ClearRegion(p.surface, full); err != nil {
		m.failures.Add(1)
		return fmt.Errorf("%w: page %d: clear: %w", ErrRepackFailed, p.index, err)
	}
	p.alloc = fresh

	var copyErr error
	for _, mv := range plan {
		e := &mv.slot.entry
		content := mv.padded.Inset(pad)
		if err := m.provider.CopyPixels(mv.pixels, p.surface, content.X, content.Y); err != nil && copyErr == nil {
			copyErr = fmt.Errorf("%w: page %d: restore entry %d: %w", ErrFailed, p.index, e.ID, err)
		}
		changed := content != e.Rect
		e.Rect = content
		e.UV = uvOf(content, p.size)
		e.Version++
		if changed {
			q.entryUpdated(e)
		}
	}
	m.version++
	m.repacks.Add(1)
	Logger().Debug("atlas: page repacked", "page", p.index, "entries", len(plan), "fill", p.alloc.FillRatio())

	if copyErr != nil {
		m.failures.Add(1)
	}
	return copyErr
}
