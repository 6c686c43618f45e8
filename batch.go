// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import (
	"errors"
	"fmt"
	"image"
	"slices"
)

// BatchItem is one image of an InsertBatch call.
type BatchItem struct {
	Image image.Image
	Name  string
}

// BatchResult reports the outcome of one BatchItem.
type BatchResult struct {
	Ref Ref
	Err error

	// Skipped is set for items that were not attempted because an earlier
	// item found the atlas full.
	Skipped bool
}

// InsertBatch inserts items largest first under a single lock acquisition
// and flushes each touched page once at the end. Results are returned in
// input order. A failing item does not affect the others, except that once
// an item hits ErrFull the remaining ones are skipped.
func (m *Manager) InsertBatch(items []BatchItem) []BatchResult {
	results := make([]BatchResult, len(items))
	if len(items) == 0 {
		return results
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return itemArea(items[b].Image) - itemArea(items[a].Image)
	})

	var q eventQueue
	touched := make(map[*page]struct{})
	full := false

	m.mu.Lock()
	for _, i := range order {
		if full {
			results[i] = BatchResult{Err: fmt.Errorf("%w: skipped", ErrFull), Skipped: true}
			continue
		}
		var opts []InsertOption
		if items[i].Name != "" {
			opts = append(opts, WithName(items[i].Name))
		}
		ref, p, err := m.insert(items[i].Image, opts, &q)
		results[i] = BatchResult{Ref: ref, Err: err}
		switch {
		case err == nil:
			touched[p] = struct{}{}
		case errors.Is(err, ErrFull):
			full = true
		}
	}
	for _, p := range m.pages {
		if _, ok := touched[p]; ok {
			m.flush(p)
		}
	}
	m.mu.Unlock()

	q.dispatch(m.observer)
	return results
}

func itemArea(img image.Image) int {
	if img == nil {
		return 0
	}
	b := img.Bounds()
	if b.Empty() {
		return 0
	}
	return b.Dx() * b.Dy()
}
