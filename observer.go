// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import "github.com/gogpu/atlas/rectpack"

// Observer receives change notifications from a Manager.
//
// Notifications of one operation are delivered in order on the goroutine
// that performed it, after the manager lock is released, so observers may
// query the manager.
type Observer interface {
	// PageResized reports that page grew to size x size.
	PageResized(page, size int)

	// EntryUpdated reports a new rectangle or UV for a live entry.
	EntryUpdated(id ID, rect rectpack.Rect, uv UV, version uint64)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnPageResized  func(page, size int)
	OnEntryUpdated func(id ID, rect rectpack.Rect, uv UV, version uint64)
}

// PageResized calls f.OnPageResized if set.
func (f ObserverFuncs) PageResized(page, size int) {
	if f.OnPageResized != nil {
		f.OnPageResized(page, size)
	}
}

// EntryUpdated calls f.OnEntryUpdated if set.
func (f ObserverFuncs) EntryUpdated(id ID, rect rectpack.Rect, uv UV, version uint64) {
	if f.OnEntryUpdated != nil {
		f.OnEntryUpdated(id, rect, uv, version)
	}
}

type eventKind uint8

const (
	eventPageResized eventKind = iota
	eventEntryUpdated
)

// event is a notification queued while the lock is held.
type event struct {
	kind    eventKind
	page    int
	size    int
	id      ID
	rect    rectpack.Rect
	uv      UV
	version uint64
}

// eventQueue collects the notifications of one operation.
type eventQueue []event

func (q *eventQueue) pageResized(page, size int) {
	*q = append(*q, event{kind: eventPageResized, page: page, size: size})
}

func (q *eventQueue) entryUpdated(e *Entry) {
	*q = append(*q, event{
		kind:    eventEntryUpdated,
		id:      e.ID,
		rect:    e.Rect,
		uv:      e.UV,
		version: e.Version,
	})
}

// dispatch delivers the queued events. o may be nil.
func (q eventQueue) dispatch(o Observer) {
	if o == nil {
		return
	}
	for _, ev := range q {
		switch ev.kind {
		case eventPageResized:
			o.PageResized(ev.page, ev.size)
		case eventEntryUpdated:
			o.EntryUpdated(ev.id, ev.rect, ev.uv, ev.version)
		}
	}
}
