// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/gogpu/atlas/rectpack"
)

// Manager packs images into square pages.
//
// Manager is safe for concurrent use. Mutations take an exclusive lock,
// queries a shared one.
type Manager struct {
	mu       sync.RWMutex
	settings Settings
	provider SurfaceProvider
	observer Observer
	pages    []*page
	current  int
	entries  *entryTable
	version  uint64
	closed   bool

	// Statistics (atomic for lock-free reads)
	inserts  atomic.Uint64
	removals atomic.Uint64
	growths  atomic.Uint64
	repacks  atomic.Uint64
	failures atomic.Uint64
}

// New creates a manager with one empty page.
func New(settings Settings, opts ...Option) (*Manager, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	var o managerOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.provider == nil {
		o.provider = nopProvider{}
	}

	m := &Manager{
		settings: settings,
		provider: o.provider,
		observer: o.observer,
		entries:  newEntryTable(),
	}
	if _, err := m.addPage(); err != nil {
		return nil, err
	}
	return m, nil
}

// Settings returns the settings the manager was created with.
func (m *Manager) Settings() Settings {
	return m.settings
}

// request is a validated insertion.
type request struct {
	img  image.Image
	name string
	w, h int // padded size
}

// placement is where a request will go.
type placement struct {
	page int           // index into pages; len(pages) for a new page
	size int           // page size after any growth
	rect rectpack.Rect // padded rectangle
}

func (m *Manager) newRequest(img image.Image, opts []InsertOption) (request, error) {
	var o insertOptions
	for _, opt := range opts {
		opt(&o)
	}
	if img == nil {
		return request{}, ErrInvalidInput
	}
	b := img.Bounds()
	if b.Empty() {
		return request{}, fmt.Errorf("%w: empty bounds %v", ErrInvalidInput, b)
	}

	w, h := b.Dx(), b.Dy()
	if w > m.settings.MaxSize || h > m.settings.MaxSize {
		return request{}, fmt.Errorf("%w: %dx%d exceeds %d", ErrTooLarge, w, h, m.settings.MaxSize)
	}
	pad := 2 * m.settings.Padding
	if limit := m.settings.pageLimit(); w+pad > limit || h+pad > limit {
		return request{}, fmt.Errorf("%w: %dx%d with padding %d exceeds page size %d",
			ErrTooLarge, w, h, m.settings.Padding, limit)
	}
	return request{img: img, name: normalizeName(o.name), w: w + pad, h: h + pad}, nil
}

func (m *Manager) checkName(name string) error {
	if name == "" {
		return nil
	}
	if _, ok := m.entries.lookupName(name); ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	return nil
}

// place decides where a w x h padded block goes without mutating anything.
// Order: current page, the other pages, the current page grown, a new page.
func (m *Manager) place(w, h int) (placement, error) {
	n := len(m.pages)
	if n > 0 {
		cur := m.pages[m.current]
		if r, ok := cur.alloc.Fit(w, h); ok {
			return placement{page: cur.index, size: cur.size, rect: r}, nil
		}
		for _, p := range m.pages {
			if p == cur {
				continue
			}
			if r, ok := p.alloc.Fit(w, h); ok {
				return placement{page: p.index, size: p.size, rect: r}, nil
			}
		}
		if size, r, ok := m.fitGrowing(cur.alloc.Clone(), cur.size, w, h); ok {
			return placement{page: cur.index, size: size, rect: r}, nil
		}
	}

	if m.settings.pageBudget(n) {
		initial := m.settings.InitialSize
		a := rectpack.New(m.settings.Allocator, initial, initial)
		if size, r, ok := m.fitGrowing(a, initial, w, h); ok {
			return placement{page: n, size: size, rect: r}, nil
		}
	}

	maxPages := m.settings.MaxPageCount
	if maxPages == 0 {
		maxPages = 1
	}
	return placement{}, &FullError{Pages: n, MaxPages: maxPages}
}

// fitGrowing fits w x h into a, growing a step by step until it fits or
// reaches MaxSize. a is modified and must be a scratch allocator.
func (m *Manager) fitGrowing(a rectpack.Allocator, size, w, h int) (int, rectpack.Rect, bool) {
	for {
		if r, ok := a.Fit(w, h); ok {
			return size, r, true
		}
		next := m.settings.Growth.next(size, m.settings.MaxSize)
		if next == size {
			return 0, rectpack.Rect{}, false
		}
		a.Resize(next, next)
		size = next
	}
}

// commit applies a placement: page creation, growth, packing and the pixel
// copy. A failure leaves no partial entry behind, and a page created for the
// placement is dropped together with its queued notifications.
func (m *Manager) commit(req request, pl placement, q *eventQueue) (Ref, *page, error) {
	mark := len(*q)
	created := false
	if pl.page == len(m.pages) {
		if _, err := m.addPage(); err != nil {
			return Ref{}, nil, err
		}
		created = true
	}
	p := m.pages[pl.page]
	rollback := func() {
		if m.dropEmptyPage(p, created) {
			*q = (*q)[:mark]
		}
	}

	for p.size < pl.size {
		if err := m.grow(p, q); err != nil {
			rollback()
			return Ref{}, nil, err
		}
	}

	snap := p.alloc.Clone()
	r, ok := p.alloc.TryPack(req.w, req.h)
	if !ok {
		rollback()
		return Ref{}, nil, fmt.Errorf("%w: planned %v does not fit page %d", ErrInconsistent, pl.rect, p.index)
	}

	content := r.Inset(m.settings.Padding)
	if err := m.provider.CopyPixels(req.img, p.surface, content.X, content.Y); err != nil {
		// Free does not undo the splits TryPack made.
		p.alloc = snap
		rollback()
		m.failures.Add(1)
		return Ref{}, nil, fmt.Errorf("%w: copy to page %d: %w", ErrFailed, p.index, err)
	}

	s, id := m.entries.alloc()
	s.entry = Entry{
		ID:   id,
		Page: p.index,
		Rect: content,
		UV:   uvOf(content, p.size),
		Name: req.name,
	}
	m.entries.bindName(req.name, id)
	p.entries[id] = struct{}{}
	m.current = p.index
	m.version++
	m.inserts.Add(1)

	Logger().Debug("atlas: inserted", "id", id, "page", p.index, "rect", content)
	return Ref{m: m, id: id, gen: s.gen}, p, nil
}

// insert runs a full insertion under the write lock. The touched page is
// returned so the caller can flush it.
func (m *Manager) insert(img image.Image, opts []InsertOption, q *eventQueue) (Ref, *page, error) {
	if m.closed {
		return Ref{}, nil, ErrClosed
	}
	req, err := m.newRequest(img, opts)
	if err != nil {
		return Ref{}, nil, err
	}
	if err := m.checkName(req.name); err != nil {
		return Ref{}, nil, err
	}
	pl, err := m.place(req.w, req.h)
	if err != nil {
		Logger().Debug("atlas: no room", "w", req.w, "h", req.h, "pages", len(m.pages))
		return Ref{}, nil, err
	}
	return m.finishInsert(req, pl, q)
}

func (m *Manager) finishInsert(req request, pl placement, q *eventQueue) (Ref, *page, error) {
	ref, p, err := m.commit(req, pl, q)
	if err != nil {
		return Ref{}, nil, err
	}
	if m.settings.RepackOnInsert {
		if err := m.repack(p, q); err != nil {
			Logger().Warn("atlas: repack after insert failed", "page", p.index, "err", err)
		}
	}
	m.debugCheck(p)
	return ref, p, nil
}

// Insert places img and copies its pixels into the chosen page.
//
// Errors wrap ErrInvalidInput, ErrTooLarge, ErrFull or ErrFailed for the
// four insertion outcomes; ErrDuplicateName and ErrClosed otherwise.
func (m *Manager) Insert(img image.Image, opts ...InsertOption) (Ref, error) {
	var q eventQueue
	m.mu.Lock()
	ref, p, err := m.insert(img, opts, &q)
	if err == nil {
		m.flush(p)
	}
	m.mu.Unlock()

	q.dispatch(m.observer)
	return ref, err
}

// addPage creates an empty page of InitialSize.
func (m *Manager) addPage() (*page, error) {
	size := m.settings.InitialSize
	h, err := m.provider.CreateSurface(size)
	if err != nil {
		m.failures.Add(1)
		return nil, fmt.Errorf("%w: create page %d: %w", ErrFailed, len(m.pages), err)
	}
	p := newPage(len(m.pages), size, m.settings.Allocator, h)
	m.pages = append(m.pages, p)
	Logger().Debug("atlas: page created", "page", p.index, "size", size)
	return p, nil
}

// dropEmptyPage undoes addPage for a page created by a failed commit and
// reports whether it did.
func (m *Manager) dropEmptyPage(p *page, created bool) bool {
	if !created || len(p.entries) > 0 || p.index != len(m.pages)-1 {
		return false
	}
	m.provider.DestroySurface(p.surface)
	m.pages = m.pages[:p.index]
	return true
}

// grow performs one growth step on p.
func (m *Manager) grow(p *page, q *eventQueue) error {
	next := m.settings.Growth.next(p.size, m.settings.MaxSize)
	if next == p.size {
		return fmt.Errorf("%w: page %d cannot grow past %d", ErrInconsistent, p.index, p.size)
	}
	h, err := m.provider.ResizeSurface(p.surface, next)
	if err != nil {
		m.failures.Add(1)
		return fmt.Errorf("%w: resize page %d to %d: %w", ErrFailed, p.index, next, err)
	}
	p.surface = h
	p.alloc.Resize(next, next)
	p.size = next
	m.version++
	m.growths.Add(1)
	q.pageResized(p.index, next)

	for _, id := range p.ids() {
		s, _ := m.entries.get(id)
		s.entry.UV = uvOf(s.entry.Rect, next)
		s.entry.Version++
		q.entryUpdated(&s.entry)
	}
	Logger().Debug("atlas: page grown", "page", p.index, "size", next, "entries", len(p.entries))
	return nil
}

// flush hands pending writes of p to a Flusher provider.
func (m *Manager) flush(p *page) {
	f, ok := m.provider.(Flusher)
	if !ok {
		return
	}
	if err := f.Flush(p.surface); err != nil {
		Logger().Warn("atlas: flush failed", "page", p.index, "err", err)
	}
}

// Remove frees the entry's region and retires id.
func (m *Manager) Remove(id ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	s, ok := m.entries.get(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEntry, id)
	}

	p := m.pages[s.entry.Page]
	padded := s.entry.Rect.Outset(m.settings.Padding)
	freeErr := p.alloc.Free(padded)
	if freeErr != nil {
		Logger().Error("atlas: allocator rejected free", "id", id, "page", p.index, "rect", padded, "err", freeErr)
	}

	delete(p.entries, id)
	m.entries.retire(id)
	m.version++
	m.removals.Add(1)

	if m.settings.ClearOnRemove {
		if err := m.provider.ClearRegion(p.surface, padded.Image()); err != nil {
			Logger().Warn("atlas: clear failed", "page", p.index, "rect", padded, "err", err)
		}
		m.flush(p)
	}
	m.debugCheck(p)

	if freeErr != nil {
		return fmt.Errorf("%w: free %v on page %d: %w", ErrInconsistent, padded, p.index, freeErr)
	}
	return nil
}

// Close destroys every surface and retires every entry. Later mutations
// return ErrClosed. Close is idempotent.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	for _, p := range m.pages {
		m.provider.DestroySurface(p.surface)
	}
	m.entries.each(func(s *slot) {
		m.entries.retire(s.entry.ID)
	})
	m.pages = nil
	m.current = 0
	m.closed = true
	m.version++
	return nil
}
