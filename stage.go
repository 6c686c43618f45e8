// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import (
	"context"
	"image"
	"sync/atomic"

	"github.com/gogpu/atlas/rectpack"
)

const (
	stagedPending int32 = iota
	stagedCommitted
	stagedCancelled
)

// Staged is an insertion that has been planned but not applied.
// Planning runs under the shared lock and mutates nothing; Commit applies
// the plan under the exclusive lock. If the atlas changed in between, the
// placement is computed again at commit time.
type Staged struct {
	m       *Manager
	req     request
	pl      placement
	version uint64
	state   atomic.Int32
}

// Plan validates img and chooses its placement without changing the atlas.
// The result must be committed or cancelled.
func (m *Manager) Plan(img image.Image, opts ...InsertOption) (*Staged, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	req, err := m.newRequest(img, opts)
	if err != nil {
		return nil, err
	}
	if err := m.checkName(req.name); err != nil {
		return nil, err
	}
	pl, err := m.place(req.w, req.h)
	if err != nil {
		return nil, err
	}
	return &Staged{m: m, req: req, pl: pl, version: m.version}, nil
}

// Page returns the planned page index. It equals the page count at
// planning time when a new page will be created.
func (s *Staged) Page() int {
	return s.pl.page
}

// Rect returns the planned content rectangle.
func (s *Staged) Rect() rectpack.Rect {
	return s.pl.rect.Inset(s.m.settings.Padding)
}

// PageSize returns the size the page will have after commit.
func (s *Staged) PageSize() int {
	return s.pl.size
}

// Commit applies the plan. It returns ErrCancelled after Cancel and
// ErrCommitted when called twice.
func (s *Staged) Commit() (Ref, error) {
	if !s.state.CompareAndSwap(stagedPending, stagedCommitted) {
		if s.state.Load() == stagedCancelled {
			return Ref{}, ErrCancelled
		}
		return Ref{}, ErrCommitted
	}

	m := s.m
	var q eventQueue
	m.mu.Lock()
	ref, err := m.commitStaged(s, &q)
	m.mu.Unlock()

	q.dispatch(m.observer)
	return ref, err
}

func (m *Manager) commitStaged(s *Staged, q *eventQueue) (Ref, error) {
	if m.closed {
		return Ref{}, ErrClosed
	}
	pl := s.pl
	if m.version != s.version {
		if err := m.checkName(s.req.name); err != nil {
			return Ref{}, err
		}
		var err error
		if pl, err = m.place(s.req.w, s.req.h); err != nil {
			return Ref{}, err
		}
		Logger().Debug("atlas: replanned stale insertion", "planned", s.version, "current", m.version)
	}
	ref, p, err := m.finishInsert(s.req, pl, q)
	if err != nil {
		return Ref{}, err
	}
	m.flush(p)
	return ref, nil
}

// Cancel discards the plan. It is a no-op after Commit.
func (s *Staged) Cancel() {
	s.state.CompareAndSwap(stagedPending, stagedCancelled)
}

// PlanResult is delivered by PlanAsync.
type PlanResult struct {
	Staged *Staged
	Err    error
}

// PlanAsync runs Plan on a new goroutine. The channel receives exactly one
// result and is then closed. If ctx is done before the result is ready,
// the plan is cancelled and the result carries ctx.Err().
func (m *Manager) PlanAsync(ctx context.Context, img image.Image, opts ...InsertOption) <-chan PlanResult {
	ch := make(chan PlanResult, 1)
	go func() {
		defer close(ch)
		if err := ctx.Err(); err != nil {
			ch <- PlanResult{Err: err}
			return
		}
		s, err := m.Plan(img, opts...)
		if cerr := ctx.Err(); cerr != nil {
			if s != nil {
				s.Cancel()
			}
			ch <- PlanResult{Err: cerr}
			return
		}
		ch <- PlanResult{Staged: s, Err: err}
	}()
	return ch
}
