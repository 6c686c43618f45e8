// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/gogpu/atlas/rectpack"
)

func TestManager_ConcurrentUse(t *testing.T) {
	s := DefaultSettings()
	s.InitialSize = 128
	s.MaxSize = 512
	s.Debug = true
	m := mustNew(t, s, WithSurfaceProvider(newFakeProvider()))

	const workers = 8
	var wg sync.WaitGroup
	live := make([][]Ref, workers)
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(w)))
			for i := 0; i < 60; i++ {
				switch {
				case len(live[w]) > 0 && rng.Intn(4) == 0:
					j := rng.Intn(len(live[w]))
					if err := m.Remove(live[w][j].ID()); err != nil {
						t.Errorf("Remove() error: %v", err)
						return
					}
					live[w] = append(live[w][:j], live[w][j+1:]...)
				case rng.Intn(5) == 0:
					st, err := m.Plan(solid(1+rng.Intn(20), 1+rng.Intn(20)))
					if err != nil {
						continue
					}
					if ref, err := st.Commit(); err == nil {
						live[w] = append(live[w], ref)
					}
				default:
					ref, err := m.Insert(solid(1+rng.Intn(30), 1+rng.Intn(30)))
					if err == nil {
						live[w] = append(live[w], ref)
					}
				}
			}
		}()
	}
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = m.PageInfos()
				_ = m.Stats()
				_ = m.Entries(0)
			}
		}()
	}
	wg.Wait()

	total := 0
	for _, refs := range live {
		total += len(refs)
		for _, r := range refs {
			if !r.Valid() {
				t.Errorf("entry %d lost", r.ID())
			}
		}
	}
	if m.Len() != total {
		t.Errorf("Len() = %d, want %d", m.Len(), total)
	}
	if o := m.Validate(); o != nil {
		t.Errorf("Validate() = %v", o)
	}
}

// TestManager_RandomOps drives every allocator through a seeded mix of
// inserts, removals, growth and repacks.
func TestManager_RandomOps(t *testing.T) {
	for _, k := range []rectpack.Kind{rectpack.MaxRects, rectpack.Skyline, rectpack.Guillotine, rectpack.Shelf} {
		s := DefaultSettings()
		s.InitialSize = 64
		s.MaxSize = 256
		s.Padding = 1
		s.MaxPageCount = 3
		s.Growth = Grow50Percent
		s.Allocator = k
		m := mustNew(t, s)

		rng := rand.New(rand.NewSource(int64(k) + 11))
		var live []Ref
		for step := 0; step < 400; step++ {
			switch {
			case step%100 == 99:
				_ = m.RepackAll()
			case len(live) > 0 && rng.Intn(3) == 0:
				i := rng.Intn(len(live))
				if err := m.Remove(live[i].ID()); err != nil {
					t.Fatalf("%v: Remove() error: %v", k, err)
				}
				live = append(live[:i], live[i+1:]...)
			default:
				ref, err := m.Insert(solid(1+rng.Intn(40), 1+rng.Intn(40)))
				if err == nil {
					live = append(live, ref)
				}
			}
		}

		if o := m.Validate(); o != nil {
			t.Fatalf("%v: Validate() = %v", k, o)
		}
		for _, r := range live {
			e, ok := r.Entry()
			if !ok {
				t.Fatalf("%v: entry %d lost", k, r.ID())
			}
			size := float32(m.PageSize(e.Page))
			if e.UV.U1 != float32(e.Rect.Right())/size || e.UV.V1 != float32(e.Rect.Bottom())/size {
				t.Errorf("%v: entry %d UV %v stale for %v on %v page", k, e.ID, e.UV, e.Rect, size)
			}
		}
		for i := 0; i < m.PageCount(); i++ {
			if fr := m.FillRatio(i); fr < 0 || fr > 1 {
				t.Errorf("%v: FillRatio(%d) = %f", k, i, fr)
			}
		}
	}
}
