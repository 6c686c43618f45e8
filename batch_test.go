// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import (
	"errors"
	"testing"

	"github.com/gogpu/atlas/rectpack"
)

func TestInsertBatch_LargestFirst(t *testing.T) {
	fp := newFakeProvider()
	m := mustNew(t, testSettings(64), WithSurfaceProvider(fp))

	results := m.InsertBatch([]BatchItem{
		{Image: solid(10, 10), Name: "small"},
		{Image: solid(30, 30), Name: "big"},
		{Image: solid(20, 20), Name: "mid"},
	})
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	for i, r := range results {
		if r.Err != nil || r.Skipped {
			t.Fatalf("results[%d] = %+v", i, r)
		}
	}
	if got := results[1].Ref.Rect(); got != rectpack.NewRect(0, 0, 30, 30) {
		t.Errorf("big placed at %v, want origin", got)
	}
	if results[1].Ref.ID() != 1 || results[2].Ref.ID() != 2 || results[0].Ref.ID() != 3 {
		t.Errorf("ids = %d %d %d, want insertion by descending area",
			results[0].Ref.ID(), results[1].Ref.ID(), results[2].Ref.ID())
	}
	if ref, ok := m.LookupName("mid"); !ok || ref != results[2].Ref {
		t.Error("LookupName(mid) does not match the batch result")
	}
	if fp.flushes != 1 {
		t.Errorf("flushes = %d, want 1 deferred flush", fp.flushes)
	}
	if o := m.Validate(); o != nil {
		t.Errorf("Validate() = %v", o)
	}
}

func TestInsertBatch_IndependentFailures(t *testing.T) {
	m := mustNew(t, testSettings(64))
	results := m.InsertBatch([]BatchItem{
		{Image: nil},
		{Image: solid(8, 8)},
		{Image: solid(300, 300)},
		{Image: solid(8, 8), Name: "x"},
		{Image: solid(8, 8), Name: "x"},
	})
	if !errors.Is(results[0].Err, ErrInvalidInput) {
		t.Errorf("results[0].Err = %v, want ErrInvalidInput", results[0].Err)
	}
	if results[1].Err != nil {
		t.Errorf("results[1].Err = %v", results[1].Err)
	}
	if !errors.Is(results[2].Err, ErrTooLarge) {
		t.Errorf("results[2].Err = %v, want ErrTooLarge", results[2].Err)
	}
	if results[3].Err != nil || !errors.Is(results[4].Err, ErrDuplicateName) {
		t.Errorf("named results = %v, %v", results[3].Err, results[4].Err)
	}
	for i, r := range results {
		if r.Skipped {
			t.Errorf("results[%d] skipped", i)
		}
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestInsertBatch_SkipsAfterFull(t *testing.T) {
	m := mustNew(t, testSettings(64))
	results := m.InsertBatch([]BatchItem{
		{Image: solid(64, 64)},
		{Image: solid(64, 64)},
		{Image: solid(8, 8)},
		{Image: nil},
	})
	if results[0].Err != nil {
		t.Fatalf("results[0].Err = %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, ErrFull) || results[1].Skipped {
		t.Errorf("results[1] = %+v, want attempted ErrFull", results[1])
	}
	for _, i := range []int{2, 3} {
		if !results[i].Skipped || !errors.Is(results[i].Err, ErrFull) {
			t.Errorf("results[%d] = %+v, want skipped", i, results[i])
		}
	}
}

func TestInsertBatch_Empty(t *testing.T) {
	m := mustNew(t, DefaultSettings())
	if got := m.InsertBatch(nil); len(got) != 0 {
		t.Errorf("InsertBatch(nil) = %v", got)
	}
}
