// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package rectpack provides online rectangle allocators for texture atlas pages.
//
// Four strategies share the [Allocator] contract:
//
//   - [MaxRects]: maximal free rectangles, best short side fit. Tightest
//     packing, reclaims freed space directly.
//   - [Skyline]: bottom-left skyline. Fast, suited to content that mostly grows.
//   - [Guillotine]: straight-cut free list with merging.
//   - [Shelf]: fixed-height rows. Fastest, most waste with mixed heights.
//
// Skyline and Shelf do not reopen holes left by freed blocks beneath other
// blocks; callers defragment those by repacking.
//
// # Usage
//
//	a := rectpack.New(rectpack.MaxRects, 1024, 1024)
//	r, ok := a.TryPack(64, 32)
//	if !ok {
//	    // grow the page or try another one
//	}
//	_ = a.Free(r)
//
// Allocators only compute rectangles; padding and pixels are the caller's
// business.
package rectpack
