// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package atlas packs many small images into a few square texture pages
// at runtime.
//
// # Overview
//
// A [Manager] owns a set of pages. Each page has a [rectpack.Allocator]
// that decides where rectangles go, and a surface owned by a
// [SurfaceProvider] that holds the pixels. The manager computes
// rectangles and tells the provider what to copy; it never touches pixels
// itself. Without a provider the manager tracks geometry only.
//
// # Quick Start
//
//	m, err := atlas.New(atlas.DefaultSettings(),
//	    atlas.WithSurfaceProvider(surface.NewMemoryProvider()))
//	if err != nil {
//	    return err
//	}
//	ref, err := m.Insert(img, atlas.WithName("icons/save"))
//	switch {
//	case errors.Is(err, atlas.ErrFull):
//	    // evict something, or start another atlas
//	case err != nil:
//	    return err
//	}
//	uv := ref.UV()
//
// # Placement
//
// An insertion tries the current page, then every other page, then grows
// the current page (see [GrowthStrategy]), then opens a new page if the
// page budget allows. Entries keep their [ID] for their whole life. Growth
// and [Manager.Repack] may move an entry or change its UV; a [Ref] always
// reads the current values and [Observer] is told about every change.
//
// # Concurrency
//
// All methods are safe for concurrent use. [Manager.Plan] computes a
// placement under a shared lock so several goroutines can plan at once;
// [Staged.Commit] applies it under the exclusive lock, planning again if
// the atlas changed in between.
//
// # Logging
//
// The package is silent by default. See [SetLogger].
package atlas
