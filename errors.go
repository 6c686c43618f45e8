// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

import (
	"errors"
	"fmt"
)

// Insertion outcomes. Callers are expected to branch on these with errors.Is.
var (
	// ErrInvalidInput is returned for a nil image or one with an empty bounds.
	ErrInvalidInput = errors.New("atlas: invalid input image")

	// ErrTooLarge is returned when the image could never fit a page of MaxSize.
	ErrTooLarge = errors.New("atlas: image exceeds maximum page size")

	// ErrFull is returned when no page can take the image and neither growth
	// nor a new page is possible.
	ErrFull = errors.New("atlas: atlas is full")

	// ErrFailed is returned when a surface provider call failed. The atlas
	// state is rolled back before it is returned.
	ErrFailed = errors.New("atlas: surface operation failed")
)

// Other manager errors.
var (
	// ErrUnknownEntry is returned for an id that is not live.
	ErrUnknownEntry = errors.New("atlas: unknown entry")

	// ErrDuplicateName is returned when a live entry already has the name.
	ErrDuplicateName = errors.New("atlas: duplicate entry name")

	// ErrRepackFailed is returned when a page could not be repacked.
	// The page is left unchanged.
	ErrRepackFailed = errors.New("atlas: repack failed")

	// ErrClosed is returned when operating on a closed manager.
	ErrClosed = errors.New("atlas: manager is closed")

	// ErrCancelled is returned when committing a cancelled staged insertion.
	ErrCancelled = errors.New("atlas: staged insertion was cancelled")

	// ErrCommitted is returned when committing a staged insertion twice.
	ErrCommitted = errors.New("atlas: staged insertion already committed")

	// ErrInconsistent reports an allocator invariant violation.
	// It indicates a bug rather than a packing outcome.
	ErrInconsistent = errors.New("atlas: internal consistency fault")

	// ErrPageOutOfRange is returned for a page index that does not exist.
	ErrPageOutOfRange = errors.New("atlas: page index out of range")
)

// FullError is returned when every page rejected an image.
// It matches ErrFull with errors.Is.
type FullError struct {
	// Pages is the number of pages at the time of the failure.
	Pages int

	// MaxPages is the configured page budget (-1 for unlimited).
	MaxPages int
}

func (e *FullError) Error() string {
	if e.MaxPages < 0 {
		return fmt.Sprintf("atlas: all %d pages are full", e.Pages)
	}
	return fmt.Sprintf("atlas: all %d pages are full (limit %d)", e.Pages, e.MaxPages)
}

// Unwrap returns ErrFull.
func (e *FullError) Unwrap() error {
	return ErrFull
}
