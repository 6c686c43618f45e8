// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package atlas

// Option configures a Manager during creation.
//
// Example:
//
//	// Geometry only
//	m, err := atlas.New(atlas.DefaultSettings())
//
//	// Backed by CPU images, with change notifications
//	m, err := atlas.New(settings,
//	    atlas.WithSurfaceProvider(surface.NewMemoryProvider()),
//	    atlas.WithObserver(obs))
type Option func(*managerOptions)

// managerOptions holds optional configuration for Manager creation.
type managerOptions struct {
	provider SurfaceProvider
	observer Observer
}

// WithSurfaceProvider sets the provider that owns page surfaces.
// Without one the manager only tracks geometry.
func WithSurfaceProvider(p SurfaceProvider) Option {
	return func(o *managerOptions) {
		o.provider = p
	}
}

// WithObserver sets the receiver of change notifications.
func WithObserver(obs Observer) Option {
	return func(o *managerOptions) {
		o.observer = obs
	}
}

// InsertOption configures a single insertion.
type InsertOption func(*insertOptions)

type insertOptions struct {
	name string
}

// WithName attaches a lookup name to the entry. Names are compared after
// Unicode NFC normalization and must be unique among live entries.
func WithName(name string) InsertOption {
	return func(o *insertOptions) {
		o.name = name
	}
}
