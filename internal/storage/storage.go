// Package storage holds the location catalog the globe draws its markers
// and brand anchor from.
package storage

import (
	"context"

	"github.com/meridianmaritime/globe/pkg/core"
)

// Errors returned by backends.
var (
	ErrLocationNotFound  = core.ErrLocationNotFound
	ErrDuplicateLocation = core.ErrDuplicateLocation
	ErrInvalidLocation   = core.ErrInvalidLocation
)

// Backend is the interface all catalog implementations must satisfy
type Backend interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error

	// Locations returns every location in catalog order.
	Locations(ctx context.Context) ([]core.Location, error)
	// Anchor returns the anchor location, or core.HomePort when none is set.
	Anchor(ctx context.Context) (core.Anchor, error)

	// AddLocation stores l and assigns its ID.
	AddLocation(ctx context.Context, l *core.Location) error
	// RemoveLocation deletes the location with the given name.
	RemoveLocation(ctx context.Context, name string) error
	// SetAnchor marks the named location as the anchor.
	SetAnchor(ctx context.Context, name string) error
}
