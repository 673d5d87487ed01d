// Package memory implements the catalog in process memory.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/meridianmaritime/globe/internal/geo"
	"github.com/meridianmaritime/globe/pkg/core"
)

// Backend stores locations in memory. Contents do not survive a restart.
type Backend struct {
	locations []core.Location
	anchor    string

	idCounter uint
	mu        sync.RWMutex
}

// New creates a new memory backend holding a copy of initial.
func New(initial []core.Location) *Backend {
	b := &Backend{}
	for _, l := range initial {
		b.idCounter++
		l.ID = b.idCounter
		l.Tags = slices.Clone(l.Tags)
		b.locations = append(b.locations, l)
	}
	return b
}

// Init is a no-op.
func (b *Backend) Init(context.Context) error { return nil }

// Close is a no-op.
func (b *Backend) Close() error { return nil }

// Locations returns a copy of the stored locations in insertion order.
func (b *Backend) Locations(ctx context.Context) ([]core.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.Location, len(b.locations))
	for i, l := range b.locations {
		l.Tags = slices.Clone(l.Tags)
		out[i] = l
	}
	return out, nil
}

// Anchor returns the anchor location or core.HomePort.
func (b *Backend) Anchor(ctx context.Context) (core.Anchor, error) {
	if err := ctx.Err(); err != nil {
		return core.Anchor{}, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if i := b.index(b.anchor); b.anchor != "" && i >= 0 {
		l := b.locations[i]
		return core.Anchor{Name: l.Name, Latitude: l.Latitude, Longitude: l.Longitude}, nil
	}
	return core.HomePort, nil
}

// AddLocation validates and appends l, assigning its ID.
func (b *Backend) AddLocation(ctx context.Context, l *core.Location) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := geo.ValidateLocation(*l); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.index(l.Name) >= 0 {
		return core.ErrDuplicateLocation
	}
	b.idCounter++
	l.ID = b.idCounter
	stored := *l
	stored.Tags = slices.Clone(l.Tags)
	b.locations = append(b.locations, stored)
	return nil
}

// RemoveLocation deletes the named location. Removing the anchor resets
// the anchor to the home port.
func (b *Backend) RemoveLocation(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.index(name)
	if i < 0 {
		return core.ErrLocationNotFound
	}
	b.locations = slices.Delete(b.locations, i, i+1)
	if b.anchor == name {
		b.anchor = ""
	}
	return nil
}

// SetAnchor marks the named location as the anchor.
func (b *Backend) SetAnchor(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.index(name) < 0 {
		return core.ErrLocationNotFound
	}
	b.anchor = name
	return nil
}

// index must be called with mu held.
func (b *Backend) index(name string) int {
	return slices.IndexFunc(b.locations, func(l core.Location) bool { return l.Name == name })
}
