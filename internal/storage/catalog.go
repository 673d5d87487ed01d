package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/meridianmaritime/globe/internal/globe"
	"github.com/meridianmaritime/globe/pkg/core"
)

// Seed adds locs that are not already present and returns how many were
// added.
func Seed(ctx context.Context, b Backend, locs []core.Location) (int, error) {
	added := 0
	for _, l := range locs {
		l.ID = 0
		err := b.AddLocation(ctx, &l)
		switch {
		case errors.Is(err, ErrDuplicateLocation):
			continue
		case err != nil:
			return added, fmt.Errorf("seeding %s: %w", l.Name, err)
		}
		added++
	}
	return added, nil
}

// ApplyTo replaces the markers and brand anchor of o with the catalog's.
// An empty catalog leaves the markers untouched.
func ApplyTo(ctx context.Context, b Backend, o *globe.Options) error {
	locs, err := b.Locations(ctx)
	if err != nil {
		return fmt.Errorf("loading locations: %w", err)
	}
	anchor, err := b.Anchor(ctx)
	if err != nil {
		return fmt.Errorf("loading anchor: %w", err)
	}
	if len(locs) > 0 {
		o.Markers = locs
	}
	o.BrandAnchor = anchor
	return nil
}
