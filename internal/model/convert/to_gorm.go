package convert

import (
	"encoding/json"
	"fmt"

	"github.com/meridianmaritime/globe/internal/geo"
	"github.com/meridianmaritime/globe/internal/model"
	"github.com/meridianmaritime/globe/pkg/core"
)

// LocationToGorm converts a core.Location to a GORM Location, deriving the
// web mercator position. Invalid coordinates wrap geo.ErrInvalidCoordinates.
func LocationToGorm(l core.Location, sortOrder int) (model.Location, error) {
	pos, err := geo.Coords3857From4326(l.Longitude, l.Latitude)
	if err != nil {
		return model.Location{}, fmt.Errorf("location %q: %w", l.Name, err)
	}

	tags := []string{}
	if l.Tags != nil {
		tags = l.Tags
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return model.Location{}, fmt.Errorf("location %q tags: %w", l.Name, err)
	}

	return model.Location{
		ID:        l.ID,
		Name:      l.Name,
		Country:   l.Country,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		Position:  model.WebMercator{Point: pos},
		Tags:      raw,
		SortOrder: sortOrder,
	}, nil
}
