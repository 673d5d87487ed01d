// Package convert maps catalog rows to the core types the globe consumes.
package convert

import (
	"encoding/json"

	"github.com/meridianmaritime/globe/internal/model"
	"github.com/meridianmaritime/globe/pkg/core"
)

// LocationToCore converts a GORM Location to a core.Location.
// Latitude and Longitude are authoritative; Position is not read back.
func LocationToCore(l model.Location) core.Location {
	var tags []string
	if len(l.Tags) > 0 {
		_ = json.Unmarshal(l.Tags, &tags)
	}
	return core.Location{
		ID:        l.ID,
		Name:      l.Name,
		Country:   l.Country,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		Tags:      tags,
	}
}

// LocationsToCore converts rows in order.
func LocationsToCore(rows []model.Location) []core.Location {
	out := make([]core.Location, len(rows))
	for i, r := range rows {
		out[i] = LocationToCore(r)
	}
	return out
}

// LocationToAnchor converts a row to the anchor the globe faces.
func LocationToAnchor(l model.Location) core.Anchor {
	return core.Anchor{Name: l.Name, Latitude: l.Latitude, Longitude: l.Longitude}
}
