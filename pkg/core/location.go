// pkg/core/location.go
package core

import "errors"

// Location is an office or port shown on the globe.
// Locations are immutable once a globe is mounted.
type Location struct {
	ID        uint
	Name      string
	Country   string
	Latitude  float64
	Longitude float64
	Tags      []string
}

// Anchor is the coordinate the globe faces at startup and the brand
// marker is attached to.
type Anchor struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// HomePort is the company's head office in Colombo.
var HomePort = Anchor{
	Name:      "Colombo",
	Latitude:  6.9271,
	Longitude: 79.8612,
}

// DefaultLocations are the compiled-in offices used when no catalog is configured.
var DefaultLocations = []Location{
	{Name: "Colombo", Country: "Sri Lanka", Latitude: 6.9271, Longitude: 79.8612},
	{Name: "Singapore", Country: "Singapore", Latitude: 1.3521, Longitude: 103.8198},
	{Name: "Dubai", Country: "United Arab Emirates", Latitude: 25.2048, Longitude: 55.2708},
	{Name: "Chennai", Country: "India", Latitude: 13.0827, Longitude: 80.2707},
	{Name: "Rotterdam", Country: "Netherlands", Latitude: 51.9244, Longitude: 4.4777},
	{Name: "Shanghai", Country: "China", Latitude: 31.2304, Longitude: 121.4737},
	{Name: "Hamburg", Country: "Germany", Latitude: 53.5511, Longitude: 9.9937},
	{Name: "Durban", Country: "South Africa", Latitude: -29.8587, Longitude: 31.0218},
}

// Catalog errors shared by every storage backend.
var (
	ErrLocationNotFound  = errors.New("location not found")
	ErrDuplicateLocation = errors.New("location already exists")
	ErrInvalidLocation   = errors.New("invalid location")
)
