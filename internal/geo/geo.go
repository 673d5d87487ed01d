package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/meridianmaritime/globe/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// GEO POINTS
// Locations are stored as EPSG:3857 points, the same convention used for any
// spatial column, and converted back to EPSG:4326 lat/lon when a globe is built.
// The globe itself works in a unit sphere frame, see Project.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Project converts a latitude/longitude in degrees to a point on a sphere of
// the given radius. The axes match an equirectangular earth texture wrapped
// on a sphere whose seam sits at longitude -180, so the sign of x is flipped
// compared to a textbook spherical conversion. Poles collapse onto the y axis.
func Project(lat, lon, radius float64) mgl64.Vec3 {
	phi := (90 - lat) * math.Pi / 180
	theta := (lon + 180) * math.Pi / 180

	return mgl64.Vec3{
		-radius * math.Sin(phi) * math.Cos(theta),
		radius * math.Cos(phi),
		radius * math.Sin(phi) * math.Sin(theta),
	}
}

// Unproject is the inverse of Project for a point on any sphere centred at the origin.
// Longitude is returned in [-180, 180).
func Unproject(p mgl64.Vec3) (lat, lon float64) {
	r := p.Len()
	if r == 0 {
		return 0, 0
	}
	phi := math.Acos(mgl64.Clamp(p[1]/r, -1, 1))
	theta := math.Atan2(p[2], -p[0])
	if theta < 0 {
		theta += 2 * math.Pi
	}

	lat = 90 - phi*180/math.Pi
	lon = theta*180/math.Pi - 180
	if lon >= 180 {
		lon -= 360
	}
	return lat, lon
}

// TextureUV returns the equirectangular texture coordinate of a point on the sphere.
// u grows eastward from the -180 seam, v grows southward from the north pole.
func TextureUV(p mgl64.Vec3) (u, v float64) {
	lat, lon := Unproject(p)
	u = (lon + 180) / 360
	v = (90 - lat) / 180
	return u, v
}

// FacingRotationY returns the rotation about the vertical axis that turns the
// given coordinate toward a camera looking down -z from +z.
func FacingRotationY(lat, lon float64) float64 {
	p := Project(lat, lon, 1)
	return -math.Atan2(p[0], p[2])
}

// ValidLatLon reports whether lat is in [-90, 90] and lon in [-180, 180].
func ValidLatLon(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ValidateLocation checks a location before it is stored in a catalog.
func ValidateLocation(l core.Location) error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("%w: name is required", core.ErrInvalidLocation)
	}
	if !ValidLatLon(l.Latitude, l.Longitude) {
		return fmt.Errorf("%w: %s: %w", core.ErrInvalidLocation, l.Name, ErrInvalidCoordinates)
	}
	return nil
}

// LocationFromString parses a "long,lat" string into a core.Location with the given name.
func LocationFromString(name, country, coords string) (core.Location, error) {
	coordsSplit := strings.Split(coords, ",")
	if len(coordsSplit) != 2 {
		return core.Location{}, ErrInvalidCoordinates
	}
	long, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[0]), 64)
	if err != nil {
		return core.Location{}, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[1]), 64)
	if err != nil {
		return core.Location{}, ErrInvalidCoordinates
	}
	if !ValidLatLon(lat, long) {
		return core.Location{}, ErrInvalidCoordinates
	}
	return core.Location{Name: name, Country: country, Latitude: lat, Longitude: long}, nil
}

// Coords3857From4326 creates a web mercator point from a longitude and latitude
func Coords3857From4326(
	longitude float64,
	latitude float64,
) (
	point geom.Point,
	err error,
) {
	if !ValidLatLon(latitude, longitude) {
		return geom.NewEmptyPoint(geom.DimXY), ErrInvalidCoordinates
	}
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ := f(longitude, latitude, 0)
	point, err = geom.NewPoint(
		geom.Coordinates{
			XY:   geom.XY{X: x, Y: y},
			Type: geom.DimXY,
		},
	)
	if err != nil {
		return geom.NewEmptyPoint(geom.DimXY), ErrInvalidCoordinates
	}
	return point, nil
}

// Coords4326From3857 converts a web mercator point back to longitude and latitude.
func Coords4326From3857(point geom.Point) (longitude, latitude float64, err error) {
	xy, ok := point.XY()
	if !ok {
		return 0, 0, ErrInvalidCoordinates
	}
	epsg := wgs84.EPSG()
	f := epsg.Transform(3857, 4326)
	longitude, latitude, _ = f(xy.X, xy.Y, 0)
	return longitude, latitude, nil
}
