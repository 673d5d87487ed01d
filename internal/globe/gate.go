package globe

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Cursor is the pointer affordance shown over the surface.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorGrab
)

func (c Cursor) String() string {
	if c == CursorGrab {
		return "grab"
	}
	return "default"
}

// Hit is the nearest intersection of a ray with a globe shell.
type Hit struct {
	Mesh     *Mesh
	Distance float64
}

// Intersect casts a world ray against the planet, atmosphere and cloud
// shells with their current world transforms and returns the nearest hit.
func (g *Group) Intersect(origin, dir mgl64.Vec3) (Hit, bool) {
	var best Hit
	found := false
	for _, m := range []*Mesh{g.Planet, g.Atmosphere, g.Clouds} {
		if m == nil || m.disposed {
			continue
		}
		world := g.World(m.Node)
		center := world.Col(3).Vec3()
		radius := m.Radius * g.Scale * m.Scale
		d, ok := raySphere(origin, dir, center, radius)
		if !ok {
			continue
		}
		if !found || d < best.Distance {
			best = Hit{Mesh: m, Distance: d}
			found = true
		}
	}
	return best, found
}

// PointerOverGlobe reports whether the pointer ray hits any shell. Without
// a sample the pointer is treated as off the globe.
func (s *Scene) PointerOverGlobe(sample PointerSample, ok bool) bool {
	if !ok {
		return false
	}
	origin, dir := s.Camera.Ray(sample.X, sample.Y)
	_, hit := s.Group.Intersect(origin, dir)
	return hit
}

// raySphere returns the distance along a normalized ray to the first
// intersection with the sphere in front of the origin.
func raySphere(origin, dir, center mgl64.Vec3, radius float64) (float64, bool) {
	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		// origin inside the sphere
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}
