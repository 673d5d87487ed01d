package globe

import (
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/meridianmaritime/globe/internal/geo"
	"github.com/meridianmaritime/globe/internal/orbit"
	"github.com/meridianmaritime/globe/pkg/core"
)

// Shell and marker radii relative to the planet.
const (
	PlanetRadius     = 1.0
	CloudRadius      = 1.02
	AtmosphereRadius = 1.1
	MarkerRadius     = 1.01
	LabelRadius      = 1.08
	BrandRadius      = 1.16
	StarFieldRadius  = 60.0
)

var (
	oceanColor      = color.RGBA{R: 18, G: 52, B: 96, A: 255}
	cloudColor      = color.RGBA{R: 240, G: 244, B: 250, A: 255}
	atmosphereColor = color.RGBA{R: 90, G: 160, B: 255, A: 255}
	markerColor     = color.RGBA{R: 255, G: 176, B: 32, A: 255}
	labelColor      = color.RGBA{R: 235, G: 235, B: 235, A: 255}
	brandColor      = color.RGBA{R: 0, G: 120, B: 200, A: 255}
	plaqueColor     = color.RGBA{R: 250, G: 250, B: 250, A: 255}
)

// Camera is a perspective camera looking at Target.
type Camera struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3
	FovY     float64 // degrees
	Aspect   float64
	Near     float64
	Far      float64
}

// NewCamera returns the default 45° camera at distance on +z.
func NewCamera(distance, aspect float64) *Camera {
	if aspect <= 0 {
		aspect = 1
	}
	return &Camera{
		Position: mgl64.Vec3{0, 0, distance},
		Up:       mgl64.Vec3{0, 1, 0},
		FovY:     45,
		Aspect:   aspect,
		Near:     0.1,
		Far:      1000,
	}
}

// Projection returns the perspective matrix.
func (c *Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FovY), c.Aspect, c.Near, c.Far)
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.Target, c.Up)
}

// Ray returns the world-space ray through the normalized device point
// (x, y), both in [-1, 1] with y up.
func (c *Camera) Ray(x, y float64) (origin, dir mgl64.Vec3) {
	return c.RayCaster().Ray(x, y)
}

// RayCaster captures the inverse view-projection so many rays can be cast
// for one camera pose.
func (c *Camera) RayCaster() RayCaster {
	return RayCaster{
		origin: c.Position,
		inv:    c.Projection().Mul4(c.View()).Inv(),
	}
}

// RayCaster casts rays for a fixed camera pose.
type RayCaster struct {
	origin mgl64.Vec3
	inv    mgl64.Mat4
}

// Ray returns the world-space ray through the normalized device point.
func (r RayCaster) Ray(x, y float64) (origin, dir mgl64.Vec3) {
	far := r.inv.Mul4x1(mgl64.Vec4{x, y, 1, 1})
	p := far.Vec3().Mul(1 / far[3])
	return r.origin, p.Sub(r.origin).Normalize()
}

// ToNDC projects a world point. ok is false behind the camera.
func (c *Camera) ToNDC(p mgl64.Vec3) (ndc mgl64.Vec3, ok bool) {
	clip := c.Projection().Mul4(c.View()).Mul4x1(p.Vec4(1))
	if clip[3] <= 0 {
		return mgl64.Vec3{}, false
	}
	return clip.Vec3().Mul(1 / clip[3]), true
}

// Lights holds the scene's ambient and key light.
type Lights struct {
	Ambient      float64
	Directional  float64
	SunDirection mgl64.Vec3 // toward the light, normalized
}

// Star is a fixed point of the background field.
type Star struct {
	Position   mgl64.Vec3
	Brightness float64
}

// LocationMarker is an office pin with its label. Markers never change after
// construction.
type LocationMarker struct {
	Location core.Location
	Pin      Sprite
	Label    Sprite
}

// BrandMarker is the logo and plaque near the anchor.
type BrandMarker struct {
	Anchor core.Anchor
	Logo   Sprite
	Plaque Sprite
}

// Place moves the brand marker to the anchor shifted by lonOffset degrees
// and applies its scale.
func (b *BrandMarker) Place(lonOffset, scale float64) {
	pos := geo.Project(b.Anchor.Latitude, b.Anchor.Longitude+lonOffset, BrandRadius)
	b.Logo.Position = pos
	b.Logo.Scale = scale
	b.Plaque.Position = pos
	b.Plaque.Scale = scale
}

// Group is the rigid globe unit: shells, markers and brand.
type Group struct {
	Node
	Planet     *Mesh
	Clouds     *Mesh
	Atmosphere *Mesh
	Markers    []LocationMarker
	Brand      *BrandMarker
}

// Meshes returns the shells in draw order.
func (g *Group) Meshes() []*Mesh {
	return []*Mesh{g.Planet, g.Clouds, g.Atmosphere}
}

// World returns the world transform of a child node.
func (g *Group) World(child Node) mgl64.Mat4 {
	return g.Matrix().Mul4(child.Matrix())
}

// Scene is everything one globe owns.
type Scene struct {
	Camera     *Camera
	Controller *orbit.Controller
	Lights     Lights
	Stars      []Star
	Group      *Group
	Fade       Fade
	Hover      bool
}

// NewScene builds the scene graph in one pass and turns the anchor toward
// the camera.
func NewScene(o Options, aspect float64, load TextureLoader) *Scene {
	if load == nil {
		load = func(string) Texture { return nil }
	}

	s := &Scene{
		Camera: NewCamera(o.InitialCameraDistance, aspect),
		Lights: Lights{
			Ambient:      0.35,
			Directional:  0.9,
			SunDirection: mgl64.Vec3{5, 3, 5}.Normalize(),
		},
		Stars: starField(o.StarCount, o.StarSeed),
	}
	s.Controller = orbit.New(orbit.Config{
		MinDistance:     o.MinDistance,
		MaxDistance:     o.MaxDistance,
		DampingFactor:   o.DampingFactor,
		AutoRotate:      o.AutoRotate,
		AutoRotateSpeed: o.AutoRotateSpeed,
	}, s.Camera.Position)
	s.Camera.Position = s.Controller.Position()

	g := &Group{Node: newNode()}
	g.Planet = newShell("planet", PlanetRadius, Material{
		Color:   oceanColor,
		Texture: loadOptional(load, o.Textures.Earth),
		Opacity: 1,
	})
	g.Clouds = newShell("clouds", CloudRadius, Material{
		Color:       cloudColor,
		Texture:     loadOptional(load, o.Textures.Clouds),
		Opacity:     o.BaseCloudOpacity + o.CloudOpacityFloor,
		Transparent: true,
	})
	g.Atmosphere = newShell("atmosphere", AtmosphereRadius, Material{
		Color:       atmosphereColor,
		Opacity:     1,
		Transparent: true,
	})

	g.Markers = make([]LocationMarker, 0, len(o.Markers))
	for _, loc := range o.Markers {
		g.Markers = append(g.Markers, newLocationMarker(loc))
	}

	if o.ShowBrand {
		b := &BrandMarker{
			Anchor: o.BrandAnchor,
			Logo:   Sprite{Node: newNode(), Text: "MERIDIAN", Color: brandColor},
			Plaque: Sprite{Node: newNode(), Color: plaqueColor},
		}
		b.Place(0, o.BrandBaseScale)
		g.Brand = b
	}

	anchor := o.facingAnchor()
	g.Rotation[1] = geo.FacingRotationY(anchor.Latitude, anchor.Longitude)
	g.Rotation[0] = o.InitialTilt
	if o.EntryAnimation {
		g.Scale = o.EntryStartScale
	}
	s.Group = g
	s.Fade = ComputeFade(s.Camera.Position.Len(), o)

	return s
}

// SetAspect updates the projection for a new surface size. A zero height is
// ignored.
func (s *Scene) SetAspect(width, height int) bool {
	if height <= 0 || width <= 0 {
		return false
	}
	s.Camera.Aspect = float64(width) / float64(height)
	return true
}

// Dispose releases every mesh. It returns the number of textures released.
func (s *Scene) Dispose() int {
	released := 0
	for _, m := range s.Group.Meshes() {
		if m.Dispose() {
			released++
		}
	}
	s.Stars = nil
	return released
}

func newShell(name string, radius float64, mat Material) *Mesh {
	return &Mesh{Node: newNode(), Name: name, Radius: radius, Material: mat}
}

func newLocationMarker(loc core.Location) LocationMarker {
	pin := Sprite{Node: newNode(), Text: "●", Color: markerColor}
	pin.Position = geo.Project(loc.Latitude, loc.Longitude, MarkerRadius)
	label := Sprite{Node: newNode(), Text: loc.Name, Color: labelColor}
	label.Position = geo.Project(loc.Latitude, loc.Longitude, LabelRadius)
	return LocationMarker{Location: loc, Pin: pin, Label: label}
}

func loadOptional(load TextureLoader, path string) Texture {
	if path == "" {
		return nil
	}
	return load(path)
}

// starField scatters n stars uniformly over a sphere. The same seed always
// yields the same field.
func starField(n int, seed uint64) []Star {
	if n <= 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	stars := make([]Star, n)
	for i := range stars {
		z := 2*rng.Float64() - 1
		theta := 2 * math.Pi * rng.Float64()
		r := math.Sqrt(1 - z*z)
		dir := mgl64.Vec3{r * math.Cos(theta), z, r * math.Sin(theta)}
		stars[i] = Star{
			Position:   dir.Mul(StarFieldRadius),
			Brightness: 0.3 + 0.7*rng.Float64(),
		}
	}
	return stars
}
