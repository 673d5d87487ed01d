package globe

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianmaritime/globe/internal/geo"
	"github.com/meridianmaritime/globe/pkg/core"
)

type solidTexture struct{ c color.RGBA }

func (s solidTexture) Sample(u, v float64) color.RGBA { return s.c }

func TestNewScene_FacesAnchor(t *testing.T) {
	for _, anchor := range []core.Anchor{
		core.HomePort,
		{Name: "Rotterdam", Latitude: 51.9244, Longitude: 4.4777},
		{Name: "Honolulu", Latitude: 21.3069, Longitude: -157.8583},
	} {
		t.Run(anchor.Name, func(t *testing.T) {
			o := HeroOptions()
			o.BrandAnchor = anchor
			s := NewScene(o, 1, nil)

			rot := s.Group.Node
			rot.Scale = 1
			p := rot.Matrix().Mul4x1(geo.Project(anchor.Latitude, anchor.Longitude, 1).Vec4(1)).Vec3()

			assert.InDelta(t, 0, p.X(), 1e-9, "anchor should sit on the view axis")
			assert.Greater(t, p.Z(), 0.0, "anchor should face the camera")
		})
	}
}

func TestNewScene_TiltAndEntryScale(t *testing.T) {
	o := HeroOptions()
	s := NewScene(o, 1.5, nil)

	assert.Equal(t, o.InitialTilt, s.Group.Rotation.X())
	assert.Equal(t, o.EntryStartScale, s.Group.Scale)
	assert.Equal(t, 1.5, s.Camera.Aspect)
	assert.InDelta(t, o.InitialCameraDistance, s.Camera.Position.Len(), 1e-9)

	o.EntryAnimation = false
	assert.Equal(t, 1.0, NewScene(o, 1, nil).Group.Scale)
}

func TestNewScene_MarkersUseProjection(t *testing.T) {
	o := NetworkOptions()
	s := NewScene(o, 1, nil)

	require.Len(t, s.Group.Markers, len(o.Markers))
	for i, m := range s.Group.Markers {
		loc := o.Markers[i]
		assert.Equal(t, loc, m.Location)
		assert.Equal(t, geo.Project(loc.Latitude, loc.Longitude, MarkerRadius), m.Pin.Position)
		assert.Equal(t, geo.Project(loc.Latitude, loc.Longitude, LabelRadius), m.Label.Position)
		assert.Equal(t, loc.Name, m.Label.Text)
	}
	assert.Nil(t, s.Group.Brand)
}

func TestBrandMarker_Place(t *testing.T) {
	s := NewScene(HeroOptions(), 1, nil)
	b := s.Group.Brand
	require.NotNil(t, b)

	b.Place(-8, 0.125)
	want := geo.Project(core.HomePort.Latitude, core.HomePort.Longitude-8, BrandRadius)
	assert.Equal(t, want, b.Logo.Position)
	assert.Equal(t, want, b.Plaque.Position)
	assert.Equal(t, 0.125, b.Logo.Scale)
}

func TestNewScene_TexturesAndDispose(t *testing.T) {
	o := HeroOptions()
	o.Textures = Textures{Earth: "earth.jpg", Clouds: "missing.png"}

	var asked []string
	load := func(path string) Texture {
		asked = append(asked, path)
		if path == "earth.jpg" {
			return solidTexture{c: color.RGBA{G: 255, A: 255}}
		}
		return nil
	}

	s := NewScene(o, 1, load)
	assert.Equal(t, []string{"earth.jpg", "missing.png"}, asked)
	assert.NotNil(t, s.Group.Planet.Material.Texture)
	assert.Nil(t, s.Group.Clouds.Material.Texture, "failed load falls back to the default material")

	assert.Equal(t, 1, s.Dispose())
	for _, m := range s.Group.Meshes() {
		assert.True(t, m.Disposed(), m.Name)
		assert.Nil(t, m.Material.Texture)
	}
	assert.Equal(t, 0, s.Dispose(), "second dispose releases nothing")
}

func TestStarField_Seeded(t *testing.T) {
	a := starField(50, 7)
	b := starField(50, 7)
	c := starField(50, 8)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	for _, s := range a {
		assert.InDelta(t, StarFieldRadius, s.Position.Len(), 1e-9)
	}
	assert.Nil(t, starField(0, 1))
}

func TestScene_SetAspect(t *testing.T) {
	s := NewScene(HeroOptions(), 1, nil)

	assert.False(t, s.SetAspect(100, 0))
	assert.Equal(t, 1.0, s.Camera.Aspect)
	assert.True(t, s.SetAspect(200, 100))
	assert.Equal(t, 2.0, s.Camera.Aspect)
}

func TestCamera_RayAndNDC(t *testing.T) {
	c := NewCamera(3, 1)

	origin, dir := c.Ray(0, 0)
	assert.Equal(t, mgl64.Vec3{0, 0, 3}, origin)
	assert.True(t, dir.ApproxEqualThreshold(mgl64.Vec3{0, 0, -1}, 1e-9), "got %v", dir)

	ndc, ok := c.ToNDC(mgl64.Vec3{})
	require.True(t, ok)
	assert.InDelta(t, 0, ndc.X(), 1e-9)
	assert.InDelta(t, 0, ndc.Y(), 1e-9)

	_, ok = c.ToNDC(mgl64.Vec3{0, 0, 10})
	assert.False(t, ok, "points behind the camera do not project")

	// a ray through a projected point passes through it
	p := mgl64.Vec3{0.4, -0.3, 0.2}
	ndc, ok = c.ToNDC(p)
	require.True(t, ok)
	o, d := c.Ray(ndc.X(), ndc.Y())
	toP := p.Sub(o).Normalize()
	assert.True(t, d.ApproxEqualThreshold(toP, 1e-6), "ray %v toward %v", d, toP)
}

func TestNode_MatrixOrder(t *testing.T) {
	n := newNode()
	n.Rotation = mgl64.Vec3{0.3, 1.1, 0}
	n.Scale = 2
	n.Position = mgl64.Vec3{1, 0, 0}

	want := mgl64.Translate3D(1, 0, 0).
		Mul4(mgl64.HomogRotate3DX(0.3)).
		Mul4(mgl64.HomogRotate3DY(1.1)).
		Mul4(mgl64.Scale3D(2, 2, 2))
	assert.True(t, n.Matrix().ApproxEqualThreshold(want, 1e-12))
}
