// Package render draws a globe scene into a terminal.
//
// The rasterizer works on square pixels and packs two of them into every
// terminal cell with the upper half block glyph, so a cols×rows screen is a
// cols×(2·rows) image.
package render

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/meridianmaritime/globe/internal/geo"
	"github.com/meridianmaritime/globe/internal/globe"
	"github.com/meridianmaritime/globe/pkg/streaming"
)

// MaxSide bounds frame width and height so width*height stays allocatable.
const MaxSide = streaming.MaxSurfaceSide

// Label is text anchored at a pixel. Labels are laid out on cell rows.
type Label struct {
	X, Y  int // pixel coordinates of the anchor
	Text  string
	Color color.RGBA
	Fill  *color.RGBA // background behind the text; nil keeps the pixels
}

// Frame is one rasterized scene.
type Frame struct {
	Width, Height int
	Pixels        []color.RGBA
	Labels        []Label
}

// NewFrame allocates a black frame. Sizes outside 1..MaxSide on either
// side give an empty frame.
func NewFrame(width, height int) *Frame {
	if width <= 0 || height <= 0 || width > MaxSide || height > MaxSide {
		return &Frame{}
	}
	return &Frame{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// At returns the pixel at x, y.
func (f *Frame) At(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return color.RGBA{}
	}
	return f.Pixels[y*f.Width+x]
}

func (f *Frame) set(x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return
	}
	f.Pixels[y*f.Width+x] = c
}

// shell is a sphere with its world transform resolved for one frame.
type shell struct {
	mesh   *globe.Mesh
	center mgl64.Vec3
	radius float64
	inv    mgl64.Mat4
}

func resolve(g *globe.Group, m *globe.Mesh) shell {
	world := g.World(m.Node)
	return shell{
		mesh:   m,
		center: world.Col(3).Vec3(),
		radius: m.Radius * g.Scale * m.Scale,
		inv:    world.Inv(),
	}
}

// uv returns the texture coordinates of a world point on the shell.
func (s shell) uv(p mgl64.Vec3) (float64, float64) {
	local := s.inv.Mul4x1(p.Vec4(1)).Vec3()
	return geo.TextureUV(local)
}

// Rasterize renders the scene into a width×height frame.
func Rasterize(sc *globe.Scene, width, height int) *Frame {
	f := NewFrame(width, height)
	if f.Width == 0 || f.Height == 0 || sc == nil {
		return f
	}
	width, height = f.Width, f.Height

	g := sc.Group
	planet := resolve(g, g.Planet)
	clouds := resolve(g, g.Clouds)
	atmo := resolve(g, g.Atmosphere)
	rays := sc.Camera.RayCaster()
	sun := sc.Lights.SunDirection

	drawStars(f, sc)

	for py := 0; py < height; py++ {
		for px := 0; px < width; px++ {
			s, _ := globe.ToNDC(px, py, width, height)
			origin, dir := rays.Ray(s.X, s.Y)

			var (
				c      color.RGBA
				filled bool
			)

			if t, ok := hit(origin, dir, planet); ok {
				p := origin.Add(dir.Mul(t))
				n := p.Sub(planet.center).Normalize()
				c = shade(surfaceColor(planet, p), n, sc.Lights)
				filled = true
			}

			if t, ok := hit(origin, dir, clouds); ok && clouds.mesh.Material.Opacity > 0 {
				p := origin.Add(dir.Mul(t))
				alpha := clouds.mesh.Material.Opacity * cloudCover(clouds, p)
				n := p.Sub(clouds.center).Normalize()
				lit := shade(clouds.mesh.Material.Color, n, sc.Lights)
				if !filled {
					c = f.At(px, py)
				}
				c = mix(c, lit, alpha)
				filled = true
			}

			if t, ok := hit(origin, dir, atmo); ok && atmo.mesh.Material.Opacity > 0 {
				p := origin.Add(dir.Mul(t))
				n := p.Sub(atmo.center).Normalize()
				facing := math.Abs(n.Dot(dir))
				rim := (1 - facing) * (1 - facing)
				glow := atmo.mesh.Material.Opacity * rim * (0.6 + 0.4*math.Max(0, n.Dot(sun)))
				if !filled {
					c = f.At(px, py)
				}
				c = add(c, atmo.mesh.Material.Color, glow)
				filled = true
			}

			if filled {
				f.set(px, py, c)
			}
		}
	}

	drawMarkers(f, sc, planet)
	drawBrand(f, sc, planet)
	return f
}

func hit(origin, dir mgl64.Vec3, s shell) (float64, bool) {
	if s.mesh == nil || s.mesh.Disposed() || s.radius <= 0 {
		return 0, false
	}
	oc := origin.Sub(s.center)
	b := oc.Dot(dir)
	disc := b*b - (oc.Dot(oc) - s.radius*s.radius)
	if disc < 0 {
		return 0, false
	}
	t := -b - math.Sqrt(disc)
	if t < 0 {
		return 0, false
	}
	return t, true
}

// surfaceColor samples the earth texture, or draws the default material:
// flat ocean with a faint graticule.
func surfaceColor(s shell, p mgl64.Vec3) color.RGBA {
	u, v := s.uv(p)
	if tex := s.mesh.Material.Texture; tex != nil {
		return tex.Sample(u, v)
	}
	base := s.mesh.Material.Color
	lon, lat := u*360, v*180
	if math.Mod(lon, 30) < 0.8 || math.Mod(lat, 30) < 0.8 {
		return mix(base, color.RGBA{R: 60, G: 110, B: 160, A: 255}, 0.5)
	}
	return base
}

// cloudCover returns coverage in [0, 1] at a point on the cloud shell.
func cloudCover(s shell, p mgl64.Vec3) float64 {
	u, v := s.uv(p)
	if tex := s.mesh.Material.Texture; tex != nil {
		c := tex.Sample(u, v)
		return (float64(c.R) + float64(c.G) + float64(c.B)) / (3 * 255)
	}
	n := math.Sin(u*2*math.Pi*7)*math.Sin(v*math.Pi*9) + 0.5*math.Sin(u*2*math.Pi*17+v*11)
	return mgl64.Clamp(n, 0, 1)
}

func shade(base color.RGBA, n mgl64.Vec3, l globe.Lights) color.RGBA {
	k := l.Ambient + l.Directional*math.Max(0, n.Dot(l.SunDirection))
	return scale(base, k)
}

func drawStars(f *Frame, sc *globe.Scene) {
	for _, s := range sc.Stars {
		ndc, ok := sc.Camera.ToNDC(s.Position)
		if !ok || ndc.Z() > 1 {
			continue
		}
		x, y := toPixel(ndc, f.Width, f.Height)
		v := uint8(mgl64.Clamp(s.Brightness*255, 0, 255))
		f.set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
	}
}

// facing reports whether a point on the globe is on the camera side.
func facing(sc *globe.Scene, center, p mgl64.Vec3) bool {
	return p.Sub(center).Dot(sc.Camera.Position.Sub(p)) > 0
}

func drawMarkers(f *Frame, sc *globe.Scene, planet shell) {
	g := sc.Group
	m := g.Matrix()
	for _, mk := range g.Markers {
		pin := m.Mul4x1(mk.Pin.Position.Vec4(1)).Vec3()
		if !facing(sc, planet.center, pin) {
			continue
		}
		ndc, ok := sc.Camera.ToNDC(pin)
		if !ok {
			continue
		}
		x, y := toPixel(ndc, f.Width, f.Height)
		f.set(x, y, mk.Pin.Color)

		label := m.Mul4x1(mk.Label.Position.Vec4(1)).Vec3()
		if ndc, ok := sc.Camera.ToNDC(label); ok {
			lx, ly := toPixel(ndc, f.Width, f.Height)
			f.Labels = append(f.Labels, Label{X: lx + 1, Y: ly, Text: mk.Label.Text, Color: mk.Label.Color})
		}
	}
}

// drawBrand draws the plaque as a filled box sized by the sprite scale and
// writes as much of the logo text as fits.
func drawBrand(f *Frame, sc *globe.Scene, planet shell) {
	b := sc.Group.Brand
	if b == nil {
		return
	}
	world := sc.Group.Matrix().Mul4x1(b.Logo.Position.Vec4(1)).Vec3()
	if !facing(sc, planet.center, world) {
		return
	}
	ndc, ok := sc.Camera.ToNDC(world)
	if !ok {
		return
	}
	x, y := toPixel(ndc, f.Width, f.Height)

	dist := world.Sub(sc.Camera.Position).Len()
	focal := float64(f.Height) / 2 / math.Tan(mgl64.DegToRad(sc.Camera.FovY)/2)
	size := b.Logo.Scale * sc.Group.Scale * focal / dist
	w := max(int(size*2), 1)
	h := max(int(size/2), 2)

	for yy := y - h; yy < y; yy++ {
		for xx := x - w/2; xx < x-w/2+w; xx++ {
			f.set(xx, yy, b.Plaque.Color)
		}
	}

	text := b.Logo.Text
	if len(text) > w {
		text = text[:w]
	}
	fill := b.Plaque.Color
	f.Labels = append(f.Labels, Label{
		X:     x - len(text)/2,
		Y:     y - h,
		Text:  text,
		Color: b.Logo.Color,
		Fill:  &fill,
	})
}

func toPixel(ndc mgl64.Vec3, width, height int) (int, int) {
	x := (ndc.X() + 1) / 2 * float64(width)
	y := (1 - ndc.Y()) / 2 * float64(height)
	return int(math.Floor(x)), int(math.Floor(y))
}

func clamp8(v float64) uint8 {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return uint8(v)
}

func scale(c color.RGBA, k float64) color.RGBA {
	return color.RGBA{
		R: clamp8(float64(c.R) * k),
		G: clamp8(float64(c.G) * k),
		B: clamp8(float64(c.B) * k),
		A: 255,
	}
}

func mix(a, b color.RGBA, t float64) color.RGBA {
	t = mgl64.Clamp(t, 0, 1)
	return color.RGBA{
		R: clamp8(float64(a.R)*(1-t) + float64(b.R)*t),
		G: clamp8(float64(a.G)*(1-t) + float64(b.G)*t),
		B: clamp8(float64(a.B)*(1-t) + float64(b.B)*t),
		A: 255,
	}
}

func add(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: clamp8(float64(a.R) + float64(b.R)*t),
		G: clamp8(float64(a.G) + float64(b.G)*t),
		B: clamp8(float64(a.B) + float64(b.B)*t),
		A: 255,
	}
}
