package globe

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func steadyScene(t *testing.T) *Scene {
	t.Helper()
	o := HeroOptions()
	o.EntryAnimation = false
	s := NewScene(o, 1, nil)
	require.InDelta(t, 3.0, s.Camera.Position.Len(), 1e-9)
	return s
}

func TestPointerOverGlobe(t *testing.T) {
	s := steadyScene(t)

	tests := []struct {
		name   string
		sample PointerSample
		ok     bool
		want   bool
	}{
		{"no sample yet", PointerSample{}, false, false},
		{"center", PointerSample{}, true, true},
		{"over the planet", PointerSample{X: 0.6}, true, true},
		{"over the atmosphere only", PointerSample{X: 0.9}, true, true},
		{"corner", PointerSample{X: 0.99, Y: 0.99}, true, false},
		{"outside the surface", PointerSample{X: 1.5, Y: 0}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.PointerOverGlobe(tt.sample, tt.ok))
		})
	}
}

func TestIntersect_NearestShell(t *testing.T) {
	s := steadyScene(t)

	origin, dir := s.Camera.Ray(0, 0)
	hit, ok := s.Group.Intersect(origin, dir)
	require.True(t, ok)
	assert.Equal(t, "atmosphere", hit.Mesh.Name)
	assert.InDelta(t, 3-AtmosphereRadius, hit.Distance, 1e-9)

	origin, dir = s.Camera.Ray(0.9, 0)
	hit, ok = s.Group.Intersect(origin, dir)
	require.True(t, ok)
	assert.Equal(t, "atmosphere", hit.Mesh.Name)
}

func TestIntersect_FollowsGroupScale(t *testing.T) {
	s := steadyScene(t)
	origin, dir := s.Camera.Ray(0.99, 0.99)

	_, ok := s.Group.Intersect(origin, dir)
	assert.False(t, ok)

	// during the entry animation the globe is larger than its resting size
	s.Group.Scale = 2.5
	_, ok = s.Group.Intersect(origin, dir)
	assert.True(t, ok)
}

func TestIntersect_SkipsDisposed(t *testing.T) {
	s := steadyScene(t)
	s.Dispose()

	origin, dir := s.Camera.Ray(0, 0)
	_, ok := s.Group.Intersect(origin, dir)
	assert.False(t, ok)
}

func TestRaySphere(t *testing.T) {
	d, ok := raySphere(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, -1}, mgl64.Vec3{}, 1)
	require.True(t, ok)
	assert.InDelta(t, 4.0, d, 1e-12)

	// origin inside the sphere
	d, ok = raySphere(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}, 2)
	require.True(t, ok)
	assert.InDelta(t, 2.0, d, 1e-12)

	// sphere behind the origin
	_, ok = raySphere(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, 1}, mgl64.Vec3{}, 1)
	assert.False(t, ok)
}

func TestPointerCell(t *testing.T) {
	var c PointerCell

	_, ok := c.Load()
	assert.False(t, ok)

	c.Store(PointerSample{X: 0.25, Y: -0.5})
	s, ok := c.Load()
	require.True(t, ok)
	assert.Equal(t, PointerSample{X: 0.25, Y: -0.5}, s)

	c.Clear()
	_, ok = c.Load()
	assert.False(t, ok)
}

func TestToNDC(t *testing.T) {
	s, ok := ToNDC(49, 49, 99, 99)
	require.True(t, ok)
	assert.InDelta(t, 0, s.X, 1e-12)
	assert.InDelta(t, 0, s.Y, 1e-12)

	s, ok = ToNDC(0, 0, 100, 100)
	require.True(t, ok)
	assert.Less(t, s.X, 0.0)
	assert.Greater(t, s.Y, 0.0, "screen top is NDC up")

	_, ok = ToNDC(1, 1, 100, 0)
	assert.False(t, ok)
}
