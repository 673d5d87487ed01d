package globe

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// Node is a transform: translation, Euler XYZ rotation and uniform scale.
type Node struct {
	Position mgl64.Vec3
	Rotation mgl64.Vec3 // radians, applied X then Y then Z in matrix order
	Scale    float64
	Visible  bool
}

func newNode() Node {
	return Node{Scale: 1, Visible: true}
}

// Matrix returns the local transform T·Rx·Ry·Rz·S.
func (n Node) Matrix() mgl64.Mat4 {
	rot := mgl64.HomogRotate3DX(n.Rotation[0]).
		Mul4(mgl64.HomogRotate3DY(n.Rotation[1])).
		Mul4(mgl64.HomogRotate3DZ(n.Rotation[2]))
	return mgl64.Translate3D(n.Position[0], n.Position[1], n.Position[2]).
		Mul4(rot).
		Mul4(mgl64.Scale3D(n.Scale, n.Scale, n.Scale))
}

// Texture is an equirectangular image sampled in UV space.
type Texture interface {
	Sample(u, v float64) color.RGBA
}

// TextureLoader loads a texture. A nil result selects the default material.
type TextureLoader func(path string) Texture

// Material is a flat color optionally modulated by a texture.
type Material struct {
	Color       color.RGBA
	Texture     Texture
	Opacity     float64
	Transparent bool
}

// Mesh is a sphere of Radius in its node's local space.
type Mesh struct {
	Node
	Name     string
	Radius   float64
	Material Material

	disposed bool
}

// Disposed reports whether Dispose released the mesh.
func (m *Mesh) Disposed() bool {
	return m.disposed
}

// Dispose releases the material texture. It reports whether a texture was held.
func (m *Mesh) Dispose() bool {
	if m.disposed {
		return false
	}
	m.disposed = true
	held := m.Material.Texture != nil
	m.Material.Texture = nil
	return held
}

// Sprite is a screen-facing label or glyph anchored at its node position.
type Sprite struct {
	Node
	Text  string
	Color color.RGBA
}
