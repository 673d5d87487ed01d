// Package orbit implements a damped orbit camera controller around the origin.
package orbit

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// minPolar keeps the camera off the poles so LookAt never degenerates.
	minPolar = 1e-3

	defaultDamping     = 0.05
	defaultRotateSpeed = 1.0
	defaultZoomSpeed   = 1.0
)

// Config holds controller settings.
type Config struct {
	MinDistance     float64
	MaxDistance     float64
	DampingFactor   float64
	RotateSpeed     float64
	ZoomSpeed       float64
	AutoRotate      bool
	AutoRotateSpeed float64 // radians per second
}

// Controller keeps the camera on a sphere around the origin. Rotation input is
// damped; zoom input is ignored while ZoomEnabled is false.
type Controller struct {
	cfg Config

	radius  float64
	polar   float64 // angle from +y
	azimuth float64 // angle around y, 0 looks down -z from +z

	deltaPolar   float64
	deltaAzimuth float64
	zoomScale    float64

	// ZoomEnabled gates wheel input. The globe recomputes it every frame.
	ZoomEnabled bool
}

// New creates a controller with the camera at position.
func New(cfg Config, position mgl64.Vec3) *Controller {
	if cfg.DampingFactor <= 0 || cfg.DampingFactor > 1 {
		cfg.DampingFactor = defaultDamping
	}
	if cfg.RotateSpeed == 0 {
		cfg.RotateSpeed = defaultRotateSpeed
	}
	if cfg.ZoomSpeed == 0 {
		cfg.ZoomSpeed = defaultZoomSpeed
	}
	if cfg.MaxDistance < cfg.MinDistance {
		cfg.MaxDistance = cfg.MinDistance
	}

	c := &Controller{cfg: cfg, zoomScale: 1}
	c.radius, c.polar, c.azimuth = toSpherical(position)
	c.clamp()
	return c
}

// Rotate queues an orbit by the given screen-space deltas in radians.
func (c *Controller) Rotate(dAzimuth, dPolar float64) {
	c.deltaAzimuth -= dAzimuth * c.cfg.RotateSpeed
	c.deltaPolar -= dPolar * c.cfg.RotateSpeed
}

// Zoom queues a dolly step. Positive steps move the camera closer.
// It reports whether the step was accepted.
func (c *Controller) Zoom(steps float64) bool {
	if !c.ZoomEnabled || steps == 0 {
		return false
	}
	c.zoomScale *= math.Pow(0.95, steps*c.cfg.ZoomSpeed)
	return true
}

// Update applies pending input and damping for a frame of length dt and
// returns the new camera position.
func (c *Controller) Update(dt float64) mgl64.Vec3 {
	if c.cfg.AutoRotate && dt > 0 {
		c.deltaAzimuth -= c.cfg.AutoRotateSpeed * dt
	}

	c.azimuth += c.deltaAzimuth * c.cfg.DampingFactor
	c.polar += c.deltaPolar * c.cfg.DampingFactor
	c.radius *= c.zoomScale
	c.clamp()

	c.deltaAzimuth *= 1 - c.cfg.DampingFactor
	c.deltaPolar *= 1 - c.cfg.DampingFactor
	c.zoomScale = 1

	return c.Position()
}

// Position returns the current camera position.
func (c *Controller) Position() mgl64.Vec3 {
	sinPolar := math.Sin(c.polar)
	return mgl64.Vec3{
		c.radius * sinPolar * math.Sin(c.azimuth),
		c.radius * math.Cos(c.polar),
		c.radius * sinPolar * math.Cos(c.azimuth),
	}
}

// Distance returns the camera distance from the origin.
func (c *Controller) Distance() float64 {
	return c.radius
}

// Config returns the controller settings.
func (c *Controller) Config() Config {
	return c.cfg
}

func (c *Controller) clamp() {
	c.radius = mgl64.Clamp(c.radius, c.cfg.MinDistance, c.cfg.MaxDistance)
	c.polar = mgl64.Clamp(c.polar, minPolar, math.Pi-minPolar)
}

func toSpherical(p mgl64.Vec3) (radius, polar, azimuth float64) {
	radius = p.Len()
	if radius == 0 {
		return 0, math.Pi / 2, 0
	}
	polar = math.Acos(mgl64.Clamp(p[1]/radius, -1, 1))
	azimuth = math.Atan2(p[0], p[2])
	return radius, polar, azimuth
}
