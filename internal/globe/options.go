package globe

import (
	"errors"
	"fmt"
	"time"

	"github.com/meridianmaritime/globe/internal/geo"
	"github.com/meridianmaritime/globe/pkg/core"
)

// ErrInvalidOptions is returned by Options.Validate.
var ErrInvalidOptions = errors.New("invalid globe options")

// Variant names a calibration preset.
type Variant string

const (
	VariantHero    Variant = "hero"
	VariantNetwork Variant = "network"
	VariantContact Variant = "contact"
)

// Textures names the equirectangular images used by the shells. Empty paths
// fall back to the default materials.
type Textures struct {
	Earth  string `json:"earth" mapstructure:"earth"`
	Clouds string `json:"clouds" mapstructure:"clouds"`
}

// Options calibrates one globe instance.
type Options struct {
	InitialCameraDistance float64 `json:"initialCameraDistance" mapstructure:"initialCameraDistance"`
	MinDistance           float64 `json:"minDistance" mapstructure:"minDistance"`
	MaxDistance           float64 `json:"maxDistance" mapstructure:"maxDistance"`

	// FadeNear and FadeFar bound the zoom range over which the visibility
	// factor moves from 0 to 1.
	FadeNear float64 `json:"fadeNear" mapstructure:"fadeNear"`
	FadeFar  float64 `json:"fadeFar" mapstructure:"fadeFar"`

	EntryAnimation  bool          `json:"entryAnimation" mapstructure:"entryAnimation"`
	EntryDuration   time.Duration `json:"entryDuration" mapstructure:"entryDuration"`
	EntryStartScale float64       `json:"entryStartScale" mapstructure:"entryStartScale"`

	Markers     []core.Location `json:"markers" mapstructure:"-"`
	BrandAnchor core.Anchor     `json:"brandAnchor" mapstructure:"-"`
	ShowBrand   bool            `json:"showBrand" mapstructure:"showBrand"`

	AutoRotate      bool    `json:"autoRotate" mapstructure:"autoRotate"`
	AutoRotateSpeed float64 `json:"autoRotateSpeed" mapstructure:"autoRotateSpeed"` // rad/s
	InitialTilt     float64 `json:"initialTilt" mapstructure:"initialTilt"`          // rad
	DampingFactor   float64 `json:"dampingFactor" mapstructure:"dampingFactor"`

	BaseCloudOpacity  float64 `json:"baseCloudOpacity" mapstructure:"baseCloudOpacity"`
	CloudOpacityFloor float64 `json:"cloudOpacityFloor" mapstructure:"cloudOpacityFloor"`
	BrandBaseScale    float64 `json:"brandBaseScale" mapstructure:"brandBaseScale"`
	BrandMaxOffsetDeg float64 `json:"brandMaxOffsetDeg" mapstructure:"brandMaxOffsetDeg"`

	CloudDriftPerFrame float64 `json:"cloudDriftPerFrame" mapstructure:"cloudDriftPerFrame"` // rad per nominal frame
	PulseAmplitude     float64 `json:"pulseAmplitude" mapstructure:"pulseAmplitude"`
	PulseFrequency     float64 `json:"pulseFrequency" mapstructure:"pulseFrequency"` // rad/ms

	StarCount int    `json:"starCount" mapstructure:"starCount"`
	StarSeed  uint64 `json:"starSeed" mapstructure:"starSeed"`

	Textures Textures `json:"textures" mapstructure:"textures"`
}

// Preset returns the calibration for a named variant.
func Preset(v Variant) (Options, error) {
	switch v {
	case VariantHero, "":
		return HeroOptions(), nil
	case VariantNetwork:
		return NetworkOptions(), nil
	case VariantContact:
		return ContactOptions(), nil
	default:
		return Options{}, fmt.Errorf("%w: unknown variant %q", ErrInvalidOptions, v)
	}
}

// HeroOptions is the landing-page globe: it scales in on mount and shows the
// regional offices with the brand marker.
func HeroOptions() Options {
	return Options{
		InitialCameraDistance: 3.0,
		MinDistance:           1.5,
		MaxDistance:           4.0,
		FadeNear:              1.6,
		FadeFar:               2.2,
		EntryAnimation:        true,
		EntryDuration:         4 * time.Second,
		EntryStartScale:       2.5,
		Markers:               append([]core.Location(nil), core.DefaultLocations[:4]...),
		BrandAnchor:           core.HomePort,
		ShowBrand:             true,
		InitialTilt:           0.2,
		DampingFactor:         0.05,
		BaseCloudOpacity:      0.35,
		CloudOpacityFloor:     0.05,
		BrandBaseScale:        0.25,
		BrandMaxOffsetDeg:     8,
		CloudDriftPerFrame:    0.0005,
		PulseAmplitude:        0.01,
		PulseFrequency:        0.001,
		StarCount:             400,
		StarSeed:              1,
	}
}

// NetworkOptions shows every office on a slowly turning globe.
func NetworkOptions() Options {
	o := HeroOptions()
	o.InitialCameraDistance = 3.2
	o.MinDistance = 1.4
	o.MaxDistance = 5.0
	o.FadeNear = 1.8
	o.FadeFar = 2.8
	o.EntryAnimation = false
	o.Markers = append([]core.Location(nil), core.DefaultLocations...)
	o.ShowBrand = false
	o.AutoRotate = true
	o.AutoRotateSpeed = 0.05
	o.StarCount = 600
	return o
}

// ContactOptions is the close-up used next to the contact form.
func ContactOptions() Options {
	o := HeroOptions()
	o.InitialCameraDistance = 2.4
	o.MaxDistance = 3.5
	o.EntryAnimation = false
	o.Markers = nil
	o.BrandBaseScale = 0.3
	o.StarCount = 250
	return o
}

// Validate reports calibration values the frame loop cannot work with.
func (o Options) Validate() error {
	if o.MinDistance <= 0 {
		return fmt.Errorf("%w: minDistance must be positive, got %v", ErrInvalidOptions, o.MinDistance)
	}
	if o.MaxDistance < o.MinDistance {
		return fmt.Errorf("%w: maxDistance %v below minDistance %v", ErrInvalidOptions, o.MaxDistance, o.MinDistance)
	}
	if o.InitialCameraDistance <= 0 {
		return fmt.Errorf("%w: initialCameraDistance must be positive, got %v", ErrInvalidOptions, o.InitialCameraDistance)
	}
	if o.FadeFar <= o.FadeNear {
		return fmt.Errorf("%w: fadeFar %v must exceed fadeNear %v", ErrInvalidOptions, o.FadeFar, o.FadeNear)
	}
	if o.EntryAnimation {
		if o.EntryDuration <= 0 {
			return fmt.Errorf("%w: entryDuration must be positive when the entry animation is on", ErrInvalidOptions)
		}
		if o.EntryStartScale <= 0 {
			return fmt.Errorf("%w: entryStartScale must be positive, got %v", ErrInvalidOptions, o.EntryStartScale)
		}
	}
	if o.DampingFactor < 0 || o.DampingFactor > 1 {
		return fmt.Errorf("%w: dampingFactor %v outside [0, 1]", ErrInvalidOptions, o.DampingFactor)
	}
	if o.BrandBaseScale < 0 || o.BrandMaxOffsetDeg < 0 {
		return fmt.Errorf("%w: brand scale and offset must not be negative", ErrInvalidOptions)
	}
	if o.StarCount < 0 {
		return fmt.Errorf("%w: starCount must not be negative", ErrInvalidOptions)
	}
	if o.ShowBrand && !geo.ValidLatLon(o.BrandAnchor.Latitude, o.BrandAnchor.Longitude) {
		return fmt.Errorf("%w: brand anchor %q: %w", ErrInvalidOptions, o.BrandAnchor.Name, geo.ErrInvalidCoordinates)
	}
	for _, m := range o.Markers {
		if !geo.ValidLatLon(m.Latitude, m.Longitude) {
			return fmt.Errorf("%w: marker %q: %w", ErrInvalidOptions, m.Name, geo.ErrInvalidCoordinates)
		}
	}
	return nil
}

// facingAnchor is the coordinate rotated toward the camera at startup.
func (o Options) facingAnchor() core.Anchor {
	if o.BrandAnchor == (core.Anchor{}) {
		return core.HomePort
	}
	return o.BrandAnchor
}
