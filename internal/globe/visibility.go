package globe

import "github.com/go-gl/mathgl/mgl64"

// Fade is the per-frame output of the distance-driven interpolation.
type Fade struct {
	Factor            float64 `json:"factor"`
	CloudOpacity      float64 `json:"cloudOpacity"`
	AtmosphereOpacity float64 `json:"atmosphereOpacity"`
	BrandScale        float64 `json:"brandScale"`
	BrandLonOffset    float64 `json:"brandLonOffset"` // degrees, never positive
}

// VisibilityFactor maps camera distance to [0, 1]: 0 at or below near, 1 at
// or above far, linear in between. far must exceed near.
func VisibilityFactor(distance, near, far float64) float64 {
	if far <= near {
		if distance >= far {
			return 1
		}
		return 0
	}
	return mgl64.Clamp((distance-near)/(far-near), 0, 1)
}

// ComputeFade derives shell opacities and the brand marker placement from
// the camera distance. It keeps no state between calls.
func ComputeFade(distance float64, o Options) Fade {
	t := VisibilityFactor(distance, o.FadeNear, o.FadeFar)
	return Fade{
		Factor:            t,
		CloudOpacity:      o.BaseCloudOpacity*t + o.CloudOpacityFloor,
		AtmosphereOpacity: t,
		BrandScale:        o.BrandBaseScale * (0.5 + 0.5*t),
		BrandLonOffset:    -o.BrandMaxOffsetDeg * (1 - t),
	}
}
