package scene

import "github.com/godotengine/collada-exporter/math"

// LightType selects the Collada light element written for a node.
type LightType int

const (
	LightTypePoint LightType = iota
	LightTypeSpot
	// Anything else (sun, area, hemi) exports as a directional light.
	LightTypeDirectional
)

/**
 * @brief Light data. Distance drives the linear attenuation written
 * for point and spot lights.
 */
type Light struct {
	Name string

	Type   LightType
	Colour math.Vec3

	// Falloff distance; attenuation exports as 2.0/Distance.
	Distance float32

	// Full spot cone angle in radians.
	SpotSize float32

	// Clamp the point light's influence sphere; exports zfar.
	UseSphere bool
}
