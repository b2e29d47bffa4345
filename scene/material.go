package scene

import (
	"image"

	"github.com/godotengine/collada-exporter/math"
)

/**
 * @brief An image referenced by a material texture slot. Path points at
 * the source file; Data optionally carries decoded pixels for images
 * that only exist in memory (packed or generated), which the exporter
 * re-encodes when copying images beside the output document.
 */
type Image struct {
	Name string
	Path string
	Data image.Image
}

/**
 * @brief A texture slot on a material: an image plus the influence
 * flags deciding which shading terms sample it.
 */
type TextureSlot struct {
	Image   *Image
	Enabled bool

	UseDiffuse  bool
	UseSpecular bool
	UseEmission bool
	UseNormal   bool
}

/**
 * @brief A material, which represents various properties of a surface
 * such as texture, colour, shininess and more. Field meanings follow
 * the classic fixed-function shading terms the Collada blinn profile
 * carries.
 */
type Material struct {
	Name string

	DiffuseColour     math.Vec3
	DiffuseIntensity  float32
	SpecularColour    math.Vec3
	SpecularIntensity float32
	// Specular exponent; exports as <shininess>.
	SpecularHardness float32
	// Index of refraction.
	SpecularIOR float32

	MirrorColour math.Vec3

	// Emission strength, multiplied into the diffuse colour when no
	// emission texture is present.
	Emit float32

	// Ambient reflection factor, multiplied into the scene ambient.
	Ambient float32

	UseTransparency bool
	Alpha           float32

	// Unshaded hint, exported as a GODOT profile extra.
	Shadeless bool

	TextureSlots []*TextureSlot
}

// NewMaterial returns a material with the neutral defaults the host
// tools use for freshly created materials.
func NewMaterial(name string) *Material {
	return &Material{
		Name:              name,
		DiffuseColour:     math.NewVec3(0.8, 0.8, 0.8),
		DiffuseIntensity:  0.8,
		SpecularColour:    math.NewVec3(1.0, 1.0, 1.0),
		SpecularIntensity: 0.5,
		SpecularHardness:  50,
		SpecularIOR:       1.0,
		MirrorColour:      math.NewVec3(1.0, 1.0, 1.0),
		Ambient:           1.0,
		Alpha:             1.0,
	}
}
