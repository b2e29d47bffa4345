package collada

import (
	"time"

	"github.com/godotengine/collada-exporter/scene"
)

/**
 * @brief Options control everything the exporter lets the caller
 * configure about the produced document.
 */
type Options struct {
	// Fan-triangulate polygons into <triangles> primitives instead of
	// writing <polygons>.
	Triangulate bool

	// Generate and export tangent/bitangent arrays. Silently disabled
	// for meshes without a UV layer.
	TangentArrays bool

	// Copy referenced images into an images/ directory beside the
	// output document instead of referencing them by relative path.
	CopyImages bool

	// Export shape keys as morph controllers.
	ShapeKeys bool

	// Collapse control bones (named "ctrl*" or flagged non-deform)
	// out of exported skeletons.
	ExcludeCtrlBones bool

	// Export only nodes flagged selected (ancestors are kept so the
	// hierarchy stays intact).
	SelectedOnly bool

	// Node types to export; nil exports everything.
	ObjectTypes map[scene.NodeType]bool

	// Export animations at all.
	Animation bool

	// Export each action as a separate animation clip. When off, the
	// scene's frame range is sampled as one unnamed timeline.
	AnimationClips bool

	// Skip actions whose name ends in "-noexp".
	SkipNoExport bool

	// Asset metadata.
	Author    string
	UnitName  string
	UnitMeter float32
	UpAxis    string

	// Clock for the asset created/modified stamps; overridable so
	// output is reproducible.
	Now func() time.Time
}

// DefaultOptions returns the stock exporter settings.
func DefaultOptions() Options {
	return Options{
		Triangulate:      true,
		TangentArrays:    false,
		CopyImages:       false,
		ShapeKeys:        true,
		ExcludeCtrlBones: true,
		SelectedOnly:     false,
		Animation:        true,
		AnimationClips:   false,
		SkipNoExport:     true,
		Author:           "Anonymous",
		UnitName:         "meter",
		UnitMeter:        1.0,
		UpAxis:           "Z_UP",
		Now:              time.Now,
	}
}

// exportsType reports whether nodes of the given type pass the
// object-type filter.
func (o *Options) exportsType(t scene.NodeType) bool {
	if o.ObjectTypes == nil {
		return true
	}
	return o.ObjectTypes[t]
}
