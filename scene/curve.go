package scene

import "github.com/godotengine/collada-exporter/math"

// SplineType selects the interpolation written for a spline's points.
type SplineType int

const (
	SplineTypeLinear SplineType = iota
	SplineTypeBezier
)

/**
 * @brief A single control point of a spline. Non-Bezier points export
 * their position as both handles.
 */
type SplinePoint struct {
	Co          math.Vec3
	HandleLeft  math.Vec3
	HandleRight math.Vec3
	Tilt        float32
}

/**
 * @brief One spline of a curve object.
 */
type Spline struct {
	Type   SplineType
	Points []SplinePoint
}

/**
 * @brief A curve object: one or more splines.
 */
type Curve struct {
	Name    string
	Splines []*Spline
	Closed  bool
}
