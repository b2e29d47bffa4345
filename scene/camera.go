package scene

/**
 * @brief Camera data. Perspective cameras export yfov/aspect/clip;
 * orthographic cameras export xmag derived from the ortho scale.
 */
type Camera struct {
	Name string

	Perspective bool

	// Full vertical field of view in radians (perspective).
	Angle float32

	// Viewport scale (orthographic).
	OrthoScale float32

	ClipStart float32
	ClipEnd   float32
}
