package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/** @brief A quaternion, used to represent rotational orientation. */
type Quaternion Vec4

/**
 * @brief A 4x4 matrix, used to represent object transformations.
 * Elements are stored row-major with the column-vector convention
 * (points transform as M * v), which is also the element order the
 * Collada <matrix> element expects.
 */
type Mat4 struct {
	/** @brief The matrix elements, Data[row*4+col]. */
	Data [16]float32
}

/**
 * @brief Represents the extents of a 3d object.
 */
type Extents3D struct {
	/** @brief The minimum extents of the object. */
	Min Vec3
	/** @brief The maximum extents of the object. */
	Max Vec3
}

// Union returns the smallest extents enclosing both e and other.
func (e Extents3D) Union(other Extents3D) Extents3D {
	min := func(a, b float32) float32 {
		if a < b {
			return a
		}
		return b
	}
	max := func(a, b float32) float32 {
		if a > b {
			return a
		}
		return b
	}
	return Extents3D{
		Min: Vec3{
			X: min(e.Min.X, other.Min.X),
			Y: min(e.Min.Y, other.Min.Y),
			Z: min(e.Min.Z, other.Min.Z),
		},
		Max: Vec3{
			X: max(e.Max.X, other.Max.X),
			Y: max(e.Max.Y, other.Max.Y),
			Z: max(e.Max.Z, other.Max.Z),
		},
	}
}

/**
 * @brief Represents the transform of an object in the scene.
 * Transforms can have a parent whose own transform is then
 * taken into account.
 */
type Transform struct {
	/** @brief The position relative to the parent. */
	Position Vec3
	/** @brief The rotation relative to the parent. */
	Rotation Quaternion
	/** @brief The scale relative to the parent. */
	Scale Vec3
	/**
	 * @brief Indicates if the position, rotation or scale have changed,
	 * indicating that the local matrix needs to be recalculated.
	 */
	IsDirty bool
	/**
	 * @brief The local transformation matrix, updated whenever
	 * the position, rotation or scale have changed.
	 */
	Local Mat4
	/** @brief A pointer to a parent transform if one is assigned. Can also be null. */
	Parent *Transform
}
