package math

/**
 * @brief Creates an identity quaternion.
 */
func NewQuatIdentity() Quaternion {
	return Quaternion{0, 0, 0, 1.0}
}

/**
 * @brief Returns the normal of the provided quaternion.
 */
func (q Quaternion) Normal() float32 {
	return ksqrt(
		q.X*q.X +
			q.Y*q.Y +
			q.Z*q.Z +
			q.W*q.W)
}

/**
 * @brief Returns a normalized copy of the provided quaternion.
 */
func (q Quaternion) Normalize() Quaternion {
	normal := q.Normal()
	return Quaternion{
		q.X / normal,
		q.Y / normal,
		q.Z / normal,
		q.W / normal}
}

/**
 * @brief Returns the conjugate of the provided quaternion. That is,
 * the x, y and z elements are negated, but the w element is untouched.
 */
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{-q.X, -q.Y, -q.Z, q.W}
}

/**
 * @brief Multiplies the provided quaternions.
 */
func (q Quaternion) Mul(other Quaternion) Quaternion {
	out_quaternion := Quaternion{}

	out_quaternion.X = q.X*other.W +
		q.Y*other.Z -
		q.Z*other.Y +
		q.W*other.X

	out_quaternion.Y = -q.X*other.Z +
		q.Y*other.W +
		q.Z*other.X +
		q.W*other.Y

	out_quaternion.Z = q.X*other.Y -
		q.Y*other.X +
		q.Z*other.W +
		q.W*other.Z

	out_quaternion.W = -q.X*other.X -
		q.Y*other.Y -
		q.Z*other.Z +
		q.W*other.W

	return out_quaternion
}

/**
 * @brief Calculates the dot product of the provided quaternions.
 */
func (q Quaternion) Dot(other Quaternion) float32 {
	return q.X*other.X +
		q.Y*other.Y +
		q.Z*other.Z +
		q.W*other.W
}

/**
 * @brief Creates a rotation matrix from the given quaternion.
 */
func (q Quaternion) ToMat4() Mat4 {
	out_matrix := NewMat4Identity()

	n := q.Normalize()

	out_matrix.Data[0] = 1.0 - 2.0*n.Y*n.Y - 2.0*n.Z*n.Z
	out_matrix.Data[1] = 2.0*n.X*n.Y - 2.0*n.Z*n.W
	out_matrix.Data[2] = 2.0*n.X*n.Z + 2.0*n.Y*n.W

	out_matrix.Data[4] = 2.0*n.X*n.Y + 2.0*n.Z*n.W
	out_matrix.Data[5] = 1.0 - 2.0*n.X*n.X - 2.0*n.Z*n.Z
	out_matrix.Data[6] = 2.0*n.Y*n.Z - 2.0*n.X*n.W

	out_matrix.Data[8] = 2.0*n.X*n.Z - 2.0*n.Y*n.W
	out_matrix.Data[9] = 2.0*n.Y*n.Z + 2.0*n.X*n.W
	out_matrix.Data[10] = 1.0 - 2.0*n.X*n.X - 2.0*n.Y*n.Y

	return out_matrix
}

/**
 * @brief Creates a quaternion from the given axis and angle.
 *
 * @param axis The axis of rotation.
 * @param angle The angle of rotation in radians.
 * @param normalize Indicates if the quaternion should be normalized.
 * @return A new quaternion.
 */
func NewQuatFromAxisAngle(axis Vec3, angle float32, normalize bool) Quaternion {
	half_angle := 0.5 * angle
	s := ksin(half_angle)
	c := kcos(half_angle)

	q := Quaternion{s * axis.X, s * axis.Y, s * axis.Z, c}
	if normalize {
		return q.Normalize()
	}
	return q
}

/**
 * @brief Calculates spherical linear interpolation of a given percentage
 * between two quaternions.
 */
func (q Quaternion) Slerp(other Quaternion, percentage float32) Quaternion {
	// Only unit quaternions are valid rotations.
	// Normalize to avoid undefined behavior.
	v0 := q.Normalize()
	v1 := other.Normalize()

	dot := v0.Dot(v1)

	// If the dot product is negative, slerp won't take the shorter
	// path. Note that v1 and -v1 are equivalent when the negation is
	// applied to all four components. Fix by reversing one quaternion.
	if dot < 0.0 {
		v1.X = -v1.X
		v1.Y = -v1.Y
		v1.Z = -v1.Z
		v1.W = -v1.W
		dot = -dot
	}

	const dotThreshold = float32(0.9995)
	if dot > dotThreshold {
		// If the inputs are too close for comfort, linearly interpolate
		// and normalize the result.
		qt := Quaternion{
			v0.X + ((v1.X - v0.X) * percentage),
			v0.Y + ((v1.Y - v0.Y) * percentage),
			v0.Z + ((v1.Z - v0.Z) * percentage),
			v0.W + ((v1.W - v0.W) * percentage)}

		return qt.Normalize()
	}

	theta_0 := kacos(dot)
	theta := theta_0 * percentage
	sin_theta := ksin(theta)
	sin_theta_0 := ksin(theta_0)

	s0 := kcos(theta) - dot*sin_theta/sin_theta_0
	s1 := sin_theta / sin_theta_0

	return Quaternion{
		(v0.X * s0) + (v1.X * s1),
		(v0.Y * s0) + (v1.Y * s1),
		(v0.Z * s0) + (v1.Z * s1),
		(v0.W * s0) + (v1.W * s1)}
}
