package math

// Vec2 represents a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3-component tuple, used for RGB colors and shader parameters.
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector, used for RGBA colors and homogeneous coordinates.
type Vec4 struct {
	X, Y, Z, W float32
}

/**
 * @brief An affine position in 3D space. Points translate under a
 * transform; the difference of two points is a Vector.
 */
type Point struct {
	X, Y, Z float32
}

/**
 * @brief A free direction or displacement in 3D space. Vectors are
 * never translated by a transform.
 */
type Vector struct {
	X, Y, Z float32
}

/**
 * @brief A 4x4 matrix stored row-major: element (row, col) lives at
 * Data[row*4+col]. Matrices act on column vectors, so A.Mul(B) applied
 * to p is A(B(p)).
 */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}

/**
 * @brief An axis-aligned box described by its minimum and maximum corners.
 */
type BoundingBox struct {
	/** @brief The minimum corner of the box. */
	Min Point
	/** @brief The maximum corner of the box. */
	Max Point
}
