package math

import (
	"github.com/chewxy/math32"
)

const (
	/** @brief An approximate representation of PI. */
	K_PI float32 = 3.14159265358979323846
	/** @brief PI multiplied by 2. */
	K_PI_2 float32 = 2.0 * K_PI
	/** @brief PI divided by 2. */
	K_HALF_PI float32 = 0.5 * K_PI
	/** @brief Converts degrees to radians. */
	K_DEG2RAD_MULTIPLIER float32 = K_PI / 180.0
	/** @brief Converts radians to degrees. */
	K_RAD2DEG_MULTIPLIER float32 = 180.0 / K_PI
	/** @brief Smallest positive number where 1.0 + FLOAT_EPSILON != 0 */
	K_FLOAT_EPSILON float32 = 1.192092896e-07
)

// DegToRad converts an angle in degrees to radians.
func DegToRad(degrees float32) float32 {
	return degrees * K_DEG2RAD_MULTIPLIER
}

// RadToDeg converts an angle in radians to degrees.
func RadToDeg(radians float32) float32 {
	return radians * K_RAD2DEG_MULTIPLIER
}

// FloatEquals reports whether a and b differ by at most tolerance.
func FloatEquals(a, b, tolerance float32) bool {
	return math32.Abs(a-b) <= tolerance
}

// ------------------------------------------
// Point
// ------------------------------------------

func NewPoint(x, y, z float32) Point {
	return Point{X: x, Y: y, Z: z}
}

func NewPointOrigin() Point {
	return Point{}
}

/**
 * @brief Displaces the point by the given vector.
 */
func (p Point) Add(v Vector) Point {
	return Point{p.X + v.X, p.Y + v.Y, p.Z + v.Z}
}

/**
 * @brief Adds two points component-wise. Only meaningful for weighted
 * sums such as centroids, where the weights add up to one.
 */
func (p Point) AddPoint(other Point) Point {
	return Point{p.X + other.X, p.Y + other.Y, p.Z + other.Z}
}

/**
 * @brief Returns the vector that leads from other to p.
 */
func (p Point) Sub(other Point) Vector {
	return Vector{p.X - other.X, p.Y - other.Y, p.Z - other.Z}
}

/**
 * @brief Displaces the point by the opposite of the given vector.
 */
func (p Point) SubVector(v Vector) Point {
	return Point{p.X - v.X, p.Y - v.Y, p.Z - v.Z}
}

func (p Point) MulScalar(s float32) Point {
	return Point{p.X * s, p.Y * s, p.Z * s}
}

func (p Point) Negate() Point {
	return Point{-p.X, -p.Y, -p.Z}
}

// Distance returns the Euclidean distance between two points.
func (p Point) Distance(other Point) float32 {
	return p.Sub(other).Length()
}

func (p Point) Compare(other Point, tolerance float32) bool {
	return FloatEquals(p.X, other.X, tolerance) &&
		FloatEquals(p.Y, other.Y, tolerance) &&
		FloatEquals(p.Z, other.Z, tolerance)
}

// ToVector reinterprets the point as the displacement from the origin.
func (p Point) ToVector() Vector {
	return Vector{p.X, p.Y, p.Z}
}

func (p Point) ToVec3() Vec3 {
	return Vec3{p.X, p.Y, p.Z}
}

// ------------------------------------------
// Vector
// ------------------------------------------

func NewVector(x, y, z float32) Vector {
	return Vector{X: x, Y: y, Z: z}
}

func NewVectorUp() Vector {
	return Vector{0, 1, 0}
}

func NewVectorDown() Vector {
	return Vector{0, -1, 0}
}

func NewVectorForward() Vector {
	return Vector{0, 0, -1}
}

func (v Vector) Add(other Vector) Vector {
	return Vector{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

func (v Vector) Sub(other Vector) Vector {
	return Vector{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

/**
 * @brief Multiplies the vectors component by component.
 */
func (v Vector) Mul(other Vector) Vector {
	return Vector{v.X * other.X, v.Y * other.Y, v.Z * other.Z}
}

func (v Vector) MulScalar(s float32) Vector {
	return Vector{v.X * s, v.Y * s, v.Z * s}
}

func (v Vector) Negate() Vector {
	return Vector{-v.X, -v.Y, -v.Z}
}

func (v Vector) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func (v Vector) Length() float32 {
	return math32.Sqrt(v.LengthSquared())
}

/**
 * @brief Returns a unit-length copy of the vector. The result of
 * normalizing a zero vector is NaN in every component; callers that
 * cannot rule that out must check Length first.
 */
func (v Vector) Normalize() Vector {
	length := v.Length()
	return Vector{v.X / length, v.Y / length, v.Z / length}
}

func (v Vector) Dot(other Vector) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

/**
 * @brief Returns the right-handed cross product, so that
 * X.Cross(Y) == Z.
 */
func (v Vector) Cross(other Vector) Vector {
	return Vector{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

func (v Vector) Compare(other Vector, tolerance float32) bool {
	return FloatEquals(v.X, other.X, tolerance) &&
		FloatEquals(v.Y, other.Y, tolerance) &&
		FloatEquals(v.Z, other.Z, tolerance)
}

func (v Vector) ToPoint() Point {
	return Point{v.X, v.Y, v.Z}
}

func (v Vector) ToVec3() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// ------------------------------------------
// Tuples
// ------------------------------------------

func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

func (v Vec3) Mul(other Vec3) Vec3 {
	return Vec3{v.X * other.X, v.Y * other.Y, v.Z * other.Z}
}

func (v Vec3) MulScalar(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) ToVec4(w float32) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

func NewVec4(x, y, z, w float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: w}
}

func (v Vec4) ToVec3() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

func (v Vec4) Add(other Vec4) Vec4 {
	return Vec4{v.X + other.X, v.Y + other.Y, v.Z + other.Z, v.W + other.W}
}

func (v Vec4) MulScalar(s float32) Vec4 {
	return Vec4{v.X * s, v.Y * s, v.Z * s, v.W * s}
}
