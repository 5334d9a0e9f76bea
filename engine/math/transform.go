package math

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/spaghettifunk/umbra/engine/core"
)

/**
 * @brief An affine or projective transform together with its inverse.
 * The inverse is computed at most once: factories that know it in closed
 * form supply it directly, everything else goes through Mat4.Inverse.
 * A singular forward matrix leaves MInv as the zero matrix.
 */
type Transform struct {
	/** @brief The forward matrix. */
	M Mat4
	/** @brief The inverse of M. */
	MInv Mat4
}

/**
 * @brief Wraps m and computes its inverse through the generic cofactor path.
 */
func NewTransform(m Mat4) Transform {
	return Transform{M: m, MInv: m.Inverse()}
}

/**
 * @brief Wraps a matrix whose inverse is already known. The caller is
 * responsible for inv actually being the inverse of m.
 */
func NewTransformWithInverse(m, inv Mat4) Transform {
	return Transform{M: m, MInv: inv}
}

func NewTransformIdentity() Transform {
	return Transform{M: NewMat4Identity(), MInv: NewMat4Identity()}
}

/**
 * @brief Composes two transforms. The result applies other first and t
 * second. Both matrices are composed independently, the inverse in
 * reverse order.
 */
func (t Transform) Mul(other Transform) Transform {
	return Transform{
		M:    t.M.Mul(other.M),
		MInv: other.MInv.Mul(t.MInv),
	}
}

// Inverse swaps the forward and inverse matrices.
func (t Transform) Inverse() Transform {
	return Transform{M: t.MInv, MInv: t.M}
}

func (t Transform) Transpose() Transform {
	return Transform{M: t.M.Transpose(), MInv: t.MInv.Transpose()}
}

func (t Transform) Equals(other Transform, tolerance float32) bool {
	return t.M.Equals(other.M, tolerance)
}

func (t Transform) IsIdentity(tolerance float32) bool {
	return t.M.Equals(NewMat4Identity(), tolerance)
}

// IsConsistent reports whether M * MInv is the identity within tolerance.
func (t Transform) IsConsistent(tolerance float32) bool {
	return t.M.Mul(t.MInv).Equals(NewMat4Identity(), tolerance)
}

/**
 * @brief Transforms a point with the full matrix, including translation.
 * When the resulting w is neither 1 nor 0 the coordinates are divided by it.
 */
func (t Transform) TransformPoint(p Point) Point {
	d := &t.M.Data
	x := d[0]*p.X + d[1]*p.Y + d[2]*p.Z + d[3]
	y := d[4]*p.X + d[5]*p.Y + d[6]*p.Z + d[7]
	z := d[8]*p.X + d[9]*p.Y + d[10]*p.Z + d[11]
	w := d[12]*p.X + d[13]*p.Y + d[14]*p.Z + d[15]
	if w != 1 && w != 0 {
		return Point{x / w, y / w, z / w}
	}
	return Point{x, y, z}
}

/**
 * @brief Transforms a direction with the upper-left 3x3 only. Translation
 * and projection never apply to vectors.
 */
func (t Transform) TransformVector(v Vector) Vector {
	d := &t.M.Data
	return Vector{
		d[0]*v.X + d[1]*v.Y + d[2]*v.Z,
		d[4]*v.X + d[5]*v.Y + d[6]*v.Z,
		d[8]*v.X + d[9]*v.Y + d[10]*v.Z,
	}
}

/**
 * @brief Transforms a surface normal by the transpose of the inverse.
 * The result is not normalized.
 */
func (t Transform) TransformNormal(n Vector) Vector {
	d := &t.MInv.Data
	return Vector{
		d[0]*n.X + d[4]*n.Y + d[8]*n.Z,
		d[1]*n.X + d[5]*n.Y + d[9]*n.Z,
		d[2]*n.X + d[6]*n.Y + d[10]*n.Z,
	}
}

// TransformBounds returns the box enclosing the eight transformed corners of b.
func (t Transform) TransformBounds(b BoundingBox) BoundingBox {
	out := NewBoundingBoxEmpty()
	for _, c := range b.Corners() {
		out = out.UnionPoint(t.TransformPoint(c))
	}
	return out
}

// ------------------------------------------
// Factories
// ------------------------------------------

func Translate(x, y, z float32) Transform {
	m := NewMat4Identity()
	m.Data[3], m.Data[7], m.Data[11] = x, y, z
	inv := NewMat4Identity()
	inv.Data[3], inv.Data[7], inv.Data[11] = -x, -y, -z
	return Transform{M: m, MInv: inv}
}

/**
 * @brief Builds a scale transform. A zero factor has no inverse and is
 * reported as core.ErrSingularTransform.
 */
func Scale(x, y, z float32) (Transform, error) {
	if x == 0 || y == 0 || z == 0 {
		return Transform{}, fmt.Errorf("scale(%g, %g, %g): %w", x, y, z, core.ErrSingularTransform)
	}
	m := NewMat4Identity()
	m.Data[0], m.Data[5], m.Data[10] = x, y, z
	inv := NewMat4Identity()
	inv.Data[0], inv.Data[5], inv.Data[10] = 1/x, 1/y, 1/z
	return Transform{M: m, MInv: inv}, nil
}

// rotation wraps an orthogonal matrix, whose inverse is its transpose.
func rotation(m Mat4) Transform {
	return Transform{M: m, MInv: m.Transpose()}
}

func RotateX(angle float32) Transform {
	s, c := math32.Sincos(angle)
	return rotation(NewMat4([4][4]float32{
		{1, 0, 0, 0},
		{0, c, -s, 0},
		{0, s, c, 0},
		{0, 0, 0, 1},
	}))
}

func RotateY(angle float32) Transform {
	s, c := math32.Sincos(angle)
	return rotation(NewMat4([4][4]float32{
		{c, 0, s, 0},
		{0, 1, 0, 0},
		{-s, 0, c, 0},
		{0, 0, 0, 1},
	}))
}

func RotateZ(angle float32) Transform {
	s, c := math32.Sincos(angle)
	return rotation(NewMat4([4][4]float32{
		{c, -s, 0, 0},
		{s, c, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}))
}

/**
 * @brief Rotates by angle radians around axis, counter-clockwise when the
 * axis points at the viewer. Built in Rodrigues form:
 * cos*I + (1-cos)*a*a^T + sin*[a]x. The axis must already be normalized.
 */
func Rotate(axis Vector, angle float32) Transform {
	s, c := math32.Sincos(angle)
	k := 1 - c
	a := axis
	return rotation(NewMat4([4][4]float32{
		{c + k*a.X*a.X, k*a.X*a.Y - s*a.Z, k*a.X*a.Z + s*a.Y, 0},
		{k*a.Y*a.X + s*a.Z, c + k*a.Y*a.Y, k*a.Y*a.Z - s*a.X, 0},
		{k*a.Z*a.X - s*a.Y, k*a.Z*a.Y + s*a.X, c + k*a.Z*a.Z, 0},
		{0, 0, 0, 1},
	}))
}

/**
 * @brief Builds the world-to-view transform of an observer at pos looking
 * at target. The view space has the observer at the origin looking down -z
 * with up along +y. Returns core.ErrDegenerateBasis when target equals pos
 * or up is parallel to the viewing direction.
 */
func LookAt(pos, target Point, up Vector) (Transform, error) {
	dir := target.Sub(pos)
	if dir.LengthSquared() < K_FLOAT_EPSILON {
		return Transform{}, fmt.Errorf("look direction has zero length: %w", core.ErrDegenerateBasis)
	}
	forward := dir.Normalize()
	side := forward.Cross(up)
	if side.LengthSquared() < K_FLOAT_EPSILON {
		return Transform{}, fmt.Errorf("up vector is parallel to the look direction: %w", core.ErrDegenerateBasis)
	}
	right := side.Normalize()
	trueUp := right.Cross(forward)

	orientation := NewMat4([4][4]float32{
		{right.X, right.Y, right.Z, 0},
		{trueUp.X, trueUp.Y, trueUp.Z, 0},
		{-forward.X, -forward.Y, -forward.Z, 0},
		{0, 0, 0, 1},
	})
	toOrigin := Translate(-pos.X, -pos.Y, -pos.Z)
	return rotation(orientation).Mul(toOrigin), nil
}

/**
 * @brief Maps the view-space box [left,right]x[bottom,top]x[far,near] onto
 * the canonical cube [-1,1]^3 by translating its center to the origin and
 * scaling. The near plane lands on z=-1 and the far plane on z=+1, so
 * smaller depth is nearer, matching a LESS depth test.
 */
func Ortho(right, left, top, bottom, near, far float32) Transform {
	center := Translate(-(right+left)/2, -(top+bottom)/2, -(near+far)/2)
	sx, sy, sz := 2/(right-left), 2/(top-bottom), 2/(far-near)
	scale := Transform{
		M: NewMat4([4][4]float32{
			{sx, 0, 0, 0},
			{0, sy, 0, 0},
			{0, 0, sz, 0},
			{0, 0, 0, 1},
		}),
		MInv: NewMat4([4][4]float32{
			{1 / sx, 0, 0, 0},
			{0, 1 / sy, 0, 0},
			{0, 0, 1 / sz, 0},
			{0, 0, 0, 1},
		}),
	}
	return scale.Mul(center)
}

/**
 * @brief Squashes the view frustum between near and far into the box that
 * Ortho normalizes. Both planes are negative z values; points on them keep
 * their depth after the divide by w. The homogeneous w is -z, positive in
 * front of the camera, which is what clip-space clipping expects.
 */
func PerspectiveToOrtho(near, far float32) Transform {
	n, f := near, far
	return Transform{
		M: NewMat4([4][4]float32{
			{-n, 0, 0, 0},
			{0, -n, 0, 0},
			{0, 0, -(n + f), n * f},
			{0, 0, -1, 0},
		}),
		MInv: NewMat4([4][4]float32{
			{-1 / n, 0, 0, 0},
			{0, -1 / n, 0, 0},
			{0, 0, 0, -1},
			{0, 0, 1 / (n * f), -(n + f) / (n * f)},
		}),
	}
}

// FrustumExtents returns the half height and half width of the near plane.
// aspect is the height-to-width ratio of the image.
func FrustumExtents(fovY, aspect, near float32) (halfHeight, halfWidth float32) {
	t := math32.Abs(math32.Tan(fovY/2) * near)
	return t, t / aspect
}

/**
 * @brief Builds the perspective projection as Ortho * PerspectiveToOrtho.
 */
func Perspective(fovY, aspect, near, far float32) Transform {
	t, r := FrustumExtents(fovY, aspect, near)
	return Ortho(r, -r, t, -t, near, far).Mul(PerspectiveToOrtho(near, far))
}

/**
 * @brief Returns transpose(inverse(t)), the transform that keeps normals
 * perpendicular to surfaces under non-uniform scale and shear.
 */
func NormalTransform(t Transform) Transform {
	return Transform{M: t.MInv.Transpose(), MInv: t.M.Transpose()}
}
