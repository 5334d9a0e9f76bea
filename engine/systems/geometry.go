package systems

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/spaghettifunk/umbra/engine/core"
	"github.com/spaghettifunk/umbra/engine/math"
	"github.com/spaghettifunk/umbra/engine/renderer/metadata"
)

const (
	// Thickness given to a quad so that it keeps well-defined face normals.
	QuadThickness float32 = 0.1
	// Height given to a disc.
	DiscThickness float32 = 0.01
)

// boxFace describes one side of a box: the outward normal and two half
// edges with u x v pointing along the normal.
type boxFace struct {
	normal math.Vector
	u, v   math.Vector
}

/**
 * @brief Tessellates an a x b x c box centered at the local origin:
 * four vertices per face so that every face has a flat normal, two
 * counter-clockwise triangles per face seen from outside.
 */
func MakeBox(obj2world math.Transform, a, b, c float32) (*metadata.Shape, error) {
	if a <= 0 || b <= 0 || c <= 0 {
		return nil, fmt.Errorf("box %gx%gx%g: %w", a, b, c, core.ErrInvalidShapeParams)
	}
	hx, hy, hz := a/2, b/2, c/2

	faces := [6]boxFace{
		{math.NewVector(0, 0, 1), math.NewVector(hx, 0, 0), math.NewVector(0, hy, 0)},
		{math.NewVector(0, 0, -1), math.NewVector(-hx, 0, 0), math.NewVector(0, hy, 0)},
		{math.NewVector(1, 0, 0), math.NewVector(0, 0, -hz), math.NewVector(0, hy, 0)},
		{math.NewVector(-1, 0, 0), math.NewVector(0, 0, hz), math.NewVector(0, hy, 0)},
		{math.NewVector(0, 1, 0), math.NewVector(hx, 0, 0), math.NewVector(0, 0, -hz)},
		{math.NewVector(0, -1, 0), math.NewVector(hx, 0, 0), math.NewVector(0, 0, hz)},
	}
	extent := math.NewVector(hx, hy, hz)

	shape := metadata.NewShape(metadata.SHAPE_KIND_BOX, obj2world)
	for _, f := range faces {
		center := math.NewPointOrigin().Add(f.normal.Mul(extent))
		v0 := shape.AddVertex(center.SubVector(f.u).SubVector(f.v), f.normal, math.NewVec2(0, 0))
		shape.AddVertex(center.Add(f.u).SubVector(f.v), f.normal, math.NewVec2(1, 0))
		shape.AddVertex(center.Add(f.u).Add(f.v), f.normal, math.NewVec2(1, 1))
		shape.AddVertex(center.SubVector(f.u).Add(f.v), f.normal, math.NewVec2(0, 1))
		shape.AddTriangle(v0, v0+1, v0+2)
		shape.AddTriangle(v0, v0+2, v0+3)
	}
	return shape, nil
}

/**
 * @brief A w x h pane facing +z. It is a box of QuadThickness depth so
 * that both sides carry proper normals.
 */
func MakeQuad(obj2world math.Transform, w, h float32) (*metadata.Shape, error) {
	shape, err := MakeBox(obj2world, w, h, QuadThickness)
	if err != nil {
		return nil, err
	}
	shape.Kind = metadata.SHAPE_KIND_QUAD
	return shape, nil
}

/**
 * @brief Tessellates a UV sphere of the given radius with hSeg latitude
 * bands and wSeg longitude slices: (hSeg+1)*(wSeg+1) vertices and
 * 2*hSeg*wSeg triangles. The seam and pole vertices are duplicated so
 * that texture coordinates stay continuous.
 */
func MakeSphere(obj2world math.Transform, radius float32, hSeg, wSeg int) (*metadata.Shape, error) {
	if radius <= 0 || hSeg < 2 || wSeg < 3 {
		return nil, fmt.Errorf("sphere r=%g h=%d w=%d: %w", radius, hSeg, wSeg, core.ErrInvalidShapeParams)
	}
	shape := metadata.NewShape(metadata.SHAPE_KIND_SPHERE, obj2world)
	for i := 0; i <= hSeg; i++ {
		theta := math.K_PI * float32(i) / float32(hSeg)
		sinTheta, cosTheta := math32.Sincos(theta)
		for j := 0; j <= wSeg; j++ {
			phi := math.K_PI_2 * float32(j) / float32(wSeg)
			sinPhi, cosPhi := math32.Sincos(phi)
			n := math.NewVector(sinTheta*sinPhi, cosTheta, sinTheta*cosPhi)
			uv := math.NewVec2(float32(j)/float32(wSeg), 1-float32(i)/float32(hSeg))
			shape.AddVertex(n.MulScalar(radius).ToPoint(), n, uv)
		}
	}
	stride := uint32(wSeg + 1)
	for i := 0; i < hSeg; i++ {
		for j := 0; j < wSeg; j++ {
			a := uint32(i)*stride + uint32(j)
			b := a + stride
			shape.AddTriangle(a, b, b+1)
			shape.AddTriangle(a, b+1, a+1)
		}
	}
	return shape, nil
}

/**
 * @brief Tessellates a closed cylinder around the local y axis, centered
 * at the origin. Caps and the lateral surface use separate vertices since
 * their normals differ along the rims.
 */
func MakeCylinder(obj2world math.Transform, radius, height float32, segments int) (*metadata.Shape, error) {
	if radius <= 0 || height <= 0 || segments < 3 {
		return nil, fmt.Errorf("cylinder r=%g h=%g seg=%d: %w", radius, height, segments, core.ErrInvalidShapeParams)
	}
	shape := metadata.NewShape(metadata.SHAPE_KIND_CYLINDER, obj2world)
	half := height / 2
	addCap(shape, radius, -half, segments, false)
	addCap(shape, radius, half, segments, true)

	first := uint32(shape.VertexCount())
	for i := 0; i <= segments; i++ {
		s, c := ringAngle(i, segments)
		n := math.NewVector(s, 0, c)
		u := float32(i) / float32(segments)
		shape.AddVertex(math.NewPoint(radius*s, -half, radius*c), n, math.NewVec2(u, 0))
		shape.AddVertex(math.NewPoint(radius*s, half, radius*c), n, math.NewVec2(u, 1))
	}
	for i := uint32(0); i < uint32(segments); i++ {
		bottom := first + 2*i
		top := bottom + 1
		nextBottom := bottom + 2
		nextTop := bottom + 3
		shape.AddTriangle(bottom, nextBottom, nextTop)
		shape.AddTriangle(bottom, nextTop, top)
	}
	return shape, nil
}

/**
 * @brief Tessellates a cone around the local y axis with its base at
 * -height/2 and its apex at +height/2. Each lateral triangle owns its apex
 * vertex so that the apex normal follows the slice.
 */
func MakeCone(obj2world math.Transform, radius, height float32, segments int) (*metadata.Shape, error) {
	if radius <= 0 || height <= 0 || segments < 3 {
		return nil, fmt.Errorf("cone r=%g h=%g seg=%d: %w", radius, height, segments, core.ErrInvalidShapeParams)
	}
	shape := metadata.NewShape(metadata.SHAPE_KIND_CONE, obj2world)
	half := height / 2
	addCap(shape, radius, -half, segments, false)

	slant := func(s, c float32) math.Vector {
		return math.NewVector(height*s, radius, height*c).Normalize()
	}
	first := uint32(shape.VertexCount())
	for i := 0; i <= segments; i++ {
		s, c := ringAngle(i, segments)
		u := float32(i) / float32(segments)
		shape.AddVertex(math.NewPoint(radius*s, -half, radius*c), slant(s, c), math.NewVec2(u, 0))
	}
	for i := 0; i < segments; i++ {
		mid := (float32(i) + 0.5) / float32(segments)
		s, c := math32.Sincos(math.K_PI_2 * mid)
		apex := shape.AddVertex(math.NewPoint(0, half, 0), slant(s, c), math.NewVec2(mid, 1))
		shape.AddTriangle(first+uint32(i), first+uint32(i)+1, apex)
	}
	return shape, nil
}

/**
 * @brief A flat disc facing up: a cylinder of DiscThickness height.
 */
func MakeDisc(obj2world math.Transform, radius float32, segments int) (*metadata.Shape, error) {
	shape, err := MakeCylinder(obj2world, radius, DiscThickness, segments)
	if err != nil {
		return nil, err
	}
	shape.Kind = metadata.SHAPE_KIND_DISC
	return shape, nil
}

// addCap adds a triangle fan closing the cylinder at height y, facing +y
// when up is set and -y otherwise.
func addCap(shape *metadata.Shape, radius, y float32, segments int, up bool) {
	n := math.NewVectorDown()
	if up {
		n = math.NewVectorUp()
	}
	center := shape.AddVertex(math.NewPoint(0, y, 0), n, math.NewVec2(0.5, 0.5))
	for i := 0; i <= segments; i++ {
		s, c := ringAngle(i, segments)
		shape.AddVertex(math.NewPoint(radius*s, y, radius*c), n, math.NewVec2(0.5+s/2, 0.5+c/2))
	}
	for i := uint32(0); i < uint32(segments); i++ {
		cur, next := center+1+i, center+2+i
		if up {
			shape.AddTriangle(center, cur, next)
		} else {
			shape.AddTriangle(center, next, cur)
		}
	}
}

func ringAngle(i, segments int) (sin, cos float32) {
	return math32.Sincos(math.K_PI_2 * float32(i) / float32(segments))
}
