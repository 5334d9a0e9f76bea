package metadata

import (
	"github.com/spaghettifunk/umbra/engine/math"
)

/**
 * @brief Tags the procedure that tessellated a shape.
 */
type ShapeKind uint8

const (
	SHAPE_KIND_BOX ShapeKind = iota
	SHAPE_KIND_QUAD
	SHAPE_KIND_SPHERE
	SHAPE_KIND_CONE
	SHAPE_KIND_CYLINDER
	SHAPE_KIND_DISC
)

func (k ShapeKind) String() string {
	switch k {
	case SHAPE_KIND_BOX:
		return "box"
	case SHAPE_KIND_QUAD:
		return "quad"
	case SHAPE_KIND_SPHERE:
		return "sphere"
	case SHAPE_KIND_CONE:
		return "cone"
	case SHAPE_KIND_CYLINDER:
		return "cylinder"
	case SHAPE_KIND_DISC:
		return "disc"
	}
	return "unknown"
}

/**
 * @brief A tessellated triangle mesh placed in the world.
 * Vertex attributes are parallel arrays indexed by vertex; Indices holds
 * three entries per triangle. Geometry never changes after construction,
 * only the transform pair may be reassigned through SetTransform.
 */
type Shape struct {
	/** @brief The tessellation procedure that produced this shape. */
	Kind ShapeKind
	/** @brief Object space to world space. */
	Obj2World math.Transform
	/** @brief World space to object space, always the inverse of Obj2World. */
	World2Obj math.Transform

	Positions []math.Point
	Normals   []math.Vector
	TexCoords []math.Vec2
	Indices   []uint32

	/** @brief Backend buffers, created on first draw and kept for the shape's lifetime. */
	Buffers *GeometryBuffers
}

/**
 * @brief Backend handles for a shape's uploaded vertex attributes and indices.
 */
type GeometryBuffers struct {
	Positions *RenderBuffer
	Normals   *RenderBuffer
	TexCoords *RenderBuffer
	Indices   *RenderBuffer
}

// NewShape creates an empty shape of the given kind placed by obj2world.
func NewShape(kind ShapeKind, obj2world math.Transform) *Shape {
	return &Shape{
		Kind:      kind,
		Obj2World: obj2world,
		World2Obj: obj2world.Inverse(),
	}
}

// SetTransform moves the shape, keeping both transforms consistent.
func (s *Shape) SetTransform(obj2world math.Transform) {
	s.Obj2World = obj2world
	s.World2Obj = obj2world.Inverse()
}

// Consistent reports whether World2Obj is still the inverse of Obj2World.
func (s *Shape) Consistent(tolerance float32) bool {
	return s.Obj2World.M.Mul(s.World2Obj.M).Equals(math.NewMat4Identity(), tolerance)
}

func (s *Shape) VertexCount() int {
	return len(s.Positions)
}

func (s *Shape) IndexCount() int {
	return len(s.Indices)
}

func (s *Shape) TriangleCount() int {
	return len(s.Indices) / 3
}

// AddVertex appends one vertex and returns its index.
func (s *Shape) AddVertex(p math.Point, n math.Vector, uv math.Vec2) uint32 {
	s.Positions = append(s.Positions, p)
	s.Normals = append(s.Normals, n)
	s.TexCoords = append(s.TexCoords, uv)
	return uint32(len(s.Positions) - 1)
}

func (s *Shape) AddTriangle(a, b, c uint32) {
	s.Indices = append(s.Indices, a, b, c)
}

// Bounds returns the object-space bounding box.
func (s *Shape) Bounds() math.BoundingBox {
	return math.BoundsFromPoints(s.Positions)
}

// WorldBounds returns the world-space box enclosing the transformed object bounds.
func (s *Shape) WorldBounds() math.BoundingBox {
	return s.Obj2World.TransformBounds(s.Bounds())
}

// PositionData flattens positions to x,y,z triples for upload.
func (s *Shape) PositionData() []float32 {
	out := make([]float32, 0, len(s.Positions)*3)
	for _, p := range s.Positions {
		out = append(out, p.X, p.Y, p.Z)
	}
	return out
}

func (s *Shape) NormalData() []float32 {
	out := make([]float32, 0, len(s.Normals)*3)
	for _, n := range s.Normals {
		out = append(out, n.X, n.Y, n.Z)
	}
	return out
}

func (s *Shape) TexCoordData() []float32 {
	out := make([]float32, 0, len(s.TexCoords)*2)
	for _, uv := range s.TexCoords {
		out = append(out, uv.X, uv.Y)
	}
	return out
}
