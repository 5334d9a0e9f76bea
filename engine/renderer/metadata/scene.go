package metadata

import (
	"github.com/spaghettifunk/umbra/engine/math"
)

// Primitive pairs a shape with the material it is drawn with.
type Primitive struct {
	Name     string
	Shape    *Shape
	Material Material
}

func NewPrimitive(name string, shape *Shape, material Material) *Primitive {
	return &Primitive{Name: name, Shape: shape, Material: material}
}

// Scene is a flat collection of primitives and lights. Lists keep
// insertion order.
type Scene struct {
	Primitives        []*Primitive
	AmbientLights     []math.Vec3
	DirectionalLights []*DirectionalLight
	PointLights       []PointLight
}

func NewScene() *Scene {
	return &Scene{}
}

func (s *Scene) AddPrimitive(p *Primitive) {
	s.Primitives = append(s.Primitives, p)
}

func (s *Scene) AddAmbientLight(color math.Vec3) {
	s.AmbientLights = append(s.AmbientLights, color)
}

func (s *Scene) AddDirectionalLight(l *DirectionalLight) {
	s.DirectionalLights = append(s.DirectionalLights, l)
}

func (s *Scene) AddPointLight(l PointLight) {
	s.PointLights = append(s.PointLights, l)
}

// Bounds returns the world-space box enclosing every primitive.
func (s *Scene) Bounds() math.BoundingBox {
	b := math.NewBoundingBoxEmpty()
	for _, p := range s.Primitives {
		b = b.Union(p.Shape.WorldBounds())
	}
	return b
}
