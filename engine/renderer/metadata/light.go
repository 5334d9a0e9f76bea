package metadata

import (
	"github.com/spaghettifunk/umbra/engine/math"
)

const (
	/** @brief Half size of the square a directional light covers with its shadow map. */
	DEFAULT_SHADOW_EXTENT float32 = 100
	/** @brief Near plane of a directional light's shadow volume, in light view space. */
	DEFAULT_SHADOW_NEAR float32 = -1
	/** @brief Far plane of a directional light's shadow volume, in light view space. */
	DEFAULT_SHADOW_FAR float32 = -1000
)

/**
 * @brief A light with parallel rays that casts shadows. Position and Up
 * only orient the shadow map; shading uses Direction alone.
 */
type DirectionalLight struct {
	Position  math.Point
	Direction math.Vector
	Up        math.Vector
	Color     math.Vec3

	ShadowExtent float32
	ShadowNear   float32
	ShadowFar    float32

	/** @brief The light's private depth target, created on first use. */
	ShadowTarget *RenderTarget
}

func NewDirectionalLight(position math.Point, direction, up math.Vector, color math.Vec3) *DirectionalLight {
	return &DirectionalLight{
		Position:     position,
		Direction:    direction,
		Up:           up,
		Color:        color,
		ShadowExtent: DEFAULT_SHADOW_EXTENT,
		ShadowNear:   DEFAULT_SHADOW_NEAR,
		ShadowFar:    DEFAULT_SHADOW_FAR,
	}
}

// ViewTransform maps world space into the light's view space.
func (l *DirectionalLight) ViewTransform() (math.Transform, error) {
	return math.LookAt(l.Position, l.Position.Add(l.Direction), l.Up)
}

// ProjectionTransform is the orthographic projection of the shadow volume.
func (l *DirectionalLight) ProjectionTransform() math.Transform {
	e := l.ShadowExtent
	return math.Ortho(e, -e, e, -e, l.ShadowNear, l.ShadowFar)
}

// ViewProjection returns projection * view.
func (l *DirectionalLight) ViewProjection() (math.Transform, error) {
	view, err := l.ViewTransform()
	if err != nil {
		return math.Transform{}, err
	}
	return l.ProjectionTransform().Mul(view), nil
}

// LightMVP returns projection * view * obj2world for the given shape.
func (l *DirectionalLight) LightMVP(shape *Shape) (math.Transform, error) {
	vp, err := l.ViewProjection()
	if err != nil {
		return math.Transform{}, err
	}
	return vp.Mul(shape.Obj2World), nil
}

type PointLight struct {
	Position math.Point
	Color    math.Vec3
}

func NewPointLight(position math.Point, color math.Vec3) PointLight {
	return PointLight{Position: position, Color: color}
}
