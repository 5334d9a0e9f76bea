package software

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/spaghettifunk/umbra/engine/core"
	"github.com/spaghettifunk/umbra/engine/math"
	"github.com/spaghettifunk/umbra/engine/renderer"
	"github.com/spaghettifunk/umbra/engine/renderer/metadata"
)

/**
 * @brief The native equivalent of a vertex and fragment stage pair.
 * prepare pulls parameters and bindings out of the program before a draw.
 */
type kernel interface {
	prepare(p *program) error
	varyingCount() int
	vertex(index uint32, out []float32) math.Vec4
	fragment(depth float32, in []float32) math.Vec4
}

var kernels = map[string]func(config *metadata.ShaderConfig) kernel{
	renderer.SHADER_NAME_SHADOW_DEPTH: func(*metadata.ShaderConfig) kernel { return &depthKernel{} },
	renderer.SHADER_NAME_PHONG:        newPhongKernel,
}

func (p *program) mat4(name string) (math.Mat4, error) {
	m, ok := p.uniforms[name].(math.Mat4)
	if !ok {
		return math.Mat4{}, fmt.Errorf("parameter %s not set: %w", name, core.ErrResourceNotFound)
	}
	return m, nil
}

func (p *program) vec3(name string, fallback math.Vec3) math.Vec3 {
	if v, ok := p.uniforms[name].(math.Vec3); ok {
		return v
	}
	return fallback
}

func (p *program) attribute(name string, size int) (attribute, error) {
	a, ok := p.attributes[name]
	if !ok {
		return a, fmt.Errorf("attribute %s not bound: %w", name, core.ErrResourceNotFound)
	}
	if a.size != size {
		return a, fmt.Errorf("attribute %s has %d components, want %d", name, a.size, size)
	}
	return a, nil
}

func (a attribute) vec3(index uint32) math.Vec4 {
	i := int(index) * 3
	if i+3 > len(a.data) {
		return math.NewVec4(0, 0, 0, 1)
	}
	return math.NewVec4(a.data[i], a.data[i+1], a.data[i+2], 1)
}

func (a attribute) vec2(index uint32) (float32, float32) {
	i := int(index) * 2
	if i+2 > len(a.data) {
		return 0, 0
	}
	return a.data[i], a.data[i+1]
}

// depthKernel writes window depth into the blue channel.
type depthKernel struct {
	mvp       math.Mat4
	positions attribute
}

func (k *depthKernel) prepare(p *program) (err error) {
	if k.mvp, err = p.mat4(renderer.UNIFORM_LIGHT_MVP); err != nil {
		return err
	}
	k.positions, err = p.attribute(renderer.ATTRIBUTE_POSITION, 3)
	return err
}

func (k *depthKernel) varyingCount() int {
	return 0
}

func (k *depthKernel) vertex(index uint32, _ []float32) math.Vec4 {
	return k.mvp.MulVec4(k.positions.vec3(index))
}

func (k *depthKernel) fragment(depth float32, _ []float32) math.Vec4 {
	return math.NewVec4(0, 0, depth, 1)
}

// Reflection constants of the phong program.
var (
	phongKa        = math.NewVec3(0.1, 0.05, 0.1)
	phongKs        = math.NewVec3(0.5, 0.5, 0.5)
	phongShininess = float32(10)
)

const (
	varyingPosition = 0
	varyingNormal   = 3
	varyingTexCoord = 6
	varyingLights   = 8
)

type phongKernel struct {
	ambientCount, dirCount, pointCount int
	colorSource                        metadata.MaterialKind
	lit                                bool

	modelView, projection, normalMatrix math.Mat4
	eye                                 math.Vector
	color                               math.Vec4
	bias                                float32
	colorMap                            *texture

	ambient        []math.Vec3
	dirDirections  []math.Vector
	dirColors      []math.Vec3
	lightMvps      []math.Mat4
	shadowMaps     []*texture
	pointPositions []math.Vector
	pointColors    []math.Vec3

	positions, normals, texCoords attribute
}

func newPhongKernel(config *metadata.ShaderConfig) kernel {
	return &phongKernel{
		ambientCount: config.Define(renderer.DEFINE_AMBIENT_COUNT),
		dirCount:     config.Define(renderer.DEFINE_DIR_COUNT),
		pointCount:   config.Define(renderer.DEFINE_POINT_COUNT),
		colorSource:  metadata.MaterialKind(config.Define(renderer.DEFINE_COLOR_SOURCE)),
		lit:          config.Define(renderer.DEFINE_LIT) != 0,
	}
}

func toVector(v math.Vec3) math.Vector {
	return math.NewVector(v.X, v.Y, v.Z)
}

func (k *phongKernel) prepare(p *program) (err error) {
	if k.modelView, err = p.mat4(renderer.UNIFORM_MODEL_VIEW); err != nil {
		return err
	}
	if k.projection, err = p.mat4(renderer.UNIFORM_PROJECTION); err != nil {
		return err
	}
	if k.normalMatrix, err = p.mat4(renderer.UNIFORM_NORMAL_MATRIX); err != nil {
		return err
	}
	if k.positions, err = p.attribute(renderer.ATTRIBUTE_POSITION, 3); err != nil {
		return err
	}
	if k.normals, err = p.attribute(renderer.ATTRIBUTE_NORMAL, 3); err != nil {
		return err
	}
	if k.texCoords, err = p.attribute(renderer.ATTRIBUTE_TEXCOORD, 2); err != nil {
		return err
	}
	k.eye = toVector(p.vec3(renderer.UNIFORM_EYE, math.Vec3{}))
	k.color = math.NewVec4(1, 1, 1, 1)
	if c, ok := p.uniforms[renderer.UNIFORM_COLOR].(math.Vec4); ok {
		k.color = c
	}
	k.bias, _ = p.uniforms[renderer.UNIFORM_SHADOW_BIAS].(float32)
	if k.colorSource == metadata.MATERIAL_KIND_TEXTURED {
		if k.colorMap = p.samplers[renderer.UNIFORM_MAP]; k.colorMap == nil {
			return fmt.Errorf("sampler %s not bound: %w", renderer.UNIFORM_MAP, core.ErrResourceNotFound)
		}
	}

	k.ambient = k.ambient[:0]
	for i := 0; i < k.ambientCount; i++ {
		k.ambient = append(k.ambient, p.vec3(renderer.UniformElement(renderer.UNIFORM_AMBIENT_COLORS, i), math.Vec3{}))
	}
	k.dirDirections, k.dirColors = k.dirDirections[:0], k.dirColors[:0]
	k.lightMvps, k.shadowMaps = k.lightMvps[:0], k.shadowMaps[:0]
	for i := 0; i < k.dirCount; i++ {
		dir := p.vec3(renderer.UniformElement(renderer.UNIFORM_DIR_DIRECTIONS, i), math.NewVec3(0, -1, 0))
		k.dirDirections = append(k.dirDirections, toVector(dir))
		k.dirColors = append(k.dirColors, p.vec3(renderer.UniformElement(renderer.UNIFORM_DIR_COLORS, i), math.Vec3{}))
		mvp, err := p.mat4(renderer.UniformElement(renderer.UNIFORM_LIGHT_MVPS, i))
		if err != nil && k.lit {
			return err
		}
		k.lightMvps = append(k.lightMvps, mvp)
		k.shadowMaps = append(k.shadowMaps, p.samplers[renderer.UniformElement(renderer.UNIFORM_SHADOW_MAPS, i)])
	}
	k.pointPositions, k.pointColors = k.pointPositions[:0], k.pointColors[:0]
	for i := 0; i < k.pointCount; i++ {
		k.pointPositions = append(k.pointPositions, toVector(p.vec3(renderer.UniformElement(renderer.UNIFORM_POINT_POSITIONS, i), math.Vec3{})))
		k.pointColors = append(k.pointColors, p.vec3(renderer.UniformElement(renderer.UNIFORM_POINT_COLORS, i), math.Vec3{}))
	}
	return nil
}

func (k *phongKernel) varyingCount() int {
	return varyingLights + 4*k.dirCount
}

func (k *phongKernel) vertex(index uint32, out []float32) math.Vec4 {
	pos := k.positions.vec3(index)
	view := k.modelView.MulVec4(pos)
	n := k.normals.vec3(index)
	n.W = 0
	normal := k.normalMatrix.MulVec4(n)
	u, v := k.texCoords.vec2(index)

	out[varyingPosition], out[varyingPosition+1], out[varyingPosition+2] = view.X, view.Y, view.Z
	out[varyingNormal], out[varyingNormal+1], out[varyingNormal+2] = normal.X, normal.Y, normal.Z
	out[varyingTexCoord], out[varyingTexCoord+1] = u, v
	for i, mvp := range k.lightMvps {
		l := mvp.MulVec4(pos)
		o := out[varyingLights+4*i:]
		o[0], o[1], o[2], o[3] = l.X, l.Y, l.Z, l.W
	}
	return k.projection.MulVec4(view)
}

func (k *phongKernel) fragment(_ float32, in []float32) math.Vec4 {
	n := math.NewVector(in[varyingNormal], in[varyingNormal+1], in[varyingNormal+2]).Normalize()

	var kd math.Vec3
	switch k.colorSource {
	case metadata.MATERIAL_KIND_NORMAL:
		kd = n.ToVec3().MulScalar(0.5).Add(math.NewVec3(0.5, 0.5, 0.5))
	case metadata.MATERIAL_KIND_TEXTURED:
		kd = k.colorMap.sample(in[varyingTexCoord], in[varyingTexCoord+1]).ToVec3()
	default:
		kd = k.color.ToVec3()
	}
	if !k.lit {
		return kd.ToVec4(1)
	}

	position := math.NewVector(in[varyingPosition], in[varyingPosition+1], in[varyingPosition+2])
	e := k.eye.Sub(position).Normalize()
	var c math.Vec3
	for _, a := range k.ambient {
		c = c.Add(phongKa.Mul(a))
	}
	for i, dir := range k.dirDirections {
		l := dir.Normalize().Negate()
		lp := in[varyingLights+4*i:]
		vis := k.visibility(k.shadowMaps[i], math.NewVec4(lp[0], lp[1], lp[2], lp[3]))
		c = c.Add(phong(kd, n, l, e, k.dirColors[i]).MulScalar(vis))
	}
	for i, pos := range k.pointPositions {
		l := pos.Sub(position).Normalize()
		c = c.Add(phong(kd, n, l, e, k.pointColors[i]))
	}
	return c.ToVec4(1)
}

// visibility is 0 when a nearer surface is stored in the shadow map.
func (k *phongKernel) visibility(shadowMap *texture, lightPos math.Vec4) float32 {
	if shadowMap == nil || lightPos.W == 0 {
		return 1
	}
	u := (lightPos.X/lightPos.W + 1) / 2
	v := (lightPos.Y/lightPos.W + 1) / 2
	z := (lightPos.Z/lightPos.W + 1) / 2
	if u < 0 || u > 1 || v < 0 || v > 1 || z > 1 {
		return 1
	}
	if z > shadowMap.sample(u, v).Z+k.bias {
		return 0
	}
	return 1
}

func phong(kd math.Vec3, n, l, e math.Vector, intensity math.Vec3) math.Vec3 {
	diffuse := kd.Mul(intensity).MulScalar(max(n.Dot(l), 0))
	h := l.Add(e).Normalize()
	specular := phongKs.Mul(intensity).MulScalar(math32.Pow(max(n.Dot(h), 0), phongShininess))
	return diffuse.Add(specular)
}
