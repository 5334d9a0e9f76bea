package renderer

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/umbra/engine/core"
	"github.com/spaghettifunk/umbra/engine/math"
	"github.com/spaghettifunk/umbra/engine/renderer/components"
	"github.com/spaghettifunk/umbra/engine/renderer/metadata"
)

type RendererType uint8

const (
	OpenGL RendererType = iota
	Software
)

func (t RendererType) String() string {
	switch t {
	case OpenGL:
		return "opengl"
	case Software:
		return "software"
	}
	return "unknown"
}

/**
 * @brief Decoded texture delivery. LoadTexture must not block; results
 * arrive on Textures and failed loads never arrive.
 */
type TextureLoader interface {
	LoadTexture(name string)
	Textures() <-chan *metadata.TextureData
}

type Options struct {
	/** @brief Width and height of every directional light's depth target. */
	ShadowResolution uint32
	/** @brief Depth offset of the shadow test. */
	ShadowBias float32
	/** @brief Color the visible surface is cleared to. */
	ClearColor math.Vec4
}

func DefaultOptions() Options {
	return Options{
		ShadowResolution: metadata.DEFAULT_SHADOW_RESOLUTION,
		ShadowBias:       metadata.DEFAULT_SHADOW_BIAS,
		ClearColor:       math.NewVec4(0, 0, 0, 1),
	}
}

/**
 * @brief What one DrawFrame issued.
 */
type FrameStats struct {
	/** @brief Draw calls into depth targets. */
	ShadowDraws int
	/** @brief Draw calls into the visible surface. */
	ShadingDraws int
	/** @brief Primitives left out of the shading pass, e.g. after a shader failure. */
	Skipped int
	Width   uint32
	Height  uint32
}

/**
 * @brief Runs the two-pass pipeline against a backend: depth from every
 * directional light, then phong shading with shadow tests. Backend
 * resources are created on first use and kept on the objects that own them.
 */
type Renderer struct {
	backend RendererBackend
	loader  TextureLoader
	options Options

	programs map[string]*metadata.Shader
	failed   map[string]error

	// textures waiting for or showing pixels from the loader, by asset name
	fileTextures map[string][]*metadata.Texture
}

type shadowCaster struct {
	light    *metadata.DirectionalLight
	viewProj math.Transform
}

func New(backend RendererBackend, loader TextureLoader, options Options) *Renderer {
	if options.ShadowResolution == 0 {
		options.ShadowResolution = metadata.DEFAULT_SHADOW_RESOLUTION
	}
	return &Renderer{
		backend:      backend,
		loader:       loader,
		options:      options,
		programs:     make(map[string]*metadata.Shader),
		failed:       make(map[string]error),
		fileTextures: make(map[string][]*metadata.Texture),
	}
}

func (r *Renderer) Initialize() error {
	if err := r.backend.Initialize(); err != nil {
		return fmt.Errorf("renderer backend: %w", err)
	}
	core.LogInfo("renderer initialized (shadow maps %dx%d)", r.options.ShadowResolution, r.options.ShadowResolution)
	return nil
}

// Shutdown destroys the cached programs and the backend. Resources owned by
// scene objects are released with ReleaseScene.
func (r *Renderer) Shutdown() error {
	for key, s := range r.programs {
		r.backend.ShaderDestroy(s)
		delete(r.programs, key)
	}
	return r.backend.Shutdown()
}

func (r *Renderer) Backend() RendererBackend {
	return r.backend
}

func (r *Renderer) Options() Options {
	return r.options
}

// SetShadowBias and SetClearColor apply from the next frame on.
func (r *Renderer) SetShadowBias(bias float32) {
	r.options.ShadowBias = bias
}

func (r *Renderer) SetClearColor(c math.Vec4) {
	r.options.ClearColor = c
}

/**
 * @brief Renders scene as seen by camera into surface. Shader failures skip
 * the affected primitive and are reported in the stats; an incomplete depth
 * target aborts the frame with an error.
 */
func (r *Renderer) DrawFrame(scene *metadata.Scene, camera *components.Camera, surface Surface) (*FrameStats, error) {
	width, height := surface.Size()
	stats := &FrameStats{Width: width, Height: height}
	r.drainTextures()
	if width == 0 || height == 0 {
		return stats, nil
	}

	if err := r.backend.RenderTargetBind(nil); err != nil {
		return stats, err
	}
	r.backend.Viewport(0, 0, width, height)
	r.backend.Clear(r.options.ClearColor, 1)

	shadows, err := r.shadowPass(scene, stats)
	if err != nil {
		return stats, err
	}

	if err := r.backend.RenderTargetBind(nil); err != nil {
		return stats, err
	}
	r.backend.Viewport(0, 0, width, height)
	lights := prepareLights(scene, camera, shadows)
	for _, prim := range scene.Primitives {
		if err := r.drawShaded(prim, camera, lights); err != nil {
			core.LogError("primitive %s skipped: %s", prim.Name, err)
			stats.Skipped++
			continue
		}
		stats.ShadingDraws++
	}
	return stats, nil
}

// shadowPass renders every primitive's depth into each directional light's
// target and returns the lights that cast shadows this frame.
func (r *Renderer) shadowPass(scene *metadata.Scene, stats *FrameStats) ([]shadowCaster, error) {
	var casters []shadowCaster
	if len(scene.DirectionalLights) == 0 {
		return casters, nil
	}
	depth, err := r.program(ShadowDepthShaderConfig())
	if err != nil {
		core.LogError("shadow pass disabled: %s", err)
	}
	res := r.options.ShadowResolution
	for i, light := range scene.DirectionalLights {
		target, err := r.ShadowTarget(light)
		if err != nil {
			return nil, err
		}
		viewProj, err := light.ViewProjection()
		if err != nil {
			core.LogWarn("directional light %d ignored: %s", i, err)
			continue
		}
		casters = append(casters, shadowCaster{light: light, viewProj: viewProj})

		if err := r.backend.RenderTargetBind(target); err != nil {
			return nil, err
		}
		r.backend.Viewport(0, 0, res, res)
		r.backend.Clear(math.NewVec4(1, 1, 1, 1), 1)
		if depth == nil {
			continue
		}
		if err := r.backend.ShaderUse(depth); err != nil {
			return nil, err
		}
		for _, prim := range scene.Primitives {
			if err := r.drawDepth(depth, viewProj, prim); err != nil {
				core.LogError("primitive %s: no shadow from light %d: %s", prim.Name, i, err)
				continue
			}
			stats.ShadowDraws++
		}
	}
	return casters, nil
}

func (r *Renderer) drawDepth(shader *metadata.Shader, viewProj math.Transform, prim *metadata.Primitive) error {
	buffers, err := r.ensureGeometry(prim.Shape)
	if err != nil {
		return err
	}
	mvp := viewProj.Mul(prim.Shape.Obj2World)
	if err := r.setUniform(shader, UNIFORM_LIGHT_MVP, mvp.M); err != nil {
		return err
	}
	if err := r.backend.BindAttribute(shader, ATTRIBUTE_POSITION, buffers.Positions, 3); err != nil {
		return err
	}
	return r.backend.DrawIndexed(shader, buffers.Indices, uint32(prim.Shape.IndexCount()))
}

func (r *Renderer) drawShaded(prim *metadata.Primitive, camera *components.Camera, lights *frameLights) error {
	config, err := PhongShaderConfig(prim.Material, len(lights.ambient), len(lights.dirDirections), len(lights.pointPositions))
	if err != nil {
		return err
	}
	shader, err := r.program(config)
	if err != nil {
		return err
	}
	buffers, err := r.ensureGeometry(prim.Shape)
	if err != nil {
		return err
	}
	if err := r.backend.ShaderUse(shader); err != nil {
		return err
	}
	if err := r.bindShading(shader, prim, camera, lights); err != nil {
		return err
	}
	attributes := []struct {
		name   string
		buffer *metadata.RenderBuffer
		size   uint32
	}{
		{ATTRIBUTE_POSITION, buffers.Positions, 3},
		{ATTRIBUTE_NORMAL, buffers.Normals, 3},
		{ATTRIBUTE_TEXCOORD, buffers.TexCoords, 2},
	}
	for _, a := range attributes {
		if err := r.backend.BindAttribute(shader, a.name, a.buffer, a.size); err != nil {
			return err
		}
	}
	return r.backend.DrawIndexed(shader, buffers.Indices, uint32(prim.Shape.IndexCount()))
}

/**
 * @brief Returns the compiled program for config, compiling it on first
 * request. A failed compile is remembered and reported once.
 */
func (r *Renderer) program(config *metadata.ShaderConfig) (*metadata.Shader, error) {
	key := config.Key()
	if s, ok := r.programs[key]; ok {
		return s, nil
	}
	if err, ok := r.failed[key]; ok {
		return nil, err
	}
	s, err := r.backend.ShaderCreate(config)
	if err != nil {
		err = fmt.Errorf("program %s: %w", key, err)
		r.failed[key] = err
		core.LogError("%s", err)
		return nil, err
	}
	core.LogDebug("program %s compiled", key)
	r.programs[key] = s
	return s, nil
}

/**
 * @brief Returns the light's depth target, creating it on first use. The
 * target stays with the light until ReleaseScene.
 */
func (r *Renderer) ShadowTarget(light *metadata.DirectionalLight) (*metadata.RenderTarget, error) {
	if light.ShadowTarget != nil {
		return light.ShadowTarget, nil
	}
	res := r.options.ShadowResolution
	target, err := r.backend.RenderTargetCreate("shadow-"+uuid.NewString(), res, res)
	if err != nil {
		return nil, fmt.Errorf("shadow target: %w", err)
	}
	core.LogDebug("created shadow target %s (%dx%d)", target.Name, res, res)
	light.ShadowTarget = target
	return target, nil
}

// ensureGeometry uploads the shape's attributes and indices on first use.
func (r *Renderer) ensureGeometry(shape *metadata.Shape) (*metadata.GeometryBuffers, error) {
	if shape.Buffers != nil {
		return shape.Buffers, nil
	}
	if shape.IndexCount() == 0 {
		return nil, fmt.Errorf("%s shape has no triangles: %w", shape.Kind, core.ErrInvalidShapeParams)
	}
	buffers := &metadata.GeometryBuffers{}
	uploads := []struct {
		dst  **metadata.RenderBuffer
		kind metadata.RenderBufferType
		data interface{}
	}{
		{&buffers.Positions, metadata.RENDERBUFFER_TYPE_VERTEX, shape.PositionData()},
		{&buffers.Normals, metadata.RENDERBUFFER_TYPE_VERTEX, shape.NormalData()},
		{&buffers.TexCoords, metadata.RENDERBUFFER_TYPE_VERTEX, shape.TexCoordData()},
		{&buffers.Indices, metadata.RENDERBUFFER_TYPE_INDEX, shape.Indices},
	}
	for _, u := range uploads {
		b, err := r.backend.RenderBufferCreate(u.kind, u.data)
		if err != nil {
			r.destroyBuffers(buffers)
			return nil, fmt.Errorf("%s geometry upload: %w", shape.Kind, err)
		}
		*u.dst = b
	}
	shape.Buffers = buffers
	return buffers, nil
}

func (r *Renderer) destroyBuffers(b *metadata.GeometryBuffers) {
	for _, buf := range []*metadata.RenderBuffer{b.Positions, b.Normals, b.TexCoords, b.Indices} {
		if buf != nil {
			r.backend.RenderBufferDestroy(buf)
		}
	}
}

/**
 * @brief Destroys the backend resources held by the scene's objects:
 * geometry buffers, material textures and light depth targets.
 */
func (r *Renderer) ReleaseScene(scene *metadata.Scene) {
	for _, prim := range scene.Primitives {
		if prim.Shape.Buffers != nil {
			r.destroyBuffers(prim.Shape.Buffers)
			prim.Shape.Buffers = nil
		}
		if t := prim.Material.Map; t != nil && t.Source.Kind != metadata.TEXTURE_SOURCE_RENDER_TARGET && t.ID != 0 {
			r.backend.TextureDestroy(t)
			r.forgetTexture(t)
		}
	}
	for _, light := range scene.DirectionalLights {
		if light.ShadowTarget != nil {
			r.backend.RenderTargetDestroy(light.ShadowTarget)
			light.ShadowTarget = nil
		}
	}
}

func (r *Renderer) forgetTexture(t *metadata.Texture) {
	if t.Source.Kind != metadata.TEXTURE_SOURCE_FILE {
		return
	}
	t.LoadRequested = false
	list := r.fileTextures[t.Source.Path]
	for i, other := range list {
		if other == t {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(r.fileTextures, t.Source.Path)
		return
	}
	r.fileTextures[t.Source.Path] = list
}
