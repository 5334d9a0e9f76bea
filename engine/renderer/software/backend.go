package software

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/spaghettifunk/umbra/engine/core"
	"github.com/spaghettifunk/umbra/engine/math"
	"github.com/spaghettifunk/umbra/engine/renderer/metadata"
)

/** @brief Largest render target side the backend accepts. */
const MAX_TARGET_SIZE uint32 = 8192

/**
 * @brief One recorded draw call.
 */
type DrawCall struct {
	Program string
	/** @brief Name of the bound render target, empty for the surface. */
	Target   string
	Count    uint32
	Uniforms map[string]interface{}
}

/**
 * @brief A CPU implementation of the renderer backend. Programs are native
 * kernels selected by program name; the GLSL sources are only checked
 * for the attributes and parameters they declare. The default target is an
 * in-memory surface readable through Image.
 */
type Backend struct {
	surface *target
	bound   *target

	viewport struct {
		x, y          int
		width, height int
	}

	shaders  *core.IdentifierPool
	buffers  *core.IdentifierPool
	textures *core.IdentifierPool
	targets  *core.IdentifierPool

	current *program

	recording bool
	draws     []DrawCall
}

type buffer struct {
	floats  []float32
	indices []uint32
}

type attribute struct {
	data []float32
	size int
}

type program struct {
	config     *metadata.ShaderConfig
	kernel     kernel
	uniforms   map[string]interface{}
	attributes map[string]attribute
	samplers   map[string]*texture
}

func New(width, height uint32) *Backend {
	b := &Backend{
		shaders:  core.NewIdentifierPool(),
		buffers:  core.NewIdentifierPool(),
		textures: core.NewIdentifierPool(),
		targets:  core.NewIdentifierPool(),
	}
	b.Resize(width, height)
	return b
}

func (b *Backend) Initialize() error {
	core.LogInfo("software backend ready (%dx%d)", b.surface.width, b.surface.height)
	return nil
}

func (b *Backend) Shutdown() error {
	core.LogInfo("software backend shut down")
	return nil
}

// Size implements renderer.Surface.
func (b *Backend) Size() (uint32, uint32) {
	return uint32(b.surface.width), uint32(b.surface.height)
}

// Resize replaces the surface. Its contents are lost.
func (b *Backend) Resize(width, height uint32) {
	rebind := b.bound == b.surface
	b.surface = newTarget("surface", int(width), int(height))
	if rebind || b.bound == nil {
		b.bound = b.surface
	}
}

// Record turns draw call recording on or off. Turning it off drops the log.
func (b *Backend) Record(on bool) {
	b.recording = on
	if !on {
		b.draws = nil
	}
}

func (b *Backend) Draws() []DrawCall {
	return b.draws
}

func (b *Backend) ResetDraws() {
	b.draws = b.draws[:0]
}

// Image returns the surface as an image, top row first.
func (b *Backend) Image() *image.RGBA {
	return b.surface.color.image()
}

// TargetImage returns a render target's color attachment as an image.
func (b *Backend) TargetImage(t *metadata.RenderTarget) (*image.RGBA, error) {
	tg, err := b.lookupTarget(t)
	if err != nil {
		return nil, err
	}
	return tg.color.image(), nil
}

// Pixel returns the surface color at window coordinates, origin bottom left.
func (b *Backend) Pixel(x, y int) color.RGBA {
	return toRGBA(b.surface.color.at(x, y))
}

// Depth returns the surface depth at window coordinates.
func (b *Backend) Depth(x, y int) float32 {
	return b.surface.depth[y*b.surface.width+x]
}

func (b *Backend) ShaderCreate(config *metadata.ShaderConfig) (*metadata.Shader, error) {
	factory, ok := kernels[config.Name]
	if !ok {
		return nil, fmt.Errorf("no native kernel for program %q: %w", config.Name, core.ErrShaderCompile)
	}
	for _, a := range config.Attributes {
		if !strings.Contains(config.VertexSource, a) {
			return nil, fmt.Errorf("link: attribute %s is not declared by the vertex stage: %w", a, core.ErrShaderCompile)
		}
	}
	p := &program{
		config:     config,
		kernel:     factory(config),
		uniforms:   make(map[string]interface{}),
		attributes: make(map[string]attribute),
		samplers:   make(map[string]*texture),
	}
	s := &metadata.Shader{Name: config.Name, Config: config, InternalData: p}
	s.ID = b.shaders.Acquire(p)
	return s, nil
}

func (b *Backend) ShaderDestroy(shader *metadata.Shader) {
	if err := b.shaders.Release(shader.ID); err != nil {
		core.LogWarn("shader %s: %s", shader.Name, err)
	}
	if b.current != nil && b.current == shader.InternalData {
		b.current = nil
	}
	shader.ID = 0
	shader.InternalData = nil
}

func (b *Backend) ShaderUse(shader *metadata.Shader) error {
	p, err := lookupProgram(shader)
	if err != nil {
		return err
	}
	b.current = p
	return nil
}

func (b *Backend) SetUniform(shader *metadata.Shader, name string, value interface{}) error {
	p, err := lookupProgram(shader)
	if err != nil {
		return err
	}
	base := name
	if i := strings.IndexByte(name, '['); i >= 0 {
		base = name[:i]
	}
	if !strings.Contains(p.config.VertexSource, base) && !strings.Contains(p.config.FragmentSource, base) {
		return fmt.Errorf("%s in program %s: %w", name, p.config.Name, core.ErrUnknownUniform)
	}
	switch value.(type) {
	case float32, int32, math.Vec3, math.Vec4, math.Mat4:
	default:
		return fmt.Errorf("%s: unsupported parameter type %T", name, value)
	}
	p.uniforms[name] = value
	return nil
}

func (b *Backend) RenderBufferCreate(bufferType metadata.RenderBufferType, data interface{}) (*metadata.RenderBuffer, error) {
	buf := &buffer{}
	var count int
	switch bufferType {
	case metadata.RENDERBUFFER_TYPE_VERTEX:
		floats, ok := data.([]float32)
		if !ok {
			return nil, fmt.Errorf("vertex buffer data must be []float32, got %T", data)
		}
		buf.floats = append([]float32(nil), floats...)
		count = len(floats)
	case metadata.RENDERBUFFER_TYPE_INDEX:
		indices, ok := data.([]uint32)
		if !ok {
			return nil, fmt.Errorf("index buffer data must be []uint32, got %T", data)
		}
		buf.indices = append([]uint32(nil), indices...)
		count = len(indices)
	default:
		return nil, fmt.Errorf("buffer type %d: %w", bufferType, core.ErrUnknown)
	}
	rb := &metadata.RenderBuffer{Type: bufferType, ElementCount: uint32(count), InternalData: buf}
	rb.ID = b.buffers.Acquire(buf)
	return rb, nil
}

func (b *Backend) RenderBufferDestroy(rb *metadata.RenderBuffer) {
	if err := b.buffers.Release(rb.ID); err != nil {
		core.LogWarn("render buffer: %s", err)
	}
	rb.ID = 0
	rb.InternalData = nil
}

func (b *Backend) BindAttribute(shader *metadata.Shader, name string, rb *metadata.RenderBuffer, componentCount uint32) error {
	p, err := lookupProgram(shader)
	if err != nil {
		return err
	}
	buf, ok := rb.InternalData.(*buffer)
	if !ok || rb.Type != metadata.RENDERBUFFER_TYPE_VERTEX {
		return fmt.Errorf("attribute %s: not a vertex buffer: %w", name, core.ErrResourceNotFound)
	}
	if componentCount == 0 || componentCount > 4 {
		return fmt.Errorf("attribute %s: %d components", name, componentCount)
	}
	p.attributes[name] = attribute{data: buf.floats, size: int(componentCount)}
	return nil
}

func (b *Backend) TextureCreate(t *metadata.Texture, pixels []uint8) error {
	w, h := int(t.Width), int(t.Height)
	if len(pixels) < w*h*4 {
		return fmt.Errorf("texture %s: %d bytes for %dx%d RGBA", t.Name, len(pixels), w, h)
	}
	tex := newTexture(w, h)
	for i := range tex.pixels {
		tex.pixels[i] = float32(pixels[i]) / 255
	}
	t.InternalData = tex
	t.ID = b.textures.Acquire(tex)
	return nil
}

func (b *Backend) TextureDestroy(t *metadata.Texture) {
	if t.ID == 0 {
		return
	}
	if err := b.textures.Release(t.ID); err != nil {
		core.LogWarn("texture %s: %s", t.Name, err)
	}
	t.ID = 0
	t.InternalData = nil
}

func (b *Backend) BindTexture(shader *metadata.Shader, name string, unit uint32, t *metadata.Texture) error {
	p, err := lookupProgram(shader)
	if err != nil {
		return err
	}
	tex, ok := t.InternalData.(*texture)
	if !ok {
		return fmt.Errorf("texture %s is not resident: %w", t.Name, core.ErrResourceNotFound)
	}
	p.samplers[name] = tex
	return nil
}

func (b *Backend) RenderTargetCreate(name string, width, height uint32) (*metadata.RenderTarget, error) {
	if width == 0 || height == 0 || width > MAX_TARGET_SIZE || height > MAX_TARGET_SIZE {
		return nil, fmt.Errorf("target %s %dx%d: %w", name, width, height, core.ErrRenderTargetIncomplete)
	}
	tg := newTarget(name, int(width), int(height))
	rt := &metadata.RenderTarget{
		Name:   name,
		Width:  width,
		Height: height,
		ColorAttachment: &metadata.Texture{
			Name:         name + "-color",
			Width:        width,
			Height:       height,
			ChannelCount: 4,
			Flags:        metadata.TextureFlagBits(metadata.TextureFlagIsWriteable),
			InternalData: tg.color,
		},
		DepthAttachment: &metadata.Texture{
			Name:         name + "-depth",
			Width:        width,
			Height:       height,
			ChannelCount: 1,
			Flags:        metadata.TextureFlagBits(metadata.TextureFlagIsWriteable | metadata.TextureFlagDepth),
		},
		Complete:            true,
		InternalFramebuffer: tg,
	}
	rt.ColorAttachment.ID = b.textures.Acquire(tg.color)
	rt.ID = b.targets.Acquire(tg)
	return rt, nil
}

func (b *Backend) RenderTargetDestroy(rt *metadata.RenderTarget) {
	tg, err := b.lookupTarget(rt)
	if err != nil {
		core.LogWarn("render target: %s", err)
		return
	}
	if b.bound == tg {
		b.bound = b.surface
	}
	_ = b.textures.Release(rt.ColorAttachment.ID)
	_ = b.targets.Release(rt.ID)
	rt.ColorAttachment.ID = 0
	rt.ColorAttachment.InternalData = nil
	rt.ID = 0
	rt.Complete = false
	rt.InternalFramebuffer = nil
}

func (b *Backend) RenderTargetBind(rt *metadata.RenderTarget) error {
	if rt == nil {
		b.bound = b.surface
		return nil
	}
	tg, err := b.lookupTarget(rt)
	if err != nil {
		return err
	}
	b.bound = tg
	return nil
}

func (b *Backend) Viewport(x, y int32, width, height uint32) {
	b.viewport.x, b.viewport.y = int(x), int(y)
	b.viewport.width, b.viewport.height = int(width), int(height)
}

func (b *Backend) Clear(c math.Vec4, depth float32) {
	b.bound.clear(c, depth)
}

func (b *Backend) DrawIndexed(shader *metadata.Shader, indices *metadata.RenderBuffer, count uint32) error {
	p, err := lookupProgram(shader)
	if err != nil {
		return err
	}
	buf, ok := indices.InternalData.(*buffer)
	if !ok || indices.Type != metadata.RENDERBUFFER_TYPE_INDEX {
		return fmt.Errorf("draw: not an index buffer: %w", core.ErrResourceNotFound)
	}
	if int(count) > len(buf.indices) {
		return fmt.Errorf("draw: %d indices requested, buffer holds %d", count, len(buf.indices))
	}
	if err := p.kernel.prepare(p); err != nil {
		return fmt.Errorf("draw with %s: %w", p.config.Name, err)
	}
	if b.recording {
		b.record(p, count)
	}
	b.rasterize(p, buf.indices[:count])
	return nil
}

func (b *Backend) record(p *program, count uint32) {
	uniforms := make(map[string]interface{}, len(p.uniforms))
	for k, v := range p.uniforms {
		uniforms[k] = v
	}
	name := ""
	if b.bound != b.surface {
		name = b.bound.name
	}
	b.draws = append(b.draws, DrawCall{Program: p.config.Name, Target: name, Count: count, Uniforms: uniforms})
}

func lookupProgram(shader *metadata.Shader) (*program, error) {
	if shader == nil {
		return nil, fmt.Errorf("nil shader: %w", core.ErrResourceNotFound)
	}
	p, ok := shader.InternalData.(*program)
	if !ok {
		return nil, fmt.Errorf("shader %s was destroyed: %w", shader.Name, core.ErrResourceNotFound)
	}
	return p, nil
}

func (b *Backend) lookupTarget(rt *metadata.RenderTarget) (*target, error) {
	tg, ok := rt.InternalFramebuffer.(*target)
	if !ok {
		return nil, fmt.Errorf("target %s: %w", rt.Name, core.ErrResourceNotFound)
	}
	return tg, nil
}
