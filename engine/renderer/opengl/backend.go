package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/umbra/engine/core"
	"github.com/spaghettifunk/umbra/engine/math"
	"github.com/spaghettifunk/umbra/engine/renderer/metadata"
)

/**
 * @brief The OpenGL 4.1 core profile backend. A context must be current on
 * the calling goroutine before Initialize and for every call after it.
 */
type OpenGLRenderer struct {
	context *OpenGLContext
}

func New() *OpenGLRenderer {
	return &OpenGLRenderer{context: &OpenGLContext{}}
}

func (r *OpenGLRenderer) Initialize() error {
	if err := gl.Init(); err != nil {
		core.LogError("failed to initialize gl: %s", err)
		return err
	}
	r.context.Version = gl.GoStr(gl.GetString(gl.VERSION))
	r.context.Renderer = gl.GoStr(gl.GetString(gl.RENDERER))
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &r.context.MaxTextureSize)
	core.LogInfo("OpenGL %s on %s", r.context.Version, r.context.Renderer)

	gl.GenVertexArrays(1, &r.context.VertexArray)
	gl.BindVertexArray(r.context.VertexArray)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.DepthMask(true)
	// Both windings are drawn.
	gl.Disable(gl.CULL_FACE)
	return checkError("initialize")
}

func (r *OpenGLRenderer) Shutdown() error {
	if r.context.VertexArray != 0 {
		gl.BindVertexArray(0)
		gl.DeleteVertexArrays(1, &r.context.VertexArray)
		r.context.VertexArray = 0
	}
	core.LogInfo("OpenGL backend shut down")
	return nil
}

func program(shader *metadata.Shader) (*OpenGLProgram, error) {
	if shader == nil {
		return nil, fmt.Errorf("nil shader: %w", core.ErrResourceNotFound)
	}
	p, ok := shader.InternalData.(*OpenGLProgram)
	if !ok || p.Handle == 0 {
		return nil, fmt.Errorf("shader %s: %w", shader.Name, core.ErrResourceNotFound)
	}
	return p, nil
}

func (r *OpenGLRenderer) ShaderCreate(config *metadata.ShaderConfig) (*metadata.Shader, error) {
	p, err := linkProgram(config)
	if err != nil {
		return nil, err
	}
	return &metadata.Shader{
		ID:           p.Handle,
		Name:         config.Name,
		Config:       config,
		InternalData: p,
	}, nil
}

func (r *OpenGLRenderer) ShaderDestroy(shader *metadata.Shader) {
	p, err := program(shader)
	if err != nil {
		return
	}
	if r.context.CurrentProgram == p.Handle {
		r.context.useProgram(0)
	}
	gl.DeleteProgram(p.Handle)
	p.Handle = 0
	shader.ID = 0
	shader.InternalData = nil
}

func (r *OpenGLRenderer) ShaderUse(shader *metadata.Shader) error {
	p, err := program(shader)
	if err != nil {
		return err
	}
	r.context.useProgram(p.Handle)
	return nil
}

// SetUniform uploads value to the named parameter. Matrices are row-major
// and are transposed on upload.
func (r *OpenGLRenderer) SetUniform(shader *metadata.Shader, name string, value interface{}) error {
	p, err := program(shader)
	if err != nil {
		return err
	}
	loc := p.uniformLocation(name)
	if loc < 0 {
		return fmt.Errorf("%s in %s: %w", name, shader.Name, core.ErrUnknownUniform)
	}
	r.context.useProgram(p.Handle)
	switch v := value.(type) {
	case float32:
		gl.Uniform1f(loc, v)
	case int32:
		gl.Uniform1i(loc, v)
	case math.Vec3:
		gl.Uniform3f(loc, v.X, v.Y, v.Z)
	case math.Vec4:
		gl.Uniform4f(loc, v.X, v.Y, v.Z, v.W)
	case math.Mat4:
		gl.UniformMatrix4fv(loc, 1, true, &v.Data[0])
	default:
		return fmt.Errorf("%s: unsupported parameter type %T", name, value)
	}
	return nil
}

func (r *OpenGLRenderer) RenderBufferCreate(bufferType metadata.RenderBufferType, data interface{}) (*metadata.RenderBuffer, error) {
	b, err := bufferCreate(bufferType, data)
	if err != nil {
		return nil, err
	}
	if err := checkError("buffer upload"); err != nil {
		b.Destroy()
		return nil, err
	}
	return &metadata.RenderBuffer{
		ID:           b.Handle,
		Type:         bufferType,
		ElementCount: b.ElementCount,
		InternalData: b,
	}, nil
}

func (r *OpenGLRenderer) RenderBufferDestroy(buffer *metadata.RenderBuffer) {
	if b, ok := buffer.InternalData.(*OpenGLBuffer); ok {
		b.Destroy()
	}
	buffer.ID = 0
	buffer.InternalData = nil
}

// BindAttribute points the attribute's fixed location at buffer. Attributes
// the program does not declare are an error; attributes the linker dropped
// are not.
func (r *OpenGLRenderer) BindAttribute(shader *metadata.Shader, name string, buffer *metadata.RenderBuffer, componentCount uint32) error {
	p, err := program(shader)
	if err != nil {
		return err
	}
	loc, ok := p.Attributes[name]
	if !ok {
		return fmt.Errorf("attribute %s not declared by %s: %w", name, shader.Name, core.ErrResourceNotFound)
	}
	b, ok := buffer.InternalData.(*OpenGLBuffer)
	if !ok || b.Handle == 0 || b.Target != gl.ARRAY_BUFFER {
		return fmt.Errorf("attribute %s: no vertex buffer: %w", name, core.ErrResourceNotFound)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, b.Handle)
	gl.EnableVertexAttribArray(loc)
	gl.VertexAttribPointerWithOffset(loc, int32(componentCount), gl.FLOAT, false, 0, 0)
	return nil
}

func (r *OpenGLRenderer) TextureCreate(texture *metadata.Texture, pixels []uint8) error {
	if texture.Width == 0 || texture.Height == 0 {
		return fmt.Errorf("texture %s has no size", texture.Name)
	}
	if want := int(texture.Width * texture.Height * 4); len(pixels) != want {
		return fmt.Errorf("texture %s: %d bytes of pixels, want %d", texture.Name, len(pixels), want)
	}
	img := imageCreate(texture.Width, texture.Height, gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE, pixels)
	if err := checkError("texture upload"); err != nil {
		img.Destroy()
		return fmt.Errorf("texture %s: %w", texture.Name, err)
	}
	texture.ID = img.Handle
	texture.ChannelCount = 4
	texture.InternalData = img
	return nil
}

func (r *OpenGLRenderer) TextureDestroy(texture *metadata.Texture) {
	if img, ok := texture.InternalData.(*OpenGLImage); ok {
		img.Destroy()
	}
	texture.ID = 0
	texture.InternalData = nil
}

func (r *OpenGLRenderer) BindTexture(shader *metadata.Shader, name string, unit uint32, texture *metadata.Texture) error {
	p, err := program(shader)
	if err != nil {
		return err
	}
	img, ok := texture.InternalData.(*OpenGLImage)
	if !ok || img.Handle == 0 {
		return fmt.Errorf("texture %s: %w", texture.Name, core.ErrResourceNotFound)
	}
	loc := p.uniformLocation(name)
	if loc < 0 {
		// Sampler optimized away.
		return nil
	}
	r.context.useProgram(p.Handle)
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, img.Handle)
	gl.Uniform1i(loc, int32(unit))
	return nil
}

func (r *OpenGLRenderer) RenderTargetCreate(name string, width, height uint32) (*metadata.RenderTarget, error) {
	if width == 0 || height == 0 || int32(width) > r.context.MaxTextureSize || int32(height) > r.context.MaxTextureSize {
		return nil, fmt.Errorf("render target %s is %dx%d (max %d): %w", name, width, height, r.context.MaxTextureSize, core.ErrRenderTargetIncomplete)
	}
	fb, err := framebufferCreate(width, height)
	// framebufferCreate leaves its own framebuffer bound.
	gl.BindFramebuffer(gl.FRAMEBUFFER, r.context.BoundFramebuffer)
	if err != nil {
		return nil, fmt.Errorf("render target %s: %w", name, err)
	}
	color := &metadata.Texture{
		ID:           fb.Color.Handle,
		Name:         name + "-color",
		Width:        width,
		Height:       height,
		ChannelCount: 4,
		Flags:        metadata.TextureFlagBits(metadata.TextureFlagIsWriteable),
		InternalData: fb.Color,
	}
	depth := &metadata.Texture{
		ID:     fb.Depth,
		Name:   name + "-depth",
		Width:  width,
		Height: height,
		Flags:  metadata.TextureFlagBits(metadata.TextureFlagIsWriteable | metadata.TextureFlagDepth),
	}
	return &metadata.RenderTarget{
		ID:                  fb.Handle,
		Name:                name,
		Width:               width,
		Height:              height,
		ColorAttachment:     color,
		DepthAttachment:     depth,
		Complete:            true,
		InternalFramebuffer: fb,
	}, nil
}

func (r *OpenGLRenderer) RenderTargetDestroy(target *metadata.RenderTarget) {
	fb, ok := target.InternalFramebuffer.(*OpenGLFramebuffer)
	if !ok {
		return
	}
	if r.context.BoundFramebuffer == fb.Handle {
		r.context.bindFramebuffer(0)
	}
	fb.Destroy()
	target.ID = 0
	target.Complete = false
	target.InternalFramebuffer = nil
	if target.ColorAttachment != nil {
		target.ColorAttachment.ID = 0
		target.ColorAttachment.InternalData = nil
	}
}

func (r *OpenGLRenderer) RenderTargetBind(target *metadata.RenderTarget) error {
	if target == nil {
		r.context.bindFramebuffer(0)
		return nil
	}
	fb, ok := target.InternalFramebuffer.(*OpenGLFramebuffer)
	if !ok || fb.Handle == 0 {
		return fmt.Errorf("render target %s: %w", target.Name, core.ErrResourceNotFound)
	}
	r.context.bindFramebuffer(fb.Handle)
	return nil
}

func (r *OpenGLRenderer) Viewport(x, y int32, width, height uint32) {
	gl.Viewport(x, y, int32(width), int32(height))
}

func (r *OpenGLRenderer) Clear(color math.Vec4, depth float32) {
	gl.ClearColor(color.X, color.Y, color.Z, color.W)
	gl.ClearDepth(float64(depth))
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (r *OpenGLRenderer) DrawIndexed(shader *metadata.Shader, indices *metadata.RenderBuffer, count uint32) error {
	p, err := program(shader)
	if err != nil {
		return err
	}
	b, ok := indices.InternalData.(*OpenGLBuffer)
	if !ok || b.Handle == 0 || b.Target != gl.ELEMENT_ARRAY_BUFFER {
		return fmt.Errorf("draw with %s: no index buffer: %w", shader.Name, core.ErrResourceNotFound)
	}
	if count > b.ElementCount {
		return fmt.Errorf("draw with %s: %d indices requested, %d stored", shader.Name, count, b.ElementCount)
	}
	r.context.useProgram(p.Handle)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.Handle)
	gl.DrawElementsWithOffset(gl.TRIANGLES, int32(count), gl.UNSIGNED_INT, 0)
	return checkError("draw " + shader.Name)
}
