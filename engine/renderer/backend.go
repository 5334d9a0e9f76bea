package renderer

import (
	"github.com/spaghettifunk/umbra/engine/math"
	"github.com/spaghettifunk/umbra/engine/renderer/metadata"
)

/**
 * @brief The graphics API the pipeline drives. Every call is synchronous
 * from the pipeline's point of view; draws appear in submission order.
 */
type RendererBackend interface {
	Initialize() error
	Shutdown() error

	/** @brief Compiles and links a program. The error carries the backend log. */
	ShaderCreate(config *metadata.ShaderConfig) (*metadata.Shader, error)
	ShaderDestroy(shader *metadata.Shader)
	ShaderUse(shader *metadata.Shader) error
	/**
	 * @brief Sets a named parameter. Values are float32, int32, math.Vec3,
	 * math.Vec4 or math.Mat4. Names the program does not read return
	 * core.ErrUnknownUniform.
	 */
	SetUniform(shader *metadata.Shader, name string, value interface{}) error

	/** @brief Uploads []float32 vertex data or []uint32 indices. */
	RenderBufferCreate(bufferType metadata.RenderBufferType, data interface{}) (*metadata.RenderBuffer, error)
	RenderBufferDestroy(buffer *metadata.RenderBuffer)
	/** @brief Feeds a vertex buffer to the named attribute, componentCount floats per vertex. */
	BindAttribute(shader *metadata.Shader, name string, buffer *metadata.RenderBuffer, componentCount uint32) error

	/** @brief Uploads RGBA8 pixels of texture.Width x texture.Height. */
	TextureCreate(texture *metadata.Texture, pixels []uint8) error
	TextureDestroy(texture *metadata.Texture)
	BindTexture(shader *metadata.Shader, name string, unit uint32, texture *metadata.Texture) error

	/**
	 * @brief Creates an off-screen target with a sampleable color attachment
	 * and a depth attachment. Fails with core.ErrRenderTargetIncomplete when
	 * the completeness check does not pass.
	 */
	RenderTargetCreate(name string, width, height uint32) (*metadata.RenderTarget, error)
	RenderTargetDestroy(target *metadata.RenderTarget)
	/** @brief Directs draws to target, or to the visible surface when nil. */
	RenderTargetBind(target *metadata.RenderTarget) error

	Viewport(x, y int32, width, height uint32)
	/** @brief Clears color and depth of the bound target. Depth tests use LESS. */
	Clear(color math.Vec4, depth float32)
	/** @brief Draws count indices as triangles with the bound attributes. */
	DrawIndexed(shader *metadata.Shader, indices *metadata.RenderBuffer, count uint32) error
}

/**
 * @brief The drawable the pipeline renders into. The size is queried every
 * frame since it may change.
 */
type Surface interface {
	Size() (width, height uint32)
}
