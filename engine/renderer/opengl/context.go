package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

/**
 * @brief GL state the backend tracks to avoid redundant binds.
 */
type OpenGLContext struct {
	/** @brief The single vertex array object core profiles require. */
	VertexArray uint32
	/** @brief The program passed to the last UseProgram. */
	CurrentProgram uint32
	/** @brief The framebuffer draws go to. Zero is the window surface. */
	BoundFramebuffer uint32
	/** @brief GL_MAX_TEXTURE_SIZE of the driver. */
	MaxTextureSize int32

	Version  string
	Renderer string
}

func (c *OpenGLContext) useProgram(handle uint32) {
	if c.CurrentProgram != handle {
		gl.UseProgram(handle)
		c.CurrentProgram = handle
	}
}

func (c *OpenGLContext) bindFramebuffer(handle uint32) {
	if c.BoundFramebuffer != handle {
		gl.BindFramebuffer(gl.FRAMEBUFFER, handle)
		c.BoundFramebuffer = handle
	}
}

// checkError drains the GL error queue and reports the first error.
func checkError(op string) error {
	var first uint32
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		if first == 0 {
			first = code
		}
	}
	if first != 0 {
		return fmt.Errorf("%s: gl error 0x%x", op, first)
	}
	return nil
}
