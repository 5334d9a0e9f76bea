package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/umbra/engine/core"
)

/**
 * @brief A framebuffer with a float color texture and a depth renderbuffer.
 */
type OpenGLFramebuffer struct {
	Handle uint32
	Color  *OpenGLImage
	Depth  uint32
	Width  uint32
	Height uint32
}

// framebufferCreate builds and validates a framebuffer. On failure nothing
// is left allocated. The caller restores its own framebuffer binding.
func framebufferCreate(width, height uint32) (*OpenGLFramebuffer, error) {
	fb := &OpenGLFramebuffer{Width: width, Height: height}
	fb.Color = imageCreate(width, height, gl.RGBA32F, gl.RGBA, gl.FLOAT, nil)

	gl.GenRenderbuffers(1, &fb.Depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, fb.Depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(width), int32(height))
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)

	gl.GenFramebuffers(1, &fb.Handle)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.Handle)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, fb.Color.Handle, 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, fb.Depth)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		fb.Destroy()
		return nil, fmt.Errorf("framebuffer status 0x%x: %w", status, core.ErrRenderTargetIncomplete)
	}
	return fb, nil
}

func (fb *OpenGLFramebuffer) Destroy() {
	if fb.Handle != 0 {
		gl.DeleteFramebuffers(1, &fb.Handle)
		fb.Handle = 0
	}
	if fb.Depth != 0 {
		gl.DeleteRenderbuffers(1, &fb.Depth)
		fb.Depth = 0
	}
	if fb.Color != nil {
		fb.Color.Destroy()
		fb.Color = nil
	}
}
