package opengl

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

/**
 * @brief A 2D texture object.
 */
type OpenGLImage struct {
	Handle uint32
	Width  uint32
	Height uint32
}

// imageCreate allocates a texture with clamped nearest sampling. pixels may
// be nil to leave the contents undefined.
func imageCreate(width, height uint32, internalFormat int32, format, dataType uint32, pixels []uint8) *OpenGLImage {
	img := &OpenGLImage{Width: width, Height: height}
	gl.GenTextures(1, &img.Handle)
	gl.BindTexture(gl.TEXTURE_2D, img.Handle)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	var data unsafe.Pointer
	if len(pixels) > 0 {
		data = gl.Ptr(pixels)
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, internalFormat, int32(width), int32(height), 0, format, dataType, data)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return img
}

func (img *OpenGLImage) Destroy() {
	if img.Handle != 0 {
		gl.DeleteTextures(1, &img.Handle)
		img.Handle = 0
	}
}
