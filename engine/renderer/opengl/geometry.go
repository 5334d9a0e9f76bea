package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/umbra/engine/renderer/metadata"
)

/**
 * @brief A buffer object holding float32 attributes or uint32 indices.
 */
type OpenGLBuffer struct {
	Handle uint32
	/** @brief GL_ARRAY_BUFFER or GL_ELEMENT_ARRAY_BUFFER. */
	Target       uint32
	ElementCount uint32
}

func bufferCreate(bufferType metadata.RenderBufferType, data interface{}) (*OpenGLBuffer, error) {
	var (
		target uint32
		count  int
		ptr    unsafe.Pointer
	)
	switch bufferType {
	case metadata.RENDERBUFFER_TYPE_VERTEX:
		floats, ok := data.([]float32)
		if !ok {
			return nil, fmt.Errorf("vertex buffer data must be []float32, got %T", data)
		}
		target, count = gl.ARRAY_BUFFER, len(floats)
		if count > 0 {
			ptr = gl.Ptr(floats)
		}
	case metadata.RENDERBUFFER_TYPE_INDEX:
		indices, ok := data.([]uint32)
		if !ok {
			return nil, fmt.Errorf("index buffer data must be []uint32, got %T", data)
		}
		target, count = gl.ELEMENT_ARRAY_BUFFER, len(indices)
		if count > 0 {
			ptr = gl.Ptr(indices)
		}
	default:
		return nil, fmt.Errorf("unknown buffer type %d", bufferType)
	}

	b := &OpenGLBuffer{Target: target, ElementCount: uint32(count)}
	gl.GenBuffers(1, &b.Handle)
	gl.BindBuffer(target, b.Handle)
	// float32 and uint32 are both four bytes.
	gl.BufferData(target, count*4, ptr, gl.STATIC_DRAW)
	return b, nil
}

func (b *OpenGLBuffer) Destroy() {
	if b.Handle != 0 {
		gl.DeleteBuffers(1, &b.Handle)
		b.Handle = 0
	}
}
