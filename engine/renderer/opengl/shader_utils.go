package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/umbra/engine/core"
	"github.com/spaghettifunk/umbra/engine/renderer/metadata"
)

/**
 * @brief A linked program and the locations resolved so far.
 */
type OpenGLProgram struct {
	Handle uint32
	/** @brief Attribute locations, fixed before linking in declaration order. */
	Attributes map[string]uint32
	/** @brief Uniform locations by name; -1 for names the program does not use. */
	Uniforms map[string]int32
}

func (p *OpenGLProgram) uniformLocation(name string) int32 {
	if loc, ok := p.Uniforms[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.Handle, gl.Str(name+"\x00"))
	p.Uniforms[name] = loc
	return loc
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s: %w", strings.TrimRight(log, "\x00"), core.ErrShaderCompile)
	}
	return shader, nil
}

// linkProgram builds a program from config, binding every attribute to the
// location of its index in config.Attributes.
func linkProgram(config *metadata.ShaderConfig) (*OpenGLProgram, error) {
	vertex, err := compileShader(config.VertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return nil, fmt.Errorf("%s vertex stage: %w", config.Name, err)
	}
	defer gl.DeleteShader(vertex)
	fragment, err := compileShader(config.FragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, fmt.Errorf("%s fragment stage: %w", config.Name, err)
	}
	defer gl.DeleteShader(fragment)

	handle := gl.CreateProgram()
	gl.AttachShader(handle, vertex)
	gl.AttachShader(handle, fragment)
	attributes := make(map[string]uint32, len(config.Attributes))
	for i, name := range config.Attributes {
		gl.BindAttribLocation(handle, uint32(i), gl.Str(name+"\x00"))
		attributes[name] = uint32(i)
	}
	gl.LinkProgram(handle)

	var status int32
	gl.GetProgramiv(handle, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(handle, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(handle, logLength, nil, gl.Str(log))
		gl.DeleteProgram(handle)
		return nil, fmt.Errorf("%s link: %s: %w", config.Name, strings.TrimRight(log, "\x00"), core.ErrShaderCompile)
	}
	return &OpenGLProgram{
		Handle:     handle,
		Attributes: attributes,
		Uniforms:   make(map[string]int32),
	}, nil
}
