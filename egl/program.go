//go:build linux && cgo

package egl

/*
#define GL_GLEXT_PROTOTYPES 1
#include <stdlib.h>
#include <GL/gl.h>
#include <GL/glext.h>
*/
import "C"

import (
	"unsafe"

	"github.com/cjlester41/shaderbg/output"
	"github.com/cjlester41/shaderbg/pacing"
	"github.com/cjlester41/shaderbg/shader"
)

var _ output.Renderer = (*Program)(nil)

const attribPos = 0

// Program is the linked user shader with the full-screen triangle it is
// drawn over.
type Program struct {
	program    C.GLuint
	vao        C.GLuint
	vbo        C.GLuint
	resolution C.GLint
	time       C.GLint
	timeDelta  C.GLint
	frame      C.GLint
	mouse      C.GLint
}

// Compile builds the program from the fixed vertex stage and the user's
// fragment shader. The context must be current. A compile or link
// failure is a *ShaderError carrying the driver's log.
func (c *Context) Compile(src *shader.Source) (*Program, error) {
	frag, err := compileStage(C.GL_FRAGMENT_SHADER, StageFragment, src.Parts())
	if err != nil {
		return nil, err
	}
	defer C.glDeleteShader(frag)
	vert, err := compileStage(C.GL_VERTEX_SHADER, StageVertex, []string{shader.Vertex})
	if err != nil {
		return nil, err
	}
	defer C.glDeleteShader(vert)

	p := &Program{program: C.glCreateProgram()}
	C.glAttachShader(p.program, frag)
	C.glAttachShader(p.program, vert)
	pos := C.CString("pos")
	C.glBindAttribLocation(p.program, attribPos, (*C.GLchar)(unsafe.Pointer(pos)))
	C.free(unsafe.Pointer(pos))
	C.glLinkProgram(p.program)

	var status C.GLint
	C.glGetProgramiv(p.program, C.GL_LINK_STATUS, &status)
	if status == C.GL_FALSE {
		err := &ShaderError{Stage: StageLink, Log: programLog(p.program)}
		C.glDeleteProgram(p.program)
		return nil, err
	}

	p.resolution = uniform(p.program, shader.UniformResolution)
	p.time = uniform(p.program, shader.UniformTime)
	p.timeDelta = uniform(p.program, shader.UniformTimeDelta)
	p.frame = uniform(p.program, shader.UniformFrame)
	p.mouse = uniform(p.program, shader.UniformMouse)

	C.glGenVertexArrays(1, &p.vao)
	C.glBindVertexArray(p.vao)
	C.glGenBuffers(1, &p.vbo)
	C.glBindBuffer(C.GL_ARRAY_BUFFER, p.vbo)
	C.glBufferData(C.GL_ARRAY_BUFFER, C.GLsizeiptr(unsafe.Sizeof(shader.Triangle)), unsafe.Pointer(&shader.Triangle[0]), C.GL_STATIC_DRAW)
	C.glVertexAttribPointer(attribPos, 2, C.GL_FLOAT, C.GL_FALSE, 0, nil)
	C.glEnableVertexAttribArray(attribPos)

	if err := glError("loading shaders"); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// Render draws one frame into the current surface. iMouse is always
// zero.
func (p *Program) Render(frame pacing.Frame, width, height int) error {
	C.glViewport(0, 0, C.GLsizei(width), C.GLsizei(height))
	C.glClear(C.GL_COLOR_BUFFER_BIT)
	C.glBindVertexArray(p.vao)
	C.glBindBuffer(C.GL_ARRAY_BUFFER, p.vbo)
	C.glUseProgram(p.program)
	C.glVertexAttribPointer(attribPos, 2, C.GL_FLOAT, C.GL_FALSE, 0, nil)

	C.glUniform3f(p.resolution, C.GLfloat(width), C.GLfloat(height), 0)
	C.glUniform1f(p.time, C.GLfloat(frame.Elapsed))
	C.glUniform1f(p.timeDelta, C.GLfloat(frame.Delta))
	C.glUniform1f(p.frame, C.GLfloat(frame.Index))
	C.glUniform4f(p.mouse, 0, 0, 0, 0)
	C.glDrawArrays(C.GL_TRIANGLES, 0, 3)

	return glError("drawing")
}

// Close deletes the GL objects. The context must be current.
func (p *Program) Close() {
	if p.vbo != 0 {
		C.glDeleteBuffers(1, &p.vbo)
		p.vbo = 0
	}
	if p.vao != 0 {
		C.glDeleteVertexArrays(1, &p.vao)
		p.vao = 0
	}
	if p.program != 0 {
		C.glDeleteProgram(p.program)
		p.program = 0
	}
}

func compileStage(kind C.GLenum, stage string, parts []string) (C.GLuint, error) {
	strs := make([]*C.GLchar, len(parts))
	lens := make([]C.GLint, len(parts))
	for i, part := range parts {
		strs[i] = (*C.GLchar)(unsafe.Pointer(C.CString(part)))
		lens[i] = C.GLint(len(part))
	}
	defer func() {
		for _, s := range strs {
			C.free(unsafe.Pointer(s))
		}
	}()

	sh := C.glCreateShader(kind)
	C.glShaderSource(sh, C.GLsizei(len(parts)), &strs[0], &lens[0])
	C.glCompileShader(sh)

	var status C.GLint
	C.glGetShaderiv(sh, C.GL_COMPILE_STATUS, &status)
	if status == C.GL_FALSE {
		err := &ShaderError{Stage: stage, Log: shaderLog(sh)}
		C.glDeleteShader(sh)
		return 0, err
	}
	return sh, nil
}

func shaderLog(sh C.GLuint) string {
	var n C.GLint
	C.glGetShaderiv(sh, C.GL_INFO_LOG_LENGTH, &n)
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	var written C.GLsizei
	C.glGetShaderInfoLog(sh, C.GLsizei(n), &written, (*C.GLchar)(unsafe.Pointer(&buf[0])))
	return string(buf[:written])
}

func programLog(prog C.GLuint) string {
	var n C.GLint
	C.glGetProgramiv(prog, C.GL_INFO_LOG_LENGTH, &n)
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	var written C.GLsizei
	C.glGetProgramInfoLog(prog, C.GLsizei(n), &written, (*C.GLchar)(unsafe.Pointer(&buf[0])))
	return string(buf[:written])
}

func uniform(prog C.GLuint, name string) C.GLint {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return C.glGetUniformLocation(prog, (*C.GLchar)(unsafe.Pointer(cname)))
}
