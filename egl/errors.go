package egl

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoPlatform     = errors.New("egl: no EGL Wayland platform extension found")
	ErrNoConfig       = errors.New("egl: no matching EGL config")
	ErrUnknownSurface = errors.New("egl: unknown surface")
	ErrWindow         = errors.New("egl: failed to create wl_egl_window")
)

// Error is a failed EGL call, or GL errors found after an operation.
type Error struct {
	Op   string
	Code uint32
}

func (e *Error) Error() string {
	return fmt.Sprintf("egl: %s: %s", e.Op, CodeName(e.Code))
}

var codeNames = map[uint32]string{
	0x3000: "EGL_SUCCESS",
	0x3001: "EGL_NOT_INITIALIZED",
	0x3002: "EGL_BAD_ACCESS",
	0x3003: "EGL_BAD_ALLOC",
	0x3004: "EGL_BAD_ATTRIBUTE",
	0x3005: "EGL_BAD_CONFIG",
	0x3006: "EGL_BAD_CONTEXT",
	0x3007: "EGL_BAD_CURRENT_SURFACE",
	0x3008: "EGL_BAD_DISPLAY",
	0x3009: "EGL_BAD_MATCH",
	0x300A: "EGL_BAD_NATIVE_PIXMAP",
	0x300B: "EGL_BAD_NATIVE_WINDOW",
	0x300C: "EGL_BAD_PARAMETER",
	0x300D: "EGL_BAD_SURFACE",
	0x300E: "EGL_CONTEXT_LOST",

	0x0500: "GL_INVALID_ENUM",
	0x0501: "GL_INVALID_VALUE",
	0x0502: "GL_INVALID_OPERATION",
	0x0503: "GL_STACK_OVERFLOW",
	0x0504: "GL_STACK_UNDERFLOW",
	0x0505: "GL_OUT_OF_MEMORY",
	0x0506: "GL_INVALID_FRAMEBUFFER_OPERATION",
}

// CodeName returns the symbolic name of an EGL or GL error code.
func CodeName(code uint32) string {
	if name, ok := codeNames[code]; ok {
		return name
	}
	return fmt.Sprintf("0x%x", code)
}

// Shader stages reported by ShaderError.
const (
	StageVertex   = "vertex"
	StageFragment = "fragment"
	StageLink     = "link"
)

// ShaderError carries the driver's info log for a shader that failed to
// compile or link.
type ShaderError struct {
	Stage string
	Log   string
}

func (e *ShaderError) Error() string {
	var what string
	if e.Stage == StageLink {
		what = "link shader program"
	} else {
		what = "compile " + e.Stage + " shader"
	}
	log := strings.TrimRight(e.Log, "\x00\r\n\t ")
	if log == "" {
		return "egl: failed to " + what
	}
	return "egl: failed to " + what + ":\n" + log
}
