//go:build linux && cgo

package egl

/*
#cgo pkg-config: egl wayland-egl gl
#include <stdlib.h>
#include <EGL/egl.h>
#include <EGL/eglext.h>
#include <wayland-egl.h>
#include <GL/gl.h>

static EGLDisplay shaderbg_platform_display(void *native, int khr)
{
	PFNEGLGETPLATFORMDISPLAYEXTPROC get = (PFNEGLGETPLATFORMDISPLAYEXTPROC)
			eglGetProcAddress(khr ? "eglGetPlatformDisplayKHR" : "eglGetPlatformDisplayEXT");
	if (!get) {
		return EGL_NO_DISPLAY;
	}
	return get(khr ? EGL_PLATFORM_WAYLAND_KHR : EGL_PLATFORM_WAYLAND_EXT, native, NULL);
}

static EGLSurface shaderbg_window_surface(
		EGLDisplay display, EGLConfig config, struct wl_egl_window *window)
{
	return eglCreateWindowSurface(
			display, config, (EGLNativeWindowType)window, NULL);
}
*/
import "C"

import (
	"fmt"
	"slices"
	"strings"
	"unsafe"

	"github.com/cjlester41/shaderbg/compositor"
	"github.com/cjlester41/shaderbg/logging"
	"github.com/cjlester41/shaderbg/output"
)

var (
	_ output.Backend = (*Context)(nil)
	_ output.Chain   = (*Chain)(nil)
)

// NativeSurfaces resolves surface ids to struct wl_surface pointers.
type NativeSurfaces interface {
	NativeSurface(id compositor.SurfaceID) (unsafe.Pointer, bool)
}

// Context is the EGL display and GL context shared by every output.
type Context struct {
	surfaces NativeSurfaces
	log      *logging.Logger
	display  C.EGLDisplay
	config   C.EGLConfig
	context  C.EGLContext
}

// NewContext initializes EGL on the given struct wl_display, creates a
// desktop OpenGL 2.0 context with an RGBA8 window config, and makes it
// current without a surface.
func NewContext(nativeDisplay unsafe.Pointer, surfaces NativeSurfaces, log *logging.Logger) (*Context, error) {
	c := &Context{surfaces: surfaces, log: log}

	exts := strings.Fields(C.GoString(C.eglQueryString(nil, C.EGL_EXTENSIONS)))
	for _, ext := range [...]struct {
		name string
		khr  C.int
	}{
		{"EGL_EXT_platform_wayland", 0},
		{"EGL_KHR_platform_wayland", 1},
	} {
		if c.display == nil && slices.Contains(exts, ext.name) {
			c.display = C.shaderbg_platform_display(nativeDisplay, ext.khr)
		}
	}
	if c.display == nil {
		if !slices.Contains(exts, "EGL_EXT_platform_wayland") && !slices.Contains(exts, "EGL_KHR_platform_wayland") {
			return nil, ErrNoPlatform
		}
		return nil, lastError("eglGetPlatformDisplay")
	}

	var major, minor C.EGLint
	if C.eglInitialize(c.display, &major, &minor) == C.EGL_FALSE {
		return nil, lastError("eglInitialize")
	}
	if C.eglBindAPI(C.EGL_OPENGL_API) == C.EGL_FALSE {
		err := lastError("eglBindAPI")
		c.Close()
		return nil, err
	}

	attribs := [...]C.EGLint{
		C.EGL_SURFACE_TYPE, C.EGL_WINDOW_BIT,
		C.EGL_RED_SIZE, 8,
		C.EGL_GREEN_SIZE, 8,
		C.EGL_BLUE_SIZE, 8,
		C.EGL_ALPHA_SIZE, 8,
		C.EGL_RENDERABLE_TYPE, C.EGL_OPENGL_BIT,
		C.EGL_NONE,
	}
	var n C.EGLint
	if C.eglChooseConfig(c.display, &attribs[0], &c.config, 1, &n) == C.EGL_FALSE {
		err := lastError("eglChooseConfig")
		c.Close()
		return nil, err
	}
	if n < 1 {
		c.Close()
		return nil, ErrNoConfig
	}

	ctxAttribs := [...]C.EGLint{
		C.EGL_CONTEXT_MAJOR_VERSION, 2,
		C.EGL_CONTEXT_MINOR_VERSION, 0,
		C.EGL_NONE,
	}
	c.context = C.eglCreateContext(c.display, c.config, nil, &ctxAttribs[0])
	if c.context == nil {
		err := lastError("eglCreateContext")
		c.Close()
		return nil, err
	}
	if C.eglMakeCurrent(c.display, nil, nil, c.context) == C.EGL_FALSE {
		err := lastError("eglMakeCurrent")
		c.Close()
		return nil, err
	}

	log.Info().
		Str("egl", fmt.Sprintf("%d.%d", major, minor)).
		Str("vendor", glString(C.GL_VENDOR)).
		Str("renderer", glString(C.GL_RENDERER)).
		Str("version", glString(C.GL_VERSION)).
		Str("glsl", glString(C.GL_SHADING_LANGUAGE_VERSION)).
		Log("graphics initialized")

	if err := glError("creating context"); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Close destroys the GL context and terminates the display. Chains and
// programs must be released first.
func (c *Context) Close() {
	if c.display == nil {
		return
	}
	C.eglMakeCurrent(c.display, nil, nil, nil)
	if c.context != nil {
		C.eglDestroyContext(c.display, c.context)
		c.context = nil
	}
	C.eglTerminate(c.display)
	C.eglReleaseThread()
	c.display = nil
}

// CreateChain creates the wl_egl_window and window surface for a
// surface, at the given size.
func (c *Context) CreateChain(id compositor.SurfaceID, width, height int) (output.Chain, error) {
	native, ok := c.surfaces.NativeSurface(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSurface, id)
	}
	window := C.wl_egl_window_create((*C.struct_wl_surface)(native), C.int(width), C.int(height))
	if window == nil {
		return nil, ErrWindow
	}
	surface := C.shaderbg_window_surface(c.display, c.config, window)
	if surface == nil {
		err := lastError("eglCreateWindowSurface")
		C.wl_egl_window_destroy(window)
		return nil, err
	}
	return &Chain{ctx: c, window: window, surface: surface}, nil
}

// Chain is one output's wl_egl_window and EGL window surface.
type Chain struct {
	ctx     *Context
	window  *C.struct_wl_egl_window
	surface C.EGLSurface
}

func (ch *Chain) Resize(width, height int) {
	C.wl_egl_window_resize(ch.window, C.int(width), C.int(height), 0, 0)
}

func (ch *Chain) MakeCurrent() error {
	if C.eglMakeCurrent(ch.ctx.display, ch.surface, ch.surface, ch.ctx.context) == C.EGL_FALSE {
		return lastError("eglMakeCurrent")
	}
	return nil
}

// DisableThrottle sets a swap interval of zero on the current surface,
// so eglSwapBuffers never blocks on the compositor.
func (ch *Chain) DisableThrottle() error {
	if C.eglSwapInterval(ch.ctx.display, 0) == C.EGL_FALSE {
		return lastError("eglSwapInterval")
	}
	return nil
}

func (ch *Chain) Present() error {
	if C.eglSwapBuffers(ch.ctx.display, ch.surface) == C.EGL_FALSE {
		return lastError("eglSwapBuffers")
	}
	return nil
}

func (ch *Chain) DestroySurface() {
	if ch.surface == nil {
		return
	}
	if C.eglGetCurrentSurface(C.EGL_DRAW) == ch.surface {
		C.eglMakeCurrent(ch.ctx.display, nil, nil, ch.ctx.context)
	}
	C.eglDestroySurface(ch.ctx.display, ch.surface)
	ch.surface = nil
}

func (ch *Chain) DestroyWindow() {
	if ch.window == nil {
		return
	}
	C.wl_egl_window_destroy(ch.window)
	ch.window = nil
}

func lastError(op string) error {
	return &Error{Op: op, Code: uint32(C.eglGetError())}
}

func glString(name C.GLenum) string {
	s := C.glGetString(name)
	if s == nil {
		return ""
	}
	return C.GoString((*C.char)(unsafe.Pointer(s)))
}

// glError drains the GL error queue, returning the first error found.
func glError(op string) error {
	var err error
	for code := C.glGetError(); code != C.GL_NO_ERROR; code = C.glGetError() {
		if err == nil {
			err = &Error{Op: op, Code: uint32(code)}
		}
	}
	return err
}
