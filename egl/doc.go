// Package egl renders into Wayland surfaces with EGL and desktop OpenGL.
//
// A Context owns the EGL display, config and GL context shared by every
// output. It implements output.Backend; each Chain pairs a wl_egl_window
// with its EGL window surface. A Program is the compiled user shader and
// implements output.Renderer, drawing into whichever chain is current.
//
// All calls must come from the goroutine that created the Context, which
// must be locked to its OS thread.
package egl
