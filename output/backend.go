package output

import (
	"github.com/cjlester41/shaderbg/compositor"
	"github.com/cjlester41/shaderbg/logging"
	"github.com/cjlester41/shaderbg/pacing"
)

// Backend creates presentation chains for surfaces.
type Backend interface {
	CreateChain(surface compositor.SurfaceID, width, height int) (Chain, error)
}

// Chain is the graphics object frames are submitted through. The two
// destroy methods are called once each, DestroySurface first, with the
// layer role destroyed in between.
type Chain interface {
	Resize(width, height int)
	MakeCurrent() error
	// DisableThrottle turns off any swap interval the backend applies,
	// leaving pacing to the scheduler.
	DisableThrottle() error
	Present() error
	// DestroySurface releases the graphics surface.
	DestroySurface()
	// DestroyWindow releases the windowing-integration handle.
	DestroyWindow()
}

// Renderer draws one frame into the current chain, returning any error
// the drawing API reported.
type Renderer interface {
	Render(frame pacing.Frame, width, height int) error
}

// Env carries the collaborators every controller operation needs. It is
// owned by the session and passed explicitly.
type Env struct {
	Shell     compositor.Shell
	Backend   Backend
	Renderer  Renderer
	Logger    *logging.Logger
	Namespace string
	Layer     compositor.Layer
}
