package compositor

// GlobalID is the name the compositor assigns to a global in the
// registry. Outputs are keyed by it for their whole lifetime.
type GlobalID uint32

// SurfaceID identifies a wl_surface created on behalf of an output.
// Zero is never a valid surface.
type SurfaceID uint64

// Token identifies an outstanding frame callback. Zero is never a valid
// token.
type Token uint64

// Event is one of the closed set of compositor events below. Handlers
// dispatch on the concrete type with a type switch.
type Event interface {
	isEvent()
}

// OutputAdded reports a wl_output global that was bound by the client.
type OutputAdded struct {
	Global GlobalID
}

// OutputRemoved reports the removal of a global. It is delivered for
// every global_remove, including globals that are not outputs.
type OutputRemoved struct {
	Global GlobalID
}

// OutputNamed carries the wl_output.name event.
type OutputNamed struct {
	Name   string
	Global GlobalID
}

// OutputDone carries the wl_output.done event, after which the output's
// properties are complete.
type OutputDone struct {
	Global GlobalID
}

// SurfaceConfigured carries zwlr_layer_surface_v1.configure. Width or
// Height are zero when the compositor leaves that dimension to the
// client.
type SurfaceConfigured struct {
	Surface SurfaceID
	Serial  uint32
	Width   uint32
	Height  uint32
}

// SurfaceClosed carries zwlr_layer_surface_v1.closed.
type SurfaceClosed struct {
	Surface SurfaceID
}

// FrameDone reports that the compositor released a frame callback.
type FrameDone struct {
	Surface SurfaceID
	Token   Token
}

func (OutputAdded) isEvent()       {}
func (OutputRemoved) isEvent()     {}
func (OutputNamed) isEvent()       {}
func (OutputDone) isEvent()        {}
func (SurfaceConfigured) isEvent() {}
func (SurfaceClosed) isEvent()     {}
func (FrameDone) isEvent()         {}

// Handler receives events in arrival order.
type Handler func(Event)
