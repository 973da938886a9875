package compositor

import (
	"errors"
)

// ErrEventsQueued is returned by Connection.PrepareRead when events are
// already buffered and must be dispatched before reading.
var ErrEventsQueued = errors.New("compositor: events already queued")

// Connection is the protocol event source. Flush may return an error
// satisfying errors.Is(err, unix.EAGAIN) when the socket buffer is full;
// callers retry on the next iteration.
//
// After a successful PrepareRead the caller must call exactly one of
// ReadEvents or CancelRead.
type Connection interface {
	Fd() int
	DispatchPending() error
	Flush() error
	PrepareRead() error
	ReadEvents() error
	CancelRead()
	Roundtrip() error
	Close() error
}

// Shell issues the surface requests an output needs. Every destroy call
// is safe to make once per object; the caller guarantees ordering.
type Shell interface {
	// CreateSurface creates a wl_surface.
	CreateSurface() (SurfaceID, error)
	// AssignLayerRole gives the surface a layer-shell role on the output,
	// anchored to all edges with an exclusive zone of -1.
	AssignLayerRole(surface SurfaceID, output GlobalID, layer Layer, namespace string) error
	Commit(surface SurfaceID)
	AckConfigure(surface SurfaceID, serial uint32)
	// RequestFrame requests a frame callback, delivered as FrameDone.
	RequestFrame(surface SurfaceID) (Token, error)
	// DestroyFrame destroys a callback that has not fired yet.
	DestroyFrame(token Token)
	DestroyLayerRole(surface SurfaceID)
	DestroySurface(surface SurfaceID)
	ReleaseOutput(output GlobalID)
}
