// Package wayland binds libwayland-client and the wlr-layer-shell protocol
// through cgo, implementing compositor.Connection and compositor.Shell.
//
// Protocol callbacks run inside libwayland's dispatch. They never call
// back into the presentation core; each one appends a compositor.Event
// to a queue that DispatchPending and Roundtrip drain into the handler
// installed with SetHandler, once libwayland has returned. Handlers may
// therefore issue requests freely.
//
// Only wl_output version 4 or later is bound, as earlier versions carry
// no output name.
package wayland
