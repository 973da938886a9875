//go:build linux && cgo

package wayland

/*
#cgo pkg-config: wayland-client
#include <stdlib.h>
#include <errno.h>
#include "listeners.h"
*/
import "C"

import (
	"fmt"
	"runtime/cgo"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/cjlester41/shaderbg/compositor"
	"github.com/cjlester41/shaderbg/logging"
)

const (
	compositorVersion = 4
	layerShellVersion = 1
	// outputVersion is the first wl_output version with the name event.
	outputVersion = 4

	anchorAll = C.ZWLR_LAYER_SURFACE_V1_ANCHOR_TOP |
		C.ZWLR_LAYER_SURFACE_V1_ANCHOR_BOTTOM |
		C.ZWLR_LAYER_SURFACE_V1_ANCHOR_LEFT |
		C.ZWLR_LAYER_SURFACE_V1_ANCHOR_RIGHT
)

var (
	_ compositor.Connection = (*Display)(nil)
	_ compositor.Shell      = (*Display)(nil)
)

// Display is a client connection to the compositor. It must only be used
// from one goroutine, and not after Close.
type Display struct {
	display    *C.struct_wl_display
	registry   *C.struct_wl_registry
	compositor *C.struct_wl_compositor
	layerShell *C.struct_zwlr_layer_shell_v1
	log        *logging.Logger
	handler    compositor.Handler
	// queue holds events recorded by protocol callbacks, not yet handed
	// to the handler.
	queue     []compositor.Event
	outputs   map[compositor.GlobalID]*C.struct_wl_output
	outputIDs map[*C.struct_wl_output]compositor.GlobalID
	surfaces  map[compositor.SurfaceID]*surface
	roles     map[*C.struct_zwlr_layer_surface_v1]compositor.SurfaceID
	callbacks map[*C.struct_wl_callback]frameCallback
	tokens    map[compositor.Token]*C.struct_wl_callback
	handle    cgo.Handle
	lastID    compositor.SurfaceID
	lastToken compositor.Token
}

type surface struct {
	wl   *C.struct_wl_surface
	role *C.struct_zwlr_layer_surface_v1
}

type frameCallback struct {
	surface compositor.SurfaceID
	token   compositor.Token
}

// Connect opens the display named by WAYLAND_DISPLAY and binds the
// globals announced during one roundtrip. It fails with a
// *MissingGlobalsError unless both wl_compositor and zwlr_layer_shell_v1
// were announced. OutputAdded events for the outputs found so far are
// held until the handler is set.
func Connect(log *logging.Logger) (*Display, error) {
	display, err := C.wl_display_connect(nil)
	if display == nil {
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConnect, err)
		}
		return nil, ErrConnect
	}

	d := &Display{
		display:   display,
		log:       log,
		outputs:   make(map[compositor.GlobalID]*C.struct_wl_output),
		outputIDs: make(map[*C.struct_wl_output]compositor.GlobalID),
		surfaces:  make(map[compositor.SurfaceID]*surface),
		roles:     make(map[*C.struct_zwlr_layer_surface_v1]compositor.SurfaceID),
		callbacks: make(map[*C.struct_wl_callback]frameCallback),
		tokens:    make(map[compositor.Token]*C.struct_wl_callback),
	}
	d.handle = cgo.NewHandle(d)

	d.registry = C.wl_display_get_registry(display)
	if d.registry == nil {
		_ = d.Close()
		return nil, fmt.Errorf("%w: wl_registry", ErrCreateObject)
	}
	C.shaderbg_registry_listen(d.registry, C.uintptr_t(d.handle))

	ret, err := C.wl_display_roundtrip(display)
	if err := d.check("roundtrip", ret, err); err != nil {
		_ = d.Close()
		return nil, err
	}

	var missing []string
	if d.compositor == nil {
		missing = append(missing, "wl_compositor")
	}
	if d.layerShell == nil {
		missing = append(missing, "zwlr_layer_shell_v1")
	}
	if missing != nil {
		_ = d.Close()
		return nil, &MissingGlobalsError{Interfaces: missing}
	}

	d.log.Debug().
		Int("outputs", len(d.outputs)).
		Log("connected to compositor")
	return d, nil
}

// SetHandler installs the function that receives every event. Events
// are held until a handler is set.
func (d *Display) SetHandler(h compositor.Handler) {
	d.handler = h
}

// NativeDisplay returns the struct wl_display pointer, for EGL.
func (d *Display) NativeDisplay() unsafe.Pointer {
	return unsafe.Pointer(d.display)
}

// NativeSurface returns the struct wl_surface pointer of a live surface.
func (d *Display) NativeSurface(id compositor.SurfaceID) (unsafe.Pointer, bool) {
	s, ok := d.surfaces[id]
	if !ok {
		return nil, false
	}
	return unsafe.Pointer(s.wl), true
}

func (d *Display) Fd() int {
	return int(C.wl_display_get_fd(d.display))
}

func (d *Display) DispatchPending() error {
	ret, err := C.wl_display_dispatch_pending(d.display)
	if err := d.check("dispatch", ret, err); err != nil {
		return err
	}
	d.deliver()
	return nil
}

func (d *Display) Flush() error {
	ret, err := C.wl_display_flush(d.display)
	return d.check("flush", ret, err)
}

func (d *Display) PrepareRead() error {
	if len(d.queue) != 0 && d.handler != nil {
		return compositor.ErrEventsQueued
	}
	if C.wl_display_prepare_read(d.display) != 0 {
		return compositor.ErrEventsQueued
	}
	return nil
}

func (d *Display) ReadEvents() error {
	ret, err := C.wl_display_read_events(d.display)
	return d.check("read", ret, err)
}

func (d *Display) CancelRead() {
	C.wl_display_cancel_read(d.display)
}

func (d *Display) Roundtrip() error {
	ret, err := C.wl_display_roundtrip(d.display)
	if err := d.check("roundtrip", ret, err); err != nil {
		return err
	}
	d.deliver()
	return nil
}

// Close destroys every object still alive and disconnects.
func (d *Display) Close() error {
	if d.display == nil {
		return ErrClosed
	}
	for cb := range d.callbacks {
		C.wl_callback_destroy(cb)
	}
	for role := range d.roles {
		C.zwlr_layer_surface_v1_destroy(role)
	}
	for _, s := range d.surfaces {
		C.wl_surface_destroy(s.wl)
	}
	for _, o := range d.outputs {
		C.wl_output_release(o)
	}
	clear(d.callbacks)
	clear(d.tokens)
	clear(d.roles)
	clear(d.surfaces)
	clear(d.outputs)
	clear(d.outputIDs)
	d.queue = nil

	if d.layerShell != nil {
		C.zwlr_layer_shell_v1_destroy(d.layerShell)
	}
	if d.compositor != nil {
		C.wl_compositor_destroy(d.compositor)
	}
	if d.registry != nil {
		C.wl_registry_destroy(d.registry)
	}
	C.wl_display_flush(d.display)
	C.wl_display_disconnect(d.display)
	d.display = nil
	d.handle.Delete()
	return nil
}

func (d *Display) deliver() {
	for len(d.queue) != 0 && d.handler != nil {
		ev := d.queue[0]
		d.queue[0] = nil
		d.queue = d.queue[1:]
		d.handler(ev)
	}
}

// check converts a failed libwayland call into an error, preferring the
// fatal display error over the call's errno.
func (d *Display) check(op string, ret C.int, errno error) error {
	if ret >= 0 {
		return nil
	}
	if err := d.displayError(); err != nil {
		return fmt.Errorf("wayland: %s: %w", op, err)
	}
	if errno != nil {
		return fmt.Errorf("wayland: %s: %w", op, errno)
	}
	return fmt.Errorf("wayland: %s failed", op)
}

func (d *Display) displayError() error {
	code := C.wl_display_get_error(d.display)
	switch code {
	case 0:
		return nil
	case C.EPROTO:
		var iface *C.struct_wl_interface
		var id C.uint32_t
		e := &ProtocolError{Code: uint32(C.wl_display_get_protocol_error(d.display, &iface, &id))}
		e.ID = uint32(id)
		if iface != nil {
			e.Interface = C.GoString(iface.name)
		}
		return e
	default:
		return unix.Errno(code)
	}
}

// --- compositor.Shell ---

func (d *Display) CreateSurface() (compositor.SurfaceID, error) {
	wl := C.wl_compositor_create_surface(d.compositor)
	if wl == nil {
		return 0, fmt.Errorf("%w: wl_surface", ErrCreateObject)
	}
	d.lastID++
	d.surfaces[d.lastID] = &surface{wl: wl}
	return d.lastID, nil
}

func (d *Display) AssignLayerRole(id compositor.SurfaceID, out compositor.GlobalID, layer compositor.Layer, namespace string) error {
	s, ok := d.surfaces[id]
	if !ok {
		return fmt.Errorf("%w: surface %d", ErrUnknownID, id)
	}
	o, ok := d.outputs[out]
	if !ok {
		return fmt.Errorf("%w: output %d", ErrUnknownID, out)
	}

	ns := C.CString(namespace)
	defer C.free(unsafe.Pointer(ns))
	role := C.zwlr_layer_shell_v1_get_layer_surface(d.layerShell, s.wl, o, C.uint32_t(layer), ns)
	if role == nil {
		return fmt.Errorf("%w: zwlr_layer_surface_v1", ErrCreateObject)
	}
	C.shaderbg_layer_surface_listen(role, C.uintptr_t(d.handle))
	C.zwlr_layer_surface_v1_set_anchor(role, C.uint32_t(anchorAll))
	C.zwlr_layer_surface_v1_set_exclusive_zone(role, -1)

	s.role = role
	d.roles[role] = id
	return nil
}

func (d *Display) Commit(id compositor.SurfaceID) {
	if s, ok := d.surfaces[id]; ok {
		C.wl_surface_commit(s.wl)
	}
}

func (d *Display) AckConfigure(id compositor.SurfaceID, serial uint32) {
	if s, ok := d.surfaces[id]; ok && s.role != nil {
		C.zwlr_layer_surface_v1_ack_configure(s.role, C.uint32_t(serial))
	}
}

// RequestFrame requests a frame callback on the surface's next commit.
// The callback object is destroyed once it fires.
func (d *Display) RequestFrame(id compositor.SurfaceID) (compositor.Token, error) {
	s, ok := d.surfaces[id]
	if !ok {
		return 0, fmt.Errorf("%w: surface %d", ErrUnknownID, id)
	}
	cb := C.wl_surface_frame(s.wl)
	if cb == nil {
		return 0, fmt.Errorf("%w: wl_callback", ErrCreateObject)
	}
	C.shaderbg_callback_listen(cb, C.uintptr_t(d.handle))
	d.lastToken++
	d.callbacks[cb] = frameCallback{surface: id, token: d.lastToken}
	d.tokens[d.lastToken] = cb
	return d.lastToken, nil
}

func (d *Display) DestroyFrame(token compositor.Token) {
	cb, ok := d.tokens[token]
	if !ok {
		return
	}
	C.wl_callback_destroy(cb)
	delete(d.tokens, token)
	delete(d.callbacks, cb)
}

func (d *Display) DestroyLayerRole(id compositor.SurfaceID) {
	s, ok := d.surfaces[id]
	if !ok || s.role == nil {
		return
	}
	C.zwlr_layer_surface_v1_destroy(s.role)
	delete(d.roles, s.role)
	s.role = nil
}

func (d *Display) DestroySurface(id compositor.SurfaceID) {
	s, ok := d.surfaces[id]
	if !ok {
		return
	}
	C.wl_surface_destroy(s.wl)
	delete(d.surfaces, id)
}

func (d *Display) ReleaseOutput(out compositor.GlobalID) {
	o, ok := d.outputs[out]
	if !ok {
		return
	}
	C.wl_output_release(o)
	delete(d.outputs, out)
	delete(d.outputIDs, o)
}

// --- protocol callbacks, see callbacks.go ---

func (d *Display) global(registry *C.struct_wl_registry, name uint32, iface string, version uint32) {
	switch iface {
	case "wl_compositor":
		if d.compositor == nil {
			d.compositor = (*C.struct_wl_compositor)(C.wl_registry_bind(registry, C.uint32_t(name), &C.wl_compositor_interface, C.uint32_t(min(version, compositorVersion))))
		}

	case "zwlr_layer_shell_v1":
		if d.layerShell == nil {
			d.layerShell = (*C.struct_zwlr_layer_shell_v1)(C.wl_registry_bind(registry, C.uint32_t(name), &C.zwlr_layer_shell_v1_interface, layerShellVersion))
		}

	case "wl_output":
		if version < outputVersion {
			d.log.Debug().
				Uint64("global", uint64(name)).
				Uint64("version", uint64(version)).
				Log("output ignored, version too old to report its name")
			return
		}
		o := (*C.struct_wl_output)(C.wl_registry_bind(registry, C.uint32_t(name), &C.wl_output_interface, outputVersion))
		if o == nil {
			d.log.Warning().Uint64("global", uint64(name)).Log("failed to bind output")
			return
		}
		C.shaderbg_output_listen(o, C.uintptr_t(d.handle))
		g := compositor.GlobalID(name)
		d.outputs[g] = o
		d.outputIDs[o] = g
		d.queue = append(d.queue, compositor.OutputAdded{Global: g})
	}
}

func (d *Display) globalRemove(name uint32) {
	if _, ok := d.outputs[compositor.GlobalID(name)]; ok {
		d.queue = append(d.queue, compositor.OutputRemoved{Global: compositor.GlobalID(name)})
	}
}

func (d *Display) outputName(o *C.struct_wl_output, name string) {
	if g, ok := d.outputIDs[o]; ok {
		d.queue = append(d.queue, compositor.OutputNamed{Global: g, Name: name})
	}
}

func (d *Display) outputDone(o *C.struct_wl_output) {
	if g, ok := d.outputIDs[o]; ok {
		d.queue = append(d.queue, compositor.OutputDone{Global: g})
	}
}

func (d *Display) layerSurfaceConfigure(role *C.struct_zwlr_layer_surface_v1, serial, width, height uint32) {
	if id, ok := d.roles[role]; ok {
		d.queue = append(d.queue, compositor.SurfaceConfigured{
			Surface: id,
			Serial:  serial,
			Width:   width,
			Height:  height,
		})
	}
}

func (d *Display) layerSurfaceClosed(role *C.struct_zwlr_layer_surface_v1) {
	if id, ok := d.roles[role]; ok {
		d.queue = append(d.queue, compositor.SurfaceClosed{Surface: id})
	}
}

func (d *Display) frameDone(cb *C.struct_wl_callback) {
	f, ok := d.callbacks[cb]
	if !ok {
		return
	}
	C.wl_callback_destroy(cb)
	delete(d.callbacks, cb)
	delete(d.tokens, f.token)
	d.queue = append(d.queue, compositor.FrameDone{Surface: f.surface, Token: f.token})
}
