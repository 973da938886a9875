// Package fakes provides an in-memory compositor, graphics backend,
// clock and poller for deterministic tests of the presentation core.
package fakes

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cjlester41/shaderbg/compositor"
	"github.com/cjlester41/shaderbg/output"
	"github.com/cjlester41/shaderbg/pacing"
)

// World is a fake compositor and GPU sharing one call log and one clock.
// It implements compositor.Connection, compositor.Shell, output.Backend,
// output.Renderer and pacing.Clock, plus the Wait and Wake methods of the
// session poller.
//
// Frame callbacks fire on VSync boundaries of the fake clock, for every
// callback whose frame was presented.
type World struct {
	Handler compositor.Handler
	// OnRender, if set, runs after every render.
	OnRender func(Render)

	// Injected failures.
	FlushErr   error
	ReadErr    error
	RenderErr  error
	ChainErr   error
	SurfaceErr error

	// Violations lists frame requests made while the surface still had
	// an outstanding callback.
	Violations []string
	VSync      time.Duration

	frames   map[compositor.Token]*frame
	chains   map[compositor.SurfaceID]*Chain
	roles    map[compositor.SurfaceID]compositor.GlobalID
	socket   []compositor.Event
	queue    []compositor.Event
	calls    []string
	renders  []Render
	now      time.Duration
	current  compositor.SurfaceID
	surfaces compositor.SurfaceID
	tokens   compositor.Token
	woken    atomic.Bool
	reading  bool
}

type frame struct {
	surface   compositor.SurfaceID
	presented bool
}

// Render records one Renderer.Render call.
type Render struct {
	At      time.Duration
	Frame   pacing.Frame
	Surface compositor.SurfaceID
	Width   int
	Height  int
}

func NewWorld() *World {
	return &World{
		VSync:  time.Millisecond,
		frames: make(map[compositor.Token]*frame),
		chains: make(map[compositor.SurfaceID]*Chain),
		roles:  make(map[compositor.SurfaceID]compositor.GlobalID),
	}
}

func (w *World) record(format string, args ...any) {
	w.calls = append(w.calls, fmt.Sprintf(format, args...))
}

// Calls returns the recorded calls whose text starts with one of the
// prefixes, or every call when none is given.
func (w *World) Calls(prefixes ...string) []string {
	if len(w.calls) == 0 {
		return nil
	}
	if len(prefixes) == 0 {
		return slices.Clone(w.calls)
	}
	var out []string
	for _, c := range w.calls {
		for _, p := range prefixes {
			if strings.HasPrefix(c, p) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// ResetCalls clears the call log.
func (w *World) ResetCalls() { w.calls = w.calls[:0] }

// Renders returns every recorded render.
func (w *World) Renders() []Render { return slices.Clone(w.renders) }

// RendersOf returns the renders into surface.
func (w *World) RendersOf(surface compositor.SurfaceID) []Render {
	var out []Render
	for _, r := range w.renders {
		if r.Surface == surface {
			out = append(out, r)
		}
	}
	return out
}

// Outstanding returns the number of unfired frame callbacks of surface.
func (w *World) Outstanding(surface compositor.SurfaceID) int {
	var n int
	for _, f := range w.frames {
		if f.surface == surface {
			n++
		}
	}
	return n
}

// Chain returns the chain created for surface.
func (w *World) Chain(surface compositor.SurfaceID) *Chain { return w.chains[surface] }

// Send writes events to the fake socket, to be read by ReadEvents.
func (w *World) Send(events ...compositor.Event) {
	w.socket = append(w.socket, events...)
}

// Deliver queues events as if already read, and dispatches them.
func (w *World) Deliver(events ...compositor.Event) {
	w.queue = append(w.queue, events...)
	_ = w.DispatchPending()
}

// Announce delivers the events describing a new named output.
func (w *World) Announce(global compositor.GlobalID, name string) {
	w.Deliver(
		compositor.OutputAdded{Global: global},
		compositor.OutputNamed{Global: global, Name: name},
		compositor.OutputDone{Global: global},
	)
}

// SurfaceOf returns the surface given a layer role on the output.
func (w *World) SurfaceOf(global compositor.GlobalID) (compositor.SurfaceID, bool) {
	for s, g := range w.roles {
		if g == global {
			return s, true
		}
	}
	return 0, false
}

// Advance moves the clock forward by d and fires every frame callback
// whose vsync boundary was crossed.
func (w *World) Advance(d time.Duration) {
	before := w.now
	w.now += d
	if w.VSync > 0 && w.now/w.VSync != before/w.VSync {
		w.fire()
	}
}

func (w *World) fire() {
	var tokens []compositor.Token
	for t, f := range w.frames {
		if f.presented {
			tokens = append(tokens, t)
		}
	}
	slices.Sort(tokens)
	for _, t := range tokens {
		w.socket = append(w.socket, compositor.FrameDone{Surface: w.frames[t].surface, Token: t})
		delete(w.frames, t)
	}
}

func (w *World) nextVSync() time.Duration {
	return (w.now/w.VSync + 1) * w.VSync
}

// Now implements pacing.Clock.
func (w *World) Now() time.Duration { return w.now }

// Wait implements the session poller. It advances the clock to the
// earlier of the timeout and the next vsync that fires a presented
// callback, and reports whether the socket is readable.
func (w *World) Wait(fd int, timeout time.Duration) (bool, error) {
	if w.woken.Swap(false) {
		return false, nil
	}
	if len(w.socket) > 0 {
		return true, nil
	}
	pending := false
	for _, f := range w.frames {
		pending = pending || f.presented
	}
	switch {
	case pending && w.VSync > 0 && (timeout < 0 || w.now+timeout >= w.nextVSync()):
		w.Advance(w.nextVSync() - w.now)
	case timeout >= 0:
		w.Advance(timeout)
	default:
		return false, errors.New("fakes: wait would block forever")
	}
	return len(w.socket) > 0, nil
}

// Wake interrupts the next Wait.
func (w *World) Wake() error {
	w.woken.Store(true)
	return nil
}

func (w *World) Close() error { return nil }

// --- compositor.Connection ---

func (w *World) Fd() int { return 3 }

func (w *World) DispatchPending() error {
	for len(w.queue) > 0 {
		ev := w.queue[0]
		w.queue = w.queue[1:]
		if w.Handler != nil {
			w.Handler(ev)
		}
	}
	return nil
}

func (w *World) Flush() error {
	return w.FlushErr
}

func (w *World) PrepareRead() error {
	if len(w.queue) > 0 {
		return compositor.ErrEventsQueued
	}
	if w.reading {
		return errors.New("fakes: read already prepared")
	}
	w.reading = true
	return nil
}

func (w *World) ReadEvents() error {
	if !w.reading {
		return errors.New("fakes: read not prepared")
	}
	w.reading = false
	if w.ReadErr != nil {
		return w.ReadErr
	}
	w.queue = append(w.queue, w.socket...)
	w.socket = w.socket[:0]
	return nil
}

func (w *World) CancelRead() {
	w.reading = false
}

// Reading reports whether a read intent is held.
func (w *World) Reading() bool { return w.reading }

func (w *World) Roundtrip() error {
	w.queue = append(w.queue, w.socket...)
	w.socket = w.socket[:0]
	return w.DispatchPending()
}

// --- compositor.Shell ---

func (w *World) CreateSurface() (compositor.SurfaceID, error) {
	if w.SurfaceErr != nil {
		return 0, w.SurfaceErr
	}
	w.surfaces++
	w.record("create_surface %d", w.surfaces)
	return w.surfaces, nil
}

func (w *World) AssignLayerRole(surface compositor.SurfaceID, out compositor.GlobalID, layer compositor.Layer, namespace string) error {
	w.roles[surface] = out
	w.record("layer_role %d output=%d layer=%s namespace=%s", surface, out, layer, namespace)
	return nil
}

func (w *World) Commit(surface compositor.SurfaceID) {
	w.record("commit %d", surface)
}

func (w *World) AckConfigure(surface compositor.SurfaceID, serial uint32) {
	w.record("ack %d serial=%d", surface, serial)
}

func (w *World) RequestFrame(surface compositor.SurfaceID) (compositor.Token, error) {
	if n := w.Outstanding(surface); n > 0 {
		w.Violations = append(w.Violations, fmt.Sprintf("surface %d requested a frame with %d outstanding", surface, n))
	}
	w.tokens++
	w.frames[w.tokens] = &frame{surface: surface}
	w.record("frame %d token=%d", surface, w.tokens)
	return w.tokens, nil
}

func (w *World) DestroyFrame(token compositor.Token) {
	delete(w.frames, token)
	w.record("destroy_frame %d", token)
}

func (w *World) DestroyLayerRole(surface compositor.SurfaceID) {
	delete(w.roles, surface)
	w.record("destroy_role %d", surface)
}

func (w *World) DestroySurface(surface compositor.SurfaceID) {
	w.record("destroy_surface %d", surface)
}

func (w *World) ReleaseOutput(out compositor.GlobalID) {
	w.record("release_output %d", out)
}

// --- output.Backend and output.Renderer ---

func (w *World) CreateChain(surface compositor.SurfaceID, width, height int) (output.Chain, error) {
	if w.ChainErr != nil {
		return nil, w.ChainErr
	}
	c := &Chain{world: w, Surface: surface, Width: width, Height: height, Throttled: true}
	w.chains[surface] = c
	w.record("create_chain %d %dx%d", surface, width, height)
	return c, nil
}

func (w *World) Render(f pacing.Frame, width, height int) error {
	r := Render{At: w.now, Frame: f, Surface: w.current, Width: width, Height: height}
	w.renders = append(w.renders, r)
	w.record("render %d %dx%d", w.current, width, height)
	if w.OnRender != nil {
		w.OnRender(r)
	}
	return w.RenderErr
}

// Chain is a fake presentation chain.
type Chain struct {
	world          *World
	Surface        compositor.SurfaceID
	Width          int
	Height         int
	Throttled      bool
	SurfaceDropped bool
	WindowDropped  bool
}

func (c *Chain) Resize(width, height int) {
	c.Width, c.Height = width, height
	c.world.record("resize %d %dx%d", c.Surface, width, height)
}

func (c *Chain) MakeCurrent() error {
	c.world.current = c.Surface
	return nil
}

func (c *Chain) DisableThrottle() error {
	c.Throttled = false
	c.world.record("disable_throttle %d", c.Surface)
	return nil
}

func (c *Chain) Present() error {
	for _, f := range c.world.frames {
		if f.surface == c.Surface {
			f.presented = true
		}
	}
	c.world.record("present %d", c.Surface)
	return nil
}

func (c *Chain) DestroySurface() {
	if c.SurfaceDropped {
		panic("fakes: graphics surface destroyed twice")
	}
	c.SurfaceDropped = true
	c.world.record("destroy_chain_surface %d", c.Surface)
}

func (c *Chain) DestroyWindow() {
	if c.WindowDropped {
		panic("fakes: window destroyed twice")
	}
	c.WindowDropped = true
	c.world.record("destroy_window %d", c.Surface)
}
