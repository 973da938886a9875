package output

import (
	"errors"
	"fmt"

	"github.com/cjlester41/shaderbg/compositor"
	"github.com/cjlester41/shaderbg/pacing"
)

// Wildcard is the selector that matches every output.
const Wildcard = "*"

var (
	ErrTokenMismatch = errors.New("output: frame callback tracking error")
	ErrSlotBusy      = errors.New("output: frame callback still outstanding")
	ErrNotPresenting = errors.New("output: no presentation chain")
)

// Output is one display known to the compositor.
type Output struct {
	pres    *presentation
	name    string
	width   int
	height  int
	global  compositor.GlobalID
	state   State
	named   bool
	decided bool
}

// presentation exists iff the output matched the selector.
type presentation struct {
	chain   Chain
	surface compositor.SurfaceID
	token   compositor.Token
	ack     pending
	resize  pending
	slot    FrameSlot
}

// pending is a deferred configure, carrying the serial that set it.
type pending struct {
	serial uint32
	set    bool
}

func newOutput(global compositor.GlobalID) *Output {
	return &Output{global: global}
}

func (o *Output) Global() compositor.GlobalID { return o.global }

// Name returns the output name, empty until reported.
func (o *Output) Name() string { return o.name }

func (o *Output) Size() (width, height int) { return o.width, o.height }

func (o *Output) State() State { return o.state }

// Slot reports the frame callback slot. Unbound outputs are always idle.
func (o *Output) Slot() FrameSlot {
	if o.pres == nil {
		return SlotIdle
	}
	return o.pres.slot
}

// Surface returns the surface bound for this output, if any.
func (o *Output) Surface() (compositor.SurfaceID, bool) {
	if o.pres == nil {
		return 0, false
	}
	return o.pres.surface, true
}

// SetName records the output name. Only the first report is kept; it
// returns false for any later one.
func (o *Output) SetName(name string) bool {
	if o.named {
		return false
	}
	o.name, o.named = name, true
	return true
}

// Matches reports whether selector names this output.
func (o *Output) Matches(selector string) bool {
	return selector == Wildcard || (o.named && o.name == selector)
}

// Ready reports whether the output can be redrawn: it has a chain and no
// outstanding frame callback.
func (o *Output) Ready() bool {
	return o.state == StatePresenting && o.pres.slot == SlotIdle
}

// NeedsResize reports a configure waiting for the next redraw.
func (o *Output) NeedsResize() bool {
	return o.state == StatePresenting && o.pres.resize.set
}

// bind evaluates the selector once. On a match it creates the surface,
// gives it the layer role and commits, moving to
// StateAwaitingFirstConfigure.
func (o *Output) bind(env *Env, selector string) (bool, error) {
	if o.decided {
		return o.pres != nil, nil
	}
	o.decided = true
	if !o.Matches(selector) {
		return false, nil
	}

	surface, err := env.Shell.CreateSurface()
	if err != nil {
		return false, fmt.Errorf("output %q: create surface: %w", o.name, err)
	}
	if err := env.Shell.AssignLayerRole(surface, o.global, env.Layer, env.Namespace); err != nil {
		env.Shell.DestroySurface(surface)
		return false, fmt.Errorf("output %q: assign layer role: %w", o.name, err)
	}
	env.Shell.Commit(surface)

	o.pres = &presentation{surface: surface}
	o.state = StateAwaitingFirstConfigure
	return true, nil
}

// Configure handles a configure event for the output's surface. The
// first one creates the chain, renders with the given timing and
// presents; later ones are deferred until the next redraw.
func (o *Output) Configure(env *Env, ev compositor.SurfaceConfigured, frame pacing.Frame) error {
	if ev.Width > 0 {
		o.width = int(ev.Width)
	}
	if ev.Height > 0 {
		o.height = int(ev.Height)
	}

	switch o.state {
	case StateAwaitingFirstConfigure:
		return o.start(env, ev.Serial, frame)
	case StatePresenting:
		o.pres.ack = pending{serial: ev.Serial, set: true}
		o.pres.resize = pending{serial: ev.Serial, set: true}
		env.Logger.Debug().
			Str("output", o.name).
			Uint64("serial", uint64(ev.Serial)).
			Int("width", o.width).
			Int("height", o.height).
			Log("configure deferred")
		return nil
	default:
		env.Logger.Debug().
			Str("output", o.name).
			Stringer("state", o.state).
			Log("configure ignored")
		return nil
	}
}

func (o *Output) start(env *Env, serial uint32, frame pacing.Frame) error {
	env.Shell.AckConfigure(o.pres.surface, serial)

	// wl_egl_window rejects empty sizes.
	o.width, o.height = max(o.width, 1), max(o.height, 1)

	chain, err := env.Backend.CreateChain(o.pres.surface, o.width, o.height)
	if err != nil {
		return fmt.Errorf("output %q: create chain: %w", o.name, err)
	}
	o.pres.chain = chain
	o.state = StatePresenting

	env.Logger.Info().
		Str("output", o.name).
		Int("width", o.width).
		Int("height", o.height).
		Log("presenting")

	if err := o.Draw(env, frame); err != nil {
		return err
	}
	if err := chain.DisableThrottle(); err != nil {
		return fmt.Errorf("output %q: disable swap throttling: %w", o.name, err)
	}
	return o.Present(env)
}

// Prepare applies the deferred acknowledgement and resize, each exactly
// once, with the serial captured from the most recent configure.
func (o *Output) Prepare(env *Env) {
	if o.state != StatePresenting {
		return
	}
	p := o.pres
	if p.ack.set {
		env.Shell.AckConfigure(p.surface, p.ack.serial)
		p.ack = pending{}
	}
	if p.resize.set {
		p.chain.Resize(o.width, o.height)
		p.resize = pending{}
	}
}

// Draw renders one frame into the output's chain.
func (o *Output) Draw(env *Env, frame pacing.Frame) error {
	if o.state != StatePresenting {
		return ErrNotPresenting
	}
	if o.pres.slot != SlotIdle {
		return ErrSlotBusy
	}
	if err := o.pres.chain.MakeCurrent(); err != nil {
		return fmt.Errorf("output %q: make current: %w", o.name, err)
	}
	if err := env.Renderer.Render(frame, o.width, o.height); err != nil {
		return fmt.Errorf("output %q: render: %w", o.name, err)
	}
	return nil
}

// Present requests a frame callback and submits the drawn frame. The
// callback request precedes the swap so both land in the same commit.
func (o *Output) Present(env *Env) error {
	if o.state != StatePresenting {
		return ErrNotPresenting
	}
	p := o.pres
	if p.slot != SlotIdle {
		return ErrSlotBusy
	}
	if err := p.chain.MakeCurrent(); err != nil {
		return fmt.Errorf("output %q: make current: %w", o.name, err)
	}
	token, err := env.Shell.RequestFrame(p.surface)
	if err != nil {
		return fmt.Errorf("output %q: request frame: %w", o.name, err)
	}
	p.slot, p.token = SlotAwaitingPresentation, token
	if err := p.chain.Present(); err != nil {
		return fmt.Errorf("output %q: present: %w", o.name, err)
	}
	return nil
}

// FrameDone releases the frame slot. A token that is not the outstanding
// one means callbacks are being tracked wrongly, which is fatal.
func (o *Output) FrameDone(token compositor.Token) error {
	if o.pres == nil || o.pres.slot != SlotAwaitingPresentation || o.pres.token != token {
		return fmt.Errorf("%w: output %q token %d", ErrTokenMismatch, o.name, token)
	}
	o.pres.slot, o.pres.token = SlotIdle, 0
	return nil
}

// teardown releases every resource exactly once: the outstanding frame
// callback, the graphics surface, the layer role, the window handle, the
// wl_surface and finally the output binding. Calling it again is a
// no-op.
func (o *Output) teardown(env *Env) {
	if o.state == StateClosed {
		return
	}
	if p := o.pres; p != nil {
		if p.slot == SlotAwaitingPresentation {
			env.Shell.DestroyFrame(p.token)
			p.slot, p.token = SlotIdle, 0
		}
		if p.chain != nil {
			p.chain.DestroySurface()
		}
		env.Shell.DestroyLayerRole(p.surface)
		if p.chain != nil {
			p.chain.DestroyWindow()
			p.chain = nil
		}
		env.Shell.DestroySurface(p.surface)
		o.pres = nil
	}
	env.Shell.ReleaseOutput(o.global)
	o.state = StateClosed
}
