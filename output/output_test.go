package output_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjlester41/shaderbg/compositor"
	"github.com/cjlester41/shaderbg/internal/fakes"
	"github.com/cjlester41/shaderbg/output"
	"github.com/cjlester41/shaderbg/pacing"
)

func newEnv(w *fakes.World) *output.Env {
	return &output.Env{
		Shell:     w,
		Backend:   w,
		Renderer:  w,
		Namespace: "shaderbg",
		Layer:     compositor.LayerBackground,
	}
}

func assertCalls(t *testing.T, w *fakes.World, want ...string) {
	t.Helper()
	if diff := cmp.Diff(want, w.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	w.ResetCalls()
}

// bound returns a registry with one output named name, bound and past
// its first configure at 640x480 (serial 1).
func bound(t *testing.T, w *fakes.World, env *output.Env, name string) (*output.Registry, *output.Output) {
	t.Helper()
	r := output.NewRegistry()
	o, created := r.Upsert(10)
	require.True(t, created)
	require.True(t, o.SetName(name))
	ok, err := r.MatchAndBind(env, o, name)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, o.Configure(env, compositor.SurfaceConfigured{Surface: 1, Serial: 1, Width: 640, Height: 480}, pacing.Frame{}))
	w.ResetCalls()
	return r, o
}

func TestMatchAndBind_wildcard(t *testing.T) {
	w := fakes.NewWorld()
	env := newEnv(w)
	r := output.NewRegistry()

	o, _ := r.Upsert(7)
	o.SetName("DP-2")
	assert.Equal(t, output.StateUnbound, o.State())

	ok, err := r.MatchAndBind(env, o, output.Wildcard)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, output.StateAwaitingFirstConfigure, o.State())
	assertCalls(t, w,
		"create_surface 1",
		"layer_role 1 output=7 layer=background namespace=shaderbg",
		"commit 1",
	)
	assert.Same(t, o, r.BySurface(1))

	// Duplicate done events never rebind.
	ok, err = r.MatchAndBind(env, o, output.Wildcard)
	require.NoError(t, err)
	assert.True(t, ok)
	assertCalls(t, w)
}

func TestMatchAndBind_nonMatchIsTerminal(t *testing.T) {
	w := fakes.NewWorld()
	env := newEnv(w)
	r := output.NewRegistry()

	o, _ := r.Upsert(7)
	o.SetName("DP-2")
	ok, err := r.MatchAndBind(env, o, "HDMI-A-1")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.False(t, o.SetName("HDMI-A-1"), "name is immutable")
	assert.Equal(t, "DP-2", o.Name())

	ok, err = r.MatchAndBind(env, o, "HDMI-A-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, output.StateUnbound, o.State())
	assertCalls(t, w)
}

func TestMatchAndBind_surfaceError(t *testing.T) {
	w := fakes.NewWorld()
	w.SurfaceErr = errors.New("no memory")
	r := output.NewRegistry()
	o, _ := r.Upsert(1)
	o.SetName("eDP-1")
	_, err := r.MatchAndBind(newEnv(w), o, "*")
	assert.ErrorContains(t, err, "no memory")
}

func TestConfigure_first(t *testing.T) {
	w := fakes.NewWorld()
	env := newEnv(w)
	r := output.NewRegistry()
	o, _ := r.Upsert(3)
	o.SetName("HDMI-A-1")
	_, err := r.MatchAndBind(env, o, "HDMI-A-1")
	require.NoError(t, err)
	w.ResetCalls()

	frame := pacing.Frame{Elapsed: 1.5, Index: 4}
	require.NoError(t, o.Configure(env, compositor.SurfaceConfigured{Surface: 1, Serial: 42, Width: 1920, Height: 1080}, frame))

	assert.Equal(t, output.StatePresenting, o.State())
	assert.Equal(t, output.SlotAwaitingPresentation, o.Slot())
	assertCalls(t, w,
		"ack 1 serial=42",
		"create_chain 1 1920x1080",
		"render 1 1920x1080",
		"disable_throttle 1",
		"frame 1 token=1",
		"present 1",
	)
	require.Len(t, w.Renders(), 1)
	assert.Equal(t, frame, w.Renders()[0].Frame)
	assert.False(t, w.Chain(1).Throttled)
}

func TestConfigure_zeroSize(t *testing.T) {
	w := fakes.NewWorld()
	env := newEnv(w)
	r := output.NewRegistry()
	o, _ := r.Upsert(3)
	o.SetName("X")
	_, err := r.MatchAndBind(env, o, "X")
	require.NoError(t, err)

	require.NoError(t, o.Configure(env, compositor.SurfaceConfigured{Surface: 1, Serial: 1}, pacing.Frame{}))
	assert.Contains(t, w.Calls(), "create_chain 1 1x1")

	require.NoError(t, o.FrameDone(1))
	require.NoError(t, o.Configure(env, compositor.SurfaceConfigured{Surface: 1, Serial: 2, Width: 300}, pacing.Frame{}))
	width, height := o.Size()
	assert.Equal(t, 300, width)
	assert.Equal(t, 1, height, "zero keeps the previous height")
}

func TestConfigure_chainError(t *testing.T) {
	w := fakes.NewWorld()
	w.ChainErr = errors.New("EGL_BAD_ALLOC")
	env := newEnv(w)
	r := output.NewRegistry()
	o, _ := r.Upsert(3)
	o.SetName("X")
	_, err := r.MatchAndBind(env, o, "X")
	require.NoError(t, err)

	err = o.Configure(env, compositor.SurfaceConfigured{Surface: 1, Serial: 1, Width: 10, Height: 10}, pacing.Frame{})
	assert.ErrorContains(t, err, "EGL_BAD_ALLOC")
	assert.Equal(t, output.StateAwaitingFirstConfigure, o.State())
}

func TestConfigure_deferredWhileTokenOutstanding(t *testing.T) {
	w := fakes.NewWorld()
	env := newEnv(w)
	_, o := bound(t, w, env, "HDMI-A-1")
	require.Equal(t, output.SlotAwaitingPresentation, o.Slot())

	require.NoError(t, o.Configure(env, compositor.SurfaceConfigured{Surface: 1, Serial: 8, Width: 800, Height: 600}, pacing.Frame{}))
	require.NoError(t, o.Configure(env, compositor.SurfaceConfigured{Surface: 1, Serial: 9, Width: 1024, Height: 768}, pacing.Frame{}))
	assertCalls(t, w)
	assert.Equal(t, 640, w.Chain(1).Width, "buffers untouched while the token is outstanding")
	assert.False(t, o.Ready())

	require.NoError(t, o.FrameDone(1))
	assert.True(t, o.Ready())
	assert.True(t, o.NeedsResize())

	o.Prepare(env)
	require.NoError(t, o.Draw(env, pacing.Frame{Index: 1}))
	require.NoError(t, o.Present(env))
	assertCalls(t, w,
		"ack 1 serial=9",
		"resize 1 1024x768",
		"render 1 1024x768",
		"frame 1 token=2",
		"present 1",
	)
	assert.False(t, o.NeedsResize())

	require.NoError(t, o.FrameDone(2))
	o.Prepare(env)
	assertCalls(t, w)
}

func TestFrameDone_mismatch(t *testing.T) {
	w := fakes.NewWorld()
	env := newEnv(w)
	_, o := bound(t, w, env, "A")

	assert.ErrorIs(t, o.FrameDone(99), output.ErrTokenMismatch)
	require.NoError(t, o.FrameDone(1))
	assert.ErrorIs(t, o.FrameDone(1), output.ErrTokenMismatch, "already released")
}

func TestPresent_slotBusy(t *testing.T) {
	w := fakes.NewWorld()
	env := newEnv(w)
	_, o := bound(t, w, env, "A")

	assert.ErrorIs(t, o.Draw(env, pacing.Frame{}), output.ErrSlotBusy)
	assert.ErrorIs(t, o.Present(env), output.ErrSlotBusy)
	assertCalls(t, w)
	assert.Equal(t, 1, w.Outstanding(1))
}

func TestDraw_renderError(t *testing.T) {
	w := fakes.NewWorld()
	env := newEnv(w)
	_, o := bound(t, w, env, "A")
	require.NoError(t, o.FrameDone(1))

	w.RenderErr = errors.New("GL_INVALID_OPERATION")
	assert.ErrorContains(t, o.Draw(env, pacing.Frame{}), "GL_INVALID_OPERATION")
}

func TestRemove_teardownOrder(t *testing.T) {
	w := fakes.NewWorld()
	env := newEnv(w)
	r, o := bound(t, w, env, "A")

	assert.True(t, r.Remove(env, 10))
	assert.Equal(t, output.StateClosed, o.State())
	assertCalls(t, w,
		"destroy_frame 1",
		"destroy_chain_surface 1",
		"destroy_role 1",
		"destroy_window 1",
		"destroy_surface 1",
		"release_output 10",
	)
	assert.Zero(t, w.Outstanding(1))
	assert.Nil(t, r.Lookup(10))
	assert.Nil(t, r.BySurface(1))
	assert.Zero(t, r.Len())

	assert.False(t, r.Remove(env, 10), "resources are released once")
	assertCalls(t, w)

	assert.ErrorIs(t, o.Present(env), output.ErrNotPresenting)
	assert.ErrorIs(t, o.Draw(env, pacing.Frame{}), output.ErrNotPresenting)
}

func TestRemove_idleSlot(t *testing.T) {
	w := fakes.NewWorld()
	env := newEnv(w)
	r, o := bound(t, w, env, "A")
	require.NoError(t, o.FrameDone(1))

	r.Remove(env, 10)
	assertCalls(t, w,
		"destroy_chain_surface 1",
		"destroy_role 1",
		"destroy_window 1",
		"destroy_surface 1",
		"release_output 10",
	)
}

func TestRemove_beforeFirstConfigure(t *testing.T) {
	w := fakes.NewWorld()
	env := newEnv(w)
	r := output.NewRegistry()
	o, _ := r.Upsert(5)
	o.SetName("A")
	_, err := r.MatchAndBind(env, o, "*")
	require.NoError(t, err)
	w.ResetCalls()

	r.Remove(env, 5)
	assertCalls(t, w,
		"destroy_role 1",
		"destroy_surface 1",
		"release_output 5",
	)
}

func TestRemove_unbound(t *testing.T) {
	w := fakes.NewWorld()
	env := newEnv(w)
	r := output.NewRegistry()
	r.Upsert(5)

	assert.True(t, r.Remove(env, 5))
	assertCalls(t, w, "release_output 5")
	assert.False(t, r.Remove(env, 6), "unknown globals are ignored")
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "AwaitingFirstConfigure", output.StateAwaitingFirstConfigure.String())
	assert.Equal(t, "Closed", output.StateClosed.String())
	assert.Equal(t, "AwaitingPresentation", output.SlotAwaitingPresentation.String())
	assert.Equal(t, "Unknown", output.State(99).String())
}
