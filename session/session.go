// Package session runs the presentation loop: it multiplexes compositor
// I/O with frame pacing on a single goroutine, dispatches compositor
// events to the outputs they concern, and redraws every ready output
// when the scheduler says a frame is due.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cjlester41/shaderbg/compositor"
	"github.com/cjlester41/shaderbg/logging"
	"github.com/cjlester41/shaderbg/output"
	"github.com/cjlester41/shaderbg/pacing"
)

// Namespace is the layer-shell namespace of every surface.
const Namespace = "shaderbg"

var (
	ErrUnknownEvent         = errors.New("session: unknown event")
	ErrInvalidStatsInterval = errors.New("session: stats interval must not be negative")
)

// Poller blocks until the descriptor is readable, the timeout elapses,
// or Wake is called. A negative timeout blocks indefinitely.
type Poller interface {
	Wait(fd int, timeout time.Duration) (readable bool, err error)
	Wake() error
}

// Config is what the user chose on the command line.
type Config struct {
	// Selector is an output name, or output.Wildcard.
	Selector string
	// FPS is the target rate; pacing.Unbounded disables deadlines.
	FPS   float64
	Speed float64
	Layer compositor.Layer
}

// Session is the process-wide state of the renderer. Every method must
// be called from the goroutine that runs the loop, except that the
// context passed to Run may be cancelled from anywhere.
type Session struct {
	conn     compositor.Connection
	poller   Poller
	closer   io.Closer
	clock    pacing.Clock
	outputs  *output.Registry
	pacer    *pacing.Pacer
	stats    *pacing.Stats
	log      *logging.Logger
	throttle *logging.Throttle
	// err is the first fatal error raised while dispatching events.
	err           error
	env           output.Env
	cfg           Config
	ready         []*output.Output
	statsInterval time.Duration
	lastDraw      time.Duration
	lastStats     time.Duration
	started       bool
}

// New creates a session. The caller must route the connection's events
// to HandleEvent before calling Run.
func New(cfg Config, conn compositor.Connection, shell compositor.Shell, backend output.Backend, renderer output.Renderer, opts ...Option) (*Session, error) {
	o, err := resolveSessionOptions(opts)
	if err != nil {
		return nil, err
	}

	s := &Session{
		conn:          conn,
		poller:        o.poller,
		clock:         o.clock,
		outputs:       output.NewRegistry(),
		stats:         pacing.NewStats(),
		log:           o.logger,
		throttle:      o.throttle,
		cfg:           cfg,
		statsInterval: o.statsInterval,
		env: output.Env{
			Shell:     shell,
			Backend:   backend,
			Renderer:  renderer,
			Logger:    o.logger,
			Namespace: Namespace,
			Layer:     cfg.Layer,
		},
	}
	if s.clock == nil {
		s.clock = pacing.NewMonotonicClock()
	}
	if s.throttle == nil {
		s.throttle = logging.NewThrottle(logging.DefaultThrottleRates)
	}

	now := s.clock.Now()
	if s.pacer, err = pacing.NewPacer(cfg.FPS, cfg.Speed, now); err != nil {
		return nil, err
	}
	s.lastDraw, s.lastStats = now, now

	if s.poller == nil {
		p, err := newPoller()
		if err != nil {
			return nil, err
		}
		s.poller = p
		s.closer, _ = p.(io.Closer)
	}
	return s, nil
}

// Outputs exposes the registry for inspection.
func (s *Session) Outputs() *output.Registry { return s.outputs }

// Pacer exposes the frame scheduler for inspection.
func (s *Session) Pacer() *pacing.Pacer { return s.pacer }

// Start performs the initial roundtrips: the first binds the outputs
// announced so far, the second receives their names and done events,
// which creates the layer surfaces. Run calls it if needed.
func (s *Session) Start() error {
	if s.started {
		return nil
	}
	s.started = true
	for range 2 {
		if err := s.conn.Roundtrip(); err != nil {
			return fmt.Errorf("session: roundtrip: %w", err)
		}
		if err := s.takeErr(); err != nil {
			return err
		}
	}
	return nil
}

// Run drives the loop until a fatal error, or until ctx is done, in which
// case it returns ctx.Err(). It does not release outputs; call Close.
func (s *Session) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() {
		if err := s.poller.Wake(); err != nil {
			s.log.Warning().Err(err).Log("wake failed")
		}
	})
	defer stop()

	rate := s.cfg.FPS
	if s.pacer.Unbounded() {
		rate = 0
	}
	s.log.Info().
		Str("selector", s.cfg.Selector).
		Float64("fps", rate).
		Bool("unbounded", s.pacer.Unbounded()).
		Float64("speed", s.cfg.Speed).
		Str("layer", s.cfg.Layer.String()).
		Int("outputs", s.outputs.Len()).
		Log("presentation loop running")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.step(); err != nil {
			return err
		}
	}
}

// Close tears down every output and releases the poller if the session
// created it.
func (s *Session) Close() error {
	s.outputs.Close(&s.env)
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// fail records the first fatal error raised by an event handler.
func (s *Session) fail(err error) {
	if err != nil && s.err == nil {
		s.err = err
	}
}

func (s *Session) takeErr() error {
	err := s.err
	s.err = nil
	return err
}

// HandleEvent dispatches one compositor event. Fatal errors are recorded
// and returned by the loop once dispatch finishes.
func (s *Session) HandleEvent(ev compositor.Event) {
	if s.err != nil {
		return
	}
	switch ev := ev.(type) {
	case compositor.OutputAdded:
		if _, created := s.outputs.Upsert(ev.Global); !created {
			s.log.Debug().Uint64("global", uint64(ev.Global)).Log("output announced twice")
		}

	case compositor.OutputNamed:
		o := s.outputs.Lookup(ev.Global)
		if o == nil {
			s.log.Debug().Uint64("global", uint64(ev.Global)).Log("name for unknown output")
			return
		}
		if !o.SetName(ev.Name) {
			s.log.Debug().
				Str("output", o.Name()).
				Str("name", ev.Name).
				Log("output rename ignored")
		}

	case compositor.OutputDone:
		if o := s.outputs.Lookup(ev.Global); o != nil {
			_, err := s.outputs.MatchAndBind(&s.env, o, s.cfg.Selector)
			s.fail(err)
		}

	case compositor.OutputRemoved:
		if o := s.outputs.Lookup(ev.Global); o != nil {
			name := o.Name()
			s.outputs.Remove(&s.env, ev.Global)
			s.log.Info().Str("output", name).Log("output removed")
		}

	case compositor.SurfaceConfigured:
		o := s.surfaceOutput(ev.Surface, "configure")
		if o == nil {
			return
		}
		s.log.Trace().
			Str("output", o.Name()).
			Uint64("serial", uint64(ev.Serial)).
			Uint64("width", uint64(ev.Width)).
			Uint64("height", uint64(ev.Height)).
			Log("configure")
		s.fail(o.Configure(&s.env, ev, s.pacer.Current()))

	case compositor.SurfaceClosed:
		o := s.surfaceOutput(ev.Surface, "closed")
		if o == nil {
			return
		}
		name := o.Name()
		s.outputs.Remove(&s.env, o.Global())
		s.log.Info().Str("output", name).Log("layer surface closed by compositor")

	case compositor.FrameDone:
		o := s.surfaceOutput(ev.Surface, "frame done")
		if o == nil {
			return
		}
		s.fail(o.FrameDone(ev.Token))

	default:
		s.fail(fmt.Errorf("%w: %T", ErrUnknownEvent, ev))
	}
}

// surfaceOutput finds the owner of a surface event. Events for surfaces
// already torn down can still be queued; those are dropped.
func (s *Session) surfaceOutput(surface compositor.SurfaceID, event string) *output.Output {
	if o := s.outputs.BySurface(surface); o != nil {
		return o
	}
	if s.throttle.Allow(event) {
		s.log.Debug().
			Uint64("surface", uint64(surface)).
			Str("event", event).
			Log("event for unknown surface dropped")
	}
	return nil
}
