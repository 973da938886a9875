package session

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/cjlester41/shaderbg/compositor"
	"github.com/cjlester41/shaderbg/output"
)

// transient reports errno values the loop retries on the next iteration.
func transient(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR)
}

// step runs one loop iteration:
//
//  1. dispatch buffered events until a read intent is held
//  2. flush outgoing requests
//  3. wait on the socket with the scheduler's timeout
//  4. read, or cancel the read intent, then dispatch what was read
//  5. redraw every ready output if a frame is due
func (s *Session) step() error {
	if err := s.prepareRead(); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		s.conn.CancelRead()
		return err
	}

	anyFree, anyResize := s.scan()
	timeout := s.pacer.Timeout(s.clock.Now(), anyFree, anyResize)
	readable, err := s.poller.Wait(s.conn.Fd(), timeout)
	if err != nil {
		s.conn.CancelRead()
		return fmt.Errorf("session: wait: %w", err)
	}
	if readable {
		if err := s.conn.ReadEvents(); err != nil && !transient(err) {
			return fmt.Errorf("session: read events: %w", err)
		}
	} else {
		s.conn.CancelRead()
	}
	if err := s.dispatch(); err != nil {
		return err
	}

	anyFree, anyResize = s.scan()
	if !anyFree {
		return nil
	}
	now := s.clock.Now()
	if !s.pacer.Due(now, anyResize) {
		return nil
	}
	return s.redraw(now)
}

// prepareRead drains buffered events until the connection accepts a read
// intent.
func (s *Session) prepareRead() error {
	for {
		if err := s.dispatch(); err != nil {
			return err
		}
		err := s.conn.PrepareRead()
		if err == nil {
			return nil
		}
		if !errors.Is(err, compositor.ErrEventsQueued) {
			return fmt.Errorf("session: prepare read: %w", err)
		}
	}
}

func (s *Session) dispatch() error {
	if err := s.conn.DispatchPending(); err != nil {
		return fmt.Errorf("session: dispatch: %w", err)
	}
	return s.takeErr()
}

// flush sends queued requests. A full socket buffer is not an error; the
// remainder goes out on a later iteration.
func (s *Session) flush() error {
	if err := s.conn.Flush(); err != nil && !transient(err) {
		return fmt.Errorf("session: flush: %w", err)
	}
	return nil
}

// scan reports whether any output can be redrawn, and whether one of
// those has a configure waiting to be applied.
func (s *Session) scan() (anyFree, anyResize bool) {
	s.outputs.Each(func(o *output.Output) bool {
		if o.Ready() {
			anyFree = true
			anyResize = anyResize || o.NeedsResize()
		}
		return true
	})
	return anyFree, anyResize
}

// redraw advances the scheduler and draws every ready output, then
// presents them as one batch.
func (s *Session) redraw(now time.Duration) error {
	s.ready = s.ready[:0]
	s.outputs.Each(func(o *output.Output) bool {
		if o.Ready() {
			s.ready = append(s.ready, o)
		}
		return true
	})
	if len(s.ready) == 0 {
		return nil
	}

	skipped := s.pacer.Skipped()
	frame := s.pacer.Advance(now)
	if n := s.pacer.Skipped() - skipped; n > 0 && s.throttle.Allow("skipped frames") {
		s.log.Warning().
			Uint64("skipped", n).
			Uint64("frame", frame.Index).
			Log("frames skipped after a stall")
	}
	if frame.Index > 1 {
		s.stats.Record(now - s.lastDraw)
	}
	s.lastDraw = now

	for _, o := range s.ready {
		o.Prepare(&s.env)
		if err := o.Draw(&s.env, frame); err != nil {
			return err
		}
	}
	for _, o := range s.ready {
		if err := o.Present(&s.env); err != nil {
			return err
		}
	}
	clear(s.ready)

	s.logStats(now)
	return nil
}

func (s *Session) logStats(now time.Duration) {
	if s.statsInterval <= 0 || now-s.lastStats < s.statsInterval {
		return
	}
	s.lastStats = now
	sum := s.stats.Summary()
	s.stats.Reset()
	s.log.Debug().
		Int("frames", sum.Count).
		Dur("mean", sum.Mean).
		Dur("min", sum.Min).
		Dur("p50", sum.P50).
		Dur("p90", sum.P90).
		Dur("p99", sum.P99).
		Dur("max", sum.Max).
		Uint64("skipped", s.pacer.Skipped()).
		Log("frame intervals")
}
