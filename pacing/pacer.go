package pacing

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Forever is the timeout returned by [Pacer.Timeout] when the loop must
// block until the compositor wakes it.
const Forever time.Duration = -1

var (
	ErrInvalidRate  = errors.New("pacing: rate must be positive")
	ErrInvalidSpeed = errors.New("pacing: speed must be positive and finite")
)

// Unbounded is the rate that disables deadline pacing.
var Unbounded = math.Inf(1)

// Frame is the timing handed to the renderer for one redraw. Elapsed and
// Delta are seconds, already scaled by the speed factor.
type Frame struct {
	Elapsed float64
	Delta   float64
	Index   uint64
}

// Pacer is the frame scheduler state. It is not safe for concurrent use.
type Pacer struct {
	rate    float64
	speed   float64
	period  time.Duration
	start   time.Duration
	last    time.Duration
	next    time.Duration
	skipped uint64
	frame   Frame
}

// NewPacer creates a scheduler whose first deadline is now. A rate of
// [Unbounded] (+Inf) disables deadlines.
func NewPacer(rate, speed float64, now time.Duration) (*Pacer, error) {
	if !(rate > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRate, rate)
	}
	if !(speed > 0) || math.IsInf(speed, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpeed, speed)
	}
	p := &Pacer{
		rate:  rate,
		speed: speed,
		start: now,
		last:  now,
		next:  now,
	}
	if !p.Unbounded() {
		p.period = time.Duration(float64(time.Second) / rate)
	}
	return p, nil
}

// Unbounded reports whether deadlines are disabled.
func (p *Pacer) Unbounded() bool {
	return math.IsInf(p.rate, 1)
}

// Rate returns the target frames per second, +Inf when unbounded.
func (p *Pacer) Rate() float64 { return p.rate }

// Period returns the target interval between redraws, zero when
// unbounded.
func (p *Pacer) Period() time.Duration { return p.period }

// Deadline returns the next redraw deadline.
func (p *Pacer) Deadline() time.Duration { return p.next }

// Skipped returns the number of whole frames dropped by drift
// correction so far.
func (p *Pacer) Skipped() uint64 { return p.skipped }

// Current returns the timing of the most recent redraw, or the zero
// frame before the first one.
func (p *Pacer) Current() Frame { return p.frame }

// Timeout returns how long the loop may block waiting for protocol I/O.
// With no free output only a compositor event can make progress, so the
// wait is [Forever]. Otherwise it is zero when unbounded or when a free
// output has a resize to apply, else the time to the deadline, at least
// one millisecond.
func (p *Pacer) Timeout(now time.Duration, anyFree, anyResize bool) time.Duration {
	switch {
	case !anyFree:
		return Forever
	case p.Unbounded(), anyResize:
		return 0
	}
	return max(time.Millisecond, p.next-now)
}

// Due reports whether a redraw should happen now. A pending resize
// forces a redraw ahead of the deadline.
func (p *Pacer) Due(now time.Duration, anyResize bool) bool {
	return p.Unbounded() || anyResize || p.next-now <= 0
}

// Advance commits a redraw at now and returns its timing. When bounded,
// the deadline moves forward by the smallest whole number of periods
// that puts it after now, so late frames are skipped rather than
// replayed.
func (p *Pacer) Advance(now time.Duration) Frame {
	if !p.Unbounded() {
		late := (now - p.next).Seconds()
		gap := max(1, int64(math.Ceil(late*p.rate)))
		p.next += time.Duration(gap) * p.period
		p.skipped += uint64(gap - 1)
	}
	p.frame = Frame{
		Elapsed: (now - p.start).Seconds() * p.speed,
		Delta:   (now - p.last).Seconds() * p.speed,
		Index:   p.frame.Index + 1,
	}
	p.last = now
	return p.frame
}
