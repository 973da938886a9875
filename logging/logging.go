// Package logging builds the structured logger shared by every component
// and a per-category throttle for warnings that can repeat every frame.
package logging

import (
	"io"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the generic logger type passed between packages. A nil
// *Logger is valid and discards everything.
type Logger = logiface.Logger[logiface.Event]

// New returns a JSON logger writing to w at the given level.
func New(w io.Writer, level logiface.Level) *Logger {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(level),
	).Logger()
}

// LevelForVerbosity maps the number of -v flags to a level.
func LevelForVerbosity(v int) logiface.Level {
	switch {
	case v <= 0:
		return logiface.LevelInformational
	case v == 1:
		return logiface.LevelDebug
	default:
		return logiface.LevelTrace
	}
}

// DefaultThrottleRates allows one event per second and at most ten per
// minute, for each category.
var DefaultThrottleRates = map[time.Duration]int{
	time.Second: 1,
	time.Minute: 10,
}

// Throttle limits how often a category of log event is emitted. A nil
// *Throttle allows everything.
type Throttle struct {
	limiter *catrate.Limiter
}

func NewThrottle(rates map[time.Duration]int) *Throttle {
	return &Throttle{limiter: catrate.NewLimiter(rates)}
}

// Allow records an event for category and reports whether it may be
// logged.
func (t *Throttle) Allow(category any) bool {
	if t == nil {
		return true
	}
	_, ok := t.limiter.Allow(category)
	return ok
}
