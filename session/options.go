package session

import (
	"time"

	"github.com/cjlester41/shaderbg/logging"
	"github.com/cjlester41/shaderbg/pacing"
)

// DefaultStatsInterval is how often frame statistics are logged at debug
// level.
const DefaultStatsInterval = 10 * time.Second

type sessionOptions struct {
	logger        *logging.Logger
	throttle      *logging.Throttle
	clock         pacing.Clock
	poller        Poller
	statsInterval time.Duration
}

// Option configures a Session.
type Option interface {
	applySession(*sessionOptions) error
}

type sessionOptionImpl struct {
	applySessionFunc func(*sessionOptions) error
}

func (s *sessionOptionImpl) applySession(opts *sessionOptions) error {
	return s.applySessionFunc(opts)
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *logging.Logger) Option {
	return &sessionOptionImpl{func(opts *sessionOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithThrottle sets the limiter for warnings that may repeat every
// frame. The default uses logging.DefaultThrottleRates.
func WithThrottle(throttle *logging.Throttle) Option {
	return &sessionOptionImpl{func(opts *sessionOptions) error {
		opts.throttle = throttle
		return nil
	}}
}

// WithClock replaces the monotonic clock.
func WithClock(clock pacing.Clock) Option {
	return &sessionOptionImpl{func(opts *sessionOptions) error {
		opts.clock = clock
		return nil
	}}
}

// WithPoller replaces the epoll poller. A poller passed here is not
// closed by Session.Close.
func WithPoller(poller Poller) Option {
	return &sessionOptionImpl{func(opts *sessionOptions) error {
		opts.poller = poller
		return nil
	}}
}

// WithStatsInterval sets how often frame statistics are logged; zero
// disables them.
func WithStatsInterval(d time.Duration) Option {
	return &sessionOptionImpl{func(opts *sessionOptions) error {
		if d < 0 {
			return ErrInvalidStatsInterval
		}
		opts.statsInterval = d
		return nil
	}}
}

func resolveSessionOptions(opts []Option) (*sessionOptions, error) {
	cfg := &sessionOptions{
		statsInterval: DefaultStatsInterval,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applySession(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
