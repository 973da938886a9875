package pacing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPacer_validation(t *testing.T) {
	for _, tc := range []struct {
		name        string
		rate, speed float64
		err         error
	}{
		{"zero rate", 0, 1, ErrInvalidRate},
		{"negative rate", -30, 1, ErrInvalidRate},
		{"nan rate", math.NaN(), 1, ErrInvalidRate},
		{"zero speed", 30, 0, ErrInvalidSpeed},
		{"infinite speed", 30, math.Inf(1), ErrInvalidSpeed},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPacer(tc.rate, tc.speed, 0)
			assert.ErrorIs(t, err, tc.err)
		})
	}

	p, err := NewPacer(Unbounded, 1, 0)
	require.NoError(t, err)
	assert.True(t, p.Unbounded())
	assert.Zero(t, p.Period())
}

func TestPacer_Timeout(t *testing.T) {
	p, err := NewPacer(30, 1, 0)
	require.NoError(t, err)

	assert.Equal(t, Forever, p.Timeout(0, false, false))
	assert.Equal(t, Forever, p.Timeout(0, false, true))
	assert.Equal(t, time.Millisecond, p.Timeout(0, true, false), "deadline already reached")
	assert.Equal(t, time.Millisecond, p.Timeout(5*time.Second, true, false), "deadline in the past")

	p.Advance(0)
	assert.Equal(t, p.Period()-10*time.Millisecond, p.Timeout(10*time.Millisecond, true, false))
	assert.Equal(t, time.Millisecond, p.Timeout(p.Period()-100*time.Microsecond, true, false))
	assert.Equal(t, time.Duration(0), p.Timeout(10*time.Millisecond, true, true), "resize draws at once")

	u, err := NewPacer(Unbounded, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), u.Timeout(0, true, false))
	assert.Equal(t, Forever, u.Timeout(0, false, false))
}

func TestPacer_Due(t *testing.T) {
	p, err := NewPacer(10, 1, 0)
	require.NoError(t, err)
	assert.True(t, p.Due(0, false), "first deadline is the start time")
	p.Advance(0)
	assert.False(t, p.Due(50*time.Millisecond, false))
	assert.True(t, p.Due(50*time.Millisecond, true), "resize forces a redraw")
	assert.True(t, p.Due(100*time.Millisecond, false))

	u, err := NewPacer(Unbounded, 1, 0)
	require.NoError(t, err)
	for i := range 10 {
		assert.True(t, u.Due(time.Duration(i), false))
		u.Advance(time.Duration(i))
	}
}

func TestPacer_Advance_timing(t *testing.T) {
	p, err := NewPacer(Unbounded, 2, time.Second)
	require.NoError(t, err)

	f := p.Advance(time.Second + 500*time.Millisecond)
	assert.Equal(t, uint64(1), f.Index)
	assert.InDelta(t, 1.0, f.Elapsed, 1e-9)
	assert.InDelta(t, 1.0, f.Delta, 1e-9)

	f = p.Advance(time.Second + 750*time.Millisecond)
	assert.Equal(t, uint64(2), f.Index)
	assert.InDelta(t, 1.5, f.Elapsed, 1e-9)
	assert.InDelta(t, 0.5, f.Delta, 1e-9)
	assert.Equal(t, f, p.Current())
}

// A fixed-step clock must produce redraws whose average spacing is the
// target period.
func TestPacer_convergence(t *testing.T) {
	const rate = 30
	p, err := NewPacer(rate, 1, 0)
	require.NoError(t, err)

	var draws []time.Duration
	for now := time.Duration(0); now < 20*time.Second; now += time.Millisecond {
		if p.Due(now, false) {
			p.Advance(now)
			draws = append(draws, now)
		}
	}

	require.Greater(t, len(draws), 100)
	avg := (draws[len(draws)-1] - draws[0]) / time.Duration(len(draws)-1)
	assert.InDelta(t, float64(time.Second/rate), float64(avg), float64(50*time.Microsecond))
	for i := 1; i < len(draws); i++ {
		gap := draws[i] - draws[i-1]
		assert.GreaterOrEqual(t, gap, 33*time.Millisecond)
		assert.LessOrEqual(t, gap, 34*time.Millisecond)
	}
	assert.Zero(t, p.Skipped())
}

func TestPacer_stallSkipsWholeFrames(t *testing.T) {
	p, err := NewPacer(10, 1, 0)
	require.NoError(t, err)
	p.Advance(0)
	require.Equal(t, 100*time.Millisecond, p.Deadline())

	// Suspended for ten and a half periods past the deadline.
	now := 100*time.Millisecond + 1050*time.Millisecond
	require.True(t, p.Due(now, false))
	p.Advance(now)

	assert.Equal(t, uint64(10), p.Skipped())
	assert.Greater(t, p.Deadline(), now)
	assert.LessOrEqual(t, p.Deadline()-now, p.Period())

	// One redraw per period resumes, with no backlog.
	assert.False(t, p.Due(now+time.Millisecond, false))
	assert.True(t, p.Due(p.Deadline(), false))
}

func TestPacer_earlyRedrawAdvancesOnePeriod(t *testing.T) {
	p, err := NewPacer(10, 1, 0)
	require.NoError(t, err)
	p.Advance(0)

	require.True(t, p.Due(20*time.Millisecond, true))
	p.Advance(20 * time.Millisecond)
	assert.Equal(t, 200*time.Millisecond, p.Deadline())
	assert.Zero(t, p.Skipped())
}
