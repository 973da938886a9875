package pacing

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStats_empty(t *testing.T) {
	assert.Equal(t, Summary{}, NewStats().Summary())
}

func TestStats_fewSamples(t *testing.T) {
	s := NewStats()
	s.Record(30 * time.Millisecond)
	s.Record(10 * time.Millisecond)
	s.Record(20 * time.Millisecond)

	sum := s.Summary()
	assert.Equal(t, 3, sum.Count)
	assert.Equal(t, 10*time.Millisecond, sum.Min)
	assert.Equal(t, 30*time.Millisecond, sum.Max)
	assert.Equal(t, 20*time.Millisecond, sum.Mean)
	assert.Equal(t, 20*time.Millisecond, sum.P50)
}

func TestStats_quantiles(t *testing.T) {
	s := NewStats()
	r := rand.New(rand.NewPCG(1, 2))
	for range 10000 {
		s.Record(time.Duration(r.IntN(1000)) * time.Microsecond)
	}

	sum := s.Summary()
	assert.Equal(t, 10000, sum.Count)
	assert.InDelta(t, float64(500*time.Microsecond), float64(sum.P50), float64(30*time.Microsecond))
	assert.InDelta(t, float64(900*time.Microsecond), float64(sum.P90), float64(30*time.Microsecond))
	assert.InDelta(t, float64(990*time.Microsecond), float64(sum.P99), float64(25*time.Microsecond))

	s.Reset()
	assert.Equal(t, Summary{}, s.Summary())
}
