package pacing

import (
	"time"
)

// Stats accumulates the intervals between consecutive redraws.
type Stats struct {
	p50, p90, p99 *quantile
	min, max      time.Duration
	sum           time.Duration
	count         int
}

// Summary is a point-in-time view of [Stats].
type Summary struct {
	Count int
	Min   time.Duration
	Max   time.Duration
	Mean  time.Duration
	P50   time.Duration
	P90   time.Duration
	P99   time.Duration
}

func NewStats() *Stats {
	s := new(Stats)
	s.Reset()
	return s
}

// Record adds one redraw interval.
func (s *Stats) Record(interval time.Duration) {
	if s.count == 0 || interval < s.min {
		s.min = interval
	}
	if interval > s.max {
		s.max = interval
	}
	s.sum += interval
	s.count++
	x := float64(interval)
	s.p50.observe(x)
	s.p90.observe(x)
	s.p99.observe(x)
}

func (s *Stats) Summary() Summary {
	if s.count == 0 {
		return Summary{}
	}
	return Summary{
		Count: s.count,
		Min:   s.min,
		Max:   s.max,
		Mean:  s.sum / time.Duration(s.count),
		P50:   time.Duration(s.p50.value()),
		P90:   time.Duration(s.p90.value()),
		P99:   time.Duration(s.p99.value()),
	}
}

// Reset discards every observation.
func (s *Stats) Reset() {
	*s = Stats{
		p50: newQuantile(0.50),
		p90: newQuantile(0.90),
		p99: newQuantile(0.99),
	}
}
