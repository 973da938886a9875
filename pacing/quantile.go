package pacing

// quantile estimates a single quantile of a stream with the P-Square
// algorithm (Jain and Chlamtac, 1985): five markers track the minimum,
// the target quantile, the maximum and two midpoints, so each
// observation costs O(1) and no samples are retained.
type quantile struct {
	p       float64
	heights [5]float64
	pos     [5]int
	want    [5]float64
	step    [5]float64
	seen    int
}

func newQuantile(p float64) *quantile {
	p = min(max(p, 0), 1)
	return &quantile{
		p:    p,
		step: [5]float64{0, p / 2, p, (1 + p) / 2, 1},
	}
}

func (q *quantile) observe(x float64) {
	if q.seen < 5 {
		q.heights[q.seen] = x
		q.seen++
		if q.seen == 5 {
			q.seed()
		}
		return
	}
	q.seen++

	var cell int
	switch {
	case x < q.heights[0]:
		q.heights[0] = x
	case x >= q.heights[4]:
		q.heights[4] = x
		cell = 3
	default:
		for cell = 0; cell < 3; cell++ {
			if x < q.heights[cell+1] {
				break
			}
		}
	}

	for i := cell + 1; i < 5; i++ {
		q.pos[i]++
	}
	for i := range q.want {
		q.want[i] += q.step[i]
	}

	for i := 1; i < 4; i++ {
		d := q.want[i] - float64(q.pos[i])
		if (d < 1 || q.pos[i+1]-q.pos[i] <= 1) && (d > -1 || q.pos[i-1]-q.pos[i] >= -1) {
			continue
		}
		sign := 1
		if d < 0 {
			sign = -1
		}
		if h := q.parabolic(i, sign); q.heights[i-1] < h && h < q.heights[i+1] {
			q.heights[i] = h
		} else {
			q.heights[i] = q.linear(i, sign)
		}
		q.pos[i] += sign
	}
}

// seed sorts the first five observations into the markers.
func (q *quantile) seed() {
	h := &q.heights
	for i := 1; i < 5; i++ {
		for j := i; j > 0 && h[j-1] > h[j]; j-- {
			h[j-1], h[j] = h[j], h[j-1]
		}
	}
	q.pos = [5]int{0, 1, 2, 3, 4}
	q.want = [5]float64{0, 2 * q.p, 4 * q.p, 2 + 2*q.p, 4}
}

func (q *quantile) parabolic(i, sign int) float64 {
	d := float64(sign)
	n0, n1, n2 := float64(q.pos[i-1]), float64(q.pos[i]), float64(q.pos[i+1])
	h0, h1, h2 := q.heights[i-1], q.heights[i], q.heights[i+1]
	return h1 + d/(n2-n0)*((n1-n0+d)*(h2-h1)/(n2-n1)+(n2-n1-d)*(h1-h0)/(n1-n0))
}

func (q *quantile) linear(i, sign int) float64 {
	j := i + sign
	return q.heights[i] + float64(sign)*(q.heights[j]-q.heights[i])/float64(q.pos[j]-q.pos[i])
}

// value returns the current estimate. Below five observations it picks
// the nearest rank of the samples seen so far.
func (q *quantile) value() float64 {
	if q.seen == 0 {
		return 0
	}
	if q.seen >= 5 {
		return q.heights[2]
	}
	var sorted [5]float64
	copy(sorted[:], q.heights[:q.seen])
	s := sorted[:q.seen]
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
	return s[int(float64(len(s)-1)*q.p)]
}
