package indicator

import "math"

// ring is a fixed capacity FIFO of float64 values.
type ring struct {
	buf   []float64
	start int
	size  int
}

func newRing(capacity int) *ring {
	return &ring{
		buf:   make([]float64, capacity),
		start: 0,
		size:  0,
	}
}

// push appends v. When the ring is full the oldest value is evicted and returned.
func (r *ring) push(v float64) (float64, bool) {
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = v
		r.size++

		return 0, false
	}

	evicted := r.buf[r.start]
	r.buf[r.start] = v
	r.start = (r.start + 1) % len(r.buf)

	return evicted, true
}

func (r *ring) full() bool {
	return r.size == len(r.buf)
}

// oldest returns the value pushed longest ago.
func (r *ring) oldest() float64 {
	return r.buf[r.start]
}

func (r *ring) each(fn func(v float64)) {
	for i := 0; i < r.size; i++ {
		fn(r.buf[(r.start+i)%len(r.buf)])
	}
}

func (r *ring) reset() {
	r.start = 0
	r.size = 0
}

// resyncEvery bounds floating point drift of incremental sums by recomputing
// them from the window after this many updates.
const resyncEvery = 512

// compensatedSum is a Neumaier running sum.
type compensatedSum struct {
	sum  float64
	comp float64
}

func (c *compensatedSum) add(x float64) {
	t := c.sum + x
	if math.Abs(c.sum) >= math.Abs(x) {
		c.comp += (c.sum - t) + x
	} else {
		c.comp += (x - t) + c.sum
	}

	c.sum = t
}

func (c *compensatedSum) value() float64 {
	return c.sum + c.comp
}

func (c *compensatedSum) reset() {
	c.sum = 0
	c.comp = 0
}

// windowSum recomputes a compensated sum over the ring contents.
func windowSum(r *ring) compensatedSum {
	var s compensatedSum

	r.each(s.add)

	return s
}
