package report

// Window is a fixed-size ring of recent values.
type Window struct {
	buf  []float32
	next int
	n    int
}

// NewWindow holds up to size values (at least 1).
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{buf: make([]float32, size)}
}

// Push adds v, overwriting the oldest value when full. It reports whether
// the write position wrapped back to the start, i.e. a full window of fresh
// values has been collected.
func (w *Window) Push(v float32) bool {
	w.buf[w.next] = v
	w.next++
	if w.n < len(w.buf) {
		w.n++
	}
	if w.next == len(w.buf) {
		w.next = 0
		return true
	}
	return false
}

func (w *Window) Len() int { return w.n }
func (w *Window) Cap() int { return len(w.buf) }

// Mean of the stored values, 0 when empty.
func (w *Window) Mean() float32 {
	if w.n == 0 {
		return 0
	}
	var sum float32
	for _, v := range w.buf[:w.n] {
		sum += v
	}
	return sum / float32(w.n)
}

// Range returns the smallest and largest stored values.
func (w *Window) Range() (lo, hi float32) {
	if w.n == 0 {
		return 0, 0
	}
	lo, hi = w.buf[0], w.buf[0]
	for _, v := range w.buf[1:w.n] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}
