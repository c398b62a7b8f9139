// Package signal holds the bounded buffers and counters the detectors use to smooth
// and debounce per-frame measurements.
package signal

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// Window is a fixed-capacity FIFO of samples. Once full, each Push evicts the oldest.
type Window struct {
	values []float64
	size   int
}

// NewWindow creates a window holding at most size samples. Sizes below 1 become 1.
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{
		values: make([]float64, 0, size),
		size:   size,
	}
}

// Push appends v, evicting the oldest sample when the window is full.
func (w *Window) Push(v float64) {
	if len(w.values) >= w.size {
		// Shift buffer left by 1, removing oldest sample
		copy(w.values, w.values[1:])
		w.values = w.values[:w.size-1]
	}
	w.values = append(w.values, v)
}

// Mean returns the average of the held samples, or 0 when empty.
func (w *Window) Mean() float64 {
	if len(w.values) == 0 {
		return 0
	}
	return stat.Mean(w.values, nil)
}

// Len returns the number of held samples.
func (w *Window) Len() int { return len(w.values) }

// Cap returns the capacity.
func (w *Window) Cap() int { return w.size }

// Full reports whether the window holds Cap samples.
func (w *Window) Full() bool { return len(w.values) == w.size }

// Last returns the newest sample, or 0 when empty.
func (w *Window) Last() float64 {
	if len(w.values) == 0 {
		return 0
	}
	return w.values[len(w.values)-1]
}

// Values returns a copy of the samples, oldest first.
func (w *Window) Values() []float64 {
	out := make([]float64, len(w.values))
	copy(out, w.values)
	return out
}

// Reset drops all samples.
func (w *Window) Reset() {
	w.values = w.values[:0]
}

// Resize changes the capacity, keeping the newest samples.
func (w *Window) Resize(size int) {
	if size < 1 {
		size = 1
	}
	if len(w.values) > size {
		w.values = append(w.values[:0], w.values[len(w.values)-size:]...)
	}
	w.size = size
}

// Sample is a timestamped value.
type Sample struct {
	At    time.Time
	Value float64
}

// Ring holds timestamped samples up to a fixed count, oldest first.
type Ring struct {
	samples []Sample
	size    int
}

// NewRing creates a ring holding at most size samples.
func NewRing(size int) *Ring {
	if size < 1 {
		size = 1
	}
	return &Ring{size: size}
}

// Push appends a sample, evicting the oldest when full.
func (r *Ring) Push(at time.Time, v float64) {
	if len(r.samples) >= r.size {
		copy(r.samples, r.samples[1:])
		r.samples = r.samples[:r.size-1]
	}
	r.samples = append(r.samples, Sample{At: at, Value: v})
}

// TrimBefore drops samples older than cutoff.
func (r *Ring) TrimBefore(cutoff time.Time) {
	i := 0
	for i < len(r.samples) && r.samples[i].At.Before(cutoff) {
		i++
	}
	if i > 0 {
		r.samples = append(r.samples[:0], r.samples[i:]...)
	}
}

// Since returns the values recorded at or after t.
func (r *Ring) Since(t time.Time) []float64 {
	var out []float64
	for _, s := range r.samples {
		if !s.At.Before(t) {
			out = append(out, s.Value)
		}
	}
	return out
}

// Len returns the number of held samples.
func (r *Ring) Len() int { return len(r.samples) }

// Reset drops all samples.
func (r *Ring) Reset() { r.samples = r.samples[:0] }
