package signal

import "math"

// DecayCounter counts consecutive active frames and backs off gradually on inactive
// ones, so a single noisy frame does not erase an episode.
type DecayCounter struct {
	count int
	decay int
}

// NewDecayCounter creates a counter that loses decay per inactive frame.
func NewDecayCounter(decay int) *DecayCounter {
	if decay < 1 {
		decay = 1
	}
	return &DecayCounter{decay: decay}
}

// Observe increments on active frames and decays toward zero otherwise.
func (c *DecayCounter) Observe(active bool) int {
	if active {
		c.count++
	} else {
		c.count = max(0, c.count-c.decay)
	}
	return c.count
}

// Count returns the current value.
func (c *DecayCounter) Count() int { return c.count }

// SetDecay changes the per-frame decay. Values below 1 are ignored.
func (c *DecayCounter) SetDecay(decay int) {
	if decay < 1 {
		return
	}
	c.decay = decay
}

// Reset zeroes the counter.
func (c *DecayCounter) Reset() { c.count = 0 }

// Clamp limits v to [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if v < lo || math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}
