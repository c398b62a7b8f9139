package gesture

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/drishti/internal/signal"
)

// ErrInvalidConfig is returned by setters given an out-of-range value.
var ErrInvalidConfig = errors.New("invalid gesture config")

// HoldConfig holds the hold recognizer tunables.
type HoldConfig struct {
	// HoldTime is how long a gesture must be seen continuously before it fires.
	HoldTime time.Duration
	// Cooldown is the quiet period after a fire during which nothing fires.
	Cooldown time.Duration
}

// DefaultHoldConfig returns a HoldConfig with the standard timings.
func DefaultHoldConfig() HoldConfig {
	return HoldConfig{
		HoldTime: 300 * time.Millisecond,
		Cooldown: 500 * time.Millisecond,
	}
}

// HoldState is the per-frame hold recognizer output.
type HoldState struct {
	// Candidate is the gesture currently being held toward a fire.
	Candidate Gesture `json:"candidate"`
	// Progress is the held fraction of HoldTime, in [0, 1].
	Progress float64 `json:"progress"`
	// Fired is set on the frame a held gesture fires.
	Fired Gesture `json:"fired"`
}

// HoldRecognizer turns per-frame classifications into single fires. A fired
// gesture must be released before it can fire again.
type HoldRecognizer struct {
	config    HoldConfig
	candidate Gesture
	since     time.Time
	latched   Gesture
	quietTill time.Time
}

// NewHoldRecognizer creates a HoldRecognizer with the given configuration.
func NewHoldRecognizer(config HoldConfig) *HoldRecognizer {
	return &HoldRecognizer{config: config}
}

// Update advances the recognizer with this frame's gesture.
func (r *HoldRecognizer) Update(g Gesture, now time.Time) HoldState {
	if g != r.latched {
		r.latched = None
	}
	if g == None || g == r.latched {
		r.candidate = None
		r.since = time.Time{}
		return HoldState{}
	}

	if g != r.candidate {
		r.candidate = g
		r.since = now
	}

	held := now.Sub(r.since)
	state := HoldState{
		Candidate: g,
		Progress:  signal.Clamp01(float64(held) / float64(max(1, r.config.HoldTime))),
	}
	if now.Before(r.quietTill) || held < r.config.HoldTime {
		return state
	}

	state.Fired = g
	state.Progress = 1
	r.latched = g
	r.candidate = None
	r.since = time.Time{}
	r.quietTill = now.Add(r.config.Cooldown)
	return state
}

// InCooldown reports whether now falls inside the post-fire quiet period.
func (r *HoldRecognizer) InCooldown(now time.Time) bool {
	return now.Before(r.quietTill)
}

// Config returns the current configuration.
func (r *HoldRecognizer) Config() HoldConfig {
	return r.config
}

// SetHoldTime changes the minimum hold. It must be positive.
func (r *HoldRecognizer) SetHoldTime(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("hold time %v must be positive: %w", d, ErrInvalidConfig)
	}
	r.config.HoldTime = d
	return nil
}

// SetCooldown changes the post-fire quiet period. It must not be negative.
func (r *HoldRecognizer) SetCooldown(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("cooldown %v is negative: %w", d, ErrInvalidConfig)
	}
	r.config.Cooldown = d
	return nil
}

// Reset forgets the candidate, the latch and the cooldown.
func (r *HoldRecognizer) Reset() {
	*r = HoldRecognizer{config: r.config}
}
