package eye

import (
	"fmt"
	"time"

	"github.com/ayusman/drishti/internal/landmark"
)

// BlinkConfig holds the blink detector tunables.
type BlinkConfig struct {
	// EARThreshold is the average EAR below which a frame counts as closed.
	EARThreshold float64
	// ConsecFrames is the minimum run of closed frames that makes a blink.
	ConsecFrames int
}

// DefaultBlinkConfig returns a BlinkConfig with the standard thresholds.
func DefaultBlinkConfig() BlinkConfig {
	return BlinkConfig{
		EARThreshold: 0.21,
		ConsecFrames: 2,
	}
}

// BlinkState is the per-frame blink detector output.
type BlinkState struct {
	IsBlinking bool    `json:"is_blinking"`
	LeftEAR    float64 `json:"left_ear"`
	RightEAR   float64 `json:"right_ear"`
	AvgEAR     float64 `json:"avg_ear"`
	BlinkCount int     `json:"blink_count"`

	// Completed is set on the frame a counted blink ends; Duration is how long
	// the eyes were closed for it.
	Completed bool          `json:"completed"`
	Duration  time.Duration `json:"duration"`
}

// BlinkDetector counts blinks from runs of low-EAR frames.
type BlinkDetector struct {
	config     BlinkConfig
	counter    int
	total      int
	closedFrom time.Time
}

// NewBlinkDetector creates a BlinkDetector with the given configuration.
func NewBlinkDetector(config BlinkConfig) *BlinkDetector {
	return &BlinkDetector{config: config}
}

// Update computes both EARs from face and advances the state machine.
// On short input it returns a zero state and leaves the counters untouched.
func (d *BlinkDetector) Update(face landmark.Set, now time.Time) (BlinkState, error) {
	left, right, err := BothAspectRatios(face)
	if err != nil {
		return BlinkState{BlinkCount: d.total}, err
	}
	return d.UpdateEAR(left, right, now), nil
}

// UpdateEAR advances the state machine with precomputed EAR values.
func (d *BlinkDetector) UpdateEAR(left, right float64, now time.Time) BlinkState {
	avg := (left + right) / 2
	state := BlinkState{
		LeftEAR:  left,
		RightEAR: right,
		AvgEAR:   avg,
	}

	if avg < d.config.EARThreshold {
		if d.counter == 0 {
			d.closedFrom = now
		}
		d.counter++
		state.IsBlinking = true
	} else {
		if d.counter >= d.config.ConsecFrames {
			d.total++
			state.Completed = true
			state.Duration = now.Sub(d.closedFrom)
		}
		d.counter = 0
	}

	state.BlinkCount = d.total
	return state
}

// BlinkCount returns the number of blinks since creation or the last Reset.
func (d *BlinkDetector) BlinkCount() int {
	return d.total
}

// Config returns the current configuration.
func (d *BlinkDetector) Config() BlinkConfig {
	return d.config
}

// SetThreshold changes the closed-eye EAR threshold. It must lie in (0, 1).
func (d *BlinkDetector) SetThreshold(threshold float64) error {
	if err := validRatio(threshold); err != nil {
		return err
	}
	d.config.EARThreshold = threshold
	return nil
}

// SetConsecFrames changes the minimum closed run. It must be at least 1.
func (d *BlinkDetector) SetConsecFrames(frames int) error {
	if frames < 1 {
		return fmt.Errorf("consecutive frames %d < 1: %w", frames, ErrInvalidConfig)
	}
	d.config.ConsecFrames = frames
	return nil
}

// Reset clears the blink count and any closure in progress.
func (d *BlinkDetector) Reset() {
	d.counter = 0
	d.total = 0
	d.closedFrom = time.Time{}
}
