// Package sleep decides whether the subject has fallen asleep from eye closure
// and head droop, and keeps wall-clock sleep totals.
package sleep

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ayusman/drishti/internal/signal"
)

// ErrInvalidConfig is returned by setters given an out-of-range value.
var ErrInvalidConfig = errors.New("invalid sleep config")

// Config holds the sleep detector tunables. Frame counts assume roughly 30
// frames per second.
type Config struct {
	// EARThreshold is the average EAR below which the eyes count as closed.
	EARThreshold float64
	// EyeClosedFrames is the closed-eye count that alone means sleep.
	EyeClosedFrames int
	// HeadDownFrames is the head-down count that, with closed eyes, means sleep.
	HeadDownFrames int
	// PitchThreshold is the pitch in radians above which the head is down.
	PitchThreshold float64
	// Decay is how much each counter loses on a frame where its condition is false.
	Decay int
}

// DefaultConfig returns a Config with the standard thresholds.
func DefaultConfig() Config {
	return Config{
		EARThreshold:    0.21,
		EyeClosedFrames: 45,
		HeadDownFrames:  30,
		PitchThreshold:  0.25,
		Decay:           2,
	}
}

// State is the per-frame sleep detector output.
type State struct {
	IsSleeping      bool    `json:"is_sleeping"`
	EyesClosed      bool    `json:"eyes_closed"`
	HeadDown        bool    `json:"head_down"`
	EyeClosedFrames int     `json:"eye_closed_frames"`
	HeadDownFrames  int     `json:"head_down_frames"`
	Score           float64 `json:"score"`

	// Started and Ended mark the frames where a sleep episode begins and ends.
	Started bool `json:"started"`
	Ended   bool `json:"ended"`
	// Duration is the current episode length, or the finished episode's on Ended.
	Duration time.Duration `json:"duration"`
}

// Detector tracks eye and head counters and sleep episodes.
type Detector struct {
	config    Config
	eyes      *signal.DecayCounter
	head      *signal.DecayCounter
	sleeping  bool
	startedAt time.Time
	total     time.Duration
	episodes  int
}

// NewDetector creates a Detector with the given configuration.
func NewDetector(config Config) *Detector {
	return &Detector{
		config: config,
		eyes:   signal.NewDecayCounter(config.Decay),
		head:   signal.NewDecayCounter(config.Decay),
	}
}

// Update advances the counters with this frame's average EAR and head pitch.
func (d *Detector) Update(ear, pitch float64, now time.Time) State {
	return d.observe(ear < d.config.EARThreshold, pitch > d.config.PitchThreshold, now)
}

// Away advances the counters for a frame without a face, as eyes open and head
// level, so an episode in progress decays and ends while the subject is out of
// view.
func (d *Detector) Away(now time.Time) State {
	return d.observe(false, false, now)
}

func (d *Detector) observe(closed, down bool, now time.Time) State {
	cfg := d.config
	eyeFrames := d.eyes.Observe(closed)
	headFrames := d.head.Observe(down)

	// The half-threshold combined trigger covers the full one.
	sleeping := eyeFrames >= cfg.EyeClosedFrames ||
		(closed && headFrames >= cfg.HeadDownFrames) ||
		(closed && headFrames >= cfg.HeadDownFrames/2)

	s := State{
		IsSleeping:      sleeping,
		EyesClosed:      closed,
		HeadDown:        down,
		EyeClosedFrames: eyeFrames,
		HeadDownFrames:  headFrames,
		Score:           d.score(eyeFrames, headFrames),
	}

	switch {
	case sleeping && !d.sleeping:
		d.sleeping = true
		d.startedAt = now
		d.episodes++
		s.Started = true
	case !sleeping && d.sleeping:
		s.Duration = now.Sub(d.startedAt)
		d.total += s.Duration
		d.sleeping = false
		s.Ended = true
	}
	if d.sleeping {
		s.Duration = now.Sub(d.startedAt)
	}
	return s
}

func (d *Detector) score(eyeFrames, headFrames int) float64 {
	eye := 60 * math.Min(1, float64(eyeFrames)/float64(max(1, d.config.EyeClosedFrames)))
	head := 40 * math.Min(1, float64(headFrames)/float64(max(1, d.config.HeadDownFrames)))
	return math.Min(100, eye+head)
}

// IsSleeping reports whether an episode is in progress.
func (d *Detector) IsSleeping() bool {
	return d.sleeping
}

// CurrentSleepDuration returns how long the current episode has lasted at now,
// or zero when awake.
func (d *Detector) CurrentSleepDuration(now time.Time) time.Duration {
	if !d.sleeping {
		return 0
	}
	return now.Sub(d.startedAt)
}

// TotalSleepDuration returns the summed length of every episode, including the
// one in progress.
func (d *Detector) TotalSleepDuration(now time.Time) time.Duration {
	return d.total + d.CurrentSleepDuration(now)
}

// Episodes returns how many sleep episodes have started.
func (d *Detector) Episodes() int {
	return d.episodes
}

// Config returns the current configuration.
func (d *Detector) Config() Config {
	return d.config
}

// SetEARThreshold changes the closed-eye threshold. It must lie in (0, 1).
func (d *Detector) SetEARThreshold(v float64) error {
	if math.IsNaN(v) || v <= 0 || v >= 1 {
		return fmt.Errorf("ear threshold %v outside (0, 1): %w", v, ErrInvalidConfig)
	}
	d.config.EARThreshold = v
	return nil
}

// SetFrameThresholds changes the eye-closed and head-down frame counts.
func (d *Detector) SetFrameThresholds(eyeClosed, headDown int) error {
	if eyeClosed < 1 || headDown < 1 {
		return fmt.Errorf("frame thresholds (%d, %d) must be positive: %w", eyeClosed, headDown, ErrInvalidConfig)
	}
	d.config.EyeClosedFrames = eyeClosed
	d.config.HeadDownFrames = headDown
	return nil
}

// SetPitchThreshold changes the head-down pitch in radians. It must lie in (0, π/2).
func (d *Detector) SetPitchThreshold(v float64) error {
	if math.IsNaN(v) || v <= 0 || v >= math.Pi/2 {
		return fmt.Errorf("pitch threshold %v outside (0, π/2): %w", v, ErrInvalidConfig)
	}
	d.config.PitchThreshold = v
	return nil
}

// SetDecay changes the per-frame counter decay.
func (d *Detector) SetDecay(v int) error {
	if v < 1 {
		return fmt.Errorf("decay %d < 1: %w", v, ErrInvalidConfig)
	}
	d.config.Decay = v
	d.eyes.SetDecay(v)
	d.head.SetDecay(v)
	return nil
}

// Reset clears the counters, totals and any episode in progress.
func (d *Detector) Reset() {
	d.eyes.Reset()
	d.head.Reset()
	d.sleeping = false
	d.startedAt = time.Time{}
	d.total = 0
	d.episodes = 0
}
