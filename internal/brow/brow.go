// Package brow detects raised eyebrows against a calibrated resting position.
package brow

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/drishti/internal/landmark"
)

// ErrInvalidConfig is returned by setters given an out-of-range value.
var ErrInvalidConfig = errors.New("invalid brow config")

// Brow point indices along each eyebrow arch, image-space left and right.
var (
	LeftBrow  = []int{70, 63, 105, 66, 107}
	RightBrow = []int{336, 296, 334, 293, 300}
)

// Config holds the eyebrow detector tunables.
type Config struct {
	// RaiseThreshold is how far, in normalized units, a brow must rise above its
	// baseline to count as raised.
	RaiseThreshold float64
}

// DefaultConfig returns a Config with the standard threshold.
func DefaultConfig() Config {
	return Config{RaiseThreshold: 0.015}
}

// State is the per-frame eyebrow detector output. Lift is positive when a brow
// sits above its baseline.
type State struct {
	LeftRaised  bool    `json:"left_raised"`
	RightRaised bool    `json:"right_raised"`
	BothRaised  bool    `json:"both_raised"`
	LeftLift    float64 `json:"left_lift"`
	RightLift   float64 `json:"right_lift"`
	Calibrated  bool    `json:"calibrated"`
}

// Detector compares brow height against a per-brow baseline.
type Detector struct {
	config     Config
	baseLeft   float64
	baseRight  float64
	calibrated bool
}

// NewDetector creates an uncalibrated Detector.
func NewDetector(config Config) *Detector {
	return &Detector{config: config}
}

// Calibrate records the current brow heights as the resting baseline.
func (d *Detector) Calibrate(face landmark.Set) error {
	left, right, err := browHeights(face)
	if err != nil {
		return err
	}
	d.baseLeft, d.baseRight = left, right
	d.calibrated = true
	return nil
}

// Update measures both brows. The first successful call calibrates when no
// baseline has been recorded, so it always reports neither brow raised.
func (d *Detector) Update(face landmark.Set) (State, error) {
	left, right, err := browHeights(face)
	if err != nil {
		return State{Calibrated: d.calibrated}, err
	}
	if !d.calibrated {
		d.baseLeft, d.baseRight = left, right
		d.calibrated = true
	}

	s := State{
		LeftLift:   d.baseLeft - left,
		RightLift:  d.baseRight - right,
		Calibrated: true,
	}
	s.LeftRaised = s.LeftLift > d.config.RaiseThreshold
	s.RightRaised = s.RightLift > d.config.RaiseThreshold
	s.BothRaised = s.LeftRaised && s.RightRaised
	return s, nil
}

// Calibrated reports whether a baseline has been recorded.
func (d *Detector) Calibrated() bool {
	return d.calibrated
}

// Config returns the current configuration.
func (d *Detector) Config() Config {
	return d.config
}

// SetRaiseThreshold changes the raise threshold. It must lie in (0, 1).
func (d *Detector) SetRaiseThreshold(v float64) error {
	if math.IsNaN(v) || v <= 0 || v >= 1 {
		return fmt.Errorf("raise threshold %v outside (0, 1): %w", v, ErrInvalidConfig)
	}
	d.config.RaiseThreshold = v
	return nil
}

// Reset drops the baseline; the next Update recalibrates.
func (d *Detector) Reset() {
	d.baseLeft, d.baseRight = 0, 0
	d.calibrated = false
}

func browHeights(face landmark.Set) (left, right float64, err error) {
	for _, idx := range [][]int{LeftBrow, RightBrow} {
		if err := face.RequireAll(idx...); err != nil {
			return 0, 0, fmt.Errorf("brow: %w", err)
		}
	}
	return face.MeanY(LeftBrow...), face.MeanY(RightBrow...), nil
}
