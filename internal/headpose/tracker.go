package headpose

import (
	"fmt"
	"math"

	"github.com/ayusman/drishti/internal/landmark"
	"github.com/ayusman/drishti/internal/signal"
)

// TrackerConfig holds the head tracker tunables.
type TrackerConfig struct {
	// Smoothing is the weight kept from the previous position, in [0, 1).
	Smoothing float64
	// RangeX and RangeY are the nose travel, in normalized units, that maps to
	// a full deflection of ±1.
	RangeX float64
	RangeY float64
	// InvertX mirrors horizontal movement, for unmirrored camera feeds.
	InvertX bool
}

// DefaultTrackerConfig returns a TrackerConfig with the standard settings.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		Smoothing: 0.7,
		RangeX:    0.12,
		RangeY:    0.10,
	}
}

// Calibration is the neutral head position the tracker measures from.
type Calibration struct {
	CenterX      float64 `json:"center_x"`
	CenterY      float64 `json:"center_y"`
	RangeX       float64 `json:"range_x"`
	RangeY       float64 `json:"range_y"`
	IsCalibrated bool    `json:"is_calibrated"`
}

// Position is a calibration-relative pointer position in [-1, 1] on each axis.
type Position struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	RawX float64 `json:"raw_x"`
	RawY float64 `json:"raw_y"`
}

// Tracker follows the nose tip relative to a calibrated center.
type Tracker struct {
	config   TrackerConfig
	cal      Calibration
	smoothed Position
}

// NewTracker creates an uncalibrated Tracker. Until calibrated it measures
// from the frame center.
func NewTracker(config TrackerConfig) *Tracker {
	t := &Tracker{config: config}
	t.cal = t.uncalibrated()
	return t
}

func (t *Tracker) uncalibrated() Calibration {
	return Calibration{CenterX: 0.5, CenterY: 0.5, RangeX: t.config.RangeX, RangeY: t.config.RangeY}
}

// Calibrate takes the current nose position as center and clears smoothing.
func (t *Tracker) Calibrate(face landmark.Set) error {
	if err := face.Require(landmark.NoseTip); err != nil {
		return fmt.Errorf("head tracker calibrate: %w", err)
	}
	nose := face[landmark.NoseTip]
	t.cal = Calibration{
		CenterX:      nose.X,
		CenterY:      nose.Y,
		RangeX:       t.config.RangeX,
		RangeY:       t.config.RangeY,
		IsCalibrated: true,
	}
	t.smoothed = Position{}
	return nil
}

// Track advances the smoothed position from the nose tip in face.
func (t *Tracker) Track(face landmark.Set) (Position, error) {
	if err := face.Require(landmark.NoseTip); err != nil {
		return t.smoothed, fmt.Errorf("head tracker: %w", err)
	}
	nose := face[landmark.NoseTip]

	rawX := signal.Clamp(landmark.Ratio(nose.X-t.cal.CenterX, t.cal.RangeX), -1, 1)
	rawY := signal.Clamp(landmark.Ratio(nose.Y-t.cal.CenterY, t.cal.RangeY), -1, 1)
	if t.config.InvertX {
		rawX = -rawX
	}

	k := t.config.Smoothing
	t.smoothed = Position{
		X:    signal.Clamp(t.smoothed.X*k+rawX*(1-k), -1, 1),
		Y:    signal.Clamp(t.smoothed.Y*k+rawY*(1-k), -1, 1),
		RawX: rawX,
		RawY: rawY,
	}
	return t.smoothed, nil
}

// Calibration returns the active calibration.
func (t *Tracker) Calibration() Calibration {
	return t.cal
}

// Config returns the current configuration.
func (t *Tracker) Config() TrackerConfig {
	return t.config
}

// SetSmoothing changes the smoothing factor. It must lie in [0, 1).
func (t *Tracker) SetSmoothing(v float64) error {
	if math.IsNaN(v) || v < 0 || v >= 1 {
		return fmt.Errorf("smoothing %v outside [0, 1): %w", v, ErrInvalidConfig)
	}
	t.config.Smoothing = v
	return nil
}

// SetRange changes the travel that maps to full deflection. It applies to the
// active calibration immediately.
func (t *Tracker) SetRange(x, y float64) error {
	if !(x > 0 && x <= 1) || !(y > 0 && y <= 1) {
		return fmt.Errorf("range (%v, %v) outside (0, 1]: %w", x, y, ErrInvalidConfig)
	}
	t.config.RangeX, t.config.RangeY = x, y
	t.cal.RangeX, t.cal.RangeY = x, y
	return nil
}

// SetInvertX mirrors or unmirrors horizontal movement.
func (t *Tracker) SetInvertX(invert bool) {
	t.config.InvertX = invert
}

// Reset forgets the calibration and smoothing state.
func (t *Tracker) Reset() {
	t.cal = t.uncalibrated()
	t.smoothed = Position{}
}
