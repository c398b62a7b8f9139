// Package mouth tracks mouth openness and smiling from face-mesh lip points.
package mouth

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/drishti/internal/landmark"
	"github.com/ayusman/drishti/internal/signal"
)

// ErrInvalidConfig is returned by setters given an out-of-range value.
var ErrInvalidConfig = errors.New("invalid mouth config")

// Config holds the mouth detector tunables.
type Config struct {
	// OpenThreshold is the smoothed lip gap, as a fraction of mouth width, above
	// which the mouth is open.
	OpenThreshold float64
	// YawnScale maps openness to OpenRatio; openness at or above it reads as 1.
	YawnScale float64
	// SmileScale converts corner lift (fraction of mouth width) to intensity.
	SmileScale float64
	// SmileThreshold is the intensity above which the face is smiling.
	SmileThreshold float64
	// History is the moving-average length for openness.
	History int
}

// DefaultConfig returns a Config with the standard thresholds.
func DefaultConfig() Config {
	return Config{
		OpenThreshold:  0.03,
		YawnScale:      0.2,
		SmileScale:     8,
		SmileThreshold: 0.3,
		History:        5,
	}
}

// State is the per-frame mouth detector output.
type State struct {
	Openness       float64 `json:"openness"`
	OpenRatio      float64 `json:"open_ratio"`
	IsOpen         bool    `json:"is_open"`
	SmileIntensity float64 `json:"smile_intensity"`
	IsSmiling      bool    `json:"is_smiling"`
}

// Detector smooths mouth openness over a short history.
type Detector struct {
	config   Config
	openness *signal.Window
}

// NewDetector creates a Detector with the given configuration.
func NewDetector(config Config) *Detector {
	return &Detector{
		config:   config,
		openness: signal.NewWindow(config.History),
	}
}

// Update measures the mouth in face. A zero mouth width reads as closed.
func (d *Detector) Update(face landmark.Set) (State, error) {
	if err := face.RequireAll(landmark.UpperLip, landmark.LowerLip, landmark.MouthLeft, landmark.MouthRight); err != nil {
		return State{}, fmt.Errorf("mouth: %w", err)
	}

	upper, lower := face[landmark.UpperLip], face[landmark.LowerLip]
	left, right := face[landmark.MouthLeft], face[landmark.MouthRight]

	width := landmark.Distance2D(left, right)
	d.openness.Push(landmark.Ratio(landmark.Distance2D(upper, lower), width))
	smoothed := d.openness.Mean()

	// Corners above the lip midpoint mean a smile; image y grows downward.
	lift := (upper.Y+lower.Y)/2 - (left.Y+right.Y)/2
	smile := signal.Clamp01(landmark.Ratio(lift, width) * d.config.SmileScale)

	return State{
		Openness:       smoothed,
		OpenRatio:      signal.Clamp01(landmark.Ratio(smoothed, d.config.YawnScale)),
		IsOpen:         smoothed > d.config.OpenThreshold,
		SmileIntensity: smile,
		IsSmiling:      smile > d.config.SmileThreshold,
	}, nil
}

// Config returns the current configuration.
func (d *Detector) Config() Config {
	return d.config
}

// SetOpenThreshold changes the open threshold. It must lie in (0, 1).
func (d *Detector) SetOpenThreshold(v float64) error {
	if math.IsNaN(v) || v <= 0 || v >= 1 {
		return fmt.Errorf("open threshold %v outside (0, 1): %w", v, ErrInvalidConfig)
	}
	d.config.OpenThreshold = v
	return nil
}

// SetYawnScale changes the openness that maps to a full OpenRatio.
func (d *Detector) SetYawnScale(v float64) error {
	if math.IsNaN(v) || v <= 0 {
		return fmt.Errorf("yawn scale %v must be positive: %w", v, ErrInvalidConfig)
	}
	d.config.YawnScale = v
	return nil
}

// Reset clears the smoothing history.
func (d *Detector) Reset() {
	d.openness.Reset()
}
