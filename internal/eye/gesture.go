package eye

import (
	"fmt"
	"math"
	"time"

	"github.com/ayusman/drishti/internal/landmark"
	"github.com/ayusman/drishti/internal/signal"
)

// Side identifies which eye a wink belongs to.
type Side int

const (
	SideNone Side = iota
	SideLeft
	SideRight
)

// String returns the lower-case side name.
func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "none"
	}
}

// MarshalText encodes the side by name.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a side name. Unknown names decode to SideNone.
func (s *Side) UnmarshalText(b []byte) error {
	switch string(b) {
	case "left":
		*s = SideLeft
	case "right":
		*s = SideRight
	default:
		*s = SideNone
	}
	return nil
}

// GestureConfig holds the wink detector tunables.
type GestureConfig struct {
	// OpenThreshold is the smoothed EAR above which an eye is open.
	OpenThreshold float64
	// WinkDiff is the minimum EAR separation between the eyes for a wink.
	WinkDiff float64
	// ClosedThreshold is the stricter EAR below which both eyes count as closed.
	ClosedThreshold float64
	// MinWink and MaxWink bound the duration of an intentional wink.
	MinWink time.Duration
	MaxWink time.Duration
	// History is the moving-average length per eye.
	History int
}

// DefaultGestureConfig returns a GestureConfig with the standard thresholds.
func DefaultGestureConfig() GestureConfig {
	return GestureConfig{
		OpenThreshold:   0.22,
		WinkDiff:        0.08,
		ClosedThreshold: 0.18,
		MinWink:         100 * time.Millisecond,
		MaxWink:         500 * time.Millisecond,
		History:         5,
	}
}

// GestureState is the per-frame wink detector output.
type GestureState struct {
	LeftEAR    float64 `json:"left_ear"`
	RightEAR   float64 `json:"right_ear"`
	LeftOpen   bool    `json:"left_open"`
	RightOpen  bool    `json:"right_open"`
	LeftWink   bool    `json:"left_wink"`
	RightWink  bool    `json:"right_wink"`
	BothClosed bool    `json:"both_closed"`

	// Wink is set on the frame an intentional wink is released.
	Wink         Side          `json:"wink"`
	WinkDuration time.Duration `json:"wink_duration"`
}

// GestureDetector smooths per-eye EAR and classifies winks.
type GestureDetector struct {
	config   GestureConfig
	left     *signal.Window
	right    *signal.Window
	winkSide Side
	winkFrom time.Time
}

// NewGestureDetector creates a GestureDetector with the given configuration.
func NewGestureDetector(config GestureConfig) *GestureDetector {
	return &GestureDetector{
		config: config,
		left:   signal.NewWindow(config.History),
		right:  signal.NewWindow(config.History),
	}
}

// Update computes both EARs from face and advances the detector.
func (d *GestureDetector) Update(face landmark.Set, now time.Time) (GestureState, error) {
	left, right, err := BothAspectRatios(face)
	if err != nil {
		return GestureState{}, err
	}
	return d.UpdateEAR(left, right, now), nil
}

// UpdateEAR advances the detector with precomputed EAR values.
func (d *GestureDetector) UpdateEAR(left, right float64, now time.Time) GestureState {
	d.left.Push(left)
	d.right.Push(right)

	sl, sr := d.left.Mean(), d.right.Mean()
	cfg := d.config

	state := GestureState{
		LeftEAR:    sl,
		RightEAR:   sr,
		LeftOpen:   sl > cfg.OpenThreshold,
		RightOpen:  sr > cfg.OpenThreshold,
		BothClosed: sl < cfg.ClosedThreshold && sr < cfg.ClosedThreshold,
	}

	separated := math.Abs(sl-sr) > cfg.WinkDiff
	state.LeftWink = sl < cfg.OpenThreshold && state.RightOpen && separated
	state.RightWink = sr < cfg.OpenThreshold && state.LeftOpen && separated

	side := SideNone
	switch {
	case state.LeftWink:
		side = SideLeft
	case state.RightWink:
		side = SideRight
	}

	if side != d.winkSide {
		if d.winkSide != SideNone {
			held := now.Sub(d.winkFrom)
			if d.inWindow(held) {
				state.Wink = d.winkSide
				state.WinkDuration = held
			}
		}
		d.winkSide = side
		if side != SideNone {
			d.winkFrom = now
		}
	}

	return state
}

// IntentionalWink reports the wink in progress if it has lasted within the
// intentional window. Shorter and longer episodes report SideNone.
func (d *GestureDetector) IntentionalWink(now time.Time) Side {
	if d.winkSide == SideNone || !d.inWindow(now.Sub(d.winkFrom)) {
		return SideNone
	}
	return d.winkSide
}

func (d *GestureDetector) inWindow(held time.Duration) bool {
	return held >= d.config.MinWink && held <= d.config.MaxWink
}

// Config returns the current configuration.
func (d *GestureDetector) Config() GestureConfig {
	return d.config
}

// SetOpenThreshold changes the open-eye threshold. It must lie in (0, 1).
func (d *GestureDetector) SetOpenThreshold(v float64) error {
	if err := validRatio(v); err != nil {
		return err
	}
	d.config.OpenThreshold = v
	return nil
}

// SetWinkDiff changes the minimum EAR separation. It must lie in (0, 1).
func (d *GestureDetector) SetWinkDiff(v float64) error {
	if err := validRatio(v); err != nil {
		return err
	}
	d.config.WinkDiff = v
	return nil
}

// SetClosedThreshold changes the both-eyes-closed threshold. It must lie in (0, 1).
func (d *GestureDetector) SetClosedThreshold(v float64) error {
	if err := validRatio(v); err != nil {
		return err
	}
	d.config.ClosedThreshold = v
	return nil
}

// SetWinkDuration changes the intentional wink window.
func (d *GestureDetector) SetWinkDuration(shortest, longest time.Duration) error {
	if shortest <= 0 || longest <= shortest {
		return fmt.Errorf("wink window [%v, %v]: %w", shortest, longest, ErrInvalidConfig)
	}
	d.config.MinWink = shortest
	d.config.MaxWink = longest
	return nil
}

// SetHistory changes the smoothing length, keeping the newest samples.
func (d *GestureDetector) SetHistory(n int) error {
	if n < 1 {
		return fmt.Errorf("history %d < 1: %w", n, ErrInvalidConfig)
	}
	d.config.History = n
	d.left.Resize(n)
	d.right.Resize(n)
	return nil
}

// Reset clears the smoothing history and any wink in progress.
func (d *GestureDetector) Reset() {
	d.left.Reset()
	d.right.Reset()
	d.winkSide = SideNone
	d.winkFrom = time.Time{}
}
