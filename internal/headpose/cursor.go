package headpose

import (
	"fmt"
	"math"

	"github.com/ayusman/drishti/internal/signal"
)

// CursorConfig holds the pointer mapping tunables.
type CursorConfig struct {
	// DeadZone is the deflection, in [0, 1), below which the pointer stays centered.
	DeadZone float64
	// Speed scales deflection outside the dead zone.
	Speed float64
}

// DefaultCursorConfig returns a CursorConfig with the standard settings.
func DefaultCursorConfig() CursorConfig {
	return CursorConfig{DeadZone: 0.1, Speed: 1.0}
}

// Cursor maps tracker positions to screen pixels.
type Cursor struct {
	config CursorConfig
}

// NewCursor creates a Cursor with the given configuration.
func NewCursor(config CursorConfig) *Cursor {
	return &Cursor{config: config}
}

// Map converts pos to pixel coordinates on a width x height screen. A centered
// position maps to the screen center.
func (c *Cursor) Map(pos Position, width, height int) (x, y int) {
	fx := c.axis(pos.X)
	fy := c.axis(pos.Y)
	return toPixel(fx, width), toPixel(fy, height)
}

func (c *Cursor) axis(v float64) float64 {
	mag := math.Abs(v)
	if mag < c.config.DeadZone {
		return 0
	}
	scaled := (mag - c.config.DeadZone) / (1 - c.config.DeadZone) * c.config.Speed
	return signal.Clamp(math.Copysign(scaled, v), -1, 1)
}

func toPixel(v float64, size int) int {
	if size <= 1 {
		return 0
	}
	return int(math.Round((v + 1) / 2 * float64(size-1)))
}

// Config returns the current configuration.
func (c *Cursor) Config() CursorConfig {
	return c.config
}

// SetDeadZone changes the dead zone. It must lie in [0, 1).
func (c *Cursor) SetDeadZone(v float64) error {
	if math.IsNaN(v) || v < 0 || v >= 1 {
		return fmt.Errorf("dead zone %v outside [0, 1): %w", v, ErrInvalidConfig)
	}
	c.config.DeadZone = v
	return nil
}

// SetSpeed changes the speed multiplier. It must be positive.
func (c *Cursor) SetSpeed(v float64) error {
	if math.IsNaN(v) || v <= 0 || math.IsInf(v, 0) {
		return fmt.Errorf("speed %v must be positive: %w", v, ErrInvalidConfig)
	}
	c.config.Speed = v
	return nil
}
