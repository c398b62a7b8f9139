// Package fatigue aggregates blinks, yawns, head droop and eye closure into a
// fatigue score and decides when a break is due.
package fatigue

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/drishti/internal/landmark"
	"github.com/ayusman/drishti/internal/signal"
)

// ErrInvalidConfig is returned by setters given an out-of-range value.
var ErrInvalidConfig = errors.New("invalid fatigue config")

// maxBlinks bounds the blink history regardless of window length.
const maxBlinks = 1024

// Config holds the fatigue detector tunables.
type Config struct {
	// BreakInterval is the wall-clock time after which a break is due.
	BreakInterval time.Duration
	// BlinkWindow is how long blinks are kept for the duration average.
	BlinkWindow time.Duration
	// RateWindow is the trailing window for the blink rate.
	RateWindow time.Duration
	// MinBlink and MaxBlink bound a plausible blink; others are discarded.
	MinBlink time.Duration
	MaxBlink time.Duration

	// YawnRatio is the mouth open ratio above which a yawn may be under way.
	YawnRatio float64
	// YawnDuration is how long the mouth must stay open for a yawn.
	YawnDuration time.Duration
	// YawnCooldown is the minimum gap between two counted yawns.
	YawnCooldown time.Duration

	// DroopRatio is how far below baseline, relative to it, the head must sit.
	DroopRatio float64
	// DroopConfirm is the fraction of DroopRatio the recent average must reach.
	DroopConfirm float64
	// DroopSamples is the length of the confirming average.
	DroopSamples int
	// BaselineSamples is how many frames establish the head baseline.
	BaselineSamples int

	// PerclosFrames is the number of recent frames PERCLOS covers.
	PerclosFrames int
}

// DefaultConfig returns a Config with the standard thresholds.
func DefaultConfig() Config {
	return Config{
		BreakInterval:   20 * time.Minute,
		BlinkWindow:     2 * time.Minute,
		RateWindow:      time.Minute,
		MinBlink:        50 * time.Millisecond,
		MaxBlink:        500 * time.Millisecond,
		YawnRatio:       0.6,
		YawnDuration:    2 * time.Second,
		YawnCooldown:    5 * time.Second,
		DroopRatio:      0.15,
		DroopConfirm:    0.8,
		DroopSamples:    10,
		BaselineSamples: 30,
		PerclosFrames:   900,
	}
}

// Sample is one frame of fatigue input.
type Sample struct {
	// MouthOpenRatio is the mouth detector's open ratio in [0, 1].
	MouthOpenRatio float64
	// HeadY is the nose tip's normalized vertical position.
	HeadY float64
	// EyesClosed reports both eyes closed this frame.
	EyesClosed bool
}

// State is the per-frame fatigue detector output.
type State struct {
	Metrics  Metrics `json:"metrics"`
	Score    int     `json:"score"`
	Level    Level   `json:"level"`
	BreakDue bool    `json:"break_due"`

	// Yawned, Drooped and BreakTriggered mark the frame an event was counted.
	Yawned         bool `json:"yawned"`
	Drooped        bool `json:"drooped"`
	BreakTriggered bool `json:"break_triggered"`

	SinceBreak time.Duration `json:"since_break"`
}

// Detector accumulates fatigue indicators between breaks.
type Detector struct {
	config Config

	blinks *signal.Ring

	yawns       int
	yawnFrom    time.Time
	yawnCounted bool
	lastYawn    time.Time

	baseline  []float64
	headBase  float64
	droop     *signal.Window
	droops    int
	inDroop   bool
	perclos   *signal.Window
	lastBreak time.Time
	breakDue  bool
}

// NewDetector creates a Detector with the given configuration. The break clock
// starts at the first Update.
func NewDetector(config Config) *Detector {
	return &Detector{
		config:  config,
		blinks:  signal.NewRing(maxBlinks),
		droop:   signal.NewWindow(config.DroopSamples),
		perclos: signal.NewWindow(config.PerclosFrames),
	}
}

// RecordBlink adds a completed blink. Blinks outside [MinBlink, MaxBlink] are
// treated as noise and discarded; the return value reports whether it counted.
func (d *Detector) RecordBlink(duration time.Duration, now time.Time) bool {
	if duration < d.config.MinBlink || duration > d.config.MaxBlink {
		return false
	}
	d.blinks.Push(now, float64(duration.Milliseconds()))
	d.blinks.TrimBefore(now.Add(-d.config.BlinkWindow))
	return true
}

// Update folds one frame into the indicators and recomputes the score.
func (d *Detector) Update(s Sample, now time.Time) State {
	if d.lastBreak.IsZero() {
		d.lastBreak = now
	}

	var st State
	st.Yawned = d.updateYawn(s.MouthOpenRatio, now)
	st.Drooped = d.updateDroop(s.HeadY)

	closed := 0.0
	if s.EyesClosed {
		closed = 1
	}
	d.perclos.Push(closed)

	st.Metrics = d.Metrics(now)
	st.Score = Score(st.Metrics)
	st.Level = LevelFor(st.Score)
	st.SinceBreak = now.Sub(d.lastBreak)

	if !d.breakDue && (st.SinceBreak >= d.config.BreakInterval || st.Score >= SevereScore) {
		d.breakDue = true
		st.BreakTriggered = true
	}
	st.BreakDue = d.breakDue
	return st
}

func (d *Detector) updateYawn(ratio float64, now time.Time) bool {
	if ratio <= d.config.YawnRatio {
		d.yawnFrom = time.Time{}
		d.yawnCounted = false
		return false
	}
	if d.yawnFrom.IsZero() {
		d.yawnFrom = now
	}
	if d.yawnCounted || now.Sub(d.yawnFrom) < d.config.YawnDuration {
		return false
	}
	if !d.lastYawn.IsZero() && now.Sub(d.lastYawn) < d.config.YawnCooldown {
		return false
	}
	d.yawns++
	d.lastYawn = now
	d.yawnCounted = true
	return true
}

func (d *Detector) updateDroop(headY float64) bool {
	if len(d.baseline) < d.config.BaselineSamples {
		d.baseline = append(d.baseline, headY)
		if len(d.baseline) == d.config.BaselineSamples {
			d.headBase = stat.Mean(d.baseline, nil)
		}
		return false
	}

	// Image y grows downward, so a drooping head has a larger y.
	rel := landmark.Ratio(headY-d.headBase, d.headBase)
	d.droop.Push(rel)
	sustained := d.droop.Full() && d.droop.Mean() >= d.config.DroopConfirm*d.config.DroopRatio

	if !sustained {
		d.inDroop = false
		return false
	}
	if d.inDroop || rel <= d.config.DroopRatio {
		return false
	}
	d.inDroop = true
	d.droops++
	return true
}

// Metrics returns the current indicator values.
func (d *Detector) Metrics(now time.Time) Metrics {
	m := Metrics{
		YawnCount:   d.yawns,
		DroopEvents: d.droops,
	}

	recent := d.blinks.Since(now.Add(-d.config.RateWindow))
	if d.config.RateWindow > 0 {
		m.BlinkRate = float64(len(recent)) * float64(time.Minute) / float64(d.config.RateWindow)
	}
	if all := d.blinks.Since(now.Add(-d.config.BlinkWindow)); len(all) > 0 {
		m.AvgBlinkDuration = time.Duration(stat.Mean(all, nil) * float64(time.Millisecond))
	}
	if d.perclos.Len() > 0 {
		m.Perclos = d.perclos.Mean() * 100
	}
	return m
}

// BreakDue reports whether a break is due and not yet taken.
func (d *Detector) BreakDue() bool {
	return d.breakDue
}

// RecordBreak clears the break latch and starts a fresh accumulation period.
// The head baseline is kept.
func (d *Detector) RecordBreak(now time.Time) {
	d.breakDue = false
	d.lastBreak = now
	d.blinks.Reset()
	d.yawns = 0
	d.yawnFrom = time.Time{}
	d.yawnCounted = false
	d.lastYawn = time.Time{}
	d.droops = 0
	d.inDroop = false
	d.droop.Reset()
	d.perclos.Reset()
}

// Config returns the current configuration.
func (d *Detector) Config() Config {
	return d.config
}

// SetBreakInterval changes the break interval, given in whole minutes.
func (d *Detector) SetBreakInterval(minutes int) error {
	if minutes < 1 || minutes > 24*60 {
		return fmt.Errorf("break interval %d min outside [1, 1440]: %w", minutes, ErrInvalidConfig)
	}
	d.config.BreakInterval = time.Duration(minutes) * time.Minute
	return nil
}

// SetYawnRatio changes the open ratio a yawn must exceed. It must lie in (0, 1).
func (d *Detector) SetYawnRatio(v float64) error {
	if !(v > 0 && v < 1) {
		return fmt.Errorf("yawn ratio %v outside (0, 1): %w", v, ErrInvalidConfig)
	}
	d.config.YawnRatio = v
	return nil
}

// Reset clears everything, including the head baseline and the break clock.
func (d *Detector) Reset() {
	d.RecordBreak(time.Time{})
	d.baseline = d.baseline[:0]
	d.headBase = 0
}
