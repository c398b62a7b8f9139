package session

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSettings wraps every value a detector rejects in ApplySettings.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings are the runtime-tunable parameters in their wire form: durations in
// milliseconds and the break interval in minutes.
type Settings struct {
	EARThreshold      float64 `json:"ear_threshold"`
	BlinkConsecFrames int     `json:"blink_consec_frames"`

	WinkOpenThreshold   float64 `json:"wink_open_threshold"`
	WinkDiff            float64 `json:"wink_diff"`
	WinkClosedThreshold float64 `json:"wink_closed_threshold"`
	WinkMinMS           int     `json:"wink_min_ms"`
	WinkMaxMS           int     `json:"wink_max_ms"`

	MouthOpenThreshold float64 `json:"mouth_open_threshold"`
	BrowRaiseThreshold float64 `json:"brow_raise_threshold"`

	SleepEARThreshold float64 `json:"sleep_ear_threshold"`
	SleepEyeFrames    int     `json:"sleep_eye_frames"`
	SleepHeadFrames   int     `json:"sleep_head_frames"`
	SleepPitchRadians float64 `json:"sleep_pitch_radians"`
	BreakIntervalMins int     `json:"break_interval_minutes"`
	GestureHoldMS     int     `json:"gesture_hold_ms"`
	GestureCooldownMS int     `json:"gesture_cooldown_ms"`
	HeadSmoothing     float64 `json:"head_smoothing"`
	CursorDeadZone    float64 `json:"cursor_dead_zone"`
	CursorSpeed       float64 `json:"cursor_speed"`
}

// Settings reads the live tunables back from the detectors.
func (s *Session) Settings() Settings {
	c := s.Config()
	return Settings{
		EARThreshold:      c.Blink.EARThreshold,
		BlinkConsecFrames: c.Blink.ConsecFrames,

		WinkOpenThreshold:   c.Wink.OpenThreshold,
		WinkDiff:            c.Wink.WinkDiff,
		WinkClosedThreshold: c.Wink.ClosedThreshold,
		WinkMinMS:           int(c.Wink.MinWink.Milliseconds()),
		WinkMaxMS:           int(c.Wink.MaxWink.Milliseconds()),

		MouthOpenThreshold: c.Mouth.OpenThreshold,
		BrowRaiseThreshold: c.Brow.RaiseThreshold,

		SleepEARThreshold: c.Sleep.EARThreshold,
		SleepEyeFrames:    c.Sleep.EyeClosedFrames,
		SleepHeadFrames:   c.Sleep.HeadDownFrames,
		SleepPitchRadians: c.Sleep.PitchThreshold,
		BreakIntervalMins: int(c.Fatigue.BreakInterval / time.Minute),
		GestureHoldMS:     int(c.Hold.HoldTime.Milliseconds()),
		GestureCooldownMS: int(c.Hold.Cooldown.Milliseconds()),
		HeadSmoothing:     c.Tracker.Smoothing,
		CursorDeadZone:    c.Cursor.DeadZone,
		CursorSpeed:       c.Cursor.Speed,
	}
}

// ApplySettings validates every value through the detectors' setters and
// applies them. Nothing changes if any value is rejected.
func (s *Session) ApplySettings(st Settings) error {
	if err := New(s.Config()).apply(st); err != nil {
		return err
	}
	return s.apply(st)
}

func (s *Session) apply(st Settings) error {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }

	steps := []func() error{
		func() error { return s.blink.SetThreshold(st.EARThreshold) },
		func() error { return s.blink.SetConsecFrames(st.BlinkConsecFrames) },
		func() error { return s.wink.SetOpenThreshold(st.WinkOpenThreshold) },
		func() error { return s.wink.SetWinkDiff(st.WinkDiff) },
		func() error { return s.wink.SetClosedThreshold(st.WinkClosedThreshold) },
		func() error { return s.wink.SetWinkDuration(ms(st.WinkMinMS), ms(st.WinkMaxMS)) },
		func() error { return s.mouth.SetOpenThreshold(st.MouthOpenThreshold) },
		func() error { return s.brow.SetRaiseThreshold(st.BrowRaiseThreshold) },
		func() error { return s.sleep.SetEARThreshold(st.SleepEARThreshold) },
		func() error { return s.sleep.SetFrameThresholds(st.SleepEyeFrames, st.SleepHeadFrames) },
		func() error { return s.sleep.SetPitchThreshold(st.SleepPitchRadians) },
		func() error { return s.fatigue.SetBreakInterval(st.BreakIntervalMins) },
		func() error { return s.hold.SetHoldTime(ms(st.GestureHoldMS)) },
		func() error { return s.hold.SetCooldown(ms(st.GestureCooldownMS)) },
		func() error { return s.tracker.SetSmoothing(st.HeadSmoothing) },
		func() error { return s.cursor.SetDeadZone(st.CursorDeadZone) },
		func() error { return s.cursor.SetSpeed(st.CursorSpeed) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
		}
	}
	return nil
}
