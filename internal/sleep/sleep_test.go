package sleep

import (
	"errors"
	"testing"
	"time"
)

const (
	open   = 0.30
	closed = 0.10
	level  = 0.0
	down   = 0.40
)

var base = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func frame(i int) time.Time {
	return base.Add(time.Duration(i) * 33 * time.Millisecond)
}

// feed runs n frames starting at frame index start and returns the last state.
func feed(d *Detector, start, n int, ear, pitch float64) State {
	var s State
	for i := 0; i < n; i++ {
		s = d.Update(ear, pitch, frame(start+i))
	}
	return s
}

func TestDetector_EyesClosedAlone(t *testing.T) {
	d := NewDetector(DefaultConfig())

	s := feed(d, 0, 44, closed, level)
	if s.IsSleeping {
		t.Fatal("44 closed frames should not be sleep")
	}
	s = d.Update(closed, level, frame(44))
	if !s.IsSleeping || !s.Started {
		t.Errorf("45th closed frame should start sleep: %+v", s)
	}
	if d.Episodes() != 1 {
		t.Errorf("Episodes = %d, want 1", d.Episodes())
	}
}

func TestDetector_HeadDownWithClosedEyes(t *testing.T) {
	d := NewDetector(DefaultConfig())

	// Head down with open eyes builds the head counter but never sleeps.
	s := feed(d, 0, 20, open, down)
	if s.IsSleeping || s.HeadDownFrames != 20 {
		t.Fatalf("open eyes should not sleep: %+v", s)
	}

	// Closing the eyes with the head counter past half its threshold sleeps at once.
	s = d.Update(closed, down, frame(20))
	if !s.IsSleeping {
		t.Errorf("closed eyes with head down should sleep: %+v", s)
	}
}

func TestDetector_Decay(t *testing.T) {
	d := NewDetector(DefaultConfig())

	feed(d, 0, 40, closed, level)
	s := d.Update(open, level, frame(40))
	if s.EyeClosedFrames != 38 {
		t.Errorf("EyeClosedFrames = %d, want 38 after one open frame", s.EyeClosedFrames)
	}

	s = feed(d, 41, 30, open, level)
	if s.EyeClosedFrames != 0 {
		t.Errorf("counter should floor at zero, got %d", s.EyeClosedFrames)
	}
}

func TestDetector_SingleOpenFrameKeepsEpisode(t *testing.T) {
	d := NewDetector(DefaultConfig())

	feed(d, 0, 60, closed, level)
	s := d.Update(open, level, frame(60))
	if !s.IsSleeping || s.Ended {
		t.Errorf("one open frame after 60 closed should not wake: %+v", s)
	}
	if d.Episodes() != 1 {
		t.Errorf("Episodes = %d, want 1", d.Episodes())
	}
}

func TestDetector_AwayEndsEpisode(t *testing.T) {
	d := NewDetector(DefaultConfig())

	feed(d, 0, 50, closed, level)
	if !d.IsSleeping() {
		t.Fatal("50 closed frames should sleep")
	}

	var s State
	for i := 50; i < 53; i++ {
		s = d.Away(frame(i))
	}
	if s.IsSleeping || !s.Ended {
		t.Fatalf("three frames without a face should end the episode: %+v", s)
	}
	if want := frame(52).Sub(frame(44)); s.Duration != want {
		t.Errorf("Duration = %v, want %v", s.Duration, want)
	}

	later := frame(52).Add(10 * time.Minute)
	for i := 0; i < 100; i++ {
		d.Away(later)
	}
	if got := d.CurrentSleepDuration(later); got != 0 {
		t.Errorf("CurrentSleepDuration = %v, want 0", got)
	}
	if got := d.TotalSleepDuration(later); got != frame(52).Sub(frame(44)) {
		t.Errorf("TotalSleepDuration = %v, want the one episode", got)
	}
}

func TestDetector_Score(t *testing.T) {
	d := NewDetector(DefaultConfig())

	if s := d.Update(open, level, frame(0)); s.Score != 0 {
		t.Errorf("awake score = %f, want 0", s.Score)
	}

	s := feed(d, 1, 100, closed, down)
	if s.Score != 100 {
		t.Errorf("saturated score = %f, want 100", s.Score)
	}

	d.Reset()
	s = feed(d, 0, 45, closed, level)
	if s.Score != 60 {
		t.Errorf("eyes-only score = %f, want 60", s.Score)
	}
}

func TestDetector_Duration(t *testing.T) {
	d := NewDetector(DefaultConfig())

	feed(d, 0, 45, closed, level)
	start := frame(44)
	if !d.IsSleeping() {
		t.Fatal("expected sleep")
	}

	t.Run("idempotent without time passing", func(t *testing.T) {
		now := start.Add(2 * time.Second)
		first := d.CurrentSleepDuration(now)
		second := d.CurrentSleepDuration(now)
		if first != second {
			t.Errorf("repeated query changed: %v then %v", first, second)
		}
		if first != 2*time.Second {
			t.Errorf("CurrentSleepDuration = %v, want 2s", first)
		}
	})

	t.Run("advances with time", func(t *testing.T) {
		now := start.Add(2 * time.Second)
		before := d.CurrentSleepDuration(now)
		after := d.CurrentSleepDuration(now.Add(750 * time.Millisecond))
		if after-before != 750*time.Millisecond {
			t.Errorf("delta = %v, want 750ms", after-before)
		}
	})

	t.Run("accumulates across episodes", func(t *testing.T) {
		// Wake: enough open frames to drain the counter below the threshold.
		var s State
		i := 45
		for d.IsSleeping() {
			s = d.Update(open, level, frame(i))
			i++
		}
		if !s.Ended {
			t.Fatalf("expected Ended on the waking frame: %+v", s)
		}
		first := s.Duration
		if first <= 0 {
			t.Fatalf("finished episode duration = %v", first)
		}
		if d.CurrentSleepDuration(frame(i)) != 0 {
			t.Error("awake current duration should be zero")
		}
		if d.TotalSleepDuration(frame(i)) != first {
			t.Errorf("TotalSleepDuration = %v, want %v", d.TotalSleepDuration(frame(i)), first)
		}

		feed(d, i, 60, closed, level)
		if d.Episodes() != 2 {
			t.Errorf("Episodes = %d, want 2", d.Episodes())
		}
		now := frame(i + 59)
		if d.TotalSleepDuration(now) != first+d.CurrentSleepDuration(now) {
			t.Error("total should include the running episode")
		}
	})
}

func TestDetector_Setters(t *testing.T) {
	d := NewDetector(DefaultConfig())

	if err := d.SetEARThreshold(1.5); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("SetEARThreshold(1.5) error = %v", err)
	}
	if err := d.SetFrameThresholds(0, 10); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("SetFrameThresholds(0, 10) error = %v", err)
	}
	if err := d.SetPitchThreshold(-0.1); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("SetPitchThreshold(-0.1) error = %v", err)
	}
	if err := d.SetDecay(0); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("SetDecay(0) error = %v", err)
	}

	if err := d.SetFrameThresholds(10, 10); err != nil {
		t.Fatalf("SetFrameThresholds error = %v", err)
	}
	s := feed(d, 0, 10, closed, level)
	if !s.IsSleeping {
		t.Error("lowered threshold should apply immediately")
	}
	if cfg := d.Config(); cfg.EyeClosedFrames != 10 || cfg.EARThreshold != 0.21 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestDetector_Reset(t *testing.T) {
	d := NewDetector(DefaultConfig())
	feed(d, 0, 50, closed, down)
	d.Reset()

	if d.IsSleeping() || d.Episodes() != 0 || d.TotalSleepDuration(frame(100)) != 0 {
		t.Error("Reset should clear all sleep state")
	}
	if s := d.Update(open, level, frame(100)); s.EyeClosedFrames != 0 || s.HeadDownFrames != 0 {
		t.Errorf("counters not cleared: %+v", s)
	}
}
