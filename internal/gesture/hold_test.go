package gesture

import (
	"errors"
	"testing"
	"time"
)

var base = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func ms(n int) time.Time { return base.Add(time.Duration(n) * time.Millisecond) }

func TestHoldRecognizer_FiresOnceAtHoldTime(t *testing.T) {
	r := NewHoldRecognizer(DefaultHoldConfig())

	s := r.Update(Peace, ms(0))
	if s.Candidate != Peace || s.Progress != 0 || s.Fired != None {
		t.Fatalf("first frame: %+v", s)
	}

	s = r.Update(Peace, ms(150))
	if s.Fired != None || s.Progress != 0.5 {
		t.Fatalf("halfway: %+v", s)
	}

	s = r.Update(Peace, ms(300))
	if s.Fired != Peace {
		t.Fatalf("expected fire at exactly the hold time: %+v", s)
	}
	if !r.InCooldown(ms(300)) {
		t.Error("expected cooldown after fire")
	}

	// Still holding within the cooldown: nothing fires.
	for _, at := range []int{333, 500, 799} {
		if s = r.Update(Peace, ms(at)); s.Fired != None {
			t.Errorf("fired again at %dms: %+v", at, s)
		}
	}
}

func TestHoldRecognizer_RequiresRelease(t *testing.T) {
	r := NewHoldRecognizer(DefaultHoldConfig())
	r.Update(Fist, ms(0))
	r.Update(Fist, ms(300))

	// Holding well past the cooldown does not repeat.
	for at := 333; at <= 3000; at += 33 {
		if s := r.Update(Fist, ms(at)); s.Fired != None {
			t.Fatalf("repeat fire at %dms", at)
		}
	}

	r.Update(None, ms(3033))
	r.Update(Fist, ms(3066))
	if s := r.Update(Fist, ms(3366)); s.Fired != Fist {
		t.Errorf("expected fire after release and re-hold: %+v", s)
	}
}

func TestHoldRecognizer_CooldownBlocksOtherGestures(t *testing.T) {
	r := NewHoldRecognizer(DefaultHoldConfig())
	r.Update(ThumbsUp, ms(0))
	r.Update(ThumbsUp, ms(300))

	r.Update(OpenPalm, ms(350))
	if s := r.Update(OpenPalm, ms(700)); s.Fired != None {
		t.Errorf("a different gesture fired inside the cooldown: %+v", s)
	}
	if s := r.Update(OpenPalm, ms(800)); s.Fired != OpenPalm {
		t.Errorf("expected fire once the cooldown ends: %+v", s)
	}
}

func TestHoldRecognizer_ChangeRestartsHold(t *testing.T) {
	r := NewHoldRecognizer(DefaultHoldConfig())
	r.Update(Peace, ms(0))
	r.Update(Peace, ms(200))
	r.Update(Rock, ms(250))

	if s := r.Update(Rock, ms(400)); s.Fired != None || s.Candidate != Rock {
		t.Errorf("hold should restart on change: %+v", s)
	}
	if s := r.Update(Rock, ms(550)); s.Fired != Rock {
		t.Errorf("expected Rock to fire: %+v", s)
	}
}

func TestHoldRecognizer_None(t *testing.T) {
	r := NewHoldRecognizer(DefaultHoldConfig())
	r.Update(Peace, ms(0))
	if s := r.Update(None, ms(100)); s != (HoldState{}) {
		t.Errorf("None should clear the candidate: %+v", s)
	}
	if s := r.Update(Peace, ms(350)); s.Fired != None {
		t.Errorf("hold should not carry over a gap: %+v", s)
	}
}

func TestHoldRecognizer_Setters(t *testing.T) {
	r := NewHoldRecognizer(DefaultHoldConfig())

	if err := r.SetHoldTime(0); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("SetHoldTime(0) error = %v", err)
	}
	if err := r.SetCooldown(-time.Second); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("SetCooldown(-1s) error = %v", err)
	}
	if err := r.SetHoldTime(time.Second); err != nil {
		t.Fatal(err)
	}
	r.Update(Peace, ms(0))
	if s := r.Update(Peace, ms(300)); s.Fired != None {
		t.Errorf("longer hold time not applied: %+v", s)
	}

	r.Reset()
	if r.InCooldown(ms(0)) || r.Config().HoldTime != time.Second {
		t.Error("Reset should keep config and clear state")
	}
}
