package tray

import (
	"testing"
	"time"
)

func TestLabels(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"enabled", toggleLabel(true), "● Monitoring"},
		{"disabled", toggleLabel(false), "○ Paused"},
		{"no face", fatigueLabel("", 0), "Fatigue: no face"},
		{"fatigue level", fatigueLabel("moderate", 45), "Fatigue: moderate (45)"},
		{"sleep rounds", sleepLabel(90*time.Second + 400*time.Millisecond), "Asleep: 1m30s"},
		{"no sleep", sleepLabel(0), "Asleep: 0s"},
		{"break due", breakLabel(true), "Break due: take a break"},
		{"no break due", breakLabel(false), "Take a break"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestTray_Callbacks(t *testing.T) {
	tr := New()
	if !tr.IsEnabled() {
		t.Fatal("tray should start enabled")
	}

	calls := 0
	tr.OnBreak(func() { calls++ })
	tr.call(func() func() { return tr.onBreak })
	tr.call(func() func() { return tr.onCalibrate })

	if calls != 1 {
		t.Errorf("expected 1 break callback, got %d", calls)
	}
}
