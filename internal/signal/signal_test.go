package signal

import (
	"math"
	"testing"
	"time"
)

func TestWindow(t *testing.T) {
	t.Run("evicts oldest first", func(t *testing.T) {
		w := NewWindow(3)
		for _, v := range []float64{1, 2, 3, 4} {
			w.Push(v)
		}

		got := w.Values()
		want := []float64{2, 3, 4}
		if len(got) != len(want) {
			t.Fatalf("expected %d values, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("values[%d] = %f, want %f", i, got[i], want[i])
			}
		}
		if w.Mean() != 3 {
			t.Errorf("Mean() = %f, want 3", w.Mean())
		}
	})

	t.Run("never grows past capacity", func(t *testing.T) {
		w := NewWindow(5)
		for i := 0; i < 1000; i++ {
			w.Push(float64(i))
		}
		if w.Len() != 5 || !w.Full() {
			t.Errorf("Len() = %d, want 5", w.Len())
		}
		if w.Last() != 999 {
			t.Errorf("Last() = %f, want 999", w.Last())
		}
	})

	t.Run("empty mean is zero", func(t *testing.T) {
		if m := NewWindow(4).Mean(); m != 0 {
			t.Errorf("Mean() = %f, want 0", m)
		}
	})

	t.Run("resize keeps newest", func(t *testing.T) {
		w := NewWindow(4)
		for _, v := range []float64{1, 2, 3, 4} {
			w.Push(v)
		}
		w.Resize(2)
		if w.Cap() != 2 || math.Abs(w.Mean()-3.5) > 1e-9 {
			t.Errorf("after resize cap=%d mean=%f", w.Cap(), w.Mean())
		}
	})
}

func TestRing(t *testing.T) {
	base := time.Unix(1000, 0)
	r := NewRing(10)
	for i := 0; i < 5; i++ {
		r.Push(base.Add(time.Duration(i)*time.Second), float64(i))
	}

	if got := r.Since(base.Add(3 * time.Second)); len(got) != 2 {
		t.Errorf("Since() returned %d samples, want 2", len(got))
	}

	r.TrimBefore(base.Add(2 * time.Second))
	if r.Len() != 3 {
		t.Errorf("Len() after trim = %d, want 3", r.Len())
	}
}

func TestDecayCounter(t *testing.T) {
	c := NewDecayCounter(2)
	for i := 0; i < 5; i++ {
		c.Observe(true)
	}
	if c.Observe(false) != 3 {
		t.Errorf("expected decay to 3, got %d", c.Count())
	}
	c.Observe(false)
	c.Observe(false)
	if c.Count() != 0 {
		t.Errorf("expected floor at 0, got %d", c.Count())
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0.25, 0.25},
		{7, 1},
		{math.NaN(), 0},
		{math.Inf(1), 1},
		{math.Inf(-1), 0},
	}
	for _, tt := range tests {
		if got := Clamp01(tt.in); got != tt.want {
			t.Errorf("Clamp01(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
	if got := Clamp(math.NaN(), -2, 2); got != -2 {
		t.Errorf("Clamp(NaN, -2, 2) = %f, want -2", got)
	}
}
