package landmark

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func TestSet_Require(t *testing.T) {
	s := make(Set, 10)

	t.Run("index in range", func(t *testing.T) {
		if err := s.Require(9); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("index out of range wraps sentinel", func(t *testing.T) {
		err := s.Require(10)
		if !errors.Is(err, ErrInsufficientLandmarks) {
			t.Errorf("expected ErrInsufficientLandmarks, got %v", err)
		}
	})

	t.Run("negative index rejected", func(t *testing.T) {
		if err := s.Require(-1); err == nil {
			t.Error("expected error for negative index")
		}
	})

	t.Run("RequireAll reports first failure", func(t *testing.T) {
		if err := s.RequireAll(1, 2, 33); !errors.Is(err, ErrInsufficientLandmarks) {
			t.Errorf("expected ErrInsufficientLandmarks, got %v", err)
		}
	})
}

func TestNewHand(t *testing.T) {
	t.Run("short slice", func(t *testing.T) {
		_, err := NewHand(make([]Point3D, 20), HandRight, 0.9)
		if !errors.Is(err, ErrInsufficientLandmarks) {
			t.Errorf("expected ErrInsufficientLandmarks, got %v", err)
		}
	})

	t.Run("full slice copies points", func(t *testing.T) {
		pts := make([]Point3D, NumLandmarks)
		pts[PinkyTip] = Point3D{X: 0.3, Y: 0.4}
		h, err := NewHand(pts, HandLeft, 0.8)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if h.Points[PinkyTip].X != 0.3 || h.Handedness != HandLeft {
			t.Errorf("hand not copied: %+v", h)
		}
	})
}

func TestGeometry(t *testing.T) {
	a := Point3D{X: 0, Y: 0, Z: 0}
	b := Point3D{X: 3, Y: 4, Z: 12}

	if d := Distance2D(a, b); math.Abs(d-5) > epsilon {
		t.Errorf("Distance2D = %f, want 5", d)
	}
	if d := Distance3D(a, b); math.Abs(d-13) > epsilon {
		t.Errorf("Distance3D = %f, want 13", d)
	}

	m := Midpoint(a, b)
	if m.X != 1.5 || m.Y != 2 || m.Z != 6 {
		t.Errorf("Midpoint = %+v", m)
	}

	right := Angle(Point3D{X: 1}, a, Point3D{Y: 1})
	if math.Abs(right-math.Pi/2) > epsilon {
		t.Errorf("Angle = %f, want pi/2", right)
	}

	if got := Angle(a, a, b); got != 0 {
		t.Errorf("degenerate angle = %f, want 0", got)
	}

	if got := Ratio(1, 0); got != 0 {
		t.Errorf("Ratio(1, 0) = %f, want 0", got)
	}
}

func TestFixtures(t *testing.T) {
	t.Run("face has iris points by default", func(t *testing.T) {
		if !NeutralFace().HasIris() {
			t.Error("expected 478-point face")
		}
		if NewFace().WithoutIris().Build().HasIris() {
			t.Error("expected 468-point face")
		}
	})

	t.Run("left hand mirrors right hand", func(t *testing.T) {
		r := HandPose(HandRight, [5]bool{true, true, true, true, true})
		l := HandPose(HandLeft, [5]bool{true, true, true, true, true})
		if math.Abs(r.Points[ThumbTip].X-(1-l.Points[ThumbTip].X)) > epsilon {
			t.Errorf("thumb tips not mirrored: %f vs %f", r.Points[ThumbTip].X, l.Points[ThumbTip].X)
		}
	})
}
