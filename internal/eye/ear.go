// Package eye computes eye aspect ratios and tracks blinks and winks over time.
package eye

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/drishti/internal/landmark"
)

// ErrInvalidConfig is returned by setters given an out-of-range value.
var ErrInvalidConfig = errors.New("invalid eye config")

// Indices names the six face-mesh points of one eye used for the aspect ratio.
type Indices struct {
	Outer      int
	UpperOuter int
	UpperInner int
	Inner      int
	LowerInner int
	LowerOuter int
}

// Eye point mappings for the MediaPipe face mesh, image-space left and right.
var (
	LeftEye  = Indices{Outer: 33, UpperOuter: 160, UpperInner: 158, Inner: 133, LowerInner: 153, LowerOuter: 144}
	RightEye = Indices{Outer: 263, UpperOuter: 387, UpperInner: 385, Inner: 362, LowerInner: 380, LowerOuter: 373}
)

func (i Indices) all() []int {
	return []int{i.Outer, i.UpperOuter, i.UpperInner, i.Inner, i.LowerInner, i.LowerOuter}
}

// AspectRatio computes the eye aspect ratio in the image plane:
//
//	EAR = (|upperOuter-lowerOuter| + |upperInner-lowerInner|) / (2 * |outer-inner|)
//
// A zero corner distance yields 0. A set too short for idx returns
// landmark.ErrInsufficientLandmarks.
func AspectRatio(face landmark.Set, idx Indices) (float64, error) {
	if err := face.RequireAll(idx.all()...); err != nil {
		return 0, fmt.Errorf("eye aspect ratio: %w", err)
	}

	a := landmark.Distance2D(face[idx.UpperOuter], face[idx.LowerOuter])
	b := landmark.Distance2D(face[idx.UpperInner], face[idx.LowerInner])
	c := landmark.Distance2D(face[idx.Outer], face[idx.Inner])

	return landmark.Ratio(a+b, 2*c), nil
}

// BothAspectRatios returns the left and right eye aspect ratios.
func BothAspectRatios(face landmark.Set) (left, right float64, err error) {
	left, err = AspectRatio(face, LeftEye)
	if err != nil {
		return 0, 0, err
	}
	right, err = AspectRatio(face, RightEye)
	if err != nil {
		return 0, 0, err
	}
	return left, right, nil
}

func validRatio(v float64) error {
	if math.IsNaN(v) || v <= 0 || v >= 1 {
		return fmt.Errorf("threshold %v outside (0, 1): %w", v, ErrInvalidConfig)
	}
	return nil
}
