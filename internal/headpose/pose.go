// Package headpose approximates head orientation from the face mesh and turns
// nose movement into a smoothed, calibrated pointer position.
package headpose

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/drishti/internal/landmark"
)

// ErrInvalidConfig is returned by setters given an out-of-range value.
var ErrInvalidConfig = errors.New("invalid head pose config")

// NeutralNoseRatio is where the nose tip sits between forehead and chin, as a
// fraction of face height, when the head is level. Pitch is measured from it,
// so a frontal face reads 0 and the sleep detector's 0.25 rad head-down
// threshold means a real downward tilt.
const NeutralNoseRatio = 0.5

// Pose is a coarse head orientation. Angles are in radians; positive pitch means
// the head is tilted down. X and Y are the nose tip in normalized image space.
type Pose struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Estimate approximates the head pose from five face-mesh points. It is not a
// full 6-DOF solve; the angles are only meaningful relative to each other and
// to thresholds. Zero reference distances yield zero angles.
func Estimate(face landmark.Set) (Pose, error) {
	if err := face.RequireAll(landmark.NoseTip, landmark.Forehead, landmark.Chin,
		landmark.LeftEyeOuter, landmark.RightEyeOuter); err != nil {
		return Pose{}, fmt.Errorf("head pose: %w", err)
	}

	nose := face[landmark.NoseTip]
	forehead := face[landmark.Forehead]
	chin := face[landmark.Chin]
	leftEye := face[landmark.LeftEyeOuter]
	rightEye := face[landmark.RightEyeOuter]

	p := Pose{X: nose.X, Y: nose.Y}

	faceHeight := math.Abs(forehead.Y - chin.Y)
	if faceHeight > 0 {
		p.Pitch = math.Atan2((nose.Y-forehead.Y)/faceHeight-NeutralNoseRatio, 1)
	}

	interEye := landmark.Distance2D(leftEye, rightEye)
	if interEye > 0 {
		center := landmark.Midpoint(leftEye, rightEye)
		p.Yaw = math.Atan2(nose.X-center.X, interEye)
		p.Roll = math.Atan2(rightEye.Y-leftEye.Y, rightEye.X-leftEye.X)
	}

	return p, nil
}
