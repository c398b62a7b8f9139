// Package landmark defines the landmark types produced by the upstream face and hand
// models, the index contract shared with them, and the geometry primitives every
// detector is built on.
package landmark

import (
	"errors"
	"fmt"
)

// ErrInsufficientLandmarks is returned when a landmark set is shorter than the
// highest index a detector reads.
var ErrInsufficientLandmarks = errors.New("insufficient landmarks")

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Face mesh indices used across detectors. "Left" and "right" are image-space:
// the left eye is the one with the smaller x coordinate.
const (
	NoseTip       = 1
	Forehead      = 10
	UpperLip      = 13
	LowerLip      = 14
	LeftCheek     = 50
	MouthLeft     = 61
	Chin          = 152
	LeftEyeOuter  = 33
	RightEyeOuter = 263
	RightCheek    = 280
	MouthRight    = 291
	LeftIris      = 468
	RightIris     = 473

	// FaceMeshPoints is the size of the base face mesh.
	FaceMeshPoints = 468
	// FaceMeshIrisPoints is the size of the mesh with iris refinement.
	FaceMeshIrisPoints = 478
)

// Handedness labels reported by the hand model.
const (
	HandLeft  = "Left"
	HandRight = "Right"
)

// Point3D represents a 3D point in space with x, y, z coordinates.
// X and Y are normalized to the frame, Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Set is an ordered landmark sequence indexed by the upstream model's numbering.
type Set []Point3D

// Require returns ErrInsufficientLandmarks unless index is addressable.
func (s Set) Require(index int) error {
	if index < 0 || index >= len(s) {
		return fmt.Errorf("need index %d, have %d points: %w", index, len(s), ErrInsufficientLandmarks)
	}
	return nil
}

// RequireAll checks every index and reports the first one out of range.
func (s Set) RequireAll(indices ...int) error {
	for _, i := range indices {
		if err := s.Require(i); err != nil {
			return err
		}
	}
	return nil
}

// HasIris reports whether the set includes the refined iris points.
func (s Set) HasIris() bool {
	return len(s) >= FaceMeshIrisPoints
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// NewHand builds HandLandmarks from a variable-length point slice.
func NewHand(points []Point3D, handedness string, score float64) (HandLandmarks, error) {
	h := HandLandmarks{Handedness: handedness, Score: score}
	if len(points) < NumLandmarks {
		return h, fmt.Errorf("hand has %d points, want %d: %w", len(points), NumLandmarks, ErrInsufficientLandmarks)
	}
	copy(h.Points[:], points)
	return h, nil
}

// Frame holds the landmarks found in one camera frame. Face is nil when no face
// was detected.
type Frame struct {
	Face  Set             `json:"face,omitempty"`
	Hands []HandLandmarks `json:"hands,omitempty"`
}

// HasFace reports whether the frame carries face landmarks.
func (f Frame) HasFace() bool {
	return len(f.Face) > 0
}
