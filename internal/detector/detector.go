// Package detector is the boundary to the landmark model. It turns camera frames
// into face and hand landmark sets.
package detector

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/drishti/internal/landmark"
)

// Detector defines the interface for landmark detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the face and hand landmarks
	// found in it. A frame with nothing in it returns an empty Frame.
	Detect(frame *gocv.Mat) (landmark.Frame, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for landmark detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// RefineIris requests the 478-point face mesh with iris landmarks.
	RefineIris bool

	// IdleTimeout stops the model process after this long without a frame.
	IdleTimeout time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		RefineIris:      true,
		IdleTimeout:     30 * time.Second,
	}
}
