package detector

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayusman/drishti/internal/landmark"
)

// ErrService is returned when the model process reports a failure for a frame.
var ErrService = errors.New("landmark service error")

// response is one JSON line written by the landmark service per frame.
type response struct {
	Face  []jsonPoint `json:"face"`
	Hands []jsonHand  `json:"hands"`
	Error string      `json:"error,omitempty"`
}

// jsonHand represents the JSON structure from the Python service.
type jsonHand struct {
	Points     []jsonPoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// request is the JSON header line sent once when the service starts.
type request struct {
	MaxHands        int     `json:"max_hands"`
	MinConfidence   float64 `json:"min_confidence"`
	MinTrackingConf float64 `json:"min_tracking_confidence"`
	RefineIris      bool    `json:"refine_landmarks"`
}

func newRequest(c Config) request {
	return request{
		MaxHands:        c.MaxHands,
		MinConfidence:   c.MinConfidence,
		MinTrackingConf: c.MinTrackingConf,
		RefineIris:      c.RefineIris,
	}
}

// decodeFrame parses one service response line. Hands with fewer than 21
// points are dropped; a short face mesh is passed through for the detectors
// to reject.
func decodeFrame(line []byte) (landmark.Frame, error) {
	var resp response
	if err := json.Unmarshal(line, &resp); err != nil {
		return landmark.Frame{}, fmt.Errorf("parse response: %w", err)
	}
	if resp.Error != "" {
		return landmark.Frame{}, fmt.Errorf("%w: %s", ErrService, resp.Error)
	}

	var frame landmark.Frame
	if len(resp.Face) > 0 {
		frame.Face = make(landmark.Set, len(resp.Face))
		for i, p := range resp.Face {
			frame.Face[i] = p.point()
		}
	}

	for _, h := range resp.Hands {
		hand, err := h.toHandLandmarks()
		if err != nil {
			continue
		}
		frame.Hands = append(frame.Hands, hand)
	}
	return frame, nil
}

func (p jsonPoint) point() landmark.Point3D {
	return landmark.Point3D{X: p.X, Y: p.Y, Z: p.Z}
}

func (h jsonHand) toHandLandmarks() (landmark.HandLandmarks, error) {
	points := make([]landmark.Point3D, len(h.Points))
	for i, p := range h.Points {
		points[i] = p.point()
	}
	return landmark.NewHand(points, h.Handedness, h.Score)
}
