// Package session runs every face and hand detector for one subject, in
// dependency order, once per frame.
package session

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/ayusman/drishti/internal/brow"
	"github.com/ayusman/drishti/internal/eye"
	"github.com/ayusman/drishti/internal/fatigue"
	"github.com/ayusman/drishti/internal/gesture"
	"github.com/ayusman/drishti/internal/headpose"
	"github.com/ayusman/drishti/internal/landmark"
	"github.com/ayusman/drishti/internal/mouth"
	"github.com/ayusman/drishti/internal/sleep"
)

// ErrNoFace is returned by Calibrate when no face has been seen yet.
var ErrNoFace = errors.New("no face seen")

// Config holds the configuration of every detector in a session.
type Config struct {
	Blink   eye.BlinkConfig
	Wink    eye.GestureConfig
	Mouth   mouth.Config
	Brow    brow.Config
	Tracker headpose.TrackerConfig
	Cursor  headpose.CursorConfig
	Sleep   sleep.Config
	Fatigue fatigue.Config
	Hold    gesture.HoldConfig

	// Screen is the pointer target size in pixels.
	Screen image.Point
}

// DefaultConfig returns the default configuration of every detector.
func DefaultConfig() Config {
	return Config{
		Blink:   eye.DefaultBlinkConfig(),
		Wink:    eye.DefaultGestureConfig(),
		Mouth:   mouth.DefaultConfig(),
		Brow:    brow.DefaultConfig(),
		Tracker: headpose.DefaultTrackerConfig(),
		Cursor:  headpose.DefaultCursorConfig(),
		Sleep:   sleep.DefaultConfig(),
		Fatigue: fatigue.DefaultConfig(),
		Hold:    gesture.DefaultHoldConfig(),
		Screen:  image.Pt(1920, 1080),
	}
}

// Result is everything the detectors report for one frame.
type Result struct {
	At           time.Time `json:"at"`
	FaceDetected bool      `json:"face_detected"`

	Blink   eye.BlinkState    `json:"blink"`
	Wink    eye.GestureState  `json:"wink"`
	Mouth   mouth.State       `json:"mouth"`
	Brow    brow.State        `json:"brow"`
	Pose    headpose.Pose     `json:"pose"`
	Head    headpose.Position `json:"head"`
	Pointer image.Point       `json:"pointer"`
	Sleep   sleep.State       `json:"sleep"`
	Fatigue fatigue.State     `json:"fatigue"`

	Hands []gesture.Classification `json:"hands"`
	Hold  gesture.HoldState        `json:"hold"`

	Events []Event `json:"events,omitempty"`
}

// Session owns one instance of every detector. It is not safe for concurrent
// use.
type Session struct {
	screen image.Point

	blink   *eye.BlinkDetector
	wink    *eye.GestureDetector
	mouth   *mouth.Detector
	brow    *brow.Detector
	tracker *headpose.Tracker
	cursor  *headpose.Cursor
	sleep   *sleep.Detector
	fatigue *fatigue.Detector
	hold    *gesture.HoldRecognizer

	last     landmark.Frame
	lastAt   time.Time
	lastFace landmark.Set
	frames   int
}

// New creates a session with fresh detectors.
func New(config Config) *Session {
	return &Session{
		screen:  config.Screen,
		blink:   eye.NewBlinkDetector(config.Blink),
		wink:    eye.NewGestureDetector(config.Wink),
		mouth:   mouth.NewDetector(config.Mouth),
		brow:    brow.NewDetector(config.Brow),
		tracker: headpose.NewTracker(config.Tracker),
		cursor:  headpose.NewCursor(config.Cursor),
		sleep:   sleep.NewDetector(config.Sleep),
		fatigue: fatigue.NewDetector(config.Fatigue),
		hold:    gesture.NewHoldRecognizer(config.Hold),
	}
}

// Config returns the live configuration of every detector.
func (s *Session) Config() Config {
	return Config{
		Blink:   s.blink.Config(),
		Wink:    s.wink.Config(),
		Mouth:   s.mouth.Config(),
		Brow:    s.brow.Config(),
		Tracker: s.tracker.Config(),
		Cursor:  s.cursor.Config(),
		Sleep:   s.sleep.Config(),
		Fatigue: s.fatigue.Config(),
		Hold:    s.hold.Config(),
		Screen:  s.screen,
	}
}

// Process runs the detectors over one frame. A frame without a face or hands
// yields neutral outputs for those parts. A face set too short for the mesh
// contract returns the hand results together with an error wrapping
// landmark.ErrInsufficientLandmarks.
func (s *Session) Process(frame landmark.Frame, now time.Time) (Result, error) {
	s.frames++
	s.last = frame
	s.lastAt = now

	r := Result{At: now}
	s.processHands(&r, frame.Hands, now)

	if !frame.HasFace() {
		r.Sleep = s.sleep.Away(now)
		if r.Sleep.Ended {
			r.Events = append(r.Events, Event{Kind: EventSleepEnd, At: now, Duration: r.Sleep.Duration})
		}
		return r, nil
	}
	if err := s.processFace(&r, frame.Face, now); err != nil {
		return r, fmt.Errorf("frame %d: %w", s.frames, err)
	}
	s.lastFace = frame.Face
	return r, nil
}

func (s *Session) processFace(r *Result, face landmark.Set, now time.Time) error {
	left, right, err := eye.BothAspectRatios(face)
	if err != nil {
		return err
	}
	mouthState, err := s.mouth.Update(face)
	if err != nil {
		return err
	}
	browState, err := s.brow.Update(face)
	if err != nil {
		return err
	}
	pose, err := headpose.Estimate(face)
	if err != nil {
		return err
	}
	head, err := s.tracker.Track(face)
	if err != nil {
		return err
	}

	r.FaceDetected = true
	r.Blink = s.blink.UpdateEAR(left, right, now)
	r.Wink = s.wink.UpdateEAR(left, right, now)
	r.Mouth = mouthState
	r.Brow = browState
	r.Pose = pose
	r.Head = head
	x, y := s.cursor.Map(head, s.screen.X, s.screen.Y)
	r.Pointer = image.Pt(x, y)

	r.Sleep = s.sleep.Update(r.Blink.AvgEAR, pose.Pitch, now)

	if r.Blink.Completed {
		s.fatigue.RecordBlink(r.Blink.Duration, now)
	}
	r.Fatigue = s.fatigue.Update(fatigue.Sample{
		MouthOpenRatio: mouthState.OpenRatio,
		HeadY:          pose.Y,
		EyesClosed:     r.Wink.BothClosed,
	}, now)

	r.Events = append(r.Events, faceEvents(r, now)...)
	return nil
}

func (s *Session) processHands(r *Result, hands []landmark.HandLandmarks, now time.Time) {
	r.Hands = make([]gesture.Classification, 0, len(hands))
	for _, h := range hands {
		r.Hands = append(r.Hands, gesture.Classify(h))
	}

	// The most confident hand drives the hold recognizer.
	primary := gesture.None
	best := -1.0
	for i, h := range hands {
		if h.Score > best {
			best = h.Score
			primary = r.Hands[i].Gesture
		}
	}

	r.Hold = s.hold.Update(primary, now)
	if r.Hold.Fired != gesture.None {
		r.Events = append(r.Events, Event{Kind: EventGesture, At: now, Detail: r.Hold.Fired.String()})
	}
}

// LastFrame returns the most recent frame passed to Process and its time.
func (s *Session) LastFrame() (landmark.Frame, time.Time) {
	return s.last, s.lastAt
}

// Calibrate re-centers the head tracker and re-baselines the eyebrows on the
// last frame that carried a usable face.
func (s *Session) Calibrate() error {
	if s.lastFace == nil {
		return ErrNoFace
	}
	if err := s.tracker.Calibrate(s.lastFace); err != nil {
		return err
	}
	return s.brow.Calibrate(s.lastFace)
}

// RecordBreak tells the fatigue detector a break was taken and returns the
// event to record for it.
func (s *Session) RecordBreak(now time.Time) Event {
	score := fatigue.Score(s.fatigue.Metrics(now))
	s.fatigue.RecordBreak(now)
	return Event{Kind: EventBreakTaken, At: now, Score: score}
}

// BlinkCount returns the blinks counted since the last reset.
func (s *Session) BlinkCount() int {
	return s.blink.BlinkCount()
}

// Fatigue returns the fatigue indicators, score and level at now, whether or
// not the last frame carried a face.
func (s *Session) Fatigue(now time.Time) fatigue.State {
	m := s.fatigue.Metrics(now)
	score := fatigue.Score(m)
	return fatigue.State{
		Metrics:  m,
		Score:    score,
		Level:    fatigue.LevelFor(score),
		BreakDue: s.fatigue.BreakDue(),
	}
}

// BreakDue reports whether a break is due.
func (s *Session) BreakDue() bool {
	return s.fatigue.BreakDue()
}

// SleepTotals returns the current and total sleep durations at now.
func (s *Session) SleepTotals(now time.Time) (current, total time.Duration) {
	return s.sleep.CurrentSleepDuration(now), s.sleep.TotalSleepDuration(now)
}

// Frames returns the number of frames processed.
func (s *Session) Frames() int {
	return s.frames
}

// Reset clears the transient state of every detector, keeping configuration.
func (s *Session) Reset() {
	s.blink.Reset()
	s.wink.Reset()
	s.mouth.Reset()
	s.brow.Reset()
	s.tracker.Reset()
	s.sleep.Reset()
	s.fatigue.Reset()
	s.hold.Reset()
	s.last = landmark.Frame{}
	s.lastAt = time.Time{}
	s.lastFace = nil
	s.frames = 0
}
