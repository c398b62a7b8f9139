package app

import (
	"image"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/drishti/internal/capture"
	"github.com/ayusman/drishti/internal/fatigue"
	"github.com/ayusman/drishti/internal/landmark"
	"github.com/ayusman/drishti/internal/session"
	"github.com/ayusman/drishti/internal/store"
)

// runPipeline is the main detection loop. It reads one camera frame per tick,
// at a fixed rate so frame-count thresholds keep their meaning.
//
// Pipeline logic:
// 1. Read a frame and keep a copy for the preview stream
// 2. Detect face and hand landmarks
// 3. Run the session detectors
// 4. Sample facial colors every ColorInterval
// 5. Persist events, and fatigue snapshots every SnapshotInterval
// 6. Publish the result to subscribers
func (a *App) runPipeline(camera capture.Camera, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Second / FPS)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			if _, err := a.ProcessFrame(frame, now); err != nil {
				log.Printf("Error processing frame: %v", err)
			}
			frame.Close()
		}
	}
}

// ProcessFrame runs landmark detection and the session over one camera frame.
// The caller keeps ownership of frame.
func (a *App) ProcessFrame(frame *gocv.Mat, now time.Time) (session.Result, error) {
	a.keepPreview(frame)

	landmarks, err := a.Detector().Detect(frame)
	if err != nil {
		return session.Result{}, err
	}

	return a.handle(landmarks, func() (image.Image, error) {
		return frame.ToImage()
	}, now)
}

// HandleLandmarks runs the session over landmarks that did not come from the
// camera. Facial colors are not sampled.
func (a *App) HandleLandmarks(frame landmark.Frame, now time.Time) (session.Result, error) {
	return a.handle(frame, nil, now)
}

func (a *App) handle(frame landmark.Frame, pixels func() (image.Image, error), now time.Time) (session.Result, error) {
	a.sessMu.Lock()
	r, err := a.sess.Process(frame, now)
	if err != nil {
		a.sessMu.Unlock()
		return r, err
	}

	last := r
	a.last = &last
	if pixels != nil && r.FaceDetected && now.Sub(a.lastColor) >= a.config.ColorInterval {
		a.sampleColors(frame.Face, pixels)
		a.lastColor = now
	}

	id := a.sessionID
	var snap *store.Snapshot
	if id != "" && a.config.Store != nil && now.Sub(a.lastSnapshot) >= a.config.SnapshotInterval {
		snap = snapshotOf(id, a.sess.Fatigue(now), now)
		if err := a.saveTotals(id, now); err != nil {
			log.Printf("Error saving session totals: %v", err)
		}
		a.lastSnapshot = now
	}
	a.sessMu.Unlock()

	if err := a.persistEvents(id, r.Events); err != nil {
		log.Printf("Error saving events: %v", err)
	}
	if snap != nil {
		if err := a.config.Store.Snapshots().Create(snap); err != nil {
			log.Printf("Error saving fatigue snapshot: %v", err)
		}
	}

	for _, e := range r.Events {
		log.Printf("Event %s %s", e.Kind, e.Detail)
	}
	a.dispatch(id, r.Events)

	a.publish(r)
	return r, nil
}

// sampleColors must be called with sessMu held.
func (a *App) sampleColors(face landmark.Set, pixels func() (image.Image, error)) {
	img, err := pixels()
	if err != nil {
		log.Printf("Error converting frame: %v", err)
		return
	}
	attrs, err := a.sampler.Sample(img, face)
	if err != nil {
		log.Printf("Error sampling colors: %v", err)
		return
	}
	a.colors = &attrs
}

func (a *App) persistEvents(sessionID string, events []session.Event) error {
	if sessionID == "" || a.config.Store == nil || len(events) == 0 {
		return nil
	}

	records := make([]*store.Event, len(events))
	for i, e := range events {
		records[i] = &store.Event{
			SessionID:  sessionID,
			Kind:       string(e.Kind),
			At:         e.At,
			Detail:     e.Detail,
			DurationMS: e.Duration.Milliseconds(),
			Score:      e.Score,
		}
	}
	return a.config.Store.Events().Create(records)
}

func snapshotOf(sessionID string, f fatigue.State, now time.Time) *store.Snapshot {
	m := f.Metrics
	return &store.Snapshot{
		SessionID:  sessionID,
		At:         now,
		Score:      f.Score,
		Level:      string(f.Level),
		BlinkRate:  m.BlinkRate,
		AvgBlinkMS: float64(m.AvgBlinkDuration) / float64(time.Millisecond),
		Yawns:      m.YawnCount,
		Droops:     m.DroopEvents,
		Perclos:    m.Perclos,
	}
}

func (a *App) keepPreview(frame *gocv.Mat) {
	if frame == nil || frame.Empty() {
		return
	}

	a.previewMu.Lock()
	defer a.previewMu.Unlock()

	if a.preview == nil {
		m := gocv.NewMat()
		a.preview = &m
	}
	frame.CopyTo(a.preview)
}
