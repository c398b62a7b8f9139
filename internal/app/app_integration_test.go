package app

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/drishti/internal/detector"
	"github.com/ayusman/drishti/internal/fatigue"
	"github.com/ayusman/drishti/internal/landmark"
	"github.com/ayusman/drishti/internal/session"
	"github.com/ayusman/drishti/internal/store"
)

var epoch = time.Date(2024, 5, 6, 14, 0, 0, 0, time.UTC)

func at(frame int) time.Time {
	return epoch.Add(time.Duration(frame) * time.Second / FPS)
}

// newTestApp creates an App backed by a temp store and a mock detector.
func newTestApp(t *testing.T, config Config) (*App, *store.Store, *detector.MockDetector) {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	config.Store = s
	a := New(config)

	mock := detector.NewMockDetector()
	a.SetDetector(mock)
	return a, s, mock
}

func feed(t *testing.T, a *App, start int, faces ...landmark.Set) {
	t.Helper()
	for i, face := range faces {
		if _, err := a.HandleLandmarks(landmark.Frame{Face: face}, at(start+i)); err != nil {
			t.Fatalf("frame %d: %v", start+i, err)
		}
	}
}

func repeat(face landmark.Set, n int) []landmark.Set {
	out := make([]landmark.Set, n)
	for i := range out {
		out[i] = face
	}
	return out
}

func TestApp_SessionLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, s, _ := newTestApp(t, DefaultConfig())

	id, err := a.BeginSession(epoch)
	if err != nil {
		t.Fatalf("BeginSession() error = %v", err)
	}

	closed := landmark.NewFace().Eyes(0.1, 0.1).Build()
	feed(t, a, 0, repeat(landmark.NeutralFace(), 3)...)
	feed(t, a, 3, repeat(closed, 3)...)
	feed(t, a, 6, landmark.NeutralFace())

	events, err := s.Events().ListBySession(id, string(session.EventBlink), 0)
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 stored blink, got %d", len(events))
	}
	if events[0].DurationMS != 100 {
		t.Errorf("blink duration = %dms, want 100ms", events[0].DurationMS)
	}

	status := a.Status()
	if status.SessionID != id || status.Frames != 7 || status.Last == nil || !status.Last.FaceDetected {
		t.Errorf("unexpected status: %+v", status)
	}

	if err := a.EndSession(at(7)); err != nil {
		t.Fatalf("EndSession() error = %v", err)
	}

	rec, err := s.Sessions().GetByID(id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if rec.Active() {
		t.Error("session should be ended")
	}
	if rec.Frames != 7 || rec.Blinks != 1 {
		t.Errorf("stored totals = %d frames, %d blinks", rec.Frames, rec.Blinks)
	}
	if a.Status().SessionID != "" {
		t.Error("no session should be current after EndSession")
	}
}

func TestApp_FacelessFrameKeepsTotals(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	config := DefaultConfig()
	config.SnapshotInterval = time.Second
	a, s, _ := newTestApp(t, config)

	id, err := a.BeginSession(epoch)
	if err != nil {
		t.Fatalf("BeginSession() error = %v", err)
	}

	closed := landmark.NewFace().Eyes(0.1, 0.1).Build()
	feed(t, a, 0, repeat(landmark.NeutralFace(), 3)...)
	feed(t, a, 3, repeat(closed, 3)...)
	feed(t, a, 6, landmark.NeutralFace())

	// The subject leaves the frame; the snapshot falls on this frame.
	r, err := a.HandleLandmarks(landmark.Frame{}, at(30))
	if err != nil {
		t.Fatalf("HandleLandmarks() error = %v", err)
	}
	if r.FaceDetected {
		t.Fatal("empty frame should not detect a face")
	}

	snaps, err := s.Snapshots().ListBySession(id, time.Time{})
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}
	if snaps[0].Level == "" || snaps[0].Level != string(fatigue.LevelFor(snaps[0].Score)) {
		t.Errorf("snapshot on a faceless frame = score %d level %q", snaps[0].Score, snaps[0].Level)
	}
	if snaps[0].BlinkRate == 0 {
		t.Error("snapshot on a faceless frame lost the blink rate")
	}

	if err := a.EndSession(at(31)); err != nil {
		t.Fatalf("EndSession() error = %v", err)
	}
	rec, err := s.Sessions().GetByID(id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if rec.Frames != 8 || rec.Blinks != 1 {
		t.Errorf("stored totals = %d frames, %d blinks, want 8 and 1", rec.Frames, rec.Blinks)
	}
}

func TestApp_ProcessFrame(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, _, mock := newTestApp(t, DefaultConfig())
	mock.SetFrame(landmark.Frame{
		Face:  landmark.NeutralFace(),
		Hands: []landmark.HandLandmarks{landmark.PeaceLandmarks()},
	})

	if _, err := a.PreviewJPEG(); !errors.Is(err, ErrNoPreview) {
		t.Errorf("expected ErrNoPreview before any frame, got %v", err)
	}

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	r, err := a.ProcessFrame(&frame, epoch)
	if err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}
	if !r.FaceDetected || len(r.Hands) != 1 {
		t.Errorf("unexpected result: %+v", r)
	}
	if mock.Calls() != 1 {
		t.Errorf("detector called %d times, want 1", mock.Calls())
	}

	if a.Status().Colors == nil {
		t.Error("colors should be sampled on the first face")
	}

	jpeg, err := a.PreviewJPEG()
	if err != nil {
		t.Fatalf("PreviewJPEG() error = %v", err)
	}
	if len(jpeg) < 2 || jpeg[0] != 0xff || jpeg[1] != 0xd8 {
		t.Error("preview should be a JPEG")
	}

	detectErr := errors.New("model crashed")
	mock.SetError(detectErr)
	if _, err := a.ProcessFrame(&frame, at(1)); !errors.Is(err, detectErr) {
		t.Errorf("expected detector error, got %v", err)
	}
}

func TestApp_Subscribe(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, _, _ := newTestApp(t, DefaultConfig())

	results, cancel := a.Subscribe()
	feed(t, a, 0, landmark.NeutralFace())

	select {
	case r := <-results:
		if !r.FaceDetected {
			t.Error("subscriber should see the face")
		}
	case <-time.After(time.Second):
		t.Fatal("no result published")
	}

	cancel()
	cancel()
	if _, ok := <-results; ok {
		t.Error("channel should be closed after cancel")
	}

	// Publishing with no subscribers must not block
	feed(t, a, 1, repeat(landmark.NeutralFace(), subscriberBuffer+2)...)
}

func TestApp_Settings(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a, s, _ := newTestApp(t, DefaultConfig())

	st := a.Settings()
	st.EARThreshold = 0.18
	st.GestureHoldMS = 450
	if err := a.ApplySettings(st); err != nil {
		t.Fatalf("ApplySettings() error = %v", err)
	}

	bad := st
	bad.CursorSpeed = 0
	if err := a.ApplySettings(bad); err == nil {
		t.Error("expected an error for a zero cursor speed")
	}

	// A fresh app over the same store picks the saved settings up
	config := DefaultConfig()
	config.Store = s
	b := New(config)
	if err := b.LoadSettings(); err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if got := b.Settings(); got != st {
		t.Errorf("loaded settings:\n got %+v\nwant %+v", got, st)
	}
}

func TestApp_SnapshotsAndBreaks(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	config := DefaultConfig()
	config.SnapshotInterval = time.Second
	a, s, _ := newTestApp(t, config)

	id, err := a.BeginSession(epoch)
	if err != nil {
		t.Fatalf("BeginSession() error = %v", err)
	}

	// 3.5 seconds of frames
	feed(t, a, 0, repeat(landmark.NeutralFace(), 105)...)

	snaps, err := s.Snapshots().ListBySession(id, time.Time{})
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(snaps) != 3 {
		t.Errorf("expected 3 snapshots, got %d", len(snaps))
	}
	for _, snap := range snaps {
		if snap.Level != "fresh" {
			t.Errorf("unexpected level %q", snap.Level)
		}
	}

	if err := a.RecordBreak(at(105)); err != nil {
		t.Fatalf("RecordBreak() error = %v", err)
	}
	breaks, err := s.Events().ListBySession(id, string(session.EventBreakTaken), 0)
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(breaks) != 1 {
		t.Errorf("expected 1 break event, got %d", len(breaks))
	}
}
