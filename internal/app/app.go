// Package app drives the camera, the landmark detector and one monitoring
// session, and persists and publishes what the session reports.
package app

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/ayusman/drishti/internal/capture"
	"github.com/ayusman/drishti/internal/color"
	"github.com/ayusman/drishti/internal/detector"
	"github.com/ayusman/drishti/internal/plugin"
	"github.com/ayusman/drishti/internal/session"
	"github.com/ayusman/drishti/internal/store"
)

// Pipeline timing constants.
const (
	// FPS is the processing rate. Frame-count thresholds assume it.
	FPS = capture.DefaultFPS
	// DefaultSnapshotInterval is how often fatigue metrics are persisted.
	DefaultSnapshotInterval = time.Minute
	// DefaultColorInterval is how often facial colors are re-sampled.
	DefaultColorInterval = 5 * time.Second
	// DefaultPluginTimeout bounds one hook execution.
	DefaultPluginTimeout = 5 * time.Second
	// DefaultPluginSlots is how many hooks may run at once.
	DefaultPluginSlots = 4
	// subscriberBuffer is the number of results a slow subscriber may lag.
	subscriberBuffer = 8
)

// ErrNoPreview is returned by PreviewJPEG before the first camera frame.
var ErrNoPreview = errors.New("no preview frame yet")

// Config holds configuration options for the application.
type Config struct {
	Store            *store.Store
	Camera           capture.Config
	Detector         detector.Config
	Session          session.Config
	SnapshotInterval time.Duration
	ColorInterval    time.Duration

	// PluginDir holds event hooks. Empty disables hooks.
	PluginDir     string
	PluginTimeout time.Duration
	PluginSlots   int
}

// DefaultConfig returns the default application configuration without a store.
func DefaultConfig() Config {
	return Config{
		Camera:           capture.DefaultConfig(),
		Detector:         detector.DefaultConfig(),
		Session:          session.DefaultConfig(),
		SnapshotInterval: DefaultSnapshotInterval,
		ColorInterval:    DefaultColorInterval,
		PluginTimeout:    DefaultPluginTimeout,
		PluginSlots:      DefaultPluginSlots,
	}
}

// Status is a point-in-time view of the application.
type Status struct {
	Enabled    bool              `json:"enabled"`
	Running    bool              `json:"running"`
	SessionID  string            `json:"session_id,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	Frames     int               `json:"frames"`
	BreakDue   bool              `json:"break_due"`
	SleepTotal time.Duration     `json:"sleep_total"`
	Last       *session.Result   `json:"last,omitempty"`
	Colors     *color.Attributes `json:"colors,omitempty"`
}

// App is the main application that runs the monitoring pipeline.
type App struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	sampler  *color.Sampler

	mu      sync.RWMutex
	enabled bool
	stopCh  chan struct{}
	done    chan struct{}

	// sessMu serializes the pipeline with calibrate, settings and break calls.
	sessMu       sync.Mutex
	sess         *session.Session
	sessionID    string
	startedAt    time.Time
	last         *session.Result
	colors       *color.Attributes
	lastSnapshot time.Time
	lastColor    time.Time

	previewMu sync.Mutex
	preview   *gocv.Mat

	subMu sync.Mutex
	subs  map[chan session.Result]struct{}

	plugins *plugin.Manager
	hooks   *plugin.Dispatcher
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	def := DefaultConfig()
	if config.SnapshotInterval <= 0 {
		config.SnapshotInterval = def.SnapshotInterval
	}
	if config.ColorInterval <= 0 {
		config.ColorInterval = def.ColorInterval
	}
	if config.PluginTimeout <= 0 {
		config.PluginTimeout = def.PluginTimeout
	}
	if config.PluginSlots <= 0 {
		config.PluginSlots = def.PluginSlots
	}

	a := &App{
		config:  config,
		camera:  capture.NewCamera(config.Camera),
		sampler: color.NewSampler(color.DefaultConfig()),
		sess:    session.New(config.Session),
		subs:    make(map[chan session.Result]struct{}),
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe face and hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	if config.PluginDir != "" {
		a.loadPlugins()
	}

	return a
}

// SetEnabled enables or disables frame processing.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether frame processing is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the landmark detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the camera. It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// LoadSettings applies the tunables saved by a previous run, if any.
func (a *App) LoadSettings() error {
	if a.config.Store == nil {
		return nil
	}

	var st session.Settings
	if err := a.config.Store.Settings().Get(store.SettingsKey, &st); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	a.sessMu.Lock()
	defer a.sessMu.Unlock()
	if err := a.sess.ApplySettings(st); err != nil {
		return err
	}
	log.Println("Loaded saved settings")
	return nil
}

// Start opens the camera, begins a new monitoring session and starts the
// detection pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(FPS)

	if _, err := a.BeginSession(time.Now()); err != nil {
		a.camera.Close()
		return err
	}

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runPipeline(a.camera, a.stopCh, a.done)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the detection pipeline, ends the session and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh, a.done = nil, nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-done

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	if err := a.EndSession(time.Now()); err != nil {
		log.Printf("Error ending session: %v", err)
	}

	a.previewMu.Lock()
	if a.preview != nil {
		a.preview.Close()
		a.preview = nil
	}
	a.previewMu.Unlock()

	a.waitHooks()
	log.Println("Detection pipeline stopped")
}

// BeginSession resets the detectors and starts a new stored session.
func (a *App) BeginSession(now time.Time) (string, error) {
	a.sessMu.Lock()
	defer a.sessMu.Unlock()

	a.sess.Reset()
	a.sessionID = uuid.NewString()
	a.startedAt = now
	a.last = nil
	a.colors = nil
	a.lastSnapshot = now
	a.lastColor = time.Time{}

	if s := a.config.Store; s != nil {
		settings, err := json.Marshal(a.sess.Settings())
		if err != nil {
			return "", err
		}
		rec := &store.Session{ID: a.sessionID, StartedAt: now, Settings: settings}
		if err := s.Sessions().Create(rec); err != nil {
			return "", err
		}
	}

	log.Printf("Session %s started", a.sessionID)
	return a.sessionID, nil
}

// EndSession writes the final totals of the current session.
func (a *App) EndSession(now time.Time) error {
	a.sessMu.Lock()
	defer a.sessMu.Unlock()

	if a.sessionID == "" {
		return nil
	}
	id := a.sessionID
	a.sessionID = ""

	if s := a.config.Store; s != nil {
		if err := a.saveTotals(id, now); err != nil {
			return err
		}
		if err := s.Sessions().End(id, now); err != nil {
			return err
		}
	}

	log.Printf("Session %s ended after %d frames", id, a.sess.Frames())
	return nil
}

// saveTotals must be called with sessMu held.
func (a *App) saveTotals(id string, now time.Time) error {
	_, total := a.sess.SleepTotals(now)
	return a.config.Store.Sessions().UpdateTotals(id, a.sess.Frames(), a.sess.BlinkCount(), total)
}

// Calibrate re-centers head tracking and eyebrows on the last seen face.
func (a *App) Calibrate() error {
	a.sessMu.Lock()
	defer a.sessMu.Unlock()
	return a.sess.Calibrate()
}

// Settings returns the live detector tunables.
func (a *App) Settings() session.Settings {
	a.sessMu.Lock()
	defer a.sessMu.Unlock()
	return a.sess.Settings()
}

// ApplySettings validates and applies new tunables and saves them.
func (a *App) ApplySettings(st session.Settings) error {
	a.sessMu.Lock()
	err := a.sess.ApplySettings(st)
	a.sessMu.Unlock()
	if err != nil {
		return err
	}

	if s := a.config.Store; s != nil {
		return s.Settings().Set(store.SettingsKey, st)
	}
	return nil
}

// RecordBreak clears the break reminder and records the break.
func (a *App) RecordBreak(now time.Time) error {
	a.sessMu.Lock()
	e := a.sess.RecordBreak(now)
	id := a.sessionID
	a.sessMu.Unlock()

	a.dispatch(id, []session.Event{e})
	return a.persistEvents(id, []session.Event{e})
}

// Status returns a snapshot of the application state.
func (a *App) Status() Status {
	st := Status{
		Enabled: a.IsEnabled(),
	}
	a.mu.RLock()
	st.Running = a.stopCh != nil
	a.mu.RUnlock()

	a.sessMu.Lock()
	defer a.sessMu.Unlock()

	st.SessionID = a.sessionID
	st.StartedAt = a.startedAt
	st.Frames = a.sess.Frames()
	st.BreakDue = a.sess.BreakDue()
	_, st.SleepTotal = a.sess.SleepTotals(time.Now())
	if a.last != nil {
		last := *a.last
		st.Last = &last
	}
	if a.colors != nil {
		colors := *a.colors
		st.Colors = &colors
	}
	return st
}

// Subscribe registers for every processed result. The returned function
// unsubscribes and closes the channel. Results are dropped for subscribers
// that fall behind.
func (a *App) Subscribe() (<-chan session.Result, func()) {
	ch := make(chan session.Result, subscriberBuffer)

	a.subMu.Lock()
	a.subs[ch] = struct{}{}
	a.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			a.subMu.Lock()
			delete(a.subs, ch)
			a.subMu.Unlock()
			close(ch)
		})
	}
}

func (a *App) publish(r session.Result) {
	a.subMu.Lock()
	defer a.subMu.Unlock()

	for ch := range a.subs {
		select {
		case ch <- r:
		default:
		}
	}
}

// PreviewJPEG encodes the most recent camera frame.
func (a *App) PreviewJPEG() ([]byte, error) {
	a.previewMu.Lock()
	defer a.previewMu.Unlock()

	if a.preview == nil || a.preview.Empty() {
		return nil, ErrNoPreview
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *a.preview)
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Detector returns the landmark detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Store returns the configured store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}
