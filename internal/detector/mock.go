package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/drishti/internal/landmark"
)

// MockDetector is a test implementation of the Detector interface.
// It returns queued frames in order, then repeats the last one.
type MockDetector struct {
	mu     sync.Mutex
	frames []landmark.Frame
	next   int
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFrame makes every Detect call return frame.
func (m *MockDetector) SetFrame(frame landmark.Frame) {
	m.SetFrames(frame)
}

// SetFrames queues frames to be returned by successive Detect calls.
func (m *MockDetector) SetFrames(frames ...landmark.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = frames
	m.next = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect was called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next queued frame or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat) (landmark.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return landmark.Frame{}, m.err
	}
	if len(m.frames) == 0 {
		return landmark.Frame{}, nil
	}
	f := m.frames[m.next]
	if m.next < len(m.frames)-1 {
		m.next++
	}
	return f, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}
