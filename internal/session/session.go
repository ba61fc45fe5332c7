// Package session runs the installation's per-frame loop: webcam capture,
// hand detection, gesture classification, camera smoothing, and scene-frame
// publishing. All per-tick state is owned by the single loop goroutine.
package session

import (
	"log"
	"sync"

	"github.com/RussGuo/Chrismas/internal/capture"
	"github.com/RussGuo/Chrismas/internal/detector"
	"github.com/RussGuo/Chrismas/internal/gesture"
	"github.com/RussGuo/Chrismas/internal/orbit"
	"github.com/RussGuo/Chrismas/internal/scene"
)

// DefaultRadius is the camera distance from the tree. Zoom is a renderer-side
// input; the daemon only carries the configured distance through.
const DefaultRadius = 11.0

// Config holds configuration options for a session.
type Config struct {
	CameraID       int
	PresenceThresh float64
	Radius         float64
	Classifier     gesture.Config
	Orbit          orbit.Config
	Spin           orbit.SpinConfig
}

// Status is a snapshot of the session for the status API and the tray.
type Status struct {
	Enabled  bool          `json:"enabled"`
	Degraded bool          `json:"degraded"`
	Tracking bool          `json:"tracking"`
	Mode     gesture.Mode  `json:"mode"`
	Gesture  gesture.State `json:"gesture"`
}

// Session owns the gesture classifier and orbit smoothers and drives them
// from a ticker. Construction wires the real camera and detector; tests
// inject mocks and drive ticks directly through step.
type Session struct {
	config     Config
	camera     capture.Camera
	presence   *capture.PresenceDetector
	detector   detector.Detector
	classifier *gesture.Classifier
	smoother   *orbit.Smoother
	spin       *orbit.SpinSmoother

	enabled  bool
	degraded bool
	status   Status

	onFrame      func(scene.Frame)
	onModeChange func(gesture.Event)

	mu     sync.RWMutex
	stopCh chan struct{}
	done   chan struct{}
}

// New creates a session with the given configuration. A missing detection
// backend is not fatal: the session comes up degraded, with gesture control
// off and the autonomous orbit still running.
func New(config Config) *Session {
	if config.Radius <= 0 {
		config.Radius = DefaultRadius
	}

	s := &Session{
		config:     config,
		camera:     capture.NewCamera(config.CameraID),
		presence:   capture.NewPresenceDetector(config.PresenceThresh, 0),
		classifier: gesture.NewClassifier(config.Classifier),
		smoother:   orbit.NewSmoother(config.Orbit),
		spin:       orbit.NewSpinSmoother(config.Spin),
		enabled:    true,
	}

	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		s.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("Hand detection unavailable (%v), gesture control disabled", err)
		s.degraded = true
	}

	return s
}

// SetEnabled enables or disables gesture control. The scene loop keeps
// running either way; disabling only stops hand tracking.
func (s *Session) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

// IsEnabled returns whether gesture control is currently enabled.
func (s *Session) IsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// Degraded reports whether the session is running without hand detection.
func (s *Session) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// SetDetector replaces the hand detector. Installing a working detector
// clears degraded mode; installing nil enters it.
func (s *Session) SetDetector(d detector.Detector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detector = d
	s.degraded = d == nil
}

// SetCamera replaces the camera, for tests and recorded playback.
func (s *Session) SetCamera(c capture.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera = c
}

// OnFrame registers the per-tick scene frame sink.
func (s *Session) OnFrame(fn func(scene.Frame)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFrame = fn
}

// OnModeChange registers the mode transition sink.
func (s *Session) OnModeChange(fn func(gesture.Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onModeChange = fn
}

// Status returns the snapshot published by the most recent tick.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.status
	st.Enabled = s.enabled
	st.Degraded = s.degraded
	return st
}

// Camera returns the camera instance, for the MJPEG debug stream.
func (s *Session) Camera() capture.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.camera
}

// Start opens the camera and begins the scene loop. A camera failure puts
// the session in degraded mode instead of failing.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopCh != nil {
		return nil
	}

	if !s.degraded {
		if err := s.camera.Open(); err != nil {
			log.Printf("Camera unavailable (%v), gesture control disabled", err)
			s.degraded = true
		} else {
			s.camera.SetFPS(capture.IdleFPS)
		}
	}

	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stopCh, s.done)

	log.Println("Scene loop started")
	return nil
}

// Stop halts the loop and releases the capture and detection handles. It
// waits for the loop to finish its current tick first, so no in-flight
// detection result is applied after teardown.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.stopCh == nil {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.stopCh = nil
	done := s.done
	s.mu.Unlock()

	<-done

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	s.presence.Close()

	if s.detector != nil {
		if err := s.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Scene loop stopped")
}
