package session

import (
	"log"
	"time"

	"github.com/RussGuo/Chrismas/internal/capture"
	"github.com/RussGuo/Chrismas/internal/detector"
	"github.com/RussGuo/Chrismas/internal/scene"
)

// run is the scene loop. Each tick it pulls one detection result and feeds
// it through the classifier and the orbit smoothers, then publishes the
// resulting scene frame.
//
// The capture rate follows presence: idle FPS with nobody in front of the
// tree, active FPS while a visitor moves. The loop itself never stops while
// the session is up; without a hand (or with gesture control disabled or
// degraded) the camera simply orbits autonomously.
func (s *Session) run(stopCh, done chan struct{}) {
	defer close(done)

	interval := time.Second / capture.IdleFPS
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	active := false
	last := time.Now()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now

			hand := s.captureHand()

			// Switch capture rate on presence transitions.
			present := hand != nil || s.presenceRecently()
			if present && !active {
				active = true
				s.Camera().SetFPS(capture.ActiveFPS)
				ticker.Reset(time.Second / capture.ActiveFPS)
			} else if !present && active {
				active = false
				s.Camera().SetFPS(capture.IdleFPS)
				ticker.Reset(time.Second / capture.IdleFPS)
			}

			s.step(hand, dt, now)
		}
	}
}

// captureHand reads one frame and runs detection on it, returning the first
// detected hand or nil. Any capture or detection failure degrades to "no
// hand this frame" rather than stopping the loop.
func (s *Session) captureHand() *detector.HandLandmarks {
	s.mu.RLock()
	enabled := s.enabled
	degraded := s.degraded
	cam := s.camera
	det := s.detector
	s.mu.RUnlock()

	if !enabled || degraded || det == nil || !cam.IsOpen() {
		return nil
	}

	frame, err := cam.ReadFrame()
	if err != nil {
		return nil
	}
	defer frame.Close()

	if !s.presence.Observe(frame) {
		return nil
	}

	hands, err := det.Detect(frame)
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		return nil
	}
	if len(hands) == 0 {
		return nil
	}

	return &hands[0]
}

// presenceRecently reports whether the presence hold window is still open.
func (s *Session) presenceRecently() bool {
	return s.presence.Observe(nil)
}

// step advances every per-tick state machine with one detection result.
// Separated from capture so tests can drive ticks without a camera.
func (s *Session) step(hand *detector.HandLandmarks, dt float64, now time.Time) {
	ev, transitioned := s.classifier.Observe(hand)

	// The smoother only steers from a control point that is live this
	// tick; a retained last-known-good point must not drive the camera.
	cp := s.classifier.ControlPoint()
	if !s.classifier.Tracking() {
		cp.Detected = false
	}

	mode := s.classifier.Mode()
	pose := s.smoother.Advance(cp, mode, dt, s.config.Radius)
	spinAngle := s.spin.Advance(mode, dt)

	frame := scene.Frame{
		Timestamp:    now.UnixMilli(),
		Mode:         mode,
		Tracking:     s.classifier.Tracking(),
		ControlPoint: s.classifier.ControlPoint(),
		Camera:       pose,
		SpinAngle:    spinAngle,
	}

	s.mu.Lock()
	frame.Degraded = s.degraded
	s.status = Status{
		Tracking: frame.Tracking,
		Mode:     mode,
		Gesture:  s.classifier.State(),
	}
	onFrame := s.onFrame
	onModeChange := s.onModeChange
	s.mu.Unlock()

	if transitioned {
		log.Printf("Mode %s -> %s (%s)", ev.From, ev.To, ev.Cause)
		if onModeChange != nil {
			onModeChange(ev)
		}
	}

	if onFrame != nil {
		onFrame(frame)
	}
}
