package gesture

import (
	"math"
	"testing"

	"github.com/RussGuo/Chrismas/internal/detector"
)

// handWithRatio builds a hand whose openness ratio is exactly the given
// value: knuckles 0.1 apart, tips ratio*0.1 apart.
func handWithRatio(ratio float64) *detector.HandLandmarks {
	lm := &detector.HandLandmarks{Handedness: "Right", Score: 0.9}
	lm.Points[detector.ThumbMCP] = detector.Point3D{X: 0.45, Y: 0.70}
	lm.Points[detector.IndexMCP] = detector.Point3D{X: 0.55, Y: 0.70}
	half := ratio * 0.05
	lm.Points[detector.ThumbTip] = detector.Point3D{X: 0.5 - half, Y: 0.5}
	lm.Points[detector.IndexTip] = detector.Point3D{X: 0.5 + half, Y: 0.5}
	return lm
}

func TestClassifier_ShortOpenRunDoesNotFlip(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	// Exactly the confidence threshold, never exceeding it.
	for i := 0; i < DefaultConfig().ConfidenceThreshold; i++ {
		if _, ok := c.Observe(handWithRatio(1.6)); ok {
			t.Fatalf("unexpected transition on frame %d", i+1)
		}
	}

	if c.Mode() != ModeFormed {
		t.Errorf("mode = %v, want %v", c.Mode(), ModeFormed)
	}
}

func TestClassifier_OpenRunFlipsExactlyOnce(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	// Six consistent open frames with threshold five: the flip happens on
	// the sixth frame, not earlier.
	var events []Event
	for i := 0; i < 6; i++ {
		ev, ok := c.Observe(handWithRatio(1.6))
		if ok {
			if i != 5 {
				t.Errorf("transition on frame %d, want frame 6", i+1)
			}
			events = append(events, ev)
		}
	}

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].To != ModeChaos || events[0].From != ModeFormed {
		t.Errorf("event = %+v, want formed->chaos", events[0])
	}
	if events[0].Cause != CauseGesture {
		t.Errorf("cause = %v, want %v", events[0].Cause, CauseGesture)
	}

	// The run keeps growing but no further events are emitted.
	for i := 0; i < 10; i++ {
		if _, ok := c.Observe(handWithRatio(1.6)); ok {
			t.Fatal("repeated transition while already dispersed")
		}
	}
}

func TestClassifier_ClosedRunRestoresFormed(t *testing.T) {
	c := NewClassifier(DefaultConfig())
	driveToChaos(t, c)

	var events []Event
	for i := 0; i < 6; i++ {
		if ev, ok := c.Observe(handWithRatio(0.4)); ok {
			events = append(events, ev)
		}
	}

	if len(events) != 1 || events[0].To != ModeFormed {
		t.Fatalf("events = %+v, want single chaos->formed", events)
	}
}

func TestClassifier_AmbiguousResetsProgress(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	// Alternate between open and dead-zone frames. Progress never
	// accumulates past the threshold, so the mode must not change.
	for i := 0; i < 40; i++ {
		ratio := 1.6
		if i%5 == 4 {
			ratio = 1.1 // inside the dead-zone
		}
		if _, ok := c.Observe(handWithRatio(ratio)); ok {
			t.Fatalf("unexpected transition on frame %d", i+1)
		}
	}

	if c.Mode() != ModeFormed {
		t.Errorf("mode = %v, want %v", c.Mode(), ModeFormed)
	}
}

func TestClassifier_SingleDropoutDecaysNotResets(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	// Four open frames, one dropout, then three more open frames. The
	// dropout costs one frame of progress (4 -> 3) rather than all of it,
	// so the run reaches six on the third frame after the gap.
	for i := 0; i < 4; i++ {
		c.Observe(handWithRatio(1.6))
	}
	if _, ok := c.Observe(nil); ok {
		t.Fatal("dropout frame transitioned")
	}

	flipped := false
	for i := 0; i < 3; i++ {
		if _, ok := c.Observe(handWithRatio(1.6)); ok {
			if i != 2 {
				t.Errorf("transition %d frames after dropout, want 3", i+1)
			}
			flipped = true
		}
	}

	if !flipped {
		t.Error("expected transition after recovering from single dropout")
	}
}

func TestClassifier_NoHandTimeoutRestoresFormed(t *testing.T) {
	cfg := DefaultConfig()
	c := NewClassifier(cfg)
	driveToChaos(t, c)

	var events []Event
	for i := 0; i < cfg.NoHandThreshold; i++ {
		if ev, ok := c.Observe(nil); ok {
			if i != cfg.NoHandThreshold-1 {
				t.Errorf("timeout fired on no-hand frame %d, want %d", i+1, cfg.NoHandThreshold)
			}
			events = append(events, ev)
		}
	}

	if len(events) != 1 {
		t.Fatalf("got %d timeout events, want 1", len(events))
	}
	if events[0].Cause != CauseTimeout || events[0].To != ModeFormed {
		t.Errorf("event = %+v, want timeout chaos->formed", events[0])
	}

	// Staying handless emits nothing further.
	for i := 0; i < 3*cfg.NoHandThreshold; i++ {
		if _, ok := c.Observe(nil); ok {
			t.Fatal("repeated timeout event")
		}
	}
}

func TestClassifier_NoHandTimeoutInactiveWhileFormed(t *testing.T) {
	cfg := DefaultConfig()
	c := NewClassifier(cfg)

	for i := 0; i < 4*cfg.NoHandThreshold; i++ {
		if _, ok := c.Observe(nil); ok {
			t.Fatal("timeout event while already formed")
		}
	}
}

func TestClassifier_ControlPointPublishing(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	if c.ControlPoint().Detected {
		t.Error("control point detected before first hand")
	}

	// Ambiguous frames still publish the control point.
	hand := handWithRatio(1.1)
	c.Observe(hand)

	cp := c.ControlPoint()
	if !cp.Detected {
		t.Fatal("control point not detected after hand frame")
	}
	wantX := (hand.Points[detector.ThumbTip].X + hand.Points[detector.IndexTip].X) / 2
	wantY := (hand.Points[detector.ThumbTip].Y + hand.Points[detector.IndexTip].Y) / 2
	if math.Abs(cp.X-wantX) > 1e-9 || math.Abs(cp.Y-wantY) > 1e-9 {
		t.Errorf("control point = (%v, %v), want (%v, %v)", cp.X, cp.Y, wantX, wantY)
	}

	// Missed frames keep the last known value.
	c.Observe(nil)
	c.Observe(nil)
	if got := c.ControlPoint(); got != cp {
		t.Errorf("control point changed across missed frames: %+v -> %+v", cp, got)
	}
	if c.Tracking() {
		t.Error("Tracking() = true during missed frames")
	}
}

func TestClassifier_MalformedHandTreatedAsMissing(t *testing.T) {
	c := NewClassifier(DefaultConfig())

	for i := 0; i < 4; i++ {
		c.Observe(handWithRatio(1.6))
	}

	// Zero-filled thumb landmarks: unusable, must behave like a dropout.
	var malformed detector.HandLandmarks
	malformed.Points[detector.IndexMCP] = detector.Point3D{X: 0.55, Y: 0.70}
	malformed.Points[detector.IndexTip] = detector.Point3D{X: 0.55, Y: 0.40}

	if _, ok := c.Observe(&malformed); ok {
		t.Fatal("malformed frame transitioned")
	}
	if st := c.State(); st.OpenRun != 3 {
		t.Errorf("open run = %d after malformed frame, want 3 (decay by one)", st.OpenRun)
	}
}

func TestNewClassifier_RejectsInvertedThresholds(t *testing.T) {
	c := NewClassifier(Config{OpenRatio: 0.5, ClosedRatio: 1.5, ConfidenceThreshold: -1})

	if c.config.OpenRatio <= c.config.ClosedRatio {
		t.Error("inverted ratios not normalized")
	}
	if c.config.ConfidenceThreshold <= 0 {
		t.Error("confidence threshold not normalized")
	}
}

// driveToChaos pushes the classifier into ModeChaos with a clean open run.
func driveToChaos(t *testing.T, c *Classifier) {
	t.Helper()
	for i := 0; i <= DefaultConfig().ConfidenceThreshold; i++ {
		c.Observe(handWithRatio(1.8))
	}
	if c.Mode() != ModeChaos {
		t.Fatalf("failed to reach chaos mode, mode = %v", c.Mode())
	}
}
