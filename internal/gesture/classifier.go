// Package gesture classifies per-frame hand landmarks into the installation's
// two display modes and tracks the hand's control point for camera steering.
package gesture

import (
	"math"

	"github.com/RussGuo/Chrismas/internal/detector"
)

// Mode is the discrete display mode of the tree.
type Mode string

const (
	// ModeFormed is the calm state: particles assembled into the tree shape.
	ModeFormed Mode = "formed"
	// ModeChaos is the dispersed state: particles scattered, camera follows
	// the hand.
	ModeChaos Mode = "chaos"
)

// Cause describes what produced a mode transition.
type Cause string

const (
	// CauseGesture is a debounced open/closed hand gesture.
	CauseGesture Cause = "gesture"
	// CauseTimeout is the no-hand auto-restore while dispersed.
	CauseTimeout Cause = "timeout"
)

// ratioEpsilon guards the openness ratio against a degenerate knuckle
// separation.
const ratioEpsilon = 1e-6

// Config holds the classifier thresholds. All values are fixed at build
// time; DefaultConfig is the tuning used by the installation.
type Config struct {
	// OpenRatio is the openness ratio at or above which a frame counts as
	// an open hand. Must be strictly greater than ClosedRatio; the gap
	// between them is the ambiguous dead-zone.
	OpenRatio float64

	// ClosedRatio is the openness ratio at or below which a frame counts
	// as a pinch.
	ClosedRatio float64

	// ConfidenceThreshold is the number of consecutive agreeing frames a
	// run must exceed before the mode flips.
	ConfidenceThreshold int

	// NoHandThreshold is the number of consecutive no-hand frames after
	// which a dispersed tree re-forms on its own (~1 s at the session
	// frame rate).
	NoHandThreshold int
}

// DefaultConfig returns the classifier tuning used by the installation.
func DefaultConfig() Config {
	return Config{
		OpenRatio:           1.3,
		ClosedRatio:         0.9,
		ConfidenceThreshold: 5,
		NoHandThreshold:     30,
	}
}

// ControlPoint is the normalized 2D steering point derived from the hand.
// It retains its last known value across missed frames; Detected is false
// until the first hand is seen.
type ControlPoint struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Detected bool    `json:"detected"`
}

// Event is emitted exactly once per mode transition.
type Event struct {
	From  Mode  `json:"from"`
	To    Mode  `json:"to"`
	Cause Cause `json:"cause"`
}

// State is a read-only snapshot of the classifier for status reporting.
type State struct {
	Mode         Mode         `json:"mode"`
	OpenRun      int          `json:"open_run"`
	ClosedRun    int          `json:"closed_run"`
	NoHandRun    int          `json:"no_hand_run"`
	ControlPoint ControlPoint `json:"control_point"`
}

// Classifier turns a stream of per-frame detection results into debounced
// mode transitions and a continuously updated control point. It is owned and
// mutated by a single session loop; it is not safe for concurrent use.
type Classifier struct {
	config    Config
	mode      Mode
	openRun   int
	closedRun int
	noHandRun int
	control   ControlPoint
}

// NewClassifier creates a classifier starting in ModeFormed.
// Non-positive or inverted thresholds fall back to the defaults.
func NewClassifier(config Config) *Classifier {
	def := DefaultConfig()
	if config.OpenRatio <= config.ClosedRatio || config.ClosedRatio <= 0 {
		config.OpenRatio = def.OpenRatio
		config.ClosedRatio = def.ClosedRatio
	}
	if config.ConfidenceThreshold <= 0 {
		config.ConfidenceThreshold = def.ConfidenceThreshold
	}
	if config.NoHandThreshold <= 0 {
		config.NoHandThreshold = def.NoHandThreshold
	}

	return &Classifier{
		config: config,
		mode:   ModeFormed,
	}
}

// Observe consumes one frame's detection result. A nil hand means nothing
// was detected this frame; a hand without usable thumb/index landmarks is
// treated the same way. The returned Event is valid only when ok is true.
func (c *Classifier) Observe(hand *detector.HandLandmarks) (Event, bool) {
	if hand == nil || !hasControlLandmarks(hand) {
		return c.observeMissing()
	}

	c.noHandRun = 0

	thumbTip := hand.Points[detector.ThumbTip]
	indexTip := hand.Points[detector.IndexTip]

	// The control point is published on every detected frame, whatever the
	// gesture classification turns out to be.
	mid := detector.Midpoint(thumbTip, indexTip)
	c.control = ControlPoint{X: clamp01(mid.X), Y: clamp01(mid.Y), Detected: true}

	// Openness normalized by the hand's own knuckle separation, so the
	// thresholds hold at any distance from the camera.
	base := detector.Distance(hand.Points[detector.ThumbMCP], hand.Points[detector.IndexMCP])
	ratio := detector.Distance(thumbTip, indexTip) / math.Max(base, ratioEpsilon)

	switch {
	case ratio >= c.config.OpenRatio:
		c.openRun++
		c.closedRun = 0
		if c.openRun > c.config.ConfidenceThreshold && c.mode != ModeChaos {
			return c.transition(ModeChaos, CauseGesture), true
		}

	case ratio <= c.config.ClosedRatio:
		c.closedRun++
		c.openRun = 0
		if c.closedRun > c.config.ConfidenceThreshold && c.mode != ModeFormed {
			return c.transition(ModeFormed, CauseGesture), true
		}

	default:
		// Dead-zone frame: no evidence either way.
		c.openRun = 0
		c.closedRun = 0
	}

	return Event{}, false
}

// observeMissing handles a frame with no usable hand. Run lengths decay by
// one instead of resetting, so a single detection dropout does not throw
// away debounce progress. The control point keeps its last known value.
func (c *Classifier) observeMissing() (Event, bool) {
	if c.openRun > 0 {
		c.openRun--
	}
	if c.closedRun > 0 {
		c.closedRun--
	}

	c.noHandRun++
	if c.noHandRun >= c.config.NoHandThreshold && c.mode == ModeChaos {
		return c.transition(ModeFormed, CauseTimeout), true
	}

	return Event{}, false
}

func (c *Classifier) transition(to Mode, cause Cause) Event {
	ev := Event{From: c.mode, To: to, Cause: cause}
	c.mode = to
	return ev
}

// Mode returns the current display mode.
func (c *Classifier) Mode() Mode {
	return c.mode
}

// ControlPoint returns the last known steering point.
func (c *Classifier) ControlPoint() ControlPoint {
	return c.control
}

// Tracking reports whether a hand was seen on the most recent frame.
func (c *Classifier) Tracking() bool {
	return c.control.Detected && c.noHandRun == 0
}

// State returns a snapshot of the classifier for status reporting.
func (c *Classifier) State() State {
	return State{
		Mode:         c.mode,
		OpenRun:      c.openRun,
		ClosedRun:    c.closedRun,
		NoHandRun:    c.noHandRun,
		ControlPoint: c.control,
	}
}

// hasControlLandmarks reports whether the four landmarks the classifier
// depends on carry real data. MediaPipe zero-fills missing points; a hand
// whose thumb and index landmarks coincide at the origin is unusable.
func hasControlLandmarks(hand *detector.HandLandmarks) bool {
	zero := detector.Point3D{}
	required := []int{detector.ThumbMCP, detector.ThumbTip, detector.IndexMCP, detector.IndexTip}
	for _, i := range required {
		if hand.Points[i] == zero {
			return false
		}
	}
	return true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
