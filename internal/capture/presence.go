package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Presence detection constants.
const (
	// presenceBlurSize is the Gaussian blur kernel size used to knock down
	// sensor noise before differencing.
	presenceBlurSize = 21

	// presenceDiffThreshold is the binary threshold applied to the frame
	// difference.
	presenceDiffThreshold = 25

	// DefaultPresenceThreshold is the percentage of changed pixels that
	// counts as someone moving in front of the installation.
	DefaultPresenceThreshold = 1.0

	// DefaultPresenceHold is how long presence lingers after the last
	// detected movement, so a visitor holding still doesn't drop the
	// session back to idle between gestures.
	DefaultPresenceHold = 3 * time.Second
)

// PresenceDetector decides whether anyone is in front of the tree by frame
// differencing, with a hold period so momentary stillness doesn't flap the
// detection rate.
type PresenceDetector struct {
	threshold   float64
	hold        time.Duration
	prevGray    gocv.Mat
	initialized bool
	lastMotion  time.Time
	mu          sync.Mutex
}

// NewPresenceDetector creates a detector. threshold is the percentage of
// pixels that must change between frames; non-positive values use the
// default. A zero hold uses the default hold period.
func NewPresenceDetector(threshold float64, hold time.Duration) *PresenceDetector {
	if threshold <= 0 {
		threshold = DefaultPresenceThreshold
	}
	if hold <= 0 {
		hold = DefaultPresenceHold
	}
	return &PresenceDetector{
		threshold: threshold,
		hold:      hold,
		prevGray:  gocv.NewMat(),
	}
}

// Observe analyzes a frame and reports whether a visitor is present.
// Presence stays true for the hold period after the last movement.
func (p *PresenceDetector) Observe(frame *gocv.Mat) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if frame == nil || frame.Empty() {
		return p.withinHold()
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: presenceBlurSize, Y: presenceBlurSize}, 0, 0, gocv.BorderDefault)

	if !p.initialized {
		blurred.CopyTo(&p.prevGray)
		p.initialized = true
		return false
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, p.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, presenceDiffThreshold, 255, gocv.ThresholdBinary)

	nonZero := gocv.CountNonZero(thresh)
	totalPixels := thresh.Rows() * thresh.Cols()
	changePercent := float64(nonZero) / float64(totalPixels) * 100.0

	blurred.CopyTo(&p.prevGray)

	if changePercent > p.threshold {
		p.lastMotion = time.Now()
		return true
	}

	return p.withinHold()
}

func (p *PresenceDetector) withinHold() bool {
	return !p.lastMotion.IsZero() && time.Since(p.lastMotion) < p.hold
}

// Reset clears the baseline frame and the hold timer.
func (p *PresenceDetector) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.prevGray.Empty() {
		p.prevGray.Close()
		p.prevGray = gocv.NewMat()
	}
	p.initialized = false
	p.lastMotion = time.Time{}
}

// Close releases resources used by the detector.
func (p *PresenceDetector) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.prevGray.Empty() {
		p.prevGray.Close()
		p.prevGray = gocv.NewMat()
	}
	p.initialized = false
}
