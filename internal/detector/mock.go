package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandLandmarks
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// OpenHandLandmarks returns a preset hand with thumb and index finger spread
// wide apart. The tip separation is several times the knuckle separation, so
// the openness ratio lands well inside the open band.
func OpenHandLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: "Right",
		Score:      0.96,
	}

	lm.Points[Wrist] = Point3D{X: 0.50, Y: 0.85, Z: 0.0}

	// Thumb splayed out to the side
	lm.Points[ThumbCMC] = Point3D{X: 0.47, Y: 0.78, Z: 0.0}
	lm.Points[ThumbMCP] = Point3D{X: 0.45, Y: 0.70, Z: 0.0}
	lm.Points[ThumbIP] = Point3D{X: 0.40, Y: 0.62, Z: 0.0}
	lm.Points[ThumbTip] = Point3D{X: 0.35, Y: 0.55, Z: 0.0}

	// Index finger extended upward
	lm.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.70, Z: 0.0}
	lm.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.60, Z: 0.0}
	lm.Points[IndexDIP] = Point3D{X: 0.55, Y: 0.50, Z: 0.0}
	lm.Points[IndexTip] = Point3D{X: 0.55, Y: 0.40, Z: 0.0}

	// Remaining fingers extended
	lm.Points[MiddleMCP] = Point3D{X: 0.60, Y: 0.70, Z: 0.0}
	lm.Points[MiddlePIP] = Point3D{X: 0.61, Y: 0.58, Z: 0.0}
	lm.Points[MiddleDIP] = Point3D{X: 0.62, Y: 0.48, Z: 0.0}
	lm.Points[MiddleTip] = Point3D{X: 0.62, Y: 0.38, Z: 0.0}

	lm.Points[RingMCP] = Point3D{X: 0.65, Y: 0.72, Z: 0.0}
	lm.Points[RingPIP] = Point3D{X: 0.66, Y: 0.61, Z: 0.0}
	lm.Points[RingDIP] = Point3D{X: 0.67, Y: 0.52, Z: 0.0}
	lm.Points[RingTip] = Point3D{X: 0.68, Y: 0.43, Z: 0.0}

	lm.Points[PinkyMCP] = Point3D{X: 0.70, Y: 0.75, Z: 0.0}
	lm.Points[PinkyPIP] = Point3D{X: 0.71, Y: 0.66, Z: 0.0}
	lm.Points[PinkyDIP] = Point3D{X: 0.72, Y: 0.59, Z: 0.0}
	lm.Points[PinkyTip] = Point3D{X: 0.73, Y: 0.52, Z: 0.0}

	return lm
}

// ClosedHandLandmarks returns a preset pinch with thumb and index tips nearly
// touching. Tip separation is about a third of the knuckle separation, well
// inside the closed band.
func ClosedHandLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: "Right",
		Score:      0.94,
	}

	lm.Points[Wrist] = Point3D{X: 0.50, Y: 0.85, Z: 0.0}

	lm.Points[ThumbCMC] = Point3D{X: 0.47, Y: 0.78, Z: 0.0}
	lm.Points[ThumbMCP] = Point3D{X: 0.45, Y: 0.70, Z: 0.0}
	lm.Points[ThumbIP] = Point3D{X: 0.47, Y: 0.62, Z: 0.0}
	lm.Points[ThumbTip] = Point3D{X: 0.49, Y: 0.55, Z: 0.0}

	lm.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.70, Z: 0.0}
	lm.Points[IndexPIP] = Point3D{X: 0.54, Y: 0.62, Z: 0.0}
	lm.Points[IndexDIP] = Point3D{X: 0.53, Y: 0.58, Z: 0.0}
	lm.Points[IndexTip] = Point3D{X: 0.52, Y: 0.56, Z: 0.0}

	// Remaining fingers curled toward the palm
	lm.Points[MiddleMCP] = Point3D{X: 0.60, Y: 0.70, Z: -0.02}
	lm.Points[MiddlePIP] = Point3D{X: 0.60, Y: 0.65, Z: -0.05}
	lm.Points[MiddleDIP] = Point3D{X: 0.58, Y: 0.68, Z: -0.04}
	lm.Points[MiddleTip] = Point3D{X: 0.56, Y: 0.71, Z: -0.02}

	lm.Points[RingMCP] = Point3D{X: 0.65, Y: 0.72, Z: -0.02}
	lm.Points[RingPIP] = Point3D{X: 0.65, Y: 0.67, Z: -0.05}
	lm.Points[RingDIP] = Point3D{X: 0.63, Y: 0.70, Z: -0.04}
	lm.Points[RingTip] = Point3D{X: 0.61, Y: 0.73, Z: -0.02}

	lm.Points[PinkyMCP] = Point3D{X: 0.70, Y: 0.75, Z: -0.02}
	lm.Points[PinkyPIP] = Point3D{X: 0.70, Y: 0.71, Z: -0.04}
	lm.Points[PinkyDIP] = Point3D{X: 0.68, Y: 0.73, Z: -0.03}
	lm.Points[PinkyTip] = Point3D{X: 0.66, Y: 0.76, Z: -0.02}

	return lm
}
