// Package orbit converts the gesture control point into a smoothed camera
// pose, with an autonomous slow orbit whenever no hand is steering.
package orbit

import (
	"math"

	"github.com/RussGuo/Chrismas/internal/gesture"
)

// Vec3 is a point in scene coordinates.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Pose is the camera state produced once per tick.
type Pose struct {
	Azimuth  float64 `json:"azimuth"`
	Polar    float64 `json:"polar"`
	Radius   float64 `json:"radius"`
	Position Vec3    `json:"position"`
	Target   Vec3    `json:"target"`
}

// Config holds the orbit tuning. Values are fixed at build time;
// DefaultConfig is what the installation ships with.
type Config struct {
	// Alpha is the control-point smoothing factor applied once per tick.
	// It is deliberately not scaled by the tick duration.
	Alpha float64

	// LerpSpeed is the exponential approach rate (1/s) of the camera
	// angles toward their targets.
	LerpSpeed float64

	// PanRange is the azimuth span (radians) covered as the smoothed
	// control-point x sweeps 0 to 1.
	PanRange float64

	// MinPolar and MaxPolar bound the polar angle. MinPolar must be
	// strictly less than MaxPolar.
	MinPolar float64
	MaxPolar float64

	// PolarOffset and PolarScale map control-point y onto the polar band:
	// (y - PolarOffset) / PolarScale, clamped to [0,1].
	PolarOffset float64
	PolarScale  float64

	// TargetHeight is the y of the look-at point, roughly mid-tree.
	TargetHeight float64

	// FormedSpinRate and ChaosSpinRate are the autonomous azimuth rates
	// (rad/s). The dispersed tree wanders faster than the calm one.
	FormedSpinRate float64
	ChaosSpinRate  float64

	// PolarRelaxRate is the approach rate (1/s) of the polar angle toward
	// the band midpoint while orbiting autonomously.
	PolarRelaxRate float64
}

// DefaultConfig returns the orbit tuning used by the installation.
func DefaultConfig() Config {
	return Config{
		Alpha:          0.18,
		LerpSpeed:      4.0,
		PanRange:       2 * math.Pi,
		MinPolar:       0.9,
		MaxPolar:       1.45,
		PolarOffset:    0.15,
		PolarScale:     0.7,
		TargetHeight:   3.5,
		FormedSpinRate: 0.15,
		ChaosSpinRate:  0.45,
		PolarRelaxRate: 1.2,
	}
}

// Smoother owns the camera's spherical angles and advances them once per
// tick. Like the classifier it has a single owner and is not safe for
// concurrent use.
type Smoother struct {
	config  Config
	sx, sy  float64 // smoothed control point
	azimuth float64
	polar   float64
}

// NewSmoother creates a smoother with the camera centered on the tree and
// the smoothed control point seeded to neutral.
func NewSmoother(config Config) *Smoother {
	def := DefaultConfig()
	if config.Alpha <= 0 || config.Alpha >= 1 {
		config.Alpha = def.Alpha
	}
	if config.LerpSpeed <= 0 {
		config.LerpSpeed = def.LerpSpeed
	}
	if config.MinPolar >= config.MaxPolar {
		config.MinPolar = def.MinPolar
		config.MaxPolar = def.MaxPolar
	}
	if config.PanRange <= 0 {
		config.PanRange = def.PanRange
	}
	if config.PolarScale <= 0 {
		config.PolarScale = def.PolarScale
	}
	if config.PolarRelaxRate <= 0 {
		config.PolarRelaxRate = def.PolarRelaxRate
	}
	if config.FormedSpinRate <= 0 {
		config.FormedSpinRate = def.FormedSpinRate
	}
	if config.ChaosSpinRate <= 0 {
		config.ChaosSpinRate = def.ChaosSpinRate
	}
	if config.TargetHeight <= 0 {
		config.TargetHeight = def.TargetHeight
	}

	return &Smoother{
		config:  config,
		sx:      0.5,
		sy:      0.5,
		azimuth: 0,
		polar:   (config.MinPolar + config.MaxPolar) / 2,
	}
}

// Advance moves the camera one tick. The hand-driven branch runs only when
// the control point is live this tick and the tree is dispersed; otherwise
// the camera orbits on its own. Radius is the caller's current camera
// distance and passes through untouched (zoom is a separate input).
func (s *Smoother) Advance(cp gesture.ControlPoint, mode gesture.Mode, dt, radius float64) Pose {
	if dt < 0 {
		dt = 0
	}

	if cp.Detected && mode == gesture.ModeChaos {
		s.advanceHand(cp, dt)
	} else {
		s.advanceAutonomous(mode, dt)
	}

	return s.pose(radius)
}

func (s *Smoother) advanceHand(cp gesture.ControlPoint, dt float64) {
	cfg := s.config

	// Per-tick EMA of the raw control point.
	s.sx += cfg.Alpha * (cp.X - s.sx)
	s.sy += cfg.Alpha * (cp.Y - s.sy)

	targetAzimuth := (s.sx - 0.5) * cfg.PanRange

	ty := clamp01((s.sy - cfg.PolarOffset) / cfg.PolarScale)
	targetPolar := cfg.MinPolar + ty*(cfg.MaxPolar-cfg.MinPolar)

	// Shortest angular path toward the target; never around the long way.
	diff := shortestDiff(s.azimuth, targetAzimuth)

	step := dt * cfg.LerpSpeed
	if step > 1 {
		step = 1
	}

	s.azimuth = wrapAngle(s.azimuth + diff*step)
	s.polar += (targetPolar - s.polar) * step
}

func (s *Smoother) advanceAutonomous(mode gesture.Mode, dt float64) {
	cfg := s.config

	rate := cfg.FormedSpinRate
	if mode == gesture.ModeChaos {
		rate = cfg.ChaosSpinRate
	}
	s.azimuth = wrapAngle(s.azimuth + rate*dt)

	step := dt * cfg.PolarRelaxRate
	if step > 1 {
		step = 1
	}
	mid := (cfg.MinPolar + cfg.MaxPolar) / 2
	s.polar += (mid - s.polar) * step

	// Re-seed so the next hand takeover starts from neutral instead of a
	// stale point.
	s.sx, s.sy = 0.5, 0.5
}

func (s *Smoother) pose(radius float64) Pose {
	cfg := s.config
	sinPolar := math.Sin(s.polar)

	return Pose{
		Azimuth: s.azimuth,
		Polar:   s.polar,
		Radius:  radius,
		Position: Vec3{
			X: radius * sinPolar * math.Sin(s.azimuth),
			Y: cfg.TargetHeight + radius*math.Cos(s.polar),
			Z: radius * sinPolar * math.Cos(s.azimuth),
		},
		Target: Vec3{Y: cfg.TargetHeight},
	}
}

// Azimuth returns the current camera azimuth in radians.
func (s *Smoother) Azimuth() float64 {
	return s.azimuth
}

// Polar returns the current camera polar angle in radians.
func (s *Smoother) Polar() float64 {
	return s.polar
}

// shortestDiff returns the signed angular distance from one angle to
// another, wrapped to (-pi, pi].
func shortestDiff(from, to float64) float64 {
	return wrapAngle(to - from)
}

// wrapAngle normalizes an angle to (-pi, pi].
func wrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
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
