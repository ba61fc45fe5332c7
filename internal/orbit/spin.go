package orbit

import "github.com/RussGuo/Chrismas/internal/gesture"

// SpinConfig tunes the slow whole-scene rotation. The scene root spins while
// the tree is dispersed and eases back to a standstill once it re-forms.
type SpinConfig struct {
	// ChaosRate is the target angular speed (rad/s) while dispersed.
	ChaosRate float64

	// EaseRate is the exponential approach rate (1/s) of the actual speed
	// toward its target.
	EaseRate float64
}

// DefaultSpinConfig returns the scene-spin tuning used by the installation.
func DefaultSpinConfig() SpinConfig {
	return SpinConfig{
		ChaosRate: 0.25,
		EaseRate:  0.8,
	}
}

// SpinSmoother accumulates the scene-root rotation angle. It rotates a
// different object than the camera Smoother and never reads camera state,
// so the two cannot fight.
type SpinSmoother struct {
	config SpinConfig
	angle  float64
	speed  float64
}

// NewSpinSmoother creates a scene-spin smoother at rest.
func NewSpinSmoother(config SpinConfig) *SpinSmoother {
	def := DefaultSpinConfig()
	if config.ChaosRate <= 0 {
		config.ChaosRate = def.ChaosRate
	}
	if config.EaseRate <= 0 {
		config.EaseRate = def.EaseRate
	}
	return &SpinSmoother{config: config}
}

// Advance eases the spin speed toward its mode target and accumulates the
// angle. Returns the new scene-root angle in radians.
func (s *SpinSmoother) Advance(mode gesture.Mode, dt float64) float64 {
	if dt < 0 {
		dt = 0
	}

	target := 0.0
	if mode == gesture.ModeChaos {
		target = s.config.ChaosRate
	}

	step := dt * s.config.EaseRate
	if step > 1 {
		step = 1
	}
	s.speed += (target - s.speed) * step
	s.angle = wrapAngle(s.angle + s.speed*dt)

	return s.angle
}

// Angle returns the current scene-root angle in radians.
func (s *SpinSmoother) Angle() float64 {
	return s.angle
}

// Speed returns the current angular speed in rad/s.
func (s *SpinSmoother) Speed() float64 {
	return s.speed
}
