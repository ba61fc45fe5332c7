package scene

import (
	"math"

	"github.com/RussGuo/Chrismas/internal/gesture"
	"github.com/RussGuo/Chrismas/internal/orbit"
)

// Sway amplitudes and frequencies per mode.
const (
	formedSwayAmp  = 0.06
	chaosSwayAmp   = 0.35
	swayBaseFreq   = 0.6 // Hz
	swayFreqSpread = 0.5
)

// Sway returns the decorative offset for one particle at time t seconds.
// It is a pure function of time, the particle's fixed seed, and the mode:
// no state, nothing to accumulate, safe to evaluate anywhere.
func Sway(t float64, seed uint64, mode gesture.Mode) orbit.Vec3 {
	amp := formedSwayAmp
	if mode == gesture.ModeChaos {
		amp = chaosSwayAmp
	}

	px := hashToUnit(seed)
	py := hashToUnit(seed ^ 0x9e3779b97f4a7c15)
	pz := hashToUnit(seed ^ 0xc2b2ae3d27d4eb4f)

	freq := 2 * math.Pi * (swayBaseFreq + swayFreqSpread*px)

	return orbit.Vec3{
		X: amp * math.Sin(freq*t+2*math.Pi*px),
		Y: amp * 0.5 * math.Sin(freq*t*0.8+2*math.Pi*py),
		Z: amp * math.Sin(freq*t*1.1+2*math.Pi*pz),
	}
}

// hashToUnit maps a seed to [0,1) with a splitmix64 step.
func hashToUnit(seed uint64) float64 {
	seed += 0x9e3779b97f4a7c15
	seed = (seed ^ (seed >> 30)) * 0xbf58476d1ce4e5b9
	seed = (seed ^ (seed >> 27)) * 0x94d049bb133111eb
	seed ^= seed >> 31
	return float64(seed>>11) / float64(1<<53)
}
