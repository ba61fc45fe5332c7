package scene

import (
	"math"
	"math/rand"

	"github.com/RussGuo/Chrismas/internal/gesture"
	"github.com/RussGuo/Chrismas/internal/orbit"
)

// Tree geometry constants, in scene units.
const (
	// DefaultParticleCount is the number of foliage particles.
	DefaultParticleCount = 1200

	// TreeHeight is the height of the assembled cone.
	TreeHeight = 7.0

	// TreeBaseRadius is the cone radius at the ground.
	TreeBaseRadius = 2.6

	// ScatterShellMin and ScatterShellMax bound the dispersed shell the
	// particles drift out to.
	ScatterShellMin = 4.0
	ScatterShellMax = 9.0
)

// goldenAngle spreads spiral points evenly around the trunk.
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// Layout holds the precomputed per-particle target positions for both
// display modes. The same seed always yields the same layout, so daemon
// restarts do not reshuffle the tree.
type Layout struct {
	Formed []orbit.Vec3 `json:"formed"`
	Chaos  []orbit.Vec3 `json:"chaos"`
}

// NewLayout computes target positions for count particles from a seed.
func NewLayout(count int, seed int64) *Layout {
	if count <= 0 {
		count = DefaultParticleCount
	}
	rng := rand.New(rand.NewSource(seed))

	l := &Layout{
		Formed: make([]orbit.Vec3, count),
		Chaos:  make([]orbit.Vec3, count),
	}

	for i := 0; i < count; i++ {
		l.Formed[i] = formedTarget(i, count, rng)
		l.Chaos[i] = chaosTarget(rng)
	}

	return l
}

// formedTarget places particle i on a conical spiral: a golden-angle sweep
// up the tree with the radius tapering toward the tip, plus a little radial
// jitter so the foliage doesn't look machined.
func formedTarget(i, count int, rng *rand.Rand) orbit.Vec3 {
	t := float64(i) / float64(count)
	y := t * TreeHeight

	radius := TreeBaseRadius * (1 - t)
	radius += (rng.Float64() - 0.5) * 0.35 * (radius + 0.2)
	if radius < 0 {
		radius = 0
	}

	angle := float64(i) * goldenAngle

	return orbit.Vec3{
		X: radius * math.Cos(angle),
		Y: y,
		Z: radius * math.Sin(angle),
	}
}

// chaosTarget places a particle uniformly in the scatter shell around the
// tree's midpoint.
func chaosTarget(rng *rand.Rand) orbit.Vec3 {
	// Uniform direction via normalized gaussian triple.
	x := rng.NormFloat64()
	y := rng.NormFloat64()
	z := rng.NormFloat64()
	n := math.Sqrt(x*x + y*y + z*z)
	if n < 1e-12 {
		x, y, z, n = 1, 0, 0, 1
	}

	// Uniform radius in the shell volume.
	minCubed := ScatterShellMin * ScatterShellMin * ScatterShellMin
	maxCubed := ScatterShellMax * ScatterShellMax * ScatterShellMax
	r := math.Cbrt(minCubed + rng.Float64()*(maxCubed-minCubed))

	return orbit.Vec3{
		X: r * x / n,
		Y: TreeHeight/2 + r*y/n,
		Z: r * z / n,
	}
}

// Target returns the position particle i heads for in the given mode.
// The renderer interpolates between the two sets on mode changes; which set
// is current is a plain lookup on the mode.
func (l *Layout) Target(i int, mode gesture.Mode) orbit.Vec3 {
	if i < 0 || i >= len(l.Formed) {
		return orbit.Vec3{}
	}
	if mode == gesture.ModeChaos {
		return l.Chaos[i]
	}
	return l.Formed[i]
}

// Count returns the number of particles in the layout.
func (l *Layout) Count() int {
	return len(l.Formed)
}
