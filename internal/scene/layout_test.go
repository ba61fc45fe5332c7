package scene

import (
	"math"
	"testing"

	"github.com/RussGuo/Chrismas/internal/gesture"
	"github.com/RussGuo/Chrismas/internal/orbit"
)

func TestNewLayout_Deterministic(t *testing.T) {
	a := NewLayout(200, 42)
	b := NewLayout(200, 42)

	for i := 0; i < a.Count(); i++ {
		if a.Formed[i] != b.Formed[i] || a.Chaos[i] != b.Chaos[i] {
			t.Fatalf("layout differs at particle %d with identical seed", i)
		}
	}

	c := NewLayout(200, 43)
	same := 0
	for i := 0; i < a.Count(); i++ {
		if a.Chaos[i] == c.Chaos[i] {
			same++
		}
	}
	if same == a.Count() {
		t.Error("different seeds produced identical scatter positions")
	}
}

func TestNewLayout_FormedTargetsInsideCone(t *testing.T) {
	l := NewLayout(500, 7)

	for i, p := range l.Formed {
		if p.Y < 0 || p.Y > TreeHeight {
			t.Fatalf("particle %d height %v outside [0, %v]", i, p.Y, TreeHeight)
		}
		// Radial jitter allows a little slack beyond the ideal cone.
		maxR := TreeBaseRadius*(1-p.Y/TreeHeight)*1.25 + 0.3
		if r := math.Hypot(p.X, p.Z); r > maxR {
			t.Fatalf("particle %d radius %v exceeds cone bound %v at height %v", i, r, maxR, p.Y)
		}
	}
}

func TestNewLayout_ChaosTargetsInShell(t *testing.T) {
	l := NewLayout(500, 7)

	for i, p := range l.Chaos {
		dx, dy, dz := p.X, p.Y-TreeHeight/2, p.Z
		r := math.Sqrt(dx*dx + dy*dy + dz*dz)
		if r < ScatterShellMin-1e-9 || r > ScatterShellMax+1e-9 {
			t.Fatalf("particle %d scatter radius %v outside [%v, %v]", i, r, ScatterShellMin, ScatterShellMax)
		}
	}
}

func TestLayout_TargetLookup(t *testing.T) {
	l := NewLayout(10, 1)

	if got := l.Target(3, gesture.ModeFormed); got != l.Formed[3] {
		t.Errorf("formed target = %+v, want %+v", got, l.Formed[3])
	}
	if got := l.Target(3, gesture.ModeChaos); got != l.Chaos[3] {
		t.Errorf("chaos target = %+v, want %+v", got, l.Chaos[3])
	}
	if got := l.Target(-1, gesture.ModeFormed); got != (orbit.Vec3{}) {
		t.Errorf("Target(-1) = %+v, want zero vector", got)
	}
	if got := l.Target(10, gesture.ModeChaos); got != (orbit.Vec3{}) {
		t.Errorf("Target(10) = %+v, want zero vector", got)
	}
}

func TestCardAnchors(t *testing.T) {
	if got := CardAnchors(0); got != nil {
		t.Errorf("CardAnchors(0) = %v, want nil", got)
	}

	anchors := CardAnchors(12)
	if len(anchors) != 12 {
		t.Fatalf("len = %d, want 12", len(anchors))
	}

	low := cardBandLow * TreeHeight
	high := cardBandHigh * TreeHeight
	for i, a := range anchors {
		if a.Position.Y < low-1e-9 || a.Position.Y > high+1e-9 {
			t.Errorf("card %d height %v outside [%v, %v]", i, a.Position.Y, low, high)
		}
		// Cards sit outside the foliage at their height.
		foliage := TreeBaseRadius * (1 - a.Position.Y/TreeHeight)
		if r := math.Hypot(a.Position.X, a.Position.Z); r <= foliage {
			t.Errorf("card %d radius %v inside foliage %v", i, r, foliage)
		}
	}

	// Heights ascend with index.
	for i := 1; i < len(anchors); i++ {
		if anchors[i].Position.Y <= anchors[i-1].Position.Y {
			t.Errorf("card heights not ascending at %d: %v <= %v", i, anchors[i].Position.Y, anchors[i-1].Position.Y)
		}
	}

	// Re-flow is deterministic.
	again := CardAnchors(12)
	for i := range anchors {
		if anchors[i] != again[i] {
			t.Fatalf("anchor %d differs between identical calls", i)
		}
	}
}

func TestSway_PureAndBounded(t *testing.T) {
	for _, mode := range []gesture.Mode{gesture.ModeFormed, gesture.ModeChaos} {
		amp := formedSwayAmp
		if mode == gesture.ModeChaos {
			amp = chaosSwayAmp
		}

		for ti := 0; ti < 100; ti++ {
			tm := float64(ti) * 0.173
			a := Sway(tm, 99, mode)
			b := Sway(tm, 99, mode)
			if a != b {
				t.Fatalf("Sway is not pure: %+v != %+v", a, b)
			}
			if math.Abs(a.X) > amp || math.Abs(a.Y) > amp || math.Abs(a.Z) > amp {
				t.Fatalf("sway %+v exceeds amplitude %v", a, amp)
			}
		}
	}

	// Different seeds desynchronize the motion.
	if Sway(1.0, 1, gesture.ModeFormed) == Sway(1.0, 2, gesture.ModeFormed) {
		t.Error("different seeds produced identical sway")
	}
}
