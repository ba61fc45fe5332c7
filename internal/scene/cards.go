package scene

import (
	"math"

	"github.com/RussGuo/Chrismas/internal/orbit"
)

// Card placement constants.
const (
	// cardBandLow and cardBandHigh bound the heights cards hang at,
	// as fractions of the tree height.
	cardBandLow  = 0.15
	cardBandHigh = 0.8

	// cardTurns is how many times the card spiral winds around the tree.
	cardTurns = 2.5

	// cardStandoff pushes cards slightly outside the foliage so they stay
	// readable.
	cardStandoff = 0.45
)

// CardAnchor is where a memory card hangs and which way it faces.
type CardAnchor struct {
	Position orbit.Vec3 `json:"position"`
	// Yaw is the outward-facing rotation around the vertical axis, in
	// radians.
	Yaw float64 `json:"yaw"`
}

// CardAnchors lays out n cards on a spiral winding up the tree. Anchors
// depend only on index and count, so adding a card re-flows the whole set
// deterministically.
func CardAnchors(n int) []CardAnchor {
	if n <= 0 {
		return nil
	}

	anchors := make([]CardAnchor, n)
	for i := 0; i < n; i++ {
		t := 0.5
		if n > 1 {
			t = float64(i) / float64(n-1)
		}

		y := (cardBandLow + t*(cardBandHigh-cardBandLow)) * TreeHeight
		radius := TreeBaseRadius*(1-y/TreeHeight) + cardStandoff
		angle := t * cardTurns * 2 * math.Pi

		anchors[i] = CardAnchor{
			Position: orbit.Vec3{
				X: radius * math.Cos(angle),
				Y: y,
				Z: radius * math.Sin(angle),
			},
			Yaw: angle,
		}
	}

	return anchors
}
