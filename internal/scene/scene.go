// Package scene computes the tree's visual layout: per-particle target
// positions for both display modes, memory-card anchors, and the decorative
// sway applied on top. Everything here is deterministic math; the renderer
// in the browser only interpolates what this package hands it.
package scene

import (
	"github.com/RussGuo/Chrismas/internal/gesture"
	"github.com/RussGuo/Chrismas/internal/orbit"
)

// Frame is one tick of authoritative scene state pushed to renderers.
type Frame struct {
	Timestamp    int64                `json:"timestamp"`
	Mode         gesture.Mode         `json:"mode"`
	Tracking     bool                 `json:"tracking"`
	Degraded     bool                 `json:"degraded"`
	ControlPoint gesture.ControlPoint `json:"control_point"`
	Camera       orbit.Pose           `json:"camera"`
	SpinAngle    float64              `json:"spin_angle"`
}
