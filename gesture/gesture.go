// Package gesture decides what raw pointer, wheel and touch input means:
// which gesture a press starts, how strongly a wheel event zooms, and how two
// fingers map to a scale.
package gesture

import (
	"fmt"
	"math"
	"strings"

	"flowire/geom"
	"flowire/viewport"
)

// Kind is the gesture currently driving the canvas.
type Kind int

const (
	None Kind = iota
	Pan
	Pinch
	NodeDrag
	Connect
)

func (k Kind) String() string {
	switch k {
	case Pan:
		return "pan"
	case Pinch:
		return "pinch"
	case NodeDrag:
		return "node-drag"
	case Connect:
		return "connect"
	default:
		return "none"
	}
}

// Hit is what a pointer press landed on.
type Hit int

const (
	HitCanvas Hit = iota
	HitNode
	HitHandle
)

// Button is a mouse button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Route returns the gesture a press with button on hit starts. Only the
// primary button starts anything.
func Route(hit Hit, button Button) Kind {
	if button != ButtonPrimary {
		return None
	}
	switch hit {
	case HitHandle:
		return Connect
	case HitNode:
		return NodeDrag
	default:
		return Pan
	}
}

// Arbiter lets exactly one gesture be active. A pinch may take over a pan;
// every other gesture has to wait for the active one to end.
type Arbiter struct {
	active Kind
}

func (a *Arbiter) Active() Kind {
	return a.active
}

// Begin makes k the active gesture if allowed and reports whether it did.
func (a *Arbiter) Begin(k Kind) bool {
	if k == None {
		return false
	}
	if a.active == None || (k == Pinch && a.active == Pan) {
		a.active = k
		return true
	}
	return false
}

// End clears k if it is the active gesture.
func (a *Arbiter) End(k Kind) {
	if a.active == k {
		a.active = None
	}
}

// Reset clears whatever gesture is active.
func (a *Arbiter) Reset() {
	a.active = None
}

// Platform tells the wheel classifier whether wheel events may come from a
// trackpad.
type Platform int

const (
	PlatformMouse Platform = iota
	PlatformTrackpad
)

func (p Platform) String() string {
	if p == PlatformTrackpad {
		return "trackpad"
	}
	return "mouse"
}

// ParsePlatform reads a config value. "auto" picks trackpad on darwin.
func ParsePlatform(s, goos string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		if goos == "darwin" {
			return PlatformTrackpad, nil
		}
		return PlatformMouse, nil
	case "trackpad", "touchpad":
		return PlatformTrackpad, nil
	case "mouse":
		return PlatformMouse, nil
	}
	return PlatformMouse, fmt.Errorf("unknown input platform %q", s)
}

// WheelKind classifies a wheel event.
type WheelKind int

const (
	WheelPlain WheelKind = iota
	WheelPinch
	WheelTrackpadScroll
	WheelModifier
)

func (k WheelKind) String() string {
	switch k {
	case WheelPinch:
		return "pinch"
	case WheelTrackpadScroll:
		return "trackpad-scroll"
	case WheelModifier:
		return "modifier-wheel"
	default:
		return "wheel"
	}
}

// Zoom sensitivity per wheel kind: the scale changes by
// exp(-deltaY * sensitivity).
const (
	PinchSensitivity          = 0.01
	TrackpadScrollSensitivity = 0.004
	ModifierSensitivity       = 0.002
	WheelSensitivity          = 0.0015

	// LargeDelta separates the small deltas of a trackpad from the line
	// sized steps of a wheel.
	LargeDelta = 50.0
)

// Wheel is a wheel or trackpad scroll event.
type Wheel struct {
	Screen geom.Point
	DeltaX float64
	DeltaY float64
	Ctrl   bool
	Meta   bool
}

func (w Wheel) modified() bool {
	return w.Ctrl || w.Meta
}

// ClassifyWheel names the kind of w on platform p.
//
// On a trackpad platform a held modifier with a small delta is a pinch (the
// system reports pinches as ctrl+wheel), a held modifier with a large delta
// is an explicit modifier+wheel, and a small fractional delta without a
// modifier is a two finger scroll. Everything else is a plain wheel.
func ClassifyWheel(p Platform, w Wheel) WheelKind {
	small := math.Abs(w.DeltaY) < LargeDelta
	if p == PlatformTrackpad {
		switch {
		case w.modified() && small:
			return WheelPinch
		case w.modified():
			return WheelModifier
		case small && w.DeltaY != math.Trunc(w.DeltaY):
			return WheelTrackpadScroll
		}
		return WheelPlain
	}
	if w.modified() {
		return WheelModifier
	}
	return WheelPlain
}

// Sensitivity returns the zoom sensitivity of k.
func Sensitivity(k WheelKind) float64 {
	switch k {
	case WheelPinch:
		return PinchSensitivity
	case WheelTrackpadScroll:
		return TrackpadScrollSensitivity
	case WheelModifier:
		return ModifierSensitivity
	default:
		return WheelSensitivity
	}
}

// ZoomFactor returns the multiplicative scale change for w. Scrolling up
// (negative delta) zooms in.
func ZoomFactor(p Platform, w Wheel) float64 {
	return math.Exp(-w.DeltaY * Sensitivity(ClassifyWheel(p, w)))
}

// PinchTracker follows a two finger pinch.
type PinchTracker struct {
	initialDist  float64
	initialScale float64
	anchor       geom.Point
}

// StartPinch records the finger positions and the scale at the start of a
// pinch.
func StartPinch(a, b geom.Point, scale float64) PinchTracker {
	return PinchTracker{
		initialDist:  a.Dist(b),
		initialScale: scale,
		anchor:       a.Mid(b),
	}
}

// Anchor is the midpoint of the fingers when the pinch began. It stays fixed
// on screen for the whole pinch.
func (p PinchTracker) Anchor() geom.Point {
	return p.anchor
}

// Scale returns the clamped scale for the current finger positions.
func (p PinchTracker) Scale(a, b geom.Point) float64 {
	if p.initialDist == 0 {
		return viewport.ClampScale(p.initialScale)
	}
	return viewport.ClampScale(p.initialScale * a.Dist(b) / p.initialDist)
}
