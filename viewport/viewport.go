// Package viewport maps between screen pixels and world coordinates and owns
// the pan/zoom state of the canvas.
package viewport

import (
	"math"

	"flowire/geom"
)

const (
	MinScale = 0.1
	MaxScale = 3.0

	// ZoomStep is how much the zoom controls change the scale per press.
	ZoomStep = 0.2
	// SnapRange is the distance from 1.0 within which stepped zoom lands on
	// exactly 1.0.
	SnapRange = 0.1
)

// Transform maps a world point p to the screen point p*Scale + Translate.
type Transform struct {
	TranslateX float64
	TranslateY float64
	Scale      float64
}

// Identity is the transform that leaves coordinates unchanged.
func Identity() Transform {
	return Transform{Scale: 1}
}

func (t Transform) translate() geom.Point {
	return geom.Pt(t.TranslateX, t.TranslateY)
}

// ScreenToWorld converts a screen point to world coordinates.
func (t Transform) ScreenToWorld(p geom.Point) geom.Point {
	return p.Sub(t.translate()).Div(t.Scale)
}

// WorldToScreen converts a world point to screen coordinates.
func (t Transform) WorldToScreen(p geom.Point) geom.Point {
	return p.Mul(t.Scale).Add(t.translate())
}

// ClampScale limits s to [MinScale, MaxScale].
func ClampScale(s float64) float64 {
	return geom.Clamp(s, MinScale, MaxScale)
}

// Controller holds the live transform of one canvas.
type Controller struct {
	t      Transform
	canvas geom.Size
}

// NewController returns a controller at the identity transform for a canvas
// of the given pixel size.
func NewController(canvas geom.Size) *Controller {
	return &Controller{t: Identity(), canvas: canvas}
}

func (c *Controller) Transform() Transform {
	return c.t
}

// SetTransform replaces the transform, clamping its scale.
func (c *Controller) SetTransform(t Transform) {
	t.Scale = ClampScale(t.Scale)
	c.t = t
}

func (c *Controller) Scale() float64 {
	return c.t.Scale
}

func (c *Controller) CanvasSize() geom.Size {
	return c.canvas
}

func (c *Controller) SetCanvasSize(s geom.Size) {
	c.canvas = s
}

// ScreenToWorld converts a screen point using the current transform.
func (c *Controller) ScreenToWorld(p geom.Point) geom.Point {
	return c.t.ScreenToWorld(p)
}

// WorldToScreen converts a world point using the current transform.
func (c *Controller) WorldToScreen(p geom.Point) geom.Point {
	return c.t.WorldToScreen(p)
}

// PanBy shifts the view by a screen-space delta.
func (c *Controller) PanBy(dx, dy float64) {
	c.t.TranslateX += dx
	c.t.TranslateY += dy
}

// ZoomAt sets the scale while keeping the world point under anchor fixed on
// screen.
func (c *Controller) ZoomAt(anchor geom.Point, newScale float64) {
	c.t = ZoomAround(c.t, anchor, newScale)
}

// ZoomBy multiplies the scale by factor around anchor. Continuous zoom never
// snaps.
func (c *Controller) ZoomBy(anchor geom.Point, factor float64) {
	c.ZoomAt(anchor, c.t.Scale*factor)
}

// ZoomAround returns t rescaled to newScale (clamped) so that the world point
// currently under anchor stays under it.
func ZoomAround(t Transform, anchor geom.Point, newScale float64) Transform {
	newScale = ClampScale(newScale)
	ratio := newScale / t.Scale
	tr := anchor.Sub(anchor.Sub(t.translate()).Mul(ratio))
	return Transform{TranslateX: tr.X, TranslateY: tr.Y, Scale: newScale}
}

// ZoomIn steps the scale up around the canvas center.
func (c *Controller) ZoomIn() {
	c.step(ZoomStep)
}

// ZoomOut steps the scale down around the canvas center.
func (c *Controller) ZoomOut() {
	c.step(-ZoomStep)
}

func (c *Controller) step(delta float64) {
	c.ZoomAt(c.canvas.Center(), SteppedScale(c.t.Scale, delta))
}

// SteppedScale returns the scale the zoom controls move to from s. A result
// within SnapRange of 1.0 becomes exactly 1.0.
func SteppedScale(s, delta float64) float64 {
	next := ClampScale(s + delta)
	if math.Abs(next-1) < SnapRange {
		return 1
	}
	return next
}

// ResetToContent centers the node whose top-left corner has the smallest
// x+y at scale 1. The first such node in positions wins ties. With no nodes
// the identity transform is restored.
func (c *Controller) ResetToContent(positions []geom.Point) {
	if len(positions) == 0 {
		c.t = Identity()
		return
	}
	best := positions[0]
	for _, p := range positions[1:] {
		if p.X+p.Y < best.X+best.Y {
			best = p
		}
	}
	center := geom.NodeRect(best).Center()
	tr := c.canvas.Center().Sub(center)
	c.t = Transform{TranslateX: tr.X, TranslateY: tr.Y, Scale: 1}
}

// FitToContent scales and centers the view so that bounds fits inside the
// canvas with padding pixels on every side.
func (c *Controller) FitToContent(bounds geom.Rect, padding float64) {
	if bounds.W <= 0 || bounds.H <= 0 {
		return
	}
	availW := c.canvas.W - 2*padding
	availH := c.canvas.H - 2*padding
	if availW <= 0 || availH <= 0 {
		return
	}
	s := ClampScale(math.Min(availW/bounds.W, availH/bounds.H))
	tr := c.canvas.Center().Sub(bounds.Center().Mul(s))
	c.t = Transform{TranslateX: tr.X, TranslateY: tr.Y, Scale: s}
}

// VisibleWorldRect returns the part of the world currently on screen.
func (c *Controller) VisibleWorldRect() geom.Rect {
	tl := c.t.ScreenToWorld(geom.Pt(0, 0))
	br := c.t.ScreenToWorld(geom.Pt(c.canvas.W, c.canvas.H))
	return geom.Rect{X: tl.X, Y: tl.Y, W: br.X - tl.X, H: br.Y - tl.Y}
}
