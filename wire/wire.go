// Package wire computes where handles sit on a node and the curve drawn for a
// wire between two handles.
package wire

import (
	"fmt"
	"math"
	"strconv"

	"flowire/geom"
	"flowire/workflow"
)

const (
	// Inset pulls both curve endpoints back along the straight line so the
	// curve starts outside the handle circle.
	Inset = 10.0
	// HandleRadius is the radius of a handle, also used for hit testing.
	HandleRadius = 10.0
	// Tension is the share of the horizontal span each control point sits
	// away from its endpoint.
	Tension = 0.3
)

// HandleFraction returns the vertical position of handle index out of count,
// as a fraction of the node height. A single handle is centered; several
// handles are spread with equal margins and never sit on a corner.
func HandleFraction(index, count int) float64 {
	if count <= 1 {
		return 0.5
	}
	return float64(index+1) / float64(count+1)
}

// HandleAnchor returns the world position of a handle. Inputs sit on the
// left edge, outputs on the right edge.
func HandleAnchor(n workflow.Node, side workflow.HandleType, index int) geom.Point {
	r := n.Rect()
	x := r.Left()
	if side == workflow.Output {
		x = r.Right()
	}
	return geom.Pt(x, r.Top()+r.H*HandleFraction(index, n.HandleCount(side)))
}

// Curve is a cubic Bezier plus the rotation of the arrow drawn at its end.
type Curve struct {
	Start, C1, C2, End geom.Point
	// Angle is the eased arrow rotation in degrees.
	Angle float64
}

// Path builds the curve for a wire from source to target, both handle
// anchors in world coordinates.
func Path(source, target geom.Point) Curve {
	start, end := source, target
	v := target.Sub(source)
	if l := v.Len(); l > 0 {
		u := v.Div(l)
		start = source.Add(u.Mul(Inset))
		end = target.Sub(u.Mul(Inset))
	}
	dx := (end.X - start.X) * Tension
	return Curve{
		Start: start,
		C1:    geom.Pt(start.X+dx, start.Y),
		C2:    geom.Pt(end.X-dx, end.Y),
		End:   end,
		Angle: ArrowAngle(source, target),
	}
}

// RawAngle is the direction from source to target in degrees, in (-180, 180].
func RawAngle(source, target geom.Point) float64 {
	v := target.Sub(source)
	return math.Atan2(v.Y, v.X) * 180 / math.Pi
}

// ArrowAngle eases the raw direction so the arrow follows the curve tangent
// near the target instead of the chord. The factor applied to the raw angle
// grows from 0.3 at 0 degrees to 0.5 at 180 degrees.
func ArrowAngle(source, target geom.Point) float64 {
	raw := RawAngle(source, target)
	return raw * (0.3 + (math.Abs(raw)/180)*0.2)
}

// Point evaluates the curve at t in [0, 1].
func (c Curve) Point(t float64) geom.Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	d := 3 * u * t * t
	e := t * t * t
	return geom.Pt(
		a*c.Start.X+b*c.C1.X+d*c.C2.X+e*c.End.X,
		a*c.Start.Y+b*c.C1.Y+d*c.C2.Y+e*c.End.Y,
	)
}

// Sample returns n+1 evenly spaced points along the curve, endpoints
// included.
func (c Curve) Sample(n int) []geom.Point {
	if n < 1 {
		n = 1
	}
	pts := make([]geom.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		pts = append(pts, c.Point(float64(i)/float64(n)))
	}
	return pts
}

// SVG returns the curve as an SVG path "d" attribute.
func (c Curve) SVG() string {
	return fmt.Sprintf("M %s %s C %s %s, %s %s, %s %s",
		num(c.Start.X), num(c.Start.Y),
		num(c.C1.X), num(c.C1.Y),
		num(c.C2.X), num(c.C2.Y),
		num(c.End.X), num(c.End.Y))
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Endpoints returns the source and target anchors of a stored wire. ok is
// false when either node or handle no longer exists.
func Endpoints(w workflow.Workflow, wr workflow.Wire) (src, dst geom.Point, ok bool) {
	from, ok := w.Node(wr.SourceNodeID)
	if !ok || !from.HasHandle(workflow.Output, wr.SourceHandle) {
		return src, dst, false
	}
	to, ok := w.Node(wr.TargetNodeID)
	if !ok || !to.HasHandle(workflow.Input, wr.TargetHandle) {
		return src, dst, false
	}
	return HandleAnchor(from, workflow.Output, wr.SourceHandle),
		HandleAnchor(to, workflow.Input, wr.TargetHandle), true
}

// Rendered pairs a wire with its curve.
type Rendered struct {
	Wire  workflow.Wire
	Curve Curve
}

// All returns the curve of every wire that can be drawn. Wires whose node or
// handle is missing are skipped.
func All(w workflow.Workflow) []Rendered {
	var out []Rendered
	for _, wr := range w.Wires() {
		src, dst, ok := Endpoints(w, wr)
		if !ok {
			continue
		}
		out = append(out, Rendered{Wire: wr, Curve: Path(src, dst)})
	}
	return out
}

// Draft returns the curve of a wire still being drawn from a handle of the
// given type to cursor. The curve always runs from the output side to the
// input side.
func Draft(anchor geom.Point, side workflow.HandleType, cursor geom.Point) Curve {
	if side == workflow.Output {
		return Path(anchor, cursor)
	}
	return Path(cursor, anchor)
}

// HitHandle returns the handle within radius of p. Later nodes are on top
// and win over earlier ones.
func HitHandle(w workflow.Workflow, p geom.Point, radius float64) (workflow.HandleRef, bool) {
	nodes := w.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		for _, side := range []workflow.HandleType{workflow.Input, workflow.Output} {
			for idx := 0; idx < n.HandleCount(side); idx++ {
				if HandleAnchor(n, side, idx).Dist(p) <= radius {
					return workflow.HandleRef{NodeID: n.ID, Type: side, Index: idx}, true
				}
			}
		}
	}
	return workflow.HandleRef{}, false
}
