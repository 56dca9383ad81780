// Package align snaps a dragged node to the edges and centers of the other
// nodes and produces the guide lines shown while it is snapped.
package align

import (
	"math"

	"flowire/geom"
	"flowire/workflow"
)

const (
	// Threshold is the distance in world units below which two keylines
	// count as aligned.
	Threshold = 8.0
	// GuidePadding extends each guide past the nodes it joins.
	GuidePadding = 5.0
)

// Axis is the orientation of a guide line.
type Axis int

const (
	Vertical Axis = iota
	Horizontal
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Guide is a line drawn at Coord across [Start, End] on the other axis.
// A vertical guide sits at x = Coord and runs from y = Start to y = End.
type Guide struct {
	Axis  Axis
	Coord float64
	Start float64
	End   float64
	Nodes []string
}

// Result is the snapped position of the dragged node and its guides.
type Result struct {
	Position geom.Point
	Guides   []Guide
}

// keyline is one alignment line of a rectangle: its offset from the
// rectangle origin along the tested axis.
type keyline func(r geom.Rect) float64

var (
	verticalKeylines = []keyline{
		geom.Rect.CenterX,
		geom.Rect.Left,
		geom.Rect.Right,
	}
	horizontalKeylines = []keyline{
		geom.Rect.CenterY,
		geom.Rect.Top,
		geom.Rect.Bottom,
	}
)

type match struct {
	axis  Axis
	coord float64
	other geom.Rect
	id    string
}

// Snap aligns the node draggedID, proposed at pos, against every other node.
//
// Each other node is tested in order for center, left and right on the
// vertical axis and center, top and bottom on the horizontal axis. Every
// match yields a guide. When several matches land on the same axis, the one
// evaluated last decides the snapped coordinate.
func Snap(draggedID string, pos geom.Point, nodes []workflow.Node) Result {
	proposed := geom.NodeRect(pos)
	snapped := pos
	var matches []match

	for _, n := range nodes {
		if n.ID == draggedID {
			continue
		}
		other := n.Rect()
		for _, k := range verticalKeylines {
			want := k(other)
			if math.Abs(k(proposed)-want) < Threshold {
				snapped.X = pos.X + want - k(proposed)
				matches = append(matches, match{axis: Vertical, coord: want, other: other, id: n.ID})
			}
		}
		for _, k := range horizontalKeylines {
			want := k(other)
			if math.Abs(k(proposed)-want) < Threshold {
				snapped.Y = pos.Y + want - k(proposed)
				matches = append(matches, match{axis: Horizontal, coord: want, other: other, id: n.ID})
			}
		}
	}

	result := Result{Position: snapped}
	if len(matches) == 0 {
		return result
	}

	final := geom.NodeRect(snapped)
	result.Guides = make([]Guide, 0, len(matches))
	for _, m := range matches {
		span := final.Union(m.other)
		g := Guide{Axis: m.axis, Coord: m.coord, Nodes: []string{draggedID, m.id}}
		if m.axis == Vertical {
			g.Start, g.End = span.Top()-GuidePadding, span.Bottom()+GuidePadding
		} else {
			g.Start, g.End = span.Left()-GuidePadding, span.Right()+GuidePadding
		}
		result.Guides = append(result.Guides, g)
	}
	return result
}
