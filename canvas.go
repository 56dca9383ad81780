package main

import (
	"math"

	"flowire/align"
	"flowire/engine"
	"flowire/geom"
	"flowire/viewport"
	"flowire/wire"
	"flowire/workflow"
)

// Canvas is the cell grid one frame is drawn onto.
type Canvas struct {
	cells [][]rune
	view  viewport.Transform
}

func NewCanvas(width, height int, view viewport.Transform) *Canvas {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	cells := make([][]rune, height)
	for y := range cells {
		cells[y] = make([]rune, width)
		for x := range cells[y] {
			cells[y][x] = ' '
		}
	}
	return &Canvas{cells: cells, view: view}
}

// Render draws the engine's current frame: guides first, then wires, nodes
// and finally the wire being drawn.
func Render(e *engine.Engine, width, height int) []string {
	c := NewCanvas(width, height, e.Viewport().Transform())

	for _, g := range e.Guides() {
		c.drawGuide(g)
	}
	for _, r := range e.Wires() {
		c.drawCurve(r.Curve, '.')
	}
	dragged, _ := e.DraggedNode()
	for _, n := range e.Workflow().Nodes() {
		c.drawNode(n, n.ID == dragged)
	}
	if curve, ok := e.DraftCurve(); ok {
		c.drawCurve(curve, ':')
	}
	return c.Lines()
}

func (c *Canvas) Lines() []string {
	lines := make([]string, len(c.cells))
	for y, row := range c.cells {
		lines[y] = string(row)
	}
	return lines
}

func (c *Canvas) isValidPos(x, y int) bool {
	return y >= 0 && y < len(c.cells) && x >= 0 && x < len(c.cells[y])
}

func (c *Canvas) set(x, y int, r rune) {
	if c.isValidPos(x, y) {
		c.cells[y][x] = r
	}
}

func (c *Canvas) cellAt(world geom.Point) (int, int) {
	return screenToCell(c.view.WorldToScreen(world))
}

func (c *Canvas) drawNode(n workflow.Node, isDragged bool) {
	var corner, horizontal, vertical rune
	if isDragged {
		corner, horizontal, vertical = '#', '#', '#'
	} else {
		corner, horizontal, vertical = '+', '-', '|'
	}

	r := n.Rect()
	tl := c.view.WorldToScreen(geom.Pt(r.Left(), r.Top()))
	br := c.view.WorldToScreen(geom.Pt(r.Right(), r.Bottom()))
	x0, y0 := screenToCell(tl)
	x1 := int(math.Ceil(br.X/cellWidth)) - 1
	y1 := int(math.Ceil(br.Y/cellHeight)) - 1
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			switch {
			case (y == y0 || y == y1) && (x == x0 || x == x1):
				c.set(x, y, corner)
			case y == y0 || y == y1:
				c.set(x, y, horizontal)
			case x == x0 || x == x1:
				c.set(x, y, vertical)
			default:
				c.set(x, y, ' ')
			}
		}
	}

	if y1-y0 >= 2 {
		maxWidth := x1 - x0 - 1
		for i, ch := range []rune(nodeLabel(n)) {
			if i >= maxWidth {
				break
			}
			c.set(x0+1+i, y0+1, ch)
		}
	}

	for _, side := range []workflow.HandleType{workflow.Input, workflow.Output} {
		for idx := 0; idx < n.HandleCount(side); idx++ {
			x, y := c.cellAt(wire.HandleAnchor(n, side, idx))
			// Keep handles on the border the node was drawn with.
			x = int(geom.Clamp(float64(x), float64(x0), float64(x1)))
			c.set(x, y, 'o')
		}
	}
}

func nodeLabel(n workflow.Node) string {
	switch {
	case n.Data.Title != "":
		return n.Data.Title
	case n.Type != "":
		return n.Type
	default:
		return n.ID
	}
}

// drawCurve plots a wire by sampling it densely enough that neighbouring
// samples land in adjacent cells, then marks its end with an arrow.
func (c *Canvas) drawCurve(curve wire.Curve, mark rune) {
	start := c.view.WorldToScreen(curve.Start)
	end := c.view.WorldToScreen(curve.End)
	steps := int(start.Dist(end)/cellWidth)*2 + 16

	for _, p := range curve.Sample(steps) {
		x, y := c.cellAt(p)
		c.set(x, y, mark)
	}
	x, y := c.cellAt(curve.End)
	c.set(x, y, arrowRune(curve.Angle))
}

func arrowRune(angle float64) rune {
	a := math.Mod(angle, 360)
	if a > 180 {
		a -= 360
	} else if a <= -180 {
		a += 360
	}
	switch {
	case a >= -45 && a <= 45:
		return '>'
	case a > 45 && a <= 135:
		return 'v'
	case a < -45 && a >= -135:
		return '^'
	default:
		return '<'
	}
}

func (c *Canvas) drawGuide(g align.Guide) {
	if g.Axis == align.Vertical {
		x, y0 := c.cellAt(geom.Pt(g.Coord, g.Start))
		_, y1 := c.cellAt(geom.Pt(g.Coord, g.End))
		for y := y0; y <= y1; y++ {
			c.set(x, y, '┊')
		}
		return
	}
	x0, y := c.cellAt(geom.Pt(g.Start, g.Coord))
	x1, _ := c.cellAt(geom.Pt(g.End, g.Coord))
	for x := x0; x <= x1; x++ {
		c.set(x, y, '┈')
	}
}
