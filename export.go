package main

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"flowire/engine"
	"flowire/geom"
	"flowire/wire"
	"flowire/workflow"
)

var errNothingToExport = errors.New("nothing to export")

var (
	wireColor   = color.RGBA{0x55, 0x55, 0x55, 0xff}
	nodeFill    = color.RGBA{0xf7, 0xf7, 0xf7, 0xff}
	nodeStroke  = color.RGBA{0x33, 0x33, 0x33, 0xff}
	handleColor = color.RGBA{0x3b, 0x82, 0xf6, 0xff}
)

// ExportPNG draws the whole document at scale pixels per world unit.
func ExportPNG(w workflow.Workflow, filename string, scale float64) error {
	bounds, ok := w.Bounds()
	if !ok {
		return errNothingToExport
	}
	if scale <= 0 {
		scale = 1
	}

	origin := geom.Pt(bounds.Left()-exportPad, bounds.Top()-exportPad)
	imageWidth := int((bounds.W + 2*exportPad) * scale)
	imageHeight := int((bounds.H + 2*exportPad) * scale)
	px := func(p geom.Point) (float64, float64) {
		q := p.Sub(origin).Mul(scale)
		return q.X, q.Y
	}

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(color.White)
	dc.Clear()

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(ttfFont, &truetype.Options{
		Size:    12 * scale,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	// Wires go first so nodes cover their ends.
	for _, r := range wire.All(w) {
		drawCurvePNG(dc, r.Curve, px, scale)
	}
	for _, n := range w.Nodes() {
		drawNodePNG(dc, n, px, scale)
	}

	if err := dc.SavePNG(filename); err != nil {
		return fmt.Errorf("save png: %w", err)
	}
	return nil
}

func drawCurvePNG(dc *gg.Context, c wire.Curve, px func(geom.Point) (float64, float64), scale float64) {
	dc.SetColor(wireColor)
	dc.SetLineWidth(2 * scale)
	dc.MoveTo(px(c.Start))
	x1, y1 := px(c.C1)
	x2, y2 := px(c.C2)
	x3, y3 := px(c.End)
	dc.CubicTo(x1, y1, x2, y2, x3, y3)
	dc.Stroke()

	// Arrow head pointing along +x, rotated by the eased angle.
	arrowSize := 8 * scale
	dc.Push()
	dc.Translate(x3, y3)
	dc.Rotate(gg.Radians(c.Angle))
	dc.MoveTo(0, 0)
	dc.LineTo(-arrowSize, -arrowSize/2)
	dc.LineTo(-arrowSize, arrowSize/2)
	dc.ClosePath()
	dc.Fill()
	dc.Pop()
}

func drawNodePNG(dc *gg.Context, n workflow.Node, px func(geom.Point) (float64, float64), scale float64) {
	r := n.Rect()
	x, y := px(geom.Pt(r.Left(), r.Top()))
	width, height := r.W*scale, r.H*scale

	dc.DrawRoundedRectangle(x, y, width, height, 6*scale)
	dc.SetColor(nodeFill)
	dc.FillPreserve()
	dc.SetColor(nodeStroke)
	dc.SetLineWidth(1.5 * scale)
	dc.Stroke()

	dc.DrawStringAnchored(nodeLabel(n), x+width/2, y+14*scale, 0.5, 0.5)

	for _, side := range []workflow.HandleType{workflow.Input, workflow.Output} {
		ports := n.Data.Inputs
		ax := 0.0
		offset := 9 * scale
		if side == workflow.Output {
			ports = n.Data.Outputs
			ax = 1
			offset = -offset
		}
		for idx := 0; idx < n.HandleCount(side); idx++ {
			hx, hy := px(wire.HandleAnchor(n, side, idx))
			dc.SetColor(handleColor)
			dc.DrawCircle(hx, hy, 5*scale)
			dc.Fill()
			if idx < len(ports) && ports[idx].Name != "" {
				dc.SetColor(nodeStroke)
				dc.DrawStringAnchored(ports[idx].Name, hx+offset, hy, ax, 0.5)
			}
		}
	}
}

// ExportJSON writes the document in its interchange format.
func ExportJSON(w workflow.Workflow, filename string) error {
	data, err := workflow.Marshal(w)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// ExportTXT writes the document as the editor would draw it on a terminal of
// width by height cells, fitted to the content.
func ExportTXT(w workflow.Workflow, filename string, width, height int) error {
	if w.IsEmpty() {
		return errNothingToExport
	}
	e := engine.New(nil, w, engine.Options{
		Canvas: geom.Size{W: float64(width) * cellWidth, H: float64(height) * cellHeight},
	})
	e.FitView(fitPadding)

	var b strings.Builder
	for _, line := range Render(e, width, height) {
		b.WriteString(strings.TrimRight(line, " "))
		b.WriteByte('\n')
	}
	if err := os.WriteFile(filename, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write txt: %w", err)
	}
	return nil
}
