package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"flowire/geom"
)

const eps = 1e-9

func assertPoint(t *testing.T, want, got geom.Point) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps, "x")
	assert.InDelta(t, want.Y, got.Y, eps, "y")
}

func TestScreenWorldInverse(t *testing.T) {
	tr := Transform{TranslateX: 37, TranslateY: -12, Scale: 1.7}
	p := geom.Pt(412.5, -88)

	assertPoint(t, p, tr.WorldToScreen(tr.ScreenToWorld(p)))
	assertPoint(t, p, tr.ScreenToWorld(tr.WorldToScreen(p)))
	assertPoint(t, geom.Pt(10*1.7+37, 20*1.7-12), tr.WorldToScreen(geom.Pt(10, 20)))
}

func TestPanBy(t *testing.T) {
	c := NewController(geom.Size{W: 800, H: 600})
	c.PanBy(15, -5)
	c.PanBy(5, 5)

	assert.Equal(t, Transform{TranslateX: 20, TranslateY: 0, Scale: 1}, c.Transform())
}

func TestZoomAtKeepsAnchorFixed(t *testing.T) {
	c := NewController(geom.Size{W: 800, H: 600})
	c.PanBy(40, 70)
	anchor := geom.Pt(300, 200)
	before := c.ScreenToWorld(anchor)

	c.ZoomAt(anchor, 2.5)

	assert.InDelta(t, 2.5, c.Scale(), eps)
	assertPoint(t, before, c.ScreenToWorld(anchor))
}

func TestZoomAtClamps(t *testing.T) {
	c := NewController(geom.Size{W: 800, H: 600})
	anchor := geom.Pt(123, 456)
	before := c.ScreenToWorld(anchor)

	c.ZoomAt(anchor, 50)
	assert.Equal(t, MaxScale, c.Scale())
	assertPoint(t, before, c.ScreenToWorld(anchor))

	c.ZoomAt(anchor, 0.001)
	assert.Equal(t, MinScale, c.Scale())
	assertPoint(t, before, c.ScreenToWorld(anchor))
}

func TestZoomByNeverSnaps(t *testing.T) {
	c := NewController(geom.Size{W: 800, H: 600})
	c.ZoomBy(geom.Pt(0, 0), 1.05)

	assert.InDelta(t, 1.05, c.Scale(), eps)
}

func TestSteppedZoom(t *testing.T) {
	tests := []struct {
		name  string
		from  float64
		delta float64
		want  float64
	}{
		{"in from 1.0", 1.0, ZoomStep, 1.2},
		{"out from 1.05 stays", 1.05, -ZoomStep, 0.85},
		{"out from 1.08 stays", 1.08, -ZoomStep, 0.88},
		{"out from 1.15 snaps", 1.15, -ZoomStep, 1.0},
		{"in from 0.85 snaps", 0.85, ZoomStep, 1.0},
		{"in at max clamps", 2.9, ZoomStep, MaxScale},
		{"out at min clamps", 0.2, -ZoomStep, MinScale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SteppedScale(tt.from, tt.delta), eps)
		})
	}
}

func TestZoomControlsAnchorOnCanvasCenter(t *testing.T) {
	c := NewController(geom.Size{W: 800, H: 600})
	center := geom.Pt(400, 300)
	before := c.ScreenToWorld(center)

	c.ZoomIn()
	assert.InDelta(t, 1.2, c.Scale(), eps)
	assertPoint(t, before, c.ScreenToWorld(center))

	c.ZoomOut()
	assert.Equal(t, 1.0, c.Scale())
	assertPoint(t, before, c.ScreenToWorld(center))
}

func TestResetToContent(t *testing.T) {
	c := NewController(geom.Size{W: 800, H: 600})
	c.ZoomAt(geom.Pt(10, 10), 2.2)

	c.ResetToContent([]geom.Point{
		geom.Pt(500, 500),
		geom.Pt(100, 40), // x+y = 140
		geom.Pt(40, 100), // tie, later in order
	})

	assert.Equal(t, 1.0, c.Scale())
	// Center of the node at (100,40) is (180,80).
	assertPoint(t, geom.Pt(400, 300), c.WorldToScreen(geom.Pt(180, 80)))
}

func TestResetToContentWithoutNodes(t *testing.T) {
	c := NewController(geom.Size{W: 800, H: 600})
	c.PanBy(10, 10)
	c.ResetToContent(nil)

	assert.Equal(t, Identity(), c.Transform())
}

func TestFitToContent(t *testing.T) {
	c := NewController(geom.Size{W: 800, H: 600})
	bounds := geom.Rect{X: 0, Y: 0, W: 1520, H: 280}

	c.FitToContent(bounds, 20)

	assert.InDelta(t, 0.5, c.Scale(), eps)
	assertPoint(t, geom.Pt(400, 300), c.WorldToScreen(bounds.Center()))
}

func TestVisibleWorldRect(t *testing.T) {
	c := NewController(geom.Size{W: 800, H: 600})
	c.SetTransform(Transform{TranslateX: -100, TranslateY: 50, Scale: 2})

	r := c.VisibleWorldRect()
	assert.InDelta(t, 50, r.X, eps)
	assert.InDelta(t, -25, r.Y, eps)
	assert.InDelta(t, 400, r.W, eps)
	assert.InDelta(t, 300, r.H, eps)
}
