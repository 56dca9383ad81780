package wire

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowire/geom"
	"flowire/workflow"
)

const eps = 1e-9

func TestHandleFraction(t *testing.T) {
	assert.Equal(t, 0.5, HandleFraction(0, 1))
	assert.Equal(t, 0.25, HandleFraction(0, 3))
	assert.Equal(t, 0.5, HandleFraction(1, 3))
	assert.Equal(t, 0.75, HandleFraction(2, 3))
	assert.InDelta(t, 1.0/3, HandleFraction(0, 2), eps)
}

func TestHandleAnchor(t *testing.T) {
	n := workflow.Node{
		ID:       "n",
		Position: geom.Pt(100, 200),
		Data: workflow.NodeData{
			Outputs: []workflow.Port{{Name: "a"}, {Name: "b"}, {Name: "c"}},
		},
	}

	assert.Equal(t, geom.Pt(100, 240), HandleAnchor(n, workflow.Input, 0))
	assert.Equal(t, geom.Pt(260, 220), HandleAnchor(n, workflow.Output, 0))
	assert.Equal(t, geom.Pt(260, 240), HandleAnchor(n, workflow.Output, 1))
	assert.Equal(t, geom.Pt(260, 260), HandleAnchor(n, workflow.Output, 2))
}

func TestPathHorizontal(t *testing.T) {
	c := Path(geom.Pt(0, 0), geom.Pt(100, 0))

	assert.Equal(t, geom.Pt(10, 0), c.Start)
	assert.Equal(t, geom.Pt(90, 0), c.End)
	assert.InDelta(t, 34, c.C1.X, eps)
	assert.InDelta(t, 66, c.C2.X, eps)
	assert.Equal(t, 0.0, c.Angle)
}

func TestPathControlPointsKeepEndpointY(t *testing.T) {
	c := Path(geom.Pt(0, 0), geom.Pt(300, 400))

	// Unit vector (0.6, 0.8), inset 10.
	assert.InDelta(t, 6, c.Start.X, eps)
	assert.InDelta(t, 8, c.Start.Y, eps)
	assert.InDelta(t, 294, c.End.X, eps)
	assert.InDelta(t, 392, c.End.Y, eps)

	span := (294.0 - 6.0) * Tension
	assert.InDelta(t, 6+span, c.C1.X, eps)
	assert.Equal(t, c.Start.Y, c.C1.Y)
	assert.InDelta(t, 294-span, c.C2.X, eps)
	assert.Equal(t, c.End.Y, c.C2.Y)
}

func TestPathDegenerate(t *testing.T) {
	c := Path(geom.Pt(5, 5), geom.Pt(5, 5))

	assert.Equal(t, geom.Pt(5, 5), c.Start)
	assert.Equal(t, geom.Pt(5, 5), c.End)
	assert.False(t, math.IsNaN(c.Angle))
}

func TestArrowAngleEasing(t *testing.T) {
	tests := []struct {
		name   string
		target geom.Point
		want   float64
	}{
		{"right", geom.Pt(10, 0), 0},
		{"down", geom.Pt(0, 10), 90 * 0.4},
		{"up", geom.Pt(0, -10), -90 * 0.4},
		{"left", geom.Pt(-10, 0), 180 * 0.5},
		{"diagonal", geom.Pt(10, 10), 45 * 0.35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ArrowAngle(geom.Pt(0, 0), tt.target), 1e-6)
		})
	}
}

func TestArrowAngleUsesUninsetVector(t *testing.T) {
	src, dst := geom.Pt(0, 0), geom.Pt(30, 40)
	c := Path(src, dst)
	assert.InDelta(t, ArrowAngle(src, dst), c.Angle, eps)
}

func TestCurvePoint(t *testing.T) {
	c := Path(geom.Pt(0, 0), geom.Pt(200, 100))

	assert.Equal(t, c.Start, c.Point(0))
	assert.InDelta(t, c.End.X, c.Point(1).X, eps)
	assert.InDelta(t, c.End.Y, c.Point(1).Y, eps)

	pts := c.Sample(4)
	require.Len(t, pts, 5)
	assert.Equal(t, c.Start, pts[0])
}

func TestSVG(t *testing.T) {
	c := Curve{Start: geom.Pt(10, 0), C1: geom.Pt(34, 0), C2: geom.Pt(66, 0.5), End: geom.Pt(90, 0)}
	assert.Equal(t, "M 10 0 C 34 0, 66 0.5, 90 0", c.SVG())
}

func TestDraftAlwaysRunsOutputToInput(t *testing.T) {
	anchor := geom.Pt(0, 0)
	cursor := geom.Pt(200, 50)

	fromOutput := Draft(anchor, workflow.Output, cursor)
	fromInput := Draft(anchor, workflow.Input, cursor)

	assert.Equal(t, Path(anchor, cursor), fromOutput)
	assert.Equal(t, Path(cursor, anchor), fromInput)
}

func buildWorkflow(t *testing.T) workflow.Workflow {
	t.Helper()
	w := workflow.New()
	var err error
	w, err = w.AddNode(workflow.Node{ID: "a", Position: geom.Pt(0, 0)})
	require.NoError(t, err)
	w, err = w.AddNode(workflow.Node{ID: "b", Position: geom.Pt(400, 100)})
	require.NoError(t, err)
	w, _, err = w.Connect(
		workflow.HandleRef{NodeID: "a", Type: workflow.Output},
		workflow.HandleRef{NodeID: "b", Type: workflow.Input},
	)
	require.NoError(t, err)
	return w
}

func TestAll(t *testing.T) {
	w := buildWorkflow(t)

	rendered := All(w)
	require.Len(t, rendered, 1)
	assert.Equal(t, Path(geom.Pt(160, 40), geom.Pt(400, 140)), rendered[0].Curve)

	// A snapshot that lost its target node draws nothing for the wire.
	stale, _ := workflow.New().AddNode(workflow.Node{ID: "a"})
	_, _, ok := Endpoints(stale, rendered[0].Wire)
	assert.False(t, ok)
}

func TestHitHandle(t *testing.T) {
	w := buildWorkflow(t)

	ref, ok := HitHandle(w, geom.Pt(165, 38), HandleRadius)
	require.True(t, ok)
	assert.Equal(t, workflow.HandleRef{NodeID: "a", Type: workflow.Output, Index: 0}, ref)

	ref, ok = HitHandle(w, geom.Pt(398, 141), HandleRadius)
	require.True(t, ok)
	assert.Equal(t, workflow.HandleRef{NodeID: "b", Type: workflow.Input, Index: 0}, ref)

	_, ok = HitHandle(w, geom.Pt(80, 40), HandleRadius)
	assert.False(t, ok)
}
