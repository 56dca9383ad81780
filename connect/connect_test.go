package connect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowire/geom"
	"flowire/workflow"
)

var (
	aOut = workflow.HandleRef{NodeID: "a", Type: workflow.Output}
	aIn  = workflow.HandleRef{NodeID: "a", Type: workflow.Input}
	bIn  = workflow.HandleRef{NodeID: "b", Type: workflow.Input}
	bOut = workflow.HandleRef{NodeID: "b", Type: workflow.Output}
)

func twoNodes(t *testing.T) workflow.Workflow {
	t.Helper()
	w := workflow.New()
	var err error
	w, err = w.AddNode(workflow.Node{ID: "a", Position: geom.Pt(0, 0)})
	require.NoError(t, err)
	w, err = w.AddNode(workflow.Node{ID: "b", Position: geom.Pt(400, 0)})
	require.NoError(t, err)
	return w
}

func dragged(src workflow.HandleRef) State {
	return State{}.Begin(src, geom.Pt(160, 40)).Move(geom.Pt(250, 60))
}

func TestBegin(t *testing.T) {
	s := State{}.Begin(aOut, geom.Pt(160, 40))

	assert.Equal(t, Dragging, s.Phase)
	assert.Equal(t, geom.Pt(160, 40), s.Draft.Cursor)
	assert.False(t, s.Draft.HasMoved)
	assert.False(t, s.Visible())

	again := s.Begin(bIn, geom.Pt(400, 40))
	assert.Equal(t, s, again, "a second draft must not replace the first")
}

func TestMoveMarksMoved(t *testing.T) {
	s := State{}.Begin(aOut, geom.Pt(160, 40))

	s = s.Move(geom.Pt(160, 40))
	assert.False(t, s.Draft.HasMoved)

	s = s.Move(geom.Pt(170, 45))
	assert.True(t, s.Draft.HasMoved)
	assert.True(t, s.Visible())
	assert.Equal(t, geom.Pt(170, 45), s.Draft.Cursor)
}

func TestMoveWhileIdleIsNoop(t *testing.T) {
	assert.Equal(t, State{}, State{}.Move(geom.Pt(1, 1)))
}

func TestReleaseOnOppositeHandleConnects(t *testing.T) {
	w := twoNodes(t)

	s, out := dragged(aOut).Release(Target{Kind: OnHandle, Handle: bIn}, w)

	assert.Equal(t, Idle, s.Phase)
	require.Equal(t, Connected, out.Kind)
	assert.Equal(t, "a", out.Wire.SourceNodeID)
	assert.Equal(t, "b", out.Wire.TargetNodeID)
	assert.Len(t, out.Next.Wires(), 1)
	assert.Empty(t, w.Wires(), "input workflow is untouched")
}

func TestReleaseFromInputIsReoriented(t *testing.T) {
	w := twoNodes(t)

	_, out := dragged(bIn).Release(Target{Kind: OnHandle, Handle: aOut}, w)

	require.Equal(t, Connected, out.Kind)
	assert.Equal(t, "a", out.Wire.SourceNodeID)
	assert.Equal(t, "b", out.Wire.TargetNodeID)
}

func TestReleaseDuplicateIsSilent(t *testing.T) {
	w := twoNodes(t)
	_, out := dragged(aOut).Release(Target{Kind: OnHandle, Handle: bIn}, w)
	require.Equal(t, Connected, out.Kind)
	w = out.Next

	s, out := dragged(aOut).Release(Target{Kind: OnHandle, Handle: bIn}, w)
	assert.Equal(t, Idle, s.Phase)
	assert.Equal(t, Duplicate, out.Kind)
	assert.Len(t, w.Wires(), 1)
}

func TestReleaseAborts(t *testing.T) {
	w := twoNodes(t)

	tests := []struct {
		name   string
		state  State
		target Target
	}{
		{"same type", dragged(aOut), Target{Kind: OnHandle, Handle: bOut}},
		{"same node", dragged(aOut), Target{Kind: OnHandle, Handle: aIn}},
		{"node body", dragged(aOut), Target{Kind: OnNode, NodeID: "b"}},
		{"click on canvas", State{}.Begin(aOut, geom.Pt(160, 40)), Target{Kind: OnCanvas, World: geom.Pt(160, 40)}},
		{"click on handle", State{}.Begin(aOut, geom.Pt(160, 40)), Target{Kind: OnHandle, Handle: aOut}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, out := tt.state.Release(tt.target, w)
			assert.Equal(t, State{}, s)
			assert.Equal(t, Aborted, out.Kind)
		})
	}
}

func TestReleaseOnCanvasDefersToHost(t *testing.T) {
	w := twoNodes(t)
	drop := geom.Pt(520, 300)

	s, out := dragged(aOut).Release(Target{Kind: OnCanvas, World: drop}, w)

	require.Equal(t, NodeRequested, out.Kind)
	assert.Equal(t, NodeRequest{SourceNodeID: "a", SourceType: workflow.Output, Position: drop}, out.Request)
	assert.Equal(t, Dragging, s.Phase)
	assert.True(t, s.Draft.AwaitingNode)
	assert.True(t, s.Visible(), "the temporary wire stays on screen")
	assert.Equal(t, drop, s.Draft.Cursor)

	// While waiting, the pointer no longer drives the draft.
	assert.Equal(t, s, s.Move(geom.Pt(0, 0)))
	held, out := s.Release(Target{Kind: OnHandle, Handle: bIn}, w)
	assert.Equal(t, s, held)
	assert.Equal(t, Nothing, out.Kind)
}

func TestResolveWiresNewNode(t *testing.T) {
	w := twoNodes(t)
	s, _ := dragged(aOut).Release(Target{Kind: OnCanvas, World: geom.Pt(520, 300)}, w)

	w, err := w.AddNode(workflow.Node{ID: "c", Position: geom.Pt(520, 300)})
	require.NoError(t, err)

	s, out := s.Resolve(w, "c")
	assert.Equal(t, Idle, s.Phase)
	require.Equal(t, Connected, out.Kind)
	assert.Equal(t, "a", out.Wire.SourceNodeID)
	assert.Equal(t, "c", out.Wire.TargetNodeID)
}

func TestResolveFromInputDraft(t *testing.T) {
	w := twoNodes(t)
	s, _ := dragged(bIn).Release(Target{Kind: OnCanvas, World: geom.Pt(-300, 0)}, w)

	w, err := w.AddNode(workflow.Node{ID: "c", Position: geom.Pt(-300, 0)})
	require.NoError(t, err)

	_, out := s.Resolve(w, "c")
	require.Equal(t, Connected, out.Kind)
	assert.Equal(t, "c", out.Wire.SourceNodeID)
	assert.Equal(t, "b", out.Wire.TargetNodeID)
}

func TestResolveWithoutPendingDraftIsNoop(t *testing.T) {
	w := twoNodes(t)
	s := dragged(aOut)

	next, out := s.Resolve(w, "b")
	assert.Equal(t, s, next)
	assert.Equal(t, Nothing, out.Kind)
}

func TestResolveMissingNodeAborts(t *testing.T) {
	w := twoNodes(t)
	s, _ := dragged(aOut).Release(Target{Kind: OnCanvas, World: geom.Pt(520, 300)}, w)

	s, out := s.Resolve(w, "nope")
	assert.Equal(t, State{}, s)
	assert.Equal(t, Aborted, out.Kind)
}

func TestCancel(t *testing.T) {
	w := twoNodes(t)
	s, _ := dragged(aOut).Release(Target{Kind: OnCanvas, World: geom.Pt(520, 300)}, w)

	assert.Equal(t, State{}, s.Cancel())
	assert.Equal(t, State{}, dragged(aOut).Cancel())
}
