// Package connect is the state machine behind drawing a wire: grabbing a
// handle, dragging, and releasing on another handle or on empty canvas.
//
// Transitions are pure: each takes a State and returns the next one. The
// machine never touches the workflow; a successful release hands back the
// next workflow in its Outcome and the caller decides what to do with it.
package connect

import (
	"flowire/geom"
	"flowire/workflow"
)

// Phase is the top-level state.
type Phase int

const (
	Idle Phase = iota
	Dragging
)

func (p Phase) String() string {
	if p == Dragging {
		return "dragging"
	}
	return "idle"
}

// Draft is the wire being drawn.
type Draft struct {
	Source workflow.HandleRef
	// Anchor is the world position of the source handle when the drag began.
	Anchor geom.Point
	// Cursor is the current end of the wire in world coordinates.
	Cursor   geom.Point
	HasMoved bool
	// AwaitingNode is set once the draft was dropped on empty canvas. The
	// draft stays alive until Resolve or Cancel.
	AwaitingNode bool
}

// State is the machine state. Draft is meaningful only while Dragging.
type State struct {
	Phase Phase
	Draft Draft
}

// Active reports whether a draft exists.
func (s State) Active() bool {
	return s.Phase == Dragging
}

// Visible reports whether the temporary wire should be drawn.
func (s State) Visible() bool {
	return s.Phase == Dragging && s.Draft.HasMoved
}

// TargetKind is what lies under the pointer on release.
type TargetKind int

const (
	OnCanvas TargetKind = iota
	OnHandle
	OnNode
)

// Target describes the release point.
type Target struct {
	Kind   TargetKind
	Handle workflow.HandleRef
	NodeID string
	World  geom.Point
}

// OutcomeKind classifies what a transition produced.
type OutcomeKind int

const (
	Nothing OutcomeKind = iota
	Connected
	Duplicate
	Aborted
	NodeRequested
)

func (k OutcomeKind) String() string {
	switch k {
	case Connected:
		return "connected"
	case Duplicate:
		return "duplicate"
	case Aborted:
		return "aborted"
	case NodeRequested:
		return "node-requested"
	default:
		return "nothing"
	}
}

// NodeRequest asks the host to create a node at Position and wire it to the
// draft source.
type NodeRequest struct {
	SourceNodeID string
	SourceType   workflow.HandleType
	SourceIndex  int
	Position     geom.Point
}

// Outcome is the side result of a transition. Next is set only when Kind
// is Connected.
type Outcome struct {
	Kind    OutcomeKind
	Wire    workflow.Wire
	Next    workflow.Workflow
	Request NodeRequest
}

// Begin starts a draft from the handle src located at anchor. It does
// nothing unless the machine is idle.
func (s State) Begin(src workflow.HandleRef, anchor geom.Point) State {
	if s.Phase != Idle {
		return s
	}
	return State{
		Phase: Dragging,
		Draft: Draft{Source: src, Anchor: anchor, Cursor: anchor},
	}
}

// Move updates the cursor. The first move to a new position marks the draft
// as moved.
func (s State) Move(cursor geom.Point) State {
	if s.Phase != Dragging || s.Draft.AwaitingNode {
		return s
	}
	if cursor != s.Draft.Cursor {
		s.Draft.HasMoved = true
	}
	s.Draft.Cursor = cursor
	return s
}

// Release ends the drag over target.
//
// Releasing on a handle of the opposite type on another node connects the
// two handles unless an identical wire exists. Releasing on empty canvas
// after moving keeps the draft alive and requests a node. Everything else
// aborts.
func (s State) Release(target Target, w workflow.Workflow) (State, Outcome) {
	if s.Phase != Dragging || s.Draft.AwaitingNode {
		return s, Outcome{}
	}
	d := s.Draft

	switch target.Kind {
	case OnHandle:
		h := target.Handle
		if h.Type == d.Source.Type || h.NodeID == d.Source.NodeID {
			return State{}, Outcome{Kind: Aborted}
		}
		return connect(w, d.Source, h)

	case OnCanvas:
		if !d.HasMoved {
			return State{}, Outcome{Kind: Aborted}
		}
		d.Cursor = target.World
		d.AwaitingNode = true
		return State{Phase: Dragging, Draft: d}, Outcome{
			Kind: NodeRequested,
			Request: NodeRequest{
				SourceNodeID: d.Source.NodeID,
				SourceType:   d.Source.Type,
				SourceIndex:  d.Source.Index,
				Position:     target.World,
			},
		}
	}
	return State{}, Outcome{Kind: Aborted}
}

// Resolve finishes a draft waiting for a node by wiring its source to the
// first handle of the opposite type on nodeID.
func (s State) Resolve(w workflow.Workflow, nodeID string) (State, Outcome) {
	if s.Phase != Dragging || !s.Draft.AwaitingNode {
		return s, Outcome{}
	}
	src := s.Draft.Source
	return connect(w, src, workflow.HandleRef{NodeID: nodeID, Type: src.Type.Opposite()})
}

// Cancel discards any draft.
func (s State) Cancel() State {
	return State{}
}

func connect(w workflow.Workflow, a, b workflow.HandleRef) (State, Outcome) {
	candidate, err := workflow.Orient(a, b)
	if err != nil {
		return State{}, Outcome{Kind: Aborted}
	}
	if w.HasWire(candidate) {
		return State{}, Outcome{Kind: Duplicate}
	}
	next, err := w.AddWire(candidate)
	if err != nil {
		return State{}, Outcome{Kind: Aborted}
	}
	wires := next.Wires()
	return State{}, Outcome{Kind: Connected, Wire: wires[len(wires)-1], Next: next}
}
