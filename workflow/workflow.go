// Package workflow is the document edited on the canvas: nodes placed in
// world coordinates and the wires connecting their handles.
//
// A Workflow value is never modified in place. Every mutation returns a new
// Workflow, so a caller holding an older value keeps a consistent snapshot.
package workflow

import (
	"errors"

	"flowire/geom"
)

var (
	ErrNodeNotFound     = errors.New("node not found")
	ErrDuplicateNode    = errors.New("node id already in use")
	ErrHandleOutOfRange = errors.New("handle index out of range")
	ErrSameNode         = errors.New("wire endpoints are on the same node")
	ErrSameHandleType   = errors.New("wire endpoints have the same handle type")
	ErrDuplicateWire    = errors.New("an identical wire already exists")
	ErrWireNotFound     = errors.New("wire not found")
)

// HandleType tells which side of a node a handle sits on.
type HandleType int

const (
	Input HandleType = iota
	Output
)

func (h HandleType) String() string {
	switch h {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return "unknown"
	}
}

// Opposite returns the other handle type.
func (h HandleType) Opposite() HandleType {
	if h == Input {
		return Output
	}
	return Input
}

// Port describes one handle of a node.
type Port struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// NodeData is the descriptive payload of a node.
type NodeData struct {
	Title   string
	Inputs  []Port
	Outputs []Port
}

// Node is a fixed size box on the canvas.
type Node struct {
	ID       string `validate:"required"`
	Type     string
	Position geom.Point
	Data     NodeData
}

// Rect returns the world rectangle covered by the node.
func (n Node) Rect() geom.Rect {
	return geom.NodeRect(n.Position)
}

// HandleCount returns how many handles the node has on the given side.
// A node that declares no ports on a side still exposes one handle there.
func (n Node) HandleCount(side HandleType) int {
	var ports []Port
	if side == Input {
		ports = n.Data.Inputs
	} else {
		ports = n.Data.Outputs
	}
	if len(ports) == 0 {
		return 1
	}
	return len(ports)
}

// HasHandle reports whether index is a valid handle on the given side.
func (n Node) HasHandle(side HandleType, index int) bool {
	return index >= 0 && index < n.HandleCount(side)
}

// Wire connects an output handle of SourceNodeID to an input handle of
// TargetNodeID.
type Wire struct {
	ID           string `validate:"required"`
	SourceNodeID string `validate:"required"`
	TargetNodeID string `validate:"required,nefield=SourceNodeID"`
	SourceHandle int    `validate:"gte=0"`
	TargetHandle int    `validate:"gte=0"`
}

// SameEndpoints reports whether w and o join the same pair of handles.
func (w Wire) SameEndpoints(o Wire) bool {
	return w.SourceNodeID == o.SourceNodeID &&
		w.SourceHandle == o.SourceHandle &&
		w.TargetNodeID == o.TargetNodeID &&
		w.TargetHandle == o.TargetHandle
}

// HandleRef names one handle of one node.
type HandleRef struct {
	NodeID string
	Type   HandleType
	Index  int
}

// Workflow is the document: nodes and wires, both kept in insertion order.
type Workflow struct {
	nodes []Node
	wires []Wire
	index map[string]int
}

// New returns an empty workflow.
func New() Workflow {
	return Workflow{
		nodes: []Node{},
		wires: []Wire{},
		index: map[string]int{},
	}
}

// Len returns the number of nodes.
func (w Workflow) Len() int {
	return len(w.nodes)
}

// IsEmpty reports whether the workflow has neither nodes nor wires.
func (w Workflow) IsEmpty() bool {
	return len(w.nodes) == 0 && len(w.wires) == 0
}

// Node looks up a node by id.
func (w Workflow) Node(id string) (Node, bool) {
	i, ok := w.index[id]
	if !ok {
		return Node{}, false
	}
	return w.nodes[i], true
}

// Nodes returns a copy of the nodes in insertion order.
func (w Workflow) Nodes() []Node {
	out := make([]Node, len(w.nodes))
	copy(out, w.nodes)
	return out
}

// Wires returns a copy of the wires in insertion order.
func (w Workflow) Wires() []Wire {
	out := make([]Wire, len(w.wires))
	copy(out, w.wires)
	return out
}

// Wire looks up a wire by id.
func (w Workflow) Wire(id string) (Wire, bool) {
	for _, wire := range w.wires {
		if wire.ID == id {
			return wire, true
		}
	}
	return Wire{}, false
}

// WiresOf returns every wire touching the node.
func (w Workflow) WiresOf(nodeID string) []Wire {
	var out []Wire
	for _, wire := range w.wires {
		if wire.SourceNodeID == nodeID || wire.TargetNodeID == nodeID {
			out = append(out, wire)
		}
	}
	return out
}

// HasWire reports whether a wire with the same endpoints as candidate exists.
func (w Workflow) HasWire(candidate Wire) bool {
	for _, wire := range w.wires {
		if wire.SameEndpoints(candidate) {
			return true
		}
	}
	return false
}

// Bounds returns the world rectangle enclosing every node. ok is false for a
// workflow without nodes.
func (w Workflow) Bounds() (r geom.Rect, ok bool) {
	for i, n := range w.nodes {
		if i == 0 {
			r = n.Rect()
			continue
		}
		r = r.Union(n.Rect())
	}
	return r, len(w.nodes) > 0
}

func (w Workflow) clone() Workflow {
	out := Workflow{
		nodes: make([]Node, len(w.nodes)),
		wires: make([]Wire, len(w.wires)),
	}
	copy(out.nodes, w.nodes)
	copy(out.wires, w.wires)
	out.reindex()
	return out
}

func (w *Workflow) reindex() {
	w.index = make(map[string]int, len(w.nodes))
	for i, n := range w.nodes {
		w.index[n.ID] = i
	}
}
