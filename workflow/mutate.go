package workflow

import (
	"fmt"

	"github.com/google/uuid"

	"flowire/geom"
)

// AddNode returns a workflow with n appended.
func (w Workflow) AddNode(n Node) (Workflow, error) {
	if err := validate.Struct(n); err != nil {
		return w, fmt.Errorf("add node: %w", err)
	}
	if _, exists := w.index[n.ID]; exists {
		return w, fmt.Errorf("add node %q: %w", n.ID, ErrDuplicateNode)
	}
	n.Data = normalizeData(n.Data)
	out := w.clone()
	out.nodes = append(out.nodes, n)
	out.index[n.ID] = len(out.nodes) - 1
	return out, nil
}

// MoveNode returns a workflow with the node placed at pos.
func (w Workflow) MoveNode(id string, pos geom.Point) (Workflow, error) {
	i, ok := w.index[id]
	if !ok {
		return w, fmt.Errorf("move node %q: %w", id, ErrNodeNotFound)
	}
	out := w.clone()
	out.nodes[i].Position = pos
	return out, nil
}

// DeleteNode returns a workflow without the node and without any wire that
// referenced it.
func (w Workflow) DeleteNode(id string) (Workflow, error) {
	i, ok := w.index[id]
	if !ok {
		return w, fmt.Errorf("delete node %q: %w", id, ErrNodeNotFound)
	}
	out := Workflow{
		nodes: make([]Node, 0, len(w.nodes)-1),
		wires: make([]Wire, 0, len(w.wires)),
	}
	out.nodes = append(out.nodes, w.nodes[:i]...)
	out.nodes = append(out.nodes, w.nodes[i+1:]...)
	for _, wire := range w.wires {
		if wire.SourceNodeID == id || wire.TargetNodeID == id {
			continue
		}
		out.wires = append(out.wires, wire)
	}
	out.reindex()
	return out, nil
}

// AddWire returns a workflow with wire appended. The wire must already be
// oriented output to input. An empty ID is replaced with a fresh one.
func (w Workflow) AddWire(wire Wire) (Workflow, error) {
	if wire.ID == "" {
		wire.ID = uuid.NewString()
	}
	if err := w.checkWire(wire); err != nil {
		return w, err
	}
	out := w.clone()
	out.wires = append(out.wires, wire)
	return out, nil
}

// Connect joins two handles, orienting the wire so that the output handle is
// the source whichever handle was passed first.
func (w Workflow) Connect(a, b HandleRef) (Workflow, Wire, error) {
	wire, err := Orient(a, b)
	if err != nil {
		return w, Wire{}, err
	}
	next, err := w.AddWire(wire)
	if err != nil {
		return w, Wire{}, err
	}
	return next, next.wires[len(next.wires)-1], nil
}

// Orient builds the wire joining a and b with the output handle as source.
func Orient(a, b HandleRef) (Wire, error) {
	if a.Type == b.Type {
		return Wire{}, ErrSameHandleType
	}
	src, dst := a, b
	if src.Type == Input {
		src, dst = b, a
	}
	return Wire{
		SourceNodeID: src.NodeID,
		SourceHandle: src.Index,
		TargetNodeID: dst.NodeID,
		TargetHandle: dst.Index,
	}, nil
}

// RemoveWire returns a workflow without the wire.
func (w Workflow) RemoveWire(id string) (Workflow, error) {
	out := w.clone()
	for i, wire := range out.wires {
		if wire.ID == id {
			out.wires = append(out.wires[:i], out.wires[i+1:]...)
			return out, nil
		}
	}
	return w, fmt.Errorf("remove wire %q: %w", id, ErrWireNotFound)
}

func (w Workflow) checkWire(wire Wire) error {
	if wire.SourceNodeID == wire.TargetNodeID {
		return fmt.Errorf("wire %q: %w", wire.ID, ErrSameNode)
	}
	if err := validate.Struct(wire); err != nil {
		return fmt.Errorf("wire %q: %w", wire.ID, err)
	}
	src, ok := w.Node(wire.SourceNodeID)
	if !ok {
		return fmt.Errorf("wire %q source %q: %w", wire.ID, wire.SourceNodeID, ErrNodeNotFound)
	}
	dst, ok := w.Node(wire.TargetNodeID)
	if !ok {
		return fmt.Errorf("wire %q target %q: %w", wire.ID, wire.TargetNodeID, ErrNodeNotFound)
	}
	if !src.HasHandle(Output, wire.SourceHandle) {
		return fmt.Errorf("wire %q output %d on %q: %w", wire.ID, wire.SourceHandle, src.ID, ErrHandleOutOfRange)
	}
	if !dst.HasHandle(Input, wire.TargetHandle) {
		return fmt.Errorf("wire %q input %d on %q: %w", wire.ID, wire.TargetHandle, dst.ID, ErrHandleOutOfRange)
	}
	if _, exists := w.Wire(wire.ID); exists {
		return fmt.Errorf("wire id %q already in use: %w", wire.ID, ErrDuplicateWire)
	}
	if w.HasWire(wire) {
		return fmt.Errorf("wire %q: %w", wire.ID, ErrDuplicateWire)
	}
	return nil
}

func normalizeData(d NodeData) NodeData {
	if len(d.Inputs) == 0 {
		d.Inputs = nil
	}
	if len(d.Outputs) == 0 {
		d.Outputs = nil
	}
	return d
}
