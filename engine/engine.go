// Package engine turns raw input into canvas behavior: panning and zooming
// the view, dragging nodes with alignment snapping, and drawing wires.
//
// The engine runs on the goroutine that owns the canvas and every call
// returns before the next event is handled. It never writes the document it
// was given; each change produces a new workflow that is handed to the Host.
package engine

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"flowire/align"
	"flowire/connect"
	"flowire/geom"
	"flowire/gesture"
	"flowire/viewport"
	"flowire/wire"
	"flowire/workflow"
)

// Host receives the engine's output.
type Host interface {
	// Commit is called with every new version of the document. The engine
	// adopts w before calling; a host that refuses it calls SetWorkflow with
	// the document it keeps before returning.
	Commit(w workflow.Workflow)
	// RequestNode is called when a wire was dropped on empty canvas. The host
	// answers later with AddNode, CompleteDraft or a cancel.
	RequestNode(req connect.NodeRequest)
}

// HostFuncs adapts two functions to Host. Nil functions are skipped.
type HostFuncs struct {
	OnCommit      func(workflow.Workflow)
	OnRequestNode func(connect.NodeRequest)
}

func (h HostFuncs) Commit(w workflow.Workflow) {
	if h.OnCommit != nil {
		h.OnCommit(w)
	}
}

func (h HostFuncs) RequestNode(req connect.NodeRequest) {
	if h.OnRequestNode != nil {
		h.OnRequestNode(req)
	}
}

// Options configures an Engine.
type Options struct {
	Canvas   geom.Size
	Platform gesture.Platform
	Logger   logrus.FieldLogger

	// HitRadius is the handle hit radius in screen pixels. The world radius
	// never drops below wire.HandleRadius.
	HitRadius float64
}

type nodeDrag struct {
	id     string
	offset geom.Point
}

// Engine is the canvas interaction engine for one document.
type Engine struct {
	host      Host
	log       logrus.FieldLogger
	platform  gesture.Platform
	hitRadius float64

	doc     workflow.Workflow
	view    *viewport.Controller
	arbiter gesture.Arbiter

	conn   connect.State
	guides []align.Guide
	drag   nodeDrag
	last   geom.Point
	pinch  gesture.PinchTracker

	cancelSignal bool
	unsubscribe  func()
}

// New returns an engine editing doc.
func New(host Host, doc workflow.Workflow, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	if host == nil {
		host = HostFuncs{}
	}
	return &Engine{
		host:      host,
		log:       log.WithField("component", "engine"),
		platform:  opts.Platform,
		hitRadius: opts.HitRadius,
		doc:       doc,
		view:      viewport.NewController(opts.Canvas),
	}
}

// Attach subscribes the engine to src, replacing any earlier source.
func (e *Engine) Attach(src InputSource) {
	e.Detach()
	e.unsubscribe = src.Subscribe(e.Handle)
}

// Detach drops the current input subscription.
func (e *Engine) Detach() {
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
}

func (e *Engine) Workflow() workflow.Workflow {
	return e.doc
}

func (e *Engine) Viewport() *viewport.Controller {
	return e.view
}

// ActiveGesture returns the gesture currently in progress.
func (e *Engine) ActiveGesture() gesture.Kind {
	return e.arbiter.Active()
}

// Connection returns the wire drawing state.
func (e *Engine) Connection() connect.State {
	return e.conn
}

// Draft returns the wire being drawn, if any.
func (e *Engine) Draft() (connect.Draft, bool) {
	return e.conn.Draft, e.conn.Active()
}

// Guides returns the alignment guides of the node being dragged. It is
// empty whenever no node drag is active.
func (e *Engine) Guides() []align.Guide {
	out := make([]align.Guide, len(e.guides))
	copy(out, e.guides)
	return out
}

// DraggedNode returns the id of the node being dragged.
func (e *Engine) DraggedNode() (string, bool) {
	if e.arbiter.Active() != gesture.NodeDrag {
		return "", false
	}
	return e.drag.id, true
}

// DraftCurve returns the curve of the wire being drawn. ok is false until
// the pointer has moved.
func (e *Engine) DraftCurve() (c wire.Curve, ok bool) {
	if !e.conn.Visible() {
		return c, false
	}
	d := e.conn.Draft
	return wire.Draft(d.Anchor, d.Source.Type, d.Cursor), true
}

// Wires returns the curves of every drawable wire.
func (e *Engine) Wires() []wire.Rendered {
	return wire.All(e.doc)
}

// SetPlatform changes how wheel events are classified.
func (e *Engine) SetPlatform(p gesture.Platform) {
	e.platform = p
}

// SetWorkflow replaces the document from outside, for example after a
// paste. Gestures referring to nodes that no longer exist are cancelled.
func (e *Engine) SetWorkflow(w workflow.Workflow) {
	e.doc = w
	e.dropStale()
}

// dropStale cancels gestures on nodes that left the document and removes
// guides that refer to them.
func (e *Engine) dropStale() {
	if id, ok := e.DraggedNode(); ok {
		if _, exists := e.doc.Node(id); !exists {
			e.Cancel()
		}
	}
	if e.conn.Active() {
		if _, exists := e.doc.Node(e.conn.Draft.Source.NodeID); !exists {
			e.Cancel()
		}
	}

	kept := make([]align.Guide, 0, len(e.guides))
	for _, g := range e.guides {
		if e.hasNodes(g.Nodes) {
			kept = append(kept, g)
		}
	}
	if len(kept) == 0 {
		kept = nil
	}
	e.guides = kept
}

func (e *Engine) hasNodes(ids []string) bool {
	for _, id := range ids {
		if _, ok := e.doc.Node(id); !ok {
			return false
		}
	}
	return true
}

// Handle processes one input event.
func (e *Engine) Handle(ev Event) {
	switch ev := ev.(type) {
	case PointerDown:
		e.pointerDown(ev)
	case PointerMove:
		e.pointerMove(ev)
	case PointerUp:
		e.pointerUp(ev)
	case Wheel:
		e.wheel(ev)
	case Touch:
		e.touch(ev)
	case Key:
		if ev.Name == "esc" || ev.Name == "escape" {
			e.Cancel()
		}
	}
}

type hit struct {
	kind   gesture.Hit
	handle workflow.HandleRef
	nodeID string
}

// hitTest finds what is under a world point. Handles win over node bodies
// and later nodes win over earlier ones.
func (e *Engine) hitTest(p geom.Point) hit {
	if ref, ok := wire.HitHandle(e.doc, p, e.handleRadius()); ok {
		return hit{kind: gesture.HitHandle, handle: ref, nodeID: ref.NodeID}
	}
	nodes := e.doc.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].Rect().Contains(p) {
			return hit{kind: gesture.HitNode, nodeID: nodes[i].ID}
		}
	}
	return hit{kind: gesture.HitCanvas}
}

// handleRadius is the world distance within which a press hits a handle.
func (e *Engine) handleRadius() float64 {
	r := wire.HandleRadius
	if scaled := e.hitRadius / e.view.Scale(); scaled > r {
		r = scaled
	}
	return r
}

// NodeAt returns the topmost node under a screen point, handles included.
func (e *Engine) NodeAt(screen geom.Point) (string, bool) {
	h := e.hitTest(e.view.ScreenToWorld(screen))
	return h.nodeID, h.nodeID != ""
}

func (e *Engine) pointerDown(ev PointerDown) {
	world := e.view.ScreenToWorld(ev.Screen)
	h := e.hitTest(world)
	kind := gesture.Route(h.kind, ev.Button)
	if !e.arbiter.Begin(kind) {
		return
	}
	e.log.WithField("gesture", kind).Debug("gesture started")

	switch kind {
	case gesture.Pan:
		e.last = ev.Screen
	case gesture.NodeDrag:
		n, _ := e.doc.Node(h.nodeID)
		e.drag = nodeDrag{id: n.ID, offset: world.Sub(n.Position)}
		e.guides = nil
	case gesture.Connect:
		n, _ := e.doc.Node(h.nodeID)
		anchor := wire.HandleAnchor(n, h.handle.Type, h.handle.Index)
		e.conn = e.conn.Begin(h.handle, anchor)
	}
}

func (e *Engine) pointerMove(ev PointerMove) {
	switch e.arbiter.Active() {
	case gesture.Pan:
		d := ev.Screen.Sub(e.last)
		e.view.PanBy(d.X, d.Y)
		e.last = ev.Screen
	case gesture.NodeDrag:
		e.dragTo(e.view.ScreenToWorld(ev.Screen))
	case gesture.Connect:
		e.conn = e.conn.Move(e.view.ScreenToWorld(ev.Screen))
	}
}

// dragTo moves the dragged node and recomputes its guides in one step, so
// the guides always match the committed position.
func (e *Engine) dragTo(world geom.Point) {
	proposed := world.Sub(e.drag.offset)
	res := align.Snap(e.drag.id, proposed, e.doc.Nodes())
	next, err := e.doc.MoveNode(e.drag.id, res.Position)
	if err != nil {
		e.log.WithError(err).Warn("dragged node vanished")
		e.Cancel()
		return
	}
	e.guides = res.Guides
	e.commit(next)

	// The host may have refused the move.
	if n, ok := e.doc.Node(e.drag.id); !ok || n.Position != res.Position {
		e.guides = nil
	}
}

func (e *Engine) pointerUp(ev PointerUp) {
	// Only the primary button starts pointer gestures, so only its release
	// ends them.
	if ev.Button != gesture.ButtonPrimary {
		return
	}
	switch kind := e.arbiter.Active(); kind {
	case gesture.Pan:
		e.arbiter.End(kind)
	case gesture.NodeDrag:
		e.guides = nil
		e.drag = nodeDrag{}
		e.arbiter.End(kind)
	case gesture.Connect:
		world := e.view.ScreenToWorld(ev.Screen)
		e.release(world)
		if !e.conn.Active() {
			e.arbiter.End(kind)
		}
	default:
		return
	}
	e.log.Debug("gesture ended")
}

func (e *Engine) release(world geom.Point) {
	h := e.hitTest(world)
	target := connect.Target{World: world, NodeID: h.nodeID}
	switch h.kind {
	case gesture.HitHandle:
		target.Kind = connect.OnHandle
		target.Handle = h.handle
	case gesture.HitNode:
		target.Kind = connect.OnNode
	default:
		target.Kind = connect.OnCanvas
	}

	next, out := e.conn.Release(target, e.doc)
	e.conn = next
	e.apply(out)
}

func (e *Engine) apply(out connect.Outcome) {
	switch out.Kind {
	case connect.Connected:
		e.log.WithField("wire", out.Wire.ID).Debug("wire connected")
		e.commit(out.Next)
	case connect.NodeRequested:
		e.log.WithFields(logrus.Fields{
			"source": out.Request.SourceNodeID,
			"type":   out.Request.SourceType,
			"index":  out.Request.SourceIndex,
			"x":      out.Request.Position.X,
			"y":      out.Request.Position.Y,
		}).Info("node requested for dropped wire")
		e.host.RequestNode(out.Request)
	case connect.Duplicate:
		e.log.Debug("duplicate wire ignored")
	}
}

func (e *Engine) wheel(ev Wheel) {
	kind := gesture.ClassifyWheel(e.platform, ev.Wheel)
	factor := gesture.ZoomFactor(e.platform, ev.Wheel)
	e.view.ZoomBy(ev.Screen, factor)
	e.log.WithFields(logrus.Fields{"kind": kind, "scale": e.view.Scale()}).Debug("wheel zoom")
}

func (e *Engine) touch(ev Touch) {
	switch len(ev.Touches) {
	case 0:
		e.arbiter.End(gesture.Pan)
		e.arbiter.End(gesture.Pinch)
	case 1:
		if e.arbiter.Active() == gesture.Pinch {
			e.arbiter.End(gesture.Pinch)
			return
		}
		p := ev.Touches[0]
		if ev.Phase == TouchStart {
			h := e.hitTest(e.view.ScreenToWorld(p))
			if h.kind == gesture.HitCanvas && e.arbiter.Begin(gesture.Pan) {
				e.last = p
			}
			return
		}
		if e.arbiter.Active() == gesture.Pan {
			d := p.Sub(e.last)
			e.view.PanBy(d.X, d.Y)
			e.last = p
		}
	default:
		a, b := ev.Touches[0], ev.Touches[1]
		if e.arbiter.Active() != gesture.Pinch {
			if e.arbiter.Begin(gesture.Pinch) {
				e.pinch = gesture.StartPinch(a, b, e.view.Scale())
			}
			return
		}
		e.view.ZoomAt(e.pinch.Anchor(), e.pinch.Scale(a, b))
	}
}

// Cancel ends whatever is in progress: it drops the wire draft, clears the
// guides and ends the active gesture, all at once.
func (e *Engine) Cancel() {
	if e.arbiter.Active() != gesture.None || e.conn.Active() {
		e.log.WithField("gesture", e.arbiter.Active()).Debug("cancelled")
	}
	e.conn = e.conn.Cancel()
	e.guides = nil
	e.drag = nodeDrag{}
	e.arbiter.Reset()
	e.cancelSignal = false
}

// SetCancel is the host's cancel flag. Raising it cancels immediately; the
// flag then drops back.
func (e *Engine) SetCancel(v bool) {
	e.cancelSignal = v
	if e.cancelSignal {
		e.Cancel()
	}
}

// AddNode adds n to the document. If a dropped wire is waiting for a node,
// n is wired to it in the same commit.
func (e *Engine) AddNode(n workflow.Node) error {
	next, err := e.doc.AddNode(n)
	if err != nil {
		return fmt.Errorf("add node: %w", err)
	}
	if !e.conn.Draft.AwaitingNode {
		e.commit(next)
		return nil
	}
	if out := e.resolve(next, n.ID); out.Kind == connect.Connected {
		next = out.Next
	}
	e.commit(next)
	return nil
}

// CompleteDraft wires the waiting draft to nodeID, a node the host already
// placed in the document.
func (e *Engine) CompleteDraft(nodeID string) {
	if !e.conn.Draft.AwaitingNode {
		return
	}
	if out := e.resolve(e.doc, nodeID); out.Kind == connect.Connected {
		e.commit(out.Next)
	}
}

func (e *Engine) resolve(w workflow.Workflow, nodeID string) connect.Outcome {
	state, out := e.conn.Resolve(w, nodeID)
	e.conn = state
	e.arbiter.End(gesture.Connect)
	if out.Kind != connect.Connected {
		e.log.WithFields(logrus.Fields{"node": nodeID, "outcome": out.Kind}).Debug("draft not wired")
	}
	return out
}

// DeleteNode removes a node and every wire attached to it.
func (e *Engine) DeleteNode(id string) error {
	next, err := e.doc.DeleteNode(id)
	if err != nil {
		return err
	}
	e.commit(next)
	e.dropStale()
	return nil
}

// SetCanvasSize updates the pixel size of the canvas.
func (e *Engine) SetCanvasSize(s geom.Size) {
	e.view.SetCanvasSize(s)
}

func (e *Engine) ZoomIn() {
	e.view.ZoomIn()
}

func (e *Engine) ZoomOut() {
	e.view.ZoomOut()
}

// ResetView centers the top-left-most node at scale 1.
func (e *Engine) ResetView() {
	nodes := e.doc.Nodes()
	positions := make([]geom.Point, len(nodes))
	for i, n := range nodes {
		positions[i] = n.Position
	}
	e.view.ResetToContent(positions)
}

// FitView fits every node on screen.
func (e *Engine) FitView(padding float64) {
	if r, ok := e.doc.Bounds(); ok {
		e.view.FitToContent(r, padding)
	}
}

func (e *Engine) commit(next workflow.Workflow) {
	e.doc = next
	e.host.Commit(next)
}
