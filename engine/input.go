package engine

import (
	"flowire/geom"
	"flowire/gesture"
)

// Event is one raw input event. Screen positions are in canvas pixels.
type Event interface {
	event()
}

// PointerDown is a mouse button press.
type PointerDown struct {
	Screen geom.Point
	Button gesture.Button
}

// PointerMove is pointer motion, with or without a button held.
type PointerMove struct {
	Screen geom.Point
}

// PointerUp is a mouse button release.
type PointerUp struct {
	Screen geom.Point
	Button gesture.Button
}

// Wheel is a wheel or trackpad scroll.
type Wheel struct {
	gesture.Wheel
}

// TouchPhase says whether a touch event adds, moves or removes fingers.
type TouchPhase int

const (
	TouchStart TouchPhase = iota
	TouchMove
	TouchEnd
)

// Touch carries every finger still on the surface after the change.
type Touch struct {
	Phase   TouchPhase
	Touches []geom.Point
}

// Key is a key press relevant to the canvas. Only "esc" is acted on.
type Key struct {
	Name string
}

func (PointerDown) event() {}
func (PointerMove) event() {}
func (PointerUp) event()   {}
func (Wheel) event()       {}
func (Touch) event()       {}
func (Key) event()         {}

// InputSource delivers events to subscribers. The returned function removes
// the subscription.
type InputSource interface {
	Subscribe(fn func(Event)) (unsubscribe func())
}

// Source is an InputSource that hosts push events into by hand.
type Source struct {
	subs map[int]func(Event)
	next int
}

// NewSource returns an empty Source.
func NewSource() *Source {
	return &Source{subs: map[int]func(Event){}}
}

func (s *Source) Subscribe(fn func(Event)) func() {
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() { delete(s.subs, id) }
}

// Emit delivers ev to every subscriber, in subscription order.
func (s *Source) Emit(ev Event) {
	for id := 0; id < s.next; id++ {
		if fn, ok := s.subs[id]; ok {
			fn(ev)
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (s *Source) Subscribers() int {
	return len(s.subs)
}
