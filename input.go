package main

import (
	"math"

	tea "github.com/charmbracelet/bubbletea"

	"flowire/engine"
	"flowire/geom"
	"flowire/gesture"
)

// A terminal wheel notch is reported like one line of a mouse wheel.
const wheelNotch = 100.0

// A press lands on a cell center, up to half a cell diagonal away from the
// handle drawn in that cell.
var handleHitRadius = math.Hypot(cellWidth, cellHeight)/2 + 1

// teaSource feeds bubbletea mouse and key messages to the engine.
type teaSource struct {
	*engine.Source
}

func newTeaSource() *teaSource {
	return &teaSource{Source: engine.NewSource()}
}

func (s *teaSource) Mouse(msg tea.MouseMsg) {
	for _, ev := range translateMouse(msg) {
		s.Emit(ev)
	}
}

func (s *teaSource) Cancel() {
	s.Emit(engine.Key{Name: "esc"})
}

// cellToScreen returns the canvas pixel at the center of a cell.
func cellToScreen(x, y int) geom.Point {
	return geom.Pt((float64(x)+0.5)*cellWidth, (float64(y)+0.5)*cellHeight)
}

func screenToCell(p geom.Point) (int, int) {
	return int(math.Floor(p.X / cellWidth)), int(math.Floor(p.Y / cellHeight))
}

func translateButton(b tea.MouseButton) (gesture.Button, bool) {
	switch b {
	case tea.MouseButtonLeft:
		return gesture.ButtonPrimary, true
	case tea.MouseButtonMiddle:
		return gesture.ButtonMiddle, true
	case tea.MouseButtonRight:
		return gesture.ButtonSecondary, true
	}
	return gesture.ButtonPrimary, false
}

// translateMouse maps one terminal mouse message to engine events. Terminals
// report wheel notches as presses; ctrl or alt on the wheel becomes the zoom
// modifier.
func translateMouse(msg tea.MouseMsg) []engine.Event {
	screen := cellToScreen(msg.X, msg.Y)

	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		dy := wheelNotch
		if msg.Button == tea.MouseButtonWheelUp {
			dy = -wheelNotch
		}
		return []engine.Event{engine.Wheel{Wheel: gesture.Wheel{
			Screen: screen,
			DeltaY: dy,
			Ctrl:   msg.Ctrl,
			Meta:   msg.Alt,
		}}}
	case tea.MouseButtonWheelLeft, tea.MouseButtonWheelRight:
		return nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		button, ok := translateButton(msg.Button)
		if !ok {
			return nil
		}
		return []engine.Event{engine.PointerDown{Screen: screen, Button: button}}
	case tea.MouseActionMotion:
		return []engine.Event{engine.PointerMove{Screen: screen}}
	case tea.MouseActionRelease:
		// Some terminals do not say which button was released.
		button, _ := translateButton(msg.Button)
		return []engine.Event{engine.PointerUp{Screen: screen, Button: button}}
	}
	return nil
}
