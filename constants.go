package main

import "flowire/workflow"

type Mode int

const (
	ModeNormal Mode = iota
	ModePicker
	ModeHelp
)

// One terminal cell covers this many canvas pixels.
const (
	cellWidth  = 8.0
	cellHeight = 16.0
)

const (
	keyPanStep  = 4 // cells per arrow key press
	fitPadding  = 32.0
	exportPad   = 40.0
	defaultFile = "flowire"
)

// nodeType is one entry of the node picker.
type nodeType struct {
	Name    string
	Title   string
	Inputs  []workflow.Port
	Outputs []workflow.Port
}

var nodeTypes = []nodeType{
	{
		Name:    "trigger",
		Title:   "Trigger",
		Outputs: []workflow.Port{{Name: "out", Type: "event"}},
	},
	{
		Name:    "action",
		Title:   "Action",
		Inputs:  []workflow.Port{{Name: "in", Type: "any"}},
		Outputs: []workflow.Port{{Name: "out", Type: "any"}},
	},
	{
		Name:    "condition",
		Title:   "Condition",
		Inputs:  []workflow.Port{{Name: "in", Type: "any"}},
		Outputs: []workflow.Port{{Name: "true", Type: "any"}, {Name: "false", Type: "any"}},
	},
	{
		Name:   "output",
		Title:  "Output",
		Inputs: []workflow.Port{{Name: "in", Type: "any"}},
	},
}
