package main

import (
	"github.com/sirupsen/logrus"

	"flowire/connect"
	"flowire/engine"
	"flowire/geom"
	"flowire/gesture"
	"flowire/workflow"
)

// host receives the engine's output for the editor. The engine calls it
// synchronously from inside Update.
type host struct {
	log     logrus.FieldLogger
	commits int
	request *connect.NodeRequest
}

func (h *host) Commit(w workflow.Workflow) {
	h.commits++
	h.log.WithFields(logrus.Fields{"nodes": w.Len(), "wires": len(w.Wires())}).Debug("document updated")
}

func (h *host) RequestNode(req connect.NodeRequest) {
	h.request = &req
}

// takeRequest returns and clears the pending node request.
func (h *host) takeRequest() (connect.NodeRequest, bool) {
	if h.request == nil {
		return connect.NodeRequest{}, false
	}
	req := *h.request
	h.request = nil
	return req, true
}

type model struct {
	width   int
	height  int
	sized   bool
	cursorX int
	cursorY int
	mode    Mode

	engine *engine.Engine
	input  *teaSource
	host   *host
	config *Config
	log    logrus.FieldLogger

	platform gesture.Platform
	filename string

	// pickAt is where the picker places the new node, in world coordinates.
	pickAt    geom.Point
	fromDraft bool

	errorMessage   string
	successMessage string
}
