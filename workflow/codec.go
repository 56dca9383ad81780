package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"

	"flowire/geom"
)

const documentSchemaJSON = `{
  "type": "object",
  "properties": {
    "nodes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "type": {"type": "string"},
          "position": {
            "type": "object",
            "properties": {"x": {"type": "number"}, "y": {"type": "number"}}
          },
          "data": {
            "type": "object",
            "properties": {
              "title": {"type": "string"},
              "inputs": {"type": "array", "items": {"$ref": "#/definitions/port"}},
              "outputs": {"type": "array", "items": {"$ref": "#/definitions/port"}}
            }
          }
        }
      }
    },
    "wires": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "sourceNodeId", "targetNodeId"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "sourceNodeId": {"type": "string", "minLength": 1},
          "targetNodeId": {"type": "string", "minLength": 1},
          "sourceOutput": {"$ref": "#/definitions/index"},
          "targetInput": {"$ref": "#/definitions/index"}
        }
      }
    }
  },
  "definitions": {
    "port": {
      "type": "object",
      "properties": {"name": {"type": "string"}, "type": {"type": "string"}}
    },
    "index": {
      "oneOf": [
        {"type": "string", "pattern": "^[0-9]+$"},
        {"type": "integer", "minimum": 0}
      ]
    }
  }
}`

var documentSchema = mustSchema(documentSchemaJSON)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("workflow: bad document schema: %v", err))
	}
	return schema
}

type document struct {
	Nodes []documentNode `json:"nodes"`
	Wires []documentWire `json:"wires"`
}

type documentNode struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Position documentPosition `json:"position"`
	Data     documentData     `json:"data"`
}

type documentPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type documentData struct {
	Title   string `json:"title,omitempty"`
	Inputs  []Port `json:"inputs,omitempty"`
	Outputs []Port `json:"outputs,omitempty"`
}

type documentWire struct {
	ID           string      `json:"id"`
	SourceNodeID string      `json:"sourceNodeId"`
	TargetNodeID string      `json:"targetNodeId"`
	SourceOutput handleIndex `json:"sourceOutput,omitempty"`
	TargetInput  handleIndex `json:"targetInput,omitempty"`
}

// handleIndex is a handle index serialized as a decimal string. Bare JSON
// numbers are accepted on input.
type handleIndex string

func (h *handleIndex) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*h = handleIndex(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("handle index: %w", err)
	}
	*h = handleIndex(n.String())
	return nil
}

func (h handleIndex) value() (int, error) {
	if h == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(strings.TrimSpace(string(h)))
	if err != nil {
		return 0, fmt.Errorf("handle index %q: %w", string(h), err)
	}
	if i < 0 {
		return 0, fmt.Errorf("handle index %d: %w", i, ErrHandleOutOfRange)
	}
	return i, nil
}

// Marshal encodes the workflow as an indented document.
func Marshal(w Workflow) ([]byte, error) {
	doc := document{
		Nodes: make([]documentNode, 0, len(w.nodes)),
		Wires: make([]documentWire, 0, len(w.wires)),
	}
	for _, n := range w.nodes {
		doc.Nodes = append(doc.Nodes, documentNode{
			ID:       n.ID,
			Type:     n.Type,
			Position: documentPosition{X: n.Position.X, Y: n.Position.Y},
			Data: documentData{
				Title:   n.Data.Title,
				Inputs:  n.Data.Inputs,
				Outputs: n.Data.Outputs,
			},
		})
	}
	for _, wire := range w.wires {
		doc.Wires = append(doc.Wires, documentWire{
			ID:           wire.ID,
			SourceNodeID: wire.SourceNodeID,
			TargetNodeID: wire.TargetNodeID,
			SourceOutput: handleIndex(strconv.Itoa(wire.SourceHandle)),
			TargetInput:  handleIndex(strconv.Itoa(wire.TargetHandle)),
		})
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Decode parses a document leniently. It never fails: anything it cannot
// use is dropped and reported as a warning on log, and input that is not a
// document at all yields an empty workflow.
func Decode(data []byte, log logrus.FieldLogger) Workflow {
	w, warnings := decode(data)
	if log != nil {
		for _, msg := range warnings {
			log.WithField("component", "workflow").Warn(msg)
		}
	}
	return w
}

// Unmarshal parses a document strictly. Any problem Decode would have
// skipped is returned as an error.
func Unmarshal(data []byte) (Workflow, error) {
	w, warnings := decode(data)
	if len(warnings) == 0 {
		return w, nil
	}
	errs := make([]error, 0, len(warnings))
	for _, msg := range warnings {
		errs = append(errs, errors.New(msg))
	}
	return New(), fmt.Errorf("invalid document: %w", errors.Join(errs...))
}

func decode(data []byte) (Workflow, []string) {
	var warnings []string

	result, err := documentSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return New(), []string{fmt.Sprintf("document is not valid JSON: %v", err)}
	}
	for _, desc := range result.Errors() {
		warnings = append(warnings, "schema: "+desc.String())
	}

	var raw struct {
		Nodes json.RawMessage `json:"nodes"`
		Wires json.RawMessage `json:"wires"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return New(), append(warnings, fmt.Sprintf("document is not an object: %v", err))
	}

	w := New()
	for i, elem := range rawArray(raw.Nodes, "nodes", &warnings) {
		var dn documentNode
		if err := json.Unmarshal(elem, &dn); err != nil {
			warnings = append(warnings, fmt.Sprintf("nodes[%d] skipped: %v", i, err))
			continue
		}
		next, err := w.AddNode(Node{
			ID:       dn.ID,
			Type:     dn.Type,
			Position: geom.Pt(dn.Position.X, dn.Position.Y),
			Data: NodeData{
				Title:   dn.Data.Title,
				Inputs:  dn.Data.Inputs,
				Outputs: dn.Data.Outputs,
			},
		})
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("nodes[%d] skipped: %v", i, err))
			continue
		}
		w = next
	}

	for i, elem := range rawArray(raw.Wires, "wires", &warnings) {
		var dw documentWire
		if err := json.Unmarshal(elem, &dw); err != nil {
			warnings = append(warnings, fmt.Sprintf("wires[%d] skipped: %v", i, err))
			continue
		}
		src, err := dw.SourceOutput.value()
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("wires[%d] skipped: sourceOutput: %v", i, err))
			continue
		}
		dst, err := dw.TargetInput.value()
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("wires[%d] skipped: targetInput: %v", i, err))
			continue
		}
		next, err := w.AddWire(Wire{
			ID:           dw.ID,
			SourceNodeID: dw.SourceNodeID,
			TargetNodeID: dw.TargetNodeID,
			SourceHandle: src,
			TargetHandle: dst,
		})
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("wires[%d] skipped: %v", i, err))
			continue
		}
		w = next
	}
	return w, warnings
}

// rawArray splits a JSON array into its elements. A missing or null field is
// an empty array; anything else that is not an array is reported and treated
// as empty.
func rawArray(msg json.RawMessage, field string, warnings *[]string) []json.RawMessage {
	if len(msg) == 0 || string(msg) == "null" {
		return nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(msg, &elems); err != nil {
		*warnings = append(*warnings, fmt.Sprintf("%s is not an array, using []", field))
		return nil
	}
	return elems
}
