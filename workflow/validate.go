package workflow

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every node and wire and the references between them. It
// reports all problems found, not just the first one.
func (w Workflow) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(w.nodes))
	for _, n := range w.nodes {
		if err := validate.Struct(n); err != nil {
			errs = append(errs, fmt.Errorf("node %q: %w", n.ID, err))
		}
		if seen[n.ID] {
			errs = append(errs, fmt.Errorf("node %q: %w", n.ID, ErrDuplicateNode))
		}
		seen[n.ID] = true
	}

	var checked Workflow
	checked.nodes = w.nodes
	checked.reindex()
	for _, wire := range w.wires {
		if err := checked.checkWire(wire); err != nil {
			errs = append(errs, err)
			continue
		}
		checked.wires = append(checked.wires, wire)
	}
	return errors.Join(errs...)
}
