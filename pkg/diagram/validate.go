package diagram

import (
	"errors"

	errs "github.com/matzehuels/archboard/pkg/errors"
)

// Validate checks the structure of d: non-empty unique node ids, unique
// edge ids, known node and edge types, and edge endpoints that reference
// existing nodes. All problems are reported, joined into one error; each
// carries an INVALID_INPUT or INVALID_ENDPOINT code.
//
// Loading and importing do not call Validate: stored documents are
// accepted with dangling edges, as the canvas simply does not draw them.
func (d *Diagram) Validate() error {
	if d == nil {
		return errs.New(errs.ErrCodeInvalidInput, "diagram is nil")
	}

	var problems []error
	nodeIDs := make(map[string]bool, len(d.Nodes))
	for i, n := range d.Nodes {
		switch {
		case n.ID == "":
			problems = append(problems, errs.New(errs.ErrCodeInvalidInput, "node at index %d has empty id", i))
		case nodeIDs[n.ID]:
			problems = append(problems, errs.New(errs.ErrCodeInvalidInput, "duplicate node id: %s", n.ID))
		default:
			nodeIDs[n.ID] = true
		}
		if !n.Type.Valid() {
			problems = append(problems, errs.New(errs.ErrCodeInvalidInput, "node %s: unknown type %q", n.ID, n.Type))
		}
	}

	edgeIDs := make(map[string]bool, len(d.Edges))
	for i, e := range d.Edges {
		switch {
		case e.ID == "":
			problems = append(problems, errs.New(errs.ErrCodeInvalidInput, "edge at index %d has empty id", i))
		case edgeIDs[e.ID]:
			problems = append(problems, errs.New(errs.ErrCodeInvalidInput, "duplicate edge id: %s", e.ID))
		default:
			edgeIDs[e.ID] = true
		}
		if !e.Type.Valid() {
			problems = append(problems, errs.New(errs.ErrCodeInvalidInput, "edge %s: unknown type %q", e.ID, e.Type))
		}
		if !nodeIDs[e.From] {
			problems = append(problems, errs.New(errs.ErrCodeInvalidEndpoint, "edge %s: source node not found: %s", e.ID, e.From))
		}
		if !nodeIDs[e.To] {
			problems = append(problems, errs.New(errs.ErrCodeInvalidEndpoint, "edge %s: target node not found: %s", e.ID, e.To))
		}
	}

	return errors.Join(problems...)
}
