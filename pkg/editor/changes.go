package editor

import (
	"context"

	"github.com/matzehuels/archboard/pkg/diagram"
)

// ChangeType names a canvas delta.
type ChangeType string

const (
	ChangeSelect     ChangeType = "select"
	ChangePosition   ChangeType = "position"
	ChangeDimensions ChangeType = "dimensions"
	ChangeRemove     ChangeType = "remove"
)

// NodeChange is a delta the canvas emits for one node. Position applies to
// position changes and Dimensions to dimension changes.
type NodeChange struct {
	Type       ChangeType        `json:"type"`
	ID         string            `json:"id"`
	Selected   bool              `json:"selected,omitempty"`
	Position   *diagram.Position `json:"position,omitempty"`
	Dimensions *diagram.Size     `json:"dimensions,omitempty"`
}

// EdgeChange is a delta the canvas emits for one edge.
type EdgeChange struct {
	Type     ChangeType `json:"type"`
	ID       string     `json:"id"`
	Selected bool       `json:"selected,omitempty"`
}

// ApplyNodeChanges applies canvas deltas in order. Changes for unknown ids
// are skipped. Select deltas make the first selected node in collection
// order active. The diagram autosaves once if any position, dimension or
// remove delta applied. It reports whether the collections changed.
func (e *Editor) ApplyNodeChanges(ctx context.Context, changes []NodeChange) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	mutated, reselect := false, false
	removed := map[string]bool{}
	for _, c := range changes {
		n := e.doc.NodeByID(c.ID)
		if n == nil {
			continue
		}
		switch c.Type {
		case ChangeSelect:
			if c.Selected {
				e.selectedNodes[c.ID] = true
			} else {
				delete(e.selectedNodes, c.ID)
			}
			reselect = true
		case ChangePosition:
			if c.Position != nil && *c.Position != n.Position {
				n.Position = *c.Position
				mutated = true
			}
		case ChangeDimensions:
			if c.Dimensions != nil && (n.Size == nil || *n.Size != *c.Dimensions) {
				sz := *c.Dimensions
				n.Size = &sz
				mutated = true
			}
		case ChangeRemove:
			removed[c.ID] = true
		}
	}
	if len(removed) > 0 {
		if nodes, _ := e.removeLocked(removed, nil); nodes > 0 {
			mutated = true
		}
	}
	if reselect {
		e.activateLocked(e.flaggedNodesLocked())
	}
	if mutated {
		e.changed(ctx, "node_changes")
	}
	return mutated
}

// ApplyEdgeChanges applies canvas deltas for edges. Only select and remove
// apply to edges.
func (e *Editor) ApplyEdgeChanges(ctx context.Context, changes []EdgeChange) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	removed := map[string]bool{}
	for _, c := range changes {
		if e.doc.EdgeByID(c.ID) == nil {
			continue
		}
		switch c.Type {
		case ChangeSelect:
			if c.Selected {
				e.selectedEdges[c.ID] = true
			} else {
				delete(e.selectedEdges, c.ID)
			}
		case ChangeRemove:
			removed[c.ID] = true
		}
	}
	if len(removed) == 0 {
		return false
	}
	if _, edges := e.removeLocked(nil, removed); edges == 0 {
		return false
	}
	e.changed(ctx, "edge_changes")
	return true
}

func (e *Editor) flaggedNodesLocked() []string {
	var ids []string
	for _, n := range e.doc.Nodes {
		if e.selectedNodes[n.ID] {
			ids = append(ids, n.ID)
		}
	}
	return ids
}
