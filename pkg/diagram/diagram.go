package diagram

import (
	"github.com/google/uuid"
)

// SchemaVersion is the current version of the persisted diagram format.
const SchemaVersion = 1

// DefaultName is used when a diagram is created without a name.
const DefaultName = "Untitled Diagram"

// Diagram is the full persisted and exported unit.
type Diagram struct {
	ID       string     `json:"id" yaml:"id"`
	Name     string     `json:"name" yaml:"name"`
	Nodes    []Node     `json:"nodes" yaml:"nodes"`
	Edges    []Edge     `json:"edges" yaml:"edges"`
	Metadata Properties `json:"metadata" yaml:"metadata"`
	Version  int        `json:"version" yaml:"version"`
}

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Size is the rendered extent of a node, when the canvas reported one.
type Size struct {
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// Node is a typed vertex of the diagram.
type Node struct {
	ID         string     `json:"id" yaml:"id"`
	Type       NodeType   `json:"type" yaml:"type"`
	Name       string     `json:"name" yaml:"name"`
	Properties Properties `json:"properties" yaml:"properties"`
	Position   Position   `json:"position" yaml:"position"`
	Size       *Size      `json:"size,omitempty" yaml:"size,omitempty"`
}

// Edge is a typed, directed connection between two nodes.
// SourceHandle and TargetHandle name the anchors the connection was drawn
// between; they only matter to the canvas.
type Edge struct {
	ID           string   `json:"id" yaml:"id"`
	From         string   `json:"from" yaml:"from"`
	To           string   `json:"to" yaml:"to"`
	Type         EdgeType `json:"type" yaml:"type"`
	Label        string   `json:"label,omitempty" yaml:"label,omitempty"`
	SourceHandle string   `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
	TargetHandle string   `json:"targetHandle,omitempty" yaml:"targetHandle,omitempty"`
}

// IsAsync reports whether the edge is asynchronous.
func (e Edge) IsAsync() bool { return IsAsync(e.Type) }

// New returns an empty diagram with a fresh identifier and the current
// schema version. An empty name is replaced with [DefaultName].
func New(name string) *Diagram {
	if name == "" {
		name = DefaultName
	}
	return &Diagram{
		ID:       uuid.NewString(),
		Name:     name,
		Nodes:    []Node{},
		Edges:    []Edge{},
		Metadata: Properties{},
		Version:  SchemaVersion,
	}
}

// NodeByID returns the node with the given id, or nil.
func (d *Diagram) NodeByID(id string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}

// EdgeByID returns the edge with the given id, or nil.
func (d *Diagram) EdgeByID(id string) *Edge {
	for i := range d.Edges {
		if d.Edges[i].ID == id {
			return &d.Edges[i]
		}
	}
	return nil
}

// EdgesFrom returns edges whose source is the given node id.
func (d *Diagram) EdgesFrom(id string) []Edge {
	var out []Edge
	for _, e := range d.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// EdgesTo returns edges whose target is the given node id.
func (d *Diagram) EdgesTo(id string) []Edge {
	var out []Edge
	for _, e := range d.Edges {
		if e.To == id {
			out = append(out, e)
		}
	}
	return out
}

// Clone returns a deep copy of d.
func (d *Diagram) Clone() *Diagram {
	if d == nil {
		return nil
	}
	out := &Diagram{
		ID:       d.ID,
		Name:     d.Name,
		Nodes:    make([]Node, len(d.Nodes)),
		Edges:    make([]Edge, len(d.Edges)),
		Metadata: d.Metadata.Clone(),
		Version:  d.Version,
	}
	for i, n := range d.Nodes {
		out.Nodes[i] = n.Clone()
	}
	copy(out.Edges, d.Edges)
	return out
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	n.Properties = n.Properties.Clone()
	if n.Size != nil {
		s := *n.Size
		n.Size = &s
	}
	return n
}

// normalize fills the containers a decoded document may have left nil so
// that empty and absent collections compare and serialize identically.
func (d *Diagram) normalize() {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Name == "" {
		d.Name = DefaultName
	}
	if d.Nodes == nil {
		d.Nodes = []Node{}
	}
	if d.Edges == nil {
		d.Edges = []Edge{}
	}
	if d.Metadata == nil {
		d.Metadata = Properties{}
	}
	for i := range d.Nodes {
		if d.Nodes[i].Properties == nil {
			d.Nodes[i].Properties = Properties{}
		}
	}
}

// Equal reports whether n and o describe the same node.
func (n Node) Equal(o Node) bool {
	if n.ID != o.ID || n.Type != o.Type || n.Name != o.Name || n.Position != o.Position {
		return false
	}
	if (n.Size == nil) != (o.Size == nil) || (n.Size != nil && *n.Size != *o.Size) {
		return false
	}
	return n.Properties.Equal(o.Properties)
}

// NodesEqual reports whether a and b hold equal nodes in the same order.
func NodesEqual(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// EdgesEqual reports whether a and b hold equal edges in the same order.
func EdgesEqual(a, b []Edge) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
