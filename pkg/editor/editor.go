package editor

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/archboard/pkg/diagram"
	errs "github.com/matzehuels/archboard/pkg/errors"
	"github.com/matzehuels/archboard/pkg/idgen"
	"github.com/matzehuels/archboard/pkg/observability"
	"github.com/matzehuels/archboard/pkg/persist"
)

// maxIDAttempts bounds how often AddNode regenerates a colliding id.
const maxIDAttempts = 8

// Saver persists the diagram after each change. *persist.Adapter
// implements it.
type Saver interface {
	Save(ctx context.Context, d *diagram.Diagram) error
}

// Options configures an Editor. Zero values select defaults.
type Options struct {
	// Generator produces node ids and positions; defaults to idgen.NewRandom().
	Generator idgen.Generator

	// Saver receives autosaves; nil disables autosave.
	Saver Saver

	// Rasterizer draws PNG exports; nil makes PNG export a no-op.
	Rasterizer persist.Rasterizer

	Logger *log.Logger
}

// Editor is the selection and mutation controller for one diagram.
// It is safe for concurrent use.
type Editor struct {
	mu            sync.Mutex
	doc           *diagram.Diagram
	selectedNodes map[string]bool
	selectedEdges map[string]bool
	active        string

	gen    idgen.Generator
	saver  Saver
	raster persist.Rasterizer
	logger *log.Logger

	busy atomic.Bool
}

// New creates an editor for d, which the editor takes ownership of. A nil
// diagram starts from the starter set.
func New(d *diagram.Diagram, opts Options) *Editor {
	if d == nil {
		d = diagram.NewStarter("")
	}
	if opts.Generator == nil {
		opts.Generator = idgen.NewRandom()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Editor{
		doc:           d,
		selectedNodes: make(map[string]bool),
		selectedEdges: make(map[string]bool),
		gen:           opts.Generator,
		saver:         opts.Saver,
		raster:        opts.Rasterizer,
		logger:        opts.Logger,
	}
}

// Open loads the stored diagram through a and returns an editor that
// autosaves back to it. opts.Saver is replaced by a.
func Open(ctx context.Context, a *persist.Adapter, opts Options) (*Editor, persist.LoadResult) {
	res := a.Load(ctx)
	opts.Saver = a
	return New(res.Diagram, opts), res
}

// =============================================================================
// Queries
// =============================================================================

// Snapshot returns a deep copy of the diagram.
func (e *Editor) Snapshot() *diagram.Diagram {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

// Nodes returns a copy of the node collection.
func (e *Editor) Nodes() []diagram.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]diagram.Node, len(e.doc.Nodes))
	for i, n := range e.doc.Nodes {
		out[i] = n.Clone()
	}
	return out
}

// Edges returns a copy of the edge collection.
func (e *Editor) Edges() []diagram.Edge {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.doc.Edges)
}

// Selected returns the active node, for the inspector.
func (e *Editor) Selected() (diagram.Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == "" {
		return diagram.Node{}, false
	}
	n := e.doc.NodeByID(e.active)
	if n == nil {
		return diagram.Node{}, false
	}
	return n.Clone(), true
}

// SelectedID returns the active node id, or "" when nothing is selected.
func (e *Editor) SelectedID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Selection returns the flagged node and edge ids in collection order.
func (e *Editor) Selection() (nodeIDs, edgeIDs []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, n := range e.doc.Nodes {
		if e.selectedNodes[n.ID] {
			nodeIDs = append(nodeIDs, n.ID)
		}
	}
	for _, ed := range e.doc.Edges {
		if e.selectedEdges[ed.ID] {
			edgeIDs = append(edgeIDs, ed.ID)
		}
	}
	return nodeIDs, edgeIDs
}

// =============================================================================
// Mutations
// =============================================================================

// AddNode appends a node of the given kind with a generated id, a
// generated position and the kind's default label.
func (e *Editor) AddNode(ctx context.Context, kind diagram.NodeType) (diagram.Node, error) {
	if !kind.Valid() {
		return diagram.Node{}, errs.New(errs.ErrCodeInvalidInput, "unknown node kind %q", kind)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	id := ""
	for range maxIDAttempts {
		candidate := e.gen.NodeID(kind)
		if e.doc.NodeByID(candidate) == nil {
			id = candidate
			break
		}
		e.logger.Debug("node id collision, regenerating", "id", candidate)
	}
	if id == "" {
		return diagram.Node{}, errs.New(errs.ErrCodeIDCollision, "no free %s id after %d attempts", kind, maxIDAttempts)
	}

	n := diagram.Node{
		ID:         id,
		Type:       kind,
		Name:       kind.Label(),
		Properties: diagram.Properties{},
		Position:   e.gen.Position(),
	}
	e.doc.Nodes = append(e.doc.Nodes, n)
	e.changed(ctx, "add_node")
	return n.Clone(), nil
}

// Connection is a proposed edge from the canvas.
type Connection struct {
	Source       string           `json:"source"`
	Target       string           `json:"target"`
	SourceHandle string           `json:"sourceHandle,omitempty"`
	TargetHandle string           `json:"targetHandle,omitempty"`
	Type         diagram.EdgeType `json:"type,omitempty"`
	Label        string           `json:"label,omitempty"`
}

// Connect appends an edge for c. Both endpoints must exist and differ.
// The type defaults to rest. Drawing the same connection twice returns the
// existing edge.
func (e *Editor) Connect(ctx context.Context, c Connection) (diagram.Edge, error) {
	if c.Type == "" {
		c.Type = diagram.DefaultEdgeType
	}
	if !c.Type.Valid() {
		return diagram.Edge{}, errs.New(errs.ErrCodeInvalidInput, "unknown edge type %q", c.Type)
	}
	if c.Source == c.Target {
		return diagram.Edge{}, errs.New(errs.ErrCodeInvalidEndpoint, "cannot connect %q to itself", c.Source)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range []string{c.Source, c.Target} {
		if e.doc.NodeByID(id) == nil {
			return diagram.Edge{}, errs.New(errs.ErrCodeInvalidEndpoint, "node not found: %q", id)
		}
	}

	edge := diagram.Edge{
		ID:           persist.EdgeID(c.Source, c.SourceHandle, c.Target, c.TargetHandle),
		From:         c.Source,
		To:           c.Target,
		Type:         c.Type,
		Label:        c.Label,
		SourceHandle: c.SourceHandle,
		TargetHandle: c.TargetHandle,
	}
	if existing := e.doc.EdgeByID(edge.ID); existing != nil {
		return *existing, nil
	}
	e.doc.Edges = append(e.doc.Edges, edge)
	e.changed(ctx, "connect")
	return edge, nil
}

// DeleteSelected removes every flagged node and edge, along with edges
// left dangling by the removed nodes, and clears the selection. With
// nothing flagged it does nothing.
func (e *Editor) DeleteSelected(ctx context.Context) (nodes, edges int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.selectedNodes) == 0 && len(e.selectedEdges) == 0 {
		return 0, 0
	}

	nodes, edges = e.removeLocked(e.selectedNodes, e.selectedEdges)
	clear(e.selectedNodes)
	clear(e.selectedEdges)
	e.active = ""
	if nodes > 0 || edges > 0 {
		e.changed(ctx, "delete_selected")
	}
	return nodes, edges
}

// removeLocked drops the given nodes and edges plus edges whose endpoints
// were removed. It reports how many of each were dropped.
func (e *Editor) removeLocked(nodeIDs, edgeIDs map[string]bool) (nodes, edges int) {
	before := len(e.doc.Nodes)
	e.doc.Nodes = slices.DeleteFunc(e.doc.Nodes, func(n diagram.Node) bool {
		return nodeIDs[n.ID]
	})
	nodes = before - len(e.doc.Nodes)

	before = len(e.doc.Edges)
	e.doc.Edges = slices.DeleteFunc(e.doc.Edges, func(ed diagram.Edge) bool {
		return edgeIDs[ed.ID] || nodeIDs[ed.From] || nodeIDs[ed.To]
	})
	edges = before - len(e.doc.Edges)

	for id := range nodeIDs {
		delete(e.selectedNodes, id)
		if e.active == id {
			e.active = ""
		}
	}
	for id := range edgeIDs {
		delete(e.selectedEdges, id)
	}
	return nodes, edges
}

// SelectionChanged flags exactly the reported nodes and makes the first
// one active, or clears the node selection when none is reported. Ids not
// in the diagram are skipped; edge flags are kept.
func (e *Editor) SelectionChanged(nodeIDs []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flagNodesLocked(nodeIDs)
	e.activateLocked(nodeIDs)
}

func (e *Editor) flagNodesLocked(nodeIDs []string) {
	clear(e.selectedNodes)
	for _, id := range nodeIDs {
		if e.doc.NodeByID(id) != nil {
			e.selectedNodes[id] = true
		}
	}
}

func (e *Editor) activateLocked(nodeIDs []string) {
	e.active = ""
	for _, id := range nodeIDs {
		if e.doc.NodeByID(id) != nil {
			e.active = id
			return
		}
	}
}

// Select flags exactly the given nodes and edges as selected and makes the
// first node active.
func (e *Editor) Select(nodeIDs, edgeIDs []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.flagNodesLocked(nodeIDs)
	clear(e.selectedEdges)
	for _, id := range edgeIDs {
		if e.doc.EdgeByID(id) != nil {
			e.selectedEdges[id] = true
		}
	}
	e.activateLocked(nodeIDs)
}

// Relabel renames the node if it is the active selection. Any string is
// accepted, including the empty one. It reports whether the name changed.
func (e *Editor) Relabel(ctx context.Context, nodeID, label string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == "" || nodeID != e.active {
		return false
	}
	n := e.doc.NodeByID(nodeID)
	if n == nil {
		return false
	}
	if n.Name == label {
		return false
	}
	n.Name = label
	e.changed(ctx, "relabel")
	return true
}

// Reset replaces the nodes with the starter set, clears the edges and
// clears the selection. The diagram keeps its id, name and metadata.
func (e *Editor) Reset(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.doc.Nodes = diagram.StarterNodes()
	e.doc.Edges = []diagram.Edge{}
	clear(e.selectedNodes)
	clear(e.selectedEdges)
	e.active = ""
	e.changed(ctx, "reset")
}

// Replace swaps in d wholesale and clears the selection.
func (e *Editor) Replace(ctx context.Context, d *diagram.Diagram) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replaceLocked(ctx, d)
}

func (e *Editor) replaceLocked(ctx context.Context, d *diagram.Diagram) {
	e.doc = d
	clear(e.selectedNodes)
	clear(e.selectedEdges)
	e.active = ""
	e.changed(ctx, "replace")
}

// changed autosaves and emits a mutation event. Callers hold e.mu.
func (e *Editor) changed(ctx context.Context, op string) {
	observability.Editor().OnMutation(ctx, op, len(e.doc.Nodes), len(e.doc.Edges))
	if e.saver == nil {
		return
	}
	if err := e.saver.Save(ctx, e.doc); err != nil {
		e.logger.Warn("autosave failed", "op", op, "err", err)
		return
	}
	e.logger.Debug("autosaved", "op", op, "nodes", len(e.doc.Nodes), "edges", len(e.doc.Edges))
}
