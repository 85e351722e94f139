package persist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/archboard/pkg/diagram"
	errs "github.com/matzehuels/archboard/pkg/errors"
)

// legacyNodeType is the node type the canvas library assigns to every box.
const legacyNodeType = "box"

// wireDiagram is the decoding shape. It accepts both the current document
// format and the canvas library's node and edge records.
type wireDiagram struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Nodes    []wireNode         `json:"nodes"`
	Edges    []wireEdge         `json:"edges"`
	Metadata diagram.Properties `json:"metadata"`
	Version  int                `json:"version"`
}

type wireNode struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Name       string             `json:"name"`
	Properties diagram.Properties `json:"properties"`
	Position   diagram.Position   `json:"position"`
	Size       *diagram.Size      `json:"size"`

	// Canvas library fields.
	Data   *legacyData `json:"data"`
	Width  *float64    `json:"width"`
	Height *float64    `json:"height"`
}

type legacyData struct {
	Label *string `json:"label"`
	Kind  string  `json:"kind"`
}

type wireEdge struct {
	ID           string `json:"id"`
	From         string `json:"from"`
	To           string `json:"to"`
	Type         string `json:"type"`
	Label        string `json:"label"`
	SourceHandle string `json:"sourceHandle"`
	TargetHandle string `json:"targetHandle"`

	// Canvas library fields.
	Source string `json:"source"`
	Target string `json:"target"`
}

// Encode writes d to w as indented JSON.
func Encode(w io.Writer, d *diagram.Diagram) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal returns the indented JSON encoding of d.
func Marshal(d *diagram.Diagram) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a diagram document from r.
//
// Invalid JSON fails with IMPORT_PARSE_FAILURE. A document that is not an
// object, lacks array-typed "nodes" and "edges" members, or has members of
// the wrong shape fails with IMPORT_MALFORMED. A version that cannot be
// migrated fails with UNSUPPORTED_VERSION. Decode does not close r.
func Decode(r io.Reader) (*diagram.Diagram, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeImportParseFailure, err, "read document")
	}
	return Unmarshal(data)
}

// Unmarshal decodes a diagram document held in memory. See [Decode].
func Unmarshal(data []byte) (*diagram.Diagram, error) {
	if !json.Valid(data) {
		return nil, errs.New(errs.ErrCodeImportParseFailure, "document is not valid JSON")
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return nil, errs.New(errs.ErrCodeImportMalformed, "document is not a JSON object")
	}
	for _, key := range []string{"nodes", "edges"} {
		if !isArray(top[key]) {
			return nil, errs.New(errs.ErrCodeImportMalformed, "%q is not an array", key)
		}
	}

	var w wireDiagram
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errs.Wrap(errs.ErrCodeImportMalformed, err, "decode document")
	}

	d := &diagram.Diagram{
		ID:       w.ID,
		Name:     w.Name,
		Nodes:    make([]diagram.Node, len(w.Nodes)),
		Edges:    make([]diagram.Edge, len(w.Edges)),
		Metadata: w.Metadata,
		Version:  w.Version,
	}
	for i, n := range w.Nodes {
		d.Nodes[i] = n.node()
	}
	for i, e := range w.Edges {
		d.Edges[i] = e.edge()
	}

	if err := diagram.Migrate(d); err != nil {
		return nil, err
	}
	return d, nil
}

// isArray reports whether raw holds a JSON array.
func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// node converts a decoded record, unpacking canvas library fields.
func (n wireNode) node() diagram.Node {
	out := diagram.Node{
		ID:         n.ID,
		Type:       diagram.NodeType(n.Type),
		Name:       n.Name,
		Properties: n.Properties,
		Position:   n.Position,
		Size:       n.Size,
	}
	if n.Type == legacyNodeType || (n.Type == "" && n.Data != nil) {
		out.Type = diagram.NodeService
		if n.Data != nil {
			if t, err := diagram.ParseNodeType(n.Data.Kind); err == nil {
				out.Type = t
			}
		}
		out.Name = out.Type.Label()
	}
	if n.Data != nil && n.Data.Label != nil && n.Name == "" {
		out.Name = *n.Data.Label
	}
	if out.Size == nil && n.Width != nil && n.Height != nil {
		out.Size = &diagram.Size{W: *n.Width, H: *n.Height}
	}
	return out
}

// edge converts a decoded record, unpacking canvas library fields.
func (e wireEdge) edge() diagram.Edge {
	out := diagram.Edge{
		ID:           e.ID,
		From:         e.From,
		To:           e.To,
		Type:         diagram.EdgeType(e.Type),
		Label:        e.Label,
		SourceHandle: e.SourceHandle,
		TargetHandle: e.TargetHandle,
	}
	if out.From == "" {
		out.From = e.Source
	}
	if out.To == "" {
		out.To = e.Target
	}
	if out.Type == "" {
		out.Type = diagram.DefaultEdgeType
	}
	if out.ID == "" {
		out.ID = EdgeID(out.From, out.SourceHandle, out.To, out.TargetHandle)
	}
	return out
}

// EdgeID returns the identifier of the edge drawn between the given
// endpoints and anchors.
func EdgeID(source, sourceHandle, target, targetHandle string) string {
	return "e-" + source + sourceHandle + "-" + target + targetHandle
}
