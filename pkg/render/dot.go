package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/archboard/pkg/diagram"
)

// pointsPerInch converts canvas pixels to Graphviz inches.
const pointsPerInch = 72.0

// Options configures DOT generation.
type Options struct {
	// Free lets Graphviz place nodes itself instead of pinning them at
	// their canvas positions. Use with [EngineDot].
	Free bool

	// EdgeTypes labels unlabeled edges with their connection type.
	EdgeTypes bool
}

// ToDOT converts a diagram to Graphviz DOT.
//
// Node positions are the top-left corners reported by the canvas; Graphviz
// positions node centres with the y axis pointing up, so each pin is
// shifted by half the node size and mirrored.
func ToDOT(d *diagram.Diagram, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", Background)
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  overlap=false;\n")
	if opts.Free {
		buf.WriteString("  rankdir=LR;\n")
	}
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=12, fontcolor=%q, penwidth=1.5];\n", TextColor)
	fmt.Fprintf(&buf, "  edge [color=%q, fontname=\"Helvetica\", fontsize=10, fontcolor=%q, arrowsize=0.7];\n", EdgeColor, EdgeColor)
	buf.WriteString("\n")

	known := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		known[n.ID] = true
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		// Dangling edges are kept in the document but never drawn.
		if !known[e.From] || !known[e.To] {
			continue
		}
		attrs := edgeAttrs(e, opts)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n diagram.Node, opts Options) []string {
	s := StyleFor(n.Type)
	size := NodeSize(n)
	attrs := []string{
		fmt.Sprintf("label=%q", n.Name),
		fmt.Sprintf("fillcolor=%q", s.Fill),
		fmt.Sprintf("color=%q", s.Border),
		fmt.Sprintf("width=%.2f", size.W/pointsPerInch),
		fmt.Sprintf("height=%.2f", size.H/pointsPerInch),
	}
	if s.Dashed {
		attrs = append(attrs, `style="rounded,filled,dashed"`)
	}
	if !opts.Free {
		cx := n.Position.X + size.W/2
		cy := -(n.Position.Y + size.H/2)
		attrs = append(attrs, fmt.Sprintf("pos=\"%.1f,%.1f!\"", cx, cy))
	}
	return attrs
}

func edgeAttrs(e diagram.Edge, opts Options) []string {
	var attrs []string
	switch {
	case e.Label != "":
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	case opts.EdgeTypes && e.Type != "":
		attrs = append(attrs, fmt.Sprintf("label=%q", string(e.Type)))
	}
	if e.IsAsync() {
		attrs = append(attrs, "style=dashed")
	}
	return attrs
}
