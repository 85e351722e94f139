// Package render draws diagrams as images.
//
// # Overview
//
// Diagrams carry their own canvas positions, so rendering never computes a
// layout: [ToDOT] emits Graphviz DOT with every node pinned where the
// editor placed it, and Graphviz's neato engine only routes the edges.
// Nodes are coloured by kind using the editor palette ([StyleFor]);
// workers are drawn dashed, as are asynchronous edges.
//
//	dot := render.ToDOT(d, render.Options{EdgeTypes: true})
//	svg, err := render.RenderSVG(ctx, dot, render.EngineNeato)
//
// # Rasterizers
//
// [GraphvizRasterizer] produces PNG snapshots through Graphviz. The
// [canvas] subpackage draws them directly with a 2D vector library and
// matches the browser canvas more closely; it is the default.
//
// [canvas]: github.com/matzehuels/archboard/pkg/render/canvas
package render
