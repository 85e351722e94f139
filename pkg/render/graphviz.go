package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/archboard/pkg/diagram"
)

// Engine selects the Graphviz layout engine.
type Engine string

const (
	// EngineNeato honours pinned node positions.
	EngineNeato Engine = "neato"
	// EngineDot computes a layered layout; pair it with Options.Free.
	EngineDot Engine = "dot"
)

func (e Engine) layout() graphviz.Layout {
	if e == EngineDot {
		return graphviz.DOT
	}
	return graphviz.NEATO
}

// EngineFor returns the engine matching opts.
func EngineFor(opts Options) Engine {
	if opts.Free {
		return EngineDot
	}
	return EngineNeato
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(ctx context.Context, dot string, engine Engine) ([]byte, error) {
	out, err := renderDOT(ctx, dot, engine, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders DOT source to PNG.
func RenderPNG(ctx context.Context, dot string, engine Engine) ([]byte, error) {
	return renderDOT(ctx, dot, engine, graphviz.PNG)
}

func renderDOT(ctx context.Context, dot string, engine Engine, format graphviz.Format) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(engine.layout())

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="(-?[0-9.]+)\s+(-?[0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one
// whose width and height match the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}

// GraphvizRasterizer renders PNG snapshots through Graphviz.
type GraphvizRasterizer struct {
	Options Options
}

// RenderPNG draws d as a PNG image.
func (r GraphvizRasterizer) RenderPNG(ctx context.Context, d *diagram.Diagram) ([]byte, error) {
	return RenderPNG(ctx, ToDOT(d, r.Options), EngineFor(r.Options))
}

// SVG draws d as an SVG document.
func SVG(ctx context.Context, d *diagram.Diagram, opts Options) ([]byte, error) {
	return RenderSVG(ctx, ToDOT(d, opts), EngineFor(opts))
}
