package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/archboard/pkg/diagram"
)

func sample() *diagram.Diagram {
	d := diagram.NewStarter("sample")
	d.Nodes = append(d.Nodes, diagram.Node{
		ID: "w", Type: diagram.NodeWorker, Name: "Billing worker",
		Position: diagram.Position{X: 500, Y: 40},
		Size:     &diagram.Size{W: 200, H: 60},
	})
	d.Edges = []diagram.Edge{
		{ID: "e1", From: "svc", To: "db", Type: diagram.EdgeRead},
		{ID: "e2", From: "svc", To: "q", Type: diagram.EdgePublish, Label: "orders"},
		{ID: "e3", From: "svc", To: "ghost", Type: diagram.EdgeREST},
	}
	return d
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(sample(), Options{})

	if !strings.Contains(dot, "digraph G") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	for _, id := range []string{`"svc"`, `"db"`, `"ext"`, `"q"`, `"w"`} {
		if !strings.Contains(dot, id) {
			t.Errorf("ToDOT() output missing node %s", id)
		}
	}
	if !strings.Contains(dot, `"svc" -> "db"`) {
		t.Error("ToDOT() output missing edge")
	}
	if strings.Contains(dot, `"ghost"`) {
		t.Error("ToDOT() should skip dangling edges")
	}
}

func TestToDOT_Pinned(t *testing.T) {
	dot := ToDOT(sample(), Options{})
	// svc at (220,120) with default 150x44 extent: centre (295, -142).
	if !strings.Contains(dot, `pos="295.0,-142.0!"`) {
		t.Errorf("ToDOT() missing pinned svc position:\n%s", dot)
	}
	// w at (500,40) with recorded 200x60 extent: centre (600, -70).
	if !strings.Contains(dot, `pos="600.0,-70.0!"`) {
		t.Errorf("ToDOT() missing pinned worker position:\n%s", dot)
	}

	free := ToDOT(sample(), Options{Free: true})
	if strings.Contains(free, "pos=") {
		t.Error("ToDOT(Free) should not pin positions")
	}
}

func TestToDOT_Styles(t *testing.T) {
	dot := ToDOT(sample(), Options{})
	if !strings.Contains(dot, `fillcolor="#E8F5E9"`) {
		t.Error("ToDOT() missing database fill colour")
	}
	if !strings.Contains(dot, `"w" [label="Billing worker"`) {
		t.Error("ToDOT() missing worker label")
	}
	if !strings.Contains(dot, `style="rounded,filled,dashed"`) {
		t.Error("ToDOT() worker missing dashed style")
	}
	if !strings.Contains(dot, `"svc" -> "q" [label="orders", style=dashed]`) {
		t.Errorf("ToDOT() async edge should be dashed and labelled:\n%s", dot)
	}
	if !strings.Contains(dot, `"svc" -> "db";`) {
		t.Error("ToDOT() sync edge without label should have no attributes")
	}
}

func TestToDOT_EdgeTypes(t *testing.T) {
	dot := ToDOT(sample(), Options{EdgeTypes: true})
	if !strings.Contains(dot, `"svc" -> "db" [label="read"]`) {
		t.Errorf("ToDOT(EdgeTypes) should label edges with their type:\n%s", dot)
	}
}

func TestStyleFor(t *testing.T) {
	for _, kind := range diagram.NodeTypes {
		if s := StyleFor(kind); s == fallbackStyle {
			t.Errorf("StyleFor(%s) returned fallback style", kind)
		}
	}
	if StyleFor("lambda") != fallbackStyle {
		t.Error("StyleFor(unknown) should return fallback style")
	}
	if !StyleFor(diagram.NodeWorker).Dashed {
		t.Error("workers should be dashed")
	}
}

func TestNodeSize(t *testing.T) {
	if got := NodeSize(diagram.Node{}); got.W != DefaultNodeWidth || got.H != DefaultNodeHeight {
		t.Errorf("NodeSize(no size) = %+v", got)
	}
	if got := NodeSize(diagram.Node{Size: &diagram.Size{W: 0, H: 10}}); got.W != DefaultNodeWidth {
		t.Errorf("NodeSize(zero width) = %+v, want default", got)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := normalizeViewBox(in)
	if !bytes.Contains(out, []byte(`width="100" height="50"`)) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg></svg>")); string(got) != "<svg></svg>" {
		t.Errorf("normalizeViewBox() without viewBox changed input: %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := SVG(context.Background(), sample(), Options{})
	if err != nil {
		t.Fatalf("SVG() error: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("SVG() output is not an SVG document")
	}
	if !bytes.Contains(svg, []byte("Billing worker")) {
		t.Error("SVG() output missing node label")
	}
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RenderSVG(ctx, ToDOT(sample(), Options{}), EngineNeato); err == nil {
		t.Error("RenderSVG() with cancelled context should fail")
	}
}

func TestEngineFor(t *testing.T) {
	if EngineFor(Options{}) != EngineNeato {
		t.Error("pinned diagrams should use neato")
	}
	if EngineFor(Options{Free: true}) != EngineDot {
		t.Error("free diagrams should use dot")
	}
}
