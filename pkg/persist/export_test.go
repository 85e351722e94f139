package persist

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/archboard/pkg/diagram"
	errs "github.com/matzehuels/archboard/pkg/errors"
)

type stubRasterizer struct {
	data []byte
	err  error
}

func (s stubRasterizer) RenderPNG(context.Context, *diagram.Diagram) ([]byte, error) {
	return s.data, s.err
}

func TestExportJSONArtifact(t *testing.T) {
	art, err := ExportJSON(diagram.NewStarter(""))
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	if art.Name != "diagram.json" || art.ContentType != "application/json" {
		t.Errorf("artifact = %s (%s)", art.Name, art.ContentType)
	}
}

func TestExportPNG(t *testing.T) {
	ctx := context.Background()
	d := diagram.NewStarter("")

	t.Run("no rasterizer", func(t *testing.T) {
		_, err := ExportPNG(ctx, nil, d)
		if !errs.Is(err, errs.ErrCodeExportTargetAbsent) {
			t.Errorf("ExportPNG(nil) = %v, want EXPORT_TARGET_ABSENT", err)
		}
		if !errs.Silent(err) {
			t.Error("missing capture target should be silent")
		}
	})

	t.Run("rasterizer", func(t *testing.T) {
		art, err := ExportPNG(ctx, stubRasterizer{data: []byte("\x89PNG")}, d)
		if err != nil {
			t.Fatalf("ExportPNG: %v", err)
		}
		if art.Name != "diagram.png" || art.ContentType != "image/png" || string(art.Data) != "\x89PNG" {
			t.Errorf("artifact = %+v", art)
		}
	})

	t.Run("rasterizer error", func(t *testing.T) {
		boom := errors.New("boom")
		if _, err := ExportPNG(ctx, stubRasterizer{err: boom}, d); !errors.Is(err, boom) {
			t.Errorf("ExportPNG() = %v, want boom", err)
		}
	})
}

func TestYAMLRoundTrip(t *testing.T) {
	d := richDiagram()
	art, err := ExportYAML(d)
	if err != nil {
		t.Fatalf("ExportYAML: %v", err)
	}
	if art.Name != "diagram.yaml" {
		t.Errorf("Name = %s", art.Name)
	}
	if !strings.Contains(string(art.Data), "\n  - id: svc\n") {
		t.Errorf("unexpected yaml layout:\n%s", art.Data)
	}

	got, err := ImportYAML(bytes.NewReader(art.Data))
	if err != nil {
		t.Fatalf("ImportYAML: %v", err)
	}
	if !diagram.NodesEqual(got.Nodes, d.Nodes) || !diagram.EdgesEqual(got.Edges, d.Edges) {
		t.Errorf("yaml round trip mismatch:\n got %+v\nwant %+v", got.Nodes, d.Nodes)
	}
}

func TestImportYAMLErrors(t *testing.T) {
	if _, err := ImportYAML(strings.NewReader("nodes: [\n")); !errs.Is(err, errs.ErrCodeImportParseFailure) {
		t.Errorf("bad yaml = %v, want IMPORT_PARSE_FAILURE", err)
	}
	if _, err := ImportYAML(strings.NewReader("nodes: 3\nedges: []\n")); !errs.Is(err, errs.ErrCodeImportMalformed) {
		t.Errorf("scalar nodes = %v, want IMPORT_MALFORMED", err)
	}
}

func TestExportHCL(t *testing.T) {
	art, err := ExportHCL(richDiagram())
	if err != nil {
		t.Fatalf("ExportHCL: %v", err)
	}
	out := string(art.Data)
	for _, want := range []string{
		`diagram "Checkout" {`,
		`node "svc" {`,
		`type     = "external"`,
		`edge "e-svc-q" {`,
		`label = "order placed"`,
		`async = true`,
		`replicas = 3`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("HCL output missing %q:\n%s", want, out)
		}
	}
	if art.Name != "diagram.hcl" {
		t.Errorf("Name = %s", art.Name)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{" png ", FormatPNG, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
		if tt.wantErr && !errs.Is(err, errs.ErrCodeInvalidFormat) {
			t.Errorf("ParseFormat(%q) error code = %v", tt.in, errs.GetCode(err))
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	if f, err := FormatFromPath("out/arch.svg"); err != nil || f != FormatSVG {
		t.Errorf("FormatFromPath(svg) = %q, %v", f, err)
	}
	if _, err := FormatFromPath("diagram"); err == nil {
		t.Error("FormatFromPath without extension should fail")
	}
}

func TestExportDispatch(t *testing.T) {
	ctx := context.Background()
	d := diagram.NewStarter("")
	for _, f := range []Format{FormatJSON, FormatYAML, FormatHCL} {
		art, err := Export(ctx, f, d, nil)
		if err != nil {
			t.Errorf("Export(%s): %v", f, err)
			continue
		}
		if art.Name != f.FileName() || len(art.Data) == 0 {
			t.Errorf("Export(%s) = %+v", f, art)
		}
	}
	if _, err := Export(ctx, "pdf", d, nil); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("Export(pdf) = %v", err)
	}
}

func TestImportFile(t *testing.T) {
	dir := t.TempDir()
	d := richDiagram()

	jsonArt, _ := ExportJSON(d)
	jsonPath, err := jsonArt.WriteFile(dir)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if filepath.Base(jsonPath) != "diagram.json" {
		t.Errorf("WriteFile(dir) path = %s", jsonPath)
	}

	yamlArt, _ := ExportYAML(d)
	yamlPath := filepath.Join(dir, "arch.yml")
	if _, err := yamlArt.WriteFile(yamlPath); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	for _, p := range []string{jsonPath, yamlPath} {
		got, err := ImportFile(p)
		if err != nil {
			t.Fatalf("ImportFile(%s): %v", p, err)
		}
		if !diagram.NodesEqual(got.Nodes, d.Nodes) {
			t.Errorf("ImportFile(%s) nodes differ", p)
		}
	}

	png := filepath.Join(dir, "x.png")
	os.WriteFile(png, []byte("x"), 0644)
	if _, err := ImportFile(png); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("ImportFile(png) = %v, want INVALID_FORMAT", err)
	}
	if _, err := ImportFile(filepath.Join(dir, "missing.json")); !errs.Is(err, errs.ErrCodeInvalidPath) {
		t.Errorf("ImportFile(missing) = %v, want INVALID_PATH", err)
	}

	// unknown and missing extensions are read as JSON
	data, _ := os.ReadFile(jsonPath)
	for _, name := range []string{"diagram.txt", "diagram"} {
		p := filepath.Join(dir, name)
		os.WriteFile(p, data, 0o644)
		got, err := ImportFile(p)
		if err != nil {
			t.Fatalf("ImportFile(%s): %v", name, err)
		}
		if !diagram.EdgesEqual(got.Edges, d.Edges) {
			t.Errorf("ImportFile(%s) edges differ", name)
		}
	}
}
