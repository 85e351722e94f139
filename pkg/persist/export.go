package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/archboard/pkg/diagram"
	errs "github.com/matzehuels/archboard/pkg/errors"
	"github.com/matzehuels/archboard/pkg/render"
)

// Format identifies an export or import encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
)

// Formats lists every export format.
var Formats = []Format{FormatJSON, FormatYAML, FormatHCL, FormatSVG, FormatPNG}

var contentTypes = map[Format]string{
	FormatJSON: "application/json",
	FormatYAML: "application/yaml",
	FormatHCL:  "text/plain; charset=utf-8",
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
}

// ParseFormat converts a format name, case-insensitively. "yml" is
// accepted for YAML.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "yml" {
		f = FormatYAML
	}
	if _, ok := contentTypes[f]; !ok {
		return "", errs.New(errs.ErrCodeInvalidFormat, "unsupported format %q", s)
	}
	return f, nil
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", errs.New(errs.ErrCodeInvalidFormat, "cannot infer format of %q: no extension", path)
	}
	return ParseFormat(ext)
}

// FileName returns the default download name for f, e.g. "diagram.json".
func (f Format) FileName() string { return "diagram." + string(f) }

// ContentType returns the MIME type of f.
func (f Format) ContentType() string { return contentTypes[f] }

// Artifact is a downloadable export.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

func newArtifact(f Format, data []byte) Artifact {
	return Artifact{Name: f.FileName(), ContentType: f.ContentType(), Data: data}
}

// WriteFile writes the artifact to path, or to Name inside dir when path
// is a directory.
func (a Artifact) WriteFile(path string) (string, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, a.Name)
	}
	if err := os.WriteFile(path, a.Data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Rasterizer renders a diagram to PNG.
type Rasterizer interface {
	RenderPNG(ctx context.Context, d *diagram.Diagram) ([]byte, error)
}

// ExportJSON encodes d as the indented JSON document.
func ExportJSON(d *diagram.Diagram) (Artifact, error) {
	data, err := Marshal(d)
	if err != nil {
		return Artifact{}, err
	}
	return newArtifact(FormatJSON, data), nil
}

// ExportYAML encodes d as YAML with 2-space indentation.
func ExportYAML(d *diagram.Diagram) (Artifact, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return Artifact{}, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return Artifact{}, fmt.Errorf("encode yaml: %w", err)
	}
	return newArtifact(FormatYAML, buf.Bytes()), nil
}

// ExportSVG draws d with Graphviz, nodes pinned at their positions.
func ExportSVG(ctx context.Context, d *diagram.Diagram) (Artifact, error) {
	data, err := render.SVG(ctx, d, render.Options{EdgeTypes: true})
	if err != nil {
		return Artifact{}, err
	}
	return newArtifact(FormatSVG, data), nil
}

// ExportPNG rasterizes d. A nil rasterizer means there is no capture
// target: the export fails with EXPORT_TARGET_ABSENT and callers skip it.
func ExportPNG(ctx context.Context, r Rasterizer, d *diagram.Diagram) (Artifact, error) {
	if r == nil {
		return Artifact{}, errs.New(errs.ErrCodeExportTargetAbsent, "no rasterizer configured")
	}
	data, err := r.RenderPNG(ctx, d)
	if err != nil {
		return Artifact{}, err
	}
	return newArtifact(FormatPNG, data), nil
}

// Export encodes d in format f.
func Export(ctx context.Context, f Format, d *diagram.Diagram, r Rasterizer) (Artifact, error) {
	switch f {
	case FormatJSON:
		return ExportJSON(d)
	case FormatYAML:
		return ExportYAML(d)
	case FormatHCL:
		return ExportHCL(d)
	case FormatSVG:
		return ExportSVG(ctx, d)
	case FormatPNG:
		return ExportPNG(ctx, r, d)
	}
	return Artifact{}, errs.New(errs.ErrCodeInvalidFormat, "unsupported export format %q", f)
}

// Import reads a JSON document. See [Decode] for the accepted shape.
func Import(r io.Reader) (*diagram.Diagram, error) {
	return Decode(r)
}

// ImportYAML reads a YAML document with the same shape as the JSON one.
// It is converted to JSON and decoded with [Unmarshal], so the same shape
// checks and record conversions apply.
func ImportYAML(r io.Reader) (*diagram.Diagram, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeImportParseFailure, err, "parse yaml")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeImportMalformed, err, "convert yaml")
	}
	return Unmarshal(data)
}

// ImportFormat reads a document in format f. Only JSON and YAML can be
// imported.
func ImportFormat(f Format, r io.Reader) (*diagram.Diagram, error) {
	switch f {
	case FormatJSON:
		return Import(r)
	case FormatYAML:
		return ImportYAML(r)
	}
	return nil, errs.New(errs.ErrCodeInvalidFormat, "cannot import %s documents", f)
}

// ImportFile reads a diagram from path, choosing the decoder by extension.
// Files ending in .yaml or .yml are YAML; files without a known extension
// are read as JSON. Export-only formats fail with INVALID_FORMAT.
func ImportFile(path string) (*diagram.Diagram, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		f = FormatJSON
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer file.Close()
	return ImportFormat(f, file)
}
