package editor

import (
	"context"
	"io"
	"time"

	"github.com/matzehuels/archboard/pkg/diagram"
	errs "github.com/matzehuels/archboard/pkg/errors"
	"github.com/matzehuels/archboard/pkg/observability"
	"github.com/matzehuels/archboard/pkg/persist"
)

// Busy reports whether an import or export is in flight.
func (e *Editor) Busy() bool { return e.busy.Load() }

func (e *Editor) acquire() error {
	if !e.busy.CompareAndSwap(false, true) {
		return errs.New(errs.ErrCodeBusy, "an import or export is already in progress")
	}
	return nil
}

// Import replaces the diagram with the JSON document read from r and
// clears the selection. Malformed input, unparseable input or a busy
// editor leave the state unchanged; the failure is logged and reported as
// false.
func (e *Editor) Import(ctx context.Context, r io.Reader) bool {
	ok, _ := e.importWith(ctx, func() (*diagram.Diagram, error) { return persist.Import(r) })
	return ok
}

// ImportFormat is Import for any decodable format.
func (e *Editor) ImportFormat(ctx context.Context, f persist.Format, r io.Reader) bool {
	ok, _ := e.importWith(ctx, func() (*diagram.Diagram, error) { return persist.ImportFormat(f, r) })
	return ok
}

// ImportFile is Import for the file at path, decoded by its extension.
// Documents that are not diagrams are ignored as in Import and reported
// as false with a nil error. A missing file, a format that cannot be
// imported or a busy editor are returned as errors.
func (e *Editor) ImportFile(ctx context.Context, path string) (bool, error) {
	return e.importWith(ctx, func() (*diagram.Diagram, error) { return persist.ImportFile(path) })
}

// importWith replaces the diagram with the decoded one. Failures in the
// silent taxonomy yield (false, nil); all others are returned.
func (e *Editor) importWith(ctx context.Context, decode func() (*diagram.Diagram, error)) (bool, error) {
	if err := e.acquire(); err != nil {
		e.logger.Debug("import ignored", "err", err)
		return false, err
	}
	defer e.busy.Store(false)

	d, err := decode()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		e.logger.Debug("import ignored", "code", errs.GetCode(err), "err", err)
		if errs.Silent(err) {
			return false, nil
		}
		return false, err
	}

	e.Replace(ctx, d)
	e.logger.Info("imported diagram", "nodes", len(d.Nodes), "edges", len(d.Edges))
	return true, nil
}

// ExportJSON returns the diagram as the indented JSON document.
func (e *Editor) ExportJSON(ctx context.Context) (persist.Artifact, error) {
	a, _, err := e.Export(ctx, persist.FormatJSON)
	return a, err
}

// ExportYAML returns the diagram as YAML.
func (e *Editor) ExportYAML(ctx context.Context) (persist.Artifact, error) {
	a, _, err := e.Export(ctx, persist.FormatYAML)
	return a, err
}

// ExportHCL returns the diagram as HCL blocks.
func (e *Editor) ExportHCL(ctx context.Context) (persist.Artifact, error) {
	a, _, err := e.Export(ctx, persist.FormatHCL)
	return a, err
}

// ExportSVG returns a Graphviz drawing of the diagram.
func (e *Editor) ExportSVG(ctx context.Context) (persist.Artifact, error) {
	a, _, err := e.Export(ctx, persist.FormatSVG)
	return a, err
}

// ExportPNG rasterizes the diagram. Without a rasterizer there is nothing
// to capture and it returns ok == false with no error.
func (e *Editor) ExportPNG(ctx context.Context) (a persist.Artifact, ok bool, err error) {
	return e.Export(ctx, persist.FormatPNG)
}

type exportResult struct {
	artifact persist.Artifact
	err      error
}

// Export encodes a snapshot of the diagram in format f. Only one export
// or import runs at a time; a concurrent call fails with BUSY. When ctx is
// cancelled Export returns ctx.Err() at once and the editor stays busy
// until the abandoned render finishes.
func (e *Editor) Export(ctx context.Context, f persist.Format) (persist.Artifact, bool, error) {
	if err := e.acquire(); err != nil {
		return persist.Artifact{}, false, err
	}
	snap := e.Snapshot()

	done := make(chan exportResult, 1)
	start := time.Now()
	go func() {
		a, err := persist.Export(ctx, f, snap, e.raster)
		observability.Editor().OnExport(ctx, string(f), time.Since(start), err)
		e.busy.Store(false)
		done <- exportResult{a, err}
	}()

	select {
	case <-ctx.Done():
		return persist.Artifact{}, false, ctx.Err()
	case r := <-done:
		if errs.Is(r.err, errs.ErrCodeExportTargetAbsent) {
			e.logger.Debug("export skipped", "format", f, "err", r.err)
			return persist.Artifact{}, false, nil
		}
		if r.err != nil {
			return persist.Artifact{}, false, r.err
		}
		e.logger.Debug("exported diagram", "format", f, "bytes", len(r.artifact.Data), "duration", time.Since(start))
		return r.artifact, true, nil
	}
}
