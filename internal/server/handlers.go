package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/archboard/pkg/buildinfo"
	"github.com/matzehuels/archboard/pkg/diagram"
	"github.com/matzehuels/archboard/pkg/editor"
	errs "github.com/matzehuels/archboard/pkg/errors"
	"github.com/matzehuels/archboard/pkg/persist"
)

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error string    `json:"error"`
	Code  errs.Code `json:"code"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errs.Code) int {
	switch code {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidEndpoint, errs.ErrCodeInvalidFormat,
		errs.ErrCodeInvalidPath, errs.ErrCodeUnsupportedVersion,
		errs.ErrCodeImportMalformed, errs.ErrCodeImportParseFailure:
		return http.StatusBadRequest
	case errs.ErrCodeNotFound:
		return http.StatusNotFound
	case errs.ErrCodeBusy:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorResponse{Error: errs.UserMessage(err), Code: code})
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid request body: %v", err)
	}
	return nil
}

// =============================================================================
// Queries
// =============================================================================

type healthResponse struct {
	Status string         `json:"status"`
	Busy   bool           `json:"busy"`
	Build  buildinfo.Info `json:"build"`
}

// handleHealth reports liveness and whether an import or export is running.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Busy: s.Editor.Busy(), Build: buildinfo.Get()})
}

type kindInfo struct {
	Type  diagram.NodeType `json:"type"`
	Label string           `json:"label"`
}

type edgeTypeInfo struct {
	Type  diagram.EdgeType `json:"type"`
	Async bool             `json:"async"`
}

type kindsResponse struct {
	Nodes []kindInfo     `json:"nodes"`
	Edges []edgeTypeInfo `json:"edges"`
}

func (s *Server) handleKinds(w http.ResponseWriter, _ *http.Request) {
	var resp kindsResponse
	for _, t := range diagram.NodeTypes {
		resp.Nodes = append(resp.Nodes, kindInfo{Type: t, Label: t.Label()})
	}
	for _, t := range diagram.EdgeTypes {
		resp.Edges = append(resp.Edges, edgeTypeInfo{Type: t, Async: t.IsAsync()})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDiagram(w http.ResponseWriter, _ *http.Request) {
	data, err := persist.Marshal(s.Editor.Snapshot())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

type selectionResponse struct {
	Nodes  []string `json:"nodes"`
	Edges  []string `json:"edges"`
	Active string   `json:"active,omitempty"`
}

func (s *Server) selection() selectionResponse {
	nodes, edges := s.Editor.Selection()
	if nodes == nil {
		nodes = []string{}
	}
	if edges == nil {
		edges = []string{}
	}
	return selectionResponse{Nodes: nodes, Edges: edges, Active: s.Editor.SelectedID()}
}

func (s *Server) handleSelection(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.selection())
}

// =============================================================================
// Mutations
// =============================================================================

type selectRequest struct {
	Nodes []string `json:"nodes"`
	Edges []string `json:"edges"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.Editor.Select(req.Nodes, req.Edges)
	writeJSON(w, http.StatusOK, s.selection())
}

type addNodeRequest struct {
	Kind diagram.NodeType `json:"kind"`
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	n, err := s.Editor.AddNode(r.Context(), req.Kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

type relabelRequest struct {
	Label string `json:"label"`
}

type changedResponse struct {
	Changed bool `json:"changed"`
}

func (s *Server) handleRelabel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req relabelRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := errs.ValidateLabel(req.Label); err != nil {
		writeError(w, err)
		return
	}
	if s.Editor.Snapshot().NodeByID(id) == nil {
		writeError(w, errs.New(errs.ErrCodeNotFound, "node not found: %s", id))
		return
	}
	writeJSON(w, http.StatusOK, changedResponse{Changed: s.Editor.Relabel(r.Context(), id, req.Label)})
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req editor.Connection
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := errs.ValidateLabel(req.Label); err != nil {
		writeError(w, err)
		return
	}
	edge, err := s.Editor.Connect(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, edge)
}

type changesRequest struct {
	Nodes []editor.NodeChange `json:"nodes"`
	Edges []editor.EdgeChange `json:"edges"`
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	var req changesRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	nodes := s.Editor.ApplyNodeChanges(r.Context(), req.Nodes)
	edges := s.Editor.ApplyEdgeChanges(r.Context(), req.Edges)
	writeJSON(w, http.StatusOK, changedResponse{Changed: nodes || edges})
}

type deleteResponse struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

func (s *Server) handleDeleteSelected(w http.ResponseWriter, r *http.Request) {
	nodes, edges := s.Editor.DeleteSelected(r.Context())
	writeJSON(w, http.StatusOK, deleteResponse{Nodes: nodes, Edges: edges})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.Editor.Reset(r.Context())
	s.handleDiagram(w, r)
}

// =============================================================================
// Import and export
// =============================================================================

type importResponse struct {
	Imported bool `json:"imported"`
}

// handleImport replaces the diagram with the request body. A document that
// cannot be imported leaves the diagram as it was and reports imported=false.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	format := persist.FormatJSON
	if ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil {
		switch ct {
		case "application/yaml", "application/x-yaml", "text/yaml":
			format = persist.FormatYAML
		}
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "import larger than %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "read import: %v", err))
		return
	}
	ok := s.Editor.ImportFormat(r.Context(), format, bytes.NewReader(body))
	writeJSON(w, http.StatusOK, importResponse{Imported: ok})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := persist.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, err)
		return
	}
	a, ok, err := s.Editor.Export(r.Context(), format)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Name))
	w.Write(a.Data)
}
