// Package server exposes an editor over HTTP for the browser canvas.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/archboard/pkg/editor"
)

// maxBodyBytes bounds request bodies, imports included.
const maxBodyBytes = 8 << 20

const shutdownTimeout = 5 * time.Second

// Server routes API requests to an Editor.
type Server struct {
	Editor *editor.Editor
	Logger *log.Logger

	router chi.Router
}

// New creates a server for ed. A nil logger uses log.Default().
func New(ed *editor.Editor, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{Editor: ed, Logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logging)
	r.Use(s.recovery)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequestSize(maxBodyBytes))

		r.Get("/kinds", s.handleKinds)
		r.Get("/diagram", s.handleDiagram)
		r.Get("/selection", s.handleSelection)
		r.Post("/selection", s.handleSelect)
		r.Post("/nodes", s.handleAddNode)
		r.Patch("/nodes/{id}/label", s.handleRelabel)
		r.Post("/edges", s.handleConnect)
		r.Post("/changes", s.handleChanges)
		r.Post("/delete-selected", s.handleDeleteSelected)
		r.Post("/reset", s.handleReset)
		r.Post("/import", s.handleImport)
		r.Get("/export/{format}", s.handleExport)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.Logger.Info("server stopped")
	return nil
}
