// Package server exposes lab sessions over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/sourcebox-llc/template-lab/internal/session"
	"github.com/sourcebox-llc/template-lab/internal/templaterepo"
)

const (
	maxBodyBytes    = 4 << 20
	shutdownTimeout = 10 * time.Second
)

// Catalog lists the curated templates.
type Catalog interface {
	Entries() []templaterepo.Entry
}

type Server struct {
	log     *zerolog.Logger
	store   *session.Store
	lab     *session.Lab
	catalog Catalog
	router  *mux.Router
}

func New(log *zerolog.Logger, store *session.Store, lab *session.Lab, catalog Catalog) *Server {
	s := &Server{
		log:     log,
		store:   store,
		lab:     lab,
		catalog: catalog,
		router:  mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.logRequests)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/catalog", s.handleCatalog).Methods(http.MethodGet)
	api.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods(http.MethodDelete)

	sess := api.PathPrefix("/sessions/{id}").Subrouter()
	sess.HandleFunc("/select", s.handleSelect).Methods(http.MethodPost)
	sess.HandleFunc("/resolve", s.handleResolve).Methods(http.MethodPost)
	sess.HandleFunc("/generate", s.handleGenerate).Methods(http.MethodPost)
	sess.HandleFunc("/selection", s.handleDeselect).Methods(http.MethodDelete)
	sess.HandleFunc("/editor", s.handleEdit).Methods(http.MethodPut)
	sess.HandleFunc("/editor/rewrite", s.handleRewrite).Methods(http.MethodPost)
	sess.HandleFunc("/editor/settings", s.handleSettings).Methods(http.MethodPut)
	sess.HandleFunc("/run", s.handleRun).Methods(http.MethodPost)
	sess.HandleFunc("/template.zip", s.handleArchive).Methods(http.MethodGet)
	sess.HandleFunc("/publish", s.handlePublish).Methods(http.MethodPost)
	sess.HandleFunc("/share", s.handleShare).Methods(http.MethodPost)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("Template lab API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info().Msg("Shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Msg("Request")
	})
}
