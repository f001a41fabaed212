package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/sourcebox-llc/template-lab/internal/editor"
	"github.com/sourcebox-llc/template-lab/internal/runner"
	"github.com/sourcebox-llc/template-lab/internal/session"
	"github.com/sourcebox-llc/template-lab/internal/template"
	"github.com/sourcebox-llc/template-lab/internal/templaterepo"
)

type createSessionResponse struct {
	ID string `json:"id"`
}

type selectRequest struct {
	Name string `json:"name"`
}

type resolveRequest struct {
	URL     string `json:"url"`
	Ref     string `json:"ref"`
	Name    string `json:"name"`
	Details string `json:"details"`
	Stack   string `json:"stack"`
	Image   string `json:"image"`
}

type generateRequest struct {
	Prompt  string `json:"prompt"`
	Name    string `json:"name"`
	Details string `json:"details"`
	Stack   string `json:"stack"`
}

type editRequest struct {
	Text string `json:"text"`
}

type rewriteRequest struct {
	Instruction string `json:"instruction"`
}

type publishRequest struct {
	RepoURL string `json:"repo_url"`
	Message string `json:"message"`
}

type publishResponse struct {
	RepoURL string `json:"repo_url"`
}

type shareRequest struct {
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

type shareResponse struct {
	URL string `json:"url"`
}

type catalogResponse struct {
	Templates []templaterepo.Entry `json:"templates"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{Templates: s.catalog.Entries()})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.store.Create()
	s.log.Debug().Str("session", sess.ID.String()).Msg("Session created")
	writeJSON(w, http.StatusCreated, createSessionResponse{ID: sess.ID.String()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	var view session.View
	err := s.withSession(r, func(sess *session.Session) error {
		view = sess.View()
		return nil
	})
	if err != nil {
		s.writeError(w, "session", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err == nil && !s.store.Delete(id) {
		err = session.ErrSessionNotFound
	}
	if err != nil {
		s.writeError(w, "session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !s.decode(w, r, "select", &req) {
		return
	}
	s.dispatchView(w, r, session.SelectCatalogEntry{Name: req.Name})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if !s.decode(w, r, "resolve", &req) {
		return
	}
	s.dispatchView(w, r, session.ResolveRepository{
		URL: req.URL,
		Ref: req.Ref,
		Meta: template.Metadata{
			Name:    req.Name,
			Details: req.Details,
			Stack:   req.Stack,
			Image:   req.Image,
		},
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !s.decode(w, r, "generate", &req) {
		return
	}
	s.dispatchView(w, r, session.Generate{
		Prompt: req.Prompt,
		Meta:   template.Metadata{Name: req.Name, Details: req.Details, Stack: req.Stack},
	})
}

func (s *Server) handleDeselect(w http.ResponseWriter, r *http.Request) {
	s.dispatchView(w, r, session.Deselect{})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if !s.decode(w, r, "edit", &req) {
		return
	}
	s.dispatchView(w, r, session.EditManual{Text: req.Text})
}

func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	var req rewriteRequest
	if !s.decode(w, r, "rewrite", &req) {
		return
	}
	s.dispatchView(w, r, session.EditAI{Instruction: req.Instruction})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	req := editor.DefaultSettings()
	if !s.decode(w, r, "settings", &req) {
		return
	}
	s.dispatchView(w, r, session.UpdateEditorSettings{Settings: req})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	ev, err := s.dispatch(r, session.Run{})
	if err != nil {
		s.writeError(w, "run", err)
		return
	}

	var result runner.Result
	switch e := ev.(type) {
	case session.RunCompleted:
		result = e.Result
	case session.RunTimedOut:
		result = e.Result
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	ev, err := s.dispatch(r, session.Archive{})
	if err != nil {
		s.writeError(w, "archive", err)
		return
	}

	archived := ev.(session.Archived)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archived.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(archived.Bytes)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archived.Bytes)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if !s.decode(w, r, "publish", &req) {
		return
	}
	ev, err := s.dispatch(r, session.Publish{RepoURL: req.RepoURL, Message: req.Message})
	if err != nil {
		s.writeError(w, "publish", err)
		return
	}
	writeJSON(w, http.StatusOK, publishResponse{RepoURL: ev.(session.Published).RepoURL})
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	var req shareRequest
	if !s.decode(w, r, "share", &req) {
		return
	}
	ev, err := s.dispatch(r, session.Share{Description: req.Description, Public: req.Public})
	if err != nil {
		s.writeError(w, "share", err)
		return
	}
	writeJSON(w, http.StatusOK, shareResponse{URL: ev.(session.Shared).URL})
}

// dispatchView applies cmd and responds with the resulting session view.
func (s *Server) dispatchView(w http.ResponseWriter, r *http.Request, cmd session.Command) {
	var view session.View
	ev, err := s.dispatchWith(r, cmd, func(sess *session.Session) {
		view = sess.View()
	})
	if err != nil {
		s.writeError(w, stageOf(ev), err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) dispatch(r *http.Request, cmd session.Command) (session.Event, error) {
	return s.dispatchWith(r, cmd, nil)
}

func (s *Server) dispatchWith(r *http.Request, cmd session.Command, after func(*session.Session)) (session.Event, error) {
	var ev session.Event
	err := s.withSession(r, func(sess *session.Session) error {
		var err error
		ev, err = s.lab.Dispatch(r.Context(), sess, cmd)
		if err != nil {
			return err
		}
		if after != nil {
			after(sess)
		}
		return nil
	})
	return ev, err
}

func (s *Server) withSession(r *http.Request, fn func(*session.Session) error) error {
	id, err := sessionID(r)
	if err != nil {
		return err
	}
	return s.store.With(id, fn)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, stage string, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, stage, fmt.Errorf("%w: %v", errBadRequest, err))
		return false
	}
	return true
}

func sessionID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, session.ErrSessionNotFound
	}
	return id, nil
}

func stageOf(ev session.Event) string {
	if failed, ok := ev.(session.Failed); ok {
		return failed.Stage
	}
	return "session"
}
