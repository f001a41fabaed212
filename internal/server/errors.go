package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/sourcebox-llc/template-lab/internal/generator"
	"github.com/sourcebox-llc/template-lab/internal/gist"
	"github.com/sourcebox-llc/template-lab/internal/publish"
	"github.com/sourcebox-llc/template-lab/internal/session"
	"github.com/sourcebox-llc/template-lab/internal/template"
	"github.com/sourcebox-llc/template-lab/internal/templaterepo"
	"github.com/sourcebox-llc/template-lab/internal/validation"
)

var errBadRequest = errors.New("malformed request body")

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

func statusFor(err error) int {
	var (
		resErr     *templaterepo.ResolutionError
		pubErr     *publish.PublishError
		fieldErr   *validation.ValidationError
		structErrs validator.ValidationErrors
	)

	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, templaterepo.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, session.ErrNoSelection),
		errors.As(err, &fieldErr),
		errors.As(err, &structErrs):
		return http.StatusBadRequest
	case errors.As(err, &resErr):
		switch resErr.Kind {
		case templaterepo.InvalidReference:
			return http.StatusBadRequest
		case templaterepo.EmptyRepository:
			return http.StatusUnprocessableEntity
		default:
			return http.StatusBadGateway
		}
	case errors.Is(err, template.ErrUnsafePath):
		return http.StatusUnprocessableEntity
	case errors.Is(err, generator.ErrGenerationFailure),
		errors.Is(err, gist.ErrShareFailed),
		errors.As(err, &pubErr):
		return http.StatusBadGateway
	case errors.Is(err, gist.ErrMissingToken),
		errors.Is(err, session.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, stage string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Warn().Err(err).Str("stage", stage).Msg("Request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Stage: stage})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
