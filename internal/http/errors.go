package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dropDatabas3/gatekeeper/internal/authz"
	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	"github.com/dropDatabas3/gatekeeper/internal/oauth"
)

type apiError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	RequestID        string `json:"request_id,omitempty"`
}

func WriteError(w http.ResponseWriter, status int, code, desc string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rid := w.Header().Get("X-Request-ID")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{
		Error:            code,
		ErrorDescription: desc,
		RequestID:        rid,
	})
}

// WriteDomainError maps the error taxonomy to HTTP statuses. Deny stays
// explicit: an authz error carries its own status and description.
func WriteDomainError(w http.ResponseWriter, err error) {
	var aerr *authz.Error
	switch {
	case errors.As(err, &aerr):
		WriteError(w, aerr.Status, "forbidden", aerr.Description)
	case errors.Is(err, repository.ErrNoGroup):
		WriteError(w, http.StatusBadRequest, "no_group", "the user is not a member of any group")
	case repository.IsNotFound(err):
		WriteError(w, http.StatusNotFound, "not_found", "no such record")
	case repository.IsConflict(err):
		WriteError(w, http.StatusConflict, "conflict", "the record already exists")
	case errors.Is(err, repository.ErrInvalid):
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, oauth.ErrInvalidGrant):
		WriteError(w, http.StatusBadRequest, "invalid_grant", err.Error())
	case errors.Is(err, oauth.ErrInvalidClient):
		WriteError(w, http.StatusUnauthorized, "invalid_client", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}

// WriteJSON writes a standard JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ReadJSON decodes JSON leniently (unknown fields pass). Validates the
// Content-Type and caps the body at 1MB.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		WriteError(w, http.StatusBadRequest, "invalid_json", "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && err != io.EOF {
		WriteError(w, http.StatusBadRequest, "invalid_json", "malformed json")
		return false
	}
	return true
}
