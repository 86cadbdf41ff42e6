package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/gatekeeper/internal/authz"
	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	"github.com/dropDatabas3/gatekeeper/internal/oauth"
)

func TestWriteDomainError_Mapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"authz carries its own status", authz.Forbidden("nope"), 403, "forbidden"},
		{"authz unauthorized", authz.Unauthorized("who"), 401, "forbidden"},
		{"no group", fmt.Errorf("x: %w", repository.ErrNoGroup), 400, "no_group"},
		{"not found", repository.ErrNotFound, 404, "not_found"},
		{"conflict", fmt.Errorf("dup: %w", repository.ErrConflict), 409, "conflict"},
		{"invalid input", fmt.Errorf("bad: %w", repository.ErrInvalid), 400, "invalid_request"},
		{"invalid grant", fmt.Errorf("expired: %w", oauth.ErrInvalidGrant), 400, "invalid_grant"},
		{"invalid client", oauth.ErrInvalidClient, 401, "invalid_client"},
		{"anything else", fmt.Errorf("boom"), 500, "server_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteDomainError(rec, tc.err)

			require.Equal(t, tc.status, rec.Code)
			var body struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, tc.code, body.Error)
		})
	}
}

func TestWriteError_IncludesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.Header().Set("X-Request-ID", "req-123")
	WriteError(rec, http.StatusTeapot, "teapot", "short and stout")

	var body struct {
		RequestID string `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "req-123", body.RequestID)
}

func TestReadJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
	req.Header.Set("Content-Type", "application/json")
	require.True(t, ReadJSON(rec, req, &v), "unknown fields pass")
	require.Equal(t, "x", v.Name)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "text/plain")
	require.False(t, ReadJSON(rec, req, &v), "wrong content type is rejected")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{broken`))
	req.Header.Set("Content-Type", "application/json")
	require.False(t, ReadJSON(rec, req, &v))
}
