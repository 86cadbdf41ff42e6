package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	"github.com/dropDatabas3/gatekeeper/internal/oauth"
)

// memStore backs the oauth service with in-memory clients, codes and tokens.
type memStore struct {
	clients map[uuid.UUID]*repository.OAuth2Client
	codes   map[uuid.UUID]*repository.AuthorizationCode
	tokens  map[uuid.UUID]*repository.OAuth2Token
}

func newMemStore() *memStore {
	return &memStore{
		clients: map[uuid.UUID]*repository.OAuth2Client{},
		codes:   map[uuid.UUID]*repository.AuthorizationCode{},
		tokens:  map[uuid.UUID]*repository.OAuth2Token{},
	}
}

func (m *memStore) ClientByID(_ context.Context, id uuid.UUID) (*repository.OAuth2Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (m *memStore) SaveCode(_ context.Context, c *repository.AuthorizationCode) error {
	cp := *c
	m.codes[c.ID] = &cp
	return nil
}

func (m *memStore) CodeByValue(_ context.Context, code string, client *repository.OAuth2Client) (*repository.AuthorizationCode, error) {
	for _, c := range m.codes {
		if c.Code == code && c.Client.ID == client.ID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) DeleteCode(_ context.Context, id uuid.UUID) error {
	delete(m.codes, id)
	return nil
}

func (m *memStore) SaveToken(_ context.Context, t *repository.OAuth2Token) error {
	if existing, ok := m.tokens[t.ID]; ok {
		existing.RefreshToken = t.RefreshToken
		existing.Revoked = t.Revoked
		existing.ExpiresIn = t.ExpiresIn
		return nil
	}
	cp := *t
	m.tokens[t.ID] = &cp
	return nil
}

func (m *memStore) TokenByAccessToken(_ context.Context, access string) (*repository.OAuth2Token, error) {
	for _, t := range m.tokens {
		if t.AccessToken == access {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) TokenByRefreshToken(_ context.Context, refresh string) (*repository.OAuth2Token, error) {
	for _, t := range m.tokens {
		if t.RefreshToken == refresh {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func postForm(t *testing.T, h http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/oauth2/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newTokenEndpoint(store *memStore) (http.Handler, oauth.Service) {
	svc := oauth.New(oauth.Deps{Store: store, TokenTTL: time.Hour, Issuer: "https://auth.test"})
	r := chi.NewRouter()
	NewOAuthController(svc, nil, store).Register(r)
	return r, svc
}

func TestTokenEndpoint_RefreshBoundToIssuingClient(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	clientA := &repository.OAuth2Client{ID: uuid.New(), Secret: "secret-a"}
	clientB := &repository.OAuth2Client{ID: uuid.New(), Secret: "secret-b"}
	store.clients[clientA.ID] = clientA
	store.clients[clientB.ID] = clientB
	user := &repository.User{ID: uuid.New()}

	h, svc := newTokenEndpoint(store)
	res, err := svc.IssueToken(ctx, clientA, user, "profile")
	require.NoError(t, err)

	// Client B presents valid credentials of its own plus A's refresh
	// token: invalid_grant, nothing rotated.
	rec := postForm(t, h, url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {clientB.ID.String()},
		"client_secret": {"secret-b"},
		"refresh_token": {res.Token.RefreshToken},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "invalid_grant", body["error"])

	stored := store.tokens[res.Token.ID]
	require.Equal(t, res.Token.RefreshToken, stored.RefreshToken)

	// The issuing client still can.
	rec = postForm(t, h, url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {clientA.ID.String()},
		"client_secret": {"secret-a"},
		"refresh_token": {res.Token.RefreshToken},
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenEndpoint_ClientAuth(t *testing.T) {
	store := newMemStore()
	client := &repository.OAuth2Client{ID: uuid.New(), Secret: "right"}
	store.clients[client.ID] = client
	h, _ := newTokenEndpoint(store)

	for _, tt := range []struct {
		name   string
		id     string
		secret string
	}{
		{"bad secret", client.ID.String(), "wrong"},
		{"unknown client", uuid.New().String(), "right"},
		{"malformed id", "not-a-uuid", "right"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			rec := postForm(t, h, url.Values{
				"grant_type":    {"refresh_token"},
				"client_id":     {tt.id},
				"client_secret": {tt.secret},
				"refresh_token": {"whatever"},
			})
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, "invalid_client", body["error"])
		})
	}
}
