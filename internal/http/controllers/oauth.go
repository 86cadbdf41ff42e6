package controllers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	httpx "github.com/dropDatabas3/gatekeeper/internal/http"
	"github.com/dropDatabas3/gatekeeper/internal/oauth"
	"github.com/dropDatabas3/gatekeeper/internal/users"
)

// OAuthController serves the credential-exchange endpoints: token,
// introspection and revocation.
type OAuthController struct {
	svc     oauth.Service
	users   users.Service
	clients repository.ClientRepository
}

func NewOAuthController(svc oauth.Service, us users.Service, clients repository.ClientRepository) *OAuthController {
	return &OAuthController{svc: svc, users: us, clients: clients}
}

func (c *OAuthController) Register(r chi.Router) {
	r.Post("/oauth2/token", c.token)
	r.Post("/oauth2/introspect", c.introspect)
	r.Post("/oauth2/revoke", c.revoke)
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
}

// token implements the password, authorization_code and refresh_token
// grants, dispatched on grant_type per RFC 6749 form encoding.
func (c *OAuthController) token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed form body")
		return
	}

	switch r.PostFormValue("grant_type") {
	case "authorization_code":
		c.exchangeCode(w, r)
	case "refresh_token":
		c.refresh(w, r)
	case "password":
		c.passwordGrant(w, r)
	default:
		httpx.WriteError(w, http.StatusBadRequest, "unsupported_grant_type", "unknown grant_type")
	}
}

// client authenticates the requesting client from the form (or basic auth)
// credentials.
func (c *OAuthController) client(w http.ResponseWriter, r *http.Request) (*repository.OAuth2Client, bool) {
	id, secret := r.PostFormValue("client_id"), r.PostFormValue("client_secret")
	if bu, bp, ok := r.BasicAuth(); ok {
		id, secret = bu, bp
	}
	clientID, err := uuid.Parse(id)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_client", "malformed client_id")
		return nil, false
	}
	client, err := c.clients.ClientByID(r.Context(), clientID)
	if err != nil || subtle.ConstantTimeCompare([]byte(client.Secret), []byte(secret)) != 1 {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_client", "unknown client or bad secret")
		return nil, false
	}
	return client, true
}

func (c *OAuthController) exchangeCode(w http.ResponseWriter, r *http.Request) {
	client, ok := c.client(w, r)
	if !ok {
		return
	}
	res, err := c.svc.ExchangeCode(r.Context(), client,
		r.PostFormValue("code"), r.PostFormValue("code_verifier"))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.CountTokenIssued()
	writeTokenResponse(w, res.Token, res.IDToken)
}

func (c *OAuthController) refresh(w http.ResponseWriter, r *http.Request) {
	client, ok := c.client(w, r)
	if !ok {
		return
	}
	t, err := c.svc.Refresh(r.Context(), client, r.PostFormValue("refresh_token"))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	writeTokenResponse(w, t, "")
}

func (c *OAuthController) passwordGrant(w http.ResponseWriter, r *http.Request) {
	client, ok := c.client(w, r)
	if !ok {
		return
	}
	user, err := c.users.Authenticate(r.Context(),
		r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_grant", "bad credentials")
		return
	}
	res, err := c.svc.IssueToken(r.Context(), client, user, r.PostFormValue("scope"))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.CountTokenIssued()
	writeTokenResponse(w, res.Token, res.IDToken)
}

func writeTokenResponse(w http.ResponseWriter, t *repository.OAuth2Token, idToken string) {
	w.Header().Set("Cache-Control", "no-store")
	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		ExpiresIn:    t.ExpiresIn,
		Scope:        t.Scope,
		IDToken:      idToken,
	})
}

type introspectionResponse struct {
	Active    bool   `json:"active"`
	Scope     string `json:"scope,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	Sub       string `json:"sub,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	Exp       int64  `json:"exp,omitempty"`
	Iat       int64  `json:"iat,omitempty"`
}

func (c *OAuthController) introspect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed form body")
		return
	}
	if _, ok := c.client(w, r); !ok {
		return
	}
	t, err := c.svc.Introspect(r.Context(),
		r.PostFormValue("token"), r.PostFormValue("token_type_hint"))
	if err != nil {
		// RFC 7662: unknown tokens report inactive, not an error.
		if repository.IsNotFound(err) {
			httpx.WriteJSON(w, http.StatusOK, introspectionResponse{Active: false})
			return
		}
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, introspectionResponse{
		Active:    t.Usable(time.Now()),
		Scope:     t.Scope,
		ClientID:  t.Client.ID.String(),
		Sub:       t.User.ID.String(),
		TokenType: t.TokenType,
		Exp:       t.ExpiresAt().Unix(),
		Iat:       t.IssuedAt.Unix(),
	})
}

func (c *OAuthController) revoke(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed form body")
		return
	}
	if _, ok := c.client(w, r); !ok {
		return
	}
	err := c.svc.Revoke(r.Context(),
		r.PostFormValue("token"), r.PostFormValue("token_type_hint"))
	if err != nil && !repository.IsNotFound(err) {
		httpx.WriteDomainError(w, err)
		return
	}
	if err == nil {
		httpx.CountTokenRevoked()
	}
	// RFC 7009: revoking an unknown token is still a 200.
	w.WriteHeader(http.StatusOK)
}
