// Package oauth implements the credential lifecycle: authorization codes,
// token issuance, exchange, refresh, introspection and revocation.
package oauth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/gatekeeper/internal/domain/repository"
	"github.com/dropDatabas3/gatekeeper/internal/observability/logger"
	tokens "github.com/dropDatabas3/gatekeeper/internal/security/token"
)

// Entropy of generated credential strings, in bytes.
const (
	codeEntropy  = 48
	tokenEntropy = 32
)

// DefaultTokenTTL is the access-token lifetime when none is configured.
const DefaultTokenTTL = time.Hour

// Store is the persistence surface the lifecycle needs.
type Store interface {
	repository.ClientRepository
	repository.CodeRepository
	repository.TokenRepository
}

// Result is what the exchange boundary hands back: the token plus the
// optional ID token minted when the scope includes "openid".
type Result struct {
	Token   *repository.OAuth2Token
	IDToken string
}

// Service is the credential-exchange boundary.
type Service interface {
	// NewAuthorizationCode creates and persists a code bound to the
	// client, user and PKCE challenge. The code value is generated here
	// and is cryptographically unguessable.
	NewAuthorizationCode(ctx context.Context, client *repository.OAuth2Client, user *repository.User, redirectURI, scope, nonce, codeChallenge, codeChallengeMethod string) (*repository.AuthorizationCode, error)

	// IssueToken issues a fresh access/refresh pair for the user and
	// client.
	IssueToken(ctx context.Context, client *repository.OAuth2Client, user *repository.User, scope string) (*Result, error)

	// ExchangeCode swaps an authorization code for a token, verifying the
	// PKCE verifier and deleting the code on success. Expired, unknown or
	// PKCE-failing codes yield ErrInvalidGrant.
	ExchangeCode(ctx context.Context, client *repository.OAuth2Client, code, verifier string) (*Result, error)

	// Refresh rotates the access and refresh strings of the token holding
	// the given refresh credential. Token id, issue time, user and client
	// are preserved. Revoked or expired tokens, and tokens issued to a
	// different client, yield ErrInvalidGrant.
	Refresh(ctx context.Context, client *repository.OAuth2Client, refreshToken string) (*repository.OAuth2Token, error)

	// Introspect resolves a token string with a lookup hint. Absent
	// tokens yield ErrNotFound; expired or revoked tokens are returned
	// as-is for the caller to report inactive.
	Introspect(ctx context.Context, value, hint string) (*repository.OAuth2Token, error)

	// Revoke marks the token holding the given string revoked and
	// persists it. Revoking an already-revoked token is a no-op.
	Revoke(ctx context.Context, value, hint string) error
}

// Deps holds the service dependencies.
type Deps struct {
	Store      Store
	TokenTTL   time.Duration
	Issuer     string
	IDTokenKey []byte
	Now        func() time.Time
}

type service struct {
	store      Store
	tokenTTL   time.Duration
	issuer     string
	idTokenKey []byte
	now        func() time.Time
}

// New builds the credential lifecycle service.
func New(d Deps) Service {
	ttl := d.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		store:      d.Store,
		tokenTTL:   ttl,
		issuer:     d.Issuer,
		idTokenKey: d.IDTokenKey,
		now:        now,
	}
}

func (s *service) NewAuthorizationCode(ctx context.Context, client *repository.OAuth2Client, user *repository.User, redirectURI, scope, nonce, codeChallenge, codeChallengeMethod string) (*repository.AuthorizationCode, error) {
	value, err := tokens.GenerateOpaqueToken(codeEntropy)
	if err != nil {
		return nil, err
	}
	code := &repository.AuthorizationCode{
		ID:                  uuid.New(),
		Code:                value,
		Client:              *client,
		RedirectURI:         redirectURI,
		Scope:               scope,
		Nonce:               nonce,
		AuthTime:            s.now().UTC(),
		CodeChallenge:       codeChallenge,
		CodeChallengeMethod: codeChallengeMethod,
		User:                *user,
	}
	if err := s.store.SaveCode(ctx, code); err != nil {
		return nil, err
	}
	return code, nil
}

func (s *service) IssueToken(ctx context.Context, client *repository.OAuth2Client, user *repository.User, scope string) (*Result, error) {
	return s.issue(ctx, client, user, scope, "")
}

func (s *service) issue(ctx context.Context, client *repository.OAuth2Client, user *repository.User, scope, nonce string) (*Result, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.IssueToken"))

	access, err := tokens.GenerateOpaqueToken(tokenEntropy)
	if err != nil {
		return nil, err
	}
	refresh, err := tokens.GenerateOpaqueToken(tokenEntropy)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	t := &repository.OAuth2Token{
		ID:           uuid.New(),
		Client:       *client,
		TokenType:    "Bearer",
		AccessToken:  access,
		RefreshToken: refresh,
		Scope:        scope,
		IssuedAt:     now,
		ExpiresIn:    int(s.tokenTTL / time.Second),
		User:         *user,
	}
	if err := s.store.SaveToken(ctx, t); err != nil {
		return nil, err
	}
	log.Info("token issued",
		logger.TokenID(t.ID), logger.ClientID(client.ID), logger.UserID(user.ID))

	res := &Result{Token: t}
	if scopeHas(scope, "openid") && len(s.idTokenKey) > 0 {
		idt, err := buildIDToken(s.idTokenKey, s.issuer, t, nonce, now)
		if err != nil {
			return nil, err
		}
		res.IDToken = idt
	}
	return res, nil
}

func (s *service) ExchangeCode(ctx context.Context, client *repository.OAuth2Client, codeValue, verifier string) (*Result, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.ExchangeCode"))

	code, err := s.store.CodeByValue(ctx, codeValue, client)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("unknown authorization code: %w", ErrInvalidGrant)
		}
		return nil, err
	}
	if code.IsExpired(s.now()) {
		log.Debug("expired code presented", logger.ClientID(client.ID))
		return nil, fmt.Errorf("authorization code expired: %w", ErrInvalidGrant)
	}
	if code.CodeChallenge != "" &&
		!tokens.VerifyPKCE(verifier, code.CodeChallenge, code.CodeChallengeMethod) {
		log.Debug("pkce verification failed", logger.ClientID(client.ID))
		return nil, fmt.Errorf("pkce verification failed: %w", ErrInvalidGrant)
	}

	// Single use: the row goes away before the token is handed out. If
	// issuance fails afterwards the code stays consumed and the client
	// restarts the flow; a failure never leaves a replayable code behind.
	if err := s.store.DeleteCode(ctx, code.ID); err != nil {
		return nil, err
	}
	return s.issue(ctx, client, &code.User, code.Scope, code.Nonce)
}

func (s *service) Refresh(ctx context.Context, client *repository.OAuth2Client, refreshToken string) (*repository.OAuth2Token, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.Refresh"))

	t, err := s.store.TokenByRefreshToken(ctx, refreshToken)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("unknown refresh token: %w", ErrInvalidGrant)
		}
		return nil, err
	}
	// The refresh credential is bound to the client it was issued to.
	if t.Client.ID != client.ID {
		log.Debug("refresh token presented by another client", logger.ClientID(client.ID))
		return nil, fmt.Errorf("refresh token issued to another client: %w", ErrInvalidGrant)
	}
	now := s.now().UTC()
	if !t.Usable(now) {
		return nil, fmt.Errorf("refresh token no longer usable: %w", ErrInvalidGrant)
	}

	access, err := tokens.GenerateOpaqueToken(tokenEntropy)
	if err != nil {
		return nil, err
	}
	refresh, err := tokens.GenerateOpaqueToken(tokenEntropy)
	if err != nil {
		return nil, err
	}

	// Identity is preserved: same token id, issue time, user and client.
	// The lifetime extends from now while issued_at stays put, so
	// expires_in absorbs the elapsed time.
	t.AccessToken = access
	t.RefreshToken = refresh
	t.ExpiresIn = int(now.Sub(t.IssuedAt)/time.Second) + int(s.tokenTTL/time.Second)
	if err := s.store.SaveToken(ctx, t); err != nil {
		return nil, err
	}
	log.Info("token refreshed", logger.TokenID(t.ID), logger.UserID(t.User.ID))
	return t, nil
}

func (s *service) Introspect(ctx context.Context, value, hint string) (*repository.OAuth2Token, error) {
	return QueryToken(ctx, s.store, value, hint)
}

func (s *service) Revoke(ctx context.Context, value, hint string) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("oauth.Revoke"))

	t, err := QueryToken(ctx, s.store, value, hint)
	if err != nil {
		return err
	}
	if t.IsRevoked() {
		return nil
	}
	revoked := RevokeToken(*t)
	if err := s.store.SaveToken(ctx, &revoked); err != nil {
		return err
	}
	log.Info("token revoked", logger.TokenID(t.ID))
	return nil
}

func scopeHas(scope, want string) bool {
	for _, s := range splitScope(scope) {
		if s == want {
			return true
		}
	}
	return false
}
