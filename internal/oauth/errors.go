package oauth

import "errors"

// Grant-level failures. These are validation outcomes of the exchange
// boundary, distinct from store errors: an expired or revoked credential is
// an invalid grant, not a server fault.
var (
	ErrInvalidGrant   = errors.New("invalid grant")
	ErrInvalidClient  = errors.New("invalid client")
	ErrInvalidRequest = errors.New("invalid request")
)
