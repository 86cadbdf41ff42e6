// Package tokens generates opaque credential strings and PKCE digests.
package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// GenerateOpaqueToken returns a random token of nBytes entropy, base64url
// without padding. Used for access tokens, refresh tokens and authorization
// codes.
func GenerateOpaqueToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// S256Challenge returns the PKCE S256 code challenge for a verifier:
// base64url(sha256(verifier)) without padding (RFC 7636 §4.2).
func S256Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// VerifyPKCE checks a code verifier against the stored challenge for the
// given method ("S256" or "plain"). Unknown methods never verify.
func VerifyPKCE(verifier, challenge, method string) bool {
	switch method {
	case "S256":
		return subtle.ConstantTimeCompare(
			[]byte(S256Challenge(verifier)), []byte(challenge)) == 1
	case "plain":
		return subtle.ConstantTimeCompare(
			[]byte(verifier), []byte(challenge)) == 1
	default:
		return false
	}
}
