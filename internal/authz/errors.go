package authz

import "net/http"

// Error is an authorization failure: the caller lacks a required privilege,
// targets a non-editable role, or lacks a required grant on a resource. It
// carries a human-readable description and an HTTP-style status code for the
// boundary to surface. The operation that raised it performed no mutation.
type Error struct {
	Status      int
	Description string
}

func (e *Error) Error() string {
	return e.Description
}

// Forbidden builds an Error with status 403.
func Forbidden(description string) *Error {
	return &Error{Status: http.StatusForbidden, Description: description}
}

// Unauthorized builds an Error with status 401.
func Unauthorized(description string) *Error {
	return &Error{Status: http.StatusUnauthorized, Description: description}
}
