package repository

import "errors"

var (
	// ErrNotFound indicates a lookup by id or key found nothing.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a uniqueness constraint would be violated
	// (e.g. duplicate resource name).
	ErrConflict = errors.New("conflict")

	// ErrInvalid indicates the input data is invalid.
	ErrInvalid = errors.New("invalid input")

	// ErrNoGroup indicates an operation that needs an owning group was
	// attempted by a user who belongs to no group. Distinct from an
	// authorization failure: it signals a precondition gap, not a
	// permission gap.
	ErrNoGroup = errors.New("user belongs to no group")
)

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsNoGroup reports whether err is ErrNoGroup.
func IsNoGroup(err error) bool {
	return errors.Is(err, ErrNoGroup)
}
