package shared

import "errors"

// Sentinel errors shared by the domain services. Handlers map them to HTTP
// statuses in platform/httpx.
var (
	// ErrNotFound indicates the referenced resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates the operation collides with existing state.
	ErrConflict = errors.New("conflict")
	// ErrInvalidTransition indicates the current status does not permit the
	// requested lifecycle transition.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrImmutable indicates an edit or delete on a record that may no
	// longer change.
	ErrImmutable = errors.New("record is immutable")
	// ErrForbidden indicates the caller is not allowed to act on the resource.
	ErrForbidden = errors.New("not authorized")
	// ErrUnauthorized indicates a missing or invalid credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
