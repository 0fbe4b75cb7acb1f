package httpx

import (
	"errors"
	"net/http"

	"github.com/eventide-agency/eventide/internal/shared"
)

// RespondError maps a domain error to the failure envelope. Transition,
// validation and authorization failures carry their message through;
// unexpected errors are reported generically so internals do not leak.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrConflict):
		Fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, shared.ErrInvalidTransition):
		Fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, shared.ErrImmutable):
		Fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, shared.ErrValidation):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrForbidden):
		Fail(w, http.StatusForbidden, err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		Fail(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, shared.ErrUnauthorized):
		Fail(w, http.StatusUnauthorized, err.Error())
	default:
		Fail(w, http.StatusInternalServerError, "internal error")
	}
}
