package httpx

import (
	"errors"
	"net/http"

	"github.com/nimbus-hr/nimbus-hr/internal/shared"
)

// Sentinel errors for the domain layer.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrValidation = errors.New("validation failed")
)

// RespondError maps a domain error onto the standard envelope. AuthError
// classes map per the taxonomy: authentication and tenancy failures render
// as 401, authorization as 403, upstream as 500. Upstream causes are never
// written to the response body.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	var authErr *shared.AuthError
	if errors.As(err, &authErr) {
		switch authErr.Class {
		case shared.ClassAuthentication, shared.ClassTenancy:
			Error(w, r, http.StatusUnauthorized, authErr.Message)
		case shared.ClassAuthorization:
			Error(w, r, http.StatusForbidden, authErr.Message)
		default:
			Error(w, r, http.StatusInternalServerError, authErr.Message)
		}
		return
	}

	switch {
	case errors.Is(err, ErrNotFound):
		Error(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicate):
		Error(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, ErrValidation):
		Error(w, r, http.StatusBadRequest, err.Error())
	default:
		Error(w, r, http.StatusInternalServerError, "Internal server error")
	}
}
