package httpx

import (
	"errors"
	"net/http"

	"github.com/fieldline-erp/fieldline-erp/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Persistence failures deliberately hide the driver message from clients;
// the full chain is left to the caller's logger.
func RespondError(w http.ResponseWriter, err error) {
	var pe *shared.PersistenceError
	switch {
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.As(err, &pe):
		Problem(w, http.StatusServiceUnavailable, "Storage Unavailable", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
