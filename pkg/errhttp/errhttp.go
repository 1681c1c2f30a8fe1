// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/procuredesk/pkg/httpx"
	docdomain "github.com/ghuser/procuredesk/services/document/domain"
)

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly; typed
// domain errors add their details to the body next to "error".
// Unrecognized errors become a 500 whose message is not exposed.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		httpx.JSONError(w, status, http.StatusText(status))
		return
	}
	httpx.JSON(w, status, body(err))
}

// StatusFor returns the HTTP status WriteError uses for err.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, docdomain.ErrValidation):
		return http.StatusUnprocessableEntity // 422
	case errors.Is(err, docdomain.ErrInvalidTransition),
		errors.Is(err, docdomain.ErrBulkLimitExceeded):
		return http.StatusBadRequest // 400
	case errors.Is(err, docdomain.ErrUnauthorizedDocuments):
		return http.StatusForbidden // 403
	case errors.Is(err, docdomain.ErrDocumentNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, docdomain.ErrNotDeletable),
		errors.Is(err, docdomain.ErrDocumentAlreadyExists):
		return http.StatusConflict // 409
	default:
		return http.StatusInternalServerError // 500
	}
}

func body(err error) map[string]any {
	b := map[string]any{"error": err.Error()}

	var verr *docdomain.ValidationError
	var terr *docdomain.TransitionError
	var eerr *docdomain.EligibilityError
	switch {
	case errors.As(err, &verr):
		b["fields"] = verr.Fields
	case errors.As(err, &terr):
		allowed := make([]string, len(terr.Allowed))
		for i, s := range terr.Allowed {
			allowed[i] = s.String()
		}
		b["allowed_statuses"] = allowed
	case errors.As(err, &eerr):
		b["blocking_ids"] = eerr.BlockingIDs
	}
	return b
}
