package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/procuredesk/pkg/auth"
	"github.com/ghuser/procuredesk/pkg/errhttp"
	"github.com/ghuser/procuredesk/pkg/httpx"
	"github.com/ghuser/procuredesk/pkg/logger"
	"github.com/ghuser/procuredesk/pkg/telemetry"
	pkgvalidator "github.com/ghuser/procuredesk/pkg/validator"
	domainsvcs "github.com/ghuser/procuredesk/services/document/domain/services"
)

// actorFromRequest returns the authenticated actor or writes a 401.
func actorFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	actorID, err := auth.ActorIDFromCtx(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
		return uuid.Nil, false
	}
	return actorID, true
}

// documentIDParam parses the {id} route parameter or writes a 400.
func documentIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid document id")
		return uuid.Nil, false
	}
	return id, true
}

// writeError logs and reports unexpected failures before delegating to errhttp.
func writeError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	if errhttp.StatusFor(err) >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "document request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		tags := map[string]string{"method": r.Method}
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			tags["route"] = rctx.RoutePattern()
		}
		telemetry.CaptureError(r.Context(), err, tags)
	}
	errhttp.WriteError(w, err)
}

type draftRequest interface {
	PurchaseOrderRequest | InvoiceRequest
	draft() (domainsvcs.Draft, error)
}

// decodeDraft validates the body shape of T and converts it to a draft.
// It writes the error response itself and reports false on failure.
func decodeDraft[T draftRequest](w http.ResponseWriter, r *http.Request, log logger.Logger) (domainsvcs.Draft, bool) {
	req, ok := pkgvalidator.ValidateRequest[T](w, r)
	if !ok {
		return domainsvcs.Draft{}, false
	}
	d, err := (*req).draft()
	if err != nil {
		writeError(w, r, log, err)
		return domainsvcs.Draft{}, false
	}
	return d, true
}
