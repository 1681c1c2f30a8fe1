package handlers

import (
	"net/http"
	"strconv"

	"github.com/ghuser/procuredesk/pkg/httpx"
	"github.com/ghuser/procuredesk/pkg/logger"
	appsvcs "github.com/ghuser/procuredesk/services/document/application/services"
	"github.com/ghuser/procuredesk/services/document/domain/models"
	"github.com/ghuser/procuredesk/services/document/domain/repositories"
)

// ListDocumentsHandler handles GET /{kind}.
type ListDocumentsHandler struct {
	svc  *appsvcs.Services
	log  logger.Logger
	kind models.Kind
}

// NewListDocumentsHandler returns a ListDocumentsHandler for documents of kind.
func NewListDocumentsHandler(svc *appsvcs.Services, log logger.Logger, kind models.Kind) *ListDocumentsHandler {
	return &ListDocumentsHandler{svc: svc, log: log, kind: kind}
}

// Execute lists documents visible to the session user, newest first.
//
//	@Summary		List documents
//	@Description	Lists purchase orders or invoices created by the session user or addressed to vendors they own
//	@Tags			purchase-orders,invoices
//	@Produce		json
//	@Param			limit	query		int		false	"Page size (default 20, max 100)"
//	@Param			offset	query		int		false	"Offset"
//	@Param			status	query		string	false	"Status filter"
//	@Success		200		{object}	DocumentListResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/purchase-orders [get]
//	@Router			/invoices [get]
func (h *ListDocumentsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"), appsvcs.DefaultPageSize)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	offset, err := intParam(q.Get("offset"), 0)
	if err != nil || offset < 0 {
		httpx.JSONError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}

	opts := repositories.QueryOpts{Limit: limit, Offset: offset, Status: models.Status(q.Get("status"))}
	docs, total, err := h.svc.Document.List(r.Context(), h.kind, actorID, opts)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	resp := DocumentListResponse{
		Data:   make([]DocumentResponse, len(docs)),
		Total:  total,
		Limit:  appsvcs.ClampLimit(limit),
		Offset: offset,
	}
	for i, doc := range docs {
		resp.Data[i] = toDocumentResponse(doc)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
