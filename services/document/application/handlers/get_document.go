package handlers

import (
	"net/http"

	"github.com/ghuser/procuredesk/pkg/httpx"
	"github.com/ghuser/procuredesk/pkg/logger"
	appsvcs "github.com/ghuser/procuredesk/services/document/application/services"
	"github.com/ghuser/procuredesk/services/document/domain/models"
)

// GetDocumentHandler handles GET /{kind}/{id}.
type GetDocumentHandler struct {
	svc  *appsvcs.Services
	log  logger.Logger
	kind models.Kind
}

// NewGetDocumentHandler returns a GetDocumentHandler for documents of kind.
func NewGetDocumentHandler(svc *appsvcs.Services, log logger.Logger, kind models.Kind) *GetDocumentHandler {
	return &GetDocumentHandler{svc: svc, log: log, kind: kind}
}

// Execute returns one document visible to the session user.
//
//	@Summary		Get document
//	@Description	Returns a purchase order or invoice with items, totals, tax breakdown and status history
//	@Tags			purchase-orders,invoices
//	@Produce		json
//	@Param			id	path		string	true	"Document ID"
//	@Success		200	{object}	DocumentResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/purchase-orders/{id} [get]
//	@Router			/invoices/{id} [get]
func (h *GetDocumentHandler) Execute(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := documentIDParam(w, r)
	if !ok {
		return
	}

	doc, err := h.svc.Document.Get(r.Context(), h.kind, actorID, id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toDocumentResponse(doc))
}
