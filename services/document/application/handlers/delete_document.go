package handlers

import (
	"net/http"

	"github.com/ghuser/procuredesk/pkg/httpx"
	"github.com/ghuser/procuredesk/pkg/logger"
	appsvcs "github.com/ghuser/procuredesk/services/document/application/services"
	"github.com/ghuser/procuredesk/services/document/domain/models"
)

// DeleteDocumentHandler handles DELETE /{kind}/{id}.
type DeleteDocumentHandler struct {
	svc  *appsvcs.Services
	log  logger.Logger
	kind models.Kind
}

// NewDeleteDocumentHandler returns a DeleteDocumentHandler for documents of kind.
func NewDeleteDocumentHandler(svc *appsvcs.Services, log logger.Logger, kind models.Kind) *DeleteDocumentHandler {
	return &DeleteDocumentHandler{svc: svc, log: log, kind: kind}
}

// Execute deletes a DRAFT document.
//
//	@Summary		Delete document
//	@Description	Deletes a document in a deletable status (DRAFT)
//	@Tags			purchase-orders,invoices
//	@Param			id	path	string	true	"Document ID"
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Router			/purchase-orders/{id} [delete]
//	@Router			/invoices/{id} [delete]
func (h *DeleteDocumentHandler) Execute(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := documentIDParam(w, r)
	if !ok {
		return
	}

	if err := h.svc.Document.Delete(r.Context(), h.kind, actorID, id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httpx.NoContent(w)
}
