package handlers

import (
	"net/http"

	"github.com/ghuser/procuredesk/pkg/httpx"
	"github.com/ghuser/procuredesk/pkg/logger"
	pkgvalidator "github.com/ghuser/procuredesk/pkg/validator"
	appsvcs "github.com/ghuser/procuredesk/services/document/application/services"
	"github.com/ghuser/procuredesk/services/document/domain/models"
)

// PatchDocumentStatusHandler handles PATCH /{kind}/{id}/status.
type PatchDocumentStatusHandler struct {
	svc  *appsvcs.Services
	log  logger.Logger
	kind models.Kind
}

// NewPatchDocumentStatusHandler returns a PatchDocumentStatusHandler for documents of kind.
func NewPatchDocumentStatusHandler(svc *appsvcs.Services, log logger.Logger, kind models.Kind) *PatchDocumentStatusHandler {
	return &PatchDocumentStatusHandler{svc: svc, log: log, kind: kind}
}

// Execute moves a document to a new status.
//
//	@Summary		Change document status
//	@Description	Applies one allowed transition and appends it to the status history. Moving to the current status is rejected.
//	@Tags			purchase-orders,invoices
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Document ID"
//	@Param			request	body		StatusRequest	true	"Target status"
//	@Success		200		{object}	StatusUpdateResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/purchase-orders/{id}/status [patch]
//	@Router			/invoices/{id}/status [patch]
func (h *PatchDocumentStatusHandler) Execute(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := documentIDParam(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[StatusRequest](w, r)
	if !ok {
		return
	}

	res, err := h.svc.Document.UpdateStatus(r.Context(), h.kind, actorID, id, models.Status(req.Status), req.Comment)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	httpx.JSON(w, http.StatusOK, StatusUpdateResponse{
		ID:           res.Document.ID,
		Status:       res.Document.Status.String(),
		HistoryEntry: toStatusChangeResponse(res.Entry),
		NextStatuses: statusStrings(res.NextStatuses),
	})
}
