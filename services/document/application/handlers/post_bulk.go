package handlers

import (
	"net/http"

	"github.com/ghuser/procuredesk/pkg/httpx"
	"github.com/ghuser/procuredesk/pkg/logger"
	pkgvalidator "github.com/ghuser/procuredesk/pkg/validator"
	appsvcs "github.com/ghuser/procuredesk/services/document/application/services"
	"github.com/ghuser/procuredesk/services/document/domain/models"
	domainsvcs "github.com/ghuser/procuredesk/services/document/domain/services"
)

// PostBulkHandler handles POST /{kind}/bulk.
type PostBulkHandler struct {
	svc  *appsvcs.Services
	log  logger.Logger
	kind models.Kind
}

// NewPostBulkHandler returns a PostBulkHandler for documents of kind.
func NewPostBulkHandler(svc *appsvcs.Services, log logger.Logger, kind models.Kind) *PostBulkHandler {
	return &PostBulkHandler{svc: svc, log: log, kind: kind}
}

// Execute applies a bulk delete or status update.
//
//	@Summary		Bulk document operation
//	@Description	delete removes all ids or none (only DRAFT documents). updateStatus applies the transition per document and reports each outcome in request order. At most 100 ids; every id must belong to the session user.
//	@Tags			purchase-orders,invoices
//	@Accept			json
//	@Produce		json
//	@Param			request	body		BulkRequest	true	"Bulk action"
//	@Success		200		{object}	BulkResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/purchase-orders/bulk [post]
//	@Router			/invoices/bulk [post]
func (h *PostBulkHandler) Execute(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[BulkRequest](w, r)
	if !ok {
		return
	}

	var action domainsvcs.BulkAction
	if req.Action == "delete" {
		action = domainsvcs.BulkDelete{IDs: req.IDs}
	} else {
		action = domainsvcs.BulkUpdateStatus{IDs: req.IDs, Status: models.Status(req.Status), Comment: req.Comment}
	}

	res, err := h.svc.Document.BulkApply(r.Context(), h.kind, actorID, action)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	resp := BulkResponse{Message: res.Message}
	if res.Action == "delete" {
		n := res.DeletedCount
		resp.DeletedCount = &n
	} else {
		resp.Results = make([]BulkItemResponse, len(res.Results))
		for i, item := range res.Results {
			resp.Results[i] = BulkItemResponse{ID: item.ID, Success: item.Success, Error: item.Error}
		}
	}
	httpx.JSON(w, http.StatusOK, resp)
}
