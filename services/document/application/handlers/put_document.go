package handlers

import (
	"net/http"

	"github.com/ghuser/procuredesk/pkg/httpx"
	"github.com/ghuser/procuredesk/pkg/logger"
	appsvcs "github.com/ghuser/procuredesk/services/document/application/services"
	"github.com/ghuser/procuredesk/services/document/domain/models"
	domainsvcs "github.com/ghuser/procuredesk/services/document/domain/services"
)

// PutDocumentHandler handles PUT /purchase-orders/{id} and PUT /invoices/{id}.
type PutDocumentHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewPutDocumentHandler returns a PutDocumentHandler backed by the given services.
func NewPutDocumentHandler(svc *appsvcs.Services, log logger.Logger) *PutDocumentHandler {
	return &PutDocumentHandler{svc: svc, log: log}
}

// PurchaseOrder replaces a purchase order's editable fields and items.
//
//	@Summary		Update purchase order
//	@Description	Full update. Items are replaced and totals recomputed; a status different from the current one must be an allowed transition.
//	@Tags			purchase-orders
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Document ID"
//	@Param			request	body		PurchaseOrderRequest	true	"Purchase order"
//	@Success		200		{object}	DocumentResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/purchase-orders/{id} [put]
func (h *PutDocumentHandler) PurchaseOrder(w http.ResponseWriter, r *http.Request) {
	d, ok := decodeDraft[PurchaseOrderRequest](w, r, h.log)
	if !ok {
		return
	}
	h.update(w, r, models.KindPurchaseOrder, d)
}

// Invoice replaces an invoice's editable fields and items.
//
//	@Summary		Update invoice
//	@Description	Full update. Items are replaced and totals recomputed; a status different from the current one must be an allowed transition.
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Document ID"
//	@Param			request	body		InvoiceRequest	true	"Invoice"
//	@Success		200		{object}	DocumentResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/invoices/{id} [put]
func (h *PutDocumentHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	d, ok := decodeDraft[InvoiceRequest](w, r, h.log)
	if !ok {
		return
	}
	h.update(w, r, models.KindInvoice, d)
}

func (h *PutDocumentHandler) update(w http.ResponseWriter, r *http.Request, kind models.Kind, d domainsvcs.Draft) {
	actorID, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := documentIDParam(w, r)
	if !ok {
		return
	}

	doc, err := h.svc.Document.Update(r.Context(), kind, actorID, id, d)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toDocumentResponse(doc))
}
