package handlers

import (
	"net/http"

	"github.com/ghuser/procuredesk/pkg/httpx"
	"github.com/ghuser/procuredesk/pkg/logger"
	appsvcs "github.com/ghuser/procuredesk/services/document/application/services"
	"github.com/ghuser/procuredesk/services/document/domain/models"
	domainsvcs "github.com/ghuser/procuredesk/services/document/domain/services"
)

// PostDocumentHandler handles POST /purchase-orders and POST /invoices.
type PostDocumentHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewPostDocumentHandler returns a PostDocumentHandler backed by the given services.
func NewPostDocumentHandler(svc *appsvcs.Services, log logger.Logger) *PostDocumentHandler {
	return &PostDocumentHandler{svc: svc, log: log}
}

// PurchaseOrder creates a purchase order.
//
//	@Summary		Create purchase order
//	@Description	Creates a purchase order owned by the session user. Status defaults to DRAFT and order_date to today.
//	@Tags			purchase-orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		PurchaseOrderRequest	true	"Purchase order"
//	@Success		201		{object}	DocumentResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/purchase-orders [post]
func (h *PostDocumentHandler) PurchaseOrder(w http.ResponseWriter, r *http.Request) {
	d, ok := decodeDraft[PurchaseOrderRequest](w, r, h.log)
	if !ok {
		return
	}
	h.create(w, r, models.KindPurchaseOrder, d)
}

// Invoice creates an invoice.
//
//	@Summary		Create invoice
//	@Description	Creates an invoice owned by the session user. Status defaults to DRAFT and issue_date to today.
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			request	body		InvoiceRequest	true	"Invoice"
//	@Success		201		{object}	DocumentResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/invoices [post]
func (h *PostDocumentHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	d, ok := decodeDraft[InvoiceRequest](w, r, h.log)
	if !ok {
		return
	}
	h.create(w, r, models.KindInvoice, d)
}

func (h *PostDocumentHandler) create(w http.ResponseWriter, r *http.Request, kind models.Kind, d domainsvcs.Draft) {
	actorID, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	doc, err := h.svc.Document.Create(r.Context(), kind, actorID, d)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toDocumentResponse(doc))
}
