package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/procuredesk/services/document/domain"
	"github.com/ghuser/procuredesk/services/document/domain/models"
	domainsvcs "github.com/ghuser/procuredesk/services/document/domain/services"
)

// LineItemRequest is one item of a create or update body.
type LineItemRequest struct {
	ItemName    string          `json:"item_name"             example:"Paper A4 (500 sheets)"`
	Quantity    int             `json:"quantity"              example:"2"`
	UnitPrice   decimal.Decimal `json:"unit_price"            swaggertype:"string" example:"1000"`
	TaxRate     decimal.Decimal `json:"tax_rate"              swaggertype:"string" example:"0.10"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=1000"`
} // @name LineItemRequest

// PurchaseOrderRequest is the body of POST and PUT /purchase-orders.
type PurchaseOrderRequest struct {
	VendorID     uuid.UUID         `json:"vendor_id"               validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	OrderDate    *string           `json:"order_date,omitempty"    validate:"omitempty,datetime=2006-01-02" example:"2026-03-10"`
	DeliveryDate *string           `json:"delivery_date,omitempty" validate:"omitempty,datetime=2006-01-02" example:"2026-03-31"`
	Status       *string           `json:"status,omitempty"        example:"DRAFT"`
	Subject      string            `json:"subject"                 validate:"max=255" example:"Office supplies Q2"`
	Notes        string            `json:"notes"                   validate:"max=2000"`
	Items        []LineItemRequest `json:"items"                   validate:"dive"`
} // @name PurchaseOrderRequest

// InvoiceRequest is the body of POST and PUT /invoices.
type InvoiceRequest struct {
	VendorID  uuid.UUID         `json:"vendor_id"            validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	IssueDate *string           `json:"issue_date,omitempty" validate:"omitempty,datetime=2006-01-02" example:"2026-03-10"`
	DueDate   *string           `json:"due_date,omitempty"   validate:"omitempty,datetime=2006-01-02" example:"2026-04-10"`
	Status    *string           `json:"status,omitempty"     example:"DRAFT"`
	Subject   string            `json:"subject"              validate:"max=255" example:"March consulting"`
	Notes     string            `json:"notes"                validate:"max=2000"`
	Items     []LineItemRequest `json:"items"                validate:"dive"`
} // @name InvoiceRequest

// StatusRequest is the body of PATCH /{id}/status.
type StatusRequest struct {
	Status  string  `json:"status"            validate:"required" example:"SENT"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=1000" example:"sent to vendor by email"`
} // @name StatusRequest

// BulkRequest is the body of POST /bulk. Status is required for updateStatus.
type BulkRequest struct {
	Action  string      `json:"action"            validate:"required,oneof=delete updateStatus" example:"updateStatus"`
	IDs     []uuid.UUID `json:"ids"               validate:"required"`
	Status  string      `json:"status,omitempty"  validate:"required_if=Action updateStatus" example:"APPROVED"`
	Comment *string     `json:"comment,omitempty" validate:"omitempty,max=1000"`
} // @name BulkRequest

func (r PurchaseOrderRequest) draft() (domainsvcs.Draft, error) {
	return buildDraft(models.KindPurchaseOrder, r.VendorID, r.OrderDate, r.DeliveryDate, r.Status, r.Subject, r.Notes, r.Items)
}

func (r InvoiceRequest) draft() (domainsvcs.Draft, error) {
	return buildDraft(models.KindInvoice, r.VendorID, r.IssueDate, r.DueDate, r.Status, r.Subject, r.Notes, r.Items)
}

func buildDraft(kind models.Kind, vendorID uuid.UUID, issue, due, status *string, subject, notes string, items []LineItemRequest) (domainsvcs.Draft, error) {
	var v domain.ValidationError
	d := domainsvcs.Draft{
		VendorID:  vendorID,
		IssueDate: parseDate(&v, kind.IssueDateField(), issue),
		DueDate:   parseDate(&v, kind.DueDateField(), due),
		Subject:   subject,
		Notes:     notes,
		Items:     make([]models.LineItem, len(items)),
	}
	if status != nil {
		s := models.Status(*status)
		d.Status = &s
	}
	for i, it := range items {
		d.Items[i] = models.LineItem{
			ItemName:    it.ItemName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
			Description: it.Description,
		}
	}
	return d, v.OrNil()
}

func parseDate(v *domain.ValidationError, field string, s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, *s)
	if err != nil {
		v.Add(field, "must be a date formatted YYYY-MM-DD")
		return nil
	}
	return &t
}

// LineItemResponse is one item of a document response.
type LineItemResponse struct {
	ItemName    string          `json:"item_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" swaggertype:"string" example:"1000"`
	TaxRate     decimal.Decimal `json:"tax_rate"   swaggertype:"string" example:"0.1"`
	Amount      decimal.Decimal `json:"amount"     swaggertype:"string" example:"2000"`
	Description *string         `json:"description,omitempty"`
} // @name LineItemResponse

// StatusChangeResponse is one status history entry.
type StatusChangeResponse struct {
	Status    string    `json:"status"            example:"SENT"`
	Comment   *string   `json:"comment,omitempty"`
	ActorID   uuid.UUID `json:"actor_id"`
	ChangedAt time.Time `json:"changed_at"        example:"2026-03-10T12:00:00Z"`
} // @name StatusChangeResponse

// TaxBreakdownResponse is the taxable base and tax for one rate.
type TaxBreakdownResponse struct {
	Rate          decimal.Decimal `json:"rate"           swaggertype:"string" example:"0.1"`
	TaxableAmount decimal.Decimal `json:"taxable_amount" swaggertype:"string" example:"8000"`
	TaxAmount     decimal.Decimal `json:"tax_amount"     swaggertype:"string" example:"800"`
} // @name TaxBreakdownResponse

// DocumentResponse is a purchase order or invoice. Only the date pair of the
// document's kind is populated.
type DocumentResponse struct {
	ID            uuid.UUID              `json:"id"`
	Kind          string                 `json:"kind"                    example:"purchase_order"`
	Number        string                 `json:"document_number"         example:"PO-20260310-120000000"`
	Status        string                 `json:"status"                  example:"DRAFT"`
	VendorID      uuid.UUID              `json:"vendor_id"`
	OrderDate     *string                `json:"order_date,omitempty"    example:"2026-03-10"`
	DeliveryDate  *string                `json:"delivery_date,omitempty" example:"2026-03-31"`
	IssueDate     *string                `json:"issue_date,omitempty"`
	DueDate       *string                `json:"due_date,omitempty"`
	Subject       string                 `json:"subject"`
	Notes         string                 `json:"notes"`
	Items         []LineItemResponse     `json:"items"`
	TotalAmount   decimal.Decimal        `json:"total_amount"            swaggertype:"string" example:"8000"`
	TaxAmount     decimal.Decimal        `json:"tax_amount"              swaggertype:"string" example:"800"`
	GrandTotal    decimal.Decimal        `json:"grand_total"             swaggertype:"string" example:"8800"`
	TaxBreakdown  []TaxBreakdownResponse `json:"tax_breakdown"`
	StatusHistory []StatusChangeResponse `json:"status_history"`
	NextStatuses  []string               `json:"next_statuses"`
	CreatedBy     uuid.UUID              `json:"created_by"`
	UpdatedBy     uuid.UUID              `json:"updated_by"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
} // @name DocumentResponse

// DocumentListResponse is a page of documents.
type DocumentListResponse struct {
	Data   []DocumentResponse `json:"data"`
	Total  int                `json:"total"  example:"42"`
	Limit  int                `json:"limit"  example:"20"`
	Offset int                `json:"offset" example:"0"`
} // @name DocumentListResponse

// StatusUpdateResponse is returned by PATCH /{id}/status.
type StatusUpdateResponse struct {
	ID           uuid.UUID            `json:"id"`
	Status       string               `json:"status" example:"SENT"`
	HistoryEntry StatusChangeResponse `json:"history_entry"`
	NextStatuses []string             `json:"next_statuses"`
} // @name StatusUpdateResponse

// BulkItemResponse is the outcome for one id of a bulk status update.
type BulkItemResponse struct {
	ID      uuid.UUID `json:"id"`
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
} // @name BulkItemResponse

// BulkResponse is returned by POST /bulk. DeletedCount is set for deletes,
// Results for status updates.
type BulkResponse struct {
	Message      string             `json:"message"                 example:"2 of 3 documents updated"`
	DeletedCount *int               `json:"deleted_count,omitempty" example:"3"`
	Results      []BulkItemResponse `json:"results,omitempty"`
} // @name BulkResponse

// ErrorResponse is returned on all error responses. Depending on the error it
// also carries fields, allowed_statuses or blocking_ids.
type ErrorResponse struct {
	Error           string              `json:"error"                      example:"document not found"`
	Fields          []domain.FieldError `json:"fields,omitempty"`
	AllowedStatuses []string            `json:"allowed_statuses,omitempty"`
	BlockingIDs     []uuid.UUID         `json:"blocking_ids,omitempty"`
} // @name ErrorResponse

func formatDate(t time.Time) *string {
	s := t.Format(time.DateOnly)
	return &s
}

func statusStrings(ss []models.Status) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.String()
	}
	return out
}

func toStatusChangeResponse(c models.StatusChange) StatusChangeResponse {
	return StatusChangeResponse{
		Status:    c.Status.String(),
		Comment:   c.Comment,
		ActorID:   c.ActorID,
		ChangedAt: c.ChangedAt,
	}
}

func toDocumentResponse(doc *models.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:            doc.ID,
		Kind:          doc.Kind.String(),
		Number:        doc.Number,
		Status:        doc.Status.String(),
		VendorID:      doc.VendorID,
		Subject:       doc.Subject,
		Notes:         doc.Notes,
		Items:         make([]LineItemResponse, len(doc.Items)),
		TotalAmount:   doc.TotalAmount,
		TaxAmount:     doc.TaxAmount,
		GrandTotal:    doc.GrandTotal(),
		StatusHistory: make([]StatusChangeResponse, len(doc.StatusHistory)),
		NextStatuses:  statusStrings(domainsvcs.NextStatuses(doc.Kind, doc.Status)),
		CreatedBy:     doc.CreatedBy,
		UpdatedBy:     doc.UpdatedBy,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}

	issue := formatDate(doc.IssueDate)
	var due *string
	if doc.DueDate != nil {
		due = formatDate(*doc.DueDate)
	}
	if doc.Kind == models.KindPurchaseOrder {
		resp.OrderDate, resp.DeliveryDate = issue, due
	} else {
		resp.IssueDate, resp.DueDate = issue, due
	}

	for i, it := range doc.Items {
		resp.Items[i] = LineItemResponse{
			ItemName:    it.ItemName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
			Amount:      it.Amount(),
			Description: it.Description,
		}
	}
	for _, b := range domainsvcs.ByRate(doc.Items) {
		resp.TaxBreakdown = append(resp.TaxBreakdown, TaxBreakdownResponse{
			Rate:          b.Rate,
			TaxableAmount: b.TaxableAmount,
			TaxAmount:     b.TaxAmount,
		})
	}
	if resp.TaxBreakdown == nil {
		resp.TaxBreakdown = []TaxBreakdownResponse{}
	}
	for i, c := range doc.StatusHistory {
		resp.StatusHistory[i] = toStatusChangeResponse(c)
	}
	return resp
}
