package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SystemActorID marks status changes made by scheduled jobs rather than a user.
var SystemActorID = uuid.Nil

// StatusChange is one entry of a document's append-only status history.
type StatusChange struct {
	Status    Status
	Comment   *string
	ActorID   uuid.UUID
	ChangedAt time.Time
}

// Document is the aggregate shared by purchase orders and invoices.
type Document struct {
	ID            uuid.UUID
	Kind          Kind
	Number        string
	Status        Status
	VendorID      uuid.UUID
	VendorOwnerID uuid.UUID // resolved by persistence; zero when unknown
	IssueDate     time.Time
	DueDate       *time.Time
	Subject       string
	Notes         string
	Items         []LineItem
	TotalAmount   decimal.Decimal // pre-tax sum of item amounts
	TaxAmount     decimal.Decimal
	CreatedBy     uuid.UUID
	UpdatedBy     uuid.UUID
	StatusHistory []StatusChange
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewDocument constructs a Document with a generated ID and number, the given
// initial status and a single history entry recording creation.
// Amounts are left zero; callers apply the calculator before persisting.
func NewDocument(kind Kind, status Status, vendorID, actorID uuid.UUID, now time.Time) *Document {
	now = now.UTC()
	return &Document{
		ID:        uuid.New(),
		Kind:      kind,
		Number:    NewDocumentNumber(kind, now),
		Status:    status,
		VendorID:  vendorID,
		IssueDate: DateOnly(now),
		CreatedBy: actorID,
		UpdatedBy: actorID,
		StatusHistory: []StatusChange{{
			Status:    status,
			ActorID:   actorID,
			ChangedAt: now,
		}},
		TotalAmount: decimal.Zero,
		TaxAmount:   decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewDocumentNumber derives a human-readable number from the creation time,
// e.g. PO-20240331-153045123.
func NewDocumentNumber(kind Kind, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s-%s-%s%03d", kind.NumberPrefix(), t.Format("20060102"), t.Format("150405"), t.Nanosecond()/int(time.Millisecond))
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// OwnedBy reports whether actorID created the document or owns its vendor.
func (d *Document) OwnedBy(actorID uuid.UUID) bool {
	if actorID == uuid.Nil {
		return false
	}
	return d.CreatedBy == actorID || d.VendorOwnerID == actorID
}

// GrandTotal is the amount payable: pre-tax total plus tax.
func (d *Document) GrandTotal() decimal.Decimal {
	return d.TotalAmount.Add(d.TaxAmount)
}

// ApplyStatus moves the document to change.Status and appends the change to
// the history. It does not check the transition table.
func (d *Document) ApplyStatus(change StatusChange) {
	d.Status = change.Status
	d.StatusHistory = append(d.StatusHistory, change)
	d.UpdatedBy = change.ActorID
	d.UpdatedAt = change.ChangedAt
}

// LatestStatusChange returns the most recent history entry.
func (d *Document) LatestStatusChange() (StatusChange, bool) {
	if len(d.StatusHistory) == 0 {
		return StatusChange{}, false
	}
	return d.StatusHistory[len(d.StatusHistory)-1], true
}
