package services

import (
	"time"

	"github.com/ghuser/procuredesk/services/document/domain/models"
)

// OverdueComment is recorded on history entries written by the overdue sweep.
const OverdueComment = "due date passed"

// overdueEligible lists the statuses in which a passed due/delivery date turns
// a document OVERDUE. This is a system rule applied by the scheduled sweep; it
// bypasses the user transition table, which only governs leaving OVERDUE.
var overdueEligible = map[models.Kind][]models.Status{
	models.KindPurchaseOrder: {models.StatusPending, models.StatusSent},
	models.KindInvoice:       {models.StatusPending, models.StatusReviewing, models.StatusApproved},
}

// OverdueEligibleStatuses returns the statuses the overdue sweep considers.
func OverdueEligibleStatuses(kind models.Kind) []models.Status {
	out := make([]models.Status, len(overdueEligible[kind]))
	copy(out, overdueEligible[kind])
	return out
}

// IsOverdue reports whether doc's due date is strictly before asOf's calendar
// day while doc is in an overdue-eligible status.
func IsOverdue(doc *models.Document, asOf time.Time) bool {
	if doc.DueDate == nil {
		return false
	}
	if !models.DateOnly(*doc.DueDate).Before(models.DateOnly(asOf)) {
		return false
	}
	for _, s := range overdueEligible[doc.Kind] {
		if s == doc.Status {
			return true
		}
	}
	return false
}

// MarkOverdue moves an overdue document to OVERDUE on behalf of the system
// actor. It reports whether the document changed.
func MarkOverdue(doc *models.Document, now time.Time) bool {
	if !IsOverdue(doc, now) {
		return false
	}
	comment := OverdueComment
	doc.ApplyStatus(models.StatusChange{
		Status:    models.StatusOverdue,
		Comment:   &comment,
		ActorID:   models.SystemActorID,
		ChangedAt: now.UTC(),
	})
	return true
}
