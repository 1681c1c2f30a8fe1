// Package services contains stateless domain services for the document bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have zero external dependencies beyond the domain layer and its value types.
package services

import (
	"github.com/ghuser/procuredesk/services/document/domain"
	"github.com/ghuser/procuredesk/services/document/domain/models"
)

// transitions is the canonical status table per kind: current status → allowed next statuses.
// Every call site (single update, full update, bulk) consults this table.
var transitions = map[models.Kind]map[models.Status][]models.Status{
	models.KindPurchaseOrder: {
		models.StatusDraft:     {models.StatusPending, models.StatusSent, models.StatusRejected},
		models.StatusPending:   {models.StatusSent, models.StatusRejected},
		models.StatusSent:      {models.StatusCompleted, models.StatusRejected},
		models.StatusCompleted: {},
		models.StatusRejected:  {models.StatusDraft},
		models.StatusOverdue:   {models.StatusPending},
	},
	models.KindInvoice: {
		models.StatusDraft:     {models.StatusPending},
		models.StatusPending:   {models.StatusReviewing, models.StatusRejected},
		models.StatusReviewing: {models.StatusApproved, models.StatusRejected},
		models.StatusApproved:  {models.StatusPaid, models.StatusRejected},
		models.StatusPaid:      {},
		models.StatusRejected:  {models.StatusDraft},
		models.StatusOverdue:   {models.StatusPending},
	},
}

var deletableStatuses = map[models.Kind][]models.Status{
	models.KindPurchaseOrder: {models.StatusDraft},
	models.KindInvoice:       {models.StatusDraft},
}

// InitialStatus is the status assigned on creation when none is supplied.
func InitialStatus(_ models.Kind) models.Status {
	return models.StatusDraft
}

// IsValidTransition reports whether kind permits moving from → to.
// A status is never its own successor, and terminal statuses have no successors.
func IsValidTransition(kind models.Kind, from, to models.Status) bool {
	for _, next := range transitions[kind][from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from the given one.
func NextStatuses(kind models.Kind, from models.Status) []models.Status {
	allowed := transitions[kind][from]
	out := make([]models.Status, len(allowed))
	copy(out, allowed)
	return out
}

// IsTerminal reports whether no transition leaves s.
func IsTerminal(kind models.Kind, s models.Status) bool {
	next, ok := transitions[kind][s]
	return ok && len(next) == 0
}

// IsDeletable reports whether a document of kind may be deleted while in s.
func IsDeletable(kind models.Kind, s models.Status) bool {
	for _, d := range deletableStatuses[kind] {
		if d == s {
			return true
		}
	}
	return false
}

// ValidateStatusChange returns a *domain.TransitionError when from → to is not
// permitted, including a change to the current status.
func ValidateStatusChange(kind models.Kind, from, to models.Status) error {
	if IsValidTransition(kind, from, to) {
		return nil
	}
	return &domain.TransitionError{
		Kind:    kind,
		From:    from,
		To:      to,
		Allowed: NextStatuses(kind, from),
	}
}
