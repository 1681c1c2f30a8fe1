package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/procuredesk/services/document/domain"
	"github.com/ghuser/procuredesk/services/document/domain/models"
)

// MaxBulkDocuments caps the number of ids accepted by one bulk call.
const MaxBulkDocuments = 100

// BulkAction is either BulkDelete or BulkUpdateStatus.
type BulkAction interface {
	TargetIDs() []uuid.UUID
	bulkAction()
}

// BulkDelete removes every target document, or none of them.
type BulkDelete struct {
	IDs []uuid.UUID
}

// BulkUpdateStatus moves each target document to Status independently.
type BulkUpdateStatus struct {
	IDs     []uuid.UUID
	Status  models.Status
	Comment *string
}

func (a BulkDelete) TargetIDs() []uuid.UUID       { return a.IDs }
func (a BulkUpdateStatus) TargetIDs() []uuid.UUID { return a.IDs }
func (BulkDelete) bulkAction()                    {}
func (BulkUpdateStatus) bulkAction()              {}

// BulkItemResult is the per-document outcome of a bulk status update.
type BulkItemResult struct {
	ID      uuid.UUID
	Success bool
	Error   string
}

// NormalizeBulkIDs enforces the size cap on the ids as supplied, then rejects
// empty lists and nil ids, and drops duplicates keeping first-seen order.
func NormalizeBulkIDs(ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) > MaxBulkDocuments {
		return nil, fmt.Errorf("%w: got %d ids, max %d", domain.ErrBulkLimitExceeded, len(ids), MaxBulkDocuments)
	}

	var v domain.ValidationError
	if len(ids) == 0 {
		v.Add("ids", "at least one id required")
		return nil, v.OrNil()
	}

	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for i, id := range ids {
		if id == uuid.Nil {
			v.Add(fmt.Sprintf("ids[%d]", i), "id must not be empty")
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckOwnership is the all-or-nothing gate: every requested id must be among
// the documents resolved for the actor.
func CheckOwnership(requested []uuid.UUID, resolved []*models.Document) error {
	found := make(map[uuid.UUID]struct{}, len(resolved))
	for _, doc := range resolved {
		found[doc.ID] = struct{}{}
	}
	matched := 0
	for _, id := range requested {
		if _, ok := found[id]; ok {
			matched++
		}
	}
	if matched != len(requested) || len(resolved) != len(requested) {
		return &domain.OwnershipError{Requested: len(requested), Resolved: matched}
	}
	return nil
}

// CheckDeletable rejects the whole set when any document is outside the kind's
// deletable statuses, listing the blocking ids.
func CheckDeletable(kind models.Kind, docs []*models.Document) error {
	var blocking []uuid.UUID
	for _, doc := range docs {
		if !IsDeletable(kind, doc.Status) {
			blocking = append(blocking, doc.ID)
		}
	}
	if len(blocking) > 0 {
		return &domain.EligibilityError{BlockingIDs: blocking}
	}
	return nil
}

// PlanStatusUpdate splits docs into those that may move to `to` and a failure
// result for each one that may not.
func PlanStatusUpdate(kind models.Kind, docs []*models.Document, to models.Status) (apply []*models.Document, rejected map[uuid.UUID]BulkItemResult) {
	rejected = make(map[uuid.UUID]BulkItemResult)
	for _, doc := range docs {
		if err := ValidateStatusChange(kind, doc.Status, to); err != nil {
			rejected[doc.ID] = BulkItemResult{ID: doc.ID, Success: false, Error: err.Error()}
			continue
		}
		apply = append(apply, doc)
	}
	return apply, rejected
}
