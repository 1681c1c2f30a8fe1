package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ghuser/procuredesk/services/document/domain/models"
)

// Sentinel errors for the document domain. Use errors.Is() to check these.
// The typed errors below unwrap to them.
var (
	// ErrDocumentNotFound indicates the document does not exist or is not visible to the actor.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrDocumentAlreadyExists indicates a document number collision.
	ErrDocumentAlreadyExists = errors.New("document already exists")

	// ErrValidation indicates a malformed or rule-violating draft.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition indicates a status change not present in the transition table.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnauthorizedDocuments indicates a bulk target set containing documents the actor does not own.
	ErrUnauthorizedDocuments = errors.New("contains unauthorized documents")

	// ErrNotDeletable indicates deletion of a document outside its kind's deletable statuses.
	ErrNotDeletable = errors.New("document is not deletable in its current status")

	// ErrBulkLimitExceeded indicates a bulk call over the per-call document cap.
	ErrBulkLimitExceeded = errors.New("bulk operation exceeds document limit")
)

// FieldError is one field-level validation failure. Field uses the wire name,
// e.g. "vendor_id" or "items[2].quantity".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field-level failure found in a draft.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Add records a failure for field.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns e when it holds failures, nil otherwise.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// TransitionError reports a rejected status change together with the statuses
// that are reachable from the current one.
type TransitionError struct {
	Kind    models.Kind
	From    models.Status
	To      models.Status
	Allowed []models.Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s cannot move from %s to %s", ErrInvalidTransition, e.Kind, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// OwnershipError rejects a whole bulk call because some requested documents
// were not resolved for the actor.
type OwnershipError struct {
	Requested int
	Resolved  int
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("%s: resolved %d of %d requested documents", ErrUnauthorizedDocuments, e.Resolved, e.Requested)
}

func (e *OwnershipError) Unwrap() error { return ErrUnauthorizedDocuments }

// EligibilityError rejects a whole delete because some documents are not in a
// deletable status. BlockingIDs lets the caller retry with a reduced set.
type EligibilityError struct {
	BlockingIDs []uuid.UUID
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("%s: %d blocking document(s)", ErrNotDeletable, len(e.BlockingIDs))
}

func (e *EligibilityError) Unwrap() error { return ErrNotDeletable }
