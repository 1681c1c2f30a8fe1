package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ghuser/procuredesk/services/document/domain/models"
)

func TestSentinelErrors_Messages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrDocumentNotFound, "document not found"},
		{ErrDocumentAlreadyExists, "document already exists"},
		{ErrUnauthorizedDocuments, "contains unauthorized documents"},
		{ErrBulkLimitExceeded, "bulk operation exceeds document limit"},
	}
	for _, tt := range tests {
		if tt.err.Error() != tt.want {
			t.Errorf("unexpected message: got %q, want %q", tt.err.Error(), tt.want)
		}
	}
}

func TestSentinelErrors_WrappedIdentity(t *testing.T) {
	wrapped := fmt.Errorf("get document: %w", ErrDocumentNotFound)
	if !errors.Is(wrapped, ErrDocumentNotFound) {
		t.Fatal("errors.Is must match wrapped ErrDocumentNotFound")
	}
}

func TestValidationError(t *testing.T) {
	t.Run("empty collector is nil", func(t *testing.T) {
		var v ValidationError
		if err := v.OrNil(); err != nil {
			t.Fatalf("expected nil, got %v", err)
		}
	})

	t.Run("accumulates fields and unwraps", func(t *testing.T) {
		var v ValidationError
		v.Add("vendor_id", "vendor is required")
		v.Add("items", "at least one item required")

		err := v.OrNil()
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
		var ve *ValidationError
		if !errors.As(fmt.Errorf("create: %w", err), &ve) {
			t.Fatal("errors.As must find *ValidationError through wrapping")
		}
		if len(ve.Fields) != 2 {
			t.Fatalf("expected 2 fields, got %d", len(ve.Fields))
		}
		if !strings.Contains(err.Error(), "items: at least one item required") {
			t.Errorf("message missing field detail: %q", err.Error())
		}
	})
}

func TestTypedErrors_Unwrap(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"transition", &TransitionError{Kind: models.KindInvoice, From: models.StatusPaid, To: models.StatusDraft}, ErrInvalidTransition},
		{"ownership", &OwnershipError{Requested: 2, Resolved: 1}, ErrUnauthorizedDocuments},
		{"eligibility", &EligibilityError{BlockingIDs: []uuid.UUID{uuid.New()}}, ErrNotDeletable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.target) {
				t.Fatalf("expected %v to unwrap to %v", tt.err, tt.target)
			}
		})
	}
}

func TestTransitionError_Message(t *testing.T) {
	err := &TransitionError{Kind: models.KindPurchaseOrder, From: models.StatusCompleted, To: models.StatusSent}
	want := "invalid status transition: purchase_order cannot move from COMPLETED to SENT"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}
