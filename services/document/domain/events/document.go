package events

import (
	"time"

	"github.com/google/uuid"
)

// Watermill topics published by the document context.
const (
	TopicDocumentCreated       = "document.created"
	TopicDocumentStatusChanged = "document.status_changed"
	TopicDocumentDeleted       = "document.deleted"
)

// DocumentCreatedEvent is published after a new document is persisted.
type DocumentCreatedEvent struct {
	EventID    uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int       `json:"version"`  // Schema version; increment on breaking changes
	DocumentID uuid.UUID `json:"document_id"`
	Kind       string    `json:"kind"`
	Number     string    `json:"number"`
	VendorID   uuid.UUID `json:"vendor_id"`
	Status     string    `json:"status"`
	ActorID    uuid.UUID `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DocumentStatusChangedEvent is published for every persisted status change,
// including system changes made by the overdue sweep. It is the input for
// vendor notifications.
type DocumentStatusChangedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	DocumentID uuid.UUID `json:"document_id"`
	Kind       string    `json:"kind"`
	Number     string    `json:"number"`
	VendorID   uuid.UUID `json:"vendor_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	ActorID    uuid.UUID `json:"actor_id"`
	Comment    *string   `json:"comment,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DocumentDeletedEvent is published once per deleted document.
type DocumentDeletedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	DocumentID uuid.UUID `json:"document_id"`
	Kind       string    `json:"kind"`
	Number     string    `json:"number"`
	ActorID    uuid.UUID `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
