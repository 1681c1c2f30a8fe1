// Package subscribers consumes document events in the worker process.
package subscribers

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/procuredesk/pkg/events"
	"github.com/ghuser/procuredesk/pkg/logger"
	docevents "github.com/ghuser/procuredesk/services/document/domain/events"
)

// CacheInvalidator drops cached read models. *cache.DocumentCache satisfies it.
type CacheInvalidator interface {
	Delete(ctx context.Context, kind string, ids ...uuid.UUID) error
}

// Handler is the signature expected by events.EventBus.Subscribe.
type Handler = func(context.Context, *message.Message) error

// Subscribers holds the document event handlers.
// Handlers must be idempotent: EventBus retries up to 3x on failure.
type Subscribers struct {
	cache CacheInvalidator
	log   logger.Logger
}

// New returns Subscribers. cache may be nil, in which case invalidation is skipped.
func New(cache CacheInvalidator, log logger.Logger) *Subscribers {
	return &Subscribers{cache: cache, log: log}
}

// Handlers maps each document topic to its handler.
func (s *Subscribers) Handlers() map[string]Handler {
	return map[string]Handler{
		docevents.TopicDocumentCreated:       s.HandleCreated,
		docevents.TopicDocumentStatusChanged: s.HandleStatusChanged,
		docevents.TopicDocumentDeleted:       s.HandleDeleted,
	}
}

// HandleCreated records the creation for audit.
func (s *Subscribers) HandleCreated(ctx context.Context, msg *message.Message) error {
	evt, err := events.DecodeJSON[docevents.DocumentCreatedEvent](msg)
	if err != nil {
		return fmt.Errorf("%s: %w", docevents.TopicDocumentCreated, err)
	}
	s.log.InfoContext(ctx, "document created",
		"document_id", evt.DocumentID, "kind", evt.Kind, "number", evt.Number, "actor_id", evt.ActorID)
	return nil
}

// HandleStatusChanged invalidates the cached document and emits the vendor
// notification request.
func (s *Subscribers) HandleStatusChanged(ctx context.Context, msg *message.Message) error {
	evt, err := events.DecodeJSON[docevents.DocumentStatusChangedEvent](msg)
	if err != nil {
		return fmt.Errorf("%s: %w", docevents.TopicDocumentStatusChanged, err)
	}
	s.invalidate(ctx, evt.Kind, evt.DocumentID)

	args := []any{
		"document_id", evt.DocumentID,
		"kind", evt.Kind,
		"number", evt.Number,
		"vendor_id", evt.VendorID,
		"from", evt.From,
		"to", evt.To,
		"actor_id", evt.ActorID,
	}
	if evt.Comment != nil {
		args = append(args, "comment", *evt.Comment)
	}
	s.log.InfoContext(ctx, "status change notification requested", args...)
	return nil
}

// HandleDeleted invalidates the cached document.
func (s *Subscribers) HandleDeleted(ctx context.Context, msg *message.Message) error {
	evt, err := events.DecodeJSON[docevents.DocumentDeletedEvent](msg)
	if err != nil {
		return fmt.Errorf("%s: %w", docevents.TopicDocumentDeleted, err)
	}
	s.invalidate(ctx, evt.Kind, evt.DocumentID)
	s.log.InfoContext(ctx, "document deleted",
		"document_id", evt.DocumentID, "kind", evt.Kind, "number", evt.Number, "actor_id", evt.ActorID)
	return nil
}

// invalidate is best-effort; the entry expires with its TTL anyway.
func (s *Subscribers) invalidate(ctx context.Context, kind string, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, kind, id); err != nil {
		s.log.WarnContext(ctx, "cache invalidation failed", "document_id", id, "error", err)
	}
}
