package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	pkgcache "github.com/ghuser/procuredesk/pkg/cache"
	"github.com/ghuser/procuredesk/pkg/logger"
	"github.com/ghuser/procuredesk/services/document/domain"
	"github.com/ghuser/procuredesk/services/document/domain/models"
	"github.com/ghuser/procuredesk/services/document/domain/repositories"
	domainsvcs "github.com/ghuser/procuredesk/services/document/domain/services"
)

const (
	instrumentationName = "github.com/ghuser/procuredesk/services/document"

	DefaultPageSize          = 20
	MaxPageSize              = 100
	DefaultBulkConcurrency   = 8
	DefaultReassessBatchSize = 500
)

// DocumentCache is the read-through cache used for single-document reads.
// *pkgcache.DocumentCache satisfies it. Misses are reported as redis.Nil.
type DocumentCache interface {
	Get(ctx context.Context, kind string, id uuid.UUID) (*pkgcache.CachedDocument, error)
	Generation(ctx context.Context, kind string, id uuid.UUID) (int64, error)
	Set(ctx context.Context, doc *pkgcache.CachedDocument, gen int64) (bool, error)
	Delete(ctx context.Context, kind string, ids ...uuid.UUID) error
}

// StatusUpdateResult is returned by a status-only update.
type StatusUpdateResult struct {
	Document     *models.Document
	Entry        models.StatusChange
	NextStatuses []models.Status
}

// BulkResult is the outcome of BulkApply. DeletedCount is set for deletes,
// Results (in request order) for status updates.
type BulkResult struct {
	Action       string
	Message      string
	DeletedCount int
	Results      []domainsvcs.BulkItemResult
}

// ReassessResult summarizes one reassessment pass over a kind.
type ReassessResult struct {
	Kind            models.Kind `json:"kind"`
	OverdueMarked   int         `json:"overdue_marked"`
	TotalsCorrected int         `json:"totals_corrected"`
}

// Option configures a DocumentService.
type Option func(*DocumentService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *DocumentService) { s.now = now }
}

// WithBulkConcurrency bounds the number of concurrent writes in a bulk status update.
func WithBulkConcurrency(n int) Option {
	return func(s *DocumentService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithReassessBatchSize bounds the documents examined per reassessment pass.
func WithReassessBatchSize(n int) Option {
	return func(s *DocumentService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// DocumentService orchestrates the document lifecycle for purchase orders and
// invoices. Business rules live in the domain services package; this type
// loads state, applies those rules and persists the result. Event publishing
// is handled by the repository layer (outbox pattern).
type DocumentService struct {
	repo        repositories.DocumentRepository
	cache       DocumentCache
	log         logger.Logger
	now         func() time.Time
	concurrency int
	batchSize   int

	tracer      trace.Tracer
	transitions metric.Int64Counter
	bulkOps     metric.Int64Counter
}

// NewDocumentService returns a DocumentService. cache may be nil.
func NewDocumentService(repo repositories.DocumentRepository, cache DocumentCache, log logger.Logger, opts ...Option) *DocumentService {
	s := &DocumentService{
		repo:        repo,
		cache:       cache,
		log:         log,
		now:         time.Now,
		concurrency: DefaultBulkConcurrency,
		batchSize:   DefaultReassessBatchSize,
		tracer:      otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}

	meter := otel.Meter(instrumentationName)
	var err error
	if s.transitions, err = meter.Int64Counter("documents.status_transitions",
		metric.WithDescription("Persisted document status transitions")); err != nil {
		log.Warn("failed to create status transition counter", "error", err)
	}
	if s.bulkOps, err = meter.Int64Counter("documents.bulk_operations",
		metric.WithDescription("Bulk document operations by action and outcome")); err != nil {
		log.Warn("failed to create bulk operation counter", "error", err)
	}
	return s
}

// Create validates draft and persists a new document of kind owned by actorID.
// A missing issue date defaults to today; a missing status to the initial status.
func (s *DocumentService) Create(ctx context.Context, kind models.Kind, actorID uuid.UUID, draft domainsvcs.Draft) (_ *models.Document, err error) {
	ctx, span := s.startSpan(ctx, "Create", kind)
	defer func() { endSpan(span, err) }()

	now := s.now().UTC()
	if draft.IssueDate == nil {
		today := models.DateOnly(now)
		draft.IssueDate = &today
	}
	if err := domainsvcs.ValidateDraft(kind, draft); err != nil {
		return nil, err
	}

	status := domainsvcs.InitialStatus(kind)
	if draft.Status != nil {
		status = *draft.Status
	}

	doc := models.NewDocument(kind, status, draft.VendorID, actorID, now)
	applyDraft(doc, draft)
	domainsvcs.Recalculate(doc)

	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	s.log.InfoContext(ctx, "document created",
		"kind", kind, "document_id", doc.ID, "number", doc.Number, "status", doc.Status)
	return doc, nil
}

// Get retrieves a document visible to actorID using a read-through cache:
//  1. Check Redis first and authorize against the cached owner fields.
//  2. On cache miss (or cache error), read the cache generation, then query Postgres.
//  3. Asynchronously warm the cache with the Postgres result. The write is
//     dropped if the document was invalidated after the generation was read.
//
// Documents the actor does not own are reported as ErrDocumentNotFound.
func (s *DocumentService) Get(ctx context.Context, kind models.Kind, actorID, id uuid.UUID) (_ *models.Document, err error) {
	ctx, span := s.startSpan(ctx, "Get", kind)
	defer func() { endSpan(span, err) }()

	if s.cache == nil {
		return s.load(ctx, kind, actorID, id)
	}

	if cached, ok := s.fromCache(ctx, kind, id); ok {
		if !cached.VisibleTo(actorID) {
			return nil, domain.ErrDocumentNotFound
		}
		if doc, ok := s.decodeCached(ctx, cached); ok {
			return doc, nil
		}
	}

	gen, genErr := s.cache.Generation(ctx, kind.String(), id)
	if genErr != nil {
		s.log.WarnContext(ctx, "document cache generation read failed", "document_id", id, "error", genErr)
	}

	doc, err := s.load(ctx, kind, actorID, id)
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		warmCtx := context.WithoutCancel(ctx)
		go s.warmCache(warmCtx, doc, gen)
	}
	return doc, nil
}

// List returns a page of documents visible to actorID plus the total count.
func (s *DocumentService) List(ctx context.Context, kind models.Kind, actorID uuid.UUID, opts repositories.QueryOpts) (_ []*models.Document, _ int, err error) {
	ctx, span := s.startSpan(ctx, "List", kind)
	defer func() { endSpan(span, err) }()

	if opts.Status != "" && !kind.HasStatus(opts.Status) {
		v := &domain.ValidationError{}
		v.Add("status", fmt.Sprintf("%q is not a valid %s status", opts.Status, kind))
		return nil, 0, v
	}
	opts.Limit = ClampLimit(opts.Limit)
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	docs, total, err := s.repo.FindByOwner(ctx, kind, actorID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	return docs, total, nil
}

// Update applies a full update. Items are replaced and amounts recomputed; a
// status different from the persisted one must be a permitted transition.
func (s *DocumentService) Update(ctx context.Context, kind models.Kind, actorID, id uuid.UUID, draft domainsvcs.Draft) (_ *models.Document, err error) {
	ctx, span := s.startSpan(ctx, "Update", kind)
	defer func() { endSpan(span, err) }()

	doc, err := s.load(ctx, kind, actorID, id)
	if err != nil {
		return nil, err
	}
	if draft.IssueDate == nil {
		issue := doc.IssueDate
		draft.IssueDate = &issue
	}
	if err := domainsvcs.ValidateUpdate(doc, draft); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	from := doc.Status
	applyDraft(doc, draft)
	domainsvcs.Recalculate(doc)
	doc.UpdatedBy = actorID
	doc.UpdatedAt = now
	if draft.Status != nil && *draft.Status != from {
		doc.ApplyStatus(models.StatusChange{Status: *draft.Status, ActorID: actorID, ChangedAt: now})
	}

	if err := s.repo.Update(ctx, doc, from); err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	s.invalidate(ctx, kind, doc.ID)
	if doc.Status != from {
		s.recordTransition(ctx, kind, from, doc.Status, "update")
	}

	s.log.InfoContext(ctx, "document updated", "kind", kind, "document_id", doc.ID, "status", doc.Status)
	return doc, nil
}

// UpdateStatus moves a document to status `to`, appending a history entry.
// Moving to the current status is rejected like any other forbidden transition.
func (s *DocumentService) UpdateStatus(ctx context.Context, kind models.Kind, actorID, id uuid.UUID, to models.Status, comment *string) (_ *StatusUpdateResult, err error) {
	ctx, span := s.startSpan(ctx, "UpdateStatus", kind)
	defer func() { endSpan(span, err) }()

	doc, err := s.load(ctx, kind, actorID, id)
	if err != nil {
		return nil, err
	}
	if err := domainsvcs.ValidateStatusChange(kind, doc.Status, to); err != nil {
		return nil, err
	}

	from := doc.Status
	doc.ApplyStatus(models.StatusChange{
		Status:    to,
		Comment:   comment,
		ActorID:   actorID,
		ChangedAt: s.now().UTC(),
	})
	if err := s.repo.UpdateStatus(ctx, doc, from); err != nil {
		return nil, fmt.Errorf("update document status: %w", err)
	}
	s.invalidate(ctx, kind, doc.ID)
	s.recordTransition(ctx, kind, from, to, "status")

	entry, _ := doc.LatestStatusChange()
	s.log.InfoContext(ctx, "document status changed",
		"kind", kind, "document_id", doc.ID, "from", from, "to", to)
	return &StatusUpdateResult{
		Document:     doc,
		Entry:        entry,
		NextStatuses: domainsvcs.NextStatuses(kind, to),
	}, nil
}

// Delete removes a single document that is in a deletable status.
func (s *DocumentService) Delete(ctx context.Context, kind models.Kind, actorID, id uuid.UUID) (err error) {
	ctx, span := s.startSpan(ctx, "Delete", kind)
	defer func() { endSpan(span, err) }()

	doc, err := s.load(ctx, kind, actorID, id)
	if err != nil {
		return err
	}
	if !domainsvcs.IsDeletable(kind, doc.Status) {
		return fmt.Errorf("%w: %s is %s", domain.ErrNotDeletable, doc.Number, doc.Status)
	}
	if _, err := s.repo.DeleteMany(ctx, kind, []*models.Document{doc}, actorID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	s.invalidate(ctx, kind, doc.ID)

	s.log.InfoContext(ctx, "document deleted", "kind", kind, "document_id", doc.ID)
	return nil
}

// BulkApply runs a bulk action for actorID over documents of kind.
//
// Both actions are rejected as a whole when the id list exceeds the cap or
// when any id is not owned by the actor. Deletes are all-or-nothing. Status
// updates are applied per document and report a result for every id.
func (s *DocumentService) BulkApply(ctx context.Context, kind models.Kind, actorID uuid.UUID, action domainsvcs.BulkAction) (_ *BulkResult, err error) {
	ctx, span := s.startSpan(ctx, "BulkApply", kind)
	defer func() { endSpan(span, err) }()

	actionName := bulkActionName(action)
	span.SetAttributes(attribute.String("bulk.action", actionName), attribute.Int("bulk.requested", len(action.TargetIDs())))
	defer func() { s.recordBulk(ctx, kind, actionName, err) }()

	ids, err := domainsvcs.NormalizeBulkIDs(action.TargetIDs())
	if err != nil {
		return nil, err
	}
	if a, ok := action.(domainsvcs.BulkUpdateStatus); ok && !kind.HasStatus(a.Status) {
		v := &domain.ValidationError{}
		v.Add("status", fmt.Sprintf("%q is not a valid %s status", a.Status, kind))
		return nil, v
	}

	docs, err := s.repo.FindManyByIDsAndOwner(ctx, kind, ids, actorID)
	if err != nil {
		return nil, fmt.Errorf("resolve documents: %w", err)
	}
	if err := domainsvcs.CheckOwnership(ids, docs); err != nil {
		s.log.WarnContext(ctx, "bulk operation rejected: unauthorized documents",
			"kind", kind, "actor_id", actorID, "requested", len(ids), "resolved", len(docs))
		return nil, err
	}

	switch a := action.(type) {
	case domainsvcs.BulkDelete:
		return s.bulkDelete(ctx, kind, actorID, docs)
	case domainsvcs.BulkUpdateStatus:
		return s.bulkUpdateStatus(ctx, kind, actorID, ids, docs, a)
	default:
		return nil, fmt.Errorf("unsupported bulk action %T", action)
	}
}

func (s *DocumentService) bulkDelete(ctx context.Context, kind models.Kind, actorID uuid.UUID, docs []*models.Document) (*BulkResult, error) {
	if err := domainsvcs.CheckDeletable(kind, docs); err != nil {
		return nil, err
	}
	n, err := s.repo.DeleteMany(ctx, kind, docs, actorID)
	if err != nil {
		return nil, fmt.Errorf("bulk delete: %w", err)
	}

	ids := make([]uuid.UUID, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}
	s.invalidate(ctx, kind, ids...)

	s.log.InfoContext(ctx, "bulk delete completed", "kind", kind, "deleted", n)
	return &BulkResult{
		Action:       "delete",
		Message:      fmt.Sprintf("%d documents deleted", n),
		DeletedCount: n,
	}, nil
}

func (s *DocumentService) bulkUpdateStatus(ctx context.Context, kind models.Kind, actorID uuid.UUID, ids []uuid.UUID, docs []*models.Document, a domainsvcs.BulkUpdateStatus) (*BulkResult, error) {
	apply, rejected := domainsvcs.PlanStatusUpdate(kind, docs, a.Status)

	var mu sync.Mutex
	results := make(map[uuid.UUID]domainsvcs.BulkItemResult, len(ids))
	for id, r := range rejected {
		results[id] = r
	}

	now := s.now().UTC()
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for _, doc := range apply {
		g.Go(func() error {
			from := doc.Status
			doc.ApplyStatus(models.StatusChange{Status: a.Status, Comment: a.Comment, ActorID: actorID, ChangedAt: now})

			res := domainsvcs.BulkItemResult{ID: doc.ID, Success: true}
			if err := s.repo.UpdateStatus(ctx, doc, from); err != nil {
				s.log.ErrorContext(ctx, "bulk status update failed for document",
					"kind", kind, "document_id", doc.ID, "error", err)
				res = domainsvcs.BulkItemResult{ID: doc.ID, Success: false, Error: err.Error()}
			} else {
				s.recordTransition(ctx, kind, from, a.Status, "bulk")
			}

			mu.Lock()
			results[doc.ID] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	ordered := make([]domainsvcs.BulkItemResult, 0, len(ids))
	succeeded := 0
	for _, id := range ids {
		r := results[id]
		if r.Success {
			succeeded++
		}
		ordered = append(ordered, r)
	}
	s.invalidate(ctx, kind, ids...)

	s.log.InfoContext(ctx, "bulk status update completed",
		"kind", kind, "status", a.Status, "requested", len(ids), "succeeded", succeeded)
	return &BulkResult{
		Action:  "updateStatus",
		Message: fmt.Sprintf("%d of %d documents updated", succeeded, len(ids)),
		Results: ordered,
	}, nil
}

// Reassess applies the overdue rule and corrects drifted amounts for one
// batch of candidate documents of kind. Failures on single documents are
// logged and returned joined; the rest of the batch is still processed.
func (s *DocumentService) Reassess(ctx context.Context, kind models.Kind) (_ *ReassessResult, err error) {
	ctx, span := s.startSpan(ctx, "Reassess", kind)
	defer func() { endSpan(span, err) }()

	now := s.now().UTC()
	docs, err := s.repo.FindReassessmentCandidates(ctx, kind, now, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("find reassessment candidates: %w", err)
	}

	result := &ReassessResult{Kind: kind}
	var errs []error
	for _, doc := range docs {
		if domainsvcs.Recalculate(doc) {
			if err := s.repo.SaveAmounts(ctx, doc); err != nil {
				errs = append(errs, fmt.Errorf("correct amounts of %s: %w", doc.ID, err))
				continue
			}
			result.TotalsCorrected++
		}

		from := doc.Status
		if !domainsvcs.MarkOverdue(doc, now) {
			s.invalidate(ctx, kind, doc.ID)
			continue
		}
		if err := s.repo.UpdateStatus(ctx, doc, from); err != nil {
			errs = append(errs, fmt.Errorf("mark %s overdue: %w", doc.ID, err))
			continue
		}
		s.invalidate(ctx, kind, doc.ID)
		s.recordTransition(ctx, kind, from, models.StatusOverdue, "reassess")
		result.OverdueMarked++
	}

	s.log.InfoContext(ctx, "documents reassessed",
		"kind", kind, "candidates", len(docs),
		"overdue_marked", result.OverdueMarked, "totals_corrected", result.TotalsCorrected)
	if len(errs) > 0 {
		return result, errors.Join(errs...)
	}
	return result, nil
}

// load fetches the current persisted document and enforces ownership.
func (s *DocumentService) load(ctx context.Context, kind models.Kind, actorID, id uuid.UUID) (*models.Document, error) {
	doc, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	if !doc.OwnedBy(actorID) {
		return nil, domain.ErrDocumentNotFound
	}
	return doc, nil
}

func (s *DocumentService) fromCache(ctx context.Context, kind models.Kind, id uuid.UUID) (*pkgcache.CachedDocument, bool) {
	cached, err := s.cache.Get(ctx, kind.String(), id)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "document cache read failed", "document_id", id, "error", err)
		}
		return nil, false
	}
	return cached, true
}

func (s *DocumentService) decodeCached(ctx context.Context, cached *pkgcache.CachedDocument) (*models.Document, bool) {
	var doc models.Document
	if err := json.Unmarshal(cached.Payload, &doc); err != nil {
		s.log.WarnContext(ctx, "document cache entry unreadable", "document_id", cached.ID, "error", err)
		return nil, false
	}
	return &doc, true
}

// warmCache stores doc unless the cache generation moved past gen.
func (s *DocumentService) warmCache(ctx context.Context, doc *models.Document, gen int64) {
	payload, err := json.Marshal(doc)
	if err != nil {
		s.log.WarnContext(ctx, "document cache encode failed", "document_id", doc.ID, "error", err)
		return
	}
	written, err := s.cache.Set(ctx, &pkgcache.CachedDocument{
		ID:            doc.ID,
		Kind:          doc.Kind.String(),
		CreatedBy:     doc.CreatedBy,
		VendorOwnerID: doc.VendorOwnerID,
		Payload:       payload,
	}, gen)
	if err != nil {
		s.log.WarnContext(ctx, "document cache warm failed", "document_id", doc.ID, "error", err)
		return
	}
	if !written {
		s.log.DebugContext(ctx, "document cache warm skipped, entry invalidated", "document_id", doc.ID)
	}
}

func (s *DocumentService) invalidate(ctx context.Context, kind models.Kind, ids ...uuid.UUID) {
	if s.cache == nil || len(ids) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, kind.String(), ids...); err != nil {
		s.log.WarnContext(ctx, "document cache invalidation failed", "kind", kind, "error", err)
	}
}

func (s *DocumentService) startSpan(ctx context.Context, op string, kind models.Kind) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "DocumentService."+op,
		trace.WithAttributes(attribute.String("document.kind", kind.String())))
}

func (s *DocumentService) recordTransition(ctx context.Context, kind models.Kind, from, to models.Status, source string) {
	if s.transitions == nil {
		return
	}
	s.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind.String()),
		attribute.String("from", from.String()),
		attribute.String("to", to.String()),
		attribute.String("source", source),
	))
}

func (s *DocumentService) recordBulk(ctx context.Context, kind models.Kind, action string, err error) {
	if s.bulkOps == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	s.bulkOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind.String()),
		attribute.String("action", action),
		attribute.String("outcome", outcome),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// applyDraft copies the editable fields of draft onto doc. IssueDate must be set.
func applyDraft(doc *models.Document, draft domainsvcs.Draft) {
	doc.VendorID = draft.VendorID
	doc.IssueDate = models.DateOnly(*draft.IssueDate)
	doc.DueDate = nil
	if draft.DueDate != nil {
		due := models.DateOnly(*draft.DueDate)
		doc.DueDate = &due
	}
	doc.Subject = draft.Subject
	doc.Notes = draft.Notes
	doc.Items = append([]models.LineItem(nil), draft.Items...)
}

func bulkActionName(action domainsvcs.BulkAction) string {
	switch action.(type) {
	case domainsvcs.BulkDelete:
		return "delete"
	case domainsvcs.BulkUpdateStatus:
		return "updateStatus"
	default:
		return "unknown"
	}
}

// ClampLimit applies the default and maximum page size to limit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	default:
		return limit
	}
}
