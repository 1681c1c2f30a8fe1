package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/procuredesk/pkg/database"
	"github.com/ghuser/procuredesk/pkg/events"
	"github.com/ghuser/procuredesk/services/document/domain"
	domainevents "github.com/ghuser/procuredesk/services/document/domain/events"
	"github.com/ghuser/procuredesk/services/document/domain/models"
	"github.com/ghuser/procuredesk/services/document/domain/repositories"
	domainsvcs "github.com/ghuser/procuredesk/services/document/domain/services"
	"github.com/ghuser/procuredesk/services/document/infrastructure/persistence/postgres/db"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	eventVersion          = 1
)

// DocumentRepository implements repositories.DocumentRepository against PostgreSQL.
type DocumentRepository struct {
	db  *database.Database
	bus *events.EventBus
}

var _ repositories.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository returns a DocumentRepository backed by the given pool
// and event bus. Every write publishes its domain event through the outbox in
// the same transaction. A nil bus disables publishing.
func NewDocumentRepository(database *database.Database, bus *events.EventBus) *DocumentRepository {
	return &DocumentRepository{db: database, bus: bus}
}

// Create persists a new document with its items and initial history entry.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		if err := q.InsertDocument(ctx, db.InsertDocumentParams{
			ID:          doc.ID,
			Kind:        string(doc.Kind),
			Number:      doc.Number,
			Status:      string(doc.Status),
			VendorID:    doc.VendorID,
			IssueDate:   doc.IssueDate,
			DueDate:     nullTime(doc.DueDate),
			Subject:     doc.Subject,
			Notes:       doc.Notes,
			TotalAmount: doc.TotalAmount,
			TaxAmount:   doc.TaxAmount,
			CreatedBy:   doc.CreatedBy,
			UpdatedBy:   doc.UpdatedBy,
			CreatedAt:   doc.CreatedAt,
			UpdatedAt:   doc.UpdatedAt,
		}); err != nil {
			return mapWriteError("insert document", err)
		}

		if err := insertItems(ctx, q, doc); err != nil {
			return err
		}
		for _, h := range doc.StatusHistory {
			if err := insertHistory(ctx, q, doc.ID, h); err != nil {
				return err
			}
		}

		return r.publish(tx, domainevents.TopicDocumentCreated, domainevents.DocumentCreatedEvent{
			EventID:    uuid.New(),
			Version:    eventVersion,
			DocumentID: doc.ID,
			Kind:       string(doc.Kind),
			Number:     doc.Number,
			VendorID:   doc.VendorID,
			Status:     string(doc.Status),
			ActorID:    doc.CreatedBy,
			OccurredAt: doc.CreatedAt,
		})
	})
}

// FindByID retrieves a document of the given kind. Returns ErrDocumentNotFound if not found.
func (r *DocumentRepository) FindByID(ctx context.Context, kind models.Kind, id uuid.UUID) (*models.Document, error) {
	q := db.New(r.db.DB())
	row, err := q.GetDocumentByID(ctx, db.GetDocumentByIDParams{ID: id, Kind: string(kind)})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("query document: %w", err)
	}
	docs, err := hydrate(ctx, q, []db.DocumentDocumentsWithOwner{row})
	if err != nil {
		return nil, err
	}
	return docs[0], nil
}

// FindByOwner retrieves a page of documents visible to actorID and the total count.
func (r *DocumentRepository) FindByOwner(ctx context.Context, kind models.Kind, actorID uuid.UUID, opts repositories.QueryOpts) ([]*models.Document, int, error) {
	q := db.New(r.db.DB())

	rows, err := q.FindDocumentsByOwner(ctx, db.FindDocumentsByOwnerParams{
		Kind:    string(kind),
		ActorID: actorID,
		Status:  string(opts.Status),
		Lim:     int32(opts.Limit),
		Off:     int32(opts.Offset),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("query documents: %w", err)
	}

	total, err := q.CountDocumentsByOwner(ctx, db.CountDocumentsByOwnerParams{
		Kind:    string(kind),
		ActorID: actorID,
		Status:  string(opts.Status),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	docs, err := hydrate(ctx, q, rows)
	if err != nil {
		return nil, 0, err
	}
	return docs, int(total), nil
}

// FindManyByIDsAndOwner resolves the subset of ids visible to actorID.
func (r *DocumentRepository) FindManyByIDsAndOwner(ctx context.Context, kind models.Kind, ids []uuid.UUID, actorID uuid.UUID) ([]*models.Document, error) {
	q := db.New(r.db.DB())
	rows, err := q.FindDocumentsByIDsAndOwner(ctx, db.FindDocumentsByIDsAndOwnerParams{
		Kind:    string(kind),
		Ids:     ids,
		ActorID: actorID,
	})
	if err != nil {
		return nil, fmt.Errorf("query documents by ids: %w", err)
	}
	return hydrate(ctx, q, rows)
}

// Update replaces the header, amounts and items of an existing document and,
// when the status moved away from from, appends the latest history entry.
func (r *DocumentRepository) Update(ctx context.Context, doc *models.Document, from models.Status) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		n, err := q.UpdateDocument(ctx, db.UpdateDocumentParams{
			ID:          doc.ID,
			Kind:        string(doc.Kind),
			Status:      string(doc.Status),
			VendorID:    doc.VendorID,
			IssueDate:   doc.IssueDate,
			DueDate:     nullTime(doc.DueDate),
			Subject:     doc.Subject,
			Notes:       doc.Notes,
			TotalAmount: doc.TotalAmount,
			TaxAmount:   doc.TaxAmount,
			UpdatedBy:   doc.UpdatedBy,
			UpdatedAt:   doc.UpdatedAt,
		})
		if err != nil {
			return mapWriteError("update document", err)
		}
		if n == 0 {
			return domain.ErrDocumentNotFound
		}

		if err := q.DeleteDocumentItems(ctx, doc.ID); err != nil {
			return fmt.Errorf("delete document items: %w", err)
		}
		if err := insertItems(ctx, q, doc); err != nil {
			return err
		}

		if from == doc.Status {
			return nil
		}
		return r.appendStatus(ctx, tx, q, doc, from)
	})
}

// UpdateStatus persists the document's new status and its latest history entry.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, doc *models.Document, from models.Status) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		n, err := q.UpdateDocumentStatus(ctx, db.UpdateDocumentStatusParams{
			ID:        doc.ID,
			Kind:      string(doc.Kind),
			Status:    string(doc.Status),
			UpdatedBy: doc.UpdatedBy,
			UpdatedAt: doc.UpdatedAt,
		})
		if err != nil {
			return fmt.Errorf("update document status: %w", err)
		}
		if n == 0 {
			return domain.ErrDocumentNotFound
		}
		return r.appendStatus(ctx, tx, q, doc, from)
	})
}

// DeleteMany removes every given document in one transaction. If any of them
// is already gone the whole delete is rolled back.
func (r *DocumentRepository) DeleteMany(ctx context.Context, kind models.Kind, docs []*models.Document, actorID uuid.UUID) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	ids := make([]uuid.UUID, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}

	var deleted int64
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		q := db.New(tx)
		n, err := q.DeleteDocuments(ctx, db.DeleteDocumentsParams{Kind: string(kind), Ids: ids})
		if err != nil {
			return fmt.Errorf("delete documents: %w", err)
		}
		if int(n) != len(ids) {
			return fmt.Errorf("delete documents: removed %d of %d: %w", n, len(ids), domain.ErrDocumentNotFound)
		}
		deleted = n

		now := time.Now().UTC()
		for _, doc := range docs {
			if err := r.publish(tx, domainevents.TopicDocumentDeleted, domainevents.DocumentDeletedEvent{
				EventID:    uuid.New(),
				Version:    eventVersion,
				DocumentID: doc.ID,
				Kind:       string(kind),
				Number:     doc.Number,
				ActorID:    actorID,
				OccurredAt: now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(deleted), nil
}

// FindReassessmentCandidates returns documents that are past due in an
// overdue-eligible status, or whose stored amounts disagree with their items.
func (r *DocumentRepository) FindReassessmentCandidates(ctx context.Context, kind models.Kind, asOf time.Time, limit int) ([]*models.Document, error) {
	eligible := domainsvcs.OverdueEligibleStatuses(kind)
	statuses := make([]string, len(eligible))
	for i, s := range eligible {
		statuses[i] = string(s)
	}

	q := db.New(r.db.DB())
	rows, err := q.FindReassessmentCandidates(ctx, db.FindReassessmentCandidatesParams{
		Kind:     string(kind),
		AsOf:     models.DateOnly(asOf),
		Statuses: statuses,
		Lim:      int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("query reassessment candidates: %w", err)
	}
	return hydrate(ctx, q, rows)
}

// SaveAmounts stores corrected amounts without touching status or history.
func (r *DocumentRepository) SaveAmounts(ctx context.Context, doc *models.Document) error {
	q := db.New(r.db.DB())
	n, err := q.UpdateDocumentAmounts(ctx, db.UpdateDocumentAmountsParams{
		ID:          doc.ID,
		Kind:        string(doc.Kind),
		TotalAmount: doc.TotalAmount,
		TaxAmount:   doc.TaxAmount,
	})
	if err != nil {
		return fmt.Errorf("update document amounts: %w", err)
	}
	if n == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) appendStatus(ctx context.Context, tx *sql.Tx, q *db.Queries, doc *models.Document, from models.Status) error {
	latest, ok := doc.LatestStatusChange()
	if !ok {
		return fmt.Errorf("document %s has no status history", doc.ID)
	}
	if err := insertHistory(ctx, q, doc.ID, latest); err != nil {
		return err
	}
	return r.publish(tx, domainevents.TopicDocumentStatusChanged, domainevents.DocumentStatusChangedEvent{
		EventID:    uuid.New(),
		Version:    eventVersion,
		DocumentID: doc.ID,
		Kind:       string(doc.Kind),
		Number:     doc.Number,
		VendorID:   doc.VendorID,
		From:       string(from),
		To:         string(latest.Status),
		ActorID:    latest.ActorID,
		Comment:    latest.Comment,
		OccurredAt: latest.ChangedAt,
	})
}

// publish writes event to the outbox within tx. No-op without a bus.
func (r *DocumentRepository) publish(tx *sql.Tx, topic string, event any) error {
	if r.bus == nil {
		return nil
	}
	return r.bus.PublishTx(tx, topic, event, eventVersion)
}

func insertItems(ctx context.Context, q *db.Queries, doc *models.Document) error {
	for i, item := range doc.Items {
		if err := q.InsertDocumentItem(ctx, db.InsertDocumentItemParams{
			DocumentID:  doc.ID,
			Position:    int32(i),
			ItemName:    item.ItemName,
			Quantity:    int32(item.Quantity),
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
			Description: nullString(item.Description),
		}); err != nil {
			return fmt.Errorf("insert document item %d: %w", i, err)
		}
	}
	return nil
}

func insertHistory(ctx context.Context, q *db.Queries, documentID uuid.UUID, h models.StatusChange) error {
	if err := q.InsertStatusHistory(ctx, db.InsertStatusHistoryParams{
		DocumentID: documentID,
		Status:     string(h.Status),
		Comment:    nullString(h.Comment),
		ActorID:    h.ActorID,
		ChangedAt:  h.ChangedAt,
	}); err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}
	return nil
}

// hydrate maps header rows to documents and attaches their items and history
// with one query each.
func hydrate(ctx context.Context, q *db.Queries, rows []db.DocumentDocumentsWithOwner) ([]*models.Document, error) {
	docs := make([]*models.Document, len(rows))
	if len(rows) == 0 {
		return docs, nil
	}

	ids := make([]uuid.UUID, len(rows))
	byID := make(map[uuid.UUID]*models.Document, len(rows))
	for i, row := range rows {
		docs[i] = rowToDocument(row)
		ids[i] = row.ID
		byID[row.ID] = docs[i]
	}

	items, err := q.ListDocumentItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("query document items: %w", err)
	}
	for _, it := range items {
		if doc, ok := byID[it.DocumentID]; ok {
			doc.Items = append(doc.Items, rowToLineItem(it))
		}
	}

	history, err := q.ListStatusHistory(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("query status history: %w", err)
	}
	for _, h := range history {
		if doc, ok := byID[h.DocumentID]; ok {
			doc.StatusHistory = append(doc.StatusHistory, rowToStatusChange(h))
		}
	}
	return docs, nil
}

// rowToDocument maps a db.DocumentDocumentsWithOwner to a domain models.Document
// without items or history.
func rowToDocument(row db.DocumentDocumentsWithOwner) *models.Document {
	doc := &models.Document{
		ID:          row.ID,
		Kind:        models.Kind(row.Kind),
		Number:      row.Number,
		Status:      models.Status(row.Status),
		VendorID:    row.VendorID,
		IssueDate:   models.DateOnly(row.IssueDate),
		Subject:     row.Subject,
		Notes:       row.Notes,
		TotalAmount: row.TotalAmount,
		TaxAmount:   row.TaxAmount,
		CreatedBy:   row.CreatedBy,
		UpdatedBy:   row.UpdatedBy,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.VendorOwnerID.Valid {
		doc.VendorOwnerID = row.VendorOwnerID.UUID
	}
	if row.DueDate.Valid {
		due := models.DateOnly(row.DueDate.Time)
		doc.DueDate = &due
	}
	return doc
}

func rowToLineItem(row db.DocumentDocumentItem) models.LineItem {
	item := models.LineItem{
		ItemName:  row.ItemName,
		Quantity:  int(row.Quantity),
		UnitPrice: row.UnitPrice,
		TaxRate:   row.TaxRate,
	}
	if row.Description.Valid {
		desc := row.Description.String
		item.Description = &desc
	}
	return item
}

func rowToStatusChange(row db.DocumentDocumentStatusHistory) models.StatusChange {
	h := models.StatusChange{
		Status:    models.Status(row.Status),
		ActorID:   row.ActorID,
		ChangedAt: row.ChangedAt,
	}
	if row.Comment.Valid {
		c := row.Comment.String
		h.Comment = &c
	}
	return h
}

// mapWriteError translates constraint violations into domain errors.
func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return domain.ErrDocumentAlreadyExists
		case pgForeignKeyViolation:
			v := &domain.ValidationError{}
			v.Add("vendor_id", "vendor does not exist")
			return v
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
