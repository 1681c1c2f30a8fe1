package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/procuredesk/services/document/domain/models"
)

// QueryOpts contains pagination and filter parameters for list queries.
type QueryOpts struct {
	Limit  int           // Maximum number of records to return
	Offset int           // Number of records to skip
	Status models.Status // Optional status filter; empty means all
}

// DocumentRepository is the persistence interface for the Document aggregate.
// The domain layer owns this interface; infrastructure implements it.
// Every method is scoped to a single kind.
type DocumentRepository interface {
	// Create inserts the document, its items and its initial history entry.
	// Returns ErrDocumentAlreadyExists on a number collision.
	Create(ctx context.Context, doc *models.Document) error

	// FindByID loads a document with items, history and VendorOwnerID.
	// Returns ErrDocumentNotFound when it does not exist.
	FindByID(ctx context.Context, kind models.Kind, id uuid.UUID) (*models.Document, error)

	// FindByOwner returns a page of documents owned by actorID plus the total count.
	FindByOwner(ctx context.Context, kind models.Kind, actorID uuid.UUID, opts QueryOpts) ([]*models.Document, int, error)

	// FindManyByIDsAndOwner resolves the subset of ids owned by actorID.
	// Missing or foreign ids are silently absent from the result.
	FindManyByIDsAndOwner(ctx context.Context, kind models.Kind, ids []uuid.UUID, actorID uuid.UUID) ([]*models.Document, error)

	// Update persists a full update: header fields, amounts, replaced items and,
	// when from != doc.Status, the latest history entry.
	Update(ctx context.Context, doc *models.Document, from models.Status) error

	// UpdateStatus persists doc.Status and appends its latest history entry.
	UpdateStatus(ctx context.Context, doc *models.Document, from models.Status) error

	// DeleteMany removes the given documents in one transaction.
	DeleteMany(ctx context.Context, kind models.Kind, docs []*models.Document, actorID uuid.UUID) (int, error)

	// FindReassessmentCandidates returns up to limit documents whose stored
	// state may need the overdue rule or an amount correction as of asOf.
	FindReassessmentCandidates(ctx context.Context, kind models.Kind, asOf time.Time, limit int) ([]*models.Document, error)

	// SaveAmounts stores corrected TotalAmount and TaxAmount.
	SaveAmounts(ctx context.Context, doc *models.Document) error
}
