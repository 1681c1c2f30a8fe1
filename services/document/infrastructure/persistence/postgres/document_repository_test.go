package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/ghuser/procuredesk/pkg/config"
	"github.com/ghuser/procuredesk/pkg/database"
	"github.com/ghuser/procuredesk/pkg/logger"
	"github.com/ghuser/procuredesk/services/document/domain"
	"github.com/ghuser/procuredesk/services/document/domain/models"
	"github.com/ghuser/procuredesk/services/document/domain/repositories"
)

var documentColumns = []string{
	"id", "kind", "number", "status", "vendor_id", "vendor_owner_id", "issue_date", "due_date",
	"subject", "notes", "total_amount", "tax_amount", "created_by", "updated_by", "created_at", "updated_at",
}

func newTestRepository(t *testing.T) (*DocumentRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	log := logger.New(&config.Config{LogLevel: "error"})
	return NewDocumentRepository(database.New(sqlDB, log), nil), mock
}

func testDocument() *models.Document {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	doc := models.NewDocument(models.KindPurchaseOrder, models.StatusDraft, uuid.New(), uuid.New(), now)
	doc.Items = []models.LineItem{
		{ItemName: "Paper", Quantity: 2, UnitPrice: decimal.NewFromInt(1000), TaxRate: decimal.RequireFromString("0.1")},
		{ItemName: "Toner", Quantity: 3, UnitPrice: decimal.NewFromInt(2000), TaxRate: decimal.RequireFromString("0.1")},
	}
	doc.TotalAmount = decimal.NewFromInt(8000)
	doc.TaxAmount = decimal.NewFromInt(800)
	return doc
}

func documentRow(rows *sqlmock.Rows, doc *models.Document, vendorOwner any) *sqlmock.Rows {
	var due any
	if doc.DueDate != nil {
		due = *doc.DueDate
	}
	return rows.AddRow(
		doc.ID.String(), string(doc.Kind), doc.Number, string(doc.Status), doc.VendorID.String(), vendorOwner,
		doc.IssueDate, due, doc.Subject, doc.Notes, doc.TotalAmount.String(), doc.TaxAmount.String(),
		doc.CreatedBy.String(), doc.UpdatedBy.String(), doc.CreatedAt, doc.UpdatedAt,
	)
}

func TestDocumentRepository_Create(t *testing.T) {
	repo, mock := newTestRepository(t)
	doc := testDocument()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO document\.documents`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO document\.document_items`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO document\.document_items`).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(`INSERT INTO document\.document_status_history`).
		WithArgs(doc.ID, "DRAFT", nil, doc.CreatedBy, doc.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDocumentRepository_Create_DuplicateNumber(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO document\.documents`).WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), testDocument())
	if !errors.Is(err, domain.ErrDocumentAlreadyExists) {
		t.Fatalf("expected ErrDocumentAlreadyExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDocumentRepository_Create_UnknownVendor(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO document\.documents`).WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), testDocument())
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Fields[0].Field != "vendor_id" {
		t.Fatalf("expected vendor_id validation error, got %v", err)
	}
}

func TestDocumentRepository_FindByID_NotFound(t *testing.T) {
	repo, mock := newTestRepository(t)
	id := uuid.New()

	mock.ExpectQuery(`FROM document\.documents_with_owner`).
		WithArgs(id, "invoice").
		WillReturnRows(sqlmock.NewRows(documentColumns))

	_, err := repo.FindByID(context.Background(), models.KindInvoice, id)
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestDocumentRepository_FindByID_Hydrates(t *testing.T) {
	repo, mock := newTestRepository(t)
	doc := testDocument()
	due := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	doc.DueDate = &due
	vendorOwner := uuid.New()
	comment := "created"

	mock.ExpectQuery(`FROM document\.documents_with_owner`).
		WithArgs(doc.ID, "purchase_order").
		WillReturnRows(documentRow(sqlmock.NewRows(documentColumns), doc, vendorOwner.String()))
	mock.ExpectQuery(`FROM document\.document_items`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "document_id", "position", "item_name", "quantity", "unit_price", "tax_rate", "description"}).
			AddRow(int64(1), doc.ID.String(), int64(0), "Paper", int64(2), "1000", "0.1", nil).
			AddRow(int64(2), doc.ID.String(), int64(1), "Toner", int64(3), "2000", "0.1", "black"))
	mock.ExpectQuery(`FROM document\.document_status_history`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "document_id", "status", "comment", "actor_id", "changed_at"}).
			AddRow(int64(1), doc.ID.String(), "DRAFT", comment, doc.CreatedBy.String(), doc.CreatedAt))

	got, err := repo.FindByID(context.Background(), models.KindPurchaseOrder, doc.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.VendorOwnerID != vendorOwner {
		t.Errorf("VendorOwnerID: got %v, want %v", got.VendorOwnerID, vendorOwner)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("DueDate: got %v, want %v", got.DueDate, due)
	}
	if len(got.Items) != 2 || got.Items[1].Description == nil || *got.Items[1].Description != "black" {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
	if !got.TotalAmount.Equal(decimal.NewFromInt(8000)) {
		t.Errorf("TotalAmount: got %s", got.TotalAmount)
	}
	if len(got.StatusHistory) != 1 || *got.StatusHistory[0].Comment != comment {
		t.Fatalf("unexpected history: %+v", got.StatusHistory)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDocumentRepository_FindByOwner(t *testing.T) {
	repo, mock := newTestRepository(t)
	actor := uuid.New()
	doc := testDocument()
	doc.CreatedBy = actor

	mock.ExpectQuery(`FROM document\.documents_with_owner`).
		WithArgs("purchase_order", actor, "DRAFT", int32(20), int32(0)).
		WillReturnRows(documentRow(sqlmock.NewRows(documentColumns), doc, nil))
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("purchase_order", actor, "DRAFT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(41)))
	mock.ExpectQuery(`FROM document\.document_items`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "document_id", "position", "item_name", "quantity", "unit_price", "tax_rate", "description"}))
	mock.ExpectQuery(`FROM document\.document_status_history`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "document_id", "status", "comment", "actor_id", "changed_at"}))

	docs, total, err := repo.FindByOwner(context.Background(), models.KindPurchaseOrder, actor,
		repositories.QueryOpts{Limit: 20, Status: models.StatusDraft})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 41 || len(docs) != 1 {
		t.Fatalf("expected 1 document of 41, got %d of %d", len(docs), total)
	}
	if docs[0].VendorOwnerID != uuid.Nil {
		t.Errorf("expected nil vendor owner, got %v", docs[0].VendorOwnerID)
	}
}

func TestDocumentRepository_FindManyByIDsAndOwner_Empty(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(`id = ANY\(\$2::uuid\[\]\)`).
		WillReturnRows(sqlmock.NewRows(documentColumns))

	docs, err := repo.FindManyByIDsAndOwner(context.Background(), models.KindInvoice, []uuid.UUID{uuid.New()}, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected no documents, got %d", len(docs))
	}
}

func TestDocumentRepository_UpdateStatus(t *testing.T) {
	repo, mock := newTestRepository(t)
	doc := testDocument()
	actor := uuid.New()
	at := doc.CreatedAt.Add(time.Hour)
	doc.ApplyStatus(models.StatusChange{Status: models.StatusSent, ActorID: actor, ChangedAt: at})

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE document\.documents\s+SET status = \$3, updated_by`).
		WithArgs(doc.ID, "purchase_order", "SENT", actor, at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO document\.document_status_history`).
		WithArgs(doc.ID, "SENT", nil, actor, at).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	if err := repo.UpdateStatus(context.Background(), doc, models.StatusDraft); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDocumentRepository_UpdateStatus_NotFound(t *testing.T) {
	repo, mock := newTestRepository(t)
	doc := testDocument()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE document\.documents`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if err := repo.UpdateStatus(context.Background(), doc, models.StatusDraft); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestDocumentRepository_Update_ReplacesItemsWithoutHistory(t *testing.T) {
	repo, mock := newTestRepository(t)
	doc := testDocument()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE document\.documents\s+SET status = \$3, vendor_id`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM document\.document_items`).WithArgs(doc.ID).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO document\.document_items`).WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec(`INSERT INTO document\.document_items`).WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectCommit()

	if err := repo.Update(context.Background(), doc, doc.Status); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDocumentRepository_DeleteMany(t *testing.T) {
	repo, mock := newTestRepository(t)
	docs := []*models.Document{testDocument(), testDocument()}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM document\.documents`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := repo.DeleteMany(context.Background(), models.KindPurchaseOrder, docs, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deleted, got %d", n)
	}
}

func TestDocumentRepository_DeleteMany_PartialRollsBack(t *testing.T) {
	repo, mock := newTestRepository(t)
	docs := []*models.Document{testDocument(), testDocument()}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM document\.documents`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	_, err := repo.DeleteMany(context.Background(), models.KindPurchaseOrder, docs, uuid.New())
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDocumentRepository_SaveAmounts(t *testing.T) {
	repo, mock := newTestRepository(t)
	doc := testDocument()

	mock.ExpectExec(`UPDATE document\.documents\s+SET total_amount`).
		WithArgs(doc.ID, "purchase_order", doc.TotalAmount, doc.TaxAmount).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SaveAmounts(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
