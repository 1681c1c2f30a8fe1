package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/procuredesk/pkg/auth"
	"github.com/ghuser/procuredesk/pkg/config"
	"github.com/ghuser/procuredesk/pkg/logger"
	appsvcs "github.com/ghuser/procuredesk/services/document/application/services"
	"github.com/ghuser/procuredesk/services/document/domain"
	"github.com/ghuser/procuredesk/services/document/domain/models"
	"github.com/ghuser/procuredesk/services/document/domain/repositories"
)

// stubRepository keeps documents in memory; enough for routing and encoding tests.
type stubRepository struct {
	mu   sync.Mutex
	docs map[uuid.UUID]models.Document
}

var _ repositories.DocumentRepository = (*stubRepository)(nil)

func (s *stubRepository) put(doc *models.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *doc
	c.Items = append([]models.LineItem(nil), doc.Items...)
	c.StatusHistory = append([]models.StatusChange(nil), doc.StatusHistory...)
	s.docs[doc.ID] = c
}

func (s *stubRepository) get(id uuid.UUID) (*models.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, false
	}
	d.Items = append([]models.LineItem(nil), d.Items...)
	d.StatusHistory = append([]models.StatusChange(nil), d.StatusHistory...)
	return &d, true
}

func (s *stubRepository) Create(_ context.Context, doc *models.Document) error {
	s.put(doc)
	return nil
}

func (s *stubRepository) FindByID(_ context.Context, kind models.Kind, id uuid.UUID) (*models.Document, error) {
	d, ok := s.get(id)
	if !ok || d.Kind != kind {
		return nil, domain.ErrDocumentNotFound
	}
	return d, nil
}

func (s *stubRepository) FindByOwner(_ context.Context, kind models.Kind, actorID uuid.UUID, opts repositories.QueryOpts) ([]*models.Document, int, error) {
	s.mu.Lock()
	ids := make([]uuid.UUID, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	var out []*models.Document
	for _, id := range ids {
		if d, _ := s.get(id); d.Kind == kind && d.OwnedBy(actorID) {
			out = append(out, d)
		}
	}
	total := len(out)
	if opts.Offset >= total {
		return nil, total, nil
	}
	return out[opts.Offset:min(opts.Offset+opts.Limit, total)], total, nil
}

func (s *stubRepository) FindManyByIDsAndOwner(_ context.Context, kind models.Kind, ids []uuid.UUID, actorID uuid.UUID) ([]*models.Document, error) {
	var out []*models.Document
	for _, id := range ids {
		if d, ok := s.get(id); ok && d.Kind == kind && d.OwnedBy(actorID) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *stubRepository) Update(_ context.Context, doc *models.Document, _ models.Status) error {
	s.put(doc)
	return nil
}

func (s *stubRepository) UpdateStatus(_ context.Context, doc *models.Document, _ models.Status) error {
	s.put(doc)
	return nil
}

func (s *stubRepository) DeleteMany(_ context.Context, _ models.Kind, docs []*models.Document, _ uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		delete(s.docs, d.ID)
	}
	return len(docs), nil
}

func (s *stubRepository) FindReassessmentCandidates(context.Context, models.Kind, time.Time, int) ([]*models.Document, error) {
	return nil, nil
}

func (s *stubRepository) SaveAmounts(context.Context, *models.Document) error { return nil }

type testEnv struct {
	repo   *stubRepository
	router chi.Router
	actor  uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.New(&config.Config{LogLevel: "error"})
	repo := &stubRepository{docs: map[uuid.UUID]models.Document{}}
	svcs := &appsvcs.Services{Document: appsvcs.NewDocumentService(repo, nil, log)}
	env := &testEnv{repo: repo, actor: uuid.New()}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("X-Test-Anonymous") == "" {
				req = req.WithContext(auth.WithActorID(req.Context(), env.actor))
			}
			next.ServeHTTP(w, req)
		})
	})

	post, put := NewPostDocumentHandler(svcs, log), NewPutDocumentHandler(svcs, log)
	for _, route := range []struct {
		path      string
		kind      models.Kind
		post, put http.HandlerFunc
	}{
		{"/purchase-orders", models.KindPurchaseOrder, post.PurchaseOrder, put.PurchaseOrder},
		{"/invoices", models.KindInvoice, post.Invoice, put.Invoice},
	} {
		r.Route(route.path, func(r chi.Router) {
			r.Post("/", route.post)
			r.Get("/", NewListDocumentsHandler(svcs, log, route.kind).Execute)
			r.Post("/bulk", NewPostBulkHandler(svcs, log, route.kind).Execute)
			r.Get("/{id}", NewGetDocumentHandler(svcs, log, route.kind).Execute)
			r.Put("/{id}", route.put)
			r.Patch("/{id}/status", NewPatchDocumentStatusHandler(svcs, log, route.kind).Execute)
			r.Delete("/{id}", NewDeleteDocumentHandler(svcs, log, route.kind).Execute)
		})
	}
	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid JSON body %q: %v", w.Body.String(), err)
	}
	return v
}

func (e *testEnv) seed(kind models.Kind, status models.Status) *models.Document {
	doc := models.NewDocument(kind, status, uuid.New(), e.actor, time.Now())
	doc.Items = []models.LineItem{{ItemName: "Toner", Quantity: 1}}
	e.repo.put(doc)
	return doc
}

const purchaseOrderBody = `{
	"vendor_id": "550e8400-e29b-41d4-a716-446655440000",
	"order_date": "2026-03-10",
	"delivery_date": "2026-03-31",
	"items": [
		{"item_name": "Paper", "quantity": 2, "unit_price": "1000", "tax_rate": "0.1"},
		{"item_name": "Toner", "quantity": 3, "unit_price": 2000, "tax_rate": 0.1}
	]
}`

func TestPostPurchaseOrder_Created(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/purchase-orders", purchaseOrderBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body)
	}

	resp := decodeBody[map[string]any](t, w)
	checks := map[string]any{
		"status":        "DRAFT",
		"kind":          "purchase_order",
		"order_date":    "2026-03-10",
		"delivery_date": "2026-03-31",
		"total_amount":  "8000",
		"tax_amount":    "800",
		"grand_total":   "8800",
	}
	for key, want := range checks {
		if resp[key] != want {
			t.Errorf("%s: got %v, want %v", key, resp[key], want)
		}
	}
	if _, ok := resp["issue_date"]; ok {
		t.Error("purchase order response must not carry issue_date")
	}
	if !strings.HasPrefix(resp["document_number"].(string), "PO-") {
		t.Errorf("unexpected number %v", resp["document_number"])
	}
}

func TestPostPurchaseOrder_DeliveryBeforeOrder(t *testing.T) {
	env := newTestEnv(t)
	body := `{"vendor_id":"550e8400-e29b-41d4-a716-446655440000","order_date":"2026-03-10","delivery_date":"2026-03-01",
		"items":[{"item_name":"Paper","quantity":1,"unit_price":"10","tax_rate":"0"}]}`

	w := env.do(t, http.MethodPost, "/purchase-orders", body)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body)
	}
	resp := decodeBody[ErrorResponse](t, w)
	if len(resp.Fields) != 1 || resp.Fields[0].Field != "delivery_date" {
		t.Fatalf("expected delivery_date field error, got %+v", resp.Fields)
	}
}

func TestPostInvoice_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"malformed json", `{"vendor_id":`, http.StatusBadRequest},
		{"missing vendor", `{"items":[{"item_name":"x","quantity":1}]}`, http.StatusUnprocessableEntity},
		{"empty items", `{"vendor_id":"550e8400-e29b-41d4-a716-446655440000","items":[]}`, http.StatusUnprocessableEntity},
		{"bad date format", `{"vendor_id":"550e8400-e29b-41d4-a716-446655440000","issue_date":"10/03/2026","items":[{"item_name":"x","quantity":1}]}`, http.StatusUnprocessableEntity},
		{"status of other kind", `{"vendor_id":"550e8400-e29b-41d4-a716-446655440000","status":"SENT","items":[{"item_name":"x","quantity":1}]}`, http.StatusUnprocessableEntity},
		{"price below a cent", `{"vendor_id":"550e8400-e29b-41d4-a716-446655440000","items":[{"item_name":"x","quantity":3,"unit_price":"0.005"}]}`, http.StatusUnprocessableEntity},
		{"quantity past int32", `{"vendor_id":"550e8400-e29b-41d4-a716-446655440000","items":[{"item_name":"x","quantity":4294967297,"unit_price":"100"}]}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			w := env.do(t, http.MethodPost, "/invoices", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body)
			}
			if len(env.repo.docs) != 0 {
				t.Fatal("nothing should be persisted")
			}
		})
	}
}

func TestUnauthenticated(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/invoices", nil)
	req.Header.Set("X-Test-Anonymous", "1")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestGetDocument(t *testing.T) {
	env := newTestEnv(t)
	doc := env.seed(models.KindInvoice, models.StatusPending)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"found", "/invoices/" + doc.ID.String(), http.StatusOK},
		{"wrong kind", "/purchase-orders/" + doc.ID.String(), http.StatusNotFound},
		{"unknown id", "/invoices/" + uuid.NewString(), http.StatusNotFound},
		{"malformed id", "/invoices/not-a-uuid", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, tt.path, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body)
			}
		})
	}

	resp := decodeBody[DocumentResponse](t, env.do(t, http.MethodGet, "/invoices/"+doc.ID.String(), ""))
	if len(resp.NextStatuses) != 2 || resp.NextStatuses[0] != "REVIEWING" {
		t.Errorf("unexpected next statuses: %v", resp.NextStatuses)
	}
}

func TestListDocuments(t *testing.T) {
	env := newTestEnv(t)
	for range 3 {
		env.seed(models.KindPurchaseOrder, models.StatusDraft)
	}

	w := env.do(t, http.MethodGet, "/purchase-orders?limit=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}
	resp := decodeBody[DocumentListResponse](t, w)
	if resp.Total != 3 || len(resp.Data) != 2 || resp.Limit != 2 {
		t.Fatalf("unexpected page: total %d len %d limit %d", resp.Total, len(resp.Data), resp.Limit)
	}

	if w := env.do(t, http.MethodGet, "/purchase-orders?limit=abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", w.Code)
	}
}

func TestPatchStatus(t *testing.T) {
	env := newTestEnv(t)
	doc := env.seed(models.KindPurchaseOrder, models.StatusDraft)
	path := "/purchase-orders/" + doc.ID.String() + "/status"

	w := env.do(t, http.MethodPatch, path, `{"status":"SENT","comment":"emailed"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}
	resp := decodeBody[StatusUpdateResponse](t, w)
	if resp.Status != "SENT" || resp.HistoryEntry.Status != "SENT" || resp.HistoryEntry.ActorID != env.actor {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.HistoryEntry.Comment == nil || *resp.HistoryEntry.Comment != "emailed" {
		t.Errorf("comment not echoed: %+v", resp.HistoryEntry)
	}
	if len(resp.NextStatuses) != 2 {
		t.Errorf("next statuses: %v", resp.NextStatuses)
	}

	w = env.do(t, http.MethodPatch, path, `{"status":"SENT"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("same-status change: expected 400, got %d", w.Code)
	}
	errResp := decodeBody[ErrorResponse](t, w)
	if len(errResp.AllowedStatuses) != 2 {
		t.Errorf("allowed statuses: %v", errResp.AllowedStatuses)
	}
}

func TestPutDocument_ForbiddenTransition(t *testing.T) {
	env := newTestEnv(t)
	doc := env.seed(models.KindInvoice, models.StatusPaid)

	body := `{"vendor_id":"` + doc.VendorID.String() + `","status":"DRAFT","items":[{"item_name":"x","quantity":1,"unit_price":"5","tax_rate":"0"}]}`
	w := env.do(t, http.MethodPut, "/invoices/"+doc.ID.String(), body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body)
	}
}

func TestDeleteDocument(t *testing.T) {
	env := newTestEnv(t)
	draft := env.seed(models.KindInvoice, models.StatusDraft)
	sent := env.seed(models.KindInvoice, models.StatusPending)

	if w := env.do(t, http.MethodDelete, "/invoices/"+draft.ID.String(), ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body)
	}
	if w := env.do(t, http.MethodDelete, "/invoices/"+sent.ID.String(), ""); w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body)
	}
}

func TestPostBulk(t *testing.T) {
	t.Run("partial status update", func(t *testing.T) {
		env := newTestEnv(t)
		a := env.seed(models.KindPurchaseOrder, models.StatusDraft)
		b := env.seed(models.KindPurchaseOrder, models.StatusCompleted)

		body := `{"action":"updateStatus","status":"SENT","ids":["` + a.ID.String() + `","` + b.ID.String() + `"]}`
		w := env.do(t, http.MethodPost, "/purchase-orders/bulk", body)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
		}
		resp := decodeBody[BulkResponse](t, w)
		if len(resp.Results) != 2 || !resp.Results[0].Success || resp.Results[1].Success {
			t.Fatalf("unexpected results: %+v", resp.Results)
		}
		if resp.DeletedCount != nil {
			t.Error("status update must not report deleted_count")
		}
	})

	t.Run("delete blocked by non-draft", func(t *testing.T) {
		env := newTestEnv(t)
		a := env.seed(models.KindPurchaseOrder, models.StatusDraft)
		b := env.seed(models.KindPurchaseOrder, models.StatusSent)

		body := `{"action":"delete","ids":["` + a.ID.String() + `","` + b.ID.String() + `"]}`
		w := env.do(t, http.MethodPost, "/purchase-orders/bulk", body)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", w.Code, w.Body)
		}
		resp := decodeBody[ErrorResponse](t, w)
		if len(resp.BlockingIDs) != 1 || resp.BlockingIDs[0] != b.ID {
			t.Fatalf("unexpected blocking ids: %v", resp.BlockingIDs)
		}
	})

	t.Run("foreign id", func(t *testing.T) {
		env := newTestEnv(t)
		a := env.seed(models.KindPurchaseOrder, models.StatusDraft)

		body := `{"action":"delete","ids":["` + a.ID.String() + `","` + uuid.NewString() + `"]}`
		if w := env.do(t, http.MethodPost, "/purchase-orders/bulk", body); w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", w.Code, w.Body)
		}
	})

	t.Run("status update with a foreign id changes nothing", func(t *testing.T) {
		env := newTestEnv(t)
		a := env.seed(models.KindPurchaseOrder, models.StatusDraft)
		theirs := models.NewDocument(models.KindPurchaseOrder, models.StatusDraft, uuid.New(), uuid.New(), time.Now())
		env.repo.put(theirs)

		body := `{"action":"updateStatus","status":"SENT","ids":["` + a.ID.String() + `","` + theirs.ID.String() + `"]}`
		if w := env.do(t, http.MethodPost, "/purchase-orders/bulk", body); w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", w.Code, w.Body)
		}
		for _, id := range []uuid.UUID{a.ID, theirs.ID} {
			if d, _ := env.repo.get(id); d.Status != models.StatusDraft {
				t.Errorf("%s: status changed to %s", id, d.Status)
			}
		}
	})

	t.Run("over the cap", func(t *testing.T) {
		env := newTestEnv(t)
		ids := make([]string, 101)
		for i := range ids {
			ids[i] = `"` + uuid.NewString() + `"`
		}
		body := `{"action":"delete","ids":[` + strings.Join(ids, ",") + `]}`
		if w := env.do(t, http.MethodPost, "/purchase-orders/bulk", body); w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", w.Code, w.Body)
		}
	})

	t.Run("unknown action", func(t *testing.T) {
		env := newTestEnv(t)
		body := `{"action":"archive","ids":["` + uuid.NewString() + `"]}`
		if w := env.do(t, http.MethodPost, "/purchase-orders/bulk", body); w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d: %s", w.Code, w.Body)
		}
	})
}
