package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	pkgcache "github.com/ghuser/procuredesk/pkg/cache"
	"github.com/ghuser/procuredesk/services/document/domain"
	"github.com/ghuser/procuredesk/services/document/domain/models"
	"github.com/ghuser/procuredesk/services/document/domain/repositories"
	domainsvcs "github.com/ghuser/procuredesk/services/document/domain/services"
)

// memoryRepository is an in-memory DocumentRepository. Stored documents are
// copied on the way in and out so tests observe only persisted state.
type memoryRepository struct {
	mu       sync.Mutex
	docs     map[uuid.UUID]*models.Document
	failIDs  map[uuid.UUID]error
	statusOp int

	// afterFind runs once FindByID has taken its snapshot, outside the lock.
	afterFind func()
}

var _ repositories.DocumentRepository = (*memoryRepository)(nil)

func newMemoryRepository(docs ...*models.Document) *memoryRepository {
	r := &memoryRepository{docs: map[uuid.UUID]*models.Document{}, failIDs: map[uuid.UUID]error{}}
	for _, d := range docs {
		r.docs[d.ID] = clone(d)
	}
	return r
}

func clone(d *models.Document) *models.Document {
	c := *d
	c.Items = append([]models.LineItem(nil), d.Items...)
	c.StatusHistory = append([]models.StatusChange(nil), d.StatusHistory...)
	if d.DueDate != nil {
		due := *d.DueDate
		c.DueDate = &due
	}
	return &c
}

func (r *memoryRepository) stored(id uuid.UUID) *models.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.docs[id]; ok {
		return clone(d)
	}
	return nil
}

func (r *memoryRepository) Create(_ context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; ok {
		return domain.ErrDocumentAlreadyExists
	}
	r.docs[doc.ID] = clone(doc)
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, kind models.Kind, id uuid.UUID) (*models.Document, error) {
	r.mu.Lock()
	d, ok := r.docs[id]
	if !ok || d.Kind != kind {
		r.mu.Unlock()
		return nil, domain.ErrDocumentNotFound
	}
	snapshot := clone(d)
	hook := r.afterFind
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	return snapshot, nil
}

func (r *memoryRepository) FindByOwner(_ context.Context, kind models.Kind, actorID uuid.UUID, opts repositories.QueryOpts) ([]*models.Document, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*models.Document
	for _, d := range r.docs {
		if d.Kind == kind && d.OwnedBy(actorID) && (opts.Status == "" || d.Status == opts.Status) {
			all = append(all, clone(d))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if opts.Offset >= total {
		return nil, total, nil
	}
	end := min(opts.Offset+opts.Limit, total)
	return all[opts.Offset:end], total, nil
}

func (r *memoryRepository) FindManyByIDsAndOwner(_ context.Context, kind models.Kind, ids []uuid.UUID, actorID uuid.UUID) ([]*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Document
	for _, id := range ids {
		if d, ok := r.docs[id]; ok && d.Kind == kind && d.OwnedBy(actorID) {
			out = append(out, clone(d))
		}
	}
	return out, nil
}

func (r *memoryRepository) Update(_ context.Context, doc *models.Document, from models.Status) error {
	return r.write(doc, from)
}

func (r *memoryRepository) UpdateStatus(_ context.Context, doc *models.Document, from models.Status) error {
	r.mu.Lock()
	r.statusOp++
	r.mu.Unlock()
	return r.write(doc, from)
}

func (r *memoryRepository) write(doc *models.Document, from models.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failIDs[doc.ID]; ok {
		return err
	}
	cur, ok := r.docs[doc.ID]
	if !ok || cur.Status != from {
		return domain.ErrDocumentNotFound
	}
	r.docs[doc.ID] = clone(doc)
	return nil
}

func (r *memoryRepository) DeleteMany(_ context.Context, kind models.Kind, docs []*models.Document, _ uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range docs {
		if cur, ok := r.docs[d.ID]; !ok || cur.Kind != kind {
			return 0, domain.ErrDocumentNotFound
		}
	}
	for _, d := range docs {
		delete(r.docs, d.ID)
	}
	return len(docs), nil
}

func (r *memoryRepository) FindReassessmentCandidates(_ context.Context, kind models.Kind, asOf time.Time, limit int) ([]*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	eligible := domainsvcs.OverdueEligibleStatuses(kind)
	var out []*models.Document
	for _, d := range r.docs {
		if d.Kind != kind {
			continue
		}
		for _, s := range eligible {
			if d.Status == s {
				out = append(out, clone(d))
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memoryRepository) SaveAmounts(_ context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.docs[doc.ID]
	if !ok {
		return domain.ErrDocumentNotFound
	}
	cur.TotalAmount = doc.TotalAmount
	cur.TaxAmount = doc.TaxAmount
	return nil
}

// memoryCache is an in-memory DocumentCache with the same generation rules as
// the Redis one: Delete bumps the generation and Set is dropped when stale.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*pkgcache.CachedDocument
	gens    map[string]int64
	getErr  error

	// sets, when non-nil, receives the outcome of every Set.
	sets chan bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]*pkgcache.CachedDocument{}, gens: map[string]int64{}}
}

func cacheKey(kind string, id uuid.UUID) string { return kind + ":" + id.String() }

func (c *memoryCache) Get(_ context.Context, kind string, id uuid.UUID) (*pkgcache.CachedDocument, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	e, ok := c.entries[cacheKey(kind, id)]
	if !ok {
		return nil, redis.Nil
	}
	return e, nil
}

func (c *memoryCache) Generation(_ context.Context, kind string, id uuid.UUID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[cacheKey(kind, id)], nil
}

func (c *memoryCache) Set(_ context.Context, doc *pkgcache.CachedDocument, gen int64) (bool, error) {
	c.mu.Lock()
	key := cacheKey(doc.Kind, doc.ID)
	written := c.gens[key] == gen
	if written {
		c.entries[key] = doc
	}
	sets := c.sets
	c.mu.Unlock()

	if sets != nil {
		sets <- written
	}
	return written, nil
}

// put seeds an entry regardless of generation.
func (c *memoryCache) put(doc *pkgcache.CachedDocument) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(doc.Kind, doc.ID)] = doc
}

func (c *memoryCache) Delete(_ context.Context, kind string, ids ...uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		key := cacheKey(kind, id)
		delete(c.entries, key)
		c.gens[key]++
	}
	return nil
}

func (c *memoryCache) has(kind models.Kind, id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[cacheKey(kind.String(), id)]
	return ok
}

var errStorage = errors.New("storage unavailable")
