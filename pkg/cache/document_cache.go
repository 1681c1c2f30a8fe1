package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultDocumentCacheTTL is used when no TTL is configured.
	DefaultDocumentCacheTTL = time.Hour

	documentCacheKeyPrefix = "document"
)

// CachedDocument is the read model stored in Redis. Ownership fields are kept
// as separate hash fields so a reader can authorize before decoding Payload.
type CachedDocument struct {
	ID            uuid.UUID
	Kind          string
	CreatedBy     uuid.UUID
	VendorOwnerID uuid.UUID
	Payload       []byte // JSON snapshot of the full document
}

// VisibleTo reports whether actorID created the document or owns its vendor.
func (d *CachedDocument) VisibleTo(actorID uuid.UUID) bool {
	if actorID == uuid.Nil {
		return false
	}
	return d.CreatedBy == actorID || d.VendorOwnerID == actorID
}

// setIfGeneration writes the hash only while the generation counter still
// holds the value read before the snapshot was loaded. A missing counter is 0.
var setIfGeneration = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1], 'id', ARGV[2], 'kind', ARGV[3], 'created_by', ARGV[4], 'vendor_owner_id', ARGV[5], 'payload', ARGV[6])
redis.call('PEXPIRE', KEYS[1], ARGV[7])
return 1
`)

// DocumentCache provides read/write operations for document cache entries.
// Key format: "document:{kind}:{documentID}"
type DocumentCache struct {
	client *RedisClient
	ttl    time.Duration
}

// NewDocumentCache creates a DocumentCache backed by the given RedisClient.
// A non-positive ttl falls back to DefaultDocumentCacheTTL.
func NewDocumentCache(r *RedisClient, ttl time.Duration) *DocumentCache {
	if ttl <= 0 {
		ttl = DefaultDocumentCacheTTL
	}
	return &DocumentCache{client: r, ttl: ttl}
}

// Get retrieves a cached document.
// Returns redis.Nil error when the key does not exist or has expired.
func (c *DocumentCache) Get(ctx context.Context, kind string, id uuid.UUID) (*CachedDocument, error) {
	vals, err := c.client.Client().HGetAll(ctx, c.key(kind, id)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil
	}

	docID, err := uuid.Parse(vals["id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse id: %w", err)
	}
	createdBy, err := uuid.Parse(vals["created_by"])
	if err != nil {
		return nil, fmt.Errorf("cache parse created_by: %w", err)
	}
	vendorOwner, err := uuid.Parse(vals["vendor_owner_id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse vendor_owner_id: %w", err)
	}

	return &CachedDocument{
		ID:            docID,
		Kind:          vals["kind"],
		CreatedBy:     createdBy,
		VendorOwnerID: vendorOwner,
		Payload:       []byte(vals["payload"]),
	}, nil
}

// Generation returns the invalidation counter for a document. Read it before
// loading the snapshot that is later passed to Set.
func (c *DocumentCache) Generation(ctx context.Context, kind string, id uuid.UUID) (int64, error) {
	gen, err := c.client.Client().Get(ctx, c.genKey(kind, id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	return gen, nil
}

// Set writes a cached document as a Redis hash with the configured TTL, unless
// the document was invalidated after gen was read. It reports whether the
// entry was written.
func (c *DocumentCache) Set(ctx context.Context, doc *CachedDocument, gen int64) (bool, error) {
	written, err := setIfGeneration.Run(ctx, c.client.Client(),
		[]string{c.key(doc.Kind, doc.ID), c.genKey(doc.Kind, doc.ID)},
		gen,
		doc.ID.String(),
		doc.Kind,
		doc.CreatedBy.String(),
		doc.VendorOwnerID.String(),
		string(doc.Payload),
		c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("cache set: %w", err)
	}
	return written == 1, nil
}

// Delete removes cached documents and bumps their generation so an in-flight
// Set of an older snapshot is discarded. Missing keys are not an error.
func (c *DocumentCache) Delete(ctx context.Context, kind string, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := c.client.Client().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Del(ctx, c.key(kind, id))
			pipe.Incr(ctx, c.genKey(kind, id))
			pipe.Expire(ctx, c.genKey(kind, id), c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// key builds the Redis key: "document:{kind}:{documentID}"
func (c *DocumentCache) key(kind string, id uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", documentCacheKeyPrefix, kind, id)
}

func (c *DocumentCache) genKey(kind string, id uuid.UUID) string {
	return c.key(kind, id) + ":gen"
}
