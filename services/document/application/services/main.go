package services

import (
	"github.com/ghuser/procuredesk/pkg/app"
	"github.com/ghuser/procuredesk/pkg/cache"
	"github.com/ghuser/procuredesk/services/document/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Document *DocumentService
}

// New wires all document application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	repo := postgres.NewDocumentRepository(a.Db, a.EventBus)

	var opts []Option
	var documentCache DocumentCache
	if a.Config != nil {
		opts = append(opts,
			WithBulkConcurrency(a.Config.BulkConcurrency),
			WithReassessBatchSize(a.Config.ReassessBatchSize),
		)
	}
	if a.Redis != nil {
		ttl := cache.DefaultDocumentCacheTTL
		if a.Config != nil && a.Config.DocumentCacheTTL > 0 {
			ttl = a.Config.DocumentCacheTTL
		}
		documentCache = cache.NewDocumentCache(a.Redis, ttl)
	}

	return &Services{
		Document: NewDocumentService(repo, documentCache, a.Logger, opts...),
	}
}
