package app

import (
	"github.com/gorilla/sessions"

	"github.com/ghuser/procuredesk/pkg/cache"
	"github.com/ghuser/procuredesk/pkg/config"
	"github.com/ghuser/procuredesk/pkg/database"
	"github.com/ghuser/procuredesk/pkg/events"
	"github.com/ghuser/procuredesk/pkg/logger"
	"github.com/ghuser/procuredesk/pkg/workflows"
)

// Application holds shared infrastructure dependencies for all bounded contexts.
// Pass it to each context's route and worker registration functions.
//
// Logging: app.Logger is backed by a trace-aware handler. Use the context
// methods so trace_id, span_id and request_id are attached:
//
//	app.Logger.InfoContext(ctx, "document created", "document_id", id)
//
// Redis and TemporalClient may be nil in tests; SessionStore is nil in the worker.
type Application struct {
	Config         *config.Config
	Db             *database.Database
	Logger         logger.Logger
	EventBus       *events.EventBus
	Redis          *cache.RedisClient
	TemporalClient *workflows.TemporalClient
	SessionStore   sessions.Store
}
