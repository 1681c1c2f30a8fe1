package auth

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/procuredesk/pkg/httpx"
	"github.com/ghuser/procuredesk/pkg/logger"
)

const (
	SessionName        = "procuredesk_session"
	SessionActorIDKey  = "user_id"
	unauthenticatedMsg = "authentication required"
)

// RequireAuth is a chi middleware that enforces authentication via session cookies.
// It reads the session cookie, extracts the user id, and injects it into the
// request context. Returns 401 if the session is missing, invalid, or lacks a
// valid user_id.
//
// After this middleware, handlers can safely call auth.ActorIDFromCtx(r.Context()).
func RequireAuth(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, SessionName)
			if err != nil {
				log.WarnContext(r.Context(), "invalid session cookie", "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, unauthenticatedMsg)
				return
			}

			raw, ok := session.Values[SessionActorIDKey].(string)
			if !ok || raw == "" {
				log.WarnContext(r.Context(), "session missing user_id")
				httpx.JSONError(w, http.StatusUnauthorized, unauthenticatedMsg)
				return
			}

			actorID, err := uuid.Parse(raw)
			if err != nil || actorID == uuid.Nil {
				log.WarnContext(r.Context(), "invalid user_id in session", "user_id", raw, "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, "invalid session data")
				return
			}

			ctx := WithActorID(r.Context(), actorID)
			ctx = logger.ContextWithAttrs(ctx, "actor_id", actorID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StartSession stores actorID in a new or existing session and writes the
// session cookie. Identity providers call it after verifying credentials.
func StartSession(store sessions.Store, w http.ResponseWriter, r *http.Request, actorID uuid.UUID) error {
	session, err := store.Get(r, SessionName)
	if err != nil {
		session, err = store.New(r, SessionName)
		if err != nil {
			return err
		}
	}
	session.Values[SessionActorIDKey] = actorID.String()
	return session.Save(r, w)
}

// EndSession expires the session cookie and, for RedisStore, deletes the
// server-side entry so the cookie cannot be replayed.
func EndSession(store sessions.Store, w http.ResponseWriter, r *http.Request) error {
	session, err := store.Get(r, SessionName)
	if err != nil {
		return err
	}
	session.Options.MaxAge = -1
	delete(session.Values, SessionActorIDKey)
	return session.Save(r, w)
}

// LogoutHandler ends the caller's session and responds 204.
func LogoutHandler(store sessions.Store, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := EndSession(store, w, r); err != nil {
			log.ErrorContext(r.Context(), "end session", "error", err)
			httpx.JSONError(w, http.StatusInternalServerError, "could not end session")
			return
		}
		httpx.NoContent(w)
	}
}
