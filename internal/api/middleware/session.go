package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/pxtester/showcase/internal/api"
	"github.com/pxtester/showcase/internal/domain"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	ActorKey       contextKey = "actor"
	actorHolderKey contextKey = "actor_holder"

	// SessionCookie is the cookie carrying the session token.
	SessionCookie = "session"
)

// SessionLookup resolves a session token.
type SessionLookup interface {
	Get(ctx context.Context, token string) (*domain.Session, error)
}

// actorHolder lets outer middleware (access log, Sentry) see the actor
// attached further down the chain.
type actorHolder struct {
	mu    sync.Mutex
	actor *domain.Actor
}

func (h *actorHolder) set(a domain.Actor) {
	h.mu.Lock()
	h.actor = &a
	h.mu.Unlock()
}

func (h *actorHolder) get() (domain.Actor, bool) {
	if h == nil {
		return domain.Actor{}, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.actor == nil {
		return domain.Actor{}, false
	}
	return *h.actor, true
}

func withActorHolder(ctx context.Context) (context.Context, *actorHolder) {
	if h, ok := ctx.Value(actorHolderKey).(*actorHolder); ok {
		return ctx, h
	}
	h := &actorHolder{}
	return context.WithValue(ctx, actorHolderKey, h), h
}

// SessionToken returns the token from the session cookie or a Bearer header.
func SessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// LoadSession attaches the actor for a valid session. Requests without one
// pass through anonymously; RequireRole decides whether that is allowed.
func LoadSession(store SessionLookup, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := store.Get(r.Context(), token)
			if err != nil {
				if !errors.Is(err, domain.ErrSessionNotFound) {
					logger.Warn().Err(err).Str("request_id", GetRequestID(r.Context())).Msg("session lookup failed")
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx, holder := withActorHolder(r.Context())
			holder.set(sess.Actor)
			ctx = context.WithValue(ctx, ActorKey, sess.Actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects anonymous requests with 401 and actors below role with 403.
func RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActor(r.Context())
			if !ok {
				api.Error(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if !actor.Role.AtLeast(role) {
				api.Error(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetActor returns the authenticated actor, if any.
func GetActor(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(domain.Actor)
	return actor, ok
}

// WithActor returns ctx carrying actor.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}
