package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/enterprise-workflow/workflowd/internal/users"
	"github.com/enterprise-workflow/workflowd/pkg/apperrors"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ActorContextKey is the key for storing the resolved Actor in request context
	ActorContextKey ContextKey = "actor"
)

// Middleware extracts the bearer token, verifies it, resolves the acting user
// from the database, and injects an explicit users.Actor into the request
// context. The user is re-read on every request so that role changes take
// effect immediately for future authorization checks, independent of the role
// claim baked into the token. Requests without a valid token proceed without
// an actor; handlers behind RequireAuth reject them.
func Middleware(tokens *TokenManager, accounts *users.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				slog.Warn("malformed authorization header", "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			userID, _, err := tokens.Verify(tokenString)
			if err != nil {
				slog.Warn("token verification failed", "error", err, "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			user, err := accounts.GetByID(r.Context(), userID)
			if err != nil {
				slog.Warn("token subject not found", "user_id", userID, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			actor := users.ActorFor(user)
			ctx := context.WithValue(r.Context(), ActorContextKey, &actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext extracts the resolved Actor from a request context.
// Returns nil when the request carried no valid token.
func ActorFromContext(ctx context.Context) *users.Actor {
	actor, ok := ctx.Value(ActorContextKey).(*users.Actor)
	if !ok {
		return nil
	}
	return actor
}

// RequireAuth rejects requests without a resolved actor.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ActorFromContext(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"UNAUTHORIZED","message":"authentication required"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects authenticated requests whose actor holds none of the
// given roles.
func RequireRole(roles ...users.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			apperrors.WriteHTTP(w, apperrors.Authorization("role %s may not access this resource", actor.Role))
		}))
	}
}

// RequireReviewer rejects actors without MANAGER or ADMIN role.
func RequireReviewer(next http.Handler) http.Handler {
	return RequireRole(users.RoleManager, users.RoleAdmin)(next)
}
