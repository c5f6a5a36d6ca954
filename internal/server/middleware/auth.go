// Package middleware provides HTTP middleware for actor identification.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// actorKey is the context key for storing the authenticated actor.
const actorKey ContextKey = "actor"

// ActorClaims exposes the identity carried by a validated token.
type ActorClaims interface {
	GetUserID() uuid.UUID
	GetName() string
}

// TokenValidator validates bearer tokens. Interface so the middleware works
// with any JWT service implementation without import cycles.
type TokenValidator interface {
	ValidateToken(tokenString string) (ActorClaims, error)
}

// ActorIdentity is the authenticated identity recorded on audit entries.
// Permission checks happen upstream; the engine only records who acted.
type ActorIdentity struct {
	ID   uuid.UUID
	Name string
}

// RequireAuth validates the bearer token and stores the actor identity in the
// request context, rejecting requests without a valid token.
func RequireAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := actorFromHeader(r, validator)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), actorKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth stores the actor identity when a valid token is present but
// lets anonymous requests through. External candidates apply without accounts.
func OptionalAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity, err := actorFromHeader(r, validator); err == nil {
				ctx := context.WithValue(r.Context(), actorKey, identity)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// actorFromHeader parses and validates the Authorization header.
func actorFromHeader(r *http.Request, validator TokenValidator) (ActorIdentity, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ActorIdentity{}, fmt.Errorf("missing Authorization header")
	}

	// Case-insensitive "Bearer" prefix
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ActorIdentity{}, fmt.Errorf("malformed Authorization header")
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return ActorIdentity{}, fmt.Errorf("empty bearer token")
	}

	claims, err := validator.ValidateToken(tokenString)
	if err != nil {
		return ActorIdentity{}, err
	}

	return ActorIdentity{ID: claims.GetUserID(), Name: claims.GetName()}, nil
}

// GetActor extracts the authenticated actor from the request context.
func GetActor(r *http.Request) (ActorIdentity, bool) {
	identity, ok := r.Context().Value(actorKey).(ActorIdentity)
	return identity, ok
}
