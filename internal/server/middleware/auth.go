// Package middleware provides HTTP middleware for authentication, request
// ids, logging and metrics.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// identityKey is the context key for storing the authenticated identity.
const identityKey ContextKey = "identity"

// Identity is the authenticated caller.
type Identity struct {
	UserID int64
	Email  string
}

// TokenValidator is an interface for validating bearer tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (Identity, error)
}

// ErrIdentityUnavailable is returned by validators when the token could not
// be checked against the account store. RequireAuth answers 500 instead of
// 401 for it.
var ErrIdentityUnavailable = errors.New("identity lookup failed")

// BearerToken extracts the token from an Authorization header value. Both
// "Bearer <token>" (any case) and a bare token are accepted.
func BearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	switch len(parts) {
	case 1:
		if strings.EqualFold(parts[0], "Bearer") {
			return "", false
		}
		return parts[0], true
	case 2:
		if !strings.EqualFold(parts[0], "Bearer") {
			return "", false
		}
		return parts[1], true
	default:
		return "", false
	}
}

func authenticate(v TokenValidator, r *http.Request) (Identity, error) {
	token, ok := BearerToken(r.Header.Get("Authorization"))
	if !ok {
		return Identity{}, errors.New("missing bearer token")
	}
	return v.ValidateToken(r.Context(), token)
}

// OptionalAuth attaches the caller's identity when a valid token is present
// and otherwise lets the request through anonymously.
func OptionalAuth(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, err := authenticate(v, r); err == nil {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects requests without a valid token with 401.
func RequireAuth(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := authenticate(v, r)
			if errors.Is(err, ErrIdentityUnavailable) {
				writeError(w, http.StatusInternalServerError, "internal_error", "An internal error occurred")
				return
			}
			if err != nil {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired authentication token")
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the identity attached by OptionalAuth or RequireAuth.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// GetUserID extracts the authenticated user ID from the request context.
func GetUserID(r *http.Request) (int64, error) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		return 0, fmt.Errorf("user ID not found in request context")
	}
	return id.UserID, nil
}
