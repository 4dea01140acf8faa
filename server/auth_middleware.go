package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/farmers-portal/auth-service/token"
	"github.com/farmers-portal/auth-service/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUser stores the authenticated, sanitized user
	ContextKeyUser ContextKey = "user"
	// ContextKeyToken stores the raw access token the request authenticated with
	ContextKeyToken ContextKey = "token"
)

// UserFromContext returns the authenticated user attached by RequireAuth.
func UserFromContext(ctx context.Context) (*users.User, bool) {
	user, ok := ctx.Value(ContextKeyUser).(*users.User)
	return user, ok
}

// TokenFromContext returns the raw access token attached by RequireAuth.
func TokenFromContext(ctx context.Context) (string, bool) {
	raw, ok := ctx.Value(ContextKeyToken).(string)
	return raw, ok
}

// RequireAuth validates the bearer access token on each request. A token is
// honoured only when it is well-formed, unexpired, correctly signed,
// references an existing user and is still present in that user's allowlist.
// On success the sanitized user and the raw token are attached to the request
// context.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "Authorization header missing", "MISSING_AUTH_HEADER")
				return
			}

			raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if raw == "" {
				writeError(w, http.StatusUnauthorized, "No token provided", "NO_TOKEN_PROVIDED")
				return
			}

			claims, err := s.issuer.VerifyAccess(raw)
			if err != nil {
				switch {
				case errors.Is(err, token.ErrTokenExpired):
					writeError(w, http.StatusUnauthorized, "Token expired", "TOKEN_EXPIRED")
				case errors.Is(err, token.ErrTokenMalformed), errors.Is(err, token.ErrSignatureInvalid):
					writeError(w, http.StatusUnauthorized, "Invalid token", "INVALID_TOKEN")
				default:
					log.Error().Err(err).Msg("access token verification failed")
					writeError(w, http.StatusInternalServerError, "Authentication failed", "AUTH_ERROR")
				}
				return
			}

			user, err := s.users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, users.ErrNotFound) {
					writeError(w, http.StatusUnauthorized, "User not found for this token", "USER_NOT_FOUND")
					return
				}
				log.Error().Err(err).Msg("user lookup failed during authentication")
				writeError(w, http.StatusInternalServerError, "Authentication failed", "AUTH_ERROR")
				return
			}

			if !user.HasAccessToken(raw) {
				writeError(w, http.StatusUnauthorized, "Token is no longer valid", "TOKEN_REVOKED")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user.Sanitized())
			ctx = context.WithValue(ctx, ContextKeyToken, raw)
			next(w, r.WithContext(ctx))
		}
	}
}
