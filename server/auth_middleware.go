package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/pr-admin-client/internal/errors"
	"github.com/jrsteele09/pr-admin-client/token"
	"github.com/jrsteele09/pr-admin-client/users"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyClaims stores the verified token claims
	ContextKeyClaims ContextKey = "claims"
)

// ClaimsFromContext returns the claims RequireToken stored on the request
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*token.Claims)
	return claims, ok
}

// RequireToken validates the bearer token in the configured header. Every failure is a 401
// so the client knows to refresh.
func (s *Server) RequireToken() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			value := r.Header.Get(s.tokenHeader)
			if value == "" {
				writeJSONError(w, "unauthorized", "Missing "+s.tokenHeader+" header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(value, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				writeJSONError(w, "unauthorized", "Invalid "+s.tokenHeader+" header format", http.StatusUnauthorized)
				return
			}

			claims, err := s.issuer.Verify(parts[1])
			if err != nil {
				description := "Invalid token"
				if errors.Is(err, apperrors.ErrTokenExpired) {
					description = "Token expired"
				}
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected token")
				writeJSONError(w, "unauthorized", description, http.StatusUnauthorized)
				return
			}

			if s.revoked.IsRevoked(claims.ID) {
				writeJSONError(w, "unauthorized", "Token revoked", http.StatusUnauthorized)
				return
			}
			s.revoked.Seen(claims.ID, claims.ExpiresAt)

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireRole must be chained after RequireToken
func (s *Server) RequireRole(role users.RoleType) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, "unauthorized", "No token claims", http.StatusUnauthorized)
				return
			}
			if !users.RoleType(claims.Role).AtLeast(role) {
				err := apperrors.Wrapf(apperrors.ErrInsufficientRole, "%s role required", role)
				log.Debug().Str("subject", claims.Subject).Str("role", claims.Role).Msg(err.Error())
				writeJSONError(w, "forbidden", err.Error(), http.StatusForbidden)
				return
			}
			next(w, r)
		}
	}
}

// MeHandler returns the caller's token claims
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFromContext(r.Context())
		writeJSON(w, http.StatusOK, claims)
	}
}
