package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/freeeve/conquest-table/internal/logger"
)

type contextKey string

const playerIDKey contextKey = "player_id"

// Middleware returns an HTTP middleware that validates session tokens from
// the Authorization header (Bearer scheme) and stores the player ID in the
// request context.
func Middleware(jwtMgr *JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				http.Error(w, `{"error":"invalid authorization format"}`, http.StatusUnauthorized)
				return
			}

			claims, err := jwtMgr.ValidateToken(parts[1])
			if err != nil {
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), playerIDKey, claims.PlayerID)
			ctx = logger.WithPlayerID(ctx, claims.PlayerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PlayerIDFromContext extracts the authenticated player ID from the request context.
func PlayerIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(playerIDKey).(string)
	return id
}
