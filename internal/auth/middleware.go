package auth

import (
	"net/http"
	"strings"

	"github.com/autobreezebeats/breeze-hub-go/internal/api"
	"github.com/autobreezebeats/breeze-hub-go/internal/apperrors"
	"github.com/autobreezebeats/breeze-hub-go/internal/config"
)

var publicRoutes = map[string]struct{}{
	"/v1/auth/token":   {},
	"/v1/auth/refresh": {},
	"/metrics":         {},
}

var publicPrefixes = []string{
	"/v1/health",
}

// Middleware validates JWT tokens for protected routes.
// Auth is a no-op when no JWT secret is configured.
func Middleware(cfg config.Config) func(http.Handler) http.Handler {
	tokens := NewTokens(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.JWTSecret == "" || isPublicRoute(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" {
				// Browser WebSocket clients cannot set headers on upgrade.
				token = r.URL.Query().Get("token")
			}
			if token == "" {
				api.WriteError(w, r, apperrors.NewUnauthorizedError("Missing Authorization header"))
				return
			}

			id, err := tokens.Verify(token)
			if err != nil {
				if err == ErrTokenExpired {
					api.WriteError(w, r, apperrors.NewUnauthorizedError("Token has expired", apperrors.ErrorCodeAuthTokenExpired))
					return
				}
				api.WriteError(w, r, apperrors.NewUnauthorizedError("Invalid token", apperrors.ErrorCodeAuthTokenInvalid))
				return
			}

			if id.Type != TokenTypeAccess {
				api.WriteError(w, r, apperrors.NewUnauthorizedError("Invalid token type", apperrors.ErrorCodeAuthTokenInvalid))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

func isPublicRoute(path string) bool {
	if _, ok := publicRoutes[path]; ok {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
