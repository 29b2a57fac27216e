package web

import (
	"context"
	"net/http"
	"strings"
)

const contextKeyUser ctxKey = "user"

func getUserFromContext(ctx context.Context) *User {
	user, ok := ctx.Value(contextKeyUser).(*User)
	if !ok {
		return nil
	}

	return user
}

// SessionAuthMiddleware requires a valid session token. When no auth service
// is configured the server runs open and the handler is called as-is.
func (s *Server) SessionAuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authSvc == nil {
			next(w, r)
			return
		}

		token := extractSessionToken(r)
		if token == "" {
			renderJSON(w, http.StatusUnauthorized, apiError{
				Code:    http.StatusUnauthorized,
				Message: "Authentication required",
			})
			return
		}

		user, _, err := s.authSvc.ValidateSession(r.Context(), token)
		if err != nil {
			renderJSON(w, http.StatusUnauthorized, apiError{
				Code:    http.StatusUnauthorized,
				Message: "Invalid or expired session",
			})
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUser, user)
		next(w, r.WithContext(ctx))
	}
}

// extractSessionToken reads the session token from the session cookie or the
// X-Session-Token header.
func extractSessionToken(r *http.Request) string {
	if cookie, err := r.Cookie("session_token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	if token := r.Header.Get("X-Session-Token"); token != "" {
		return strings.TrimSpace(token)
	}

	return ""
}

// extractAPIKey extracts the API key from the request
// Priority: Authorization header > X-API-Key header > api_key query parameter
func extractAPIKey(r *http.Request) string {
	// 1. Check Authorization header (Bearer token)
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return strings.TrimSpace(parts[1])
		}
	}

	// 2. Check X-API-Key header
	apiKeyHeader := r.Header.Get("X-API-Key")
	if apiKeyHeader != "" {
		return strings.TrimSpace(apiKeyHeader)
	}

	// 3. Check api_key query parameter
	apiKeyQuery := r.URL.Query().Get("api_key")
	if apiKeyQuery != "" {
		return strings.TrimSpace(apiKeyQuery)
	}

	return ""
}
