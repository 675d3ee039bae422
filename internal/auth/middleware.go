package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/warungpos/warungpos/internal/shared"
)

// Middleware resolves bearer tokens into request actors.
type Middleware struct {
	Tokens *TokenStore
	Logger *slog.Logger
}

// RequireAuth rejects requests without a resolvable bearer token.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		actor, err := m.Tokens.Resolve(r.Context(), token)
		if err != nil {
			if m.Logger != nil && !shared.IsValidationError(err) && err != shared.ErrUnauthenticated {
				m.Logger.Warn("resolve bearer token", slog.Any("error", err))
			}
			shared.RespondError(w, http.StatusUnauthorized, "sesi tidak valid, silakan masuk kembali")
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
	})
}

// RequireAdmin rejects authenticated actors lacking administrator privilege.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := shared.ActorFromContext(r.Context())
		if !ok {
			shared.RespondError(w, http.StatusUnauthorized, "sesi tidak valid, silakan masuk kembali")
			return
		}
		if !actor.IsAdmin() {
			shared.RespondError(w, http.StatusForbidden, "hanya administrator yang dapat melakukan aksi ini")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
