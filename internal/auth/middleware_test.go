package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/warungpos/warungpos/internal/shared"
)

func newTestMiddleware(t *testing.T) (Middleware, *TokenStore) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	tokens := NewTokenStore(client, "test-secret", time.Hour)
	return Middleware{Tokens: tokens}, tokens
}

func TestRequireAuthResolvesActor(t *testing.T) {
	mw, tokens := newTestMiddleware(t)

	token, err := tokens.Issue(context.Background(), &User{ID: 5, Name: "Budi", Role: shared.RoleStaff})
	require.NoError(t, err)

	var got shared.Actor
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = shared.ActorFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(5), got.ID)
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	mw, _ := newTestMiddleware(t)

	handler := mw.RequireAuth(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdminRejectsStaff(t *testing.T) {
	mw, _ := newTestMiddleware(t)

	handler := mw.RequireAdmin(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	staff := shared.Actor{ID: 2, Name: "Budi", Role: shared.RoleStaff}
	req = req.WithContext(shared.ContextWithActor(req.Context(), staff))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBearerTokenParsing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Empty(t, BearerToken(req))

	req.Header.Set("Authorization", "Bearer abc123")
	require.Equal(t, "abc123", BearerToken(req))

	req.Header.Set("Authorization", "Basic abc123")
	require.Empty(t, BearerToken(req))
}
