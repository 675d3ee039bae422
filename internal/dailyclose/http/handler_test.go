package dailyclosehttp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/warungpos/warungpos/internal/dailyclose"
	"github.com/warungpos/warungpos/internal/shared"
)

type stubService struct {
	statusFn   func(ctx context.Context) (dailyclose.CloseStatus, error)
	validateFn func(ctx context.Context) (dailyclose.ValidationVerdict, error)
	executeFn  func(ctx context.Context, actor shared.Actor) (dailyclose.CloseResult, error)
	reopenFn   func(ctx context.Context, actor shared.Actor) error
}

func (s *stubService) Status(ctx context.Context) (dailyclose.CloseStatus, error) {
	return s.statusFn(ctx)
}

func (s *stubService) Validate(ctx context.Context) (dailyclose.ValidationVerdict, error) {
	return s.validateFn(ctx)
}

func (s *stubService) Execute(ctx context.Context, actor shared.Actor) (dailyclose.CloseResult, error) {
	return s.executeFn(ctx, actor)
}

func (s *stubService) Reopen(ctx context.Context, actor shared.Actor) error {
	return s.reopenFn(ctx, actor)
}

func adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := shared.ActorFromContext(r.Context())
		if !ok || !actor.IsAdmin() {
			shared.RespondError(w, http.StatusForbidden, "hanya administrator yang dapat melakukan aksi ini")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func newTestRouter(svc *stubService, actor *shared.Actor) http.Handler {
	h := NewHandler(slog.New(slog.DiscardHandler), svc, adminOnly)
	r := chi.NewRouter()
	if actor != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(shared.ContextWithActor(req.Context(), *actor)))
			})
		})
	}
	h.MountRoutes(r)
	return r
}

var adminActor = shared.Actor{ID: 1, Name: "Ibu Sari", Role: shared.RoleAdmin}
var staffActor = shared.Actor{ID: 2, Name: "Budi", Role: shared.RoleStaff}

func TestGetStatusWrapsEnvelope(t *testing.T) {
	svc := &stubService{
		statusFn: func(context.Context) (dailyclose.CloseStatus, error) {
			return dailyclose.CloseStatus{CanClose: true}, nil
		},
	}
	router := newTestRouter(svc, &staffActor)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/daily-close/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data dailyclose.CloseStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Data.CanClose)
}

func TestValidateReturnsVerdict(t *testing.T) {
	svc := &stubService{
		validateFn: func(context.Context) (dailyclose.ValidationVerdict, error) {
			v := dailyclose.ValidationVerdict{
				PendingOrders:   dailyclose.CheckResult{Valid: true},
				OpenShifts:      dailyclose.CheckResult{Valid: true},
				PendingPayments: dailyclose.CheckResult{Valid: true},
				LowStock:        dailyclose.CheckResult{Valid: false, Count: 2},
			}
			v.Finalise()
			return v, nil
		},
	}
	router := newTestRouter(svc, &staffActor)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/daily-close/validate", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data dailyclose.ValidationVerdict `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Data.CanClose)
	require.Equal(t, dailyclose.SeverityAdvisory, body.Data.LowStock.Severity)
}

func TestValidateDataSourceFailure(t *testing.T) {
	svc := &stubService{
		validateFn: func(context.Context) (dailyclose.ValidationVerdict, error) {
			return dailyclose.ValidationVerdict{}, shared.NewValidationError("pesanan", context.DeadlineExceeded)
		},
	}
	router := newTestRouter(svc, &staffActor)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/daily-close/validate", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body.Error, "pesanan")
}

func TestExecutePassesActor(t *testing.T) {
	var got shared.Actor
	svc := &stubService{
		executeFn: func(_ context.Context, actor shared.Actor) (dailyclose.CloseResult, error) {
			got = actor
			return dailyclose.CloseResult{Success: true, Message: "Tutup buku berhasil"}, nil
		},
	}
	router := newTestRouter(svc, &staffActor)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/daily-close/execute", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, staffActor.ID, got.ID)
}

func TestExecuteStateConflict(t *testing.T) {
	svc := &stubService{
		executeFn: func(context.Context, shared.Actor) (dailyclose.CloseResult, error) {
			return dailyclose.CloseResult{}, dailyclose.ErrNoOpenDay
		},
	}
	router := newTestRouter(svc, &staffActor)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/daily-close/execute", nil))

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestReopenForbiddenForStaff(t *testing.T) {
	called := false
	svc := &stubService{
		reopenFn: func(context.Context, shared.Actor) error {
			called = true
			return nil
		},
	}
	router := newTestRouter(svc, &staffActor)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/daily-close/reopen", nil))

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.False(t, called)
}

func TestReopenNoContentForAdmin(t *testing.T) {
	svc := &stubService{
		reopenFn: func(context.Context, shared.Actor) error { return nil },
	}
	router := newTestRouter(svc, &adminActor)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/daily-close/reopen", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())
}

func TestMissingActorIsUnauthorized(t *testing.T) {
	svc := &stubService{
		executeFn: func(context.Context, shared.Actor) (dailyclose.CloseResult, error) {
			return dailyclose.CloseResult{}, nil
		},
	}
	router := newTestRouter(svc, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/daily-close/execute", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
