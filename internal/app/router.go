package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/warungpos/warungpos/internal/auth"
	dailyclosehttp "github.com/warungpos/warungpos/internal/dailyclose/http"
	"github.com/warungpos/warungpos/internal/inventory"
	"github.com/warungpos/warungpos/internal/orders"
	"github.com/warungpos/warungpos/internal/shifts"
	"github.com/warungpos/warungpos/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	AuthMiddleware    auth.Middleware
	AuthHandler       *auth.Handler
	OrdersHandler     *orders.Handler
	ShiftsHandler     *shifts.Handler
	InventoryHandler  *inventory.Handler
	DailyCloseHandler *dailyclosehttp.Handler
	JobsHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with warungpos defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireAuth)
			params.OrdersHandler.MountRoutes(r)
			params.ShiftsHandler.MountRoutes(r)
			params.InventoryHandler.MountRoutes(r)
			params.DailyCloseHandler.MountRoutes(r)

			if params.JobsHandler != nil {
				r.Route("/jobs", func(r chi.Router) {
					r.Use(params.AuthMiddleware.RequireAdmin)
					params.JobsHandler.MountRoutes(r)
				})
			}
		})
	})

	return r
}
