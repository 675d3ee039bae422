package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/warungpos/warungpos/internal/app"
	"github.com/warungpos/warungpos/internal/auth"
	"github.com/warungpos/warungpos/internal/dailyclose"
	dailyclosehttp "github.com/warungpos/warungpos/internal/dailyclose/http"
	"github.com/warungpos/warungpos/internal/inventory"
	"github.com/warungpos/warungpos/internal/orders"
	"github.com/warungpos/warungpos/internal/platform/cache"
	"github.com/warungpos/warungpos/internal/platform/db"
	"github.com/warungpos/warungpos/internal/shifts"
	"github.com/warungpos/warungpos/jobs"
)

// dayGuard narrows the daily-close service to what orders need.
type dayGuard struct {
	svc *dailyclose.Service
}

func (g dayGuard) EnsureOpenDay(ctx context.Context) (orders.BusinessDayRef, error) {
	day, err := g.svc.EnsureOpenDay(ctx)
	if err != nil {
		return orders.BusinessDayRef{}, err
	}
	return orders.BusinessDayRef{ID: day.ID}, nil
}

func (g dayGuard) CurrentOpenDay(ctx context.Context) (orders.BusinessDayRef, error) {
	day, err := g.svc.CurrentDay(ctx)
	if err != nil {
		return orders.BusinessDayRef{}, err
	}
	return orders.BusinessDayRef{ID: day.ID}, nil
}

func (g dayGuard) EnsureDayOpen(ctx context.Context, dayID int64) error {
	return g.svc.EnsureDayOpen(ctx, dayID)
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens := auth.NewTokenStore(redisClient, cfg.TokenSecret, cfg.TokenTTL)
	authMw := auth.Middleware{Tokens: tokens, Logger: logger}

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens)
	authHandler := auth.NewHandler(logger, authService, authMw)

	reportClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := reportClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	closeRepo := dailyclose.NewRepository(pool)
	closeService := dailyclose.NewService(closeRepo, logger)
	closeService.WithCache(dailyclose.NewStatusCache(redisClient, cfg.StatusCacheTTL))
	closeService.WithReports(reportClient)
	closeHandler := dailyclosehttp.NewHandler(logger, closeService, authMw.RequireAdmin)

	ordersRepo := orders.NewRepository(pool)
	ordersService := orders.NewService(ordersRepo, dayGuard{svc: closeService}, logger)
	ordersHandler := orders.NewHandler(logger, ordersService)

	shiftsRepo := shifts.NewRepository(pool)
	shiftsService := shifts.NewService(shiftsRepo, logger)
	shiftsHandler := shifts.NewHandler(logger, shiftsService)

	inventoryRepo := inventory.NewRepository(pool)
	inventoryService := inventory.NewService(inventoryRepo, logger)
	inventoryHandler := inventory.NewHandler(logger, inventoryService, authMw.RequireAdmin)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthMiddleware:    authMw,
		AuthHandler:       authHandler,
		OrdersHandler:     ordersHandler,
		ShiftsHandler:     shiftsHandler,
		InventoryHandler:  inventoryHandler,
		DailyCloseHandler: closeHandler,
		JobsHandler:       jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
