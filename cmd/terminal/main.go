package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/oliversimiyu/pos-system/internal/api"
	"github.com/oliversimiyu/pos-system/internal/cart"
	"github.com/oliversimiyu/pos-system/internal/catalog"
	"github.com/oliversimiyu/pos-system/internal/checkout"
	"github.com/oliversimiyu/pos-system/internal/config"
	h "github.com/oliversimiyu/pos-system/internal/http"
	"github.com/oliversimiyu/pos-system/internal/sale"
	"github.com/oliversimiyu/pos-system/internal/session"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if errDir := os.MkdirAll(cfg.DataDir, 0o755); errDir != nil {
		logger.Fatal("failed to create data dir", zap.Error(errDir))
	}

	sess, err := session.Open(filepath.Join(cfg.DataDir, "session.db"))
	if err != nil {
		logger.Fatal("failed to open session store", zap.Error(err))
	}
	defer sess.Close()

	outbox, err := sale.OpenOutbox(filepath.Join(cfg.DataDir, "outbox.db"))
	if err != nil {
		logger.Fatal("failed to open sale outbox", zap.Error(err))
	}
	defer outbox.Close()

	client, err := api.New(cfg.BackendBaseURL, sess, logger, nil)
	if err != nil {
		logger.Fatal("failed to build backend client", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	catalogSvc := catalog.NewService(client, catalog.NewRedisCache(redisClient), logger)
	sessionCart := cart.New()
	orchestrator := checkout.NewOrchestrator(catalogSvc, sessionCart, logger)
	finalizer := sale.NewFinalizer(client, outbox, catalogSvc, logger)

	handler := h.NewHandler(orchestrator, finalizer, client, cfg.PollInterval, cfg.PollTimeout, logger)

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()
	resubmitter := sale.NewResubmitter(outbox, client, cfg.OutboxTick, logger)
	go resubmitter.Run(bgCtx)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Route("/api/v1", handler.Routes)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: http.MaxBytesHandler(r, cfg.MaxRequestBodySize),
	}

	go func() {
		logger.Info("POS terminal starting", zap.String("port", cfg.HTTPPort))
		if errSrv := srv.ListenAndServe(); errSrv != nil && !errors.Is(errSrv, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(errSrv))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	bgCancel()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if errShut := srv.Shutdown(ctx); errShut != nil {
		logger.Fatal("server forced to shutdown", zap.Error(errShut))
	}

	logger.Info("server exited")
}
