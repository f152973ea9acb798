package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daraja-gateway/internal/application/services"
	"daraja-gateway/internal/config"
	"daraja-gateway/internal/infrastructure/daraja"
	"daraja-gateway/internal/infrastructure/dedupe"
	"daraja-gateway/internal/infrastructure/persistence"
	"daraja-gateway/internal/infrastructure/persistence/postgres"
	"daraja-gateway/internal/interfaces/rest/handlers"
	"daraja-gateway/internal/interfaces/rest/middleware"
	"daraja-gateway/internal/worker"

	"github.com/go-chi/chi/v5"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting gateway service",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	db, err := persistence.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	sessionRepo := postgres.NewSessionRepository(db.Pool)

	deduper := dedupe.NewRedisStore(cfg.Redis)
	defer deduper.Close()
	if err := deduper.Ping(ctx); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	tokenManager := daraja.NewTokenManager(
		daraja.NewHTTPTokenExchanger(cfg.Daraja),
		cfg.Daraja.TokenSafetyMargin,
		daraja.TokenRetryPolicy(cfg.TokenRetry.MaxAttempts, cfg.TokenRetry.Delay),
	)

	var darajaClient daraja.Client = daraja.NewHTTPClient(cfg.Daraja, tokenManager)
	darajaClient = daraja.NewBreakerClient(darajaClient)
	darajaClient = daraja.NewRetryClient(
		darajaClient,
		daraja.SubmitRetryPolicy(cfg.SubmitRetry.MaxAttempts, cfg.SubmitRetry.Delay),
	)

	initiateService := services.NewInitiateService(sessionRepo, darajaClient, cfg.Daraja, logger)
	callbackService := services.NewCallbackService(sessionRepo, deduper, logger)
	queryService := services.NewQueryService(sessionRepo)

	h := handlers.NewHandlers(
		initiateService,
		callbackService,
		queryService,
		tokenManager,
		logger,
	)

	router := chi.NewRouter()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logging(logger))
	router.Use(middleware.Timeout(cfg.Server.ReadTimeout))
	h.Routes(router)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	expirationWorker := worker.NewExpirationWorker(sessionRepo, cfg.Worker, logger)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go expirationWorker.Start(workerCtx)

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
