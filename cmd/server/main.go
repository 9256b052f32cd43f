package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"ourcodingkiddos/backend/config"
	"ourcodingkiddos/backend/internal/api/handler"
	"ourcodingkiddos/backend/internal/api/router"
	"ourcodingkiddos/backend/internal/jobs"
	"ourcodingkiddos/backend/internal/repository"
	"ourcodingkiddos/backend/internal/service"
	"ourcodingkiddos/backend/pkg/certimage"
	"ourcodingkiddos/backend/pkg/database"
	"ourcodingkiddos/backend/pkg/jwt"
	applogger "ourcodingkiddos/backend/pkg/logger"
	"ourcodingkiddos/backend/pkg/mailer"
	"ourcodingkiddos/backend/pkg/payment"
	"ourcodingkiddos/backend/pkg/redis"
	"ourcodingkiddos/backend/pkg/storage"
	"ourcodingkiddos/backend/pkg/telemetry"
)

func main() {
	// 1. configuration (.env is optional and only fills unset variables)
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("OCK_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logging
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("environment", cfg.Log.Environment),
		zap.String("log_level", cfg.Log.Level),
	)

	ctx := context.Background()

	// 3. tracing
	shutdownTracing, err := telemetry.Init(ctx, &cfg.Telemetry, cfg.Log.Environment, logger)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	}

	// 4. database + migrations
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	// 5. Redis is optional: without it token revocation and the leaderboard cache are off
	// and rate limits are per process
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, continuing without it", zap.Error(err))
		rdb = nil
	}

	// 6. external clients
	store, err := storage.New(ctx, &cfg.Storage, logger)
	if err != nil {
		logger.Warn("upload storage unavailable", zap.Error(err))
		store = nil
	}
	renderer, err := certimage.NewRenderer()
	if err != nil {
		logger.Warn("certificate renderer unavailable", zap.Error(err))
		renderer = nil
	}
	infra := service.Infra{
		Mailer:   mailer.New(&cfg.Mail, logger),
		Storage:  store,
		Payments: payment.NewStripe(&cfg.Stripe),
		Renderer: renderer,
	}
	if rdb != nil {
		infra.Tokens = rdb
		infra.Cache = rdb
	}

	// 7. wiring: repository -> service -> handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, infra, logger)
	h := handler.NewHandler(svc, cfg)

	engine := router.Setup(cfg, h, jwtMgr, rdb, db, logger)

	// 8. background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler, err = jobs.New(&cfg.Jobs, svc.Gamification, svc.Payment, logger)
		if err != nil {
			logger.Fatal("configure jobs", zap.Error(err))
		}
		scheduler.Start()
	}

	// 9. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("flush traces", zap.Error(err))
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("close database", zap.Error(err))
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("stopped")
}
