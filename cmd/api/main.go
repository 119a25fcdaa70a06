package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/plateful/backend/config"
	"github.com/plateful/backend/internal/api"
	"github.com/plateful/backend/internal/database"
	"github.com/plateful/backend/internal/logger"
	"github.com/plateful/backend/internal/notify"
	"github.com/plateful/backend/internal/server"
	"github.com/plateful/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := database.New(cfg)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	gormDB, err := database.NewGorm(cfg)
	if err != nil {
		zlog.Fatal("failed to open orm connection", zap.Error(err))
	}
	if err := database.RunMigrations(gormDB); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		zlog.Fatal("failed to connect to redis", zap.Error(err))
	}

	llmService, err := service.NewLLMService(cfg)
	if err != nil {
		zlog.Fatal("failed to configure meal suggestions", zap.Error(err))
	}

	s3Config, err := config.NewS3Config(context.Background(), cfg)
	if err != nil {
		zlog.Fatal("failed to configure avatar storage", zap.Error(err))
	}
	// Avatar URLs are served straight from the bucket, so it must allow
	// public reads. Applying the policy is idempotent.
	if err := s3Config.SetupBucketPolicy(context.Background()); err != nil {
		zlog.Warn("failed to apply avatar bucket policy", zap.Error(err))
	}

	authService := service.NewAuthService(gormDB, cfg.JWTSecret, cfg.DefaultTimezone)
	profileService := service.NewProfileService(gormDB)
	preferenceService := service.NewPreferenceService(gormDB)
	emailService := service.NewEmailService(cfg)
	suggestionService := service.NewSuggestionService(
		gormDB, llmService, service.NewEmbeddingService(), profileService, redisClient)

	svcs := api.Services{
		Auth:        authService,
		Profiles:    profileService,
		Preferences: preferenceService,
		Suggestions: suggestionService,
		Storage:     service.NewStorageService(s3Config),
		Email:       emailService,
	}

	srv := server.New(cfg, db, svcs, redisClient, zlog)

	var scheduler *notify.Scheduler
	if cfg.SchedulerEnabled {
		if cfg.VAPIDPublicKey == "" {
			zlog.Warn("VAPID keys not configured, push delivery will fail until they are set")
		}
		notifyService := notify.NewService(cfg,
			preferenceService,
			authService,
			notify.NewWebPushSender(cfg),
			emailService,
			notify.NewRedisDeduper(redisClient, cfg.DedupTTL),
			zlog)
		scheduler = notify.NewScheduler(notifyService, cfg.TickInterval, zlog)
		scheduler.Start(context.Background())
	} else {
		zlog.Info("reminder scheduler disabled")
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			zlog.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		zlog.Info("shutting down", zap.String("signal", sig.String()))
	}

	// Stop producing new deliveries before draining HTTP.
	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("server shutdown error", zap.Error(err))
	}
	zlog.Info("server stopped")
}
