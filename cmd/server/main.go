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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"selfcc/care-app/internal/adaptation"
	"selfcc/care-app/internal/api"
	"selfcc/care-app/internal/catalog"
	"selfcc/care-app/internal/config"
	"selfcc/care-app/internal/logging"
	"selfcc/care-app/internal/repository"
	"selfcc/care-app/internal/repository/memory"
	"selfcc/care-app/internal/repository/mongo"
	"selfcc/care-app/internal/service"
	"selfcc/care-app/internal/storage"
)

// @title Care Plan API
// @version 1.0
// @description Guided rehabilitation sessions with AI-adapted weekly plans.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
	logger.Info("Server exiting.")
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx := context.Background()
	logger.Info("Starting care plan server", zap.String("address", cfg.Server.Address), zap.String("db_driver", cfg.Database.Driver))

	// --- Repositories ---
	var (
		userRepo repository.UserRepository
		planRepo repository.CarePlanRepository
	)
	switch cfg.Database.Driver {
	case "mongo":
		dbClient, err := mongo.ConnectDB(ctx, cfg.Database.URI)
		if err != nil {
			return fmt.Errorf("could not connect to MongoDB: %w", err)
		}
		defer func() {
			logger.Info("Disconnecting MongoDB...")
			if err := mongo.DisconnectDB(dbClient); err != nil {
				logger.Error("Failed to disconnect MongoDB", zap.Error(err))
			}
		}()
		appDB := dbClient.Database(cfg.Database.Name)

		// Run index creation in background
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
				logger.Error("Index creation failed", zap.Error(err))
				return
			}
			logger.Info("Index creation process completed.")
		}()

		userRepo = mongo.NewMongoUserRepository(appDB)
		planRepo = mongo.NewMongoCarePlanRepository(appDB)
	default:
		logger.Warn("Using in-memory storage; data is lost on restart")
		userRepo = memory.NewUserRepository()
		planRepo = memory.NewCarePlanRepository()
	}

	// --- Storage ---
	media, err := storage.NewS3Storage(ctx, cfg.S3, logger)
	if errors.Is(err, storage.ErrStorageDisabled) {
		logger.Info("Object storage not configured; demo video links disabled")
		media = nil
	} else if err != nil {
		return fmt.Errorf("failed to initialize S3 storage: %w", err)
	}

	// --- Plan adaptation ---
	generator, err := adaptation.NewGenerator(ctx, adaptation.GeneratorConfig{
		APIKey:  cfg.GenAI.APIKey,
		Model:   cfg.GenAI.Model,
		BaseURL: cfg.GenAI.BaseURL,
		Timeout: cfg.GenAI.Timeout,
	})
	if err != nil {
		return err
	}
	if gemini, ok := generator.(*adaptation.GeminiGenerator); ok {
		logger.Info("Plan adaptation uses Gemini", zap.String("model", gemini.Model()))
	} else {
		logger.Warn("No GenAI API key configured; every adaptation will use the safety fallback")
	}
	requester := adaptation.NewRequester(generator, logger.Named("adaptation"))

	cat, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("loading seed catalog: %w", err)
	}

	// --- Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	careService := service.NewCareService(planRepo, userRepo, cat, requester, service.CareOptions{
		Media:          media,
		OverlayDismiss: cfg.App.OverlayDismiss,
		Logger:         logger.Named("care"),
	})
	defer careService.Close()

	// --- Gin Engine ---
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(logger.Named("http")))
	api.SetupRoutes(router, authService, careService)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("listen and serve: %w", err)
	case <-quit:
	}
	logger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
