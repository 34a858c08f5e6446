package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caden/captionator/internal/api"
	"github.com/caden/captionator/internal/config"
	"github.com/caden/captionator/internal/logger"
	"github.com/caden/captionator/internal/prompts"
	"github.com/caden/captionator/internal/repository"
	"github.com/caden/captionator/internal/service"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	log := logger.NewDefault()
	logger.SetDefaultLogger(log)
	defer logger.Sync()

	ctx := context.Background()

	if !cfg.OpenAI.Configured() {
		logger.CtxWarn(ctx, "OPENAI_API_KEY is not set; generation endpoints will return configuration errors")
	}

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		logger.CtxError(ctx, "Failed to initialize database: %v", err)
		os.Exit(1)
	}

	// Initialize repositories
	locationRepo := repository.NewLocationRepository(db)
	captionRepo := repository.NewCaptionRepository(db)

	// Initialize services
	llm := service.NewLLMClient(&cfg.OpenAI)
	parser := service.NewAddressParser(llm, cfg.OpenAI.Model)
	researchService := service.NewResearchService(llm, parser, &cfg.OpenAI)
	mediaService := service.NewMediaService(llm, &cfg.OpenAI)
	captionService := service.NewCaptionService(llm, prompts.DefaultBrandVoice(), &cfg.OpenAI)
	scorerService := service.NewScorerService(llm, &cfg.OpenAI)

	pipeline := service.NewPipelineService(
		llm,
		locationRepo,
		researchService,
		mediaService,
		captionService,
		scorerService,
	)

	// Setup router
	router := api.SetupRouter(cfg, log,
		api.Services{Pipeline: pipeline, Captions: captionService},
		api.Repos{Locations: locationRepo, Captions: captionRepo},
		cfg.OpenAI.Configured(),
	)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.CtxInfo(ctx, "Starting API server: port=%d, mode=%s", cfg.Server.Port, cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.CtxError(ctx, "Failed to start server: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.CtxInfo(ctx, "Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.CtxError(ctx, "Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	logger.CtxInfo(ctx, "Server exited")
}
