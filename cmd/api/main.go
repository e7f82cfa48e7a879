// Sleep Analysis API
//
// REST API for deriving clinical sleep metrics from staged recordings.
//
//	@title			Sleep Analysis API
//	@version		1.0
//	@description	Derive sleep metric reports from per-epoch stage sequences, with LLM-generated insights.
//
//	@BasePath	/v1
//
//	@tag.name			users
//	@tag.description	User management endpoints
//
//	@tag.name			analyses
//	@tag.description	Staged-recording analysis endpoints
//
//	@tag.name			insights
//	@tag.description	LLM insight endpoints
package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/hypnolab/sleep-analysis/internal/api"
	"github.com/hypnolab/sleep-analysis/internal/api/handler"
	"github.com/hypnolab/sleep-analysis/internal/cache"
	"github.com/hypnolab/sleep-analysis/internal/config"
	"github.com/hypnolab/sleep-analysis/internal/domain"
	"github.com/hypnolab/sleep-analysis/internal/events"
	"github.com/hypnolab/sleep-analysis/internal/hypnogram"
	"github.com/hypnolab/sleep-analysis/internal/langfuse"
	"github.com/hypnolab/sleep-analysis/internal/llm"
	"github.com/hypnolab/sleep-analysis/internal/logging"
	"github.com/hypnolab/sleep-analysis/internal/repository"
	"github.com/hypnolab/sleep-analysis/internal/seed"
	"github.com/hypnolab/sleep-analysis/internal/service"
	"github.com/hypnolab/sleep-analysis/internal/telemetry"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg := config.Load()

	// Initialize structured logger
	logger, err := logging.New(cfg.LogLevel, "sleep-analysis-api")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize OTEL tracing (no-op when Langfuse is not configured)
	shutdownTracer, err := telemetry.InitTracer(ctx, cfg, "sleep-analysis-api")
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer shutdownTracer(ctx)

	// Connect to database
	db, err := config.NewDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Auto-migrate database schema
	if err := db.AutoMigrate(&domain.User{}, &domain.Analysis{}); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Database migration completed")

	engineCfg := hypnogram.DefaultConfig()
	engineCfg.EpochDuration = cfg.EpochDuration

	if cfg.Seed {
		logger.Info("Seeding database with sample data (SEED=true)")
		if err := seed.Run(db, engineCfg); err != nil {
			logger.Fatal("Failed to seed database", zap.Error(err))
		}
	}

	// Redis backs the insight cache and the analysis event stream.
	// Both degrade to no-ops when REDIS_ADDR is unset.
	insightCache := cache.NewNopInsightCache()
	publisher := events.NewNopPublisher()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unreachable, cache and events disabled", zap.Error(err))
		} else {
			insightCache = cache.NewRedisInsightCache(redisClient, cfg.InsightCacheTTL)
			publisher = events.NewStreamPublisher(redisClient, cfg.EventStream, logger)
			logger.Info("Redis connected", zap.String("addr", cfg.RedisAddr))
		}
	}

	// Initialize Langfuse client for traces, scores and prompt management
	langfuseClient := langfuse.NewClient(langfuse.Config{
		BaseURL:     cfg.LangfuseBaseURL,
		PublicKey:   cfg.LangfusePublicKey,
		SecretKey:   cfg.LangfuseSecretKey,
		Environment: cfg.LangfuseEnv,
	})

	// Load the insight system prompt (Langfuse-managed with local fallback)
	systemPrompt, err := langfuse.LoadPrompt(ctx, langfuse.PromptLoaderConfig{
		BaseURL:     cfg.LangfuseBaseURL,
		PublicKey:   cfg.LangfusePublicKey,
		SecretKey:   cfg.LangfuseSecretKey,
		PromptName:  cfg.LangfusePromptName,
		PromptLabel: cfg.LangfusePromptLabel,
		SavePath:    cfg.PromptSavePath,
	})
	if err != nil {
		logger.Warn("Failed to load insight prompt, using built-in default", zap.Error(err))
	}

	// Initialize OpenAI client (may be nil if not configured)
	openaiClient := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIInsightModel, systemPrompt)
	if openaiClient == nil {
		logger.Warn("OpenAI API key not configured, insight endpoint will be unavailable")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)

	// Initialize services
	userService := service.NewUserService(userRepo)
	analysisService := service.NewAnalysisService(analysisRepo, userRepo, engineCfg, publisher, logger)
	insightService := service.NewInsightService(analysisRepo, userRepo, openaiClient, insightCache, langfuseClient, logger)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService)
	analysisHandler := handler.NewAnalysisHandler(analysisService)
	insightHandler := handler.NewInsightHandler(insightService, langfuseClient)

	// Setup router
	router := api.NewRouter(userHandler, analysisHandler, insightHandler, logger)
	routerHandler := router.Setup()

	// Start server
	addr := ":" + cfg.Port
	logger.Info("Starting server", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, routerHandler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
