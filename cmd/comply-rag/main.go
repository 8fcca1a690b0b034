package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"comply-rag/internal/api"
	"comply-rag/internal/api/handlers"
	"comply-rag/internal/repository"
	"comply-rag/internal/service"
	"comply-rag/pkg/auth"
	"comply-rag/pkg/config"
	"comply-rag/pkg/logger"
	"comply-rag/pkg/postgres"

	"go.uber.org/zap"
)

// @title Comply RAG API
// @version 1.0
// @description Retrieval-augmented applicability answers for compliance questionnaires.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting comply-rag service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := repository.Migrate(ctx, db, cfg.Embedding.Dimensions, appLogger); err != nil {
		appLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Initialize repositories
	orgRepo := repository.NewOrganizationRepository(db, appLogger)
	configRepo := repository.NewConfigurationRepository(db, appLogger)
	questionRepo := repository.NewQuestionRepository(db, appLogger)
	docRepo := repository.NewDocumentRepository(db, appLogger)
	answerRepo := repository.NewAnswerRepository(db, appLogger)
	knowledgeRepo := repository.NewKnowledgeRepository(db, appLogger)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey)

	// Initialize services
	llmService, err := service.NewLLMService(&cfg.GigaChat, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	embedder := service.NewOllamaEmbedder(&cfg.Embedding)
	embeddingService := service.NewEmbeddingService(knowledgeRepo, embedder, appLogger)
	ragService := service.NewRAGService(knowledgeRepo, embedder, service.NewTiktokenCounter(appLogger), &cfg.RAG, appLogger)
	classifier := service.NewClassifierService(llmService, appLogger)
	answerStore := service.NewAnswerStore(answerRepo, questionRepo, docRepo, appLogger)

	autoAnswerService := service.NewAutoAnswerService(
		docRepo,
		configRepo,
		orgRepo,
		questionRepo,
		embeddingService,
		ragService,
		ragService,
		classifier,
		service.NewRemoteOverride(&cfg.Answer),
		answerStore,
		&cfg.Answer,
		appLogger,
	)
	docService := service.NewDocumentService(docRepo, answerRepo, appLogger)

	// Initialize handlers
	answerHandler := handlers.NewAnswerHandler(autoAnswerService, appLogger)
	docHandler := handlers.NewDocumentHandler(docService, appLogger)

	// Setup router
	app := api.SetupRouter(answerHandler, docHandler, jwtManager, &cfg.Server, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
