package main

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"comply-rag/internal/repository"
	"comply-rag/internal/service"
	"comply-rag/pkg/auth"
	"comply-rag/pkg/config"
	"comply-rag/pkg/logger"
	"comply-rag/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	seedPath := flag.String("file", filepath.Join("cmd", "seed", "seed.yaml"), "seed file (YAML)")
	force := flag.Bool("force", false, "import even if the file was imported before")
	tokenUser := flag.String("token-user", "", "print a bearer token for this user id in the seeded organization")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	data, err := os.ReadFile(*seedPath)
	if err != nil {
		appLogger.Fatal("Failed to read seed file", zap.String("path", *seedPath), zap.Error(err))
	}
	seed, err := parseSeed(data)
	if err != nil {
		appLogger.Fatal("Invalid seed file", zap.String("path", *seedPath), zap.Error(err))
	}
	records, err := seed.records(time.Now())
	if err != nil {
		appLogger.Fatal("Invalid seed file", zap.String("path", *seedPath), zap.Error(err))
	}

	if *tokenUser != "" {
		token, err := auth.NewJWTManager(cfg.JWT.SecretKey).GenerateToken(*tokenUser, records.organization.ID.String(), 24*time.Hour)
		if err != nil {
			appLogger.Fatal("Failed to generate token", zap.Error(err))
		}
		fmt.Println(token)
	}

	cacheFile := filepath.Join(filepath.Dir(*seedPath), ".seed_cache.json")
	cache, err := loadCache(cacheFile)
	if err != nil {
		appLogger.Warn("Failed to load cache, importing anyway", zap.Error(err))
		cache = &CacheData{ProcessedFiles: make(map[string]ProcessedFile)}
	}
	fileHash := fmt.Sprintf("%x", md5.Sum(data))
	if cached, ok := cache.ProcessedFiles[*seedPath]; ok && cached.FileHash == fileHash && !*force {
		appLogger.Info("Seed file already imported, skipping",
			zap.String("path", *seedPath),
			zap.Time("processed_at", cached.ProcessedAt),
		)
		return
	}

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := repository.Migrate(ctx, db, cfg.Embedding.Dimensions, appLogger); err != nil {
		appLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	appLogger.Info("Starting database seeding...")

	if err := importRecords(ctx, db, records, appLogger); err != nil {
		appLogger.Fatal("Failed to import seed file", zap.Error(err))
	}

	knowledgeRepo := repository.NewKnowledgeRepository(db, appLogger)
	embeddingService := service.NewEmbeddingService(knowledgeRepo, service.NewOllamaEmbedder(&cfg.Embedding), appLogger)
	if err := embeddingService.Sync(ctx, records.organization.ID); err != nil {
		appLogger.Warn("Embedding sync incomplete, the next auto-answer run will retry", zap.Error(err))
	}

	cache.ProcessedFiles[*seedPath] = ProcessedFile{
		FilePath:    *seedPath,
		FileHash:    fileHash,
		ProcessedAt: time.Now(),
	}
	if err := saveCache(cacheFile, cache); err != nil {
		appLogger.Warn("Failed to save cache", zap.Error(err))
	}

	appLogger.Info("Database seeding completed successfully!",
		zap.String("organization_id", records.organization.ID.String()),
		zap.String("document_id", records.document.ID.String()),
		zap.Int("questions", len(records.questions)),
		zap.Int("chunks", len(records.chunks)),
	)
}

// ProcessedFile represents an imported seed file in cache
type ProcessedFile struct {
	FilePath    string    `json:"file_path"`
	FileHash    string    `json:"file_hash"`
	ProcessedAt time.Time `json:"processed_at"`
}

// CacheData stores information about imported files
type CacheData struct {
	ProcessedFiles map[string]ProcessedFile `json:"processed_files"` // key: file path
}

func loadCache(cacheFile string) (*CacheData, error) {
	cache := &CacheData{
		ProcessedFiles: make(map[string]ProcessedFile),
	}

	f, err := os.Open(cacheFile)
	if os.IsNotExist(err) {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	if len(data) == 0 {
		return cache, nil
	}

	if err := json.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("failed to parse cache file: %w", err)
	}
	return cache, nil
}

func saveCache(cacheFile string, cache *CacheData) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := os.WriteFile(cacheFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}
