package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/avkap007/pdf-query-bot/config"
	"github.com/avkap007/pdf-query-bot/embedding"
	"github.com/avkap007/pdf-query-bot/handlers"
	"github.com/avkap007/pdf-query-bot/llm"
	"github.com/avkap007/pdf-query-bot/loader"
	"github.com/avkap007/pdf-query-bot/logging"
	"github.com/avkap007/pdf-query-bot/repository"
	"github.com/avkap007/pdf-query-bot/service"
	"github.com/avkap007/pdf-query-bot/storage"
	"github.com/avkap007/pdf-query-bot/vectorstore"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Load .env file from project root (relative to cmd/server/)
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Metadata store, persisted by the offline index build.
	metadata, err := repository.LoadMetadataStore(cfg.Index.MetadataPath)
	if err != nil {
		logger.Fatalw("failed to load metadata store (run cmd/build-index first)", "error", err)
	}
	logger.Infow("metadata store loaded", "documents", metadata.Len())

	embedder, err := initEmbedder(cfg)
	if err != nil {
		logger.Fatalw("failed to initialize embedder", "error", err)
	}

	store, err := initVectorStore(ctx, cfg, embedder, logger)
	if err != nil {
		logger.Fatalw("failed to open vector index", "error", err)
	}

	completer, err := llm.NewGeminiClient(ctx, os.Getenv("GEMINI_API_KEY"),
		cfg.Gemini.GenerationModel, time.Duration(cfg.Retrieval.AnswerTimeoutSecs)*time.Second)
	if err != nil {
		logger.Fatalw("failed to initialize Gemini client", "error", err)
	}
	defer completer.Close()

	corpus, err := storage.NewStorage(storage.StorageConfig{
		Type:         storage.StorageType(cfg.Storage.Type),
		LocalPath:    cfg.Storage.LocalPath,
		S3Bucket:     cfg.Storage.S3Bucket,
		S3Region:     cfg.Storage.S3Region,
		S3Prefix:     cfg.Storage.S3Prefix,
		AWSAccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	})
	if err != nil {
		logger.Fatalw("failed to initialize corpus storage", "error", err)
	}

	queryService := service.NewQueryService(
		service.QueryWithMetadataStore(metadata),
		service.QueryWithVectorStore(store),
		service.QueryWithCompleter(completer),
		service.QueryWithCorpus(corpus, loader.NewPDFLoader()),
		service.QueryWithLogger(logger),
		service.QueryWithRetrieval(cfg.Retrieval.TopK,
			time.Duration(cfg.Retrieval.SearchTimeoutSecs)*time.Second,
			time.Duration(cfg.Retrieval.AnswerTimeoutSecs)*time.Second),
		service.QueryWithGeneration(cfg.Gemini.MaxTokens, cfg.Gemini.Temperature),
		service.QueryWithFollowupLimit(cfg.Retrieval.FollowupMaxContext),
	)

	queryHandler := handlers.NewQueryHandler(queryService)
	documentHandler := handlers.NewDocumentHandler(metadata)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/query", queryHandler.Query)
		api.GET("/documents", documentHandler.List)
		api.GET("/documents/:ref", documentHandler.Get)
		api.POST("/documents/:ref/followup", queryHandler.Followup)
	}

	logger.Infow("server starting", "port", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatalw("server exited", "error", err)
	}
}

// initEmbedder builds the Gemini embedding client from config and env.
func initEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	return embedding.NewGeminiEmbedder(
		os.Getenv("GEMINI_API_KEY"),
		cfg.Gemini.EmbeddingModel,
		cfg.Index.Dimensions,
		time.Duration(cfg.Retrieval.SearchTimeoutSecs)*time.Second,
	)
}

// initVectorStore opens the configured vector-index backend.
func initVectorStore(ctx context.Context, cfg *config.Config, embedder embedding.Embedder, logger *zap.SugaredLogger) (vectorstore.Store, error) {
	if cfg.Index.Backend == "postgres" {
		return vectorstore.NewPostgresStore(ctx, os.Getenv("DATABASE_URL"), embedder, cfg.Index.Dimensions, logger)
	}
	return vectorstore.NewChromemStore(cfg.Index.VectorPath, cfg.Index.Collection, embedder, logger)
}
