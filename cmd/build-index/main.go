// Command build-index runs the offline batch pass over the PDF corpus:
// field extraction into metadata.json, then chunking and embedding into the
// vector index. Both stores are rebuilt from scratch on every run.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/avkap007/pdf-query-bot/config"
	"github.com/avkap007/pdf-query-bot/embedding"
	"github.com/avkap007/pdf-query-bot/llm"
	"github.com/avkap007/pdf-query-bot/loader"
	"github.com/avkap007/pdf-query-bot/logging"
	"github.com/avkap007/pdf-query-bot/service"
	"github.com/avkap007/pdf-query-bot/storage"
	"github.com/avkap007/pdf-query-bot/vectorstore"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	summaries := flag.Bool("summaries", false, "generate per-document summaries with the LLM")
	flag.Parse()

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

	embedder, err := embedding.NewGeminiEmbedder(
		os.Getenv("GEMINI_API_KEY"),
		cfg.Gemini.EmbeddingModel,
		cfg.Index.Dimensions,
		time.Duration(cfg.Retrieval.SearchTimeoutSecs)*time.Second,
	)
	if err != nil {
		logger.Fatalw("failed to initialize embedder", "error", err)
	}

	store, err := initVectorStore(ctx, cfg, embedder, logger)
	if err != nil {
		logger.Fatalw("failed to open vector index", "error", err)
	}

	opts := []service.IndexServiceOption{
		service.IndexWithStorage(corpus),
		service.IndexWithLoader(loader.NewPDFLoader()),
		service.IndexWithVectorStore(store),
		service.IndexWithLogger(logger),
		service.IndexWithChunking(cfg.Index.ChunkSize, cfg.Index.ChunkOverlap),
	}

	if *summaries {
		completer, err := llm.NewGeminiClient(ctx, os.Getenv("GEMINI_API_KEY"),
			cfg.Gemini.GenerationModel, time.Duration(cfg.Retrieval.AnswerTimeoutSecs)*time.Second)
		if err != nil {
			logger.Fatalw("failed to initialize Gemini client", "error", err)
		}
		defer completer.Close()
		opts = append(opts,
			service.IndexWithCompleter(completer),
			service.IndexWithSummaries(cfg.Gemini.MaxTokens, cfg.Gemini.Temperature),
		)
	}

	indexService := service.NewIndexService(opts...)

	metadata, err := indexService.Run(ctx)
	if err != nil {
		logger.Fatalw("index build failed", "error", err)
	}

	if err := metadata.Save(cfg.Index.MetadataPath); err != nil {
		logger.Fatalw("failed to save metadata store", "error", err)
	}

	logger.Infow("metadata saved", "path", cfg.Index.MetadataPath, "documents", metadata.Len())
}

// initVectorStore opens the configured vector-index backend.
func initVectorStore(ctx context.Context, cfg *config.Config, embedder embedding.Embedder, logger *zap.SugaredLogger) (vectorstore.Store, error) {
	if cfg.Index.Backend == "postgres" {
		return vectorstore.NewPostgresStore(ctx, os.Getenv("DATABASE_URL"), embedder, cfg.Index.Dimensions, logger)
	}
	return vectorstore.NewChromemStore(cfg.Index.VectorPath, cfg.Index.Collection, embedder, logger)
}
