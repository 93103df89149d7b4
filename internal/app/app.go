// Package app wires the Sharerapy components from configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	nethttp "net/http"

	"github.com/prometheus/client_golang/prometheus"

	"sharerapy/internal/config"
	"sharerapy/internal/http"
	"sharerapy/internal/importer"
	"sharerapy/internal/indexer"
	"sharerapy/internal/llm"
	"sharerapy/internal/metrics"
	"sharerapy/internal/rag"
	"sharerapy/internal/service"
	"sharerapy/internal/storage"
	"sharerapy/internal/vectorstore"
)

// App holds the wired components of one process.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	DB          *sql.DB
	Reports     *storage.ReportRepo
	Directory   *storage.DirectoryRepo
	Chunks      *storage.ChunkRepo
	VectorStore *vectorstore.QdrantStore

	Chat       *llm.Client
	Expansion  *llm.Client
	Embeddings *llm.EmbeddingsClient

	Metrics       *metrics.Metrics
	Engine        rag.Engine
	Indexer       *indexer.Pipeline
	ReportService service.ReportService
	Importer      *importer.Importer
}

// New opens the database, connects to Qdrant and builds the pipeline.
// Metrics are registered on reg; a nil reg disables them.
// The caller must Close the returned App.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.DB = db

	if err := storage.Migrate(db); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.InfoContext(ctx, "database initialized", "path", cfg.DBPath)

	a.Reports = storage.NewReportRepo(db)
	a.Directory = storage.NewDirectoryRepo(db)
	a.Chunks = storage.NewChunkRepo(db)

	a.VectorStore, err = vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	a.Chat = llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName, cfg.LLMTemperature)
	a.Expansion = llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMExpansionModel, cfg.LLMTemperature)
	a.Embeddings = llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)

	if reg != nil {
		a.Metrics = metrics.New(reg)
	}

	a.Engine = rag.NewEngine(
		a.Expansion,
		a.Chat,
		a.Embeddings,
		rag.NewVectorRetriever(a.VectorStore, cfg.QdrantCollection),
		a.Reports,
		rag.Options{
			MatchThreshold:     cfg.MatchThreshold,
			MatchCount:         cfg.MatchCount,
			ExpansionHistory:   cfg.ExpansionHistoryTurns,
			AnswerHistory:      cfg.AnswerHistoryTurns,
			HydrateConcurrency: cfg.HydrateConcurrency,
			GenerationTimeout:  cfg.GenerationTimeout,
		},
		a.Metrics,
	)

	a.Indexer = indexer.NewPipeline(a.Reports, a.Chunks, a.Embeddings, a.VectorStore, cfg.QdrantCollection, a.Metrics)
	a.ReportService = service.NewReportService(a.Reports, a.Indexer)
	a.Importer = importer.New(a.ReportService)

	logger.InfoContext(ctx, "answer engine initialized",
		"model", cfg.LLMModelName,
		"expansion_model", cfg.LLMExpansionModel,
		"embedding_model", cfg.EmbeddingModelName,
		"match_threshold", cfg.MatchThreshold,
		"match_count", cfg.MatchCount,
	)
	return a, nil
}

// EnsureCollection creates the Qdrant collection when it is missing.
func (a *App) EnsureCollection(ctx context.Context) error {
	if err := a.VectorStore.EnsureCollection(ctx, a.Config.QdrantCollection, a.Config.QdrantVectorSize); err != nil {
		return fmt.Errorf("failed to ensure Qdrant collection: %w", err)
	}
	a.Logger.InfoContext(ctx, "qdrant collection ready",
		"collection", a.Config.QdrantCollection,
		"vector_size", a.Config.QdrantVectorSize,
	)
	return nil
}

// CheckModels warns about configured models the provider does not list.
// Providers without a /models endpoint only produce a debug log.
func (a *App) CheckModels(ctx context.Context) {
	missing, err := a.Chat.MissingModels(ctx, a.Config.LLMModelName, a.Config.LLMExpansionModel)
	if err != nil {
		a.Logger.DebugContext(ctx, "could not list provider models", "error", err)
		return
	}
	for _, m := range missing {
		a.Logger.WarnContext(ctx, "configured model not listed by provider", "model", m)
	}
}

// Handler builds the HTTP router. A nil gatherer serves the default registry.
func (a *App) Handler(gatherer prometheus.Gatherer) nethttp.Handler {
	return http.NewRouter(&http.Deps{
		Engine:         a.Engine,
		Reports:        a.ReportService,
		Reindexer:      a.Indexer,
		DB:             a.DB,
		VectorStore:    a.VectorStore,
		CollectionName: a.Config.QdrantCollection,
		Gatherer:       gatherer,
		AIRateLimit:    a.Config.AIRateLimit,
		AIRateBurst:    a.Config.AIRateBurst,
	})
}

// Close releases the Qdrant connection and the database.
func (a *App) Close() error {
	var errs []error
	if a.VectorStore != nil {
		if err := a.VectorStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close qdrant: %w", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
