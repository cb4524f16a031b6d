package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/hybridq/internal/adapters/driven/ai"
	"github.com/custodia-labs/hybridq/internal/adapters/driven/config/file"
	"github.com/custodia-labs/hybridq/internal/adapters/driven/database/sqldb"
	"github.com/custodia-labs/hybridq/internal/adapters/driven/database/sqlschema"
	"github.com/custodia-labs/hybridq/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/hybridq/internal/adapters/driven/storage/sqlite"
	vectormemory "github.com/custodia-labs/hybridq/internal/adapters/driven/vectorindex/memory"
	"github.com/custodia-labs/hybridq/internal/adapters/driving/cli"
	"github.com/custodia-labs/hybridq/internal/chunker"
	"github.com/custodia-labs/hybridq/internal/core/domain"
	"github.com/custodia-labs/hybridq/internal/core/ports/driven"
	"github.com/custodia-labs/hybridq/internal/core/services"
	"github.com/custodia-labs/hybridq/internal/extractors"
	"github.com/custodia-labs/hybridq/internal/extractors/csv"
	"github.com/custodia-labs/hybridq/internal/extractors/docx"
	"github.com/custodia-labs/hybridq/internal/extractors/pdf"
	"github.com/custodia-labs/hybridq/internal/extractors/plaintext"
	"github.com/custodia-labs/hybridq/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configPath := os.Getenv(services.EnvKey("config"))
	if configPath == "" {
		var err error
		if configPath, err = file.DefaultPath(); err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
	}
	configStore, err := file.NewConfigStore(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	// Text extraction and chunking
	registry := extractors.NewRegistry(settings.Ingestion.ExtractionTimeout)
	registry.Register(plaintext.New())
	registry.Register(csv.New())
	registry.Register(pdf.New())
	registry.Register(docx.New())

	chunks := chunker.New(chunker.WithMaxSize(settings.Chunker.MaxSize))
	logger.Debug("Chunker: %d-character chunks", chunks.MaxSize())

	// Retrieval index
	embedder, err := ai.CreateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		logger.Warn("Embedding service unavailable: %v", err)
	}
	if embedder != nil {
		defer embedder.Close()
	}
	index := services.NewRetrievalIndex(ctx, embedder, vectormemory.NewBuilder())

	// Ingestion
	ingestion := services.NewIngestionService(
		ctx,
		services.NewJobTracker(),
		registry,
		chunks,
		index,
		settings.Ingestion.Workers,
	)
	defer ingestion.Close()

	// Structured source
	schema := services.NewSchemaManager(
		sqldb.NewConnector(settings.Database.MaxOpenConns, settings.Database.ConnMaxIdleTime),
		sqlschema.NewProvider(),
	)
	defer schema.Close()

	if settings.Database.DSN != "" {
		if _, err := schema.Connect(ctx, settings.Database.DSN); err != nil {
			logger.Warn("Could not connect configured database: %v", err)
		}
	}

	history, closeHistory, err := openHistory(settings.History)
	if err != nil {
		return err
	}
	defer closeHistory()

	orchestrator := services.NewQueryOrchestrator(
		services.NewClassifier(),
		services.NewStructuredRetriever(settings.Database.QueryTimeout),
		schema,
		index,
		history,
		services.OrchestratorConfig{
			TopK:      settings.Index.TopK,
			CacheSize: settings.Cache.Size,
			CacheTTL:  settings.Cache.TTL,
		},
	)

	scheduler := services.NewScheduler()
	if spec := settings.Schedule.SchemaRefresh; spec != "" {
		if err := scheduler.Add(services.SchemaRefreshJob{Schema: schema}, spec); err != nil {
			return err
		}
	}
	if spec := settings.Schedule.HistoryCompact; spec != "" {
		job := services.HistoryCompactJob{History: history, Keep: settings.History.Size}
		if err := scheduler.Add(job, spec); err != nil {
			return err
		}
	}
	if spec := settings.Schedule.IndexRebuild; spec != "" && index.Mode() == domain.IndexModeVector {
		if err := scheduler.Add(services.IndexRebuildJob{Index: index}, spec); err != nil {
			return err
		}
	}

	cli.Configure(cli.Services{
		Query:             orchestrator,
		Ingestion:         ingestion,
		Schema:            schema,
		Index:             index,
		Settings:          settingsService,
		ValidateEmbedding: ai.ValidateEmbeddingConfig,
		Scheduler:         scheduler,
	})

	return cli.Execute(ctx)
}

// openHistory returns the configured history store and its release function.
func openHistory(cfg domain.HistorySettings) (driven.HistoryStore, func(), error) {
	if cfg.Store != domain.HistoryStoreSQLite {
		return memory.NewHistoryStore(cfg.Size), func() {}, nil
	}

	path := cfg.Path
	if path == "" {
		path = "history.db"
	}
	store, err := sqlite.NewStore(path, cfg.Size)
	if err != nil {
		return nil, nil, fmt.Errorf("open history store: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}
