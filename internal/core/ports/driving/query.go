package driving

import (
	"context"

	"github.com/custodia-labs/hybridq/internal/core/domain"
)

// QueryService answers natural-language queries.
type QueryService interface {
	// Query classifies and answers text. It never returns an error:
	// failures are reported through the error envelope.
	Query(ctx context.Context, text string) *domain.QueryResult

	// History returns the most recent queries, oldest first.
	History(ctx context.Context) ([]domain.HistoryEntry, error)
}

// IngestionService accepts document batches and reports their progress.
type IngestionService interface {
	// Submit starts asynchronous ingestion of paths and returns the job id immediately.
	Submit(ctx context.Context, paths []string) (string, error)

	// Status returns a snapshot of the job, or false if the id is unknown.
	Status(jobID string) (domain.IngestionJob, bool)
}

// IndexInfo describes the retrieval index.
type IndexInfo interface {
	// Mode returns the mode chosen at construction.
	Mode() domain.IndexMode

	// Len returns the number of chunks in the published corpus.
	Len() int
}

// SchemaService manages the structured source connection.
type SchemaService interface {
	// Connect opens dsn, discovers its catalog and makes it current.
	Connect(ctx context.Context, dsn string) (*domain.SchemaCatalog, error)

	// Current returns the current catalog, or nil if no database is connected.
	Current() *domain.SchemaCatalog

	// Refresh rediscovers the catalog of the current connection.
	Refresh(ctx context.Context) error
}
