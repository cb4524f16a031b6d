package driven

import (
	"context"

	"github.com/custodia-labs/hybridq/internal/core/domain"
)

// Database is a pooled connection to a structured source.
type Database interface {
	// Dialect returns the SQL flavour used for identifier quoting.
	Dialect() domain.Dialect

	// Query runs a read-only statement and returns each row as a column map.
	Query(ctx context.Context, query string, args ...any) ([]map[string]any, error)

	// Ping checks a pooled connection is healthy.
	Ping(ctx context.Context) error

	// Close releases the pool.
	Close() error
}

// DatabaseConnector opens a Database from a connection string.
type DatabaseConnector interface {
	Connect(ctx context.Context, dsn string) (Database, error)
}

// SchemaProvider discovers a catalog and maps natural-language terms onto it.
type SchemaProvider interface {
	// Discover reads tables, columns and foreign keys and infers table roles.
	Discover(ctx context.Context, db Database) (*domain.SchemaCatalog, error)

	// MapTerms maps query tokens to candidate column names.
	MapTerms(query string, catalog *domain.SchemaCatalog) domain.TermMapping
}

// HistoryStore keeps the most recent answered queries.
type HistoryStore interface {
	// Append records an entry, evicting the oldest beyond capacity.
	Append(ctx context.Context, entry domain.HistoryEntry) error

	// List returns entries oldest first.
	List(ctx context.Context) ([]domain.HistoryEntry, error)

	// Prune drops all but the newest keep entries.
	Prune(ctx context.Context, keep int) error
}
