package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown document type or database dialect.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured
	// or could not be reached. The retrieval index falls back to token overlap.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the nearest-neighbour structure is missing.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrNoDatabase indicates a structured query was attempted before a
	// database connection was submitted.
	ErrNoDatabase = errors.New("no database connected")

	// ErrSchemaDiscovery indicates the schema of a database could not be read.
	ErrSchemaDiscovery = errors.New("schema discovery failed")

	// ErrStructuredQuery indicates a canned SQL query failed to execute.
	ErrStructuredQuery = errors.New("structured query failed")

	// ErrUnknownIdentifier indicates a table or column name is absent from
	// the schema catalog and must not be interpolated into SQL.
	ErrUnknownIdentifier = errors.New("unknown identifier")

	// ErrEmptyCatalog indicates the connected database exposes no tables.
	ErrEmptyCatalog = errors.New("schema catalog is empty")

	// ErrRateLimited indicates a caller exceeded its request budget.
	ErrRateLimited = errors.New("rate limited")
)
