// Package domain defines the core entities of hybridq.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A bounded unit of extracted document text
//   - Hit: A single ranked document retrieval result
//   - IngestionJob: Progress of one asynchronous ingestion batch
//   - QueryResult: The envelope returned for a natural-language query
//   - SchemaCatalog: Table and column metadata of the connected database
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
