// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TextExtractor: Turns a file path into text, never failing
//   - Chunker: Splits text into bounded passages
//   - HistoryStore: Bounded query history
//   - DatabaseConnector: Opens pooled connections to a structured source
//   - SchemaProvider: Discovers a catalog and maps query terms onto it
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, the
//     retrieval index runs in token-overlap mode for the process lifetime.
//   - VectorIndexBuilder: Builds nearest-neighbour structures. Only used in vector mode.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
