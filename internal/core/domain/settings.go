package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available embedding providers.
const (
	// AIProviderNone disables embeddings; the index uses token overlap.
	AIProviderNone AIProvider = "none"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderNone, AIProviderOllama, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderGemini
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderNone:
		return "None (token-overlap search)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// AllEmbeddingProviders returns the providers in menu order.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{AIProviderNone, AIProviderOllama, AIProviderGemini}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderGemini: "text-embedding-004",
	}
}

// ServerSettings configures the HTTP boundary.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// UploadDir is where uploaded files are persisted before ingestion.
	UploadDir string

	// RateLimit is the sustained requests per second per client. Zero disables limiting.
	RateLimit float64
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for Gemini).
	APIKey string

	// RateLimit caps embedding calls per second. Zero disables limiting.
	RateLimit float64

	// CacheSize is the number of query embeddings kept in memory.
	CacheSize int
}

// IsConfigured returns true if an embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderNone {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// IndexSettings configures retrieval.
type IndexSettings struct {
	// TopK is the number of document hits per query.
	TopK int
}

// ChunkerSettings configures chunking.
type ChunkerSettings struct {
	// MaxSize is the character bound at which a chunk is closed.
	MaxSize int
}

// IngestionSettings configures the background ingestion pool.
type IngestionSettings struct {
	// Workers is the number of files extracted concurrently.
	Workers int

	// ExtractionTimeout bounds a single file extraction.
	ExtractionTimeout time.Duration
}

// CacheSettings configures the query response cache.
type CacheSettings struct {
	TTL  time.Duration
	Size int
}

// HistoryStoreKind selects where query history is kept.
type HistoryStoreKind string

// History store kinds.
const (
	HistoryStoreMemory HistoryStoreKind = "memory"
	HistoryStoreSQLite HistoryStoreKind = "sqlite"
)

// HistorySettings configures query history.
type HistorySettings struct {
	// Size is the number of most recent entries retained.
	Size int

	// Store is memory or sqlite.
	Store HistoryStoreKind

	// Path is the SQLite database path when Store is sqlite.
	Path string
}

// DatabaseSettings configures the structured source connection pool.
type DatabaseSettings struct {
	// DSN is connected at startup when set.
	DSN string

	MaxOpenConns    int
	ConnMaxIdleTime time.Duration
	QueryTimeout    time.Duration
}

// ScheduleSettings holds cron specs for maintenance jobs. Empty disables a job.
type ScheduleSettings struct {
	SchemaRefresh  string
	HistoryCompact string
	IndexRebuild   string
}

// Settings holds all application settings.
type Settings struct {
	Server    ServerSettings
	Embedding EmbeddingSettings
	Index     IndexSettings
	Chunker   ChunkerSettings
	Ingestion IngestionSettings
	Cache     CacheSettings
	History   HistorySettings
	Database  DatabaseSettings
	Schedule  ScheduleSettings
}

// DefaultSettings returns settings with sensible defaults.
// Embeddings are left unconfigured, so the index starts in token-overlap mode.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Addr:      ":8000",
			UploadDir: "uploads",
			RateLimit: 20,
		},
		Embedding: EmbeddingSettings{
			Provider:  AIProviderNone,
			RateLimit: 10,
			CacheSize: 1000,
		},
		Index:   IndexSettings{TopK: DefaultTopK},
		Chunker: ChunkerSettings{MaxSize: 2000},
		Ingestion: IngestionSettings{
			Workers:           4,
			ExtractionTimeout: 60 * time.Second,
		},
		Cache: CacheSettings{
			TTL:  300 * time.Second,
			Size: 1000,
		},
		History: HistorySettings{
			Size:  100,
			Store: HistoryStoreMemory,
		},
		Database: DatabaseSettings{
			MaxOpenConns:    5,
			ConnMaxIdleTime: 5 * time.Minute,
			QueryTimeout:    30 * time.Second,
		},
		Schedule: ScheduleSettings{
			SchemaRefresh:  "*/15 * * * *",
			HistoryCompact: "0 * * * *",
			IndexRebuild:   "*/5 * * * *",
		},
	}
}
