package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/hybridq/internal/core/domain"
	"github.com/custodia-labs/hybridq/internal/core/ports/driven"
	"github.com/custodia-labs/hybridq/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyServerAddr        = "server.addr"
	keyServerUploadDir   = "server.upload_dir"
	keyServerRateLimit   = "server.rate_limit"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyEmbedRateLimit    = "embedding.rate_limit"
	keyEmbedCacheSize    = "embedding.cache_size"
	keyIndexTopK         = "index.top_k"
	keyChunkerMaxSize    = "chunker.max_size"
	keyIngestionWorkers  = "ingestion.workers"
	keyExtractionTimeout = "extraction.timeout_seconds"
	keyCacheTTL          = "cache.ttl_seconds"
	keyCacheSize         = "cache.size"
	keyHistorySize       = "history.size"
	keyHistoryStore      = "history.store"
	keyHistoryPath       = "history.path"
	keyDatabaseDSN       = "database.dsn"
	keyDBMaxOpenConns    = "database.max_open_conns"
	keyDBConnMaxIdle     = "database.conn_max_idle_seconds"
	keyDBQueryTimeout    = "database.query_timeout_seconds"
	keySchemaRefresh     = "schedule.schema_refresh"
	keyHistoryCompact    = "schedule.history_compact"
	keyIndexRebuild      = "schedule.index_rebuild"
)

// EnvPrefix prefixes environment variables that override config keys.
const EnvPrefix = "HYBRIDQ_"

// defaultOllamaURL is used when Ollama is selected without a base URL.
const defaultOllamaURL = "http://localhost:11434"

// SettingsService resolves application settings from the config store.
// Environment variables named EnvKey(key) take precedence over stored values.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// EnvKey returns the environment variable that overrides key,
// e.g. "embedding.api_key" becomes "HYBRIDQ_EMBEDDING_API_KEY".
func EnvKey(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()

	settings := &domain.Settings{
		Server: domain.ServerSettings{
			Addr:      s.getString(keyServerAddr, d.Server.Addr),
			UploadDir: s.getString(keyServerUploadDir, d.Server.UploadDir),
			RateLimit: s.getFloat(keyServerRateLimit, d.Server.RateLimit),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:  s.getProvider(d.Embedding.Provider),
			Model:     s.getString(keyEmbedModel, ""),
			BaseURL:   s.getString(keyEmbedBaseURL, ""),
			APIKey:    s.getString(keyEmbedAPIKey, ""),
			RateLimit: s.getFloat(keyEmbedRateLimit, d.Embedding.RateLimit),
			CacheSize: s.getInt(keyEmbedCacheSize, d.Embedding.CacheSize),
		},
		Index:   domain.IndexSettings{TopK: s.getInt(keyIndexTopK, d.Index.TopK)},
		Chunker: domain.ChunkerSettings{MaxSize: s.getInt(keyChunkerMaxSize, d.Chunker.MaxSize)},
		Ingestion: domain.IngestionSettings{
			Workers:           s.getInt(keyIngestionWorkers, d.Ingestion.Workers),
			ExtractionTimeout: s.getSeconds(keyExtractionTimeout, d.Ingestion.ExtractionTimeout),
		},
		Cache: domain.CacheSettings{
			TTL:  s.getSeconds(keyCacheTTL, d.Cache.TTL),
			Size: s.getInt(keyCacheSize, d.Cache.Size),
		},
		History: domain.HistorySettings{
			Size:  s.getInt(keyHistorySize, d.History.Size),
			Store: s.getHistoryStore(d.History.Store),
			Path:  s.getString(keyHistoryPath, d.History.Path),
		},
		Database: domain.DatabaseSettings{
			DSN:             s.getString(keyDatabaseDSN, ""),
			MaxOpenConns:    s.getInt(keyDBMaxOpenConns, d.Database.MaxOpenConns),
			ConnMaxIdleTime: s.getSeconds(keyDBConnMaxIdle, d.Database.ConnMaxIdleTime),
			QueryTimeout:    s.getSeconds(keyDBQueryTimeout, d.Database.QueryTimeout),
		},
		Schedule: domain.ScheduleSettings{
			SchemaRefresh:  s.getOptionalString(keySchemaRefresh, d.Schedule.SchemaRefresh),
			HistoryCompact: s.getOptionalString(keyHistoryCompact, d.Schedule.HistoryCompact),
			IndexRebuild:   s.getOptionalString(keyIndexRebuild, d.Schedule.IndexRebuild),
		},
	}

	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if settings.Embedding.Provider == domain.AIProviderOllama && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = defaultOllamaURL
	}

	return settings, nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: embedding provider %q", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	baseURL := ""
	if provider == domain.AIProviderOllama {
		baseURL = s.configStore.GetString(keyEmbedBaseURL)
		if baseURL == "" {
			baseURL = defaultOllamaURL
		}
	}

	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, provider.String()},
		{keyEmbedModel, model},
		{keyEmbedBaseURL, baseURL},
		{keyEmbedAPIKey, apiKey},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetDatabaseDSN stores the connection string used at startup.
func (s *SettingsService) SetDatabaseDSN(dsn string) error {
	if err := s.configStore.Set(keyDatabaseDSN, dsn); err != nil {
		return fmt.Errorf("save %s: %w", keyDatabaseDSN, err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) env(key string) (string, bool) {
	if s.lookupEnv == nil {
		return "", false
	}
	v, ok := s.lookupEnv(EnvKey(key))
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if v, ok := s.env(key); ok {
		return v
	}
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getOptionalString distinguishes an explicitly empty value, which
// disables the feature, from a missing key.
func (s *SettingsService) getOptionalString(key, defaultVal string) string {
	if v, ok := s.lookupEnvRaw(key); ok {
		return v
	}
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetString(key)
}

func (s *SettingsService) lookupEnvRaw(key string) (string, bool) {
	if s.lookupEnv == nil {
		return "", false
	}
	v, ok := s.lookupEnv(EnvKey(key))
	return strings.TrimSpace(v), ok
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if v, ok := s.env(key); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		return defaultVal
	}
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if v, ok := s.env(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return f
		}
		return defaultVal
	}
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	val := s.configStore.GetFloat(key)
	if val < 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	secs := s.getInt(key, 0)
	if secs == 0 {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	val := s.getString(keyEmbedProvider, "")
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(strings.ToLower(val))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getHistoryStore(defaultVal domain.HistoryStoreKind) domain.HistoryStoreKind {
	switch kind := domain.HistoryStoreKind(strings.ToLower(s.getString(keyHistoryStore, ""))); kind {
	case domain.HistoryStoreMemory, domain.HistoryStoreSQLite:
		return kind
	default:
		return defaultVal
	}
}
