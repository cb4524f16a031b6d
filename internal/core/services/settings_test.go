package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hybridq/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/hybridq/internal/core/domain"
)

// newSettingsService returns a service with the process environment hidden.
func newSettingsService(values map[string]any, env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore(values)
	service := NewSettingsService(store)
	service.lookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	return service, store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newSettingsService(nil, nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults, *settings)
	assert.Equal(t, domain.AIProviderNone, settings.Embedding.Provider)
	assert.Equal(t, 300*time.Second, settings.Cache.TTL)
	assert.Equal(t, 1000, settings.Cache.Size)
	assert.Equal(t, 100, settings.History.Size)
	assert.Equal(t, 5, settings.Index.TopK)
	assert.Equal(t, 2000, settings.Chunker.MaxSize)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	service, _ := newSettingsService(map[string]any{
		"server.addr":                    "127.0.0.1:9000",
		"server.rate_limit":              int64(0),
		"embedding.provider":             "gemini",
		"embedding.api_key":              "key-123",
		"index.top_k":                    int64(8),
		"extraction.timeout_seconds":     int64(5),
		"cache.ttl_seconds":              int64(60),
		"history.store":                  "sqlite",
		"history.path":                   "/tmp/h.db",
		"database.dsn":                   "file:company.db",
		"database.query_timeout_seconds": int64(2),
		"schedule.schema_refresh":        "",
		"schedule.history_compact":       "@daily",
		"schedule.index_rebuild":         "",
		"database.conn_max_idle_seconds": int64(30),
	}, nil)

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", settings.Server.Addr)
	assert.Zero(t, settings.Server.RateLimit)
	assert.Equal(t, domain.AIProviderGemini, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-004", settings.Embedding.Model)
	assert.Equal(t, "key-123", settings.Embedding.APIKey)
	assert.Empty(t, settings.Embedding.BaseURL)
	assert.Equal(t, 8, settings.Index.TopK)
	assert.Equal(t, 5*time.Second, settings.Ingestion.ExtractionTimeout)
	assert.Equal(t, time.Minute, settings.Cache.TTL)
	assert.Equal(t, domain.HistoryStoreSQLite, settings.History.Store)
	assert.Equal(t, "/tmp/h.db", settings.History.Path)
	assert.Equal(t, "file:company.db", settings.Database.DSN)
	assert.Equal(t, 2*time.Second, settings.Database.QueryTimeout)
	assert.Equal(t, 30*time.Second, settings.Database.ConnMaxIdleTime)
	assert.Empty(t, settings.Schedule.SchemaRefresh)
	assert.Equal(t, "@daily", settings.Schedule.HistoryCompact)
	assert.Empty(t, settings.Schedule.IndexRebuild)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	service, _ := newSettingsService(map[string]any{
		"embedding.provider": "openai",
		"history.store":      "redis",
		"cache.size":         int64(-4),
		"server.rate_limit":  -1.0,
	}, nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.History.Store, settings.History.Store)
	assert.Equal(t, defaults.Cache.Size, settings.Cache.Size)
	assert.Equal(t, defaults.Server.RateLimit, settings.Server.RateLimit)
}

func TestSettingsService_Get_OllamaDefaults(t *testing.T) {
	service, _ := newSettingsService(map[string]any{"embedding.provider": "ollama"}, nil)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)
	assert.True(t, settings.Embedding.IsConfigured())
}

func TestSettingsService_Get_EnvOverrides(t *testing.T) {
	service, _ := newSettingsService(
		map[string]any{
			"embedding.provider": "ollama",
			"cache.size":         int64(10),
		},
		map[string]string{
			"HYBRIDQ_EMBEDDING_PROVIDER":      "gemini",
			"HYBRIDQ_EMBEDDING_API_KEY":       "from-env",
			"HYBRIDQ_CACHE_SIZE":              "50",
			"HYBRIDQ_SERVER_RATE_LIMIT":       "2.5",
			"HYBRIDQ_INDEX_TOP_K":             "not-a-number",
			"HYBRIDQ_SCHEDULE_SCHEMA_REFRESH": "",
			"HYBRIDQ_DATABASE_DSN":            "  postgres://localhost/hr  ",
		},
	)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderGemini, settings.Embedding.Provider)
	assert.Equal(t, "from-env", settings.Embedding.APIKey)
	assert.Equal(t, 50, settings.Cache.Size)
	assert.InDelta(t, 2.5, settings.Server.RateLimit, 1e-9)
	assert.Equal(t, domain.DefaultTopK, settings.Index.TopK)
	assert.Empty(t, settings.Schedule.SchemaRefresh)
	assert.Equal(t, "postgres://localhost/hr", settings.Database.DSN)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "HYBRIDQ_EMBEDDING_API_KEY", EnvKey("embedding.api_key"))
	assert.Equal(t, "HYBRIDQ_SERVER_ADDR", EnvKey("server.addr"))
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	t.Run("ollama uses default model and url", func(t *testing.T) {
		service, store := newSettingsService(nil, nil)
		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))

		assert.Equal(t, "ollama", store.GetString("embedding.provider"))
		assert.Equal(t, "nomic-embed-text", store.GetString("embedding.model"))
		assert.Equal(t, "http://localhost:11434", store.GetString("embedding.base_url"))
	})

	t.Run("ollama keeps custom url", func(t *testing.T) {
		service, store := newSettingsService(map[string]any{"embedding.base_url": "http://gpu:11434"}, nil)
		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "all-minilm", ""))

		assert.Equal(t, "all-minilm", store.GetString("embedding.model"))
		assert.Equal(t, "http://gpu:11434", store.GetString("embedding.base_url"))
	})

	t.Run("gemini requires api key", func(t *testing.T) {
		service, _ := newSettingsService(nil, nil)
		err := service.SetEmbeddingProvider(domain.AIProviderGemini, "", "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("gemini clears base url", func(t *testing.T) {
		service, store := newSettingsService(map[string]any{"embedding.base_url": "http://gpu:11434"}, nil)
		require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderGemini, "", "secret"))

		assert.Equal(t, "text-embedding-004", store.GetString("embedding.model"))
		assert.Empty(t, store.GetString("embedding.base_url"))
		assert.Equal(t, "secret", store.GetString("embedding.api_key"))
	})

	t.Run("invalid provider", func(t *testing.T) {
		service, _ := newSettingsService(nil, nil)
		err := service.SetEmbeddingProvider("openai", "", "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestSettingsService_SetDatabaseDSN(t *testing.T) {
	service, store := newSettingsService(nil, nil)
	require.NoError(t, service.SetDatabaseDSN("file:hr.db"))
	assert.Equal(t, "file:hr.db", store.GetString("database.dsn"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "file:hr.db", settings.Database.DSN)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service, _ := newSettingsService(nil, nil)
	assert.Equal(t, domain.DefaultSettings(), service.GetDefaults())
}
