package driving

import "github.com/custodia-labs/hybridq/internal/core/domain"

// SettingsService resolves application settings from configuration.
type SettingsService interface {
	// Get returns settings with defaults applied for missing keys.
	Get() (*domain.Settings, error)

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetDatabaseDSN stores the connection string used at startup.
	SetDatabaseDSN(dsn string) error
}
