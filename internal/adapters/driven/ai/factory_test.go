package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hybridq/internal/adapters/driven/embedding/embedcache"
	"github.com/custodia-labs/hybridq/internal/adapters/driven/embedding/gemini"
	"github.com/custodia-labs/hybridq/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/hybridq/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantNil  bool
		check    func(t *testing.T, svc any)
	}{
		{
			name:     "nil settings returns nil",
			settings: nil,
			wantNil:  true,
		},
		{
			name:     "provider none returns nil",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderNone},
			wantNil:  true,
		},
		{
			name:     "gemini without key is not configured",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderGemini},
			wantNil:  true,
		},
		{
			name: "ollama provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
			check: func(t *testing.T, svc any) {
				assert.IsType(t, &ollama.EmbeddingService{}, svc)
			},
		},
		{
			name: "gemini provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderGemini,
				APIKey:   "test-key",
			},
			check: func(t *testing.T, svc any) {
				assert.IsType(t, &gemini.EmbeddingService{}, svc)
			},
		},
		{
			name: "cache and rate limit wrap the provider",
			settings: &domain.EmbeddingSettings{
				Provider:  domain.AIProviderOllama,
				CacheSize: 16,
				RateLimit: 5,
			},
			check: func(t *testing.T, svc any) {
				assert.IsType(t, &embedcache.Service{}, svc)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(context.Background(), tt.settings)
			require.NoError(t, err)

			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			defer svc.Close()
			if tt.check != nil {
				tt.check(t, svc)
			}
		})
	}
}

func TestCreateEmbeddingService_UnknownProvider(t *testing.T) {
	// IsConfigured rejects unknown providers before the switch is reached.
	svc, err := CreateEmbeddingService(context.Background(), &domain.EmbeddingSettings{Provider: "openai"})
	assert.NoError(t, err)
	assert.Nil(t, svc)
}

func TestValidateEmbeddingConfig(t *testing.T) {
	t.Run("unconfigured is valid", func(t *testing.T) {
		assert.NoError(t, ValidateEmbeddingConfig(context.Background(), &domain.EmbeddingSettings{}))
	})

	t.Run("reachable ollama", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		err := ValidateEmbeddingConfig(context.Background(), &domain.EmbeddingSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  srv.URL,
		})
		assert.NoError(t, err)
	})

	t.Run("unreachable ollama", func(t *testing.T) {
		err := ValidateEmbeddingConfig(context.Background(), &domain.EmbeddingSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  "http://127.0.0.1:1",
		})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}
