package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrVectorIndexUnavailable", ErrVectorIndexUnavailable},
		{"ErrNoDatabase", ErrNoDatabase},
		{"ErrSchemaDiscovery", ErrSchemaDiscovery},
		{"ErrStructuredQuery", ErrStructuredQuery},
		{"ErrUnknownIdentifier", ErrUnknownIdentifier},
		{"ErrEmptyCatalog", ErrEmptyCatalog},
		{"ErrRateLimited", ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("execute count: %w", ErrStructuredQuery)

	assert.True(t, errors.Is(wrapped, ErrStructuredQuery))
	assert.False(t, errors.Is(wrapped, ErrSchemaDiscovery))
	assert.Contains(t, wrapped.Error(), "structured query failed")
}

func TestErrNotFound(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.False(t, errors.Is(ErrNotFound, ErrInvalidInput))
}
