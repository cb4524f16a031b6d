package extractors

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/hybridq/internal/core/domain"
	"github.com/custodia-labs/hybridq/internal/core/ports/driven"
	"github.com/custodia-labs/hybridq/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.TextExtractor = (*Registry)(nil)

// DefaultTimeout bounds a single extraction.
const DefaultTimeout = 60 * time.Second

// Registry dispatches paths to extractors by document type.
type Registry struct {
	mu         sync.RWMutex
	extractors map[domain.DocumentType]driven.Extractor
	timeout    time.Duration
}

// NewRegistry creates a registry with the given per-file timeout.
// A non-positive timeout uses DefaultTimeout.
func NewRegistry(timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Registry{
		extractors: make(map[domain.DocumentType]driven.Extractor),
		timeout:    timeout,
	}
}

// Register adds an extractor, replacing any previous one for the same type.
func (r *Registry) Register(e driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[e.Type()] = e
}

type extraction struct {
	text string
	err  error
}

// Extract returns the text of the file at path, or "" if the type is not
// registered, the extractor fails, or the timeout elapses.
func (r *Registry) Extract(ctx context.Context, path string) string {
	docType := domain.DocumentTypeFromPath(path)

	r.mu.RLock()
	e, ok := r.extractors[docType]
	if !ok {
		e, ok = r.extractors[domain.DocumentTypeText]
	}
	r.mu.RUnlock()
	if !ok {
		logger.Debug("extract %s: no extractor for %s", path, docType)
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan extraction, 1)
	go func() {
		text, err := e.Extract(ctx, path)
		done <- extraction{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		logger.Warn("extract %s: %v", path, ctx.Err())
		return ""
	case res := <-done:
		if res.err != nil {
			logger.Debug("extract %s: %v", path, res.err)
			return ""
		}
		return res.text
	}
}
