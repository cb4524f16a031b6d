// Package embedcache wraps an embedding service with a query-vector LRU cache
// and a token-bucket limiter on provider calls.
package embedcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/hybridq/internal/core/ports/driven"
	"github.com/custodia-labs/hybridq/internal/logger"
)

// Ensure Service implements the interface.
var _ driven.EmbeddingService = (*Service)(nil)

// DefaultTTL is how long a cached query vector stays valid.
const DefaultTTL = time.Hour

// Config configures the wrapper. Zero values disable the matching feature.
type Config struct {
	// CacheSize is the number of query vectors kept.
	CacheSize int

	// CacheTTL defaults to DefaultTTL.
	CacheTTL time.Duration

	// RateLimit is the sustained provider calls per second.
	RateLimit float64
}

// Service decorates an EmbeddingService.
type Service struct {
	next    driven.EmbeddingService
	cache   *expirable.LRU[string, []float32]
	limiter *rate.Limiter
}

// Wrap returns next decorated per cfg, or next itself when cfg enables nothing.
func Wrap(next driven.EmbeddingService, cfg Config) driven.EmbeddingService {
	if next == nil || (cfg.CacheSize <= 0 && cfg.RateLimit <= 0) {
		return next
	}

	s := &Service{next: next}
	if cfg.CacheSize > 0 {
		ttl := cfg.CacheTTL
		if ttl <= 0 {
			ttl = DefaultTTL
		}
		s.cache = expirable.NewLRU[string, []float32](cfg.CacheSize, nil, ttl)
	}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(1, int(cfg.RateLimit)))
	}
	return s
}

// Embed returns the cached vector for text or asks the provider.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(s.next.ModelName(), text)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			logger.Zap().Debug("embedding cache hit", zap.String("model", s.next.ModelName()))
			return clone(cached), nil
		}
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	vec, err := s.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Add(key, clone(vec))
	}
	return vec, nil
}

// EmbedBatch forwards to the provider. Document vectors are not cached.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.next.EmbedBatch(ctx, texts)
}

// Dimensions returns the wrapped service's vector size.
func (s *Service) Dimensions() int {
	return s.next.Dimensions()
}

// ModelName returns the wrapped service's model.
func (s *Service) ModelName() string {
	return s.next.ModelName()
}

// Ping forwards to the provider without consuming rate budget.
func (s *Service) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close purges the cache and closes the provider.
func (s *Service) Close() error {
	if s.cache != nil {
		s.cache.Purge()
	}
	return s.next.Close()
}

func (s *Service) wait(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("embedding rate limit: %w", err)
	}
	return nil
}

func cacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return model + ":" + hex.EncodeToString(sum[:])
}

func clone(v []float32) []float32 {
	return append([]float32(nil), v...)
}
