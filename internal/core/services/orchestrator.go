package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/custodia-labs/hybridq/internal/core/domain"
	"github.com/custodia-labs/hybridq/internal/core/ports/driven"
	"github.com/custodia-labs/hybridq/internal/core/ports/driving"
	"github.com/custodia-labs/hybridq/internal/logger"
)

// Ensure QueryOrchestrator implements the interface.
var _ driving.QueryService = (*QueryOrchestrator)(nil)

// Orchestrator defaults.
const (
	DefaultCacheSize = 1000
	DefaultCacheTTL  = 300 * time.Second
)

// DocumentSearcher answers top-k document queries.
type DocumentSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]domain.Hit, error)
}

// StructuredSource supplies the current database, its catalog and the
// term mapper used by the structured path. Generation must change whenever
// the database does.
type StructuredSource interface {
	Database() (driven.Database, *domain.SchemaCatalog)
	MapTerms(query string) domain.TermMapping
	Generation() uint64
}

// OrchestratorConfig configures a QueryOrchestrator.
type OrchestratorConfig struct {
	TopK      int
	CacheSize int
	CacheTTL  time.Duration
}

// QueryOrchestrator classifies queries, runs the structured and document
// paths, caches complete answers and records history.
type QueryOrchestrator struct {
	classifier *Classifier
	structured *StructuredRetriever
	source     StructuredSource
	documents  DocumentSearcher
	history    driven.HistoryStore
	topK       int

	cache      *expirable.LRU[string, *domain.QueryResult]
	generation atomic.Uint64
	now        func() time.Time
}

// NewQueryOrchestrator creates an orchestrator. Zero config values use the defaults.
func NewQueryOrchestrator(
	classifier *Classifier,
	structured *StructuredRetriever,
	source StructuredSource,
	documents DocumentSearcher,
	history driven.HistoryStore,
	cfg OrchestratorConfig,
) *QueryOrchestrator {
	if cfg.TopK <= 0 {
		cfg.TopK = domain.DefaultTopK
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}

	return &QueryOrchestrator{
		classifier: classifier,
		structured: structured,
		source:     source,
		documents:  documents,
		history:    history,
		topK:       cfg.TopK,
		cache:      expirable.NewLRU[string, *domain.QueryResult](cfg.CacheSize, nil, cfg.CacheTTL),
		now:        time.Now,
	}
}

// Query answers text. A cached answer is returned with CacheHit set and no
// retrieval is performed. When one path of a hybrid query fails the other
// path's results are kept and the failure is recorded in Results.Errors;
// only when every attempted path fails is the error envelope returned.
func (o *QueryOrchestrator) Query(ctx context.Context, text string) *domain.QueryResult {
	start := o.now()

	key := o.cacheKey(text)
	if cached, ok := o.cache.Get(key); ok {
		res := cached.Clone()
		res.Metrics.CacheHit = true
		logger.Debug("Query: cache hit for %q", text)
		return res
	}

	qtype := o.classifier.Classify(text)
	logger.Debug("Query: %q classified as %s", text, qtype)

	results, err := o.retrieve(ctx, text, qtype)
	if err != nil {
		logger.Warn("Query: %q failed: %v", text, err)
		return domain.NewErrorResult(err)
	}

	elapsed := roundMillis(o.now().Sub(start))
	res := &domain.QueryResult{
		Query:   text,
		Type:    qtype,
		Results: results,
		Metrics: &domain.Metrics{Time: elapsed},
	}

	// Degraded answers are not cached so the failed path is retried.
	if len(results.Errors) == 0 {
		o.cache.Add(key, res.Clone())
	}

	entry := domain.HistoryEntry{Query: text, Elapsed: elapsed, Type: qtype, At: start}
	if err := o.history.Append(ctx, entry); err != nil {
		logger.Warn("Query: failed to record history: %v", err)
	}

	logger.Debug("Query: %q answered in %.3fs", text, elapsed)
	return res
}

// retrieve runs the paths wanted by qtype in parallel.
func (o *QueryOrchestrator) retrieve(ctx context.Context, text string, qtype domain.QueryType) (*domain.QueryResults, error) {
	var (
		structured     *domain.StructuredResult
		documents      []domain.Hit
		structuredErr  error
		documentsErr   error
		wg             sync.WaitGroup
		wantStructured = qtype.WantsStructured()
		wantDocuments  = qtype.WantsDocuments()
	)

	if wantStructured {
		wg.Add(1)
		go func() {
			defer wg.Done()
			structured, structuredErr = o.runStructured(ctx, text)
		}()
	}
	if wantDocuments {
		wg.Add(1)
		go func() {
			defer wg.Done()
			documents, documentsErr = o.documents.Search(ctx, text, o.topK)
		}()
	}
	wg.Wait()

	results := &domain.QueryResults{}
	var failures []string

	if wantStructured {
		if structuredErr != nil {
			failures = append(failures, domain.ResultStructured)
		} else {
			results.Structured = structured
		}
	}
	if wantDocuments {
		if documentsErr != nil {
			failures = append(failures, domain.ResultDocuments)
		} else {
			if documents == nil {
				documents = []domain.Hit{}
			}
			results.Documents = documents
		}
	}

	attempted := 0
	if wantStructured {
		attempted++
	}
	if wantDocuments {
		attempted++
	}

	if len(failures) == attempted {
		return nil, joinPathErrors(structuredErr, documentsErr)
	}

	if len(failures) > 0 {
		results.Errors = make(map[string]string, len(failures))
		if structuredErr != nil {
			results.Errors[domain.ResultStructured] = structuredErr.Error()
			logger.Warn("Query: structured path failed, returning documents only: %v", structuredErr)
		}
		if documentsErr != nil {
			results.Errors[domain.ResultDocuments] = documentsErr.Error()
			logger.Warn("Query: document path failed, returning structured only: %v", documentsErr)
		}
	}
	return results, nil
}

func (o *QueryOrchestrator) runStructured(ctx context.Context, text string) (*domain.StructuredResult, error) {
	if o.source == nil {
		return nil, domain.ErrNoDatabase
	}
	db, catalog := o.source.Database()
	if db == nil {
		return nil, domain.ErrNoDatabase
	}
	mapping := o.source.MapTerms(text)
	return o.structured.Retrieve(ctx, db, catalog, text, mapping)
}

// History returns the most recent queries, oldest first.
func (o *QueryOrchestrator) History(ctx context.Context) ([]domain.HistoryEntry, error) {
	entries, err := o.history.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

// cacheKey scopes text to the current database generation. The first
// query after a reconnect purges answers cached against the old database;
// a query still running against it caches under a key no later lookup uses.
func (o *QueryOrchestrator) cacheKey(text string) string {
	var gen uint64
	if o.source != nil {
		gen = o.source.Generation()
	}
	if o.generation.Swap(gen) != gen {
		o.cache.Purge()
		logger.Debug("Query: database changed, cached answers dropped")
	}
	return strconv.FormatUint(gen, 10) + "\x00" + text
}

func joinPathErrors(structuredErr, documentsErr error) error {
	switch {
	case structuredErr != nil && documentsErr != nil:
		return fmt.Errorf("%s: %w; %s: %w",
			domain.ResultStructured, structuredErr, domain.ResultDocuments, documentsErr)
	case structuredErr != nil:
		return structuredErr
	case documentsErr != nil:
		return documentsErr
	default:
		return errors.New("no retrieval path ran")
	}
}

// roundMillis returns d in seconds rounded to three decimals.
func roundMillis(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}
