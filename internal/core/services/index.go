package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/hybridq/internal/core/domain"
	"github.com/custodia-labs/hybridq/internal/core/ports/driven"
	"github.com/custodia-labs/hybridq/internal/core/ports/driving"
	"github.com/custodia-labs/hybridq/internal/logger"
)

// Ensure RetrievalIndex implements the interface.
var _ driving.IndexInfo = (*RetrievalIndex)(nil)

// ChunkInput is a chunk of text awaiting indexing.
type ChunkInput struct {
	SourcePath string
	Text       string
}

// indexSnapshot is an immutable view of the corpus. vectors may cover
// fewer rows than chunks when the last rebuild failed.
type indexSnapshot struct {
	chunks  []domain.Chunk
	vectors driven.VectorIndex
}

// RetrievalIndex owns the chunk corpus and answers top-k queries.
//
// Writers are serialised by writeMu and publish a fresh snapshot with an
// atomic store; readers load the current snapshot and never block.
type RetrievalIndex struct {
	mode     domain.IndexMode
	embedder driven.EmbeddingService
	builder  driven.VectorIndexBuilder

	writeMu sync.Mutex
	snap    atomic.Pointer[indexSnapshot]
}

// NewRetrievalIndex chooses the index mode once. Vector mode requires both
// an embedder and a builder, and a successful embedder Ping; anything else
// selects token-overlap mode for the lifetime of the index.
func NewRetrievalIndex(
	ctx context.Context,
	embedder driven.EmbeddingService,
	builder driven.VectorIndexBuilder,
) *RetrievalIndex {
	idx := &RetrievalIndex{mode: domain.IndexModeTokenOverlap}
	idx.snap.Store(&indexSnapshot{})

	switch {
	case embedder == nil || builder == nil:
		logger.Info("Retrieval index: %v, using token-overlap mode", domain.ErrEmbeddingUnavailable)
	default:
		if err := embedder.Ping(ctx); err != nil {
			logger.Warn("Retrieval index: %v (%v), using token-overlap mode", domain.ErrEmbeddingUnavailable, err)
		} else {
			idx.mode = domain.IndexModeVector
			idx.embedder = embedder
			idx.builder = builder
			logger.Info("Retrieval index: vector mode with %s", embedder.ModelName())
		}
	}
	return idx
}

// Mode returns the mode chosen at construction.
func (x *RetrievalIndex) Mode() domain.IndexMode {
	return x.mode
}

// Len returns the number of published chunks.
func (x *RetrievalIndex) Len() int {
	return len(x.snap.Load().chunks)
}

// Stale reports whether published chunks are missing from the vector
// structure, which happens when a rebuild failed. Always false in
// token-overlap mode.
func (x *RetrievalIndex) Stale() bool {
	if x.mode != domain.IndexModeVector {
		return false
	}
	snap := x.snap.Load()
	if snap.vectors == nil {
		return len(snap.chunks) > 0
	}
	return snap.vectors.Len() < len(snap.chunks)
}

// Add appends chunks to the corpus, assigning IDs in input order, and
// publishes a new snapshot. In vector mode the whole corpus is re-embedded
// and the nearest-neighbour structure rebuilt. If that fails the chunks are
// still published, the previous structure is kept, and the error is
// returned; the next successful rebuild covers them.
func (x *RetrievalIndex) Add(ctx context.Context, inputs []ChunkInput) error {
	if len(inputs) == 0 {
		return nil
	}

	x.writeMu.Lock()
	defer x.writeMu.Unlock()

	cur := x.snap.Load()
	chunks := make([]domain.Chunk, len(cur.chunks), len(cur.chunks)+len(inputs))
	copy(chunks, cur.chunks)

	for _, in := range inputs {
		c := domain.Chunk{
			ID:         len(chunks),
			SourcePath: in.SourcePath,
			Text:       in.Text,
			Metadata:   map[string]string{domain.MetadataSource: filepath.Base(in.SourcePath)},
		}
		if x.mode == domain.IndexModeTokenOverlap {
			c.Tokens = domain.Tokenize(c.Text)
		}
		chunks = append(chunks, c)
	}

	if x.mode == domain.IndexModeTokenOverlap {
		x.snap.Store(&indexSnapshot{chunks: chunks})
		logger.Debug("Retrieval index: published %d chunks (token-overlap)", len(chunks))
		return nil
	}

	vectors, err := x.rebuild(ctx, chunks)
	if err != nil {
		x.snap.Store(&indexSnapshot{chunks: chunks, vectors: cur.vectors})
		return err
	}
	x.snap.Store(&indexSnapshot{chunks: chunks, vectors: vectors})
	logger.Debug("Retrieval index: published %d chunks (vector)", len(chunks))
	return nil
}

// Rebuild re-embeds the current corpus. It is a no-op in token-overlap mode.
func (x *RetrievalIndex) Rebuild(ctx context.Context) error {
	if x.mode != domain.IndexModeVector {
		return nil
	}

	x.writeMu.Lock()
	defer x.writeMu.Unlock()

	cur := x.snap.Load()
	chunks := make([]domain.Chunk, len(cur.chunks))
	copy(chunks, cur.chunks)

	vectors, err := x.rebuild(ctx, chunks)
	if err != nil {
		return err
	}
	x.snap.Store(&indexSnapshot{chunks: chunks, vectors: vectors})
	logger.Info("Retrieval index: rebuilt vectors for %d chunks", len(chunks))
	return nil
}

// rebuild embeds every chunk, attaches the embeddings to chunks in place
// and builds a new structure. chunks must not be visible to readers yet.
func (x *RetrievalIndex) rebuild(ctx context.Context, chunks []domain.Chunk) (driven.VectorIndex, error) {
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	logger.Debug("Retrieval index: embedding %d chunks", len(texts))
	embeddings, err := x.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embed corpus: got %d embeddings for %d chunks", len(embeddings), len(chunks))
	}

	vectors, err := x.builder.Build(ctx, embeddings)
	if err != nil {
		return nil, fmt.Errorf("build vector index: %w", err)
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}
	return vectors, nil
}

// Search returns the topK best chunks for query. A non-positive topK uses
// domain.DefaultTopK. An empty corpus yields no hits and no error.
func (x *RetrievalIndex) Search(ctx context.Context, query string, topK int) ([]domain.Hit, error) {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	snap := x.snap.Load()
	if len(snap.chunks) == 0 {
		return []domain.Hit{}, nil
	}

	if x.mode == domain.IndexModeTokenOverlap {
		return tokenOverlapSearch(snap.chunks, query, topK), nil
	}
	return x.vectorSearch(ctx, snap, query, topK)
}

func (x *RetrievalIndex) vectorSearch(
	ctx context.Context,
	snap *indexSnapshot,
	query string,
	topK int,
) ([]domain.Hit, error) {
	if snap.vectors == nil || snap.vectors.Len() == 0 {
		logger.Warn("Retrieval index: %v, corpus not embedded yet", domain.ErrVectorIndexUnavailable)
		return []domain.Hit{}, nil
	}

	qv, err := x.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	k := min(topK, snap.vectors.Len())
	found, err := snap.vectors.Search(ctx, qv, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	hits := make([]domain.Hit, 0, len(found))
	for _, f := range found {
		c := &snap.chunks[f.Row]
		hits = append(hits, domain.Hit{Score: 1 - f.Distance, Text: c.Text, Source: c.Source()})
	}
	logger.Debug("Retrieval index: vector search returned %d hits", len(hits))
	return hits, nil
}

type overlapHit struct {
	chunk   *domain.Chunk
	overlap int
}

func tokenOverlapSearch(chunks []domain.Chunk, query string, topK int) []domain.Hit {
	q := domain.Tokenize(query)

	scored := make([]overlapHit, 0)
	for i := range chunks {
		n := 0
		for tok := range q {
			if _, ok := chunks[i].Tokens[tok]; ok {
				n++
			}
		}
		if n > 0 {
			scored = append(scored, overlapHit{chunk: &chunks[i], overlap: n})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].overlap > scored[j].overlap
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}

	hits := make([]domain.Hit, len(scored))
	for i, s := range scored {
		hits[i] = domain.Hit{Score: float64(s.overlap), Text: s.chunk.Text, Source: s.chunk.Source()}
	}
	logger.Debug("Retrieval index: token-overlap search returned %d hits", len(hits))
	return hits
}
