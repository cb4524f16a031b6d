package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/hybridq/internal/core/domain"
	"github.com/custodia-labs/hybridq/internal/core/ports/driven"
	"github.com/custodia-labs/hybridq/internal/core/ports/driving"
	"github.com/custodia-labs/hybridq/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// DefaultIngestionWorkers is the pool size used when none is configured.
const DefaultIngestionWorkers = 4

// ChunkSink receives the chunks of an ingestion batch.
type ChunkSink interface {
	Add(ctx context.Context, inputs []ChunkInput) error
}

// IngestionService extracts, chunks and indexes document batches in the
// background. Progress is reported through the job tracker.
type IngestionService struct {
	tracker   *JobTracker
	extractor driven.TextExtractor
	chunker   driven.Chunker
	sink      ChunkSink
	workers   int

	// Batches run on ctx rather than the submitting request's context.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewIngestionService creates an ingestion service whose batches run until
// ctx is cancelled or Close is called.
func NewIngestionService(
	ctx context.Context,
	tracker *JobTracker,
	extractor driven.TextExtractor,
	chunker driven.Chunker,
	sink ChunkSink,
	workers int,
) *IngestionService {
	if workers <= 0 {
		workers = DefaultIngestionWorkers
	}
	ctx, cancel := context.WithCancel(ctx)
	return &IngestionService{
		tracker:   tracker,
		extractor: extractor,
		chunker:   chunker,
		sink:      sink,
		workers:   workers,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Submit registers a job for paths, starts processing in the background and
// returns the job id immediately.
func (s *IngestionService) Submit(_ context.Context, paths []string) (string, error) {
	if len(paths) == 0 {
		return "", fmt.Errorf("%w: no files submitted", domain.ErrInvalidInput)
	}
	if err := s.ctx.Err(); err != nil {
		return "", fmt.Errorf("ingestion stopped: %w", err)
	}

	batch := append([]string(nil), paths...)
	id := s.tracker.Create(len(batch))
	logger.Info("Ingestion: job %s started with %d file(s)", id, len(batch))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(id, batch)
	}()
	return id, nil
}

// Status returns a snapshot of the job, or false if the id is unknown.
func (s *IngestionService) Status(jobID string) (domain.IngestionJob, bool) {
	return s.tracker.Status(jobID)
}

// Wait blocks until every submitted batch has finished.
func (s *IngestionService) Wait() {
	s.wg.Wait()
}

// Close cancels running batches and waits for them to return.
func (s *IngestionService) Close() {
	s.cancel()
	s.wg.Wait()
}

// run processes one batch. Files are extracted and chunked on the worker
// pool; the chunks are then added to the index in input order. The advance
// for the last file is held back until the index has published the batch, so
// a finished job's chunks are always searchable.
func (s *IngestionService) run(id string, paths []string) {
	ctx := s.ctx
	results := make([][]ChunkInput, len(paths))

	var remaining atomic.Int64
	remaining.Store(int64(len(paths)))

	work := make(chan int)
	workers := min(s.workers, len(paths))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				results[i] = s.process(ctx, paths[i])
				if remaining.Add(-1) > 0 {
					s.tracker.Advance(id, 1)
				}
			}
		}()
	}
	for i := range paths {
		work <- i
	}
	close(work)
	wg.Wait()

	var inputs []ChunkInput
	for _, r := range results {
		inputs = append(inputs, r...)
	}

	if len(inputs) > 0 {
		if err := s.sink.Add(ctx, inputs); err != nil {
			logger.Warn("Ingestion: job %s: index update failed: %v", id, err)
		}
	}

	job, _ := s.tracker.Advance(id, 1)
	logger.Info("Ingestion: job %s %s, %d/%d files, %d chunks", id, job.Status, job.Processed, job.Total, len(inputs))
}

// process extracts and chunks one file. Unreadable files yield no chunks.
func (s *IngestionService) process(ctx context.Context, path string) []ChunkInput {
	text := s.extractor.Extract(ctx, path)
	if text == "" {
		logger.Debug("Ingestion: no text extracted from %s", path)
		return nil
	}

	passages := s.chunker.Chunk(text, domain.DocumentTypeFromPath(path))
	inputs := make([]ChunkInput, 0, len(passages))
	for _, p := range passages {
		inputs = append(inputs, ChunkInput{SourcePath: path, Text: p})
	}
	logger.Debug("Ingestion: %s produced %d chunk(s)", path, len(inputs))
	return inputs
}
