package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/custodia-labs/hybridq/internal/core/domain"
	"github.com/custodia-labs/hybridq/internal/core/ports/driven"
	"github.com/custodia-labs/hybridq/internal/logger"
)

// Job is a maintenance task run on a cron schedule.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs maintenance jobs on five-field cron specs.
// A job never overlaps itself; a tick that finds it still running is skipped.
type Scheduler struct {
	cron *cron.Cron

	mu      sync.Mutex
	entries map[string]cron.EntryID
	ctx     context.Context
	running bool
}

// NewScheduler creates a stopped scheduler.
func NewScheduler() *Scheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		cron:    cron.New(cron.WithParser(parser)),
		entries: make(map[string]cron.EntryID),
		ctx:     context.Background(),
	}
}

// Add schedules job. An empty spec disables the job and is not an error.
func (s *Scheduler) Add(job Job, spec string) error {
	if spec == "" {
		logger.Debug("Scheduler: %s disabled", job.Name())
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[job.Name()]; exists {
		return fmt.Errorf("schedule %s: already scheduled", job.Name())
	}
	id, err := s.cron.AddFunc(spec, s.wrap(job, spec))
	if err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name(), err)
	}
	s.entries[job.Name()] = id
	logger.Zap().Info("job scheduled", zap.String("job", job.Name()), zap.String("spec", spec))
	return nil
}

// Jobs returns the names of scheduled jobs.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}

// Start runs the cron loop in the background. Jobs receive ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.ctx = ctx
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
}

func (s *Scheduler) jobContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func (s *Scheduler) wrap(job Job, spec string) func() {
	var running atomic.Bool
	return func() {
		log := logger.Zap().With(zap.String("job", job.Name()), zap.String("spec", spec))
		if !running.CompareAndSwap(false, true) {
			log.Info("job skipped: still running")
			return
		}
		defer running.Store(false)

		start := time.Now()
		err := job.Run(s.jobContext())
		elapsed := time.Since(start)
		if err != nil {
			log.Warn("job finished", zap.Error(err), zap.Duration("duration", elapsed))
			return
		}
		log.Debug("job finished", zap.Duration("duration", elapsed))
	}
}

// Refresher rediscovers a catalog.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// SchemaRefreshJob rediscovers the connected database's catalog.
type SchemaRefreshJob struct {
	Schema Refresher
}

// Name returns the job name.
func (j SchemaRefreshJob) Name() string { return "schema_refresh" }

// Run refreshes the catalog. Having no database connected is not a failure.
func (j SchemaRefreshJob) Run(ctx context.Context) error {
	if err := j.Schema.Refresh(ctx); err != nil && !errors.Is(err, domain.ErrNoDatabase) {
		return err
	}
	return nil
}

// HistoryCompactJob prunes the history store to its configured size.
type HistoryCompactJob struct {
	History driven.HistoryStore
	Keep    int
}

// Name returns the job name.
func (j HistoryCompactJob) Name() string { return "history_compact" }

// Run prunes history.
func (j HistoryCompactJob) Run(ctx context.Context) error {
	return j.History.Prune(ctx, j.Keep)
}

// Rebuilder re-embeds a corpus whose vector structure has fallen behind.
type Rebuilder interface {
	Stale() bool
	Rebuild(ctx context.Context) error
}

// IndexRebuildJob retries the vector rebuild after a failed ingestion.
type IndexRebuildJob struct {
	Index Rebuilder
}

// Name returns the job name.
func (j IndexRebuildJob) Name() string { return "index_rebuild" }

// Run rebuilds the index only when some chunks are not yet embedded.
func (j IndexRebuildJob) Run(ctx context.Context) error {
	if !j.Index.Stale() {
		return nil
	}
	return j.Index.Rebuild(ctx)
}
