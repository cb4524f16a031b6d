package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hybridq/internal/adapters/driven/storage/memory"
	vectormemory "github.com/custodia-labs/hybridq/internal/adapters/driven/vectorindex/memory"
	"github.com/custodia-labs/hybridq/internal/core/domain"
)

// countingJob implements Job for testing.
type countingJob struct {
	name    string
	runs    atomic.Int32
	err     error
	release chan struct{}
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(_ context.Context) error {
	j.runs.Add(1)
	if j.release != nil {
		<-j.release
	}
	return j.err
}

// mockRefresher implements Refresher for testing.
type mockRefresher struct {
	err   error
	calls int
}

func (m *mockRefresher) Refresh(_ context.Context) error {
	m.calls++
	return m.err
}

func TestScheduler_Add(t *testing.T) {
	s := NewScheduler()

	require.NoError(t, s.Add(&countingJob{name: "disabled"}, ""))
	assert.Empty(t, s.Jobs())

	require.NoError(t, s.Add(&countingJob{name: "hourly"}, "0 * * * *"))
	require.NoError(t, s.Add(&countingJob{name: "daily"}, "@daily"))
	assert.ElementsMatch(t, []string{"hourly", "daily"}, s.Jobs())

	assert.Error(t, s.Add(&countingJob{name: "hourly"}, "*/5 * * * *"))
	assert.Error(t, s.Add(&countingJob{name: "broken"}, "not a spec"))
	assert.Error(t, s.Add(&countingJob{name: "seconds"}, "*/5 * * * * *"))
}

func TestScheduler_WrapRunsJob(t *testing.T) {
	s := NewScheduler()
	job := &countingJob{name: "j", err: errors.New("boom")}

	run := s.wrap(job, "@hourly")
	run()
	run()
	assert.Equal(t, int32(2), job.runs.Load())
}

func TestScheduler_WrapSkipsOverlap(t *testing.T) {
	s := NewScheduler()
	job := &countingJob{name: "slow", release: make(chan struct{})}
	run := s.wrap(job, "@hourly")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		run()
	}()
	require.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	run() // skipped while the first run is blocked
	close(job.release)
	wg.Wait()

	assert.Equal(t, int32(1), job.runs.Load())
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler()
	job := &countingJob{name: "tick"}
	require.NoError(t, s.Add(job, "@every 1s"))

	s.Start(context.Background())
	s.Start(context.Background())
	assert.Eventually(t, func() bool { return job.runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	s.Stop()
	s.Stop()
}

func TestSchemaRefreshJob(t *testing.T) {
	refresher := &mockRefresher{}
	job := SchemaRefreshJob{Schema: refresher}
	assert.Equal(t, "schema_refresh", job.Name())
	assert.NoError(t, job.Run(context.Background()))

	refresher.err = domain.ErrNoDatabase
	assert.NoError(t, job.Run(context.Background()))

	refresher.err = domain.ErrSchemaDiscovery
	assert.ErrorIs(t, job.Run(context.Background()), domain.ErrSchemaDiscovery)
	assert.Equal(t, 3, refresher.calls)
}

func TestHistoryCompactJob(t *testing.T) {
	ctx := context.Background()
	history := memory.NewHistoryStore(10)
	for i := 0; i < 6; i++ {
		require.NoError(t, history.Append(ctx, domain.HistoryEntry{Query: "q"}))
	}

	job := HistoryCompactJob{History: history, Keep: 4}
	assert.Equal(t, "history_compact", job.Name())
	require.NoError(t, job.Run(ctx))
	assert.Equal(t, 4, history.Len())
}

func TestIndexRebuildJob(t *testing.T) {
	ctx := context.Background()
	emb := &mockEmbeddingService{batchErr: errors.New("model loading")}
	idx := NewRetrievalIndex(ctx, emb, vectormemory.NewBuilder())
	job := IndexRebuildJob{Index: idx}
	assert.Equal(t, "index_rebuild", job.Name())

	require.NoError(t, job.Run(ctx))
	assert.Empty(t, emb.batchCalls)

	require.Error(t, idx.Add(ctx, chunkInputs("cv.txt", "python golang")))
	require.True(t, idx.Stale())

	assert.Error(t, job.Run(ctx))
	assert.True(t, idx.Stale())

	emb.batchErr = nil
	require.NoError(t, job.Run(ctx))
	assert.False(t, idx.Stale())

	hits, err := idx.Search(ctx, "python", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "python golang", hits[0].Text)

	calls := len(emb.batchCalls)
	require.NoError(t, job.Run(ctx))
	assert.Len(t, emb.batchCalls, calls)
}
