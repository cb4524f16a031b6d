package mcp

import (
	"context"

	"github.com/custodia-labs/hybridq/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	result     *domain.QueryResult
	history    []domain.HistoryEntry
	historyErr error
	queries    []string
}

func (m *mockQueryService) Query(_ context.Context, text string) *domain.QueryResult {
	m.queries = append(m.queries, text)
	return m.result
}

func (m *mockQueryService) History(_ context.Context) ([]domain.HistoryEntry, error) {
	return m.history, m.historyErr
}

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	jobs map[string]domain.IngestionJob
}

func (m *mockIngestionService) Submit(_ context.Context, _ []string) (string, error) {
	return "job-1", nil
}

func (m *mockIngestionService) Status(jobID string) (domain.IngestionJob, bool) {
	job, ok := m.jobs[jobID]
	return job, ok
}

// mockSchemaService is a mock implementation of driving.SchemaService.
type mockSchemaService struct {
	catalog *domain.SchemaCatalog
}

func (m *mockSchemaService) Connect(_ context.Context, _ string) (*domain.SchemaCatalog, error) {
	return m.catalog, nil
}

func (m *mockSchemaService) Current() *domain.SchemaCatalog {
	return m.catalog
}

func (m *mockSchemaService) Refresh(_ context.Context) error {
	return nil
}
