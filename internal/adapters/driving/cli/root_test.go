package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/hybridq/internal/core/domain"
)

type mockQueryService struct {
	result  *domain.QueryResult
	history []domain.HistoryEntry
	err     error
	queries []string
}

func (m *mockQueryService) Query(_ context.Context, text string) *domain.QueryResult {
	m.queries = append(m.queries, text)
	if m.result != nil {
		return m.result
	}
	return &domain.QueryResult{
		Query:   text,
		Type:    domain.QueryDocument,
		Results: &domain.QueryResults{Documents: []domain.Hit{{Score: 0.8, Text: "python developer", Source: "cv.txt"}}},
		Metrics: &domain.Metrics{Time: 0.002},
	}
}

func (m *mockQueryService) History(_ context.Context) ([]domain.HistoryEntry, error) {
	return m.history, m.err
}

// mockIngestionService finishes a job after a fixed number of Status calls.
type mockIngestionService struct {
	mu        sync.Mutex
	submitted [][]string
	polls     int
	finishOn  int
	err       error
}

func (m *mockIngestionService) Submit(_ context.Context, paths []string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitted = append(m.submitted, paths)
	return "job-1", nil
}

func (m *mockIngestionService) Status(jobID string) (domain.IngestionJob, bool) {
	if jobID != "job-1" {
		return domain.IngestionJob{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.polls++
	total := len(m.submitted[len(m.submitted)-1])
	job := domain.IngestionJob{ID: jobID, Total: total, Status: domain.JobRunning, StartedAt: time.Now()}
	if m.polls >= m.finishOn {
		now := time.Now()
		job.Processed = total
		job.Status = domain.JobFinished
		job.FinishedAt = &now
	}
	return job, true
}

type mockSchemaService struct {
	catalog    *domain.SchemaCatalog
	connectErr error
	dsn        string
}

func (m *mockSchemaService) Connect(_ context.Context, dsn string) (*domain.SchemaCatalog, error) {
	m.dsn = dsn
	if m.connectErr != nil {
		return nil, m.connectErr
	}
	m.catalog = testCatalog()
	return m.catalog, nil
}

func (m *mockSchemaService) Current() *domain.SchemaCatalog  { return m.catalog }
func (m *mockSchemaService) Refresh(_ context.Context) error { return nil }

type mockSettingsService struct {
	settings domain.Settings
	provider domain.AIProvider
	model    string
	apiKey   string
	dsn      *string
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.provider, m.model, m.apiKey = provider, model, apiKey
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetDatabaseDSN(dsn string) error {
	m.dsn = &dsn
	return nil
}

func testCatalog() *domain.SchemaCatalog {
	return &domain.SchemaCatalog{
		Dialect: domain.DialectSQLite,
		Tables: []domain.Table{
			{
				Name:        "employees",
				Columns:     []domain.Column{{Name: "id", Type: "INTEGER"}, {Name: "salary", Type: "REAL"}},
				ForeignKeys: []domain.ForeignKey{{Column: "dept_id", RefTable: "departments", RefColumn: "id"}},
				Role:        domain.RoleEmployees,
			},
		},
	}
}

type testServices struct {
	query     *mockQueryService
	ingestion *mockIngestionService
	schema    *mockSchemaService
	settings  *mockSettingsService
}

// setupTestServices installs mocks and resets flag state; the returned
// function restores an unconfigured command tree.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		query:     &mockQueryService{},
		ingestion: &mockIngestionService{finishOn: 2},
		schema:    &mockSchemaService{},
		settings:  &mockSettingsService{settings: domain.DefaultSettings()},
	}
	Configure(Services{
		Query:     ts.query,
		Ingestion: ts.ingestion,
		Schema:    ts.schema,
		Settings:  ts.settings,
	})
	resetFlags()
	return ts, func() {
		Configure(Services{})
		resetFlags()
	}
}

func resetFlags() {
	queryJSON = false
	historyJSON = false
	schemaJSON = false
	ingestNoWait = false
	ingestInterval = time.Millisecond
	connectPromptPassword = false
	connectSave = false
}

// run executes the root command with args and returns combined output.
func run(args []string, stdin string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
