package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hybridq/internal/core/domain"
	"github.com/custodia-labs/hybridq/internal/core/ports/driven"
)

// mockConnector implements driven.DatabaseConnector for testing.
type mockConnector struct {
	dbs        []*mockDatabase
	connectErr error
	dsns       []string
	rowsByDSN  map[string][]map[string]any
}

func (m *mockConnector) Connect(_ context.Context, dsn string) (driven.Database, error) {
	m.dsns = append(m.dsns, dsn)
	if m.connectErr != nil {
		return nil, m.connectErr
	}
	db := &mockDatabase{dialect: domain.DialectSQLite, rows: m.rowsByDSN[dsn]}
	m.dbs = append(m.dbs, db)
	return db, nil
}

// mockSchemaProvider implements driven.SchemaProvider for testing.
type mockSchemaProvider struct {
	catalog     *domain.SchemaCatalog
	discoverErr error
	mapping     domain.TermMapping
	discovers   int
}

func (m *mockSchemaProvider) Discover(_ context.Context, _ driven.Database) (*domain.SchemaCatalog, error) {
	m.discovers++
	if m.discoverErr != nil {
		return nil, m.discoverErr
	}
	return m.catalog, nil
}

func (m *mockSchemaProvider) MapTerms(_ string, _ *domain.SchemaCatalog) domain.TermMapping {
	return m.mapping
}

func TestSchemaManager_Connect(t *testing.T) {
	connector := &mockConnector{}
	provider := &mockSchemaProvider{catalog: employeeCatalog()}
	m := NewSchemaManager(connector, provider)

	assert.Nil(t, m.Current())

	catalog, err := m.Connect(context.Background(), "sqlite://test.db")
	require.NoError(t, err)
	assert.Equal(t, employeeCatalog(), catalog)
	assert.Same(t, catalog, m.Current())

	db, cat := m.Database()
	assert.NotNil(t, db)
	assert.Same(t, catalog, cat)
}

func TestSchemaManager_ConnectClosesPrevious(t *testing.T) {
	connector := &mockConnector{}
	m := NewSchemaManager(connector, &mockSchemaProvider{catalog: employeeCatalog()})

	_, err := m.Connect(context.Background(), "a.db")
	require.NoError(t, err)
	_, err = m.Connect(context.Background(), "b.db")
	require.NoError(t, err)

	require.Len(t, connector.dbs, 2)
	assert.True(t, connector.dbs[0].closed)
	assert.False(t, connector.dbs[1].closed)
}

func TestSchemaManager_Generation(t *testing.T) {
	ctx := context.Background()
	provider := &mockSchemaProvider{catalog: employeeCatalog()}
	m := NewSchemaManager(&mockConnector{}, provider)
	assert.Equal(t, uint64(0), m.Generation())

	_, err := m.Connect(ctx, "a.db")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), m.Generation())

	require.NoError(t, m.Refresh(ctx))
	assert.Equal(t, uint64(1), m.Generation())

	provider.discoverErr = errors.New("locked")
	_, err = m.Connect(ctx, "b.db")
	require.Error(t, err)
	assert.Equal(t, uint64(1), m.Generation())

	require.NoError(t, m.Close())
	assert.Equal(t, uint64(2), m.Generation())
	require.NoError(t, m.Close())
	assert.Equal(t, uint64(2), m.Generation())
}

func TestSchemaManager_ConnectErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty dsn", func(t *testing.T) {
		m := NewSchemaManager(&mockConnector{}, &mockSchemaProvider{})
		_, err := m.Connect(ctx, "  ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("connect fails", func(t *testing.T) {
		m := NewSchemaManager(&mockConnector{connectErr: errors.New("unable to open database file")}, &mockSchemaProvider{})
		_, err := m.Connect(ctx, "nope.db")
		assert.ErrorIs(t, err, domain.ErrSchemaDiscovery)
		assert.Contains(t, err.Error(), "unable to open database file")
		assert.Nil(t, m.Current())
	})

	t.Run("discover fails closes connection", func(t *testing.T) {
		connector := &mockConnector{}
		m := NewSchemaManager(connector, &mockSchemaProvider{discoverErr: errors.New("permission denied")})
		_, err := m.Connect(ctx, "x.db")
		assert.ErrorIs(t, err, domain.ErrSchemaDiscovery)
		require.Len(t, connector.dbs, 1)
		assert.True(t, connector.dbs[0].closed)
		assert.Nil(t, m.Current())
	})
}

func TestSchemaManager_Refresh(t *testing.T) {
	ctx := context.Background()
	provider := &mockSchemaProvider{catalog: employeeCatalog()}
	m := NewSchemaManager(&mockConnector{}, provider)

	assert.ErrorIs(t, m.Refresh(ctx), domain.ErrNoDatabase)

	_, err := m.Connect(ctx, "a.db")
	require.NoError(t, err)

	updated := &domain.SchemaCatalog{Dialect: domain.DialectSQLite, Tables: []domain.Table{{Name: "people"}}}
	provider.catalog = updated
	require.NoError(t, m.Refresh(ctx))
	assert.Same(t, updated, m.Current())
	assert.Equal(t, 2, provider.discovers)

	provider.discoverErr = errors.New("gone")
	assert.ErrorIs(t, m.Refresh(ctx), domain.ErrSchemaDiscovery)
	assert.Same(t, updated, m.Current())
}

func TestSchemaManager_MapTerms(t *testing.T) {
	mapping := domain.TermMapping{"salary": {Table: "employees", Column: "annual_salary"}}
	m := NewSchemaManager(&mockConnector{}, &mockSchemaProvider{catalog: employeeCatalog(), mapping: mapping})

	assert.Empty(t, m.MapTerms("salary"))

	_, err := m.Connect(context.Background(), "a.db")
	require.NoError(t, err)
	assert.Equal(t, mapping, m.MapTerms("salary"))
}

func TestSchemaManager_Close(t *testing.T) {
	connector := &mockConnector{}
	m := NewSchemaManager(connector, &mockSchemaProvider{catalog: employeeCatalog()})
	require.NoError(t, m.Close())

	_, err := m.Connect(context.Background(), "a.db")
	require.NoError(t, err)
	require.NoError(t, m.Close())
	assert.True(t, connector.dbs[0].closed)
	assert.Nil(t, m.Current())
}
