package schema

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/hybridq/internal/core/domain"
)

type mockSchemaService struct {
	catalog    *domain.SchemaCatalog
	refreshErr error
	refreshes  int
}

func (m *mockSchemaService) Connect(_ context.Context, _ string) (*domain.SchemaCatalog, error) {
	return m.catalog, nil
}

func (m *mockSchemaService) Current() *domain.SchemaCatalog { return m.catalog }

func (m *mockSchemaService) Refresh(_ context.Context) error {
	m.refreshes++
	return m.refreshErr
}

func sampleCatalog() *domain.SchemaCatalog {
	return &domain.SchemaCatalog{
		Dialect: domain.DialectSQLite,
		Tables: []domain.Table{
			{
				Name:        "employees",
				Role:        domain.RoleEmployees,
				Columns:     []domain.Column{{Name: "id", Type: "INTEGER"}, {Name: "dept_id", Type: "INTEGER"}},
				ForeignKeys: []domain.ForeignKey{{Column: "dept_id", RefTable: "departments", RefColumn: "id"}},
			},
			{Name: "departments", Role: domain.RoleDepartments, Columns: []domain.Column{{Name: "name", Type: "TEXT"}}},
		},
	}
}

func TestView_NoService(t *testing.T) {
	v := NewView(nil, nil, nil)

	assert.Nil(t, v.Init())
	assert.Nil(t, v.refresh())
	assert.Contains(t, v.View(), "No database connected")
}

func TestView_InitLoadsCatalog(t *testing.T) {
	svc := &mockSchemaService{catalog: sampleCatalog()}
	v := NewView(nil, nil, svc)
	v.SetDimensions(100, 40)

	cmd := v.Init()
	require.NotNil(t, cmd)
	v.Update(cmd())

	assert.Same(t, svc.catalog, v.Catalog())
	out := v.View()
	assert.Contains(t, out, "sqlite · 2 tables")
	assert.Contains(t, out, "employees")
	assert.Contains(t, out, "(employees)")
	assert.Contains(t, out, "dept_id -> departments.id")
	assert.Contains(t, out, "name")
	assert.Equal(t, 0, svc.refreshes)
}

func TestView_NotConnected(t *testing.T) {
	v := NewView(nil, nil, &mockSchemaService{})

	v.Update(v.Init()())

	assert.Nil(t, v.Catalog())
	assert.Contains(t, v.View(), "No database connected")
}

func TestView_EmptyCatalog(t *testing.T) {
	v := NewView(nil, nil, &mockSchemaService{catalog: &domain.SchemaCatalog{Dialect: domain.DialectPostgres}})
	v.SetDimensions(80, 24)

	v.Update(v.Init()())

	assert.Contains(t, v.View(), "postgres database with no tables.")
}

func TestView_Refresh(t *testing.T) {
	svc := &mockSchemaService{catalog: sampleCatalog()}
	v := NewView(nil, nil, svc)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.NotNil(t, cmd)
	v.Update(cmd())

	assert.Equal(t, 1, svc.refreshes)
	require.NoError(t, v.Err())
	assert.NotNil(t, v.Catalog())
}

func TestView_RefreshError(t *testing.T) {
	svc := &mockSchemaService{refreshErr: domain.ErrNoDatabase}
	v := NewView(nil, nil, svc)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	v.Update(cmd())

	require.ErrorIs(t, v.Err(), domain.ErrNoDatabase)
	assert.Contains(t, v.View(), "Refresh failed")
}

func TestView_Back(t *testing.T) {
	v := NewView(nil, nil, nil)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}
