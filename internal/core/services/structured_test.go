package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hybridq/internal/core/domain"
)

// mockDatabase implements driven.Database for testing.
type mockDatabase struct {
	dialect  domain.Dialect
	rows     []map[string]any
	queryErr error
	queries  []string
	deadline bool
	closed   bool
}

func (m *mockDatabase) Dialect() domain.Dialect { return m.dialect }

func (m *mockDatabase) Query(ctx context.Context, query string, _ ...any) ([]map[string]any, error) {
	m.queries = append(m.queries, query)
	_, m.deadline = ctx.Deadline()
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.rows, nil
}

func (m *mockDatabase) Ping(_ context.Context) error { return nil }

func (m *mockDatabase) Close() error {
	m.closed = true
	return nil
}

func employeeCatalog() *domain.SchemaCatalog {
	return &domain.SchemaCatalog{
		Dialect: domain.DialectSQLite,
		Tables: []domain.Table{
			{Name: "departments", Role: domain.RoleDepartments, Columns: []domain.Column{
				{Name: "id", Type: "INTEGER"}, {Name: "name", Type: "TEXT"},
			}},
			{Name: "employees", Role: domain.RoleEmployees, Columns: []domain.Column{
				{Name: "id", Type: "INTEGER"},
				{Name: "full_name", Type: "TEXT"},
				{Name: "dept", Type: "TEXT"},
				{Name: "annual_salary", Type: "REAL"},
			}},
		},
	}
}

func TestStructuredRetriever_Shapes(t *testing.T) {
	tests := []struct {
		name  string
		query string
		shape domain.StructuredShape
		sql   string
	}{
		{
			name:  "how many",
			query: "How many employees are there?",
			shape: domain.ShapeCount,
			sql:   `SELECT COUNT(*) AS count FROM "employees"`,
		},
		{
			name:  "count",
			query: "count staff",
			shape: domain.ShapeCount,
			sql:   `SELECT COUNT(*) AS count FROM "employees"`,
		},
		{
			name:  "average salary",
			query: "average salary by department",
			shape: domain.ShapeGroupAverage,
			sql:   `SELECT "dept" AS department, AVG("annual_salary") AS avg_salary FROM "employees" GROUP BY "dept"`,
		},
		{
			name:  "average without compensation term",
			query: "average tenure",
			shape: domain.ShapeSample,
			sql:   `SELECT * FROM "employees" LIMIT 10`,
		},
		{
			name:  "fallback",
			query: "list everyone",
			shape: domain.ShapeSample,
			sql:   `SELECT * FROM "employees" LIMIT 10`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &mockDatabase{dialect: domain.DialectSQLite, rows: []map[string]any{{"count": int64(3)}}}
			r := NewStructuredRetriever(0)

			res, err := r.Retrieve(context.Background(), db, employeeCatalog(), tt.query, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.shape, res.Shape)
			assert.Equal(t, tt.sql, res.SQL)
			require.Len(t, db.queries, 1)
			assert.Equal(t, tt.sql, db.queries[0])
		})
	}
}

func TestStructuredRetriever_FirstTableWithoutRoles(t *testing.T) {
	catalog := &domain.SchemaCatalog{
		Dialect: domain.DialectPostgres,
		Tables: []domain.Table{
			{Name: "orders", Columns: []domain.Column{{Name: "id"}}},
			{Name: "items", Columns: []domain.Column{{Name: "id"}}},
		},
	}
	db := &mockDatabase{dialect: domain.DialectPostgres}

	res, err := NewStructuredRetriever(0).Retrieve(context.Background(), db, catalog, "how many", nil)
	require.NoError(t, err)
	assert.Equal(t, `SELECT COUNT(*) AS count FROM "orders"`, res.SQL)
	assert.NotNil(t, res.Rows)
}

func TestStructuredRetriever_GroupAverageNeedsColumnsInSameTable(t *testing.T) {
	catalog := &domain.SchemaCatalog{
		Dialect: domain.DialectSQLite,
		Tables: []domain.Table{
			{Name: "payroll", Columns: []domain.Column{{Name: "salary"}}},
			{Name: "staff", Role: domain.RoleEmployees, Columns: []domain.Column{{Name: "division"}}},
		},
	}
	db := &mockDatabase{dialect: domain.DialectSQLite}

	res, err := NewStructuredRetriever(0).Retrieve(context.Background(), db, catalog, "average pay", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ShapeSample, res.Shape)
	assert.Equal(t, `SELECT * FROM "staff" LIMIT 10`, res.SQL)
}

func TestStructuredRetriever_QuotesIdentifiers(t *testing.T) {
	catalog := &domain.SchemaCatalog{
		Dialect: domain.DialectSQLite,
		Tables:  []domain.Table{{Name: `we"ird`, Columns: []domain.Column{{Name: "id"}}}},
	}
	db := &mockDatabase{dialect: domain.DialectSQLite}

	res, err := NewStructuredRetriever(0).Retrieve(context.Background(), db, catalog, "show all", nil)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "we""ird" LIMIT 10`, res.SQL)
}

func TestStructuredRetriever_Errors(t *testing.T) {
	ctx := context.Background()
	r := NewStructuredRetriever(0)

	_, err := r.Retrieve(ctx, nil, employeeCatalog(), "how many", nil)
	assert.ErrorIs(t, err, domain.ErrNoDatabase)

	db := &mockDatabase{dialect: domain.DialectSQLite}
	_, err = r.Retrieve(ctx, db, &domain.SchemaCatalog{}, "how many", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyCatalog)

	_, err = r.Retrieve(ctx, db, nil, "how many", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyCatalog)

	failing := &mockDatabase{dialect: domain.DialectSQLite, queryErr: errors.New("no such table: employees")}
	_, err = r.Retrieve(ctx, failing, employeeCatalog(), "how many", nil)
	assert.ErrorIs(t, err, domain.ErrStructuredQuery)
	assert.Contains(t, err.Error(), "no such table")

	odd := employeeCatalog()
	odd.Dialect = "mssql"
	_, err = r.Retrieve(ctx, db, odd, "how many", nil)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestStructuredRetriever_AppliesTimeout(t *testing.T) {
	db := &mockDatabase{dialect: domain.DialectSQLite}

	_, err := NewStructuredRetriever(time.Second).Retrieve(context.Background(), db, employeeCatalog(), "count", nil)
	require.NoError(t, err)
	assert.True(t, db.deadline)
}

func TestStructuredRetriever_AttachesMapping(t *testing.T) {
	db := &mockDatabase{dialect: domain.DialectSQLite}
	mapping := domain.TermMapping{"salary": {Table: "employees", Column: "annual_salary"}}

	res, err := NewStructuredRetriever(0).Retrieve(context.Background(), db, employeeCatalog(), "salary list", mapping)
	require.NoError(t, err)
	assert.Equal(t, mapping, res.Mapping)
}

func TestQuoteTable_RejectsUnknown(t *testing.T) {
	_, err := quoteTable(employeeCatalog(), "payroll; DROP TABLE employees")
	assert.ErrorIs(t, err, domain.ErrUnknownIdentifier)

	table, _ := employeeCatalog().Table("employees")
	_, err = quoteColumn(employeeCatalog(), table, "password")
	assert.ErrorIs(t, err, domain.ErrUnknownIdentifier)
}
