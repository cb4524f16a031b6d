// Package sqlschema discovers table metadata from SQLite and PostgreSQL
// databases and maps query words onto catalog columns.
package sqlschema

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/hybridq/internal/core/domain"
	"github.com/custodia-labs/hybridq/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.SchemaProvider = (*Provider)(nil)

// Role inference substrings, matched against lowercased table names.
var (
	employeeTableHints   = []string{"emp", "staff", "person", "personnel"}
	departmentTableHints = []string{"dept", "division"}
)

// Term mapping parameters.
const (
	maxCandidates = 3
	matchCutoff   = 0.6
)

// Provider implements driven.SchemaProvider.
type Provider struct{}

// NewProvider creates a schema provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Discover reads tables, columns and foreign keys and infers table roles.
func (p *Provider) Discover(ctx context.Context, db driven.Database) (*domain.SchemaCatalog, error) {
	var (
		tables []domain.Table
		err    error
	)
	switch db.Dialect() {
	case domain.DialectSQLite:
		tables, err = discoverSQLite(ctx, db)
	case domain.DialectPostgres:
		tables, err = discoverPostgres(ctx, db)
	default:
		return nil, fmt.Errorf("%w: dialect %q", domain.ErrUnsupportedType, db.Dialect())
	}
	if err != nil {
		return nil, err
	}

	for i := range tables {
		tables[i].Role = InferRole(tables[i].Name)
	}
	return &domain.SchemaCatalog{Dialect: db.Dialect(), Tables: tables}, nil
}

// InferRole guesses a table's role from its name.
func InferRole(table string) domain.TableRole {
	lower := strings.ToLower(table)
	switch {
	case containsAny(lower, employeeTableHints):
		return domain.RoleEmployees
	case containsAny(lower, departmentTableHints):
		return domain.RoleDepartments
	default:
		return domain.RoleNone
	}
}

func discoverSQLite(ctx context.Context, db driven.Database) ([]domain.Table, error) {
	names, err := db.Query(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}

	tables := make([]domain.Table, 0, len(names))
	for _, row := range names {
		name := asString(row["name"])

		cols, err := db.Query(ctx, `SELECT name, type FROM pragma_table_info(?) ORDER BY cid`, name)
		if err != nil {
			return nil, fmt.Errorf("reading columns of %s: %w", name, err)
		}
		fks, err := db.Query(ctx, `SELECT "from", "table", "to" FROM pragma_foreign_key_list(?) ORDER BY id, seq`, name)
		if err != nil {
			return nil, fmt.Errorf("reading foreign keys of %s: %w", name, err)
		}

		table := domain.Table{Name: name, Columns: []domain.Column{}, ForeignKeys: []domain.ForeignKey{}}
		for _, c := range cols {
			table.Columns = append(table.Columns, domain.Column{Name: asString(c["name"]), Type: asString(c["type"])})
		}
		for _, fk := range fks {
			table.ForeignKeys = append(table.ForeignKeys, domain.ForeignKey{
				Column:    asString(fk["from"]),
				RefTable:  asString(fk["table"]),
				RefColumn: asString(fk["to"]),
			})
		}
		tables = append(tables, table)
	}
	return tables, nil
}

func discoverPostgres(ctx context.Context, db driven.Database) ([]domain.Table, error) {
	names, err := db.Query(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
		ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}

	tables := make([]domain.Table, 0, len(names))
	for _, row := range names {
		name := asString(row["table_name"])

		cols, err := db.Query(ctx, `
			SELECT column_name, data_type FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = ?
			ORDER BY ordinal_position`, name)
		if err != nil {
			return nil, fmt.Errorf("reading columns of %s: %w", name, err)
		}
		fks, err := db.Query(ctx, `
			SELECT kcu.column_name, ccu.table_name AS ref_table, ccu.column_name AS ref_column
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
				ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
			JOIN information_schema.constraint_column_usage ccu
				ON tc.constraint_name = ccu.constraint_name AND tc.table_schema = ccu.table_schema
			WHERE tc.constraint_type = 'FOREIGN KEY'
				AND tc.table_schema = current_schema() AND tc.table_name = ?
			ORDER BY kcu.ordinal_position`, name)
		if err != nil {
			return nil, fmt.Errorf("reading foreign keys of %s: %w", name, err)
		}

		table := domain.Table{Name: name, Columns: []domain.Column{}, ForeignKeys: []domain.ForeignKey{}}
		for _, c := range cols {
			table.Columns = append(table.Columns, domain.Column{Name: asString(c["column_name"]), Type: asString(c["data_type"])})
		}
		for _, fk := range fks {
			table.ForeignKeys = append(table.ForeignKeys, domain.ForeignKey{
				Column:    asString(fk["column_name"]),
				RefTable:  asString(fk["ref_table"]),
				RefColumn: asString(fk["ref_column"]),
			})
		}
		tables = append(tables, table)
	}
	return tables, nil
}

// MapTerms maps each query word to the closest catalog column.
// Words are lowercased and stripped of surrounding " ,.?". Of up to three
// candidates scoring at least 0.6 the best wins; equal scores prefer the
// lexically greater column name, and a name shared by several tables
// resolves to the first table in catalog order.
func (p *Provider) MapTerms(query string, catalog *domain.SchemaCatalog) domain.TermMapping {
	mapping := domain.TermMapping{}
	if catalog.IsEmpty() {
		return mapping
	}

	type column struct {
		table string
		name  string
	}
	var columns []column
	for _, t := range catalog.Tables {
		for _, c := range t.Columns {
			columns = append(columns, column{table: t.Name, name: c.Name})
		}
	}

	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
	}

	for _, field := range strings.Fields(strings.ToLower(query)) {
		token := strings.Trim(field, " ,.?")
		if token == "" {
			continue
		}
		matches := CloseMatches(token, names, maxCandidates, matchCutoff)
		if len(matches) == 0 {
			continue
		}
		for _, c := range columns {
			if c.name == matches[0] {
				mapping[token] = domain.ColumnRef{Table: c.table, Column: c.name}
				break
			}
		}
	}
	return mapping
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
