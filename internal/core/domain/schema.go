package domain

import "strings"

// Dialect identifies the SQL flavour of a connected database.
type Dialect string

// Supported dialects.
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// TableRole is the inferred semantic role of a table.
type TableRole string

// Known roles. An empty role means nothing was inferred.
const (
	RoleNone        TableRole = ""
	RoleEmployees   TableRole = "employees"
	RoleDepartments TableRole = "departments"
)

// Column describes a single table column.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ForeignKey describes a reference from a column to another table.
type ForeignKey struct {
	Column    string `json:"column"`
	RefTable  string `json:"ref_table"`
	RefColumn string `json:"ref_column"`
}

// Table describes one table of the catalog.
type Table struct {
	Name        string       `json:"name"`
	Columns     []Column     `json:"columns"`
	ForeignKeys []ForeignKey `json:"foreign_keys"`
	Role        TableRole    `json:"role,omitempty"`
}

// HasColumn reports whether the table has a column with exactly this name.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// SchemaCatalog is the table and column metadata of a database.
// Table order is the discovery order and is significant: it breaks ties
// when locating employee-like tables and salary or department columns.
type SchemaCatalog struct {
	Dialect Dialect `json:"dialect"`
	Tables  []Table `json:"tables"`
}

// IsEmpty reports whether the catalog has no tables.
func (c *SchemaCatalog) IsEmpty() bool {
	return c == nil || len(c.Tables) == 0
}

// Table returns the table with the given name.
func (c *SchemaCatalog) Table(name string) (*Table, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Tables {
		if c.Tables[i].Name == name {
			return &c.Tables[i], true
		}
	}
	return nil, false
}

// PrimaryTable returns the first table whose role is employees,
// or the first table when no role was inferred.
func (c *SchemaCatalog) PrimaryTable() (*Table, bool) {
	if c.IsEmpty() {
		return nil, false
	}
	for i := range c.Tables {
		if c.Tables[i].Role == RoleEmployees {
			return &c.Tables[i], true
		}
	}
	return &c.Tables[0], true
}

// FindColumn scans tables in catalog order and returns the first column
// whose lowercase name contains any of the given substrings.
func (c *SchemaCatalog) FindColumn(substrings ...string) (table *Table, column string, ok bool) {
	if c == nil {
		return nil, "", false
	}
	for i := range c.Tables {
		for _, col := range c.Tables[i].Columns {
			name := strings.ToLower(col.Name)
			for _, s := range substrings {
				if strings.Contains(name, s) {
					return &c.Tables[i], col.Name, true
				}
			}
		}
	}
	return nil, "", false
}

// ColumnRef names a column of a catalog table.
type ColumnRef struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// TermMapping maps a query token to the closest matching catalog column.
type TermMapping map[string]ColumnRef
