package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/hybridq/internal/core/domain"
	"github.com/custodia-labs/hybridq/internal/core/ports/driven"
	"github.com/custodia-labs/hybridq/internal/logger"
)

// Column name fragments used to locate compensation and department columns.
var (
	salaryColumnHints     = []string{"sal", "compens", "pay"}
	departmentColumnHints = []string{"dept", "division", "department"}
	compensationTerms     = []string{"salary", "compens", "pay"}
)

// sampleLimit bounds the fallback sample shape.
const sampleLimit = 10

// ShapeRule selects a canned SQL shape. Plan returns false when the
// catalog lacks what the shape needs, and selection moves to the next rule.
type ShapeRule struct {
	Shape   domain.StructuredShape
	Matches func(q string) bool
	Plan    func(catalog *domain.SchemaCatalog) (string, bool, error)
}

// DefaultShapeRules is the ordered shape table; the sample shape always matches.
var DefaultShapeRules = []ShapeRule{
	{
		Shape: domain.ShapeCount,
		Matches: func(q string) bool {
			return strings.Contains(q, "how many") || strings.Contains(q, "count")
		},
		Plan: planCount,
	},
	{
		Shape: domain.ShapeGroupAverage,
		Matches: func(q string) bool {
			return strings.Contains(q, "average") && containsAny(q, compensationTerms)
		},
		Plan: planGroupAverage,
	},
	{
		Shape:   domain.ShapeSample,
		Matches: func(string) bool { return true },
		Plan:    planSample,
	},
}

// StructuredRetriever answers queries with one canned SQL shape.
type StructuredRetriever struct {
	rules   []ShapeRule
	timeout time.Duration
}

// NewStructuredRetriever creates a retriever using DefaultShapeRules.
// A positive timeout bounds each statement.
func NewStructuredRetriever(timeout time.Duration) *StructuredRetriever {
	return &StructuredRetriever{rules: DefaultShapeRules, timeout: timeout}
}

// Retrieve picks the first shape whose rule matches and whose plan succeeds,
// then runs it against db. mapping is attached to the result as-is.
func (r *StructuredRetriever) Retrieve(
	ctx context.Context,
	db driven.Database,
	catalog *domain.SchemaCatalog,
	query string,
	mapping domain.TermMapping,
) (*domain.StructuredResult, error) {
	if db == nil {
		return nil, domain.ErrNoDatabase
	}
	if catalog.IsEmpty() {
		return nil, domain.ErrEmptyCatalog
	}

	shape, sql, err := r.plan(catalog, strings.ToLower(query))
	if err != nil {
		return nil, err
	}
	logger.Debug("Structured: %s shape: %s", shape, sql)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	rows, err := db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStructuredQuery, err)
	}
	if rows == nil {
		rows = []map[string]any{}
	}

	return &domain.StructuredResult{
		Shape:   shape,
		SQL:     sql,
		Rows:    rows,
		Mapping: mapping,
	}, nil
}

func (r *StructuredRetriever) plan(catalog *domain.SchemaCatalog, q string) (domain.StructuredShape, string, error) {
	for _, rule := range r.rules {
		if !rule.Matches(q) {
			continue
		}
		sql, ok, err := rule.Plan(catalog)
		if err != nil {
			return "", "", err
		}
		if ok {
			return rule.Shape, sql, nil
		}
		logger.Debug("Structured: %s shape not applicable to catalog", rule.Shape)
	}
	return "", "", fmt.Errorf("%w: no applicable query shape", domain.ErrStructuredQuery)
}

func planCount(catalog *domain.SchemaCatalog) (string, bool, error) {
	table, _ := catalog.PrimaryTable()
	name, err := quoteTable(catalog, table.Name)
	if err != nil {
		return "", false, err
	}
	return "SELECT COUNT(*) AS count FROM " + name, true, nil
}

func planGroupAverage(catalog *domain.SchemaCatalog) (string, bool, error) {
	table, salary, ok := catalog.FindColumn(salaryColumnHints...)
	if !ok {
		return "", false, nil
	}
	_, dept, ok := catalog.FindColumn(departmentColumnHints...)
	if !ok {
		return "", false, nil
	}
	// Both columns must live in the salary table; there are no joins.
	if !table.HasColumn(dept) {
		return "", false, nil
	}

	name, err := quoteTable(catalog, table.Name)
	if err != nil {
		return "", false, err
	}
	salaryCol, err := quoteColumn(catalog, table, salary)
	if err != nil {
		return "", false, err
	}
	deptCol, err := quoteColumn(catalog, table, dept)
	if err != nil {
		return "", false, err
	}

	sql := fmt.Sprintf("SELECT %s AS department, AVG(%s) AS avg_salary FROM %s GROUP BY %s",
		deptCol, salaryCol, name, deptCol)
	return sql, true, nil
}

func planSample(catalog *domain.SchemaCatalog) (string, bool, error) {
	table, _ := catalog.PrimaryTable()
	name, err := quoteTable(catalog, table.Name)
	if err != nil {
		return "", false, err
	}
	return fmt.Sprintf("SELECT * FROM %s LIMIT %d", name, sampleLimit), true, nil
}

// quoteTable validates name against the catalog and quotes it for the
// catalog's dialect.
func quoteTable(catalog *domain.SchemaCatalog, name string) (string, error) {
	if _, ok := catalog.Table(name); !ok {
		return "", fmt.Errorf("%w: table %q", domain.ErrUnknownIdentifier, name)
	}
	return quoteIdent(catalog.Dialect, name)
}

func quoteColumn(catalog *domain.SchemaCatalog, table *domain.Table, name string) (string, error) {
	if !table.HasColumn(name) {
		return "", fmt.Errorf("%w: column %q of %q", domain.ErrUnknownIdentifier, name, table.Name)
	}
	return quoteIdent(catalog.Dialect, name)
}

func quoteIdent(dialect domain.Dialect, name string) (string, error) {
	switch dialect {
	case domain.DialectSQLite, domain.DialectPostgres, "":
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`, nil
	default:
		return "", fmt.Errorf("%w: dialect %q", domain.ErrUnsupportedType, dialect)
	}
}
