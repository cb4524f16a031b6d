package results

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/hybridq/internal/core/domain"
)

func structuredResult() *domain.QueryResult {
	return &domain.QueryResult{
		Query: "average salary by department",
		Type:  domain.QueryStructured,
		Results: &domain.QueryResults{
			Structured: &domain.StructuredResult{
				Shape: domain.ShapeGroupAverage,
				SQL:   "SELECT dept, AVG(salary) AS avg_salary FROM employees GROUP BY dept",
				Rows: []map[string]any{
					{"dept": "Engineering", "avg_salary": 120000.0},
					{"dept": "Sales", "avg_salary": 80000.5},
				},
			},
		},
		Metrics: &domain.Metrics{Time: 0.01},
	}
}

func TestNewPanel(t *testing.T) {
	p := NewPanel(nil)

	require.NotNil(t, p)
	assert.Nil(t, p.Result())
	assert.Contains(t, p.View(), "Ask a question")
}

func TestPanel_RenderStructured(t *testing.T) {
	p := NewPanel(nil)

	out := p.Render(structuredResult())

	assert.Contains(t, out, "Database")
	assert.Contains(t, out, "GROUP BY dept")
	assert.Contains(t, out, "avg_salary")
	assert.Contains(t, out, "Engineering")
	assert.Contains(t, out, "120000.00")
	assert.Contains(t, out, "80000.50")
	assert.NotContains(t, out, "Documents")
}

func TestPanel_RenderStructured_NoRows(t *testing.T) {
	res := structuredResult()
	res.Results.Structured.Rows = nil

	out := NewPanel(nil).Render(res)

	assert.Contains(t, out, "No rows.")
}

func TestPanel_RenderDocuments(t *testing.T) {
	res := &domain.QueryResult{
		Type: domain.QueryDocument,
		Results: &domain.QueryResults{Documents: []domain.Hit{
			{Source: "alice.pdf", Text: "Senior engineer\n with   python", Score: 0.91},
			{Source: "bob.docx", Text: "Sales lead", Score: 0.42},
		}},
	}

	out := NewPanel(nil).Render(res)

	assert.Contains(t, out, "[1] alice.pdf")
	assert.Contains(t, out, "(0.91)")
	assert.Contains(t, out, "Senior engineer with python")
	assert.Contains(t, out, "[2] bob.docx")
}

func TestPanel_RenderDocuments_Empty(t *testing.T) {
	res := &domain.QueryResult{Type: domain.QueryDocument, Results: &domain.QueryResults{}}

	out := NewPanel(nil).Render(res)

	assert.Contains(t, out, "No matching documents.")
}

func TestPanel_RenderPartialHybrid(t *testing.T) {
	res := structuredResult()
	res.Type = domain.QueryHybrid
	res.Results.Errors = map[string]string{domain.ResultDocuments: "index unavailable"}

	out := NewPanel(nil).Render(res)

	assert.Contains(t, out, "Engineering")
	assert.Contains(t, out, "documents unavailable: index unavailable")
	assert.NotContains(t, out, "No matching documents.")
}

func TestPanel_RenderErrorEnvelope(t *testing.T) {
	out := NewPanel(nil).Render(&domain.QueryResult{Error: "no database connected"})

	assert.Equal(t, "Error: no database connected", strings.TrimSpace(out))
}

func TestPanel_SetResultAndClear(t *testing.T) {
	p := NewPanel(nil)
	p.SetDimensions(100, 30)

	p.SetResult(structuredResult())
	assert.NotNil(t, p.Result())
	assert.Contains(t, p.View(), "Database")

	p.Clear()
	assert.Nil(t, p.Result())
	assert.Contains(t, p.View(), "Ask a question")
}

func TestPanel_Scrolls(t *testing.T) {
	hits := make([]domain.Hit, 20)
	for i := range hits {
		hits[i] = domain.Hit{Source: "f.txt", Text: "chunk", Score: 1}
	}
	p := NewPanel(nil)
	p.SetDimensions(80, 3)
	p.SetResult(&domain.QueryResult{Type: domain.QueryDocument, Results: &domain.QueryResults{Documents: hits}})

	before := p.View()
	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	after := p.View()

	assert.Contains(t, before, "Documents")
	assert.NotEqual(t, before, after)
}

func TestColumns(t *testing.T) {
	cols := Columns([]map[string]any{
		{"b": 1, "a": 2},
		{"c": 3, "a": 4},
	})

	assert.Equal(t, []string{"a", "b", "c"}, cols)
	assert.Empty(t, Columns(nil))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "a b", clip(" a \n b ", 10))
	assert.Equal(t, "abcdefg...", clip("abcdefghijklmnop", 10))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NULL", formatValue(nil))
	assert.Equal(t, "3.14", formatValue(3.14159))
	assert.Equal(t, "42", formatValue(int64(42)))
	assert.Equal(t, "raw", formatValue([]byte("raw")))
}
