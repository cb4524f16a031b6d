// Package results renders a query envelope into a scrollable panel.
package results

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/hybridq/internal/core/domain"
)

// MaxCellWidth bounds a rendered table cell.
const MaxCellWidth = 32

// Panel shows structured rows, document hits and per-path errors of one answer.
type Panel struct {
	styles   *styles.Styles
	viewport viewport.Model
	result   *domain.QueryResult
}

// NewPanel creates an empty panel.
func NewPanel(s *styles.Styles) *Panel {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Panel{
		styles:   s,
		viewport: viewport.New(80, 12),
	}
}

// Update scrolls the panel.
func (p *Panel) Update(msg tea.Msg) (*Panel, tea.Cmd) {
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

// View renders the visible part of the panel.
func (p *Panel) View() string {
	if p.result == nil {
		return p.styles.Muted.Render("Ask a question to see results.")
	}
	return p.viewport.View()
}

// SetResult renders res and scrolls to the top.
func (p *Panel) SetResult(res *domain.QueryResult) {
	p.result = res
	p.viewport.SetContent(p.Render(res))
	p.viewport.GotoTop()
}

// Result returns the envelope on display.
func (p *Panel) Result() *domain.QueryResult { return p.result }

// Clear removes the envelope.
func (p *Panel) Clear() {
	p.result = nil
	p.viewport.SetContent("")
}

// SetDimensions resizes the viewport and re-renders for the new width.
func (p *Panel) SetDimensions(width, height int) {
	p.viewport.Width = width
	p.viewport.Height = max(1, height)
	if p.result != nil {
		p.viewport.SetContent(p.Render(p.result))
	}
}

// Render returns the full panel content for res.
func (p *Panel) Render(res *domain.QueryResult) string {
	if res == nil {
		return ""
	}
	if res.Failed() {
		return p.styles.Error.Render("Error: " + res.Error)
	}

	results := res.Results
	if results == nil {
		results = &domain.QueryResults{}
	}

	var sections []string
	if st := results.Structured; st != nil {
		sections = append(sections, p.renderStructured(st))
	}
	if res.Type.WantsDocuments() && results.Errors[domain.ResultDocuments] == "" {
		sections = append(sections, p.renderDocuments(results.Documents))
	}
	for _, k := range []string{domain.ResultStructured, domain.ResultDocuments} {
		if msg, ok := results.Errors[k]; ok {
			sections = append(sections, p.styles.Warning.Render(fmt.Sprintf("%s unavailable: %s", k, msg)))
		}
	}
	return strings.Join(sections, "\n\n")
}

func (p *Panel) renderStructured(st *domain.StructuredResult) string {
	var b strings.Builder
	b.WriteString(p.styles.Section.Render("Database"))
	b.WriteString("  ")
	b.WriteString(p.styles.Code.Render(st.SQL))
	b.WriteString("\n")

	if len(st.Rows) == 0 {
		b.WriteString(p.styles.Muted.Render("No rows."))
		return b.String()
	}

	cols := Columns(st.Rows)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(p.styles.Theme().Border)).
		Headers(cols...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.styles.TableHeader
			}
			return p.styles.TableCell
		})
	for _, row := range st.Rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = clip(formatValue(row[c]), MaxCellWidth)
		}
		t.Row(cells...)
	}
	b.WriteString(t.Render())
	return b.String()
}

func (p *Panel) renderDocuments(hits []domain.Hit) string {
	var b strings.Builder
	b.WriteString(p.styles.Section.Render("Documents"))
	if len(hits) == 0 {
		b.WriteString("\n")
		b.WriteString(p.styles.Muted.Render("No matching documents."))
		return b.String()
	}

	textWidth := max(20, p.viewport.Width-6)
	for i, h := range hits {
		fmt.Fprintf(&b, "\n%s %s\n", p.styles.Normal.Render(fmt.Sprintf("[%d] %s", i+1, h.Source)),
			p.styles.Muted.Render(fmt.Sprintf("(%.2f)", h.Score)))
		b.WriteString(p.styles.Muted.Render("    " + clip(h.Text, textWidth)))
	}
	return b.String()
}

// Columns returns the sorted union of column names across rows.
func Columns(rows []map[string]any) []string {
	var cols []string
	for _, row := range rows {
		for k := range row {
			if !slices.Contains(cols, k) {
				cols = append(cols, k)
			}
		}
	}
	slices.Sort(cols)
	return cols
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case float64:
		return fmt.Sprintf("%.2f", x)
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

// clip collapses whitespace and shortens s to n runes.
func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:max(0, n-3)]) + "..."
}
