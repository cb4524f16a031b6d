// Package input provides the question input component.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/styles"
)

// MaxQueryLength bounds the characters accepted in the input.
const MaxQueryLength = 512

// QueryInput wraps a bubbles textinput and remembers submitted questions
// so they can be recalled with up and down.
type QueryInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int

	recall []string
	pos    int
}

// NewQueryInput creates a focused input.
func NewQueryInput(s *styles.Styles) *QueryInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about your data or documents..."
	ti.Focus()
	ti.CharLimit = MaxQueryLength
	ti.Width = 50

	return &QueryInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init starts the cursor blinking.
func (q *QueryInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key input. Up and down walk the recall list.
func (q *QueryInput) Update(msg tea.Msg) (*QueryInput, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // only recall keys are intercepted
		switch km.Type {
		case tea.KeyUp:
			q.Previous()
			return q, nil
		case tea.KeyDown:
			q.Next()
			return q, nil
		}
	}

	var cmd tea.Cmd
	q.textinput, cmd = q.textinput.Update(msg)
	return q, cmd
}

// View renders the label and input box.
func (q *QueryInput) View() string {
	label := q.styles.Title.Render("Ask: ")
	box := q.styles.InputField.Render(q.textinput.View())
	//nolint:misspell // lipgloss.Center is the library constant
	return lipgloss.JoinHorizontal(lipgloss.Center, label, box)
}

// Remember appends a submitted question to the recall list and resets the
// recall position. Blank questions and immediate repeats are ignored.
func (q *QueryInput) Remember(query string) {
	query = strings.TrimSpace(query)
	if query != "" && (len(q.recall) == 0 || q.recall[len(q.recall)-1] != query) {
		q.recall = append(q.recall, query)
	}
	q.pos = len(q.recall)
}

// Previous replaces the input with the previous remembered question.
func (q *QueryInput) Previous() {
	if q.pos == 0 {
		return
	}
	q.pos--
	q.textinput.SetValue(q.recall[q.pos])
	q.textinput.CursorEnd()
}

// Next moves forward through the recall list, clearing the input past the end.
func (q *QueryInput) Next() {
	if q.pos >= len(q.recall) {
		return
	}
	q.pos++
	if q.pos == len(q.recall) {
		q.textinput.SetValue("")
		return
	}
	q.textinput.SetValue(q.recall[q.pos])
	q.textinput.CursorEnd()
}

// Value returns the typed text.
func (q *QueryInput) Value() string { return q.textinput.Value() }

// SetValue replaces the typed text.
func (q *QueryInput) SetValue(v string) { q.textinput.SetValue(v) }

// Focus gives the input focus.
func (q *QueryInput) Focus() tea.Cmd { return q.textinput.Focus() }

// Blur removes focus.
func (q *QueryInput) Blur() { q.textinput.Blur() }

// Focused reports whether the input has focus.
func (q *QueryInput) Focused() bool { return q.textinput.Focused() }

// SetWidth sizes the input box, leaving room for the label.
func (q *QueryInput) SetWidth(width int) {
	q.width = width
	q.textinput.Width = max(20, width-12)
}

// Width returns the width last set.
func (q *QueryInput) Width() int { return q.width }

// Reset clears the input but keeps the recall list.
func (q *QueryInput) Reset() {
	q.textinput.Reset()
	q.pos = len(q.recall)
}
