// Package status provides the status bar component.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/hybridq/internal/core/domain"
)

// State is what the bar reports on its left side.
type State string

// Bar states.
const (
	StateReady   State = "ready"
	StateRunning State = "running"
	StateAnswer  State = "answer"
	StateError   State = "error"
)

// Bar shows the last answer's metrics on the left and key hints on the right.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	hints   []key.Binding
	state   State
	message string
	metrics domain.Metrics
	qtype   domain.QueryType
	width   int
}

// NewBar creates a bar in the ready state.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{
		styles: s,
		keymap: km,
		hints:  km.InputHelp(),
		state:  StateReady,
		width:  80,
	}
}

// View renders the bar at its width.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderHints()
	gap := max(1, b.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b *Bar) renderLeft() string {
	switch b.state {
	case StateRunning:
		return b.styles.Muted.Render("Thinking...")
	case StateError:
		if b.message == "" {
			return b.styles.Error.Render("Error")
		}
		return b.styles.Error.Render("Error: " + b.message)
	case StateAnswer:
		text := fmt.Sprintf("%s in %.3fs", b.qtype, b.metrics.Time)
		if b.metrics.CacheHit {
			text += " (cached)"
		}
		if b.message != "" {
			text += "  " + b.message
		}
		return b.styles.Normal.Render(text)
	}
	if b.message != "" {
		return b.styles.Muted.Render(b.message)
	}
	return b.styles.Muted.Render("Ready")
}

func (b *Bar) renderHints() string {
	parts := make([]string, 0, len(b.hints))
	for _, h := range b.hints {
		help := h.Help()
		parts = append(parts, help.Key+": "+help.Desc)
	}
	return b.styles.Muted.Render(strings.Join(parts, " | "))
}

// SetAnswer records the type and metrics of a successful answer.
func (b *Bar) SetAnswer(qtype domain.QueryType, m *domain.Metrics) {
	b.state = StateAnswer
	b.qtype = qtype
	b.message = ""
	b.metrics = domain.Metrics{}
	if m != nil {
		b.metrics = *m
	}
}

// SetState sets the state.
func (b *Bar) SetState(state State) { b.state = state }

// State returns the state.
func (b *Bar) State() State { return b.state }

// SetMessage sets the free-form message.
func (b *Bar) SetMessage(message string) { b.message = message }

// Message returns the free-form message.
func (b *Bar) Message() string { return b.message }

// SetHints replaces the key hints.
func (b *Bar) SetHints(bindings []key.Binding) { b.hints = bindings }

// SetWidth sets the bar width.
func (b *Bar) SetWidth(width int) { b.width = width }

// Width returns the bar width.
func (b *Bar) Width() int { return b.width }

// Clear returns the bar to the ready state.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.metrics = domain.Metrics{}
	b.qtype = ""
}
