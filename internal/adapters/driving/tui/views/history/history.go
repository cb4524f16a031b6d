// Package history provides the recent-questions view.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/hybridq/internal/core/domain"
	"github.com/custodia-labs/hybridq/internal/core/ports/driving"
)

// View lists recent questions newest first. Enter asks the selected one again.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	service driving.QueryService
	ctx     context.Context

	entries  []domain.HistoryEntry
	selected int
	loading  bool
	err      error

	width  int
	height int
}

// NewView creates the view.
func NewView(s *styles.Styles, km *keymap.KeyMap, service driving.QueryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:  s,
		keymap:  km,
		service: service,
		ctx:     context.Background(),
		width:   80,
		height:  24,
	}
}

// WithContext sets the context history is loaded under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads history.
func (v *View) Init() tea.Cmd {
	return v.load()
}

func (v *View) load() tea.Cmd {
	if v.service == nil {
		return nil
	}
	v.loading = true
	service, ctx := v.service, v.ctx
	return func() tea.Msg {
		entries, err := service.History(ctx)
		return messages.HistoryLoaded{Entries: entries, Err: err}
	}
}

// Update handles messages for the view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.HistoryLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.setEntries(msg.Entries)
		}

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

// setEntries stores entries newest first.
func (v *View) setEntries(entries []domain.HistoryEntry) {
	v.entries = make([]domain.HistoryEntry, len(entries))
	for i, e := range entries {
		v.entries[len(entries)-1-i] = e
	}
	v.selected = 0
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	case keymap.Matches(key, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case keymap.Matches(key, v.keymap.Down):
		if v.selected < len(v.entries)-1 {
			v.selected++
		}
	case keymap.Matches(key, v.keymap.Refresh):
		return v, v.load()
	case keymap.Matches(key, v.keymap.Select):
		if e, ok := v.Selected(); ok {
			return v, func() tea.Msg { return messages.QueryRequested{Query: e.Query} }
		}
	}
	return v, nil
}

// View renders the list.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("History"))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case len(v.entries) == 0:
		b.WriteString(v.styles.Muted.Render("No questions yet."))
	default:
		v.renderEntries(&b)
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("[j/k] Navigate  [Enter] Ask again  [r] Refresh  [Esc] Back"))
	return b.String()
}

func (v *View) renderEntries(b *strings.Builder) {
	visible := max(1, v.height-6)
	start := 0
	if v.selected >= visible {
		start = v.selected - visible + 1
	}
	end := min(len(v.entries), start+visible)

	queryWidth := max(10, v.width-32)
	for i := start; i < end; i++ {
		e := v.entries[i]
		text := e.Query
		if r := []rune(text); len(r) > queryWidth {
			text = string(r[:queryWidth-3]) + "..."
		}
		line := fmt.Sprintf("%-*s  %-10s %7.3fs  %s", queryWidth, text, e.Type, e.Elapsed, e.At.Format("15:04:05"))
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render("> " + line))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + line))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
}

// SetDimensions sets the view size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Entries returns the loaded entries, newest first.
func (v *View) Entries() []domain.HistoryEntry { return v.entries }

// Selected returns the highlighted entry.
func (v *View) Selected() (domain.HistoryEntry, bool) {
	if v.selected < 0 || v.selected >= len(v.entries) {
		return domain.HistoryEntry{}, false
	}
	return v.entries[v.selected], true
}

// Err returns the last load error.
func (v *View) Err() error { return v.err }
