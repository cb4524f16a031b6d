// Package menu provides the main navigation menu view.
package menu

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/hybridq/internal/core/domain"
)

// Item is a single menu entry.
type Item struct {
	Label string
	Hint  string
	View  messages.ViewType
	Quit  bool
}

// View is the main menu.
type View struct {
	styles   *styles.Styles
	items    []Item
	selected int
	mode     domain.IndexMode
	width    int
	height   int
	ready    bool
}

// NewView creates the menu. mode is shown under the title when set.
func NewView(s *styles.Styles, mode domain.IndexMode) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles: s,
		items: []Item{
			{Label: "Ask", Hint: "query the database and documents", View: messages.ViewQuery},
			{Label: "History", Hint: "recent questions", View: messages.ViewHistory},
			{Label: "Schema", Hint: "connected database catalog", View: messages.ViewSchema},
			{Label: "Help", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		mode:   mode,
		width:  80,
		height: 24,
	}
}

// Init does nothing.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles navigation keys.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
		case "down", "j":
			if v.selected < len(v.items)-1 {
				v.selected++
			}
		case "enter":
			item := v.items[v.selected]
			if item.Quit {
				return v, tea.Quit
			}
			return v, func() tea.Msg {
				return messages.ViewChanged{View: item.View}
			}
		case "q":
			return v, tea.Quit
		}
	}
	return v, nil
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("hybridq"))
	b.WriteString("\n")
	subtitle := "Questions over SQL and documents"
	if v.mode != "" {
		subtitle += " · " + v.mode.String() + " index"
	}
	b.WriteString(v.styles.Muted.Render(subtitle))
	b.WriteString("\n\n")

	for i, item := range v.items {
		label := "  " + item.Label
		if i == v.selected {
			label = v.styles.Selected.Render("> " + item.Label)
		} else {
			label = v.styles.Normal.Render(label)
		}
		b.WriteString(label)
		if item.Hint != "" {
			b.WriteString("  " + v.styles.Muted.Render(item.Hint))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("[j/k] Navigate  [Enter] Select  [q] Quit"))
	return b.String()
}

// SetDimensions sets the view size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the highlighted index.
func (v *View) Selected() int {
	return v.selected
}

// Items returns the menu entries.
func (v *View) Items() []Item {
	return v.items
}
