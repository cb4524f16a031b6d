// Package schema provides the database catalog view.
package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/hybridq/internal/core/domain"
	"github.com/custodia-labs/hybridq/internal/core/ports/driving"
)

// View shows every table of the current catalog with its role, columns and
// foreign keys. r rediscovers the catalog.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	service  driving.SchemaService
	ctx      context.Context
	viewport viewport.Model

	catalog *domain.SchemaCatalog
	err     error
}

// NewView creates the view.
func NewView(s *styles.Styles, km *keymap.KeyMap, service driving.SchemaService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:   s,
		keymap:   km,
		service:  service,
		ctx:      context.Background(),
		viewport: viewport.New(80, 18),
	}
}

// WithContext sets the context refreshes run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the current catalog.
func (v *View) Init() tea.Cmd {
	if v.service == nil {
		return nil
	}
	service := v.service
	return func() tea.Msg {
		return messages.SchemaLoaded{Catalog: service.Current()}
	}
}

func (v *View) refresh() tea.Cmd {
	if v.service == nil {
		return nil
	}
	service, ctx := v.service, v.ctx
	return func() tea.Msg {
		if err := service.Refresh(ctx); err != nil {
			return messages.SchemaLoaded{Catalog: service.Current(), Err: err}
		}
		return messages.SchemaLoaded{Catalog: service.Current()}
	}
}

// Update handles messages for the view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SchemaLoaded:
		v.catalog = msg.Catalog
		v.err = msg.Err
		v.viewport.SetContent(v.render())
		v.viewport.GotoTop()
		return v, nil

	case tea.KeyMsg:
		switch key := msg.String(); {
		case keymap.Matches(key, v.keymap.Back):
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
		case keymap.Matches(key, v.keymap.Refresh):
			return v, v.refresh()
		}
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// View renders the catalog.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Schema"))
	b.WriteString("\n")
	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Refresh failed: " + v.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if v.catalog == nil {
		b.WriteString(v.styles.Muted.Render("No database connected. Use 'hybridq connect' to add one."))
	} else {
		b.WriteString(v.viewport.View())
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render("[j/k] Scroll  [r] Refresh  [Esc] Back"))
	return b.String()
}

func (v *View) render() string {
	c := v.catalog
	if c == nil {
		return ""
	}
	if c.IsEmpty() {
		return v.styles.Muted.Render(fmt.Sprintf("%s database with no tables.", c.Dialect))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", v.styles.Muted.Render(fmt.Sprintf("%s · %d tables", c.Dialect, len(c.Tables))))
	for _, t := range c.Tables {
		b.WriteString("\n")
		b.WriteString(v.styles.Section.Render(t.Name))
		if t.Role != domain.RoleNone {
			b.WriteString(" " + v.styles.Muted.Render("("+string(t.Role)+")"))
		}
		b.WriteString("\n")
		for _, col := range t.Columns {
			fmt.Fprintf(&b, "  %s %s\n", v.styles.Normal.Render(col.Name), v.styles.Muted.Render(col.Type))
		}
		for _, fk := range t.ForeignKeys {
			fmt.Fprintf(&b, "  %s\n", v.styles.Warning.Render(
				fmt.Sprintf("%s -> %s.%s", fk.Column, fk.RefTable, fk.RefColumn)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// SetDimensions sizes the viewport.
func (v *View) SetDimensions(width, height int) {
	v.viewport.Width = width
	v.viewport.Height = max(1, height-6)
}

// Catalog returns the catalog on display.
func (v *View) Catalog() *domain.SchemaCatalog { return v.catalog }

// Err returns the last refresh error.
func (v *View) Err() error { return v.err }
