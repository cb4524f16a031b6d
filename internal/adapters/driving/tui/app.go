package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/views/history"
	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/views/query"
	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/views/schema"
	"github.com/custodia-labs/hybridq/internal/core/domain"
)

// App is the root Bubbletea model. It routes messages to the active view.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	menuView    *menu.View
	queryView   *query.View
	historyView *history.View
	schemaView  *schema.View

	currentView messages.ViewType

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the application.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	var mode domain.IndexMode
	if ports.Index != nil {
		mode = ports.Index.Mode()
	}

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		menuView:    menu.NewView(s, mode),
		queryView:   query.NewView(s, km, ports.Query),
		historyView: history.NewView(s, km, ports.Query),
		schemaView:  schema.NewView(s, km, ports.Schema),
		currentView: messages.ViewMenu,
	}, nil
}

// WithContext sets the context every view runs its service calls under.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.queryView.WithContext(ctx)
	a.historyView.WithContext(ctx)
	a.schemaView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.SetWindowTitle("hybridq")
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.QueryRequested:
		a.currentView = messages.ViewQuery
		var cmd tea.Cmd
		a.queryView, cmd = a.queryView.Update(msg)
		return a, cmd

	case messages.QueryCompleted:
		var cmd tea.Cmd
		a.queryView, cmd = a.queryView.Update(msg)
		return a, cmd

	case messages.HistoryLoaded:
		var cmd tea.Cmd
		a.historyView, cmd = a.historyView.Update(msg)
		return a, cmd

	case messages.SchemaLoaded:
		var cmd tea.Cmd
		a.schemaView, cmd = a.schemaView.Update(msg)
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// switchTo activates view and runs its initial load.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	a.currentView = view
	switch view {
	case messages.ViewQuery:
		a.queryView.Reset()
		return a.queryView.Init()
	case messages.ViewHistory:
		return a.historyView.Init()
	case messages.ViewSchema:
		return a.schemaView.Init()
	case messages.ViewMenu, messages.ViewHelp:
	}
	return nil
}

func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewQuery:
		a.queryView, cmd = a.queryView.Update(msg)
	case messages.ViewHistory:
		a.historyView, cmd = a.historyView.Update(msg)
	case messages.ViewSchema:
		a.schemaView, cmd = a.schemaView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewQuery:
		return a.queryView.View()
	case messages.ViewHistory:
		return a.historyView.View()
	case messages.ViewSchema:
		return a.schemaView.View()
	case messages.ViewHelp:
		return a.styles.Normal.Render(helpText)
	default:
		return a.menuView.View()
	}
}

const helpText = `Help

Anywhere:
  esc         Back to menu
  ctrl+c      Quit

Ask:
  (type)      Enter a question
  enter       Ask
  ↑/↓         Recall earlier questions
  n           New question after an answer
  j/k         Scroll the answer

History:
  j/k         Navigate
  enter       Ask again
  r           Reload

Schema:
  j/k         Scroll
  r           Rediscover the catalog

[esc] back to menu`

// Run starts the program in the alternate screen.
func (a *App) Run() error {
	_, err := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx)).Run()
	return err
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType { return a.currentView }

// Ready reports whether the terminal size is known.
func (a *App) Ready() bool { return a.ready }

// SetDimensions sizes every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.queryView.SetDimensions(width, height)
	a.historyView.SetDimensions(width, height)
	a.schemaView.SetDimensions(width, height)
}
