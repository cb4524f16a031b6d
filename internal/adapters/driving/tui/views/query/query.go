// Package query provides the question and answer view.
package query

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/components/results"
	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/hybridq/internal/core/domain"
	"github.com/custodia-labs/hybridq/internal/core/ports/driving"
)

// ErrNoQueryService is reported when the view has no service to ask.
var ErrNoQueryService = errors.New("query service is required")

// View has an input on top, the answer panel below and a status bar.
// It is in input mode while typing and in results mode while scrolling.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	panel     *results.Panel
	statusbar *status.Bar

	service driving.QueryService
	ctx     context.Context

	width      int
	height     int
	ready      bool
	focusInput bool
	running    bool
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
		styles:     s,
		keymap:     km,
		input:      input.NewQueryInput(s),
		panel:      results.NewPanel(s),
		statusbar:  status.NewBar(s, km),
		service:    service,
		ctx:        context.Background(),
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context queries run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts the input cursor.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.QueryRequested:
		v.input.SetValue(msg.Query)
		return v, v.submit(msg.Query)

	case messages.QueryCompleted:
		v.handleCompleted(msg.Result)
		return v, nil

	case messages.ErrorOccurred:
		v.running = false
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			return v, v.submit(v.input.Value())
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	if keymap.Matches(msg.String(), v.keymap.NewQuery) {
		v.focusInput = true
		v.input.Reset()
		v.statusbar.SetHints(v.keymap.InputHelp())
		return v, v.input.Focus()
	}

	var cmd tea.Cmd
	v.panel, cmd = v.panel.Update(msg)
	return v, cmd
}

// submit starts a query unless text is blank or one is already running.
func (v *View) submit(text string) tea.Cmd {
	text = strings.TrimSpace(text)
	if text == "" || v.running {
		return nil
	}

	v.running = true
	v.input.Remember(text)
	v.statusbar.SetState(status.StateRunning)

	service, ctx := v.service, v.ctx
	return func() tea.Msg {
		if service == nil {
			return messages.ErrorOccurred{Err: ErrNoQueryService}
		}
		return messages.QueryCompleted{Result: service.Query(ctx, text)}
	}
}

func (v *View) handleCompleted(res *domain.QueryResult) {
	v.running = false
	if res == nil {
		return
	}

	v.panel.SetResult(res)
	if res.Failed() {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(res.Error)
		return
	}

	v.statusbar.SetAnswer(res.Type, res.Metrics)
	if res.Results != nil && len(res.Results.Errors) > 0 {
		v.statusbar.SetMessage("partial answer")
	}
	v.focusInput = false
	v.input.Blur()
	v.statusbar.SetHints(v.keymap.ResultsHelp())
}

// View renders the view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render("hybridq"),
		"",
		v.input.View(),
		"",
		v.panel.View(),
		"",
		v.statusbar.View(),
	)
}

// SetDimensions sizes the view and its components.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.panel.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)
}

// Reset returns to an empty input with no answer.
func (v *View) Reset() {
	v.focusInput = true
	v.running = false
	v.input.Reset()
	v.input.Focus()
	v.panel.Clear()
	v.statusbar.Clear()
	v.statusbar.SetHints(v.keymap.InputHelp())
}

// Query returns the typed text.
func (v *View) Query() string { return v.input.Value() }

// Result returns the answer on display.
func (v *View) Result() *domain.QueryResult { return v.panel.Result() }

// InputFocused reports whether the view is in input mode.
func (v *View) InputFocused() bool { return v.focusInput }

// Running reports whether a query is in flight.
func (v *View) Running() bool { return v.running }

// Status returns the status bar state.
func (v *View) Status() status.State { return v.statusbar.State() }
