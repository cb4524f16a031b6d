// Package messages defines the Bubbletea messages exchanged by TUI views.
package messages

import (
	"github.com/custodia-labs/hybridq/internal/core/domain"
)

// ViewType identifies the active view.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewQuery is the question input and answer view.
	ViewQuery
	// ViewHistory lists recent questions.
	ViewHistory
	// ViewSchema shows the connected database catalog.
	ViewSchema
	// ViewHelp is the keybindings view.
	ViewHelp
)

// String returns the view name.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewQuery:
		return "query"
	case ViewHistory:
		return "history"
	case ViewSchema:
		return "schema"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged navigates to View.
type ViewChanged struct {
	View ViewType
}

// QueryRequested asks the query view to run Query, e.g. when a history
// entry is selected.
type QueryRequested struct {
	Query string
}

// QueryCompleted carries the envelope for a submitted question.
// Failures arrive as error envelopes, never as a separate error.
type QueryCompleted struct {
	Result *domain.QueryResult
}

// HistoryLoaded carries recent questions, oldest first.
type HistoryLoaded struct {
	Entries []domain.HistoryEntry
	Err     error
}

// SchemaLoaded carries the current catalog. A nil Catalog means no database
// is connected.
type SchemaLoaded struct {
	Catalog *domain.SchemaCatalog
	Err     error
}

// ErrorOccurred reports an error to the active view.
type ErrorOccurred struct {
	Err error
}

// Quit asks the program to exit.
type Quit struct{}
