// Package tui provides the interactive terminal interface for hybridq.
// It is a driving adapter over the query, schema and index ports.
package tui

import (
	"github.com/custodia-labs/hybridq/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI uses.
type Ports struct {
	// Query answers questions and lists history. Required.
	Query driving.QueryService

	// Schema backs the schema view. Optional.
	Schema driving.SchemaService

	// Index reports the retrieval mode shown in the menu. Optional.
	Index driving.IndexInfo
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}
