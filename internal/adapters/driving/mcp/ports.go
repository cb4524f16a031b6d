package mcp

import (
	"github.com/custodia-labs/hybridq/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers natural-language queries.
	Query driving.QueryService

	// Ingestion reports document ingestion progress.
	Ingestion driving.IngestionService

	// Schema exposes the connected database catalog.
	Schema driving.SchemaService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	// Ingestion and Schema are optional; their tools and resources
	// report empty results when unset.
	return nil
}
