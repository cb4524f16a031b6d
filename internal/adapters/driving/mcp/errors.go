// Package mcp provides an MCP (Model Context Protocol) server adapter for hybridq.
// It lets AI assistants ask natural-language questions over the connected
// database and the ingested documents.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")
