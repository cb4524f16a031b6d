package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for hybridq resources.
	uriScheme = "hybridq://"

	mimeJSON = "application/json"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "schema",
		Name:        "schema",
		Description: "Table and column catalog of the connected database",
		MIMEType:    mimeJSON,
	}, s.handleSchemaResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "history",
		Name:        "history",
		Description: "Most recent queries, oldest first",
		MIMEType:    mimeJSON,
	}, s.handleHistoryResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "jobs/{jobId}",
		Name:        "ingestion-job",
		Description: "Progress of a document ingestion job",
		MIMEType:    mimeJSON,
	}, s.handleJobResource)
}

// handleSchemaResource returns the current catalog, or {} when no
// database is connected.
func (s *Server) handleSchemaResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Schema == nil {
		return jsonResult(req.Params.URI, "{}"), nil
	}
	catalog := s.ports.Schema.Current()
	if catalog == nil {
		return jsonResult(req.Params.URI, "{}"), nil
	}

	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling schema: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleHistoryResource returns the query history.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	_, out, err := s.handleHistory(ctx, nil, HistoryInput{})
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(out.History, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling history: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleJobResource returns one ingestion job.
func (s *Server) handleJobResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	jobID := extractJobID(req.Params.URI)
	if jobID == "" || s.ports.Ingestion == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	job, ok := s.ports.Ingestion.Status(jobID)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := json.MarshalIndent(toJobOutput(job), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling job: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     text,
		}},
	}
}

// extractJobID extracts the job ID from a URI like "hybridq://jobs/{id}".
func extractJobID(uri string) string {
	const prefix = uriScheme + "jobs/"
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
