package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/hybridq/internal/core/domain"
)

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Query string `json:"query" jsonschema:"the natural-language question to answer"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Query      string            `json:"query"`
	Type       string            `json:"type"`
	Structured *StructuredOutput `json:"structured,omitempty"`
	Documents  []HitOutput       `json:"documents,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
	Time       float64           `json:"time"`
	CacheHit   bool              `json:"cache_hit"`
}

// StructuredOutput is the SQL part of a query answer.
type StructuredOutput struct {
	Shape string           `json:"shape"`
	SQL   string           `json:"sql"`
	Rows  []map[string]any `json:"rows"`
}

// HitOutput is a single document chunk match.
type HitOutput struct {
	Source string  `json:"source"`
	Score  float64 `json:"score"`
	Text   string  `json:"text"`
}

// HistoryInput is the (empty) input schema for the query_history tool.
type HistoryInput struct{}

// HistoryOutput is the output schema for the query_history tool.
type HistoryOutput struct {
	History []HistoryEntryOutput `json:"history"`
}

// HistoryEntryOutput is one answered query.
type HistoryEntryOutput struct {
	Query   string  `json:"query"`
	Elapsed float64 `json:"elapsed"`
	Type    string  `json:"type"`
}

// JobInput is the input schema for the ingestion_status tool.
type JobInput struct {
	JobID string `json:"job_id" jsonschema:"the id returned when the documents were submitted"`
}

// JobOutput is the output schema for the ingestion_status tool.
type JobOutput struct {
	JobID      string `json:"job_id"`
	Status     string `json:"status"`
	Total      int    `json:"total"`
	Processed  int    `json:"processed"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Answer a natural-language question from the connected database, the ingested documents, or both",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query_history",
		Description: "List the most recent queries with their type and retrieval time",
	}, s.handleHistory)

	if s.ports.Ingestion != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingestion_status",
			Description: "Report progress of a document ingestion job",
		}, s.handleIngestionStatus)
	}
}

// handleQuery handles the query tool invocation.
// An error envelope becomes a tool error so the caller sees the message.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, QueryOutput{}, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}

	res := s.ports.Query.Query(ctx, input.Query)
	if res.Failed() {
		return nil, QueryOutput{}, errors.New(res.Error)
	}

	return nil, toQueryOutput(res), nil
}

func toQueryOutput(res *domain.QueryResult) QueryOutput {
	out := QueryOutput{
		Query: res.Query,
		Type:  res.Type.String(),
	}
	if res.Metrics != nil {
		out.Time = res.Metrics.Time
		out.CacheHit = res.Metrics.CacheHit
	}
	if res.Results == nil {
		return out
	}

	if st := res.Results.Structured; st != nil {
		out.Structured = &StructuredOutput{
			Shape: string(st.Shape),
			SQL:   st.SQL,
			Rows:  st.Rows,
		}
	}
	for _, h := range res.Results.Documents {
		out.Documents = append(out.Documents, HitOutput{
			Source: h.Source,
			Score:  h.Score,
			Text:   h.Text,
		})
	}
	out.Errors = res.Results.Errors
	return out
}

// handleHistory handles the query_history tool invocation.
func (s *Server) handleHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ HistoryInput,
) (*mcp.CallToolResult, HistoryOutput, error) {
	entries, err := s.ports.Query.History(ctx)
	if err != nil {
		return nil, HistoryOutput{}, fmt.Errorf("loading history: %w", err)
	}

	out := HistoryOutput{History: make([]HistoryEntryOutput, len(entries))}
	for i, e := range entries {
		out.History[i] = HistoryEntryOutput{
			Query:   e.Query,
			Elapsed: e.Elapsed,
			Type:    e.Type.String(),
		}
	}
	return nil, out, nil
}

// handleIngestionStatus handles the ingestion_status tool invocation.
func (s *Server) handleIngestionStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input JobInput,
) (*mcp.CallToolResult, JobOutput, error) {
	job, ok := s.ports.Ingestion.Status(input.JobID)
	if !ok {
		return nil, JobOutput{}, fmt.Errorf("%w: job id %q", domain.ErrNotFound, input.JobID)
	}
	return nil, toJobOutput(job), nil
}

func toJobOutput(job domain.IngestionJob) JobOutput {
	out := JobOutput{
		JobID:     job.ID,
		Status:    string(job.Status),
		Total:     job.Total,
		Processed: job.Processed,
		StartedAt: job.StartedAt.Format(time.RFC3339),
	}
	if job.FinishedAt != nil {
		out.FinishedAt = job.FinishedAt.Format(time.RFC3339)
	}
	return out
}
