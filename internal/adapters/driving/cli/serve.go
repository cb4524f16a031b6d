package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hybridq/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/hybridq/internal/adapters/driving/mcp"
)

var (
	serveAddr  string
	serveNoMCP bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the JSON API:

  POST /api/ingest/database     connect a database (form: connection_string)
  POST /api/ingest/documents    upload documents (multipart: files)
  GET  /api/ingest/status/:id   ingestion progress
  POST /api/query               ask a question (form: query)
  GET  /api/query/history       recent queries
  GET  /api/schema              connected schema
  GET  /api/health              liveness

The MCP server is mounted at /mcp unless --no-mcp is set. Scheduled
maintenance jobs run while the server is up.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings)")
	serveCmd.Flags().BoolVar(&serveNoMCP, "no-mcp", false, "do not mount the MCP server at /mcp")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if queryService == nil || ingestionService == nil || schemaService == nil {
		return errors.New("services not configured")
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	addr := settings.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	deps := httpapi.Deps{
		Query:     queryService,
		Ingestion: ingestionService,
		Schema:    schemaService,
		Index:     indexInfo,
	}
	if !serveNoMCP {
		server, err := mcp.NewServer(mcpPorts())
		if err != nil {
			return err
		}
		deps.MCP = server.Handler()
	}

	router := httpapi.NewRouter(deps, httpapi.Options{
		UploadDir: settings.Server.UploadDir,
		RateLimit: settings.Server.RateLimit,
	})

	ctx := cmd.Context()
	if scheduler != nil {
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	cmd.Printf("Listening on %s\n", addr)
	return httpapi.Serve(ctx, addr, router)
}
