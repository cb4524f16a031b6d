// Package cli provides the cobra command tree for hybridq.
//
// Services are injected once from main through Configure; commands report
// "not configured" when a port they need is missing.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hybridq/internal/core/domain"
	"github.com/custodia-labs/hybridq/internal/core/ports/driving"
	"github.com/custodia-labs/hybridq/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// Background is a set of jobs that run while a server command is up.
type Background interface {
	Start(ctx context.Context)
	Stop()
}

// Services holds everything the commands drive.
type Services struct {
	Query     driving.QueryService
	Ingestion driving.IngestionService
	Schema    driving.SchemaService
	Index     driving.IndexInfo
	Settings  driving.SettingsService

	// ValidateEmbedding checks that an embedding configuration can be reached.
	ValidateEmbedding func(ctx context.Context, settings *domain.EmbeddingSettings) error

	// Scheduler runs maintenance jobs under serve and mcp serve.
	Scheduler Background
}

var (
	queryService     driving.QueryService
	ingestionService driving.IngestionService
	schemaService    driving.SchemaService
	indexInfo        driving.IndexInfo
	settingsService  driving.SettingsService
	validateEmbed    func(ctx context.Context, settings *domain.EmbeddingSettings) error
	scheduler        Background
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "hybridq",
	Short: "Ask questions across a database and your documents",
	Long: `hybridq answers natural-language questions from a connected SQL database,
a corpus of ingested documents, or both at once.

Connect a database with 'hybridq connect', add documents with 'hybridq ingest',
then ask with 'hybridq query' or start the API with 'hybridq serve'.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Configure injects the services used by every command.
func Configure(s Services) {
	queryService = s.Query
	ingestionService = s.Ingestion
	schemaService = s.Schema
	indexInfo = s.Index
	settingsService = s.Settings
	validateEmbed = s.ValidateEmbedding
	scheduler = s.Scheduler
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
