package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/hybridq/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long:  `View and configure the embedding provider, the startup database and
other options. Settings live in ~/.hybridq/config.toml unless HYBRIDQ_CONFIG
points elsewhere; HYBRIDQ_* environment variables override file values.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used for vector search.

Without a provider the index ranks documents by token overlap. The provider
is checked before the command returns; the index mode is chosen at startup.`,
	RunE: runSettingsEmbedding,
}

var settingsDatabaseCmd = &cobra.Command{
	Use:   "database [connection-string]",
	Short: "Set the database connected at startup",
	Long:  `Stores the connection string that is connected at startup. Pass "" to clear it.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsDatabase,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsDatabaseCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	section := func(name string) {
		cmd.Println(titleStyle.Render("[" + name + "]"))
	}

	section("Server")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Printf("  Upload dir: %s\n", settings.Server.UploadDir)
	cmd.Printf("  Rate limit: %s\n", formatRate(settings.Server.RateLimit))
	cmd.Println()

	section("Embedding")
	emb := settings.Embedding
	cmd.Printf("  Provider: %s\n", emb.Provider.Description())
	if emb.Provider != domain.AIProviderNone {
		cmd.Printf("  Model: %s\n", emb.Model)
	}
	if emb.Provider == domain.AIProviderOllama {
		cmd.Printf("  Base URL: %s\n", emb.BaseURL)
	}
	if emb.Provider.RequiresAPIKey() {
		if emb.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(emb.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := successStyle.Render("configured")
	if !emb.IsConfigured() {
		status = warningStyle.Render("not configured (token-overlap search)")
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	section("Retrieval")
	cmd.Printf("  Top k: %d\n", settings.Index.TopK)
	cmd.Printf("  Chunk size: %d\n", settings.Chunker.MaxSize)
	cmd.Printf("  Ingestion workers: %d\n", settings.Ingestion.Workers)
	cmd.Printf("  Cache: %d entries, %s\n", settings.Cache.Size, settings.Cache.TTL)
	cmd.Printf("  History: %d entries (%s)\n", settings.History.Size, settings.History.Store)
	cmd.Println()

	section("Database")
	if settings.Database.DSN != "" {
		cmd.Printf("  Startup DSN: %s\n", redactDSN(settings.Database.DSN))
	} else {
		cmd.Printf("  Startup DSN: (none)\n")
	}
	cmd.Printf("  Query timeout: %s\n", settings.Database.QueryTimeout)
	cmd.Println()

	section("Schedule")
	cmd.Printf("  Schema refresh: %s\n", orDisabled(settings.Schedule.SchemaRefresh))
	cmd.Printf("  History compact: %s\n", orDisabled(settings.Schedule.HistoryCompact))
	cmd.Printf("  Index rebuild: %s\n", orDisabled(settings.Schedule.IndexRebuild))

	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureEmbeddingProvider(cmd, reader)
}

func runSettingsDatabase(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.SetDatabaseDSN(args[0]); err != nil {
		return fmt.Errorf("failed to save connection string: %w", err)
	}
	if args[0] == "" {
		cmd.Println("Startup database cleared.")
		return nil
	}
	cmd.Printf("Startup database set to %s\n", redactDSN(args[0]))
	return nil
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	var model, apiKey string
	if selected != domain.AIProviderNone {
		defaultModel := domain.DefaultEmbeddingModels()[selected]
		cmd.Printf("Enter model name [%s]: ", defaultModel)
		model = readLine(reader)
		if model == "" {
			model = defaultModel
		}
	}

	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readSecret(cmd, reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	if selected != domain.AIProviderNone && validateEmbed != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}

		cmd.Print("Validating configuration... ")
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()
		if err := validateEmbed(ctx, &settings.Embedding); err != nil {
			cmd.Println(errorStyle.Render("FAILED"))
			return fmt.Errorf("embedding configuration validation failed: %w", err)
		}
		cmd.Println(successStyle.Render("OK"))
	}

	if selected == domain.AIProviderNone {
		cmd.Println("Embeddings disabled; search uses token overlap.")
		return nil
	}
	cmd.Printf("Embedding provider configured: %s (%s)\n", selected.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readSecret reads without echo when input is a terminal, otherwise a line.
func readSecret(cmd *cobra.Command, reader *bufio.Reader) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(secret)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// redactDSN hides the password of a URL-style connection string.
func redactDSN(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	userinfo, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}
	user, _, hasPassword := strings.Cut(userinfo, ":")
	if !hasPassword {
		return dsn
	}
	return scheme + "://" + user + ":****@" + host
}

func formatRate(rps float64) string {
	if rps <= 0 {
		return "disabled"
	}
	return strconv.FormatFloat(rps, 'f', -1, 64) + " req/s"
}

func orDisabled(spec string) string {
	if spec == "" {
		return "disabled"
	}
	return spec
}
