package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hybridq/internal/core/domain"
)

var (
	connectPromptPassword bool
	connectSave           bool
)

// passwordPrompt reads a password without echo; replaced in tests.
var passwordPrompt = func(cmd *cobra.Command) string {
	return readSecret(cmd, bufio.NewReader(cmd.InOrStdin()))
}

var connectCmd = &cobra.Command{
	Use:   "connect [connection-string]",
	Short: "Connect a database and discover its schema",
	Long: `Opens the database, discovers its tables and columns, and makes it the
source for structured queries.

Supported connection strings:
  sqlite:///path/to/company.db   (or a bare file path)
  postgres://user@host:5432/db

Use --prompt-password to enter a PostgreSQL password without it appearing
in shell history, and --save to connect this database on every start.`,
	Args: cobra.ExactArgs(1),
	RunE: runConnect,
}

var schemaJSON bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the connected database schema",
	Args:  cobra.NoArgs,
	RunE:  runSchema,
}

func init() {
	connectCmd.Flags().BoolVar(&connectPromptPassword, "prompt-password", false, "prompt for the database password")
	connectCmd.Flags().BoolVar(&connectSave, "save", false, "store the connection string in settings")
	schemaCmd.Flags().BoolVar(&schemaJSON, "json", false, "output the catalog as JSON")
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(schemaCmd)
}

func runConnect(cmd *cobra.Command, args []string) error {
	if schemaService == nil {
		return errors.New("schema service not configured")
	}

	dsn := args[0]
	connectDSN := dsn
	if connectPromptPassword {
		cmd.Print("Password: ")
		password := passwordPrompt(cmd)
		cmd.Println()
		var err error
		connectDSN, err = withPassword(dsn, password)
		if err != nil {
			return err
		}
	}

	catalog, err := schemaService.Connect(cmd.Context(), connectDSN)
	if err != nil {
		return fmt.Errorf("connect failed: %w", err)
	}

	if connectSave {
		if settingsService == nil {
			return errors.New("settings service not configured")
		}
		if err := settingsService.SetDatabaseDSN(dsn); err != nil {
			return fmt.Errorf("failed to save connection string: %w", err)
		}
	}

	cmd.Println(successStyle.Render(fmt.Sprintf("Connected %s database with %d tables.", catalog.Dialect, len(catalog.Tables))))
	printCatalog(cmd, catalog)
	return nil
}

func runSchema(cmd *cobra.Command, _ []string) error {
	if schemaService == nil {
		return errors.New("schema service not configured")
	}

	catalog := schemaService.Current()
	if schemaJSON {
		var v any = catalog
		if catalog == nil {
			v = struct{}{}
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal schema: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if catalog == nil {
		cmd.Println("No database connected. Run 'hybridq connect' first.")
		return nil
	}
	printCatalog(cmd, catalog)
	return nil
}

func printCatalog(cmd *cobra.Command, catalog *domain.SchemaCatalog) {
	rows := make([][]string, 0, len(catalog.Tables))
	for _, t := range catalog.Tables {
		cols := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cols[i] = c.Name
		}
		fks := make([]string, len(t.ForeignKeys))
		for i, fk := range t.ForeignKeys {
			fks[i] = fmt.Sprintf("%s->%s.%s", fk.Column, fk.RefTable, fk.RefColumn)
		}
		rows = append(rows, []string{
			t.Name,
			string(t.Role),
			truncate(strings.Join(cols, ", "), 60),
			strings.Join(fks, ", "),
		})
	}
	cmd.Print(renderTable([]string{"TABLE", "ROLE", "COLUMNS", "FOREIGN KEYS"}, rows))
}

// withPassword sets the password of a PostgreSQL URL.
func withPassword(dsn, password string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
		return "", fmt.Errorf("%w: --prompt-password needs a postgres:// connection string", domain.ErrInvalidInput)
	}
	if password == "" {
		return dsn, nil
	}
	user := ""
	if u.User != nil {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, password)
	return u.String(), nil
}
