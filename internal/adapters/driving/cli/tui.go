package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hybridq/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long:  `Launch the interactive terminal interface.

Ask questions and scroll through answers, re-run earlier questions from
history, and browse the connected database's schema.

Controls:
  ↑/k, ↓/j - Navigate and scroll
  Enter    - Ask / Select
  n        - New question
  r        - Refresh history or schema
  Esc      - Back to menu
  ctrl+c   - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = errors.New("tui crashed")
		}
	}()

	if queryService == nil {
		return errors.New("query service not configured")
	}

	// The TUI is long-running, so maintenance jobs run alongside it.
	if scheduler != nil {
		scheduler.Start(cmd.Context())
		defer scheduler.Stop()
	}

	app, err := tui.NewApp(&tui.Ports{
		Query:  queryService,
		Schema: schemaService,
		Index:  indexInfo,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
