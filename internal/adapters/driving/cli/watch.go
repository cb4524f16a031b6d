package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hybridq/internal/connectors/filesystem"
)

var (
	watchDebounce time.Duration
	watchExisting bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Ingest files dropped into a directory",
	Long: `Watches a directory and ingests files as they are created or written.
Changes are batched until the directory has been quiet for --debounce.
Subdirectories created while watching are picked up; hidden entries are ignored.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", filesystem.DefaultDebounce, "quiet period before a batch is submitted")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "also ingest files already in the directory")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	w := filesystem.NewWatcher(args[0], ingestionService, filesystem.Options{
		Debounce:        watchDebounce,
		IncludeExisting: watchExisting,
		OnSubmit: func(jobID string, paths []string) {
			cmd.Printf("Started job %s (%d files)\n", jobID, len(paths))
		},
	})

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", w.Root())
	return w.Run(cmd.Context())
}
