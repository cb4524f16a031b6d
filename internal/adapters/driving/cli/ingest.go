package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hybridq/internal/core/ports/driving"
)

var (
	ingestNoWait   bool
	ingestInterval time.Duration
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Ingest documents into the search index",
	Long: `Extracts, chunks and indexes the given files. Directories are walked
recursively; hidden files and directories are skipped.

PDF, DOCX and CSV files get dedicated extraction; anything else is read
as text. Progress is shown until the job finishes unless --no-wait is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestNoWait, "no-wait", false, "print the job id and return immediately")
	ingestCmd.Flags().DurationVar(&ingestInterval, "interval", 200*time.Millisecond, "progress poll interval")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	paths, err := expandPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no files to ingest")
	}

	jobID, err := ingestionService.Submit(cmd.Context(), paths)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	cmd.Printf("Started job %s (%d files)\n", jobID, len(paths))

	if ingestNoWait {
		return nil
	}
	return waitForJob(cmd.Context(), cmd, ingestionService, jobID, ingestInterval)
}

// waitForJob polls the job until it finishes, printing progress on one line.
func waitForJob(
	ctx context.Context,
	cmd *cobra.Command,
	svc driving.IngestionService,
	jobID string,
	interval time.Duration,
) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := -1
	for {
		job, ok := svc.Status(jobID)
		if !ok {
			return fmt.Errorf("job %s not found", jobID)
		}
		if job.Processed != last {
			cmd.Printf("\rProcessed %d/%d files", job.Processed, job.Total)
			last = job.Processed
		}
		if job.Finished() {
			cmd.Println()
			cmd.Println(successStyle.Render("Ingestion finished."))
			return nil
		}

		select {
		case <-ctx.Done():
			cmd.Println()
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// expandPaths resolves files and walks directories.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if !info.IsDir() {
			abs, err := filepath.Abs(arg)
			if err != nil {
				return nil, err
			}
			paths = append(paths, abs)
			continue
		}

		err = filepath.WalkDir(arg, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if p != arg && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				abs, err := filepath.Abs(p)
				if err != nil {
					return err
				}
				paths = append(paths, abs)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
	}
	return paths, nil
}
