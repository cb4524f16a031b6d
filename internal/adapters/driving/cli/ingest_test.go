package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPaths(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.csv"), []byte("b"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".git", "HEAD"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("x"), 0o644))

	paths, err := expandPaths([]string{root})

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.txt"),
		filepath.Join(root, "sub", "b.csv"),
	}, paths)
}

func TestExpandPaths_Missing(t *testing.T) {
	_, err := expandPaths([]string{filepath.Join(t.TempDir(), "missing.pdf")})
	assert.Error(t, err)
}

func TestIngestCmd_WaitsForJob(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	file := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o644))

	out, err := run([]string{"ingest", file}, "")

	require.NoError(t, err)
	require.Len(t, ts.ingestion.submitted, 1)
	assert.Equal(t, []string{file}, ts.ingestion.submitted[0])
	assert.Contains(t, out, "Started job job-1 (1 files)")
	assert.Contains(t, out, "Processed 1/1 files")
	assert.Contains(t, out, "Ingestion finished.")
}

func TestIngestCmd_NoWait(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	file := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o644))

	out, err := run([]string{"ingest", "--no-wait", file}, "")

	require.NoError(t, err)
	assert.Contains(t, out, "Started job job-1")
	assert.NotContains(t, out, "Processed")
	assert.Zero(t, ts.ingestion.polls)
}

func TestIngestCmd_EmptyDirectory(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := run([]string{"ingest", t.TempDir()}, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files to ingest")
}

func TestIngestCmd_SubmitError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ingestion.err = errors.New("ingestion stopped")

	file := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("a"), 0o644))

	_, err := run([]string{"ingest", file}, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingestion stopped")
}
