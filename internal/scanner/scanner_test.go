package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func newScanner(root string, maxLogFiles int) *Scanner {
	return New(root, 7*24*time.Hour, maxLogFiles, "*.log", zerolog.Nop())
}

func TestScanClassifiesByConvention(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.log"))
	writeFile(t, filepath.Join(root, "Map_20250101100000_fa6e0000-0000-0000-0000-000000000000.txt"))
	writeFile(t, filepath.Join(root, "Raw", "Outbound", "20250101100000_request_fa6e0000-0000-0000-0000-000000000000.txt"))
	writeFile(t, filepath.Join(root, "notes.txt"))

	corpus := newScanner(root, 10).Scan()

	assert.Len(t, corpus.LogFiles, 1)
	assert.Len(t, corpus.MapFiles, 1)
	assert.Len(t, corpus.RawFiles, 1)
}

func TestScanExcludesFilesOutsideRetentionWindow(t *testing.T) {
	root := t.TempDir()
	stale := filepath.Join(root, "old.log")
	writeFile(t, stale)
	old := time.Now().Add(-10 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))
	writeFile(t, filepath.Join(root, "fresh.log"))

	corpus := newScanner(root, 10).Scan()

	require.Len(t, corpus.LogFiles, 1)
	assert.Equal(t, "fresh.log", filepath.Base(corpus.LogFiles[0]))
}

func TestScanCapsRollingLogsAtMostRecent(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	for i := 0; i < 15; i++ {
		path := filepath.Join(root, fmt.Sprintf("app-%02d.log", i))
		writeFile(t, path)
		mod := now.Add(-time.Duration(i) * time.Hour)
		require.NoError(t, os.Chtimes(path, mod, mod))
	}

	corpus := newScanner(root, 10).Scan()

	require.Len(t, corpus.LogFiles, 10)
	assert.Equal(t, "app-00.log", filepath.Base(corpus.LogFiles[0]), "most recent first")
}

func TestScanMissingRootYieldsEmptyCorpus(t *testing.T) {
	corpus := newScanner(filepath.Join(t.TempDir(), "absent"), 10).Scan()
	assert.Empty(t, corpus.LogFiles)
	assert.Empty(t, corpus.MapFiles)
	assert.Empty(t, corpus.RawFiles)
}
